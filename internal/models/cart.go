package models

import "github.com/shopspring/decimal"

// CartItem is one line of the server-held cart, with the denormalized
// product snapshot the backend embeds for display.
type CartItem struct {
	ID        ID           `json:"id"`
	ProductID ID           `json:"product_id"`
	Quantity  int          `json:"quantity"`
	Product   *CartProduct `json:"product,omitempty"`
}

// CartProduct is the snapshot of a product carried on a cart line.
type CartProduct struct {
	ID            ID               `json:"id"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	Images        []ProductImage   `json:"images,omitempty"`
}

// Cart is the client's mirror of the server cart.
type Cart struct {
	ID     ID         `json:"id"`
	UserID ID         `json:"user_id"`
	Items  []CartItem `json:"items"`
}

// TotalQuantity sums the quantities of all lines.
func (c *Cart) TotalQuantity() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// Subtotal sums line prices, preferring the discounted price where present.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	if c == nil {
		return total
	}
	for _, item := range c.Items {
		if item.Product == nil {
			continue
		}
		unit := item.Product.Price
		if item.Product.DiscountPrice != nil && item.Product.DiscountPrice.LessThan(unit) {
			unit = *item.Product.DiscountPrice
		}
		total = total.Add(unit.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// CartAddRequest is the payload for adding a product to the cart.
type CartAddRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// CartQuantityRequest is the payload for changing a line quantity.
type CartQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}
