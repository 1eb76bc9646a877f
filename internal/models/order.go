package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses the client knows display styles for. The field itself is an
// open string; the backend may introduce further values.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// OrderItem is one line of an order, with the price captured at purchase time.
type OrderItem struct {
	ID        ID              `json:"id"`
	ProductID ID              `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Product   *CartProduct    `json:"product,omitempty"`
}

// Order is the client's copy of a customer order.
type Order struct {
	ID              ID              `json:"id"`
	UserID          ID              `json:"user_id"`
	User            *User           `json:"user,omitempty"`
	Status          string          `json:"status"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaymentMethod   string          `json:"payment_method"`
	ShippingName    string          `json:"shipping_name"`
	ShippingPhone   string          `json:"shipping_phone"`
	ShippingAddress string          `json:"shipping_address"`
	ShippingCity    string          `json:"shipping_city"`
	ShippingZip     string          `json:"shipping_zip"`
	Items           []OrderItem     `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Editable reports whether the order's items may still be changed.
func (o *Order) Editable() bool {
	return o != nil && o.Status == OrderStatusPending
}

// Payment statuses returned by the backend.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusSuccess  = "success"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Payment is the client's copy of a payment record.
type Payment struct {
	ID            ID              `json:"id"`
	OrderID       ID              `json:"order_id"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Provider      string          `json:"provider"`
	TransactionID string          `json:"transaction_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Refundable reports whether the payment may be refunded.
func (p *Payment) Refundable() bool {
	return p != nil && p.Status == PaymentStatusSuccess
}
