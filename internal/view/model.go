package view

import (
	"shopazon/internal/models"
	"shopazon/internal/toast"
)

// Page states carried on every view model.
const (
	StateSuccess = "success"
	StateEmpty   = "empty"
	StateError   = "error"
	StateLoading = "loading"
)

// Model is the render-ready shape every page view returns. Empty results are
// the empty state, never an error; a failed load is terminal for that cycle.
type Model struct {
	State   string        `json:"state"`
	Data    interface{}   `json:"data,omitempty"`
	Message string        `json:"message,omitempty"`
	Toasts  []toast.Toast `json:"toasts"`
}

// ProductCard is a product prepared for a listing tile.
type ProductCard struct {
	ID              models.ID `json:"id"`
	Name            string    `json:"name"`
	Price           string    `json:"price"`
	DiscountPrice   string    `json:"discount_price,omitempty"`
	OnSale          bool      `json:"on_sale"`
	DiscountPercent int       `json:"discount_percent"`
	Rating          float64   `json:"rating"`
	ImageURL        string    `json:"image_url"`
	InStock         bool      `json:"in_stock"`
	CategoryID      models.ID `json:"category_id"`
}

// Card builds the listing tile for a product, resolving its image against
// the API origin.
func Card(p *models.Product, origin string) ProductCard {
	card := ProductCard{
		ID:              p.ID,
		Name:            p.Name,
		Price:           p.Price.StringFixed(2),
		OnSale:          OnSale(p),
		DiscountPercent: DiscountPercent(p),
		Rating:          RatingFor(p.ID),
		ImageURL:        ResolveImageURL(origin, PrimaryImage(p)),
		InStock:         p.Stock > 0,
		CategoryID:      p.CategoryID,
	}
	if p.DiscountPrice != nil {
		card.DiscountPrice = p.DiscountPrice.StringFixed(2)
	}
	return card
}

// Cards maps a product page to listing tiles.
func Cards(products []models.Product, origin string) []ProductCard {
	cards := make([]ProductCard, 0, len(products))
	for i := range products {
		cards = append(cards, Card(&products[i], origin))
	}
	return cards
}

// Pagination is the decorative single-page pagination descriptor the
// listings show; no server-side pagination exists behind it.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Paginate describes a single page holding all n items.
func Paginate(n int) Pagination {
	return Pagination{Page: 1, PerPage: n, Total: n, TotalPages: 1}
}

// StatusStyle maps an order or payment status to a display style name.
// Unknown statuses fall back to a neutral style; the status field is an open
// string, not a closed set.
func StatusStyle(status string) string {
	switch status {
	case models.OrderStatusPending:
		return "warning"
	case models.OrderStatusPaid, models.OrderStatusShipped:
		return "info"
	case models.OrderStatusDelivered, models.PaymentStatusSuccess:
		return "success"
	case models.OrderStatusCancelled, models.PaymentStatusFailed:
		return "danger"
	case models.PaymentStatusRefunded:
		return "secondary"
	default:
		return "default"
	}
}
