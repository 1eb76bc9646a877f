package view

import (
	"hash/fnv"
	"net/url"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"shopazon/internal/models"
)

// OnSale reports whether a product should be displayed as discounted: the
// discount price must be present and strictly below the base price.
func OnSale(p *models.Product) bool {
	return p != nil && p.DiscountPrice != nil && p.DiscountPrice.LessThan(p.Price)
}

// DiscountPercent returns the rounded percentage off for an on-sale product,
// and 0 for anything else.
func DiscountPercent(p *models.Product) int {
	if !OnSale(p) || p.Price.IsZero() {
		return 0
	}
	pct := p.Price.Sub(*p.DiscountPrice).
		Div(p.Price).
		Mul(decimal.NewFromInt(100)).
		Round(0)
	return int(pct.IntPart())
}

// RatingFor fabricates a deterministic display rating in [3.0, 5.0) from an
// identifier. This is placeholder display data, not a real product rating.
func RatingFor(id models.ID) float64 {
	h := fnv.New32a()
	h.Write([]byte(id))
	return 3.0 + float64(h.Sum32()%20)/10.0
}

// ResolveImageURL rewrites an image URL so it resolves against the configured
// API origin. Absolute URLs pointing at a dev-server loopback host are
// re-rooted onto the origin; relative URLs are prefixed with it; other
// absolute URLs pass through untouched.
func ResolveImageURL(origin, raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if u.IsAbs() {
		host := u.Hostname()
		if host == "localhost" || host == "127.0.0.1" {
			rebased := origin + u.Path
			if u.RawQuery != "" {
				rebased += "?" + u.RawQuery
			}
			return rebased
		}
		return raw
	}
	return origin + "/" + strings.TrimLeft(raw, "/")
}

// PrimaryImage returns the product's primary-flagged image URL, falling back
// to the first image, then to empty.
func PrimaryImage(p *models.Product) string {
	if p == nil {
		return ""
	}
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.URL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return ""
}

// FilterProducts narrows an already-fetched product page by a substring
// query (name or description) and an optional category.
func FilterProducts(products []models.Product, query, categoryID string) []models.Product {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if categoryID != "" && p.CategoryID.String() != categoryID {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Sort keys understood by SortProducts.
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortName      = "name"
	SortNewest    = "newest"
)

// effectivePrice is the price a sort compares: the discount price when the
// product is on sale, the base price otherwise.
func effectivePrice(p *models.Product) decimal.Decimal {
	if OnSale(p) {
		return *p.DiscountPrice
	}
	return p.Price
}

// SortProducts orders a product page in place by the given key. Unknown keys
// leave the order untouched.
func SortProducts(products []models.Product, key string) {
	switch key {
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return effectivePrice(&products[i]).LessThan(effectivePrice(&products[j]))
		})
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return effectivePrice(&products[j]).LessThan(effectivePrice(&products[i]))
		})
	case SortName:
		sort.SliceStable(products, func(i, j int) bool {
			return strings.ToLower(products[i].Name) < strings.ToLower(products[j].Name)
		})
	case SortNewest:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		})
	}
}

// FilterOrders narrows an order page by status.
func FilterOrders(orders []models.Order, status string) []models.Order {
	if status == "" {
		return orders
	}
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}

// FilterPayments narrows a payment page by status.
func FilterPayments(payments []models.Payment, status string) []models.Payment {
	if status == "" {
		return payments
	}
	out := make([]models.Payment, 0, len(payments))
	for _, p := range payments {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out
}

// SearchUsers narrows a customer page by a name/email substring query.
func SearchUsers(users []models.User, query string) []models.User {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return users
	}
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Name), query) ||
			strings.Contains(strings.ToLower(u.Email), query) {
			out = append(out, u)
		}
	}
	return out
}
