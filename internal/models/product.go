package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductImage is one image attached to a product. By backend convention at
// most one image per product carries the primary flag; the client does not
// enforce that.
type ProductImage struct {
	ID        ID     `json:"id"`
	URL       string `json:"url"`
	IsPrimary bool   `json:"is_primary"`
}

// Product is the client's copy of a catalog product.
type Product struct {
	ID            ID               `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	IsActive      bool             `json:"is_active"`
	Stock         int              `json:"stock"`
	CategoryID    ID               `json:"category_id"`
	Category      *Category        `json:"category,omitempty"`
	Images        []ProductImage   `json:"images"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Category is the client's copy of a product category.
type Category struct {
	ID            ID        `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	ProductsCount int       `json:"products_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CategoryForm is the create/update payload for a category.
type CategoryForm struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// ProductForm carries the fields of the product create/edit forms. Image
// files travel alongside it as multipart parts, not in this struct.
type ProductForm struct {
	Name          string `form:"name" validate:"required,min=2,max=150"`
	Description   string `form:"description" validate:"omitempty,max=2000"`
	Price         string `form:"price" validate:"required"`
	DiscountPrice string `form:"discount_price" validate:"omitempty"`
	Stock         int    `form:"stock" validate:"gte=0"`
	CategoryID    string `form:"category_id" validate:"required"`
	IsActive      bool   `form:"is_active"`
	PrimaryIndex  int    `form:"primary_index" validate:"gte=0"`
}
