package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"shopazon/internal/models"
)

// ImageUpload is one image file submitted with a product form.
type ImageUpload struct {
	Filename string
	Content  []byte
}

// ListProducts returns the full product catalog.
func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.getJSON(ctx, "/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct returns a single product.
func (c *Client) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := c.getJSON(ctx, "/products/"+id, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// FeaturedProducts returns the products the backend flags as featured deals.
func (c *Client) FeaturedProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.getJSON(ctx, "/featured-products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// LatestProducts returns the most recently added products.
func (c *Client) LatestProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.getJSON(ctx, "/latest-products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct submits the add-product form as a single multipart POST
// carrying the field values, every image file, and the primary image index.
func (c *Client) CreateProduct(ctx context.Context, form models.ProductForm, images []ImageUpload) (*models.Product, error) {
	body, contentType, err := productMultipart(form, images, nil, false)
	if err != nil {
		return nil, err
	}
	var product models.Product
	if err := c.do(ctx, http.MethodPost, "/products", body, contentType, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct submits the edit-product form. The backend expects a POST
// with a `_method=PUT` override so file parts survive, plus the identifiers
// of images the admin removed.
func (c *Client) UpdateProduct(ctx context.Context, id string, form models.ProductForm, images []ImageUpload, deletedImageIDs []string) (*models.Product, error) {
	body, contentType, err := productMultipart(form, images, deletedImageIDs, true)
	if err != nil {
		return nil, err
	}
	var product models.Product
	if err := c.do(ctx, http.MethodPost, "/products/"+id, body, contentType, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct deletes a product.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.deleteJSON(ctx, "/products/"+id, nil)
}

func productMultipart(form models.ProductForm, images []ImageUpload, deletedImageIDs []string, methodOverride bool) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := map[string]string{
		"name":          form.Name,
		"description":   form.Description,
		"price":         form.Price,
		"stock":         strconv.Itoa(form.Stock),
		"category_id":   form.CategoryID,
		"is_active":     boolField(form.IsActive),
		"primary_index": strconv.Itoa(form.PrimaryIndex),
	}
	if form.DiscountPrice != "" {
		fields["discount_price"] = form.DiscountPrice
	}
	if methodOverride {
		fields["_method"] = "PUT"
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", &Error{Err: fmt.Errorf("writing field %s: %w", name, err)}
		}
	}
	for _, id := range deletedImageIDs {
		if err := w.WriteField("deleted_images[]", id); err != nil {
			return nil, "", &Error{Err: fmt.Errorf("writing deleted image id: %w", err)}
		}
	}
	for _, img := range images {
		part, err := w.CreateFormFile("images[]", img.Filename)
		if err != nil {
			return nil, "", &Error{Err: fmt.Errorf("creating image part: %w", err)}
		}
		if _, err := part.Write(img.Content); err != nil {
			return nil, "", &Error{Err: fmt.Errorf("writing image %s: %w", img.Filename, err)}
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", &Error{Err: fmt.Errorf("closing multipart body: %w", err)}
	}
	return buf, w.FormDataContentType(), nil
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
