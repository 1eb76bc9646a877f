package api

import (
	"context"

	"shopazon/internal/models"
)

// ListCategories returns all categories.
func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := c.getJSON(ctx, "/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateCategory creates a category and returns the backend's copy.
func (c *Client) CreateCategory(ctx context.Context, form models.CategoryForm) (*models.Category, error) {
	var category models.Category
	if err := c.postJSON(ctx, "/categories", form, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// UpdateCategory updates a category and returns the backend's copy.
func (c *Client) UpdateCategory(ctx context.Context, id string, form models.CategoryForm) (*models.Category, error) {
	var category models.Category
	if err := c.putJSON(ctx, "/categories/"+id, form, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteCategory deletes a category.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.deleteJSON(ctx, "/categories/"+id, nil)
}
