package api

import (
	"context"
	"net/url"

	"shopazon/internal/models"
)

// GetCart returns the server cart for a user.
func (c *Client) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := c.getJSON(ctx, "/cart?user_id="+url.QueryEscape(userID), &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddCartItem adds a product to the cart and returns the updated cart.
func (c *Client) AddCartItem(ctx context.Context, req models.CartAddRequest) (*models.Cart, error) {
	var cart models.Cart
	if err := c.postJSON(ctx, "/cart/items", req, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpdateCartItem changes a line quantity and returns the updated cart.
func (c *Client) UpdateCartItem(ctx context.Context, itemID string, req models.CartQuantityRequest) (*models.Cart, error) {
	var cart models.Cart
	if err := c.putJSON(ctx, "/cart/items/"+itemID, req, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// RemoveCartItem removes a line and returns the updated cart.
func (c *Client) RemoveCartItem(ctx context.Context, itemID string) (*models.Cart, error) {
	var cart models.Cart
	if err := c.deleteJSON(ctx, "/cart/items/"+itemID, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// ClearCart empties the cart and returns the backend's (now empty) copy.
func (c *Client) ClearCart(ctx context.Context, cartID string) (*models.Cart, error) {
	var cart models.Cart
	if err := c.deleteJSON(ctx, "/cart/"+cartID+"/clear", &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}
