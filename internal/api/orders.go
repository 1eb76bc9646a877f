package api

import (
	"context"
	"net/url"

	"shopazon/internal/models"
)

// ListOrders returns orders, optionally filtered to one user.
func (c *Client) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	path := "/orders"
	if userID != "" {
		path += "?user_id=" + url.QueryEscape(userID)
	}
	var orders []models.Order
	if err := c.getJSON(ctx, path, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder returns a single order with its items.
func (c *Client) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := c.getJSON(ctx, "/orders/"+id, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CancelOrder cancels a pending order.
func (c *Client) CancelOrder(ctx context.Context, id string) error {
	return c.deleteJSON(ctx, "/orders/"+id, nil)
}

// UpdateOrderItem changes the quantity of an order line and returns the
// updated order.
func (c *Client) UpdateOrderItem(ctx context.Context, orderID, itemID string, quantity int) (*models.Order, error) {
	payload := map[string]int{"quantity": quantity}
	var order models.Order
	if err := c.putJSON(ctx, "/orders/"+orderID+"/items/"+itemID, payload, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// RemoveOrderItem removes an order line and returns the updated order.
func (c *Client) RemoveOrderItem(ctx context.Context, orderID, itemID string) (*models.Order, error) {
	var order models.Order
	if err := c.deleteJSON(ctx, "/orders/"+orderID+"/items/"+itemID, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
