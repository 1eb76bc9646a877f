package api

import (
	"context"

	"shopazon/internal/models"
)

// ListPayments returns all payment records (admin only).
func (c *Client) ListPayments(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	if err := c.getJSON(ctx, "/payments", &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// RefundPayment triggers a refund on a successful payment and returns the
// updated record.
func (c *Client) RefundPayment(ctx context.Context, id string) (*models.Payment, error) {
	var payment models.Payment
	if err := c.postJSON(ctx, "/payments/"+id+"/refund", nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}
