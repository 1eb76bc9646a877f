package api

import (
	"context"

	"shopazon/internal/models"
)

// Login posts credentials and returns the authenticated user.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	var user models.User
	if err := c.postJSON(ctx, "/login", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout posts a logout request. The backend invalidates the session cookie.
func (c *Client) Logout(ctx context.Context) error {
	return c.postJSON(ctx, "/logout", nil, nil)
}

// Register creates an account and returns the new user.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	var user models.User
	if err := c.postJSON(ctx, "/register", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentUser probes the session endpoint for the authenticated user.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.getJSON(ctx, "/user", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all customer accounts (admin only).
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.getJSON(ctx, "/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}
