package api

import (
	"context"

	"newskoo/internal/models"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token pair. It does not persist the
// session; that is the auth manager's job.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.post(ctx, "/api/auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.post(ctx, "/api/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the account behind the current access token.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.get(ctx, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout invalidates the session server-side. Local token removal is
// the caller's responsibility and happens regardless of this call's
// outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/api/auth/logout", nil, nil)
}

func (c *Client) ChangePassword(ctx context.Context, current, updated string) error {
	body := map[string]string{
		"current_password": current,
		"new_password":     updated,
	}
	return c.post(ctx, "/api/auth/change-password", body, nil)
}
