package api

import (
	"context"
	"fmt"
	"net/url"

	"newskoo/internal/models"
)

// ListUsersParams filters the user list. Admin only.
type ListUsersParams struct {
	Page    int
	PerPage int
	Role    models.Role
	Search  string // matches username or email
}

func (p ListUsersParams) values() url.Values {
	v := url.Values{}
	setInt(v, "page", p.Page)
	setInt(v, "per_page", p.PerPage)
	setStr(v, "role", string(p.Role))
	setStr(v, "search", p.Search)
	return v
}

func (c *Client) ListUsers(ctx context.Context, params ListUsersParams) ([]models.User, *models.PageMeta, error) {
	var out listEnvelope[models.User]
	if err := c.get(ctx, "/api/users", params.values(), &out); err != nil {
		return nil, nil, err
	}
	return out.Data, &out.Meta, nil
}

func (c *Client) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var out models.User
	if err := c.get(ctx, fmt.Sprintf("/api/users/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfileInput carries the self-service profile fields.
type UpdateProfileInput struct {
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// UpdateProfile updates the current user's own profile.
func (c *Client) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	var out models.User
	if err := c.put(ctx, "/api/users/me", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUserRole changes a user's role. Admin only.
func (c *Client) UpdateUserRole(ctx context.Context, id int64, role models.Role) (*models.User, error) {
	var out models.User
	if err := c.put(ctx, fmt.Sprintf("/api/users/%d/role", id), map[string]string{"role": string(role)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser removes a user account. Admin only.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/users/%d", id))
}
