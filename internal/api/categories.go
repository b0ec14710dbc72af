package api

import (
	"context"
	"fmt"
	"net/url"

	"newskoo/internal/models"
)

func (c *Client) ListCategories(ctx context.Context, page, perPage int) ([]models.Category, *models.PageMeta, error) {
	v := url.Values{}
	setInt(v, "page", page)
	setInt(v, "per_page", perPage)
	var out listEnvelope[models.Category]
	if err := c.get(ctx, "/api/categories", v, &out); err != nil {
		return nil, nil, err
	}
	return out.Data, &out.Meta, nil
}

func (c *Client) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	var out models.Category
	if err := c.get(ctx, fmt.Sprintf("/api/categories/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var out models.Category
	if err := c.get(ctx, "/api/categories/slug/"+url.PathEscape(slug), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (c *Client) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	var out models.Category
	if err := c.post(ctx, "/api/categories", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id int64, in CategoryInput) (*models.Category, error) {
	var out models.Category
	if err := c.put(ctx, fmt.Sprintf("/api/categories/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/categories/%d", id))
}
