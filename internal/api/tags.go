package api

import (
	"context"
	"fmt"
	"net/url"

	"newskoo/internal/models"
)

func (c *Client) ListTags(ctx context.Context, page, perPage int) ([]models.Tag, *models.PageMeta, error) {
	v := url.Values{}
	setInt(v, "page", page)
	setInt(v, "per_page", perPage)
	var out listEnvelope[models.Tag]
	if err := c.get(ctx, "/api/tags", v, &out); err != nil {
		return nil, nil, err
	}
	return out.Data, &out.Meta, nil
}

type TagInput struct {
	Name string `json:"name"`
}

func (c *Client) CreateTag(ctx context.Context, in TagInput) (*models.Tag, error) {
	var out models.Tag
	if err := c.post(ctx, "/api/tags", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTag(ctx context.Context, id int64, in TagInput) (*models.Tag, error) {
	var out models.Tag
	if err := c.put(ctx, fmt.Sprintf("/api/tags/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTag(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/tags/%d", id))
}
