package api

import (
	"context"
	"fmt"
	"net/url"

	"newskoo/internal/models"
)

type ListDraftsParams struct {
	Page       int
	PerPage    int
	CategoryID int64
	Search     string
}

func (p ListDraftsParams) values() url.Values {
	v := url.Values{}
	setInt(v, "page", p.Page)
	setInt(v, "per_page", p.PerPage)
	setInt64(v, "category_id", p.CategoryID)
	setStr(v, "search", p.Search)
	return v
}

func (c *Client) ListDrafts(ctx context.Context, params ListDraftsParams) ([]models.Draft, *models.PageMeta, error) {
	var out listEnvelope[models.Draft]
	if err := c.get(ctx, "/api/drafts", params.values(), &out); err != nil {
		return nil, nil, err
	}
	return out.Data, &out.Meta, nil
}

func (c *Client) GetDraft(ctx context.Context, id int64) (*models.Draft, error) {
	var out models.Draft
	if err := c.get(ctx, fmt.Sprintf("/api/drafts/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type DraftInput struct {
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	CategoryID     *int64   `json:"category_id,omitempty"`
	WritingStyleID *int64   `json:"writing_style_id,omitempty"`
	FeaturedImage  string   `json:"featured_image,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}

func (c *Client) CreateDraft(ctx context.Context, in DraftInput) (*models.Draft, error) {
	var out models.Draft
	if err := c.post(ctx, "/api/drafts", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateDraft(ctx context.Context, id int64, in DraftInput) (*models.Draft, error) {
	var out models.Draft
	if err := c.put(ctx, fmt.Sprintf("/api/drafts/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteDraft(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/drafts/%d", id))
}

// PublishDraft promotes a draft to a live post.
func (c *Client) PublishDraft(ctx context.Context, id int64) (*models.Post, error) {
	var out models.Post
	if err := c.post(ctx, fmt.Sprintf("/api/drafts/%d/publish", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
