package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"newskoo/internal/models"
)

// ListPostsParams filters the post list. Zero values are omitted.
type ListPostsParams struct {
	Page       int
	PerPage    int
	Status     models.PostStatus
	CategoryID int64
	Tag        string
	Search     string
	Sort       string // created_at, published_at, views, likes
	Order      string // asc, desc
}

func (p ListPostsParams) values() url.Values {
	v := url.Values{}
	setInt(v, "page", p.Page)
	setInt(v, "per_page", p.PerPage)
	setStr(v, "status", string(p.Status))
	setInt64(v, "category_id", p.CategoryID)
	setStr(v, "tag", p.Tag)
	setStr(v, "search", p.Search)
	setStr(v, "sort", p.Sort)
	setStr(v, "order", p.Order)
	return v
}

func (c *Client) ListPosts(ctx context.Context, params ListPostsParams) ([]models.Post, *models.PageMeta, error) {
	var out listEnvelope[models.Post]
	if err := c.get(ctx, "/api/posts", params.values(), &out); err != nil {
		return nil, nil, err
	}
	return out.Data, &out.Meta, nil
}

func (c *Client) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	var out models.Post
	if err := c.get(ctx, fmt.Sprintf("/api/posts/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	// the request path is built from the unescaped URL.Path, so the raw
	// slug goes in as-is and is percent-encoded exactly once on send
	var out models.Post
	if err := c.get(ctx, "/api/posts/slug/"+slug, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PostInput is the writable subset of a post.
type PostInput struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Excerpt       string   `json:"excerpt,omitempty"`
	FeaturedImage string   `json:"featured_image,omitempty"`
	CategoryID    *int64   `json:"category_id,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

func (c *Client) CreatePost(ctx context.Context, in PostInput) (*models.Post, error) {
	var out models.Post
	if err := c.post(ctx, "/api/posts", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePost(ctx context.Context, id int64, in PostInput) (*models.Post, error) {
	var out models.Post
	if err := c.put(ctx, fmt.Sprintf("/api/posts/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeletePost(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/posts/%d", id))
}

// PublishPost transitions a post to published.
func (c *Client) PublishPost(ctx context.Context, id int64) (*models.Post, error) {
	var out models.Post
	if err := c.post(ctx, fmt.Sprintf("/api/posts/%d/publish", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HidePost pulls a published post from the public site.
func (c *Client) HidePost(ctx context.Context, id int64) (*models.Post, error) {
	var out models.Post
	if err := c.post(ctx, fmt.Sprintf("/api/posts/%d/unpublish", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) LikePost(ctx context.Context, id int64) error {
	return c.post(ctx, fmt.Sprintf("/api/posts/%d/like", id), nil, nil)
}

func (c *Client) RelatedPosts(ctx context.Context, id int64, limit int) ([]models.Post, error) {
	v := url.Values{}
	setInt(v, "limit", limit)
	var out listEnvelope[models.Post]
	if err := c.get(ctx, fmt.Sprintf("/api/posts/%d/related", id), v, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) PopularPosts(ctx context.Context, limit int) ([]models.Post, error) {
	v := url.Values{}
	setInt(v, "limit", limit)
	var out listEnvelope[models.Post]
	if err := c.get(ctx, "/api/posts/popular", v, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) RecentPosts(ctx context.Context, limit int) ([]models.Post, error) {
	v := url.Values{}
	setInt(v, "limit", limit)
	var out listEnvelope[models.Post]
	if err := c.get(ctx, "/api/posts/recent", v, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func setStr(v url.Values, key, val string) {
	if val != "" {
		v.Set(key, val)
	}
}

func setInt(v url.Values, key string, val int) {
	if val != 0 {
		v.Set(key, strconv.Itoa(val))
	}
}

func setInt64(v url.Values, key string, val int64) {
	if val != 0 {
		v.Set(key, strconv.FormatInt(val, 10))
	}
}
