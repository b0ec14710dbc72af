package api

import (
	"context"
	"net/url"
	"strings"

	"newskoo/internal/models"
)

type SearchParams struct {
	Query      string
	Page       int
	PerPage    int
	CategoryID int64
	Tags       []string
	DateFrom   string // YYYY-MM-DD
	DateTo     string
	Sort       string // relevance, date, views
	Order      string
}

func (p SearchParams) values() url.Values {
	v := url.Values{}
	setStr(v, "q", p.Query)
	setInt(v, "page", p.Page)
	setInt(v, "per_page", p.PerPage)
	setInt64(v, "category", p.CategoryID)
	if len(p.Tags) > 0 {
		v.Set("tags", strings.Join(p.Tags, ","))
	}
	setStr(v, "date_from", p.DateFrom)
	setStr(v, "date_to", p.DateTo)
	setStr(v, "sort", p.Sort)
	setStr(v, "order", p.Order)
	return v
}

func (c *Client) Search(ctx context.Context, params SearchParams) ([]models.Post, *models.PageMeta, error) {
	var out listEnvelope[models.Post]
	if err := c.get(ctx, "/api/search/", params.values(), &out); err != nil {
		return nil, nil, err
	}
	return out.Data, &out.Meta, nil
}

// Autocomplete returns up to limit title suggestions for a prefix.
func (c *Client) Autocomplete(ctx context.Context, prefix string, limit int) ([]string, error) {
	v := url.Values{}
	setStr(v, "q", prefix)
	setInt(v, "limit", limit)
	var out struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := c.get(ctx, "/api/search/autocomplete", v, &out); err != nil {
		return nil, err
	}
	return out.Suggestions, nil
}

func (c *Client) TrendingSearches(ctx context.Context, limit int) ([]models.TrendingSearch, error) {
	v := url.Values{}
	setInt(v, "limit", limit)
	var out struct {
		Trending []models.TrendingSearch `json:"trending"`
	}
	if err := c.get(ctx, "/api/search/trending", v, &out); err != nil {
		return nil, err
	}
	return out.Trending, nil
}

// SearchFilters is the facet metadata the search screen offers.
type SearchFilters struct {
	Categories []models.Category `json:"categories"`
	Tags       []models.Tag      `json:"tags"`
	DateRange  struct {
		Earliest string `json:"earliest"`
		Latest   string `json:"latest"`
	} `json:"date_range"`
}

func (c *Client) GetSearchFilters(ctx context.Context) (*SearchFilters, error) {
	var out SearchFilters
	if err := c.get(ctx, "/api/search/filters", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
