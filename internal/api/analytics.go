package api

import (
	"context"
	"net/url"

	"newskoo/internal/models"
)

func (c *Client) AnalyticsOverview(ctx context.Context) (*models.AnalyticsOverview, error) {
	var out models.AnalyticsOverview
	if err := c.get(ctx, "/api/analytics/overview", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ContentStats returns production stats over the given period
// ("7d", "30d", "90d").
func (c *Client) ContentStats(ctx context.Context, period string) (*models.ContentStats, error) {
	v := url.Values{}
	setStr(v, "period", period)
	var out models.ContentStats
	if err := c.get(ctx, "/api/analytics/content-stats", v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TrafficStats(ctx context.Context, period string) (*models.TrafficStats, error) {
	v := url.Values{}
	setStr(v, "period", period)
	var out models.TrafficStats
	if err := c.get(ctx, "/api/analytics/user-activity", v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
