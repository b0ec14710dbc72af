package api

import (
	"context"
	"net/http"
)

// sessionIDHeader correlates anonymous activity across requests.
const sessionIDHeader = "X-Session-ID"

// Activity is one tracked user action.
type Activity struct {
	ActivityType string `json:"activity_type"`
	ResourceType string `json:"resource_type,omitempty"`
	ResourceID   int64  `json:"resource_id,omitempty"`
	ActionDetail any    `json:"action_detail,omitempty"`
}

// PageView reports a visited page, optionally with dwell time.
type PageView struct {
	Path     string `json:"path"`
	Title    string `json:"title,omitempty"`
	Duration int64  `json:"duration,omitempty"` // seconds
}

// SearchLog records a search and, when known, the clicked result.
type SearchLog struct {
	Query           string `json:"query"`
	ResultsCount    int    `json:"results_count,omitempty"`
	ClickedResultID int64  `json:"clicked_result_id,omitempty"`
	ClickedPosition int    `json:"clicked_result_position,omitempty"`
}

func (c *Client) TrackActivity(ctx context.Context, sessionID string, a Activity) error {
	h := http.Header{sessionIDHeader: []string{sessionID}}
	return c.do(ctx, http.MethodPost, "/api/tracking/activity", nil, h, a, nil)
}

func (c *Client) TrackPageView(ctx context.Context, sessionID string, pv PageView) error {
	h := http.Header{sessionIDHeader: []string{sessionID}}
	return c.do(ctx, http.MethodPost, "/api/tracking/pageview", nil, h, pv, nil)
}

func (c *Client) TrackSearch(ctx context.Context, sessionID string, sl SearchLog) error {
	h := http.Header{sessionIDHeader: []string{sessionID}}
	return c.do(ctx, http.MethodPost, "/api/tracking/search", nil, h, sl, nil)
}
