package models

// AnalyticsOverview is the headline counters shown on the admin dashboard.
type AnalyticsOverview struct {
	TotalPosts      int64 `json:"total_posts"`
	PublishedPosts  int64 `json:"published_posts"`
	TotalDrafts     int64 `json:"total_drafts"`
	TotalUsers      int64 `json:"total_users"`
	TotalCategories int64 `json:"total_categories"`
	TotalTags       int64 `json:"total_tags"`
}

type PeriodCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type LabelCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type ContentStats struct {
	PostsByPeriod    []PeriodCount `json:"posts_by_period"`
	DraftsByPeriod   []PeriodCount `json:"drafts_by_period"`
	ByCategory       []LabelCount  `json:"by_category"`
	ByTag            []LabelCount  `json:"by_tag"`
	AIGeneratedPct   float64       `json:"ai_generated_percentage"`
	ManualWrittenPct float64       `json:"manual_generated_percentage"`
}

type TrafficStats struct {
	PageviewsByPeriod []PeriodCount `json:"pageviews_by_period"`
	UniqueSessions    int64         `json:"unique_sessions"`
	TopPages          []LabelCount  `json:"top_pages"`
	TopReferrers      []LabelCount  `json:"top_referrers"`
	AvgDurationSec    float64       `json:"avg_duration_seconds"`
}

// TrendingSearch is one entry of the trending-search widget.
type TrendingSearch struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}
