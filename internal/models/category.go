package models

import "time"

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	PostCount   int64     `json:"post_count,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	PostCount int64     `json:"post_count,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// WritingStyle is an author-defined tone/style preset applied when
// drafting content in the admin console.
type WritingStyle struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Tone        string    `json:"tone"`
	StyleGuide  string    `json:"style_guide,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
