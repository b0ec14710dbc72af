package models

import "time"

// PostStatus is the publication state of a post.
type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
	PostHidden    PostStatus = "hidden"
)

type Post struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	DraftID       *int64     `json:"draft_id,omitempty"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Content       string     `json:"content"`
	Excerpt       string     `json:"excerpt"`
	FeaturedImage string     `json:"featured_image,omitempty"`
	CategoryID    *int64     `json:"category_id,omitempty"`
	Status        PostStatus `json:"status"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	Views         int64      `json:"views"`
	Likes         int64      `json:"likes"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Category *Category `json:"category,omitempty"`
	Tags     []Tag     `json:"tags,omitempty"`
	User     *User     `json:"user,omitempty"`
}

type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	Content   string    `json:"content"`
	Author    *User     `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Draft struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	CategoryID      *int64    `json:"category_id,omitempty"`
	WritingStyleID  *int64    `json:"writing_style_id,omitempty"`
	FeaturedImage   string    `json:"featured_image,omitempty"`
	AIGenerated     bool      `json:"ai_generated"`
	SimilarityScore *float64  `json:"similarity_score,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Category *Category `json:"category,omitempty"`
	Tags     []Tag     `json:"tags,omitempty"`
}
