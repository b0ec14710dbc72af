package models

import "time"

// Image is an entry in the admin image library. The backend stores
// several renditions and returns their public URLs.
type Image struct {
	ID           int64     `json:"id"`
	Filename     string    `json:"filename"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	Width        int       `json:"width,omitempty"`
	Height       int       `json:"height,omitempty"`
	SizeBytes    int64     `json:"size_bytes,omitempty"`
	UploadedAt   time.Time `json:"uploaded_at"`
}
