package api

import (
	"context"
	"fmt"

	"newskoo/internal/models"
)

func (c *Client) ListWritingStyles(ctx context.Context) ([]models.WritingStyle, error) {
	var out listEnvelope[models.WritingStyle]
	if err := c.get(ctx, "/api/writing-styles", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

type WritingStyleInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Tone        string `json:"tone"`
	StyleGuide  string `json:"style_guide,omitempty"`
}

func (c *Client) CreateWritingStyle(ctx context.Context, in WritingStyleInput) (*models.WritingStyle, error) {
	var out models.WritingStyle
	if err := c.post(ctx, "/api/writing-styles", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateWritingStyle(ctx context.Context, id int64, in WritingStyleInput) (*models.WritingStyle, error) {
	var out models.WritingStyle
	if err := c.put(ctx, fmt.Sprintf("/api/writing-styles/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteWritingStyle(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/writing-styles/%d", id))
}
