package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a blog post. Its translated text lives in content_translations.
type Post struct {
	ID            uuid.UUID  `json:"id"`
	Slug          string     `json:"slug"`
	Status        string     `json:"status"`
	CoverImageURL string     `json:"cover_image_url,omitempty"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	CreatedBy     uuid.UUID  `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
