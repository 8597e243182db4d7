package models

import (
	"time"

	"github.com/google/uuid"
)

// AboutPage is a static site page (about, imprint, privacy).
type AboutPage struct {
	ID           uuid.UUID `json:"id"`
	Slug         string    `json:"slug"`
	Status       string    `json:"status"`
	HeroImageURL string    `json:"hero_image_url,omitempty"`
	UpdatedBy    uuid.UUID `json:"updated_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
