package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventStatus values. Unlike posts, events can be cancelled or completed;
// registration is only open while an event is published and in the future.
const (
	EventStatusDraft     = "draft"
	EventStatusPublished = "published"
	EventStatusCancelled = "cancelled"
	EventStatusCompleted = "completed"
)

// Event is a community event with optional paid registration. Price is in
// major currency units (e.g. 25.00); zero means registration is free.
type Event struct {
	ID             uuid.UUID       `json:"id"`
	Slug           string          `json:"slug"`
	Status         string          `json:"status"`
	StartsAt       time.Time       `json:"starts_at"`
	EndsAt         *time.Time      `json:"ends_at,omitempty"`
	Venue          string          `json:"venue,omitempty"`
	BannerImageURL string          `json:"banner_image_url,omitempty"`
	Price          decimal.Decimal `json:"price"`
	Capacity       int             `json:"capacity"`
	CreatedBy      uuid.UUID       `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// IsFree reports whether registration requires no payment.
func (e *Event) IsFree() bool { return e.Price.IsZero() }
