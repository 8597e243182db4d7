package models

import (
	"time"

	"github.com/google/uuid"
)

// ContentStatus values for posts, events and about pages.
const (
	ContentStatusDraft     = "draft"
	ContentStatusPublished = "published"
	ContentStatusArchived  = "archived"
)

// Translation is one language's text for a content entity. The entity ID
// refers to a post, event or about page; UUIDs keep the reference unambiguous
// across the three tables.
type Translation struct {
	EntityID  uuid.UUID `json:"entity_id"`
	Lang      string    `json:"lang"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary,omitempty"`
	Body      string    `json:"body,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ResolvedContent is the translation chosen for a request, annotated with the
// fallback outcome so clients can offer a language switch.
type ResolvedContent struct {
	Lang               string   `json:"lang"`
	IsFallback         bool     `json:"is_fallback"`
	AvailableLanguages []string `json:"available_languages"`
	Title              string   `json:"title"`
	Summary            string   `json:"summary,omitempty"`
	Body               string   `json:"body,omitempty"`
	BodyHTML           string   `json:"body_html,omitempty"`
}
