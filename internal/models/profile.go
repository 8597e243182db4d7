package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the local account row for a provider-issued identity. The ID is
// the provider's subject claim; is_admin is the only capability flag.
type Profile struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name,omitempty"`
	IsAdmin     bool       `json:"is_admin"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
