package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegistrationStatus values for event registrations.
const (
	RegistrationStatusPending   = "pending"
	RegistrationStatusConfirmed = "confirmed"
	RegistrationStatusFailed    = "failed"
	RegistrationStatusCancelled = "cancelled"
	RegistrationStatusRefunded  = "refunded"
)

// Registration is a user's registration for an event. At most one row exists
// per (event, user) pair.
type Registration struct {
	ID               uuid.UUID       `json:"id"`
	EventID          uuid.UUID       `json:"event_id"`
	UserID           uuid.UUID       `json:"user_id"`
	Status           string          `json:"status"`
	Amount           decimal.Decimal `json:"amount"`
	AttendeeName     string          `json:"attendee_name"`
	AttendeeEmail    string          `json:"attendee_email"`
	AttendeePhone    string          `json:"attendee_phone,omitempty"`
	PaymentReference *string         `json:"payment_reference,omitempty"`
	ConfirmedAt      *time.Time      `json:"confirmed_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// IsTerminal reports whether the registration can no longer change except for
// a refund of a confirmed paid seat.
func (r *Registration) IsTerminal() bool {
	switch r.Status {
	case RegistrationStatusConfirmed, RegistrationStatusCancelled, RegistrationStatusRefunded:
		return true
	}
	return false
}
