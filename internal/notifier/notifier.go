package notifier

import "context"

// Notifier announces confirmed registrations to an external channel.
type Notifier interface {
	RegistrationConfirmed(ctx context.Context, eventTitle, attendeeName, attendeeEmail string) error
}

// Noop is a Notifier that does nothing, used when no channel is configured.
type Noop struct{}

// RegistrationConfirmed implements Notifier.
func (Noop) RegistrationConfirmed(ctx context.Context, eventTitle, attendeeName, attendeeEmail string) error {
	return nil
}
