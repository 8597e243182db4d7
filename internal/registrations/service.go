package registrations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/i18n"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/models"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/notifier"
)

var (
	// ErrEventNotPublished rejects registration for draft, cancelled or
	// completed events.
	ErrEventNotPublished = errors.New("registrations: event is not open for registration")
	// ErrEventStarted rejects registration once the event start time has passed.
	ErrEventStarted = errors.New("registrations: event has already started")
	// ErrEventFull rejects registration when capacity is exhausted.
	ErrEventFull = errors.New("registrations: event is fully booked")
	// ErrAlreadyRegistered rejects a new payment cycle over a confirmed or
	// refunded row. Paying twice for the same seat must be impossible.
	ErrAlreadyRegistered = errors.New("registrations: already registered for this event")
	// ErrPaymentUnavailable reports that the payment provider could not be
	// reached. The pending ledger row is kept for a later retry.
	ErrPaymentUnavailable = errors.New("registrations: payment provider unavailable")
	// ErrNotCancellable reports a cancel attempt on a terminal row.
	ErrNotCancellable = errors.New("registrations: registration can no longer be cancelled")
	// ErrNotRefundable reports a refund attempt on anything but a paid
	// confirmed row.
	ErrNotRefundable = errors.New("registrations: registration cannot be refunded")
)

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// Store is the ledger persistence the service drives. *Repository implements it.
type Store interface {
	UpsertPending(ctx context.Context, reg *models.Registration) error
	UpsertConfirmed(ctx context.Context, reg *models.Registration) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Registration, error)
	GetByEventAndUser(ctx context.Context, eventID, userID uuid.UUID) (*models.Registration, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Registration, error)
	CountActiveForEvent(ctx context.Context, eventID uuid.UUID) (int, error)
	AttachPaymentReference(ctx context.Context, id uuid.UUID, ref string) error
	MarkPaymentResult(ctx context.Context, id uuid.UUID, paymentRef string, succeeded bool) (*models.Registration, error)
	Cancel(ctx context.Context, id, userID uuid.UUID) (*models.Registration, error)
	MarkRefunded(ctx context.Context, id uuid.UUID) (*models.Registration, error)
}

// EventStore supplies the event rows registrations are validated against.
type EventStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	Translations(ctx context.Context, eventID uuid.UUID) ([]models.Translation, error)
}

// PaymentIntents is the payment provider bridge for paid registrations.
type PaymentIntents interface {
	CreateIntent(ctx context.Context, registrationID uuid.UUID, amount decimal.Decimal) (ref, clientSecret string, err error)
	RefundIntent(ctx context.Context, ref string) error
}

// Service runs the registration state machine.
type Service struct {
	store   Store
	events  EventStore
	intents PaymentIntents
	notify  notifier.Notifier
	logger  *zap.Logger
}

// NewService creates a registration service.
func NewService(store Store, events EventStore, intents PaymentIntents, notify notifier.Notifier, logger *zap.Logger) *Service {
	if notify == nil {
		notify = notifier.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, events: events, intents: intents, notify: notify, logger: logger}
}

// Registration kinds returned to the client.
const (
	KindFree = "free"
	KindPaid = "paid"
)

// RegisterInput is a registration attempt. The amount is never part of the
// input, it is derived from the event row.
type RegisterInput struct {
	EventID       uuid.UUID
	UserID        uuid.UUID
	AttendeeName  string
	AttendeeEmail string
	AttendeePhone string
}

// RegisterResult tells the client whether the registration is complete
// (free) or awaits payment (paid, with the provider client secret).
type RegisterResult struct {
	Kind         string
	Registration *models.Registration
	ClientSecret string
}

// Register runs a registration attempt for an event. Free events confirm
// synchronously. Paid events commit a pending row first, then create the
// payment intent and attach its reference in a separate update, so the
// external call never holds a database transaction open.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	event, err := s.events.GetByID(ctx, in.EventID)
	if err != nil {
		return nil, err
	}
	if event.Status != models.EventStatusPublished {
		return nil, ErrEventNotPublished
	}
	if !event.StartsAt.After(time.Now()) {
		return nil, ErrEventStarted
	}
	if event.Capacity > 0 {
		taken, err := s.store.CountActiveForEvent(ctx, event.ID)
		if err != nil {
			return nil, err
		}
		if taken >= event.Capacity && !s.holdsSeat(ctx, event.ID, in.UserID) {
			return nil, ErrEventFull
		}
	}

	reg := &models.Registration{
		EventID:       event.ID,
		UserID:        in.UserID,
		Amount:        event.Price,
		AttendeeName:  in.AttendeeName,
		AttendeeEmail: in.AttendeeEmail,
		AttendeePhone: in.AttendeePhone,
	}

	if event.IsFree() {
		return s.registerFree(ctx, event, reg)
	}
	return s.registerPaid(ctx, reg)
}

// holdsSeat reports whether the user already occupies one of the counted
// seats, in which case a retry must not be rejected as full.
func (s *Service) holdsSeat(ctx context.Context, eventID, userID uuid.UUID) bool {
	existing, err := s.store.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		return false
	}
	return existing.Status == models.RegistrationStatusPending || existing.Status == models.RegistrationStatusConfirmed
}

func (s *Service) registerFree(ctx context.Context, event *models.Event, reg *models.Registration) (*RegisterResult, error) {
	if err := s.store.UpsertConfirmed(ctx, reg); err != nil {
		if !isNoRows(err) {
			return nil, err
		}
		existing, exErr := s.store.GetByEventAndUser(ctx, reg.EventID, reg.UserID)
		if exErr != nil {
			return nil, exErr
		}
		if existing.Status == models.RegistrationStatusConfirmed {
			// Repeat registration for a free event returns the same row.
			return &RegisterResult{Kind: KindFree, Registration: existing}, nil
		}
		return nil, ErrAlreadyRegistered
	}
	s.announce(ctx, event, reg)
	return &RegisterResult{Kind: KindFree, Registration: reg}, nil
}

func (s *Service) registerPaid(ctx context.Context, reg *models.Registration) (*RegisterResult, error) {
	if err := s.store.UpsertPending(ctx, reg); err != nil {
		if isNoRows(err) {
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}
	ref, secret, err := s.intents.CreateIntent(ctx, reg.ID, reg.Amount)
	if err != nil {
		s.logger.Error("payment intent creation failed",
			zap.String("registration_id", reg.ID.String()), zap.Error(err))
		return nil, ErrPaymentUnavailable
	}
	if err := s.store.AttachPaymentReference(ctx, reg.ID, ref); err != nil {
		return nil, fmt.Errorf("attach payment reference: %w", err)
	}
	reg.PaymentReference = &ref
	return &RegisterResult{Kind: KindPaid, Registration: reg, ClientSecret: secret}, nil
}

// HandlePaymentResult applies a provider-reported outcome to the ledger.
// Transitions that no row accepts (unknown id, stale reference, already
// settled differently) are logged and swallowed so the provider stops
// retrying; database errors are returned so it retries.
func (s *Service) HandlePaymentResult(ctx context.Context, registrationID uuid.UUID, paymentRef string, succeeded bool) error {
	reg, err := s.store.MarkPaymentResult(ctx, registrationID, paymentRef, succeeded)
	if err != nil {
		if isNoRows(err) {
			s.logger.Warn("payment webhook matched no transition",
				zap.String("registration_id", registrationID.String()),
				zap.String("payment_reference", paymentRef),
				zap.Bool("succeeded", succeeded))
			return nil
		}
		return err
	}
	if succeeded {
		if event, evErr := s.events.GetByID(ctx, reg.EventID); evErr == nil {
			s.announce(ctx, event, reg)
		} else {
			s.logger.Warn("event lookup for notification failed",
				zap.String("event_id", reg.EventID.String()), zap.Error(evErr))
		}
	}
	return nil
}

// Get returns a registration owned by the caller. Foreign rows are reported
// as not found.
func (s *Service) Get(ctx context.Context, id, userID uuid.UUID) (*models.Registration, error) {
	reg, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	return reg, nil
}

// ListMine returns all registrations of the caller.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID) ([]models.Registration, error) {
	return s.store.ListByUser(ctx, userID)
}

// Cancel moves the caller's pending registration to cancelled.
func (s *Service) Cancel(ctx context.Context, id, userID uuid.UUID) (*models.Registration, error) {
	reg, err := s.store.Cancel(ctx, id, userID)
	if err == nil {
		return reg, nil
	}
	if !isNoRows(err) {
		return nil, err
	}
	existing, exErr := s.store.GetByID(ctx, id)
	if exErr == nil && existing.UserID == userID {
		return nil, ErrNotCancellable
	}
	return nil, err
}

// Refund refunds a confirmed paid registration through the provider and
// marks the row refunded. The provider call runs first so a crash in between
// leaves a detectable confirmed row with a provider-side refund, never a
// refunded row without one.
func (s *Service) Refund(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	reg, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg.Status != models.RegistrationStatusConfirmed || reg.PaymentReference == nil {
		return nil, ErrNotRefundable
	}
	if err := s.intents.RefundIntent(ctx, *reg.PaymentReference); err != nil {
		s.logger.Error("refund failed",
			zap.String("registration_id", id.String()),
			zap.String("payment_reference", *reg.PaymentReference), zap.Error(err))
		return nil, ErrPaymentUnavailable
	}
	updated, err := s.store.MarkRefunded(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotRefundable
		}
		return nil, err
	}
	return updated, nil
}

// announce reports a confirmed registration to the notifier. Failures are
// logged only, a missed announcement never fails a registration.
func (s *Service) announce(ctx context.Context, event *models.Event, reg *models.Registration) {
	title := event.Slug
	if translations, err := s.events.Translations(ctx, event.ID); err == nil {
		for _, t := range translations {
			if t.Lang == i18n.DefaultLang {
				title = t.Title
				break
			}
		}
	}
	if err := s.notify.RegistrationConfirmed(ctx, title, reg.AttendeeName, reg.AttendeeEmail); err != nil {
		s.logger.Warn("registration notification failed",
			zap.String("registration_id", reg.ID.String()), zap.Error(err))
	}
}
