package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/models"
)

var (
	// ErrAccountDeleted rejects tokens of soft-deleted accounts.
	ErrAccountDeleted = errors.New("identity: account deleted")
	// ErrProviderUnavailable reports that the provider admin API is not
	// configured or not reachable.
	ErrProviderUnavailable = errors.New("identity: provider unavailable")
)

// ProfileStore is the profile persistence the service drives. *Repository
// implements it.
type ProfileStore interface {
	Upsert(ctx context.Context, p *models.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	ListDeleted(ctx context.Context) ([]models.Profile, error)
}

// Service validates inbound identities and runs the deletion saga.
type Service struct {
	tokens   *TokenVerifier
	store    ProfileStore
	provider Provider
	logger   *zap.Logger
}

// NewService creates an identity service. provider may be nil when no admin
// API is configured; account deletion is then unavailable.
func NewService(tokens *TokenVerifier, store ProfileStore, provider Provider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{tokens: tokens, store: store, provider: provider, logger: logger}
}

// VerifyRequest validates a bearer token and returns the local profile,
// provisioning it on first sight and keeping contact fields in sync with the
// provider claims. Deleted accounts fail. Satisfies middleware.AuthVerifier.
func (s *Service) VerifyRequest(ctx context.Context, token string) (*models.Profile, error) {
	userID, claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	profile, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		profile = &models.Profile{ID: userID, Email: claims.Email, DisplayName: claims.Name}
		if err := s.store.Upsert(ctx, profile); err != nil {
			return nil, err
		}
		return profile, nil
	}
	if profile.DeletedAt != nil {
		return nil, ErrAccountDeleted
	}
	if profile.Email != claims.Email || (claims.Name != "" && profile.DisplayName != claims.Name) {
		profile.Email = claims.Email
		if claims.Name != "" {
			profile.DisplayName = claims.Name
		}
		if err := s.store.Upsert(ctx, profile); err != nil {
			return nil, err
		}
	}
	return profile, nil
}

// DeleteAccount runs the two-step deletion saga: ban at the provider first,
// stamp deleted_at second. A crash between the steps leaves a provider ban
// without a local stamp, which Reconcile repairs; the reverse order would
// leave an account that looks deleted here but can still authenticate.
func (s *Service) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if s.provider == nil {
		return ErrProviderUnavailable
	}
	if err := s.provider.Ban(ctx, userID); err != nil {
		s.logger.Error("provider ban failed", zap.String("user_id", userID.String()), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return s.store.SoftDelete(ctx, userID)
}

// ReconcileReport summarizes a deletion reconciliation pass.
type ReconcileReport struct {
	BansReasserted  int `json:"bans_reasserted"`
	ProfilesStamped int `json:"profiles_stamped"`
}

// Reconcile repairs half-finished deletion sagas in both directions: every
// locally-deleted profile gets its provider ban re-asserted, and every
// provider-banned user missing the local stamp gets one.
func (s *Service) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	if s.provider == nil {
		return nil, ErrProviderUnavailable
	}
	report := &ReconcileReport{}

	deleted, err := s.store.ListDeleted(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range deleted {
		if err := s.provider.Ban(ctx, p.ID); err != nil {
			return report, fmt.Errorf("reassert ban for %s: %w", p.ID, err)
		}
		report.BansReasserted++
	}

	banned, err := s.provider.ListBanned(ctx)
	if err != nil {
		return report, err
	}
	for _, id := range banned {
		profile, err := s.store.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return report, err
		}
		if profile.DeletedAt == nil {
			if err := s.store.SoftDelete(ctx, id); err != nil {
				return report, err
			}
			report.ProfilesStamped++
		}
	}
	return report, nil
}
