package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/models"
)

const testSecret = "test-signing-secret"

type memProfiles struct {
	rows map[uuid.UUID]*models.Profile
}

func newMemProfiles() *memProfiles {
	return &memProfiles{rows: map[uuid.UUID]*models.Profile{}}
}

func (m *memProfiles) Upsert(ctx context.Context, p *models.Profile) error {
	if existing, ok := m.rows[p.ID]; ok {
		existing.Email = p.Email
		existing.DisplayName = p.DisplayName
		*p = *existing
		return nil
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.rows[p.ID] = &cp
	return nil
}

func (m *memProfiles) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	p, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (m *memProfiles) SoftDelete(ctx context.Context, id uuid.UUID) error {
	p, ok := m.rows[id]
	if !ok {
		return nil
	}
	if p.DeletedAt == nil {
		now := time.Now()
		p.DeletedAt = &now
	}
	return nil
}

func (m *memProfiles) ListDeleted(ctx context.Context) ([]models.Profile, error) {
	var list []models.Profile
	for _, p := range m.rows {
		if p.DeletedAt != nil {
			list = append(list, *p)
		}
	}
	return list, nil
}

type fakeProvider struct {
	banned   map[uuid.UUID]bool
	banErr   error
	banCalls int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{banned: map[uuid.UUID]bool{}}
}

func (f *fakeProvider) Ban(ctx context.Context, userID uuid.UUID) error {
	f.banCalls++
	if f.banErr != nil {
		return f.banErr
	}
	f.banned[userID] = true
	return nil
}

func (f *fakeProvider) ListBanned(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id := range f.banned {
		ids = append(ids, id)
	}
	return ids, nil
}

func mintToken(t *testing.T, secret, subject, email, name string, expiresAt time.Time) string {
	t.Helper()
	claims := Claims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newTestService() (*Service, *memProfiles, *fakeProvider) {
	store := newMemProfiles()
	provider := newFakeProvider()
	svc := NewService(NewTokenVerifier(testSecret), store, provider, nil)
	return svc, store, provider
}

func TestVerifyRequestProvisionsProfile(t *testing.T) {
	svc, store, _ := newTestService()
	userID := uuid.New()
	token := mintToken(t, testSecret, userID.String(), "ada@example.com", "Ada", time.Now().Add(time.Hour))

	profile, err := svc.VerifyRequest(context.Background(), token)
	if err != nil {
		t.Fatalf("VerifyRequest: %v", err)
	}
	if profile.ID != userID || profile.Email != "ada@example.com" || profile.DisplayName != "Ada" {
		t.Errorf("unexpected profile %+v", profile)
	}
	if profile.IsAdmin {
		t.Error("fresh profiles must not be admin")
	}
	if len(store.rows) != 1 {
		t.Errorf("rows = %d, want 1", len(store.rows))
	}

	again, err := svc.VerifyRequest(context.Background(), token)
	if err != nil {
		t.Fatalf("second VerifyRequest: %v", err)
	}
	if again.ID != userID || len(store.rows) != 1 {
		t.Errorf("repeat verification duplicated the profile")
	}
}

func TestVerifyRequestSyncsContactFields(t *testing.T) {
	svc, store, _ := newTestService()
	userID := uuid.New()
	store.rows[userID] = &models.Profile{ID: userID, Email: "old@example.com", DisplayName: "Old", IsAdmin: true}

	token := mintToken(t, testSecret, userID.String(), "new@example.com", "New", time.Now().Add(time.Hour))
	profile, err := svc.VerifyRequest(context.Background(), token)
	if err != nil {
		t.Fatalf("VerifyRequest: %v", err)
	}
	if profile.Email != "new@example.com" || profile.DisplayName != "New" {
		t.Errorf("contact fields not synced: %+v", profile)
	}
	if !profile.IsAdmin {
		t.Error("sync must not drop the admin flag")
	}
}

func TestVerifyRequestRejectsDeletedAccount(t *testing.T) {
	svc, store, _ := newTestService()
	userID := uuid.New()
	now := time.Now()
	store.rows[userID] = &models.Profile{ID: userID, Email: "ada@example.com", DeletedAt: &now}

	token := mintToken(t, testSecret, userID.String(), "ada@example.com", "Ada", time.Now().Add(time.Hour))
	if _, err := svc.VerifyRequest(context.Background(), token); !errors.Is(err, ErrAccountDeleted) {
		t.Fatalf("err = %v, want ErrAccountDeleted", err)
	}
}

func TestVerifyRequestRejectsBadTokens(t *testing.T) {
	svc, _, _ := newTestService()
	userID := uuid.New()

	cases := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", mintToken(t, "other-secret", userID.String(), "a@example.com", "", time.Now().Add(time.Hour))},
		{"expired", mintToken(t, testSecret, userID.String(), "a@example.com", "", time.Now().Add(-time.Hour))},
		{"non-uuid subject", mintToken(t, testSecret, "user-42", "a@example.com", "", time.Now().Add(time.Hour))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.VerifyRequest(context.Background(), tc.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("err = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestDeleteAccountBansBeforeStamping(t *testing.T) {
	svc, store, provider := newTestService()
	userID := uuid.New()
	store.rows[userID] = &models.Profile{ID: userID, Email: "ada@example.com"}

	if err := svc.DeleteAccount(context.Background(), userID); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if !provider.banned[userID] {
		t.Error("provider ban not issued")
	}
	if store.rows[userID].DeletedAt == nil {
		t.Error("profile not stamped")
	}
}

func TestDeleteAccountKeepsProfileWhenBanFails(t *testing.T) {
	svc, store, provider := newTestService()
	provider.banErr = errors.New("provider down")
	userID := uuid.New()
	store.rows[userID] = &models.Profile{ID: userID, Email: "ada@example.com"}

	err := svc.DeleteAccount(context.Background(), userID)
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}
	if store.rows[userID].DeletedAt != nil {
		t.Error("profile stamped although the ban failed")
	}
}

func TestDeleteAccountWithoutProvider(t *testing.T) {
	store := newMemProfiles()
	svc := NewService(NewTokenVerifier(testSecret), store, nil, nil)
	if err := svc.DeleteAccount(context.Background(), uuid.New()); !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}
}

func TestReconcile(t *testing.T) {
	svc, store, provider := newTestService()

	// Deleted locally but the ban never landed.
	halfDeleted := uuid.New()
	now := time.Now()
	store.rows[halfDeleted] = &models.Profile{ID: halfDeleted, Email: "a@example.com", DeletedAt: &now}

	// Banned at the provider but never stamped locally.
	halfBanned := uuid.New()
	store.rows[halfBanned] = &models.Profile{ID: halfBanned, Email: "b@example.com"}
	provider.banned[halfBanned] = true

	// Banned at the provider, unknown here.
	provider.banned[uuid.New()] = true

	report, err := svc.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if report.BansReasserted != 1 {
		t.Errorf("bans reasserted = %d, want 1", report.BansReasserted)
	}
	if !provider.banned[halfDeleted] {
		t.Error("missing ban not reasserted")
	}
	if report.ProfilesStamped != 1 {
		t.Errorf("profiles stamped = %d, want 1", report.ProfilesStamped)
	}
	if store.rows[halfBanned].DeletedAt == nil {
		t.Error("banned profile not stamped")
	}
}
