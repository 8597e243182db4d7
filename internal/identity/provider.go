package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Provider is the identity provider's admin API as the core consumes it.
type Provider interface {
	// Ban blocks the user at the provider. Banning an already-banned user
	// succeeds so the call can be re-asserted during reconciliation.
	Ban(ctx context.Context, userID uuid.UUID) error
	// ListBanned returns the ids of all provider-banned users.
	ListBanned(ctx context.Context) ([]uuid.UUID, error)
}

// HTTPProvider calls the provider admin API with a server-side admin key.
type HTTPProvider struct {
	baseURL  string
	adminKey string
	client   *http.Client
}

// NewHTTPProvider creates a provider admin client.
func NewHTTPProvider(baseURL, adminKey string) *HTTPProvider {
	return &HTTPProvider{
		baseURL:  strings.TrimRight(baseURL, "/"),
		adminKey: adminKey,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Ban implements Provider. A conflict response means the user is already
// banned, which is the state we want.
func (p *HTTPProvider) Ban(ctx context.Context, userID uuid.UUID) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/admin/users/"+userID.String()+"/ban", nil)
	if err != nil {
		return fmt.Errorf("identity: create ban request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.adminKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("identity: ban request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 || resp.StatusCode == http.StatusConflict {
		return nil
	}
	return fmt.Errorf("identity: ban returned status %d", resp.StatusCode)
}

// ListBanned implements Provider.
func (p *HTTPProvider) ListBanned(ctx context.Context) ([]uuid.UUID, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/admin/users/banned", nil)
	if err != nil {
		return nil, fmt.Errorf("identity: create list request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.adminKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity: list banned request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("identity: read list response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity: list banned returned status %d: %s", resp.StatusCode, string(body))
	}
	var out struct {
		UserIDs []string `json:"user_ids"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("identity: decode list response: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(out.UserIDs))
	for _, raw := range out.UserIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("identity: provider returned invalid user id %q", raw)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
