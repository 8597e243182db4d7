// Package payments bridges the registration ledger to the external payment
// provider: intent creation, refunds and the signed webhook channel.
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrProviderUnavailable reports that the provider could not be reached or
// answered with a server error.
var ErrProviderUnavailable = errors.New("payments: provider unavailable")

// Client calls the payment provider's HTTP API. Requests are form encoded
// and authenticated with the account's secret key.
type Client struct {
	baseURL   string
	secretKey string
	currency  string
	client    *http.Client
	logger    *zap.Logger
}

// NewClient creates a provider client. currency is the ISO code all intents
// are created in.
func NewClient(baseURL, secretKey, currency string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		currency:  currency,
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logger,
	}
}

type intentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// CreateIntent registers a payment intent for the given amount. The
// registration id travels in the intent metadata so the webhook can find the
// ledger row without any lookup table on our side.
func (c *Client) CreateIntent(ctx context.Context, registrationID uuid.UUID, amount decimal.Decimal) (string, string, error) {
	minor, err := MinorUnits(amount)
	if err != nil {
		return "", "", fmt.Errorf("payments: %w", err)
	}
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(minor, 10))
	form.Set("currency", c.currency)
	form.Set("metadata[registration_id]", registrationID.String())

	body, err := c.post(ctx, "/v1/payment_intents", form)
	if err != nil {
		return "", "", err
	}
	var intent intentResponse
	if err := json.Unmarshal(body, &intent); err != nil {
		return "", "", fmt.Errorf("payments: decode intent response: %w", err)
	}
	if intent.ID == "" || intent.ClientSecret == "" {
		return "", "", fmt.Errorf("payments: intent response missing id or client secret")
	}
	return intent.ID, intent.ClientSecret, nil
}

// RefundIntent refunds a settled payment intent in full.
func (c *Client) RefundIntent(ctx context.Context, ref string) error {
	form := url.Values{}
	form.Set("payment_intent", ref)
	_, err := c.post(ctx, "/v1/refunds", form)
	return err
}

func (c *Client) post(ctx context.Context, path string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("payments: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("provider request failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("payments: read response: %w", err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		c.logger.Warn("provider server error", zap.String("path", path), zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payments: status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
