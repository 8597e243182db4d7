// Package translator integrates the external machine-translation service
// used to prefill missing languages during admin content saves.
package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Translator turns text from one catalog language into another.
type Translator interface {
	Translate(ctx context.Context, sourceLang, targetLang, text string) (string, error)
}

// HTTPClient calls the translation HTTP API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient creates a translator client for the given base URL.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type translateRequest struct {
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
	Text       string `json:"text"`
}

type translateResponse struct {
	Text string `json:"text"`
}

// Translate posts one text to the service. Any non-200 response is an error;
// callers decide how to degrade.
func (c *HTTPClient) Translate(ctx context.Context, sourceLang, targetLang, text string) (string, error) {
	if text == "" {
		return "", nil
	}
	body, err := json.Marshal(translateRequest{SourceLang: sourceLang, TargetLang: targetLang, Text: text})
	if err != nil {
		return "", fmt.Errorf("translator: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("translator: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("translator: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("translator: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translator: status %d: %s", resp.StatusCode, string(respBody))
	}
	var out translateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("translator: decode response: %w", err)
	}
	return out.Text, nil
}

// Noop returns source text unchanged. Used when no translator is configured.
type Noop struct{}

// Translate implements Translator.
func (Noop) Translate(_ context.Context, _, _ string, text string) (string, error) {
	return text, nil
}
