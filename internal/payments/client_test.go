package payments

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestCreateIntent(t *testing.T) {
	regID := uuid.New()
	var got *http.Request
	var gotForm map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "pi_123", "client_secret": "pi_123_secret"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test", "eur", nil)
	ref, secret, err := client.CreateIntent(context.Background(), regID, decimal.RequireFromString("25.00"))
	if err != nil {
		t.Fatalf("CreateIntent: %v", err)
	}
	if ref != "pi_123" || secret != "pi_123_secret" {
		t.Errorf("got (%q, %q)", ref, secret)
	}
	if got.URL.Path != "/v1/payment_intents" {
		t.Errorf("path = %q", got.URL.Path)
	}
	if auth := got.Header.Get("Authorization"); auth != "Bearer sk_test" {
		t.Errorf("authorization = %q", auth)
	}
	if amount := gotForm["amount"]; len(amount) != 1 || amount[0] != "2500" {
		t.Errorf("amount = %v, want [2500]", amount)
	}
	if currency := gotForm["currency"]; len(currency) != 1 || currency[0] != "eur" {
		t.Errorf("currency = %v, want [eur]", currency)
	}
	if meta := gotForm["metadata[registration_id]"]; len(meta) != 1 || meta[0] != regID.String() {
		t.Errorf("metadata[registration_id] = %v, want %s", meta, regID)
	}
}

func TestCreateIntentRejectsInexactAmount(t *testing.T) {
	client := NewClient("http://provider.invalid", "sk_test", "eur", nil)
	if _, _, err := client.CreateIntent(context.Background(), uuid.New(), decimal.RequireFromString("10.555")); err == nil {
		t.Fatal("expected an error for a sub-cent amount")
	}
}

func TestCreateIntentProviderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test", "eur", nil)
	_, _, err := client.CreateIntent(context.Background(), uuid.New(), decimal.RequireFromString("25.00"))
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}
}

func TestRefundIntent(t *testing.T) {
	var gotForm map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotForm = r.PostForm
		if r.URL.Path != "/v1/refunds" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"id": "re_1", "status": "succeeded"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test", "eur", nil)
	if err := client.RefundIntent(context.Background(), "pi_123"); err != nil {
		t.Fatalf("RefundIntent: %v", err)
	}
	if ref := gotForm["payment_intent"]; len(ref) != 1 || ref[0] != "pi_123" {
		t.Errorf("payment_intent = %v, want [pi_123]", ref)
	}
}
