package payments

import (
	"context"
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Holy-Fun-Yeah/hfy-website-sub001/pkg/response"
)

// Provider event types the reconciler acts on. Everything else is
// acknowledged untouched so new provider event types never break delivery.
const (
	eventPaymentSucceeded = "payment_succeeded"
	eventPaymentFailed    = "payment_failed"
)

// Ledger applies provider-reported payment outcomes to registrations.
// Outcomes nothing accepts are swallowed after logging; only database
// trouble comes back as an error.
type Ledger interface {
	HandlePaymentResult(ctx context.Context, registrationID uuid.UUID, paymentRef string, succeeded bool) error
}

type webhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		ID       string            `json:"id"`
		Metadata map[string]string `json:"metadata"`
	} `json:"data"`
}

// WebhookHandler receives signed provider callbacks.
type WebhookHandler struct {
	secret string
	ledger Ledger
	logger *zap.Logger
}

// NewWebhookHandler creates a webhook handler verifying against the shared
// provider secret.
func NewWebhookHandler(secret string, ledger Ledger, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{secret: secret, ledger: ledger, logger: logger}
}

// Handle processes POST /payments/webhook. The signature is the only
// authentication on this channel: a bad signature is a hard 400. Once the
// signature holds, data issues are logged and acknowledged so the provider
// does not retry a permanently unprocessable event; database errors return a
// 5xx so it does retry.
func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, "unreadable body")
		return
	}
	if !VerifySignature(h.secret, body, c.GetHeader(SignatureHeader)) {
		response.BadRequest(c, "invalid signature")
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Warn("webhook body not parseable", zap.Error(err))
		h.ack(c)
		return
	}

	var succeeded bool
	switch event.Type {
	case eventPaymentSucceeded:
		succeeded = true
	case eventPaymentFailed:
		succeeded = false
	default:
		h.ack(c)
		return
	}

	registrationID, err := uuid.Parse(event.Data.Metadata["registration_id"])
	if err != nil {
		h.logger.Warn("webhook carries no usable registration id",
			zap.String("provider_event_id", event.ID), zap.String("type", event.Type))
		h.ack(c)
		return
	}

	if err := h.ledger.HandlePaymentResult(c.Request.Context(), registrationID, event.Data.ID, succeeded); err != nil {
		h.logger.Error("webhook processing failed",
			zap.String("provider_event_id", event.ID),
			zap.String("registration_id", registrationID.String()), zap.Error(err))
		response.Internal(c, "failed to process webhook")
		return
	}
	h.ack(c)
}

func (h *WebhookHandler) ack(c *gin.Context) {
	response.OK(c, gin.H{"received": true})
}
