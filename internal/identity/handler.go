package identity

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/middleware"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/models"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/pkg/response"
)

// Handler handles identity HTTP endpoints.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates an identity handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// Me handles GET /me.
func (h *Handler) Me(c *gin.Context) {
	profile := c.MustGet(middleware.ContextProfile).(*models.Profile)
	response.OK(c, profile)
}

// DeleteMe handles DELETE /me: ban at the provider, then stamp the profile.
func (h *Handler) DeleteMe(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if err := h.service.DeleteAccount(c.Request.Context(), userID); err != nil {
		if errors.Is(err, ErrProviderUnavailable) {
			response.ServiceUnavailable(c, "account deletion is temporarily unavailable")
			return
		}
		h.logger.Error("account deletion failed", zap.String("user_id", userID.String()), zap.Error(err))
		response.Internal(c, "failed to delete account")
		return
	}
	response.NoContent(c)
}

// Reconcile handles POST /admin/identity/reconcile.
func (h *Handler) Reconcile(c *gin.Context) {
	report, err := h.service.Reconcile(c.Request.Context())
	if err != nil {
		if errors.Is(err, ErrProviderUnavailable) {
			response.ServiceUnavailable(c, "identity provider unavailable")
			return
		}
		h.logger.Error("identity reconciliation failed", zap.Error(err))
		response.Internal(c, "reconciliation failed")
		return
	}
	response.OK(c, report)
}
