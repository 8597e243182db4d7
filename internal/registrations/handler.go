package registrations

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/middleware"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/models"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/pkg/response"
)

// RegisterRequest is the body for POST /registrations. The amount is never
// accepted from the client.
type RegisterRequest struct {
	EventID       string `json:"event_id" binding:"required"`
	AttendeeName  string `json:"attendee_name" binding:"required"`
	AttendeeEmail string `json:"attendee_email" binding:"required,email"`
	AttendeePhone string `json:"attendee_phone"`
}

// View is the client-facing shape of a ledger row.
type View struct {
	ID               uuid.UUID       `json:"id"`
	EventID          uuid.UUID       `json:"event_id"`
	Status           string          `json:"status"`
	Amount           decimal.Decimal `json:"amount"`
	AttendeeName     string          `json:"attendee_name"`
	AttendeeEmail    string          `json:"attendee_email"`
	AttendeePhone    string          `json:"attendee_phone,omitempty"`
	PaymentReference *string         `json:"payment_reference,omitempty"`
	ConfirmedAt      *time.Time      `json:"confirmed_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

func newView(reg *models.Registration) View {
	return View{
		ID:               reg.ID,
		EventID:          reg.EventID,
		Status:           reg.Status,
		Amount:           reg.Amount,
		AttendeeName:     reg.AttendeeName,
		AttendeeEmail:    reg.AttendeeEmail,
		AttendeePhone:    reg.AttendeePhone,
		PaymentReference: reg.PaymentReference,
		ConfirmedAt:      reg.ConfirmedAt,
		CreatedAt:        reg.CreatedAt,
	}
}

// Handler handles registration HTTP endpoints.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a registrations handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// Register handles POST /registrations. Free events confirm immediately;
// paid events return a pending registration plus the payment client secret.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	result, err := h.service.Register(c.Request.Context(), RegisterInput{
		EventID:       eventID,
		UserID:        userID,
		AttendeeName:  req.AttendeeName,
		AttendeeEmail: req.AttendeeEmail,
		AttendeePhone: req.AttendeePhone,
	})
	if err != nil {
		switch {
		case isNoRows(err):
			response.NotFound(c, "event not found")
		case errors.Is(err, ErrEventNotPublished):
			response.BadRequest(c, "event is not open for registration")
		case errors.Is(err, ErrEventStarted):
			response.BadRequest(c, "event has already started")
		case errors.Is(err, ErrEventFull):
			response.BadRequest(c, "event is fully booked")
		case errors.Is(err, ErrAlreadyRegistered):
			response.Conflict(c, "you are already registered for this event")
		case errors.Is(err, ErrPaymentUnavailable):
			response.ServiceUnavailable(c, "payment failed, try again")
		default:
			h.logger.Error("registration failed", zap.String("event_id", eventID.String()), zap.Error(err))
			response.Internal(c, "failed to register")
		}
		return
	}

	body := gin.H{
		"type":            result.Kind,
		"registration_id": result.Registration.ID,
		"status":          result.Registration.Status,
	}
	if result.Kind == KindPaid {
		body["client_secret"] = result.ClientSecret
	}
	response.Created(c, body)
}

// Get handles GET /registrations/:id. Owner-only; clients poll this while
// awaiting the payment webhook.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid registration id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	reg, err := h.service.Get(c.Request.Context(), id, userID)
	if err != nil {
		if isNoRows(err) {
			response.NotFound(c, "registration not found")
			return
		}
		h.logger.Error("get registration failed", zap.String("id", id.String()), zap.Error(err))
		response.Internal(c, "failed to load registration")
		return
	}
	response.OK(c, newView(reg))
}

// ListMine handles GET /registrations/mine.
func (h *Handler) ListMine(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.service.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list registrations failed", zap.String("user_id", userID.String()), zap.Error(err))
		response.Internal(c, "failed to load registrations")
		return
	}
	views := make([]View, 0, len(list))
	for i := range list {
		views = append(views, newView(&list[i]))
	}
	response.OK(c, views)
}

// Cancel handles POST /registrations/:id/cancel. Only pending rows can be
// cancelled; the webhook remains the sole authority over settled payments.
func (h *Handler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid registration id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	reg, err := h.service.Cancel(c.Request.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotCancellable):
			response.Conflict(c, "registration can no longer be cancelled")
		case isNoRows(err):
			response.NotFound(c, "registration not found")
		default:
			h.logger.Error("cancel registration failed", zap.String("id", id.String()), zap.Error(err))
			response.Internal(c, "failed to cancel registration")
		}
		return
	}
	response.OK(c, newView(reg))
}

// Refund handles POST /admin/registrations/:id/refund: provider refund first,
// then confirmed moves to refunded.
func (h *Handler) Refund(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid registration id")
		return
	}
	reg, err := h.service.Refund(c.Request.Context(), id)
	if err != nil {
		switch {
		case isNoRows(err):
			response.NotFound(c, "registration not found")
		case errors.Is(err, ErrNotRefundable):
			response.Conflict(c, "registration cannot be refunded")
		case errors.Is(err, ErrPaymentUnavailable):
			response.ServiceUnavailable(c, "refund failed, try again")
		default:
			h.logger.Error("refund failed", zap.String("id", id.String()), zap.Error(err))
			response.Internal(c, "failed to refund registration")
		}
		return
	}
	response.OK(c, newView(reg))
}
