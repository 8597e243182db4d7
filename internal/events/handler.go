package events

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/content"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/i18n"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/middleware"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/models"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/translator"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/pkg/response"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/pkg/storage"
)

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func validStatus(s string) bool {
	switch s {
	case models.EventStatusDraft, models.EventStatusPublished, models.EventStatusCancelled, models.EventStatusCompleted:
		return true
	}
	return false
}

// SaveRequest is the body for admin event create/update. Price is a decimal
// string ("25.00"); "0" or empty means free.
type SaveRequest struct {
	Slug             string                     `json:"slug" binding:"required"`
	Status           string                     `json:"status"`
	StartsAt         string                     `json:"starts_at" binding:"required"`
	EndsAt           *string                    `json:"ends_at"`
	Venue            string                     `json:"venue"`
	BannerImageURL   string                     `json:"banner_image_url"`
	Price            string                     `json:"price"`
	Capacity         int                        `json:"capacity"`
	Translations     []content.TranslationInput `json:"translations" binding:"required"`
	TranslateMissing bool                       `json:"translate_missing"`
}

// View is the public shape of an event resolved to one language.
type View struct {
	ID                 uuid.UUID       `json:"id"`
	Slug               string          `json:"slug"`
	Status             string          `json:"status"`
	StartsAt           time.Time       `json:"starts_at"`
	EndsAt             *time.Time      `json:"ends_at,omitempty"`
	Venue              string          `json:"venue,omitempty"`
	BannerImageURL     string          `json:"banner_image_url,omitempty"`
	Price              decimal.Decimal `json:"price"`
	IsFree             bool            `json:"is_free"`
	Capacity           int             `json:"capacity,omitempty"`
	Lang               string          `json:"lang"`
	IsFallback         bool            `json:"is_fallback"`
	AvailableLanguages []string        `json:"available_languages"`
	Title              string          `json:"title"`
	Summary            string          `json:"summary,omitempty"`
	Body               string          `json:"body,omitempty"`
	BodyHTML           string          `json:"body_html,omitempty"`
}

func newView(e *models.Event, rc *models.ResolvedContent, withBody bool) View {
	v := View{
		ID:                 e.ID,
		Slug:               e.Slug,
		Status:             e.Status,
		StartsAt:           e.StartsAt,
		EndsAt:             e.EndsAt,
		Venue:              e.Venue,
		BannerImageURL:     e.BannerImageURL,
		Price:              e.Price,
		IsFree:             e.IsFree(),
		Capacity:           e.Capacity,
		Lang:               rc.Lang,
		IsFallback:         rc.IsFallback,
		AvailableLanguages: rc.AvailableLanguages,
		Title:              rc.Title,
		Summary:            rc.Summary,
	}
	if withBody {
		v.Body = rc.Body
		v.BodyHTML = rc.BodyHTML
	}
	return v
}

// Handler handles event HTTP endpoints.
type Handler struct {
	repo     *Repository
	resolver *content.Resolver
	prefill  *translator.Prefiller
	media    *storage.S3
}

// NewHandler creates an events handler. media may be nil.
func NewHandler(repo *Repository, resolver *content.Resolver, prefill *translator.Prefiller, media *storage.S3) *Handler {
	return &Handler{repo: repo, resolver: resolver, prefill: prefill, media: media}
}

// List handles GET /events. Query ?filter=upcoming|past narrows by start
// time; upcoming events sort soonest first.
func (h *Handler) List(c *gin.Context) {
	lang := c.GetString(middleware.ContextLang)
	page, limit := response.PageParams(c)

	filter := c.Query("filter")
	if filter != "" && filter != FilterUpcoming && filter != FilterPast {
		response.BadRequest(c, "filter must be upcoming or past")
		return
	}
	list, total, err := h.repo.List(c.Request.Context(), i18n.WithDefault(lang), filter, page, limit)
	if err != nil {
		response.Internal(c, "failed to list events")
		return
	}
	ids := make([]uuid.UUID, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	resolved, err := h.resolver.ResolveMany(c.Request.Context(), ids, lang)
	if err != nil {
		response.Internal(c, "failed to resolve content")
		return
	}
	views := make([]View, 0, len(list))
	for i := range list {
		rc, ok := resolved[list[i].ID]
		if !ok {
			continue
		}
		views = append(views, newView(&list[i], rc, false))
	}
	response.Page(c, views, response.NewPagination(page, limit, total))
}

// Get handles GET /events/:id, where :id is an event ID or slug.
func (h *Handler) Get(c *gin.Context) {
	e, err := h.byIDOrSlug(c, c.Param("id"))
	if err != nil {
		response.NotFound(c, "event not found")
		return
	}
	if e.Status == models.EventStatusDraft {
		response.NotFound(c, "event not found")
		return
	}
	rc, err := h.resolver.Resolve(c.Request.Context(), e.ID, c.GetString(middleware.ContextLang))
	if errors.Is(err, content.ErrNotFound) {
		response.NotFound(c, "event not found")
		return
	}
	if err != nil {
		response.Internal(c, "failed to resolve content")
		return
	}
	response.OK(c, newView(e, rc, true))
}

func (h *Handler) byIDOrSlug(c *gin.Context, key string) (*models.Event, error) {
	if id, err := uuid.Parse(key); err == nil {
		return h.repo.GetByID(c.Request.Context(), id)
	}
	return h.repo.GetBySlug(c.Request.Context(), key)
}

// Create handles POST /admin/events.
func (h *Handler) Create(c *gin.Context) {
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	e, inputs, ok := h.prepare(c, &req)
	if !ok {
		return
	}
	e.CreatedBy = c.MustGet(middleware.ContextUserID).(uuid.UUID)

	if err := h.repo.Create(c.Request.Context(), e, inputs); err != nil {
		if errors.Is(err, ErrSlugTaken) {
			response.Conflict(c, "slug already exists")
			return
		}
		response.Internal(c, "failed to create event")
		return
	}
	response.Created(c, e)
}

// Update handles PUT /admin/events/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	e, inputs, ok := h.prepare(c, &req)
	if !ok {
		return
	}
	e.ID = id

	if err := h.repo.Update(c.Request.Context(), e, inputs); err != nil {
		switch {
		case errors.Is(err, ErrSlugTaken):
			response.Conflict(c, "slug already exists")
		case isNoRows(err):
			response.NotFound(c, "event not found")
		default:
			response.Internal(c, "failed to update event")
		}
		return
	}
	h.resolver.Invalidate(c.Request.Context(), id)
	response.OK(c, e)
}

// prepare validates a save request and builds the event row and translation
// set. On failure it has already written the response.
func (h *Handler) prepare(c *gin.Context, req *SaveRequest) (*models.Event, []content.TranslationInput, bool) {
	if req.Status == "" {
		req.Status = models.EventStatusDraft
	}
	if !validStatus(req.Status) {
		response.BadRequest(c, "invalid status")
		return nil, nil, false
	}
	startsAt, err := parseTime(req.StartsAt)
	if err != nil {
		response.BadRequest(c, "invalid starts_at")
		return nil, nil, false
	}
	var endsAt *time.Time
	if req.EndsAt != nil {
		t, err := parseTime(*req.EndsAt)
		if err != nil {
			response.BadRequest(c, "invalid ends_at")
			return nil, nil, false
		}
		endsAt = &t
	}
	price := decimal.Zero
	if req.Price != "" {
		price, err = decimal.NewFromString(req.Price)
		if err != nil || price.IsNegative() {
			response.BadRequest(c, "invalid price")
			return nil, nil, false
		}
		// Charges are made in minor units, sub-cent prices cannot be represented.
		if !price.Equal(price.Round(2)) {
			response.BadRequest(c, "price must have at most two decimal places")
			return nil, nil, false
		}
	}
	if req.Capacity < 0 {
		response.BadRequest(c, "invalid capacity")
		return nil, nil, false
	}
	if err := content.ValidateInputs(req.Translations); err != nil {
		response.BadRequest(c, err.Error())
		return nil, nil, false
	}
	inputs := req.Translations
	if req.TranslateMissing && h.prefill != nil {
		inputs = h.prefill.FillMissing(c.Request.Context(), inputs)
	}
	e := &models.Event{
		Slug:           req.Slug,
		Status:         req.Status,
		StartsAt:       startsAt,
		EndsAt:         endsAt,
		Venue:          req.Venue,
		BannerImageURL: h.media.ResolveURL(req.BannerImageURL),
		Price:          price,
		Capacity:       req.Capacity,
	}
	return e, inputs, true
}

// ListAdmin handles GET /admin/events: all statuses, no translation filter.
func (h *Handler) ListAdmin(c *gin.Context) {
	page, limit := response.PageParams(c)
	list, total, err := h.repo.ListAdmin(c.Request.Context(), page, limit)
	if err != nil {
		response.Internal(c, "failed to list events")
		return
	}
	response.Page(c, list, response.NewPagination(page, limit, total))
}

// GetAdmin handles GET /admin/events/:id: the event plus its full
// translation set for the editor.
func (h *Handler) GetAdmin(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "event not found")
		return
	}
	translations, err := h.repo.Translations(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load translations")
		return
	}
	response.OK(c, gin.H{"event": e, "translations": translations})
}

// Delete handles DELETE /admin/events/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if isNoRows(err) {
			response.NotFound(c, "event not found")
			return
		}
		response.Internal(c, "failed to delete event")
		return
	}
	h.resolver.Invalidate(c.Request.Context(), id)
	response.NoContent(c)
}
