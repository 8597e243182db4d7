package posts

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/content"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/i18n"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/middleware"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/models"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/translator"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/pkg/response"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/pkg/storage"
)

// SaveRequest is the body for admin post create/update.
type SaveRequest struct {
	Slug             string                     `json:"slug" binding:"required"`
	Status           string                     `json:"status"`
	CoverImageURL    string                     `json:"cover_image_url"`
	Translations     []content.TranslationInput `json:"translations" binding:"required"`
	TranslateMissing bool                       `json:"translate_missing"`
}

// View is the public shape of a post resolved to one language.
type View struct {
	ID                 uuid.UUID  `json:"id"`
	Slug               string     `json:"slug"`
	CoverImageURL      string     `json:"cover_image_url,omitempty"`
	PublishedAt        *time.Time `json:"published_at,omitempty"`
	Lang               string     `json:"lang"`
	IsFallback         bool       `json:"is_fallback"`
	AvailableLanguages []string   `json:"available_languages"`
	Title              string     `json:"title"`
	Summary            string     `json:"summary,omitempty"`
	Body               string     `json:"body,omitempty"`
	BodyHTML           string     `json:"body_html,omitempty"`
}

func newView(p *models.Post, rc *models.ResolvedContent, withBody bool) View {
	v := View{
		ID:                 p.ID,
		Slug:               p.Slug,
		CoverImageURL:      p.CoverImageURL,
		PublishedAt:        p.PublishedAt,
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

// Handler handles post HTTP endpoints.
type Handler struct {
	repo     *Repository
	resolver *content.Resolver
	prefill  *translator.Prefiller
	media    *storage.S3
}

// NewHandler creates a posts handler. media may be nil.
func NewHandler(repo *Repository, resolver *content.Resolver, prefill *translator.Prefiller, media *storage.S3) *Handler {
	return &Handler{repo: repo, resolver: resolver, prefill: prefill, media: media}
}

// List handles GET /posts. Only published posts with a servable translation
// appear; each row is resolved to the request language with fallback.
func (h *Handler) List(c *gin.Context) {
	lang := c.GetString(middleware.ContextLang)
	page, limit := response.PageParams(c)

	list, total, err := h.repo.List(c.Request.Context(), i18n.WithDefault(lang), page, limit)
	if err != nil {
		response.Internal(c, "failed to list posts")
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

// Get handles GET /posts/:id, where :id is a post ID or slug.
func (h *Handler) Get(c *gin.Context) {
	p, err := h.byIDOrSlug(c, c.Param("id"))
	if err != nil {
		response.NotFound(c, "post not found")
		return
	}
	if p.Status != models.ContentStatusPublished {
		response.NotFound(c, "post not found")
		return
	}
	rc, err := h.resolver.Resolve(c.Request.Context(), p.ID, c.GetString(middleware.ContextLang))
	if errors.Is(err, content.ErrNotFound) {
		response.NotFound(c, "post not found")
		return
	}
	if err != nil {
		response.Internal(c, "failed to resolve content")
		return
	}
	response.OK(c, newView(p, rc, true))
}

func (h *Handler) byIDOrSlug(c *gin.Context, key string) (*models.Post, error) {
	if id, err := uuid.Parse(key); err == nil {
		return h.repo.GetByID(c.Request.Context(), id)
	}
	return h.repo.GetBySlug(c.Request.Context(), key)
}

// Create handles POST /admin/posts.
func (h *Handler) Create(c *gin.Context) {
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	inputs, ok := h.prepare(c, &req)
	if !ok {
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	p := &models.Post{
		Slug:          req.Slug,
		Status:        req.Status,
		CoverImageURL: h.media.ResolveURL(req.CoverImageURL),
		CreatedBy:     userID,
	}
	if err := h.repo.Create(c.Request.Context(), p, inputs); err != nil {
		if errors.Is(err, ErrSlugTaken) {
			response.Conflict(c, "slug already exists")
			return
		}
		response.Internal(c, "failed to create post")
		return
	}
	response.Created(c, p)
}

// Update handles PUT /admin/posts/:id. The translation set is replaced as a
// whole; a partial multi-language failure rolls the entire save back.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid post id")
		return
	}
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	inputs, ok := h.prepare(c, &req)
	if !ok {
		return
	}

	p := &models.Post{
		ID:            id,
		Slug:          req.Slug,
		Status:        req.Status,
		CoverImageURL: h.media.ResolveURL(req.CoverImageURL),
	}
	if err := h.repo.Update(c.Request.Context(), p, inputs); err != nil {
		switch {
		case errors.Is(err, ErrSlugTaken):
			response.Conflict(c, "slug already exists")
		case isNoRows(err):
			response.NotFound(c, "post not found")
		default:
			response.Internal(c, "failed to update post")
		}
		return
	}
	h.resolver.Invalidate(c.Request.Context(), id)
	updated, _ := h.repo.GetByID(c.Request.Context(), id)
	response.OK(c, updated)
}

// prepare validates a save request and applies translation prefill. On
// failure it has already written the response.
func (h *Handler) prepare(c *gin.Context, req *SaveRequest) ([]content.TranslationInput, bool) {
	if req.Status == "" {
		req.Status = models.ContentStatusDraft
	}
	if !content.ValidStatus(req.Status) {
		response.BadRequest(c, "invalid status")
		return nil, false
	}
	if err := content.ValidateInputs(req.Translations); err != nil {
		response.BadRequest(c, err.Error())
		return nil, false
	}
	inputs := req.Translations
	if req.TranslateMissing && h.prefill != nil {
		inputs = h.prefill.FillMissing(c.Request.Context(), inputs)
	}
	return inputs, true
}

// ListAdmin handles GET /admin/posts: all statuses, no translation filter.
func (h *Handler) ListAdmin(c *gin.Context) {
	page, limit := response.PageParams(c)
	list, total, err := h.repo.ListAdmin(c.Request.Context(), page, limit)
	if err != nil {
		response.Internal(c, "failed to list posts")
		return
	}
	response.Page(c, list, response.NewPagination(page, limit, total))
}

// GetAdmin handles GET /admin/posts/:id: the post plus its full translation
// set for the editor.
func (h *Handler) GetAdmin(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid post id")
		return
	}
	p, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "post not found")
		return
	}
	translations, err := h.repo.Translations(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load translations")
		return
	}
	response.OK(c, gin.H{"post": p, "translations": translations})
}

// Delete handles DELETE /admin/posts/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid post id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if isNoRows(err) {
			response.NotFound(c, "post not found")
			return
		}
		response.Internal(c, "failed to delete post")
		return
	}
	h.resolver.Invalidate(c.Request.Context(), id)
	response.NoContent(c)
}
