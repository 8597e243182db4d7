package about

import (
	"errors"

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

// SaveRequest is the body for PUT /admin/pages/:slug.
type SaveRequest struct {
	Status           string                     `json:"status"`
	HeroImageURL     string                     `json:"hero_image_url"`
	Translations     []content.TranslationInput `json:"translations" binding:"required"`
	TranslateMissing bool                       `json:"translate_missing"`
}

// View is the public shape of a page resolved to one language.
type View struct {
	ID                 uuid.UUID `json:"id"`
	Slug               string    `json:"slug"`
	HeroImageURL       string    `json:"hero_image_url,omitempty"`
	Lang               string    `json:"lang"`
	IsFallback         bool      `json:"is_fallback"`
	AvailableLanguages []string  `json:"available_languages"`
	Title              string    `json:"title"`
	Summary            string    `json:"summary,omitempty"`
	Body               string    `json:"body,omitempty"`
	BodyHTML           string    `json:"body_html,omitempty"`
}

func newView(p *models.AboutPage, rc *models.ResolvedContent, withBody bool) View {
	v := View{
		ID:                 p.ID,
		Slug:               p.Slug,
		HeroImageURL:       p.HeroImageURL,
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

// Handler handles about-page HTTP endpoints.
type Handler struct {
	repo     *Repository
	resolver *content.Resolver
	prefill  *translator.Prefiller
	media    *storage.S3
}

// NewHandler creates an about-pages handler. media may be nil.
func NewHandler(repo *Repository, resolver *content.Resolver, prefill *translator.Prefiller, media *storage.S3) *Handler {
	return &Handler{repo: repo, resolver: resolver, prefill: prefill, media: media}
}

// List handles GET /pages.
func (h *Handler) List(c *gin.Context) {
	lang := c.GetString(middleware.ContextLang)
	list, err := h.repo.List(c.Request.Context(), i18n.WithDefault(lang))
	if err != nil {
		response.Internal(c, "failed to list pages")
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
	response.OK(c, views)
}

// Get handles GET /pages/:slug.
func (h *Handler) Get(c *gin.Context) {
	p, err := h.repo.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.NotFound(c, "page not found")
		return
	}
	if p.Status != models.ContentStatusPublished {
		response.NotFound(c, "page not found")
		return
	}
	rc, err := h.resolver.Resolve(c.Request.Context(), p.ID, c.GetString(middleware.ContextLang))
	if errors.Is(err, content.ErrNotFound) {
		response.NotFound(c, "page not found")
		return
	}
	if err != nil {
		response.Internal(c, "failed to resolve content")
		return
	}
	response.OK(c, newView(p, rc, true))
}

// Save handles PUT /admin/pages/:slug, creating the page if absent.
func (h *Handler) Save(c *gin.Context) {
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Status == "" {
		req.Status = models.ContentStatusPublished
	}
	if !content.ValidStatus(req.Status) {
		response.BadRequest(c, "invalid status")
		return
	}
	if err := content.ValidateInputs(req.Translations); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	inputs := req.Translations
	if req.TranslateMissing && h.prefill != nil {
		inputs = h.prefill.FillMissing(c.Request.Context(), inputs)
	}

	p := &models.AboutPage{
		Slug:         c.Param("slug"),
		Status:       req.Status,
		HeroImageURL: h.media.ResolveURL(req.HeroImageURL),
		UpdatedBy:    c.MustGet(middleware.ContextUserID).(uuid.UUID),
	}
	if err := h.repo.Upsert(c.Request.Context(), p, inputs); err != nil {
		response.Internal(c, "failed to save page")
		return
	}
	h.resolver.Invalidate(c.Request.Context(), p.ID)
	response.OK(c, p)
}

// ListAdmin handles GET /admin/pages.
func (h *Handler) ListAdmin(c *gin.Context) {
	list, err := h.repo.ListAdmin(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list pages")
		return
	}
	response.OK(c, list)
}

// GetAdmin handles GET /admin/pages/:slug: the page plus its full
// translation set for the editor.
func (h *Handler) GetAdmin(c *gin.Context) {
	p, err := h.repo.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.NotFound(c, "page not found")
		return
	}
	translations, err := h.repo.Translations(c.Request.Context(), p.ID)
	if err != nil {
		response.Internal(c, "failed to load translations")
		return
	}
	response.OK(c, gin.H{"page": p, "translations": translations})
}

// Delete handles DELETE /admin/pages/:slug.
func (h *Handler) Delete(c *gin.Context) {
	id, err := h.repo.Delete(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if isNoRows(err) {
			response.NotFound(c, "page not found")
			return
		}
		response.Internal(c, "failed to delete page")
		return
	}
	h.resolver.Invalidate(c.Request.Context(), id)
	response.NoContent(c)
}
