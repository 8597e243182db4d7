// Package media exposes admin endpoints for uploading images to object
// storage. Uploads go straight from the browser to the bucket via pre-signed
// PUT URLs; the backend only mints the URL and hands back the object key.
package media

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Holy-Fun-Yeah/hfy-website-sub001/pkg/response"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/pkg/storage"
)

var allowedKinds = map[string]bool{
	"posts":  true,
	"events": true,
	"about":  true,
}

// PresignRequest is the body for POST /admin/media/presign.
type PresignRequest struct {
	Kind     string `json:"kind" binding:"required"`
	Filename string `json:"filename" binding:"required"`
}

// DeleteRequest is the body for DELETE /admin/media.
type DeleteRequest struct {
	Key string `json:"key" binding:"required"`
}

// Handler serves media upload endpoints.
type Handler struct {
	store  *storage.S3
	logger *zap.Logger
}

// NewHandler creates a media handler. store may be nil when object storage
// is not configured; endpoints then answer 503.
func NewHandler(store *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger}
}

// Presign handles POST /admin/media/presign. It validates the file type,
// derives an object key and returns a pre-signed PUT URL together with the
// public URL the admin stores on the entity afterwards.
func (h *Handler) Presign(c *gin.Context) {
	if h.store == nil {
		response.ServiceUnavailable(c, "media storage is not configured")
		return
	}

	var req PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if !allowedKinds[req.Kind] {
		response.BadRequest(c, "kind must be one of: posts, events, about")
		return
	}

	contentType := storage.ContentTypeForFilename(req.Filename)
	if !storage.ValidateMediaFileType(contentType, req.Filename) {
		response.BadRequest(c, "unsupported media file type")
		return
	}

	// Keys get a fresh UUID segment so uploads never collide, even when
	// admins reuse filenames across entities.
	key := storage.MediaKey(req.Kind, uuid.New().String(), req.Filename)
	expires := h.store.PresignExpire()

	uploadURL, err := h.store.GeneratePresignedUploadURL(c.Request.Context(), key, contentType, expires)
	if err != nil {
		h.logger.Error("failed to presign media upload", zap.String("key", key), zap.Error(err))
		response.ServiceUnavailable(c, "failed to create upload URL")
		return
	}

	response.OK(c, gin.H{
		"upload_url":   uploadURL,
		"key":          key,
		"public_url":   h.store.PublicObjectURL(key),
		"content_type": contentType,
		"max_size":     storage.MaxMediaFileSize,
		"expires_in":   int(expires.Seconds()),
	})
}

// Delete handles DELETE /admin/media. It removes an uploaded object, for
// example after an admin replaces an image or abandons a draft.
func (h *Handler) Delete(c *gin.Context) {
	if h.store == nil {
		response.ServiceUnavailable(c, "media storage is not configured")
		return
	}

	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if !strings.HasPrefix(req.Key, storage.FolderMedia+"/") {
		response.BadRequest(c, "key must point into the media folder")
		return
	}

	if err := h.store.DeleteObject(c.Request.Context(), req.Key); err != nil {
		h.logger.Error("failed to delete media object", zap.String("key", req.Key), zap.Error(err))
		response.Internal(c, "failed to delete media object")
		return
	}

	response.NoContent(c)
}
