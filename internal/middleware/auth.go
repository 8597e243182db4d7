package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/models"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/pkg/response"
)

const (
	// ContextUserID is the key for the user ID (uuid.UUID) in gin context.
	ContextUserID = "user_id"
	// ContextUserEmail is the key for the user email in gin context.
	ContextUserEmail = "user_email"
	// ContextIsAdmin is the key for the admin flag in gin context.
	ContextIsAdmin = "is_admin"
	// ContextProfile is the key for the full profile in gin context.
	ContextProfile = "profile"
)

// AuthVerifier validates a provider-issued bearer token and returns the local
// profile for it, provisioning one on first sight. Deleted accounts fail.
type AuthVerifier interface {
	VerifyRequest(ctx context.Context, token string) (*models.Profile, error)
}

// Auth returns a middleware that authenticates the request and sets the
// user's identity in context.
func Auth(verifier AuthVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		profile, err := verifier.VerifyRequest(c.Request.Context(), parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextUserID, profile.ID)
		c.Set(ContextUserEmail, profile.Email)
		c.Set(ContextIsAdmin, profile.IsAdmin)
		c.Set(ContextProfile, profile)
		c.Next()
	}
}

// RequireAdmin returns a middleware that allows only admin profiles. It must
// run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin, ok := c.Get(ContextIsAdmin)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		if admin, _ := isAdmin.(bool); !admin {
			response.Forbidden(c, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
