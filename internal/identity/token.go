// Package identity integrates the external identity provider: validation of
// the tokens it issues, local profile provisioning and the account-deletion
// saga against its admin API. The backend never issues tokens of its own.
package identity

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken reports a token that failed validation.
var ErrInvalidToken = errors.New("identity: invalid token")

// Claims are the provider-issued token claims. The registered subject is the
// user id.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// TokenVerifier validates provider-issued HS256 tokens against the shared
// signing secret.
type TokenVerifier struct {
	secret []byte
}

// NewTokenVerifier creates a verifier for the shared signing secret.
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// Verify parses and validates a token, returning the user id and claims.
func (v *TokenVerifier) Verify(tokenString string) (uuid.UUID, *Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil {
		return uuid.Nil, nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return uuid.Nil, nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, nil, ErrInvalidToken
	}
	return userID, claims, nil
}
