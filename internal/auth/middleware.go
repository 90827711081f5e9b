package auth

import (
	"errors"
	"net/http"

	"dreamrelay/backend/internal/models"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// AuthMiddleware rejects requests whose bearer token the verifier does not accept.
func AuthMiddleware(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := v.Verify(c.Request.Context(), TokenFromRequest(c.Request))
		if err != nil {
			status := http.StatusUnauthorized
			msg := "Invalid token"
			switch {
			case errors.Is(err, ErrMissingToken):
				msg = "No token provided"
			case !errors.Is(err, ErrInvalidToken):
				status = http.StatusBadGateway
				msg = "Identity provider unavailable"
			}
			c.AbortWithStatusJSON(status, gin.H{"error": msg})
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// OptionalAuthMiddleware inspects for a token and sets the identity if present and valid,
// but does not fail if the token is missing or invalid.
func OptionalAuthMiddleware(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := TokenFromRequest(c.Request); token != "" {
			if id, err := v.Verify(c.Request.Context(), token); err == nil {
				c.Set(identityKey, id)
			}
		}
		c.Next()
	}
}

// IdentityFrom returns the identity set by one of the middlewares, zero when
// the request is anonymous.
func IdentityFrom(c *gin.Context) models.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(models.Identity); ok {
			return id
		}
	}
	return models.Identity{}
}
