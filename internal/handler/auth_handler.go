package handler

import (
	"errors"
	"net/http"

	"dreamrelay/backend/internal/auth"
	"dreamrelay/backend/internal/identity"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// LoginInput defines the structure for user login.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email" example:"test@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// SignupInput defines the structure for user registration.
type SignupInput struct {
	Email    string `json:"email" binding:"required,email" example:"test@example.com"`
	Password string `json:"password" binding:"required,min=6" example:"password123"`
	Name     string `json:"name" binding:"required" example:"Alice"`
}

// MeResponse wraps the authenticated user.
type MeResponse struct {
	User any `json:"user"`
}

// endregion

// providerFailed maps an identity provider failure to a response. Rejections
// the provider made about the request itself get status; outages get 502.
func (h *Handler) providerFailed(c *gin.Context, err error, status int) {
	var perr *identity.ProviderError
	switch {
	case errors.Is(err, identity.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Identity provider not configured"})
	case errors.As(err, &perr) && perr.Status < http.StatusInternalServerError:
		c.JSON(status, gin.H{"error": perr.Message})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("identity provider call failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Identity provider unavailable"})
	}
}

// Login godoc
// @Summary      Log in
// @Description  Exchanges e-mail and password for a session at the identity provider. The provider's session object is returned as is.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Credentials"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse "Invalid login credentials"
// @Failure      502  {object}  ErrorResponse "Identity provider unavailable"
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.identity.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		h.providerFailed(c, err, http.StatusUnauthorized)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", session)
}

// Signup godoc
// @Summary      Register a new user
// @Description  Creates an account at the identity provider. The name is stored as the display name.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body SignupInput true "Registration Info"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      502  {object}  ErrorResponse "Identity provider unavailable"
// @Router       /auth/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var input SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.identity.Signup(c.Request.Context(), input.Email, input.Password, input.Name)
	if err != nil {
		h.providerFailed(c, err, http.StatusBadRequest)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", user)
}

// Logout godoc
// @Summary      Log out
// @Description  Revokes the session at the identity provider. Always succeeds for the client.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]string "{"message": "Logged out"}"
// @Router       /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	if token := auth.TokenFromRequest(c.Request); token != "" {
		if err := h.identity.Logout(c.Request.Context(), token); err != nil && !errors.Is(err, identity.ErrNotConfigured) {
			h.log.Warn().Err(err).Msg("logout at identity provider failed")
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// GetMe godoc
// @Summary      Get current user
// @Description  Resolves the bearer token to its user. Uses the identity provider when one is configured and the local token check otherwise.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} MeResponse
// @Failure      401 {object} ErrorResponse "No token provided"
// @Router       /auth/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	token := auth.TokenFromRequest(c.Request)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
		return
	}

	user, err := h.identity.User(c.Request.Context(), token)
	if err == nil {
		c.JSON(http.StatusOK, MeResponse{User: user})
		return
	}
	if !errors.Is(err, identity.ErrNotConfigured) {
		var perr *identity.ProviderError
		if errors.As(err, &perr) && perr.Status < http.StatusInternalServerError {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		h.providerFailed(c, err, http.StatusUnauthorized)
		return
	}

	id, err := h.verifier.Verify(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		h.providerFailed(c, err, http.StatusUnauthorized)
		return
	}
	c.JSON(http.StatusOK, MeResponse{User: id})
}
