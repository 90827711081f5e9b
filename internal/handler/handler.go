// Package handler exposes the HTTP surface: read-only snapshots of the
// session state, the identity proxy and the websocket upgrade routes.
package handler

import (
	"errors"
	"net/http"

	"dreamrelay/backend/internal/auth"
	"dreamrelay/backend/internal/gateway"
	"dreamrelay/backend/internal/identity"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// Handler carries the dependencies shared by every route.
type Handler struct {
	gw       *gateway.Gateway
	identity *identity.Client
	verifier auth.Verifier
	log      zerolog.Logger
}

// New wires the handlers. idClient may be nil, in which case the identity
// proxy answers 503.
func New(gw *gateway.Gateway, idClient *identity.Client, verifier auth.Verifier, logger zerolog.Logger) *Handler {
	if verifier == nil {
		verifier = auth.NoopVerifier{}
	}
	if idClient == nil {
		idClient = identity.NewClient("", "", nil)
	}
	return &Handler{
		gw:       gw,
		identity: idClient,
		verifier: verifier,
		log:      logger.With().Str("component", "http").Logger(),
	}
}

// snapshotFailed answers a read that could not reach the event loop.
func (h *Handler) snapshotFailed(c *gin.Context, err error) {
	if errors.Is(err, gateway.ErrClosed) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Server is shutting down"})
		return
	}
	h.log.Error().Err(err).Str("path", c.FullPath()).Msg("snapshot failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read state"})
}
