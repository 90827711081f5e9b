package handler

import (
	"errors"

	"dreamrelay/backend/internal/auth"
	"dreamrelay/backend/internal/hub"
	"dreamrelay/backend/internal/protocol"

	"github.com/gin-gonic/gin"
)

// ServeWS returns the upgrade handler for one websocket channel. The
// identity set by the auth middleware travels with the connection and
// overrides whatever the client later claims in its payloads.
func (h *Handler) ServeWS(ch protocol.Channel) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := auth.IdentityFrom(c)
		if err := h.gw.ServeWS(ch, c.Writer, c.Request, id); err != nil {
			event := h.log.Warn()
			if errors.Is(err, hub.ErrClosed) {
				event = h.log.Debug()
			}
			event.Err(err).Str("channel", string(ch)).Str("userId", id.UserID).Msg("websocket upgrade failed")
		}
	}
}
