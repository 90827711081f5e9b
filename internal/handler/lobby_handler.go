package handler

import (
	"net/http"
	"strconv"

	"dreamrelay/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// PaginatedLobbyResponse defines the structure for a paginated list of lobbies.
type PaginatedLobbyResponse struct {
	Data []models.LobbySummary `json:"data"`
	Meta PaginationMeta        `json:"meta"`
}

// endregion

// ListLobbies godoc
// @Summary      List lobbies
// @Description  Gets a paginated snapshot of the lobby directory in creation order.
// @Tags         lobbies
// @Produce      json
// @Param        available query bool false "Only lobbies that are neither full nor in a room"
// @Param        page      query int  false "Page number" default(1)
// @Param        limit     query int  false "Items per page" default(10)
// @Success      200 {object} PaginatedLobbyResponse
// @Failure      503 {object} ErrorResponse "Server is shutting down"
// @Router       /lobbies [get]
func (h *Handler) ListLobbies(c *gin.Context) {
	page, limit := pageParams(c)
	availableOnly, _ := strconv.ParseBool(c.Query("available"))

	lobbies, err := h.gw.Lobbies(c.Request.Context())
	if err != nil {
		h.snapshotFailed(c, err)
		return
	}

	if availableOnly {
		filtered := lobbies[:0]
		for _, l := range lobbies {
			if !l.InRoom && l.CurrentPlayers < l.MaxPlayers {
				filtered = append(filtered, l)
			}
		}
		lobbies = filtered
	}

	c.JSON(http.StatusOK, Paginate(lobbies, page, limit))
}

// GetLobby godoc
// @Summary      Get a lobby by name
// @Description  Gets the full roster and settings of a single lobby. The password is never included.
// @Tags         lobbies
// @Produce      json
// @Param        name path string true "Lobby name"
// @Success      200 {object} models.LobbyDetail
// @Failure      404 {object} ErrorResponse "Lobby not found"
// @Router       /lobbies/{name} [get]
func (h *Handler) GetLobby(c *gin.Context) {
	lobby, err := h.gw.Lobby(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.snapshotFailed(c, err)
		return
	}
	if lobby == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lobby not found"})
		return
	}
	c.JSON(http.StatusOK, lobby)
}
