package handler

import (
	"net/http"

	"dreamrelay/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// PaginatedRoomResponse defines the structure for a paginated list of rooms.
type PaginatedRoomResponse struct {
	Data []models.RoomSummary `json:"data"`
	Meta PaginationMeta       `json:"meta"`
}

// endregion

// ListRooms godoc
// @Summary      List rooms
// @Description  Gets a paginated snapshot of the running rooms.
// @Tags         rooms
// @Produce      json
// @Param        page  query int false "Page number" default(1)
// @Param        limit query int false "Items per page" default(10)
// @Success      200 {object} PaginatedRoomResponse
// @Router       /rooms [get]
func (h *Handler) ListRooms(c *gin.Context) {
	page, limit := pageParams(c)

	rooms, err := h.gw.Rooms(c.Request.Context())
	if err != nil {
		h.snapshotFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, Paginate(rooms, page, limit))
}

// GetRoom godoc
// @Summary      Get a room by name
// @Tags         rooms
// @Produce      json
// @Param        name path string true "Room name"
// @Success      200 {object} models.RoomDetail
// @Failure      404 {object} ErrorResponse "Room not found"
// @Router       /rooms/{name} [get]
func (h *Handler) GetRoom(c *gin.Context) {
	room, err := h.gw.Room(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.snapshotFailed(c, err)
		return
	}
	if room == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}
	c.JSON(http.StatusOK, room)
}

// GetStats godoc
// @Summary      Server statistics
// @Description  Lobby, room and player counts plus open connections per websocket channel.
// @Tags         system
// @Produce      json
// @Success      200 {object} gateway.Stats
// @Router       /stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.gw.Stats(c.Request.Context())
	if err != nil {
		h.snapshotFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
