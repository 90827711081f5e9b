package gateway

import (
	"context"

	"dreamrelay/backend/internal/models"
	"dreamrelay/backend/internal/registry"
)

// Stats adds live connection counts to the registry counters.
type Stats struct {
	registry.Stats
	Connections map[string]int `json:"connections"`
}

// Snapshot reads run on the event loop so they never observe a transition
// half applied.

func (g *Gateway) Lobbies(ctx context.Context) ([]models.LobbySummary, error) {
	var out []models.LobbySummary
	err := g.Query(ctx, func() { out = g.reg.ListLobbies() })
	return out, err
}

// Lobby returns nil without error when the lobby does not exist.
func (g *Gateway) Lobby(ctx context.Context, name string) (*models.LobbyDetail, error) {
	var out *models.LobbyDetail
	err := g.Query(ctx, func() { out = g.reg.GetLobby(name) })
	return out, err
}

func (g *Gateway) Rooms(ctx context.Context) ([]models.RoomSummary, error) {
	var out []models.RoomSummary
	err := g.Query(ctx, func() { out = g.reg.ListRooms() })
	return out, err
}

// Room returns nil without error when the room does not exist.
func (g *Gateway) Room(ctx context.Context, name string) (*models.RoomDetail, error) {
	var out *models.RoomDetail
	err := g.Query(ctx, func() { out = g.reg.GetRoom(name) })
	return out, err
}

func (g *Gateway) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	if err := g.Query(ctx, func() { out.Stats = g.reg.Stats() }); err != nil {
		return Stats{}, err
	}
	out.Connections = make(map[string]int, len(g.hubs))
	for ch, h := range g.hubs {
		out.Connections[string(ch)] = h.Len()
	}
	return out, nil
}
