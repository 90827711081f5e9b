// Package registry holds every lobby and room known to the server.
//
// A Registry is plain data: it does no I/O and takes no locks. It must only be
// used from the gateway's event loop goroutine, which serializes all access.
package registry

import (
	"dreamrelay/backend/internal/models"

	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// LobbySpec describes a lobby to create.
type LobbySpec struct {
	Name            string
	CreatorUsername string
	CreatorUserID   string
	MaxPlayers      int
	Private         bool
	PasswordHash    []byte
	GameMode        string
}

// Stats is a point-in-time count of the registry contents.
type Stats struct {
	Lobbies      int `json:"lobbies"`
	Rooms        int `json:"rooms"`
	LobbyPlayers int `json:"lobbyPlayers"`
	RoomPlayers  int `json:"roomPlayers"`
	Countdowns   int `json:"countdowns"`
}

type Registry struct {
	lobbies *orderedmap.OrderedMap[string, *models.Lobby]
	rooms   *orderedmap.OrderedMap[string, *models.Room]
	newID   func() string
}

func New() *Registry {
	return &Registry{
		lobbies: orderedmap.New[string, *models.Lobby](),
		rooms:   orderedmap.New[string, *models.Room](),
		newID:   uuid.NewString,
	}
}

// region --- Lobbies ---

// CreateLobby inserts a lobby with an empty roster. When the name is taken it
// does nothing and returns the existing lobby with created=false. The creator
// is not added as a player; callers do that as a second step.
func (r *Registry) CreateLobby(spec LobbySpec) (lobby *models.Lobby, created bool) {
	if existing, ok := r.lobbies.Get(spec.Name); ok {
		return existing, false
	}
	lobby = models.NewLobby(
		spec.Name,
		r.newID(),
		spec.CreatorUsername,
		spec.CreatorUserID,
		spec.MaxPlayers,
		spec.Private,
		spec.PasswordHash,
		spec.GameMode,
	)
	r.lobbies.Set(spec.Name, lobby)
	return lobby, true
}

// Lobby returns the live record, or nil.
func (r *Registry) Lobby(name string) *models.Lobby {
	l, ok := r.lobbies.Get(name)
	if !ok {
		return nil
	}
	return l
}

// DeleteLobby removes the record and reports whether it existed.
func (r *Registry) DeleteLobby(name string) (*models.Lobby, bool) {
	return r.lobbies.Delete(name)
}

// Lobbies returns the live records in insertion order.
func (r *Registry) Lobbies() []*models.Lobby {
	out := make([]*models.Lobby, 0, r.lobbies.Len())
	for pair := r.lobbies.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

func (r *Registry) ListLobbies() []models.LobbySummary {
	out := make([]models.LobbySummary, 0, r.lobbies.Len())
	for pair := r.lobbies.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, models.NewLobbySummary(pair.Value))
	}
	return out
}

// GetLobby returns the detail projection, or nil when the lobby does not exist.
func (r *Registry) GetLobby(name string) *models.LobbyDetail {
	l := r.Lobby(name)
	if l == nil {
		return nil
	}
	detail := models.NewLobbyDetail(l)
	return &detail
}

// ListLobbyPlayers returns the roster, empty when the lobby does not exist.
func (r *Registry) ListLobbyPlayers(name string) []models.LobbyPlayer {
	l := r.Lobby(name)
	if l == nil {
		return []models.LobbyPlayer{}
	}
	return models.CopyLobbyPlayers(l)
}

// endregion

// region --- Rooms ---

// CreateRoom inserts an empty room unless one with that name already exists.
func (r *Registry) CreateRoom(name string, maxPlayers int, gameMode string) (room *models.Room, created bool) {
	if existing, ok := r.rooms.Get(name); ok {
		return existing, false
	}
	room = models.NewRoom(name, r.newID(), maxPlayers, gameMode)
	r.rooms.Set(name, room)
	return room, true
}

func (r *Registry) Room(name string) *models.Room {
	room, ok := r.rooms.Get(name)
	if !ok {
		return nil
	}
	return room
}

func (r *Registry) DeleteRoom(name string) (*models.Room, bool) {
	return r.rooms.Delete(name)
}

func (r *Registry) Rooms() []*models.Room {
	out := make([]*models.Room, 0, r.rooms.Len())
	for pair := r.rooms.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

func (r *Registry) ListRooms() []models.RoomSummary {
	out := make([]models.RoomSummary, 0, r.rooms.Len())
	for pair := r.rooms.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, models.NewRoomSummary(pair.Value))
	}
	return out
}

func (r *Registry) GetRoom(name string) *models.RoomDetail {
	room := r.Room(name)
	if room == nil {
		return nil
	}
	detail := models.NewRoomDetail(room)
	return &detail
}

// ListRoomPlayers returns the occupants with their transforms, empty when the room does not exist.
func (r *Registry) ListRoomPlayers(name string) []models.RoomPlayer {
	room := r.Room(name)
	if room == nil {
		return []models.RoomPlayer{}
	}
	return models.CopyRoomPlayers(room)
}

// endregion

func (r *Registry) Stats() Stats {
	var s Stats
	for _, l := range r.Lobbies() {
		s.Lobbies++
		s.LobbyPlayers += l.PlayerCount()
		if l.Countdown != nil {
			s.Countdowns++
		}
	}
	for _, room := range r.Rooms() {
		s.Rooms++
		s.RoomPlayers += room.PlayerCount()
	}
	return s
}
