package models

import orderedmap "github.com/wk8/go-ordered-map/v2"

// MoveState is the movement animation a room player is currently playing.
type MoveState string

const (
	StateIdle MoveState = "idle"
	StateWalk MoveState = "walk"
	StateRun  MoveState = "run"
)

// Vec3 is a position or an Euler rotation.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// RoomPlayer holds the live transform of one player inside a room.
type RoomPlayer struct {
	UserID   string    `json:"userId"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
	ConnID   string    `json:"connectionId"`
	Position Vec3      `json:"position"`
	Rotation Vec3      `json:"rotation"`
	State    MoveState `json:"state"`
}

// NewRoomPlayer places a player at the spawn point, facing forward, idle.
func NewRoomPlayer(userID, username string, role Role, connID string) *RoomPlayer {
	if role == "" {
		role = RolePlayer
	}
	return &RoomPlayer{
		UserID:   userID,
		Username: username,
		Role:     role,
		ConnID:   connID,
		State:    StateIdle,
	}
}

// Room is the in-match session created from a lobby when the game starts.
type Room struct {
	Name       string
	ID         string
	MaxPlayers int
	GameMode   string
	Players    *orderedmap.OrderedMap[string, *RoomPlayer]
}

func NewRoom(name, id string, maxPlayers int, gameMode string) *Room {
	return &Room{
		Name:       name,
		ID:         id,
		MaxPlayers: maxPlayers,
		GameMode:   gameMode,
		Players:    orderedmap.New[string, *RoomPlayer](),
	}
}

func (r *Room) PlayerCount() int {
	return r.Players.Len()
}

// Player returns the occupant with the given user id, or nil.
func (r *Room) Player(userID string) *RoomPlayer {
	p, ok := r.Players.Get(userID)
	if !ok {
		return nil
	}
	return p
}

// PlayerByConn finds the occupant bound to a transport connection.
func (r *Room) PlayerByConn(connID string) *RoomPlayer {
	for pair := r.Players.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.ConnID == connID {
			return pair.Value
		}
	}
	return nil
}
