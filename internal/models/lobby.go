package models

import orderedmap "github.com/wk8/go-ordered-map/v2"

// Role is the standing of a player inside a lobby.
type Role string

const (
	RoleAdmin     Role = "admin"
	RolePlayer    Role = "player"
	RoleModerator Role = "moderator"
)

// DefaultGameMode is selected for every new lobby until the admin picks another one.
const DefaultGameMode = "among-us"

// LobbyPlayer is a member of a lobby.
// UserID is the identity; ConnID is replaced every time the player reconnects.
type LobbyPlayer struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	ConnID   string `json:"connectionId"`
	Role     Role   `json:"role"`
	IsReady  bool   `json:"isReady"`
}

// Lobby represents a pre-game gathering where users wait for the match to start.
type Lobby struct {
	Name         string
	ID           string
	CreatorID    string
	CreatorName  string
	MaxPlayers   int
	Private      bool
	PasswordHash []byte
	SelectedGame string
	InRoom       bool

	// Players keeps insertion order so admin promotion can pick the earliest joiner.
	Players *orderedmap.OrderedMap[string, *LobbyPlayer]

	// Countdown is non-nil while a start countdown is running.
	Countdown *Countdown
}

// NewLobby returns a lobby with an empty roster.
func NewLobby(name, id, creatorName, creatorID string, maxPlayers int, private bool, passwordHash []byte, gameMode string) *Lobby {
	if gameMode == "" {
		gameMode = DefaultGameMode
	}
	if !private {
		passwordHash = nil
	}
	return &Lobby{
		Name:         name,
		ID:           id,
		CreatorID:    creatorID,
		CreatorName:  creatorName,
		MaxPlayers:   maxPlayers,
		Private:      private,
		PasswordHash: passwordHash,
		SelectedGame: gameMode,
		Players:      orderedmap.New[string, *LobbyPlayer](),
	}
}

func (l *Lobby) PlayerCount() int {
	return l.Players.Len()
}

func (l *Lobby) IsFull() bool {
	return l.Players.Len() >= l.MaxPlayers
}

// Player returns the member with the given user id, or nil.
func (l *Lobby) Player(userID string) *LobbyPlayer {
	p, ok := l.Players.Get(userID)
	if !ok {
		return nil
	}
	return p
}

// AddPlayer inserts p at the end of the roster.
func (l *Lobby) AddPlayer(p *LobbyPlayer) {
	l.Players.Set(p.UserID, p)
}

// RemovePlayer deletes the member and reports whether it was present.
func (l *Lobby) RemovePlayer(userID string) (*LobbyPlayer, bool) {
	return l.Players.Delete(userID)
}

// Admin returns the current admin, or nil when nobody holds the role.
func (l *Lobby) Admin() *LobbyPlayer {
	for pair := l.Players.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Role == RoleAdmin {
			return pair.Value
		}
	}
	return nil
}

// EnsureAdmin promotes the earliest-inserted member when the lobby has no admin.
// It returns the promoted player, or nil if nothing changed.
func (l *Lobby) EnsureAdmin() *LobbyPlayer {
	if l.Admin() != nil {
		return nil
	}
	oldest := l.Players.Oldest()
	if oldest == nil {
		return nil
	}
	oldest.Value.Role = RoleAdmin
	return oldest.Value
}

// CheckPassword is the policy half of a join; the hash comparison is injected.
func (l *Lobby) CheckPassword(password string, compare func(hash []byte, password string) bool) bool {
	if !l.Private {
		return true
	}
	return compare(l.PasswordHash, password)
}
