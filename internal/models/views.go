package models

// region --- Lobby projections ---

// PublicPlayer is a lobby member as shown in the directory listing.
type PublicPlayer struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	IsReady  bool   `json:"isReady"`
}

// LobbySummary is one entry of the lobby directory. It never carries the
// password or connection identifiers.
type LobbySummary struct {
	Name           string         `json:"name"`
	LobbyID        string         `json:"lobbyId"`
	Username       string         `json:"username"`
	UserID         string         `json:"userId"`
	CurrentPlayers int            `json:"currentPlayers"`
	MaxPlayers     int            `json:"maxPlayers"`
	InRoom         bool           `json:"inRoom"`
	Private        bool           `json:"private"`
	Players        []PublicPlayer `json:"players"`
}

// LobbyDetail is the full view sent to lobby members. Connection ids are
// included so the admin client can address kicks; the password is not.
type LobbyDetail struct {
	Name           string        `json:"name"`
	LobbyID        string        `json:"lobbyId"`
	Username       string        `json:"username"`
	UserID         string        `json:"userId"`
	CurrentPlayers int           `json:"currentPlayers"`
	MaxPlayers     int           `json:"maxPlayers"`
	InRoom         bool          `json:"inRoom"`
	Private        bool          `json:"private"`
	SelectedGame   string        `json:"selectedGame"`
	Players        []LobbyPlayer `json:"players"`
}

func NewLobbySummary(l *Lobby) LobbySummary {
	players := make([]PublicPlayer, 0, l.PlayerCount())
	for pair := l.Players.Oldest(); pair != nil; pair = pair.Next() {
		p := pair.Value
		players = append(players, PublicPlayer{
			UserID:   p.UserID,
			Username: p.Username,
			Role:     p.Role,
			IsReady:  p.IsReady,
		})
	}

	return LobbySummary{
		Name:           l.Name,
		LobbyID:        l.ID,
		Username:       l.CreatorName,
		UserID:         l.CreatorID,
		CurrentPlayers: l.PlayerCount(),
		MaxPlayers:     l.MaxPlayers,
		InRoom:         l.InRoom,
		Private:        l.Private,
		Players:        players,
	}
}

func NewLobbyDetail(l *Lobby) LobbyDetail {
	return LobbyDetail{
		Name:           l.Name,
		LobbyID:        l.ID,
		Username:       l.CreatorName,
		UserID:         l.CreatorID,
		CurrentPlayers: l.PlayerCount(),
		MaxPlayers:     l.MaxPlayers,
		InRoom:         l.InRoom,
		Private:        l.Private,
		SelectedGame:   l.SelectedGame,
		Players:        CopyLobbyPlayers(l),
	}
}

// CopyLobbyPlayers snapshots the roster in insertion order.
func CopyLobbyPlayers(l *Lobby) []LobbyPlayer {
	players := make([]LobbyPlayer, 0, l.PlayerCount())
	for pair := l.Players.Oldest(); pair != nil; pair = pair.Next() {
		players = append(players, *pair.Value)
	}
	return players
}

// endregion

// region --- Room projections ---

type RoomSummary struct {
	Name           string `json:"name"`
	RoomID         string `json:"roomId"`
	MaxPlayers     int    `json:"maxPlayers"`
	CurrentPlayers int    `json:"currentPlayers"`
	GameMode       string `json:"gameMode"`
}

type RoomMember struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

type RoomDetail struct {
	RoomSummary
	Players []RoomMember `json:"players"`
}

// RoomState is the full room broadcast after every join, input and disconnect.
type RoomState struct {
	RoomID  string       `json:"roomId"`
	Players []RoomPlayer `json:"players"`
}

func NewRoomSummary(r *Room) RoomSummary {
	return RoomSummary{
		Name:           r.Name,
		RoomID:         r.ID,
		MaxPlayers:     r.MaxPlayers,
		CurrentPlayers: r.PlayerCount(),
		GameMode:       r.GameMode,
	}
}

func NewRoomDetail(r *Room) RoomDetail {
	members := make([]RoomMember, 0, r.PlayerCount())
	for pair := r.Players.Oldest(); pair != nil; pair = pair.Next() {
		members = append(members, RoomMember{
			UserID:   pair.Value.UserID,
			Username: pair.Value.Username,
			Role:     pair.Value.Role,
		})
	}
	return RoomDetail{RoomSummary: NewRoomSummary(r), Players: members}
}

func NewRoomState(r *Room) RoomState {
	return RoomState{RoomID: r.ID, Players: CopyRoomPlayers(r)}
}

func CopyRoomPlayers(r *Room) []RoomPlayer {
	players := make([]RoomPlayer, 0, r.PlayerCount())
	for pair := r.Players.Oldest(); pair != nil; pair = pair.Next() {
		players = append(players, *pair.Value)
	}
	return players
}

// endregion
