package protocol

import "dreamrelay/backend/internal/models"

// Request is a decoded and validated inbound event.
type Request interface {
	Event() string
}

// identityBinder is implemented by requests whose acting user must come from
// the verified connection identity rather than the client payload.
type identityBinder interface {
	bindIdentity(id models.Identity)
}

// BindIdentity overwrites the acting user of req with id. It does nothing when
// the connection is unauthenticated.
func BindIdentity(req Request, id models.Identity) {
	if id.IsZero() {
		return
	}
	if b, ok := req.(identityBinder); ok {
		b.bindIdentity(id)
	}
}

func nameOr(id models.Identity, fallback string) string {
	if id.Username != "" {
		return id.Username
	}
	return fallback
}

// region --- Directory channel ---

type GetLobbies struct{}

func (GetLobbies) Event() string { return EventGetLobbies }

type GetRooms struct{}

func (GetRooms) Event() string { return EventGetRooms }

type GetLobbyPlayers struct {
	LobbyName string `json:"lobbyName" validate:"required,max=64"`
}

func (GetLobbyPlayers) Event() string { return EventGetLobbyPlayers }

type GetRoomPlayers struct {
	RoomName string `json:"roomName" validate:"required,max=64"`
}

func (GetRoomPlayers) Event() string { return EventGetRoomPlayers }

// endregion

// region --- Lobby channel ---

type CreateLobby struct {
	LobbyName  string `json:"lobbyName" validate:"required,max=64"`
	Username   string `json:"username" validate:"required,max=64"`
	UserID     string `json:"userId" validate:"required,max=128"`
	MaxPlayers int    `json:"maxPlayers" validate:"min=1,max=64"`
	Private    bool   `json:"private"`
	Password   string `json:"password" validate:"required_if=Private true,max=72"`
}

func (CreateLobby) Event() string { return EventCreateLobby }

func (r *CreateLobby) bindIdentity(id models.Identity) {
	r.UserID = id.UserID
	r.Username = nameOr(id, r.Username)
}

type JoinLobby struct {
	LobbyName string `json:"lobbyName" validate:"required,max=64"`
	Username  string `json:"username" validate:"required,max=64"`
	UserID    string `json:"userId" validate:"required,max=128"`
	Password  string `json:"password" validate:"max=72"`
}

func (JoinLobby) Event() string { return EventJoinLobby }

func (r *JoinLobby) bindIdentity(id models.Identity) {
	r.UserID = id.UserID
	r.Username = nameOr(id, r.Username)
}

type ReconnectToLobby struct {
	LobbyName string `json:"lobbyName" validate:"required,max=64"`
	UserID    string `json:"userId" validate:"required,max=128"`
}

func (ReconnectToLobby) Event() string { return EventReconnectToLobby }

func (r *ReconnectToLobby) bindIdentity(id models.Identity) { r.UserID = id.UserID }

type LobbyChat struct {
	LobbyName string `json:"lobbyName" validate:"required,max=64"`
	Message   string `json:"message" validate:"required,max=1000"`
	UserID    string `json:"userId" validate:"required,max=128"`
}

func (LobbyChat) Event() string { return EventChat }

func (r *LobbyChat) bindIdentity(id models.Identity) { r.UserID = id.UserID }

type LeaveLobby struct {
	LobbyName string `json:"lobbyName" validate:"required,max=64"`
	UserID    string `json:"userId" validate:"required,max=128"`
}

func (LeaveLobby) Event() string { return EventLeaveLobby }

func (r *LeaveLobby) bindIdentity(id models.Identity) { r.UserID = id.UserID }

type KickFromLobby struct {
	LobbyName    string `json:"lobbyName" validate:"required,max=64"`
	TargetUserID string `json:"targetUserId" validate:"required,max=128"`
	SenderUserID string `json:"senderUserId" validate:"required,max=128"`
}

func (KickFromLobby) Event() string { return EventKickFromLobby }

func (r *KickFromLobby) bindIdentity(id models.Identity) { r.SenderUserID = id.UserID }

type ToggleReady struct {
	LobbyName string `json:"lobbyName" validate:"required,max=64"`
	UserID    string `json:"userId" validate:"required,max=128"`
}

func (ToggleReady) Event() string { return EventToggleReady }

func (r *ToggleReady) bindIdentity(id models.Identity) { r.UserID = id.UserID }

type SelectGame struct {
	LobbyName string `json:"lobbyName" validate:"required,max=64"`
	GameID    string `json:"gameId" validate:"required,max=64"`
	UserID    string `json:"userId" validate:"required,max=128"`
}

func (SelectGame) Event() string { return EventSelectGame }

func (r *SelectGame) bindIdentity(id models.Identity) { r.UserID = id.UserID }

type TransferAdminRole struct {
	LobbyName    string `json:"lobbyName" validate:"required,max=64"`
	TargetUserID string `json:"targetUserId" validate:"required,max=128"`
	SenderUserID string `json:"senderUserId" validate:"required,max=128"`
}

func (TransferAdminRole) Event() string { return EventTransferAdminRole }

func (r *TransferAdminRole) bindIdentity(id models.Identity) { r.SenderUserID = id.UserID }

type RequestGameCountdown struct {
	LobbyName string `json:"lobbyName" validate:"required,max=64"`
	UserID    string `json:"userId" validate:"required,max=128"`
}

func (RequestGameCountdown) Event() string { return EventRequestGameCountdown }

func (r *RequestGameCountdown) bindIdentity(id models.Identity) { r.UserID = id.UserID }

type CancelGameCountdown struct {
	LobbyName string `json:"lobbyName" validate:"required,max=64"`
	UserID    string `json:"userId" validate:"required,max=128"`
}

func (CancelGameCountdown) Event() string { return EventCancelGameCountdown }

func (r *CancelGameCountdown) bindIdentity(id models.Identity) { r.UserID = id.UserID }

type MoveToRoom struct {
	LobbyName string `json:"lobbyName" validate:"required,max=64"`
	UserID    string `json:"userId" validate:"required,max=128"`
}

func (MoveToRoom) Event() string { return EventMoveToRoom }

func (r *MoveToRoom) bindIdentity(id models.Identity) { r.UserID = id.UserID }

// endregion

// region --- Room channel ---

type JoinRoom struct {
	RoomName string `json:"roomName" validate:"required,max=64"`
	UserID   string `json:"userId" validate:"required,max=128"`
	Username string `json:"username" validate:"required,max=64"`
}

func (JoinRoom) Event() string { return EventJoinRoom }

func (r *JoinRoom) bindIdentity(id models.Identity) {
	r.UserID = id.UserID
	r.Username = nameOr(id, r.Username)
}

// Input is a partial transform update; nil fields keep their previous value.
type Input struct {
	RoomName string            `json:"roomName" validate:"required,max=64"`
	UserID   string            `json:"userId" validate:"required,max=128"`
	Position *models.Vec3      `json:"position,omitempty"`
	Rotation *models.Vec3      `json:"rotation,omitempty"`
	State    *models.MoveState `json:"state,omitempty" validate:"omitempty,oneof=idle walk run"`
}

func (Input) Event() string { return EventInput }

func (r *Input) bindIdentity(id models.Identity) { r.UserID = id.UserID }

type RoomChat struct {
	RoomName string `json:"roomName" validate:"required,max=64"`
	Message  string `json:"message" validate:"required,max=1000"`
	UserID   string `json:"userId" validate:"max=128"`
	Username string `json:"username" validate:"max=64"`
}

func (RoomChat) Event() string { return EventChat }

func (r *RoomChat) bindIdentity(id models.Identity) {
	r.UserID = id.UserID
	r.Username = nameOr(id, r.Username)
}

// endregion
