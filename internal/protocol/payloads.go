package protocol

import "dreamrelay/backend/internal/models"

// Outbound payloads that are not plain projections.

type Joined struct {
	LobbyName string `json:"lobbyName"`
}

type Reconnected struct {
	LobbyName string      `json:"lobbyName"`
	Username  string      `json:"username"`
	Role      models.Role `json:"role"`
	IsReady   bool        `json:"isReady"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

type LobbyChatMessage struct {
	From    string `json:"from"`
	Message string `json:"message"`
}

type RoomChatMessage struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

type MovedToRoom struct {
	RoomName string `json:"roomName"`
}

type CountdownTick struct {
	Seconds int `json:"seconds"`
}

type LobbyPlayersList struct {
	LobbyName string               `json:"lobbyName"`
	Players   []models.LobbyPlayer `json:"players"`
}

type RoomPlayersList struct {
	RoomName string              `json:"roomName"`
	Players  []models.RoomPlayer `json:"players"`
}
