// Package protocol defines the wire vocabulary shared by the gateway, the lobby
// state machine and the room relay: channel names, event names, typed inbound
// requests and the effects a transition asks the gateway to perform.
package protocol

// Channel is one of the three independently addressed websocket namespaces.
type Channel string

const (
	Directory Channel = "directory"
	Lobby     Channel = "lobby"
	Room      Channel = "room"
)

// Inbound event names.
const (
	EventGetLobbies      = "getLobbies"
	EventGetRooms        = "getRooms"
	EventGetLobbyPlayers = "getLobbyPlayers"
	EventGetRoomPlayers  = "getRoomPlayers"

	EventCreateLobby          = "createLobby"
	EventJoinLobby            = "joinLobby"
	EventReconnectToLobby     = "reconnectToLobby"
	EventChat                 = "chat"
	EventLeaveLobby           = "leaveLobby"
	EventKickFromLobby        = "kickFromLobby"
	EventToggleReady          = "toggleReady"
	EventSelectGame           = "selectGame"
	EventTransferAdminRole    = "transferAdminRole"
	EventRequestGameCountdown = "requestGameCountdown"
	EventCancelGameCountdown  = "cancelGameCountdown"
	EventMoveToRoom           = "moveToRoom"

	EventJoinRoom = "joinRoom"
	EventInput    = "input"
)

// Outbound event names.
const (
	EventLobbiesList      = "lobbiesList"
	EventRoomsList        = "roomsList"
	EventLobbyPlayersList = "lobbyPlayersList"
	EventRoomPlayersList  = "roomPlayersList"

	EventJoined                 = "joined"
	EventReconnected            = "reconnected"
	EventReconnectedError       = "reconnected_error"
	EventLobbyUpdated           = "lobbyUpdated"
	EventUpdatePlayers          = "updatePlayers"
	EventKicked                 = "kicked"
	EventMovedToRoom            = "movedToRoom"
	EventGameCountdownTick      = "gameCountdownTick"
	EventGameCountdownCancelled = "gameCountdownCancelled"

	EventUpdateRoom = "updateRoom"
)

// Bus subjects for lifecycle notices, relative to the configured prefix.
const (
	SubjectLobbyCreated = "lobby.created"
	SubjectLobbyDeleted = "lobby.deleted"
	SubjectRoomCreated  = "room.created"
	SubjectRoomDeleted  = "room.deleted"
)

// KickedMessage is the text delivered to a player removed by the admin.
const KickedMessage = "You have been kicked by the host."
