// Package lobby implements the lobby state machine: membership, readiness,
// admin transfer, game selection and the start countdown.
//
// Every transition takes one typed request, mutates the registry and returns
// the effects the gateway must perform. Requests that reference a missing
// lobby or player, come from a non-admin for an admin-only action, or violate
// a capacity or password policy are dropped silently: the transition returns
// no effects and the client infers failure from the missing reply.
package lobby

import (
	"time"

	"dreamrelay/backend/internal/models"
	"dreamrelay/backend/internal/protocol"
	"dreamrelay/backend/internal/registry"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultCountdownSeconds = 10
	tickInterval            = time.Second
)

// Clock schedules countdown ticks. Every must arrange for fn to run on the same
// goroutine that calls the Machine's transitions.
type Clock interface {
	Every(interval time.Duration, fn func()) (stop func())
}

// Options tune a Machine. Zero values select the defaults.
type Options struct {
	CountdownSeconds int
	PasswordCost     int
	Logger           zerolog.Logger
	Now              func() time.Time
}

type Machine struct {
	reg   *registry.Registry
	clock Clock
	emit  func([]protocol.Effect)
	log   zerolog.Logger
	now   func() time.Time

	countdownSeconds int
	passwordCost     int
}

// NewMachine wires a state machine to reg. emit receives the effects produced
// by countdown ticks, which happen outside any request.
func NewMachine(reg *registry.Registry, clock Clock, emit func([]protocol.Effect), opts Options) *Machine {
	if opts.CountdownSeconds <= 0 {
		opts.CountdownSeconds = DefaultCountdownSeconds
	}
	if opts.PasswordCost < bcrypt.MinCost || opts.PasswordCost > bcrypt.MaxCost {
		opts.PasswordCost = bcrypt.MinCost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Machine{
		reg:              reg,
		clock:            clock,
		emit:             emit,
		log:              opts.Logger.With().Str("component", "lobby").Logger(),
		now:              opts.Now,
		countdownSeconds: opts.CountdownSeconds,
		passwordCost:     opts.PasswordCost,
	}
}

// region --- Membership ---

// CreateLobby creates the lobby and seats the creator as a ready admin.
// An existing name drops the request.
func (m *Machine) CreateLobby(connID string, req protocol.CreateLobby) []protocol.Effect {
	if m.reg.Lobby(req.LobbyName) != nil {
		m.log.Debug().Str("lobby", req.LobbyName).Msg("create dropped: name taken")
		return nil
	}

	var hash []byte
	if req.Private {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(req.Password), m.passwordCost)
		if err != nil {
			m.log.Error().Err(err).Str("lobby", req.LobbyName).Msg("failed to hash lobby password")
			return nil
		}
	}

	lobby, _ := m.reg.CreateLobby(registry.LobbySpec{
		Name:            req.LobbyName,
		CreatorUsername: req.Username,
		CreatorUserID:   req.UserID,
		MaxPlayers:      req.MaxPlayers,
		Private:         req.Private,
		PasswordHash:    hash,
		GameMode:        models.DefaultGameMode,
	})
	lobby.AddPlayer(&models.LobbyPlayer{
		UserID:   req.UserID,
		Username: req.Username,
		ConnID:   connID,
		Role:     models.RoleAdmin,
		IsReady:  true,
	})

	m.log.Info().
		Str("lobby", lobby.Name).
		Str("lobby_id", lobby.ID).
		Str("user_id", req.UserID).
		Int("max_players", lobby.MaxPlayers).
		Bool("private", lobby.Private).
		Msg("lobby created")

	return []protocol.Effect{
		protocol.Subscribe(protocol.Lobby, connID, lobby.Name),
		protocol.Send(protocol.Lobby, connID, protocol.EventJoined, protocol.Joined{LobbyName: lobby.Name}),
		m.directoryLobbies(),
		m.lobbyUpdated(lobby.Name),
		protocol.Notify(protocol.SubjectLobbyCreated, m.notice(lobby.Name, lobby.ID)),
	}
}

// JoinLobby seats a new player, or rebinds the connection of a player who is
// already a member. Wrong password or a full lobby drops the request.
func (m *Machine) JoinLobby(connID string, req protocol.JoinLobby) []protocol.Effect {
	lobby := m.reg.Lobby(req.LobbyName)
	if lobby == nil {
		return nil
	}
	if !lobby.CheckPassword(req.Password, passwordMatches) {
		m.log.Debug().Str("lobby", lobby.Name).Str("user_id", req.UserID).Msg("join dropped: wrong password")
		return nil
	}
	if lobby.IsFull() {
		m.log.Debug().Str("lobby", lobby.Name).Str("user_id", req.UserID).Msg("join dropped: lobby full")
		return nil
	}

	if p := lobby.Player(req.UserID); p != nil {
		p.ConnID = connID
	} else {
		lobby.AddPlayer(&models.LobbyPlayer{
			UserID:   req.UserID,
			Username: req.Username,
			ConnID:   connID,
			Role:     models.RolePlayer,
		})
		m.log.Info().Str("lobby", lobby.Name).Str("user_id", req.UserID).Int("players", lobby.PlayerCount()).Msg("player joined")
	}

	effects := []protocol.Effect{
		protocol.Subscribe(protocol.Lobby, connID, lobby.Name),
		protocol.Send(protocol.Lobby, connID, protocol.EventJoined, protocol.Joined{LobbyName: lobby.Name}),
		m.directoryLobbies(),
		m.updatePlayers(lobby.Name),
		m.lobbyUpdated(lobby.Name),
	}
	return append(effects, m.cancelCountdown(lobby)...)
}

// ReconnectToLobby rebinds an existing member to a new connection and replays
// the lobby state to it. It is the only transition with an explicit error reply.
func (m *Machine) ReconnectToLobby(connID string, req protocol.ReconnectToLobby) []protocol.Effect {
	lobby := m.reg.Lobby(req.LobbyName)
	if lobby == nil {
		return []protocol.Effect{
			protocol.Send(protocol.Lobby, connID, protocol.EventReconnectedError, protocol.ErrorMessage{Message: "Lobby not found"}),
		}
	}
	p := lobby.Player(req.UserID)
	if p == nil {
		return []protocol.Effect{
			protocol.Send(protocol.Lobby, connID, protocol.EventReconnectedError, protocol.ErrorMessage{Message: "Player not found in lobby"}),
		}
	}

	p.ConnID = connID
	m.log.Info().Str("lobby", lobby.Name).Str("user_id", p.UserID).Msg("player reconnected")

	return []protocol.Effect{
		protocol.Subscribe(protocol.Lobby, connID, lobby.Name),
		protocol.Send(protocol.Lobby, connID, protocol.EventReconnected, protocol.Reconnected{
			LobbyName: lobby.Name,
			Username:  p.Username,
			Role:      p.Role,
			IsReady:   p.IsReady,
		}),
		protocol.Send(protocol.Lobby, connID, protocol.EventLobbyUpdated, m.reg.GetLobby(lobby.Name)),
		m.updatePlayers(lobby.Name),
	}
}

// LeaveLobby removes the player. The last player out deletes the lobby;
// otherwise the earliest remaining member inherits a vacant admin role.
func (m *Machine) LeaveLobby(connID string, req protocol.LeaveLobby) []protocol.Effect {
	lobby := m.reg.Lobby(req.LobbyName)
	if lobby == nil {
		return nil
	}

	effects := []protocol.Effect{protocol.Unsubscribe(protocol.Lobby, connID, lobby.Name)}
	p, ok := lobby.RemovePlayer(req.UserID)
	if !ok {
		// Not a member: nothing changed, so the countdown keeps running.
		return effects
	}
	if p.ConnID != "" && p.ConnID != connID {
		effects = append(effects, protocol.Unsubscribe(protocol.Lobby, p.ConnID, lobby.Name))
	}

	return append(effects, m.afterRemoval(lobby)...)
}

// KickFromLobby lets the admin remove another member. The removed player is
// told privately and stops receiving the lobby's broadcasts.
func (m *Machine) KickFromLobby(req protocol.KickFromLobby) []protocol.Effect {
	lobby, sender := m.member(req.LobbyName, req.SenderUserID)
	if sender == nil || sender.Role != models.RoleAdmin || req.TargetUserID == req.SenderUserID {
		return nil
	}
	target, ok := lobby.RemovePlayer(req.TargetUserID)
	if !ok {
		return nil
	}

	m.log.Info().Str("lobby", lobby.Name).Str("user_id", target.UserID).Str("by", sender.UserID).Msg("player kicked")

	var effects []protocol.Effect
	if target.ConnID != "" {
		effects = append(effects,
			protocol.Send(protocol.Lobby, target.ConnID, protocol.EventKicked, protocol.KickedMessage),
			protocol.Unsubscribe(protocol.Lobby, target.ConnID, lobby.Name),
		)
	}
	return append(effects, m.afterRemoval(lobby)...)
}

// afterRemoval finishes leave and kick: delete an empty lobby, otherwise keep
// exactly one admin, refresh every view and cancel a running countdown.
func (m *Machine) afterRemoval(lobby *models.Lobby) []protocol.Effect {
	if lobby.PlayerCount() == 0 {
		return m.deleteLobby(lobby)
	}

	if promoted := lobby.EnsureAdmin(); promoted != nil {
		m.log.Info().Str("lobby", lobby.Name).Str("user_id", promoted.UserID).Msg("admin promoted")
	}

	effects := []protocol.Effect{
		m.directoryLobbies(),
		m.updatePlayers(lobby.Name),
		m.lobbyUpdated(lobby.Name),
	}
	return append(effects, m.cancelCountdown(lobby)...)
}

// deleteLobby removes the record and stops its countdown without a
// cancellation broadcast since nobody is left to hear it.
func (m *Machine) deleteLobby(lobby *models.Lobby) []protocol.Effect {
	if lobby.Countdown != nil {
		lobby.Countdown.Stop()
		lobby.Countdown = nil
	}
	m.reg.DeleteLobby(lobby.Name)
	m.log.Info().Str("lobby", lobby.Name).Msg("lobby deleted")

	return []protocol.Effect{
		m.directoryLobbies(),
		protocol.Notify(protocol.SubjectLobbyDeleted, m.notice(lobby.Name, lobby.ID)),
	}
}

// endregion

// region --- In-lobby actions ---

// Chat relays a member's message to the lobby. Nothing is stored.
func (m *Machine) Chat(req protocol.LobbyChat) []protocol.Effect {
	lobby, p := m.member(req.LobbyName, req.UserID)
	if p == nil {
		return nil
	}
	return []protocol.Effect{
		protocol.Broadcast(protocol.Lobby, lobby.Name, protocol.EventChat, protocol.LobbyChatMessage{
			From:    p.Username,
			Message: req.Message,
		}),
	}
}

func (m *Machine) ToggleReady(req protocol.ToggleReady) []protocol.Effect {
	lobby, p := m.member(req.LobbyName, req.UserID)
	if p == nil {
		return nil
	}
	p.IsReady = !p.IsReady

	effects := []protocol.Effect{m.updatePlayers(lobby.Name)}
	return append(effects, m.cancelCountdown(lobby)...)
}

func (m *Machine) SelectGame(req protocol.SelectGame) []protocol.Effect {
	lobby, p := m.member(req.LobbyName, req.UserID)
	if p == nil || p.Role != models.RoleAdmin {
		return nil
	}
	lobby.SelectedGame = req.GameID
	return []protocol.Effect{m.lobbyUpdated(lobby.Name)}
}

// TransferAdminRole hands the admin role to another member. The old admin
// becomes an unready player; the new admin is ready.
func (m *Machine) TransferAdminRole(req protocol.TransferAdminRole) []protocol.Effect {
	lobby, sender := m.member(req.LobbyName, req.SenderUserID)
	if sender == nil || sender.Role != models.RoleAdmin || req.TargetUserID == req.SenderUserID {
		return nil
	}
	target := lobby.Player(req.TargetUserID)
	if target == nil {
		return nil
	}

	sender.Role = models.RolePlayer
	sender.IsReady = false
	target.Role = models.RoleAdmin
	target.IsReady = true

	m.log.Info().Str("lobby", lobby.Name).Str("from", sender.UserID).Str("to", target.UserID).Msg("admin transferred")

	return []protocol.Effect{
		m.updatePlayers(lobby.Name),
		m.lobbyUpdated(lobby.Name),
	}
}

// MoveToRoom starts the game immediately.
func (m *Machine) MoveToRoom(req protocol.MoveToRoom) []protocol.Effect {
	lobby, p := m.member(req.LobbyName, req.UserID)
	if p == nil || p.Role != models.RoleAdmin {
		return nil
	}
	if lobby.Countdown != nil {
		lobby.Countdown.Stop()
		lobby.Countdown = nil
	}
	return m.enterRoom(lobby)
}

// enterRoom flags the lobby and creates its room. The lobby record itself
// stays; it is removed when the room empties.
func (m *Machine) enterRoom(lobby *models.Lobby) []protocol.Effect {
	lobby.InRoom = true
	room, created := m.reg.CreateRoom(lobby.Name, lobby.MaxPlayers, lobby.SelectedGame)

	effects := []protocol.Effect{
		protocol.Broadcast(protocol.Lobby, lobby.Name, protocol.EventMovedToRoom, protocol.MovedToRoom{RoomName: room.Name}),
		m.directoryLobbies(),
		protocol.BroadcastAll(protocol.Directory, protocol.EventRoomsList, m.reg.ListRooms()),
	}
	if created {
		m.log.Info().Str("room", room.Name).Str("room_id", room.ID).Str("game", room.GameMode).Msg("room created")
		effects = append(effects, protocol.Notify(protocol.SubjectRoomCreated, m.notice(room.Name, room.ID)))
	}
	return effects
}

// endregion

// region --- Helpers ---

// member resolves a lobby and one of its players. Either may be nil.
func (m *Machine) member(lobbyName, userID string) (*models.Lobby, *models.LobbyPlayer) {
	lobby := m.reg.Lobby(lobbyName)
	if lobby == nil {
		return nil, nil
	}
	return lobby, lobby.Player(userID)
}

func (m *Machine) directoryLobbies() protocol.Effect {
	return protocol.BroadcastAll(protocol.Directory, protocol.EventLobbiesList, m.reg.ListLobbies())
}

func (m *Machine) updatePlayers(name string) protocol.Effect {
	return protocol.Broadcast(protocol.Lobby, name, protocol.EventUpdatePlayers, m.reg.ListLobbyPlayers(name))
}

func (m *Machine) lobbyUpdated(name string) protocol.Effect {
	return protocol.Broadcast(protocol.Lobby, name, protocol.EventLobbyUpdated, m.reg.GetLobby(name))
}

func (m *Machine) notice(name, id string) protocol.Notice {
	return protocol.Notice{Name: name, ID: id, At: m.now().UTC()}
}

func passwordMatches(hash []byte, password string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

// endregion
