// Package room relays in-match state: it tracks each occupant's transform and
// rebroadcasts the full room after every change.
package room

import (
	"time"

	"dreamrelay/backend/internal/models"
	"dreamrelay/backend/internal/protocol"
	"dreamrelay/backend/internal/registry"

	"github.com/rs/zerolog"
)

type Relay struct {
	reg *registry.Registry
	log zerolog.Logger
	now func() time.Time
}

func NewRelay(reg *registry.Registry, logger zerolog.Logger) *Relay {
	return &Relay{
		reg: reg,
		log: logger.With().Str("component", "room").Logger(),
		now: time.Now,
	}
}

// JoinRoom seats the player at spawn, or rebinds the connection of a player who
// is already in the room. A missing room drops the request.
func (r *Relay) JoinRoom(connID string, req protocol.JoinRoom) []protocol.Effect {
	room := r.reg.Room(req.RoomName)
	if room == nil {
		return nil
	}

	if p := room.Player(req.UserID); p != nil {
		p.ConnID = connID
	} else {
		if room.MaxPlayers > 0 && room.PlayerCount() >= room.MaxPlayers {
			r.log.Debug().Str("room", room.Name).Str("user_id", req.UserID).Msg("join dropped: room full")
			return nil
		}
		room.Players.Set(req.UserID, models.NewRoomPlayer(req.UserID, req.Username, r.lobbyRole(room.Name, req.UserID), connID))
		r.log.Info().Str("room", room.Name).Str("user_id", req.UserID).Int("players", room.PlayerCount()).Msg("player entered room")
	}

	return []protocol.Effect{
		protocol.Subscribe(protocol.Room, connID, room.Name),
		updateRoom(room),
	}
}

// Input applies a partial transform update. Omitted fields keep their value.
func (r *Relay) Input(req protocol.Input) []protocol.Effect {
	room := r.reg.Room(req.RoomName)
	if room == nil {
		return nil
	}
	p := room.Player(req.UserID)
	if p == nil {
		return nil
	}

	if req.Position != nil {
		p.Position = *req.Position
	}
	if req.Rotation != nil {
		p.Rotation = *req.Rotation
	}
	if req.State != nil {
		p.State = *req.State
	}

	return []protocol.Effect{updateRoom(room)}
}

func (r *Relay) Chat(req protocol.RoomChat) []protocol.Effect {
	return []protocol.Effect{
		protocol.Broadcast(protocol.Room, req.RoomName, protocol.EventChat, protocol.RoomChatMessage{
			Sender:  req.Username,
			Message: req.Message,
		}),
	}
}

// Disconnect removes the occupant bound to connID from every room. A room left
// empty is deleted together with its in-room lobby, and both directory
// listings are refreshed.
func (r *Relay) Disconnect(connID string) []protocol.Effect {
	var (
		effects []protocol.Effect
		emptied bool
	)

	for _, room := range r.reg.Rooms() {
		p := room.PlayerByConn(connID)
		if p == nil {
			continue
		}
		room.Players.Delete(p.UserID)
		effects = append(effects, updateRoom(room))
		r.log.Info().Str("room", room.Name).Str("user_id", p.UserID).Msg("player left room")

		if room.PlayerCount() > 0 {
			continue
		}
		emptied = true
		effects = append(effects, r.deleteRoom(room)...)
	}

	if emptied {
		effects = append(effects,
			protocol.BroadcastAll(protocol.Directory, protocol.EventLobbiesList, r.reg.ListLobbies()),
			protocol.BroadcastAll(protocol.Directory, protocol.EventRoomsList, r.reg.ListRooms()),
		)
	}
	return effects
}

// deleteRoom drops an empty room and the lobby it was started from, if that
// lobby is still flagged in-room.
func (r *Relay) deleteRoom(room *models.Room) []protocol.Effect {
	r.reg.DeleteRoom(room.Name)
	r.log.Info().Str("room", room.Name).Msg("room deleted")

	effects := []protocol.Effect{
		protocol.Notify(protocol.SubjectRoomDeleted, r.notice(room.Name, room.ID)),
	}

	lobby := r.reg.Lobby(room.Name)
	if lobby == nil || !lobby.InRoom {
		return effects
	}
	if lobby.Countdown != nil {
		lobby.Countdown.Stop()
		lobby.Countdown = nil
	}
	r.reg.DeleteLobby(lobby.Name)
	r.log.Info().Str("lobby", lobby.Name).Msg("in-room lobby deleted")

	return append(effects, protocol.Notify(protocol.SubjectLobbyDeleted, r.notice(lobby.Name, lobby.ID)))
}

// lobbyRole carries the lobby standing into the room, defaulting to player.
func (r *Relay) lobbyRole(name, userID string) models.Role {
	if lobby := r.reg.Lobby(name); lobby != nil {
		if p := lobby.Player(userID); p != nil {
			return p.Role
		}
	}
	return models.RolePlayer
}

func (r *Relay) notice(name, id string) protocol.Notice {
	return protocol.Notice{Name: name, ID: id, At: r.now().UTC()}
}

func updateRoom(room *models.Room) protocol.Effect {
	return protocol.Broadcast(protocol.Room, room.Name, protocol.EventUpdateRoom, models.NewRoomState(room))
}
