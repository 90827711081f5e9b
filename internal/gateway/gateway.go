// Package gateway connects the websocket hubs to the lobby state machine and
// the room relay.
//
// All registry access happens on one goroutine, the loop started by Run.
// Reader goroutines decode frames and post the resulting transition to the
// loop; countdown tickers post their ticks the same way. The effects a
// transition returns are executed on the loop too, in order.
package gateway

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"dreamrelay/backend/internal/events"
	"dreamrelay/backend/internal/hub"
	"dreamrelay/backend/internal/lobby"
	"dreamrelay/backend/internal/models"
	"dreamrelay/backend/internal/protocol"
	"dreamrelay/backend/internal/registry"
	"dreamrelay/backend/internal/room"

	"github.com/rs/zerolog"
)

// ErrClosed is returned when work is posted after the loop has stopped.
var ErrClosed = errors.New("gateway closed")

const defaultQueueSize = 1024

type Options struct {
	Logger           zerolog.Logger
	Bus              events.Publisher
	Clock            lobby.Clock // defaults to the gateway's own ticker
	CountdownSeconds int
	PasswordCost     int
	SendBuffer       int
	AllowedOrigins   []string
	QueueSize        int
}

type Gateway struct {
	reg     *registry.Registry
	lobbies *lobby.Machine
	rooms   *room.Relay
	hubs    map[protocol.Channel]*hub.Hub
	bus     events.Publisher
	decoder *protocol.Decoder
	log     zerolog.Logger

	tasks    chan func()
	done     chan struct{}
	runOnce  sync.Once
	stopOnce sync.Once
}

// New builds a gateway around reg. Run must be called for anything to happen.
func New(reg *registry.Registry, opts Options) *Gateway {
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.Bus == nil {
		opts.Bus = events.Noop{}
	}

	g := &Gateway{
		reg:     reg,
		bus:     opts.Bus,
		decoder: protocol.NewDecoder(),
		log:     opts.Logger.With().Str("component", "gateway").Logger(),
		tasks:   make(chan func(), opts.QueueSize),
		done:    make(chan struct{}),
	}

	clock := opts.Clock
	if clock == nil {
		clock = g
	}
	g.lobbies = lobby.NewMachine(reg, clock, g.apply, lobby.Options{
		CountdownSeconds: opts.CountdownSeconds,
		PasswordCost:     opts.PasswordCost,
		Logger:           opts.Logger,
	})
	g.rooms = room.NewRelay(reg, opts.Logger)

	hubOpts := hub.Options{
		SendBuffer:     opts.SendBuffer,
		AllowedOrigins: opts.AllowedOrigins,
		Logger:         opts.Logger,
	}
	g.hubs = map[protocol.Channel]*hub.Hub{
		protocol.Directory: hub.New(string(protocol.Directory), g, hubOpts),
		protocol.Lobby:     hub.New(string(protocol.Lobby), g, hubOpts),
		protocol.Room:      hub.New(string(protocol.Room), g, hubOpts),
	}
	return g
}

// region --- Event loop ---

// Run processes posted work until ctx is cancelled, then stops every
// countdown and disconnects all clients.
func (g *Gateway) Run(ctx context.Context) {
	started := false
	g.runOnce.Do(func() { started = true })
	if !started {
		g.log.Warn().Msg("Run called twice")
		return
	}

	g.log.Info().Msg("event loop started")
	for {
		select {
		case <-ctx.Done():
			g.shutdown()
			return
		case fn := <-g.tasks:
			g.exec(fn)
		}
	}
}

func (g *Gateway) shutdown() {
	g.stopOnce.Do(func() {
		g.lobbies.StopAll()
		for _, h := range g.hubs {
			h.Close()
		}
		close(g.done)
		g.log.Info().Msg("event loop stopped")
	})
}

// Done is closed once the loop has stopped.
func (g *Gateway) Done() <-chan struct{} { return g.done }

func (g *Gateway) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered panic in event loop")
		}
	}()
	fn()
}

// Post queues fn to run on the loop.
func (g *Gateway) Post(fn func()) error {
	select {
	case <-g.done:
		return ErrClosed
	default:
	}
	select {
	case g.tasks <- fn:
		return nil
	case <-g.done:
		return ErrClosed
	}
}

// Query runs fn on the loop and waits for it to finish.
func (g *Gateway) Query(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := g.Post(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-g.done:
		return ErrClosed
	}
}

// Every implements lobby.Clock: fn is posted to the loop once per interval
// until stop is called or the loop stops.
func (g *Gateway) Every(interval time.Duration, fn func()) (stop func()) {
	quit := make(chan struct{})
	var once sync.Once

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := g.Post(fn); err != nil {
					return
				}
			case <-quit:
				return
			case <-g.done:
				return
			}
		}
	}()

	return func() { once.Do(func() { close(quit) }) }
}

// endregion

// region --- Transport ---

// ServeWS upgrades a request onto the hub of channel ch.
func (g *Gateway) ServeWS(ch protocol.Channel, w http.ResponseWriter, r *http.Request, id models.Identity) error {
	h, ok := g.hubs[ch]
	if !ok {
		http.Error(w, "unknown channel", http.StatusNotFound)
		return errors.New("unknown channel " + string(ch))
	}
	return h.ServeWS(w, r, id)
}

// HandleMessage decodes a frame on the reader goroutine and posts the
// transition. Frames that fail to decode are dropped.
func (g *Gateway) HandleMessage(c *hub.Client, data []byte) {
	ch := protocol.Channel(c.Channel())
	req, err := g.decoder.Decode(ch, data, c.Identity)
	if err != nil {
		g.log.Debug().Err(err).Str("channel", string(ch)).Str("conn_id", c.ID).Msg("dropping frame")
		return
	}

	connID := c.ID
	if err := g.Post(func() { g.apply(g.dispatch(ch, connID, req)) }); err != nil {
		g.log.Debug().Err(err).Str("event", req.Event()).Msg("dropping frame")
	}
}

// HandleDisconnect treats a closed room connection as a permanent leave.
// Lobby members stay seated so they can reconnect by identity.
func (g *Gateway) HandleDisconnect(c *hub.Client) {
	if protocol.Channel(c.Channel()) != protocol.Room {
		return
	}
	connID := c.ID
	if err := g.Post(func() { g.apply(g.rooms.Disconnect(connID)) }); err != nil {
		g.log.Debug().Err(err).Str("conn_id", connID).Msg("disconnect not processed")
	}
}

// endregion

// dispatch routes a decoded request to its transition. It runs on the loop.
func (g *Gateway) dispatch(ch protocol.Channel, connID string, req protocol.Request) []protocol.Effect {
	switch r := req.(type) {
	// Directory queries answer only the caller.
	case *protocol.GetLobbies:
		return []protocol.Effect{protocol.Send(ch, connID, protocol.EventLobbiesList, g.reg.ListLobbies())}
	case *protocol.GetRooms:
		return []protocol.Effect{protocol.Send(ch, connID, protocol.EventRoomsList, g.reg.ListRooms())}
	case *protocol.GetLobbyPlayers:
		return []protocol.Effect{protocol.Send(ch, connID, protocol.EventLobbyPlayersList, protocol.LobbyPlayersList{
			LobbyName: r.LobbyName,
			Players:   g.reg.ListLobbyPlayers(r.LobbyName),
		})}
	case *protocol.GetRoomPlayers:
		return []protocol.Effect{protocol.Send(ch, connID, protocol.EventRoomPlayersList, protocol.RoomPlayersList{
			RoomName: r.RoomName,
			Players:  g.reg.ListRoomPlayers(r.RoomName),
		})}

	case *protocol.CreateLobby:
		return g.lobbies.CreateLobby(connID, *r)
	case *protocol.JoinLobby:
		return g.lobbies.JoinLobby(connID, *r)
	case *protocol.ReconnectToLobby:
		return g.lobbies.ReconnectToLobby(connID, *r)
	case *protocol.LobbyChat:
		return g.lobbies.Chat(*r)
	case *protocol.LeaveLobby:
		return g.lobbies.LeaveLobby(connID, *r)
	case *protocol.KickFromLobby:
		return g.lobbies.KickFromLobby(*r)
	case *protocol.ToggleReady:
		return g.lobbies.ToggleReady(*r)
	case *protocol.SelectGame:
		return g.lobbies.SelectGame(*r)
	case *protocol.TransferAdminRole:
		return g.lobbies.TransferAdminRole(*r)
	case *protocol.RequestGameCountdown:
		return g.lobbies.RequestGameCountdown(*r)
	case *protocol.CancelGameCountdown:
		return g.lobbies.CancelGameCountdown(*r)
	case *protocol.MoveToRoom:
		return g.lobbies.MoveToRoom(*r)

	case *protocol.JoinRoom:
		return g.rooms.JoinRoom(connID, *r)
	case *protocol.Input:
		return g.rooms.Input(*r)
	case *protocol.RoomChat:
		return g.rooms.Chat(*r)

	default:
		g.log.Warn().Str("event", req.Event()).Msg("no transition for request")
		return nil
	}
}

// apply executes effects in order. It runs on the loop.
func (g *Gateway) apply(effects []protocol.Effect) {
	for _, e := range effects {
		if e.Scope == protocol.ScopePublish {
			if err := g.bus.Publish(e.Event, e.Payload); err != nil {
				g.log.Warn().Err(err).Str("subject", e.Event).Msg("failed to publish notice")
			}
			continue
		}

		h, ok := g.hubs[e.Channel]
		if !ok {
			g.log.Error().Str("channel", string(e.Channel)).Str("scope", e.Scope.String()).Msg("effect for unknown channel")
			continue
		}
		switch e.Scope {
		case protocol.ScopeConn:
			h.SendTo(e.ConnID, hub.Event{Type: e.Event, Payload: e.Payload})
		case protocol.ScopeGroup:
			h.Broadcast(e.Group, hub.Event{Type: e.Event, Payload: e.Payload})
		case protocol.ScopeChannel:
			h.BroadcastAll(hub.Event{Type: e.Event, Payload: e.Payload})
		case protocol.ScopeSubscribe:
			h.Subscribe(e.ConnID, e.Group)
		case protocol.ScopeUnsubscribe:
			h.Unsubscribe(e.ConnID, e.Group)
		}
	}
}
