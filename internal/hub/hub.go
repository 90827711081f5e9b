package hub

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"dreamrelay/backend/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// ErrClosed is returned by ServeWS once the hub has been shut down.
var ErrClosed = errors.New("hub closed")

// Event represents a real-time event to be sent to clients.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Handler receives what clients of one hub do. HandleMessage is called from
// the client's read goroutine; it must not block for long.
type Handler interface {
	HandleMessage(c *Client, data []byte)
	HandleDisconnect(c *Client)
}

type Options struct {
	SendBuffer     int
	AllowedOrigins []string
	Logger         zerolog.Logger
}

// Hub manages the websocket clients of one channel and the named groups they
// are subscribed to.
type Hub struct {
	name     string
	handler  Handler
	upgrader websocket.Upgrader
	log      zerolog.Logger

	sendBuffer int

	mu      sync.RWMutex
	clients map[string]*Client
	groups  map[string]map[string]*Client
	closed  bool
}

// New creates a Hub for the channel called name.
func New(name string, handler Handler, opts Options) *Hub {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 256
	}
	return &Hub{
		name:    name,
		handler: handler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     OriginChecker(opts.AllowedOrigins),
		},
		log:        opts.Logger.With().Str("component", "hub").Str("channel", name).Logger(),
		sendBuffer: opts.SendBuffer,
		clients:    make(map[string]*Client),
		groups:     make(map[string]map[string]*Client),
	}
}

func (h *Hub) Name() string { return h.name }

// ServeWS upgrades the request and starts the client's pumps. id is the
// verified identity of the caller, zero when the connection is anonymous.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, id models.Identity) error {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return ErrClosed
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		return err
	}

	c := &Client{
		ID:       uuid.NewString(),
		Identity: id,
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, h.sendBuffer),
	}
	if !h.register(c) {
		conn.Close()
		return ErrClosed
	}

	go c.writePump()
	go c.readPump()

	h.log.Debug().Str("conn_id", c.ID).Str("user_id", id.UserID).Str("remote", r.RemoteAddr).Msg("client connected")
	return nil
}

func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[c.ID] = c
	return true
}

// unregister removes c from the hub and every group, then closes its send
// channel so the write pump exits.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	delete(h.clients, c.ID)
	for group, members := range h.groups {
		delete(members, c.ID)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
	c.closeSend()
}

// Subscribe adds a connected client to a group. Unknown ids are ignored; the
// client may have gone away before the subscription was applied.
func (h *Hub) Subscribe(connID, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[connID]
	if !ok {
		return
	}
	if _, ok := h.groups[group]; !ok {
		h.groups[group] = make(map[string]*Client)
	}
	h.groups[group][connID] = c
}

// Unsubscribe removes a client from a group.
func (h *Hub) Unsubscribe(connID, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.groups[group]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
}

// SendTo delivers an event to a single client.
func (h *Hub) SendTo(connID string, event Event) {
	message, ok := h.encode(event)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if c, ok := h.clients[connID]; ok {
		h.deliver(c, message, event.Type)
	}
}

// Broadcast sends an event to all clients in a specific group.
func (h *Hub) Broadcast(group string, event Event) {
	message, ok := h.encode(event)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.groups[group] {
		h.deliver(c, message, event.Type)
	}
}

// BroadcastAll sends an event to every client of the hub.
func (h *Hub) BroadcastAll(event Event) {
	message, ok := h.encode(event)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		h.deliver(c, message, event.Type)
	}
}

func (h *Hub) encode(event Event) ([]byte, bool) {
	message, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Str("event", event.Type).Msg("failed to encode event")
		return nil, false
	}
	return message, true
}

// deliver must be called with h.mu held; the lock keeps c.send open.
func (h *Hub) deliver(c *Client, message []byte, eventType string) {
	// Use a non-blocking send to prevent a slow client from blocking the hub.
	select {
	case c.send <- message:
	default:
		h.log.Warn().Str("conn_id", c.ID).Str("event", eventType).Msg("send buffer full, dropping event")
	}
}

// Members returns the connection ids subscribed to group.
func (h *Hub) Members(group string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]string, 0, len(h.groups[group]))
	for id := range h.groups[group] {
		out = append(out, id)
	}
	return out
}

// Len reports the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, c := range h.clients {
		c.closeSend()
		delete(h.clients, id)
	}
	h.groups = make(map[string]map[string]*Client)
	h.log.Info().Msg("hub closed")
}

// OriginChecker builds a websocket CheckOrigin func from an allow-list. "*"
// allows any origin; requests without an Origin header are not from a browser
// and are allowed.
func OriginChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		if o != "" {
			set[strings.ToLower(o)] = struct{}{}
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[strings.ToLower(strings.TrimRight(origin, "/"))]
		return ok
	}
}
