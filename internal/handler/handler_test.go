package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "dreamrelay/backend/docs"
	"dreamrelay/backend/internal/auth"
	"dreamrelay/backend/internal/gateway"
	"dreamrelay/backend/internal/handler"
	"dreamrelay/backend/internal/identity"
	"dreamrelay/backend/internal/models"
	"dreamrelay/backend/internal/protocol"
	"dreamrelay/backend/internal/registry"
	"dreamrelay/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	secret = "test-secret"
	origin = "http://localhost:3000"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type server struct {
	url string
}

// start runs a gateway behind the full router. provider may be nil.
func start(t *testing.T, provider *httptest.Server) *server {
	t.Helper()
	gw := gateway.New(registry.New(), gateway.Options{
		Logger:         zerolog.Nop(),
		AllowedOrigins: []string{origin},
	})
	ctx, cancel := context.WithCancel(context.Background())
	go gw.Run(ctx)

	var idClient *identity.Client
	if provider != nil {
		idClient = identity.NewClient(provider.URL, "anon-key", provider.Client())
	}
	h := handler.New(gw, idClient, auth.NewJWTVerifier(secret), zerolog.Nop())
	srv := httptest.NewServer(handler.NewRouter(h, handler.RouterOptions{AllowedOrigins: []string{origin}}))

	t.Cleanup(func() {
		cancel()
		<-gw.Done()
		srv.Close()
	})
	return &server{url: srv.URL}
}

func (s *server) do(t *testing.T, method, path, body string, header http.Header) (int, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.url+path, reader)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

func token(t *testing.T, userID, username string) string {
	t.Helper()
	tok, err := jwt.GenerateToken(secret, userID, username, time.Hour)
	require.NoError(t, err)
	return tok
}

func bearer(tok string) http.Header {
	return http.Header{"Authorization": {"Bearer " + tok}}
}

func (s *server) dial(t *testing.T, ch protocol.Channel, tok string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(s.url, "http") + "/ws/" + string(ch)
	if tok != "" {
		u += "?token=" + tok
	}
	conn, _, err := websocket.DefaultDialer.Dial(u, http.Header{"Origin": {origin}})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func await(t *testing.T, conn *websocket.Conn, event string) json.RawMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var f struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		require.NoError(t, conn.ReadJSON(&f), "waiting for %s", event)
		if f.Type == event {
			return f.Payload
		}
	}
}

func TestRouter_BannerAndPing(t *testing.T) {
	s := start(t, nil)

	status, body := s.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, handler.Banner, body)

	status, body = s.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"message":"pong"}`, body)
}

func TestRouter_Swagger(t *testing.T) {
	gw := gateway.New(registry.New(), gateway.Options{Logger: zerolog.Nop()})
	h := handler.New(gw, nil, nil, zerolog.Nop())

	w := httptest.NewRecorder()
	handler.NewRouter(h, handler.RouterOptions{Swagger: true}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Dream Relay API")

	w = httptest.NewRecorder()
	handler.NewRouter(h, handler.RouterOptions{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_CORS(t *testing.T) {
	s := start(t, nil)

	req, err := http.NewRequest(http.MethodOptions, s.url+"/api/v1/lobbies", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, origin, resp.Header.Get("Access-Control-Allow-Origin"))

	req, err = http.NewRequest(http.MethodGet, s.url+"/ping", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://evil.example")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestSnapshots(t *testing.T) {
	s := start(t, nil)

	status, body := s.do(t, http.MethodGet, "/api/v1/lobbies", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"data":[],"meta":{"total_items":0,"total_pages":0,"current_page":1,"page_size":10}}`, body)

	alice := s.dial(t, protocol.Lobby, token(t, "u1", "Alice"))
	for _, name := range []string{"alpha", "beta", "gamma"} {
		require.NoError(t, alice.WriteJSON(map[string]any{
			"type":    protocol.EventCreateLobby,
			"payload": map[string]any{"lobbyName": name, "maxPlayers": 2 - len(name)%2},
		}))
		await(t, alice, protocol.EventJoined)
	}

	t.Run("paginated list", func(t *testing.T) {
		status, body := s.do(t, http.MethodGet, "/api/v1/lobbies?page=2&limit=2", "", nil)
		require.Equal(t, http.StatusOK, status)
		var page handler.PaginatedLobbyResponse
		require.NoError(t, json.Unmarshal([]byte(body), &page))
		require.Len(t, page.Data, 1)
		assert.Equal(t, "gamma", page.Data[0].Name)
		assert.Equal(t, handler.PaginationMeta{TotalItems: 3, TotalPages: 2, CurrentPage: 2, PageSize: 2}, page.Meta)
	})

	t.Run("page far past the end", func(t *testing.T) {
		status, body := s.do(t, http.MethodGet, "/api/v1/lobbies?page=922337203685477582&limit=10", "", nil)
		require.Equal(t, http.StatusOK, status)
		var page handler.PaginatedLobbyResponse
		require.NoError(t, json.Unmarshal([]byte(body), &page))
		assert.Empty(t, page.Data)
		assert.Equal(t, int64(3), page.Meta.TotalItems)
	})

	t.Run("available only", func(t *testing.T) {
		// alpha and gamma hold one seat each and are full.
		status, body := s.do(t, http.MethodGet, "/api/v1/lobbies?available=true", "", nil)
		require.Equal(t, http.StatusOK, status)
		var page handler.PaginatedLobbyResponse
		require.NoError(t, json.Unmarshal([]byte(body), &page))
		require.Len(t, page.Data, 1)
		assert.Equal(t, "beta", page.Data[0].Name)
	})

	t.Run("detail", func(t *testing.T) {
		status, body := s.do(t, http.MethodGet, "/api/v1/lobbies/beta", "", nil)
		require.Equal(t, http.StatusOK, status)
		var detail models.LobbyDetail
		require.NoError(t, json.Unmarshal([]byte(body), &detail))
		assert.Equal(t, "Alice", detail.Username)
		require.Len(t, detail.Players, 1)
		assert.Equal(t, models.RoleAdmin, detail.Players[0].Role)
		assert.NotContains(t, body, "password")
	})

	t.Run("not found", func(t *testing.T) {
		status, body := s.do(t, http.MethodGet, "/api/v1/lobbies/nope", "", nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.JSONEq(t, `{"error":"Lobby not found"}`, body)

		status, body = s.do(t, http.MethodGet, "/api/v1/rooms/nope", "", nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.JSONEq(t, `{"error":"Room not found"}`, body)
	})

	t.Run("stats", func(t *testing.T) {
		status, body := s.do(t, http.MethodGet, "/api/v1/stats", "", nil)
		require.Equal(t, http.StatusOK, status)
		var stats gateway.Stats
		require.NoError(t, json.Unmarshal([]byte(body), &stats))
		assert.Equal(t, 3, stats.Lobbies)
		assert.Equal(t, 3, stats.LobbyPlayers)
		assert.Equal(t, 1, stats.Connections[string(protocol.Lobby)])
	})
}

func TestRooms_AfterMoveToRoom(t *testing.T) {
	s := start(t, nil)

	alice := s.dial(t, protocol.Lobby, token(t, "u1", "Alice"))
	require.NoError(t, alice.WriteJSON(map[string]any{
		"type":    protocol.EventCreateLobby,
		"payload": map[string]any{"lobbyName": "alpha", "maxPlayers": 4},
	}))
	await(t, alice, protocol.EventJoined)
	require.NoError(t, alice.WriteJSON(map[string]any{
		"type":    protocol.EventMoveToRoom,
		"payload": map[string]any{"lobbyName": "alpha"},
	}))
	await(t, alice, protocol.EventMovedToRoom)

	room := s.dial(t, protocol.Room, token(t, "u1", "Alice"))
	require.NoError(t, room.WriteJSON(map[string]any{
		"type":    protocol.EventJoinRoom,
		"payload": map[string]any{"roomName": "alpha"},
	}))
	await(t, room, protocol.EventUpdateRoom)

	status, body := s.do(t, http.MethodGet, "/api/v1/rooms", "", nil)
	require.Equal(t, http.StatusOK, status)
	var page handler.PaginatedRoomResponse
	require.NoError(t, json.Unmarshal([]byte(body), &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, 1, page.Data[0].CurrentPlayers)

	status, body = s.do(t, http.MethodGet, "/api/v1/rooms/alpha", "", nil)
	require.Equal(t, http.StatusOK, status)
	var detail models.RoomDetail
	require.NoError(t, json.Unmarshal([]byte(body), &detail))
	require.Len(t, detail.Players, 1)
	assert.Equal(t, "Alice", detail.Players[0].Username)
}

func TestSnapshots_ShuttingDown(t *testing.T) {
	gw := gateway.New(registry.New(), gateway.Options{Logger: zerolog.Nop()})
	ctx, cancel := context.WithCancel(context.Background())
	go gw.Run(ctx)
	cancel()
	<-gw.Done()

	h := handler.New(gw, nil, nil, zerolog.Nop())
	w := httptest.NewRecorder()
	handler.NewRouter(h, handler.RouterOptions{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/lobbies", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestWebsocket_RequiresToken(t *testing.T) {
	s := start(t, nil)
	base := "ws" + strings.TrimPrefix(s.url, "http") + "/ws/"

	for _, ch := range []protocol.Channel{protocol.Directory, protocol.Lobby} {
		_, resp, err := websocket.DefaultDialer.Dial(base+string(ch), http.Header{"Origin": {origin}})
		require.Error(t, err, ch)
		require.NotNil(t, resp, ch)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, ch)
	}

	_, resp, err := websocket.DefaultDialer.Dial(base+"lobby?token=junk", http.Header{"Origin": {origin}})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// The room channel admits anonymous connections.
	conn, _, err := websocket.DefaultDialer.Dial(base+"room", http.Header{"Origin": {origin}})
	require.NoError(t, err)
	conn.Close()
}

func TestWebsocket_RejectsForeignOrigin(t *testing.T) {
	s := start(t, nil)
	u := "ws" + strings.TrimPrefix(s.url, "http") + "/ws/room"

	_, resp, err := websocket.DefaultDialer.Dial(u, http.Header{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// provider fakes the identity provider's auth endpoints.
func provider(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "hunter22" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"good","token_type":"bearer"}`))
	})
	mux.HandleFunc("POST /auth/v1/signup", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] == "taken@example.com" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"msg":"User already registered"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"u9","email":"new@example.com"}`))
	})
	mux.HandleFunc("POST /auth/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			_, _ = w.Write([]byte(`{"id":"u1","email":"alice@example.com","user_metadata":{"full_name":"Alice"}}`))
		case "Bearer down":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"msg":"invalid JWT"}`))
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAuthProxy(t *testing.T) {
	s := start(t, provider(t))

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		header     http.Header
		wantStatus int
		wantBody   string
	}{
		{"login", http.MethodPost, "/api/v1/auth/login", `{"email":"alice@example.com","password":"hunter22"}`, nil,
			http.StatusOK, `{"access_token":"good","token_type":"bearer"}`},
		{"login rejected", http.MethodPost, "/api/v1/auth/login", `{"email":"alice@example.com","password":"nope"}`, nil,
			http.StatusUnauthorized, `{"error":"Invalid login credentials"}`},
		{"signup", http.MethodPost, "/api/v1/auth/signup", `{"email":"new@example.com","password":"hunter22","name":"New"}`, nil,
			http.StatusOK, `{"id":"u9","email":"new@example.com"}`},
		{"signup rejected", http.MethodPost, "/api/v1/auth/signup", `{"email":"taken@example.com","password":"hunter22","name":"T"}`, nil,
			http.StatusBadRequest, `{"error":"User already registered"}`},
		{"logout", http.MethodPost, "/api/v1/auth/logout", "", bearer("good"),
			http.StatusOK, `{"message":"Logged out"}`},
		{"logout without token", http.MethodPost, "/api/v1/auth/logout", "", nil,
			http.StatusOK, `{"message":"Logged out"}`},
		{"me", http.MethodGet, "/api/v1/auth/me", "", bearer("good"),
			http.StatusOK, `{"user":{"id":"u1","email":"alice@example.com","user_metadata":{"full_name":"Alice"}}}`},
		{"me without token", http.MethodGet, "/api/v1/auth/me", "", nil,
			http.StatusUnauthorized, `{"error":"No token provided"}`},
		{"me with bad token", http.MethodGet, "/api/v1/auth/me", "", bearer("bad"),
			http.StatusUnauthorized, `{"error":"Invalid token"}`},
		{"me while provider is down", http.MethodGet, "/api/v1/auth/me", "", bearer("down"),
			http.StatusBadGateway, `{"error":"Identity provider unavailable"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.do(t, tt.method, tt.path, tt.body, tt.header)
			assert.Equal(t, tt.wantStatus, status)
			assert.JSONEq(t, tt.wantBody, body)
		})
	}
}

func TestAuthProxy_InvalidInput(t *testing.T) {
	s := start(t, provider(t))

	status, _ := s.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"not-an-email","password":"x"}`, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/auth/signup", `{"email":"a@example.com","password":"x"}`, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAuthProxy_WithoutProvider(t *testing.T) {
	s := start(t, nil)

	status, body := s.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"alice@example.com","password":"hunter22"}`, nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.JSONEq(t, `{"error":"Identity provider not configured"}`, body)

	// me falls back to checking the token locally.
	status, body = s.do(t, http.MethodGet, "/api/v1/auth/me", "", bearer(token(t, "u1", "Alice")))
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"user":{"userId":"u1","username":"Alice"}}`, body)

	status, body = s.do(t, http.MethodGet, "/api/v1/auth/me", "", bearer("junk"))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.JSONEq(t, `{"error":"Invalid token"}`, body)
}
