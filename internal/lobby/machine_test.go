package lobby_test

import (
	"testing"
	"time"

	"dreamrelay/backend/internal/lobby"
	"dreamrelay/backend/internal/models"
	"dreamrelay/backend/internal/protocol"
	"dreamrelay/backend/internal/registry"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualClock fires scheduled functions only when the test says so.
type manualClock struct {
	timers []*manualTimer
}

type manualTimer struct {
	fn      func()
	stopped bool
}

func (c *manualClock) Every(_ time.Duration, fn func()) func() {
	t := &manualTimer{fn: fn}
	c.timers = append(c.timers, t)
	return func() { t.stopped = true }
}

// Advance fires every live timer n times.
func (c *manualClock) Advance(n int) {
	for i := 0; i < n; i++ {
		for _, t := range append([]*manualTimer(nil), c.timers...) {
			if !t.stopped {
				t.fn()
			}
		}
	}
}

func (c *manualClock) live() int {
	n := 0
	for _, t := range c.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

type fixture struct {
	reg     *registry.Registry
	clock   *manualClock
	machine *lobby.Machine
	emitted []protocol.Effect
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{reg: registry.New(), clock: &manualClock{}}
	f.machine = lobby.NewMachine(f.reg, f.clock, func(effects []protocol.Effect) {
		f.emitted = append(f.emitted, effects...)
	}, lobby.Options{Logger: zerolog.Nop()})
	return f
}

func (f *fixture) create(t *testing.T, name, user, userID string, maxPlayers int) {
	t.Helper()
	effects := f.machine.CreateLobby("conn-"+userID, protocol.CreateLobby{
		LobbyName:  name,
		Username:   user,
		UserID:     userID,
		MaxPlayers: maxPlayers,
	})
	require.NotEmpty(t, effects)
}

func (f *fixture) join(name, user, userID, password string) []protocol.Effect {
	return f.machine.JoinLobby("conn-"+userID, protocol.JoinLobby{
		LobbyName: name,
		Username:  user,
		UserID:    userID,
		Password:  password,
	})
}

func events(effects []protocol.Effect) []string {
	out := make([]string, 0, len(effects))
	for _, e := range effects {
		if e.Event != "" {
			out = append(out, e.Event)
		}
	}
	return out
}

func find(effects []protocol.Effect, event string) (protocol.Effect, bool) {
	for _, e := range effects {
		if e.Event == event {
			return e, true
		}
	}
	return protocol.Effect{}, false
}

func admins(l *models.Lobby) int {
	n := 0
	for pair := l.Players.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Role == models.RoleAdmin {
			n++
		}
	}
	return n
}

func TestMachine_CreateLobby(t *testing.T) {
	f := newFixture(t)

	effects := f.machine.CreateLobby("c1", protocol.CreateLobby{
		LobbyName:  "alpha",
		Username:   "Alice",
		UserID:     "u1",
		MaxPlayers: 2,
	})

	require.Len(t, effects, 5)
	assert.Equal(t, protocol.ScopeSubscribe, effects[0].Scope)
	assert.Equal(t, "alpha", effects[0].Group)
	assert.Equal(t, protocol.ScopeConn, effects[1].Scope)
	assert.Equal(t, protocol.EventJoined, effects[1].Event)
	assert.Equal(t, protocol.Joined{LobbyName: "alpha"}, effects[1].Payload)
	assert.Equal(t, protocol.EventLobbiesList, effects[2].Event)
	assert.Equal(t, protocol.Directory, effects[2].Channel)
	assert.Equal(t, protocol.EventLobbyUpdated, effects[3].Event)
	assert.Equal(t, protocol.ScopePublish, effects[4].Scope)
	assert.Equal(t, protocol.SubjectLobbyCreated, effects[4].Event)

	l := f.reg.Lobby("alpha")
	require.NotNil(t, l)
	creator := l.Player("u1")
	require.NotNil(t, creator)
	assert.Equal(t, models.RoleAdmin, creator.Role)
	assert.True(t, creator.IsReady)
	assert.Equal(t, "c1", creator.ConnID)
	assert.Equal(t, models.DefaultGameMode, l.SelectedGame)
}

func TestMachine_CreateLobby_NameTaken(t *testing.T) {
	f := newFixture(t)
	f.create(t, "alpha", "Alice", "u1", 4)

	effects := f.machine.CreateLobby("c2", protocol.CreateLobby{
		LobbyName:  "alpha",
		Username:   "Bob",
		UserID:     "u2",
		MaxPlayers: 8,
	})

	assert.Empty(t, effects)
	l := f.reg.Lobby("alpha")
	assert.Equal(t, 1, l.PlayerCount())
	assert.Equal(t, 4, l.MaxPlayers)
	assert.Nil(t, l.Player("u2"))
}

func TestMachine_JoinLobby(t *testing.T) {
	tests := []struct {
		name       string
		private    bool
		password   string
		maxPlayers int
		setup      func(f *fixture)
		lobbyName  string
		joinPass   string
		wantJoined bool
		wantCount  int
	}{
		{
			name:       "public lobby",
			maxPlayers: 2,
			lobbyName:  "alpha",
			wantJoined: true,
			wantCount:  2,
		},
		{
			name:       "missing lobby",
			maxPlayers: 2,
			lobbyName:  "nope",
			wantJoined: false,
			wantCount:  1,
		},
		{
			name:       "full lobby",
			maxPlayers: 2,
			setup: func(f *fixture) {
				f.join("alpha", "Carol", "u3", "")
			},
			lobbyName:  "alpha",
			wantJoined: false,
			wantCount:  2,
		},
		{
			name:       "private lobby with right password",
			private:    true,
			password:   "secret",
			maxPlayers: 4,
			lobbyName:  "alpha",
			joinPass:   "secret",
			wantJoined: true,
			wantCount:  2,
		},
		{
			name:       "private lobby with wrong password",
			private:    true,
			password:   "secret",
			maxPlayers: 4,
			lobbyName:  "alpha",
			joinPass:   "wrong",
			wantJoined: false,
			wantCount:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.machine.CreateLobby("conn-u1", protocol.CreateLobby{
				LobbyName:  "alpha",
				Username:   "Alice",
				UserID:     "u1",
				MaxPlayers: tt.maxPlayers,
				Private:    tt.private,
				Password:   tt.password,
			})
			if tt.setup != nil {
				tt.setup(f)
			}

			effects := f.join(tt.lobbyName, "Bob", "u2", tt.joinPass)

			_, joined := find(effects, protocol.EventJoined)
			assert.Equal(t, tt.wantJoined, joined)
			if !tt.wantJoined {
				assert.Empty(t, effects)
			}

			l := f.reg.Lobby("alpha")
			require.NotNil(t, l)
			assert.Equal(t, tt.wantCount, l.PlayerCount())
			assert.LessOrEqual(t, l.PlayerCount(), l.MaxPlayers)
		})
	}
}

func TestMachine_JoinLobby_NewPlayerDefaults(t *testing.T) {
	f := newFixture(t)
	f.create(t, "alpha", "Alice", "u1", 4)

	effects := f.join("alpha", "Bob", "u2", "")

	assert.Equal(t, []string{
		protocol.EventJoined,
		protocol.EventLobbiesList,
		protocol.EventUpdatePlayers,
		protocol.EventLobbyUpdated,
	}, events(effects))

	bob := f.reg.Lobby("alpha").Player("u2")
	require.NotNil(t, bob)
	assert.Equal(t, models.RolePlayer, bob.Role)
	assert.False(t, bob.IsReady)
}

func TestMachine_JoinLobby_Rejoin(t *testing.T) {
	f := newFixture(t)
	f.create(t, "alpha", "Alice", "u1", 4)
	f.join("alpha", "Bob", "u2", "")

	effects := f.machine.JoinLobby("fresh-conn", protocol.JoinLobby{LobbyName: "alpha", Username: "Bob", UserID: "u2"})

	_, joined := find(effects, protocol.EventJoined)
	assert.True(t, joined)
	l := f.reg.Lobby("alpha")
	assert.Equal(t, 2, l.PlayerCount())
	assert.Equal(t, "fresh-conn", l.Player("u2").ConnID)
}

func TestMachine_ReconnectToLobby(t *testing.T) {
	f := newFixture(t)
	f.create(t, "alpha", "Alice", "u1", 4)
	f.join("alpha", "Bob", "u2", "")
	f.machine.ToggleReady(protocol.ToggleReady{LobbyName: "alpha", UserID: "u2"})

	effects := f.machine.ReconnectToLobby("new-conn", protocol.ReconnectToLobby{LobbyName: "alpha", UserID: "u2"})

	require.Len(t, effects, 4)
	assert.Equal(t, protocol.ScopeSubscribe, effects[0].Scope)
	assert.Equal(t, "new-conn", effects[0].ConnID)
	assert.Equal(t, protocol.EventReconnected, effects[1].Event)
	assert.Equal(t, "new-conn", effects[1].ConnID)
	assert.Equal(t, protocol.Reconnected{
		LobbyName: "alpha",
		Username:  "Bob",
		Role:      models.RolePlayer,
		IsReady:   true,
	}, effects[1].Payload)
	assert.Equal(t, protocol.EventLobbyUpdated, effects[2].Event)
	assert.Equal(t, protocol.ScopeConn, effects[2].Scope)
	assert.Equal(t, protocol.EventUpdatePlayers, effects[3].Event)
	assert.Equal(t, protocol.ScopeGroup, effects[3].Scope)

	l := f.reg.Lobby("alpha")
	assert.Equal(t, 2, l.PlayerCount())
	assert.Equal(t, "new-conn", l.Player("u2").ConnID)
}

func TestMachine_ReconnectToLobby_Errors(t *testing.T) {
	f := newFixture(t)
	f.create(t, "alpha", "Alice", "u1", 4)

	tests := []struct {
		name    string
		req     protocol.ReconnectToLobby
		message string
	}{
		{"missing lobby", protocol.ReconnectToLobby{LobbyName: "beta", UserID: "u1"}, "Lobby not found"},
		{"missing player", protocol.ReconnectToLobby{LobbyName: "alpha", UserID: "u9"}, "Player not found in lobby"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			effects := f.machine.ReconnectToLobby("c9", tt.req)

			require.Len(t, effects, 1)
			assert.Equal(t, protocol.EventReconnectedError, effects[0].Event)
			assert.Equal(t, "c9", effects[0].ConnID)
			assert.Equal(t, protocol.ErrorMessage{Message: tt.message}, effects[0].Payload)
		})
	}
}

func TestMachine_LeaveLobby_PromotesEarliestMember(t *testing.T) {
	f := newFixture(t)
	f.create(t, "alpha", "Alice", "u1", 4)
	f.join("alpha", "Bob", "u2", "")
	f.join("alpha", "Carol", "u3", "")

	effects := f.machine.LeaveLobby("conn-u1", protocol.LeaveLobby{LobbyName: "alpha", UserID: "u1"})

	assert.Equal(t, protocol.ScopeUnsubscribe, effects[0].Scope)
	assert.Equal(t, []string{
		protocol.EventLobbiesList,
		protocol.EventUpdatePlayers,
		protocol.EventLobbyUpdated,
	}, events(effects))

	l := f.reg.Lobby("alpha")
	require.NotNil(t, l)
	assert.Equal(t, models.RoleAdmin, l.Player("u2").Role)
	assert.Equal(t, models.RolePlayer, l.Player("u3").Role)
	assert.Equal(t, 1, admins(l))
}

func TestMachine_LeaveLobby_LastPlayerDeletesLobby(t *testing.T) {
	f := newFixture(t)
	f.create(t, "alpha", "Alice", "u1", 4)

	effects := f.machine.LeaveLobby("conn-u1", protocol.LeaveLobby{LobbyName: "alpha", UserID: "u1"})

	assert.Nil(t, f.reg.Lobby("alpha"))
	assert.Empty(t, f.reg.ListLobbies())
	list, ok := find(effects, protocol.EventLobbiesList)
	require.True(t, ok)
	assert.Empty(t, list.Payload)
	notice, ok := find(effects, protocol.SubjectLobbyDeleted)
	require.True(t, ok)
	assert.Equal(t, "alpha", notice.Payload.(protocol.Notice).Name)

	// The name is free again.
	f.create(t, "alpha", "Dave", "u4", 3)
	assert.Equal(t, "u4", f.reg.Lobby("alpha").CreatorID)
}

func TestMachine_KickFromLobby(t *testing.T) {
	f := newFixture(t)
	f.create(t, "alpha", "Alice", "u1", 4)
	f.join("alpha", "Bob", "u2", "")
	f.join("alpha", "Carol", "u3", "")

	t.Run("non-admin is ignored", func(t *testing.T) {
		effects := f.machine.KickFromLobby(protocol.KickFromLobby{LobbyName: "alpha", TargetUserID: "u3", SenderUserID: "u2"})
		assert.Empty(t, effects)
		assert.Equal(t, 3, f.reg.Lobby("alpha").PlayerCount())
	})

	t.Run("admin cannot kick themselves", func(t *testing.T) {
		effects := f.machine.KickFromLobby(protocol.KickFromLobby{LobbyName: "alpha", TargetUserID: "u1", SenderUserID: "u1"})
		assert.Empty(t, effects)
		assert.Equal(t, 3, f.reg.Lobby("alpha").PlayerCount())
	})

	t.Run("missing target is ignored", func(t *testing.T) {
		effects := f.machine.KickFromLobby(protocol.KickFromLobby{LobbyName: "alpha", TargetUserID: "u9", SenderUserID: "u1"})
		assert.Empty(t, effects)
	})

	t.Run("admin kicks a member", func(t *testing.T) {
		effects := f.machine.KickFromLobby(protocol.KickFromLobby{LobbyName: "alpha", TargetUserID: "u3", SenderUserID: "u1"})

		require.GreaterOrEqual(t, len(effects), 2)
		assert.Equal(t, protocol.ScopeConn, effects[0].Scope)
		assert.Equal(t, "conn-u3", effects[0].ConnID)
		assert.Equal(t, protocol.EventKicked, effects[0].Event)
		assert.Equal(t, protocol.KickedMessage, effects[0].Payload)
		assert.Equal(t, protocol.ScopeUnsubscribe, effects[1].Scope)
		assert.Equal(t, "conn-u3", effects[1].ConnID)

		l := f.reg.Lobby("alpha")
		assert.Nil(t, l.Player("u3"))
		assert.Equal(t, 2, l.PlayerCount())
		assert.Equal(t, 1, admins(l))
	})
}

func TestMachine_TransferAdminRole(t *testing.T) {
	f := newFixture(t)
	f.create(t, "alpha", "Alice", "u1", 4)
	f.join("alpha", "Bob", "u2", "")

	effects := f.machine.TransferAdminRole(protocol.TransferAdminRole{LobbyName: "alpha", TargetUserID: "u2", SenderUserID: "u1"})

	assert.Equal(t, []string{protocol.EventUpdatePlayers, protocol.EventLobbyUpdated}, events(effects))
	l := f.reg.Lobby("alpha")
	alice, bob := l.Player("u1"), l.Player("u2")
	assert.Equal(t, models.RolePlayer, alice.Role)
	assert.False(t, alice.IsReady)
	assert.Equal(t, models.RoleAdmin, bob.Role)
	assert.True(t, bob.IsReady)
	assert.Equal(t, 1, admins(l))

	// Alice lost her powers.
	assert.Empty(t, f.machine.TransferAdminRole(protocol.TransferAdminRole{LobbyName: "alpha", TargetUserID: "u1", SenderUserID: "u1"}))
	assert.Empty(t, f.machine.SelectGame(protocol.SelectGame{LobbyName: "alpha", GameID: "chess", UserID: "u1"}))
}

func TestMachine_SingleAdminInvariant(t *testing.T) {
	f := newFixture(t)
	f.create(t, "alpha", "Alice", "u1", 5)

	steps := []func(){
		func() { f.join("alpha", "Bob", "u2", "") },
		func() { f.join("alpha", "Carol", "u3", "") },
		func() {
			f.machine.TransferAdminRole(protocol.TransferAdminRole{LobbyName: "alpha", TargetUserID: "u3", SenderUserID: "u1"})
		},
		func() { f.join("alpha", "Dave", "u4", "") },
		func() { f.machine.LeaveLobby("conn-u3", protocol.LeaveLobby{LobbyName: "alpha", UserID: "u3"}) },
		func() {
			f.machine.KickFromLobby(protocol.KickFromLobby{LobbyName: "alpha", TargetUserID: "u4", SenderUserID: "u1"})
		},
		func() { f.machine.LeaveLobby("conn-u1", protocol.LeaveLobby{LobbyName: "alpha", UserID: "u1"}) },
	}

	for i, step := range steps {
		step()
		l := f.reg.Lobby("alpha")
		require.NotNil(t, l, "step %d", i)
		assert.Equal(t, 1, admins(l), "step %d", i)
	}
	assert.Equal(t, models.RoleAdmin, f.reg.Lobby("alpha").Player("u2").Role)
}

func TestMachine_Chat(t *testing.T) {
	f := newFixture(t)
	f.create(t, "alpha", "Alice", "u1", 4)

	effects := f.machine.Chat(protocol.LobbyChat{LobbyName: "alpha", Message: "hi", UserID: "u1"})
	require.Len(t, effects, 1)
	assert.Equal(t, protocol.ScopeGroup, effects[0].Scope)
	assert.Equal(t, protocol.LobbyChatMessage{From: "Alice", Message: "hi"}, effects[0].Payload)

	assert.Empty(t, f.machine.Chat(protocol.LobbyChat{LobbyName: "alpha", Message: "hi", UserID: "stranger"}))
}

func TestMachine_SelectGame(t *testing.T) {
	f := newFixture(t)
	f.create(t, "alpha", "Alice", "u1", 4)

	effects := f.machine.SelectGame(protocol.SelectGame{LobbyName: "alpha", GameID: "chess", UserID: "u1"})

	require.Len(t, effects, 1)
	detail, ok := effects[0].Payload.(*models.LobbyDetail)
	require.True(t, ok)
	assert.Equal(t, "chess", detail.SelectedGame)
	assert.Equal(t, "chess", f.reg.Lobby("alpha").SelectedGame)
}

func TestMachine_Countdown_Supersession(t *testing.T) {
	f := newFixture(t)
	f.create(t, "alpha", "Alice", "u1", 2)
	req := protocol.RequestGameCountdown{LobbyName: "alpha", UserID: "u1"}

	first := f.machine.RequestGameCountdown(req)
	f.clock.Advance(3)
	second := f.machine.RequestGameCountdown(req)

	for _, effects := range [][]protocol.Effect{first, second} {
		require.Len(t, effects, 1)
		assert.Equal(t, protocol.CountdownTick{Seconds: 10}, effects[0].Payload)
	}
	assert.Equal(t, 1, f.clock.live())

	f.emitted = nil
	f.clock.Advance(1)
	require.Len(t, f.emitted, 1)
	assert.Equal(t, protocol.CountdownTick{Seconds: 9}, f.emitted[0].Payload)
}

func TestMachine_Countdown_StaleTickIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.create(t, "alpha", "Alice", "u1", 2)
	req := protocol.RequestGameCountdown{LobbyName: "alpha", UserID: "u1"}

	f.machine.RequestGameCountdown(req)
	stale := f.clock.timers[0]
	f.machine.RequestGameCountdown(req)
	require.True(t, stale.stopped)

	// A tick already queued before the restart still runs once.
	f.emitted = nil
	stale.fn()
	assert.Empty(t, f.emitted)
	assert.Equal(t, 10, f.reg.Lobby("alpha").Countdown.Remaining)
}

func TestMachine_Countdown_CancelledByMembershipChange(t *testing.T) {
	tests := []struct {
		name   string
		change func(f *fixture) []protocol.Effect
	}{
		{
			name: "toggle ready",
			change: func(f *fixture) []protocol.Effect {
				return f.machine.ToggleReady(protocol.ToggleReady{LobbyName: "alpha", UserID: "u2"})
			},
		},
		{
			name: "join",
			change: func(f *fixture) []protocol.Effect {
				return f.join("alpha", "Carol", "u3", "")
			},
		},
		{
			name: "leave",
			change: func(f *fixture) []protocol.Effect {
				return f.machine.LeaveLobby("conn-u2", protocol.LeaveLobby{LobbyName: "alpha", UserID: "u2"})
			},
		},
		{
			name: "kick",
			change: func(f *fixture) []protocol.Effect {
				return f.machine.KickFromLobby(protocol.KickFromLobby{LobbyName: "alpha", TargetUserID: "u2", SenderUserID: "u1"})
			},
		},
		{
			name: "admin cancel",
			change: func(f *fixture) []protocol.Effect {
				return f.machine.CancelGameCountdown(protocol.CancelGameCountdown{LobbyName: "alpha", UserID: "u1"})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.create(t, "alpha", "Alice", "u1", 4)
			f.join("alpha", "Bob", "u2", "")
			f.machine.RequestGameCountdown(protocol.RequestGameCountdown{LobbyName: "alpha", UserID: "u1"})
			f.clock.Advance(2)

			effects := tt.change(f)

			assert.Contains(t, events(effects), protocol.EventGameCountdownCancelled)
			assert.Nil(t, f.reg.Lobby("alpha").Countdown)

			f.emitted = nil
			f.clock.Advance(20)
			assert.Empty(t, f.emitted)
			assert.Nil(t, f.reg.Room("alpha"))
		})
	}
}

func TestMachine_LeaveLobby_NonMemberKeepsCountdown(t *testing.T) {
	f := newFixture(t)
	f.create(t, "alpha", "Alice", "u1", 4)
	f.join("alpha", "Bob", "u2", "")
	f.machine.RequestGameCountdown(protocol.RequestGameCountdown{LobbyName: "alpha", UserID: "u1"})
	f.clock.Advance(2)

	effects := f.machine.LeaveLobby("conn-x", protocol.LeaveLobby{LobbyName: "alpha", UserID: "stranger"})

	require.Len(t, effects, 1)
	assert.Equal(t, protocol.ScopeUnsubscribe, effects[0].Scope)
	assert.Equal(t, "conn-x", effects[0].ConnID)
	assert.Empty(t, events(effects))

	l := f.reg.Lobby("alpha")
	require.NotNil(t, l)
	assert.NotNil(t, l.Countdown)
	assert.Equal(t, 2, l.PlayerCount())
	assert.Equal(t, 1, f.clock.live())
}

func TestMachine_CancelGameCountdown_WithoutCountdown(t *testing.T) {
	f := newFixture(t)
	f.create(t, "alpha", "Alice", "u1", 4)

	assert.Empty(t, f.machine.CancelGameCountdown(protocol.CancelGameCountdown{LobbyName: "alpha", UserID: "u1"}))
}

func TestMachine_CountdownRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	f.create(t, "alpha", "Alice", "u1", 4)
	f.join("alpha", "Bob", "u2", "")

	assert.Empty(t, f.machine.RequestGameCountdown(protocol.RequestGameCountdown{LobbyName: "alpha", UserID: "u2"}))
	assert.Zero(t, f.clock.live())
}

func TestMachine_CreateJoinStartScenario(t *testing.T) {
	f := newFixture(t)

	f.machine.CreateLobby("c1", protocol.CreateLobby{LobbyName: "alpha", Username: "Alice", UserID: "u1", MaxPlayers: 2})
	effects := f.machine.JoinLobby("c2", protocol.JoinLobby{LobbyName: "alpha", Username: "Bob", UserID: "u2"})
	_, joined := find(effects, protocol.EventJoined)
	require.True(t, joined)

	l := f.reg.Lobby("alpha")
	assert.Equal(t, 2, l.PlayerCount())
	assert.Equal(t, models.RolePlayer, l.Player("u2").Role)
	assert.False(t, l.Player("u2").IsReady)

	f.machine.RequestGameCountdown(protocol.RequestGameCountdown{LobbyName: "alpha", UserID: "u1"})

	f.clock.Advance(9)
	assert.Nil(t, f.reg.Room("alpha"))
	require.Len(t, f.emitted, 9)
	assert.Equal(t, protocol.CountdownTick{Seconds: 1}, f.emitted[8].Payload)

	f.emitted = nil
	f.clock.Advance(1)

	room := f.reg.Room("alpha")
	require.NotNil(t, room)
	assert.Equal(t, 2, room.MaxPlayers)
	assert.Equal(t, models.DefaultGameMode, room.GameMode)
	assert.True(t, l.InRoom)
	assert.Nil(t, l.Countdown)
	assert.Zero(t, f.clock.live())

	assert.Equal(t, []string{
		protocol.EventMovedToRoom,
		protocol.EventLobbiesList,
		protocol.EventRoomsList,
		protocol.SubjectRoomCreated,
	}, events(f.emitted))
	moved, _ := find(f.emitted, protocol.EventMovedToRoom)
	assert.Equal(t, protocol.MovedToRoom{RoomName: "alpha"}, moved.Payload)

	// The lobby stays listed, flagged in-room.
	lobbies := f.reg.ListLobbies()
	require.Len(t, lobbies, 1)
	assert.True(t, lobbies[0].InRoom)
}

func TestMachine_MoveToRoom(t *testing.T) {
	f := newFixture(t)
	f.create(t, "alpha", "Alice", "u1", 3)
	f.join("alpha", "Bob", "u2", "")
	f.machine.SelectGame(protocol.SelectGame{LobbyName: "alpha", GameID: "racing", UserID: "u1"})
	f.machine.RequestGameCountdown(protocol.RequestGameCountdown{LobbyName: "alpha", UserID: "u1"})

	assert.Empty(t, f.machine.MoveToRoom(protocol.MoveToRoom{LobbyName: "alpha", UserID: "u2"}))

	effects := f.machine.MoveToRoom(protocol.MoveToRoom{LobbyName: "alpha", UserID: "u1"})

	assert.NotContains(t, events(effects), protocol.EventGameCountdownCancelled)
	assert.Contains(t, events(effects), protocol.EventMovedToRoom)
	assert.Zero(t, f.clock.live())

	room := f.reg.Room("alpha")
	require.NotNil(t, room)
	assert.Equal(t, "racing", room.GameMode)
	assert.Equal(t, 3, room.MaxPlayers)

	// A second start finds the room already there and announces nothing new.
	again := f.machine.MoveToRoom(protocol.MoveToRoom{LobbyName: "alpha", UserID: "u1"})
	assert.NotContains(t, events(again), protocol.SubjectRoomCreated)
	assert.Len(t, f.reg.Rooms(), 1)
}

func TestMachine_StopAll(t *testing.T) {
	f := newFixture(t)
	f.create(t, "alpha", "Alice", "u1", 3)
	f.create(t, "beta", "Bob", "u2", 3)
	f.machine.RequestGameCountdown(protocol.RequestGameCountdown{LobbyName: "alpha", UserID: "u1"})
	f.machine.RequestGameCountdown(protocol.RequestGameCountdown{LobbyName: "beta", UserID: "u2"})
	require.Equal(t, 2, f.clock.live())

	f.machine.StopAll()

	assert.Zero(t, f.clock.live())
	assert.Zero(t, f.reg.Stats().Countdowns)
}
