package lobby

import (
	"dreamrelay/backend/internal/models"
	"dreamrelay/backend/internal/protocol"
)

// RequestGameCountdown starts the admin's start countdown, replacing any
// countdown already running for the lobby. The first tick is returned
// immediately; later ticks arrive through the emit callback.
func (m *Machine) RequestGameCountdown(req protocol.RequestGameCountdown) []protocol.Effect {
	lobby, p := m.member(req.LobbyName, req.UserID)
	if p == nil || p.Role != models.RoleAdmin {
		return nil
	}

	if lobby.Countdown != nil {
		lobby.Countdown.Stop()
	}

	cd := models.NewCountdown(m.countdownSeconds)
	lobby.Countdown = cd
	name := lobby.Name
	cd.Bind(m.clock.Every(tickInterval, func() {
		if effects := m.tick(name, cd); len(effects) > 0 {
			m.emit(effects)
		}
	}))

	m.log.Info().Str("lobby", name).Int("seconds", cd.Remaining).Msg("countdown started")

	return []protocol.Effect{m.countdownTick(name, cd.Remaining)}
}

// CancelGameCountdown stops a running countdown. Without one it does nothing.
func (m *Machine) CancelGameCountdown(req protocol.CancelGameCountdown) []protocol.Effect {
	lobby, p := m.member(req.LobbyName, req.UserID)
	if p == nil || p.Role != models.RoleAdmin {
		return nil
	}
	return m.cancelCountdown(lobby)
}

// tick advances cd by one second. A tick for a handle that is no longer the
// lobby's current countdown, or for a lobby that is gone, stops that handle
// and emits nothing.
func (m *Machine) tick(name string, cd *models.Countdown) []protocol.Effect {
	lobby := m.reg.Lobby(name)
	if lobby == nil || lobby.Countdown != cd {
		cd.Stop()
		return nil
	}

	cd.Remaining--
	if cd.Remaining > 0 {
		return []protocol.Effect{m.countdownTick(name, cd.Remaining)}
	}

	cd.Stop()
	lobby.Countdown = nil
	m.log.Info().Str("lobby", name).Msg("countdown finished")
	return m.enterRoom(lobby)
}

// cancelCountdown stops the lobby's countdown and tells the group. It returns
// nil when no countdown is running.
func (m *Machine) cancelCountdown(lobby *models.Lobby) []protocol.Effect {
	if lobby.Countdown == nil {
		return nil
	}
	lobby.Countdown.Stop()
	lobby.Countdown = nil

	m.log.Info().Str("lobby", lobby.Name).Msg("countdown cancelled")

	return []protocol.Effect{
		protocol.Broadcast(protocol.Lobby, lobby.Name, protocol.EventGameCountdownCancelled, nil),
	}
}

func (m *Machine) countdownTick(name string, seconds int) protocol.Effect {
	return protocol.Broadcast(protocol.Lobby, name, protocol.EventGameCountdownTick, protocol.CountdownTick{Seconds: seconds})
}

// StopAll halts every running countdown. Used on shutdown.
func (m *Machine) StopAll() {
	for _, lobby := range m.reg.Lobbies() {
		if lobby.Countdown != nil {
			lobby.Countdown.Stop()
			lobby.Countdown = nil
		}
	}
}
