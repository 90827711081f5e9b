package protocol

import "time"

// Scope says who an Effect is addressed to.
type Scope int

const (
	ScopeConn Scope = iota + 1
	ScopeGroup
	ScopeChannel
	ScopeSubscribe
	ScopeUnsubscribe
	ScopePublish
)

func (s Scope) String() string {
	switch s {
	case ScopeConn:
		return "conn"
	case ScopeGroup:
		return "group"
	case ScopeChannel:
		return "channel"
	case ScopeSubscribe:
		return "subscribe"
	case ScopeUnsubscribe:
		return "unsubscribe"
	case ScopePublish:
		return "publish"
	default:
		return "unknown"
	}
}

// Effect is one outbound action produced by a state transition. Transitions
// return an ordered list of effects; the gateway executes them in order, so a
// Subscribe placed before a group broadcast makes the new member receive it.
type Effect struct {
	Scope   Scope
	Channel Channel
	ConnID  string
	Group   string
	Event   string // event name, or bus subject for ScopePublish
	Payload any
}

// Send addresses a single connection.
func Send(ch Channel, connID, event string, payload any) Effect {
	return Effect{Scope: ScopeConn, Channel: ch, ConnID: connID, Event: event, Payload: payload}
}

// Broadcast addresses every connection subscribed to group on ch.
func Broadcast(ch Channel, group, event string, payload any) Effect {
	return Effect{Scope: ScopeGroup, Channel: ch, Group: group, Event: event, Payload: payload}
}

// BroadcastAll addresses every connection on ch.
func BroadcastAll(ch Channel, event string, payload any) Effect {
	return Effect{Scope: ScopeChannel, Channel: ch, Event: event, Payload: payload}
}

func Subscribe(ch Channel, connID, group string) Effect {
	return Effect{Scope: ScopeSubscribe, Channel: ch, ConnID: connID, Group: group}
}

func Unsubscribe(ch Channel, connID, group string) Effect {
	return Effect{Scope: ScopeUnsubscribe, Channel: ch, ConnID: connID, Group: group}
}

// Notify publishes a lifecycle notice on the event bus.
func Notify(subject string, notice Notice) Effect {
	return Effect{Scope: ScopePublish, Event: subject, Payload: notice}
}

// Notice is the body of a lifecycle bus message.
type Notice struct {
	Name string    `json:"name"`
	ID   string    `json:"id"`
	At   time.Time `json:"at"`
}
