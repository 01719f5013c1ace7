// Package core provides the client-side synchronization engine.
package core

import (
	"time"

	"github.com/xonecas/parley/internal/remote"
)

// PollerState represents the poll scheduler's lifecycle state.
type PollerState string

const (
	PollerStateIdle    PollerState = "idle"
	PollerStateRunning PollerState = "running"
)

// Message is an immutable chat message held in the session log.
type Message struct {
	ID      int64
	Sender  string
	Content string
	Time    time.Time
}

func messageFromRemote(m remote.Message) Message {
	return Message{
		ID:      m.ID,
		Sender:  m.Name,
		Content: m.Content,
		Time:    m.Time,
	}
}

// Session is the client-local membership record.
type Session struct {
	Name   string
	Joined bool
}

// Snapshot is a point-in-time copy of the view state for rendering.
type Snapshot struct {
	Generation uint64
	Session    Session
	Cursor     int64
	Messages   []Message
	Roster     []string
	Input      string
}

// EventType identifies the type of event.
type EventType string

const (
	EventJoined           EventType = "joined"
	EventJoinFailed       EventType = "join_failed"
	EventLeft             EventType = "left"
	EventMessagesAppended EventType = "messages_appended"
	EventRosterUpdated    EventType = "roster_updated"
	EventSendSucceeded    EventType = "send_succeeded"
	EventSendFailed       EventType = "send_failed"
	EventPollError        EventType = "poll_error"
	EventNetActivity      EventType = "net_activity" // request started/finished
)

// Event represents something that changed in the client.
type Event struct {
	Type       EventType
	Generation uint64
	Data       interface{}
	Timestamp  time.Time
}

// JoinData contains data for join events.
type JoinData struct {
	Name   string
	Cursor int64
}

// MessagesData contains data for messages_appended events.
type MessagesData struct {
	Messages []Message
	Cursor   int64
}

// RosterData contains data for roster_updated events.
type RosterData struct {
	Roster []string
}

// ErrorData contains data for failure events.
type ErrorData struct {
	Op    string
	Error string
}

// NetActivityData contains data for net_activity events.
type NetActivityData struct {
	Op     string
	Active bool
}
