// Package server implements an in-memory chat service speaking the polling
// protocol the client expects.
package server

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/xonecas/parley/internal/constants"
	"github.com/xonecas/parley/internal/remote"
)

// Hub holds the chat state: the message history, the id sequence and the
// last activity time of every member.
type Hub struct {
	mu       sync.Mutex
	messages []remote.Message
	members  map[string]time.Time
	lastID   int64

	rosterTimeout time.Duration
	now           func() time.Time
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithRosterTimeout sets how long a silent member stays on the roster.
func WithRosterTimeout(d time.Duration) HubOption {
	return func(h *Hub) {
		if d > 0 {
			h.rosterTimeout = d
		}
	}
}

// WithClock replaces the hub's time source.
func WithClock(now func() time.Time) HubOption {
	return func(h *Hub) {
		h.now = now
	}
}

// NewHub creates an empty hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		members:       make(map[string]time.Time),
		rosterTimeout: constants.DefaultRosterTimeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Join adds name to the roster, announces it and returns the id of the
// announcement. Clients use that id as their cursor baseline.
func (h *Hub) Join(name string) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.members[name] = h.now()
	h.appendLocked(constants.SystemSender, fmt.Sprintf("%s joined the chat", name))
	metricJoins.Inc()
	metricMembers.Set(float64(len(h.members)))
	return h.lastID
}

// Leave removes name from the roster and announces it.
func (h *Hub) Leave(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.members, name)
	h.appendLocked(constants.SystemSender, fmt.Sprintf("%s left the chat", name))
	metricLeaves.Inc()
	metricMembers.Set(float64(len(h.members)))
}

// Send appends a message from name and refreshes the sender's activity.
func (h *Hub) Send(name, content string) remote.Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.members[name] = h.now()
	msg := h.appendLocked(name, content)
	metricMessages.Inc()
	metricMembers.Set(float64(len(h.members)))
	return msg
}

func (h *Hub) appendLocked(name, content string) remote.Message {
	h.lastID++
	msg := remote.Message{
		ID:      h.lastID,
		Name:    name,
		Content: content,
		Time:    h.now(),
	}
	h.messages = append(h.messages, msg)
	return msg
}

// Since returns every message with an id greater than lastID, ascending.
// The result is never nil.
func (h *Hub) Since(lastID int64) []remote.Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Ids are dense and start at 1, so the first candidate is at index lastID
	start := lastID
	if start < 0 {
		start = 0
	}
	if start >= int64(len(h.messages)) {
		return []remote.Message{}
	}

	out := make([]remote.Message, len(h.messages)-int(start))
	copy(out, h.messages[start:])
	return out
}

// Users returns the members active within the roster timeout, sorted.
func (h *Hub) Users() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	active := []string{}
	for name, lastSeen := range h.members {
		if now.Sub(lastSeen) < h.rosterTimeout {
			active = append(active, name)
		}
	}
	sort.Strings(active)
	return active
}

// LastID returns the id of the newest message.
func (h *Hub) LastID() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastID
}
