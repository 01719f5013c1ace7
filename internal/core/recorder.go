package core

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Recorder archives sessions and the messages they received.
// Implementations must be safe for concurrent use.
type Recorder interface {
	BeginSession(name string, baseline int64) (string, error)
	RecordMessages(sessionID string, msgs []Message) error
	EndSession(sessionID string) error
}

// transcript binds a Recorder to the live session generation.
// Recording failures are logged and never reach the view.
type transcript struct {
	rec Recorder

	mu  sync.Mutex
	gen uint64
	id  string
}

func (t *transcript) begin(gen uint64, name string, baseline int64) {
	if t == nil || t.rec == nil {
		return
	}

	id, err := t.rec.BeginSession(name, baseline)
	if err != nil {
		log.Warn().Err(err).Str("name", name).Msg("Failed to archive session start")
		id = ""
	}

	t.mu.Lock()
	t.gen = gen
	t.id = id
	t.mu.Unlock()
}

func (t *transcript) record(gen uint64, msgs []Message) {
	if t == nil || t.rec == nil || len(msgs) == 0 {
		return
	}

	t.mu.Lock()
	id := t.id
	live := t.gen == gen
	t.mu.Unlock()

	if !live || id == "" {
		return
	}
	if err := t.rec.RecordMessages(id, msgs); err != nil {
		log.Warn().Err(err).Str("session", id).Int("count", len(msgs)).Msg("Failed to archive messages")
	}
}

func (t *transcript) end() {
	if t == nil || t.rec == nil {
		return
	}

	t.mu.Lock()
	id := t.id
	t.id = ""
	t.gen = 0
	t.mu.Unlock()

	if id == "" {
		return
	}
	if err := t.rec.EndSession(id); err != nil {
		log.Warn().Err(err).Str("session", id).Msg("Failed to archive session end")
	}
}
