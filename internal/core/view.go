package core

import (
	"sort"
	"sync"
)

// ViewState is the single in-memory projection of a chat session: membership,
// cursor, message log, roster and the outgoing input buffer. It is never persisted.
//
// Every join and leave bumps the generation. Asynchronous results carry the
// generation they were issued under and are dropped if it no longer matches,
// so a response that lands after a leave or rejoin cannot touch the new state.
type ViewState struct {
	mu sync.RWMutex

	generation uint64
	session    Session
	cursor     CursorStore
	log        []Message
	roster     []string
	input      string
}

// NewViewState returns an empty, not-joined view.
func NewViewState() *ViewState {
	return &ViewState{}
}

// BeginSession starts a fresh joined session and returns its generation.
func (v *ViewState) BeginSession(name string, baseline int64) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.generation++
	v.session = Session{Name: name, Joined: true}
	v.cursor.Reset(baseline)
	v.log = nil
	v.roster = nil
	return v.generation
}

// EndSession tears the session down unconditionally. It returns the name that
// was joined and whether a session was active.
func (v *ViewState) EndSession() (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	name, wasJoined := v.session.Name, v.session.Joined
	v.generation++
	v.session = Session{}
	v.cursor.Reset(0)
	v.log = nil
	v.roster = nil
	return name, wasJoined
}

// Generation returns the current session generation.
func (v *ViewState) Generation() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.generation
}

// Session returns the current session and its generation.
func (v *ViewState) Session() (Session, uint64) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.session, v.generation
}

// Joined reports whether a session is active.
func (v *ViewState) Joined() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.session.Joined
}

// Cursor returns the current cursor.
func (v *ViewState) Cursor() int64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cursor.Get()
}

// CursorFor returns the cursor if gen is still the live joined session.
func (v *ViewState) CursorFor(gen uint64) (int64, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if !v.liveLocked(gen) {
		return 0, false
	}
	return v.cursor.Get(), true
}

func (v *ViewState) liveLocked(gen uint64) bool {
	return gen == v.generation && v.session.Joined
}

// ApplyMessages appends a fetched batch issued under gen. Messages at or below
// the cursor are skipped, so overlapping fetches never duplicate log entries.
// It returns the messages actually appended and false if the batch was stale.
func (v *ViewState) ApplyMessages(gen uint64, batch []Message) ([]Message, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.liveLocked(gen) {
		return nil, false
	}

	sorted := make([]Message, len(batch))
	copy(sorted, batch)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var appended []Message
	for _, m := range sorted {
		if m.ID <= v.cursor.Get() {
			continue
		}
		if err := v.cursor.Set(m.ID); err != nil {
			continue
		}
		v.log = append(v.log, m)
		appended = append(appended, m)
	}
	return appended, true
}

// ApplyRoster replaces the roster with a snapshot issued under gen.
// Names are deduplicated and sorted. It returns the stored roster and false
// if the snapshot was stale.
func (v *ViewState) ApplyRoster(gen uint64, names []string) ([]string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.liveLocked(gen) {
		return nil, false
	}

	seen := make(map[string]struct{}, len(names))
	roster := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		roster = append(roster, n)
	}
	sort.Strings(roster)
	v.roster = roster

	out := make([]string, len(roster))
	copy(out, roster)
	return out, true
}

// Input returns the outgoing message buffer.
func (v *ViewState) Input() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.input
}

// SetInput replaces the outgoing message buffer.
func (v *ViewState) SetInput(s string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.input = s
}

// ClearInput empties the outgoing message buffer.
func (v *ViewState) ClearInput() {
	v.SetInput("")
}

// ClearSentInput empties the buffer after content was sent under gen. The
// buffer is kept if the session changed or it now holds something else.
func (v *ViewState) ClearSentInput(gen uint64, content string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.liveLocked(gen) || v.input != content {
		return false
	}
	v.input = ""
	return true
}

// Snapshot returns a copy of the view for rendering.
func (v *ViewState) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()

	msgs := make([]Message, len(v.log))
	copy(msgs, v.log)
	roster := make([]string, len(v.roster))
	copy(roster, v.roster)

	return Snapshot{
		Generation: v.generation,
		Session:    v.session,
		Cursor:     v.cursor.Get(),
		Messages:   msgs,
		Roster:     roster,
		Input:      v.input,
	}
}
