package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/parley/internal/constants"
	"github.com/xonecas/parley/internal/remote"
)

// Membership executes join and leave and flips the poller accordingly.
type Membership struct {
	// Serializes join and leave so a slow join can't interleave with a teardown
	mu sync.Mutex

	svc          remote.Service
	view         *ViewState
	poller       *Poller
	bus          *EventBus
	transcript   *transcript
	leaveTimeout time.Duration
}

// NewMembership creates a membership controller.
func NewMembership(svc remote.Service, view *ViewState, poller *Poller, bus *EventBus) *Membership {
	return &Membership{
		svc:          svc,
		view:         view,
		poller:       poller,
		bus:          bus,
		leaveTimeout: constants.LeaveTimeout,
	}
}

// Join registers name with the service and starts a fresh session.
// Surrounding whitespace is trimmed from name. On failure the view is left
// untouched and the poller is not started.
func (m *Membership) Join(ctx context.Context, name string) (remote.JoinResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return remote.JoinResult{}, &ValidationError{Field: "name", Err: ErrEmptyName}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	res, err := m.svc.Join(ctx, name)
	if err == nil && res.LastID < 0 {
		err = &remote.TransportError{Op: remote.OpJoin, Err: fmt.Errorf("negative cursor baseline %d", res.LastID)}
	}
	if err != nil {
		log.Info().Err(err).Str("name", name).Msg("Join failed")
		m.bus.Publish(Event{
			Type:       EventJoinFailed,
			Generation: m.view.Generation(),
			Data:       &ErrorData{Op: remote.OpJoin, Error: err.Error()},
			Timestamp:  time.Now(),
		})
		return remote.JoinResult{}, fmt.Errorf("join: %w", err)
	}

	// A rejoin must never leave two loops running
	m.poller.Stop()
	gen := m.view.BeginSession(name, res.LastID)
	m.transcript.begin(gen, name, res.LastID)
	m.poller.Start(gen)

	log.Info().Str("name", name).Int64("cursor", res.LastID).Uint64("generation", gen).Msg("Joined chat")

	m.bus.Publish(Event{
		Type:       EventJoined,
		Generation: gen,
		Data:       &JoinData{Name: name, Cursor: res.LastID},
		Timestamp:  time.Now(),
	})

	return res, nil
}

// Leave tears the session down locally and then notifies the service.
// Local teardown never depends on the notification succeeding.
// The notification runs outside the lock so a rejoin never waits on it.
func (m *Membership) Leave(ctx context.Context) {
	m.mu.Lock()
	m.poller.Stop()
	name, wasJoined := m.view.EndSession()
	if !wasJoined {
		m.mu.Unlock()
		return
	}
	m.transcript.end()
	m.bus.Publish(Event{
		Type:       EventLeft,
		Generation: m.view.Generation(),
		Data:       &JoinData{Name: name},
		Timestamp:  time.Now(),
	})
	m.mu.Unlock()

	log.Info().Str("name", name).Msg("Left chat")

	lctx, cancel := context.WithTimeout(ctx, m.leaveTimeout)
	defer cancel()
	if err := m.svc.Leave(lctx, name); err != nil {
		log.Warn().Err(err).Str("name", name).Msg("Leave notification failed")
	}
}
