package core

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/parley/internal/remote"
)

// Poller periodically fetches messages and the roster while a session is joined.
//
// It has two states. Start moves it to Running for one session generation,
// stopping any loop that is already running. Stop moves it back to Idle; no
// tick fires after Stop returns. Fetches already in flight run to completion
// but ViewState drops their results because the generation has moved on.
type Poller struct {
	mu     sync.Mutex
	state  PollerState
	cancel context.CancelFunc
	gen    uint64

	interval   time.Duration
	timeout    time.Duration
	view       *ViewState
	messages   *MessageFetcher
	roster     *RosterFetcher
	bus        *EventBus
	transcript *transcript

	// Tracks the loop goroutine and every fetch it spawned
	inflight sync.WaitGroup
}

// pollRun is the per-Start state of one polling loop.
type pollRun struct {
	gen uint64

	// At most one fetch of each kind is outstanding; a tick that finds the
	// previous fetch still running skips that fetch.
	messagesBusy sync.Mutex
	rosterBusy   sync.Mutex
}

// NewPoller creates an idle poller.
func NewPoller(view *ViewState, messages *MessageFetcher, roster *RosterFetcher, bus *EventBus, interval, timeout time.Duration) *Poller {
	return &Poller{
		state:    PollerStateIdle,
		interval: interval,
		timeout:  timeout,
		view:     view,
		messages: messages,
		roster:   roster,
		bus:      bus,
	}
}

// State returns the poller's current state.
func (p *Poller) State() PollerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Interval returns the tick interval.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Start begins polling for session generation gen.
func (p *Poller) Start(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == PollerStateRunning {
		log.Debug().Uint64("generation", p.gen).Msg("Stopping previous poll loop before restart")
		p.stopLocked()
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.state = PollerStateRunning
	p.gen = gen

	p.inflight.Add(1)
	go p.run(ctx, &pollRun{gen: gen})

	log.Debug().Uint64("generation", gen).Dur("interval", p.interval).Msg("Poll loop started")
}

// Stop halts polling. It is safe to call when idle.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Poller) stopLocked() {
	if p.state != PollerStateRunning {
		return
	}
	p.cancel()
	p.cancel = nil
	p.state = PollerStateIdle
	log.Debug().Uint64("generation", p.gen).Msg("Poll loop stopped")
}

// Wait blocks until the loop and all in-flight fetches have finished or the
// timeout expires. It reports whether everything drained.
func (p *Poller) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		p.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		log.Warn().Msg("Timed out waiting for in-flight polls")
		return false
	}
}

func (p *Poller) run(ctx context.Context, run *pollRun) {
	defer p.inflight.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// select picks randomly when both are ready
			if ctx.Err() != nil {
				return
			}
			p.tick(run)
		}
	}
}

// tick issues the message fetch and the roster fetch independently.
// Each result is applied as soon as it arrives.
func (p *Poller) tick(run *pollRun) {
	if run.messagesBusy.TryLock() {
		p.inflight.Add(1)
		go func() {
			defer p.inflight.Done()
			defer run.messagesBusy.Unlock()
			p.pollMessages(run.gen)
		}()
	} else {
		log.Debug().Uint64("generation", run.gen).Msg("Previous message fetch still running, skipping")
	}

	if run.rosterBusy.TryLock() {
		p.inflight.Add(1)
		go func() {
			defer p.inflight.Done()
			defer run.rosterBusy.Unlock()
			p.pollRoster(run.gen)
		}()
	} else {
		log.Debug().Uint64("generation", run.gen).Msg("Previous roster fetch still running, skipping")
	}
}

func (p *Poller) pollMessages(gen uint64) {
	cursor, live := p.view.CursorFor(gen)
	if !live {
		return
	}

	// Not derived from the loop context: a stop lets the request finish
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	p.publishNet(gen, remote.OpMessages, true)
	msgs, err := p.messages.FetchSince(ctx, cursor)
	p.publishNet(gen, remote.OpMessages, false)

	if err != nil {
		log.Warn().Err(err).Str("op", remote.OpMessages).Int64("cursor", cursor).Msg("Message fetch failed")
		p.publishError(gen, remote.OpMessages, err)
		return
	}

	appended, live := p.view.ApplyMessages(gen, msgs)
	if !live {
		log.Debug().Uint64("generation", gen).Int("count", len(msgs)).Msg("Discarding stale message batch")
		return
	}
	if len(appended) == 0 {
		return
	}

	p.transcript.record(gen, appended)

	p.bus.Publish(Event{
		Type:       EventMessagesAppended,
		Generation: gen,
		Data: &MessagesData{
			Messages: appended,
			Cursor:   appended[len(appended)-1].ID,
		},
		Timestamp: time.Now(),
	})
}

func (p *Poller) pollRoster(gen uint64) {
	if _, live := p.view.CursorFor(gen); !live {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	p.publishNet(gen, remote.OpUsers, true)
	names, err := p.roster.FetchRoster(ctx)
	p.publishNet(gen, remote.OpUsers, false)

	if err != nil {
		log.Warn().Err(err).Str("op", remote.OpUsers).Msg("Roster fetch failed")
		p.publishError(gen, remote.OpUsers, err)
		return
	}

	roster, live := p.view.ApplyRoster(gen, names)
	if !live {
		log.Debug().Uint64("generation", gen).Msg("Discarding stale roster")
		return
	}

	p.bus.Publish(Event{
		Type:       EventRosterUpdated,
		Generation: gen,
		Data:       &RosterData{Roster: roster},
		Timestamp:  time.Now(),
	})
}

func (p *Poller) publishNet(gen uint64, op string, active bool) {
	p.bus.Publish(Event{
		Type:       EventNetActivity,
		Generation: gen,
		Data:       &NetActivityData{Op: op, Active: active},
		Timestamp:  time.Now(),
	})
}

func (p *Poller) publishError(gen uint64, op string, err error) {
	p.bus.Publish(Event{
		Type:       EventPollError,
		Generation: gen,
		Data:       &ErrorData{Op: op, Error: err.Error()},
		Timestamp:  time.Now(),
	})
}
