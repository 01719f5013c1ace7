package core

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/parley/internal/constants"
	"github.com/xonecas/parley/internal/remote"
)

// Options configures a Client.
type Options struct {
	Interval       time.Duration
	RequestTimeout time.Duration

	// Recorder archives joined sessions. Nil disables archiving.
	Recorder Recorder
}

// Client wires the view, the poller and the membership and send controllers
// into the single entry point the UI talks to.
type Client struct {
	svc        remote.Service
	bus        *EventBus
	view       *ViewState
	poller     *Poller
	membership *Membership
	sender     *Sender
}

// NewClient creates a not-joined client. The bus may be shared with the UI.
func NewClient(svc remote.Service, bus *EventBus, opts Options) *Client {
	if opts.Interval <= 0 {
		opts.Interval = constants.DefaultPollInterval
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = constants.DefaultRequestTimeout
	}

	view := NewViewState()
	poller := NewPoller(view, NewMessageFetcher(svc), NewRosterFetcher(svc), bus, opts.Interval, opts.RequestTimeout)
	membership := NewMembership(svc, view, poller, bus)

	if opts.Recorder != nil {
		t := &transcript{rec: opts.Recorder}
		poller.transcript = t
		membership.transcript = t
	}

	return &Client{
		svc:        svc,
		bus:        bus,
		view:       view,
		poller:     poller,
		membership: membership,
		sender:     NewSender(svc, view, bus),
	}
}

// Join enters the chat as name.
func (c *Client) Join(ctx context.Context, name string) error {
	_, err := c.membership.Join(ctx, name)
	return err
}

// Leave exits the chat. Local state is torn down even if the service is unreachable.
func (c *Client) Leave(ctx context.Context) {
	c.membership.Leave(ctx)
}

// SetInput replaces the outgoing message buffer.
func (c *Client) SetInput(s string) {
	c.view.SetInput(s)
}

// Input returns the outgoing message buffer.
func (c *Client) Input() string {
	return c.view.Input()
}

// Send submits content as the joined user. Content is fixed by the caller,
// so a buffer edited while the request is in flight is never sent by mistake.
func (c *Client) Send(ctx context.Context, content string) error {
	session, _ := c.view.Session()
	return c.sender.Send(ctx, session.Name, content)
}

// Snapshot returns a copy of the current view state.
func (c *Client) Snapshot() Snapshot {
	return c.view.Snapshot()
}

// PollerState returns whether the poll loop is running.
func (c *Client) PollerState() PollerState {
	return c.poller.State()
}

// Interval returns the poll interval.
func (c *Client) Interval() time.Duration {
	return c.poller.Interval()
}

// Bus returns the event bus the client publishes to.
func (c *Client) Bus() *EventBus {
	return c.bus
}

// Close leaves the chat if joined and waits for in-flight requests to drain.
func (c *Client) Close() {
	if c.view.Joined() {
		c.Leave(context.Background())
	}
	c.poller.Stop()
	if !c.poller.Wait(constants.StopWaitTimeout) {
		log.Warn().Msg("Client closed with requests still in flight")
	}
	if n := c.bus.Dropped(); n > 0 {
		log.Debug().Uint64("dropped_events", n).Msg("Events dropped by slow subscribers")
	}
}
