package core

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/parley/internal/constants"
)

// EventBus distributes events to subscribers.
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan Event
	bufferSize  int
	closed      bool

	// dropped counts deliveries lost to full subscriber buffers
	dropped atomic.Uint64
}

// NewEventBus creates a new event bus.
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize < constants.MinEventBusBufferSize {
		bufferSize = constants.MinEventBusBufferSize
	}
	return &EventBus{
		bufferSize: bufferSize,
	}
}

// Subscribe returns a channel that receives events.
// The caller is responsible for reading from the channel to avoid dropped events.
func (b *EventBus) Subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.bufferSize)
	if b.closed {
		close(ch)
		return ch
	}
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscriber channel.
func (b *EventBus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subscribers {
		if sub == ch {
			close(sub)
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribers.
// Non-blocking: drops events if a subscriber's buffer is full.
func (b *EventBus) Publish(event Event) {
	if b == nil {
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			n := b.dropped.Add(1)
			log.Debug().
				Str("type", string(event.Type)).
				Uint64("generation", event.Generation).
				Uint64("dropped", n).
				Msg("Subscriber buffer full, event dropped")
		}
	}
}

// Dropped returns how many deliveries were dropped because a subscriber fell behind.
// A UI that misses a view event catches up on the next one, since it re-reads the snapshot.
func (b *EventBus) Dropped() uint64 {
	if b == nil {
		return 0
	}
	return b.dropped.Load()
}

// Close closes all subscriber channels.
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = nil
	b.closed = true
}
