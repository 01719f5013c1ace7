// Package remote defines the chat service contract and its HTTP implementation.
package remote

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Message is a chat message as assigned by the chat service.
type Message struct {
	ID      int64     `json:"id"`
	Name    string    `json:"name"`
	Content string    `json:"content"`
	Time    time.Time `json:"time"`
}

// JoinResult carries the cursor baseline returned by a successful join.
type JoinResult struct {
	LastID int64 `json:"lastId"`
}

// Service is the remote chat service as seen by the client.
type Service interface {
	// Join registers name with the service and returns the current cursor baseline.
	Join(ctx context.Context, name string) (JoinResult, error)

	// Leave removes name from the service.
	Leave(ctx context.Context, name string) error

	// Messages returns every message with an id greater than lastID, ascending.
	Messages(ctx context.Context, lastID int64) ([]Message, error)

	// Users returns the full current roster.
	Users(ctx context.Context) ([]string, error)

	// Send posts a message on behalf of name.
	Send(ctx context.Context, name, content string) error
}

// Operation names used in TransportError.
const (
	OpJoin     = "join"
	OpLeave    = "leave"
	OpMessages = "messages"
	OpUsers    = "users"
	OpSend     = "send"
)

// TransportError covers network failures, non-2xx statuses and unparseable bodies.
// Callers treat all three the same way.
type TransportError struct {
	Op     string
	Status int // 0 when no response was received
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
