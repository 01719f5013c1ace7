package core

import (
	"context"

	"github.com/xonecas/parley/internal/remote"
)

// MessageFetcher performs one incremental message fetch.
type MessageFetcher struct {
	svc remote.Service
}

// NewMessageFetcher creates a fetcher backed by svc.
func NewMessageFetcher(svc remote.Service) *MessageFetcher {
	return &MessageFetcher{svc: svc}
}

// FetchSince returns messages with an id greater than cursor, ascending.
// It never touches the cursor; applying the result is the caller's job.
func (f *MessageFetcher) FetchSince(ctx context.Context, cursor int64) ([]Message, error) {
	if cursor < 0 {
		return nil, &ValidationError{Field: "cursor", Err: ErrNegativeCursor}
	}

	raw, err := f.svc.Messages(ctx, cursor)
	if err != nil {
		return nil, err
	}

	msgs := make([]Message, 0, len(raw))
	for _, m := range raw {
		msgs = append(msgs, messageFromRemote(m))
	}
	return msgs, nil
}

// RosterFetcher performs one full roster fetch.
type RosterFetcher struct {
	svc remote.Service
}

// NewRosterFetcher creates a fetcher backed by svc.
func NewRosterFetcher(svc remote.Service) *RosterFetcher {
	return &RosterFetcher{svc: svc}
}

// FetchRoster returns the service's current member list.
func (f *RosterFetcher) FetchRoster(ctx context.Context) ([]string, error) {
	return f.svc.Users(ctx)
}
