package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/parley/internal/remote"
)

// Sender submits outgoing messages. It never echoes locally: a sent message
// shows up in the log only once a later poll returns it with a server id.
type Sender struct {
	svc  remote.Service
	view *ViewState
	bus  *EventBus
}

// NewSender creates a send controller.
func NewSender(svc remote.Service, view *ViewState, bus *EventBus) *Sender {
	return &Sender{svc: svc, view: view, bus: bus}
}

// Send posts content as name. Blank content is rejected without a network
// call. On success the input buffer is cleared if it still holds content in
// the same session; on failure it is kept so the user can resend. Nothing is
// queued for retry.
func (s *Sender) Send(ctx context.Context, name, content string) error {
	if strings.TrimSpace(content) == "" {
		return &ValidationError{Field: "content", Err: ErrEmptyContent}
	}

	session, gen := s.view.Session()
	if !session.Joined {
		return &ValidationError{Field: "session", Err: ErrNotJoined}
	}

	if err := s.svc.Send(ctx, name, content); err != nil {
		log.Info().Err(err).Str("name", name).Msg("Send failed")
		s.bus.Publish(Event{
			Type:       EventSendFailed,
			Generation: gen,
			Data:       &ErrorData{Op: remote.OpSend, Error: err.Error()},
			Timestamp:  time.Now(),
		})
		return fmt.Errorf("send: %w", err)
	}

	s.view.ClearSentInput(gen, content)

	s.bus.Publish(Event{
		Type:       EventSendSucceeded,
		Generation: gen,
		Timestamp:  time.Now(),
	})
	return nil
}
