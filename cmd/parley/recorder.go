package main

import (
	"github.com/xonecas/parley/internal/core"
	"github.com/xonecas/parley/internal/store"
)

// recorderAdapter archives client sessions into the SQLite store.
type recorderAdapter struct {
	store     *store.Store
	serverURL string
}

func (a *recorderAdapter) BeginSession(name string, baseline int64) (string, error) {
	sess, err := a.store.CreateSession(name, a.serverURL, baseline)
	if err != nil {
		return "", err
	}
	return sess.ID, nil
}

func (a *recorderAdapter) RecordMessages(sessionID string, msgs []core.Message) error {
	rows := make([]store.Message, len(msgs))
	for i, m := range msgs {
		rows[i] = store.Message{
			ID:      m.ID,
			Sender:  m.Sender,
			Content: m.Content,
			SentAt:  m.Time,
		}
	}
	return a.store.AddMessages(sessionID, rows)
}

func (a *recorderAdapter) EndSession(sessionID string) error {
	return a.store.EndSession(sessionID)
}
