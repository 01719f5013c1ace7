package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Message represents an archived chat message.
type Message struct {
	SessionID  string
	ID         int64
	Sender     string
	Content    string
	SentAt     time.Time // zero when the service sent no timestamp
	RecordedAt time.Time
}

// AddMessages archives a batch of messages for a session in one transaction.
// Messages already archived for the session are ignored.
func (s *Store) AddMessages(sessionID string, msgs []Message) error {
	if len(msgs) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO messages (session_id, message_id, sender, content, sent_at, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, m := range msgs {
		sentAt := sql.NullTime{Time: m.SentAt.UTC(), Valid: !m.SentAt.IsZero()}
		if _, err := stmt.Exec(sessionID, m.ID, m.Sender, m.Content, sentAt, now); err != nil {
			return fmt.Errorf("insert message %d: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// SessionMessages retrieves all messages of a session in id order.
func (s *Store) SessionMessages(sessionID string) ([]*Message, error) {
	rows, err := s.db.Query(`
		SELECT session_id, message_id, sender, content, sent_at, recorded_at
		FROM messages
		WHERE session_id = ?
		ORDER BY message_id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// RecentMessages retrieves the most recent N archived messages across all
// sessions, in chronological order.
func (s *Store) RecentMessages(limit int) ([]*Message, error) {
	rows, err := s.db.Query(`
		SELECT session_id, message_id, sender, content, sent_at, recorded_at
		FROM messages
		ORDER BY rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent messages: %w", err)
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}

	// Reverse to get chronological order
	reverse(messages)
	return messages, nil
}

// SearchMessages searches archived messages by content text.
// Returns matches in chronological order (case-sensitive).
func (s *Store) SearchMessages(query string, limit int) ([]*Message, error) {
	rows, err := s.db.Query(`
		SELECT session_id, message_id, sender, content, sent_at, recorded_at
		FROM messages
		WHERE instr(content, ?) > 0
		ORDER BY rowid DESC
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search messages: %w", err)
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}

	reverse(messages)
	return messages, nil
}

// CountMessages returns the number of archived messages for a session.
func (s *Store) CountMessages(sessionID string) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM messages WHERE session_id = ?`, sessionID).Scan(&count)
	return count, err
}

func scanMessages(rows *sql.Rows) ([]*Message, error) {
	var messages []*Message
	for rows.Next() {
		var m Message
		var sentAt sql.NullTime
		if err := rows.Scan(&m.SessionID, &m.ID, &m.Sender, &m.Content, &sentAt, &m.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if sentAt.Valid {
			m.SentAt = sentAt.Time
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

func reverse(messages []*Message) {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
}
