package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session represents one archived joined period.
type Session struct {
	ID        string
	Name      string
	ServerURL string
	Baseline  int64
	JoinedAt  time.Time
	LeftAt    *time.Time
}

// Active reports whether the session has not been ended.
func (s *Session) Active() bool {
	return s.LeftAt == nil
}

// CreateSession records the start of a joined session.
func (s *Store) CreateSession(name, serverURL string, baseline int64) (*Session, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.Exec(`
		INSERT INTO sessions (id, name, server_url, baseline, joined_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, name, serverURL, baseline, now)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	return &Session{
		ID:        id,
		Name:      name,
		ServerURL: serverURL,
		Baseline:  baseline,
		JoinedAt:  now,
	}, nil
}

// EndSession stamps the session's leave time. Ending an ended session is a no-op.
func (s *Store) EndSession(id string) error {
	result, err := s.db.Exec(`
		UPDATE sessions SET left_at = COALESCE(left_at, ?) WHERE id = ?
	`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(id string) (*Session, error) {
	row := s.db.QueryRow(`
		SELECT id, name, server_url, baseline, joined_at, left_at
		FROM sessions WHERE id = ?
	`, id)

	return scanSession(row)
}

// ListSessions returns the most recent sessions, newest first.
func (s *Store) ListSessions(limit int) ([]*Session, error) {
	rows, err := s.db.Query(`
		SELECT id, name, server_url, baseline, joined_at, left_at
		FROM sessions ORDER BY rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// DeleteSession deletes a session and its messages (via CASCADE).
func (s *Store) DeleteSession(id string) error {
	result, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountSessions returns the total number of sessions.
func (s *Store) CountSessions() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*Session, error) {
	var sess Session
	var leftAt sql.NullTime
	if err := row.Scan(&sess.ID, &sess.Name, &sess.ServerURL, &sess.Baseline, &sess.JoinedAt, &leftAt); err != nil {
		return nil, err
	}
	if leftAt.Valid {
		t := leftAt.Time
		sess.LeftAt = &t
	}
	return &sess, nil
}
