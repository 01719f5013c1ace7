package core

import "fmt"

// CursorStore holds the id of the highest message observed in the current session.
// It is plain state; ViewState serializes access to it.
type CursorStore struct {
	value int64
}

// Get returns the stored cursor.
func (c *CursorStore) Get() int64 {
	return c.value
}

// Set advances the cursor. Lower values are rejected so a late response
// carrying an older cursor can never move it backwards.
func (c *CursorStore) Set(v int64) error {
	if v < c.value {
		return fmt.Errorf("%w: %d < %d", ErrCursorRegressed, v, c.value)
	}
	c.value = v
	return nil
}

// Reset replaces the cursor with a server-supplied baseline. Only join uses it.
func (c *CursorStore) Reset(baseline int64) {
	c.value = baseline
}
