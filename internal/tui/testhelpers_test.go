package tui

import (
	"os"
	"regexp"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/xonecas/parley/internal/core"
	"github.com/xonecas/parley/internal/remote"
)

// Test constants for consistent terminal dimensions
const (
	TestTerminalWidth  = 120
	TestTerminalHeight = 40
)

func TestMain(m *testing.M) {
	// Plain output so assertions can match rendered text
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

var ansiStripRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// stripANSI removes all ANSI escape codes from a string.
func stripANSI(s string) string {
	return ansiStripRegex.ReplaceAllString(s, "")
}

// testTime returns a fixed timestamp for today at 12:00 local time.
func testTime() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, time.Local)
}

// setupModelTest builds a sized Model over a mock service.
// A long interval keeps the poller from ticking unless the test asks for it.
func setupModelTest(t *testing.T, mock *remote.Mock, interval time.Duration) (Model, *core.Client) {
	t.Helper()

	bus := core.NewEventBus(256)
	client := core.NewClient(mock, bus, core.Options{
		Interval:       interval,
		RequestTimeout: time.Second,
	})
	t.Cleanup(func() {
		client.Close()
		bus.Close()
	})

	m := New(client, bus.Subscribe(), Options{ServerURL: "http://chat.test"})
	m = update(t, m, tea.WindowSizeMsg{Width: TestTerminalWidth, Height: TestTerminalHeight})
	return m, client
}

// update feeds msg to the model and returns the new model.
func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model
}

// press feeds msg and runs the returned command once, feeding its result back.
func press(t *testing.T, m Model, msg tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		return m
	}
	switch result := cmd().(type) {
	case joinResultMsg, leaveResultMsg, sendResultMsg:
		return update(t, m, result)
	}
	return m
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func enter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }

// joinAs drives the join screen until the chat screen shows.
func joinAs(t *testing.T, m Model, name string) Model {
	t.Helper()
	m = typeText(t, m, name)
	m = press(t, m, enter())
	if m.screen != ScreenChat {
		t.Fatalf("screen = %v after joining as %q (err: %v)", m.screen, name, m.err)
	}
	return m
}
