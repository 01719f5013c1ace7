package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xonecas/parley/internal/constants"
)

// InputMode represents what the input bar is collecting.
type InputMode int

const (
	InputModeName InputMode = iota
	InputModeMessage
)

const maxHistorySize = 100

// InputModel handles text input for the display name and outgoing messages.
type InputModel struct {
	textInput    textinput.Model
	mode         InputMode
	history      []string // Previously sent messages
	historyIndex int      // Current position in history (-1 = not browsing)
	draft        string   // Saved draft when browsing history
}

// NewInputModel creates a new input model collecting a name.
func NewInputModel() InputModel {
	ti := textinput.New()
	ti.Width = 60

	m := InputModel{
		textInput:    ti,
		history:      make([]string, 0, maxHistorySize),
		historyIndex: -1,
	}
	m.SetMode(InputModeName)
	return m
}

// SetMode switches the input mode and clears the buffer.
func (m *InputModel) SetMode(mode InputMode) {
	m.mode = mode
	m.textInput.Reset()
	m.historyIndex = -1
	m.draft = ""

	switch mode {
	case InputModeName:
		m.textInput.Placeholder = "Your name..."
		m.textInput.Prompt = inputPromptStyle.Render("name ") + " "
		m.textInput.CharLimit = constants.MaxNameLength
	case InputModeMessage:
		m.textInput.Placeholder = "Type a message..."
		m.textInput.Prompt = inputPromptStyle.Render(">") + " "
		m.textInput.CharLimit = constants.MaxContentBytes
	}

	m.textInput.Focus()
}

// Mode returns the current input mode.
func (m InputModel) Mode() InputMode {
	return m.mode
}

// Value returns the current input value.
func (m InputModel) Value() string {
	return m.textInput.Value()
}

// SetValue replaces the input value.
func (m *InputModel) SetValue(s string) {
	m.textInput.SetValue(s)
	m.textInput.CursorEnd()
}

// Focus returns the command to start the text input cursor.
func (m InputModel) Focus() tea.Cmd {
	return textinput.Blink
}

// History key bindings
var historyKeys = struct {
	Up   key.Binding
	Down key.Binding
}{
	Up:   key.NewBinding(key.WithKeys("up")),
	Down: key.NewBinding(key.WithKeys("down")),
}

// Update handles input updates.
func (m InputModel) Update(msg tea.Msg) (InputModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.mode == InputModeMessage {
		switch {
		case key.Matches(keyMsg, historyKeys.Up):
			m.navigateHistory(1) // Go back in history
			return m, nil
		case key.Matches(keyMsg, historyKeys.Down):
			m.navigateHistory(-1) // Go forward in history
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// navigateHistory moves through the history.
// direction: 1 = older (up), -1 = newer (down)
func (m *InputModel) navigateHistory(direction int) {
	if len(m.history) == 0 {
		return
	}

	// Save current input as draft when starting to browse
	if m.historyIndex == -1 && direction == 1 {
		m.draft = m.textInput.Value()
	}

	newIndex := m.historyIndex + direction
	if newIndex < -1 {
		newIndex = -1
	}
	if newIndex >= len(m.history) {
		newIndex = len(m.history) - 1
	}

	m.historyIndex = newIndex

	if m.historyIndex == -1 {
		m.SetValue(m.draft)
	} else {
		// Most recent is at end of slice
		m.SetValue(m.history[len(m.history)-1-m.historyIndex])
	}
}

// View renders the input bar width columns wide, border included.
func (m InputModel) View(width int) string {
	if width < 12 {
		width = 12
	}
	// Border, padding, prompt and the cursor cell
	m.textInput.Width = width - 4 - lipgloss.Width(m.textInput.Prompt) - 1
	return inputStyle.Width(width - 2).Render(m.textInput.View())
}

// Reset clears the buffer without changing mode.
func (m *InputModel) Reset() {
	m.textInput.Reset()
	m.historyIndex = -1
	m.draft = ""
}

// AddToHistory adds a sent message to the history.
func (m *InputModel) AddToHistory(message string) {
	if message == "" {
		return
	}

	// Avoid duplicate consecutive entries
	if len(m.history) > 0 && m.history[len(m.history)-1] == message {
		return
	}

	m.history = append(m.history, message)

	if len(m.history) > maxHistorySize {
		m.history = m.history[len(m.history)-maxHistorySize:]
	}
}
