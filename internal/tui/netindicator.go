// Package tui provides the terminal user interface for Parley.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// NetActivity represents the type of network activity.
type NetActivity int

const (
	NetActivityIdle NetActivity = iota
	NetActivityPoll             // Fetching messages or the roster
	NetActivityCall             // Join, leave or send in progress
)

// NetIndicator is a bouncing progress indicator for network activity.
type NetIndicator struct {
	activity  NetActivity
	position  int // Current position of the "ball" (0-width)
	direction int // 1 = right, -1 = left
	width     int // Width of the indicator bar
}

// NetIndicatorTickMsg is sent to animate the indicator.
type NetIndicatorTickMsg time.Time

// NewNetIndicator creates a new network activity indicator.
func NewNetIndicator() NetIndicator {
	return NetIndicator{
		activity:  NetActivityIdle,
		position:  0,
		direction: 1,
		width:     8,
	}
}

// SetActivity sets the current network activity type.
func (n *NetIndicator) SetActivity(activity NetActivity) {
	n.activity = activity
}

// Activity returns the current activity type.
func (n NetIndicator) Activity() NetActivity {
	return n.activity
}

// Update handles tick messages for animation.
func (n NetIndicator) Update(msg tea.Msg) (NetIndicator, tea.Cmd) {
	switch msg.(type) {
	case NetIndicatorTickMsg:
		if n.activity != NetActivityIdle {
			n.position += n.direction

			// Bounce at edges
			if n.position >= n.width-1 {
				n.position = n.width - 1
				n.direction = -1
			} else if n.position <= 0 {
				n.position = 0
				n.direction = 1
			}
		}
		return n, n.tick()
	}
	return n, nil
}

// tick returns a command that sends a tick after a delay.
func (n NetIndicator) tick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return NetIndicatorTickMsg(t)
	})
}

// Init starts the indicator animation.
func (n NetIndicator) Init() tea.Cmd {
	return n.tick()
}

// View renders the network indicator.
func (n NetIndicator) View() string {
	const (
		barEmpty  = "·"
		barFilled = "•"
	)

	var style lipgloss.Style
	var label string

	switch n.activity {
	case NetActivityIdle:
		style = lipgloss.NewStyle().Foreground(colorMuted)
		bar := ""
		for i := 0; i < n.width; i++ {
			bar += barEmpty
		}
		return style.Render("idle " + bar)

	case NetActivityPoll:
		style = lipgloss.NewStyle().Foreground(colorTeal)
		label = "poll"
	case NetActivityCall:
		style = lipgloss.NewStyle().Foreground(colorBrand).Bold(true)
		label = "call"
	}

	bar := ""
	for i := 0; i < n.width; i++ {
		if i == n.position {
			bar += barFilled
		} else {
			bar += barEmpty
		}
	}

	return style.Render(label + " " + bar)
}
