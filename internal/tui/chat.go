package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/xonecas/parley/internal/constants"
	"github.com/xonecas/parley/internal/core"
)

const (
	rosterWidth     = 22
	maxSenderWidth  = 16
	ownMessageShare = 3 // own messages use at most 3/4 of the log width
)

// renderMessage renders one log entry. Own messages are right-aligned,
// service notices are italic, everything else is "[HH:MM] name: content".
func renderMessage(msg core.Message, self string, width int) string {
	if width < 10 {
		width = 10
	}
	clock := timeStyle.Render("[" + formatClock(msg.Time) + "]")

	switch {
	case msg.Sender == constants.SystemSender:
		body := lipgloss.NewStyle().Width(width - 8).Render(msg.Content)
		return clock + " " + systemLineStyle.Render(body)

	case self != "" && msg.Sender == self:
		maxWidth := width * ownMessageShare / 4
		body := ownLineStyle.Render(msg.Content)
		if lipgloss.Width(msg.Content) > maxWidth {
			body = ownLineStyle.Width(maxWidth).Render(msg.Content)
		}
		line := lipgloss.JoinHorizontal(lipgloss.Bottom, body, " ", clock)
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, line)

	default:
		name := truncateWithEllipsis(msg.Sender, maxSenderWidth)
		label := lipgloss.NewStyle().Foreground(SenderColor(msg.Sender)).Bold(true).Render(name + ":")
		prefixWidth := lipgloss.Width(clock) + 1 + lipgloss.Width(label) + 1
		bodyWidth := width - prefixWidth
		if bodyWidth < 10 {
			bodyWidth = 10
		}
		body := lipgloss.NewStyle().Width(bodyWidth).Render(msg.Content)
		return lipgloss.JoinHorizontal(lipgloss.Top, clock, " ", label, " ", body)
	}
}

// renderLog renders the whole message log for the viewport.
func renderLog(msgs []core.Message, self string, width int) string {
	if len(msgs) == 0 {
		return dimmedStyle.Render("No messages yet.")
	}

	lines := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		lines = append(lines, renderMessage(msg, self, width))
	}
	return strings.Join(lines, "\n")
}

// renderRoster renders the member list panel.
func renderRoster(roster []string, self string, height int) string {
	inner := rosterWidth - 4 // border and padding

	var lines []string
	lines = append(lines, panelTitleStyle.Render(fmt.Sprintf("Online (%d)", len(roster))))
	for _, name := range roster {
		label := truncateWithEllipsis(name, inner)
		if name == self {
			lines = append(lines, rosterSelfStyle.Render(label))
		} else {
			lines = append(lines, lipgloss.NewStyle().Foreground(SenderColor(name)).Render(label))
		}
	}

	// Keep the panel no taller than the log
	if limit := height - 2; limit > 1 && len(lines) > limit {
		hidden := len(lines) - limit + 1
		lines = append(lines[:limit-1], dimmedStyle.Render(fmt.Sprintf("+%d more", hidden)))
	}

	return rosterStyle.Width(rosterWidth - 2).Height(height - 2).Render(strings.Join(lines, "\n"))
}

// renderLogPanel renders the viewport with a scrollbar inside a border.
func renderLogPanel(vp viewport.Model) string {
	bar := renderScrollbar(vp.Height, vp.TotalLineCount(), vp.YOffset)
	body := lipgloss.JoinHorizontal(lipgloss.Top, vp.View(), bar)
	return logStyle.Render(body)
}

// statusInfo is everything the status bar shows.
type statusInfo struct {
	name     string
	state    core.PollerState
	interval time.Duration
	cursor   int64
	net      string
	pollErr  string
	err      error
	width    int
}

// renderStatusBar renders the bottom line: session, poll state, cursor and network activity.
func renderStatusBar(s statusInfo) string {
	parts := []string{
		labelStyle.Render("as ") + valueStyle.Render(truncateWithEllipsis(s.name, maxSenderWidth)),
	}

	state := dimmedStyle.Render(string(s.state))
	if s.state == core.PollerStateRunning {
		state = runningStyle.Render(string(s.state))
	}
	parts = append(parts, labelStyle.Render("poll ")+state+labelStyle.Render(" @"+s.interval.String()))
	parts = append(parts, labelStyle.Render("cursor ")+valueStyle.Render(fmt.Sprintf("%d", s.cursor)))
	parts = append(parts, s.net)

	switch {
	case s.err != nil:
		parts = append(parts, errorStyle.Render(s.err.Error()))
	case s.pollErr != "":
		parts = append(parts, warningStyle.Render("reconnecting..."))
	}

	line := strings.Join(parts, dimmedStyle.Render(" │ "))
	return statusBarStyle.Render(truncateToWidthANSI(line, s.width))
}

// truncateToWidthANSI cuts a styled line to width columns.
func truncateToWidthANSI(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
