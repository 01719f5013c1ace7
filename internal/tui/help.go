package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type helpItem struct {
	key  string
	desc string
}

var helpItems = []helpItem{
	{"Enter", "Join / Send message"},
	{"Ctrl+L", "Leave the chat"},
	{"Ctrl+C", "Quit"},
	{"↑ / ↓", "Browse sent messages"},
	{"PgUp / PgDn", "Scroll the log"},
	{"End", "Go to bottom (auto-scroll)"},
	{"F1 / ?", "Toggle help (? only with an empty input)"},
}

// RenderHelp renders the help overlay centered in width x height.
func RenderHelp(width, height int) string {
	var lines []string
	lines = append(lines, titleStyle.Render("Keyboard Shortcuts"))
	lines = append(lines, "")

	maxKeyLen := 0
	for _, item := range helpItems {
		if w := lipgloss.Width(item.key); w > maxKeyLen {
			maxKeyLen = w
		}
	}

	for _, item := range helpItems {
		key := helpKeyStyle.Render(padRight(item.key, maxKeyLen))
		desc := helpDescStyle.Render(item.desc)
		lines = append(lines, key+"  "+desc)
	}

	box := helpStyle.Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func padRight(s string, length int) string {
	w := lipgloss.Width(s)
	if w >= length {
		return s
	}
	return s + strings.Repeat(" ", length-w)
}
