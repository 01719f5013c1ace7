package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderJoin renders the join screen: a centered box with the name prompt and
// the last join error, if any.
func RenderJoin(input InputModel, serverURL string, err error, pending bool, width, height int) string {
	boxWidth := 50
	if width-4 < boxWidth {
		boxWidth = width - 4
	}
	if boxWidth < 20 {
		boxWidth = 20
	}

	var lines []string
	lines = append(lines, titleStyle.Render("parley"))
	lines = append(lines, dimmedStyle.Render(truncateWithEllipsis(serverURL, boxWidth-8)))
	lines = append(lines, "")
	lines = append(lines, input.View(boxWidth-6))

	switch {
	case pending:
		lines = append(lines, dimmedStyle.Render("Joining..."))
	case err != nil:
		msg := lipgloss.NewStyle().Width(boxWidth - 8).Render(err.Error())
		lines = append(lines, errorStyle.Render(msg))
	default:
		lines = append(lines, dimmedStyle.Render("Enter to join · F1 for help"))
	}

	box := joinBoxStyle.Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
