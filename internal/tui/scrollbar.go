package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	scrollbarThumb = "┃"
	scrollbarTrack = "│"
)

var (
	scrollTrackStyle = lipgloss.NewStyle().Foreground(colorBorder)
	scrollThumbStyle = lipgloss.NewStyle().Foreground(colorBrandDim)
)

// renderScrollbar creates a vertical scrollbar for a log of totalLines shown
// in height rows, scrolled to scrollOffset. One character per line.
func renderScrollbar(height int, totalLines int, scrollOffset int) string {
	if height <= 0 {
		return ""
	}

	lines := make([]string, height)

	// Content fits: track only
	if totalLines <= height {
		for i := range lines {
			lines[i] = scrollTrackStyle.Render(scrollbarTrack)
		}
		return strings.Join(lines, "\n")
	}

	// Thumb size is proportional to the visible share, minimum 1 line
	thumbSize := (height * height) / totalLines
	if thumbSize < 1 {
		thumbSize = 1
	}
	if thumbSize > height {
		thumbSize = height
	}

	scrollRatio := float64(scrollOffset) / float64(totalLines-height)
	if scrollRatio < 0 {
		scrollRatio = 0
	}
	if scrollRatio > 1 {
		scrollRatio = 1
	}

	thumbPos := int(scrollRatio * float64(height-thumbSize))

	for i := range lines {
		if i >= thumbPos && i < thumbPos+thumbSize {
			lines[i] = scrollThumbStyle.Render(scrollbarThumb)
		} else {
			lines[i] = scrollTrackStyle.Render(scrollbarTrack)
		}
	}

	return strings.Join(lines, "\n")
}
