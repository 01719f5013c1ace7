package tui

import (
	"hash/fnv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Colors - muted terminal palette with a single warm accent
var (
	colorBrand    = lipgloss.Color("#FF8700") // Amber accent
	colorBrandDim = lipgloss.Color("#AF5F00")
	colorTeal     = lipgloss.Color("#5FD7AF")

	colorSystem  = lipgloss.Color("#5FAFD7") // Join/leave notices
	colorOwn     = lipgloss.Color("#D7D7AF") // Messages sent by this client
	colorWarning = lipgloss.Color("#FFAF00")
	colorError   = lipgloss.Color("#FF5F5F")
	colorSuccess = lipgloss.Color("#87D787")
	colorMuted   = lipgloss.Color("#6C6C6C")

	colorBgPanel = lipgloss.Color("#1C1C1C")
	colorBorder  = lipgloss.Color("#444444")
)

// Sender colors rotate by name so a given user keeps one color across sessions.
var senderPalette = []lipgloss.Color{
	lipgloss.Color("#87AFFF"),
	lipgloss.Color("#D787D7"),
	lipgloss.Color("#87D7D7"),
	lipgloss.Color("#D7AF87"),
	lipgloss.Color("#AFD75F"),
	lipgloss.Color("#FF87AF"),
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBrand)

	logStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	systemLineStyle = lipgloss.NewStyle().
			Foreground(colorSystem).
			Italic(true)

	ownLineStyle = lipgloss.NewStyle().
			Foreground(colorOwn)

	timeStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	rosterStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	rosterSelfStyle = lipgloss.NewStyle().
			Foreground(colorBrand).
			Bold(true)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBrandDim).
			Padding(0, 1)

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(colorBrand).
				Bold(true)

	joinBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorBrand).
			Padding(1, 3)

	helpStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorBrand).
			Background(colorBgPanel).
			Padding(1, 2).
			Margin(1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorTeal).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(colorTeal).
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorBrand).
			Bold(true)

	runningStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	dimmedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
)

// SenderColor returns the stable color for a sender name.
func SenderColor(name string) lipgloss.Color {
	h := fnv.New32a()
	h.Write([]byte(name))
	return senderPalette[h.Sum32()%uint32(len(senderPalette))]
}

// renderSectionTitle renders a section title that spans the full width.
func renderSectionTitle(title string, width int) string {
	return renderSectionTitleWithSuffix(title, "", width)
}

// renderSectionTitleWithSuffix renders a section title with an optional suffix (like scroll position).
func renderSectionTitleWithSuffix(title, suffix string, width int) string {
	// Format: ── TITLE ── [suffix] with dashes filling the remaining space
	titleWithSpaces := " " + title + " "
	titleDisplayWidth := lipgloss.Width(titleWithSpaces)
	suffixDisplayWidth := lipgloss.Width(suffix)
	availableWidth := width - titleDisplayWidth - suffixDisplayWidth
	if availableWidth < 2 {
		availableWidth = 2
	}
	leftDashes := availableWidth / 2
	rightDashes := availableWidth - leftDashes

	line := strings.Repeat("─", leftDashes) + titleWithSpaces + strings.Repeat("─", rightDashes)
	if suffix != "" {
		line += suffix
	}
	return panelTitleStyle.Render(line)
}

// truncateToWidth truncates a string to fit within maxWidth display columns.
// Uses rune-aware iteration to avoid cutting multi-byte characters.
func truncateToWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	currentWidth := 0
	for i, r := range s {
		charWidth := lipgloss.Width(string(r))
		if currentWidth+charWidth > maxWidth {
			return s[:i]
		}
		currentWidth += charWidth
	}
	return s
}

func truncateWithEllipsis(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return truncateToWidth(s, maxWidth)
	}
	return truncateToWidth(s, maxWidth-3) + "..."
}

// formatClock formats a message timestamp as local "HH:MM".
// Messages without a timestamp show a placeholder.
func formatClock(ts time.Time) string {
	if ts.IsZero() {
		return "--:--"
	}
	return ts.Local().Format("15:04")
}
