package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/mobius/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar. notice, when set, replaces
// the key hints and is shown in the warning colour.
func RenderStatusBar(width int, period, backend, notice string, busy bool) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	left := base.Render(" [?]help  [r]efresh  [q]uit")
	if notice != "" {
		left = warn.Render(" " + notice)
	}

	var right strings.Builder
	if busy {
		right.WriteString(accent.Render("↻ "))
	}
	if period != "" {
		right.WriteString(accent.Render(period))
		right.WriteString(base.Render(" · "))
	}
	right.WriteString(base.Render(backend + " "))

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right.String()), 0)
	return left + base.Render(strings.Repeat(" ", padding)) + right.String()
}
