package playerbar

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	filledBlock = "▓"
	emptyBlock  = "░"
)

// RenderProgressBar renders an unstyled block progress line for s, used
// outside the TUI (e.g. by the status command).
// Format: ▶  1:23  ▓▓▓▓▓░░░░░  4:56
func RenderProgressBar(s State, width int) string {
	status := playSymbol
	if !s.Playing {
		status = pauseSymbol
	}

	posStr := formatDuration(s.Position)
	durStr := formatDuration(s.Duration)

	fixedWidth := lipgloss.Width(status) + 2 + lipgloss.Width(posStr) + 2 + 2 + lipgloss.Width(durStr)
	barWidth := width - fixedWidth

	if barWidth < 3 {
		// Too narrow for bar, just show times
		return status + "  " + posStr + " / " + durStr
	}

	filled := filledCells(s.Position, s.Duration, barWidth)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, barWidth-filled)

	return status + "  " + posStr + "  " + bar + "  " + durStr
}
