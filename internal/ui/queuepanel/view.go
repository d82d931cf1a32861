package queuepanel

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/reprise/internal/playlist"
	"github.com/llehouerou/reprise/internal/ui"
	"github.com/llehouerou/reprise/internal/ui/render"
	"github.com/llehouerou/reprise/internal/ui/styles"
)

// View renders the queue panel.
func (m Model) View() string {
	if m.Width() == 0 || m.Height() == 0 {
		return ""
	}

	innerWidth := m.Width() - ui.BorderSize

	header := m.renderHeader(innerWidth)
	separator := render.Separator(innerWidth)
	trackList := m.renderTrackList(innerWidth, m.listHeight())

	content := header + "\n" + separator + "\n" + trackList

	return styles.T().Panel(m.IsFocused()).
		Width(innerWidth).
		Render(content)
}

// renderHeader renders "Queue (n/len)" with the active modes on the right.
func (m Model) renderHeader(innerWidth int) string {
	text := fmt.Sprintf("Queue (%d/%d)", m.current+1, len(m.items))

	modes, modesWidth := m.renderModes()
	text = render.TruncateAndPad(text, innerWidth-modesWidth)

	return headerStyle.Render(text) + modes
}

func (m Model) renderModes() (styled string, width int) {
	var parts []string
	if m.shuffle {
		parts = append(parts, "shuffle")
	}
	if m.loop {
		parts = append(parts, "loop")
	}
	if len(parts) == 0 {
		return "", 0
	}
	raw := strings.Join(parts, "  ") + " "
	return modeStyle.Render(raw), lipgloss.Width(raw)
}

func (m Model) renderTrackList(innerWidth, listHeight int) string {
	lines := make([]string, 0, listHeight)
	for i := range listHeight {
		idx := i + m.offset
		if idx >= len(m.items) {
			lines = append(lines, render.EmptyLine(innerWidth))
			continue
		}
		lines = append(lines, m.renderTrackLine(m.items[idx], idx, innerWidth))
	}
	return strings.Join(lines, "\n")
}

// renderTrackLine renders "▶ title      artist     3:58".
func (m Model) renderTrackLine(item playlist.Item, idx, width int) string {
	prefix := "  "
	if idx == m.current {
		prefix = playingSymbol + " "
	}

	duration := ""
	if item.Duration > 0 {
		d := item.Duration
		duration = fmt.Sprintf(" %d:%02d", int(d.Minutes()), int(d.Seconds())%60)
	}
	durationWidth := lipgloss.Width(duration)

	contentWidth := max(width-2-durationWidth, 0)
	titleWidth := contentWidth / 2
	authorWidth := contentWidth - titleWidth

	title := item.Title
	if title == "" {
		title = item.SourceLocator
	}
	line := prefix +
		render.TruncateAndPad(title, titleWidth) +
		render.TruncateAndPad(item.Author, authorWidth) +
		duration

	return m.lineStyle(idx).Render(line)
}

func (m Model) lineStyle(idx int) lipgloss.Style {
	isCursor := idx == m.cursor && m.IsFocused()
	isPlaying := idx == m.current
	isPlayed := m.current >= 0 && idx < m.current

	switch {
	case isCursor && isPlaying:
		return cursorStyle.Inherit(playingStyle)
	case isCursor && isPlayed:
		return cursorStyle.Inherit(dimmedStyle)
	case isCursor:
		return cursorStyle
	case isPlaying:
		return playingStyle
	case isPlayed:
		return dimmedStyle
	default:
		return trackStyle
	}
}
