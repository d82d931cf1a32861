package playerbar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/reprise/internal/remote"
	"github.com/llehouerou/reprise/internal/ui/render"
)

// State holds everything needed to render the player bar.
type State struct {
	Playing     bool
	Paused      bool
	Title       string
	Artist      string
	Position    time.Duration
	Duration    time.Duration
	Index       int // 0-based, -1 when nothing is selected
	QueueLength int
	Shuffle     bool
	Loop        bool
}

// Height is the total height of the bar: top border, content, bottom border.
const Height = 3

// NewState builds a State from the bridge's now-playing view.
// Returns an empty State when nothing is selected.
func NewState(n remote.NowPlaying) State {
	if !n.HasItem() {
		return State{Index: -1, QueueLength: n.QueueLength}
	}
	return State{
		Playing:     n.Playing,
		Paused:      !n.Playing,
		Title:       n.Title,
		Artist:      n.Artist,
		Position:    n.Elapsed,
		Duration:    n.Total,
		Index:       n.Index,
		QueueLength: n.QueueLength,
		Shuffle:     n.Shuffle,
		Loop:        n.Loop != "Off" && n.Loop != "",
	}
}

// Render returns the player bar string for the given width.
// Returns empty string if nothing is selected.
func Render(s State, width int) string {
	if !s.Playing && !s.Paused {
		return ""
	}
	return renderCompact(s, width)
}

func renderCompact(s State, width int) string {
	innerWidth := max(width-6, 0)

	status := playSymbol
	if s.Paused {
		status = pauseSymbol
	}

	title := render.Sanitize(s.Title)
	if title == "" {
		title = "Unknown Track"
	}
	info := render.Sanitize(s.Artist)

	// Queue position and modes, e.g. "3/12 · shuffle · loop"
	meta := queueMeta(s)

	timeStr := fmt.Sprintf("%s / %s", formatDuration(s.Position), formatDuration(s.Duration))

	separator := "   "
	sepWidth := lipgloss.Width(separator)
	timeWidth := lipgloss.Width(timeStr)
	statusWidth := lipgloss.Width(status + "  ")
	titleWidth := lipgloss.Width(title)
	infoWidth := lipgloss.Width(info)

	minBarWidth := 10

	metaSpace := 0
	if meta != "" {
		metaSpace = lipgloss.Width(meta) + sepWidth
	}
	availableForContent := innerWidth - statusWidth - timeWidth - sepWidth*2 - minBarWidth - metaSpace

	var styledTitle, styledInfo string
	var usedContentWidth int

	switch {
	case info == "" && titleWidth <= availableForContent:
		styledTitle = titleStyle().Render(title)
		usedContentWidth = titleWidth
	case info != "" && titleWidth+sepWidth+infoWidth <= availableForContent:
		styledTitle = titleStyle().Render(title)
		styledInfo = artistStyle().Render(info)
		usedContentWidth = titleWidth + sepWidth + infoWidth
	case info != "" && titleWidth+sepWidth+1 < availableForContent:
		maxInfo := availableForContent - titleWidth - sepWidth
		styledTitle = titleStyle().Render(title)
		styledInfo = artistStyle().Render(render.TruncateEllipsis(info, maxInfo))
		usedContentWidth = titleWidth + sepWidth + maxInfo
	default:
		maxTitle := max(availableForContent, 10)
		styledTitle = titleStyle().Render(render.TruncateEllipsis(title, maxTitle))
		usedContentWidth = min(titleWidth, maxTitle)
	}

	barWidth := max(innerWidth-usedContentWidth-metaSpace-statusWidth-timeWidth-sepWidth*2, 5)
	filled := filledCells(s.Position, s.Duration, barWidth)
	filledBar := progressBarFilled().Render(strings.Repeat("━", filled))
	emptyBar := progressBarEmpty().Render(strings.Repeat("─", barWidth-filled))

	// Title   Artist   3/12   ▶  ━━━───   1:23 / 3:58
	var content strings.Builder
	content.WriteString(styledTitle)
	if styledInfo != "" {
		content.WriteString(separator)
		content.WriteString(styledInfo)
	}
	if meta != "" {
		content.WriteString(separator)
		content.WriteString(metaStyle().Render(meta))
	}
	content.WriteString(separator)
	content.WriteString(status)
	content.WriteString("  ")
	content.WriteString(filledBar)
	content.WriteString(emptyBar)
	content.WriteString(separator)
	content.WriteString(progressTimeStyle().Render(timeStr))

	return barStyle().Padding(0, 2).Width(width - 2).Render(content.String())
}

func queueMeta(s State) string {
	var parts []string
	if s.QueueLength > 0 && s.Index >= 0 {
		parts = append(parts, fmt.Sprintf("%d/%d", s.Index+1, s.QueueLength))
	}
	if s.Shuffle {
		parts = append(parts, "shuffle")
	}
	if s.Loop {
		parts = append(parts, "loop")
	}
	return strings.Join(parts, " · ")
}

// filledCells is the number of bar cells covered by position, clamped to
// [0, width].
func filledCells(position, duration time.Duration, width int) int {
	if duration <= 0 || position <= 0 {
		return 0
	}
	ratio := float64(position) / float64(duration)
	return min(int(float64(width)*ratio), width)
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d >= time.Hour {
		return fmt.Sprintf("%d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
