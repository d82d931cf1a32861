// Package styles holds the colour palette shared by the player views.
package styles

import "github.com/charmbracelet/lipgloss"

// Theme is the colour palette of the player.
type Theme struct {
	Primary   lipgloss.Color // current item, progress
	Secondary lipgloss.Color // queue modes, paused state

	Fg       lipgloss.Color
	FgMuted  lipgloss.Color
	FgSubtle lipgloss.Color

	BgCursor lipgloss.Color

	Border      lipgloss.Color
	BorderFocus lipgloss.Color

	Error lipgloss.Color

	styles *Styles
}

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Base    lipgloss.Style
	Muted   lipgloss.Style
	Subtle  lipgloss.Style
	Title   lipgloss.Style
	Current lipgloss.Style // the item the session has selected
	Cursor  lipgloss.Style
	Error   lipgloss.Style
}

var defaultTheme = Theme{
	Primary:   lipgloss.Color("#a78bfa"),
	Secondary: lipgloss.Color("#f1a208"),

	Fg:       lipgloss.Color("#c0c0c0"),
	FgMuted:  lipgloss.Color("#808080"),
	FgSubtle: lipgloss.Color("#585858"),

	BgCursor: lipgloss.Color("#303030"),

	Border:      lipgloss.Color("#585858"),
	BorderFocus: lipgloss.Color("#a78bfa"),

	Error: lipgloss.Color("#ff5555"),
}

// T returns the default theme.
func T() *Theme {
	return &defaultTheme
}

// S returns the styles built from t.
func (t *Theme) S() *Styles {
	if t.styles == nil {
		base := lipgloss.NewStyle().Foreground(t.Fg)
		t.styles = &Styles{
			Base:    base,
			Muted:   lipgloss.NewStyle().Foreground(t.FgMuted),
			Subtle:  lipgloss.NewStyle().Foreground(t.FgSubtle),
			Title:   base.Bold(true),
			Current: lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
			Cursor:  lipgloss.NewStyle().Background(t.BgCursor).Foreground(t.Fg),
			Error:   lipgloss.NewStyle().Foreground(t.Error),
		}
	}
	return t.styles
}

// Panel returns the bordered style of a panel.
func (t *Theme) Panel(focused bool) lipgloss.Style {
	border := t.Border
	if focused {
		border = t.BorderFocus
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border)
}

// State styles a playback state label such as "Playing" or "Paused".
func (t *Theme) State(state string) lipgloss.Style {
	switch state {
	case "Playing":
		return lipgloss.NewStyle().Foreground(t.Primary)
	case "Paused":
		return lipgloss.NewStyle().Foreground(t.Secondary)
	default:
		return t.S().Subtle
	}
}
