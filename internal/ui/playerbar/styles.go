package playerbar

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/reprise/internal/ui/styles"
)

const (
	playSymbol  = "▶"
	pauseSymbol = "⏸"
)

func barStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.T().Border)
}

func titleStyle() lipgloss.Style {
	return styles.T().S().Title
}

func artistStyle() lipgloss.Style {
	return styles.T().S().Muted
}

func metaStyle() lipgloss.Style {
	return styles.T().S().Subtle
}

func progressBarFilled() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(styles.T().Primary)
}

func progressBarEmpty() lipgloss.Style {
	return styles.T().S().Subtle
}

func progressTimeStyle() lipgloss.Style {
	return styles.T().S().Muted
}
