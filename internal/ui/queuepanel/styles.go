package queuepanel

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/reprise/internal/ui/styles"
)

const (
	playingSymbol = "▶"
)

var (
	headerStyle  = styles.T().S().Title
	modeStyle    = lipgloss.NewStyle().Foreground(styles.T().Secondary)
	trackStyle   = styles.T().S().Base
	playingStyle = styles.T().S().Current
	cursorStyle  = styles.T().S().Cursor
	dimmedStyle  = styles.T().S().Subtle
)
