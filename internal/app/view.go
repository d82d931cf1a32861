package app

import (
	"strings"

	"github.com/llehouerou/reprise/internal/ui/playerbar"
	"github.com/llehouerou/reprise/internal/ui/render"
	"github.com/llehouerou/reprise/internal/ui/styles"
)

const (
	headerHeight = 1
	footerHeight = 1
)

// View implements tea.Model.
func (m Model) View() string {
	if m.Width == 0 || m.Height == 0 {
		return ""
	}

	parts := []string{m.renderHeader(), m.QueuePanel.View()}
	if bar := playerbar.Render(playerbar.NewState(m.Now), m.Width); bar != "" {
		parts = append(parts, bar)
	}
	parts = append(parts, m.renderFooter())

	return enforceHeight(strings.Join(parts, "\n"), m.Height)
}

func (m Model) renderHeader() string {
	t := styles.T()
	title := styles.Gradient("reprise", t.Primary, t.Secondary)
	return render.Row(title, t.State(m.Now.State).Render(m.Now.State), m.Width)
}

func (m Model) renderFooter() string {
	if m.ErrorMsg != "" {
		return styles.T().S().Error.Render(render.Truncate(m.ErrorMsg, m.Width))
	}
	return styles.T().S().Subtle.Render(render.Truncate(helpText, m.Width))
}

// queueHeight is what is left for the queue once the header, player bar and
// footer are laid out. The bar slot is reserved even when idle so the
// layout does not jump.
func (m Model) queueHeight() int {
	return max(m.Height-headerHeight-playerbar.Height-footerHeight, 0)
}

// enforceHeight pads or truncates view to exactly targetHeight lines.
func enforceHeight(view string, targetHeight int) string {
	lines := strings.Split(view, "\n")
	if len(lines) > targetHeight {
		lines = lines[:targetHeight]
	}
	for len(lines) < targetHeight {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
