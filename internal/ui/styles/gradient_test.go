package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestGradient_KeepsText(t *testing.T) {
	out := Gradient("reprise", T().Primary, T().Secondary)
	assert.Equal(t, 7, lipgloss.Width(out))
	assert.Empty(t, Gradient("", T().Primary, T().Secondary))
	assert.Equal(t, 1, lipgloss.Width(Gradient("r", T().Primary, T().Secondary)))
}

func TestHex_FallsBackForANSI(t *testing.T) {
	assert.Equal(t, fallback, hex(lipgloss.Color("240")))
	assert.Equal(t, "#a78bfa", hex(T().Primary).Hex())
}

func TestTheme_State(t *testing.T) {
	th := T()
	assert.Equal(t, th.Primary, th.State("Playing").GetForeground())
	assert.Equal(t, th.Secondary, th.State("Paused").GetForeground())
	assert.Equal(t, th.FgSubtle, th.State("Stopped").GetForeground())
}

func TestTheme_Panel(t *testing.T) {
	th := T()
	assert.Equal(t, th.BorderFocus, th.Panel(true).GetBorderTopForeground())
	assert.Equal(t, th.Border, th.Panel(false).GetBorderTopForeground())
}
