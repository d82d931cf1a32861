package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// fallback is used for colours that are not #rrggbb, such as ANSI indexes.
var fallback = colorful.Color{R: 0.5, G: 0.5, B: 0.5}

// Gradient renders text in bold, blending from one colour to the other
// across its grapheme clusters.
func Gradient(text string, from, to lipgloss.Color) string {
	var clusters []string
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		clusters = append(clusters, g.Str())
	}

	switch len(clusters) {
	case 0:
		return ""
	case 1:
		return lipgloss.NewStyle().Bold(true).Foreground(from).Render(text)
	}

	start, end := hex(from), hex(to)
	var b strings.Builder
	for i, cluster := range clusters {
		c := start.BlendHcl(end, float64(i)/float64(len(clusters)-1)).Clamped()
		b.WriteString(lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(c.Hex())).
			Render(cluster))
	}
	return b.String()
}

func hex(c lipgloss.Color) colorful.Color {
	col, err := colorful.Hex(string(c))
	if err != nil {
		return fallback
	}
	return col
}
