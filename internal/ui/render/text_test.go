package render

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"clean", "Kind of Blue", "Kind of Blue"},
		{"unicode", "Sigur Rós – Ágætis byrjun", "Sigur Rós – Ágætis byrjun"},
		{"tab kept", "a\tb", "a\tb"},
		{"newline dropped", "line\nbreak", "linebreak"},
		{"escape dropped", "\x1b[31mred", "[31mred"},
		{"c1 control dropped", "a\u0085b", "ab"},
		{"invalid byte dropped", "ab\xffcd", "abcd"},
		{"nbsp replaced", "a\u00a0b", "a b"},
		{"replacement char kept", "a\ufffdb", "a\ufffdb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "a long...", Truncate("a long title", 9))
	assert.Equal(t, "日本...", Truncate("日本語のタイトル", 7))
	assert.Equal(t, "ab", Truncate("a\nb", 5))
}

func TestTruncateEllipsis(t *testing.T) {
	assert.Equal(t, "fits", TruncateEllipsis("fits", 4))
	assert.Equal(t, "Lon…", TruncateEllipsis("Long title", 4))
	assert.Equal(t, "", TruncateEllipsis("anything", 0))
	assert.Equal(t, "日…", TruncateEllipsis("日本語", 4))
}

func TestTruncateAndPad(t *testing.T) {
	for _, s := range []string{"", "abc", "a much longer string", "日本語のタイトル"} {
		assert.Equal(t, 8, lipgloss.Width(TruncateAndPad(s, 8)), s)
	}
	assert.Equal(t, "abc     ", TruncateAndPad("abc", 8))
}

func TestRow(t *testing.T) {
	assert.Equal(t, "left     right", Row("left", "right", 14))
	assert.Equal(t, "left right", Row("left", "right", 3))
}

func TestSeparatorAndEmptyLine(t *testing.T) {
	assert.Equal(t, "───", Separator(3))
	assert.Equal(t, "   ", EmptyLine(3))
	assert.Empty(t, Separator(-1))
	assert.Empty(t, EmptyLine(0))
}
