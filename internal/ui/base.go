// Package ui holds what the player's panels have in common.
package ui

const (
	// ScrollMargin is how many rows stay visible beyond the cursor.
	ScrollMargin = 2

	// BorderSize is what a rounded border takes on each axis.
	BorderSize = 2

	// PanelOverhead is the border plus a header line and its separator.
	PanelOverhead = BorderSize + 2
)

// Base tracks the size and focus of a panel. Embed it.
type Base struct {
	width, height int
	focused       bool
}

func (b *Base) SetFocused(focused bool) { b.focused = focused }
func (b Base) IsFocused() bool          { return b.focused }

// SetSize sets the outer size of the panel, border included.
func (b *Base) SetSize(width, height int) {
	b.width = width
	b.height = height
}

func (b Base) Width() int  { return b.width }
func (b Base) Height() int { return b.height }

// ContentHeight is the number of list rows that fit inside the panel.
func (b Base) ContentHeight() int {
	return max(b.height-PanelOverhead, 0)
}
