// Package queuepanel renders the play queue and lets the user jump to or
// remove entries.
package queuepanel

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/reprise/internal/keymap"
	"github.com/llehouerou/reprise/internal/playlist"
	"github.com/llehouerou/reprise/internal/ui"
)

// JumpToTrackMsg is sent when the user selects a track to jump to.
type JumpToTrackMsg struct {
	Index int
}

// RemoveTrackMsg is sent when the user removes the track under the cursor.
type RemoveTrackMsg struct {
	Index int
}

// Model represents the queue panel state. The queue itself is owned by the
// playback session; the panel only keeps the latest published copy.
type Model struct {
	ui.Base
	items   []playlist.Item
	current int
	shuffle bool
	loop    bool
	cursor  int
	offset  int
}

// New creates an empty queue panel.
func New() Model {
	return Model{current: -1}
}

// SetQueue replaces the displayed queue.
func (m *Model) SetQueue(items []playlist.Item, current int) {
	m.items = items
	m.current = current
	if m.cursor >= len(items) {
		m.cursor = max(len(items)-1, 0)
	}
	m.ensureCursorVisible()
}

// SetModes updates the shuffle and loop indicators.
func (m *Model) SetModes(shuffle, loop bool) {
	m.shuffle = shuffle
	m.loop = loop
}

// Cursor returns the cursor position.
func (m Model) Cursor() int {
	return m.cursor
}

// Update handles key messages while the panel is focused.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !m.IsFocused() {
		return m, nil
	}

	switch keymap.Default.Resolve(keyMsg.String()) {
	case keymap.ActionMoveDown:
		m.moveCursor(1)
	case keymap.ActionMoveUp:
		m.moveCursor(-1)
	case keymap.ActionJumpTop:
		m.cursor = 0
		m.offset = 0
	case keymap.ActionJumpBottom:
		if len(m.items) > 0 {
			m.cursor = len(m.items) - 1
			m.ensureCursorVisible()
		}
	case keymap.ActionPlaySelected:
		if m.cursor < len(m.items) {
			idx := m.cursor
			return m, func() tea.Msg { return JumpToTrackMsg{Index: idx} }
		}
	case keymap.ActionDelete:
		if m.cursor < len(m.items) {
			idx := m.cursor
			return m, func() tea.Msg { return RemoveTrackMsg{Index: idx} }
		}
	}

	return m, nil
}

func (m *Model) moveCursor(delta int) {
	if len(m.items) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.items)-1)
	m.ensureCursorVisible()
}

func (m *Model) ensureCursorVisible() {
	height := m.listHeight()
	if height <= 0 {
		m.offset = 0
		return
	}
	margin := min(ui.ScrollMargin, (height-1)/2)
	if m.cursor < m.offset+margin {
		m.offset = max(m.cursor-margin, 0)
	}
	if m.cursor >= m.offset+height-margin {
		m.offset = m.cursor - height + margin + 1
	}
	m.offset = min(m.offset, max(len(m.items)-height, 0))
}

func (m Model) listHeight() int {
	return m.ContentHeight()
}
