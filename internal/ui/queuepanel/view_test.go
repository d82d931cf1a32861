package queuepanel

import (
	"regexp"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/reprise/internal/playlist"
)

// stripANSI removes ANSI escape codes from a string for easier testing.
func stripANSI(s string) string {
	re := regexp.MustCompile(`\x1b\[[0-9;]*m`)
	return re.ReplaceAllString(s, "")
}

func testItems(titles ...string) []playlist.Item {
	items := make([]playlist.Item, len(titles))
	for i, title := range titles {
		items[i] = playlist.Item{
			ContentID:     title,
			InstanceID:    playlist.NewInstanceID(),
			Title:         title,
			Author:        "Artist " + title,
			Duration:      3*time.Minute + 58*time.Second,
			SourceLocator: "/test/" + title + ".mp3",
		}
	}
	return items
}

func newPanel(width, height int, items []playlist.Item, current int) Model {
	m := New()
	m.SetSize(width, height)
	m.SetQueue(items, current)
	return m
}

func TestView_ZeroSize(t *testing.T) {
	m := New()
	if m.View() != "" {
		t.Error("zero-size panel should render nothing")
	}
}

func TestView_EmptyQueue(t *testing.T) {
	m := newPanel(60, 10, nil, -1)

	stripped := stripANSI(m.View())
	if !strings.Contains(stripped, "Queue (0/0)") {
		t.Errorf("empty queue should show 'Queue (0/0)', got: %s", stripped)
	}
}

func TestView_Header(t *testing.T) {
	m := newPanel(60, 10, testItems("A", "B", "C"), 1)

	stripped := stripANSI(m.View())
	if !strings.Contains(stripped, "Queue (2/3)") {
		t.Errorf("should show 'Queue (2/3)', got: %s", stripped)
	}
}

func TestView_Tracks(t *testing.T) {
	m := newPanel(60, 10, testItems("Song", "Other"), 0)

	stripped := stripANSI(m.View())
	for _, want := range []string{"Song", "Artist Song", "Other", "3:58", playingSymbol + " Song"} {
		if !strings.Contains(stripped, want) {
			t.Errorf("missing %q in:\n%s", want, stripped)
		}
	}
}

func TestView_Modes(t *testing.T) {
	m := newPanel(60, 10, testItems("A"), 0)
	m.SetModes(true, true)

	stripped := stripANSI(m.View())
	if !strings.Contains(stripped, "shuffle") || !strings.Contains(stripped, "loop") {
		t.Errorf("modes not shown:\n%s", stripped)
	}
}

func TestView_Height(t *testing.T) {
	m := newPanel(50, 8, testItems("A", "B", "C", "D", "E", "F", "G", "H", "I"), 0)

	lines := strings.Split(m.View(), "\n")
	if len(lines) != 8 {
		t.Errorf("rendered %d lines, want 8", len(lines))
	}
}

func TestView_TitleFallsBackToLocator(t *testing.T) {
	items := testItems("x")
	items[0].Title = ""
	m := newPanel(80, 6, items, -1)

	if !strings.Contains(stripANSI(m.View()), "/test/x.mp3") {
		t.Error("untitled item should show its locator")
	}
}

func TestUpdate_IgnoredWhenUnfocused(t *testing.T) {
	m := newPanel(60, 10, testItems("A", "B"), 0)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.Cursor() != 0 || cmd != nil {
		t.Errorf("unfocused panel moved cursor to %d", m.Cursor())
	}
}

func TestUpdate_Navigation(t *testing.T) {
	m := newPanel(60, 10, testItems("A", "B", "C"), 0)
	m.SetFocused(true)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	if m.Cursor() != 2 {
		t.Errorf("cursor = %d, want 2 (clamped)", m.Cursor())
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	if m.Cursor() != 0 {
		t.Errorf("cursor = %d after g, want 0", m.Cursor())
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}})
	if m.Cursor() != 2 {
		t.Errorf("cursor = %d after G, want 2", m.Cursor())
	}
}

func TestUpdate_JumpAndRemove(t *testing.T) {
	m := newPanel(60, 10, testItems("A", "B", "C"), 0)
	m.SetFocused(true)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should produce a command")
	}
	if msg, ok := cmd().(JumpToTrackMsg); !ok || msg.Index != 1 {
		t.Errorf("enter produced %#v, want JumpToTrackMsg{1}", cmd())
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	if cmd == nil {
		t.Fatal("d should produce a command")
	}
	if msg, ok := cmd().(RemoveTrackMsg); !ok || msg.Index != 1 {
		t.Errorf("d produced %#v, want RemoveTrackMsg{1}", cmd())
	}
}

func TestUpdate_EmptyQueueNoCommands(t *testing.T) {
	m := newPanel(60, 10, nil, -1)
	m.SetFocused(true)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("enter on empty queue should do nothing")
	}
}

func TestSetQueue_ClampsCursor(t *testing.T) {
	m := newPanel(60, 10, testItems("A", "B", "C"), 0)
	m.SetFocused(true)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}})

	m.SetQueue(testItems("A"), 0)
	if m.Cursor() != 0 {
		t.Errorf("cursor = %d after shrink, want 0", m.Cursor())
	}
}

func TestScroll_KeepsCursorVisible(t *testing.T) {
	titles := make([]string, 30)
	for i := range titles {
		titles[i] = string(rune('a' + i%26))
	}
	m := newPanel(60, 10, testItems(titles...), 0)
	m.SetFocused(true)

	for range 20 {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	height := m.listHeight()
	if m.cursor < m.offset || m.cursor >= m.offset+height {
		t.Errorf("cursor %d outside window [%d,%d)", m.cursor, m.offset, m.offset+height)
	}
}
