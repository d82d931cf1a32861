package keymap

import (
	"strings"

	"github.com/samber/lo"
)

// Binding ties keys to an action, with a description for help output.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string // "global", "playback", "queue"
}

// All contains every key binding.
var All = []Binding{
	// Global
	{ActionQuit, []string{"q", "ctrl+c"}, "quit", "global"},

	// Playback
	{ActionPlayPause, []string{" "}, "play/pause", "playback"},
	{ActionStop, []string{"x"}, "stop", "playback"},
	{ActionNextTrack, []string{"n"}, "next", "playback"},
	{ActionPrevTrack, []string{"p"}, "previous", "playback"},
	{ActionSeekForward, []string{"right"}, "seek +5s", "playback"},
	{ActionSeekBack, []string{"left"}, "seek -5s", "playback"},

	// Queue
	{ActionToggleShuffle, []string{"s"}, "shuffle", "queue"},
	{ActionToggleLoop, []string{"l"}, "loop", "queue"},
	{ActionUndo, []string{"u"}, "undo", "queue"},
	{ActionRedo, []string{"ctrl+r"}, "redo", "queue"},
	{ActionMoveDown, []string{"j", "down"}, "down", "queue"},
	{ActionMoveUp, []string{"k", "up"}, "up", "queue"},
	{ActionJumpTop, []string{"g"}, "top", "queue"},
	{ActionJumpBottom, []string{"G"}, "bottom", "queue"},
	{ActionPlaySelected, []string{"enter"}, "play selected", "queue"},
	{ActionDelete, []string{"d", "delete"}, "remove", "queue"},
}

// Default resolves the bindings in All.
var Default = NewResolver(All)

// Help renders a one-line summary of the bindings for the given actions,
// e.g. "space play/pause · n next".
func Help(r *Resolver, actions ...Action) string {
	parts := lo.FilterMap(actions, func(a Action, _ int) (string, bool) {
		keys := r.KeysFor(a)
		if len(keys) == 0 {
			return "", false
		}
		return displayKey(keys[0]) + " " + r.Description(a), true
	})
	return strings.Join(parts, " · ")
}

func displayKey(key string) string {
	switch key {
	case " ":
		return "space"
	case "left":
		return "←"
	case "right":
		return "→"
	}
	return key
}
