// Package keymap defines key bindings and action dispatch for the player.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit Action = "quit"

	// Playback actions
	ActionPlayPause   Action = "play_pause"
	ActionStop        Action = "stop"
	ActionNextTrack   Action = "next_track"
	ActionPrevTrack   Action = "prev_track"
	ActionSeekForward Action = "seek_forward"
	ActionSeekBack    Action = "seek_back"

	// Queue actions
	ActionToggleShuffle Action = "toggle_shuffle"
	ActionToggleLoop    Action = "toggle_loop"
	ActionUndo          Action = "undo"
	ActionRedo          Action = "redo"
	ActionMoveUp        Action = "move_up"
	ActionMoveDown      Action = "move_down"
	ActionJumpTop       Action = "jump_top"
	ActionJumpBottom    Action = "jump_bottom"
	ActionPlaySelected  Action = "play_selected"
	ActionDelete        Action = "delete"
)
