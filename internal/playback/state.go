// internal/playback/state.go
package playback

import (
	"fmt"
	"strings"
)

// State represents the session state.
//
// Idle means nothing is selected. A selected item is either Paused or
// Playing; the session returns to Idle only when the queue empties.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if an item is selected (playing or paused).
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}

// LoopMode decides what happens when playback runs past the last item.
type LoopMode int

const (
	// LoopOff wraps to the first item and stays paused there.
	LoopOff LoopMode = iota
	// LoopQueue wraps to the first item and keeps playing.
	LoopQueue
)

// String returns the loop mode name.
func (m LoopMode) String() string {
	switch m {
	case LoopOff:
		return "Off"
	case LoopQueue:
		return "Queue"
	default:
		return "Unknown"
	}
}

// ParseLoopMode accepts the names produced by String, case-insensitively,
// plus "none" and "playlist" as used by MPRIS and "false" and "true" as
// boolean toggles.
func ParseLoopMode(s string) (LoopMode, error) {
	switch strings.ToLower(s) {
	case "off", "none", "false":
		return LoopOff, nil
	case "queue", "playlist", "true":
		return LoopQueue, nil
	}
	return LoopOff, fmt.Errorf("unknown loop mode %q", s)
}
