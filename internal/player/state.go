// internal/player/state.go
package player

// State represents the render engine state machine.
//
//	┌──────────┐      load       ┌──────────┐
//	│  Stopped │ ───────────────▶│  Paused  │
//	└──────────┘                 └──────────┘
//	     ▲                          │    ▲
//	     │ stop          SetRate(>0)│    │SetRate(0)
//	     │                          ▼    │
//	     │                       ┌──────────┐
//	     └───────────────────────│  Playing │
//	                  stop       └──────────┘
//
// Load always lands in Paused, whatever the previous state was.
// SetRate on a Stopped engine only records the rate.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if a source is loaded (Playing or Paused).
func (s State) IsActive() bool {
	return s == Playing || s == Paused
}

// CanPause returns true if the state allows pausing.
func (s State) CanPause() bool {
	return s == Playing
}

// CanResume returns true if the state allows resuming.
func (s State) CanResume() bool {
	return s == Paused
}

func stateForRate(rate float64) State {
	if rate > 0 {
		return Playing
	}
	return Paused
}
