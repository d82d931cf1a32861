package playback

import (
	"time"

	"github.com/llehouerou/reprise/internal/playlist"
)

// Snapshot is the persisted form of a session: enough to resume where the
// user left off after a restart.
type Snapshot struct {
	Queue    playlist.QueueState
	Loop     LoopMode
	Position time.Duration
	Duration time.Duration
	SavedAt  time.Time
}

// Valid reports whether the snapshot can seed a session: a consistent
// queue with a selected item.
func (s Snapshot) Valid() bool {
	return len(s.Queue.Items) > 0 &&
		s.Queue.CurrentIndex >= 0 &&
		s.Queue.Valid() &&
		s.Position >= 0
}

// Current returns the selected item, or nil for an invalid snapshot.
func (s Snapshot) Current() *playlist.Item {
	if !s.Valid() {
		return nil
	}
	it := s.Queue.Items[s.Queue.CurrentIndex]
	return &it
}
