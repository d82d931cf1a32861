package playback

import "github.com/llehouerou/reprise/internal/playlist"

// TrackChange is emitted when playback starts on an item.
//
// Emitted by Play, PlayNext, PlayPrevious and by the engine reporting the
// end of an item, whenever the engine is started at rate 1.
//
// NOT emitted by:
//   - Load/Restore: the item is only prepared
//   - PlayNext wrapping to the start without looping
//   - Pause/Resume/Seek
//
// The app handles item-related side effects (notifications, artwork) in
// response to this event.
type TrackChange struct {
	Previous      *playlist.Item
	Current       *playlist.Item
	PreviousIndex int
	Index         int
}

// ErrorEvent is emitted once per failed attempt to render an item.
type ErrorEvent struct {
	Operation string // e.g. "play", "load", "resume"
	Locator   string
	Err       error
}
