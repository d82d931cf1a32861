package playback

import "errors"

// Sentinel errors returned by Session operations. None of them is fatal:
// the session state is unchanged when one is returned, except for
// ErrRenderFailed, which leaves the failed item selected and paused.
var (
	ErrEmptyQueue     = errors.New("queue is empty")
	ErrNoCurrentItem  = errors.New("no item selected")
	ErrInvalidIndex   = errors.New("index out of range")
	ErrNotPlaying     = errors.New("not playing")
	ErrAlreadyPlaying = errors.New("already playing")
	ErrRenderFailed   = errors.New("render failed")
	ErrClosed         = errors.New("session closed")
)
