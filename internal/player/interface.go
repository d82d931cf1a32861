// internal/player/interface.go
package player

import "time"

// Interface is the render engine contract the playback session drives.
//
// Load prepares a source paused at position zero. SetRate(0) pauses and
// any positive rate plays. Seek never calls done synchronously: the
// completion always arrives on another goroutine, after Seek returned.
type Interface interface {
	Load(locator string) error
	Locator() string
	SetRate(rate float64)
	Rate() float64
	State() State
	Seek(pos, toleranceBefore, toleranceAfter time.Duration, done func(ok bool))
	Position() time.Duration
	Duration() time.Duration
	Stop()
	FinishedChan() <-chan struct{}
	Close()
}

// Verify Player implements Interface at compile time.
var _ Interface = (*Player)(nil)
