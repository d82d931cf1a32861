// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import (
	"errors"
	"fmt"

	"github.com/llehouerou/reprise/internal/playback"
	"github.com/llehouerou/reprise/internal/remote"
	"github.com/llehouerou/reprise/internal/state"
)

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Queue operations
	OpQueueLoad    Op = "load queue"
	OpQueueAdd     Op = "add to queue"
	OpQueueRemove  Op = "remove from queue"
	OpQueueShuffle Op = "shuffle queue"

	// Playback operations
	OpPlaybackStart  Op = "start playback"
	OpPlaybackPause  Op = "pause playback"
	OpPlaybackResume Op = "resume playback"
	OpPlaybackStop   Op = "stop playback"
	OpPlaybackSeek   Op = "seek"
	OpPlaybackNext   Op = "skip to next"
	OpPlaybackPrev   Op = "go back"

	// Session persistence
	OpSessionRestore Op = "restore session"
	OpSessionSave    Op = "save session"
	OpSessionClear   Op = "clear saved session"

	// Library
	OpFileLoad  Op = "load file"
	OpFileWatch Op = "watch files"

	// Remote control
	OpRemoteCommand Op = "run remote command"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %s", op, describe(err))
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %s", op, context, describe(err))
}

// describe replaces well-known sentinel errors with plain wording.
func describe(err error) string {
	switch {
	case errors.Is(err, playback.ErrEmptyQueue):
		return "the queue is empty"
	case errors.Is(err, playback.ErrNoCurrentItem):
		return "nothing is selected"
	case errors.Is(err, playback.ErrNotPlaying):
		return "nothing is playing"
	case errors.Is(err, playback.ErrAlreadyPlaying):
		return "already playing"
	case errors.Is(err, playback.ErrInvalidIndex):
		return "no such queue position"
	case errors.Is(err, state.ErrCorruptSnapshot):
		return "the saved session is unreadable"
	case errors.Is(err, remote.ErrTrackMismatch):
		return "the track changed in the meantime"
	}
	return err.Error()
}
