// Package remote maps remote-control commands (OS media keys, lock screen,
// the local HTTP surface) onto the playback session and reports what is
// playing back to those surfaces.
package remote

import (
	"errors"
	"time"

	"github.com/llehouerou/reprise/internal/playback"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrTrackMismatch  = errors.New("track is no longer current")
)

// Command names.
const (
	CmdPlay        = "play"
	CmdPause       = "pause"
	CmdToggle      = "toggle"
	CmdStop        = "stop"
	CmdNext        = "next"
	CmdPrevious    = "previous"
	CmdSeek        = "seek"
	CmdSetPosition = "set-position"
	CmdSetShuffle  = "set-shuffle"
	CmdSetLoop     = "set-loop"
)

// Commands lists every command Handle accepts.
var Commands = []string{
	CmdPlay, CmdPause, CmdToggle, CmdStop, CmdNext, CmdPrevious,
	CmdSeek, CmdSetPosition, CmdSetShuffle, CmdSetLoop,
}

// Command is a single remote request. Only the fields relevant to Name are
// read.
type Command struct {
	Name   string
	Source string // "mpris", "http", ... used for metrics only

	Offset   time.Duration // seek: relative move
	Position time.Duration // set-position: absolute target
	TrackID  string        // set-position: instance the position applies to; empty skips the check
	Shuffle  bool          // set-shuffle
	Loop     playback.LoopMode
}
