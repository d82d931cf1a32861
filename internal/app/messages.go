package app

import (
	"github.com/llehouerou/reprise/internal/playback"
	"github.com/llehouerou/reprise/internal/remote"
)

// NowPlayingMsg carries the latest session state published by the bridge.
type NowPlayingMsg struct {
	remote.NowPlaying
}

// ServiceTrackChangedMsg is sent when the session announces a new item.
type ServiceTrackChangedMsg struct {
	PreviousIndex int
	CurrentIndex  int
}

// ServiceErrorMsg is sent when the session fails to render an item.
type ServiceErrorMsg struct {
	Operation string
	Path      string
	Err       error
}

// ServiceClosedMsg is sent when the session is closed.
type ServiceClosedMsg struct{}

func trackChangedMsg(e playback.TrackChange) ServiceTrackChangedMsg {
	return ServiceTrackChangedMsg{PreviousIndex: e.PreviousIndex, CurrentIndex: e.Index}
}
