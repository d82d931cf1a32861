package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/reprise/internal/playback"
	"github.com/llehouerou/reprise/internal/remote"
)

// waitForChannel creates a command that waits for a value from a channel and converts it to a message.
// onResult receives the value and a boolean indicating if the channel is still open (false means channel closed).
func waitForChannel[T any](ch <-chan T, onResult func(T, bool) tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		result, ok := <-ch
		return onResult(result, ok)
	}
}

// WatchNowPlaying waits for the next bridge publication.
func (m Model) WatchNowPlaying() tea.Cmd {
	return waitForChannel(m.updates, func(n remote.NowPlaying, ok bool) tea.Msg {
		if !ok {
			return ServiceClosedMsg{}
		}
		return NowPlayingMsg{n}
	})
}

// WatchServiceEvents waits for the next session event.
func (m Model) WatchServiceEvents() tea.Cmd {
	sub := m.sub
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case e := <-sub.TrackChanged:
			return trackChangedMsg(e)
		case e := <-sub.Error:
			return errorMsg(e)
		case <-sub.Done:
			return ServiceClosedMsg{}
		}
	}
}

func errorMsg(e playback.ErrorEvent) ServiceErrorMsg {
	return ServiceErrorMsg{Operation: e.Operation, Path: e.Locator, Err: e.Err}
}
