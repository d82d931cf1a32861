package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/reprise/internal/app/handler"
	"github.com/llehouerou/reprise/internal/errmsg"
	"github.com/llehouerou/reprise/internal/keymap"
	"github.com/llehouerou/reprise/internal/playback"
)

// helpText lists the main bindings in the footer.
var helpText = keymap.Help(keymap.Default,
	keymap.ActionPlayPause,
	keymap.ActionNextTrack,
	keymap.ActionPrevTrack,
	keymap.ActionSeekForward,
	keymap.ActionToggleShuffle,
	keymap.ActionToggleLoop,
	keymap.ActionUndo,
	keymap.ActionQuit,
)

// bind expands an action table into a key table using the default keymap.
func bind(actions map[keymap.Action]func() tea.Cmd) handler.Handler {
	keys := make(map[string]func() tea.Cmd)
	for action, fn := range actions {
		for _, key := range keymap.Default.KeysFor(action) {
			keys[key] = fn
		}
	}
	return handler.Bindings(keys)
}

func (m *Model) globalKeys() handler.Handler {
	return bind(map[keymap.Action]func() tea.Cmd{
		keymap.ActionQuit: func() tea.Cmd { return tea.Quit },
	})
}

func (m *Model) transportKeys() handler.Handler {
	return bind(map[keymap.Action]func() tea.Cmd{
		keymap.ActionPlayPause: func() tea.Cmd {
			m.report(errmsg.OpPlaybackStart, m.ctrl.Toggle())
			return nil
		},
		keymap.ActionNextTrack: func() tea.Cmd {
			m.report(errmsg.OpPlaybackNext, m.ctrl.PlayNext())
			return nil
		},
		keymap.ActionPrevTrack: func() tea.Cmd {
			m.report(errmsg.OpPlaybackPrev, m.ctrl.PlayPrevious())
			return nil
		},
		keymap.ActionSeekForward: func() tea.Cmd {
			m.report(errmsg.OpPlaybackSeek, m.ctrl.SeekBy(seekStep))
			return nil
		},
		keymap.ActionSeekBack: func() tea.Cmd {
			m.report(errmsg.OpPlaybackSeek, m.ctrl.SeekBy(-seekStep))
			return nil
		},
		keymap.ActionStop: func() tea.Cmd {
			m.report(errmsg.OpPlaybackStop, m.ctrl.Stop())
			return nil
		},
	})
}

func (m *Model) queueKeys() handler.Handler {
	return bind(map[keymap.Action]func() tea.Cmd{
		keymap.ActionToggleShuffle: func() tea.Cmd {
			_, err := m.ctrl.ToggleShuffle()
			m.report(errmsg.OpQueueShuffle, err)
			return nil
		},
		keymap.ActionToggleLoop: func() tea.Cmd {
			if m.ctrl.Loop() == playback.LoopQueue {
				m.ctrl.SetLoop(playback.LoopOff)
			} else {
				m.ctrl.SetLoop(playback.LoopQueue)
			}
			return nil
		},
		keymap.ActionUndo: func() tea.Cmd {
			m.ctrl.Undo()
			return nil
		},
		keymap.ActionRedo: func() tea.Cmd {
			m.ctrl.Redo()
			return nil
		},
	})
}
