package app

import (
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/reprise/internal/app/handler"
	"github.com/llehouerou/reprise/internal/errmsg"
	"github.com/llehouerou/reprise/internal/playback"
	"github.com/llehouerou/reprise/internal/playlist"
	"github.com/llehouerou/reprise/internal/remote"
	"github.com/llehouerou/reprise/internal/ui/queuepanel"
)

// seekStep is how far left/right move the playhead.
const seekStep = 5 * time.Second

// Controller is the session surface the view drives.
type Controller interface {
	Toggle() error
	Stop() error
	PlayNext() error
	PlayPrevious() error
	Play(index int, updateOrdering bool) error
	SeekBy(delta time.Duration) error
	ToggleShuffle() (bool, error)
	Loop() playback.LoopMode
	SetLoop(m playback.LoopMode)
	Undo() bool
	Redo() bool
	RemoveAt(index int) (playlist.Item, error)
	Items() []playlist.Item
	CurrentIndex() int
	Subscribe() *playback.Subscription
}

var _ Controller = (*playback.Session)(nil)

// Model is the terminal player view.
type Model struct {
	ctrl    Controller
	updates <-chan remote.NowPlaying
	sub     *playback.Subscription

	Now        remote.NowPlaying
	QueuePanel queuepanel.Model
	ErrorMsg   string
	Width      int
	Height     int
}

// New creates the view over ctrl. initial is shown until the first update
// arrives on updates.
func New(ctrl Controller, initial remote.NowPlaying, updates <-chan remote.NowPlaying) Model {
	m := Model{
		ctrl:       ctrl,
		updates:    updates,
		sub:        ctrl.Subscribe(),
		Now:        initial,
		QueuePanel: queuepanel.New(),
	}
	m.QueuePanel.SetFocused(true)
	m.refreshQueue()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.WatchNowPlaying(), m.WatchServiceEvents())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.QueuePanel.SetSize(msg.Width, m.queueHeight())
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case NowPlayingMsg:
		m.Now = msg.NowPlaying
		m.refreshQueue()
		return m, m.WatchNowPlaying()

	case ServiceTrackChangedMsg:
		m.ErrorMsg = ""
		return m, m.WatchServiceEvents()

	case ServiceErrorMsg:
		m.ErrorMsg = errmsg.FormatWith(errmsg.OpPlaybackStart, filepath.Base(msg.Path), msg.Err)
		return m, m.WatchServiceEvents()

	case ServiceClosedMsg:
		return m, tea.Quit

	case queuepanel.JumpToTrackMsg:
		m.report(errmsg.OpPlaybackStart, m.ctrl.Play(msg.Index, true))
		return m, nil

	case queuepanel.RemoveTrackMsg:
		_, err := m.ctrl.RemoveAt(msg.Index)
		m.report(errmsg.OpQueueRemove, err)
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if handled, cmd := handler.Chain(key, m.globalKeys(), m.transportKeys(), m.queueKeys()); handled {
		return *m, cmd
	}

	var cmd tea.Cmd
	m.QueuePanel, cmd = m.QueuePanel.Update(msg)
	return *m, cmd
}

// report shows err, or clears the previous message on success.
func (m *Model) report(op errmsg.Op, err error) {
	m.ErrorMsg = errmsg.Format(op, err)
}

// refreshQueue copies the session queue into the panel.
func (m *Model) refreshQueue() {
	m.QueuePanel.SetQueue(m.ctrl.Items(), m.ctrl.CurrentIndex())
	m.QueuePanel.SetModes(m.Now.Shuffle, m.Now.Loop == playback.LoopQueue.String())
}
