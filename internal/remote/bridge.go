package remote

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/llehouerou/reprise/internal/metrics"
	"github.com/llehouerou/reprise/internal/playback"
	"github.com/llehouerou/reprise/internal/playlist"
)

// Controller is the part of the playback session driven by remote
// commands.
type Controller interface {
	Resume() error
	Pause() error
	Toggle() error
	Stop() error
	PlayNext() error
	PlayPrevious() error
	Seek(pos time.Duration) error
	SeekBy(delta time.Duration) error
	SetShuffle(on bool) error
	SetLoop(m playback.LoopMode)

	State() playback.State
	Current() *playlist.Item
	CurrentIndex() int
	Items() []playlist.Item
	Elapsed() time.Duration
	Duration() time.Duration
	Shuffled() bool
	Loop() playback.LoopMode
	Controllable() bool
	Relays() *playback.Broadcaster
}

// NowPlaying is the metadata shown by remote surfaces.
type NowPlaying struct {
	TrackID     string        `json:"track_id,omitempty"`
	Title       string        `json:"title,omitempty"`
	Artist      string        `json:"artist,omitempty"`
	Artwork     string        `json:"artwork,omitempty"`
	Elapsed     time.Duration `json:"elapsed"`
	Total       time.Duration `json:"total"`
	Playing     bool          `json:"playing"`
	State       string        `json:"state"`
	Index       int           `json:"index"`
	QueueLength int           `json:"queue_length"`
	Shuffle     bool          `json:"shuffle"`
	Loop        string        `json:"loop"`

	// Controllable is false until the session has played something;
	// transport controls are offered only once it is set.
	Controllable bool `json:"controllable"`
}

// HasItem reports whether something is selected.
func (n NowPlaying) HasItem() bool {
	return n.TrackID != ""
}

// CanNext reports whether a next command would select another item.
func (n NowPlaying) CanNext() bool {
	return n.Controllable && n.QueueLength > 0
}

// CanPrevious reports whether a previous command has anything to act on.
func (n NowPlaying) CanPrevious() bool {
	return n.Controllable && n.HasItem()
}

// CanPause reports whether pause and seek apply.
func (n NowPlaying) CanPause() bool {
	return n.Controllable && n.HasItem()
}

// Publisher receives now-playing updates.
type Publisher interface {
	Publish(NowPlaying)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(NowPlaying)

func (f PublisherFunc) Publish(n NowPlaying) { f(n) }

// Bridge dispatches remote commands to a Controller.
type Bridge struct {
	ctrl   Controller
	logger *slog.Logger

	mu         sync.Mutex
	publishers []Publisher
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// New creates a bridge for ctrl.
func New(ctrl Controller, opts ...Option) *Bridge {
	b := &Bridge{ctrl: ctrl, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Register adds a publisher notified by Run.
func (b *Bridge) Register(p Publisher) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.publishers = append(b.publishers, p)
}

// Handle runs cmd against the controller. It returns nil on success, the
// controller's error when the command does not apply (pausing while
// paused, for example), or ErrUnknownCommand.
func (b *Bridge) Handle(cmd Command) error {
	err := b.dispatch(cmd)
	metrics.RemoteCommandsTotal.WithLabelValues(cmd.Source, cmd.Name, metrics.Status(err)).Inc()
	if err != nil {
		b.logger.Debug("remote command failed", "command", cmd.Name, "source", cmd.Source, "error", err)
	}
	return err
}

func (b *Bridge) dispatch(cmd Command) error {
	switch cmd.Name {
	case CmdPlay:
		return b.play()
	case CmdPause:
		return b.ctrl.Pause()
	case CmdToggle:
		if b.ctrl.Current() == nil {
			return b.play()
		}
		return b.ctrl.Toggle()
	case CmdStop:
		return b.ctrl.Stop()
	case CmdNext:
		return b.ctrl.PlayNext()
	case CmdPrevious:
		return b.ctrl.PlayPrevious()
	case CmdSeek:
		return b.ctrl.SeekBy(cmd.Offset)
	case CmdSetPosition:
		if cmd.TrackID != "" {
			cur := b.ctrl.Current()
			if cur == nil || cur.InstanceID != cmd.TrackID {
				return ErrTrackMismatch
			}
		}
		return b.ctrl.Seek(cmd.Position)
	case CmdSetShuffle:
		return b.ctrl.SetShuffle(cmd.Shuffle)
	case CmdSetLoop:
		b.ctrl.SetLoop(cmd.Loop)
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Name)
}

// play resumes the selection, or starts the queue from the top when
// nothing is selected.
func (b *Bridge) play() error {
	if b.ctrl.Current() == nil {
		return b.ctrl.PlayNext()
	}
	return b.ctrl.Resume()
}

// NowPlaying describes the current session state.
func (b *Bridge) NowPlaying() NowPlaying {
	n := NowPlaying{
		Elapsed:     b.ctrl.Elapsed(),
		Total:       b.ctrl.Duration(),
		State:       b.ctrl.State().String(),
		Playing:     b.ctrl.State() == playback.StatePlaying,
		Index:       b.ctrl.CurrentIndex(),
		QueueLength: len(b.ctrl.Items()),
		Shuffle:     b.ctrl.Shuffled(),
		Loop:        b.ctrl.Loop().String(),

		Controllable: b.ctrl.Controllable(),
	}
	if cur := b.ctrl.Current(); cur != nil {
		n.TrackID = cur.InstanceID
		n.Title = cur.Title
		n.Artist = cur.Author
		n.Artwork = cur.ArtworkLocator
	}
	return n
}

// Run pushes NowPlaying to every registered publisher whenever the
// selection, play state, elapsed time, queue or modes change. It returns
// when ctx is canceled or the session closes its relays.
func (b *Bridge) Run(ctx context.Context) error {
	relays := b.ctrl.Relays()
	current, stopCurrent := relays.CurrentItem.Subscribe()
	defer stopCurrent()
	playing, stopPlaying := relays.IsPlaying.Subscribe()
	defer stopPlaying()
	elapsed, stopElapsed := relays.Elapsed.Subscribe()
	defer stopElapsed()
	queue, stopQueue := relays.Queue.Subscribe()
	defer stopQueue()
	shuffle, stopShuffle := relays.Shuffle.Subscribe()
	defer stopShuffle()
	loop, stopLoop := relays.Loop.Subscribe()
	defer stopLoop()
	controllable, stopControllable := relays.Controllable.Subscribe()
	defer stopControllable()

	var lastInstance string
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, ok := <-current:
			if !ok {
				return nil
			}
			if c.Item != nil && c.Item.InstanceID != lastInstance {
				if lastInstance != "" {
					metrics.TrackChangesTotal.Inc()
				}
				lastInstance = c.Item.InstanceID
			}
		case p, ok := <-playing:
			if !ok {
				return nil
			}
			metrics.PlaybackPlaying.Set(boolGauge(p))
		case _, ok := <-elapsed:
			if !ok {
				return nil
			}
		case items, ok := <-queue:
			if !ok {
				return nil
			}
			metrics.QueueLength.Set(float64(len(items)))
		case _, ok := <-shuffle:
			if !ok {
				return nil
			}
		case _, ok := <-loop:
			if !ok {
				return nil
			}
		case _, ok := <-controllable:
			if !ok {
				return nil
			}
		}
		b.publish(b.NowPlaying())
	}
}

func (b *Bridge) publish(n NowPlaying) {
	b.mu.Lock()
	pubs := append([]Publisher(nil), b.publishers...)
	b.mu.Unlock()
	for _, p := range pubs {
		p.Publish(n)
	}
}

func boolGauge(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
