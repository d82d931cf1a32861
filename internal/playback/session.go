// internal/playback/session.go
package playback

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/llehouerou/reprise/internal/player"
	"github.com/llehouerou/reprise/internal/playlist"
)

const (
	DefaultTickInterval     = 500 * time.Millisecond
	DefaultRestartThreshold = 3 * time.Second
	DefaultHistorySize      = 50
)

// Session owns the play queue and drives the render engine. It is the only
// mutator of the queue. Every method is safe for concurrent use; mutations
// are serialized on one mutex, which asynchronous inputs (ticks, engine
// completions, bus events) also take.
type Session struct {
	mu sync.Mutex

	id      string
	engine  player.Interface
	queue   *playlist.PlayingQueue
	history *playlist.QueueHistory
	relays  *Broadcaster
	logger  *slog.Logger

	loop             LoopMode
	playing          bool
	controllable     bool
	loaded           string // InstanceID of the item held by the engine
	lastStarted      *playlist.Item
	lastStartedIndex int
	elapsed          time.Duration
	duration         time.Duration
	seeking          bool
	seekGen          uint64

	tickInterval     time.Duration
	restartThreshold time.Duration

	subs       []*Subscription
	subsMu     sync.RWMutex
	subsClosed bool

	detach []func()
	done   chan struct{}
	closed bool
}

// Option configures a Session.
type Option func(*sessionConfig)

type sessionConfig struct {
	id               string
	logger           *slog.Logger
	loop             LoopMode
	tickInterval     time.Duration
	restartThreshold time.Duration
	historySize      int
	rng              *rand.Rand
}

// WithID sets the session ID used to scope bus subscriptions.
func WithID(id string) Option {
	return func(c *sessionConfig) { c.id = id }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *sessionConfig) { c.logger = l }
}

// WithLoop sets the initial loop mode.
func WithLoop(m LoopMode) Option {
	return func(c *sessionConfig) { c.loop = m }
}

// WithTickInterval sets how often Run polls the engine position.
func WithTickInterval(d time.Duration) Option {
	return func(c *sessionConfig) {
		if d > 0 {
			c.tickInterval = d
		}
	}
}

// WithRestartThreshold sets the elapsed time from which PlayPrevious
// restarts the current item instead of moving back.
func WithRestartThreshold(d time.Duration) Option {
	return func(c *sessionConfig) {
		if d >= 0 {
			c.restartThreshold = d
		}
	}
}

// WithHistorySize bounds the undo history.
func WithHistorySize(n int) Option {
	return func(c *sessionConfig) {
		if n > 0 {
			c.historySize = n
		}
	}
}

// WithRand sets the random source used for shuffling.
func WithRand(r *rand.Rand) Option {
	return func(c *sessionConfig) { c.rng = r }
}

// New creates a session driving engine. The queue starts empty.
func New(engine player.Interface, opts ...Option) *Session {
	cfg := sessionConfig{
		id:               uuid.NewString(),
		logger:           slog.Default(),
		tickInterval:     DefaultTickInterval,
		restartThreshold: DefaultRestartThreshold,
		historySize:      DefaultHistorySize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var qopts []playlist.QueueOption
	if cfg.rng != nil {
		qopts = append(qopts, playlist.WithRand(cfg.rng))
	}

	s := &Session{
		id:               cfg.id,
		engine:           engine,
		queue:            playlist.NewQueue(qopts...),
		history:          playlist.NewQueueHistory(cfg.historySize),
		relays:           newBroadcaster(cfg.loop),
		logger:           cfg.logger.With("session", cfg.id),
		loop:             cfg.loop,
		lastStartedIndex: -1,
		tickInterval:     cfg.tickInterval,
		restartThreshold: cfg.restartThreshold,
		done:             make(chan struct{}),
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Relays returns the state broadcaster.
func (s *Session) Relays() *Broadcaster { return s.relays }

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	switch {
	case s.queue.Current() == nil:
		return StateIdle
	case s.playing:
		return StatePlaying
	default:
		return StatePaused
	}
}

// IsPlaying reports whether the engine is running at a non-zero rate.
func (s *Session) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Current returns a copy of the selected item, or nil.
func (s *Session) Current() *playlist.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur := s.queue.Current(); cur != nil {
		c := *cur
		return &c
	}
	return nil
}

// CurrentIndex returns the selected index, or -1.
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.CurrentIndex()
}

// Items returns a copy of the queue.
func (s *Session) Items() []playlist.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Items()
}

// Shuffled reports whether the queue is in shuffled order.
func (s *Session) Shuffled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Shuffled()
}

// Controllable reports whether transport commands are available. It turns
// on the first time an item is played.
func (s *Session) Controllable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controllable
}

// Elapsed returns the playback position of the current item.
// While a seek is in flight this is the seek target.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsedLocked()
}

func (s *Session) elapsedLocked() time.Duration {
	if s.seeking || s.loaded == "" {
		return s.elapsed
	}
	return s.engine.Position()
}

// Duration returns the length of the current item.
func (s *Session) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// Loop returns the loop mode.
func (s *Session) Loop() LoopMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loop
}

// Snapshot captures the session for persistence. It returns false when
// nothing is selected.
func (s *Session) Snapshot() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue.Current() == nil {
		return Snapshot{}, false
	}
	return Snapshot{
		Queue:    s.queue.State(),
		Loop:     s.loop,
		Position: s.elapsedLocked(),
		Duration: s.duration,
		SavedAt:  time.Now(),
	}, true
}

// Subscribe creates a new event subscription.
func (s *Session) Subscribe() *Subscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	sub := newSubscription()
	if s.subsClosed {
		sub.close()
		return sub
	}
	s.subs = append(s.subs, sub)
	return sub
}

func (s *Session) emitTrack(e TrackChange) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendTrack(e)
	}
}

func (s *Session) emitError(e ErrorEvent) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendError(e)
	}
}

// Run polls the engine position every tick interval and advances the queue
// when the engine reports the end of an item. It returns when ctx is
// canceled or the session is closed.
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()
	finished := s.engine.FinishedChan()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case <-ticker.C:
			s.tick()
		case <-finished:
			s.handleFinished()
		}
	}
}

func (s *Session) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.seeking || s.loaded == "" || s.queue.Current() == nil {
		return
	}
	s.elapsed = s.engine.Position()
	s.relays.Elapsed.Publish(s.elapsed)
	if d := s.engine.Duration(); d > 0 && d != s.duration {
		s.duration = d
		s.relays.Duration.Publish(d)
	}
}

func (s *Session) handleFinished() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.logger.Debug("item finished", "index", s.queue.CurrentIndex())
	if err := s.playNextLocked(); err != nil {
		s.logger.Warn("advance after finish failed", "error", err)
	}
}

// Close stops the engine, ends Run, and closes all subscriptions and relays.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	detach := s.detach
	s.detach = nil
	s.engine.Stop()
	s.mu.Unlock()

	for _, fn := range detach {
		fn()
	}

	s.subsMu.Lock()
	for _, sub := range s.subs {
		sub.close()
	}
	s.subs = nil
	s.subsClosed = true
	s.subsMu.Unlock()

	s.relays.close()
	return nil
}
