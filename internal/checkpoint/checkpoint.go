// Package checkpoint periodically persists the playback session so it can
// be resumed after a restart.
package checkpoint

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/llehouerou/reprise/internal/metrics"
	"github.com/llehouerou/reprise/internal/playback"
)

// DefaultInterval is how often the session is sampled.
const DefaultInterval = 500 * time.Millisecond

// Source is the session being checkpointed.
type Source interface {
	Snapshot() (playback.Snapshot, bool)
	Restore(playback.Snapshot) bool
}

// Store persists snapshots.
type Store interface {
	LoadSnapshot(ctx context.Context) (*playback.Snapshot, error)
	SaveSnapshot(ctx context.Context, snap playback.Snapshot) error
}

// Checkpointer samples a Source on a ticker and hands each snapshot to a
// single background writer. Only the latest pending snapshot is kept, so a
// slow store never delays ticks or the session.
type Checkpointer struct {
	source   Source
	store    Store
	interval time.Duration
	logger   *slog.Logger

	pending chan playback.Snapshot
	writeMu sync.Mutex // serializes store writes

	mu      sync.Mutex
	last    playback.Snapshot // last snapshot queued and not known to have failed
	hasLast bool
}

// Option configures a Checkpointer.
type Option func(*Checkpointer)

// WithInterval sets the sampling interval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(c *Checkpointer) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checkpointer) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a checkpointer for source backed by store.
func New(source Source, store Store, opts ...Option) *Checkpointer {
	c := &Checkpointer{
		source:   source,
		store:    store,
		interval: DefaultInterval,
		logger:   slog.Default(),
		pending:  make(chan playback.Snapshot, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Restore makes the single startup attempt to seed the source from the
// store. A missing or unreadable snapshot leaves the source untouched; the
// failure is logged, never returned.
func (c *Checkpointer) Restore(ctx context.Context) bool {
	snap, err := c.store.LoadSnapshot(ctx)
	switch {
	case err != nil:
		c.logger.Warn("could not load saved session", "error", err)
		metrics.CheckpointRestores.WithLabelValues("failed").Inc()
		return false
	case snap == nil:
		c.logger.Debug("no saved session")
		metrics.CheckpointRestores.WithLabelValues("empty").Inc()
		return false
	}

	if !c.source.Restore(*snap) {
		c.logger.Warn("saved session rejected", "items", len(snap.Queue.Items))
		metrics.CheckpointRestores.WithLabelValues("failed").Inc()
		return false
	}
	metrics.CheckpointRestores.WithLabelValues("restored").Inc()
	return true
}

// Run samples the source every interval until ctx is canceled. It returns
// once the background writer has stopped.
func (c *Checkpointer) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.writeLoop(ctx)
	}()
	defer wg.Wait()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.sample()
		}
	}
}

func (c *Checkpointer) sample() {
	snap, ok := c.source.Snapshot()
	if !ok {
		return
	}
	c.mu.Lock()
	if c.hasLast && sameSession(c.last, snap) {
		c.mu.Unlock()
		return
	}
	c.last, c.hasLast = snap, true
	c.mu.Unlock()
	c.enqueue(snap)
}

// forget clears the last queued snapshot if it is snap, so the next sample
// queues the session again even when it has not changed.
func (c *Checkpointer) forget(snap playback.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hasLast && sameSession(c.last, snap) {
		c.hasLast = false
	}
}

// enqueue replaces any snapshot still waiting for the writer.
func (c *Checkpointer) enqueue(snap playback.Snapshot) {
	for {
		select {
		case c.pending <- snap:
			return
		default:
		}
		select {
		case <-c.pending:
			metrics.CheckpointSuperseded.Inc()
		default:
		}
	}
}

func (c *Checkpointer) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-c.pending:
			_ = c.write(ctx, snap)
		}
	}
}

func (c *Checkpointer) write(ctx context.Context, snap playback.Snapshot) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	start := time.Now()
	err := c.store.SaveSnapshot(ctx, snap)
	metrics.CheckpointWriteDuration.Observe(time.Since(start).Seconds())
	metrics.CheckpointWritesTotal.WithLabelValues(metrics.Status(err)).Inc()
	if err != nil {
		c.logger.Warn("could not save session", "error", err)
		c.forget(snap)
		return err
	}
	c.logger.Debug("session saved",
		"items", len(snap.Queue.Items),
		"index", snap.Queue.CurrentIndex,
		"position", snap.Position)
	return nil
}

// Flush writes the current session synchronously, dropping any snapshot
// still pending. It is meant for shutdown, after Run has returned.
func (c *Checkpointer) Flush(ctx context.Context) error {
	select {
	case <-c.pending:
	default:
	}
	snap, ok := c.source.Snapshot()
	if !ok {
		return nil
	}
	return c.write(ctx, snap)
}

// sameSession reports whether two snapshots describe the same session,
// ignoring when they were taken.
func sameSession(a, b playback.Snapshot) bool {
	return a.Loop == b.Loop &&
		a.Position == b.Position &&
		a.Duration == b.Duration &&
		a.Queue.CurrentIndex == b.Queue.CurrentIndex &&
		a.Queue.ShuffleActive == b.Queue.ShuffleActive &&
		slices.Equal(a.Queue.Items, b.Queue.Items) &&
		slices.Equal(a.Queue.OriginalOrder, b.Queue.OriginalOrder)
}
