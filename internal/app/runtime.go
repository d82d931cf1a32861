// Package app wires the playback session to its services and hosts the
// terminal player view.
package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/llehouerou/reprise/internal/checkpoint"
	"github.com/llehouerou/reprise/internal/config"
	"github.com/llehouerou/reprise/internal/events"
	"github.com/llehouerou/reprise/internal/httpapi"
	"github.com/llehouerou/reprise/internal/library"
	"github.com/llehouerou/reprise/internal/metrics"
	"github.com/llehouerou/reprise/internal/mpris"
	"github.com/llehouerou/reprise/internal/notify"
	"github.com/llehouerou/reprise/internal/player"
	"github.com/llehouerou/reprise/internal/playback"
	"github.com/llehouerou/reprise/internal/remote"
	"github.com/llehouerou/reprise/internal/state"
)

// Runtime owns one playback session and the services observing or driving
// it: persistence, remote control, notifications, file watching and the
// HTTP surface.
type Runtime struct {
	cfg    *config.Config
	logger *slog.Logger
	store  state.Interface
	engine player.Interface

	Session *playback.Session
	Bus     *events.Bus
	Bridge  *remote.Bridge

	checkpointer *checkpoint.Checkpointer
	notifier     notify.Notifier // nil uses the desktop notifier

	closers []io.Closer
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithNotifier replaces the desktop notifier.
func WithNotifier(n notify.Notifier) RuntimeOption {
	return func(r *Runtime) {
		r.notifier = n
	}
}

// NewRuntime builds the session from cfg and connects it to store and the
// event bus. Nothing runs until Start.
func NewRuntime(cfg *config.Config, store state.Interface, engine player.Interface, logger *slog.Logger, opts ...RuntimeOption) *Runtime {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runtime{
		cfg:    cfg,
		logger: logger,
		store:  store,
		engine: engine,
		Bus:    events.NewBus(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.Session = playback.New(engine,
		playback.WithLogger(logger.With("component", "session")),
		playback.WithLoop(cfg.LoopMode()),
		playback.WithTickInterval(cfg.Playback.TickInterval),
		playback.WithRestartThreshold(cfg.Playback.RestartThreshold),
		playback.WithHistorySize(cfg.Playback.HistorySize),
	)
	r.Session.Attach(r.Bus)

	r.Bridge = remote.New(r.Session, remote.WithLogger(logger.With("component", "remote")))
	r.checkpointer = checkpoint.New(r.Session, store,
		checkpoint.WithInterval(cfg.Checkpoint.Interval),
		checkpoint.WithLogger(logger.With("component", "checkpoint")),
	)
	return r
}

// Restore seeds the session from the saved snapshot, if any.
func (r *Runtime) Restore(ctx context.Context) bool {
	return r.checkpointer.Restore(ctx)
}

// Load replaces the queue with items read from paths and starts playing the
// first one.
func (r *Runtime) Load(paths []string) error {
	items, err := library.Collect(paths)
	if len(items) == 0 {
		if err != nil {
			return err
		}
		return playback.ErrEmptyQueue
	}
	if err != nil {
		r.logger.Warn("some files were skipped", "error", err)
	}
	if err := r.Session.Load(items, 0); err != nil {
		return err
	}
	return r.Session.Play(0, true)
}

// Start launches the background services. They stop on Shutdown or when
// ctx is canceled.
func (r *Runtime) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	metrics.InitializeMetrics(remote.Commands)

	r.run(ctx, "session", r.Session.Run)
	r.run(ctx, "remote bridge", r.Bridge.Run)

	if r.cfg.Checkpoint.Enabled {
		r.run(ctx, "checkpoint", r.checkpointer.Run)
	}

	if r.cfg.MPRIS.Enabled {
		adapter, err := mpris.New(r.Bridge, r.logger.With("component", "mpris"))
		if err != nil {
			r.logger.Warn("media controls unavailable", "error", err)
		} else {
			r.closers = append(r.closers, adapter)
		}
	}

	if r.cfg.Notifications.Enabled {
		r.startAnnouncer(ctx)
	}

	if r.cfg.Library.Watch {
		r.startWatcher(ctx)
	}

	if r.cfg.HTTPEnabled() {
		srv := httpapi.New(r.Bridge, r.logger.With("component", "http"))
		addr := r.cfg.HTTP.Addr
		r.run(ctx, "http api", func(ctx context.Context) error {
			return srv.ListenAndServe(ctx, addr)
		})
	}
}

func (r *Runtime) startAnnouncer(ctx context.Context) {
	n := r.notifier
	if n == nil {
		var err error
		if n, err = notify.New(); err != nil {
			r.logger.Warn("desktop notifications unavailable", "error", err)
			return
		}
	}
	announcer := notify.NewAnnouncer(n, r.logger.With("component", "notify"))
	sub := r.Session.Subscribe()
	r.run(ctx, "notifications", func(ctx context.Context) error {
		return announcer.Run(ctx, sub)
	})
}

func (r *Runtime) startWatcher(ctx context.Context) {
	watcher, err := library.NewWatcher(r.Bus, r.Session.ID(),
		library.WithWatcherLogger(r.logger.With("component", "watcher")))
	if err != nil {
		r.logger.Warn("file watching unavailable", "error", err)
		return
	}
	r.closers = append(r.closers, watcher)

	queue, stop := r.Session.Relays().Queue.Subscribe()
	r.run(ctx, "file watcher", func(ctx context.Context) error {
		defer stop()
		return watcher.Run(ctx, queue)
	})
}

// run starts fn in the background and logs how it ended.
func (r *Runtime) run(ctx context.Context, name string, fn func(context.Context) error) {
	r.wg.Go(func() {
		if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
			r.logger.Error("service stopped", "service", name, "error", err)
			return
		}
		r.logger.Debug("service stopped", "service", name)
	})
}

// Shutdown stops the services, writes a final checkpoint and releases the
// session, the engine and the store.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()

	var errs []error
	if r.cfg.Checkpoint.Enabled {
		if err := r.checkpointer.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.Session.Close(); err != nil {
		errs = append(errs, err)
	}
	r.engine.Close()
	if err := r.store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
