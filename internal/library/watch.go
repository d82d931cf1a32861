package library

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"

	"github.com/llehouerou/reprise/internal/events"
	"github.com/llehouerou/reprise/internal/metrics"
	"github.com/llehouerou/reprise/internal/playlist"
)

// Reasons attached to ContentRemoved events.
const (
	ReasonDeleted = "deleted"
	ReasonRenamed = "renamed"
)

// Watcher follows the directories holding queued items and tells the
// session, through the event bus, when a queued file disappears or its
// tags change.
type Watcher struct {
	fs        *fsnotify.Watcher
	bus       *events.Bus
	sessionID string
	logger    *slog.Logger

	mu    sync.Mutex
	dirs  map[string]struct{}
	files map[string][]string // source locator -> content IDs queued from it
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger.
func WithWatcherLogger(l *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWatcher creates a watcher publishing to sessionID on bus.
func NewWatcher(bus *events.Bus, sessionID string, opts ...WatcherOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fs:        fw,
		bus:       bus,
		sessionID: sessionID,
		logger:    slog.Default(),
		dirs:      make(map[string]struct{}),
		files:     make(map[string][]string),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Track replaces the watched set with the files of items.
func (w *Watcher) Track(items []playlist.Item) {
	files := make(map[string][]string, len(items))
	for _, it := range items {
		if it.SourceLocator == "" {
			continue
		}
		path := filepath.Clean(it.SourceLocator)
		files[path] = lo.Uniq(append(files[path], it.ContentID))
	}
	dirs := lo.SliceToMap(lo.Keys(files), func(p string) (string, struct{}) {
		return filepath.Dir(p), struct{}{}
	})

	w.mu.Lock()
	defer w.mu.Unlock()

	for dir := range w.dirs {
		if _, keep := dirs[dir]; keep {
			continue
		}
		if err := w.fs.Remove(dir); err != nil {
			w.logger.Debug("unwatch failed", "dir", dir, "error", err)
		}
		delete(w.dirs, dir)
	}
	for dir := range dirs {
		if _, ok := w.dirs[dir]; ok {
			continue
		}
		if err := w.fs.Add(dir); err != nil {
			w.logger.Debug("watch failed", "dir", dir, "error", err)
			continue
		}
		w.dirs[dir] = struct{}{}
	}
	w.files = files
}

// Watched returns the directories currently watched.
func (w *Watcher) Watched() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return lo.Keys(w.dirs)
}

// Run follows queue updates and file system events until ctx is canceled
// or the queue channel is closed.
func (w *Watcher) Run(ctx context.Context, queue <-chan []playlist.Item) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case items, ok := <-queue:
			if !ok {
				return nil
			}
			w.Track(items)
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	path := filepath.Clean(event.Name)

	switch {
	case event.Has(fsnotify.Remove):
		w.removed(path, ReasonDeleted)
	case event.Has(fsnotify.Rename):
		w.removed(path, ReasonRenamed)
	case event.Has(fsnotify.Write):
		w.changed(path)
	}
}

func (w *Watcher) removed(path, reason string) {
	w.mu.Lock()
	var ids []string
	if _, isDir := w.dirs[path]; isDir {
		for file, fileIDs := range w.files {
			if filepath.Dir(file) == path {
				ids = append(ids, fileIDs...)
			}
		}
	} else {
		ids = w.files[path]
	}
	w.mu.Unlock()

	if len(ids) == 0 {
		return
	}
	w.logger.Info("queued content removed", "path", path, "reason", reason)
	metrics.ContentRemovedTotal.Add(float64(len(ids)))
	w.bus.Removed.Publish(w.sessionID, events.ContentRemoved{ContentIDs: ids, Reason: reason})
}

func (w *Watcher) changed(path string) {
	w.mu.Lock()
	ids := w.files[path]
	w.mu.Unlock()
	if len(ids) == 0 {
		return
	}

	item, err := ItemFromFile(path)
	if err != nil {
		// Usually a write still in progress; a later event will retry.
		w.logger.Debug("re-read failed", "path", path, "error", err)
		return
	}
	updated := lo.Map(ids, func(id string, _ int) playlist.Item {
		it := item
		it.ContentID = id
		return it
	})
	w.bus.Updated.Publish(w.sessionID, events.ContentUpdated{Items: updated})
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
