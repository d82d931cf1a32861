package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/reprise/internal/events"
	"github.com/llehouerou/reprise/internal/playback"
	"github.com/llehouerou/reprise/internal/player"
	"github.com/llehouerou/reprise/internal/playlist"
)

const (
	testSession = "session-1"
	waitFor     = 2 * time.Second
)

func queuedItem(t *testing.T, path string) playlist.Item {
	t.Helper()
	writeSilence(t, path, 1)
	return playlist.Item{
		ContentID:     "content-" + filepath.Base(path),
		InstanceID:    playlist.NewInstanceID(),
		Title:         filepath.Base(path),
		SourceLocator: path,
	}
}

func startWatcher(t *testing.T, bus *events.Bus, items []playlist.Item) *Watcher {
	t.Helper()
	w, err := NewWatcher(bus, testSession)
	require.NoError(t, err)

	queue := make(chan []playlist.Item, 1)
	queue <- items
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx, queue)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Close()
	})

	require.Eventually(t, func() bool { return len(w.Watched()) > 0 }, waitFor, 10*time.Millisecond)
	return w
}

func TestWatcher_Track(t *testing.T) {
	dir := t.TempDir()
	a := queuedItem(t, filepath.Join(dir, "one", "a.wav"))
	b := queuedItem(t, filepath.Join(dir, "two", "b.wav"))
	c := queuedItem(t, filepath.Join(dir, "two", "c.wav"))

	w, err := NewWatcher(events.NewBus(), testSession)
	require.NoError(t, err)
	defer w.Close()

	w.Track([]playlist.Item{a, b, c})
	assert.ElementsMatch(t, []string{filepath.Join(dir, "one"), filepath.Join(dir, "two")}, w.Watched())

	w.Track([]playlist.Item{c})
	assert.Equal(t, []string{filepath.Join(dir, "two")}, w.Watched())

	w.Track(nil)
	assert.Empty(t, w.Watched())
}

func TestWatcher_RemovalPublished(t *testing.T) {
	dir := t.TempDir()
	a := queuedItem(t, filepath.Join(dir, "a.wav"))
	other := filepath.Join(dir, "other.wav")
	writeSilence(t, other, 1)

	bus := events.NewBus()
	got := make(chan events.ContentRemoved, 4)
	bus.Removed.Subscribe(testSession, func(e events.ContentRemoved) { got <- e })
	startWatcher(t, bus, []playlist.Item{a})

	require.NoError(t, os.Remove(other))
	require.NoError(t, os.Remove(a.SourceLocator))

	select {
	case e := <-got:
		assert.Equal(t, []string{a.ContentID}, e.ContentIDs)
		assert.Equal(t, ReasonDeleted, e.Reason)
	case <-time.After(waitFor):
		t.Fatal("no ContentRemoved event")
	}
}

func TestWatcher_RenamePublished(t *testing.T) {
	dir := t.TempDir()
	a := queuedItem(t, filepath.Join(dir, "a.wav"))

	bus := events.NewBus()
	got := make(chan events.ContentRemoved, 4)
	bus.Removed.Subscribe(testSession, func(e events.ContentRemoved) { got <- e })
	startWatcher(t, bus, []playlist.Item{a})

	require.NoError(t, os.Rename(a.SourceLocator, filepath.Join(dir, "b.wav")))

	select {
	case e := <-got:
		assert.Equal(t, []string{a.ContentID}, e.ContentIDs)
		assert.Equal(t, ReasonRenamed, e.Reason)
	case <-time.After(waitFor):
		t.Fatal("no ContentRemoved event")
	}
}

func TestWatcher_WritePublishesUpdate(t *testing.T) {
	dir := t.TempDir()
	a := queuedItem(t, filepath.Join(dir, "a.wav"))

	bus := events.NewBus()
	got := make(chan events.ContentUpdated, 16)
	bus.Updated.Subscribe(testSession, func(e events.ContentUpdated) { got <- e })
	startWatcher(t, bus, []playlist.Item{a})

	writeSilence(t, a.SourceLocator, 3)

	select {
	case e := <-got:
		require.Len(t, e.Items, 1)
		assert.Equal(t, a.ContentID, e.Items[0].ContentID, "updates keep the queued identity")
		assert.Equal(t, "a", e.Items[0].Title)
	case <-time.After(waitFor):
		t.Fatal("no ContentUpdated event")
	}
}

func TestWatcher_ReconcilesSession(t *testing.T) {
	dir := t.TempDir()
	a := queuedItem(t, filepath.Join(dir, "a.wav"))
	b := queuedItem(t, filepath.Join(dir, "b.wav"))

	bus := events.NewBus()
	s := playback.New(player.NewMock(), playback.WithID(testSession))
	defer s.Close()
	s.Attach(bus)
	require.NoError(t, s.Load([]playlist.Item{a, b}, 0))

	w, err := NewWatcher(bus, testSession)
	require.NoError(t, err)
	defer w.Close()
	queue, unsubscribe := s.Relays().Queue.Subscribe()
	defer unsubscribe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx, queue) }()
	require.Eventually(t, func() bool { return len(w.Watched()) == 1 }, waitFor, 10*time.Millisecond)

	require.NoError(t, os.Remove(b.SourceLocator))

	assert.Eventually(t, func() bool { return len(s.Items()) == 1 }, waitFor, 10*time.Millisecond)
	assert.Equal(t, "content-a.wav", s.Items()[0].ContentID)
}
