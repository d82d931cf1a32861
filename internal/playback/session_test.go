// internal/playback/session_test.go
package playback

import (
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/reprise/internal/player"
	"github.com/llehouerou/reprise/internal/playlist"
)

const (
	testPathA = "/music/a.mp3"
	testPathB = "/music/b.mp3"
)

func mediaItem(id string) playlist.Item {
	return playlist.Item{
		ContentID:     id,
		Title:         "Title " + id,
		Author:        "Artist",
		Duration:      3 * time.Minute,
		SourceLocator: "/music/" + id + ".mp3",
	}
}

func mediaItems(ids ...string) []playlist.Item {
	items := make([]playlist.Item, len(ids))
	for i, id := range ids {
		items[i] = mediaItem(id)
	}
	return items
}

func contentIDs(items []playlist.Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ContentID
	}
	return ids
}

func instanceIDs(items []playlist.Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.InstanceID
	}
	return ids
}

func newTestSession(t *testing.T, opts ...Option) (*Session, *player.Mock) {
	t.Helper()
	m := player.NewMock()
	opts = append([]Option{WithRand(rand.New(rand.NewPCG(1, 2)))}, opts...)
	s := New(m, opts...)
	t.Cleanup(func() { _ = s.Close() })
	return s, m
}

func TestNew_StartsIdle(t *testing.T) {
	s, _ := newTestSession(t)

	assert.NotEmpty(t, s.ID())
	assert.Equal(t, StateIdle, s.State())
	assert.Nil(t, s.Current())
	assert.Equal(t, -1, s.CurrentIndex())
	assert.Equal(t, LoopOff, s.Loop())
}

func TestLoad_PreparesPausedWithoutRateChange(t *testing.T) {
	s, m := newTestSession(t)

	require.NoError(t, s.Load(mediaItems("a", "b", "c"), 1))

	assert.Equal(t, 1, s.CurrentIndex())
	assert.Equal(t, StatePaused, s.State())
	assert.Equal(t, []string{"/music/b.mp3"}, m.LoadCalls())
	assert.Empty(t, m.RateCalls())
	assert.Equal(t, 3*time.Minute, s.Duration())
}

func TestLoad_AssignsFreshInstanceIDs(t *testing.T) {
	s, _ := newTestSession(t)
	items := mediaItems("a", "a", "b")

	require.NoError(t, s.Load(items, 0))

	ids := instanceIDs(s.Items())
	assert.Len(t, distinct(ids), 3)
	for _, id := range ids {
		assert.NotEmpty(t, id)
	}
}

// distinct returns the set of distinct strings.
func distinct(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func TestLoad_ClampsStartIndex(t *testing.T) {
	s, _ := newTestSession(t)

	require.NoError(t, s.Load(mediaItems("a", "b"), 9))
	assert.Equal(t, 1, s.CurrentIndex())

	require.NoError(t, s.Load(mediaItems("a", "b"), -4))
	assert.Equal(t, 0, s.CurrentIndex())
}

func TestLoad_EmptyClearsSession(t *testing.T) {
	s, m := newTestSession(t)
	require.NoError(t, s.Load(mediaItems("a"), 0))
	require.NoError(t, s.Play(0, false))

	require.NoError(t, s.Load(nil, 0))

	assert.Equal(t, StateIdle, s.State())
	assert.Equal(t, 1, m.StopCalls())
	assert.False(t, s.IsPlaying())
}

func TestPlay_StartsAtRateOne(t *testing.T) {
	s, m := newTestSession(t)
	require.NoError(t, s.Load(mediaItems("a", "b", "c"), 0))

	require.NoError(t, s.Play(2, false))

	assert.Equal(t, 2, s.CurrentIndex())
	assert.Equal(t, StatePlaying, s.State())
	assert.Equal(t, []float64{1}, m.RateCalls())
	assert.Equal(t, "/music/c.mp3", m.Locator())
	assert.True(t, s.Relays().Controllable.Value())
}

func TestPlay_InvalidIndex(t *testing.T) {
	s, m := newTestSession(t)

	assert.ErrorIs(t, s.Play(0, false), ErrEmptyQueue)

	require.NoError(t, s.Load(mediaItems("a", "b"), 0))
	err := s.Play(5, false)

	require.ErrorIs(t, err, ErrInvalidIndex)
	assert.Equal(t, 0, s.CurrentIndex())
	assert.Empty(t, m.RateCalls())
	assert.False(t, s.Relays().Controllable.Value())
}

func TestPlay_UpdateOrderingReshufflesFromIndex(t *testing.T) {
	s, _ := newTestSession(t)
	require.NoError(t, s.Load(mediaItems("a", "b", "c", "d", "e"), 0))
	_, err := s.ToggleShuffle()
	require.NoError(t, err)
	target := s.Items()[3]

	require.NoError(t, s.Play(3, true))

	assert.Equal(t, 0, s.CurrentIndex())
	assert.Equal(t, target.InstanceID, s.Current().InstanceID)
	assert.True(t, s.Shuffled())
}

func TestPlay_WithoutUpdateOrderingKeepsOrder(t *testing.T) {
	s, _ := newTestSession(t)
	require.NoError(t, s.Load(mediaItems("a", "b", "c", "d"), 0))
	_, err := s.ToggleShuffle()
	require.NoError(t, err)
	before := instanceIDs(s.Items())

	require.NoError(t, s.Play(2, false))

	assert.Equal(t, before, instanceIDs(s.Items()))
	assert.Equal(t, 2, s.CurrentIndex())
}

func TestPlay_EmitsTrackChange(t *testing.T) {
	s, _ := newTestSession(t)
	sub := s.Subscribe()
	require.NoError(t, s.Load(mediaItems("a", "b"), 0))

	require.NoError(t, s.Play(0, false))
	require.NoError(t, s.Play(1, false))

	first := <-sub.TrackChanged
	assert.Nil(t, first.Previous)
	assert.Equal(t, "a", first.Current.ContentID)
	assert.Equal(t, 0, first.Index)

	second := <-sub.TrackChanged
	assert.Equal(t, "a", second.Previous.ContentID)
	assert.Equal(t, "b", second.Current.ContentID)
	assert.Equal(t, 0, second.PreviousIndex)
	assert.Equal(t, 1, second.Index)
}

func TestPlayNext_Advances(t *testing.T) {
	s, m := newTestSession(t)
	require.NoError(t, s.Load(mediaItems("a", "b", "c"), 0))
	require.NoError(t, s.Play(0, false))

	require.NoError(t, s.PlayNext())

	assert.Equal(t, 1, s.CurrentIndex())
	assert.Equal(t, []float64{1, 1}, m.RateCalls())
	assert.True(t, s.IsPlaying())
}

func TestPlayNext_WrapsPausedWithoutLoop(t *testing.T) {
	s, m := newTestSession(t)
	require.NoError(t, s.Load(mediaItems("a", "b", "c"), 0))
	require.NoError(t, s.Play(2, false))

	require.NoError(t, s.PlayNext())

	assert.Equal(t, 0, s.CurrentIndex())
	assert.Equal(t, []float64{1, 0}, m.RateCalls())
	assert.Equal(t, 0.0, m.Rate())
	assert.False(t, s.IsPlaying())
	assert.Equal(t, StatePaused, s.State())
	assert.Equal(t, "/music/a.mp3", m.Locator())
}

func TestPlayNext_WrapsPlayingWithLoop(t *testing.T) {
	s, m := newTestSession(t, WithLoop(LoopQueue))
	require.NoError(t, s.Load(mediaItems("a", "b", "c"), 0))
	require.NoError(t, s.Play(2, false))

	require.NoError(t, s.PlayNext())

	assert.Equal(t, 0, s.CurrentIndex())
	assert.Equal(t, []float64{1, 1}, m.RateCalls())
	assert.Equal(t, 1.0, m.Rate())
	assert.True(t, s.IsPlaying())
}

func TestPlayNext_SetLoopSwitchesBranch(t *testing.T) {
	s, m := newTestSession(t)
	require.NoError(t, s.Load(mediaItems("a", "b"), 1))
	require.NoError(t, s.Play(1, false))

	s.SetLoop(LoopQueue)
	require.NoError(t, s.PlayNext())

	assert.Equal(t, LoopQueue, s.Relays().Loop.Value())
	assert.Equal(t, 1.0, m.Rate())
}

func TestPlayNext_EmptyQueue(t *testing.T) {
	s, _ := newTestSession(t)

	assert.ErrorIs(t, s.PlayNext(), ErrEmptyQueue)
}

func TestPlayPrevious_RestartsAfterThreshold(t *testing.T) {
	s, m := newTestSession(t)
	require.NoError(t, s.Load(mediaItems("a", "b", "c"), 0))
	require.NoError(t, s.Play(1, false))
	m.SetPosition(5 * time.Second)

	require.NoError(t, s.PlayPrevious())

	assert.Equal(t, 1, s.CurrentIndex())
	assert.Equal(t, time.Duration(0), s.Elapsed())
	assert.Equal(t, []time.Duration{0}, m.SeekCalls())
	assert.Equal(t, time.Duration(0), s.Relays().Elapsed.Value())
	assert.Len(t, m.LoadCalls(), 2, "restart must not reload the source")
}

func TestPlayPrevious_MovesBackBeforeThreshold(t *testing.T) {
	s, m := newTestSession(t)
	require.NoError(t, s.Load(mediaItems("a", "b", "c"), 0))
	require.NoError(t, s.Play(1, false))
	m.SetPosition(2 * time.Second)

	require.NoError(t, s.PlayPrevious())

	assert.Equal(t, 0, s.CurrentIndex())
	assert.True(t, s.IsPlaying())
}

func TestPlayPrevious_WrapsToLast(t *testing.T) {
	s, _ := newTestSession(t)
	require.NoError(t, s.Load(mediaItems("a", "b", "c"), 0))
	require.NoError(t, s.Play(0, false))

	require.NoError(t, s.PlayPrevious())

	assert.Equal(t, 2, s.CurrentIndex())
}

func TestPlayPrevious_CustomThreshold(t *testing.T) {
	s, m := newTestSession(t, WithRestartThreshold(10*time.Second))
	require.NoError(t, s.Load(mediaItems("a", "b"), 0))
	require.NoError(t, s.Play(1, false))
	m.SetPosition(5 * time.Second)

	require.NoError(t, s.PlayPrevious())

	assert.Equal(t, 0, s.CurrentIndex())
}

func TestSeek_SupersededCompletionIgnored(t *testing.T) {
	s, m := newTestSession(t)
	require.NoError(t, s.Load(mediaItems("a"), 0))
	require.NoError(t, s.Play(0, false))

	require.NoError(t, s.Seek(10*time.Second))
	require.NoError(t, s.Seek(20*time.Second))
	assert.Equal(t, 20*time.Second, s.Relays().Elapsed.Value())

	m.SetPosition(21 * time.Second)
	assert.Equal(t, 20*time.Second, s.Elapsed(), "in-flight seek reports its target")

	assert.Equal(t, 2, m.CompleteSeeks(true))
	assert.Equal(t, 21*time.Second, s.Elapsed())
	assert.Equal(t, 21*time.Second, s.Relays().Elapsed.Value())
}

func TestSeek_ClampsToDuration(t *testing.T) {
	s, m := newTestSession(t)
	require.NoError(t, s.Load(mediaItems("a"), 0))

	require.NoError(t, s.Seek(time.Hour))
	require.NoError(t, s.Seek(-time.Second))

	assert.Equal(t, []time.Duration{3 * time.Minute, 0}, m.SeekCalls())
}

func TestSeek_NoCurrentItem(t *testing.T) {
	s, _ := newTestSession(t)

	assert.ErrorIs(t, s.Seek(time.Second), ErrNoCurrentItem)
}

func TestSeekBy_IsRelative(t *testing.T) {
	s, m := newTestSession(t)
	require.NoError(t, s.Load(mediaItems("a"), 0))
	m.SetPosition(30 * time.Second)

	require.NoError(t, s.SeekBy(-10*time.Second))

	assert.Equal(t, []time.Duration{20 * time.Second}, m.SeekCalls())
}

func TestSeekBy_ConcurrentCallsAccumulate(t *testing.T) {
	s, m := newTestSession(t)
	require.NoError(t, s.Load(mediaItems("a"), 0))
	m.SetPosition(30 * time.Second)

	const n = 50
	var wg sync.WaitGroup
	for range n {
		wg.Go(func() { _ = s.SeekBy(time.Second) })
	}
	wg.Wait()

	calls := m.SeekCalls()
	require.Len(t, calls, n)
	assert.Equal(t, 30*time.Second+n*time.Second, calls[n-1])
	assert.Equal(t, 30*time.Second+n*time.Second, s.Elapsed())
}

func TestPauseResume(t *testing.T) {
	s, m := newTestSession(t)

	assert.ErrorIs(t, s.Pause(), ErrNoCurrentItem)
	assert.ErrorIs(t, s.Resume(), ErrNoCurrentItem)

	require.NoError(t, s.Load(mediaItems("a"), 0))
	assert.ErrorIs(t, s.Pause(), ErrNotPlaying)

	require.NoError(t, s.Resume())
	assert.ErrorIs(t, s.Resume(), ErrAlreadyPlaying)
	assert.True(t, s.Relays().IsPlaying.Value())

	require.NoError(t, s.Pause())
	assert.False(t, s.Relays().IsPlaying.Value())
	assert.Equal(t, []float64{1, 0}, m.RateCalls())
}

func TestToggle(t *testing.T) {
	s, m := newTestSession(t)
	require.NoError(t, s.Load(mediaItems("a"), 0))

	require.NoError(t, s.Toggle())
	assert.Equal(t, StatePlaying, s.State())

	require.NoError(t, s.Toggle())
	assert.Equal(t, StatePaused, s.State())
	assert.Equal(t, []float64{1, 0}, m.RateCalls())
}

func TestStop_ResumeReloads(t *testing.T) {
	s, m := newTestSession(t)
	require.NoError(t, s.Load(mediaItems("a"), 0))
	require.NoError(t, s.Play(0, false))

	require.NoError(t, s.Stop())
	assert.Equal(t, StatePaused, s.State())
	assert.Equal(t, 1, m.StopCalls())

	require.NoError(t, s.Resume())
	assert.Len(t, m.LoadCalls(), 3)
	assert.True(t, s.IsPlaying())
}

func TestRenderFailure_ReportedOnce(t *testing.T) {
	s, m := newTestSession(t)
	sub := s.Subscribe()
	require.NoError(t, s.Load(mediaItems("a", "b"), 0))
	m.SetLoadError(errors.New("corrupt file"))

	err := s.Play(1, false)

	require.ErrorIs(t, err, ErrRenderFailed)
	assert.Equal(t, 1, s.CurrentIndex())
	assert.Equal(t, StatePaused, s.State())

	e := <-sub.Error
	assert.Equal(t, "play", e.Operation)
	assert.Equal(t, testPathB, e.Locator)
	select {
	case extra := <-sub.Error:
		t.Fatalf("unexpected second error event %+v", extra)
	default:
	}
	select {
	case tc := <-sub.TrackChanged:
		t.Fatalf("unexpected track change %+v", tc)
	default:
	}
}

func TestRestore_IsIdempotentAndPaused(t *testing.T) {
	a, b := mediaItem("a"), mediaItem("b")
	a.InstanceID, b.InstanceID = "inst-a", "inst-b"
	snap := Snapshot{
		Queue:    playlist.QueueState{Items: []playlist.Item{a, b}, CurrentIndex: 1},
		Position: 42 * time.Second,
		Duration: 3 * time.Minute,
	}
	s, m := newTestSession(t)

	require.True(t, s.Restore(snap))

	cur := s.Current()
	require.NotNil(t, cur)
	assert.Equal(t, "b", cur.ContentID)
	assert.Equal(t, "inst-b", cur.InstanceID)
	assert.Equal(t, StatePaused, s.State())
	assert.Equal(t, 42*time.Second, s.Elapsed())
	assert.Equal(t, 42*time.Second, s.Relays().Elapsed.Value())
	assert.Equal(t, 3*time.Minute, s.Relays().Duration.Value())
	assert.Empty(t, m.RateCalls())
	assert.Equal(t, []string{testPathB}, m.LoadCalls())

	m.CompleteSeeks(true)
	assert.Equal(t, 42*time.Second, s.Elapsed())

	require.True(t, s.Restore(snap))
	m.CompleteSeeks(true)
	assert.Equal(t, "inst-b", s.Current().InstanceID)
	assert.Equal(t, 42*time.Second, s.Elapsed())
	assert.Empty(t, m.RateCalls())
}

func TestRestore_KeepsShuffleBookkeeping(t *testing.T) {
	src, _ := newTestSession(t)
	require.NoError(t, src.Load(mediaItems("a", "b", "c", "d"), 2))
	_, err := src.ToggleShuffle()
	require.NoError(t, err)
	snap, ok := src.Snapshot()
	require.True(t, ok)

	s, _ := newTestSession(t)
	require.True(t, s.Restore(snap))
	assert.True(t, s.Shuffled())

	shuffled, err := s.ToggleShuffle()
	require.NoError(t, err)
	assert.False(t, shuffled)
	assert.Equal(t, []string{"a", "b", "c", "d"}, contentIDs(s.Items()))
	assert.Equal(t, "c", s.Current().ContentID)
}

func TestRestore_InvalidSnapshot(t *testing.T) {
	s, m := newTestSession(t)
	require.NoError(t, s.Load(mediaItems("x"), 0))

	tests := []struct {
		name string
		snap Snapshot
	}{
		{"empty", Snapshot{Queue: playlist.QueueState{CurrentIndex: -1}}},
		{"no selection", Snapshot{Queue: playlist.QueueState{Items: []playlist.Item{{ContentID: "a", InstanceID: "1"}}, CurrentIndex: -1}}},
		{"index out of range", Snapshot{Queue: playlist.QueueState{Items: []playlist.Item{{ContentID: "a", InstanceID: "1"}}, CurrentIndex: 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, s.Restore(tt.snap))
			assert.Equal(t, "x", s.Current().ContentID)
		})
	}
	assert.Len(t, m.LoadCalls(), 1)
}

func TestSnapshot(t *testing.T) {
	s, m := newTestSession(t)

	_, ok := s.Snapshot()
	assert.False(t, ok, "idle session has nothing to snapshot")

	require.NoError(t, s.Load(mediaItems("a", "b"), 1))
	require.NoError(t, s.Play(1, false))
	m.SetPosition(10 * time.Second)
	s.SetLoop(LoopQueue)

	snap, ok := s.Snapshot()
	require.True(t, ok)
	assert.Equal(t, 1, snap.Queue.CurrentIndex)
	assert.Equal(t, 10*time.Second, snap.Position)
	assert.Equal(t, LoopQueue, snap.Loop)
	assert.Equal(t, "b", snap.Current().ContentID)
	assert.False(t, snap.SavedAt.IsZero())
}

func TestRelays_CurrentItemFollowsIndex(t *testing.T) {
	s, _ := newTestSession(t)
	idxCh, cancelIdx := s.Relays().CurrentIndex.Subscribe()
	defer cancelIdx()
	itemCh, cancelItem := s.Relays().CurrentItem.Subscribe()
	defer cancelItem()

	assert.Equal(t, -1, <-idxCh)
	assert.Nil(t, (<-itemCh).Item)

	require.NoError(t, s.Load(mediaItems("a", "b", "b"), 2))

	idx := <-idxCh
	cur := <-itemCh
	assert.Equal(t, 2, idx)
	assert.Equal(t, idx, cur.Index)
	assert.Equal(t, s.Items()[2].InstanceID, cur.Item.InstanceID,
		"the selected duplicate instance is reported, not the first match")
}

func TestRelays_QueueIsACopy(t *testing.T) {
	s, _ := newTestSession(t)
	require.NoError(t, s.Load(mediaItems("a"), 0))

	published := s.Relays().Queue.Value()
	published[0].Title = "changed"

	assert.Equal(t, "Title a", s.Items()[0].Title)
}

func TestClose(t *testing.T) {
	s, m := newTestSession(t)
	sub := s.Subscribe()
	ch, _ := s.Relays().IsPlaying.Subscribe()
	<-ch

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	<-sub.Done
	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 1, m.StopCalls())
	assert.ErrorIs(t, s.Load(mediaItems("a"), 0), ErrClosed)

	late := s.Subscribe()
	<-late.Done
}
