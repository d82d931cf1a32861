package playback

import (
	"fmt"
	"time"

	"github.com/llehouerou/reprise/internal/playlist"
)

// Load replaces the queue with fresh instances of items and prepares the
// item at startIndex (clamped into range) paused. The engine rate is not
// touched. Loading an empty slice clears the session.
func (s *Session) Load(items []playlist.Item, startIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	start := 0
	if len(items) > 0 {
		start = min(max(startIndex, 0), len(items)-1)
	}
	s.queue.Replace(start, playlist.Instantiate(items)...)
	s.history.Reset()
	s.recordHistory()
	s.playing = false

	var err error
	if s.queue.Current() == nil {
		s.releaseEngine()
		s.duration = 0
	} else {
		err = s.prepareCurrent("load")
	}
	s.logger.Debug("queue loaded", "items", len(items), "index", s.queue.CurrentIndex())
	s.publishAll()
	return err
}

// Restore seeds the session from a persisted snapshot: the queue comes back
// with its instance IDs and shuffle bookkeeping, the current item is
// prepared paused and positioned at the saved time. The engine rate is
// never changed. Returns false, leaving the session untouched, when the
// snapshot is invalid.
func (s *Session) Restore(snap Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !snap.Valid() {
		return false
	}
	if !s.queue.Restore(snap.Queue) {
		return false
	}
	s.history.Reset()
	s.recordHistory()
	s.loop = snap.Loop
	s.playing = false

	if err := s.prepareCurrent("restore"); err != nil {
		s.duration = max(s.duration, snap.Duration)
		s.elapsed = snap.Position
		s.publishAll()
		return true
	}
	if s.duration == 0 {
		s.duration = snap.Duration
	}
	if snap.Position > 0 {
		s.seekLocked(snap.Position)
	}
	s.logger.Info("session restored",
		"items", len(snap.Queue.Items),
		"index", snap.Queue.CurrentIndex,
		"position", snap.Position)
	s.publishAll()
	return true
}

// Play selects index and starts it at rate 1. With updateOrdering set and
// shuffle active, the rest of the queue is reshuffled behind the item.
func (s *Session) Play(index int, updateOrdering bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue.IsEmpty() {
		return ErrEmptyQueue
	}
	if index < 0 || index >= s.queue.Len() {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}

	if updateOrdering && s.queue.Shuffled() {
		s.queue.JumpToReshuffled(index)
		s.recordHistory()
	} else {
		s.queue.JumpTo(index)
	}
	err := s.startCurrent("play", true)
	s.publishAll()
	return err
}

// PlayNext advances to the next item. Past the last item it wraps to the
// first one: with LoopQueue playback continues, with LoopOff the first
// item is prepared and left paused.
func (s *Session) PlayNext() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playNextLocked()
}

func (s *Session) playNextLocked() error {
	if s.queue.IsEmpty() {
		return ErrEmptyQueue
	}

	var err error
	switch cur := s.queue.CurrentIndex(); {
	case cur < 0:
		s.queue.JumpTo(0)
		err = s.startCurrent("next", true)
	case s.queue.HasNext():
		s.queue.JumpTo(cur + 1)
		err = s.startCurrent("next", true)
	case s.loop == LoopQueue:
		s.queue.JumpTo(0)
		err = s.startCurrent("next", true)
	default:
		s.queue.JumpTo(0)
		if err = s.prepareCurrent("next"); err == nil {
			s.engine.SetRate(0)
		}
		s.playing = false
	}
	s.publishAll()
	return err
}

// PlayPrevious restarts the current item once it has played for at least
// the restart threshold; otherwise it moves back one item, wrapping to the
// last one from the start of the queue.
func (s *Session) PlayPrevious() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue.IsEmpty() {
		return ErrEmptyQueue
	}
	cur := s.queue.CurrentIndex()
	if cur < 0 {
		return ErrNoCurrentItem
	}

	if s.loaded != "" && s.elapsedLocked() >= s.restartThreshold {
		s.seekLocked(0)
		return nil
	}

	prev := cur - 1
	if prev < 0 {
		prev = s.queue.Len() - 1
	}
	s.queue.JumpTo(prev)
	err := s.startCurrent("previous", true)
	s.publishAll()
	return err
}

// Seek moves the current item to pos, clamped to its duration. Until the
// engine confirms, periodic ticks do not publish the elapsed time; a newer
// seek supersedes an older one.
func (s *Session) Seek(pos time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seekTo(pos)
}

// SeekBy moves the current item by delta relative to the elapsed time.
func (s *Session) SeekBy(delta time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seekTo(s.elapsedLocked() + delta)
}

func (s *Session) seekTo(pos time.Duration) error {
	cur := s.queue.Current()
	if cur == nil {
		return ErrNoCurrentItem
	}
	if s.loaded != cur.InstanceID {
		if err := s.prepareCurrent("seek"); err != nil {
			s.publishPlayback()
			return err
		}
	}

	pos = max(pos, 0)
	if s.duration > 0 {
		pos = min(pos, s.duration)
	}
	s.seekLocked(pos)
	return nil
}

func (s *Session) seekLocked(pos time.Duration) {
	s.seekGen++
	gen := s.seekGen
	s.seeking = true
	s.elapsed = pos
	s.relays.Elapsed.Publish(pos)
	s.engine.Seek(pos, 0, 0, func(ok bool) {
		s.completeSeek(gen, ok)
	})
}

func (s *Session) completeSeek(gen uint64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.seekGen {
		return
	}
	s.seeking = false
	if !ok {
		s.logger.Debug("seek not completed", "target", s.elapsed)
	}
	if s.loaded != "" {
		s.elapsed = s.engine.Position()
	}
	s.relays.Elapsed.Publish(s.elapsed)
}

// Pause sets the engine rate to 0.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue.Current() == nil {
		return ErrNoCurrentItem
	}
	if !s.playing {
		return ErrNotPlaying
	}
	s.engine.SetRate(0)
	s.playing = false
	s.elapsed = s.elapsedLocked()
	s.publishPlayback()
	return nil
}

// Resume sets the engine rate to 1, loading the current item first when
// the engine does not hold it.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.queue.Current()
	if cur == nil {
		return ErrNoCurrentItem
	}
	if s.playing {
		return ErrAlreadyPlaying
	}
	announce := s.lastStarted == nil || !s.lastStarted.SameInstance(*cur)
	if s.loaded != cur.InstanceID {
		if err := s.prepareCurrent("resume"); err != nil {
			s.publishPlayback()
			return err
		}
	}
	s.runEngine(announce)
	s.publishPlayback()
	return nil
}

// Toggle pauses when playing and resumes otherwise.
func (s *Session) Toggle() error {
	if s.IsPlaying() {
		return s.Pause()
	}
	return s.Resume()
}

// Stop releases the engine and rewinds the current item. The selection is
// kept; Resume starts it again from the beginning.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue.Current() == nil {
		return ErrNoCurrentItem
	}
	s.releaseEngine()
	s.publishPlayback()
	return nil
}

// prepareCurrent loads the selected item into the engine, paused at the
// start. A load error is reported to subscribers once and returned.
func (s *Session) prepareCurrent(op string) error {
	cur := s.queue.Current()
	if cur == nil {
		return ErrNoCurrentItem
	}
	s.seekGen++
	s.seeking = false
	s.elapsed = 0
	s.duration = cur.Duration

	if err := s.engine.Load(cur.SourceLocator); err != nil {
		s.loaded = ""
		s.playing = false
		s.logger.Warn("render failed", "op", op, "locator", cur.SourceLocator, "error", err)
		s.emitError(ErrorEvent{Operation: op, Locator: cur.SourceLocator, Err: err})
		return fmt.Errorf("%w: %s: %w", ErrRenderFailed, cur.SourceLocator, err)
	}
	s.loaded = cur.InstanceID
	if d := s.engine.Duration(); d > 0 {
		s.duration = d
	}
	return nil
}

// startCurrent loads the selected item and plays it at rate 1.
func (s *Session) startCurrent(op string, announce bool) error {
	if err := s.prepareCurrent(op); err != nil {
		return err
	}
	s.runEngine(announce)
	return nil
}

func (s *Session) runEngine(announce bool) {
	s.engine.SetRate(1)
	s.playing = true
	s.controllable = true

	if !announce {
		return
	}
	cur := *s.queue.Current()
	e := TrackChange{
		Previous:      s.lastStarted,
		Current:       &cur,
		PreviousIndex: s.lastStartedIndex,
		Index:         s.queue.CurrentIndex(),
	}
	s.lastStarted = &cur
	s.lastStartedIndex = e.Index
	s.logger.Debug("playing", "index", e.Index, "title", cur.Title)
	s.emitTrack(e)
}

// releaseEngine stops the engine and forgets the loaded item.
func (s *Session) releaseEngine() {
	s.engine.Stop()
	s.seekGen++
	s.seeking = false
	s.loaded = ""
	s.playing = false
	s.elapsed = 0
}

func (s *Session) publishAll() {
	s.publishQueue()
	s.relays.Loop.Publish(s.loop)
	s.publishPlayback()
}

func (s *Session) publishQueue() {
	s.relays.Queue.Publish(s.queue.Items())
	s.relays.publishSelection(s.queue)
	s.relays.Shuffle.Publish(s.queue.Shuffled())
}

func (s *Session) publishPlayback() {
	s.relays.IsPlaying.Publish(s.playing)
	s.relays.Duration.Publish(s.duration)
	s.relays.Elapsed.Publish(s.elapsed)
	s.relays.Controllable.Publish(s.controllable)
}

func (s *Session) recordHistory() {
	s.history.Push(s.queue.State())
}
