package playback

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/llehouerou/reprise/internal/events"
	"github.com/llehouerou/reprise/internal/playlist"
)

// InsertNext inserts a fresh instance of item right after the current one
// and returns it. Requires a selected item.
func (s *Session) InsertNext(item playlist.Item) (playlist.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue.IsEmpty() {
		return playlist.Item{}, ErrEmptyQueue
	}
	inserted, ok := s.queue.InsertNext(item)
	if !ok {
		return playlist.Item{}, ErrNoCurrentItem
	}
	s.recordHistory()
	s.publishQueue()
	return inserted, nil
}

// InsertLast appends a fresh instance of item and returns it.
func (s *Session) InsertLast(item playlist.Item) playlist.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	inserted := s.queue.InsertLast(item)
	s.recordHistory()
	s.publishQueue()
	return inserted
}

// RemoveAt removes the item at index. Removing the current item stops the
// engine; the selection moves to the item now at that index (clamped), or
// to nothing when the queue empties.
func (s *Session) RemoveAt(index int) (playlist.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue.IsEmpty() {
		return playlist.Item{}, ErrEmptyQueue
	}
	if index < 0 || index >= s.queue.Len() {
		return playlist.Item{}, fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}

	removed := s.removeLocked(index)
	s.recordHistory()
	s.publishAll()
	return removed, nil
}

func (s *Session) removeLocked(index int) playlist.Item {
	wasCurrent := index == s.queue.CurrentIndex()
	removed, _ := s.queue.RemoveAt(index)
	if wasCurrent {
		s.releaseEngine()
		s.duration = 0
		if cur := s.queue.Current(); cur != nil {
			s.duration = cur.Duration
		}
		s.logger.Debug("current item removed", "title", removed.Title)
	}
	return removed
}

// ToggleShuffle shuffles the queue around the current item, or restores
// the pre-shuffle order. Returns whether the queue is now shuffled.
func (s *Session) ToggleShuffle() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toggleShuffleLocked()
}

func (s *Session) toggleShuffleLocked() (bool, error) {
	if s.queue.IsEmpty() {
		return false, ErrEmptyQueue
	}
	idx := s.queue.CurrentIndex()
	if idx < 0 {
		return false, ErrNoCurrentItem
	}
	if s.queue.ToggleShuffle(idx) {
		s.recordHistory()
		s.publishQueue()
	}
	return s.queue.Shuffled(), nil
}

// SetShuffle shuffles or unshuffles so that Shuffled() == on.
func (s *Session) SetShuffle(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue.Shuffled() == on {
		return nil
	}
	_, err := s.toggleShuffleLocked()
	return err
}

// SetLoop sets the loop mode.
func (s *Session) SetLoop(m LoopMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loop = m
	s.relays.Loop.Publish(m)
}

// Undo restores the previous queue arrangement. Returns false if there is
// nothing to undo.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.history.Undo()
	if !ok {
		return false
	}
	s.applyState(st)
	return true
}

// Redo reapplies an undone queue arrangement. Returns false if there is
// nothing to redo.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.history.Redo()
	if !ok {
		return false
	}
	s.applyState(st)
	return true
}

// applyState swaps in a recorded arrangement while keeping the playing
// instance selected when it is still present.
func (s *Session) applyState(st playlist.QueueState) {
	var prev *playlist.Item
	if cur := s.queue.Current(); cur != nil {
		c := *cur
		prev = &c
	}
	if !s.queue.Restore(st) {
		return
	}
	if prev != nil {
		s.queue.Reselect(*prev)
	}
	s.syncLoaded(prev)
	s.publishAll()
}

// syncLoaded reconciles the engine with a selection that changed under it.
// The same source keeps playing; anything else stops the engine.
func (s *Session) syncLoaded(prev *playlist.Item) {
	cur := s.queue.Current()
	switch {
	case s.loaded == "":
	case cur == nil:
		s.releaseEngine()
		s.duration = 0
	case cur.InstanceID == s.loaded:
	case prev != nil && cur.SourceLocator == prev.SourceLocator:
		s.loaded = cur.InstanceID
	default:
		s.releaseEngine()
		s.duration = cur.Duration
	}
}

// Reconcile drops every queued item whose content was removed from the
// library. Returns the number of items dropped.
func (s *Session) Reconcile(e events.ContentRemoved) int {
	gone := lo.SliceToMap(e.ContentIDs, func(id string) (string, struct{}) {
		return id, struct{}{}
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.queue.Items()
	removed := 0
	for i := len(items) - 1; i >= 0; i-- {
		if _, ok := gone[items[i].ContentID]; !ok {
			continue
		}
		s.removeLocked(i)
		removed++
	}
	if removed == 0 {
		return 0
	}
	s.logger.Info("queue reconciled", "removed", removed, "reason", e.Reason)
	s.recordHistory()
	s.publishAll()
	return removed
}

// ApplyUpdates refreshes the metadata of queued items from the library.
// Instance IDs and order are unchanged.
func (s *Session) ApplyUpdates(e events.ContentUpdated) int {
	byContent := lo.KeyBy(e.Items, func(it playlist.Item) string { return it.ContentID })

	s.mu.Lock()
	defer s.mu.Unlock()

	updated := lo.CountBy(s.queue.Items(), func(it playlist.Item) bool {
		_, ok := byContent[it.ContentID]
		return ok
	})
	s.queue.Update(func(it *playlist.Item) {
		u, ok := byContent[it.ContentID]
		if !ok {
			return
		}
		instance := it.InstanceID
		*it = u
		it.InstanceID = instance
	})
	if updated == 0 {
		return 0
	}
	if cur := s.queue.Current(); cur != nil && s.loaded == "" {
		s.duration = cur.Duration
	}
	s.publishAll()
	return updated
}

// Attach subscribes the session to bus events addressed to its ID.
// The returned function detaches; Close detaches as well.
func (s *Session) Attach(bus *events.Bus) func() {
	unsubs := []func(){
		bus.Removed.Subscribe(s.id, func(e events.ContentRemoved) { s.Reconcile(e) }),
		bus.Updated.Subscribe(s.id, func(e events.ContentUpdated) { s.ApplyUpdates(e) }),
	}
	detach := func() {
		for _, fn := range unsubs {
			fn()
		}
	}

	s.mu.Lock()
	s.detach = append(s.detach, detach)
	s.mu.Unlock()
	return detach
}
