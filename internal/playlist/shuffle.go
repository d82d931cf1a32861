package playlist

import (
	"math/rand/v2"

	"github.com/samber/lo"
)

// Shuffled reports whether the queue is currently in shuffled order.
func (q *PlayingQueue) Shuffled() bool {
	return q.shuffle.active
}

// OriginalOrder returns a copy of the pre-shuffle arrangement, or nil when
// shuffle is inactive.
func (q *PlayingQueue) OriginalOrder() []Item {
	if !q.shuffle.active {
		return nil
	}
	return append(make([]Item, 0, len(q.shuffle.original)), q.shuffle.original...)
}

// ToggleShuffle shuffles the queue anchored at fromIndex, or restores the
// pre-shuffle order if it is already shuffled. Returns false when nothing
// changed (empty queue, no selection, or invalid index).
func (q *PlayingQueue) ToggleShuffle(fromIndex int) bool {
	if q.shuffle.active {
		return q.unshuffle()
	}
	return q.shuffleFrom(fromIndex)
}

// shuffleFrom moves the item at fromIndex to position 0 and places every
// other item behind it in uniformly random order. The first arrangement
// seen since shuffle was activated is kept for unshuffle.
func (q *PlayingQueue) shuffleFrom(fromIndex int) bool {
	if q.IsEmpty() || q.currentIndex < 0 {
		return false
	}
	if fromIndex < 0 || fromIndex >= q.Len() {
		return false
	}

	items := q.playlist.Items()
	if !q.shuffle.active {
		q.shuffle.original = q.playlist.Items()
	}

	anchor := items[fromIndex]
	rest := make([]Item, 0, len(items)-1)
	rest = append(rest, items[:fromIndex]...)
	rest = append(rest, items[fromIndex+1:]...)
	q.permute(rest)

	q.playlist.Set(append([]Item{anchor}, rest...))
	q.currentIndex = 0
	q.shuffle.active = true
	return true
}

// unshuffle restores the saved arrangement. Items removed while shuffled
// stay removed; items inserted while shuffled are kept after the restored
// ones, in their shuffled relative order. The selection follows the
// current instance.
func (q *PlayingQueue) unshuffle() bool {
	if !q.shuffle.active || q.shuffle.original == nil {
		return false
	}
	current := q.Current()
	if current == nil {
		return false
	}
	ref := *current

	restored := mergeOriginal(q.shuffle.original, q.playlist.Items())
	q.playlist.Set(restored)
	q.shuffle = shuffleState{}
	q.currentIndex = max(IndexOf(restored, ref), 0)
	return true
}

func (q *PlayingQueue) permute(items []Item) {
	swap := func(i, j int) { items[i], items[j] = items[j], items[i] }
	if q.rng != nil {
		q.rng.Shuffle(len(items), swap)
		return
	}
	rand.Shuffle(len(items), swap)
}

func mergeOriginal(original, live []Item) []Item {
	liveByID := lo.KeyBy(live, func(it Item) string { return it.InstanceID })
	origByID := lo.KeyBy(original, func(it Item) string { return it.InstanceID })

	restored := lo.FilterMap(original, func(it Item, _ int) (Item, bool) {
		cur, ok := liveByID[it.InstanceID]
		return cur, ok
	})
	added := lo.Filter(live, func(it Item, _ int) bool {
		_, ok := origByID[it.InstanceID]
		return !ok
	})
	return append(restored, added...)
}

func withoutInstance(items []Item, ref Item) []Item {
	return lo.Reject(items, func(it Item, _ int) bool {
		return it.SameInstance(ref)
	})
}
