package playlist

import (
	"math/rand/v2"
)

// PlayingQueue wraps a Playlist with playback selection and shuffle bookkeeping.
type PlayingQueue struct {
	playlist     *Playlist
	currentIndex int // -1 if nothing selected
	shuffle      shuffleState
	rng          *rand.Rand
}

type shuffleState struct {
	active   bool
	original []Item // pre-shuffle arrangement, non-nil iff active
}

// QueueState is a detached copy of a queue, suitable for persistence.
type QueueState struct {
	Items         []Item
	CurrentIndex  int // -1 if nothing selected
	ShuffleActive bool
	OriginalOrder []Item
}

// QueueOption configures a PlayingQueue.
type QueueOption func(*PlayingQueue)

// WithRand sets the random source used for shuffling.
func WithRand(r *rand.Rand) QueueOption {
	return func(q *PlayingQueue) {
		q.rng = r
	}
}

// NewQueue creates a new empty playing queue.
func NewQueue(opts ...QueueOption) *PlayingQueue {
	q := &PlayingQueue{
		playlist:     NewPlaylist(),
		currentIndex: -1,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Current returns the selected item, or nil if none.
func (q *PlayingQueue) Current() *Item {
	if q.currentIndex < 0 || q.currentIndex >= q.playlist.Len() {
		return nil
	}
	return q.playlist.Item(q.currentIndex)
}

// CurrentIndex returns the index of the selected item (-1 if none).
func (q *PlayingQueue) CurrentIndex() int {
	return q.currentIndex
}

// HasNext returns true if there's an item after the current one.
func (q *PlayingQueue) HasNext() bool {
	return q.currentIndex >= 0 && q.currentIndex < q.playlist.Len()-1
}

// JumpTo sets the current index to the specified position.
// Returns the item at that position, or nil if invalid.
func (q *PlayingQueue) JumpTo(index int) *Item {
	if index < 0 || index >= q.playlist.Len() {
		return nil
	}
	q.currentIndex = index
	return q.Current()
}

// JumpToReshuffled selects index and, when shuffle is active, re-randomizes
// the rest of the queue behind it. The selected item ends up at index 0.
func (q *PlayingQueue) JumpToReshuffled(index int) *Item {
	if q.JumpTo(index) == nil {
		return nil
	}
	if q.shuffle.active {
		q.shuffleFrom(index)
	}
	return q.Current()
}

// Add appends items to the queue without changing the selection.
// Items are stored as given; use Instantiate for fresh instance IDs.
func (q *PlayingQueue) Add(items ...Item) {
	q.playlist.Add(items...)
}

// Replace clears the queue, adds items, and selects start.
// An out-of-range start selects 0. Shuffle state is reset.
// Returns the selected item.
func (q *PlayingQueue) Replace(start int, items ...Item) *Item {
	q.playlist.Set(items)
	q.shuffle = shuffleState{}
	q.currentIndex = -1
	if len(items) == 0 {
		return nil
	}
	if start < 0 || start >= len(items) {
		start = 0
	}
	q.currentIndex = start
	return q.Current()
}

// InsertNext inserts a fresh instance of item right after the current one.
// Returns false without changes if nothing is selected.
func (q *PlayingQueue) InsertNext(item Item) (Item, bool) {
	if q.Current() == nil {
		return Item{}, false
	}
	inserted := item.Clone()
	q.playlist.Insert(q.currentIndex+1, inserted)
	return inserted, true
}

// InsertLast appends a fresh instance of item.
func (q *PlayingQueue) InsertLast(item Item) Item {
	inserted := item.Clone()
	q.playlist.Add(inserted)
	return inserted
}

// RemoveAt removes the item at the given index and adjusts the selection.
// When the selected item is removed the selection stays at the same index,
// clamped to the new bounds (-1 once the queue is empty). Emptying the queue
// also ends shuffle.
func (q *PlayingQueue) RemoveAt(index int) (Item, bool) {
	removed := q.playlist.Item(index)
	if removed == nil {
		return Item{}, false
	}
	item := *removed
	q.playlist.Remove(index)

	if q.currentIndex > index {
		q.currentIndex--
	} else if q.currentIndex == index && q.currentIndex >= q.playlist.Len() {
		q.currentIndex = q.playlist.Len() - 1
	}

	switch {
	case q.playlist.Len() == 0:
		q.shuffle = shuffleState{}
	case q.shuffle.active:
		q.shuffle.original = withoutInstance(q.shuffle.original, item)
	}
	return item, true
}

// Reselect moves the selection to ref's position, preferring an instance
// match. Returns false and leaves the selection unchanged if ref is absent.
func (q *PlayingQueue) Reselect(ref Item) bool {
	idx := q.playlist.IndexOf(ref)
	if idx < 0 {
		return false
	}
	q.currentIndex = idx
	return true
}

// Update applies fn to every item; fn must not change InstanceID.
func (q *PlayingQueue) Update(fn func(*Item)) {
	for i := range q.playlist.items {
		fn(&q.playlist.items[i])
	}
	for i := range q.shuffle.original {
		fn(&q.shuffle.original[i])
	}
}

// Clear removes all items and resets selection and shuffle state.
func (q *PlayingQueue) Clear() {
	q.playlist.Clear()
	q.currentIndex = -1
	q.shuffle = shuffleState{}
}

// Items returns all items in the queue.
func (q *PlayingQueue) Items() []Item {
	return q.playlist.Items()
}

// Len returns the number of items in the queue.
func (q *PlayingQueue) Len() int {
	return q.playlist.Len()
}

// IsEmpty returns true if the queue has no items.
func (q *PlayingQueue) IsEmpty() bool {
	return q.playlist.Len() == 0
}

// State returns a detached copy of the queue.
func (q *PlayingQueue) State() QueueState {
	st := QueueState{
		Items:         q.playlist.Items(),
		CurrentIndex:  q.currentIndex,
		ShuffleActive: q.shuffle.active,
	}
	if q.shuffle.active {
		st.OriginalOrder = append(make([]Item, 0, len(q.shuffle.original)), q.shuffle.original...)
	}
	return st
}

// Restore replaces the queue with st. It returns false and leaves the queue
// untouched when st is inconsistent.
func (q *PlayingQueue) Restore(st QueueState) bool {
	if !st.Valid() {
		return false
	}
	q.playlist.Set(st.Items)
	q.currentIndex = st.CurrentIndex
	q.shuffle = shuffleState{}
	if st.ShuffleActive {
		q.shuffle.active = true
		q.shuffle.original = append(make([]Item, 0, len(st.OriginalOrder)), st.OriginalOrder...)
	}
	return true
}

// Valid reports whether the state satisfies the queue invariants.
func (st QueueState) Valid() bool {
	if st.CurrentIndex < -1 || st.CurrentIndex >= len(st.Items) {
		return false
	}
	if len(st.Items) > 0 && st.CurrentIndex == -1 && st.ShuffleActive {
		return false
	}
	if st.ShuffleActive != (st.OriginalOrder != nil) {
		return false
	}
	seen := make(map[string]struct{}, len(st.Items))
	for _, it := range st.Items {
		if it.InstanceID == "" {
			return false
		}
		if _, dup := seen[it.InstanceID]; dup {
			return false
		}
		seen[it.InstanceID] = struct{}{}
	}
	return true
}

// Clone returns a deep copy of the state.
func (st QueueState) Clone() QueueState {
	out := st
	out.Items = append(make([]Item, 0, len(st.Items)), st.Items...)
	if st.OriginalOrder != nil {
		out.OriginalOrder = append(make([]Item, 0, len(st.OriginalOrder)), st.OriginalOrder...)
	}
	return out
}
