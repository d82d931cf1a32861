package playback

import "sync"

// Relay holds the latest value of a piece of session state and replays it
// to every new subscriber. Slow subscribers only ever see the most recent
// value; publishing never blocks.
type Relay[T any] struct {
	mu     sync.Mutex
	value  T
	subs   map[int]chan T
	nextID int
	closed bool
}

// NewRelay creates a relay holding initial.
func NewRelay[T any](initial T) *Relay[T] {
	return &Relay[T]{
		value: initial,
		subs:  make(map[int]chan T),
	}
}

// Value returns the latest published value.
func (r *Relay[T]) Value() T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value
}

// Publish stores v and offers it to every subscriber, replacing any value
// a subscriber has not consumed yet.
func (r *Relay[T]) Publish(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.value = v
	for _, ch := range r.subs {
		offer(ch, v)
	}
}

// Subscribe returns a channel primed with the current value and a cancel
// function that unregisters and closes it.
func (r *Relay[T]) Subscribe() (<-chan T, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan T, 1)
	if r.closed {
		close(ch)
		return ch, func() {}
	}
	ch <- r.value
	id := r.nextID
	r.nextID++
	r.subs[id] = ch

	return ch, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if sub, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(sub)
		}
	}
}

// Close closes every subscriber channel. Later publishes are ignored.
func (r *Relay[T]) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	for id, ch := range r.subs {
		close(ch)
		delete(r.subs, id)
	}
}

// offer performs a latest-wins send on a 1-buffered channel. Only the
// relay sends on ch, and it does so under its mutex.
func offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- v
}
