// Package events provides a typed publish/subscribe bus scoped by session ID.
package events

import (
	"sync"

	"github.com/llehouerou/reprise/internal/playlist"
)

// ContentRemoved announces that media disappeared from the library.
type ContentRemoved struct {
	ContentIDs []string
	Reason     string // e.g. "deleted", "renamed"
}

// ContentUpdated announces refreshed metadata for library items.
// Only ContentID and metadata fields are meaningful; InstanceID is ignored.
type ContentUpdated struct {
	Items []playlist.Item
}

// Topic delivers events of a single type to handlers registered for a
// session. Handlers run synchronously on the publishing goroutine.
type Topic[E any] struct {
	mu       sync.RWMutex
	handlers map[string]map[int]func(E)
	nextID   int
}

// NewTopic creates an empty topic.
func NewTopic[E any]() *Topic[E] {
	return &Topic[E]{handlers: make(map[string]map[int]func(E))}
}

// Subscribe registers fn for events published to sessionID.
// The returned function removes the registration; calling it twice is safe.
func (t *Topic[E]) Subscribe(sessionID string, fn func(E)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	if t.handlers[sessionID] == nil {
		t.handlers[sessionID] = make(map[int]func(E))
	}
	t.handlers[sessionID][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			delete(t.handlers[sessionID], id)
			if len(t.handlers[sessionID]) == 0 {
				delete(t.handlers, sessionID)
			}
		})
	}
}

// Publish delivers e to every handler of sessionID and returns how many
// handlers received it.
func (t *Topic[E]) Publish(sessionID string, e E) int {
	t.mu.RLock()
	fns := make([]func(E), 0, len(t.handlers[sessionID]))
	for _, fn := range t.handlers[sessionID] {
		fns = append(fns, fn)
	}
	t.mu.RUnlock()

	for _, fn := range fns {
		fn(e)
	}
	return len(fns)
}

// Sessions returns the IDs that currently have at least one handler.
func (t *Topic[E]) Sessions() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]string, 0, len(t.handlers))
	for id := range t.handlers {
		ids = append(ids, id)
	}
	return ids
}

// Bus groups the topics a playback session listens to.
type Bus struct {
	Removed *Topic[ContentRemoved]
	Updated *Topic[ContentUpdated]
}

// NewBus creates a bus with empty topics.
func NewBus() *Bus {
	return &Bus{
		Removed: NewTopic[ContentRemoved](),
		Updated: NewTopic[ContentUpdated](),
	}
}
