package playlist

import (
	"time"

	"github.com/google/uuid"
)

// Item is a playable unit in a queue.
type Item struct {
	ContentID      string // identity of the underlying media, shared by duplicates
	InstanceID     string // identity of this occurrence within a queue
	Title          string
	Author         string
	Duration       time.Duration
	ArtworkLocator string
	SourceLocator  string
}

// NewInstanceID returns a fresh queue-scoped identifier.
func NewInstanceID() string {
	return uuid.NewString()
}

// Clone returns a copy of the item with a freshly generated InstanceID.
func (it Item) Clone() Item {
	it.InstanceID = NewInstanceID()
	return it
}

// SameInstance reports whether both items are the same queue occurrence.
func (it Item) SameInstance(other Item) bool {
	return it.InstanceID != "" && it.InstanceID == other.InstanceID
}

// Instantiate clones every item so each gets its own InstanceID.
func Instantiate(items []Item) []Item {
	result := make([]Item, len(items))
	for i, it := range items {
		result[i] = it.Clone()
	}
	return result
}

// IndexOf locates ref in items. An InstanceID match wins over any
// ContentID match; returns -1 if neither matches.
func IndexOf(items []Item, ref Item) int {
	if ref.InstanceID != "" {
		for i := range items {
			if items[i].InstanceID == ref.InstanceID {
				return i
			}
		}
	}
	if ref.ContentID == "" {
		return -1
	}
	for i := range items {
		if items[i].ContentID == ref.ContentID {
			return i
		}
	}
	return -1
}
