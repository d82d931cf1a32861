package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopic_DeliversToMatchingSession(t *testing.T) {
	topic := NewTopic[ContentRemoved]()
	var got []ContentRemoved
	topic.Subscribe("s1", func(e ContentRemoved) { got = append(got, e) })
	topic.Subscribe("s2", func(ContentRemoved) { t.Error("s2 should not receive s1 events") })

	n := topic.Publish("s1", ContentRemoved{ContentIDs: []string{"abc"}})

	assert.Equal(t, 1, n)
	assert.Equal(t, []ContentRemoved{{ContentIDs: []string{"abc"}}}, got)
}

func TestTopic_Unsubscribe(t *testing.T) {
	topic := NewTopic[ContentUpdated]()
	calls := 0
	unsubscribe := topic.Subscribe("s1", func(ContentUpdated) { calls++ })

	unsubscribe()
	unsubscribe()
	n := topic.Publish("s1", ContentUpdated{})

	assert.Zero(t, n)
	assert.Zero(t, calls)
	assert.Empty(t, topic.Sessions())
}

func TestTopic_HandlerMayUnsubscribeDuringPublish(t *testing.T) {
	topic := NewTopic[ContentRemoved]()
	var unsubscribe func()
	calls := 0
	unsubscribe = topic.Subscribe("s1", func(ContentRemoved) {
		calls++
		unsubscribe()
	})

	topic.Publish("s1", ContentRemoved{})
	topic.Publish("s1", ContentRemoved{})

	assert.Equal(t, 1, calls)
}

func TestBus_TopicsAreIndependent(t *testing.T) {
	bus := NewBus()
	removed, updated := 0, 0
	bus.Removed.Subscribe("s", func(ContentRemoved) { removed++ })
	bus.Updated.Subscribe("s", func(ContentUpdated) { updated++ })

	bus.Removed.Publish("s", ContentRemoved{})

	assert.Equal(t, 1, removed)
	assert.Zero(t, updated)
}
