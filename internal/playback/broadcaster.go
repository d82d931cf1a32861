package playback

import (
	"time"

	"github.com/llehouerou/reprise/internal/playlist"
)

// Current pairs the selected item with the index it was resolved from.
// Item is nil when nothing is selected.
type Current struct {
	Index int
	Item  *playlist.Item
}

// Broadcaster exposes session state as replay-latest relays.
//
// Whenever the selection changes, CurrentIndex is published before
// CurrentItem, and CurrentItem carries that same index.
type Broadcaster struct {
	Queue        *Relay[[]playlist.Item]
	CurrentIndex *Relay[int]
	CurrentItem  *Relay[Current]
	IsPlaying    *Relay[bool]
	Duration     *Relay[time.Duration]
	Elapsed      *Relay[time.Duration]
	Shuffle      *Relay[bool]
	Loop         *Relay[LoopMode]
	Controllable *Relay[bool]
}

func newBroadcaster(loop LoopMode) *Broadcaster {
	return &Broadcaster{
		Queue:        NewRelay[[]playlist.Item](nil),
		CurrentIndex: NewRelay(-1),
		CurrentItem:  NewRelay(Current{Index: -1}),
		IsPlaying:    NewRelay(false),
		Duration:     NewRelay(time.Duration(0)),
		Elapsed:      NewRelay(time.Duration(0)),
		Shuffle:      NewRelay(false),
		Loop:         NewRelay(loop),
		Controllable: NewRelay(false),
	}
}

func (b *Broadcaster) publishSelection(q *playlist.PlayingQueue) {
	idx := q.CurrentIndex()
	var item *playlist.Item
	if cur := q.Current(); cur != nil {
		c := *cur
		item = &c
	}
	b.CurrentIndex.Publish(idx)
	b.CurrentItem.Publish(Current{Index: idx, Item: item})
}

func (b *Broadcaster) close() {
	b.Queue.Close()
	b.CurrentIndex.Close()
	b.CurrentItem.Close()
	b.IsPlaying.Close()
	b.Duration.Close()
	b.Elapsed.Close()
	b.Shuffle.Close()
	b.Loop.Close()
	b.Controllable.Close()
}
