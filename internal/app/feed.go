package app

import "github.com/llehouerou/reprise/internal/remote"

// Feed turns bridge publications into a latest-wins channel the view can
// wait on. A slow reader only ever sees the newest state.
type Feed struct {
	ch chan remote.NowPlaying
}

// NewFeed registers a feed with b.
func NewFeed(b *remote.Bridge) *Feed {
	f := &Feed{ch: make(chan remote.NowPlaying, 1)}
	b.Register(f)
	return f
}

// Publish implements remote.Publisher.
func (f *Feed) Publish(n remote.NowPlaying) {
	for {
		select {
		case f.ch <- n:
			return
		default:
		}
		select {
		case <-f.ch:
		default:
		}
	}
}

// C returns the channel of updates.
func (f *Feed) C() <-chan remote.NowPlaying {
	return f.ch
}
