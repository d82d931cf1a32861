package playback

const eventBufferSize = 16

// Subscription provides event channels for a subscriber.
// Continuous state (queue, index, playing flag, times) is observed
// through the Broadcaster relays instead.
type Subscription struct {
	TrackChanged <-chan TrackChange
	Error        <-chan ErrorEvent
	Done         <-chan struct{}

	// Internal write channels
	trackCh chan TrackChange
	errorCh chan ErrorEvent
	doneCh  chan struct{}
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		trackCh: make(chan TrackChange, eventBufferSize),
		errorCh: make(chan ErrorEvent, eventBufferSize),
		doneCh:  make(chan struct{}),
	}
	s.TrackChanged = s.trackCh
	s.Error = s.errorCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// sendTrack sends a track change event (non-blocking).
func (s *Subscription) sendTrack(e TrackChange) {
	select {
	case s.trackCh <- e:
	default:
		// Drop if buffer full
	}
}

// sendError sends an error event (non-blocking).
func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}
