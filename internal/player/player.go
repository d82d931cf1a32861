package player

import (
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
)

// Player renders local audio files through the gopxl/beep speaker.
type Player struct {
	mu        sync.Mutex
	state     State
	locator   string
	rate      float64
	ctrl      *beep.Ctrl
	resampler *beep.Resampler
	volume    *effects.Volume
	streamer  beep.StreamSeekCloser
	format    beep.Format
	baseRatio float64
	file      *os.File

	generation atomic.Uint64
	finishedCh chan struct{}
	seekChan   chan seekRequest
	closeOnce  sync.Once
}

type seekRequest struct {
	pos  time.Duration
	done func(bool)
}

var (
	speakerMu          sync.Mutex
	speakerInitialized bool
	speakerSampleRate  beep.SampleRate
)

// New creates a player and starts its seek worker.
func New() *Player {
	p := &Player{
		state:      Stopped,
		rate:       1,
		finishedCh: make(chan struct{}, 1),
		seekChan:   make(chan seekRequest, 1),
	}
	go p.seekLoop()
	return p
}

// Locator returns the path of the loaded source, or "" when stopped.
func (p *Player) Locator() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.locator
}

// Rate returns the last rate set.
func (p *Player) Rate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	streamer, format := p.streamer, p.format
	p.mu.Unlock()
	if streamer == nil {
		return 0
	}
	// Read position without the speaker lock - may be slightly stale but
	// avoids stalling on the audio callback.
	return format.SampleRate.D(streamer.Position())
}

// Duration returns the length of the loaded source.
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil {
		return 0
	}
	return p.format.SampleRate.D(p.streamer.Len())
}

// FinishedChan signals when the loaded source plays to its end.
func (p *Player) FinishedChan() <-chan struct{} {
	return p.finishedCh
}

// Close stops playback and the seek worker. The player is unusable after.
func (p *Player) Close() {
	p.Stop()
	p.closeOnce.Do(func() {
		close(p.seekChan)
	})
}
