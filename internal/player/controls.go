package player

import (
	"time"

	"github.com/gopxl/beep/v2/speaker"
)

// SetRate pauses on a zero rate and plays at rate otherwise.
// On a stopped player the rate is only remembered for the next Load.
func (p *Player) SetRate(rate float64) {
	rate = max(rate, 0)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.rate = rate
	if p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = rate == 0
	if rate > 0 {
		p.resampler.SetRatio(p.baseRatio * rate)
	}
	speaker.Unlock()
	p.state = stateForRate(rate)
}

// Stop stops playback and releases resources.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == Stopped {
		return
	}

	p.generation.Add(1)
	speaker.Clear()

	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}
	if p.file != nil {
		p.file.Close()
		p.file = nil
	}

	p.ctrl = nil
	p.resampler = nil
	p.volume = nil
	p.locator = ""
	p.state = Stopped
}

// Seek moves playback to pos. Beep seeks are sample-exact, so the
// tolerances are accepted for interface compatibility only.
// Non-blocking: a request still waiting is superseded and completes
// with false.
func (p *Player) Seek(pos, _, _ time.Duration, done func(bool)) {
	if done == nil {
		done = func(bool) {}
	}
	req := seekRequest{pos: pos, done: done}

	for {
		select {
		case p.seekChan <- req:
			return
		default:
		}
		select {
		case old := <-p.seekChan:
			go old.done(false)
		default:
		}
	}
}

// seekLoop processes seek requests sequentially.
func (p *Player) seekLoop() {
	for req := range p.seekChan {
		req.done(p.doSeek(req.pos))
	}
}

// doSeek performs the actual seek operation.
func (p *Player) doSeek(pos time.Duration) bool {
	p.mu.Lock()
	if p.streamer == nil || p.state == Stopped || p.volume == nil {
		p.mu.Unlock()
		return false
	}

	speaker.Lock()
	target := p.format.SampleRate.N(pos)
	target = min(max(target, 0), max(p.streamer.Len()-1, 0))

	// Mute, seek, then unmute to avoid audio artifacts
	p.volume.Silent = true
	err := p.streamer.Seek(target)
	speaker.Unlock()
	p.mu.Unlock()

	// Brief pause to let buffer clear before unmuting
	time.Sleep(100 * time.Millisecond)

	p.mu.Lock()
	if p.volume != nil {
		speaker.Lock()
		p.volume.Silent = false
		speaker.Unlock()
	}
	p.mu.Unlock()

	return err == nil
}
