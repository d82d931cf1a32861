package player

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extOGG  = ".ogg"
	extWAV  = ".wav"
)

// ErrUnsupportedFormat is returned by Load for files it cannot decode.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Supported reports whether Load can decode the file at path.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case extMP3, extFLAC, extOGG, extWAV:
		return true
	}
	return false
}

// Load opens path and prepares it paused at the start.
// The previously loaded source, if any, is released first.
func (p *Player) Load(path string) error {
	p.Stop()

	// Small delay to let any pending Beep callback complete after speaker.Clear()
	time.Sleep(10 * time.Millisecond)

	// Drain any stale finish signal from the previous source
	select {
	case <-p.finishedCh:
	default:
	}

	if !Supported(path) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}

	streamer, format, err := decode(f, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		f.Close()
		return err
	}

	if err := initSpeaker(format.SampleRate); err != nil {
		streamer.Close()
		f.Close()
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.file = f
	p.streamer = streamer
	p.format = format
	p.locator = path
	p.baseRatio = float64(format.SampleRate) / float64(speakerSampleRate)
	p.resampler = beep.ResampleRatio(4, p.baseRatio*effectiveRatio(p.rate), streamer)
	p.ctrl = &beep.Ctrl{Streamer: p.resampler, Paused: true}
	p.volume = &effects.Volume{Streamer: p.ctrl, Base: 2, Volume: 0, Silent: false}
	p.state = Paused

	gen := p.generation.Add(1)
	speaker.Play(beep.Seq(p.volume, beep.Callback(func() {
		if p.generation.Load() != gen {
			return
		}
		select {
		case p.finishedCh <- struct{}{}:
		default:
		}
	})))

	return nil
}

// Probe decodes the header of the file at path and returns its length.
func Probe(path string) (time.Duration, error) {
	if !Supported(path) {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	streamer, format, err := decode(f, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return 0, err
	}
	defer streamer.Close()
	return format.SampleRate.D(streamer.Len()), nil
}

func decode(f *os.File, ext string) (beep.StreamSeekCloser, beep.Format, error) {
	switch ext {
	case extMP3:
		return mp3.Decode(f)
	case extFLAC:
		// Skip ID3v2 tag if present (some taggers add it to FLAC files)
		if err := skipID3v2(f); err != nil {
			return nil, beep.Format{}, err
		}
		return flac.Decode(f)
	case extOGG:
		return vorbis.Decode(f)
	case extWAV:
		return wav.Decode(f)
	}
	return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
}

func initSpeaker(rate beep.SampleRate) error {
	speakerMu.Lock()
	defer speakerMu.Unlock()
	if speakerInitialized {
		return nil
	}
	if err := speaker.Init(rate, rate.N(time.Second/10)); err != nil {
		return err
	}
	speakerSampleRate = rate
	speakerInitialized = true
	return nil
}

// effectiveRatio maps a playback rate to a resampling ratio. A zero rate
// pauses through the ctrl, so the resampler keeps its last useful ratio.
func effectiveRatio(rate float64) float64 {
	if rate <= 0 {
		return 1
	}
	return rate
}

// skipID3v2 skips an ID3v2 tag if present at the beginning of the file.
// Some FLAC files have ID3v2 tags prepended, which the FLAC decoder doesn't handle.
func skipID3v2(r io.ReadSeeker) error {
	header := make([]byte, 10)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.ErrUnexpectedEOF {
		return err
	}
	if n < 10 || string(header[0:3]) != "ID3" {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}

	// ID3v2 size is stored as a syncsafe integer in bytes 6-9
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])

	_, err = r.Seek(10+size, io.SeekStart)
	return err
}
