//go:build linux

package mpris

import (
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/events"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/reprise/internal/playback"
	"github.com/llehouerou/reprise/internal/remote"
)

const source = "mpris"

// Adapter exposes the remote bridge as an MPRIS player over D-Bus.
type Adapter struct {
	bridge *remote.Bridge
	server *server.Server
	player types.OrgMprisMediaPlayer2PlayerEventHandler
	logger *slog.Logger

	last remote.NowPlaying
}

// New creates and starts a new MPRIS adapter and registers it with the
// bridge so property changes are announced.
func New(bridge *remote.Bridge, logger *slog.Logger) (*Adapter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Adapter{
		bridge: bridge,
		logger: logger,
	}

	a.server = server.NewServer("reprise", &rootAdapter{}, &playerAdapter{bridge: bridge})
	a.player = events.NewEventHandler(a.server).Player

	// Start the server in background
	go func() {
		if err := a.server.Listen(); err != nil {
			logger.Warn("mpris server stopped", "error", err)
		}
	}()

	bridge.Register(a)
	return a, nil
}

// Publish announces the properties that differ from the previous update.
// Each group of properties is checked on its own, so one update can emit
// several signals. It is called from the bridge's Run goroutine only.
func (a *Adapter) Publish(n remote.NowPlaying) {
	prev := a.last
	a.last = n

	var errs []error
	trackChanged := n.TrackID != prev.TrackID || n.Title != prev.Title || n.Total != prev.Total
	controlsChanged := n.Controllable != prev.Controllable || n.HasItem() != prev.HasItem()
	switch {
	case trackChanged || controlsChanged:
		// Metadata, PlaybackStatus and CanControl together.
		errs = append(errs, a.player.OnPlayback())
	case n.Playing != prev.Playing || n.State != prev.State:
		errs = append(errs, a.player.OnPlayPause())
	}
	if seeked(prev, n) {
		errs = append(errs, a.player.OnSeek(types.Microseconds(n.Elapsed.Microseconds())))
	}
	if controlsChanged || n.Shuffle != prev.Shuffle || n.Loop != prev.Loop || n.QueueLength != prev.QueueLength {
		errs = append(errs, a.player.OnOptions())
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Debug("mpris property update failed", "error", err)
	}
}

// seeked reports an elapsed jump that regular playback cannot explain.
func seeked(prev, n remote.NowPlaying) bool {
	if n.TrackID != prev.TrackID {
		return false
	}
	delta := n.Elapsed - prev.Elapsed
	return delta < 0 || delta > 2*time.Second
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - app manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "Reprise", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/ogg", "audio/wav"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter and optional interfaces.
type playerAdapter struct {
	bridge *remote.Bridge
}

func (p *playerAdapter) handle(name string) error {
	return p.bridge.Handle(remote.Command{Name: name, Source: source})
}

func (p *playerAdapter) Next() error {
	return p.handle(remote.CmdNext)
}

func (p *playerAdapter) Previous() error {
	return p.handle(remote.CmdPrevious)
}

func (p *playerAdapter) Pause() error {
	return p.handle(remote.CmdPause)
}

func (p *playerAdapter) PlayPause() error {
	return p.handle(remote.CmdToggle)
}

func (p *playerAdapter) Stop() error {
	return p.handle(remote.CmdStop)
}

func (p *playerAdapter) Play() error {
	return p.handle(remote.CmdPlay)
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	return p.bridge.Handle(remote.Command{
		Name:   remote.CmdSeek,
		Source: source,
		Offset: time.Duration(offset) * time.Microsecond,
	})
}

func (p *playerAdapter) SetPosition(trackID string, position types.Microseconds) error {
	return p.bridge.Handle(remote.Command{
		Name:     remote.CmdSetPosition,
		Source:   source,
		TrackID:  instanceFor(trackID, p.bridge.NowPlaying().TrackID),
		Position: time.Duration(position) * time.Microsecond,
	})
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	n := p.bridge.NowPlaying()
	switch {
	case n.Playing:
		return types.PlaybackStatusPlaying, nil
	case n.HasItem():
		return types.PlaybackStatusPaused, nil
	}
	return types.PlaybackStatusStopped, nil
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	n := p.bridge.NowPlaying()
	if !n.HasItem() {
		return types.Metadata{}, nil
	}

	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(n.TrackID)),
		Length:  types.Microseconds(n.Total.Microseconds()),
		Title:   n.Title,
	}
	if n.Artist != "" {
		meta.Artist = []string{n.Artist}
	}
	if n.Artwork != "" {
		meta.ArtUrl = "file://" + n.Artwork
	}

	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetVolume(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Position() (int64, error) {
	return p.bridge.NowPlaying().Elapsed.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return p.bridge.NowPlaying().CanNext(), nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return p.bridge.NowPlaying().CanPrevious(), nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.bridge.NowPlaying().QueueLength > 0, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return p.bridge.NowPlaying().CanPause(), nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return p.bridge.NowPlaying().CanPause(), nil
}

// CanControl stays false until the session has played something. CanPlay
// does not depend on it so a restored session can still be started.
func (p *playerAdapter) CanControl() (bool, error) {
	return p.bridge.NowPlaying().Controllable, nil
}

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	return loopStatus(p.bridge.NowPlaying().Loop), nil
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
// Single-track repeat is not supported and maps to queue looping.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	mode := playback.LoopQueue
	if status == types.LoopStatusNone {
		mode = playback.LoopOff
	}
	return p.bridge.Handle(remote.Command{Name: remote.CmdSetLoop, Source: source, Loop: mode})
}

// Shuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) Shuffle() (bool, error) {
	return p.bridge.NowPlaying().Shuffle, nil
}

// SetShuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) SetShuffle(shuffle bool) error {
	return p.bridge.Handle(remote.Command{Name: remote.CmdSetShuffle, Source: source, Shuffle: shuffle})
}

func loopStatus(name string) types.LoopStatus {
	mode, err := playback.ParseLoopMode(name)
	if err == nil && mode == playback.LoopQueue {
		return types.LoopStatusPlaylist
	}
	return types.LoopStatusNone
}

// formatTrackID maps an instance ID onto a D-Bus object path.
func formatTrackID(instanceID string) string {
	h := fnv.New64a()
	h.Write([]byte(instanceID))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}

// instanceFor resolves the object path sent by a client back to the
// current instance ID. An unknown path is passed through so the bridge
// rejects it as stale.
func instanceFor(trackPath, current string) string {
	if current != "" && trackPath == formatTrackID(current) {
		return current
	}
	if trackPath == "" || strings.HasSuffix(trackPath, "/NoTrack") {
		return "none"
	}
	return trackPath
}
