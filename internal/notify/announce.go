package notify

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/llehouerou/reprise/internal/errmsg"
	"github.com/llehouerou/reprise/internal/playback"
	"github.com/llehouerou/reprise/internal/playlist"
)

const nowPlayingTimeout = 5 * time.Second

// NowPlaying builds the notification shown when item starts playing.
func NowPlaying(item playlist.Item) Notification {
	title := item.Title
	if title == "" {
		title = "Now playing"
	}
	return Notification{
		Summary: title,
		Body:    item.Author,
		Image:   item.ArtworkLocator,
		Timeout: nowPlayingTimeout,
		Urgency: UrgencyLow,
	}
}

// RenderFailed builds the notification shown when an item cannot be played.
func RenderFailed(e playback.ErrorEvent) Notification {
	name := e.Locator
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return Notification{
		Summary: "Playback error",
		Body:    errmsg.FormatWith(errmsg.OpPlaybackStart, name, e.Err),
		Timeout: ServerDefault,
		Urgency: UrgencyNormal,
	}
}

// Announcer turns session events into desktop notifications. Successive
// now-playing notifications replace each other.
type Announcer struct {
	notifier Notifier
	logger   *slog.Logger
	lastID   uint32
}

// NewAnnouncer creates an announcer sending through n.
func NewAnnouncer(n Notifier, logger *slog.Logger) *Announcer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Announcer{notifier: n, logger: logger}
}

// Run shows notifications for events on sub until ctx is canceled or the
// subscription ends.
func (a *Announcer) Run(ctx context.Context, sub *playback.Subscription) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sub.Done:
			return nil
		case e := <-sub.TrackChanged:
			if e.Current == nil {
				continue
			}
			n := NowPlaying(*e.Current)
			n.Replaces = a.lastID
			id, err := a.notifier.Notify(n)
			if err != nil {
				a.logger.Debug("notification failed", "error", err)
				continue
			}
			a.lastID = id
		case e := <-sub.Error:
			if _, err := a.notifier.Notify(RenderFailed(e)); err != nil {
				a.logger.Debug("notification failed", "error", err)
			}
		}
	}
}
