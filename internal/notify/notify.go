// Package notify shows what the session is playing as desktop
// notifications.
package notify

import "time"

// Urgency is the freedesktop notification urgency level.
type Urgency byte

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// ServerDefault lets the notification server pick the expiry.
const ServerDefault time.Duration = -1

// Notification is one desktop notification.
type Notification struct {
	Summary  string
	Body     string
	Image    string        // artwork file, optional
	Timeout  time.Duration // 0 never expires
	Replaces uint32        // id of a notification to update in place
	Urgency  Urgency
}

// Notifier shows notifications.
type Notifier interface {
	// Notify shows n and returns its server id.
	Notify(n Notification) (uint32, error)
	Close(id uint32) error
}

// Discard is a Notifier that shows nothing.
type Discard struct{}

func (Discard) Notify(Notification) (uint32, error) { return 0, nil }
func (Discard) Close(uint32) error                  { return nil }

// expiry converts a timeout to the milliseconds the server expects.
func expiry(d time.Duration) int32 {
	if d < 0 {
		return -1
	}
	return int32(d.Milliseconds())
}
