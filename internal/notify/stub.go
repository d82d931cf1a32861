//go:build !linux

package notify

// New returns Discard; desktop notifications need a D-Bus session.
func New() (Notifier, error) {
	return Discard{}, nil
}
