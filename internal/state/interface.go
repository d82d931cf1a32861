package state

import (
	"context"

	"github.com/llehouerou/reprise/internal/playback"
)

// Interface is the snapshot store used by the runtime and the CLI.
// LoadSnapshot returns nil, nil when nothing has been saved.
type Interface interface {
	LoadSnapshot(ctx context.Context) (*playback.Snapshot, error)
	SaveSnapshot(ctx context.Context, snap playback.Snapshot) error
	ClearSnapshot(ctx context.Context) error
	Close() error
}

var _ Interface = (*Manager)(nil)
