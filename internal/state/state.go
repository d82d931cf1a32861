package state

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/llehouerou/reprise/internal/playback"
)

const (
	appName    = "reprise"
	dbFileName = "reprise.db"
)

// Manager persists the latest session snapshot in SQLite.
type Manager struct {
	db *sql.DB
}

// Open opens the database at path, creating it and its directory when
// missing. An empty path uses the XDG data directory.
func Open(path string) (*Manager, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	if path != ":memory:" {
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection: SQLite serializes writers anyway, and an in-memory
	// database only exists on the connection that created it.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{db: db}, nil
}

// DefaultPath returns the XDG data location of the database.
func DefaultPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}

func (m *Manager) Close() error {
	return m.db.Close()
}

// LoadSnapshot returns the stored snapshot, or nil when there is none.
// An undecodable record yields ErrCorruptSnapshot.
func (m *Manager) LoadSnapshot(ctx context.Context) (*playback.Snapshot, error) {
	return loadSnapshot(ctx, m.db)
}

// SaveSnapshot replaces the stored snapshot in a single transaction.
func (m *Manager) SaveSnapshot(ctx context.Context, snap playback.Snapshot) error {
	return saveSnapshot(ctx, m.db, snap)
}

// ClearSnapshot deletes the stored snapshot.
func (m *Manager) ClearSnapshot(ctx context.Context) error {
	return clearSnapshot(ctx, m.db)
}
