package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	dbutil "github.com/llehouerou/reprise/internal/db"
	"github.com/llehouerou/reprise/internal/playback"
	"github.com/llehouerou/reprise/internal/playlist"
)

// ErrCorruptSnapshot is returned when a stored snapshot cannot be decoded
// into a consistent session.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

const (
	listLive     = "live"
	listOriginal = "original"
)

func loadSnapshot(ctx context.Context, db *sql.DB) (*playback.Snapshot, error) {
	var (
		snap                         playback.Snapshot
		loop                         int
		shuffle                      bool
		positionMS, durationMS, when int64
	)
	row := db.QueryRowContext(ctx, `
		SELECT current_index, loop_mode, shuffle, position_ms, duration_ms, saved_at
		FROM session_snapshot WHERE id = 1
	`)
	err := row.Scan(&snap.Queue.CurrentIndex, &loop, &shuffle, &positionMS, &durationMS, &when)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	live, err := loadItems(ctx, db, listLive)
	if err != nil {
		return nil, err
	}
	snap.Queue.Items = live
	snap.Queue.ShuffleActive = shuffle
	if shuffle {
		original, err := loadItems(ctx, db, listOriginal)
		if err != nil {
			return nil, err
		}
		snap.Queue.OriginalOrder = original
		if snap.Queue.OriginalOrder == nil {
			snap.Queue.OriginalOrder = []playlist.Item{}
		}
	}
	snap.Loop = playback.LoopMode(loop)
	snap.Position = time.Duration(positionMS) * time.Millisecond
	snap.Duration = time.Duration(durationMS) * time.Millisecond
	snap.SavedAt = time.UnixMilli(when)

	if !snap.Valid() {
		return nil, fmt.Errorf("%w: %d items, index %d", ErrCorruptSnapshot, len(live), snap.Queue.CurrentIndex)
	}
	return &snap, nil
}

func loadItems(ctx context.Context, db *sql.DB, list string) ([]playlist.Item, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT position, content_id, instance_id, title, author, duration_ms, artwork, source
		FROM snapshot_items
		WHERE list = ?
		ORDER BY position
	`, list)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []playlist.Item
	for rows.Next() {
		var (
			it              playlist.Item
			position        int
			author, artwork sql.NullString
			durationMS      sql.NullInt64
		)
		err := rows.Scan(&position, &it.ContentID, &it.InstanceID, &it.Title,
			&author, &durationMS, &artwork, &it.SourceLocator)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
		}
		if position != len(items) {
			return nil, fmt.Errorf("%w: %s list has a gap at %d", ErrCorruptSnapshot, list, len(items))
		}
		it.Author = dbutil.String(author)
		it.ArtworkLocator = dbutil.String(artwork)
		it.Duration = dbutil.Duration(durationMS)
		items = append(items, it)
	}
	return items, rows.Err()
}

func saveSnapshot(ctx context.Context, sqlDB *sql.DB, snap playback.Snapshot) error {
	return dbutil.WithTx(ctx, sqlDB, func(tx *sql.Tx) error {
		// Clear existing items
		if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_items`); err != nil {
			return err
		}

		savedAt := snap.SavedAt
		if savedAt.IsZero() {
			savedAt = time.Now()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO session_snapshot (id, current_index, loop_mode, shuffle, position_ms, duration_ms, saved_at)
			VALUES (1, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				current_index = excluded.current_index,
				loop_mode = excluded.loop_mode,
				shuffle = excluded.shuffle,
				position_ms = excluded.position_ms,
				duration_ms = excluded.duration_ms,
				saved_at = excluded.saved_at
		`, snap.Queue.CurrentIndex, int(snap.Loop), snap.Queue.ShuffleActive,
			snap.Position.Milliseconds(), snap.Duration.Milliseconds(), savedAt.UnixMilli())
		if err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO snapshot_items (list, position, content_id, instance_id, title, author, duration_ms, artwork, source)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		insert := func(list string, items []playlist.Item) error {
			for i, it := range items {
				_, err := stmt.ExecContext(ctx, list, i, it.ContentID, it.InstanceID, it.Title,
					dbutil.NullString(it.Author), dbutil.Millis(it.Duration),
					dbutil.NullString(it.ArtworkLocator), it.SourceLocator)
				if err != nil {
					return err
				}
			}
			return nil
		}
		if err := insert(listLive, snap.Queue.Items); err != nil {
			return err
		}
		if snap.Queue.ShuffleActive {
			return insert(listOriginal, snap.Queue.OriginalOrder)
		}
		return nil
	})
}

func clearSnapshot(ctx context.Context, sqlDB *sql.DB) error {
	return dbutil.WithTx(ctx, sqlDB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_items`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM session_snapshot`)
		return err
	})
}
