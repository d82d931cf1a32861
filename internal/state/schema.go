package state

import (
	"database/sql"
)

const currentSchemaVersion = 1

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS session_snapshot (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			current_index INTEGER NOT NULL,
			loop_mode INTEGER NOT NULL DEFAULT 0,
			shuffle INTEGER NOT NULL DEFAULT 0,
			position_ms INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			saved_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS snapshot_items (
			list TEXT NOT NULL CHECK (list IN ('live', 'original')),
			position INTEGER NOT NULL,
			content_id TEXT NOT NULL,
			instance_id TEXT NOT NULL,
			title TEXT NOT NULL,
			author TEXT,
			duration_ms INTEGER,
			artwork TEXT,
			source TEXT NOT NULL,
			PRIMARY KEY (list, position)
		);
	`)
	if err != nil {
		return err
	}

	// Set initial version if not exists
	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	return err
}
