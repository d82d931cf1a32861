// Package db has the SQL helpers shared by the stores.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// WithTx runs fn in a transaction, committing when fn returns nil and
// rolling back otherwise.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// NullString stores the empty string as NULL.
func NullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// String reads a nullable text column.
func String(n sql.NullString) string {
	if !n.Valid {
		return ""
	}
	return n.String
}

// Millis stores a duration as whole milliseconds.
func Millis(d time.Duration) int64 {
	return d.Milliseconds()
}

// Duration reads a nullable millisecond column. NULL is zero.
func Duration(ms sql.NullInt64) time.Duration {
	if !ms.Valid {
		return 0
	}
	return time.Duration(ms.Int64) * time.Millisecond
}
