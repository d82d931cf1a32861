package state

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/llehouerou/reprise/internal/playback"
	"github.com/llehouerou/reprise/internal/playlist"
)

// setupTestDB creates an in-memory SQLite database with the schema initialized.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		t.Fatalf("failed to init schema: %v", err)
	}

	return db
}

func testItem(id string) playlist.Item {
	return playlist.Item{
		ContentID:      id,
		InstanceID:     "inst-" + id,
		Title:          "Title " + id,
		Author:         "Artist " + id,
		Duration:       200 * time.Second,
		ArtworkLocator: "/music/" + id + "/cover.jpg",
		SourceLocator:  "/music/" + id + ".flac",
	}
}

func testSnapshot() playback.Snapshot {
	return playback.Snapshot{
		Queue: playlist.QueueState{
			Items:        []playlist.Item{testItem("a"), testItem("b")},
			CurrentIndex: 1,
		},
		Loop:     playback.LoopQueue,
		Position: 42 * time.Second,
		Duration: 200 * time.Second,
		SavedAt:  time.UnixMilli(1_700_000_000_000),
	}
}

// TestLoadSnapshot_Empty tests loading from an empty database.
func TestLoadSnapshot_Empty(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	snap, err := loadSnapshot(context.Background(), db)
	if err != nil {
		t.Fatalf("loadSnapshot failed: %v", err)
	}
	if snap != nil {
		t.Errorf("expected nil snapshot on empty db, got %+v", snap)
	}
}

// TestSaveAndLoadSnapshot tests a full round trip.
func TestSaveAndLoadSnapshot(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	want := testSnapshot()
	if err := saveSnapshot(ctx, db, want); err != nil {
		t.Fatalf("saveSnapshot failed: %v", err)
	}

	got, err := loadSnapshot(ctx, db)
	if err != nil {
		t.Fatalf("loadSnapshot failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected snapshot, got nil")
	}
	if got.Queue.CurrentIndex != 1 {
		t.Errorf("CurrentIndex = %d, want 1", got.Queue.CurrentIndex)
	}
	if got.Loop != playback.LoopQueue {
		t.Errorf("Loop = %v, want Queue", got.Loop)
	}
	if got.Position != 42*time.Second {
		t.Errorf("Position = %v, want 42s", got.Position)
	}
	if got.Duration != 200*time.Second {
		t.Errorf("Duration = %v, want 200s", got.Duration)
	}
	if !got.SavedAt.Equal(want.SavedAt) {
		t.Errorf("SavedAt = %v, want %v", got.SavedAt, want.SavedAt)
	}
	if len(got.Queue.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(got.Queue.Items))
	}
	if got.Queue.Items[1] != want.Queue.Items[1] {
		t.Errorf("Items[1] = %+v, want %+v", got.Queue.Items[1], want.Queue.Items[1])
	}
	if got.Queue.ShuffleActive || got.Queue.OriginalOrder != nil {
		t.Error("unshuffled snapshot should come back unshuffled")
	}
}

// TestSaveSnapshot_Shuffled tests that the pre-shuffle order is kept.
func TestSaveSnapshot_Shuffled(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	a, b, c := testItem("a"), testItem("b"), testItem("c")
	snap := testSnapshot()
	snap.Queue = playlist.QueueState{
		Items:         []playlist.Item{b, c, a},
		CurrentIndex:  0,
		ShuffleActive: true,
		OriginalOrder: []playlist.Item{a, b, c},
	}
	if err := saveSnapshot(ctx, db, snap); err != nil {
		t.Fatalf("saveSnapshot failed: %v", err)
	}

	got, err := loadSnapshot(ctx, db)
	if err != nil {
		t.Fatalf("loadSnapshot failed: %v", err)
	}
	if !got.Queue.ShuffleActive {
		t.Fatal("ShuffleActive = false, want true")
	}
	wantOrder := []string{"a", "b", "c"}
	for i, it := range got.Queue.OriginalOrder {
		if it.ContentID != wantOrder[i] {
			t.Errorf("OriginalOrder[%d] = %q, want %q", i, it.ContentID, wantOrder[i])
		}
	}
	if got.Queue.Items[0].ContentID != "b" {
		t.Errorf("Items[0] = %q, want b", got.Queue.Items[0].ContentID)
	}
}

// TestSaveSnapshot_Overwrites tests that only the latest snapshot is kept.
func TestSaveSnapshot_Overwrites(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	first := testSnapshot()
	first.Queue.Items = append(first.Queue.Items, testItem("c"))
	if err := saveSnapshot(ctx, db, first); err != nil {
		t.Fatalf("saveSnapshot failed: %v", err)
	}

	second := testSnapshot()
	second.Queue.CurrentIndex = 0
	second.Position = 5 * time.Second
	if err := saveSnapshot(ctx, db, second); err != nil {
		t.Fatalf("saveSnapshot failed: %v", err)
	}

	got, err := loadSnapshot(ctx, db)
	if err != nil {
		t.Fatalf("loadSnapshot failed: %v", err)
	}
	if len(got.Queue.Items) != 2 {
		t.Errorf("len(Items) = %d, want 2", len(got.Queue.Items))
	}
	if got.Queue.CurrentIndex != 0 || got.Position != 5*time.Second {
		t.Errorf("got index %d position %v, want 0 and 5s", got.Queue.CurrentIndex, got.Position)
	}
}

// TestSaveSnapshot_OptionalFields tests that empty author/artwork survive as empty.
func TestSaveSnapshot_OptionalFields(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	snap := testSnapshot()
	snap.Queue.Items[0].Author = ""
	snap.Queue.Items[0].ArtworkLocator = ""
	if err := saveSnapshot(ctx, db, snap); err != nil {
		t.Fatalf("saveSnapshot failed: %v", err)
	}

	got, err := loadSnapshot(ctx, db)
	if err != nil {
		t.Fatalf("loadSnapshot failed: %v", err)
	}
	if got.Queue.Items[0].Author != "" || got.Queue.Items[0].ArtworkLocator != "" {
		t.Errorf("Items[0] = %+v, want empty author and artwork", got.Queue.Items[0])
	}
}

// TestLoadSnapshot_Corrupt tests that inconsistent records are reported as corrupt.
func TestLoadSnapshot_Corrupt(t *testing.T) {
	tests := []struct {
		name    string
		corrupt string
	}{
		{"index out of range", `UPDATE session_snapshot SET current_index = 7`},
		{"no items", `DELETE FROM snapshot_items`},
		{"gap in positions", `DELETE FROM snapshot_items WHERE position = 0`},
		{"duplicate instance", `UPDATE snapshot_items SET instance_id = 'same'`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()
			ctx := context.Background()

			if err := saveSnapshot(ctx, db, testSnapshot()); err != nil {
				t.Fatalf("saveSnapshot failed: %v", err)
			}
			if _, err := db.Exec(tt.corrupt); err != nil {
				t.Fatalf("corrupting failed: %v", err)
			}

			snap, err := loadSnapshot(ctx, db)
			if !errors.Is(err, ErrCorruptSnapshot) {
				t.Errorf("loadSnapshot error = %v, want ErrCorruptSnapshot", err)
			}
			if snap != nil {
				t.Errorf("expected nil snapshot, got %+v", snap)
			}
		})
	}
}

// TestClearSnapshot tests deleting the stored snapshot.
func TestClearSnapshot(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	if err := saveSnapshot(ctx, db, testSnapshot()); err != nil {
		t.Fatalf("saveSnapshot failed: %v", err)
	}
	if err := clearSnapshot(ctx, db); err != nil {
		t.Fatalf("clearSnapshot failed: %v", err)
	}

	snap, err := loadSnapshot(ctx, db)
	if err != nil {
		t.Fatalf("loadSnapshot failed: %v", err)
	}
	if snap != nil {
		t.Errorf("expected nil snapshot after clear, got %+v", snap)
	}
}

// TestInitSchema_Idempotent tests that the schema can be applied twice.
func TestInitSchema_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := initSchema(db); err != nil {
		t.Fatalf("second initSchema failed: %v", err)
	}

	var version int
	if err := db.QueryRow(`SELECT version FROM schema_version`).Scan(&version); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("version = %d, want %d", version, currentSchemaVersion)
	}
}

// TestManager_FileRoundTrip tests the manager against a database file.
func TestManager_FileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "reprise.db")
	ctx := context.Background()

	m, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := m.SaveSnapshot(ctx, testSnapshot()); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	m, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer m.Close()

	snap, err := m.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if snap == nil || snap.Current().ContentID != "b" {
		t.Errorf("snapshot current = %+v, want b", snap)
	}
}

func TestMock_BlockSaves(t *testing.T) {
	m := NewMock()
	release := m.BlockSaves()

	done := make(chan error, 1)
	go func() { done <- m.SaveSnapshot(context.Background(), testSnapshot()) }()

	select {
	case <-done:
		t.Fatal("save should block until released")
	case <-time.After(20 * time.Millisecond):
	}

	release()
	if err := <-done; err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if len(m.Saves()) != 1 {
		t.Errorf("len(Saves()) = %d, want 1", len(m.Saves()))
	}
}
