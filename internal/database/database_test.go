package database

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"media-catalog/internal/catalog"
	"media-catalog/internal/mediatypes"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping SQLite integration test in short mode")
	}

	db, err := New(context.Background(), filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func insert(t *testing.T, db *Database, path string, hash catalog.ContentHash, mt mediatypes.MediaType) int64 {
	t.Helper()
	id, err := db.InsertEntry(context.Background(), &catalog.Entry{
		Path:        path,
		FileSize:    10,
		Extension:   mediatypes.ExtensionOf(path),
		MediaType:   mt,
		ContentHash: hash,
		UpdatedAt:   time.Unix(1700000000, 123456789),
	})
	if err != nil {
		t.Fatalf("InsertEntry(%s) error = %v", path, err)
	}
	return id
}

func TestRecordQuery(t *testing.T) {
	t.Parallel()

	// Must not panic for either outcome.
	recordQuery("stats", time.Now(), nil)
	recordQuery("stats", time.Now(), errors.New("boom"))
}

func TestNewCreatesSchema(t *testing.T) {
	db := setupTestDB(t)

	for _, table := range []string{"media_items", "thumbnails", "metadata"} {
		var n int
		err := db.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&n)
		if err != nil || n != 1 {
			t.Errorf("table %s: count=%d err=%v", table, n, err)
		}
	}

	if db.Path() == "" {
		t.Error("Path() is empty")
	}
}

func TestNewIsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping SQLite integration test in short mode")
	}
	path := filepath.Join(t.TempDir(), "catalog.db")
	ctx := context.Background()

	db, err := New(ctx, path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	insert(t, db, "/media/a.jpg", "h1", mediatypes.MediaTypeImage)
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	db, err = New(ctx, path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer db.Close()

	e, err := db.EntryByPath(ctx, "/media/a.jpg")
	if err != nil || e == nil {
		t.Fatalf("EntryByPath after reopen = %v, %v", e, err)
	}
}

func TestMigrationAddsContentHash(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping SQLite integration test in short mode")
	}
	path := filepath.Join(t.TempDir(), "old.db")
	ctx := context.Background()

	db, err := New(ctx, path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	// Rebuild media_items the way earlier releases laid it out.
	for _, stmt := range []string{
		`DROP INDEX idx_media_items_hash`,
		`DROP TABLE thumbnails`,
		`DROP TABLE media_items`,
		`CREATE TABLE media_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL UNIQUE,
			file_name TEXT NOT NULL,
			file_size INTEGER NOT NULL DEFAULT 0,
			file_extension TEXT NOT NULL DEFAULT '',
			media_type TEXT NOT NULL,
			video_length REAL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`INSERT INTO media_items (path, file_name, media_type, created_at, updated_at)
			VALUES ('/media/old.jpg', 'old.jpg', 'image', 1, 2)`,
	} {
		if _, err := db.db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
	db.Close()

	db, err = New(ctx, path)
	if err != nil {
		t.Fatalf("New() after downgrade error = %v", err)
	}
	defer db.Close()

	e, err := db.EntryByPath(ctx, "/media/old.jpg")
	if err != nil || e == nil {
		t.Fatalf("EntryByPath = %v, %v", e, err)
	}
	if e.ContentHash != "" {
		t.Errorf("ContentHash = %q, want empty", e.ContentHash)
	}
}

func TestEntryLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	length := 12.5
	id, err := db.InsertEntry(ctx, &catalog.Entry{
		Path:        "/media/clips/a.mp4",
		FileSize:    2048,
		Extension:   "mp4",
		MediaType:   mediatypes.MediaTypeVideo,
		VideoLength: &length,
		ContentHash: "abc",
		UpdatedAt:   time.Unix(1700000000, 5),
	})
	if err != nil {
		t.Fatalf("InsertEntry() error = %v", err)
	}

	got, err := db.EntryByPath(ctx, "/media/clips/a.mp4")
	if err != nil || got == nil {
		t.Fatalf("EntryByPath() = %v, %v", got, err)
	}
	if got.ID != id || got.FileName != "a.mp4" || got.FileSize != 2048 {
		t.Errorf("unexpected entry %+v", got)
	}
	if got.VideoLength == nil || *got.VideoLength != 12.5 {
		t.Errorf("VideoLength = %v, want 12.5", got.VideoLength)
	}
	if !got.UpdatedAt.Equal(time.Unix(1700000000, 5)) {
		t.Errorf("UpdatedAt = %v, want nanosecond precision kept", got.UpdatedAt)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	newTime := time.Unix(1700000100, 0)
	ok, err := db.UpdateEntryMetadata(ctx, "/media/clips/a.mp4", "def", 4096, newTime)
	if err != nil || !ok {
		t.Fatalf("UpdateEntryMetadata() = %v, %v", ok, err)
	}
	ok, err = db.UpdateEntryPath(ctx, "/media/clips/a.mp4", "/media/b.mp4", newTime)
	if err != nil || !ok {
		t.Fatalf("UpdateEntryPath() = %v, %v", ok, err)
	}

	if old, _ := db.EntryByPath(ctx, "/media/clips/a.mp4"); old != nil {
		t.Error("old path still cataloged")
	}
	moved, err := db.EntryByPath(ctx, "/media/b.mp4")
	if err != nil || moved == nil {
		t.Fatalf("EntryByPath(new) = %v, %v", moved, err)
	}
	if moved.ID != id || moved.FileName != "b.mp4" || moved.ContentHash != "def" || moved.FileSize != 4096 {
		t.Errorf("moved entry = %+v", moved)
	}

	ok, err = db.UpdateEntryMetadata(ctx, "/media/missing.mp4", "x", 1, newTime)
	if err != nil || ok {
		t.Errorf("UpdateEntryMetadata(missing) = %v, %v; want false, nil", ok, err)
	}

	ok, err = db.DeleteEntryByPath(ctx, "/media/b.mp4")
	if err != nil || !ok {
		t.Fatalf("DeleteEntryByPath() = %v, %v", ok, err)
	}
	ok, err = db.DeleteEntryByPath(ctx, "/media/b.mp4")
	if err != nil || ok {
		t.Errorf("second DeleteEntryByPath() = %v, %v; want false, nil", ok, err)
	}
}

func TestIDsAreNotReused(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := insert(t, db, "/m/a.jpg", "h", mediatypes.MediaTypeImage)
	if _, err := db.DeleteEntryByPath(ctx, "/m/a.jpg"); err != nil {
		t.Fatal(err)
	}
	second := insert(t, db, "/m/a.jpg", "h", mediatypes.MediaTypeImage)
	if second <= first {
		t.Errorf("id %d reused or decreased after %d", second, first)
	}
}

func TestDuplicatePath(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	insert(t, db, "/m/a.jpg", "h1", mediatypes.MediaTypeImage)
	insert(t, db, "/m/b.jpg", "h2", mediatypes.MediaTypeImage)

	_, err := db.InsertEntry(ctx, &catalog.Entry{Path: "/m/a.jpg"})
	if !errors.Is(err, catalog.ErrStorage) || !errors.Is(err, catalog.ErrDuplicatePath) {
		t.Errorf("duplicate insert error = %v", err)
	}

	_, err = db.UpdateEntryPath(ctx, "/m/a.jpg", "/m/b.jpg", time.Now())
	if !errors.Is(err, catalog.ErrDuplicatePath) {
		t.Errorf("conflicting move error = %v", err)
	}
}

func TestEntriesByHashOrder(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	a := insert(t, db, "/m/z.jpg", "same", mediatypes.MediaTypeImage)
	insert(t, db, "/m/other.jpg", "different", mediatypes.MediaTypeImage)
	b := insert(t, db, "/m/a.jpg", "same", mediatypes.MediaTypeImage)

	entries, err := db.EntriesByHash(ctx, "same")
	if err != nil {
		t.Fatalf("EntriesByHash() error = %v", err)
	}
	if len(entries) != 2 || entries[0].ID != a || entries[1].ID != b {
		t.Errorf("EntriesByHash() = %+v, want ids [%d %d]", entries, a, b)
	}

	none, err := db.EntriesByHash(ctx, "nothing")
	if err != nil || len(none) != 0 {
		t.Errorf("EntriesByHash(nothing) = %v, %v", none, err)
	}

	all, err := db.AllEntries(ctx)
	if err != nil || len(all) != 3 {
		t.Errorf("AllEntries() = %d entries, %v", len(all), err)
	}
}

func TestThumbnails(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id := insert(t, db, "/m/a.jpg", "h", mediatypes.MediaTypeImage)

	if thumb, err := db.ThumbnailByEntryID(ctx, id); err != nil || thumb != nil {
		t.Fatalf("ThumbnailByEntryID(before) = %v, %v", thumb, err)
	}

	for _, data := range [][]byte{{1, 2, 3}, {4, 5}} {
		if err := db.UpsertThumbnail(ctx, catalog.Thumbnail{EntryID: id, Data: data, MimeType: "image/jpeg"}); err != nil {
			t.Fatalf("UpsertThumbnail() error = %v", err)
		}
	}

	thumb, err := db.ThumbnailByEntryID(ctx, id)
	if err != nil || thumb == nil {
		t.Fatalf("ThumbnailByEntryID() = %v, %v", thumb, err)
	}
	if !bytes.Equal(thumb.Data, []byte{4, 5}) || thumb.MimeType != "image/jpeg" {
		t.Errorf("thumbnail = %+v, want the latest upsert", thumb)
	}

	if err := db.UpsertThumbnail(ctx, catalog.Thumbnail{EntryID: id + 100, Data: []byte{1}, MimeType: "image/jpeg"}); !errors.Is(err, catalog.ErrStorage) {
		t.Errorf("UpsertThumbnail(unknown entry) error = %v, want ErrStorage", err)
	}

	if _, err := db.DeleteEntryByPath(ctx, "/m/a.jpg"); err != nil {
		t.Fatal(err)
	}
	if thumb, err := db.ThumbnailByEntryID(ctx, id); err != nil || thumb != nil {
		t.Errorf("thumbnail survived its entry: %v, %v", thumb, err)
	}
}

func TestStats(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	empty, err := db.Stats(ctx)
	if err != nil || empty != (catalog.Stats{}) {
		t.Fatalf("Stats(empty) = %+v, %v", empty, err)
	}

	img := insert(t, db, "/m/a.jpg", "h1", mediatypes.MediaTypeImage)
	insert(t, db, "/m/b.png", "h2", mediatypes.MediaTypeImage)
	insert(t, db, "/m/c.mp4", "h3", mediatypes.MediaTypeVideo)
	if err := db.UpsertThumbnail(ctx, catalog.Thumbnail{EntryID: img, Data: []byte{1}, MimeType: "image/jpeg"}); err != nil {
		t.Fatal(err)
	}

	got, err := db.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	want := catalog.Stats{TotalEntries: 3, TotalImages: 2, TotalVideos: 1, TotalThumbnails: 1, TotalBytes: 30}
	if got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}

	db.UpdateDBMetrics()
}

func TestLastPass(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	got, err := db.LastPass(ctx)
	if err != nil || !got.IsZero() {
		t.Fatalf("LastPass(never) = %v, %v", got, err)
	}

	when := time.Date(2026, 3, 1, 12, 0, 0, 42, time.UTC)
	if err := db.SetLastPass(ctx, when); err != nil {
		t.Fatalf("SetLastPass() error = %v", err)
	}
	got, err = db.LastPass(ctx)
	if err != nil || !got.Equal(when) {
		t.Errorf("LastPass() = %v, %v; want %v", got, err, when)
	}

	if err := db.SetLastPass(ctx, time.Time{}); err != nil {
		t.Fatal(err)
	}
	if got, _ := db.LastPass(ctx); !got.IsZero() {
		t.Errorf("LastPass() after clear = %v", got)
	}
}

func TestClosedDatabase(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping SQLite integration test in short mode")
	}
	db, err := New(context.Background(), filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	db.Close()

	if _, err := db.AllEntries(context.Background()); !errors.Is(err, catalog.ErrStorage) {
		t.Errorf("AllEntries() after Close error = %v, want ErrStorage", err)
	}
}
