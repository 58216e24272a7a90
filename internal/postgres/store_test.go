package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"media-catalog/internal/catalog"
	"media-catalog/internal/mediatypes"
)

const dsnEnv = "MEDIA_CATALOG_TEST_POSTGRES_DSN"

// setupStore connects to the database named by MEDIA_CATALOG_TEST_POSTGRES_DSN
// and empties the catalog tables. Tests in this package share that database
// and must not run in parallel.
func setupStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		t.Skipf("%s not set", dsnEnv)
	}

	ctx := context.Background()
	s, err := Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if _, err := s.pool.Exec(ctx, `TRUNCATE thumbnails, media_items RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func insert(t *testing.T, s *Store, path string, hash catalog.ContentHash, mt mediatypes.MediaType) int64 {
	t.Helper()
	id, err := s.InsertEntry(context.Background(), &catalog.Entry{
		Path:        path,
		FileSize:    10,
		Extension:   mediatypes.ExtensionOf(path),
		MediaType:   mt,
		ContentHash: hash,
		UpdatedAt:   time.Unix(1700000000, 987654321),
	})
	if err != nil {
		t.Fatalf("InsertEntry(%s) error = %v", path, err)
	}
	return id
}

func TestConnectBadDSN(t *testing.T) {
	if _, err := Connect(context.Background(), "::not a dsn::"); err == nil {
		t.Error("Connect() with malformed DSN succeeded")
	}
}

func TestStoreEntryLifecycle(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	length := 3.25
	id, err := s.InsertEntry(ctx, &catalog.Entry{
		Path:        "/media/a.mkv",
		FileSize:    99,
		Extension:   "mkv",
		MediaType:   mediatypes.MediaTypeVideo,
		VideoLength: &length,
		ContentHash: "h1",
		UpdatedAt:   time.Unix(1700000000, 7),
	})
	if err != nil {
		t.Fatalf("InsertEntry() error = %v", err)
	}

	got, err := s.EntryByPath(ctx, "/media/a.mkv")
	if err != nil || got == nil {
		t.Fatalf("EntryByPath() = %v, %v", got, err)
	}
	if got.ID != id || got.FileName != "a.mkv" || got.VideoLength == nil || *got.VideoLength != length {
		t.Errorf("entry = %+v", got)
	}
	if !got.UpdatedAt.Equal(time.Unix(1700000000, 7)) {
		t.Errorf("UpdatedAt = %v, want nanosecond precision", got.UpdatedAt)
	}

	if missing, err := s.EntryByPath(ctx, "/media/none.mkv"); err != nil || missing != nil {
		t.Errorf("EntryByPath(missing) = %v, %v", missing, err)
	}

	when := time.Unix(1700000500, 0)
	if ok, err := s.UpdateEntryMetadata(ctx, "/media/a.mkv", "h2", 100, when); err != nil || !ok {
		t.Fatalf("UpdateEntryMetadata() = %v, %v", ok, err)
	}
	if ok, err := s.UpdateEntryPath(ctx, "/media/a.mkv", "/media/sub/b.mkv", when); err != nil || !ok {
		t.Fatalf("UpdateEntryPath() = %v, %v", ok, err)
	}

	moved, err := s.EntryByPath(ctx, "/media/sub/b.mkv")
	if err != nil || moved == nil {
		t.Fatalf("EntryByPath(moved) = %v, %v", moved, err)
	}
	if moved.ID != id || moved.FileName != "b.mkv" || moved.ContentHash != "h2" || moved.FileSize != 100 {
		t.Errorf("moved = %+v", moved)
	}

	if err := s.UpsertThumbnail(ctx, catalog.Thumbnail{EntryID: id, Data: []byte{9}, MimeType: "image/jpeg"}); err != nil {
		t.Fatalf("UpsertThumbnail() error = %v", err)
	}
	if ok, err := s.DeleteEntryByPath(ctx, "/media/sub/b.mkv"); err != nil || !ok {
		t.Fatalf("DeleteEntryByPath() = %v, %v", ok, err)
	}
	if thumb, err := s.ThumbnailByEntryID(ctx, id); err != nil || thumb != nil {
		t.Errorf("thumbnail survived its entry: %v, %v", thumb, err)
	}
	if ok, err := s.DeleteEntryByPath(ctx, "/media/sub/b.mkv"); err != nil || ok {
		t.Errorf("second delete = %v, %v", ok, err)
	}
}

func TestStoreHashOrderAndDuplicates(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	first := insert(t, s, "/m/z.jpg", "same", mediatypes.MediaTypeImage)
	second := insert(t, s, "/m/a.jpg", "same", mediatypes.MediaTypeImage)

	entries, err := s.EntriesByHash(ctx, "same")
	if err != nil || len(entries) != 2 || entries[0].ID != first || entries[1].ID != second {
		t.Fatalf("EntriesByHash() = %+v, %v", entries, err)
	}

	_, err = s.InsertEntry(ctx, &catalog.Entry{Path: "/m/a.jpg"})
	if !errors.Is(err, catalog.ErrDuplicatePath) || !errors.Is(err, catalog.ErrStorage) {
		t.Errorf("duplicate insert error = %v", err)
	}
}

func TestStoreThumbnailsAndStats(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	img := insert(t, s, "/m/a.jpg", "h1", mediatypes.MediaTypeImage)
	insert(t, s, "/m/b.mp4", "h2", mediatypes.MediaTypeVideo)

	for _, data := range [][]byte{{1}, {2, 3}} {
		if err := s.UpsertThumbnail(ctx, catalog.Thumbnail{EntryID: img, Data: data, MimeType: "image/jpeg"}); err != nil {
			t.Fatalf("UpsertThumbnail() error = %v", err)
		}
	}
	thumb, err := s.ThumbnailByEntryID(ctx, img)
	if err != nil || thumb == nil || len(thumb.Data) != 2 {
		t.Fatalf("ThumbnailByEntryID() = %+v, %v", thumb, err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	want := catalog.Stats{TotalEntries: 2, TotalImages: 1, TotalVideos: 1, TotalThumbnails: 1, TotalBytes: 20}
	if stats != want {
		t.Errorf("Stats() = %+v, want %+v", stats, want)
	}

	all, err := s.AllEntries(ctx)
	if err != nil || len(all) != 2 {
		t.Errorf("AllEntries() = %d, %v", len(all), err)
	}
	s.UpdateDBMetrics()
}
