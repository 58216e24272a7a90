package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"media-catalog/internal/catalog"
	"media-catalog/internal/logging"
	"media-catalog/internal/mediatypes"
	"media-catalog/internal/metrics"
)

const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS media_items (
	id BIGSERIAL PRIMARY KEY,
	path TEXT NOT NULL UNIQUE,
	file_name TEXT NOT NULL,
	file_size BIGINT NOT NULL DEFAULT 0,
	file_extension TEXT NOT NULL DEFAULT '',
	media_type TEXT NOT NULL,
	video_length DOUBLE PRECISION,
	content_hash TEXT NOT NULL DEFAULT '',
	created_at BIGINT NOT NULL,
	updated_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_media_items_hash ON media_items(content_hash);
CREATE INDEX IF NOT EXISTS idx_media_items_type ON media_items(media_type);
CREATE TABLE IF NOT EXISTS thumbnails (
	media_id BIGINT PRIMARY KEY REFERENCES media_items(id) ON DELETE CASCADE,
	data BYTEA NOT NULL,
	mime_type TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

const entryColumns = `id, path, file_name, file_size, file_extension, media_type,
	video_length, content_hash, created_at, updated_at`

// Store is a catalog.Store backed by PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ catalog.Store = (*Store)(nil)

// Connect opens a pool for dsn and makes sure the schema exists.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 8
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logging.Info("PostgreSQL catalog ready (%s@%s/%s)", cfg.ConnConfig.User, cfg.ConnConfig.Host, cfg.ConnConfig.Database)
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { recordQuery("initialize_schema", start, err) }()

	if _, err = s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Close releases the pool. It always returns nil.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// UpdateDBMetrics publishes the pool's connection count.
func (s *Store) UpdateDBMetrics() {
	metrics.DBConnectionsOpen.Set(float64(s.pool.Stat().TotalConns()))
}

func recordQuery(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func storageErr(op, path string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		err = fmt.Errorf("%w: %w", catalog.ErrDuplicatePath, err)
	}
	return catalog.StorageError(op, path, err)
}

func scanEntry(row pgx.Row) (catalog.Entry, error) {
	var (
		e         catalog.Entry
		mediaType string
		hash      string
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(&e.ID, &e.Path, &e.FileName, &e.FileSize, &e.Extension, &mediaType,
		&e.VideoLength, &hash, &createdAt, &updatedAt)
	if err != nil {
		return catalog.Entry{}, err
	}
	e.MediaType = mediatypes.MediaType(mediaType)
	e.ContentHash = catalog.ContentHash(hash)
	e.CreatedAt = time.Unix(0, createdAt).UTC()
	e.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return e, nil
}

func (s *Store) queryEntries(ctx context.Context, op, query string, args ...any) (entries []catalog.Entry, err error) {
	start := time.Now()
	defer func() { recordQuery(op, start, err) }()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		e, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AllEntries returns every cataloged entry ordered by id.
func (s *Store) AllEntries(ctx context.Context) ([]catalog.Entry, error) {
	entries, err := s.queryEntries(ctx, "all_entries", `SELECT `+entryColumns+` FROM media_items ORDER BY id`)
	if err != nil {
		return nil, storageErr("all entries", "", err)
	}
	return entries, nil
}

// EntryByPath returns the entry at path, or nil when there is none.
func (s *Store) EntryByPath(ctx context.Context, path string) (entry *catalog.Entry, err error) {
	start := time.Now()
	defer func() { recordQuery("entry_by_path", start, err) }()

	e, err := scanEntry(s.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM media_items WHERE path = $1`, path))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("entry by path", path, err)
	}
	return &e, nil
}

// EntriesByHash returns entries sharing hash, oldest id first.
func (s *Store) EntriesByHash(ctx context.Context, hash catalog.ContentHash) ([]catalog.Entry, error) {
	entries, err := s.queryEntries(ctx, "entries_by_hash",
		`SELECT `+entryColumns+` FROM media_items WHERE content_hash = $1 ORDER BY id`, string(hash))
	if err != nil {
		return nil, storageErr("entries by hash", "", err)
	}
	return entries, nil
}

// InsertEntry stores e and returns the id assigned to it.
func (s *Store) InsertEntry(ctx context.Context, e *catalog.Entry) (id int64, err error) {
	start := time.Now()
	defer func() { recordQuery("insert_entry", start, err) }()

	fileName := e.FileName
	if fileName == "" {
		fileName = catalog.FileNameOf(e.Path)
	}
	mediaType := e.MediaType
	if mediaType == "" {
		mediaType = mediatypes.MediaTypeUnknown
	}
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	err = s.pool.QueryRow(ctx, `
		INSERT INTO media_items (path, file_name, file_size, file_extension, media_type,
			video_length, content_hash, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id
	`, e.Path, fileName, e.FileSize, e.Extension, string(mediaType),
		e.VideoLength, string(e.ContentHash), createdAt.UnixNano(), e.UpdatedAt.UnixNano()).Scan(&id)
	if err != nil {
		return 0, storageErr("insert entry", e.Path, err)
	}
	return id, nil
}

func (s *Store) execUpdate(ctx context.Context, op, label, path, query string, args ...any) (changed bool, err error) {
	start := time.Now()
	defer func() { recordQuery(op, start, err) }()

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, storageErr(label, path, err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateEntryMetadata records a new hash, size and modification time for
// the entry at path.
func (s *Store) UpdateEntryMetadata(ctx context.Context, path string, hash catalog.ContentHash, size int64, updatedAt time.Time) (bool, error) {
	return s.execUpdate(ctx, "update_entry_metadata", "update entry metadata", path, `
		UPDATE media_items SET content_hash = $1, file_size = $2, updated_at = $3
		WHERE path = $4
	`, string(hash), size, updatedAt.UnixNano(), path)
}

// UpdateEntryPath moves the entry at oldPath to newPath, keeping its id.
func (s *Store) UpdateEntryPath(ctx context.Context, oldPath, newPath string, updatedAt time.Time) (bool, error) {
	return s.execUpdate(ctx, "update_entry_path", "update entry path", oldPath, `
		UPDATE media_items SET path = $1, file_name = $2, updated_at = $3
		WHERE path = $4
	`, newPath, catalog.FileNameOf(newPath), updatedAt.UnixNano(), oldPath)
}

// DeleteEntryByPath removes the entry at path; its thumbnail goes with it.
func (s *Store) DeleteEntryByPath(ctx context.Context, path string) (bool, error) {
	return s.execUpdate(ctx, "delete_entry", "delete entry", path,
		`DELETE FROM media_items WHERE path = $1`, path)
}

// UpsertThumbnail stores thumb, replacing any earlier thumbnail of the entry.
func (s *Store) UpsertThumbnail(ctx context.Context, thumb catalog.Thumbnail) (err error) {
	start := time.Now()
	defer func() { recordQuery("upsert_thumbnail", start, err) }()

	txStart := time.Now()
	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO thumbnails (media_id, data, mime_type, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (media_id) DO UPDATE SET
				data = EXCLUDED.data,
				mime_type = EXCLUDED.mime_type,
				updated_at = EXCLUDED.updated_at
		`, thumb.EntryID, thumb.Data, thumb.MimeType)
		return err
	})
	txType := "commit"
	if err != nil {
		txType = "rollback"
	}
	metrics.DBTransactionDuration.WithLabelValues(txType).Observe(time.Since(txStart).Seconds())
	if err != nil {
		return storageErr("upsert thumbnail", fmt.Sprintf("entry %d", thumb.EntryID), err)
	}
	return nil
}

// ThumbnailByEntryID returns the thumbnail of entry id, or nil when it has none.
func (s *Store) ThumbnailByEntryID(ctx context.Context, id int64) (thumb *catalog.Thumbnail, err error) {
	start := time.Now()
	defer func() { recordQuery("get_thumbnail", start, err) }()

	t := catalog.Thumbnail{EntryID: id}
	err = s.pool.QueryRow(ctx, `SELECT data, mime_type FROM thumbnails WHERE media_id = $1`, id).
		Scan(&t.Data, &t.MimeType)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get thumbnail", fmt.Sprintf("entry %d", id), err)
	}
	return &t, nil
}

// Stats summarizes the catalog in a single query.
func (s *Store) Stats(ctx context.Context) (stats catalog.Stats, err error) {
	start := time.Now()
	defer func() { recordQuery("stats", start, err) }()

	var entries, images, videos, thumbs int64
	err = s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM media_items),
			(SELECT COUNT(*) FROM media_items WHERE media_type = $1),
			(SELECT COUNT(*) FROM media_items WHERE media_type = $2),
			(SELECT COUNT(*) FROM thumbnails),
			(SELECT COALESCE(SUM(file_size), 0)::BIGINT FROM media_items)
	`, string(mediatypes.MediaTypeImage), string(mediatypes.MediaTypeVideo)).
		Scan(&entries, &images, &videos, &thumbs, &stats.TotalBytes)
	if err != nil {
		return catalog.Stats{}, storageErr("stats", "", err)
	}
	stats.TotalEntries = int(entries)
	stats.TotalImages = int(images)
	stats.TotalVideos = int(videos)
	stats.TotalThumbnails = int(thumbs)
	return stats, nil
}
