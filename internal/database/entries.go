package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"media-catalog/internal/catalog"
	"media-catalog/internal/mediatypes"
)

var _ catalog.Store = (*Database)(nil)

const entryColumns = `id, path, file_name, file_size, file_extension, media_type,
	video_length, content_hash, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (catalog.Entry, error) {
	var (
		e           catalog.Entry
		mediaType   string
		hash        string
		videoLength sql.NullFloat64
		createdAt   int64
		updatedAt   int64
	)
	err := row.Scan(&e.ID, &e.Path, &e.FileName, &e.FileSize, &e.Extension, &mediaType,
		&videoLength, &hash, &createdAt, &updatedAt)
	if err != nil {
		return catalog.Entry{}, err
	}
	e.MediaType = mediatypes.MediaType(mediaType)
	e.ContentHash = catalog.ContentHash(hash)
	if videoLength.Valid {
		v := videoLength.Float64
		e.VideoLength = &v
	}
	e.CreatedAt = time.Unix(0, createdAt).UTC()
	e.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return e, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

// storageErr wraps err as a catalog storage failure, mapping unique
// constraint violations on path to catalog.ErrDuplicatePath.
func storageErr(op, path string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		err = fmt.Errorf("%w: %w", catalog.ErrDuplicatePath, err)
	}
	return catalog.StorageError(op, path, err)
}

func (d *Database) queryEntries(ctx context.Context, op, query string, args ...any) (entries []catalog.Entry, err error) {
	start := time.Now()
	defer func() { recordQuery(op, start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, query, args...)
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
func (d *Database) AllEntries(ctx context.Context) ([]catalog.Entry, error) {
	entries, err := d.queryEntries(ctx, "all_entries",
		`SELECT `+entryColumns+` FROM media_items ORDER BY id`)
	if err != nil {
		return nil, storageErr("all entries", "", err)
	}
	return entries, nil
}

// EntryByPath returns the entry at path, or nil when there is none.
func (d *Database) EntryByPath(ctx context.Context, path string) (entry *catalog.Entry, err error) {
	start := time.Now()
	defer func() { recordQuery("entry_by_path", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	e, err := scanEntry(d.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM media_items WHERE path = ?`, path))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("entry by path", path, err)
	}
	return &e, nil
}

// EntriesByHash returns entries sharing hash, oldest id first.
func (d *Database) EntriesByHash(ctx context.Context, hash catalog.ContentHash) ([]catalog.Entry, error) {
	entries, err := d.queryEntries(ctx, "entries_by_hash",
		`SELECT `+entryColumns+` FROM media_items WHERE content_hash = ? ORDER BY id`, string(hash))
	if err != nil {
		return nil, storageErr("entries by hash", "", err)
	}
	return entries, nil
}

// InsertEntry stores e and returns the id assigned to it.
func (d *Database) InsertEntry(ctx context.Context, e *catalog.Entry) (id int64, err error) {
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

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := d.db.ExecContext(ctx, `
		INSERT INTO media_items (path, file_name, file_size, file_extension, media_type,
			video_length, content_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.Path, fileName, e.FileSize, e.Extension, string(mediaType),
		nullFloat(e.VideoLength), string(e.ContentHash), createdAt.UnixNano(), e.UpdatedAt.UnixNano())
	if err != nil {
		return 0, storageErr("insert entry", e.Path, err)
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, storageErr("insert entry", e.Path, err)
	}
	return id, nil
}

// execUpdate runs a single-row write and reports whether a row changed.
func (d *Database) execUpdate(ctx context.Context, op, label, path, query string, args ...any) (changed bool, err error) {
	start := time.Now()
	defer func() { recordQuery(op, start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, storageErr(label, path, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storageErr(label, path, err)
	}
	return n > 0, nil
}

// UpdateEntryMetadata records a new hash, size and modification time for
// the entry at path.
func (d *Database) UpdateEntryMetadata(ctx context.Context, path string, hash catalog.ContentHash, size int64, updatedAt time.Time) (bool, error) {
	return d.execUpdate(ctx, "update_entry_metadata", "update entry metadata", path, `
		UPDATE media_items SET content_hash = ?, file_size = ?, updated_at = ?
		WHERE path = ?
	`, string(hash), size, updatedAt.UnixNano(), path)
}

// UpdateEntryPath moves the entry at oldPath to newPath, keeping its id.
func (d *Database) UpdateEntryPath(ctx context.Context, oldPath, newPath string, updatedAt time.Time) (bool, error) {
	return d.execUpdate(ctx, "update_entry_path", "update entry path", oldPath, `
		UPDATE media_items SET path = ?, file_name = ?, updated_at = ?
		WHERE path = ?
	`, newPath, catalog.FileNameOf(newPath), updatedAt.UnixNano(), oldPath)
}

// DeleteEntryByPath removes the entry at path together with its thumbnail.
func (d *Database) DeleteEntryByPath(ctx context.Context, path string) (deleted bool, err error) {
	start := time.Now()
	defer func() { recordQuery("delete_entry", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = d.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM thumbnails
			WHERE media_id IN (SELECT id FROM media_items WHERE path = ?)
		`, path); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM media_items WHERE path = ?`, path)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		deleted = n > 0
		return nil
	})
	if err != nil {
		return false, storageErr("delete entry", path, err)
	}
	return deleted, nil
}

// UpsertThumbnail stores thumb, replacing any earlier thumbnail of the entry.
func (d *Database) UpsertThumbnail(ctx context.Context, thumb catalog.Thumbnail) (err error) {
	start := time.Now()
	defer func() { recordQuery("upsert_thumbnail", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO thumbnails (media_id, data, mime_type, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(media_id) DO UPDATE SET
			data = excluded.data,
			mime_type = excluded.mime_type,
			updated_at = excluded.updated_at
	`, thumb.EntryID, thumb.Data, thumb.MimeType, time.Now().Unix())
	if err != nil {
		return storageErr("upsert thumbnail", fmt.Sprintf("entry %d", thumb.EntryID), err)
	}
	return nil
}

// ThumbnailByEntryID returns the thumbnail of entry id, or nil when it has none.
func (d *Database) ThumbnailByEntryID(ctx context.Context, id int64) (thumb *catalog.Thumbnail, err error) {
	start := time.Now()
	defer func() { recordQuery("get_thumbnail", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	t := catalog.Thumbnail{EntryID: id}
	err = d.db.QueryRowContext(ctx,
		`SELECT data, mime_type FROM thumbnails WHERE media_id = ?`, id).Scan(&t.Data, &t.MimeType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get thumbnail", fmt.Sprintf("entry %d", id), err)
	}
	return &t, nil
}

// Stats summarizes the catalog in a single query.
func (d *Database) Stats(ctx context.Context) (stats catalog.Stats, err error) {
	start := time.Now()
	defer func() { recordQuery("stats", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = d.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM media_items),
			(SELECT COUNT(*) FROM media_items WHERE media_type = ?),
			(SELECT COUNT(*) FROM media_items WHERE media_type = ?),
			(SELECT COUNT(*) FROM thumbnails),
			(SELECT COALESCE(SUM(file_size), 0) FROM media_items)
	`, string(mediatypes.MediaTypeImage), string(mediatypes.MediaTypeVideo)).Scan(
		&stats.TotalEntries, &stats.TotalImages, &stats.TotalVideos,
		&stats.TotalThumbnails, &stats.TotalBytes)
	if err != nil {
		return catalog.Stats{}, storageErr("stats", "", err)
	}
	return stats, nil
}
