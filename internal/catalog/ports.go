package catalog

import (
	"context"
	"time"

	"media-catalog/internal/mediatypes"
)

// Store is the persisted catalog as seen by the reconciliation engine.
//
// Implementations return errors wrapped as ErrStorage. Lookups that find
// nothing return a nil entry and a nil error.
type Store interface {
	AllEntries(ctx context.Context) ([]Entry, error)
	EntryByPath(ctx context.Context, path string) (*Entry, error)
	// EntriesByHash returns live entries sharing hash, ordered by ascending id.
	EntriesByHash(ctx context.Context, hash ContentHash) ([]Entry, error)
	// InsertEntry stores e and returns its newly assigned id. CreatedAt is
	// set by the store when zero.
	InsertEntry(ctx context.Context, e *Entry) (int64, error)
	UpdateEntryMetadata(ctx context.Context, path string, hash ContentHash, size int64, updatedAt time.Time) (bool, error)
	// UpdateEntryPath moves the entry at oldPath to newPath, refreshing its
	// file name and setting UpdatedAt to the file's modification time.
	UpdateEntryPath(ctx context.Context, oldPath, newPath string, updatedAt time.Time) (bool, error)
	DeleteEntryByPath(ctx context.Context, path string) (bool, error)
	UpsertThumbnail(ctx context.Context, thumb Thumbnail) error
	ThumbnailByEntryID(ctx context.Context, id int64) (*Thumbnail, error)
	Stats(ctx context.Context) (Stats, error)
	Close() error
}

// ThumbnailPort wraps the external encoder used for thumbnails and probing.
type ThumbnailPort interface {
	// ProbeVideoDuration returns the duration in seconds. ok is false when
	// probing failed for any reason.
	ProbeVideoDuration(ctx context.Context, path string) (seconds float64, ok bool)
	// GenerateThumbnail returns encoded thumbnail bytes and their MIME type.
	GenerateThumbnail(ctx context.Context, path string, mediaType mediatypes.MediaType) ([]byte, string, error)
}
