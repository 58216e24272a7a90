package catalog

import (
	"path/filepath"
	"time"

	"media-catalog/internal/mediatypes"
)

// ContentHash is the hex digest of a file's full byte content.
type ContentHash string

// String returns the hex form of the hash.
func (h ContentHash) String() string { return string(h) }

// Short returns the first 12 characters, for log lines.
func (h ContentHash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// Entry is one media file known to the catalog.
type Entry struct {
	ID          int64                `json:"id"`
	Path        string               `json:"path"`
	FileName    string               `json:"fileName"`
	FileSize    int64                `json:"fileSize"`
	Extension   string               `json:"fileExtension"`
	MediaType   mediatypes.MediaType `json:"mediaType"`
	VideoLength *float64             `json:"videoLength,omitempty"`
	ContentHash ContentHash          `json:"contentHash"`
	CreatedAt   time.Time            `json:"createdAt"`
	// UpdatedAt is the file's modification time as last observed on disk.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Thumbnail is the encoded preview owned by a single entry.
type Thumbnail struct {
	EntryID  int64  `json:"entryId"`
	Data     []byte `json:"-"`
	MimeType string `json:"mimeType"`
}

// Stats summarizes the catalog contents.
type Stats struct {
	TotalEntries    int   `json:"totalEntries"`
	TotalImages     int   `json:"totalImages"`
	TotalVideos     int   `json:"totalVideos"`
	TotalThumbnails int   `json:"totalThumbnails"`
	TotalBytes      int64 `json:"totalBytes"`
}

// FileNameOf returns the basename stored alongside a path.
func FileNameOf(path string) string {
	return filepath.Base(path)
}
