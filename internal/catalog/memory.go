package catalog

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"

	"media-catalog/internal/mediatypes"
)

// ErrDuplicatePath is returned when an insert or move would give two live
// entries the same path.
var ErrDuplicatePath = errors.New("path already cataloged")

// MemoryStore is a Store kept entirely in memory, selected with
// CATALOG_DRIVER=memory. Nothing survives a restart.
type MemoryStore struct {
	mu         sync.RWMutex
	nextID     int64
	entries    map[int64]*Entry
	byPath     map[string]int64
	thumbnails map[int64]Thumbnail
	closed     bool
}

// NewMemoryStore returns an empty store. Ids start at 1.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:     1,
		entries:    make(map[int64]*Entry),
		byPath:     make(map[string]int64),
		thumbnails: make(map[int64]Thumbnail),
	}
}

var errClosed = errors.New("store is closed")

func (m *MemoryStore) check(op, path string) error {
	if m.closed {
		return StorageError(op, path, errClosed)
	}
	return nil
}

// sorted returns copies of the entries matching keep, ordered by id.
func (m *MemoryStore) sorted(keep func(*Entry) bool) []Entry {
	ids := lo.Keys(m.entries)
	slices.Sort(ids)
	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		if e := m.entries[id]; keep(e) {
			out = append(out, copyEntry(e))
		}
	}
	return out
}

func copyEntry(e *Entry) Entry {
	c := *e
	if e.VideoLength != nil {
		v := *e.VideoLength
		c.VideoLength = &v
	}
	return c
}

// AllEntries returns every entry ordered by id.
func (m *MemoryStore) AllEntries(_ context.Context) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check("all entries", ""); err != nil {
		return nil, err
	}
	return m.sorted(func(*Entry) bool { return true }), nil
}

// EntryByPath returns a copy of the entry at path, or nil when there is none.
func (m *MemoryStore) EntryByPath(_ context.Context, path string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check("entry by path", path); err != nil {
		return nil, err
	}
	id, ok := m.byPath[path]
	if !ok {
		return nil, nil
	}
	e := copyEntry(m.entries[id])
	return &e, nil
}

// EntriesByHash returns entries with the given hash ordered by id.
func (m *MemoryStore) EntriesByHash(_ context.Context, hash ContentHash) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check("entries by hash", ""); err != nil {
		return nil, err
	}
	return m.sorted(func(e *Entry) bool { return e.ContentHash == hash }), nil
}

// InsertEntry stores a copy of e under a fresh id.
func (m *MemoryStore) InsertEntry(_ context.Context, e *Entry) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("insert entry", e.Path); err != nil {
		return 0, err
	}
	if _, exists := m.byPath[e.Path]; exists {
		return 0, StorageError("insert entry", e.Path, ErrDuplicatePath)
	}

	rec := copyEntry(e)
	rec.ID = m.nextID
	m.nextID++
	if rec.FileName == "" {
		rec.FileName = FileNameOf(rec.Path)
	}
	if rec.MediaType == "" {
		rec.MediaType = mediatypes.MediaTypeUnknown
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	m.entries[rec.ID] = &rec
	m.byPath[rec.Path] = rec.ID
	return rec.ID, nil
}

// UpdateEntryMetadata sets the hash, size and modification time of the
// entry at path. It reports false when no entry exists there.
func (m *MemoryStore) UpdateEntryMetadata(_ context.Context, path string, hash ContentHash, size int64, updatedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("update entry metadata", path); err != nil {
		return false, err
	}
	id, ok := m.byPath[path]
	if !ok {
		return false, nil
	}
	e := m.entries[id]
	e.ContentHash = hash
	e.FileSize = size
	e.UpdatedAt = updatedAt
	return true, nil
}

// UpdateEntryPath moves the entry at oldPath to newPath.
func (m *MemoryStore) UpdateEntryPath(_ context.Context, oldPath, newPath string, updatedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("update entry path", oldPath); err != nil {
		return false, err
	}
	id, ok := m.byPath[oldPath]
	if !ok {
		return false, nil
	}
	if other, taken := m.byPath[newPath]; taken && other != id {
		return false, StorageError("update entry path", newPath, ErrDuplicatePath)
	}
	e := m.entries[id]
	delete(m.byPath, oldPath)
	e.Path = newPath
	e.FileName = FileNameOf(newPath)
	e.UpdatedAt = updatedAt
	m.byPath[newPath] = id
	return true, nil
}

// DeleteEntryByPath removes the entry at path and its thumbnail.
func (m *MemoryStore) DeleteEntryByPath(_ context.Context, path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("delete entry", path); err != nil {
		return false, err
	}
	id, ok := m.byPath[path]
	if !ok {
		return false, nil
	}
	delete(m.byPath, path)
	delete(m.entries, id)
	delete(m.thumbnails, id)
	return true, nil
}

// UpsertThumbnail replaces the thumbnail of thumb.EntryID.
func (m *MemoryStore) UpsertThumbnail(_ context.Context, thumb Thumbnail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("upsert thumbnail", ""); err != nil {
		return err
	}
	if _, ok := m.entries[thumb.EntryID]; !ok {
		return StorageError("upsert thumbnail", "", errors.New("unknown entry id"))
	}
	thumb.Data = slices.Clone(thumb.Data)
	m.thumbnails[thumb.EntryID] = thumb
	return nil
}

// ThumbnailByEntryID returns the thumbnail for id, or nil when none exists.
func (m *MemoryStore) ThumbnailByEntryID(_ context.Context, id int64) (*Thumbnail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check("thumbnail", ""); err != nil {
		return nil, err
	}
	t, ok := m.thumbnails[id]
	if !ok {
		return nil, nil
	}
	t.Data = slices.Clone(t.Data)
	return &t, nil
}

// Stats summarizes the stored entries.
func (m *MemoryStore) Stats(_ context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check("stats", ""); err != nil {
		return Stats{}, err
	}
	s := Stats{TotalEntries: len(m.entries), TotalThumbnails: len(m.thumbnails)}
	for _, e := range m.entries {
		s.TotalBytes += e.FileSize
		switch e.MediaType {
		case mediatypes.MediaTypeImage:
			s.TotalImages++
		case mediatypes.MediaTypeVideo:
			s.TotalVideos++
		}
	}
	return s, nil
}

// Close marks the store closed; later calls fail with ErrStorage.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

var _ Store = (*MemoryStore)(nil)
