package catalog

import (
	"slices"

	"github.com/samber/lo"
)

// Index is the in-memory projection of the catalog used during one pass.
// It holds its own copies of the entries keyed by path and remembers which
// paths have been accounted for.
type Index struct {
	byPath map[string]Entry
	seen   map[string]struct{}
}

// NewIndex builds an index from a snapshot of all persisted entries.
func NewIndex(entries []Entry) *Index {
	return &Index{
		byPath: lo.Associate(entries, func(e Entry) (string, Entry) { return e.Path, e }),
		seen:   make(map[string]struct{}, len(entries)),
	}
}

// Lookup returns the entry recorded at path.
func (ix *Index) Lookup(path string) (Entry, bool) {
	e, ok := ix.byPath[path]
	return e, ok
}

// MarkSeen records that path is accounted for in this pass. Paths that are
// not in the snapshot may be marked too; they never show up as orphans.
func (ix *Index) MarkSeen(path string) {
	ix.seen[path] = struct{}{}
}

// Seen reports whether path has been marked.
func (ix *Index) Seen(path string) bool {
	_, ok := ix.seen[path]
	return ok
}

// NotSeen returns the snapshot entries whose path was never marked, sorted
// by path.
func (ix *Index) NotSeen() []Entry {
	paths := lo.Filter(lo.Keys(ix.byPath), func(p string, _ int) bool { return !ix.Seen(p) })
	slices.Sort(paths)
	return lo.Map(paths, func(p string, _ int) Entry { return ix.byPath[p] })
}

// Len returns the number of entries in the snapshot.
func (ix *Index) Len() int { return len(ix.byPath) }

// SeenCount returns how many distinct paths have been marked.
func (ix *Index) SeenCount() int { return len(ix.seen) }
