/*
Package catalog defines the media catalog's data model and the ports the
reconciliation engine talks to.

# Entries

An Entry describes one media file: its absolute path, size, media type,
content hash and the filesystem modification time last observed for it.
Paths are unique among live entries; content hashes are not, since exact
duplicates are cataloged separately.

# Ports

Store is the persisted catalog. The SQLite implementation lives in
internal/database, the PostgreSQL one in internal/postgres and MemoryStore
here. ThumbnailPort wraps the external encoder (see internal/media).

# Index

Index is built once per pass from Store.AllEntries. It answers lookups by
path and tracks which paths were seen so the pass can find orphans:

	ix := catalog.NewIndex(entries)
	if e, ok := ix.Lookup(path); ok {
		// compare e.UpdatedAt and e.FileSize with the file on disk
	}
	ix.MarkSeen(path)
	for _, orphan := range ix.NotSeen() {
		// delete orphan.Path
	}

# Errors

Every failure surfaced by the catalog packages is an *Error whose Kind is
one of ErrIO, ErrHash, ErrStorage, ErrUnsupportedMedia or ErrEncoding.
IsRetryable separates transient filesystem problems from the rest.
*/
package catalog
