// Package reconcile converges the catalog with a directory tree.
//
// Engine.Run performs one pass. The catalog is loaded once into a
// catalog.Index, then every media file under the root is classified as it
// is walked:
//
//   - A file whose path is cataloged is Unchanged when its size matches and
//     its modification time is within the tolerance (one second by default),
//     and Modified otherwise. Unchanged files are never hashed.
//   - Any other file is hashed. With no cataloged entry sharing the hash it is
//     New. Otherwise the first sharing entry, in ascending id order, whose
//     recorded path no longer exists is moved to the file (Renamed, or
//     RenamedModified when its modification time also drifted). When every
//     sharing entry still exists the file is a Duplicate.
//
// Entries left unaccounted for at the end of the walk are Orphaned and
// deleted. A failure while handling a file aborts the pass; a failed orphan
// deletion is logged and the sweep continues.
//
// Thumbnails are generated for New, Duplicate, Modified and RenamedModified
// files only. The engine is single-threaded and never starts goroutines;
// callers that must not block run it on their own goroutine and keep passes
// over the same catalog from overlapping.
package reconcile
