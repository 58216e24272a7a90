// Package main provides the media-catalog command.
//
// media-catalog keeps a persisted catalog of image and video files in step
// with a media directory. Each reconciliation pass walks the directory once,
// hashing only files that are new or whose size or modification time
// changed, and classifies every file:
//
//   - unchanged: path known, size and modification time match
//   - modified: path known, content changed in place
//   - new: content never seen before
//   - duplicate: a copy of content that is still present elsewhere
//   - renamed: known content whose old path is gone from disk
//   - renamed_modified: a rename whose size or time also drifted
//
// Catalog entries whose files were not seen are deleted at the end of the
// pass.
//
// # Commands
//
//	media-catalog scan [root] [--dry-run] [--json]
//	media-catalog serve
//	media-catalog thumbnail <path> [-o out.jpg]
//	media-catalog version [--json]
//
// scan runs a single pass and prints a summary. When stderr is a terminal a
// progress line is kept up to date.
//
// serve runs a pass at startup and then every INDEX_INTERVAL, and serves:
//
//   - GET /healthz, /livez, /readyz: probes
//   - GET /metrics: Prometheus metrics
//   - GET /version: build information
//   - GET /api/stats: catalog totals
//   - GET /api/entries?path=...: one catalog entry
//   - GET /api/thumbnail/{id}: stored thumbnail bytes
//   - POST /api/reconcile: start a pass, 409 when one is running
//
// On SIGINT or SIGTERM the server stops accepting requests, waits for a
// running pass and closes the catalog.
//
// # Storage
//
// CATALOG_DRIVER selects SQLite (default, DATABASE_DIR/catalog.db) or
// PostgreSQL (DATABASE_URL). See [media-catalog/internal/startup] for every
// environment variable.
//
// # Build Requirements
//
// CGO is required for SQLite and libvips. ffmpeg and ffprobe are needed for
// video thumbnails and durations.
//
//	go build -o media-catalog ./cmd/media-catalog
//
// On failure every command prints a single error line and exits with
// status 1.
package main
