// Package database is the SQLite implementation of catalog.Store.
//
// The catalog lives in a single WAL-mode database file with three tables:
// media_items holds one row per cataloged file, thumbnails holds at most one
// encoded preview per row and is removed with it, and metadata holds small
// key/value records such as the time of the last reconciliation pass.
//
// Schema creation and upgrades run when the database is opened. Every
// operation records query metrics and fails with catalog.ErrStorage.
package database
