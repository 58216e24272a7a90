// Package postgres is the PostgreSQL implementation of catalog.Store, built
// on a pgx connection pool.
//
// It mirrors the SQLite schema: modification times are stored as unix
// nanoseconds so that change detection keeps full precision, and thumbnails
// are removed with their entry by a foreign key cascade.
package postgres
