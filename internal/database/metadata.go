package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const lastPassKey = "last_reconcile_pass"

// GetMetadata returns the value stored under key. It returns sql.ErrNoRows
// when the key does not exist.
func (d *Database) GetMetadata(ctx context.Context, key string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var value sql.NullString
	err := d.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value.String, nil
}

// SetMetadata stores value under key.
func (d *Database) SetMetadata(ctx context.Context, key, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// LastPass returns when the last reconciliation pass finished, or the zero
// time if none has.
func (d *Database) LastPass(ctx context.Context) (time.Time, error) {
	value, err := d.GetMetadata(ctx, lastPassKey)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && value == "") {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, value)
}

// SetLastPass records when a reconciliation pass finished. A zero t clears it.
func (d *Database) SetLastPass(ctx context.Context, t time.Time) error {
	if t.IsZero() {
		return d.SetMetadata(ctx, lastPassKey, "")
	}
	return d.SetMetadata(ctx, lastPassKey, t.UTC().Format(time.RFC3339Nano))
}
