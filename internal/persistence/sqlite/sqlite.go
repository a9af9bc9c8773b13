// Package sqlite implements the persistence repositories on SQLite through
// database/sql and the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/example/room-reservation/internal/persistence"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
	display_name  TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS rooms (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	location   TEXT NOT NULL,
	capacity   INTEGER NOT NULL CHECK (capacity > 0),
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS time_slots (
	id         TEXT PRIMARY KEY,
	room_id    TEXT NOT NULL REFERENCES rooms(id),
	start_time TEXT NOT NULL,
	end_time   TEXT NOT NULL,
	CHECK (start_time < end_time)
);

CREATE TABLE IF NOT EXISTS reservations (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL REFERENCES users(id),
	room_id      TEXT NOT NULL REFERENCES rooms(id),
	time_slot_id TEXT NOT NULL UNIQUE REFERENCES time_slots(id),
	purpose      TEXT NOT NULL,
	attendees    INTEGER NOT NULL CHECK (attendees >= 1),
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reservations_room ON reservations(room_id);

CREATE TABLE IF NOT EXISTS notifications (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id),
	message    TEXT NOT NULL,
	seen       INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id);
`

// DB wraps the SQL handle shared by the repositories.
type DB struct {
	sql *sql.DB
}

// Open opens the database at dsn, enables foreign keys, and applies the
// schema. The schema is idempotent, so Open is safe against an existing file.
func Open(ctx context.Context, dsn string) (*DB, error) {
	handle, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite serializes writers; a single connection avoids
	// SQLITE_BUSY churn between concurrent transactions.
	handle.SetMaxOpenConns(1)

	if err := handle.PingContext(ctx); err != nil {
		handle.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	if _, err := handle.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		handle.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := handle.ExecContext(ctx, schema); err != nil {
		handle.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &DB{sql: handle}, nil
}

// Close releases the underlying SQL handle.
func (db *DB) Close() error {
	return db.sql.Close()
}

// withTransaction runs fn inside a transaction, rolling back on error.
func (db *DB) withTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// mapError translates driver errors into persistence sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrDuplicate, err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrConstraintViolation, err)
	case strings.Contains(msg, "CHECK constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrConstraintViolation, err)
	}
	return err
}

// timeLayout is RFC3339 with fixed-width nanoseconds. The width matters:
// stored values are compared as strings by the overlap query and the
// start_time < end_time check, and a variable-length fraction would break
// that ordering and truncate sub-second intervals to equal endpoints.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}
