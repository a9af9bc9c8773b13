package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/room-reservation/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	DB            *sqlite.DB
	Users         *sqlite.UserRepository
	Rooms         *sqlite.RoomRepository
	Reservations  *sqlite.ReservationRepository
	Notifications *sqlite.NotificationRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// also registers a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "reservations.db")
	db, err := sqlite.Open(context.Background(), "file:"+path)
	if err != nil {
		tb.Fatalf("failed to open sqlite database: %v", err)
	}

	harness := &SQLiteHarness{
		DB:            db,
		Users:         sqlite.NewUserRepository(db),
		Rooms:         sqlite.NewRoomRepository(db),
		Reservations:  sqlite.NewReservationRepository(db),
		Notifications: sqlite.NewNotificationRepository(db),
		cleanup: func() {
			_ = db.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
