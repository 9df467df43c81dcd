package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/workplace-booking/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Pool     *sqlite.Pool
	Users    *sqlite.UserRepository
	Rooms    *sqlite.RoomRepository
	Bookings *sqlite.BookingRepository
	Supplies *sqlite.SupplyRepository
	Sessions *sqlite.SessionRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness over a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// also registers a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "booking.db")

	pool, err := sqlite.NewPool("file:" + path + "?_foreign_keys=on")
	if err != nil {
		tb.Fatalf("failed to open database: %v", err)
	}

	if err := pool.Migrate(context.Background()); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate database: %v", err)
	}

	harness := &SQLiteHarness{
		Pool:     pool,
		Users:    sqlite.NewUserRepository(pool),
		Rooms:    sqlite.NewRoomRepository(pool),
		Bookings: sqlite.NewBookingRepository(pool),
		Supplies: sqlite.NewSupplyRepository(pool),
		Sessions: sqlite.NewSessionRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
