package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/example/workplace-booking/internal/persistence"
)

// BookingRepository implements persistence.BookingRepository on SQLite. The
// per-room no-overlap invariant is enforced here, inside the insert
// transaction, independent of whatever availability check ran during preview.
type BookingRepository struct {
	pool *Pool
}

// NewBookingRepository creates a SQLite-backed booking repository.
func NewBookingRepository(pool *Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

// CreateBooking inserts a single booking, re-checking the overlap invariant
// in the same transaction so a stale preview cannot double-book the room.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking persistence.Booking) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		return insertBookingTx(ctx, tx, booking, "")
	})
}

// CreateBookings inserts a recurring batch atomically. Any overlap, whether
// against existing rows or between batch members, rolls back every insert and
// reports the offending instance via *persistence.ConflictError.
func (r *BookingRepository) CreateBookings(ctx context.Context, bookings []persistence.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, booking := range bookings {
			if err := insertBookingTx(ctx, tx, booking, ""); err != nil {
				return err
			}
		}
		return nil
	})
}

// insertBookingTx checks the overlap invariant and inserts one row.
// excludeID skips a row during the check, supporting updates.
func insertBookingTx(ctx context.Context, tx *sql.Tx, booking persistence.Booking, excludeID string) error {
	if err := checkOverlapTx(ctx, tx, booking, excludeID); err != nil {
		return err
	}
	const query = `
		INSERT INTO bookings (id, room_id, owner_id, title, date, start_minutes, end_minutes, series_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.ExecContext(ctx, query,
		booking.ID,
		booking.RoomID,
		booking.OwnerID,
		booking.Title,
		formatDate(booking.Date),
		int(booking.Start),
		int(booking.End),
		nullableString(booking.SeriesID),
		formatTime(booking.CreatedAt),
		formatTime(booking.UpdatedAt),
	)
	return mapDriverError(err)
}

// checkOverlapTx looks for an existing booking on the same room and date
// whose half-open interval intersects the candidate's.
func checkOverlapTx(ctx context.Context, tx *sql.Tx, booking persistence.Booking, excludeID string) error {
	const query = `
		SELECT 1 FROM bookings
		WHERE room_id = ? AND date = ? AND id != ?
		  AND start_minutes < ? AND ? < end_minutes
		LIMIT 1
	`
	var one int
	err := tx.QueryRowContext(ctx, query,
		booking.RoomID,
		formatDate(booking.Date),
		excludeID,
		int(booking.End),
		int(booking.Start),
	).Scan(&one)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return mapDriverError(err)
	}
	return &persistence.ConflictError{
		RoomID: booking.RoomID,
		Date:   booking.Date,
		Start:  booking.Start,
		End:    booking.End,
	}
}

// UpdateBooking rewrites an existing booking, re-checking the overlap
// invariant against all other rows.
func (r *BookingRepository) UpdateBooking(ctx context.Context, booking persistence.Booking) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := checkOverlapTx(ctx, tx, booking, booking.ID); err != nil {
			return err
		}
		const query = `
			UPDATE bookings
			SET room_id = ?, owner_id = ?, title = ?, date = ?, start_minutes = ?, end_minutes = ?, updated_at = ?
			WHERE id = ?
		`
		result, err := tx.ExecContext(ctx, query,
			booking.RoomID,
			booking.OwnerID,
			booking.Title,
			formatDate(booking.Date),
			int(booking.Start),
			int(booking.End),
			formatTime(booking.UpdatedAt),
			booking.ID,
		)
		if err != nil {
			return mapDriverError(err)
		}
		return requireRowAffected(result)
	})
}

// GetBooking retrieves a booking by ID.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	const query = `
		SELECT id, room_id, owner_id, title, date, start_minutes, end_minutes, series_id, created_at, updated_at
		FROM bookings WHERE id = ?
	`
	return scanBooking(r.pool.DB().QueryRowContext(ctx, query, id))
}

// ListBookings returns bookings matching the filter, ordered by date then
// start time.
func (r *BookingRepository) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	var conditions []string
	var args []any

	if filter.RoomID != nil {
		conditions = append(conditions, "room_id = ?")
		args = append(args, *filter.RoomID)
	}
	if filter.OwnerID != nil {
		conditions = append(conditions, "owner_id = ?")
		args = append(args, *filter.OwnerID)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, "date >= ?")
		args = append(args, formatDate(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		conditions = append(conditions, "date <= ?")
		args = append(args, formatDate(*filter.DateTo))
	}

	query := `
		SELECT id, room_id, owner_id, title, date, start_minutes, end_minutes, series_id, created_at, updated_at
		FROM bookings
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date, start_minutes, id"

	rows, err := r.pool.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapDriverError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, mapDriverError(rows.Err())
}

// DeleteBooking removes a booking by ID.
func (r *BookingRepository) DeleteBooking(ctx context.Context, id string) error {
	result, err := r.pool.DB().ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return mapDriverError(err)
	}
	return requireRowAffected(result)
}

func scanBooking(row rowScanner) (persistence.Booking, error) {
	var booking persistence.Booking
	var date, createdAt, updatedAt string
	var seriesID sql.NullString
	var start, end int

	err := row.Scan(
		&booking.ID,
		&booking.RoomID,
		&booking.OwnerID,
		&booking.Title,
		&date,
		&start,
		&end,
		&seriesID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Booking{}, mapDriverError(err)
	}

	if booking.Date, err = parseDate(date); err != nil {
		return persistence.Booking{}, err
	}
	booking.Start = timeslotMinutes(start)
	booking.End = timeslotMinutes(end)
	booking.SeriesID = stringPtr(seriesID)
	if booking.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Booking{}, err
	}
	if booking.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Booking{}, err
	}
	return booking, nil
}
