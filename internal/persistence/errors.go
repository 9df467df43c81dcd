package persistence

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/workplace-booking/internal/timeslot"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a uniqueness constraint is violated.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConstraintViolation is returned when a check constraint rejects a write.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrForeignKeyViolation is returned when a referenced record is missing.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
)

// ConflictError reports that a booking write would overlap an existing
// booking for the same room and date. The overlap invariant is re-checked
// inside the insert transaction, so a preview gone stale surfaces here rather
// than as silently double-booked rows.
type ConflictError struct {
	RoomID string
	Date   time.Time
	Start  timeslot.Minutes
	End    timeslot.Minutes
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("persistence: booking conflict in room %s on %s between %s and %s",
		e.RoomID, e.Date.Format("2006-01-02"), e.Start, e.End)
}

// IsConflict reports whether err wraps a booking conflict.
func IsConflict(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict)
}
