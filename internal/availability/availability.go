// Package availability answers whether a room is free for a given date and
// time range. All functions are pure reads over a caller-supplied booking
// snapshot; fetching bookings is the persistence collaborator's job.
package availability

import (
	"time"

	"github.com/example/workplace-booking/internal/recurrence"
	"github.com/example/workplace-booking/internal/timeslot"
)

// Booking is the slice of booking state the availability checks need.
type Booking struct {
	ID      string
	RoomID  string
	OwnerID string
	Title   string
	Date    time.Time
	Start   timeslot.Minutes
	End     timeslot.Minutes
}

// Span returns the booking's time range.
func (b Booking) Span() timeslot.Span {
	return timeslot.Span{Start: b.Start, End: b.End}
}

// IsFree reports whether the room has no booking on the given date whose
// half-open interval overlaps [start, end).
func IsFree(bookings []Booking, roomID string, date time.Time, start, end timeslot.Minutes) bool {
	requested := timeslot.Span{Start: start, End: end}
	for _, booking := range bookings {
		if booking.RoomID != roomID {
			continue
		}
		if !recurrence.SameDate(booking.Date, date) {
			continue
		}
		if booking.Span().Overlaps(requested) {
			return false
		}
	}
	return true
}

// NextBookingAfter returns the booking on the room and date with the smallest
// start time strictly greater than after. The result is informational only
// and plays no part in conflict decisions.
func NextBookingAfter(bookings []Booking, roomID string, date time.Time, after timeslot.Minutes) (Booking, bool) {
	var next Booking
	found := false
	for _, booking := range bookings {
		if booking.RoomID != roomID || !recurrence.SameDate(booking.Date, date) {
			continue
		}
		if booking.Start <= after {
			continue
		}
		if !found || booking.Start < next.Start {
			next = booking
			found = true
		}
	}
	return next, found
}
