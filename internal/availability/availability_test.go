package availability

import (
	"testing"
	"time"

	"github.com/example/workplace-booking/internal/timeslot"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

func booking(id, roomID string, d time.Time, start, end string) Booking {
	return Booking{
		ID:     id,
		RoomID: roomID,
		Date:   d,
		Start:  timeslot.MustParse(start),
		End:    timeslot.MustParse(end),
	}
}

func TestIsFree(t *testing.T) {
	t.Parallel()

	feb5 := date(2024, time.February, 5)
	existing := []Booking{
		booking("b1", "room-a", feb5, "09:00", "10:00"),
		booking("b2", "room-b", feb5, "09:00", "17:00"),
		booking("b3", "room-a", date(2024, time.February, 6), "09:00", "17:00"),
	}

	t.Run("empty booking list is always free", func(t *testing.T) {
		t.Parallel()
		if !IsFree(nil, "room-a", feb5, timeslot.MustParse("00:00"), timeslot.MustParse("24:00")) {
			t.Fatal("expected empty list to be free")
		}
	})

	t.Run("overlapping interval conflicts", func(t *testing.T) {
		t.Parallel()
		if IsFree(existing, "room-a", feb5, timeslot.MustParse("09:30"), timeslot.MustParse("10:30")) {
			t.Fatal("expected 09:30-10:30 to conflict with 09:00-10:00")
		}
	})

	t.Run("adjacent interval does not conflict", func(t *testing.T) {
		t.Parallel()
		if !IsFree(existing, "room-a", feb5, timeslot.MustParse("10:00"), timeslot.MustParse("11:00")) {
			t.Fatal("expected back-to-back booking to be free")
		}
	})

	t.Run("other rooms do not interfere", func(t *testing.T) {
		t.Parallel()
		if !IsFree(existing, "room-c", feb5, timeslot.MustParse("09:00"), timeslot.MustParse("10:00")) {
			t.Fatal("expected unrelated room to be free")
		}
	})

	t.Run("other dates do not interfere", func(t *testing.T) {
		t.Parallel()
		if !IsFree(existing, "room-a", date(2024, time.February, 7), timeslot.MustParse("09:00"), timeslot.MustParse("10:00")) {
			t.Fatal("expected other date to be free")
		}
	})
}

func TestNextBookingAfter(t *testing.T) {
	t.Parallel()

	feb5 := date(2024, time.February, 5)
	bookings := []Booking{
		booking("morning", "room-a", feb5, "09:00", "10:00"),
		booking("noon", "room-a", feb5, "12:00", "13:00"),
		booking("afternoon", "room-a", feb5, "15:00", "16:00"),
		booking("other-room", "room-b", feb5, "10:30", "11:00"),
	}

	t.Run("returns earliest strictly later booking", func(t *testing.T) {
		t.Parallel()
		next, ok := NextBookingAfter(bookings, "room-a", feb5, timeslot.MustParse("10:00"))
		if !ok {
			t.Fatal("expected a next booking")
		}
		if next.ID != "noon" {
			t.Fatalf("next = %s, want noon", next.ID)
		}
	})

	t.Run("booking starting exactly at the reference is excluded", func(t *testing.T) {
		t.Parallel()
		next, ok := NextBookingAfter(bookings, "room-a", feb5, timeslot.MustParse("09:00"))
		if !ok || next.ID != "noon" {
			t.Fatalf("next = %+v ok=%v, want noon", next, ok)
		}
	})

	t.Run("no later booking", func(t *testing.T) {
		t.Parallel()
		if _, ok := NextBookingAfter(bookings, "room-a", feb5, timeslot.MustParse("15:00")); ok {
			t.Fatal("expected no booking after the last start")
		}
	})
}
