package planner

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/example/workplace-booking/internal/availability"
	"github.com/example/workplace-booking/internal/recurrence"
	"github.com/example/workplace-booking/internal/timeslot"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

func span(start, end string) timeslot.Span {
	return timeslot.Span{Start: timeslot.MustParse(start), End: timeslot.MustParse(end)}
}

func TestEligibleRooms(t *testing.T) {
	t.Parallel()

	catalog := []Room{
		{ID: "small", Capacity: 4},
		{ID: "large", Capacity: 10, Equipment: []string{"Projector"}},
		{ID: "board", Capacity: 12, Equipment: []string{"Projector", "Whiteboard"}},
	}

	t.Run("capacity and equipment both filter", func(t *testing.T) {
		t.Parallel()
		got := EligibleRooms(catalog, 6, []string{"Projector"})
		if len(got) != 2 || got[0].ID != "large" || got[1].ID != "board" {
			t.Fatalf("EligibleRooms = %+v, want [large board]", got)
		}
	})

	t.Run("empty requirement set always satisfied", func(t *testing.T) {
		t.Parallel()
		got := EligibleRooms(catalog, 0, nil)
		if len(got) != len(catalog) {
			t.Fatalf("expected whole catalog, got %d rooms", len(got))
		}
	})

	t.Run("equipment match is case insensitive", func(t *testing.T) {
		t.Parallel()
		got := EligibleRooms(catalog, 0, []string{"projector", "WHITEBOARD"})
		if len(got) != 1 || got[0].ID != "board" {
			t.Fatalf("EligibleRooms = %+v, want [board]", got)
		}
	})

	t.Run("no eligible room yields empty result", func(t *testing.T) {
		t.Parallel()
		got := EligibleRooms(catalog, 50, nil)
		if len(got) != 0 {
			t.Fatalf("expected no rooms, got %+v", got)
		}
	})
}

func resolveFixture() ([]Instance, []availability.Booking) {
	dates := []time.Time{
		date(2024, time.February, 5),
		date(2024, time.February, 12),
		date(2024, time.February, 19),
	}
	bookings := []availability.Booking{
		{ID: "b1", RoomID: "room-a", Date: date(2024, time.February, 12), Start: timeslot.MustParse("09:30"), End: timeslot.MustParse("10:30")},
	}
	s := span("09:00", "10:00")
	return Resolve(dates, "room-a", s.Start, s.End, bookings), bookings
}

func TestResolve(t *testing.T) {
	t.Parallel()

	instances, bookings := resolveFixture()

	if len(instances) != 3 {
		t.Fatalf("got %d instances, want 3", len(instances))
	}
	wantStatuses := []Status{StatusAvailable, StatusConflicting, StatusAvailable}
	for i, want := range wantStatuses {
		if instances[i].Status != want {
			t.Errorf("instances[%d].Status = %s, want %s", i, instances[i].Status, want)
		}
		if instances[i].RoomID != "room-a" || instances[i].OriginalRoomID != "room-a" {
			t.Errorf("instances[%d] room ids = %s/%s, want room-a/room-a", i, instances[i].RoomID, instances[i].OriginalRoomID)
		}
	}

	t.Run("resolution is idempotent", func(t *testing.T) {
		t.Parallel()
		dates := []time.Time{instances[0].Date, instances[1].Date, instances[2].Date}
		again := Resolve(dates, "room-a", timeslot.MustParse("09:00"), timeslot.MustParse("10:00"), bookings)
		if !reflect.DeepEqual(instances, again) {
			t.Fatalf("re-resolution differs:\n%+v\n%+v", instances, again)
		}
	})
}

func TestSubstituteRoom(t *testing.T) {
	t.Parallel()

	instances, _ := resolveFixture()

	t.Run("round trip restores the original state", func(t *testing.T) {
		t.Parallel()

		substituted, err := SubstituteRoom(instances, 1, "room-b")
		if err != nil {
			t.Fatalf("SubstituteRoom: %v", err)
		}
		if substituted[1].Status != StatusAlternative || substituted[1].RoomID != "room-b" {
			t.Fatalf("after substitute: %+v", substituted[1])
		}
		if substituted[1].OriginalRoomID != "room-a" {
			t.Fatalf("original room lost: %+v", substituted[1])
		}

		reverted, err := Revert(substituted, 1)
		if err != nil {
			t.Fatalf("Revert: %v", err)
		}
		if !reflect.DeepEqual(reverted, instances) {
			t.Fatalf("revert did not restore:\n%+v\n%+v", reverted, instances)
		}
	})

	t.Run("input slice is not mutated", func(t *testing.T) {
		t.Parallel()

		before := cloneInstances(instances)
		if _, err := SubstituteRoom(instances, 1, "room-b"); err != nil {
			t.Fatalf("SubstituteRoom: %v", err)
		}
		if !reflect.DeepEqual(before, instances) {
			t.Fatal("SubstituteRoom mutated its input")
		}
	})

	t.Run("available instances cannot be substituted", func(t *testing.T) {
		t.Parallel()
		if _, err := SubstituteRoom(instances, 0, "room-b"); !errors.Is(err, ErrNotSubstitutable) {
			t.Fatalf("expected ErrNotSubstitutable, got %v", err)
		}
	})

	t.Run("alternative can be re-substituted", func(t *testing.T) {
		t.Parallel()

		first, err := SubstituteRoom(instances, 1, "room-b")
		if err != nil {
			t.Fatalf("SubstituteRoom: %v", err)
		}
		second, err := SubstituteRoom(first, 1, "room-c")
		if err != nil {
			t.Fatalf("re-substitute: %v", err)
		}
		if second[1].RoomID != "room-c" || second[1].OriginalRoomID != "room-a" {
			t.Fatalf("re-substitute state: %+v", second[1])
		}
	})

	t.Run("index bounds", func(t *testing.T) {
		t.Parallel()
		if _, err := SubstituteRoom(instances, -1, "room-b"); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
		}
		if _, err := SubstituteRoom(instances, len(instances), "room-b"); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
		}
		if _, err := Revert(instances, len(instances)); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
		}
	})

	t.Run("revert requires an alternative", func(t *testing.T) {
		t.Parallel()
		if _, err := Revert(instances, 1); !errors.Is(err, ErrNotReverted) {
			t.Fatalf("expected ErrNotReverted, got %v", err)
		}
	})
}

func TestHasConflicts(t *testing.T) {
	t.Parallel()

	instances, _ := resolveFixture()
	if !HasConflicts(instances) {
		t.Fatal("expected conflicts in fixture")
	}

	substituted, err := SubstituteRoom(instances, 1, "room-b")
	if err != nil {
		t.Fatalf("SubstituteRoom: %v", err)
	}
	if HasConflicts(substituted) {
		t.Fatal("expected no conflicts after substitution")
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	instances, _ := resolveFixture()
	rule := recurrence.Rule{
		Pattern:   recurrence.PatternWeekly,
		Frequency: 1,
		Weekdays:  []time.Weekday{time.Wednesday, time.Monday},
		Count:     3,
	}

	summary := Summarize(rule, span("09:00", "10:00"), instances)

	for _, fragment := range []string{"Weekly on Mon, Wed", "09:00-10:00", "3 occurrences", "1 conflicting"} {
		if !strings.Contains(summary, fragment) {
			t.Errorf("summary %q missing %q", summary, fragment)
		}
	}
}
