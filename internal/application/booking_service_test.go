package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/example/workplace-booking/internal/persistence"
	"github.com/example/workplace-booking/internal/planner"
	"github.com/example/workplace-booking/internal/recurrence"
	"github.com/example/workplace-booking/internal/timeslot"
)

type bookingStoreStub struct {
	bookings  []persistence.Booking
	createErr error
	batchErr  error
	listErr   error
	listCalls int
}

func (s *bookingStoreStub) CreateBooking(ctx context.Context, booking persistence.Booking) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.bookings = append(s.bookings, booking)
	return nil
}

func (s *bookingStoreStub) CreateBookings(ctx context.Context, bookings []persistence.Booking) error {
	if s.batchErr != nil {
		return s.batchErr
	}
	s.bookings = append(s.bookings, bookings...)
	return nil
}

func (s *bookingStoreStub) UpdateBooking(ctx context.Context, booking persistence.Booking) error {
	for i := range s.bookings {
		if s.bookings[i].ID == booking.ID {
			s.bookings[i] = booking
			return nil
		}
	}
	return persistence.ErrNotFound
}

func (s *bookingStoreStub) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	for _, booking := range s.bookings {
		if booking.ID == id {
			return booking, nil
		}
	}
	return persistence.Booking{}, persistence.ErrNotFound
}

func (s *bookingStoreStub) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]persistence.Booking, 0, len(s.bookings))
	for _, booking := range s.bookings {
		if filter.RoomID != nil && booking.RoomID != *filter.RoomID {
			continue
		}
		if filter.OwnerID != nil && booking.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.DateFrom != nil && booking.Date.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && booking.Date.After(*filter.DateTo) {
			continue
		}
		out = append(out, booking)
	}
	return out, nil
}

func (s *bookingStoreStub) DeleteBooking(ctx context.Context, id string) error {
	for i := range s.bookings {
		if s.bookings[i].ID == id {
			s.bookings = append(s.bookings[:i], s.bookings[i+1:]...)
			return nil
		}
	}
	return persistence.ErrNotFound
}

type roomStoreStub struct {
	rooms []persistence.Room
}

func (s *roomStoreStub) CreateRoom(ctx context.Context, room persistence.Room) error {
	s.rooms = append(s.rooms, room)
	return nil
}

func (s *roomStoreStub) UpdateRoom(ctx context.Context, room persistence.Room) error {
	for i := range s.rooms {
		if s.rooms[i].ID == room.ID {
			s.rooms[i] = room
			return nil
		}
	}
	return persistence.ErrNotFound
}

func (s *roomStoreStub) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	for _, room := range s.rooms {
		if room.ID == id {
			return room, nil
		}
	}
	return persistence.Room{}, persistence.ErrNotFound
}

func (s *roomStoreStub) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	out := make([]persistence.Room, len(s.rooms))
	copy(out, s.rooms)
	return out, nil
}

func (s *roomStoreStub) DeleteRoom(ctx context.Context, id string) error {
	for i := range s.rooms {
		if s.rooms[i].ID == id {
			s.rooms = append(s.rooms[:i], s.rooms[i+1:]...)
			return nil
		}
	}
	return persistence.ErrNotFound
}

func sequenceIDs(prefix string) func() string {
	counter := 0
	return func() string {
		counter++
		return fmt.Sprintf("%s-%d", prefix, counter)
	}
}

func fixedClock() func() time.Time {
	at := time.Date(2023, 12, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func twoRoomCatalog() *roomStoreStub {
	return &roomStoreStub{rooms: []persistence.Room{
		{ID: "room-1", Name: "Borealis", Location: "4F", Capacity: 8, Equipment: []string{"Projector"}},
		{ID: "room-2", Name: "Aurora", Location: "4F", Capacity: 10, Equipment: []string{"Projector"}},
	}}
}

func weeklyInput() RecurringInput {
	return RecurringInput{
		RoomID:    "room-1",
		Title:     "Weekly sync",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Start:     timeslot.MustParse("09:00"),
		End:       timeslot.MustParse("10:00"),
		Rule: recurrence.Rule{
			Pattern:   recurrence.PatternWeekly,
			Frequency: 1,
			Weekdays:  []time.Weekday{time.Monday, time.Wednesday},
			Count:     4,
		},
	}
}

func TestBookingService_CreateBooking(t *testing.T) {
	t.Run("validates required attributes", func(t *testing.T) {
		svc := NewBookingService(&bookingStoreStub{}, twoRoomCatalog(), nil, nil)

		_, err := svc.CreateBooking(context.Background(), CreateBookingParams{
			Principal: Principal{UserID: "user-1"},
			Input: BookingInput{
				Title: "   ",
				Start: timeslot.MustParse("10:00"),
				End:   timeslot.MustParse("09:00"),
			},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"title", "room_id", "date", "time"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s validation error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("rejects unknown rooms", func(t *testing.T) {
		svc := NewBookingService(&bookingStoreStub{}, twoRoomCatalog(), nil, nil)

		_, err := svc.CreateBooking(context.Background(), CreateBookingParams{
			Principal: Principal{UserID: "user-1"},
			Input: BookingInput{
				RoomID: "ghost",
				Title:  "Planning",
				Date:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				Start:  timeslot.MustParse("09:00"),
				End:    timeslot.MustParse("10:00"),
			},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["room_id"]; !ok {
			t.Fatalf("expected room_id validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("persists bookings owned by the caller", func(t *testing.T) {
		store := &bookingStoreStub{}
		now := fixedClock()
		svc := NewBookingService(store, twoRoomCatalog(), sequenceIDs("booking"), now)

		created, err := svc.CreateBooking(context.Background(), CreateBookingParams{
			Principal: Principal{UserID: "user-1"},
			Input: BookingInput{
				RoomID: "room-1",
				Title:  "  Planning  ",
				Date:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				Start:  timeslot.MustParse("09:00"),
				End:    timeslot.MustParse("10:00"),
			},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if created.ID != "booking-1" || created.OwnerID != "user-1" {
			t.Fatalf("unexpected booking identity: %+v", created)
		}
		if created.Title != "Planning" {
			t.Fatalf("expected title to be trimmed, got %q", created.Title)
		}
		if !created.CreatedAt.Equal(now()) {
			t.Fatalf("expected injected clock, got %v", created.CreatedAt)
		}
		if len(store.bookings) != 1 {
			t.Fatalf("expected one persisted booking, got %d", len(store.bookings))
		}
	})

	t.Run("maps storage conflicts", func(t *testing.T) {
		store := &bookingStoreStub{createErr: &persistence.ConflictError{
			RoomID: "room-1",
			Date:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Start:  timeslot.MustParse("09:00"),
			End:    timeslot.MustParse("10:00"),
		}}
		svc := NewBookingService(store, twoRoomCatalog(), sequenceIDs("booking"), fixedClock())

		_, err := svc.CreateBooking(context.Background(), CreateBookingParams{
			Principal: Principal{UserID: "user-1"},
			Input: BookingInput{
				RoomID: "room-1",
				Title:  "Planning",
				Date:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				Start:  timeslot.MustParse("09:00"),
				End:    timeslot.MustParse("10:00"),
			},
		})

		var cErr *ConflictError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if cErr.RoomID != "room-1" {
			t.Fatalf("expected conflict to carry the room, got %+v", cErr)
		}
		if ErrorKind(err) != "booking_conflict" {
			t.Fatalf("expected booking_conflict kind, got %q", ErrorKind(err))
		}
	})
}

func TestBookingService_UpdateBooking(t *testing.T) {
	seed := persistence.Booking{
		ID:      "booking-1",
		RoomID:  "room-1",
		OwnerID: "user-1",
		Title:   "Planning",
		Date:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Start:   timeslot.MustParse("09:00"),
		End:     timeslot.MustParse("10:00"),
	}

	t.Run("only the owner or an administrator may update", func(t *testing.T) {
		store := &bookingStoreStub{bookings: []persistence.Booking{seed}}
		svc := NewBookingService(store, twoRoomCatalog(), sequenceIDs("booking"), fixedClock())

		_, err := svc.UpdateBooking(context.Background(), UpdateBookingParams{
			Principal: Principal{UserID: "user-2"},
			BookingID: "booking-1",
			Input: BookingInput{
				RoomID: "room-1",
				Title:  "Hijacked",
				Date:   seed.Date,
				Start:  seed.Start,
				End:    seed.End,
			},
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("applies changes for the owner", func(t *testing.T) {
		store := &bookingStoreStub{bookings: []persistence.Booking{seed}}
		svc := NewBookingService(store, twoRoomCatalog(), sequenceIDs("booking"), fixedClock())

		updated, err := svc.UpdateBooking(context.Background(), UpdateBookingParams{
			Principal: Principal{UserID: "user-1"},
			BookingID: "booking-1",
			Input: BookingInput{
				RoomID: "room-2",
				Title:  "Planning v2",
				Date:   seed.Date,
				Start:  timeslot.MustParse("10:00"),
				End:    timeslot.MustParse("11:00"),
			},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if updated.RoomID != "room-2" || updated.Title != "Planning v2" {
			t.Fatalf("unexpected update result: %+v", updated)
		}
		if store.bookings[0].RoomID != "room-2" {
			t.Fatalf("expected store to receive the new room, got %q", store.bookings[0].RoomID)
		}
	})

	t.Run("propagates ErrNotFound for missing bookings", func(t *testing.T) {
		svc := NewBookingService(&bookingStoreStub{}, twoRoomCatalog(), nil, nil)

		_, err := svc.UpdateBooking(context.Background(), UpdateBookingParams{
			Principal: Principal{UserID: "user-1"},
			BookingID: "ghost",
			Input: BookingInput{
				RoomID: "room-1",
				Title:  "Planning",
				Date:   seed.Date,
				Start:  seed.Start,
				End:    seed.End,
			},
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestBookingService_PreviewRecurring(t *testing.T) {
	t.Run("resolves occurrences against current bookings", func(t *testing.T) {
		store := &bookingStoreStub{bookings: []persistence.Booking{{
			ID:      "existing",
			RoomID:  "room-1",
			OwnerID: "user-2",
			Title:   "Taken",
			Date:    time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
			Start:   timeslot.MustParse("09:30"),
			End:     timeslot.MustParse("10:30"),
		}}}
		svc := NewBookingService(store, twoRoomCatalog(), sequenceIDs("booking"), fixedClock())

		preview, err := svc.PreviewRecurring(context.Background(), PreviewRecurringParams{
			Principal: Principal{UserID: "user-1"},
			Input:     weeklyInput(),
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if len(preview.Instances) != 4 {
			t.Fatalf("expected 4 instances, got %d", len(preview.Instances))
		}
		wantDates := []time.Time{
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		}
		for i, want := range wantDates {
			if !preview.Instances[i].Date.Equal(want) {
				t.Fatalf("instance %d date = %v, want %v", i, preview.Instances[i].Date, want)
			}
		}

		if preview.Conflicts != 1 {
			t.Fatalf("expected one conflict, got %d", preview.Conflicts)
		}
		if preview.Instances[1].Status != planner.StatusConflicting {
			t.Fatalf("expected second instance to conflict, got %q", preview.Instances[1].Status)
		}
		if got := preview.Alternatives[1]; len(got) != 1 || got[0] != "room-2" {
			t.Fatalf("expected room-2 as the alternative, got %v", got)
		}
		if !strings.Contains(preview.Summary, "Weekly on Mon, Wed") {
			t.Fatalf("unexpected summary %q", preview.Summary)
		}
	})

	t.Run("applies caller substitutions", func(t *testing.T) {
		store := &bookingStoreStub{bookings: []persistence.Booking{{
			ID:     "existing",
			RoomID: "room-1",
			Date:   time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
			Start:  timeslot.MustParse("09:00"),
			End:    timeslot.MustParse("10:00"),
		}}}
		svc := NewBookingService(store, twoRoomCatalog(), sequenceIDs("booking"), fixedClock())

		preview, err := svc.PreviewRecurring(context.Background(), PreviewRecurringParams{
			Principal:     Principal{UserID: "user-1"},
			Input:         weeklyInput(),
			Substitutions: map[int]string{1: "room-2"},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		moved := preview.Instances[1]
		if moved.Status != planner.StatusAlternative {
			t.Fatalf("expected alternative status, got %q", moved.Status)
		}
		if moved.RoomID != "room-2" || moved.OriginalRoomID != "room-1" {
			t.Fatalf("unexpected substitution result: %+v", moved)
		}
		if preview.Conflicts != 0 {
			t.Fatalf("expected no conflicts after substitution, got %d", preview.Conflicts)
		}
	})

	t.Run("rejects illegal substitutions", func(t *testing.T) {
		cases := []struct {
			name          string
			substitutions map[int]string
			extraBooking  *persistence.Booking
			field         string
		}{
			{
				name:          "index out of range",
				substitutions: map[int]string{9: "room-2"},
				field:         "substitutions.9",
			},
			{
				name:          "available instance",
				substitutions: map[int]string{0: "room-2"},
				field:         "substitutions.0",
			},
			{
				name:          "ineligible room",
				substitutions: map[int]string{1: "ghost"},
				field:         "substitutions.1",
			},
			{
				name:          "occupied substitute",
				substitutions: map[int]string{1: "room-2"},
				extraBooking: &persistence.Booking{
					ID:     "blocker",
					RoomID: "room-2",
					Date:   time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
					Start:  timeslot.MustParse("09:00"),
					End:    timeslot.MustParse("10:00"),
				},
				field: "substitutions.1",
			},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				bookings := []persistence.Booking{{
					ID:     "existing",
					RoomID: "room-1",
					Date:   time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
					Start:  timeslot.MustParse("09:00"),
					End:    timeslot.MustParse("10:00"),
				}}
				if tc.extraBooking != nil {
					bookings = append(bookings, *tc.extraBooking)
				}
				store := &bookingStoreStub{bookings: bookings}
				svc := NewBookingService(store, twoRoomCatalog(), sequenceIDs("booking"), fixedClock())

				_, err := svc.PreviewRecurring(context.Background(), PreviewRecurringParams{
					Principal:     Principal{UserID: "user-1"},
					Input:         weeklyInput(),
					Substitutions: tc.substitutions,
				})

				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				if _, ok := vErr.FieldErrors[tc.field]; !ok {
					t.Fatalf("expected %s validation error, got %v", tc.field, vErr.FieldErrors)
				}
			})
		}
	})

	t.Run("maps rule validation failures to fields", func(t *testing.T) {
		svc := NewBookingService(&bookingStoreStub{}, twoRoomCatalog(), nil, nil)

		input := weeklyInput()
		input.Rule.Weekdays = nil

		_, err := svc.PreviewRecurring(context.Background(), PreviewRecurringParams{
			Principal: Principal{UserID: "user-1"},
			Input:     input,
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["weekdays"]; !ok {
			t.Fatalf("expected weekdays validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("serves repeated requests from cache until a write lands", func(t *testing.T) {
		store := &bookingStoreStub{}
		svc := NewBookingService(store, twoRoomCatalog(), sequenceIDs("booking"), fixedClock())
		params := PreviewRecurringParams{
			Principal: Principal{UserID: "user-1"},
			Input:     weeklyInput(),
		}

		if _, err := svc.PreviewRecurring(context.Background(), params); err != nil {
			t.Fatalf("first preview: %v", err)
		}
		afterFirst := store.listCalls

		if _, err := svc.PreviewRecurring(context.Background(), params); err != nil {
			t.Fatalf("second preview: %v", err)
		}
		if store.listCalls != afterFirst {
			t.Fatalf("expected cached preview, store saw %d list calls", store.listCalls)
		}

		_, err := svc.CreateBooking(context.Background(), CreateBookingParams{
			Principal: Principal{UserID: "user-1"},
			Input: BookingInput{
				RoomID: "room-1",
				Title:  "Blocker",
				Date:   time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
				Start:  timeslot.MustParse("09:00"),
				End:    timeslot.MustParse("10:00"),
			},
		})
		if err != nil {
			t.Fatalf("interleaved create: %v", err)
		}

		preview, err := svc.PreviewRecurring(context.Background(), params)
		if err != nil {
			t.Fatalf("third preview: %v", err)
		}
		if store.listCalls == afterFirst {
			t.Fatal("expected cache invalidation after a booking write")
		}
		if preview.Conflicts != 1 {
			t.Fatalf("expected the new booking to surface as a conflict, got %d", preview.Conflicts)
		}
	})
}

func TestBookingService_CommitRecurring(t *testing.T) {
	blocker := persistence.Booking{
		ID:     "existing",
		RoomID: "room-1",
		Date:   time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		Start:  timeslot.MustParse("09:00"),
		End:    timeslot.MustParse("10:00"),
	}

	t.Run("refuses series with unresolved conflicts", func(t *testing.T) {
		store := &bookingStoreStub{bookings: []persistence.Booking{blocker}}
		svc := NewBookingService(store, twoRoomCatalog(), sequenceIDs("id"), fixedClock())

		_, err := svc.CommitRecurring(context.Background(), CommitRecurringParams{
			Principal: Principal{UserID: "user-1"},
			Input:     weeklyInput(),
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["instances"]; !ok {
			t.Fatalf("expected instances validation error, got %v", vErr.FieldErrors)
		}
		if len(store.bookings) != 1 {
			t.Fatalf("expected no rows written, got %d", len(store.bookings))
		}
	})

	t.Run("persists the whole series with a shared series id", func(t *testing.T) {
		store := &bookingStoreStub{bookings: []persistence.Booking{blocker}}
		svc := NewBookingService(store, twoRoomCatalog(), sequenceIDs("id"), fixedClock())

		result, err := svc.CommitRecurring(context.Background(), CommitRecurringParams{
			Principal:     Principal{UserID: "user-1"},
			Input:         weeklyInput(),
			Substitutions: map[int]string{1: "room-2"},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if len(result.Bookings) != 4 {
			t.Fatalf("expected 4 bookings, got %d", len(result.Bookings))
		}
		for _, booking := range result.Bookings {
			if booking.SeriesID == nil || *booking.SeriesID != result.SeriesID {
				t.Fatalf("expected shared series id, got %+v", booking)
			}
			if booking.OwnerID != "user-1" {
				t.Fatalf("expected caller ownership, got %q", booking.OwnerID)
			}
		}
		if result.Bookings[1].RoomID != "room-2" {
			t.Fatalf("expected substituted room on the moved instance, got %q", result.Bookings[1].RoomID)
		}
		if len(store.bookings) != 5 {
			t.Fatalf("expected series appended to store, got %d rows", len(store.bookings))
		}
	})

	t.Run("maps commit-time storage conflicts", func(t *testing.T) {
		store := &bookingStoreStub{batchErr: &persistence.ConflictError{
			RoomID: "room-1",
			Date:   time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
			Start:  timeslot.MustParse("09:00"),
			End:    timeslot.MustParse("10:00"),
		}}
		svc := NewBookingService(store, twoRoomCatalog(), sequenceIDs("id"), fixedClock())

		_, err := svc.CommitRecurring(context.Background(), CommitRecurringParams{
			Principal: Principal{UserID: "user-1"},
			Input:     weeklyInput(),
		})

		var cErr *ConflictError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if !cErr.Date.Equal(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("expected the offending date, got %v", cErr.Date)
		}
	})
}

func TestBookingService_ExportRecurring(t *testing.T) {
	t.Run("uniform series export carries a recurrence rule", func(t *testing.T) {
		svc := NewBookingService(&bookingStoreStub{}, twoRoomCatalog(), sequenceIDs("id"), fixedClock())

		document, err := svc.ExportRecurring(context.Background(), ExportRecurringParams{
			Principal: Principal{UserID: "user-1"},
			Input:     weeklyInput(),
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if !strings.Contains(document, "BEGIN:VEVENT") {
			t.Fatalf("expected a VEVENT, got %q", document)
		}
		if !strings.Contains(document, "RRULE") {
			t.Fatalf("expected an RRULE for the uniform series, got %q", document)
		}
		if !strings.Contains(document, "LOCATION:4F") {
			t.Fatalf("expected the room location, got %q", document)
		}
	})

	t.Run("substituted series enumerates instances", func(t *testing.T) {
		store := &bookingStoreStub{bookings: []persistence.Booking{{
			ID:     "existing",
			RoomID: "room-1",
			Date:   time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
			Start:  timeslot.MustParse("09:00"),
			End:    timeslot.MustParse("10:00"),
		}}}
		svc := NewBookingService(store, twoRoomCatalog(), sequenceIDs("id"), fixedClock())

		document, err := svc.ExportRecurring(context.Background(), ExportRecurringParams{
			Principal:     Principal{UserID: "user-1"},
			Input:         weeklyInput(),
			Substitutions: map[int]string{1: "room-2"},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if strings.Contains(document, "RRULE") {
			t.Fatalf("expected enumerated events without RRULE, got %q", document)
		}
		if got := strings.Count(document, "BEGIN:VEVENT"); got != 4 {
			t.Fatalf("expected 4 events, got %d", got)
		}
	})
}
