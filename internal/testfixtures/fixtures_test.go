package testfixtures

import (
	"context"
	"testing"
	"time"

	"github.com/example/workplace-booking/internal/persistence"
	"github.com/example/workplace-booking/internal/timeslot"
)

func TestFixtureOptions(t *testing.T) {
	t.Run("user options override generated values", func(t *testing.T) {
		user := NewUserFixture(
			WithUserID("user-custom"),
			WithUserEmail("alice@example.com"),
			WithUserAdmin(true),
			WithUserDisabled(),
		)

		if user.ID != "user-custom" || user.Email != "alice@example.com" {
			t.Fatalf("unexpected fixture: %+v", user)
		}
		if !user.IsAdmin || !user.Disabled {
			t.Fatalf("expected admin and disabled flags, got %+v", user)
		}
		if principal := user.Principal(); principal.UserID != "user-custom" || !principal.IsAdmin {
			t.Fatalf("unexpected principal: %+v", principal)
		}
		if creds := user.Credentials(); creds.UserID != "user-custom" || !creds.Disabled {
			t.Fatalf("unexpected credentials: %+v", creds)
		}
	})

	t.Run("successive bookings do not overlap", func(t *testing.T) {
		first := NewBookingFixture()
		second := NewBookingFixture()

		if first.ID == second.ID {
			t.Fatalf("expected distinct IDs, both %q", first.ID)
		}
		if first.Date.Equal(second.Date) {
			t.Fatalf("expected distinct dates, both %s", first.Date)
		}
	})

	t.Run("booking conversions preserve the slot", func(t *testing.T) {
		booking := NewBookingFixture(
			WithBookingSlot(timeslot.MustParse("13:30"), timeslot.MustParse("15:00")),
			WithBookingSeries("series-9"),
		)

		app := booking.Application()
		if app.Start.String() != "13:30" || app.End.String() != "15:00" {
			t.Fatalf("unexpected slot: %s-%s", app.Start, app.End)
		}
		if app.SeriesID == nil || *app.SeriesID != "series-9" {
			t.Fatalf("expected series ID, got %v", app.SeriesID)
		}

		input := booking.Input()
		if input.RoomID != booking.RoomID || input.Start != booking.Start {
			t.Fatalf("unexpected input: %+v", input)
		}
	})

	t.Run("request decision options mark the request decided", func(t *testing.T) {
		decidedAt := ReferenceTime().Add(time.Hour)
		request := NewSupplyRequestFixture(
			WithRequestQuantity(3),
			WithRequestNote("for the workshop"),
			WithRequestDecision(persistence.SupplyRequestApproved, "user-admin", decidedAt),
		)

		app := request.Application()
		if app.Status != "approved" || app.Quantity != 3 {
			t.Fatalf("unexpected request: %+v", app)
		}
		if app.DecidedBy == nil || *app.DecidedBy != "user-admin" {
			t.Fatalf("expected decision author, got %v", app.DecidedBy)
		}
		if app.Note == nil || *app.Note != "for the workshop" {
			t.Fatalf("expected note, got %v", app.Note)
		}
	})
}

func TestSQLiteHarnessRoundTrip(t *testing.T) {
	harness := NewSQLiteHarness(t)
	ctx := context.Background()

	user := NewUserFixture(WithUserAdmin(true))
	if err := harness.Users.CreateUser(ctx, user.Persistence()); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := harness.Users.UpsertCredentials(ctx, user.Credentials()); err != nil {
		t.Fatalf("UpsertCredentials: %v", err)
	}

	room := NewRoomFixture(WithRoomEquipment("Projector", "Whiteboard"))
	if err := harness.Rooms.CreateRoom(ctx, room.Persistence()); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	booking := NewBookingFixture(WithBookingRoom(room.ID), WithBookingOwner(user.ID))
	if err := harness.Bookings.CreateBooking(ctx, booking.Persistence()); err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	storedBooking, err := harness.Bookings.GetBooking(ctx, booking.ID)
	if err != nil {
		t.Fatalf("GetBooking: %v", err)
	}
	if storedBooking.RoomID != room.ID || storedBooking.Start != booking.Start {
		t.Fatalf("unexpected stored booking: %+v", storedBooking)
	}

	supply := NewSupplyFixture(WithSupplyStock(12))
	if err := harness.Supplies.CreateSupply(ctx, supply.Persistence()); err != nil {
		t.Fatalf("CreateSupply: %v", err)
	}
	request := NewSupplyRequestFixture(WithRequestSupply(supply.ID), WithRequestRequester(user.ID))
	if err := harness.Supplies.CreateSupplyRequest(ctx, request.Persistence()); err != nil {
		t.Fatalf("CreateSupplyRequest: %v", err)
	}
	storedRequest, err := harness.Supplies.GetSupplyRequest(ctx, request.ID)
	if err != nil {
		t.Fatalf("GetSupplyRequest: %v", err)
	}
	if storedRequest.Status != persistence.SupplyRequestPending {
		t.Fatalf("expected pending request, got %q", storedRequest.Status)
	}

	session := NewSessionFixture(WithSessionUser(user.ID))
	if _, err := harness.Sessions.CreateSession(ctx, session.Persistence()); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	storedSession, err := harness.Sessions.GetSession(ctx, session.Token)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if storedSession.UserID != user.ID {
		t.Fatalf("unexpected session owner: %q", storedSession.UserID)
	}
}
