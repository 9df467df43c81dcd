package application

import (
	"time"

	"github.com/example/workplace-booking/internal/planner"
	"github.com/example/workplace-booking/internal/recurrence"
	"github.com/example/workplace-booking/internal/timeslot"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// UserInput captures caller provided user attributes.
type UserInput struct {
	Email       string
	DisplayName string
	IsAdmin     bool
	Password    string
}

// User represents an employee account exposed by the application services.
type User struct {
	ID          string
	Email       string
	DisplayName string
	IsAdmin     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateUserParams wraps the data required to create a user.
type CreateUserParams struct {
	Principal Principal
	Input     UserInput
}

// UpdateUserParams wraps the data required to update an existing user.
type UpdateUserParams struct {
	Principal Principal
	UserID    string
	Input     UserInput
}

// SetPasswordParams wraps the data required to change a user's password.
type SetPasswordParams struct {
	Principal Principal
	UserID    string
	Password  string
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name      string
	Location  string
	Capacity  int
	Equipment []string
}

// Room represents a catalog entry for a bookable meeting room.
type Room struct {
	ID        string
	Name      string
	Location  string
	Capacity  int
	Equipment []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateRoomParams wraps the data required to create a room.
type CreateRoomParams struct {
	Principal Principal
	Input     RoomInput
}

// UpdateRoomParams wraps the data required to update a room.
type UpdateRoomParams struct {
	Principal Principal
	RoomID    string
	Input     RoomInput
}

// FindRoomsParams narrows the room catalog to entries satisfying the
// caller's capacity and equipment requirements.
type FindRoomsParams struct {
	Principal         Principal
	MinCapacity       int
	RequiredEquipment []string
}

// BookingInput captures caller provided fields for a single booking.
type BookingInput struct {
	RoomID string
	Title  string
	Date   time.Time
	Start  timeslot.Minutes
	End    timeslot.Minutes
}

// Booking represents a persisted room reservation.
type Booking struct {
	ID        string
	RoomID    string
	OwnerID   string
	Title     string
	Date      time.Time
	Start     timeslot.Minutes
	End       timeslot.Minutes
	SeriesID  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateBookingParams wraps the data required to create a booking.
type CreateBookingParams struct {
	Principal Principal
	Input     BookingInput
}

// UpdateBookingParams wraps the data required to update an existing booking.
type UpdateBookingParams struct {
	Principal Principal
	BookingID string
	Input     BookingInput
}

// ListBookingsParams narrows booking listings. Nil fields are unconstrained;
// the date range is inclusive on both ends.
type ListBookingsParams struct {
	Principal Principal
	RoomID    *string
	OwnerID   *string
	DateFrom  *time.Time
	DateTo    *time.Time
}

// RecurringInput captures the shape of a recurring booking request: the slot,
// the recurrence rule, and the room requirements used to pick substitutes.
type RecurringInput struct {
	RoomID            string
	Title             string
	StartDate         time.Time
	Start             timeslot.Minutes
	End               timeslot.Minutes
	Rule              recurrence.Rule
	MinCapacity       int
	RequiredEquipment []string
}

// PreviewRecurringParams wraps the data required to preview a recurring
// booking. Substitutions maps instance indexes to replacement room IDs
// chosen by the caller in an earlier preview round.
type PreviewRecurringParams struct {
	Principal     Principal
	Input         RecurringInput
	Substitutions map[int]string
}

// RecurringPreview reports the resolved instances of a recurring request,
// alternates for the conflicting ones, and a human readable summary.
type RecurringPreview struct {
	Instances    []planner.Instance
	Alternatives map[int][]string
	Summary      string
	Conflicts    int
}

// CommitRecurringParams wraps the data required to persist a recurring
// booking previously inspected via preview.
type CommitRecurringParams struct {
	Principal     Principal
	Input         RecurringInput
	Substitutions map[int]string
}

// CommitRecurringResult reports the persisted series.
type CommitRecurringResult struct {
	SeriesID string
	Bookings []Booking
}

// ExportRecurringParams wraps the data required to render a recurring
// request as an iCalendar document.
type ExportRecurringParams struct {
	Principal     Principal
	Input         RecurringInput
	Substitutions map[int]string
}

// SupplyInput captures caller provided supply catalog fields.
type SupplyInput struct {
	Name     string
	Category string
	Unit     string
	Stock    int
}

// Supply represents an office supply catalog entry.
type Supply struct {
	ID        string
	Name      string
	Category  string
	Unit      string
	Stock     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateSupplyParams wraps the data required to create a supply.
type CreateSupplyParams struct {
	Principal Principal
	Input     SupplyInput
}

// UpdateSupplyParams wraps the data required to update a supply.
type UpdateSupplyParams struct {
	Principal Principal
	SupplyID  string
	Input     SupplyInput
}

// SupplyRequestInput captures a user's request for supplies.
type SupplyRequestInput struct {
	SupplyID string
	Quantity int
	Note     *string
}

// SupplyRequest represents a request in the approval workflow.
type SupplyRequest struct {
	ID          string
	SupplyID    string
	RequesterID string
	Quantity    int
	Note        *string
	Status      string
	DecidedBy   *string
	DecidedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateSupplyRequestParams wraps the data required to file a supply request.
type CreateSupplyRequestParams struct {
	Principal Principal
	Input     SupplyRequestInput
}

// ListSupplyRequestsParams narrows supply request listings. Non-admin
// callers are always restricted to their own requests.
type ListSupplyRequestsParams struct {
	Principal   Principal
	RequesterID *string
}

// DecideSupplyRequestParams wraps an administrator's decision on a request.
type DecideSupplyRequestParams struct {
	Principal Principal
	RequestID string
	Approve   bool
}

// Session represents an authenticated session issued to a user.
type Session struct {
	ID          string
	UserID      string
	Token       string
	Fingerprint string
	ExpiresAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	RevokedAt   *time.Time
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Email       string
	Password    string
	Fingerprint string
}

// AuthenticateResult captures the outcome of a successful authentication attempt.
type AuthenticateResult struct {
	User    User
	Session Session
}

// RefreshSessionParams captures the data required to refresh an existing session.
type RefreshSessionParams struct {
	Token       string
	Fingerprint string
}

// RefreshSessionResult captures the outcome of rotating a session token.
type RefreshSessionResult struct {
	Session Session
}
