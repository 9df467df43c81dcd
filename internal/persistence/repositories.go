package persistence

import (
	"context"
	"time"
)

// UserRepository exposes CRUD operations for users.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
}

// CredentialRepository stores password state separate from profile data.
type CredentialRepository interface {
	UpsertCredentials(ctx context.Context, creds Credentials) error
	GetCredentials(ctx context.Context, userID string) (Credentials, error)
}

// RoomRepository exposes CRUD operations for rooms.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	UpdateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	DeleteRoom(ctx context.Context, id string) error
}

// BookingFilter narrows booking queries. Nil fields are unconstrained; the
// date range is inclusive on both ends.
type BookingFilter struct {
	RoomID   *string
	OwnerID  *string
	DateFrom *time.Time
	DateTo   *time.Time
}

// BookingRepository stores booking rows and enforces the per-room no-overlap
// invariant at write time.
type BookingRepository interface {
	// CreateBooking inserts one booking, re-checking the overlap invariant
	// inside the insert transaction. A stale preview therefore surfaces as
	// a *ConflictError rather than a double booking.
	CreateBooking(ctx context.Context, booking Booking) error
	// CreateBookings inserts a whole recurring batch atomically: any
	// conflict rolls back every row and reports the offending instance.
	CreateBookings(ctx context.Context, bookings []Booking) error
	UpdateBooking(ctx context.Context, booking Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
	DeleteBooking(ctx context.Context, id string) error
}

// SupplyRepository stores the office-supply catalog and request workflow.
type SupplyRepository interface {
	CreateSupply(ctx context.Context, supply Supply) error
	UpdateSupply(ctx context.Context, supply Supply) error
	GetSupply(ctx context.Context, id string) (Supply, error)
	ListSupplies(ctx context.Context) ([]Supply, error)
	DeleteSupply(ctx context.Context, id string) error

	CreateSupplyRequest(ctx context.Context, request SupplyRequest) error
	GetSupplyRequest(ctx context.Context, id string) (SupplyRequest, error)
	ListSupplyRequests(ctx context.Context, requesterID *string) ([]SupplyRequest, error)
	// DecideSupplyRequest transitions a pending request and, on approval,
	// decrements stock in the same transaction.
	DecideSupplyRequest(ctx context.Context, request SupplyRequest) error
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	UpdateSession(ctx context.Context, session Session) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
