package persistence

import (
	"time"

	"github.com/example/workplace-booking/internal/timeslot"
)

// User represents an employee account.
type User struct {
	ID          string
	Email       string
	DisplayName string
	IsAdmin     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Credentials carries the authentication state persisted for a user.
type Credentials struct {
	UserID         string
	PasswordHash   string
	Disabled       bool
	FailedAttempts int
	LastFailedAt   *time.Time
}

// Room represents a bookable meeting room.
type Room struct {
	ID        string
	Name      string
	Location  string
	Capacity  int
	Equipment []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Booking represents one reserved room interval on a calendar day. Date
// carries no clock portion; Start and End are wall-clock minutes.
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

// SupplyRequestStatus enumerates the supply request workflow states.
type SupplyRequestStatus string

const (
	// SupplyRequestPending awaits an administrator decision.
	SupplyRequestPending SupplyRequestStatus = "pending"
	// SupplyRequestApproved was granted and stock was decremented.
	SupplyRequestApproved SupplyRequestStatus = "approved"
	// SupplyRequestRejected was declined.
	SupplyRequestRejected SupplyRequestStatus = "rejected"
)

// SupplyRequest represents a user's request for office supplies.
type SupplyRequest struct {
	ID          string
	SupplyID    string
	RequesterID string
	Quantity    int
	Note        *string
	Status      SupplyRequestStatus
	DecidedBy   *string
	DecidedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Session represents an authentication session persisted for a user.
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
