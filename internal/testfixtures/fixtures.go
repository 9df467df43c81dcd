package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/workplace-booking/internal/application"
	"github.com/example/workplace-booking/internal/persistence"
	"github.com/example/workplace-booking/internal/recurrence"
	"github.com/example/workplace-booking/internal/timeslot"
)

var (
	userCounter    uint64
	roomCounter    uint64
	bookingCounter uint64
	supplyCounter  uint64
	requestCounter uint64
	sessionCounter uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic user record that can be materialised
// for application or persistence tests.
type UserFixture struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	IsAdmin      bool
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:           id,
		Email:        fmt.Sprintf("%s@example.com", id),
		DisplayName:  fmt.Sprintf("User %03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		IsAdmin:      false,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserDisplayName overrides the generated display name.
func WithUserDisplayName(name string) UserOption {
	return func(f *UserFixture) {
		f.DisplayName = name
	}
}

// WithUserPasswordHash overrides the stored password hash.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// WithUserAdmin toggles the administrator flag.
func WithUserAdmin(isAdmin bool) UserOption {
	return func(f *UserFixture) {
		f.IsAdmin = isAdmin
	}
}

// WithUserDisabled marks the account as disabled.
func WithUserDisabled() UserOption {
	return func(f *UserFixture) {
		f.Disabled = true
	}
}

// WithUserTimestamps overrides both timestamps.
func WithUserTimestamps(created, updated time.Time) UserOption {
	return func(f *UserFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application converts the fixture into the application layer representation.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:          f.ID,
		Email:       f.Email,
		DisplayName: f.DisplayName,
		IsAdmin:     f.IsAdmin,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Principal converts the fixture into an authenticated principal.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID, IsAdmin: f.IsAdmin}
}

// Persistence converts the fixture into the storage representation.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:          f.ID,
		Email:       f.Email,
		DisplayName: f.DisplayName,
		IsAdmin:     f.IsAdmin,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Credentials converts the fixture into a stored credential row.
func (f UserFixture) Credentials() persistence.Credentials {
	return persistence.Credentials{
		UserID:       f.ID,
		PasswordHash: f.PasswordHash,
		Disabled:     f.Disabled,
	}
}

// Input converts the fixture into caller provided user attributes.
func (f UserFixture) Input() application.UserInput {
	return application.UserInput{
		Email:       f.Email,
		DisplayName: f.DisplayName,
		IsAdmin:     f.IsAdmin,
	}
}

// ----------------------------- Room fixtures -----------------------------

// RoomFixture represents a deterministic meeting room record.
type RoomFixture struct {
	ID        string
	Name      string
	Location  string
	Capacity  int
	Equipment []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic room fixture with optional overrides.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	id := fmt.Sprintf("room-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := RoomFixture{
		ID:        id,
		Name:      fmt.Sprintf("Room %03d", idx),
		Location:  fmt.Sprintf("Floor %d", (idx%5)+1),
		Capacity:  int(4 + idx%8),
		Equipment: []string{"Whiteboard"},
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) {
		f.ID = id
	}
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(f *RoomFixture) {
		f.Name = name
	}
}

// WithRoomLocation overrides the generated location.
func WithRoomLocation(location string) RoomOption {
	return func(f *RoomFixture) {
		f.Location = location
	}
}

// WithRoomCapacity overrides the generated capacity.
func WithRoomCapacity(capacity int) RoomOption {
	return func(f *RoomFixture) {
		f.Capacity = capacity
	}
}

// WithRoomEquipment replaces the equipment list.
func WithRoomEquipment(equipment ...string) RoomOption {
	return func(f *RoomFixture) {
		f.Equipment = equipment
	}
}

// WithRoomTimestamps overrides both timestamps.
func WithRoomTimestamps(created, updated time.Time) RoomOption {
	return func(f *RoomFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application converts the fixture into the application layer representation.
func (f RoomFixture) Application() application.Room {
	return application.Room{
		ID:        f.ID,
		Name:      f.Name,
		Location:  f.Location,
		Capacity:  f.Capacity,
		Equipment: append([]string(nil), f.Equipment...),
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence converts the fixture into the storage representation.
func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{
		ID:        f.ID,
		Name:      f.Name,
		Location:  f.Location,
		Capacity:  f.Capacity,
		Equipment: append([]string(nil), f.Equipment...),
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Input converts the fixture into caller provided room attributes.
func (f RoomFixture) Input() application.RoomInput {
	return application.RoomInput{
		Name:      f.Name,
		Location:  f.Location,
		Capacity:  f.Capacity,
		Equipment: append([]string(nil), f.Equipment...),
	}
}

// --------------------------- Booking fixtures ----------------------------

// BookingFixture represents a deterministic booking record.
type BookingFixture struct {
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

// BookingOption configures the generated booking fixture.
type BookingOption func(*BookingFixture)

// NewBookingFixture returns a deterministic booking fixture. Successive
// fixtures occupy successive days so they do not conflict by default.
func NewBookingFixture(opts ...BookingOption) BookingFixture {
	idx := atomic.AddUint64(&bookingCounter, 1)
	id := fmt.Sprintf("booking-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	date := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(idx-1))
	fixture := BookingFixture{
		ID:        id,
		RoomID:    "room-001",
		OwnerID:   "user-001",
		Title:     fmt.Sprintf("Booking %03d", idx),
		Date:      date,
		Start:     timeslot.MustParse("09:00"),
		End:       timeslot.MustParse("10:00"),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithBookingID overrides the generated booking ID.
func WithBookingID(id string) BookingOption {
	return func(f *BookingFixture) {
		f.ID = id
	}
}

// WithBookingRoom overrides the booked room.
func WithBookingRoom(roomID string) BookingOption {
	return func(f *BookingFixture) {
		f.RoomID = roomID
	}
}

// WithBookingOwner overrides the owning user.
func WithBookingOwner(ownerID string) BookingOption {
	return func(f *BookingFixture) {
		f.OwnerID = ownerID
	}
}

// WithBookingTitle overrides the generated title.
func WithBookingTitle(title string) BookingOption {
	return func(f *BookingFixture) {
		f.Title = title
	}
}

// WithBookingDate overrides the calendar day.
func WithBookingDate(date time.Time) BookingOption {
	return func(f *BookingFixture) {
		f.Date = date
	}
}

// WithBookingSlot overrides the start and end minutes.
func WithBookingSlot(start, end timeslot.Minutes) BookingOption {
	return func(f *BookingFixture) {
		f.Start = start
		f.End = end
	}
}

// WithBookingSeries attaches the booking to a recurring series.
func WithBookingSeries(seriesID string) BookingOption {
	return func(f *BookingFixture) {
		f.SeriesID = &seriesID
	}
}

// WithBookingTimestamps overrides both timestamps.
func WithBookingTimestamps(created, updated time.Time) BookingOption {
	return func(f *BookingFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application converts the fixture into the application layer representation.
func (f BookingFixture) Application() application.Booking {
	return application.Booking{
		ID:        f.ID,
		RoomID:    f.RoomID,
		OwnerID:   f.OwnerID,
		Title:     f.Title,
		Date:      f.Date,
		Start:     f.Start,
		End:       f.End,
		SeriesID:  f.SeriesID,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence converts the fixture into the storage representation.
func (f BookingFixture) Persistence() persistence.Booking {
	return persistence.Booking{
		ID:        f.ID,
		RoomID:    f.RoomID,
		OwnerID:   f.OwnerID,
		Title:     f.Title,
		Date:      f.Date,
		Start:     f.Start,
		End:       f.End,
		SeriesID:  f.SeriesID,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Input converts the fixture into caller provided booking attributes.
func (f BookingFixture) Input() application.BookingInput {
	return application.BookingInput{
		RoomID: f.RoomID,
		Title:  f.Title,
		Date:   f.Date,
		Start:  f.Start,
		End:    f.End,
	}
}

// RecurringInput converts the fixture into a recurring request using the
// supplied rule, anchored at the fixture's date and slot.
func (f BookingFixture) RecurringInput(rule recurrence.Rule) application.RecurringInput {
	return application.RecurringInput{
		RoomID:    f.RoomID,
		Title:     f.Title,
		StartDate: f.Date,
		Start:     f.Start,
		End:       f.End,
		Rule:      rule,
	}
}

// ---------------------------- Supply fixtures ----------------------------

// SupplyFixture represents a deterministic office supply catalog entry.
type SupplyFixture struct {
	ID        string
	Name      string
	Category  string
	Unit      string
	Stock     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SupplyOption configures the generated supply fixture.
type SupplyOption func(*SupplyFixture)

// NewSupplyFixture returns a deterministic supply fixture with optional
// overrides.
func NewSupplyFixture(opts ...SupplyOption) SupplyFixture {
	idx := atomic.AddUint64(&supplyCounter, 1)
	id := fmt.Sprintf("supply-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := SupplyFixture{
		ID:        id,
		Name:      fmt.Sprintf("Supply %03d", idx),
		Category:  "stationery",
		Unit:      "box",
		Stock:     int(10 * idx),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSupplyID overrides the generated supply ID.
func WithSupplyID(id string) SupplyOption {
	return func(f *SupplyFixture) {
		f.ID = id
	}
}

// WithSupplyName overrides the generated name.
func WithSupplyName(name string) SupplyOption {
	return func(f *SupplyFixture) {
		f.Name = name
	}
}

// WithSupplyCategory overrides the generated category.
func WithSupplyCategory(category string) SupplyOption {
	return func(f *SupplyFixture) {
		f.Category = category
	}
}

// WithSupplyUnit overrides the generated unit.
func WithSupplyUnit(unit string) SupplyOption {
	return func(f *SupplyFixture) {
		f.Unit = unit
	}
}

// WithSupplyStock overrides the stock level.
func WithSupplyStock(stock int) SupplyOption {
	return func(f *SupplyFixture) {
		f.Stock = stock
	}
}

// Application converts the fixture into the application layer representation.
func (f SupplyFixture) Application() application.Supply {
	return application.Supply{
		ID:        f.ID,
		Name:      f.Name,
		Category:  f.Category,
		Unit:      f.Unit,
		Stock:     f.Stock,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence converts the fixture into the storage representation.
func (f SupplyFixture) Persistence() persistence.Supply {
	return persistence.Supply{
		ID:        f.ID,
		Name:      f.Name,
		Category:  f.Category,
		Unit:      f.Unit,
		Stock:     f.Stock,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Input converts the fixture into caller provided supply attributes.
func (f SupplyFixture) Input() application.SupplyInput {
	return application.SupplyInput{
		Name:     f.Name,
		Category: f.Category,
		Unit:     f.Unit,
		Stock:    f.Stock,
	}
}

// ------------------------ Supply request fixtures ------------------------

// SupplyRequestFixture represents a deterministic supply request.
type SupplyRequestFixture struct {
	ID          string
	SupplyID    string
	RequesterID string
	Quantity    int
	Note        *string
	Status      persistence.SupplyRequestStatus
	DecidedBy   *string
	DecidedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SupplyRequestOption configures the generated supply request fixture.
type SupplyRequestOption func(*SupplyRequestFixture)

// NewSupplyRequestFixture returns a deterministic pending supply request
// with optional overrides.
func NewSupplyRequestFixture(opts ...SupplyRequestOption) SupplyRequestFixture {
	idx := atomic.AddUint64(&requestCounter, 1)
	id := fmt.Sprintf("request-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := SupplyRequestFixture{
		ID:          id,
		SupplyID:    "supply-001",
		RequesterID: "user-001",
		Quantity:    1,
		Status:      persistence.SupplyRequestPending,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRequestID overrides the generated request ID.
func WithRequestID(id string) SupplyRequestOption {
	return func(f *SupplyRequestFixture) {
		f.ID = id
	}
}

// WithRequestSupply overrides the requested supply.
func WithRequestSupply(supplyID string) SupplyRequestOption {
	return func(f *SupplyRequestFixture) {
		f.SupplyID = supplyID
	}
}

// WithRequestRequester overrides the requesting user.
func WithRequestRequester(userID string) SupplyRequestOption {
	return func(f *SupplyRequestFixture) {
		f.RequesterID = userID
	}
}

// WithRequestQuantity overrides the requested quantity.
func WithRequestQuantity(quantity int) SupplyRequestOption {
	return func(f *SupplyRequestFixture) {
		f.Quantity = quantity
	}
}

// WithRequestNote attaches a note to the request.
func WithRequestNote(note string) SupplyRequestOption {
	return func(f *SupplyRequestFixture) {
		f.Note = &note
	}
}

// WithRequestDecision marks the request decided.
func WithRequestDecision(status persistence.SupplyRequestStatus, decidedBy string, decidedAt time.Time) SupplyRequestOption {
	return func(f *SupplyRequestFixture) {
		f.Status = status
		f.DecidedBy = &decidedBy
		f.DecidedAt = &decidedAt
	}
}

// Application converts the fixture into the application layer representation.
func (f SupplyRequestFixture) Application() application.SupplyRequest {
	return application.SupplyRequest{
		ID:          f.ID,
		SupplyID:    f.SupplyID,
		RequesterID: f.RequesterID,
		Quantity:    f.Quantity,
		Note:        f.Note,
		Status:      string(f.Status),
		DecidedBy:   f.DecidedBy,
		DecidedAt:   f.DecidedAt,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Persistence converts the fixture into the storage representation.
func (f SupplyRequestFixture) Persistence() persistence.SupplyRequest {
	return persistence.SupplyRequest{
		ID:          f.ID,
		SupplyID:    f.SupplyID,
		RequesterID: f.RequesterID,
		Quantity:    f.Quantity,
		Note:        f.Note,
		Status:      f.Status,
		DecidedBy:   f.DecidedBy,
		DecidedAt:   f.DecidedAt,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Input converts the fixture into caller provided request attributes.
func (f SupplyRequestFixture) Input() application.SupplyRequestInput {
	return application.SupplyRequestInput{
		SupplyID: f.SupplyID,
		Quantity: f.Quantity,
		Note:     f.Note,
	}
}

// --------------------------- Session fixtures ----------------------------

// SessionFixture represents a deterministic authentication session.
type SessionFixture struct {
	ID          string
	UserID      string
	Token       string
	Fingerprint string
	ExpiresAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	RevokedAt   *time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a deterministic live session with optional
// overrides. Sessions expire 24 hours after creation.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	id := fmt.Sprintf("session-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := SessionFixture{
		ID:        id,
		UserID:    "user-001",
		Token:     fmt.Sprintf("token-%03d", idx),
		ExpiresAt: created.Add(24 * time.Hour),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) SessionOption {
	return func(f *SessionFixture) {
		f.ID = id
	}
}

// WithSessionUser overrides the owning user.
func WithSessionUser(userID string) SessionOption {
	return func(f *SessionFixture) {
		f.UserID = userID
	}
}

// WithSessionToken overrides the opaque token.
func WithSessionToken(token string) SessionOption {
	return func(f *SessionFixture) {
		f.Token = token
	}
}

// WithSessionFingerprint overrides the client fingerprint.
func WithSessionFingerprint(fingerprint string) SessionOption {
	return func(f *SessionFixture) {
		f.Fingerprint = fingerprint
	}
}

// WithSessionExpiry overrides the expiry instant.
func WithSessionExpiry(expiresAt time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.ExpiresAt = expiresAt
	}
}

// WithSessionRevoked marks the session revoked at the given instant.
func WithSessionRevoked(revokedAt time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.RevokedAt = &revokedAt
	}
}

// Application converts the fixture into the application layer representation.
func (f SessionFixture) Application() application.Session {
	return application.Session{
		ID:          f.ID,
		UserID:      f.UserID,
		Token:       f.Token,
		Fingerprint: f.Fingerprint,
		ExpiresAt:   f.ExpiresAt,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
		RevokedAt:   f.RevokedAt,
	}
}

// Persistence converts the fixture into the storage representation.
func (f SessionFixture) Persistence() persistence.Session {
	return persistence.Session{
		ID:          f.ID,
		UserID:      f.UserID,
		Token:       f.Token,
		Fingerprint: f.Fingerprint,
		ExpiresAt:   f.ExpiresAt,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
		RevokedAt:   f.RevokedAt,
	}
}
