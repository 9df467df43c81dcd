package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/workplace-booking/internal/availability"
	"github.com/example/workplace-booking/internal/ics"
	"github.com/example/workplace-booking/internal/persistence"
	"github.com/example/workplace-booking/internal/planner"
	"github.com/example/workplace-booking/internal/recurrence"
	"github.com/example/workplace-booking/internal/timeslot"
)

// BookingStore captures the persistence interactions needed by the service.
type BookingStore interface {
	CreateBooking(ctx context.Context, booking persistence.Booking) error
	CreateBookings(ctx context.Context, bookings []persistence.Booking) error
	UpdateBooking(ctx context.Context, booking persistence.Booking) error
	GetBooking(ctx context.Context, id string) (persistence.Booking, error)
	ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
}

// BookingService orchestrates validation, conflict resolution, and
// persistence for single and recurring bookings.
type BookingService struct {
	bookings    BookingStore
	rooms       RoomStore
	idGenerator func() string
	now         func() time.Time
	previews    *previewCache
	logger      *slog.Logger
}

// NewBookingService wires dependencies for booking operations.
func NewBookingService(bookings BookingStore, rooms RoomStore, idGenerator func() string, now func() time.Time) *BookingService {
	return NewBookingServiceWithLogger(bookings, rooms, idGenerator, now, nil)
}

// NewBookingServiceWithLogger constructs a booking service with a specified logger.
func NewBookingServiceWithLogger(bookings BookingStore, rooms RoomStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		bookings:    bookings,
		rooms:       rooms,
		idGenerator: idGenerator,
		now:         now,
		previews:    newPreviewCache(30*time.Second, 128, now),
		logger:      defaultLogger(logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// CreateBooking validates and persists a single booking owned by the caller.
func (s *BookingService) CreateBooking(ctx context.Context, params CreateBookingParams) (booking Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		err = fmt.Errorf("booking store not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateBooking",
		"principal_id", params.Principal.UserID,
		"room_id", params.Input.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", booking.ID).InfoContext(ctx, "booking created")
	}()

	vErr := validateBookingInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if err = s.ensureRoomExists(ctx, params.Input.RoomID); err != nil {
		return
	}

	record := persistence.Booking{
		ID:        s.idGenerator(),
		RoomID:    params.Input.RoomID,
		OwnerID:   params.Principal.UserID,
		Title:     strings.TrimSpace(params.Input.Title),
		Date:      recurrence.DateOnly(params.Input.Date),
		Start:     params.Input.Start,
		End:       params.Input.End,
		CreatedAt: s.now(),
	}
	record.UpdatedAt = record.CreatedAt

	if err = s.bookings.CreateBooking(ctx, record); err != nil {
		err = mapBookingRepoError(err)
		return
	}

	s.previews.Invalidate()
	booking = toBooking(record)
	return
}

// UpdateBooking validates and updates an existing booking. Only the owner or
// an administrator may change it.
func (s *BookingService) UpdateBooking(ctx context.Context, params UpdateBookingParams) (booking Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		err = fmt.Errorf("booking store not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateBooking",
		"principal_id", params.Principal.UserID,
		"booking_id", params.BookingID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", booking.ID).InfoContext(ctx, "booking updated")
	}()

	var existing persistence.Booking
	existing, err = s.bookings.GetBooking(ctx, params.BookingID)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}

	if existing.OwnerID != params.Principal.UserID && !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := validateBookingInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if err = s.ensureRoomExists(ctx, params.Input.RoomID); err != nil {
		return
	}

	updated := existing
	updated.RoomID = params.Input.RoomID
	updated.Title = strings.TrimSpace(params.Input.Title)
	updated.Date = recurrence.DateOnly(params.Input.Date)
	updated.Start = params.Input.Start
	updated.End = params.Input.End
	updated.UpdatedAt = s.now()

	if err = s.bookings.UpdateBooking(ctx, updated); err != nil {
		err = mapBookingRepoError(err)
		return
	}

	s.previews.Invalidate()
	booking = toBooking(updated)
	return
}

// DeleteBooking removes a booking for its owner or an administrator.
func (s *BookingService) DeleteBooking(ctx context.Context, principal Principal, bookingID string) error {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return fmt.Errorf("booking store not configured")
	}

	logger := s.loggerWith(ctx, "DeleteBooking",
		"principal_id", principal.UserID,
		"booking_id", bookingID,
	)

	existing, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		err = mapBookingRepoError(err)
		logger.ErrorContext(ctx, "failed to delete booking", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if existing.OwnerID != principal.UserID && !principal.IsAdmin {
		logger.ErrorContext(ctx, "failed to delete booking", "error", ErrUnauthorized, "error_kind", ErrorKind(ErrUnauthorized))
		return ErrUnauthorized
	}

	if err := s.bookings.DeleteBooking(ctx, bookingID); err != nil {
		err = mapBookingRepoError(err)
		logger.ErrorContext(ctx, "failed to delete booking", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	s.previews.Invalidate()
	logger.InfoContext(ctx, "booking deleted")
	return nil
}

// GetBooking returns a single booking for any authenticated user.
func (s *BookingService) GetBooking(ctx context.Context, principal Principal, bookingID string) (Booking, error) {
	if s == nil {
		return Booking{}, fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return Booking{}, fmt.Errorf("booking store not configured")
	}

	record, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return Booking{}, mapBookingRepoError(err)
	}
	return toBooking(record), nil
}

// ListBookings enumerates bookings matching the caller's filter, ordered by
// date and start time.
func (s *BookingService) ListBookings(ctx context.Context, params ListBookingsParams) ([]Booking, error) {
	if s == nil {
		return nil, fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return nil, fmt.Errorf("booking store not configured")
	}

	filter := persistence.BookingFilter{
		RoomID:   params.RoomID,
		OwnerID:  params.OwnerID,
		DateFrom: params.DateFrom,
		DateTo:   params.DateTo,
	}
	records, err := s.bookings.ListBookings(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]Booking, 0, len(records))
	for _, record := range records {
		out = append(out, toBooking(record))
	}
	return out, nil
}

// PreviewRecurring expands the recurrence rule, resolves each occurrence
// against current bookings, and applies the caller's room substitutions.
// Identical requests are served from a short lived cache that any booking
// write invalidates.
func (s *BookingService) PreviewRecurring(ctx context.Context, params PreviewRecurringParams) (preview RecurringPreview, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		err = fmt.Errorf("booking store not configured")
		return
	}

	logger := s.loggerWith(ctx, "PreviewRecurring",
		"principal_id", params.Principal.UserID,
		"room_id", params.Input.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to preview recurring booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"instances", len(preview.Instances),
			"conflicts", preview.Conflicts,
		).InfoContext(ctx, "recurring booking previewed")
	}()

	key := buildPreviewCacheKey(params.Input, params.Substitutions)
	if cached, ok := s.previews.Get(key); ok {
		preview = cached
		return
	}

	preview, err = s.resolveRecurring(ctx, params.Input, params.Substitutions)
	if err != nil {
		return
	}

	s.previews.Store(key, preview)
	return
}

// CommitRecurring re-resolves the request against current data and persists
// the whole series atomically. Series with unresolved conflicts are refused;
// the caller must substitute rooms or change the rule first.
func (s *BookingService) CommitRecurring(ctx context.Context, params CommitRecurringParams) (result CommitRecurringResult, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		err = fmt.Errorf("booking store not configured")
		return
	}

	logger := s.loggerWith(ctx, "CommitRecurring",
		"principal_id", params.Principal.UserID,
		"room_id", params.Input.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to commit recurring booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"series_id", result.SeriesID,
			"bookings", len(result.Bookings),
		).InfoContext(ctx, "recurring booking committed")
	}()

	var preview RecurringPreview
	preview, err = s.resolveRecurring(ctx, params.Input, params.Substitutions)
	if err != nil {
		return
	}

	if planner.HasConflicts(preview.Instances) {
		vErr := &ValidationError{}
		vErr.add("instances", fmt.Sprintf("%d occurrences still conflict; substitute rooms or adjust the rule", preview.Conflicts))
		err = vErr
		return
	}

	now := s.now()
	seriesID := s.idGenerator()
	records := make([]persistence.Booking, 0, len(preview.Instances))
	for _, instance := range preview.Instances {
		records = append(records, persistence.Booking{
			ID:        s.idGenerator(),
			RoomID:    instance.RoomID,
			OwnerID:   params.Principal.UserID,
			Title:     strings.TrimSpace(params.Input.Title),
			Date:      instance.Date,
			Start:     instance.Start,
			End:       instance.End,
			SeriesID:  &seriesID,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if err = s.bookings.CreateBookings(ctx, records); err != nil {
		err = mapBookingRepoError(err)
		return
	}

	s.previews.Invalidate()

	bookings := make([]Booking, 0, len(records))
	for _, record := range records {
		bookings = append(bookings, toBooking(record))
	}
	result = CommitRecurringResult{SeriesID: seriesID, Bookings: bookings}
	return
}

// ExportRecurring renders the resolved series as an iCalendar document.
func (s *BookingService) ExportRecurring(ctx context.Context, params ExportRecurringParams) (string, error) {
	if s == nil {
		return "", fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return "", fmt.Errorf("booking store not configured")
	}

	preview, err := s.resolveRecurring(ctx, params.Input, params.Substitutions)
	if err != nil {
		return "", err
	}

	var roomName, location string
	if s.rooms != nil {
		room, err := s.rooms.GetRoom(ctx, params.Input.RoomID)
		if err == nil {
			roomName = room.Name
			location = room.Location
		}
	}

	document, err := ics.Export(ics.Series{
		ID:        s.idGenerator(),
		Title:     strings.TrimSpace(params.Input.Title),
		RoomName:  roomName,
		Location:  location,
		Start:     params.Input.Start,
		End:       params.Input.End,
		Rule:      params.Input.Rule,
		Instances: preview.Instances,
	})
	if err != nil {
		return "", err
	}
	return document, nil
}

// resolveRecurring performs the expansion and conflict resolution shared by
// preview, commit, and export.
func (s *BookingService) resolveRecurring(ctx context.Context, input RecurringInput, substitutions map[int]string) (RecurringPreview, error) {
	vErr := validateRecurringInput(input)
	if vErr.HasErrors() {
		return RecurringPreview{}, vErr
	}
	if err := s.ensureRoomExists(ctx, input.RoomID); err != nil {
		return RecurringPreview{}, err
	}

	dates, err := recurrence.Expand(recurrence.DateOnly(input.StartDate), input.Rule)
	if err != nil {
		return RecurringPreview{}, mapRecurrenceError(err)
	}

	snapshot, err := s.loadSnapshot(ctx, dates)
	if err != nil {
		return RecurringPreview{}, err
	}

	instances := planner.Resolve(dates, input.RoomID, input.Start, input.End, snapshot)

	catalog, err := s.loadCatalog(ctx)
	if err != nil {
		return RecurringPreview{}, err
	}
	eligible := planner.EligibleRooms(catalog, input.MinCapacity, input.RequiredEquipment)

	instances, err = applySubstitutions(instances, substitutions, eligible, snapshot)
	if err != nil {
		return RecurringPreview{}, err
	}

	alternatives := suggestAlternatives(instances, input.RoomID, eligible, snapshot)
	counts := planner.CountByStatus(instances)

	return RecurringPreview{
		Instances:    instances,
		Alternatives: alternatives,
		Summary:      planner.Summarize(input.Rule, timeslot.Span{Start: input.Start, End: input.End}, instances),
		Conflicts:    counts[planner.StatusConflicting],
	}, nil
}

// applySubstitutions moves instances to caller chosen rooms, refusing rooms
// that are ineligible or already booked at the slot.
func applySubstitutions(instances []planner.Instance, substitutions map[int]string, eligible []planner.Room, snapshot []availability.Booking) ([]planner.Instance, error) {
	if len(substitutions) == 0 {
		return instances, nil
	}

	eligibleIDs := make(map[string]struct{}, len(eligible))
	for _, room := range eligible {
		eligibleIDs[room.ID] = struct{}{}
	}

	out := instances
	for index, roomID := range substitutions {
		vErr := &ValidationError{}
		field := fmt.Sprintf("substitutions.%d", index)

		if index < 0 || index >= len(out) {
			vErr.add(field, "instance index out of range")
			return nil, vErr
		}
		if _, ok := eligibleIDs[roomID]; !ok {
			vErr.add(field, "room is not an eligible substitute")
			return nil, vErr
		}

		target := out[index]
		if !availability.IsFree(snapshot, roomID, target.Date, target.Start, target.End) {
			vErr.add(field, "substitute room is already booked at that time")
			return nil, vErr
		}

		substituted, err := planner.SubstituteRoom(out, index, roomID)
		if err != nil {
			if errors.Is(err, planner.ErrNotSubstitutable) {
				vErr.add(field, "instance has no conflict to resolve")
				return nil, vErr
			}
			return nil, err
		}
		out = substituted
	}
	return out, nil
}

// suggestAlternatives lists, per still-conflicting instance, the eligible
// rooms that are free at the slot.
func suggestAlternatives(instances []planner.Instance, requestedRoomID string, eligible []planner.Room, snapshot []availability.Booking) map[int][]string {
	var alternatives map[int][]string
	for index, instance := range instances {
		if instance.Status != planner.StatusConflicting {
			continue
		}
		var free []string
		for _, room := range eligible {
			if room.ID == requestedRoomID {
				continue
			}
			if availability.IsFree(snapshot, room.ID, instance.Date, instance.Start, instance.End) {
				free = append(free, room.ID)
			}
		}
		if len(free) == 0 {
			continue
		}
		if alternatives == nil {
			alternatives = make(map[int][]string)
		}
		alternatives[index] = free
	}
	return alternatives
}

// loadSnapshot fetches all bookings covering the expanded date range, across
// every room so substitutes can be checked too.
func (s *BookingService) loadSnapshot(ctx context.Context, dates []time.Time) ([]availability.Booking, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	from := dates[0]
	to := dates[len(dates)-1]
	records, err := s.bookings.ListBookings(ctx, persistence.BookingFilter{DateFrom: &from, DateTo: &to})
	if err != nil {
		return nil, err
	}

	snapshot := make([]availability.Booking, 0, len(records))
	for _, record := range records {
		snapshot = append(snapshot, availability.Booking{
			ID:      record.ID,
			RoomID:  record.RoomID,
			OwnerID: record.OwnerID,
			Title:   record.Title,
			Date:    record.Date,
			Start:   record.Start,
			End:     record.End,
		})
	}
	return snapshot, nil
}

func (s *BookingService) loadCatalog(ctx context.Context) ([]planner.Room, error) {
	if s.rooms == nil {
		return nil, nil
	}
	records, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	catalog := make([]planner.Room, 0, len(records))
	for _, record := range records {
		catalog = append(catalog, planner.Room{
			ID:        record.ID,
			Name:      record.Name,
			Location:  record.Location,
			Capacity:  record.Capacity,
			Equipment: record.Equipment,
		})
	}
	return catalog, nil
}

func (s *BookingService) ensureRoomExists(ctx context.Context, roomID string) error {
	if s.rooms == nil {
		return nil
	}
	if _, err := s.rooms.GetRoom(ctx, roomID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			vErr := &ValidationError{}
			vErr.add("room_id", "room does not exist")
			return vErr
		}
		return err
	}
	return nil
}

func toBooking(record persistence.Booking) Booking {
	booking := Booking{
		ID:        record.ID,
		RoomID:    record.RoomID,
		OwnerID:   record.OwnerID,
		Title:     record.Title,
		Date:      record.Date,
		Start:     record.Start,
		End:       record.End,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
	if record.SeriesID != nil {
		seriesID := *record.SeriesID
		booking.SeriesID = &seriesID
	}
	return booking
}

func validateBookingInput(input BookingInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if input.RoomID == "" {
		vErr.add("room_id", "room is required")
	}
	if input.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	validateSlot(input.Start, input.End, vErr)

	return vErr
}

func validateRecurringInput(input RecurringInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if input.RoomID == "" {
		vErr.add("room_id", "room is required")
	}
	if input.StartDate.IsZero() {
		vErr.add("start_date", "start date is required")
	}
	validateSlot(input.Start, input.End, vErr)
	if input.MinCapacity < 0 {
		vErr.add("min_capacity", "minimum capacity cannot be negative")
	}

	if !vErr.HasErrors() {
		if err := input.Rule.Validate(recurrence.DateOnly(input.StartDate)); err != nil {
			vErr.merge(recurrenceValidationError(err))
		}
	}

	return vErr
}

func validateSlot(start, end timeslot.Minutes, vErr *ValidationError) {
	span := timeslot.Span{Start: start, End: end}
	if !span.Valid() {
		vErr.add("time", "start must be before end, within one day")
	}
}

func mapRecurrenceError(err error) error {
	if err == nil {
		return nil
	}
	if vErr := recurrenceValidationError(err); vErr.HasErrors() {
		return vErr
	}
	return err
}

func recurrenceValidationError(err error) *ValidationError {
	vErr := &ValidationError{}
	switch {
	case errors.Is(err, recurrence.ErrInvalidPattern):
		vErr.add("pattern", "unknown recurrence pattern")
	case errors.Is(err, recurrence.ErrInvalidFrequency):
		vErr.add("frequency", "frequency must be positive")
	case errors.Is(err, recurrence.ErrEmptyWeekdays):
		vErr.add("weekdays", "weekly rules need at least one weekday")
	case errors.Is(err, recurrence.ErrInvalidCount):
		vErr.add("count", "occurrence count must be positive")
	case errors.Is(err, recurrence.ErrEndBeforeStart):
		vErr.add("until", "end date is before the start date")
	case errors.Is(err, recurrence.ErrAmbiguousEnd):
		vErr.add("rule", "set exactly one of count and end date")
	case errors.Is(err, recurrence.ErrUnsupportedMonthlyMode):
		vErr.add("monthly_mode", "monthly weekday-position rules are not supported")
	case errors.Is(err, recurrence.ErrSpanExceeded):
		vErr.add("rule", "rule expands beyond the supported span")
	}
	return vErr
}

func mapBookingRepoError(err error) error {
	if err == nil {
		return nil
	}

	var conflict *persistence.ConflictError
	if errors.As(err, &conflict) {
		return &ConflictError{
			RoomID: conflict.RoomID,
			Date:   conflict.Date,
			Start:  conflict.Start,
			End:    conflict.End,
		}
	}

	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("room_id", "related records are missing")
		return vErr
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("time", "start must be before end")
		return vErr
	}
	return err
}
