package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/workplace-booking/internal/application"
	"github.com/example/workplace-booking/internal/planner"
	"github.com/example/workplace-booking/internal/recurrence"
	"github.com/example/workplace-booking/internal/timeslot"
)

type bookingService interface {
	CreateBooking(ctx context.Context, params application.CreateBookingParams) (application.Booking, error)
	UpdateBooking(ctx context.Context, params application.UpdateBookingParams) (application.Booking, error)
	DeleteBooking(ctx context.Context, principal application.Principal, bookingID string) error
	GetBooking(ctx context.Context, principal application.Principal, bookingID string) (application.Booking, error)
	ListBookings(ctx context.Context, params application.ListBookingsParams) ([]application.Booking, error)
	PreviewRecurring(ctx context.Context, params application.PreviewRecurringParams) (application.RecurringPreview, error)
	CommitRecurring(ctx context.Context, params application.CommitRecurringParams) (application.CommitRecurringResult, error)
	ExportRecurring(ctx context.Context, params application.ExportRecurringParams) (string, error)
}

type BookingHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	return &BookingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID, "room_id", input.RoomID)

	booking, err := h.service.CreateBooking(r.Context(), application.CreateBookingParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "booking creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("booking_id", booking.ID).InfoContext(r.Context(), "booking created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, bookingResponse{Booking: toBookingDTO(booking)})
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID, ok := BookingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "booking_id", bookingID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "booking_id", bookingID)

	booking, err := h.service.UpdateBooking(r.Context(), application.UpdateBookingParams{
		Principal: principal,
		BookingID: bookingID,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "booking update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "booking updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Booking: toBookingDTO(booking)})
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID, ok := BookingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "booking_id", bookingID)
	if err := h.service.DeleteBooking(r.Context(), principal, bookingID); err != nil {
		logger.ErrorContext(r.Context(), "booking delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "booking deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID, ok := BookingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Get", "principal_id", principal.UserID, "booking_id", bookingID)

	booking, err := h.service.GetBooking(r.Context(), principal, bookingID)
	if err != nil {
		logger.ErrorContext(r.Context(), "booking fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Booking: toBookingDTO(booking)})
}

// List returns bookings narrowed by the room_id, owner_id, from, and to
// query parameters. The date range is inclusive on both ends.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	params := application.ListBookingsParams{Principal: principal}
	query := r.URL.Query()
	if roomID := strings.TrimSpace(query.Get("room_id")); roomID != "" {
		params.RoomID = &roomID
	}
	if ownerID := strings.TrimSpace(query.Get("owner_id")); ownerID != "" {
		params.OwnerID = &ownerID
	}
	if from := strings.TrimSpace(query.Get("from")); from != "" {
		ts, err := time.Parse("2006-01-02", from)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
		params.DateFrom = &ts
	}
	if to := strings.TrimSpace(query.Get("to")); to != "" {
		ts, err := time.Parse("2006-01-02", to)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
		params.DateTo = &ts
	}

	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)
	bookings, err := h.service.ListBookings(r.Context(), params)
	if err != nil {
		logger.ErrorContext(r.Context(), "booking list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(bookings)).InfoContext(r.Context(), "bookings listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBookingsResponse{Bookings: toBookingDTOs(bookings)})
}

// Preview resolves a recurring request without persisting anything.
func (h *BookingHandler) Preview(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	req, ok := h.decodeRecurring(w, r, "Preview")
	if !ok {
		return
	}

	logger := h.log(r.Context(), "Preview", "principal_id", principal.UserID, "room_id", req.RoomID)

	preview, err := h.service.PreviewRecurring(r.Context(), application.PreviewRecurringParams{
		Principal:     principal,
		Input:         req.input,
		Substitutions: req.substitutions,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "recurring preview failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("instance_count", len(preview.Instances), "conflicts", preview.Conflicts).InfoContext(r.Context(), "recurring preview resolved")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPreviewResponse(preview))
}

// Commit persists a recurring request previously inspected via Preview.
func (h *BookingHandler) Commit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	req, ok := h.decodeRecurring(w, r, "Commit")
	if !ok {
		return
	}

	logger := h.log(r.Context(), "Commit", "principal_id", principal.UserID, "room_id", req.RoomID)

	result, err := h.service.CommitRecurring(r.Context(), application.CommitRecurringParams{
		Principal:     principal,
		Input:         req.input,
		Substitutions: req.substitutions,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "recurring commit failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("series_id", result.SeriesID, "booking_count", len(result.Bookings)).InfoContext(r.Context(), "recurring series committed")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, commitResponse{
		SeriesID: result.SeriesID,
		Bookings: toBookingDTOs(result.Bookings),
	})
}

// Export renders a recurring request as an iCalendar document.
func (h *BookingHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	req, ok := h.decodeRecurring(w, r, "Export")
	if !ok {
		return
	}

	logger := h.log(r.Context(), "Export", "principal_id", principal.UserID, "room_id", req.RoomID)

	document, err := h.service.ExportRecurring(r.Context(), application.ExportRecurringParams{
		Principal:     principal,
		Input:         req.input,
		Substitutions: req.substitutions,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "recurring export failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "recurring series exported")
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="booking-series.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(document)); err != nil {
		logger.ErrorContext(r.Context(), "failed to write calendar document", "error", err)
	}
}

type decodedRecurring struct {
	RoomID        string
	input         application.RecurringInput
	substitutions map[int]string
}

func (h *BookingHandler) decodeRecurring(w http.ResponseWriter, r *http.Request, operation string) (decodedRecurring, bool) {
	var req recurringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), operation, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode recurring request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return decodedRecurring{}, false
	}

	input, substitutions, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return decodedRecurring{}, false
	}

	return decodedRecurring{RoomID: input.RoomID, input: input, substitutions: substitutions}, true
}

type bookingRequest struct {
	RoomID string `json:"room_id"`
	Title  string `json:"title"`
	Date   string `json:"date"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

func (r bookingRequest) toInput() (application.BookingInput, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return application.BookingInput{}, err
	}
	start, err := parseMinutes(r.Start)
	if err != nil {
		return application.BookingInput{}, err
	}
	end, err := parseMinutes(r.End)
	if err != nil {
		return application.BookingInput{}, err
	}
	return application.BookingInput{
		RoomID: strings.TrimSpace(r.RoomID),
		Title:  strings.TrimSpace(r.Title),
		Date:   date,
		Start:  start,
		End:    end,
	}, nil
}

type recurringRequest struct {
	RoomID        string            `json:"room_id"`
	Title         string            `json:"title"`
	StartDate     string            `json:"start_date"`
	Start         string            `json:"start"`
	End           string            `json:"end"`
	Rule          ruleRequest       `json:"rule"`
	MinCapacity   int               `json:"min_capacity"`
	Equipment     []string          `json:"equipment"`
	Substitutions map[string]string `json:"substitutions"`
}

type ruleRequest struct {
	Pattern     string  `json:"pattern"`
	Frequency   int     `json:"frequency"`
	Weekdays    []int   `json:"weekdays"`
	MonthlyMode string  `json:"monthly_mode"`
	Count       int     `json:"count"`
	Until       *string `json:"until"`
}

func (r recurringRequest) toInput() (application.RecurringInput, map[int]string, error) {
	startDate, err := parseDate(r.StartDate)
	if err != nil {
		return application.RecurringInput{}, nil, err
	}
	start, err := parseMinutes(r.Start)
	if err != nil {
		return application.RecurringInput{}, nil, err
	}
	end, err := parseMinutes(r.End)
	if err != nil {
		return application.RecurringInput{}, nil, err
	}

	rule, err := r.Rule.toRule()
	if err != nil {
		return application.RecurringInput{}, nil, err
	}

	substitutions, err := parseSubstitutions(r.Substitutions)
	if err != nil {
		return application.RecurringInput{}, nil, err
	}

	input := application.RecurringInput{
		RoomID:            strings.TrimSpace(r.RoomID),
		Title:             strings.TrimSpace(r.Title),
		StartDate:         startDate,
		Start:             start,
		End:               end,
		Rule:              rule,
		MinCapacity:       r.MinCapacity,
		RequiredEquipment: append([]string(nil), r.Equipment...),
	}
	return input, substitutions, nil
}

// toRule translates the wire rule into the engine's shape. An unknown pattern
// or monthly mode is carried through as the unspecified value so the service
// reports it as a field error instead of a blunt 400.
func (r ruleRequest) toRule() (recurrence.Rule, error) {
	rule := recurrence.Rule{
		Frequency: r.Frequency,
		Count:     r.Count,
	}

	if pattern, err := recurrence.ParsePattern(strings.TrimSpace(r.Pattern)); err == nil {
		rule.Pattern = pattern
	}

	if len(r.Weekdays) > 0 {
		rule.Weekdays = make([]time.Weekday, 0, len(r.Weekdays))
		for _, day := range r.Weekdays {
			if day < 0 || day > 6 {
				return recurrence.Rule{}, errBadRequestBody
			}
			rule.Weekdays = append(rule.Weekdays, time.Weekday(day))
		}
	}

	if strings.TrimSpace(r.MonthlyMode) == "weekday_position" {
		rule.MonthlyMode = recurrence.MonthlyModeWeekdayPosition
	}

	if r.Until != nil {
		until, err := parseDate(*r.Until)
		if err != nil {
			return recurrence.Rule{}, err
		}
		rule.Until = &until
	}

	return rule, nil
}

func parseSubstitutions(raw map[string]string) (map[int]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[int]string, len(raw))
	for key, roomID := range raw {
		index, err := strconv.Atoi(key)
		if err != nil {
			return nil, errBadRequestBody
		}
		out[index] = strings.TrimSpace(roomID)
	}
	return out, nil
}

func parseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse("2006-01-02", trimmed)
	if err != nil {
		return time.Time{}, errBadRequestBody
	}
	return ts, nil
}

func parseMinutes(value string) (timeslot.Minutes, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	minutes, err := timeslot.Parse(trimmed)
	if err != nil {
		return 0, errBadRequestBody
	}
	return minutes, nil
}

type bookingResponse struct {
	Booking bookingDTO `json:"booking"`
}

type listBookingsResponse struct {
	Bookings []bookingDTO `json:"bookings"`
}

type commitResponse struct {
	SeriesID string       `json:"series_id"`
	Bookings []bookingDTO `json:"bookings"`
}

type bookingDTO struct {
	ID        string  `json:"id"`
	RoomID    string  `json:"room_id"`
	OwnerID   string  `json:"owner_id"`
	Title     string  `json:"title"`
	Date      string  `json:"date"`
	Start     string  `json:"start"`
	End       string  `json:"end"`
	SeriesID  *string `json:"series_id,omitempty"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

func toBookingDTO(booking application.Booking) bookingDTO {
	return bookingDTO{
		ID:        booking.ID,
		RoomID:    booking.RoomID,
		OwnerID:   booking.OwnerID,
		Title:     booking.Title,
		Date:      booking.Date.Format("2006-01-02"),
		Start:     booking.Start.String(),
		End:       booking.End.String(),
		SeriesID:  booking.SeriesID,
		CreatedAt: booking.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: booking.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toBookingDTOs(bookings []application.Booking) []bookingDTO {
	if len(bookings) == 0 {
		return nil
	}
	out := make([]bookingDTO, 0, len(bookings))
	for _, booking := range bookings {
		out = append(out, toBookingDTO(booking))
	}
	return out
}

type previewResponse struct {
	Instances    []instanceDTO       `json:"instances"`
	Alternatives map[string][]string `json:"alternatives,omitempty"`
	Summary      string              `json:"summary"`
	Conflicts    int                 `json:"conflicts"`
}

type instanceDTO struct {
	Index          int    `json:"index"`
	Date           string `json:"date"`
	RoomID         string `json:"room_id"`
	OriginalRoomID string `json:"original_room_id,omitempty"`
	Start          string `json:"start"`
	End            string `json:"end"`
	Status         string `json:"status"`
}

func toPreviewResponse(preview application.RecurringPreview) previewResponse {
	response := previewResponse{
		Instances: toInstanceDTOs(preview.Instances),
		Summary:   preview.Summary,
		Conflicts: preview.Conflicts,
	}
	if len(preview.Alternatives) > 0 {
		response.Alternatives = make(map[string][]string, len(preview.Alternatives))
		for index, rooms := range preview.Alternatives {
			response.Alternatives[strconv.Itoa(index)] = append([]string(nil), rooms...)
		}
	}
	return response
}

func toInstanceDTOs(instances []planner.Instance) []instanceDTO {
	if len(instances) == 0 {
		return nil
	}
	out := make([]instanceDTO, 0, len(instances))
	for index, instance := range instances {
		dto := instanceDTO{
			Index:  index,
			Date:   instance.Date.Format("2006-01-02"),
			RoomID: instance.RoomID,
			Start:  instance.Start.String(),
			End:    instance.End.String(),
			Status: string(instance.Status),
		}
		if instance.OriginalRoomID != instance.RoomID {
			dto.OriginalRoomID = instance.OriginalRoomID
		}
		out = append(out, dto)
	}
	return out
}
