package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/workplace-booking/internal/application"
)

type supplyService interface {
	CreateSupply(ctx context.Context, params application.CreateSupplyParams) (application.Supply, error)
	UpdateSupply(ctx context.Context, params application.UpdateSupplyParams) (application.Supply, error)
	DeleteSupply(ctx context.Context, principal application.Principal, supplyID string) error
	ListSupplies(ctx context.Context, principal application.Principal) ([]application.Supply, error)
	CreateRequest(ctx context.Context, params application.CreateSupplyRequestParams) (application.SupplyRequest, error)
	ListRequests(ctx context.Context, params application.ListSupplyRequestsParams) ([]application.SupplyRequest, error)
	DecideRequest(ctx context.Context, params application.DecideSupplyRequestParams) (application.SupplyRequest, error)
}

type SupplyHandler struct {
	service   supplyService
	responder responder
	logger    *slog.Logger
}

func NewSupplyHandler(service supplyService, logger *slog.Logger) *SupplyHandler {
	base := defaultLogger(logger)
	return &SupplyHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *SupplyHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SupplyHandler", operation, attrs...)
}

func (h *SupplyHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req supplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode supply request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	supply, err := h.service.CreateSupply(r.Context(), application.CreateSupplyParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "supply creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("supply_id", supply.ID).InfoContext(r.Context(), "supply created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, supplyResponse{Supply: toSupplyDTO(supply)})
}

func (h *SupplyHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	supplyID, ok := SupplyIDFromContext(r.Context())
	if !ok || strings.TrimSpace(supplyID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSupplyID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req supplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "supply_id", supplyID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode supply update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "supply_id", supplyID)

	supply, err := h.service.UpdateSupply(r.Context(), application.UpdateSupplyParams{
		Principal: principal,
		SupplyID:  supplyID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "supply update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "supply updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, supplyResponse{Supply: toSupplyDTO(supply)})
}

func (h *SupplyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	supplyID, ok := SupplyIDFromContext(r.Context())
	if !ok || strings.TrimSpace(supplyID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSupplyID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "supply_id", supplyID)
	if err := h.service.DeleteSupply(r.Context(), principal, supplyID); err != nil {
		logger.ErrorContext(r.Context(), "supply delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "supply deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *SupplyHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)

	supplies, err := h.service.ListSupplies(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "supply list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(supplies)).InfoContext(r.Context(), "supplies listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSuppliesResponse{Supplies: toSupplyDTOs(supplies)})
}

func (h *SupplyHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req supplyRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "CreateRequest", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode supply request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "CreateRequest", "principal_id", principal.UserID, "supply_id", req.SupplyID)

	request, err := h.service.CreateRequest(r.Context(), application.CreateSupplyRequestParams{
		Principal: principal,
		Input: application.SupplyRequestInput{
			SupplyID: strings.TrimSpace(req.SupplyID),
			Quantity: req.Quantity,
			Note:     req.Note,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "supply request creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("request_id", request.ID).InfoContext(r.Context(), "supply request filed")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, supplyRequestResponse{Request: toSupplyRequestDTO(request)})
}

// ListRequests returns the caller's requests, or any requester's when the
// caller is an administrator using the requester_id query parameter.
func (h *SupplyHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	params := application.ListSupplyRequestsParams{Principal: principal}
	if requester := strings.TrimSpace(r.URL.Query().Get("requester_id")); requester != "" {
		params.RequesterID = &requester
	}

	logger := h.log(r.Context(), "ListRequests", "principal_id", principal.UserID)

	requests, err := h.service.ListRequests(r.Context(), params)
	if err != nil {
		logger.ErrorContext(r.Context(), "supply request list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(requests)).InfoContext(r.Context(), "supply requests listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSupplyRequestsResponse{Requests: toSupplyRequestDTOs(requests)})
}

func (h *SupplyHandler) DecideRequest(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	requestID, ok := RequestIDFromContext(r.Context())
	if !ok || strings.TrimSpace(requestID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRequestID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "DecideRequest", "principal_id", principal.UserID, "request_id", requestID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode decision", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "DecideRequest", "principal_id", principal.UserID, "request_id", requestID, "approve", req.Approve)

	request, err := h.service.DecideRequest(r.Context(), application.DecideSupplyRequestParams{
		Principal: principal,
		RequestID: requestID,
		Approve:   req.Approve,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "supply request decision failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("status", request.Status).InfoContext(r.Context(), "supply request decided")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, supplyRequestResponse{Request: toSupplyRequestDTO(request)})
}

type supplyRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Unit     string `json:"unit"`
	Stock    int    `json:"stock"`
}

func (r supplyRequest) toInput() application.SupplyInput {
	return application.SupplyInput{
		Name:     strings.TrimSpace(r.Name),
		Category: strings.TrimSpace(r.Category),
		Unit:     strings.TrimSpace(r.Unit),
		Stock:    r.Stock,
	}
}

type supplyRequestRequest struct {
	SupplyID string  `json:"supply_id"`
	Quantity int     `json:"quantity"`
	Note     *string `json:"note"`
}

type decisionRequest struct {
	Approve bool `json:"approve"`
}

type supplyResponse struct {
	Supply supplyDTO `json:"supply"`
}

type listSuppliesResponse struct {
	Supplies []supplyDTO `json:"supplies"`
}

type supplyDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	Unit      string `json:"unit,omitempty"`
	Stock     int    `json:"stock"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toSupplyDTO(supply application.Supply) supplyDTO {
	return supplyDTO{
		ID:        supply.ID,
		Name:      supply.Name,
		Category:  supply.Category,
		Unit:      supply.Unit,
		Stock:     supply.Stock,
		CreatedAt: supply.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: supply.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toSupplyDTOs(supplies []application.Supply) []supplyDTO {
	if len(supplies) == 0 {
		return nil
	}
	out := make([]supplyDTO, 0, len(supplies))
	for _, supply := range supplies {
		out = append(out, toSupplyDTO(supply))
	}
	return out
}

type supplyRequestResponse struct {
	Request supplyRequestDTO `json:"request"`
}

type listSupplyRequestsResponse struct {
	Requests []supplyRequestDTO `json:"requests"`
}

type supplyRequestDTO struct {
	ID          string  `json:"id"`
	SupplyID    string  `json:"supply_id"`
	RequesterID string  `json:"requester_id"`
	Quantity    int     `json:"quantity"`
	Note        *string `json:"note,omitempty"`
	Status      string  `json:"status"`
	DecidedBy   *string `json:"decided_by,omitempty"`
	DecidedAt   *string `json:"decided_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toSupplyRequestDTO(request application.SupplyRequest) supplyRequestDTO {
	dto := supplyRequestDTO{
		ID:          request.ID,
		SupplyID:    request.SupplyID,
		RequesterID: request.RequesterID,
		Quantity:    request.Quantity,
		Note:        request.Note,
		Status:      request.Status,
		DecidedBy:   request.DecidedBy,
		CreatedAt:   request.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   request.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if request.DecidedAt != nil {
		decidedAt := request.DecidedAt.UTC().Format(time.RFC3339Nano)
		dto.DecidedAt = &decidedAt
	}
	return dto
}

func toSupplyRequestDTOs(requests []application.SupplyRequest) []supplyRequestDTO {
	if len(requests) == 0 {
		return nil
	}
	out := make([]supplyRequestDTO, 0, len(requests))
	for _, request := range requests {
		out = append(out, toSupplyRequestDTO(request))
	}
	return out
}
