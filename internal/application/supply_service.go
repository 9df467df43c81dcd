package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/workplace-booking/internal/persistence"
)

// SupplyStore captures the persistence interactions for the supply catalog
// and its request workflow.
type SupplyStore interface {
	CreateSupply(ctx context.Context, supply persistence.Supply) error
	UpdateSupply(ctx context.Context, supply persistence.Supply) error
	GetSupply(ctx context.Context, id string) (persistence.Supply, error)
	ListSupplies(ctx context.Context) ([]persistence.Supply, error)
	DeleteSupply(ctx context.Context, id string) error

	CreateSupplyRequest(ctx context.Context, request persistence.SupplyRequest) error
	GetSupplyRequest(ctx context.Context, id string) (persistence.SupplyRequest, error)
	ListSupplyRequests(ctx context.Context, requesterID *string) ([]persistence.SupplyRequest, error)
	DecideSupplyRequest(ctx context.Context, request persistence.SupplyRequest) error
}

// SupplyService orchestrates the office supply catalog and the request
// approval workflow.
type SupplyService struct {
	supplies    SupplyStore
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewSupplyService wires dependencies for supply operations.
func NewSupplyService(supplies SupplyStore, idGenerator func() string, now func() time.Time) *SupplyService {
	return NewSupplyServiceWithLogger(supplies, idGenerator, now, nil)
}

// NewSupplyServiceWithLogger constructs a supply service with a specified logger.
func NewSupplyServiceWithLogger(supplies SupplyStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *SupplyService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &SupplyService{supplies: supplies, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *SupplyService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SupplyService", operation, attrs...)
}

// CreateSupply adds a catalog entry for administrators.
func (s *SupplyService) CreateSupply(ctx context.Context, params CreateSupplyParams) (supply Supply, err error) {
	if s == nil {
		err = fmt.Errorf("SupplyService is nil")
		return
	}
	if s.supplies == nil {
		err = fmt.Errorf("supply store not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateSupply", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create supply", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("supply_id", supply.ID).InfoContext(ctx, "supply created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := validateSupplyInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	record := persistence.Supply{
		ID:        s.idGenerator(),
		Name:      strings.TrimSpace(params.Input.Name),
		Category:  strings.TrimSpace(params.Input.Category),
		Unit:      strings.TrimSpace(params.Input.Unit),
		Stock:     params.Input.Stock,
		CreatedAt: s.now(),
	}
	record.UpdatedAt = record.CreatedAt

	if err = s.supplies.CreateSupply(ctx, record); err != nil {
		err = mapSupplyRepoError(err)
		return
	}

	supply = toSupply(record)
	return
}

// UpdateSupply modifies a catalog entry for administrators.
func (s *SupplyService) UpdateSupply(ctx context.Context, params UpdateSupplyParams) (supply Supply, err error) {
	if s == nil {
		err = fmt.Errorf("SupplyService is nil")
		return
	}
	if s.supplies == nil {
		err = fmt.Errorf("supply store not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateSupply",
		"principal_id", params.Principal.UserID,
		"supply_id", params.SupplyID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update supply", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("supply_id", supply.ID).InfoContext(ctx, "supply updated")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	var existing persistence.Supply
	existing, err = s.supplies.GetSupply(ctx, params.SupplyID)
	if err != nil {
		err = mapSupplyRepoError(err)
		return
	}

	vErr := validateSupplyInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Name = strings.TrimSpace(params.Input.Name)
	updated.Category = strings.TrimSpace(params.Input.Category)
	updated.Unit = strings.TrimSpace(params.Input.Unit)
	updated.Stock = params.Input.Stock
	updated.UpdatedAt = s.now()

	if err = s.supplies.UpdateSupply(ctx, updated); err != nil {
		err = mapSupplyRepoError(err)
		return
	}

	supply = toSupply(updated)
	return
}

// DeleteSupply removes a catalog entry for administrators.
func (s *SupplyService) DeleteSupply(ctx context.Context, principal Principal, supplyID string) error {
	if s == nil {
		return fmt.Errorf("SupplyService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if s.supplies == nil {
		return fmt.Errorf("supply store not configured")
	}

	if err := s.supplies.DeleteSupply(ctx, supplyID); err != nil {
		return mapSupplyRepoError(err)
	}
	return nil
}

// ListSupplies returns the catalog, sorted by name, for any authenticated user.
func (s *SupplyService) ListSupplies(ctx context.Context, principal Principal) ([]Supply, error) {
	if s == nil {
		return nil, fmt.Errorf("SupplyService is nil")
	}
	if s.supplies == nil {
		return nil, nil
	}

	records, err := s.supplies.ListSupplies(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Supply, 0, len(records))
	for _, record := range records {
		out = append(out, toSupply(record))
	}
	sort.Slice(out, func(i, j int) bool {
		if strings.EqualFold(out[i].Name, out[j].Name) {
			return out[i].ID < out[j].ID
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// CreateRequest files a supply request on behalf of the caller.
func (s *SupplyService) CreateRequest(ctx context.Context, params CreateSupplyRequestParams) (request SupplyRequest, err error) {
	if s == nil {
		err = fmt.Errorf("SupplyService is nil")
		return
	}
	if s.supplies == nil {
		err = fmt.Errorf("supply store not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateRequest",
		"principal_id", params.Principal.UserID,
		"supply_id", params.Input.SupplyID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create supply request", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("request_id", request.ID).InfoContext(ctx, "supply request created")
	}()

	vErr := &ValidationError{}
	if params.Input.SupplyID == "" {
		vErr.add("supply_id", "supply is required")
	}
	if params.Input.Quantity <= 0 {
		vErr.add("quantity", "quantity must be positive")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var supply persistence.Supply
	supply, err = s.supplies.GetSupply(ctx, params.Input.SupplyID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			vErr.add("supply_id", "supply does not exist")
			err = vErr
			return
		}
		return
	}

	if params.Input.Quantity > supply.Stock {
		vErr.add("quantity", fmt.Sprintf("only %d in stock", supply.Stock))
		err = vErr
		return
	}

	record := persistence.SupplyRequest{
		ID:          s.idGenerator(),
		SupplyID:    params.Input.SupplyID,
		RequesterID: params.Principal.UserID,
		Quantity:    params.Input.Quantity,
		Note:        normalizeNote(params.Input.Note),
		Status:      persistence.SupplyRequestPending,
		CreatedAt:   s.now(),
	}
	record.UpdatedAt = record.CreatedAt

	if err = s.supplies.CreateSupplyRequest(ctx, record); err != nil {
		err = mapSupplyRepoError(err)
		return
	}

	request = toSupplyRequest(record)
	return
}

// ListRequests enumerates supply requests. Administrators may filter by
// requester; other callers always see only their own.
func (s *SupplyService) ListRequests(ctx context.Context, params ListSupplyRequestsParams) ([]SupplyRequest, error) {
	if s == nil {
		return nil, fmt.Errorf("SupplyService is nil")
	}
	if s.supplies == nil {
		return nil, nil
	}

	requester := params.RequesterID
	if !params.Principal.IsAdmin {
		own := params.Principal.UserID
		requester = &own
	}

	records, err := s.supplies.ListSupplyRequests(ctx, requester)
	if err != nil {
		return nil, err
	}

	out := make([]SupplyRequest, 0, len(records))
	for _, record := range records {
		out = append(out, toSupplyRequest(record))
	}
	return out, nil
}

// DecideRequest approves or rejects a pending request for administrators.
// Approval decrements the supply stock atomically with the status change.
func (s *SupplyService) DecideRequest(ctx context.Context, params DecideSupplyRequestParams) (request SupplyRequest, err error) {
	if s == nil {
		err = fmt.Errorf("SupplyService is nil")
		return
	}
	if s.supplies == nil {
		err = fmt.Errorf("supply store not configured")
		return
	}

	logger := s.loggerWith(ctx, "DecideRequest",
		"principal_id", params.Principal.UserID,
		"request_id", params.RequestID,
		"approve", params.Approve,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to decide supply request", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("request_id", request.ID, "status", request.Status).InfoContext(ctx, "supply request decided")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	var existing persistence.SupplyRequest
	existing, err = s.supplies.GetSupplyRequest(ctx, params.RequestID)
	if err != nil {
		err = mapSupplyRepoError(err)
		return
	}

	status := persistence.SupplyRequestRejected
	if params.Approve {
		status = persistence.SupplyRequestApproved
	}

	now := s.now()
	decider := params.Principal.UserID
	decided := existing
	decided.Status = status
	decided.DecidedBy = &decider
	decided.DecidedAt = &now
	decided.UpdatedAt = now

	if err = s.supplies.DecideSupplyRequest(ctx, decided); err != nil {
		if errors.Is(err, persistence.ErrConstraintViolation) {
			vErr := &ValidationError{}
			vErr.add("request", "request is not pending or stock is insufficient")
			err = vErr
			return
		}
		err = mapSupplyRepoError(err)
		return
	}

	request = toSupplyRequest(decided)
	return
}

func toSupply(record persistence.Supply) Supply {
	return Supply{
		ID:        record.ID,
		Name:      record.Name,
		Category:  record.Category,
		Unit:      record.Unit,
		Stock:     record.Stock,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

func toSupplyRequest(record persistence.SupplyRequest) SupplyRequest {
	request := SupplyRequest{
		ID:          record.ID,
		SupplyID:    record.SupplyID,
		RequesterID: record.RequesterID,
		Quantity:    record.Quantity,
		Status:      string(record.Status),
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
	if record.Note != nil {
		note := *record.Note
		request.Note = &note
	}
	if record.DecidedBy != nil {
		decider := *record.DecidedBy
		request.DecidedBy = &decider
	}
	if record.DecidedAt != nil {
		decidedAt := *record.DecidedAt
		request.DecidedAt = &decidedAt
	}
	return request
}

func validateSupplyInput(input SupplyInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.Stock < 0 {
		vErr.add("stock", "stock cannot be negative")
	}

	return vErr
}

func normalizeNote(note *string) *string {
	if note == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*note)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func mapSupplyRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("supply_id", "related records are missing")
		return vErr
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("stock", "stock cannot go negative")
		return vErr
	}
	return err
}
