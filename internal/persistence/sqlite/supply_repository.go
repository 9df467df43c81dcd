package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/workplace-booking/internal/persistence"
)

// SupplyRepository implements persistence.SupplyRepository on SQLite.
type SupplyRepository struct {
	pool *Pool
}

// NewSupplyRepository creates a SQLite-backed supply repository.
func NewSupplyRepository(pool *Pool) *SupplyRepository {
	return &SupplyRepository{pool: pool}
}

// CreateSupply inserts a catalog entry.
func (r *SupplyRepository) CreateSupply(ctx context.Context, supply persistence.Supply) error {
	const query = `
		INSERT INTO supplies (id, name, category, unit, stock, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.pool.DB().ExecContext(ctx, query,
		supply.ID,
		supply.Name,
		supply.Category,
		supply.Unit,
		supply.Stock,
		formatTime(supply.CreatedAt),
		formatTime(supply.UpdatedAt),
	)
	return mapDriverError(err)
}

// UpdateSupply rewrites a catalog entry.
func (r *SupplyRepository) UpdateSupply(ctx context.Context, supply persistence.Supply) error {
	const query = `
		UPDATE supplies
		SET name = ?, category = ?, unit = ?, stock = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.pool.DB().ExecContext(ctx, query,
		supply.Name,
		supply.Category,
		supply.Unit,
		supply.Stock,
		formatTime(supply.UpdatedAt),
		supply.ID,
	)
	if err != nil {
		return mapDriverError(err)
	}
	return requireRowAffected(result)
}

// GetSupply retrieves a catalog entry by ID.
func (r *SupplyRepository) GetSupply(ctx context.Context, id string) (persistence.Supply, error) {
	const query = `
		SELECT id, name, category, unit, stock, created_at, updated_at
		FROM supplies WHERE id = ?
	`
	return scanSupply(r.pool.DB().QueryRowContext(ctx, query, id))
}

// ListSupplies returns the catalog ordered by name.
func (r *SupplyRepository) ListSupplies(ctx context.Context) ([]persistence.Supply, error) {
	const query = `
		SELECT id, name, category, unit, stock, created_at, updated_at
		FROM supplies ORDER BY name COLLATE NOCASE, id
	`
	rows, err := r.pool.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, mapDriverError(err)
	}
	defer rows.Close()

	var supplies []persistence.Supply
	for rows.Next() {
		supply, err := scanSupply(rows)
		if err != nil {
			return nil, err
		}
		supplies = append(supplies, supply)
	}
	return supplies, mapDriverError(rows.Err())
}

// DeleteSupply removes a catalog entry.
func (r *SupplyRepository) DeleteSupply(ctx context.Context, id string) error {
	result, err := r.pool.DB().ExecContext(ctx, `DELETE FROM supplies WHERE id = ?`, id)
	if err != nil {
		return mapDriverError(err)
	}
	return requireRowAffected(result)
}

// CreateSupplyRequest inserts a pending request.
func (r *SupplyRepository) CreateSupplyRequest(ctx context.Context, request persistence.SupplyRequest) error {
	const query = `
		INSERT INTO supply_requests (id, supply_id, requester_id, quantity, note, status, decided_by, decided_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.pool.DB().ExecContext(ctx, query,
		request.ID,
		request.SupplyID,
		request.RequesterID,
		request.Quantity,
		nullableString(request.Note),
		string(request.Status),
		nullableString(request.DecidedBy),
		formatNullableTime(request.DecidedAt),
		formatTime(request.CreatedAt),
		formatTime(request.UpdatedAt),
	)
	return mapDriverError(err)
}

// GetSupplyRequest retrieves a request by ID.
func (r *SupplyRepository) GetSupplyRequest(ctx context.Context, id string) (persistence.SupplyRequest, error) {
	const query = `
		SELECT id, supply_id, requester_id, quantity, note, status, decided_by, decided_at, created_at, updated_at
		FROM supply_requests WHERE id = ?
	`
	return scanSupplyRequest(r.pool.DB().QueryRowContext(ctx, query, id))
}

// ListSupplyRequests returns requests, optionally scoped to one requester,
// newest first.
func (r *SupplyRepository) ListSupplyRequests(ctx context.Context, requesterID *string) ([]persistence.SupplyRequest, error) {
	query := `
		SELECT id, supply_id, requester_id, quantity, note, status, decided_by, decided_at, created_at, updated_at
		FROM supply_requests
	`
	var args []any
	if requesterID != nil {
		query += " WHERE requester_id = ?"
		args = append(args, *requesterID)
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := r.pool.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapDriverError(err)
	}
	defer rows.Close()

	var requests []persistence.SupplyRequest
	for rows.Next() {
		request, err := scanSupplyRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, mapDriverError(rows.Err())
}

// DecideSupplyRequest records the decision and, on approval, decrements
// stock in the same transaction. Insufficient stock surfaces as the CHECK
// constraint on supplies.stock, mapped to ErrConstraintViolation.
func (r *SupplyRepository) DecideSupplyRequest(ctx context.Context, request persistence.SupplyRequest) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		const update = `
			UPDATE supply_requests
			SET status = ?, decided_by = ?, decided_at = ?, updated_at = ?
			WHERE id = ? AND status = 'pending'
		`
		result, err := tx.ExecContext(ctx, update,
			string(request.Status),
			nullableString(request.DecidedBy),
			formatNullableTime(request.DecidedAt),
			formatTime(request.UpdatedAt),
			request.ID,
		)
		if err != nil {
			return mapDriverError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return mapDriverError(err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: request %s is not pending", persistence.ErrConstraintViolation, request.ID)
		}

		if request.Status == persistence.SupplyRequestApproved {
			const decrement = `UPDATE supplies SET stock = stock - ?, updated_at = ? WHERE id = ?`
			if _, err := tx.ExecContext(ctx, decrement, request.Quantity, formatTime(request.UpdatedAt), request.SupplyID); err != nil {
				return mapDriverError(err)
			}
		}
		return nil
	})
}

func scanSupply(row rowScanner) (persistence.Supply, error) {
	var supply persistence.Supply
	var createdAt, updatedAt string
	err := row.Scan(&supply.ID, &supply.Name, &supply.Category, &supply.Unit, &supply.Stock, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Supply{}, mapDriverError(err)
	}
	if supply.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Supply{}, err
	}
	if supply.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Supply{}, err
	}
	return supply, nil
}

func scanSupplyRequest(row rowScanner) (persistence.SupplyRequest, error) {
	var request persistence.SupplyRequest
	var note, decidedBy, decidedAt sql.NullString
	var status, createdAt, updatedAt string

	err := row.Scan(
		&request.ID,
		&request.SupplyID,
		&request.RequesterID,
		&request.Quantity,
		&note,
		&status,
		&decidedBy,
		&decidedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.SupplyRequest{}, mapDriverError(err)
	}

	request.Note = stringPtr(note)
	request.Status = persistence.SupplyRequestStatus(status)
	request.DecidedBy = stringPtr(decidedBy)
	if request.DecidedAt, err = parseNullableTime(decidedAt); err != nil {
		return persistence.SupplyRequest{}, err
	}
	if request.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.SupplyRequest{}, err
	}
	if request.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.SupplyRequest{}, err
	}
	return request, nil
}
