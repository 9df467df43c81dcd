package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/workplace-booking/internal/persistence"
)

// UserRepository implements persistence.UserRepository and
// persistence.CredentialRepository on SQLite.
type UserRepository struct {
	pool *Pool
}

// NewUserRepository creates a SQLite-backed user repository.
func NewUserRepository(pool *Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// CreateUser inserts a new user row.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	const query = `
		INSERT INTO users (id, email, display_name, is_admin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.pool.DB().ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.IsAdmin,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)
	return mapDriverError(err)
}

// UpdateUser rewrites an existing user row.
func (r *UserRepository) UpdateUser(ctx context.Context, user persistence.User) error {
	const query = `
		UPDATE users
		SET email = ?, display_name = ?, is_admin = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.pool.DB().ExecContext(ctx, query,
		user.Email,
		user.DisplayName,
		user.IsAdmin,
		formatTime(user.UpdatedAt),
		user.ID,
	)
	if err != nil {
		return mapDriverError(err)
	}
	return requireRowAffected(result)
}

// GetUser retrieves a user by ID.
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	const query = `
		SELECT id, email, display_name, is_admin, created_at, updated_at
		FROM users WHERE id = ?
	`
	return r.scanUser(r.pool.DB().QueryRowContext(ctx, query, id))
}

// GetUserByEmail retrieves a user by email address, case-insensitively.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	const query = `
		SELECT id, email, display_name, is_admin, created_at, updated_at
		FROM users WHERE email = ?
	`
	return r.scanUser(r.pool.DB().QueryRowContext(ctx, query, email))
}

// ListUsers returns all users ordered by creation time.
func (r *UserRepository) ListUsers(ctx context.Context) ([]persistence.User, error) {
	const query = `
		SELECT id, email, display_name, is_admin, created_at, updated_at
		FROM users ORDER BY created_at, id
	`
	rows, err := r.pool.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, mapDriverError(err)
	}
	defer rows.Close()

	var users []persistence.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, mapDriverError(rows.Err())
}

// DeleteUser removes a user by ID.
func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	result, err := r.pool.DB().ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return mapDriverError(err)
	}
	return requireRowAffected(result)
}

// UpsertCredentials writes password state for a user.
func (r *UserRepository) UpsertCredentials(ctx context.Context, creds persistence.Credentials) error {
	const query = `
		INSERT INTO credentials (user_id, password_hash, disabled, failed_attempts, last_failed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			password_hash = excluded.password_hash,
			disabled = excluded.disabled,
			failed_attempts = excluded.failed_attempts,
			last_failed_at = excluded.last_failed_at
	`
	_, err := r.pool.DB().ExecContext(ctx, query,
		creds.UserID,
		creds.PasswordHash,
		creds.Disabled,
		creds.FailedAttempts,
		formatNullableTime(creds.LastFailedAt),
	)
	return mapDriverError(err)
}

// GetCredentials retrieves password state for a user.
func (r *UserRepository) GetCredentials(ctx context.Context, userID string) (persistence.Credentials, error) {
	const query = `
		SELECT user_id, password_hash, disabled, failed_attempts, last_failed_at
		FROM credentials WHERE user_id = ?
	`
	var creds persistence.Credentials
	var lastFailed sql.NullString
	err := r.pool.DB().QueryRowContext(ctx, query, userID).Scan(
		&creds.UserID,
		&creds.PasswordHash,
		&creds.Disabled,
		&creds.FailedAttempts,
		&lastFailed,
	)
	if err != nil {
		return persistence.Credentials{}, mapDriverError(err)
	}
	if creds.LastFailedAt, err = parseNullableTime(lastFailed); err != nil {
		return persistence.Credentials{}, err
	}
	return creds, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *UserRepository) scanUser(row rowScanner) (persistence.User, error) {
	var user persistence.User
	var createdAt, updatedAt string
	err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &user.IsAdmin, &createdAt, &updatedAt)
	if err != nil {
		return persistence.User{}, mapDriverError(err)
	}
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.User{}, err
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.User{}, err
	}
	return user, nil
}

func requireRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return mapDriverError(err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
