package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/workplace-booking/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository on SQLite.
type SessionRepository struct {
	pool *Pool
}

// NewSessionRepository creates a SQLite-backed session repository.
func NewSessionRepository(pool *Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// CreateSession inserts a session row.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	const query = `
		INSERT INTO sessions (id, user_id, token, fingerprint, expires_at, created_at, updated_at, revoked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.pool.DB().ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.Token,
		session.Fingerprint,
		formatTime(session.ExpiresAt),
		formatTime(session.CreatedAt),
		formatTime(session.UpdatedAt),
		formatNullableTime(session.RevokedAt),
	)
	if err != nil {
		return persistence.Session{}, mapDriverError(err)
	}
	return session, nil
}

// GetSession retrieves a session by token.
func (r *SessionRepository) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	const query = `
		SELECT id, user_id, token, fingerprint, expires_at, created_at, updated_at, revoked_at
		FROM sessions WHERE token = ?
	`
	return scanSession(r.pool.DB().QueryRowContext(ctx, query, token))
}

// UpdateSession rewrites a session row, keyed by ID so token rotation works.
func (r *SessionRepository) UpdateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	const query = `
		UPDATE sessions
		SET token = ?, fingerprint = ?, expires_at = ?, updated_at = ?, revoked_at = ?
		WHERE id = ?
	`
	result, err := r.pool.DB().ExecContext(ctx, query,
		session.Token,
		session.Fingerprint,
		formatTime(session.ExpiresAt),
		formatTime(session.UpdatedAt),
		formatNullableTime(session.RevokedAt),
		session.ID,
	)
	if err != nil {
		return persistence.Session{}, mapDriverError(err)
	}
	if err := requireRowAffected(result); err != nil {
		return persistence.Session{}, err
	}
	return session, nil
}

// RevokeSession marks a session revoked by token.
func (r *SessionRepository) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	session, err := r.GetSession(ctx, token)
	if err != nil {
		return persistence.Session{}, err
	}
	session.RevokedAt = &revokedAt
	session.UpdatedAt = revokedAt
	return r.UpdateSession(ctx, session)
}

// DeleteExpiredSessions removes sessions that expired or were revoked before
// the reference time. The cron sweep in the server binary calls this.
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	const query = `
		DELETE FROM sessions
		WHERE expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)
	`
	ref := formatTime(reference)
	_, err := r.pool.DB().ExecContext(ctx, query, ref, ref)
	return mapDriverError(err)
}

func scanSession(row rowScanner) (persistence.Session, error) {
	var session persistence.Session
	var expiresAt, createdAt, updatedAt string
	var revokedAt sql.NullString

	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.Token,
		&session.Fingerprint,
		&expiresAt,
		&createdAt,
		&updatedAt,
		&revokedAt,
	)
	if err != nil {
		return persistence.Session{}, mapDriverError(err)
	}

	if session.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return persistence.Session{}, err
	}
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Session{}, err
	}
	if session.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Session{}, err
	}
	if session.RevokedAt, err = parseNullableTime(revokedAt); err != nil {
		return persistence.Session{}, err
	}
	return session, nil
}
