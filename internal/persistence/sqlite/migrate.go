package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations holds the ordered schema steps. The current step index is
// tracked in PRAGMA user_version so re-running Migrate is a no-op; new steps
// are appended, never edited.
var migrations = []string{
	`
	CREATE TABLE users (
		id           TEXT PRIMARY KEY,
		email        TEXT NOT NULL COLLATE NOCASE UNIQUE,
		display_name TEXT NOT NULL,
		is_admin     INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	);

	CREATE TABLE credentials (
		user_id         TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		password_hash   TEXT NOT NULL,
		disabled        INTEGER NOT NULL DEFAULT 0,
		failed_attempts INTEGER NOT NULL DEFAULT 0,
		last_failed_at  TEXT
	);

	CREATE TABLE rooms (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		location   TEXT NOT NULL DEFAULT '',
		capacity   INTEGER NOT NULL CHECK (capacity > 0),
		equipment  TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE bookings (
		id            TEXT PRIMARY KEY,
		room_id       TEXT NOT NULL REFERENCES rooms(id),
		owner_id      TEXT NOT NULL REFERENCES users(id),
		title         TEXT NOT NULL,
		date          TEXT NOT NULL,
		start_minutes INTEGER NOT NULL CHECK (start_minutes >= 0),
		end_minutes   INTEGER NOT NULL CHECK (end_minutes > start_minutes),
		series_id     TEXT,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	);
	CREATE INDEX idx_bookings_room_date ON bookings(room_id, date);
	CREATE INDEX idx_bookings_owner ON bookings(owner_id);

	CREATE TABLE sessions (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token       TEXT NOT NULL UNIQUE,
		fingerprint TEXT NOT NULL DEFAULT '',
		expires_at  TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL,
		revoked_at  TEXT
	);
	`,
	`
	CREATE TABLE supplies (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		category   TEXT NOT NULL DEFAULT '',
		unit       TEXT NOT NULL DEFAULT '',
		stock      INTEGER NOT NULL CHECK (stock >= 0),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE supply_requests (
		id           TEXT PRIMARY KEY,
		supply_id    TEXT NOT NULL REFERENCES supplies(id),
		requester_id TEXT NOT NULL REFERENCES users(id),
		quantity     INTEGER NOT NULL CHECK (quantity > 0),
		note         TEXT,
		status       TEXT NOT NULL DEFAULT 'pending',
		decided_by   TEXT,
		decided_at   TEXT,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	);
	CREATE INDEX idx_supply_requests_requester ON supply_requests(requester_id);
	`,
}

// Migrate applies any schema steps newer than the database's recorded
// version, each inside its own transaction.
func (p *Pool) Migrate(ctx context.Context) error {
	var version int
	if err := p.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("sqlite: read schema version: %w", err)
	}
	if version > len(migrations) {
		return fmt.Errorf("sqlite: database schema version %d is newer than this binary supports", version)
	}

	for step := version; step < len(migrations); step++ {
		stepSQL := migrations[step]
		next := step + 1
		err := p.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, stepSQL); err != nil {
				return fmt.Errorf("sqlite: migration step %d: %w", next, err)
			}
			if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", next)); err != nil {
				return fmt.Errorf("sqlite: record schema version %d: %w", next, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
