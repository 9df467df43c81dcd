package sqlite

import (
	"context"
	"errors"

	"github.com/example/workplace-booking/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository on SQLite.
type RoomRepository struct {
	pool *Pool
}

// NewRoomRepository creates a SQLite-backed room repository.
func NewRoomRepository(pool *Pool) *RoomRepository {
	return &RoomRepository{pool: pool}
}

// CreateRoom inserts a new room row.
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) error {
	equipment, err := encodeTags(room.Equipment)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO rooms (id, name, location, capacity, equipment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.pool.DB().ExecContext(ctx, query,
		room.ID,
		room.Name,
		room.Location,
		room.Capacity,
		equipment,
		formatTime(room.CreatedAt),
		formatTime(room.UpdatedAt),
	)
	return mapDriverError(err)
}

// UpdateRoom rewrites an existing room row.
func (r *RoomRepository) UpdateRoom(ctx context.Context, room persistence.Room) error {
	equipment, err := encodeTags(room.Equipment)
	if err != nil {
		return err
	}
	const query = `
		UPDATE rooms
		SET name = ?, location = ?, capacity = ?, equipment = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.pool.DB().ExecContext(ctx, query,
		room.Name,
		room.Location,
		room.Capacity,
		equipment,
		formatTime(room.UpdatedAt),
		room.ID,
	)
	if err != nil {
		return mapDriverError(err)
	}
	return requireRowAffected(result)
}

// GetRoom retrieves a room by ID.
func (r *RoomRepository) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	const query = `
		SELECT id, name, location, capacity, equipment, created_at, updated_at
		FROM rooms WHERE id = ?
	`
	return r.scanRoom(r.pool.DB().QueryRowContext(ctx, query, id))
}

// ListRooms returns the whole catalog ordered by name.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	const query = `
		SELECT id, name, location, capacity, equipment, created_at, updated_at
		FROM rooms ORDER BY name COLLATE NOCASE, id
	`
	rows, err := r.pool.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, mapDriverError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room
	for rows.Next() {
		room, err := r.scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, mapDriverError(rows.Err())
}

// DeleteRoom removes a room by ID. Rooms referenced by bookings are protected
// by the foreign key and surface as ErrForeignKeyViolation.
func (r *RoomRepository) DeleteRoom(ctx context.Context, id string) error {
	result, err := r.pool.DB().ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return mapDriverError(err)
	}
	return requireRowAffected(result)
}

// RoomExists reports whether a room row exists.
func (r *RoomRepository) RoomExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.pool.DB().QueryRowContext(ctx, `SELECT 1 FROM rooms WHERE id = ?`, id).Scan(&one)
	if err != nil {
		if errors.Is(mapDriverError(err), persistence.ErrNotFound) {
			return false, nil
		}
		return false, mapDriverError(err)
	}
	return true, nil
}

func (r *RoomRepository) scanRoom(row rowScanner) (persistence.Room, error) {
	var room persistence.Room
	var equipment, createdAt, updatedAt string
	err := row.Scan(&room.ID, &room.Name, &room.Location, &room.Capacity, &equipment, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Room{}, mapDriverError(err)
	}
	if room.Equipment, err = decodeTags(equipment); err != nil {
		return persistence.Room{}, err
	}
	if room.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Room{}, err
	}
	if room.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Room{}, err
	}
	return room, nil
}
