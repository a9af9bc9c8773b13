package sqlite

import (
	"context"

	"github.com/example/room-reservation/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository on SQLite.
type RoomRepository struct {
	db *DB
}

// NewRoomRepository constructs a room repository over the shared handle.
func NewRoomRepository(db *DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// CreateRoom inserts a new room row. The capacity CHECK constraint surfaces
// as persistence.ErrConstraintViolation.
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) error {
	_, err := r.db.sql.ExecContext(ctx,
		`INSERT INTO rooms (id, name, location, capacity, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		room.ID, room.Name, room.Location, room.Capacity,
		formatTime(room.CreatedAt), formatTime(room.UpdatedAt),
	)
	return mapError(err)
}

// UpdateRoom replaces an existing room row.
func (r *RoomRepository) UpdateRoom(ctx context.Context, room persistence.Room) error {
	result, err := r.db.sql.ExecContext(ctx,
		`UPDATE rooms SET name = ?, location = ?, capacity = ?, updated_at = ? WHERE id = ?`,
		room.Name, room.Location, room.Capacity, formatTime(room.UpdatedAt), room.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireRowAffected(result)
}

// GetRoom retrieves a room by ID.
func (r *RoomRepository) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	row := r.db.sql.QueryRowContext(ctx,
		`SELECT id, name, location, capacity, created_at, updated_at FROM rooms WHERE id = ?`, id)
	return scanRoom(row)
}

// ListRooms returns all rooms ordered by name.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		`SELECT id, name, location, capacity, created_at, updated_at FROM rooms ORDER BY name, id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// DeleteRoom removes a room row by ID.
func (r *RoomRepository) DeleteRoom(ctx context.Context, id string) error {
	result, err := r.db.sql.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireRowAffected(result)
}

func scanRoom(row rowScanner) (persistence.Room, error) {
	var room persistence.Room
	var createdAt, updatedAt string
	if err := row.Scan(&room.ID, &room.Name, &room.Location, &room.Capacity, &createdAt, &updatedAt); err != nil {
		return persistence.Room{}, mapError(err)
	}

	var err error
	if room.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Room{}, err
	}
	if room.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Room{}, err
	}
	return room, nil
}
