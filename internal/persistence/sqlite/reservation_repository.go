package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/room-reservation/internal/persistence"
)

// ReservationRepository implements persistence.ReservationRepository on
// SQLite. Reservation and time slot rows are written inside one transaction
// so a failure between the two writes cannot strand an orphaned slot.
type ReservationRepository struct {
	db *DB
}

// NewReservationRepository constructs a reservation repository over the
// shared handle.
func NewReservationRepository(db *DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// The boundary test is inclusive at both ends: a slot ending exactly when
// another begins still conflicts. The in-memory store's predicate mirrors
// these three BETWEEN terms and must not diverge.
const overlapQuery = `
SELECT EXISTS(
	SELECT 1
	FROM reservations r
	JOIN time_slots t ON t.id = r.time_slot_id
	WHERE r.room_id = ?
	  AND r.id != ?
	  AND ((? BETWEEN t.start_time AND t.end_time)
	    OR (? BETWEEN t.start_time AND t.end_time)
	    OR (t.start_time BETWEEN ? AND ?))
)`

// CreateReservation commits the reservation and its slot as a unit. The
// availability check runs inside the same transaction as the writes, so of
// two racing commits for overlapping slots at most one lands; the loser is
// reported as persistence.ErrConflict.
func (r *ReservationRepository) CreateReservation(ctx context.Context, reservation persistence.Reservation) error {
	if reservation.Slot.RoomID != reservation.RoomID {
		return persistence.ErrConstraintViolation
	}

	return r.db.withTransaction(ctx, func(tx *sql.Tx) error {
		reserved, err := roomReservedTx(tx, reservation.RoomID, reservation.Slot.Start, reservation.Slot.End, "")
		if err != nil {
			return err
		}
		if reserved {
			return persistence.ErrConflict
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO time_slots (id, room_id, start_time, end_time) VALUES (?, ?, ?, ?)`,
			reservation.Slot.ID, reservation.Slot.RoomID,
			formatTime(reservation.Slot.Start), formatTime(reservation.Slot.End),
		); err != nil {
			return mapError(err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO reservations (id, user_id, room_id, time_slot_id, purpose, attendees, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			reservation.ID, reservation.UserID, reservation.RoomID, reservation.Slot.ID,
			reservation.Purpose, reservation.Attendees,
			formatTime(reservation.CreatedAt), formatTime(reservation.UpdatedAt),
		); err != nil {
			return mapError(err)
		}
		return nil
	})
}

// UpdateReservation replaces an existing reservation and rewrites its slot,
// re-validating availability against every other reservation.
func (r *ReservationRepository) UpdateReservation(ctx context.Context, reservation persistence.Reservation) error {
	if reservation.Slot.RoomID != reservation.RoomID {
		return persistence.ErrConstraintViolation
	}

	return r.db.withTransaction(ctx, func(tx *sql.Tx) error {
		var slotID string
		err := tx.QueryRowContext(ctx,
			`SELECT time_slot_id FROM reservations WHERE id = ?`, reservation.ID).Scan(&slotID)
		if err != nil {
			return mapError(err)
		}

		reserved, err := roomReservedTx(tx, reservation.RoomID, reservation.Slot.Start, reservation.Slot.End, reservation.ID)
		if err != nil {
			return err
		}
		if reserved {
			return persistence.ErrConflict
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE time_slots SET room_id = ?, start_time = ?, end_time = ? WHERE id = ?`,
			reservation.Slot.RoomID, formatTime(reservation.Slot.Start), formatTime(reservation.Slot.End), slotID,
		); err != nil {
			return mapError(err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE reservations
			 SET user_id = ?, room_id = ?, purpose = ?, attendees = ?, updated_at = ?
			 WHERE id = ?`,
			reservation.UserID, reservation.RoomID, reservation.Purpose, reservation.Attendees,
			formatTime(reservation.UpdatedAt), reservation.ID,
		); err != nil {
			return mapError(err)
		}
		return nil
	})
}

// GetReservation retrieves a reservation with its slot by ID.
func (r *ReservationRepository) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	row := r.db.sql.QueryRowContext(ctx, selectReservation+` WHERE r.id = ?`, id)
	return scanReservation(row)
}

// ListReservations returns every reservation ordered by slot start.
func (r *ReservationRepository) ListReservations(ctx context.Context) ([]persistence.Reservation, error) {
	rows, err := r.db.sql.QueryContext(ctx, selectReservation+` ORDER BY t.start_time, r.id`)
	if err != nil {
		return nil, mapError(err)
	}
	return collectReservations(rows)
}

// ListReservationsForRoom returns the reservations held against one room.
func (r *ReservationRepository) ListReservationsForRoom(ctx context.Context, roomID string) ([]persistence.Reservation, error) {
	rows, err := r.db.sql.QueryContext(ctx, selectReservation+` WHERE r.room_id = ? ORDER BY t.start_time, r.id`, roomID)
	if err != nil {
		return nil, mapError(err)
	}
	return collectReservations(rows)
}

// DeleteReservation removes a reservation and its slot.
func (r *ReservationRepository) DeleteReservation(ctx context.Context, id string) error {
	return r.db.withTransaction(ctx, func(tx *sql.Tx) error {
		var slotID string
		err := tx.QueryRow(`SELECT time_slot_id FROM reservations WHERE id = ?`, id).Scan(&slotID)
		if err != nil {
			return mapError(err)
		}
		if _, err := tx.Exec(`DELETE FROM reservations WHERE id = ?`, id); err != nil {
			return mapError(err)
		}
		if _, err := tx.Exec(`DELETE FROM time_slots WHERE id = ?`, slotID); err != nil {
			return mapError(err)
		}
		return nil
	})
}

// IsRoomReserved reports whether any reservation for the room intersects
// [start, end] inclusive at both ends.
func (r *ReservationRepository) IsRoomReserved(ctx context.Context, roomID string, start, end time.Time) (bool, error) {
	var exists bool
	err := r.db.sql.QueryRowContext(ctx, overlapQuery,
		roomID, "",
		formatTime(start), formatTime(end),
		formatTime(start), formatTime(end),
	).Scan(&exists)
	if err != nil {
		return false, mapError(err)
	}
	return exists, nil
}

func roomReservedTx(tx *sql.Tx, roomID string, start, end time.Time, excludeID string) (bool, error) {
	var exists bool
	err := tx.QueryRow(overlapQuery,
		roomID, excludeID,
		formatTime(start), formatTime(end),
		formatTime(start), formatTime(end),
	).Scan(&exists)
	if err != nil {
		return false, mapError(err)
	}
	return exists, nil
}

const selectReservation = `
SELECT r.id, r.user_id, r.room_id, r.purpose, r.attendees, r.created_at, r.updated_at,
       t.id, t.room_id, t.start_time, t.end_time
FROM reservations r
JOIN time_slots t ON t.id = r.time_slot_id`

func scanReservation(row rowScanner) (persistence.Reservation, error) {
	var reservation persistence.Reservation
	var createdAt, updatedAt, slotStart, slotEnd string
	if err := row.Scan(
		&reservation.ID, &reservation.UserID, &reservation.RoomID,
		&reservation.Purpose, &reservation.Attendees, &createdAt, &updatedAt,
		&reservation.Slot.ID, &reservation.Slot.RoomID, &slotStart, &slotEnd,
	); err != nil {
		return persistence.Reservation{}, mapError(err)
	}

	var err error
	if reservation.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Reservation{}, err
	}
	if reservation.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Reservation{}, err
	}
	if reservation.Slot.Start, err = parseTime(slotStart); err != nil {
		return persistence.Reservation{}, err
	}
	if reservation.Slot.End, err = parseTime(slotEnd); err != nil {
		return persistence.Reservation{}, err
	}
	return reservation, nil
}

func collectReservations(rows *sql.Rows) ([]persistence.Reservation, error) {
	defer rows.Close()

	var reservations []persistence.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	return reservations, rows.Err()
}
