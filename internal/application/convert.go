package application

import (
	"errors"

	"github.com/example/room-reservation/internal/persistence"
)

func userFromRecord(record persistence.User) User {
	return User{
		ID:          record.ID,
		Email:       record.Email,
		DisplayName: record.DisplayName,
		Role:        Role(record.Role),
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

func roomFromRecord(record persistence.Room) Room {
	return Room{
		ID:        record.ID,
		Name:      record.Name,
		Location:  record.Location,
		Capacity:  record.Capacity,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

func reservationFromRecord(record persistence.Reservation) Reservation {
	return Reservation{
		ID:     record.ID,
		UserID: record.UserID,
		RoomID: record.RoomID,
		Slot: TimeSlot{
			ID:     record.Slot.ID,
			RoomID: record.Slot.RoomID,
			Start:  record.Slot.Start,
			End:    record.Slot.End,
		},
		Purpose:   record.Purpose,
		Attendees: record.Attendees,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

func notificationFromRecord(record persistence.Notification) Notification {
	return Notification{
		ID:        record.ID,
		UserID:    record.UserID,
		Message:   record.Message,
		Seen:      record.Seen,
		CreatedAt: record.CreatedAt,
	}
}

func isConstraintViolation(err error) bool {
	return errors.Is(err, persistence.ErrConstraintViolation)
}

// mapRepoError lifts persistence sentinels into the application error space.
func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	case errors.Is(err, persistence.ErrConflict):
		return ErrConflict
	default:
		return err
	}
}
