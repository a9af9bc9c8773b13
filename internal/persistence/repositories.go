package persistence

import (
	"context"
	"time"
)

// UserRepository exposes CRUD operations for users.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
}

// RoomRepository exposes CRUD operations for rooms.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	UpdateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	DeleteRoom(ctx context.Context, id string) error
}

// ReservationRepository stores reservations together with their time slots.
//
// CreateReservation and UpdateReservation persist the reservation and its
// slot as a unit: either both rows land or neither does. CreateReservation
// must refuse a slot that overlaps an existing reservation for the same room
// under the inclusive boundary rule and report ErrConflict, so a commit
// racing past an earlier availability check still cannot double-book.
type ReservationRepository interface {
	CreateReservation(ctx context.Context, reservation Reservation) error
	UpdateReservation(ctx context.Context, reservation Reservation) error
	GetReservation(ctx context.Context, id string) (Reservation, error)
	ListReservations(ctx context.Context) ([]Reservation, error)
	ListReservationsForRoom(ctx context.Context, roomID string) ([]Reservation, error)
	DeleteReservation(ctx context.Context, id string) error

	// IsRoomReserved reports whether any reservation for the room has a slot
	// intersecting [start, end] inclusive at both ends.
	IsRoomReserved(ctx context.Context, roomID string, start, end time.Time) (bool, error)
}

// NotificationRepository stores per-user notifications.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification Notification) error
	GetNotification(ctx context.Context, id string) (Notification, error)
	ListNotificationsForUser(ctx context.Context, userID string) ([]Notification, error)
	UpdateNotification(ctx context.Context, notification Notification) error
}
