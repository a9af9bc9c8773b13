// Package memory provides the mutex-guarded in-memory reference
// implementation of the persistence repositories. It is the store the test
// suite runs against and doubles as executable documentation of the
// repository contracts, in particular the atomic reservation commit and the
// inclusive boundary availability check.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/room-reservation/internal/persistence"
	"github.com/example/room-reservation/internal/scheduler"
)

// Store implements every persistence repository over in-process maps.
type Store struct {
	mu            sync.RWMutex
	users         map[string]persistence.User
	rooms         map[string]persistence.Room
	reservations  map[string]persistence.Reservation
	notifications map[string]persistence.Notification
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:         make(map[string]persistence.User),
		rooms:         make(map[string]persistence.Room),
		reservations:  make(map[string]persistence.Reservation),
		notifications: make(map[string]persistence.Notification),
	}
}

// --- UserRepository ---

// CreateUser stores a new user, enforcing email uniqueness.
func (s *Store) CreateUser(ctx context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return persistence.ErrDuplicate
	}
	if err := s.ensureUniqueEmailLocked(user.ID, user.Email); err != nil {
		return err
	}

	s.users[user.ID] = user
	return nil
}

// UpdateUser replaces an existing user record.
func (s *Store) UpdateUser(ctx context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return persistence.ErrNotFound
	}
	if err := s.ensureUniqueEmailLocked(user.ID, user.Email); err != nil {
		return err
	}

	s.users[user.ID] = user
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email, case-insensitively.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := strings.ToLower(email)
	for _, user := range s.users {
		if strings.ToLower(user.Email) == lower {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

// ListUsers returns all users ordered by creation time, then ID.
func (s *Store) ListUsers(ctx context.Context) ([]persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]persistence.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

// DeleteUser removes a user by ID.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return persistence.ErrNotFound
	}
	for _, reservation := range s.reservations {
		if reservation.UserID == id {
			return persistence.ErrConstraintViolation
		}
	}
	delete(s.users, id)
	return nil
}

func (s *Store) ensureUniqueEmailLocked(id, email string) error {
	lower := strings.ToLower(email)
	for _, existing := range s.users {
		if existing.ID == id {
			continue
		}
		if strings.ToLower(existing.Email) == lower {
			return persistence.ErrDuplicate
		}
	}
	return nil
}

// --- RoomRepository ---

// CreateRoom stores a new room.
func (s *Store) CreateRoom(ctx context.Context, room persistence.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[room.ID]; ok {
		return persistence.ErrDuplicate
	}
	if room.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	s.rooms[room.ID] = room
	return nil
}

// UpdateRoom replaces an existing room record.
func (s *Store) UpdateRoom(ctx context.Context, room persistence.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[room.ID]; !ok {
		return persistence.ErrNotFound
	}
	if room.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	s.rooms[room.ID] = room
	return nil
}

// GetRoom retrieves a room by ID.
func (s *Store) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[id]
	if !ok {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return room, nil
}

// ListRooms returns all rooms ordered by name, then ID.
func (s *Store) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]persistence.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Name == rooms[j].Name {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].Name < rooms[j].Name
	})
	return rooms, nil
}

// DeleteRoom removes a room by ID. A room still referenced by a
// reservation cannot be deleted, matching the SQLite foreign key.
func (s *Store) DeleteRoom(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[id]; !ok {
		return persistence.ErrNotFound
	}
	for _, reservation := range s.reservations {
		if reservation.RoomID == id {
			return persistence.ErrConstraintViolation
		}
	}
	delete(s.rooms, id)
	return nil
}

// --- ReservationRepository ---

// CreateReservation commits a reservation and its slot as a unit. The
// store's own lock spans the availability re-check and the insert, so two
// racing commits for overlapping slots on one room cannot both land even if
// both passed an earlier IsRoomReserved call.
func (s *Store) CreateReservation(ctx context.Context, reservation persistence.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reservations[reservation.ID]; ok {
		return persistence.ErrDuplicate
	}
	if reservation.Slot.RoomID != reservation.RoomID {
		return persistence.ErrConstraintViolation
	}
	if s.roomReservedLocked(reservation.RoomID, reservation.Slot.Start, reservation.Slot.End, "") {
		return persistence.ErrConflict
	}

	s.reservations[reservation.ID] = reservation
	return nil
}

// UpdateReservation replaces an existing reservation and its slot.
func (s *Store) UpdateReservation(ctx context.Context, reservation persistence.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reservations[reservation.ID]; !ok {
		return persistence.ErrNotFound
	}
	if reservation.Slot.RoomID != reservation.RoomID {
		return persistence.ErrConstraintViolation
	}
	if s.roomReservedLocked(reservation.RoomID, reservation.Slot.Start, reservation.Slot.End, reservation.ID) {
		return persistence.ErrConflict
	}

	s.reservations[reservation.ID] = reservation
	return nil
}

// GetReservation retrieves a reservation by ID.
func (s *Store) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reservation, ok := s.reservations[id]
	if !ok {
		return persistence.Reservation{}, persistence.ErrNotFound
	}
	return reservation, nil
}

// ListReservations returns all reservations ordered by slot start, then ID.
func (s *Store) ListReservations(ctx context.Context) ([]persistence.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectReservationsLocked(func(persistence.Reservation) bool { return true }), nil
}

// ListReservationsForRoom returns the reservations held against one room.
func (s *Store) ListReservationsForRoom(ctx context.Context, roomID string) ([]persistence.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectReservationsLocked(func(r persistence.Reservation) bool { return r.RoomID == roomID }), nil
}

// DeleteReservation removes a reservation and its slot.
func (s *Store) DeleteReservation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reservations[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.reservations, id)
	return nil
}

// IsRoomReserved reports whether any reservation for the room intersects
// [start, end] inclusive at both ends.
func (s *Store) IsRoomReserved(ctx context.Context, roomID string, start, end time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roomReservedLocked(roomID, start, end, ""), nil
}

func (s *Store) roomReservedLocked(roomID string, start, end time.Time, excludeID string) bool {
	existing := make([]scheduler.Booking, 0, len(s.reservations))
	for _, reservation := range s.reservations {
		existing = append(existing, scheduler.Booking{
			ReservationID: reservation.ID,
			RoomID:        reservation.RoomID,
			Start:         reservation.Slot.Start,
			End:           reservation.Slot.End,
		})
	}
	conflicts := scheduler.FindConflicts(existing, scheduler.Booking{
		ReservationID: excludeID,
		RoomID:        roomID,
		Start:         start,
		End:           end,
	})
	return len(conflicts) > 0
}

func (s *Store) collectReservationsLocked(keep func(persistence.Reservation) bool) []persistence.Reservation {
	reservations := make([]persistence.Reservation, 0, len(s.reservations))
	for _, reservation := range s.reservations {
		if keep(reservation) {
			reservations = append(reservations, reservation)
		}
	}
	sort.Slice(reservations, func(i, j int) bool {
		if reservations[i].Slot.Start.Equal(reservations[j].Slot.Start) {
			return reservations[i].ID < reservations[j].ID
		}
		return reservations[i].Slot.Start.Before(reservations[j].Slot.Start)
	})
	return reservations
}

// --- NotificationRepository ---

// CreateNotification stores a new notification.
func (s *Store) CreateNotification(ctx context.Context, notification persistence.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notifications[notification.ID]; ok {
		return persistence.ErrDuplicate
	}
	s.notifications[notification.ID] = notification
	return nil
}

// GetNotification retrieves a notification by ID.
func (s *Store) GetNotification(ctx context.Context, id string) (persistence.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notification, ok := s.notifications[id]
	if !ok {
		return persistence.Notification{}, persistence.ErrNotFound
	}
	return notification, nil
}

// ListNotificationsForUser returns a user's notifications, newest first.
func (s *Store) ListNotificationsForUser(ctx context.Context, userID string) ([]persistence.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notifications := make([]persistence.Notification, 0)
	for _, notification := range s.notifications {
		if notification.UserID == userID {
			notifications = append(notifications, notification)
		}
	}
	sort.Slice(notifications, func(i, j int) bool {
		if notifications[i].CreatedAt.Equal(notifications[j].CreatedAt) {
			return notifications[i].ID < notifications[j].ID
		}
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

// UpdateNotification replaces an existing notification record.
func (s *Store) UpdateNotification(ctx context.Context, notification persistence.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notifications[notification.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.notifications[notification.ID] = notification
	return nil
}
