package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/room-reservation/internal/persistence"
)

// Notifier delivers a message to a user after a booking changes state.
// Delivery failures are logged, never surfaced to the caller.
type Notifier interface {
	Notify(ctx context.Context, userID, message string) error
}

// ReservationService orchestrates validation, authorization, conflict
// detection, and persistence for bookings.
type ReservationService struct {
	reservations persistence.ReservationRepository
	users        persistence.UserRepository
	rooms        persistence.RoomRepository
	notifier     Notifier
	roomLocks    roomLocker
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewReservationService wires dependencies for booking operations. The
// notifier is optional.
func NewReservationService(reservations persistence.ReservationRepository, users persistence.UserRepository, rooms persistence.RoomRepository, notifier Notifier, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ReservationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ReservationService{
		reservations: reservations,
		users:        users,
		rooms:        rooms,
		notifier:     notifier,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *ReservationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReservationService", operation, attrs...)
}

// Reserve books a room. The gates run in a fixed order: interval validation,
// availability, user resolution, role check, room lookup, capacity, then the
// atomic slot-plus-reservation commit. The per-room lock spans the
// availability check and the commit so two racing requests for the same room
// cannot both pass the check; the store re-verifies under its own
// transaction as a second line of defense.
func (s *ReservationService) Reserve(ctx context.Context, params CreateReservationParams) (reservation Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.reservations == nil || s.users == nil || s.rooms == nil {
		err = fmt.Errorf("reservation service dependencies not configured")
		return
	}

	principal := params.Principal
	input := params.Input

	logger := s.loggerWith(ctx, "Reserve",
		"principal_id", principal.UserID,
		"room_id", input.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "reservation refused", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("reservation_id", reservation.ID, "user_id", reservation.UserID).
			InfoContext(ctx, "reservation confirmed")
	}()

	vErr := &ValidationError{}
	validateReservationInput(input, vErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	unlock := s.roomLocks.lock(input.RoomID)
	defer unlock()

	var reserved bool
	reserved, err = s.reservations.IsRoomReserved(ctx, input.RoomID, input.Start, input.End)
	if err != nil {
		return
	}
	if reserved {
		err = ErrConflict
		return
	}

	var bookingUser persistence.User
	bookingUser, err = s.resolveBookingUser(ctx, principal, input.OnBehalfOfUserID)
	if err != nil {
		return
	}
	if !Role(bookingUser.Role).Valid() {
		err = ErrUnauthorized
		return
	}

	var room persistence.Room
	room, err = s.rooms.GetRoom(ctx, input.RoomID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if input.Attendees > room.Capacity {
		vErr.add("attendees", "attendee count exceeds room capacity")
		err = vErr
		return
	}

	createdAt := s.now()
	record := persistence.Reservation{
		ID:     s.idGenerator(),
		UserID: bookingUser.ID,
		RoomID: room.ID,
		Slot: persistence.TimeSlot{
			ID:     s.idGenerator(),
			RoomID: room.ID,
			Start:  input.Start,
			End:    input.End,
		},
		Purpose:   strings.TrimSpace(input.Purpose),
		Attendees: input.Attendees,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	if err = mapRepoError(s.reservations.CreateReservation(ctx, record)); err != nil {
		return
	}

	reservation = reservationFromRecord(record)
	s.notify(ctx, logger, bookingUser.ID, fmt.Sprintf(
		"Your reservation for %s from %s to %s is confirmed.",
		room.Name, record.Slot.Start.Format(time.RFC3339), record.Slot.End.Format(time.RFC3339)))
	return
}

// Update rewrites an existing booking. Only the owner or an administrator
// may change it, and the new interval is re-validated against every other
// reservation for the target room.
func (s *ReservationService) Update(ctx context.Context, params UpdateReservationParams) (reservation Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.reservations == nil || s.rooms == nil {
		err = fmt.Errorf("reservation service dependencies not configured")
		return
	}

	principal := params.Principal
	input := params.Input

	logger := s.loggerWith(ctx, "Update",
		"principal_id", principal.UserID,
		"reservation_id", params.ReservationID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "reservation update refused", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "reservation updated")
	}()

	var existing persistence.Reservation
	existing, err = s.reservations.GetReservation(ctx, params.ReservationID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if existing.UserID != principal.UserID && !principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	targetRoomID := input.RoomID
	if targetRoomID == "" {
		targetRoomID = existing.RoomID
	}
	resolved := input
	resolved.RoomID = targetRoomID

	vErr := &ValidationError{}
	validateReservationInput(resolved, vErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	unlock := s.lockRooms(existing.RoomID, targetRoomID)
	defer unlock()

	var room persistence.Room
	room, err = s.rooms.GetRoom(ctx, targetRoomID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if resolved.Attendees > room.Capacity {
		vErr.add("attendees", "attendee count exceeds room capacity")
		err = vErr
		return
	}

	updated := existing
	updated.RoomID = room.ID
	updated.Slot.RoomID = room.ID
	updated.Slot.Start = resolved.Start
	updated.Slot.End = resolved.End
	updated.Purpose = strings.TrimSpace(resolved.Purpose)
	updated.Attendees = resolved.Attendees
	updated.UpdatedAt = s.now()

	if err = mapRepoError(s.reservations.UpdateReservation(ctx, updated)); err != nil {
		return
	}

	reservation = reservationFromRecord(updated)
	return
}

// Cancel removes a booking. Only the owner or an administrator may cancel.
func (s *ReservationService) Cancel(ctx context.Context, principal Principal, reservationID string) (err error) {
	if s == nil {
		return fmt.Errorf("ReservationService is nil")
	}
	if s.reservations == nil {
		return fmt.Errorf("reservation repository not configured")
	}

	logger := s.loggerWith(ctx, "Cancel",
		"principal_id", principal.UserID,
		"reservation_id", reservationID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "reservation cancel refused", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "reservation cancelled")
	}()

	existing, err := s.reservations.GetReservation(ctx, reservationID)
	if err != nil {
		return mapRepoError(err)
	}
	if existing.UserID != principal.UserID && !principal.IsAdmin() {
		return ErrUnauthorized
	}

	if err = mapRepoError(s.reservations.DeleteReservation(ctx, reservationID)); err != nil {
		return err
	}

	s.notify(ctx, logger, existing.UserID, fmt.Sprintf(
		"Your reservation from %s to %s was cancelled.",
		existing.Slot.Start.Format(time.RFC3339), existing.Slot.End.Format(time.RFC3339)))
	return nil
}

// Get returns one booking. Users see their own; administrators see all.
func (s *ReservationService) Get(ctx context.Context, principal Principal, reservationID string) (Reservation, error) {
	if s == nil {
		return Reservation{}, fmt.Errorf("ReservationService is nil")
	}
	if s.reservations == nil {
		return Reservation{}, fmt.Errorf("reservation repository not configured")
	}

	record, err := s.reservations.GetReservation(ctx, reservationID)
	if err != nil {
		return Reservation{}, mapRepoError(err)
	}
	if record.UserID != principal.UserID && !principal.IsAdmin() {
		return Reservation{}, ErrUnauthorized
	}
	return reservationFromRecord(record), nil
}

// List enumerates bookings visible to the principal: administrators see
// every reservation, users only their own.
func (s *ReservationService) List(ctx context.Context, principal Principal) ([]Reservation, error) {
	if s == nil {
		return nil, fmt.Errorf("ReservationService is nil")
	}
	if s.reservations == nil {
		return nil, fmt.Errorf("reservation repository not configured")
	}

	records, err := s.reservations.ListReservations(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}

	reservations := make([]Reservation, 0, len(records))
	for _, record := range records {
		if !principal.IsAdmin() && record.UserID != principal.UserID {
			continue
		}
		reservations = append(reservations, reservationFromRecord(record))
	}
	return reservations, nil
}

// ListForRoom returns every booking held against one room, for availability
// views. Any authenticated principal may call it.
func (s *ReservationService) ListForRoom(ctx context.Context, roomID string) ([]Reservation, error) {
	if s == nil {
		return nil, fmt.Errorf("ReservationService is nil")
	}
	if s.reservations == nil {
		return nil, fmt.Errorf("reservation repository not configured")
	}

	records, err := s.reservations.ListReservationsForRoom(ctx, roomID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	reservations := make([]Reservation, 0, len(records))
	for _, record := range records {
		reservations = append(reservations, reservationFromRecord(record))
	}
	return reservations, nil
}

func (s *ReservationService) resolveBookingUser(ctx context.Context, principal Principal, onBehalfOfUserID string) (persistence.User, error) {
	targetID := principal.UserID
	if onBehalfOfUserID != "" && onBehalfOfUserID != principal.UserID {
		if !principal.IsAdmin() {
			return persistence.User{}, ErrUnauthorized
		}
		targetID = onBehalfOfUserID
	}

	user, err := s.users.GetUser(ctx, targetID)
	if err != nil {
		return persistence.User{}, mapRepoError(err)
	}
	return user, nil
}

// lockRooms acquires both room locks in a stable order so two updates moving
// bookings between the same pair of rooms cannot deadlock.
func (s *ReservationService) lockRooms(roomIDs ...string) func() {
	unique := make([]string, 0, len(roomIDs))
	seen := make(map[string]struct{}, len(roomIDs))
	for _, id := range roomIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Strings(unique)

	unlocks := make([]func(), 0, len(unique))
	for _, id := range unique {
		unlocks = append(unlocks, s.roomLocks.lock(id))
	}
	return func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
}

func (s *ReservationService) notify(ctx context.Context, logger *slog.Logger, userID, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, message); err != nil {
		logger.WarnContext(ctx, "notification delivery failed", "user_id", userID, "error", err)
	}
}

func validateReservationInput(input ReservationInput, vErr *ValidationError) {
	if input.RoomID == "" {
		vErr.add("room_id", "room is required")
	}
	if input.Start.IsZero() {
		vErr.add("start", "start time is required")
	}
	if input.End.IsZero() {
		vErr.add("end", "end time is required")
	}
	if !input.Start.IsZero() && !input.End.IsZero() && !input.Start.Before(input.End) {
		vErr.add("start", "start time must be before end time")
	}
	if input.Attendees < 1 {
		vErr.add("attendees", "at least one attendee is required")
	}
}
