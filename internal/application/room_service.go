package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/room-reservation/internal/persistence"
)

// RoomService orchestrates validation, authorization, and persistence for
// the room catalog. Mutations are restricted to administrators; any
// authenticated principal may read.
type RoomService struct {
	rooms       persistence.RoomRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRoomService wires dependencies for room catalog operations.
func NewRoomService(rooms persistence.RoomRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RoomService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RoomService{rooms: rooms, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// Create validates input and persists a new room for administrators.
func (s *RoomService) Create(ctx context.Context, params CreateRoomParams) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Create", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "room create refused", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", room.ID).InfoContext(ctx, "room created")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	normalized := normalizeRoomInput(params.Input)
	vErr := validateRoomInput(normalized)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	createdAt := s.now()
	record := persistence.Room{
		ID:        s.idGenerator(),
		Name:      normalized.Name,
		Location:  normalized.Location,
		Capacity:  normalized.Capacity,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if err = mapRepoError(s.rooms.CreateRoom(ctx, record)); err != nil {
		return
	}

	room = roomFromRecord(record)
	return
}

// Update validates input and updates an existing room for administrators.
func (s *RoomService) Update(ctx context.Context, params UpdateRoomParams) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Update",
		"principal_id", params.Principal.UserID,
		"room_id", params.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "room update refused", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room updated")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	var existing persistence.Room
	existing, err = s.rooms.GetRoom(ctx, params.RoomID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	normalized := normalizeRoomInput(params.Input)
	vErr := validateRoomInput(normalized)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Name = normalized.Name
	updated.Location = normalized.Location
	updated.Capacity = normalized.Capacity
	updated.UpdatedAt = s.now()

	if err = mapRepoError(s.rooms.UpdateRoom(ctx, updated)); err != nil {
		return
	}

	room = roomFromRecord(updated)
	return
}

// Delete removes a room for administrators. A room that still holds
// reservations is refused with ErrConflict.
func (s *RoomService) Delete(ctx context.Context, principal Principal, roomID string) error {
	if s == nil {
		return fmt.Errorf("RoomService is nil")
	}
	if s.rooms == nil {
		return fmt.Errorf("room repository not configured")
	}
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}

	if err := s.rooms.DeleteRoom(ctx, roomID); err != nil {
		if errors.Is(err, persistence.ErrConstraintViolation) {
			return ErrConflict
		}
		return mapRepoError(err)
	}
	return nil
}

// Get returns one room by ID.
func (s *RoomService) Get(ctx context.Context, roomID string) (Room, error) {
	if s == nil {
		return Room{}, fmt.Errorf("RoomService is nil")
	}
	if s.rooms == nil {
		return Room{}, fmt.Errorf("room repository not configured")
	}

	record, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return Room{}, mapRepoError(err)
	}
	return roomFromRecord(record), nil
}

// List returns the full room catalog.
func (s *RoomService) List(ctx context.Context) ([]Room, error) {
	if s == nil {
		return nil, fmt.Errorf("RoomService is nil")
	}
	if s.rooms == nil {
		return nil, fmt.Errorf("room repository not configured")
	}

	records, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}

	rooms := make([]Room, 0, len(records))
	for _, record := range records {
		rooms = append(rooms, roomFromRecord(record))
	}
	return rooms, nil
}

func normalizeRoomInput(input RoomInput) RoomInput {
	input.Name = strings.TrimSpace(input.Name)
	input.Location = strings.TrimSpace(input.Location)
	return input
}

func validateRoomInput(input RoomInput) *ValidationError {
	vErr := &ValidationError{}
	if input.Name == "" {
		vErr.add("name", "name is required")
	}
	if input.Capacity < 1 {
		vErr.add("capacity", "capacity must be at least 1")
	}
	return vErr
}
