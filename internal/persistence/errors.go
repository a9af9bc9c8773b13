package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a uniqueness rule would be violated.
	ErrDuplicate = errors.New("persistence: duplicate")
	// ErrConflict is returned when committing a reservation whose slot
	// overlaps an existing reservation for the same room.
	ErrConflict = errors.New("persistence: slot conflict")
	// ErrConstraintViolation is returned when a record violates a schema
	// level constraint such as a non-positive capacity.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)
