package persistence

import "time"

// User represents an account in the reservation domain.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Room represents a bookable room catalog entry.
type Room struct {
	ID        string
	Name      string
	Location  string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TimeSlot represents the interval a reservation occupies on a room.
// A slot is only ever written together with its reservation.
type TimeSlot struct {
	ID     string
	RoomID string
	Start  time.Time
	End    time.Time
}

// Reservation represents a booking record stored in persistence. The slot is
// read and written as part of the reservation; related entities are carried
// as identifiers, never as embedded object graphs.
type Reservation struct {
	ID        string
	UserID    string
	RoomID    string
	Slot      TimeSlot
	Purpose   string
	Attendees int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Notification represents a per-user message with read state.
type Notification struct {
	ID        string
	UserID    string
	Message   string
	Seen      bool
	CreatedAt time.Time
}
