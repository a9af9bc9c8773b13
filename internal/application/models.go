package application

import "time"

// Role classifies what a user account may do.
type Role string

const (
	// RoleUser may book rooms for themselves and manage their own reservations.
	RoleUser Role = "USER"
	// RoleAdmin may additionally manage rooms, users, and book on behalf of others.
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID string
	Email  string
	Role   Role
}

// IsAdmin reports whether the principal carries the administrator role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// User represents an account exposed by the application services. The
// password hash never leaves the persistence layer through this type.
type User struct {
	ID          string
	Email       string
	DisplayName string
	Role        Role
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Room represents a bookable meeting room.
type Room struct {
	ID        string
	Name      string
	Location  string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TimeSlot is the interval a reservation holds against a room.
type TimeSlot struct {
	ID     string
	RoomID string
	Start  time.Time
	End    time.Time
}

// Reservation represents a confirmed booking.
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

// Notification is a message delivered to a single user.
type Notification struct {
	ID        string
	UserID    string
	Message   string
	Seen      bool
	CreatedAt time.Time
}

// ReservationInput captures caller provided booking fields. OnBehalfOfUserID
// is set only when an administrator books for another user.
type ReservationInput struct {
	RoomID           string
	Start            time.Time
	End              time.Time
	Purpose          string
	Attendees        int
	OnBehalfOfUserID string
}

// CreateReservationParams wraps the data required to book a room.
type CreateReservationParams struct {
	Principal Principal
	Input     ReservationInput
}

// UpdateReservationParams wraps the data required to change a booking.
type UpdateReservationParams struct {
	Principal     Principal
	ReservationID string
	Input         ReservationInput
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name     string
	Location string
	Capacity int
}

// CreateRoomParams wraps the data required to create a room.
type CreateRoomParams struct {
	Principal Principal
	Input     RoomInput
}

// UpdateRoomParams wraps the data required to update a room.
type UpdateRoomParams struct {
	Principal Principal
	RoomID    string
	Input     RoomInput
}

// UserInput captures caller provided user attributes.
type UserInput struct {
	Email       string
	DisplayName string
	Password    string
	Role        Role
}

// CreateUserParams wraps the data required to create a user.
type CreateUserParams struct {
	Principal Principal
	Input     UserInput
}

// UpdateUserParams wraps the data required to update a user.
type UpdateUserParams struct {
	Principal Principal
	UserID    string
	Input     UserInput
}

// RegisterParams captures a self-service account registration.
type RegisterParams struct {
	Email       string
	DisplayName string
	Password    string
}

// LoginParams captures the data required to authenticate.
type LoginParams struct {
	Email    string
	Password string
}

// LoginResult captures the outcome of a successful login.
type LoginResult struct {
	User      User
	Token     string
	ExpiresAt time.Time
}

// SendNotificationParams wraps the data required to deliver a notification.
type SendNotificationParams struct {
	Principal Principal
	UserID    string
	Message   string
}
