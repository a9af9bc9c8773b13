package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/room-reservation/internal/application"
	"github.com/example/room-reservation/internal/persistence"
)

var (
	userCounter         uint64
	roomCounter         uint64
	reservationCounter  uint64
	notificationCounter uint64
)

var referenceTime = time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic user record that can be materialised
// for application or persistence tests.
type UserFixture struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	Role         application.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:           id,
		Email:        fmt.Sprintf("%s@example.com", id),
		DisplayName:  fmt.Sprintf("User %03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		Role:         application.RoleUser,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserPasswordHash overrides the generated password hash.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// WithUserRole sets the role on the generated fixture.
func WithUserRole(role application.Role) UserOption {
	return func(f *UserFixture) {
		f.Role = role
	}
}

// AsAdmin marks the generated fixture as an administrator.
func AsAdmin() UserOption {
	return WithUserRole(application.RoleAdmin)
}

// WithUserTimestamps sets both created and updated timestamps on the fixture.
func WithUserTimestamps(created, updated time.Time) UserOption {
	return func(f *UserFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.User value.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:          f.ID,
		Email:       f.Email,
		DisplayName: f.DisplayName,
		Role:        f.Role,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID, Email: f.Email, Role: f.Role}
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		Email:        f.Email,
		DisplayName:  f.DisplayName,
		PasswordHash: f.PasswordHash,
		Role:         string(f.Role),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Input returns the fixture as an application.UserInput. The password is the
// fixture hash prefixed so tests can tell inputs from stored hashes.
func (f UserFixture) Input() application.UserInput {
	return application.UserInput{
		Email:       f.Email,
		DisplayName: f.DisplayName,
		Password:    "password-" + f.ID,
		Role:        f.Role,
	}
}

// ----------------------------- Room fixtures -----------------------------

// RoomFixture represents a deterministic room catalog entry.
type RoomFixture struct {
	ID        string
	Name      string
	Location  string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic room fixture with optional overrides.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	id := fmt.Sprintf("room-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := RoomFixture{
		ID:        id,
		Name:      fmt.Sprintf("Room %03d", idx),
		Location:  "Main Office",
		Capacity:  int(4 + idx%4),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) {
		f.ID = id
	}
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(f *RoomFixture) {
		f.Name = name
	}
}

// WithRoomCapacity overrides the generated capacity.
func WithRoomCapacity(capacity int) RoomOption {
	return func(f *RoomFixture) {
		f.Capacity = capacity
	}
}

// WithRoomTimestamps sets both created and updated timestamps.
func WithRoomTimestamps(created, updated time.Time) RoomOption {
	return func(f *RoomFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Room value.
func (f RoomFixture) Application() application.Room {
	return application.Room{
		ID:        f.ID,
		Name:      f.Name,
		Location:  f.Location,
		Capacity:  f.Capacity,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Room value.
func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{
		ID:        f.ID,
		Name:      f.Name,
		Location:  f.Location,
		Capacity:  f.Capacity,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Input returns the fixture as an application.RoomInput.
func (f RoomFixture) Input() application.RoomInput {
	return application.RoomInput{
		Name:     f.Name,
		Location: f.Location,
		Capacity: f.Capacity,
	}
}

// ------------------------- Reservation fixtures --------------------------

// ReservationFixture represents a deterministic booking with its slot.
type ReservationFixture struct {
	ID        string
	UserID    string
	RoomID    string
	Start     time.Time
	End       time.Time
	Purpose   string
	Attendees int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReservationOption configures the generated reservation fixture.
type ReservationOption func(*ReservationFixture)

// NewReservationFixture returns a deterministic reservation fixture with
// optional overrides. Successive fixtures occupy consecutive non-touching
// hours so they never conflict unless a test asks them to.
func NewReservationFixture(opts ...ReservationOption) ReservationFixture {
	idx := atomic.AddUint64(&reservationCounter, 1)
	id := fmt.Sprintf("reservation-%03d", idx)
	start := referenceTime.Add(time.Duration(idx) * 2 * time.Hour)
	fixture := ReservationFixture{
		ID:        id,
		UserID:    fmt.Sprintf("user-%03d", idx),
		RoomID:    fmt.Sprintf("room-%03d", idx),
		Start:     start,
		End:       start.Add(time.Hour),
		Purpose:   fmt.Sprintf("Meeting %03d", idx),
		Attendees: 2,
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithReservationID overrides the reservation ID.
func WithReservationID(id string) ReservationOption {
	return func(f *ReservationFixture) {
		f.ID = id
	}
}

// WithReservationUser sets the booking owner.
func WithReservationUser(userID string) ReservationOption {
	return func(f *ReservationFixture) {
		f.UserID = userID
	}
}

// WithReservationRoom sets the booked room.
func WithReservationRoom(roomID string) ReservationOption {
	return func(f *ReservationFixture) {
		f.RoomID = roomID
	}
}

// WithReservationInterval sets the start and end times.
func WithReservationInterval(start, end time.Time) ReservationOption {
	return func(f *ReservationFixture) {
		f.Start = start
		f.End = end
	}
}

// WithReservationAttendees sets the attendee count.
func WithReservationAttendees(attendees int) ReservationOption {
	return func(f *ReservationFixture) {
		f.Attendees = attendees
	}
}

// WithReservationPurpose sets the purpose text.
func WithReservationPurpose(purpose string) ReservationOption {
	return func(f *ReservationFixture) {
		f.Purpose = purpose
	}
}

// Application returns the fixture as an application.Reservation value.
func (f ReservationFixture) Application() application.Reservation {
	return application.Reservation{
		ID:     f.ID,
		UserID: f.UserID,
		RoomID: f.RoomID,
		Slot: application.TimeSlot{
			ID:     "slot-" + f.ID,
			RoomID: f.RoomID,
			Start:  f.Start,
			End:    f.End,
		},
		Purpose:   f.Purpose,
		Attendees: f.Attendees,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Reservation value.
func (f ReservationFixture) Persistence() persistence.Reservation {
	return persistence.Reservation{
		ID:     f.ID,
		UserID: f.UserID,
		RoomID: f.RoomID,
		Slot: persistence.TimeSlot{
			ID:     "slot-" + f.ID,
			RoomID: f.RoomID,
			Start:  f.Start,
			End:    f.End,
		},
		Purpose:   f.Purpose,
		Attendees: f.Attendees,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Input returns the fixture as an application.ReservationInput.
func (f ReservationFixture) Input() application.ReservationInput {
	return application.ReservationInput{
		RoomID:    f.RoomID,
		Start:     f.Start,
		End:       f.End,
		Purpose:   f.Purpose,
		Attendees: f.Attendees,
	}
}

// ------------------------ Notification fixtures --------------------------

// NotificationFixture represents a deterministic per-user message.
type NotificationFixture struct {
	ID        string
	UserID    string
	Message   string
	Seen      bool
	CreatedAt time.Time
}

// NotificationOption configures the generated notification fixture.
type NotificationOption func(*NotificationFixture)

// NewNotificationFixture returns a deterministic notification fixture with
// optional overrides.
func NewNotificationFixture(opts ...NotificationOption) NotificationFixture {
	idx := atomic.AddUint64(&notificationCounter, 1)
	fixture := NotificationFixture{
		ID:        fmt.Sprintf("notification-%03d", idx),
		UserID:    fmt.Sprintf("user-%03d", idx),
		Message:   fmt.Sprintf("Message %03d", idx),
		Seen:      false,
		CreatedAt: referenceTime.Add(time.Duration(idx) * time.Second),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithNotificationUser sets the recipient.
func WithNotificationUser(userID string) NotificationOption {
	return func(f *NotificationFixture) {
		f.UserID = userID
	}
}

// WithNotificationMessage sets the message body.
func WithNotificationMessage(message string) NotificationOption {
	return func(f *NotificationFixture) {
		f.Message = message
	}
}

// Seen marks the notification as already read.
func Seen() NotificationOption {
	return func(f *NotificationFixture) {
		f.Seen = true
	}
}

// Application returns the fixture as an application.Notification value.
func (f NotificationFixture) Application() application.Notification {
	return application.Notification{
		ID:        f.ID,
		UserID:    f.UserID,
		Message:   f.Message,
		Seen:      f.Seen,
		CreatedAt: f.CreatedAt,
	}
}

// Persistence returns the fixture as a persistence.Notification value.
func (f NotificationFixture) Persistence() persistence.Notification {
	return persistence.Notification{
		ID:        f.ID,
		UserID:    f.UserID,
		Message:   f.Message,
		Seen:      f.Seen,
		CreatedAt: f.CreatedAt,
	}
}
