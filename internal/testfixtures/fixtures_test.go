package testfixtures

import (
	"context"
	"testing"
	"time"

	"github.com/example/room-reservation/internal/application"
)

func TestUserFixtureDefaultsAreDeterministic(t *testing.T) {
	fixture := NewUserFixture()

	if fixture.ID == "" || fixture.Email == "" {
		t.Fatalf("fixture is missing identity fields: %+v", fixture)
	}
	if fixture.Role != application.RoleUser {
		t.Fatalf("default role should be USER, got %q", fixture.Role)
	}
	if !fixture.CreatedAt.Equal(fixture.UpdatedAt) {
		t.Fatal("fresh fixtures carry matching timestamps")
	}

	record := fixture.Persistence()
	if record.PasswordHash != fixture.PasswordHash || record.Role != string(fixture.Role) {
		t.Fatalf("persistence conversion dropped fields: %+v", record)
	}

	principal := fixture.Principal()
	if principal.UserID != fixture.ID || principal.IsAdmin() {
		t.Fatalf("unexpected principal: %+v", principal)
	}
}

func TestUserFixtureOptions(t *testing.T) {
	fixture := NewUserFixture(WithUserID("u-override"), WithUserEmail("custom@example.com"), AsAdmin())

	if fixture.ID != "u-override" || fixture.Email != "custom@example.com" {
		t.Fatalf("overrides not applied: %+v", fixture)
	}
	if !fixture.Principal().IsAdmin() {
		t.Fatal("AsAdmin should yield an administrator principal")
	}
}

func TestReservationFixturesDoNotOverlap(t *testing.T) {
	first := NewReservationFixture(WithReservationRoom("room-shared"))
	second := NewReservationFixture(WithReservationRoom("room-shared"))

	if !first.End.Before(second.Start) {
		t.Fatalf("successive fixtures must not touch: first ends %v, second starts %v", first.End, second.Start)
	}
}

func TestReservationFixtureConversions(t *testing.T) {
	start := time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)
	fixture := NewReservationFixture(
		WithReservationUser("u1"),
		WithReservationRoom("r1"),
		WithReservationInterval(start, start.Add(time.Hour)),
		WithReservationAttendees(5),
	)

	record := fixture.Persistence()
	if record.Slot.RoomID != "r1" || !record.Slot.Start.Equal(start) {
		t.Fatalf("slot not derived from fixture: %+v", record.Slot)
	}
	if record.Slot.ID == "" || record.Slot.ID == record.ID {
		t.Fatalf("slot needs its own identifier, got %q", record.Slot.ID)
	}

	input := fixture.Input()
	if input.RoomID != "r1" || input.Attendees != 5 || input.OnBehalfOfUserID != "" {
		t.Fatalf("unexpected input: %+v", input)
	}
}

func TestSQLiteHarnessRoundTrip(t *testing.T) {
	harness := NewSQLiteHarness(t)
	ctx := context.Background()

	user := NewUserFixture()
	if err := harness.Users.CreateUser(ctx, user.Persistence()); err != nil {
		t.Fatalf("create user: %v", err)
	}

	room := NewRoomFixture()
	if err := harness.Rooms.CreateRoom(ctx, room.Persistence()); err != nil {
		t.Fatalf("create room: %v", err)
	}

	reservation := NewReservationFixture(WithReservationUser(user.ID), WithReservationRoom(room.ID))
	if err := harness.Reservations.CreateReservation(ctx, reservation.Persistence()); err != nil {
		t.Fatalf("create reservation: %v", err)
	}

	stored, err := harness.Reservations.GetReservation(ctx, reservation.ID)
	if err != nil {
		t.Fatalf("get reservation: %v", err)
	}
	if stored.UserID != user.ID || stored.RoomID != room.ID {
		t.Fatalf("round trip mismatch: %+v", stored)
	}

	notification := NewNotificationFixture(WithNotificationUser(user.ID))
	if err := harness.Notifications.CreateNotification(ctx, notification.Persistence()); err != nil {
		t.Fatalf("create notification: %v", err)
	}
	listed, err := harness.Notifications.ListNotificationsForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(listed) != 1 || listed[0].Message != notification.Message {
		t.Fatalf("unexpected notifications: %+v", listed)
	}
}
