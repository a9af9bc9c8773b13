package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/room-reservation/internal/persistence/memory"
)

func newUserService(t *testing.T) (*UserService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	hasher := func(password string) (string, error) { return "hashed:" + password, nil }
	return NewUserService(store, hasher, sequentialIDs("user"), fixedClock(9), nil), store
}

func TestUserService_CreateRequiresAdmin(t *testing.T) {
	t.Parallel()
	svc, _ := newUserService(t)

	_, err := svc.Create(context.Background(), CreateUserParams{
		Principal: alice,
		Input:     UserInput{Email: "new@example.com", DisplayName: "New", Password: "password1"},
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestUserService_CreateAndGet(t *testing.T) {
	t.Parallel()
	svc, store := newUserService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateUserParams{
		Principal: root,
		Input:     UserInput{Email: " Carol@Example.com ", DisplayName: "Carol", Password: "password1", Role: RoleAdmin},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.Email != "carol@example.com" || created.Role != RoleAdmin {
		t.Fatalf("unexpected user: %+v", created)
	}

	stored, err := store.GetUser(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUser returned error: %v", err)
	}
	if stored.PasswordHash != "hashed:password1" {
		t.Fatalf("password was not hashed: %q", stored.PasswordHash)
	}

	self := Principal{UserID: created.ID, Role: RoleAdmin}
	if _, err := svc.Get(ctx, self, created.ID); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if _, err := svc.Get(ctx, alice, created.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for foreign read, got %v", err)
	}
}

func TestUserService_CreateValidation(t *testing.T) {
	t.Parallel()
	svc, _ := newUserService(t)

	_, err := svc.Create(context.Background(), CreateUserParams{
		Principal: root,
		Input:     UserInput{Email: "broken", Role: Role("SUPERVISOR")},
	})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"email", "display_name", "role", "password"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Fatalf("expected %s field error, got %v", field, vErr.FieldErrors)
		}
	}
}

func TestUserService_UpdateKeepsHashWhenPasswordEmpty(t *testing.T) {
	t.Parallel()
	svc, store := newUserService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateUserParams{
		Principal: root,
		Input:     UserInput{Email: "carol@example.com", DisplayName: "Carol", Password: "password1"},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.Update(ctx, UpdateUserParams{
		Principal: root,
		UserID:    created.ID,
		Input:     UserInput{Email: "carol@example.com", DisplayName: "Caroline"},
	}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	stored, err := store.GetUser(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUser returned error: %v", err)
	}
	if stored.DisplayName != "Caroline" {
		t.Fatalf("update not applied: %+v", stored)
	}
	if stored.PasswordHash != "hashed:password1" {
		t.Fatalf("hash should be untouched, got %q", stored.PasswordHash)
	}
}

func TestUserService_ListAndDelete(t *testing.T) {
	t.Parallel()
	svc, _ := newUserService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateUserParams{
		Principal: root,
		Input:     UserInput{Email: "carol@example.com", DisplayName: "Carol", Password: "password1"},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.List(ctx, alice); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	users, err := svc.List(ctx, root)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected one user, got %d", len(users))
	}

	if err := svc.Delete(ctx, root, created.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := svc.Delete(ctx, root, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserService_DeleteUserWithBookingsIsConflict(t *testing.T) {
	t.Parallel()
	env := newBookingEnv(t)
	ctx := context.Background()

	if _, err := env.reservations.Reserve(ctx, CreateReservationParams{
		Principal: alice,
		Input:     reserveInput("room-1", 10, 11, 2),
	}); err != nil {
		t.Fatalf("Reserve returned error: %v", err)
	}

	users := NewUserService(env.store, nil, sequentialIDs("user"), fixedClock(9), nil)
	if err := users.Delete(ctx, root, "alice"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for user with bookings, got %v", err)
	}
}
