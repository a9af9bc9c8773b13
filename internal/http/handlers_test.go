package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/room-reservation/internal/application"
	"github.com/example/room-reservation/internal/auth"
	"github.com/example/room-reservation/internal/persistence"
	"github.com/example/room-reservation/internal/persistence/memory"
)

type testServer struct {
	handler http.Handler
	store   *memory.Store
	tokens  *auth.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memory.NewStore()
	tokens := auth.NewTokenManager("test-secret", time.Hour, nil)

	var counter atomic.Int64
	idGen := func() string { return fmt.Sprintf("id-%d", counter.Add(1)) }

	authSvc := application.NewAuthService(store, tokens, time.Hour, idGen, nil, nil)
	notifSvc := application.NewNotificationService(store, idGen, nil, nil)
	reservationSvc := application.NewReservationService(store, store, store, notifSvc, idGen, nil, nil)
	roomSvc := application.NewRoomService(store, idGen, nil, nil)
	userSvc := application.NewUserService(store, nil, idGen, nil, nil)

	handler := NewRouter(RouterConfig{
		Auth:          NewAuthHandler(authSvc, nil),
		Users:         NewUserHandler(userSvc, nil),
		Rooms:         NewRoomHandler(roomSvc, reservationSvc, nil),
		Reservations:  NewReservationHandler(reservationSvc, nil),
		Notifications: NewNotificationHandler(notifSvc, nil),
		Authenticate:  RequireAuth(tokens, nil),
	})

	return &testServer{handler: handler, store: store, tokens: tokens}
}

// seedUser installs an account directly and returns a valid bearer token
// for it.
func (s *testServer) seedUser(t *testing.T, id, email, role string) string {
	t.Helper()
	now := time.Now().UTC()
	err := s.store.CreateUser(context.Background(), persistence.User{
		ID: id, Email: email, DisplayName: id, PasswordHash: "x", Role: role,
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}

	token, err := s.tokens.Mint(id, email, role)
	if err != nil {
		t.Fatalf("mint token for %s: %v", id, err)
	}
	return token
}

func (s *testServer) seedRoom(t *testing.T, id string, capacity int) {
	t.Helper()
	now := time.Now().UTC()
	err := s.store.CreateRoom(context.Background(), persistence.Room{
		ID: id, Name: id, Location: "HQ", Capacity: capacity,
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed room %s: %v", id, err)
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func reservationBody(roomID string, startHour, endHour, attendees int) map[string]any {
	day := time.Date(2025, time.May, 5, 0, 0, 0, 0, time.UTC)
	return map[string]any{
		"room_id":   roomID,
		"start":     day.Add(time.Duration(startHour) * time.Hour).Format(time.RFC3339),
		"end":       day.Add(time.Duration(endHour) * time.Hour).Format(time.RFC3339),
		"purpose":   "standup",
		"attendees": attendees,
	}
}

func TestAuthEndpoints(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	register := map[string]any{
		"email":        "alice@example.com",
		"display_name": "Alice",
		"password":     "correct-horse",
	}

	t.Run("register creates an account", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/auth/register", "", register)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			User struct {
				Role string `json:"role"`
			} `json:"user"`
		}
		decodeBody(t, rec, &resp)
		if resp.User.Role != "USER" {
			t.Fatalf("self-registration must yield USER, got %q", resp.User.Role)
		}
	})

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/auth/register", "", register)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("login issues a usable token", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/auth/login", "", map[string]any{
			"email": "alice@example.com", "password": "correct-horse",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			Token string `json:"token"`
		}
		decodeBody(t, rec, &resp)

		listed := srv.do(t, http.MethodGet, "/reservations", resp.Token, nil)
		if listed.Code != http.StatusOK {
			t.Fatalf("token should authorize requests, got %d", listed.Code)
		}
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/auth/login", "", map[string]any{
			"email": "alice@example.com", "password": "battery-staple",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte("{")))
		rec := httptest.NewRecorder()
		srv.handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestReservationEndpoints(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	aliceToken := srv.seedUser(t, "alice", "alice@example.com", "USER")
	bobToken := srv.seedUser(t, "bob", "bob@example.com", "USER")
	adminToken := srv.seedUser(t, "root", "root@example.com", "ADMIN")
	srv.seedRoom(t, "room-1", 4)

	t.Run("requests without a token are unauthorized", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, "/reservations", "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	var reservationID string
	t.Run("booking succeeds", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/reservations", aliceToken, reservationBody("room-1", 10, 11, 3))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			Reservation struct {
				ID     string `json:"id"`
				UserID string `json:"user_id"`
			} `json:"reservation"`
		}
		decodeBody(t, rec, &resp)
		if resp.Reservation.UserID != "alice" {
			t.Fatalf("expected alice's booking, got %q", resp.Reservation.UserID)
		}
		reservationID = resp.Reservation.ID
	})

	t.Run("boundary touching booking conflicts", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/reservations", bobToken, reservationBody("room-1", 11, 12, 2))
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			ErrorCode string `json:"error_code"`
		}
		decodeBody(t, rec, &resp)
		if resp.ErrorCode != "RESERVATION_CONFLICT" {
			t.Fatalf("expected RESERVATION_CONFLICT, got %q", resp.ErrorCode)
		}
	})

	t.Run("over capacity booking is unprocessable", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/reservations", bobToken, reservationBody("room-1", 14, 15, 5))
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			Errors map[string]string `json:"errors"`
		}
		decodeBody(t, rec, &resp)
		if _, ok := resp.Errors["attendees"]; !ok {
			t.Fatalf("expected attendees error, got %v", resp.Errors)
		}
	})

	t.Run("admin books on behalf of a user", func(t *testing.T) {
		body := reservationBody("room-1", 16, 17, 2)
		body["on_behalf_of_user_id"] = "bob"
		rec := srv.do(t, http.MethodPost, "/reservations", adminToken, body)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			Reservation struct {
				UserID string `json:"user_id"`
			} `json:"reservation"`
		}
		decodeBody(t, rec, &resp)
		if resp.Reservation.UserID != "bob" {
			t.Fatalf("expected booking owned by bob, got %q", resp.Reservation.UserID)
		}
	})

	t.Run("non-admin on behalf booking is forbidden", func(t *testing.T) {
		body := reservationBody("room-1", 18, 19, 2)
		body["on_behalf_of_user_id"] = "alice"
		rec := srv.do(t, http.MethodPost, "/reservations", bobToken, body)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("foreign update is forbidden", func(t *testing.T) {
		rec := srv.do(t, http.MethodPut, "/reservations/"+reservationID, bobToken, reservationBody("room-1", 8, 9, 2))
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("owner cancels and frees the slot", func(t *testing.T) {
		rec := srv.do(t, http.MethodDelete, "/reservations/"+reservationID, aliceToken, nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
		}

		rebook := srv.do(t, http.MethodPost, "/reservations", bobToken, reservationBody("room-1", 10, 11, 2))
		if rebook.Code != http.StatusCreated {
			t.Fatalf("freed slot should be bookable, got %d: %s", rebook.Code, rebook.Body.String())
		}
	})

	t.Run("unknown reservation is not found", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, "/reservations/ghost", aliceToken, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestRoomEndpoints(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	aliceToken := srv.seedUser(t, "alice", "alice@example.com", "USER")
	adminToken := srv.seedUser(t, "root", "root@example.com", "ADMIN")

	t.Run("non-admin room creation is forbidden", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/rooms", aliceToken, map[string]any{"name": "Lab", "capacity": 4})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("admin manages the catalog", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/rooms", adminToken, map[string]any{
			"name": "Lab", "location": "Floor 2", "capacity": 4,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var created struct {
			Room struct {
				ID string `json:"id"`
			} `json:"room"`
		}
		decodeBody(t, rec, &created)

		list := srv.do(t, http.MethodGet, "/rooms", aliceToken, nil)
		if list.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", list.Code)
		}

		update := srv.do(t, http.MethodPut, "/rooms/"+created.Room.ID, adminToken, map[string]any{
			"name": "Lab B", "capacity": 6,
		})
		if update.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", update.Code, update.Body.String())
		}

		del := srv.do(t, http.MethodDelete, "/rooms/"+created.Room.ID, adminToken, nil)
		if del.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d: %s", del.Code, del.Body.String())
		}
	})

	t.Run("invalid capacity is unprocessable", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/rooms", adminToken, map[string]any{"name": "Closet", "capacity": 0})
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("room availability listing", func(t *testing.T) {
		srv.seedRoom(t, "room-9", 10)
		if rec := srv.do(t, http.MethodPost, "/reservations", aliceToken, reservationBody("room-9", 10, 11, 2)); rec.Code != http.StatusCreated {
			t.Fatalf("booking failed: %d %s", rec.Code, rec.Body.String())
		}

		rec := srv.do(t, http.MethodGet, "/rooms/room-9/reservations", aliceToken, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Reservations []struct {
				RoomID string `json:"room_id"`
			} `json:"reservations"`
		}
		decodeBody(t, rec, &resp)
		if len(resp.Reservations) != 1 || resp.Reservations[0].RoomID != "room-9" {
			t.Fatalf("unexpected listing: %+v", resp.Reservations)
		}
	})
}

func TestNotificationEndpoints(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	aliceToken := srv.seedUser(t, "alice", "alice@example.com", "USER")
	bobToken := srv.seedUser(t, "bob", "bob@example.com", "USER")
	adminToken := srv.seedUser(t, "root", "root@example.com", "ADMIN")
	srv.seedRoom(t, "room-1", 4)

	t.Run("booking produces a notification", func(t *testing.T) {
		if rec := srv.do(t, http.MethodPost, "/reservations", aliceToken, reservationBody("room-1", 10, 11, 2)); rec.Code != http.StatusCreated {
			t.Fatalf("booking failed: %d %s", rec.Code, rec.Body.String())
		}

		rec := srv.do(t, http.MethodGet, "/notifications", aliceToken, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Notifications []struct {
				ID   string `json:"id"`
				Seen bool   `json:"seen"`
			} `json:"notifications"`
		}
		decodeBody(t, rec, &resp)
		if len(resp.Notifications) != 1 || resp.Notifications[0].Seen {
			t.Fatalf("expected one unseen notification, got %+v", resp.Notifications)
		}

		t.Run("foreign mark read is forbidden", func(t *testing.T) {
			marked := srv.do(t, http.MethodPut, "/notifications/"+resp.Notifications[0].ID+"/read", bobToken, nil)
			if marked.Code != http.StatusForbidden {
				t.Fatalf("expected 403, got %d: %s", marked.Code, marked.Body.String())
			}
		})

		t.Run("owner marks it read", func(t *testing.T) {
			marked := srv.do(t, http.MethodPut, "/notifications/"+resp.Notifications[0].ID+"/read", aliceToken, nil)
			if marked.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", marked.Code, marked.Body.String())
			}
			var markedResp struct {
				Notification struct {
					Seen bool `json:"seen"`
				} `json:"notification"`
			}
			decodeBody(t, marked, &markedResp)
			if !markedResp.Notification.Seen {
				t.Fatal("notification should be seen")
			}
		})
	})

	t.Run("admin sends a notification", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/notifications/bob", adminToken, map[string]any{"message": "Server maintenance tonight"})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("non-admin send is forbidden", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/notifications/alice", bobToken, map[string]any{"message": "hi"})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestUserEndpoints(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	aliceToken := srv.seedUser(t, "alice", "alice@example.com", "USER")
	adminToken := srv.seedUser(t, "root", "root@example.com", "ADMIN")

	t.Run("non-admin listing is forbidden", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, "/users", aliceToken, nil)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("admin manages accounts", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/users", adminToken, map[string]any{
			"email": "carol@example.com", "display_name": "Carol", "password": "password1", "role": "USER",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var created struct {
			User struct {
				ID string `json:"id"`
			} `json:"user"`
		}
		decodeBody(t, rec, &created)

		del := srv.do(t, http.MethodDelete, "/users/"+created.User.ID, adminToken, nil)
		if del.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d: %s", del.Code, del.Body.String())
		}
	})

	t.Run("self read is allowed", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, "/users/alice", aliceToken, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}
