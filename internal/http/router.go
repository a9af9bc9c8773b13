package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Rooms         *RoomHandler
	Reservations  *ReservationHandler
	Notifications *NotificationHandler

	// Authenticate guards every route except registration and login.
	Authenticate func(http.Handler) http.Handler
	// LoginLimiter is applied to the registration and login routes only.
	LoginLimiter func(http.Handler) http.Handler
	// Middleware wraps the whole router, outermost first.
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	protected := func(h http.HandlerFunc) http.Handler {
		if cfg.Authenticate == nil {
			return h
		}
		return cfg.Authenticate(h)
	}
	limited := func(h http.HandlerFunc) http.Handler {
		if cfg.LoginLimiter == nil {
			return h
		}
		return cfg.LoginLimiter(h)
	}

	if cfg.Auth != nil {
		mux.Handle("/auth/register", limited(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Register(w, r)
		}))
		mux.Handle("/auth/login", limited(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Login(w, r)
		}))
	}

	if cfg.Reservations != nil {
		mux.Handle("/reservations", protected(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Reservations.List(w, r)
			case http.MethodPost:
				cfg.Reservations.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.Handle("/reservations/", protected(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/reservations/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithReservationID(r.Context(), id))
			switch r.Method {
			case http.MethodGet:
				cfg.Reservations.Get(w, r)
			case http.MethodPut:
				cfg.Reservations.Update(w, r)
			case http.MethodDelete:
				cfg.Reservations.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		}))
	}

	if cfg.Rooms != nil {
		mux.Handle("/rooms", protected(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Rooms.List(w, r)
			case http.MethodPost:
				cfg.Rooms.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.Handle("/rooms/", protected(func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/rooms/")
			id, sub, _ := strings.Cut(rest, "/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithRoomID(r.Context(), id))

			if sub == "reservations" {
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Rooms.Reservations(w, r)
				return
			}
			if sub != "" {
				http.NotFound(w, r)
				return
			}

			switch r.Method {
			case http.MethodGet:
				cfg.Rooms.Get(w, r)
			case http.MethodPut:
				cfg.Rooms.Update(w, r)
			case http.MethodDelete:
				cfg.Rooms.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		}))
	}

	if cfg.Users != nil {
		mux.Handle("/users", protected(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Users.List(w, r)
			case http.MethodPost:
				cfg.Users.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.Handle("/users/", protected(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/users/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithUserID(r.Context(), id))
			switch r.Method {
			case http.MethodGet:
				cfg.Users.Get(w, r)
			case http.MethodPut:
				cfg.Users.Update(w, r)
			case http.MethodDelete:
				cfg.Users.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		}))
	}

	if cfg.Notifications != nil {
		mux.Handle("/notifications", protected(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Notifications.List(w, r)
		}))
		mux.Handle("/notifications/", protected(func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/notifications/")
			id, sub, _ := strings.Cut(rest, "/")
			if id == "" {
				http.NotFound(w, r)
				return
			}

			switch {
			case sub == "read":
				if r.Method != http.MethodPut {
					methodNotAllowed(w, http.MethodPut)
					return
				}
				r = r.WithContext(ContextWithNotificationID(r.Context(), id))
				cfg.Notifications.MarkRead(w, r)
			case sub == "":
				// POST /notifications/{userID} delivers to that user.
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				r = r.WithContext(ContextWithUserID(r.Context(), id))
				cfg.Notifications.Send(w, r)
			default:
				http.NotFound(w, r)
			}
		}))
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
