package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/room-reservation/internal/application"
)

var (
	errBadRequestBody        = errors.New("the request body is malformed")
	errInvalidReservationID  = errors.New("invalid reservation id")
	errInvalidUserID         = errors.New("invalid user id")
	errInvalidRoomID         = errors.New("invalid room id")
	errInvalidNotificationID = errors.New("invalid notification id")
	errMissingBearerToken    = errors.New("an access token is required")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := statusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "You are not allowed to perform this operation.",
		})
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_INVALID_CREDENTIALS",
			Message:   "The email address or password is incorrect.",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "The requested resource was not found."})
	case errors.Is(err, application.ErrConflict):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "RESERVATION_CONFLICT",
			Message:   "The room is already reserved for the requested time.",
		})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "The resource already exists."})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "The submitted values are invalid.",
				Errors:  vErr.FieldErrors,
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "An internal server error occurred."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "The request is malformed."
	case http.StatusUnauthorized:
		return "Authentication is required."
	case http.StatusForbidden:
		return "You are not allowed to perform this operation."
	case http.StatusNotFound:
		return "The requested resource was not found."
	case http.StatusConflict:
		return "The request conflicts with the current state of the resource."
	case http.StatusUnprocessableEntity:
		return "The submitted values are invalid."
	case http.StatusTooManyRequests:
		return "Too many requests. Try again later."
	default:
		return "An internal server error occurred."
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
