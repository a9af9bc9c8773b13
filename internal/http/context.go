package http

import (
	"context"
	"log/slog"

	"github.com/example/room-reservation/internal/application"
	"github.com/example/room-reservation/internal/logging"
)

type contextKey string

const (
	principalContextKey      contextKey = "principal"
	reservationIDContextKey  contextKey = "reservation_id"
	userIDContextKey         contextKey = "user_id"
	roomIDContextKey         contextKey = "room_id"
	notificationIDContextKey contextKey = "notification_id"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithReservationID injects the reservation identifier resolved from the request path.
func ContextWithReservationID(ctx context.Context, reservationID string) context.Context {
	return context.WithValue(ctx, reservationIDContextKey, reservationID)
}

// ReservationIDFromContext extracts a reservation identifier previously associated with the context.
func ReservationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(reservationIDContextKey).(string)
	return id, ok
}

// ContextWithUserID injects the user identifier resolved from the request path.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext extracts a user identifier previously associated with the context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDContextKey).(string)
	return id, ok
}

// ContextWithRoomID injects the room identifier resolved from the request path.
func ContextWithRoomID(ctx context.Context, roomID string) context.Context {
	return context.WithValue(ctx, roomIDContextKey, roomID)
}

// RoomIDFromContext extracts a room identifier previously associated with the context.
func RoomIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(roomIDContextKey).(string)
	return id, ok
}

// ContextWithNotificationID injects the notification identifier resolved from the request path.
func ContextWithNotificationID(ctx context.Context, notificationID string) context.Context {
	return context.WithValue(ctx, notificationIDContextKey, notificationID)
}

// NotificationIDFromContext extracts a notification identifier previously associated with the context.
func NotificationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(notificationIDContextKey).(string)
	return id, ok
}

// ContextWithLogger attaches a request scoped logger to the context.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext retrieves the request scoped logger, if any.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
