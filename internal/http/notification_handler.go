package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/room-reservation/internal/application"
)

type notificationService interface {
	Send(ctx context.Context, params application.SendNotificationParams) (application.Notification, error)
	List(ctx context.Context, principal application.Principal) ([]application.Notification, error)
	MarkRead(ctx context.Context, principal application.Principal, notificationID string) (application.Notification, error)
}

type NotificationHandler struct {
	service   notificationService
	responder responder
	logger    *slog.Logger
}

func NewNotificationHandler(service notificationService, logger *slog.Logger) *NotificationHandler {
	base := defaultLogger(logger)
	return &NotificationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *NotificationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "NotificationHandler", operation, attrs...)
}

// Send delivers a notification to the user named in the path. Restricted to
// administrators by the service.
func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID, ok := UserIDFromContext(r.Context())
	if !ok || strings.TrimSpace(userID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUserID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req notificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Send", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode notification request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Send", "principal_id", principal.UserID, "user_id", userID)

	notification, err := h.service.Send(r.Context(), application.SendNotificationParams{
		Principal: principal,
		UserID:    userID,
		Message:   req.Message,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "notification send failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("notification_id", notification.ID).InfoContext(r.Context(), "notification sent")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, notificationResponse{Notification: toNotificationDTO(notification)})
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)
	notifications, err := h.service.List(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "notification list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(notifications)).InfoContext(r.Context(), "notifications listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listNotificationsResponse{Notifications: toNotificationDTOs(notifications)})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	notificationID, ok := NotificationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(notificationID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidNotificationID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "MarkRead", "principal_id", principal.UserID, "notification_id", notificationID)

	notification, err := h.service.MarkRead(r.Context(), principal, notificationID)
	if err != nil {
		logger.ErrorContext(r.Context(), "notification mark read failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "notification marked read")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, notificationResponse{Notification: toNotificationDTO(notification)})
}

type notificationRequest struct {
	Message string `json:"message"`
}

type notificationResponse struct {
	Notification notificationDTO `json:"notification"`
}

type listNotificationsResponse struct {
	Notifications []notificationDTO `json:"notifications"`
}

type notificationDTO struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Message   string `json:"message"`
	Seen      bool   `json:"seen"`
	CreatedAt string `json:"created_at"`
}

func toNotificationDTO(notification application.Notification) notificationDTO {
	return notificationDTO{
		ID:        notification.ID,
		UserID:    notification.UserID,
		Message:   notification.Message,
		Seen:      notification.Seen,
		CreatedAt: notification.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toNotificationDTOs(notifications []application.Notification) []notificationDTO {
	if len(notifications) == 0 {
		return nil
	}
	out := make([]notificationDTO, 0, len(notifications))
	for _, notification := range notifications {
		out = append(out, toNotificationDTO(notification))
	}
	return out
}
