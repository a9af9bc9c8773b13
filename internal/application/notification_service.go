package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/room-reservation/internal/persistence"
)

// NotificationService delivers and manages per-user notifications. It also
// implements Notifier so booking outcomes can be pushed through it.
type NotificationService struct {
	notifications persistence.NotificationRepository
	idGenerator   func() string
	now           func() time.Time
	logger        *slog.Logger
}

// NewNotificationService wires dependencies for notification operations.
func NewNotificationService(notifications persistence.NotificationRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *NotificationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &NotificationService{
		notifications: notifications,
		idGenerator:   idGenerator,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

func (s *NotificationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "NotificationService", operation, attrs...)
}

// Notify records a system generated notification for a user.
func (s *NotificationService) Notify(ctx context.Context, userID, message string) error {
	if s == nil || s.notifications == nil {
		return fmt.Errorf("notification repository not configured")
	}

	record := persistence.Notification{
		ID:        s.idGenerator(),
		UserID:    userID,
		Message:   message,
		CreatedAt: s.now(),
	}
	return mapRepoError(s.notifications.CreateNotification(ctx, record))
}

// Send delivers a notification to a user on behalf of an administrator.
func (s *NotificationService) Send(ctx context.Context, params SendNotificationParams) (notification Notification, err error) {
	if s == nil {
		err = fmt.Errorf("NotificationService is nil")
		return
	}
	if s.notifications == nil {
		err = fmt.Errorf("notification repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Send",
		"principal_id", params.Principal.UserID,
		"user_id", params.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "notification send refused", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("notification_id", notification.ID).InfoContext(ctx, "notification sent")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	message := strings.TrimSpace(params.Message)
	if params.UserID == "" || message == "" {
		vErr := &ValidationError{}
		if params.UserID == "" {
			vErr.add("user_id", "recipient is required")
		}
		if message == "" {
			vErr.add("message", "message is required")
		}
		err = vErr
		return
	}

	record := persistence.Notification{
		ID:        s.idGenerator(),
		UserID:    params.UserID,
		Message:   message,
		CreatedAt: s.now(),
	}
	if err = mapRepoError(s.notifications.CreateNotification(ctx, record)); err != nil {
		return
	}

	notification = notificationFromRecord(record)
	return
}

// List returns the principal's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, principal Principal) ([]Notification, error) {
	if s == nil {
		return nil, fmt.Errorf("NotificationService is nil")
	}
	if s.notifications == nil {
		return nil, fmt.Errorf("notification repository not configured")
	}

	records, err := s.notifications.ListNotificationsForUser(ctx, principal.UserID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	notifications := make([]Notification, 0, len(records))
	for _, record := range records {
		notifications = append(notifications, notificationFromRecord(record))
	}
	return notifications, nil
}

// MarkRead marks one of the principal's notifications as seen. Reading
// someone else's notification is refused.
func (s *NotificationService) MarkRead(ctx context.Context, principal Principal, notificationID string) (Notification, error) {
	if s == nil {
		return Notification{}, fmt.Errorf("NotificationService is nil")
	}
	if s.notifications == nil {
		return Notification{}, fmt.Errorf("notification repository not configured")
	}

	record, err := s.notifications.GetNotification(ctx, notificationID)
	if err != nil {
		return Notification{}, mapRepoError(err)
	}
	if record.UserID != principal.UserID {
		return Notification{}, ErrUnauthorized
	}

	if !record.Seen {
		record.Seen = true
		if err := s.notifications.UpdateNotification(ctx, record); err != nil {
			return Notification{}, mapRepoError(err)
		}
	}
	return notificationFromRecord(record), nil
}
