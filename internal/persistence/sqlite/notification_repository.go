package sqlite

import (
	"context"

	"github.com/example/room-reservation/internal/persistence"
)

// NotificationRepository implements persistence.NotificationRepository on
// SQLite.
type NotificationRepository struct {
	db *DB
}

// NewNotificationRepository constructs a notification repository over the
// shared handle.
func NewNotificationRepository(db *DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateNotification inserts a new notification row.
func (r *NotificationRepository) CreateNotification(ctx context.Context, notification persistence.Notification) error {
	_, err := r.db.sql.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, message, seen, created_at) VALUES (?, ?, ?, ?, ?)`,
		notification.ID, notification.UserID, notification.Message,
		boolToInt(notification.Seen), formatTime(notification.CreatedAt),
	)
	return mapError(err)
}

// GetNotification retrieves a notification by ID.
func (r *NotificationRepository) GetNotification(ctx context.Context, id string) (persistence.Notification, error) {
	row := r.db.sql.QueryRowContext(ctx,
		`SELECT id, user_id, message, seen, created_at FROM notifications WHERE id = ?`, id)
	return scanNotification(row)
}

// ListNotificationsForUser returns a user's notifications, newest first.
func (r *NotificationRepository) ListNotificationsForUser(ctx context.Context, userID string) ([]persistence.Notification, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		`SELECT id, user_id, message, seen, created_at
		 FROM notifications WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var notifications []persistence.Notification
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}
	return notifications, rows.Err()
}

// UpdateNotification replaces an existing notification row.
func (r *NotificationRepository) UpdateNotification(ctx context.Context, notification persistence.Notification) error {
	result, err := r.db.sql.ExecContext(ctx,
		`UPDATE notifications SET message = ?, seen = ? WHERE id = ?`,
		notification.Message, boolToInt(notification.Seen), notification.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireRowAffected(result)
}

func scanNotification(row rowScanner) (persistence.Notification, error) {
	var notification persistence.Notification
	var seen int
	var createdAt string
	if err := row.Scan(&notification.ID, &notification.UserID, &notification.Message, &seen, &createdAt); err != nil {
		return persistence.Notification{}, mapError(err)
	}
	notification.Seen = seen != 0

	var err error
	if notification.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Notification{}, err
	}
	return notification, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
