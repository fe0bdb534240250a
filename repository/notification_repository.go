package repository

import (
	"database/sql"
	"fmt"
	"time"

	"barangaylink/models"
)

// NotificationRepository handles database operations for the notification
// outbox.
type NotificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateNotification inserts an outbox row and sets its generated ID.
func (r *NotificationRepository) CreateNotification(n *models.Notification) error {
	query := `
		INSERT INTO notifications (
			complaint_id, event, recipient, subject, body,
			status, retry_count, max_retries, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(
		query,
		n.ComplaintID, n.Event, n.Recipient, n.Subject, n.Body,
		n.Status, n.RetryCount, n.MaxRetries, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	notificationID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get notification ID: %w", err)
	}
	n.NotificationID = notificationID
	return nil
}

// ListDue retrieves pending notifications whose retry time has passed,
// oldest first, up to limit.
func (r *NotificationRepository) ListDue(now time.Time, limit int) ([]models.Notification, error) {
	query := `SELECT notification_id, complaint_id, event, recipient, subject, body,
			status, retry_count, max_retries, next_retry_at, sent_at, error_message, created_at
		FROM notifications
		WHERE status = 'pending' AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY created_at ASC
		LIMIT ?`

	rows, err := r.db.Query(query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(
			&n.NotificationID, &n.ComplaintID, &n.Event, &n.Recipient, &n.Subject, &n.Body,
			&n.Status, &n.RetryCount, &n.MaxRetries, &n.NextRetryAt, &n.SentAt, &n.ErrorMessage, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// UpdateNotification persists a row's delivery state after a send attempt.
func (r *NotificationRepository) UpdateNotification(n *models.Notification) error {
	query := `UPDATE notifications SET
			status = ?, retry_count = ?, next_retry_at = ?, sent_at = ?, error_message = ?
		WHERE notification_id = ?`
	_, err := r.db.Exec(query, n.Status, n.RetryCount, n.NextRetryAt, n.SentAt, n.ErrorMessage, n.NotificationID)
	if err != nil {
		return fmt.Errorf("failed to update notification %d: %w", n.NotificationID, err)
	}
	return nil
}
