package models

import (
	"database/sql"
	"time"
)

// NotificationStatus represents the delivery state of a queued notification.
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// NotificationEvent names why a notification was queued.
type NotificationEvent string

const (
	EventComplaintReceived NotificationEvent = "complaint_received"
	EventStatusChanged     NotificationEvent = "status_changed"
	EventComplaintRejected NotificationEvent = "complaint_rejected"
	EventComplaintAssigned NotificationEvent = "complaint_assigned"
	EventResponseOverdue   NotificationEvent = "response_overdue"
)

// Notification is a queued outbox row. Dispatch happens strictly after the
// state change that produced it has committed; the worker retries with
// backoff and never feeds failures back into the lifecycle.
type Notification struct {
	NotificationID int64              `db:"notification_id" json:"notification_id"`
	ComplaintID    int64              `db:"complaint_id" json:"complaint_id"`
	Event          NotificationEvent  `db:"event" json:"event"`
	Recipient      string             `db:"recipient" json:"recipient"`
	Subject        string             `db:"subject" json:"subject"`
	Body           string             `db:"body" json:"body"`
	Status         NotificationStatus `db:"status" json:"status"`
	RetryCount     int                `db:"retry_count" json:"retry_count"`
	MaxRetries     int                `db:"max_retries" json:"max_retries"`
	NextRetryAt    sql.NullTime       `db:"next_retry_at" json:"next_retry_at"`
	SentAt         sql.NullTime       `db:"sent_at" json:"sent_at"`
	ErrorMessage   sql.NullString     `db:"error_message" json:"error_message"`
	CreatedAt      time.Time          `db:"created_at" json:"created_at"`
}

// NotificationConfig tunes the dispatch worker.
type NotificationConfig struct {
	DefaultMaxRetries int
	InitialRetryDelay time.Duration
	BackoffMultiplier float64
	WorkerBatchSize   int
}

// DefaultNotificationConfig returns the production defaults.
func DefaultNotificationConfig() *NotificationConfig {
	return &NotificationConfig{
		DefaultMaxRetries: 3,
		InitialRetryDelay: 30 * time.Second,
		BackoffMultiplier: 2.0,
		WorkerBatchSize:   50,
	}
}
