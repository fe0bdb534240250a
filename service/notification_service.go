package service

import (
	"database/sql"
	"fmt"
	"log"
	"math"
	"time"

	"barangaylink/models"
)

// Sender delivers a single notification over its channel. The email
// implementation lives in the notification package.
type Sender interface {
	Send(n *models.Notification) error
}

// NotificationService owns the outbox: the orchestrator queues rows through
// it and the background worker drains them. Delivery is retried with
// exponential backoff up to the per-row maximum, then marked failed. Nothing
// here ever touches complaint state.
type NotificationService struct {
	store  NotificationStore
	sender Sender
	config *models.NotificationConfig

	now func() time.Time
}

// NewNotificationService creates a notification service. config may be nil
// for the defaults.
func NewNotificationService(store NotificationStore, sender Sender, config *models.NotificationConfig) *NotificationService {
	if config == nil {
		config = models.DefaultNotificationConfig()
	}
	return &NotificationService{
		store:  store,
		sender: sender,
		config: config,
		now:    time.Now,
	}
}

// Queue persists a notification row for the worker to pick up. Non-blocking;
// the row is ready to send immediately.
func (s *NotificationService) Queue(n *models.Notification) error {
	n.Status = models.NotificationStatusPending
	n.RetryCount = 0
	if n.MaxRetries == 0 {
		n.MaxRetries = s.config.DefaultMaxRetries
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}
	if err := s.store.CreateNotification(n); err != nil {
		return fmt.Errorf("failed to queue notification: %w", err)
	}
	return nil
}

// ProcessPending sends every due pending notification once. Returns how many
// were sent and how many attempts failed this pass.
func (s *NotificationService) ProcessPending() (sent, failed int, err error) {
	now := s.now()
	due, err := s.store.ListDue(now, s.config.WorkerBatchSize)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list due notifications: %w", err)
	}

	for i := range due {
		n := &due[i]
		if sendErr := s.sender.Send(n); sendErr != nil {
			failed++
			s.recordFailure(n, sendErr)
			continue
		}
		sent++
		n.Status = models.NotificationStatusSent
		n.SentAt = sql.NullTime{Time: s.now(), Valid: true}
		n.ErrorMessage = sql.NullString{}
		if updErr := s.store.UpdateNotification(n); updErr != nil {
			err = fmt.Errorf("failed to record sent notification %d: %w", n.NotificationID, updErr)
		}
	}
	return sent, failed, err
}

func (s *NotificationService) recordFailure(n *models.Notification, sendErr error) {
	n.RetryCount++
	n.ErrorMessage = sql.NullString{String: sendErr.Error(), Valid: true}
	if n.RetryCount >= n.MaxRetries {
		n.Status = models.NotificationStatusFailed
		n.NextRetryAt = sql.NullTime{}
	} else {
		delay := time.Duration(float64(s.config.InitialRetryDelay) *
			math.Pow(s.config.BackoffMultiplier, float64(n.RetryCount-1)))
		n.NextRetryAt = sql.NullTime{Time: s.now().Add(delay), Valid: true}
	}
	if err := s.store.UpdateNotification(n); err != nil {
		// The row stays due and is retried on the next pass.
		log.Printf("[notify] failed to record delivery failure for notification %d: %v", n.NotificationID, err)
	}
}
