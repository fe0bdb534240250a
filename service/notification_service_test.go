package service

import (
	"errors"
	"testing"
	"time"

	"barangaylink/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memNotifications struct {
	seq  int64
	rows map[int64]*models.Notification
}

func newMemNotifications() *memNotifications {
	return &memNotifications{rows: make(map[int64]*models.Notification)}
}

func (m *memNotifications) CreateNotification(n *models.Notification) error {
	m.seq++
	n.NotificationID = m.seq
	cp := *n
	m.rows[n.NotificationID] = &cp
	return nil
}

func (m *memNotifications) ListDue(now time.Time, limit int) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range m.rows {
		if n.Status != models.NotificationStatusPending {
			continue
		}
		if n.NextRetryAt.Valid && n.NextRetryAt.Time.After(now) {
			continue
		}
		out = append(out, *n)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *memNotifications) UpdateNotification(n *models.Notification) error {
	if _, ok := m.rows[n.NotificationID]; !ok {
		return ErrNotFound
	}
	cp := *n
	m.rows[n.NotificationID] = &cp
	return nil
}

// flakySender fails the first failures calls, then succeeds.
type flakySender struct {
	failures int
	calls    int
}

func (s *flakySender) Send(n *models.Notification) error {
	s.calls++
	if s.calls <= s.failures {
		return errors.New("smtp: connection refused")
	}
	return nil
}

func newNotificationEnv(sender Sender) (*NotificationService, *memNotifications, *time.Time) {
	store := newMemNotifications()
	svc := NewNotificationService(store, sender, nil)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, store, &now
}

func queueOne(t *testing.T, svc *NotificationService) *models.Notification {
	t.Helper()
	n := &models.Notification{
		ComplaintID: 1,
		Event:       models.EventComplaintReceived,
		Recipient:   "juan@barangay.test",
		Subject:     "Complaint Received",
		Body:        "Your complaint has been received.",
	}
	require.NoError(t, svc.Queue(n))
	return n
}

func TestQueueDefaults(t *testing.T) {
	svc, store, now := newNotificationEnv(&flakySender{})
	n := queueOne(t, svc)

	stored := store.rows[n.NotificationID]
	assert.Equal(t, models.NotificationStatusPending, stored.Status)
	assert.Equal(t, models.DefaultNotificationConfig().DefaultMaxRetries, stored.MaxRetries)
	assert.Equal(t, *now, stored.CreatedAt)
	assert.Zero(t, stored.RetryCount)
}

func TestProcessPendingSends(t *testing.T) {
	svc, store, _ := newNotificationEnv(&flakySender{})
	n := queueOne(t, svc)

	sent, failed, err := svc.ProcessPending()
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Zero(t, failed)

	stored := store.rows[n.NotificationID]
	assert.Equal(t, models.NotificationStatusSent, stored.Status)
	assert.True(t, stored.SentAt.Valid)

	// A sent row is not picked up again.
	sent, failed, err = svc.ProcessPending()
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Zero(t, failed)
}

func TestProcessPendingRetriesWithBackoff(t *testing.T) {
	sender := &flakySender{failures: 1}
	svc, store, now := newNotificationEnv(sender)
	n := queueOne(t, svc)

	sent, failed, err := svc.ProcessPending()
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Equal(t, 1, failed)

	cfg := models.DefaultNotificationConfig()
	stored := store.rows[n.NotificationID]
	assert.Equal(t, models.NotificationStatusPending, stored.Status)
	assert.Equal(t, 1, stored.RetryCount)
	assert.Equal(t, "smtp: connection refused", stored.ErrorMessage.String)
	require.True(t, stored.NextRetryAt.Valid)
	assert.Equal(t, now.Add(cfg.InitialRetryDelay), stored.NextRetryAt.Time)

	// Not due yet: nothing happens before the retry delay elapses.
	sent, failed, err = svc.ProcessPending()
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Zero(t, failed)

	*now = now.Add(cfg.InitialRetryDelay)
	sent, failed, err = svc.ProcessPending()
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, models.NotificationStatusSent, store.rows[n.NotificationID].Status)
}

func TestProcessPendingMarksFailedAtMaxRetries(t *testing.T) {
	sender := &flakySender{failures: 100}
	svc, store, now := newNotificationEnv(sender)
	n := queueOne(t, svc)

	cfg := models.DefaultNotificationConfig()
	for i := 0; i < cfg.DefaultMaxRetries; i++ {
		_, failed, err := svc.ProcessPending()
		require.NoError(t, err)
		assert.Equal(t, 1, failed)
		*now = now.Add(24 * time.Hour)
	}

	stored := store.rows[n.NotificationID]
	assert.Equal(t, models.NotificationStatusFailed, stored.Status)
	assert.Equal(t, cfg.DefaultMaxRetries, stored.RetryCount)
	assert.False(t, stored.NextRetryAt.Valid)

	// A failed row is dead; the worker never retries it.
	sent, failed, err := svc.ProcessPending()
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Zero(t, failed)
	assert.Equal(t, cfg.DefaultMaxRetries, sender.calls)
}

func TestBackoffDoubles(t *testing.T) {
	sender := &flakySender{failures: 100}
	svc, store, now := newNotificationEnv(sender)
	n := queueOne(t, svc)
	cfg := models.DefaultNotificationConfig()

	_, _, err := svc.ProcessPending()
	require.NoError(t, err)
	first := store.rows[n.NotificationID].NextRetryAt.Time
	assert.Equal(t, cfg.InitialRetryDelay, first.Sub(*now))

	*now = first
	_, _, err = svc.ProcessPending()
	require.NoError(t, err)
	second := store.rows[n.NotificationID].NextRetryAt.Time
	assert.Equal(t, time.Duration(float64(cfg.InitialRetryDelay)*cfg.BackoffMultiplier), second.Sub(*now))
}
