package worker

import (
	"log"
	"time"

	"barangaylink/service"
)

// NotificationWorker is a background worker that drains the notification
// outbox. Failed sends are rescheduled by the notification service with
// exponential backoff.
type NotificationWorker struct {
	notificationService *service.NotificationService
	interval            time.Duration
	stopChan            chan struct{}
	running             bool // Start/Stop must be called from a single goroutine
}

// NewNotificationWorker creates a new notification worker.
func NewNotificationWorker(notificationService *service.NotificationService, interval time.Duration) *NotificationWorker {
	return &NotificationWorker{
		notificationService: notificationService,
		interval:            interval,
		stopChan:            make(chan struct{}),
	}
}

// Start starts the worker in its own goroutine.
func (w *NotificationWorker) Start() {
	if w.running {
		log.Println("Notification worker is already running")
		return
	}
	w.running = true
	log.Printf("Notification worker started (interval: %v)", w.interval)
	go w.run()
}

// Stop stops the worker.
func (w *NotificationWorker) Stop() {
	if !w.running {
		return
	}
	close(w.stopChan)
	w.running = false
	log.Println("Notification worker stopped")
}

func (w *NotificationWorker) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.drain()

	for {
		select {
		case <-ticker.C:
			w.drain()
		case <-w.stopChan:
			return
		}
	}
}

func (w *NotificationWorker) drain() {
	sent, failed, err := w.notificationService.ProcessPending()
	if err != nil {
		log.Printf("Notification dispatch failed: %v", err)
		return
	}
	if sent > 0 || failed > 0 {
		log.Printf("Notification dispatch: %d sent, %d failed", sent, failed)
	}
}
