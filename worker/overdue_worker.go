package worker

import (
	"log"
	"time"

	"barangaylink/service"
)

// OverdueWorker is a background worker that periodically scans for complaints
// past their response SLA and queues reminder notifications.
type OverdueWorker struct {
	complaintService *service.ComplaintService
	interval         time.Duration
	stopChan         chan struct{}
	running          bool // Start/Stop must be called from a single goroutine
}

// NewOverdueWorker creates a new overdue worker.
func NewOverdueWorker(complaintService *service.ComplaintService, interval time.Duration) *OverdueWorker {
	return &OverdueWorker{
		complaintService: complaintService,
		interval:         interval,
		stopChan:         make(chan struct{}),
	}
}

// Start starts the worker in its own goroutine.
func (w *OverdueWorker) Start() {
	if w.running {
		log.Println("Overdue worker is already running")
		return
	}
	w.running = true
	log.Printf("Overdue worker started (interval: %v)", w.interval)
	go w.run()
}

// Stop stops the worker.
func (w *OverdueWorker) Stop() {
	if !w.running {
		return
	}
	close(w.stopChan)
	w.running = false
	log.Println("Overdue worker stopped")
}

func (w *OverdueWorker) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Process immediately on start
	w.scan()

	for {
		select {
		case <-ticker.C:
			w.scan()
		case <-w.stopChan:
			return
		}
	}
}

// scan runs one overdue pass. Idempotent; each complaint is reminded at most
// once regardless of how many passes see it.
func (w *OverdueWorker) scan() {
	start := time.Now()
	results, err := w.complaintService.ProcessOverdue()
	if err != nil {
		log.Printf("Overdue scan failed: %v", err)
		return
	}
	if len(results) > 0 {
		log.Printf("Overdue scan queued %d reminder(s) in %v", len(results), time.Since(start))
	}
}
