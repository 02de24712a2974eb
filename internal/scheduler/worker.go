package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"advisory-portal/internal/models"
	"advisory-portal/internal/rera"

	"gorm.io/gorm"
)

// QueueWorker drains the verification_queue one item at a time so
// registry sweeps never burst against the state portal
type QueueWorker struct {
	db           *gorm.DB
	verifier     *rera.Verifier
	stopChan     chan struct{}
	isRunning    bool
	pollInterval time.Duration
}

// NewQueueWorker creates a new queue worker
func NewQueueWorker(db *gorm.DB, verifier *rera.Verifier) *QueueWorker {
	return &QueueWorker{
		db:           db,
		verifier:     verifier,
		stopChan:     make(chan struct{}),
		pollInterval: 30 * time.Second, // Check queue every 30 seconds
	}
}

// Start starts the queue worker
func (w *QueueWorker) Start() {
	if w.isRunning {
		log.Println("QueueWorker: Already running")
		return
	}

	w.isRunning = true
	log.Printf("QueueWorker: Started (poll_interval=%v)", w.pollInterval)

	go w.run()
}

// Stop stops the queue worker
func (w *QueueWorker) Stop() {
	if !w.isRunning {
		return
	}

	log.Println("QueueWorker: Stopping...")
	w.isRunning = false
	close(w.stopChan)
}

// run is the main worker loop
func (w *QueueWorker) run() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			log.Println("QueueWorker: Stopped")
			return
		case <-ticker.C:
			w.processNext()
		}
	}
}

// processNext picks and processes the next eligible queue item
func (w *QueueWorker) processNext() {
	var queueItem models.VerificationQueue
	now := time.Now()

	// Priority 1: Try to get a pending item first
	result := w.db.Where("status = ?", models.QueueStatusPending).
		Order("priority DESC, created_at ASC").
		First(&queueItem)

	// Priority 2: If no pending items, try failed items whose retry time passed
	if result.Error == gorm.ErrRecordNotFound {
		result = w.db.Where("status = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?", models.QueueStatusFailed, now).
			Order("priority DESC, created_at ASC").
			First(&queueItem)
	}

	if result.Error != nil {
		if result.Error != gorm.ErrRecordNotFound {
			log.Printf("QueueWorker: Error fetching next queue item: %v", result.Error)
		}
		return
	}

	w.processQueueItem(&queueItem)
}

// processQueueItem verifies a single queued RERA ID
func (w *QueueWorker) processQueueItem(item *models.VerificationQueue) {
	log.Printf("QueueWorker: Processing id=%d rera_id=%s attempt=%d", item.ID, item.ReraID, item.Attempts+1)

	// Mark as processing
	item.Status = models.QueueStatusProcessing
	item.Attempts++
	if err := w.db.Save(item).Error; err != nil {
		log.Printf("QueueWorker: Failed to update status to processing: %v", err)
		return
	}

	_, err := w.verifier.VerifySingle(context.Background(), item.ReraID, item.PropertyID)
	if err != nil {
		w.handleVerifyError(item, err)
		return
	}

	// Mark queue item as done
	item.Status = models.QueueStatusDone
	item.LastError = ""
	completedAt := time.Now()
	item.CompletedAt = &completedAt
	item.NextRetryAt = nil

	if err := w.db.Save(item).Error; err != nil {
		log.Printf("QueueWorker: Failed to mark item as done: %v", err)
	} else {
		log.Printf("QueueWorker: Completed id=%d rera_id=%s", item.ID, item.ReraID)
	}
}

// handleVerifyError handles verification errors with smart retry logic
func (w *QueueWorker) handleVerifyError(item *models.VerificationQueue, err error) {
	log.Printf("QueueWorker: Verification failed for id=%d: %v", item.ID, err)

	// Unregistered IDs never become registered by retrying
	if errors.Is(err, rera.ErrNotRegistered) {
		log.Printf("QueueWorker: Permanent failure for id=%d - RERA ID not in registry (no retry)", item.ID)
		item.Status = models.QueueStatusPermanentFail
		item.LastError = fmt.Sprintf("not registered (permanent): %v", err)
		completedAt := time.Now()
		item.CompletedAt = &completedAt
		item.NextRetryAt = nil

		if err := w.db.Save(item).Error; err != nil {
			log.Printf("QueueWorker: Failed to save permanent_fail status: %v", err)
		}
		return
	}

	// Circuit breaker open: cool down for an hour before retrying
	if errors.Is(err, rera.ErrRegistryUnavailable) {
		log.Printf("QueueWorker: Registry unavailable for id=%d - entering cooldown", item.ID)

		item.Status = models.QueueStatusFailed
		item.LastError = err.Error()
		nextRetry := time.Now().Add(1 * time.Hour)
		item.NextRetryAt = &nextRetry

		if err := w.db.Save(item).Error; err != nil {
			log.Printf("QueueWorker: Failed to save cooldown: %v", err)
		}

		// Pause the loop briefly to let the breaker reset
		log.Printf("QueueWorker: Pausing for 5 minutes while registry recovers")
		select {
		case <-w.stopChan:
		case <-time.After(5 * time.Minute):
		}
		return
	}

	// Retryable error (500, 503, timeout, etc.)
	if item.Attempts >= models.MaxRetryAttempts {
		log.Printf("QueueWorker: Max retries exceeded for id=%d (%d attempts)", item.ID, item.Attempts)
		item.Status = models.QueueStatusFailed
		item.LastError = fmt.Sprintf("Max retries exceeded (%d): %v", item.Attempts, err)
		completedAt := time.Now()
		item.CompletedAt = &completedAt
		item.NextRetryAt = nil
	} else {
		// Schedule retry with exponential backoff
		delay := models.GetNextRetryDelay(item.Attempts - 1) // -1 because we already incremented Attempts
		nextRetry := time.Now().Add(delay)
		item.Status = models.QueueStatusFailed
		item.LastError = err.Error()
		item.NextRetryAt = &nextRetry
		log.Printf("QueueWorker: Scheduling retry for id=%d in %v (attempt %d/%d)",
			item.ID, delay, item.Attempts, models.MaxRetryAttempts)
	}

	if err := w.db.Save(item).Error; err != nil {
		log.Printf("QueueWorker: Failed to save retry status: %v", err)
	}
}

// GetQueueStats returns current queue statistics
func (w *QueueWorker) GetQueueStats() map[string]interface{} {
	var stats struct {
		Pending       int64
		Processing    int64
		Done          int64
		Failed        int64
		PermanentFail int64
	}

	w.db.Model(&models.VerificationQueue{}).Where("status = ?", models.QueueStatusPending).Count(&stats.Pending)
	w.db.Model(&models.VerificationQueue{}).Where("status = ?", models.QueueStatusProcessing).Count(&stats.Processing)
	w.db.Model(&models.VerificationQueue{}).Where("status = ?", models.QueueStatusDone).Count(&stats.Done)
	w.db.Model(&models.VerificationQueue{}).Where("status = ?", models.QueueStatusFailed).Count(&stats.Failed)
	w.db.Model(&models.VerificationQueue{}).Where("status = ?", models.QueueStatusPermanentFail).Count(&stats.PermanentFail)

	return map[string]interface{}{
		"pending":        stats.Pending,
		"processing":     stats.Processing,
		"done":           stats.Done,
		"failed":         stats.Failed,
		"permanent_fail": stats.PermanentFail,
		"is_running":     w.isRunning,
	}
}
