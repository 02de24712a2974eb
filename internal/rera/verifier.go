package rera

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"advisory-portal/internal/models"
	"advisory-portal/internal/ratelimit"
	"advisory-portal/internal/snapshot"

	"gorm.io/gorm"
)

// ErrRegistryUnavailable is returned while the circuit breaker is open
var ErrRegistryUnavailable = errors.New("registry temporarily unavailable (circuit breaker open)")

// Verifier drives single and bulk verification of RERA records against
// the registry, and the auto-sync sweep that enqueues stale records for
// the background worker.
type Verifier struct {
	db       *gorm.DB
	client   *Client
	limiter  *ratelimit.RegistryLimiter
	breaker  *CircuitBreaker
	snapshot *snapshot.Service

	bulkDelay       time.Duration
	stalenessWindow time.Duration
}

// VerifierConfig holds orchestration settings
type VerifierConfig struct {
	BulkDelay       time.Duration
	StalenessWindow time.Duration
	Location        *time.Location
}

// NewVerifier creates a verification orchestrator
func NewVerifier(db *gorm.DB, client *Client, limiter *ratelimit.RegistryLimiter, breaker *CircuitBreaker, cfg VerifierConfig) *Verifier {
	if cfg.BulkDelay == 0 {
		cfg.BulkDelay = time.Second
	}
	if cfg.StalenessWindow == 0 {
		cfg.StalenessWindow = 30 * 24 * time.Hour
	}
	return &Verifier{
		db:              db,
		client:          client,
		limiter:         limiter,
		breaker:         breaker,
		snapshot:        snapshot.NewService(db, cfg.Location),
		bulkDelay:       cfg.BulkDelay,
		stalenessWindow: cfg.StalenessWindow,
	}
}

// ParseBulkInput splits newline-delimited registry IDs, trimming each
// line and dropping blanks. Order is preserved; duplicates are kept
// (dedup is a separate, explicit step).
func ParseBulkInput(text string) []string {
	var ids []string
	for _, line := range strings.Split(text, "\n") {
		id := strings.TrimSpace(line)
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// DedupeIDs removes duplicate IDs, keeping the first occurrence
func DedupeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// NormalizeBulkInput is the full pipeline: trim, drop blanks, dedupe.
// "A\n\nB\n  \nA" normalizes to ["A", "B"].
func NormalizeBulkInput(text string) []string {
	return DedupeIDs(ParseBulkInput(text))
}

// VerifySingle runs one registry round-trip for a RERA ID and updates
// or creates the cached record. On success the record is marked
// verified with a fresh timestamp and a snapshot is taken; on failure
// the record is marked failed and the collaborator's message is kept.
func (v *Verifier) VerifySingle(ctx context.Context, reraID string, propertyID *string) (*models.ReraRecord, error) {
	reraID = strings.TrimSpace(reraID)
	if reraID == "" {
		return nil, errors.New("rera id is required")
	}

	if !v.breaker.CanProceed() {
		return nil, ErrRegistryUnavailable
	}

	v.limiter.Acquire()
	project, err := v.client.FetchProject(ctx, reraID)
	v.limiter.Release()

	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			v.breaker.RecordFailure(statusErr.Code)
		}
		v.markFailed(reraID, propertyID, err)
		return nil, err
	}

	v.breaker.RecordSuccess()

	record, err := v.saveVerified(project, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to save verified record: %w", err)
	}

	if err := v.snapshot.CaptureWithChangeDetection(record); err != nil {
		log.Printf("[RERA] warning: snapshot failed for %s: %v", reraID, err)
	}

	return record, nil
}

// BulkResult aggregates a bulk verification run
type BulkResult struct {
	Requested int      `json:"requested"`
	Verified  int      `json:"verified"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

// VerifyBulk verifies IDs sequentially with a fixed inter-item delay to
// respect the registry's rate tolerance. Failed items are counted, not
// retried; the caller sees an aggregate summary.
func (v *Verifier) VerifyBulk(ctx context.Context, ids []string) *BulkResult {
	result := &BulkResult{Requested: len(ids)}

	for i, id := range ids {
		if i > 0 {
			select {
			case <-ctx.Done():
				result.Errors = append(result.Errors, fmt.Sprintf("aborted: %v", ctx.Err()))
				result.Failed += len(ids) - i
				return result
			case <-time.After(v.bulkDelay):
			}
		}

		if _, err := v.VerifySingle(ctx, id, nil); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", id, err))

			// An open breaker will fail every remaining item; stop early
			if errors.Is(err, ErrRegistryUnavailable) {
				result.Failed += len(ids) - i - 1
				result.Errors = append(result.Errors, "remaining items skipped: registry unavailable")
				break
			}
			continue
		}
		result.Verified++
	}

	log.Printf("[RERA] bulk verification: %d requested, %d verified, %d failed",
		result.Requested, result.Verified, result.Failed)
	return result
}

// AutoSync sweeps properties that carry a RERA number but have a
// missing or stale verification, and enqueues them for the worker.
// Returns the number of items enqueued.
func (v *Verifier) AutoSync() (int, error) {
	var properties []models.Property
	err := v.db.Where("status = ? AND rera_number <> ''", models.PropertyStatusActive).Find(&properties).Error
	if err != nil {
		return 0, fmt.Errorf("failed to list properties for auto-sync: %w", err)
	}

	now := time.Now()
	enqueued := 0

	for _, prop := range properties {
		var record models.ReraRecord
		result := v.db.Where("rera_id = ?", prop.ReraNumber).First(&record)

		if result.Error == nil && !record.IsStale(v.stalenessWindow, now) {
			continue
		}
		if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			log.Printf("[RERA] auto-sync: lookup failed for %s: %v", prop.ReraNumber, result.Error)
			continue
		}

		// Stale records become visibly outdated until re-verified
		if result.Error == nil && record.VerificationStatus == models.VerificationVerified {
			v.db.Model(&record).Update("verification_status", models.VerificationOutdated)
		}

		if v.enqueue(prop.ReraNumber, prop.ID) {
			enqueued++
		}
	}

	log.Printf("[RERA] auto-sync: %d properties checked, %d enqueued", len(properties), enqueued)
	return enqueued, nil
}

// enqueue adds a verification to the queue, resetting a previously
// failed entry instead of duplicating it
func (v *Verifier) enqueue(reraID, propertyID string) bool {
	var existing models.VerificationQueue
	err := v.db.Where("rera_id = ? AND status IN ?", reraID,
		[]string{models.QueueStatusPending, models.QueueStatusProcessing}).First(&existing).Error

	if err == nil {
		// Already queued
		return false
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[RERA] queue lookup failed for %s: %v", reraID, err)
		return false
	}

	var failed models.VerificationQueue
	err = v.db.Where("rera_id = ? AND status = ?", reraID, models.QueueStatusFailed).First(&failed).Error
	if err == nil {
		updates := map[string]interface{}{
			"status":        models.QueueStatusPending,
			"attempts":      0,
			"last_error":    "",
			"next_retry_at": nil,
		}
		if updateErr := v.db.Model(&failed).Updates(updates).Error; updateErr != nil {
			log.Printf("[RERA] failed to reset queue entry for %s: %v", reraID, updateErr)
			return false
		}
		return true
	}

	item := models.VerificationQueue{
		ReraID:     reraID,
		PropertyID: &propertyID,
		Status:     models.QueueStatusPending,
	}
	if createErr := v.db.Create(&item).Error; createErr != nil {
		log.Printf("[RERA] failed to enqueue %s: %v", reraID, createErr)
		return false
	}
	return true
}

// saveVerified upserts the cached record with fresh registry data
func (v *Verifier) saveVerified(project *RegistryProject, propertyID *string) (*models.ReraRecord, error) {
	now := time.Now()

	var record models.ReraRecord
	result := v.db.Where("rera_id = ?", project.ReraID).First(&record)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		record = models.ReraRecord{ReraID: project.ReraID}
	} else if result.Error != nil {
		return nil, result.Error
	}

	record.ProjectName = project.ProjectName
	record.PromoterName = project.PromoterName
	record.District = project.District
	record.State = project.State
	record.ProjectStatus = project.ProjectStatus
	record.ComplianceStatus = project.ComplianceStatus
	record.RegistrationDate = project.RegistrationDate
	record.ExpiryDate = project.ExpiryDate
	record.VerificationStatus = models.VerificationVerified
	record.LastVerifiedAt = &now
	record.LastError = ""
	if propertyID != nil && *propertyID != "" {
		record.PropertyID = propertyID
	}

	if err := v.db.Save(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// markFailed records a verification failure on the cached record
// without touching the registry fields from the last good verification
func (v *Verifier) markFailed(reraID string, propertyID *string, cause error) {
	var record models.ReraRecord
	result := v.db.Where("rera_id = ?", reraID).First(&record)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		record = models.ReraRecord{ReraID: reraID}
		if propertyID != nil && *propertyID != "" {
			record.PropertyID = propertyID
		}
	} else if result.Error != nil {
		log.Printf("[RERA] failed to load record %s for failure marking: %v", reraID, result.Error)
		return
	}

	record.VerificationStatus = models.VerificationFailed
	record.LastError = cause.Error()

	if err := v.db.Save(&record).Error; err != nil {
		log.Printf("[RERA] failed to mark record %s as failed: %v", reraID, err)
	}
}
