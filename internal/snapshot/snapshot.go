package snapshot

import (
	"errors"
	"fmt"
	"log"
	"time"

	"advisory-portal/internal/models"

	"gorm.io/gorm"
)

// Service records per-verification snapshots of RERA records and the
// differences between consecutive verifications, so the back-office can
// show what the registry changed about a project.
type Service struct {
	db  *gorm.DB
	loc *time.Location
}

// NewService creates a snapshot service. Day boundaries are computed in
// loc; nil falls back to the system timezone.
func NewService(db *gorm.DB, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{db: db, loc: loc}
}

// dayStart returns midnight of t's day in the service timezone
func (s *Service) dayStart(t time.Time) time.Time {
	t = t.In(s.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
}

// DetectChanges compares a freshly verified record against its most
// recent snapshot from an earlier day
func (s *Service) DetectChanges(record *models.ReraRecord) ([]models.ReraChange, error) {
	var last models.ReraSnapshot
	today := s.dayStart(time.Now())

	result := s.db.Where("rera_id = ? AND snapshot_at < ?", record.ReraID, today).
		Order("snapshot_at DESC").
		First(&last)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		// First verification of this record
		return []models.ReraChange{{
			ReraID:     record.ReraID,
			ChangeType: models.ChangeTypeNewRecord,
			NewValue:   "First registry verification",
			DetectedAt: time.Now(),
		}}, nil
	} else if result.Error != nil {
		return nil, result.Error
	}

	var changes []models.ReraChange

	if record.ProjectStatus != last.ProjectStatus {
		changes = append(changes, models.ReraChange{
			ReraID:     record.ReraID,
			ChangeType: models.ChangeTypeProjectStatus,
			OldValue:   string(last.ProjectStatus),
			NewValue:   string(record.ProjectStatus),
			DetectedAt: time.Now(),
		})
	}

	if record.ComplianceStatus != last.ComplianceStatus {
		changes = append(changes, models.ReraChange{
			ReraID:     record.ReraID,
			ChangeType: models.ChangeTypeComplianceStatus,
			OldValue:   string(last.ComplianceStatus),
			NewValue:   string(record.ComplianceStatus),
			DetectedAt: time.Now(),
		})
	}

	if record.PromoterName != last.PromoterName {
		changes = append(changes, models.ReraChange{
			ReraID:     record.ReraID,
			ChangeType: models.ChangeTypePromoter,
			OldValue:   last.PromoterName,
			NewValue:   record.PromoterName,
			DetectedAt: time.Now(),
		})
	}

	if !datePtrEqual(record.ExpiryDate, last.ExpiryDate) {
		changes = append(changes, models.ReraChange{
			ReraID:     record.ReraID,
			ChangeType: models.ChangeTypeExpiry,
			OldValue:   formatDate(last.ExpiryDate),
			NewValue:   formatDate(record.ExpiryDate),
			DetectedAt: time.Now(),
		})
	}

	return changes, nil
}

// CaptureWithChangeDetection writes today's snapshot for a record and
// persists any detected changes against it
func (s *Service) CaptureWithChangeDetection(record *models.ReraRecord) error {
	changes, err := s.DetectChanges(record)
	if err != nil {
		log.Printf("[Snapshot] warning: change detection failed for %s: %v", record.ReraID, err)
	}

	snap := &models.ReraSnapshot{
		ReraID:           record.ReraID,
		SnapshotAt:       s.dayStart(time.Now()),
		ProjectName:      record.ProjectName,
		PromoterName:     record.PromoterName,
		ProjectStatus:    record.ProjectStatus,
		ComplianceStatus: record.ComplianceStatus,
		ExpiryDate:       record.ExpiryDate,
		HasChanged:       len(changes) > 0,
	}
	if len(changes) > 0 {
		snap.ChangeNote = fmt.Sprintf("%d changes detected", len(changes))
	}

	// One snapshot per record per day: re-verification updates today's
	// row and replaces its change entries, so verifying twice never
	// records the same change twice
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.ReraSnapshot
		result := tx.Where("rera_id = ? AND snapshot_at = ?", record.ReraID, snap.SnapshotAt).First(&existing)

		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			if err := tx.Create(snap).Error; err != nil {
				return err
			}
		} else if result.Error != nil {
			return result.Error
		} else {
			snap.ID = existing.ID
			if err := tx.Save(snap).Error; err != nil {
				return err
			}
			if err := tx.Where("snapshot_id = ?", snap.ID).Delete(&models.ReraChange{}).Error; err != nil {
				return err
			}
		}

		if len(changes) == 0 {
			return nil
		}
		for i := range changes {
			changes[i].SnapshotID = snap.ID
		}
		return tx.Create(&changes).Error
	})
	if err != nil {
		return err
	}

	if len(changes) > 0 {
		log.Printf("[Snapshot] %d changes detected for %s", len(changes), record.ReraID)
	}

	return nil
}

// GetHistory retrieves snapshot history for a RERA record
func (s *Service) GetHistory(reraID string, limit int) ([]models.ReraSnapshot, error) {
	var snapshots []models.ReraSnapshot
	query := s.db.Where("rera_id = ?", reraID).Order("snapshot_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}

// GetRecentChanges retrieves the latest detected registry changes
func (s *Service) GetRecentChanges(limit int) ([]models.ReraChange, error) {
	var changes []models.ReraChange
	query := s.db.Order("detected_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&changes).Error; err != nil {
		return nil, err
	}
	return changes, nil
}

func datePtrEqual(a, b *time.Time) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Equal(*b)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
