package cleanup

import (
	"fmt"
	"log"
	"time"

	"advisory-portal/internal/models"

	"gorm.io/gorm"
)

// Service handles physical deletion of old removed properties
type Service struct {
	db *gorm.DB
}

// NewService creates a new cleanup service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CleanupConfig holds configuration for cleanup operations
type CleanupConfig struct {
	RetentionDays    int  // Days to keep removed properties before physical deletion (default: 90)
	MaxDeletionCount int  // Maximum number of properties to delete in one run (safety limit)
	DryRun           bool // If true, only log what would be deleted without actually deleting
	DeleteFromSearch bool // If true, also delete from Meilisearch
}

// DefaultCleanupConfig returns default configuration
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		RetentionDays:    90,
		MaxDeletionCount: 10000,
		DryRun:           false,
		DeleteFromSearch: true,
	}
}

// CleanupResult holds the result of a cleanup operation
type CleanupResult struct {
	TargetCount       int       `json:"target_count"`
	DeletedCount      int       `json:"deleted_count"`
	ErrorCount        int       `json:"error_count"`
	DryRun            bool      `json:"dry_run"`
	ExecutedAt        time.Time `json:"executed_at"`
	DeletedProperties []string  `json:"deleted_properties"`
	Errors            []string  `json:"errors,omitempty"`
}

// FindExpiredProperties finds properties that are eligible for physical
// deletion: status = 'removed' with removed_at older than retentionDays
func (s *Service) FindExpiredProperties(retentionDays int) ([]models.Property, error) {
	var properties []models.Property

	cutoffDate := time.Now().AddDate(0, 0, -retentionDays)

	err := s.db.Where("status = ? AND removed_at < ?",
		models.PropertyStatusRemoved,
		cutoffDate,
	).Find(&properties).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find expired properties: %w", err)
	}

	log.Printf("[Cleanup] Found %d properties expired before %s", len(properties), cutoffDate.Format("2006-01-02"))
	return properties, nil
}

// PhysicallyDelete performs physical deletion of expired properties.
// Each property is deleted with its score, reports, and assignments in
// one transaction, with a DeleteLog row recording the removal.
func (s *Service) PhysicallyDelete(config CleanupConfig) (*CleanupResult, error) {
	result := &CleanupResult{
		DryRun:     config.DryRun,
		ExecutedAt: time.Now(),
	}

	expiredProperties, err := s.FindExpiredProperties(config.RetentionDays)
	if err != nil {
		return nil, err
	}

	result.TargetCount = len(expiredProperties)

	if result.TargetCount == 0 {
		log.Println("[Cleanup] No expired properties found for deletion")
		return result, nil
	}

	// Safety check: abort if too many properties would be deleted
	if result.TargetCount > config.MaxDeletionCount {
		return nil, fmt.Errorf("safety check failed: %d properties exceed max deletion limit of %d",
			result.TargetCount, config.MaxDeletionCount)
	}

	log.Printf("[Cleanup] Starting: %d properties to delete (retention: %d days, dry-run: %v)",
		result.TargetCount, config.RetentionDays, config.DryRun)

	for _, prop := range expiredProperties {
		if config.DryRun {
			log.Printf("[Cleanup] [DRY-RUN] Would delete property %s (Title: %s, RemovedAt: %s)",
				prop.ID, prop.Title, prop.RemovedAt.Format("2006-01-02"))
			result.DeletedProperties = append(result.DeletedProperties, prop.ID)
			result.DeletedCount++
			continue
		}

		err := s.db.Transaction(func(tx *gorm.DB) error {
			deleteLog := models.DeleteLog{
				PropertyID: prop.ID,
				Title:      prop.Title,
				RemovedAt:  *prop.RemovedAt,
				Reason:     models.DeleteReasonExpired,
			}
			if err := tx.Create(&deleteLog).Error; err != nil {
				return fmt.Errorf("create delete log: %w", err)
			}

			// Advisory data tied to the listing goes with it
			if err := tx.Where("property_id = ?", prop.ID).Delete(&models.PropertyScore{}).Error; err != nil {
				return fmt.Errorf("delete score: %w", err)
			}

			var reportIDs []string
			if err := tx.Model(&models.LegalAuditReport{}).
				Where("property_id = ?", prop.ID).
				Pluck("id", &reportIDs).Error; err != nil {
				return fmt.Errorf("list reports: %w", err)
			}
			if len(reportIDs) > 0 {
				if err := tx.Where("report_id IN ?", reportIDs).Delete(&models.CustomerAssignment{}).Error; err != nil {
					return fmt.Errorf("delete assignments: %w", err)
				}
				if err := tx.Where("id IN ?", reportIDs).Delete(&models.LegalAuditReport{}).Error; err != nil {
					return fmt.Errorf("delete reports: %w", err)
				}
			}

			if err := tx.Delete(&prop).Error; err != nil {
				return fmt.Errorf("delete property: %w", err)
			}
			return nil
		})

		if err != nil {
			errMsg := fmt.Sprintf("Failed to delete property %s: %v", prop.ID, err)
			log.Printf("[Cleanup] ERROR: %s", errMsg)
			result.Errors = append(result.Errors, errMsg)
			result.ErrorCount++
			continue
		}

		log.Printf("[Cleanup] Physically deleted property %s (Title: %s)", prop.ID, prop.Title)
		result.DeletedProperties = append(result.DeletedProperties, prop.ID)
		result.DeletedCount++
	}

	log.Printf("[Cleanup] Completed: %d/%d deleted, %d errors (dry-run: %v)",
		result.DeletedCount, result.TargetCount, result.ErrorCount, config.DryRun)

	return result, nil
}

// GetDeleteStats returns statistics about deleted properties
func (s *Service) GetDeleteStats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var totalDeleted int64
	if err := s.db.Model(&models.DeleteLog{}).Count(&totalDeleted).Error; err != nil {
		return nil, err
	}
	stats["total_deleted"] = totalDeleted

	var reasonCounts []struct {
		Reason string
		Count  int64
	}
	if err := s.db.Model(&models.DeleteLog{}).
		Select("reason, count(*) as count").
		Group("reason").
		Scan(&reasonCounts).Error; err != nil {
		return nil, err
	}

	reasonMap := make(map[string]int64)
	for _, rc := range reasonCounts {
		reasonMap[rc.Reason] = rc.Count
	}
	stats["by_reason"] = reasonMap

	var recentDeleted int64
	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	if err := s.db.Model(&models.DeleteLog{}).
		Where("deleted_at >= ?", thirtyDaysAgo).
		Count(&recentDeleted).Error; err != nil {
		return nil, err
	}
	stats["deleted_last_30_days"] = recentDeleted

	var currentRemoved int64
	if err := s.db.Model(&models.Property{}).
		Where("status = ?", models.PropertyStatusRemoved).
		Count(&currentRemoved).Error; err != nil {
		return nil, err
	}
	stats["currently_removed"] = currentRemoved

	expiredProperties, err := s.FindExpiredProperties(DefaultCleanupConfig().RetentionDays)
	if err != nil {
		return nil, err
	}
	stats["expired_ready_for_deletion"] = len(expiredProperties)

	return stats, nil
}

// GetRecentDeleteLogs returns recent delete log entries
func (s *Service) GetRecentDeleteLogs(limit int) ([]models.DeleteLog, error) {
	var logs []models.DeleteLog
	err := s.db.Order("deleted_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
