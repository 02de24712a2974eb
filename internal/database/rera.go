package database

import (
	"advisory-portal/internal/models"
)

// GetReraRecord retrieves a registry record by its RERA number
func (gdb *GormDB) GetReraRecord(reraID string) (*models.ReraRecord, error) {
	var record models.ReraRecord
	err := gdb.db.Where("rera_id = ?", reraID).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListReraRecords retrieves registry records, optionally filtered by
// verification status
func (gdb *GormDB) ListReraRecords(status models.VerificationStatus, limit int) ([]models.ReraRecord, error) {
	var records []models.ReraRecord
	query := gdb.db.Order("updated_at DESC")
	if status != "" {
		query = query.Where("verification_status = ?", status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&records).Error
	return records, err
}

// ReraStatusSummary counts registry records per status axis
type ReraStatusSummary struct {
	Total          int64            `json:"total"`
	ByVerification map[string]int64 `json:"by_verification"`
	ByCompliance   map[string]int64 `json:"by_compliance"`
	QueuePending   int64            `json:"queue_pending"`
	QueueFailed    int64            `json:"queue_failed"`
}

// GetReraStatusSummary builds the back-office verification dashboard counts
func (gdb *GormDB) GetReraStatusSummary() (*ReraStatusSummary, error) {
	summary := &ReraStatusSummary{
		ByVerification: make(map[string]int64),
		ByCompliance:   make(map[string]int64),
	}

	if err := gdb.db.Model(&models.ReraRecord{}).Count(&summary.Total).Error; err != nil {
		return nil, err
	}

	type bucket struct {
		Key   string
		Count int64
	}

	var verifRows []bucket
	if err := gdb.db.Model(&models.ReraRecord{}).
		Select("verification_status AS `key`, COUNT(*) AS count").
		Group("verification_status").Scan(&verifRows).Error; err != nil {
		return nil, err
	}
	for _, row := range verifRows {
		summary.ByVerification[row.Key] = row.Count
	}

	var compRows []bucket
	if err := gdb.db.Model(&models.ReraRecord{}).
		Where("compliance_status != ''").
		Select("compliance_status AS `key`, COUNT(*) AS count").
		Group("compliance_status").Scan(&compRows).Error; err != nil {
		return nil, err
	}
	for _, row := range compRows {
		summary.ByCompliance[row.Key] = row.Count
	}

	if err := gdb.db.Model(&models.VerificationQueue{}).
		Where("status = ?", models.QueueStatusPending).
		Count(&summary.QueuePending).Error; err != nil {
		return nil, err
	}
	if err := gdb.db.Model(&models.VerificationQueue{}).
		Where("status = ?", models.QueueStatusFailed).
		Count(&summary.QueueFailed).Error; err != nil {
		return nil, err
	}

	return summary, nil
}
