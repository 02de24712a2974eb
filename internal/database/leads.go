package database

import (
	"time"

	"advisory-portal/internal/models"
)

// CreateLead persists a captured lead
func (gdb *GormDB) CreateLead(lead *models.Lead) error {
	if lead.Stage == "" {
		lead.Stage = models.LeadStageNew
	}
	return gdb.db.Create(lead).Error
}

// GetLeadByID retrieves a lead by ID
func (gdb *GormDB) GetLeadByID(id string) (*models.Lead, error) {
	var lead models.Lead
	err := gdb.db.Where("id = ?", id).First(&lead).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// ListLeads retrieves leads, optionally filtered by funnel stage
func (gdb *GormDB) ListLeads(stage models.LeadStage, limit int) ([]models.Lead, error) {
	var leads []models.Lead
	query := gdb.db.Order("created_at DESC")
	if stage != "" {
		query = query.Where("stage = ?", stage)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&leads).Error
	return leads, err
}

// UpdateLeadStage moves a lead to a new funnel stage
func (gdb *GormDB) UpdateLeadStage(id string, stage models.LeadStage) error {
	return gdb.db.Model(&models.Lead{}).
		Where("id = ?", id).
		Update("stage", stage).Error
}

// TouchLead records an outbound contact against a lead
func (gdb *GormDB) TouchLead(id string, at time.Time) error {
	return gdb.db.Model(&models.Lead{}).
		Where("id = ?", id).
		Update("last_contact_at", &at).Error
}

// GetRecentNurtureLogs retrieves the latest nurturing dispatch records
func (gdb *GormDB) GetRecentNurtureLogs(limit int) ([]models.NurtureLog, error) {
	var logs []models.NurtureLog
	query := gdb.db.Order("sent_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&logs).Error
	return logs, err
}
