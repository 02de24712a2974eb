package database

import (
	"advisory-portal/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateReport persists a new legal audit report
func (gdb *GormDB) CreateReport(report *models.LegalAuditReport) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.Status == "" {
		report.Status = models.ReportStatusDraft
	}
	if report.RiskLevel == "" {
		report.RiskLevel = models.RiskLevelLow
	}
	return gdb.db.Create(report).Error
}

// UpdateReport saves changes to an existing report, preserving identity
func (gdb *GormDB) UpdateReport(report *models.LegalAuditReport) error {
	var existing models.LegalAuditReport
	if err := gdb.db.Where("id = ?", report.ID).First(&existing).Error; err != nil {
		return err
	}
	report.CreatedAt = existing.CreatedAt
	return gdb.db.Save(report).Error
}

// GetReportByID retrieves a report by ID
func (gdb *GormDB) GetReportByID(id string) (*models.LegalAuditReport, error) {
	var report models.LegalAuditReport
	err := gdb.db.Where("id = ?", id).First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// ListReports retrieves reports with optional status and property filters
func (gdb *GormDB) ListReports(status models.ReportStatus, propertyID string) ([]models.LegalAuditReport, error) {
	var reports []models.LegalAuditReport
	query := gdb.db.Order("updated_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if propertyID != "" {
		query = query.Where("property_id = ?", propertyID)
	}
	err := query.Find(&reports).Error
	return reports, err
}

// DeleteReport removes a report and its customer assignments
func (gdb *GormDB) DeleteReport(id string) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("report_id = ?", id).Delete(&models.CustomerAssignment{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.LegalAuditReport{}).Error
	})
}

// ReportStats summarizes reports per workflow state and risk level
type ReportStats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
	ByRisk   map[string]int64 `json:"by_risk"`
}

// GetReportStats counts reports grouped by status and risk level
func (gdb *GormDB) GetReportStats() (*ReportStats, error) {
	stats := &ReportStats{
		ByStatus: make(map[string]int64),
		ByRisk:   make(map[string]int64),
	}

	if err := gdb.db.Model(&models.LegalAuditReport{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	type bucket struct {
		Key   string
		Count int64
	}

	var statusRows []bucket
	if err := gdb.db.Model(&models.LegalAuditReport{}).
		Select("status AS `key`, COUNT(*) AS count").
		Group("status").Scan(&statusRows).Error; err != nil {
		return nil, err
	}
	for _, row := range statusRows {
		stats.ByStatus[row.Key] = row.Count
	}

	var riskRows []bucket
	if err := gdb.db.Model(&models.LegalAuditReport{}).
		Select("risk_level AS `key`, COUNT(*) AS count").
		Group("risk_level").Scan(&riskRows).Error; err != nil {
		return nil, err
	}
	for _, row := range riskRows {
		stats.ByRisk[row.Key] = row.Count
	}

	return stats, nil
}

// SaveCustomer saves or updates a customer (upsert by email when set)
func (gdb *GormDB) SaveCustomer(c *models.Customer) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	if c.Email != "" {
		var existing models.Customer
		result := gdb.db.Where("email = ?", c.Email).First(&existing)
		if result.Error == nil {
			c.ID = existing.ID
			c.CreatedAt = existing.CreatedAt
			return gdb.db.Save(c).Error
		} else if result.Error != gorm.ErrRecordNotFound {
			return result.Error
		}
	}

	return gdb.db.Create(c).Error
}

// ListCustomers retrieves all customers, newest first
func (gdb *GormDB) ListCustomers() ([]models.Customer, error) {
	var customers []models.Customer
	err := gdb.db.Order("created_at DESC").Find(&customers).Error
	return customers, err
}

// GetCustomerByID retrieves a customer by ID
func (gdb *GormDB) GetCustomerByID(id string) (*models.Customer, error) {
	var customer models.Customer
	err := gdb.db.Where("id = ?", id).First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// AssignCustomer grants a customer access to a report. Assigning the
// same pair again updates the existing row instead of creating a
// duplicate, so repeated assignment is safe.
func (gdb *GormDB) AssignCustomer(a *models.CustomerAssignment) error {
	if a.AccessLevel == "" {
		a.AccessLevel = models.AccessLevelView
	}

	var existing models.CustomerAssignment
	result := gdb.db.Where("report_id = ? AND customer_id = ?", a.ReportID, a.CustomerID).First(&existing)

	if result.Error == gorm.ErrRecordNotFound {
		return gdb.db.Create(a).Error
	} else if result.Error != nil {
		return result.Error
	}

	a.ID = existing.ID
	a.CreatedAt = existing.CreatedAt
	return gdb.db.Save(a).Error
}

// RemoveAssignment revokes a customer's access to a report. Removing an
// assignment that does not exist is a no-op.
func (gdb *GormDB) RemoveAssignment(reportID, customerID string) error {
	return gdb.db.Where("report_id = ? AND customer_id = ?", reportID, customerID).
		Delete(&models.CustomerAssignment{}).Error
}

// ListAssignments retrieves a report's customer assignments with
// customer details preloaded
func (gdb *GormDB) ListAssignments(reportID string) ([]models.CustomerAssignment, error) {
	var assignments []models.CustomerAssignment
	err := gdb.db.Preload("Customer").
		Where("report_id = ?", reportID).
		Order("created_at ASC").
		Find(&assignments).Error
	return assignments, err
}

// CountAssignments returns the number of customers assigned to a report
func (gdb *GormDB) CountAssignments(reportID string) (int64, error) {
	var count int64
	err := gdb.db.Model(&models.CustomerAssignment{}).
		Where("report_id = ?", reportID).
		Count(&count).Error
	return count, err
}

// ListReportsForCustomer retrieves the reports a customer can access
func (gdb *GormDB) ListReportsForCustomer(customerID string) ([]models.LegalAuditReport, error) {
	var reports []models.LegalAuditReport
	err := gdb.db.
		Joins("JOIN customer_assignments ON customer_assignments.report_id = legal_audit_reports.id").
		Where("customer_assignments.customer_id = ?", customerID).
		Order("legal_audit_reports.updated_at DESC").
		Find(&reports).Error
	return reports, err
}
