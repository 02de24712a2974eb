package handlers

import (
	"net/http"
	"time"

	"advisory-portal/internal/database"
	"advisory-portal/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ReportHandler handles legal audit report requests
type ReportHandler struct {
	db *database.GormDB
}

// NewReportHandler creates a new report handler
func NewReportHandler(db *database.GormDB) *ReportHandler {
	return &ReportHandler{db: db}
}

type reportRequest struct {
	PropertyID   string     `json:"property_id" binding:"required"`
	Title        string     `json:"title" binding:"required"`
	LawyerName   string     `json:"lawyer_name"`
	BarNumber    string     `json:"bar_number"`
	AuditDate    *time.Time `json:"audit_date"`
	ValidUntil   *time.Time `json:"valid_until"`
	Status       string     `json:"status"`
	RiskLevel    string     `json:"risk_level"`
	OverallScore int        `json:"overall_score"`

	Ownership          *models.ReportSection `json:"ownership"`
	TitleVerification  *models.ReportSection `json:"title_verification"`
	StatutoryApprovals *models.ReportSection `json:"statutory_approvals"`
	TaxCompliance      *models.ReportSection `json:"tax_compliance"`
	LitigationHistory  *models.ReportSection `json:"litigation_history"`
	ComplianceStatus   *models.ReportSection `json:"compliance_status"`
}

func (req *reportRequest) validate() string {
	if req.Status != "" && !models.ValidReportStatus(models.ReportStatus(req.Status)) {
		return "Invalid status: " + req.Status
	}
	if req.RiskLevel != "" && !models.ValidRiskLevel(models.RiskLevel(req.RiskLevel)) {
		return "Invalid risk level: " + req.RiskLevel
	}
	return ""
}

// applyTo copies request fields onto a report. Omitted sections keep
// their stored value; only sections present in the payload change.
func (req *reportRequest) applyTo(report *models.LegalAuditReport) {
	report.PropertyID = req.PropertyID
	report.Title = req.Title
	report.LawyerName = req.LawyerName
	report.BarNumber = req.BarNumber
	report.AuditDate = req.AuditDate
	report.ValidUntil = req.ValidUntil
	report.OverallScore = req.OverallScore
	if req.Status != "" {
		report.Status = models.ReportStatus(req.Status)
	}
	if req.RiskLevel != "" {
		report.RiskLevel = models.RiskLevel(req.RiskLevel)
	}

	if req.Ownership != nil {
		report.Ownership = *req.Ownership
	}
	if req.TitleVerification != nil {
		report.TitleVerification = *req.TitleVerification
	}
	if req.StatutoryApprovals != nil {
		report.StatutoryApprovals = *req.StatutoryApprovals
	}
	if req.TaxCompliance != nil {
		report.TaxCompliance = *req.TaxCompliance
	}
	if req.LitigationHistory != nil {
		report.LitigationHistory = *req.LitigationHistory
	}
	if req.ComplianceStatus != nil {
		report.ComplianceStatus = *req.ComplianceStatus
	}
}

// CreateReport creates a new legal audit report
func (h *ReportHandler) CreateReport(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	if _, err := h.db.GetPropertyByID(req.PropertyID); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	var report models.LegalAuditReport
	req.applyTo(&report)

	if err := h.db.CreateReport(&report); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, report)
}

// UpdateReport updates an existing legal audit report
func (h *ReportHandler) UpdateReport(c *gin.Context) {
	id := c.Param("id")

	report, err := h.db.GetReportByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	req.applyTo(report)

	if err := h.db.UpdateReport(report); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetReport returns a single report with its customer count
func (h *ReportHandler) GetReport(c *gin.Context) {
	id := c.Param("id")

	report, err := h.db.GetReportByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	customers, err := h.db.CountAssignments(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report":         report,
		"customer_count": customers,
	})
}

// ListReports returns reports with optional status and property filters
func (h *ReportHandler) ListReports(c *gin.Context) {
	status := models.ReportStatus(c.Query("status"))
	propertyID := c.Query("property_id")

	if status != "" && !models.ValidReportStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter: " + string(status)})
		return
	}

	reports, err := h.db.ListReports(status, propertyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": reports,
		"count":   len(reports),
	})
}

// DeleteReport removes a report and its assignments
func (h *ReportHandler) DeleteReport(c *gin.Context) {
	id := c.Param("id")

	if _, err := h.db.GetReportByID(id); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	if err := h.db.DeleteReport(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Report deleted"})
}

// GetReportStats returns report counts by workflow state and risk level
func (h *ReportHandler) GetReportStats(c *gin.Context) {
	stats, err := h.db.GetReportStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

type assignRequest struct {
	CustomerID  string `json:"customer_id" binding:"required"`
	AccessLevel string `json:"access_level"`
	AssignedBy  string `json:"assigned_by"`
	Notes       string `json:"notes"`
}

// AssignCustomer grants a customer access to a report. Re-assigning an
// already assigned customer updates the access level instead of failing.
func (h *ReportHandler) AssignCustomer(c *gin.Context) {
	reportID := c.Param("id")

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	switch req.AccessLevel {
	case "", models.AccessLevelView, models.AccessLevelDownload, models.AccessLevelFull:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid access level: " + req.AccessLevel})
		return
	}

	if _, err := h.db.GetReportByID(reportID); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	if _, err := h.db.GetCustomerByID(req.CustomerID); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	assignment := &models.CustomerAssignment{
		ReportID:    reportID,
		CustomerID:  req.CustomerID,
		AccessLevel: req.AccessLevel,
		AssignedBy:  req.AssignedBy,
		Notes:       req.Notes,
	}

	if err := h.db.AssignCustomer(assignment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	count, err := h.db.CountAssignments(reportID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"assignment":     assignment,
		"customer_count": count,
	})
}

// RemoveCustomer revokes a customer's access to a report. Removing a
// customer who was never assigned succeeds with the unchanged count.
func (h *ReportHandler) RemoveCustomer(c *gin.Context) {
	reportID := c.Param("id")
	customerID := c.Param("customerId")

	if _, err := h.db.GetReportByID(reportID); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	if err := h.db.RemoveAssignment(reportID, customerID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	count, err := h.db.CountAssignments(reportID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Customer removed",
		"customer_count": count,
	})
}

// ListAssignments returns a report's customer assignments
func (h *ReportHandler) ListAssignments(c *gin.Context) {
	reportID := c.Param("id")

	if _, err := h.db.GetReportByID(reportID); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	assignments, err := h.db.ListAssignments(reportID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"assignments": assignments,
		"count":       len(assignments),
	})
}

type customerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// CreateCustomer registers a customer account
func (h *ReportHandler) CreateCustomer(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	customer := &models.Customer{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}

	if err := h.db.SaveCustomer(customer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// ListCustomers returns all registered customers
func (h *ReportHandler) ListCustomers(c *gin.Context) {
	customers, err := h.db.ListCustomers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customers": customers,
		"count":     len(customers),
	})
}

// ListCustomerReports returns the reports a customer can access
func (h *ReportHandler) ListCustomerReports(c *gin.Context) {
	customerID := c.Param("id")

	if _, err := h.db.GetCustomerByID(customerID); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	reports, err := h.db.ListReportsForCustomer(customerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": reports,
		"count":   len(reports),
	})
}
