package models

import "time"

// LegalAuditReport is a lawyer-authored due-diligence report on a property.
// The six section payloads are structured records stored as JSON columns;
// a malformed section in a request is a validation error at the handler,
// never silently replaced with an empty object.
type LegalAuditReport struct {
	ID         string `gorm:"type:varchar(36);primaryKey" json:"id"`
	PropertyID string `gorm:"type:varchar(36);not null;index" json:"property_id"`

	Title        string `gorm:"type:text;not null" json:"title"`
	LawyerName   string `gorm:"type:varchar(255)" json:"lawyer_name,omitempty"`
	BarNumber    string `gorm:"type:varchar(64)" json:"bar_number,omitempty"`
	AuditDate    *time.Time `gorm:"type:date" json:"audit_date,omitempty"`
	ValidUntil   *time.Time `gorm:"type:date" json:"valid_until,omitempty"`
	Status       ReportStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	RiskLevel    RiskLevel    `gorm:"type:varchar(10);not null;default:'low';index" json:"risk_level"`
	OverallScore int          `gorm:"type:int;not null;default:0" json:"overall_score"`

	Ownership          ReportSection `gorm:"serializer:json;type:json" json:"ownership"`
	TitleVerification  ReportSection `gorm:"serializer:json;type:json" json:"title_verification"`
	StatutoryApprovals ReportSection `gorm:"serializer:json;type:json" json:"statutory_approvals"`
	TaxCompliance      ReportSection `gorm:"serializer:json;type:json" json:"tax_compliance"`
	LitigationHistory  ReportSection `gorm:"serializer:json;type:json" json:"litigation_history"`
	ComplianceStatus   ReportSection `gorm:"serializer:json;type:json" json:"compliance_status"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Property Property `gorm:"foreignKey:PropertyID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

// ReportSection is one structured block of a legal audit report.
type ReportSection struct {
	Summary  string            `json:"summary,omitempty"`
	Verified bool              `json:"verified"`
	Items    []SectionItem     `json:"items,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
	Remarks  string            `json:"remarks,omitempty"`
}

// SectionItem is a single checked document or finding within a section
type SectionItem struct {
	Label   string `json:"label"`
	Value   string `json:"value,omitempty"`
	Status  string `json:"status,omitempty"`
	DocRef  string `json:"doc_ref,omitempty"`
	Remarks string `json:"remarks,omitempty"`
}

// ReportStatus is the report workflow state
type ReportStatus string

const (
	ReportStatusDraft      ReportStatus = "draft"
	ReportStatusInProgress ReportStatus = "in-progress"
	ReportStatusCompleted  ReportStatus = "completed"
	ReportStatusApproved   ReportStatus = "approved"
)

// ValidReportStatus reports whether s is a known workflow state
func ValidReportStatus(s ReportStatus) bool {
	switch s {
	case ReportStatusDraft, ReportStatusInProgress, ReportStatusCompleted, ReportStatusApproved:
		return true
	}
	return false
}

// RiskLevel is the lawyer's overall risk call
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

// ValidRiskLevel reports whether r is a known risk level
func ValidRiskLevel(r RiskLevel) bool {
	switch r {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh, RiskLevelCritical:
		return true
	}
	return false
}

func (LegalAuditReport) TableName() string {
	return "legal_audit_reports"
}
