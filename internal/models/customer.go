package models

import "time"

// Customer is an account that can be granted access to legal audit reports
type Customer struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex" json:"email,omitempty"`
	Phone     string    `gorm:"type:varchar(20);index" json:"phone,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}

// CustomerAssignment grants a customer access to a legal audit report.
// The composite unique index enforces at most one assignment per
// (report, customer) pair; re-assigning updates the existing row.
type CustomerAssignment struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ReportID    string    `gorm:"type:varchar(36);not null;index:idx_report_customer,unique" json:"report_id"`
	CustomerID  string    `gorm:"type:varchar(36);not null;index:idx_report_customer,unique" json:"customer_id"`
	AccessLevel string    `gorm:"type:varchar(20);not null;default:'view'" json:"access_level"`
	AssignedBy  string    `gorm:"type:varchar(100)" json:"assigned_by,omitempty"`
	Notes       string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Report   LegalAuditReport `gorm:"foreignKey:ReportID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Customer Customer         `gorm:"foreignKey:CustomerID;references:ID;constraint:OnDelete:CASCADE" json:"customer,omitempty"`
}

func (CustomerAssignment) TableName() string {
	return "customer_assignments"
}

// AccessLevel constants
const (
	AccessLevelView     = "view"
	AccessLevelDownload = "download"
	AccessLevelFull     = "full"
)
