package models

import "time"

// ReraSnapshot captures the registry fields of a RERA record as seen by
// one verification run, so the back-office can show what the registry
// changed between checks.
type ReraSnapshot struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ReraID     string    `gorm:"type:varchar(64);not null;index:idx_rera_date" json:"rera_id"`
	SnapshotAt time.Time `gorm:"type:date;not null;index:idx_rera_date,priority:2" json:"snapshot_at"`

	ProjectName      string           `gorm:"type:text" json:"project_name,omitempty"`
	PromoterName     string           `gorm:"type:text" json:"promoter_name,omitempty"`
	ProjectStatus    ProjectStatus    `gorm:"type:varchar(30)" json:"project_status,omitempty"`
	ComplianceStatus ComplianceStatus `gorm:"type:varchar(30)" json:"compliance_status,omitempty"`
	ExpiryDate       *time.Time       `gorm:"type:date" json:"expiry_date,omitempty"`

	HasChanged bool   `gorm:"type:boolean;default:false" json:"has_changed"`
	ChangeNote string `gorm:"type:text" json:"change_note,omitempty"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime" json:"created_at"`
}

func (ReraSnapshot) TableName() string {
	return "rera_snapshots"
}

// ReraChange is one detected difference between consecutive verifications
type ReraChange struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ReraID     string    `gorm:"type:varchar(64);not null;index" json:"rera_id"`
	SnapshotID uint      `gorm:"type:bigint;not null" json:"snapshot_id"`
	ChangeType string    `gorm:"type:varchar(50);not null" json:"change_type"`
	OldValue   string    `gorm:"type:text" json:"old_value,omitempty"`
	NewValue   string    `gorm:"type:text" json:"new_value,omitempty"`
	DetectedAt time.Time `gorm:"type:datetime;not null;autoCreateTime;index" json:"detected_at"`
}

func (ReraChange) TableName() string {
	return "rera_changes"
}

// ChangeType constants
const (
	ChangeTypeProjectStatus    = "project_status_changed"
	ChangeTypeComplianceStatus = "compliance_status_changed"
	ChangeTypePromoter         = "promoter_changed"
	ChangeTypeExpiry           = "expiry_date_changed"
	ChangeTypeNewRecord        = "new_record"
)
