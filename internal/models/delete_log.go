package models

import "time"

// DeleteLog records properties that were physically deleted by cleanup
type DeleteLog struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID string    `gorm:"type:varchar(36);not null;index" json:"property_id"`
	Title      string    `gorm:"type:text" json:"title"`
	RemovedAt  time.Time `gorm:"type:datetime" json:"removed_at"`
	DeletedAt  time.Time `gorm:"type:datetime;not null;autoCreateTime;index" json:"deleted_at"`
	Reason     string    `gorm:"type:varchar(50);not null" json:"reason"`
}

func (DeleteLog) TableName() string {
	return "delete_logs"
}

// DeleteReason constants
const (
	DeleteReasonExpired   = "retention_expired"
	DeleteReasonDuplicate = "duplicate"
	DeleteReasonManual    = "manual_deletion"
)
