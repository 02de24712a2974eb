package models

import "time"

// Lead is a prospect captured by the marketing site's enquiry forms
type Lead struct {
	ID         string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name       string  `gorm:"type:varchar(255);not null" json:"name"`
	Phone      string  `gorm:"type:varchar(20);not null;index" json:"phone"`
	Email      string  `gorm:"type:varchar(255)" json:"email,omitempty"`
	Interest   string  `gorm:"type:text" json:"interest,omitempty"`
	PropertyID *string `gorm:"type:varchar(36);index" json:"property_id,omitempty"`
	Source     string  `gorm:"type:varchar(50)" json:"source,omitempty"`

	Stage         LeadStage  `gorm:"type:varchar(20);not null;default:'new';index" json:"stage"`
	LastContactAt *time.Time `gorm:"type:datetime" json:"last_contact_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Lead) TableName() string {
	return "leads"
}

// LeadStage is the nurturing funnel position
type LeadStage string

const (
	LeadStageNew       LeadStage = "new"
	LeadStageContacted LeadStage = "contacted"
	LeadStageNurturing LeadStage = "nurturing"
	LeadStageConverted LeadStage = "converted"
	LeadStageCold      LeadStage = "cold"
)

// Touch records an outbound contact
func (l *Lead) Touch(now time.Time) {
	l.LastContactAt = &now
}

// NurtureLog records one nurturing rule firing against a lead
type NurtureLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RuleKey   string    `gorm:"type:varchar(50);not null;index" json:"rule_key"`
	LeadID    string    `gorm:"type:varchar(36);not null;index" json:"lead_id"`
	Channel   string    `gorm:"type:varchar(20);not null;default:'whatsapp'" json:"channel"`
	MessageID string    `gorm:"type:varchar(100)" json:"message_id,omitempty"`
	Success   bool      `gorm:"not null;default:false" json:"success"`
	Error     string    `gorm:"type:text" json:"error,omitempty"`
	SentAt    time.Time `gorm:"autoCreateTime;index" json:"sent_at"`
}

func (NurtureLog) TableName() string {
	return "nurture_logs"
}
