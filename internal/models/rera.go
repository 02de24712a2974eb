package models

import "time"

// ReraRecord is a cached snapshot of a project's registration data from
// the state RERA registry. Only the verification operations mutate
// verification_status and last_verified_at; the three status axes are
// independent (a record can be verified + active + delayed at once).
type ReraRecord struct {
	ID     uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ReraID string `gorm:"type:varchar(64);not null;uniqueIndex" json:"rera_id"`

	ProjectName  string `gorm:"type:text" json:"project_name,omitempty"`
	PromoterName string `gorm:"type:text" json:"promoter_name,omitempty"`
	District     string `gorm:"type:varchar(100)" json:"district,omitempty"`
	State        string `gorm:"type:varchar(100)" json:"state,omitempty"`

	ProjectStatus    ProjectStatus    `gorm:"type:varchar(30);index" json:"project_status,omitempty"`
	ComplianceStatus ComplianceStatus `gorm:"type:varchar(30);index" json:"compliance_status,omitempty"`

	VerificationStatus VerificationStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"verification_status"`
	LastVerifiedAt     *time.Time         `gorm:"type:datetime" json:"last_verified_at,omitempty"`
	LastError          string             `gorm:"type:text" json:"last_error,omitempty"`

	RegistrationDate *time.Time `gorm:"type:date" json:"registration_date,omitempty"`
	ExpiryDate       *time.Time `gorm:"type:date" json:"expiry_date,omitempty"`

	// Optional link to a managed listing
	PropertyID *string `gorm:"type:varchar(36);index" json:"property_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ReraRecord) TableName() string {
	return "rera_records"
}

// VerificationStatus tracks freshness of the registry snapshot
type VerificationStatus string

const (
	VerificationVerified VerificationStatus = "verified"
	VerificationPending  VerificationStatus = "pending"
	VerificationFailed   VerificationStatus = "failed"
	VerificationOutdated VerificationStatus = "outdated"
)

// ComplianceStatus mirrors the registry's compliance axis
type ComplianceStatus string

const (
	ComplianceActive       ComplianceStatus = "active"
	ComplianceNonCompliant ComplianceStatus = "non-compliant"
	ComplianceSuspended    ComplianceStatus = "suspended"
	ComplianceCancelled    ComplianceStatus = "cancelled"
)

// ProjectStatus mirrors the registry's project progress axis
type ProjectStatus string

const (
	ProjectUnderConstruction ProjectStatus = "under-construction"
	ProjectCompleted         ProjectStatus = "completed"
	ProjectDelayed           ProjectStatus = "delayed"
	ProjectCancelled         ProjectStatus = "cancelled"
	ProjectApproved          ProjectStatus = "approved"
)

// IsStale reports whether the record needs re-verification given the window
func (r *ReraRecord) IsStale(window time.Duration, now time.Time) bool {
	if r.VerificationStatus != VerificationVerified {
		return true
	}
	if r.LastVerifiedAt == nil {
		return true
	}
	return now.Sub(*r.LastVerifiedAt) > window
}

// VerificationQueue holds pending registry verifications. Auto-sync
// enqueues, the worker drains with registry pacing so sweeps never burst.
type VerificationQueue struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ReraID      string     `gorm:"type:varchar(64);not null;index:idx_verify_rera" json:"rera_id"`
	PropertyID  *string    `gorm:"type:varchar(36)" json:"property_id,omitempty"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending';index:idx_verify_status" json:"status"`
	Priority    int        `gorm:"default:0;index:idx_verify_priority" json:"priority"`
	Attempts    int        `gorm:"default:0" json:"attempts"`
	LastError   string     `gorm:"type:text" json:"last_error,omitempty"`
	NextRetryAt *time.Time `gorm:"index:idx_verify_retry" json:"next_retry_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (VerificationQueue) TableName() string {
	return "verification_queue"
}

// Queue status constants
const (
	QueueStatusPending       = "pending"
	QueueStatusProcessing    = "processing"
	QueueStatusDone          = "done"
	QueueStatusFailed        = "failed"
	QueueStatusPermanentFail = "permanent_fail" // unregistered ID or registry 404
)

// MaxRetryAttempts before a queue item is marked permanently failed
const MaxRetryAttempts = 5

// GetNextRetryDelay calculates the backoff before the next verification retry
func GetNextRetryDelay(attempts int) time.Duration {
	// 5min, 15min, 1h, 4h, 12h
	delays := []time.Duration{
		5 * time.Minute,
		15 * time.Minute,
		1 * time.Hour,
		4 * time.Hour,
		12 * time.Hour,
	}

	if attempts >= len(delays) {
		return delays[len(delays)-1]
	}
	return delays[attempts]
}
