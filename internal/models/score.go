package models

import "time"

// PropertyScore is the advisory team's rubric assessment of a property.
// At most one score exists per property, enforced by the unique index on
// property_id. Resubmission overwrites; there is no version history.
type PropertyScore struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID string `gorm:"type:varchar(36);not null;uniqueIndex" json:"property_id"`

	// Raw sub-criterion values keyed by catalog field key, kept so the
	// editor can reload the breakdown that produced the totals.
	CriteriaValues map[string]int `gorm:"serializer:json;type:json" json:"criteria_values"`

	// Per-field assessor notes keyed by the same catalog field keys.
	FieldNotes map[string]string `gorm:"serializer:json;type:json" json:"field_notes,omitempty"`

	// Category totals, each bounded by the catalog category maximum.
	LocationScoreTotal     int `gorm:"type:int;not null" json:"location_score_total"`
	AmenitiesScoreTotal    int `gorm:"type:int;not null" json:"amenities_score_total"`
	LegalScoreTotal        int `gorm:"type:int;not null" json:"legal_score_total"`
	ValueScoreTotal        int `gorm:"type:int;not null" json:"value_score_total"`
	DeveloperScoreTotal    int `gorm:"type:int;not null" json:"developer_score_total"`
	ConstructionScoreTotal int `gorm:"type:int;not null" json:"construction_score_total"`

	OverallScoreTotal int    `gorm:"type:int;not null;index" json:"overall_score_total"`
	OverallGrade      string `gorm:"type:varchar(2);not null" json:"overall_grade"`

	KeyStrengths   []string `gorm:"serializer:json;type:json" json:"key_strengths,omitempty"`
	AreasOfConcern []string `gorm:"serializer:json;type:json" json:"areas_of_concern,omitempty"`

	RecommendationSummary string `gorm:"type:text" json:"recommendation_summary,omitempty"`
	ScoredBy              string `gorm:"type:varchar(100)" json:"scored_by,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Property Property `gorm:"foreignKey:PropertyID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (PropertyScore) TableName() string {
	return "property_scores"
}
