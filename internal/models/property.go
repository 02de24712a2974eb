package models

import "time"

// Property is a listing managed through the advisory back-office.
type Property struct {
	ID       string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title    string `gorm:"type:text;not null" json:"title"`
	Slug     string `gorm:"type:varchar(255);uniqueIndex" json:"slug,omitempty"`
	ImageURL string `gorm:"type:text" json:"image_url,omitempty"`

	CityID *uint `gorm:"index" json:"city_id,omitempty"`
	ZoneID *uint `gorm:"index" json:"zone_id,omitempty"`

	// Filter attributes
	Price        *int     `gorm:"type:bigint;index" json:"price,omitempty"`
	Area         *float64 `gorm:"type:decimal(10,2)" json:"area,omitempty"`
	Bedrooms     *int     `gorm:"type:int;index" json:"bedrooms,omitempty"`
	PropertyType string   `gorm:"type:varchar(30);index" json:"property_type,omitempty"`
	Address      string   `gorm:"type:text" json:"address,omitempty"`
	Developer    string   `gorm:"type:varchar(255)" json:"developer,omitempty"`

	// RERA registration number printed on the listing, if any.
	// Verification state lives on the linked ReraRecord.
	ReraNumber string `gorm:"type:varchar(64);index" json:"rera_number,omitempty"`

	// Status management (logical deletion)
	Status    PropertyStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	RemovedAt *time.Time     `gorm:"type:datetime" json:"removed_at,omitempty"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime;index:idx_created_at,sort:desc" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:datetime;not null;autoUpdateTime" json:"updated_at"`
}

// PropertyStatus is the listing lifecycle state
type PropertyStatus string

const (
	PropertyStatusActive  PropertyStatus = "active"
	PropertyStatusRemoved PropertyStatus = "removed"
)

func (Property) TableName() string {
	return "properties"
}

// IsActive reports whether the listing is live
func (p *Property) IsActive() bool {
	return p.Status == PropertyStatusActive
}

// MarkAsRemoved soft-deletes the listing
func (p *Property) MarkAsRemoved() {
	p.Status = PropertyStatusRemoved
	now := time.Now()
	p.RemovedAt = &now
}
