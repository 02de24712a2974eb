package models

import "time"

// City is admin-managed reference data for listings
type City struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	State     string    `gorm:"type:varchar(100)" json:"state,omitempty"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (City) TableName() string {
	return "cities"
}

// Zone is a locality within a city
type Zone struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CityID    uint      `gorm:"not null;index:idx_city_zone,unique" json:"city_id"`
	Name      string    `gorm:"type:varchar(100);not null;index:idx_city_zone,unique" json:"name"`
	Pincode   string    `gorm:"type:varchar(10)" json:"pincode,omitempty"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	City City `gorm:"foreignKey:CityID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Zone) TableName() string {
	return "zones"
}
