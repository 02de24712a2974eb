package database

import (
	"advisory-portal/internal/models"

	"gorm.io/gorm"
)

// ListCities retrieves cities, optionally restricted to active ones
func (gdb *GormDB) ListCities(activeOnly bool) ([]models.City, error) {
	var cities []models.City
	query := gdb.db.Order("name ASC")
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	err := query.Find(&cities).Error
	return cities, err
}

// SaveCity saves or updates a city (upsert by name)
func (gdb *GormDB) SaveCity(city *models.City) error {
	var existing models.City
	result := gdb.db.Where("name = ?", city.Name).First(&existing)
	if result.Error == nil {
		city.ID = existing.ID
		city.CreatedAt = existing.CreatedAt
		return gdb.db.Save(city).Error
	} else if result.Error != gorm.ErrRecordNotFound {
		return result.Error
	}
	return gdb.db.Create(city).Error
}

// DeleteCity removes a city and its zones
func (gdb *GormDB) DeleteCity(id uint) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("city_id = ?", id).Delete(&models.Zone{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.City{}, id).Error
	})
}

// GetCityByID retrieves a city by ID
func (gdb *GormDB) GetCityByID(id uint) (*models.City, error) {
	var city models.City
	err := gdb.db.First(&city, id).Error
	if err != nil {
		return nil, err
	}
	return &city, nil
}

// ListZones retrieves zones, optionally restricted to one city
func (gdb *GormDB) ListZones(cityID uint) ([]models.Zone, error) {
	var zones []models.Zone
	query := gdb.db.Order("name ASC")
	if cityID != 0 {
		query = query.Where("city_id = ?", cityID)
	}
	err := query.Find(&zones).Error
	return zones, err
}

// SaveZone saves or updates a zone (upsert by city + name)
func (gdb *GormDB) SaveZone(zone *models.Zone) error {
	var existing models.Zone
	result := gdb.db.Where("city_id = ? AND name = ?", zone.CityID, zone.Name).First(&existing)
	if result.Error == nil {
		zone.ID = existing.ID
		zone.CreatedAt = existing.CreatedAt
		return gdb.db.Save(zone).Error
	} else if result.Error != gorm.ErrRecordNotFound {
		return result.Error
	}
	return gdb.db.Create(zone).Error
}

// DeleteZone removes a zone
func (gdb *GormDB) DeleteZone(id uint) error {
	return gdb.db.Delete(&models.Zone{}, id).Error
}
