package database

import (
	"advisory-portal/internal/models"

	"gorm.io/gorm"
)

// GetScoreByProperty retrieves the score for a property, if one exists
func (gdb *GormDB) GetScoreByProperty(propertyID string) (*models.PropertyScore, error) {
	var score models.PropertyScore
	err := gdb.db.Where("property_id = ?", propertyID).First(&score).Error
	if err != nil {
		return nil, err
	}
	return &score, nil
}

// SaveScore saves or updates a property's score (upsert by property_id).
// A property has at most one score; resubmission overwrites it.
func (gdb *GormDB) SaveScore(score *models.PropertyScore) error {
	var existing models.PropertyScore
	result := gdb.db.Where("property_id = ?", score.PropertyID).First(&existing)

	if result.Error == gorm.ErrRecordNotFound {
		return gdb.db.Create(score).Error
	} else if result.Error != nil {
		return result.Error
	}

	score.ID = existing.ID
	score.CreatedAt = existing.CreatedAt
	return gdb.db.Save(score).Error
}

// DeleteScore removes a property's score
func (gdb *GormDB) DeleteScore(propertyID string) error {
	return gdb.db.Where("property_id = ?", propertyID).Delete(&models.PropertyScore{}).Error
}

// ListScores retrieves all scores, highest overall first
func (gdb *GormDB) ListScores(limit int) ([]models.PropertyScore, error) {
	var scores []models.PropertyScore
	query := gdb.db.Order("overall_score_total DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&scores).Error
	return scores, err
}

// ScoringStats summarizes rubric coverage across active listings
type ScoringStats struct {
	TotalActive  int64   `json:"total_active"`
	Scored       int64   `json:"scored"`
	Unscored     int64   `json:"unscored"`
	AverageScore float64 `json:"average_score"`
}

// GetScoringStats counts scored and unscored active properties
func (gdb *GormDB) GetScoringStats() (*ScoringStats, error) {
	var stats ScoringStats

	if err := gdb.db.Model(&models.Property{}).
		Where("status = ?", models.PropertyStatusActive).
		Count(&stats.TotalActive).Error; err != nil {
		return nil, err
	}

	if err := gdb.db.Model(&models.PropertyScore{}).
		Joins("JOIN properties ON properties.id = property_scores.property_id").
		Where("properties.status = ?", models.PropertyStatusActive).
		Count(&stats.Scored).Error; err != nil {
		return nil, err
	}

	stats.Unscored = stats.TotalActive - stats.Scored

	if stats.Scored > 0 {
		var avg *float64
		if err := gdb.db.Model(&models.PropertyScore{}).
			Joins("JOIN properties ON properties.id = property_scores.property_id").
			Where("properties.status = ?", models.PropertyStatusActive).
			Select("AVG(overall_score_total)").Scan(&avg).Error; err != nil {
			return nil, err
		}
		if avg != nil {
			stats.AverageScore = *avg
		}
	}

	return &stats, nil
}
