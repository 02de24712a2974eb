package database

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"advisory-portal/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GormDB struct {
	db *gorm.DB
}

func NewGormDB(host, port, user, password, dbname string) (*GormDB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, dbname)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	})
	if err != nil {
		return nil, err
	}

	// Test connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	return &GormDB{db: db}, nil
}

// NewGormDBFromDB creates a GormDB wrapper from an existing gorm.DB instance
func NewGormDBFromDB(db *gorm.DB) *GormDB {
	return &GormDB{db: db}
}

// DB returns the underlying gorm.DB instance
func (gdb *GormDB) DB() *gorm.DB {
	return gdb.db
}

func (gdb *GormDB) Close() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema creates tables using GORM AutoMigrate
func (gdb *GormDB) InitSchema() error {
	// AutoMigrate will create tables if they don't exist
	return gdb.db.AutoMigrate(
		&models.City{},
		&models.Zone{},
		&models.Property{},
		&models.PropertyScore{},
		&models.LegalAuditReport{},
		&models.Customer{},
		&models.CustomerAssignment{},
		&models.ReraRecord{},
		&models.ReraSnapshot{},
		&models.ReraChange{},
		&models.VerificationQueue{},
		&models.Lead{},
		&models.NurtureLog{},
		&models.DeleteLog{},
	)
}

// SaveProperty saves or updates a property (upsert by slug)
func (gdb *GormDB) SaveProperty(p *models.Property) error {
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = models.PropertyStatusActive
	}

	// Upsert: first try to find existing property by slug
	var existing models.Property
	result := gdb.db.Where("slug = ?", p.Slug).First(&existing)

	if result.Error == gorm.ErrRecordNotFound {
		return gdb.db.Create(p).Error
	} else if result.Error != nil {
		return result.Error
	}

	// Update existing (keep original CreatedAt, Status, and RemovedAt)
	p.CreatedAt = existing.CreatedAt
	p.ID = existing.ID
	p.Status = existing.Status
	p.RemovedAt = existing.RemovedAt
	return gdb.db.Save(p).Error
}

// GetAllProperties retrieves all properties, newest first
func (gdb *GormDB) GetAllProperties() ([]models.Property, error) {
	var properties []models.Property
	err := gdb.db.Order("created_at DESC").Find(&properties).Error
	return properties, err
}

// GetPropertiesWithSort retrieves all properties with custom sorting
func (gdb *GormDB) GetPropertiesWithSort(sortBy string) ([]models.Property, error) {
	var properties []models.Property

	// Map sort parameter to SQL ORDER BY clause (MySQL syntax)
	// Use CASE to put NULLs last for ASC, first for DESC
	var orderClause string
	switch sortBy {
	case "created_at", "created_at_desc":
		orderClause = "created_at DESC"
	case "created_at_asc":
		orderClause = "created_at ASC"
	case "price_asc":
		orderClause = "CASE WHEN price IS NULL THEN 1 ELSE 0 END, price ASC"
	case "price_desc":
		orderClause = "CASE WHEN price IS NULL THEN 1 ELSE 0 END, price DESC"
	case "area_desc":
		orderClause = "CASE WHEN area IS NULL THEN 1 ELSE 0 END, area DESC"
	case "bedrooms_desc":
		orderClause = "CASE WHEN bedrooms IS NULL THEN 1 ELSE 0 END, bedrooms DESC"
	default:
		orderClause = "created_at DESC"
	}

	err := gdb.db.Order(orderClause).Find(&properties).Error
	return properties, err
}

// GetPropertyByID retrieves a property by ID
func (gdb *GormDB) GetPropertyByID(id string) (*models.Property, error) {
	var property models.Property
	err := gdb.db.Where("id = ?", id).First(&property).Error
	if err != nil {
		return nil, err
	}
	return &property, nil
}

// GetActiveProperties retrieves all active properties
func (gdb *GormDB) GetActiveProperties() ([]models.Property, error) {
	var properties []models.Property
	err := gdb.db.Where("status = ?", models.PropertyStatusActive).Order("created_at DESC").Find(&properties).Error
	return properties, err
}

// MarkPropertyAsRemoved marks a property as removed (logical deletion)
func (gdb *GormDB) MarkPropertyAsRemoved(id string) error {
	now := time.Now()
	return gdb.db.Model(&models.Property{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     models.PropertyStatusRemoved,
			"removed_at": &now,
		}).Error
}

// MarkPropertiesAsRemoved marks multiple properties as removed
func (gdb *GormDB) MarkPropertiesAsRemoved(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now()
	return gdb.db.Model(&models.Property{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"status":     models.PropertyStatusRemoved,
			"removed_at": &now,
		}).Error
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from a listing title
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStrip.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
