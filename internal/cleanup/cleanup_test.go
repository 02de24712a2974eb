package cleanup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"advisory-portal/internal/models"
)

func setupService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Property{},
		&models.PropertyScore{},
		&models.LegalAuditReport{},
		&models.Customer{},
		&models.CustomerAssignment{},
		&models.DeleteLog{},
	))

	return NewService(db), db
}

func createRemovedProperty(t *testing.T, db *gorm.DB, id string, removedDaysAgo int) *models.Property {
	t.Helper()
	removedAt := time.Now().AddDate(0, 0, -removedDaysAgo)
	p := &models.Property{
		ID:        id,
		Title:     "Removed " + id,
		Slug:      "removed-" + id,
		Status:    models.PropertyStatusRemoved,
		RemovedAt: &removedAt,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestFindExpiredProperties(t *testing.T) {
	svc, db := setupService(t)

	createRemovedProperty(t, db, "old", 120)
	createRemovedProperty(t, db, "recent", 30)
	require.NoError(t, db.Create(&models.Property{
		ID: "active", Title: "Active", Slug: "active",
		Status: models.PropertyStatusActive,
	}).Error)

	expired, err := svc.FindExpiredProperties(90)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "old", expired[0].ID)
}

func TestPhysicallyDeleteCascades(t *testing.T) {
	svc, db := setupService(t)

	p := createRemovedProperty(t, db, "old", 120)
	require.NoError(t, db.Create(&models.PropertyScore{
		PropertyID: p.ID, OverallScoreTotal: 50, OverallGrade: "C+",
	}).Error)
	require.NoError(t, db.Create(&models.LegalAuditReport{
		ID: "r1", PropertyID: p.ID, Title: "Report",
		Status: models.ReportStatusDraft, RiskLevel: models.RiskLevelLow,
	}).Error)
	require.NoError(t, db.Create(&models.CustomerAssignment{
		ReportID: "r1", CustomerID: "c1", AccessLevel: models.AccessLevelView,
	}).Error)

	result, err := svc.PhysicallyDelete(CleanupConfig{RetentionDays: 90, MaxDeletionCount: 100})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TargetCount)
	assert.Equal(t, 1, result.DeletedCount)
	assert.Zero(t, result.ErrorCount)
	assert.Equal(t, []string{"old"}, result.DeletedProperties)

	for _, check := range []struct {
		name  string
		model interface{}
	}{
		{"property", &models.Property{}},
		{"score", &models.PropertyScore{}},
		{"report", &models.LegalAuditReport{}},
		{"assignment", &models.CustomerAssignment{}},
	} {
		var count int64
		require.NoError(t, db.Model(check.model).Count(&count).Error)
		assert.Zero(t, count, "%s rows should be gone", check.name)
	}

	// The deletion leaves an audit trail
	logs, err := svc.GetRecentDeleteLogs(10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "old", logs[0].PropertyID)
	assert.Equal(t, models.DeleteReasonExpired, logs[0].Reason)
}

func TestPhysicallyDeleteDryRun(t *testing.T) {
	svc, db := setupService(t)
	createRemovedProperty(t, db, "old", 120)

	result, err := svc.PhysicallyDelete(CleanupConfig{
		RetentionDays: 90, MaxDeletionCount: 100, DryRun: true,
	})
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.DeletedCount)

	// Nothing actually deleted
	var count int64
	require.NoError(t, db.Model(&models.Property{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var logCount int64
	require.NoError(t, db.Model(&models.DeleteLog{}).Count(&logCount).Error)
	assert.Zero(t, logCount)
}

func TestPhysicallyDeleteSafetyLimit(t *testing.T) {
	svc, db := setupService(t)
	createRemovedProperty(t, db, "a", 120)
	createRemovedProperty(t, db, "b", 120)
	createRemovedProperty(t, db, "c", 120)

	_, err := svc.PhysicallyDelete(CleanupConfig{RetentionDays: 90, MaxDeletionCount: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "safety check failed")

	var count int64
	require.NoError(t, db.Model(&models.Property{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestGetDeleteStats(t *testing.T) {
	svc, db := setupService(t)
	createRemovedProperty(t, db, "old", 120)
	createRemovedProperty(t, db, "recent", 10)

	_, err := svc.PhysicallyDelete(CleanupConfig{RetentionDays: 90, MaxDeletionCount: 100})
	require.NoError(t, err)

	stats, err := svc.GetDeleteStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats["total_deleted"])
	assert.Equal(t, int64(1), stats["currently_removed"])
	assert.Equal(t, 0, stats["expired_ready_for_deletion"])
	assert.Equal(t, int64(1), stats["deleted_last_30_days"])

	byReason := stats["by_reason"].(map[string]int64)
	assert.Equal(t, int64(1), byReason[models.DeleteReasonExpired])
}
