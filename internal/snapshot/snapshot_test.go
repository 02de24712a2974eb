package snapshot

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
	require.NoError(t, db.AutoMigrate(&models.ReraSnapshot{}, &models.ReraChange{}))

	return NewService(db, time.UTC), db
}

func yesterdaySnapshot(t *testing.T, db *gorm.DB, reraID string, mutate func(*models.ReraSnapshot)) {
	t.Helper()
	snap := &models.ReraSnapshot{
		ReraID:           reraID,
		SnapshotAt:       time.Now().Truncate(24 * time.Hour).Add(-24 * time.Hour),
		ProjectName:      "Green Meadows",
		PromoterName:     "Sunrise Developers",
		ProjectStatus:    models.ProjectUnderConstruction,
		ComplianceStatus: models.ComplianceActive,
	}
	if mutate != nil {
		mutate(snap)
	}
	require.NoError(t, db.Create(snap).Error)
}

func TestDetectChangesFirstVerification(t *testing.T) {
	svc, _ := setupService(t)

	changes, err := svc.DetectChanges(&models.ReraRecord{ReraID: "P001"})
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, models.ChangeTypeNewRecord, changes[0].ChangeType)
}

func TestDetectChangesNoDifference(t *testing.T) {
	svc, db := setupService(t)
	yesterdaySnapshot(t, db, "P001", nil)

	changes, err := svc.DetectChanges(&models.ReraRecord{
		ReraID:           "P001",
		PromoterName:     "Sunrise Developers",
		ProjectStatus:    models.ProjectUnderConstruction,
		ComplianceStatus: models.ComplianceActive,
	})
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestDetectChangesStatusFlip(t *testing.T) {
	svc, db := setupService(t)
	yesterdaySnapshot(t, db, "P001", nil)

	expiry := time.Date(2027, 3, 31, 0, 0, 0, 0, time.UTC)
	changes, err := svc.DetectChanges(&models.ReraRecord{
		ReraID:           "P001",
		PromoterName:     "Sunrise Developers",
		ProjectStatus:    models.ProjectDelayed,
		ComplianceStatus: models.ComplianceSuspended,
		ExpiryDate:       &expiry,
	})
	require.NoError(t, err)
	require.Len(t, changes, 3)

	types := make(map[string]models.ReraChange)
	for _, c := range changes {
		types[c.ChangeType] = c
	}

	statusChange := types[models.ChangeTypeProjectStatus]
	assert.Equal(t, "under-construction", statusChange.OldValue)
	assert.Equal(t, "delayed", statusChange.NewValue)

	assert.Contains(t, types, models.ChangeTypeComplianceStatus)

	expiryChange := types[models.ChangeTypeExpiry]
	assert.Equal(t, "", expiryChange.OldValue)
	assert.Equal(t, "2027-03-31", expiryChange.NewValue)
}

func TestCaptureOneSnapshotPerDay(t *testing.T) {
	svc, db := setupService(t)

	record := &models.ReraRecord{
		ReraID:        "P001",
		ProjectName:   "Green Meadows",
		ProjectStatus: models.ProjectUnderConstruction,
	}
	require.NoError(t, svc.CaptureWithChangeDetection(record))

	// Re-verifying the same day updates today's row instead of adding one
	record.ProjectStatus = models.ProjectCompleted
	require.NoError(t, svc.CaptureWithChangeDetection(record))

	var count int64
	require.NoError(t, db.Model(&models.ReraSnapshot{}).Where("rera_id = ?", "P001").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	history, err := svc.GetHistory("P001", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.ProjectCompleted, history[0].ProjectStatus)
}

func TestCaptureSameDayReverifyDoesNotDuplicateChanges(t *testing.T) {
	svc, db := setupService(t)

	record := &models.ReraRecord{
		ReraID:        "P001",
		ProjectName:   "Green Meadows",
		ProjectStatus: models.ProjectUnderConstruction,
	}
	require.NoError(t, svc.CaptureWithChangeDetection(record))
	require.NoError(t, svc.CaptureWithChangeDetection(record))

	var count int64
	require.NoError(t, db.Model(&models.ReraChange{}).Where("rera_id = ?", "P001").Count(&count).Error)
	assert.Equal(t, int64(1), count, "same-day re-verify must not add another new_record row")
}

func TestCaptureSameDayReverifyReplacesChangeRows(t *testing.T) {
	svc, db := setupService(t)
	yesterdaySnapshot(t, db, "P001", nil)

	record := &models.ReraRecord{
		ReraID:           "P001",
		PromoterName:     "Sunrise Developers",
		ProjectStatus:    models.ProjectDelayed,
		ComplianceStatus: models.ComplianceActive,
	}
	require.NoError(t, svc.CaptureWithChangeDetection(record))
	require.NoError(t, svc.CaptureWithChangeDetection(record))

	changes, err := svc.GetRecentChanges(10)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, models.ChangeTypeProjectStatus, changes[0].ChangeType)

	// A later verify the same day that sees the registry reverted
	// clears the day's change rows
	record.ProjectStatus = models.ProjectUnderConstruction
	require.NoError(t, svc.CaptureWithChangeDetection(record))

	changes, err = svc.GetRecentChanges(10)
	require.NoError(t, err)
	assert.Empty(t, changes)

	var snap models.ReraSnapshot
	require.NoError(t, db.Where("rera_id = ?", "P001").Order("snapshot_at DESC").First(&snap).Error)
	assert.False(t, snap.HasChanged)
}

func TestDayStartUsesConfiguredTimezone(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	svc := NewService(nil, ist)

	// 20:00 UTC on Aug 29 is already 01:30 on Aug 30 in IST
	late := time.Date(2026, 8, 29, 20, 0, 0, 0, time.UTC)
	start := svc.dayStart(late)
	assert.Equal(t, 2026, start.Year())
	assert.Equal(t, time.August, start.Month())
	assert.Equal(t, 30, start.Day())
	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, ist, start.Location())

	// Both IST-morning instants of the same day share one day start
	morning := time.Date(2026, 8, 30, 1, 0, 0, 0, time.UTC)
	assert.True(t, start.Equal(svc.dayStart(morning)))
}

func TestCaptureLinksChangesToSnapshot(t *testing.T) {
	svc, db := setupService(t)
	yesterdaySnapshot(t, db, "P001", nil)

	record := &models.ReraRecord{
		ReraID:           "P001",
		PromoterName:     "New Promoter LLP",
		ProjectStatus:    models.ProjectUnderConstruction,
		ComplianceStatus: models.ComplianceActive,
	}
	require.NoError(t, svc.CaptureWithChangeDetection(record))

	var snap models.ReraSnapshot
	require.NoError(t, db.Where("rera_id = ? AND has_changed = ?", "P001", true).First(&snap).Error)
	assert.Equal(t, "1 changes detected", snap.ChangeNote)

	changes, err := svc.GetRecentChanges(10)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, models.ChangeTypePromoter, changes[0].ChangeType)
	assert.Equal(t, snap.ID, changes[0].SnapshotID)
}
