package database

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

func setupTestDB(t *testing.T) *GormDB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	gdb := NewGormDBFromDB(db)
	require.NoError(t, gdb.InitSchema())
	return gdb
}

func createTestProperty(t *testing.T, gdb *GormDB, title string) *models.Property {
	t.Helper()
	p := &models.Property{Title: title}
	require.NoError(t, gdb.SaveProperty(p))
	return p
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "green-meadows-phase-ii", Slugify("Green Meadows Phase II"))
	assert.Equal(t, "3bhk-in-whitefield", Slugify("  3BHK in Whitefield!  "))
	assert.Equal(t, "flat-1204", Slugify("Flat #1204"))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestSavePropertyUpsertBySlug(t *testing.T) {
	gdb := setupTestDB(t)

	first := &models.Property{Title: "Green Meadows Phase II"}
	require.NoError(t, gdb.SaveProperty(first))
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, models.PropertyStatusActive, first.Status)

	// Re-saving the same title hits the same slug and updates in place
	price := 8500000
	second := &models.Property{Title: "Green Meadows Phase II", Price: &price}
	require.NoError(t, gdb.SaveProperty(second))
	assert.Equal(t, first.ID, second.ID)

	all, err := gdb.GetAllProperties()
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].Price)
	assert.Equal(t, 8500000, *all[0].Price)
}

func TestSavePropertyPreservesRemovedStatus(t *testing.T) {
	gdb := setupTestDB(t)

	p := createTestProperty(t, gdb, "Lakeview Residency")
	require.NoError(t, gdb.MarkPropertyAsRemoved(p.ID))

	// An update through the upsert path must not resurrect the listing
	update := &models.Property{Title: "Lakeview Residency"}
	require.NoError(t, gdb.SaveProperty(update))

	stored, err := gdb.GetPropertyByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PropertyStatusRemoved, stored.Status)
	assert.NotNil(t, stored.RemovedAt)
}

func TestGetActiveProperties(t *testing.T) {
	gdb := setupTestDB(t)

	active := createTestProperty(t, gdb, "Active Listing")
	removed := createTestProperty(t, gdb, "Removed Listing")
	require.NoError(t, gdb.MarkPropertyAsRemoved(removed.ID))

	props, err := gdb.GetActiveProperties()
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, active.ID, props[0].ID)
}

func TestSaveScoreUpsert(t *testing.T) {
	gdb := setupTestDB(t)
	p := createTestProperty(t, gdb, "Scored Property")

	first := &models.PropertyScore{
		PropertyID:        p.ID,
		CriteriaValues:    map[string]int{"transport": 6},
		OverallScoreTotal: 62,
		OverallGrade:      "B",
	}
	require.NoError(t, gdb.SaveScore(first))

	// Resubmission overwrites, it never creates a second row
	second := &models.PropertyScore{
		PropertyID:        p.ID,
		CriteriaValues:    map[string]int{"transport": 8},
		OverallScoreTotal: 85,
		OverallGrade:      "A",
	}
	require.NoError(t, gdb.SaveScore(second))
	assert.Equal(t, first.ID, second.ID)

	stored, err := gdb.GetScoreByProperty(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 85, stored.OverallScoreTotal)
	assert.Equal(t, "A", stored.OverallGrade)
	assert.Equal(t, 8, stored.CriteriaValues["transport"])

	scores, err := gdb.ListScores(0)
	require.NoError(t, err)
	assert.Len(t, scores, 1)
}

func TestGetScoringStats(t *testing.T) {
	gdb := setupTestDB(t)

	scored := createTestProperty(t, gdb, "Scored")
	createTestProperty(t, gdb, "Unscored")
	removed := createTestProperty(t, gdb, "Removed")
	require.NoError(t, gdb.MarkPropertyAsRemoved(removed.ID))

	require.NoError(t, gdb.SaveScore(&models.PropertyScore{
		PropertyID:        scored.ID,
		OverallScoreTotal: 70,
		OverallGrade:      "B+",
	}))

	stats, err := gdb.GetScoringStats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalActive)
	assert.Equal(t, int64(1), stats.Scored)
	assert.Equal(t, int64(1), stats.Unscored)
	assert.Equal(t, 70.0, stats.AverageScore)
}

func TestReportSectionsPersist(t *testing.T) {
	gdb := setupTestDB(t)
	p := createTestProperty(t, gdb, "Audited Property")

	report := &models.LegalAuditReport{
		PropertyID: p.ID,
		Title:      "Due diligence: Audited Property",
		Ownership: models.ReportSection{
			Summary:  "Single owner, clean chain",
			Verified: true,
			Items: []models.SectionItem{
				{Label: "Sale deed", Status: "verified", DocRef: "SD-2021-1142"},
			},
		},
	}
	require.NoError(t, gdb.CreateReport(report))
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, models.ReportStatusDraft, report.Status)
	assert.Equal(t, models.RiskLevelLow, report.RiskLevel)

	stored, err := gdb.GetReportByID(report.ID)
	require.NoError(t, err)
	assert.True(t, stored.Ownership.Verified)
	assert.Equal(t, "Single owner, clean chain", stored.Ownership.Summary)
	require.Len(t, stored.Ownership.Items, 1)
	assert.Equal(t, "SD-2021-1142", stored.Ownership.Items[0].DocRef)
}

func TestUpdateReportPreservesCreatedAt(t *testing.T) {
	gdb := setupTestDB(t)
	p := createTestProperty(t, gdb, "Audited Property")

	report := &models.LegalAuditReport{PropertyID: p.ID, Title: "First draft"}
	require.NoError(t, gdb.CreateReport(report))
	created := report.CreatedAt

	time.Sleep(10 * time.Millisecond)

	report.Title = "Revised draft"
	report.Status = models.ReportStatusCompleted
	require.NoError(t, gdb.UpdateReport(report))

	stored, err := gdb.GetReportByID(report.ID)
	require.NoError(t, err)
	assert.Equal(t, "Revised draft", stored.Title)
	assert.Equal(t, models.ReportStatusCompleted, stored.Status)
	assert.WithinDuration(t, created, stored.CreatedAt, time.Second)
}

func TestAssignCustomerIdempotent(t *testing.T) {
	gdb := setupTestDB(t)
	p := createTestProperty(t, gdb, "Audited Property")

	report := &models.LegalAuditReport{PropertyID: p.ID, Title: "Report"}
	require.NoError(t, gdb.CreateReport(report))

	customer := &models.Customer{Name: "Asha Rao", Email: "asha@example.com"}
	require.NoError(t, gdb.SaveCustomer(customer))

	require.NoError(t, gdb.AssignCustomer(&models.CustomerAssignment{
		ReportID:   report.ID,
		CustomerID: customer.ID,
	}))

	// Assigning the same pair again upgrades the row, no duplicate
	require.NoError(t, gdb.AssignCustomer(&models.CustomerAssignment{
		ReportID:    report.ID,
		CustomerID:  customer.ID,
		AccessLevel: models.AccessLevelDownload,
	}))

	count, err := gdb.CountAssignments(report.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	assignments, err := gdb.ListAssignments(report.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, models.AccessLevelDownload, assignments[0].AccessLevel)
	assert.Equal(t, "Asha Rao", assignments[0].Customer.Name)
}

func TestRemoveAssignmentAbsentIsNoOp(t *testing.T) {
	gdb := setupTestDB(t)
	p := createTestProperty(t, gdb, "Audited Property")

	report := &models.LegalAuditReport{PropertyID: p.ID, Title: "Report"}
	require.NoError(t, gdb.CreateReport(report))

	require.NoError(t, gdb.RemoveAssignment(report.ID, "no-such-customer"))

	count, err := gdb.CountAssignments(report.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDeleteReportRemovesAssignments(t *testing.T) {
	gdb := setupTestDB(t)
	p := createTestProperty(t, gdb, "Audited Property")

	report := &models.LegalAuditReport{PropertyID: p.ID, Title: "Report"}
	require.NoError(t, gdb.CreateReport(report))

	customer := &models.Customer{Name: "Asha Rao"}
	require.NoError(t, gdb.SaveCustomer(customer))
	require.NoError(t, gdb.AssignCustomer(&models.CustomerAssignment{
		ReportID:   report.ID,
		CustomerID: customer.ID,
	}))

	require.NoError(t, gdb.DeleteReport(report.ID))

	_, err := gdb.GetReportByID(report.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	count, err := gdb.CountAssignments(report.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestListReportsForCustomer(t *testing.T) {
	gdb := setupTestDB(t)
	p := createTestProperty(t, gdb, "Audited Property")

	mine := &models.LegalAuditReport{PropertyID: p.ID, Title: "Visible"}
	require.NoError(t, gdb.CreateReport(mine))
	other := &models.LegalAuditReport{PropertyID: p.ID, Title: "Hidden"}
	require.NoError(t, gdb.CreateReport(other))

	customer := &models.Customer{Name: "Asha Rao"}
	require.NoError(t, gdb.SaveCustomer(customer))
	require.NoError(t, gdb.AssignCustomer(&models.CustomerAssignment{
		ReportID:   mine.ID,
		CustomerID: customer.ID,
	}))

	reports, err := gdb.ListReportsForCustomer(customer.ID)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "Visible", reports[0].Title)
}

func TestSaveCustomerUpsertByEmail(t *testing.T) {
	gdb := setupTestDB(t)

	first := &models.Customer{Name: "Asha Rao", Email: "asha@example.com"}
	require.NoError(t, gdb.SaveCustomer(first))

	second := &models.Customer{Name: "Asha R.", Email: "asha@example.com"}
	require.NoError(t, gdb.SaveCustomer(second))
	assert.Equal(t, first.ID, second.ID)

	stored, err := gdb.GetCustomerByID(first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha R.", stored.Name)
}

func TestLeadLifecycle(t *testing.T) {
	gdb := setupTestDB(t)

	lead := &models.Lead{ID: "lead-1", Name: "Ravi Kumar", Phone: "+919800000001"}
	require.NoError(t, gdb.CreateLead(lead))
	assert.Equal(t, models.LeadStageNew, lead.Stage)

	require.NoError(t, gdb.UpdateLeadStage(lead.ID, models.LeadStageContacted))

	stored, err := gdb.GetLeadByID(lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStageContacted, stored.Stage)

	now := time.Now()
	require.NoError(t, gdb.TouchLead(lead.ID, now))

	stored, err = gdb.GetLeadByID(lead.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastContactAt)

	leads, err := gdb.ListLeads(models.LeadStageContacted, 10)
	require.NoError(t, err)
	assert.Len(t, leads, 1)

	leads, err = gdb.ListLeads(models.LeadStageCold, 10)
	require.NoError(t, err)
	assert.Empty(t, leads)
}

func TestGetReportStats(t *testing.T) {
	gdb := setupTestDB(t)
	p := createTestProperty(t, gdb, "Audited Property")

	require.NoError(t, gdb.CreateReport(&models.LegalAuditReport{PropertyID: p.ID, Title: "A"}))
	require.NoError(t, gdb.CreateReport(&models.LegalAuditReport{
		PropertyID: p.ID,
		Title:      "B",
		Status:     models.ReportStatusCompleted,
		RiskLevel:  models.RiskLevelHigh,
	}))

	stats, err := gdb.GetReportStats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.ByStatus["draft"])
	assert.Equal(t, int64(1), stats.ByStatus["completed"])
	assert.Equal(t, int64(1), stats.ByRisk["high"])
}
