package handlers

import (
	"log"
	"net/http"
	"time"

	"advisory-portal/internal/cleanup"
	"advisory-portal/internal/database"
	"advisory-portal/internal/models"
	"advisory-portal/internal/scheduler"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles back-office dashboard and maintenance requests
type AdminHandler struct {
	db             *database.GormDB
	scheduler      *scheduler.Scheduler
	worker         *scheduler.QueueWorker
	cleanupService *cleanup.Service
	cleanupConfig  cleanup.CleanupConfig
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *database.GormDB, sched *scheduler.Scheduler, worker *scheduler.QueueWorker, cleanupCfg cleanup.CleanupConfig) *AdminHandler {
	return &AdminHandler{
		db:             db,
		scheduler:      sched,
		worker:         worker,
		cleanupService: cleanup.NewService(db.DB()),
		cleanupConfig:  cleanupCfg,
	}
}

// GetStats returns system statistics
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats := make(map[string]interface{})
	db := h.db.DB()

	// Property counts by status
	var activeCount, removedCount int64
	db.Model(&models.Property{}).Where("status = ?", models.PropertyStatusActive).Count(&activeCount)
	db.Model(&models.Property{}).Where("status = ?", models.PropertyStatusRemoved).Count(&removedCount)

	stats["properties"] = map[string]interface{}{
		"active":  activeCount,
		"removed": removedCount,
		"total":   activeCount + removedCount,
	}

	// Rubric coverage
	scoringStats, err := h.db.GetScoringStats()
	if err != nil {
		log.Printf("Failed to get scoring stats: %v", err)
	} else {
		stats["scoring"] = scoringStats
	}

	// Report workflow counts
	reportStats, err := h.db.GetReportStats()
	if err != nil {
		log.Printf("Failed to get report stats: %v", err)
	} else {
		stats["reports"] = reportStats
	}

	// Registry verification dashboard
	reraSummary, err := h.db.GetReraStatusSummary()
	if err != nil {
		log.Printf("Failed to get RERA summary: %v", err)
	} else {
		stats["rera"] = reraSummary
	}

	// Registry changes (last 7 days)
	last7days := time.Now().AddDate(0, 0, -7)
	var recentChanges int64
	db.Model(&models.ReraChange{}).Where("detected_at >= ?", last7days).Count(&recentChanges)
	stats["changes"] = map[string]interface{}{
		"last_7_days": recentChanges,
	}

	// Lead funnel counts
	leadCounts := make(map[string]int64)
	for _, stage := range []models.LeadStage{
		models.LeadStageNew, models.LeadStageContacted, models.LeadStageNurturing,
		models.LeadStageConverted, models.LeadStageCold,
	} {
		var count int64
		db.Model(&models.Lead{}).Where("stage = ?", stage).Count(&count)
		leadCounts[string(stage)] = count
	}
	stats["leads"] = leadCounts

	// Delete logs statistics
	deleteStats, err := h.cleanupService.GetDeleteStats()
	if err != nil {
		log.Printf("Failed to get delete stats: %v", err)
	} else {
		stats["deletions"] = deleteStats
	}

	c.JSON(http.StatusOK, stats)
}

// GetRecentActivity returns recently updated listings
func (h *AdminHandler) GetRecentActivity(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 50)

	var properties []models.Property
	err := h.db.DB().Order("updated_at DESC").Limit(limit).Find(&properties).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"properties": properties,
		"count":      len(properties),
	})
}

// GetQueueStats returns verification queue statistics
func (h *AdminHandler) GetQueueStats(c *gin.Context) {
	if h.worker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Queue worker not available (MySQL/GORM required)",
		})
		return
	}

	c.JSON(http.StatusOK, h.worker.GetQueueStats())
}

// RunCleanup triggers physical deletion of expired removed properties.
// Pass ?dry_run=true to preview without deleting.
func (h *AdminHandler) RunCleanup(c *gin.Context) {
	cfg := h.cleanupConfig
	cfg.DryRun = c.Query("dry_run") == "true"

	log.Printf("Admin: Cleanup requested (dry_run=%v)", cfg.DryRun)

	result, err := h.cleanupService.PhysicallyDelete(cfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetDeleteLogs returns recent physical deletion log entries
func (h *AdminHandler) GetDeleteLogs(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 50)

	logs, err := h.cleanupService.GetRecentDeleteLogs(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}

// TriggerAutoSync manually runs the registry auto-sync sweep
func (h *AdminHandler) TriggerAutoSync(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Scheduler not available (MySQL/GORM required)",
		})
		return
	}

	log.Println("Admin: Manual auto-sync trigger requested")

	go func() {
		if err := h.scheduler.RunNow(); err != nil {
			log.Printf("Admin: Manual auto-sync failed: %v", err)
		} else {
			log.Println("Admin: Manual auto-sync completed successfully")
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Auto-sync started",
	})
}
