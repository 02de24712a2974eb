package handlers

import (
	"errors"
	"log"
	"net/http"

	"advisory-portal/internal/database"
	"advisory-portal/internal/models"
	"advisory-portal/internal/rera"
	"advisory-portal/internal/snapshot"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ReraHandler handles registry verification requests
type ReraHandler struct {
	db       *database.GormDB
	verifier *rera.Verifier
	snapshot *snapshot.Service
}

// NewReraHandler creates a new RERA handler
func NewReraHandler(db *database.GormDB, verifier *rera.Verifier) *ReraHandler {
	return &ReraHandler{
		db:       db,
		verifier: verifier,
		snapshot: snapshot.NewService(db.DB(), nil),
	}
}

type verifyRequest struct {
	ReraID     string  `json:"rera_id" binding:"required"`
	PropertyID *string `json:"property_id"`
}

// VerifySingle verifies one RERA ID against the state registry
func (h *ReraHandler) VerifySingle(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	record, err := h.verifier.VerifySingle(c.Request.Context(), req.ReraID, req.PropertyID)
	if err != nil {
		switch {
		case errors.Is(err, rera.ErrNotRegistered):
			c.JSON(http.StatusNotFound, gin.H{"error": "RERA ID not found in registry", "rera_id": req.ReraID})
		case errors.Is(err, rera.ErrRegistryUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, record)
}

type bulkVerifyRequest struct {
	// Raw newline-delimited IDs pasted from a spreadsheet
	Input string `json:"input"`
	// Or an explicit list
	ReraIDs []string `json:"rera_ids"`
}

// VerifyBulk verifies a batch of RERA IDs sequentially with registry
// pacing. Input is normalized first: trimmed, blanks dropped, and
// duplicates removed keeping first occurrence.
func (h *ReraHandler) VerifyBulk(c *gin.Context) {
	var req bulkVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	var ids []string
	if req.Input != "" {
		ids = rera.NormalizeBulkInput(req.Input)
	} else {
		ids = rera.DedupeIDs(req.ReraIDs)
	}

	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No RERA IDs provided"})
		return
	}

	result := h.verifier.VerifyBulk(c.Request.Context(), ids)

	c.JSON(http.StatusOK, result)
}

// TriggerAutoSync starts the stale-record sweep in the background
func (h *ReraHandler) TriggerAutoSync(c *gin.Context) {
	log.Println("[RERA] Manual auto-sync trigger requested")

	go func() {
		enqueued, err := h.verifier.AutoSync()
		if err != nil {
			log.Printf("[RERA] Manual auto-sync failed: %v", err)
		} else {
			log.Printf("[RERA] Manual auto-sync enqueued %d records", enqueued)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Auto-sync started",
	})
}

// GetRecord returns the cached registry record for a RERA ID
func (h *ReraHandler) GetRecord(c *gin.Context) {
	reraID := c.Param("reraId")

	record, err := h.db.GetReraRecord(reraID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "RERA record not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, record)
}

// ListRecords returns cached registry records with an optional
// verification status filter
func (h *ReraHandler) ListRecords(c *gin.Context) {
	status := models.VerificationStatus(c.Query("status"))
	limit := parseIntQuery(c, "limit", 100)

	records, err := h.db.ListReraRecords(status, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"count":   len(records),
	})
}

// GetStatusSummary returns the verification dashboard counts
func (h *ReraHandler) GetStatusSummary(c *gin.Context) {
	summary, err := h.db.GetReraStatusSummary()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetHistory returns the snapshot history for a RERA ID
func (h *ReraHandler) GetHistory(c *gin.Context) {
	reraID := c.Param("reraId")
	limit := parseIntQuery(c, "limit", 30)

	snapshots, err := h.snapshot.GetHistory(reraID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rera_id":   reraID,
		"snapshots": snapshots,
		"count":     len(snapshots),
	})
}

// GetRecentChanges returns the latest detected registry changes
func (h *ReraHandler) GetRecentChanges(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 50)

	changes, err := h.snapshot.GetRecentChanges(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changes": changes,
		"count":   len(changes),
	})
}
