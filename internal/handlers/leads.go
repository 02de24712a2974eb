package handlers

import (
	"log"
	"net/http"
	"time"

	"advisory-portal/internal/database"
	"advisory-portal/internal/models"
	"advisory-portal/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LeadHandler handles lead capture and nurturing requests
type LeadHandler struct {
	db     *database.GormDB
	engine *notify.Engine
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(db *database.GormDB, engine *notify.Engine) *LeadHandler {
	return &LeadHandler{db: db, engine: engine}
}

type leadRequest struct {
	Name       string  `json:"name" binding:"required"`
	Phone      string  `json:"phone" binding:"required"`
	Email      string  `json:"email"`
	Interest   string  `json:"interest"`
	PropertyID *string `json:"property_id"`
	Source     string  `json:"source"`
}

// CaptureLead registers a prospect from an enquiry form
func (h *LeadHandler) CaptureLead(c *gin.Context) {
	var req leadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if req.PropertyID != nil {
		if _, err := h.db.GetPropertyByID(*req.PropertyID); err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}
	}

	lead := &models.Lead{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Phone:      req.Phone,
		Email:      req.Email,
		Interest:   req.Interest,
		PropertyID: req.PropertyID,
		Source:     req.Source,
		Stage:      models.LeadStageNew,
	}

	if err := h.db.CreateLead(lead); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, lead)
}

// ListLeads returns leads with an optional stage filter
func (h *LeadHandler) ListLeads(c *gin.Context) {
	stage := models.LeadStage(c.Query("stage"))
	limit := parseIntQuery(c, "limit", 100)

	leads, err := h.db.ListLeads(stage, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leads": leads,
		"count": len(leads),
	})
}

type stageRequest struct {
	Stage string `json:"stage" binding:"required"`
}

// UpdateStage moves a lead to a new funnel stage
func (h *LeadHandler) UpdateStage(c *gin.Context) {
	id := c.Param("id")

	var req stageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	stage := models.LeadStage(req.Stage)
	switch stage {
	case models.LeadStageNew, models.LeadStageContacted, models.LeadStageNurturing,
		models.LeadStageConverted, models.LeadStageCold:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stage: " + req.Stage})
		return
	}

	if _, err := h.db.GetLeadByID(id); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	if err := h.db.UpdateLeadStage(id, stage); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Stage updated", "stage": stage})
}

// RunNurtureCycle triggers a nurturing run in the background
func (h *LeadHandler) RunNurtureCycle(c *gin.Context) {
	log.Println("[Nurture] Manual cycle trigger requested")

	go func() {
		if _, err := h.engine.RunCycle(time.Now()); err != nil {
			log.Printf("[Nurture] Manual cycle failed: %v", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Nurture cycle started",
	})
}

// GetNurtureRules returns the rule set with per-rule send counts
func (h *LeadHandler) GetNurtureRules(c *gin.Context) {
	stats, err := h.engine.RuleStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rules": stats,
		"count": len(stats),
	})
}

// GetNurtureLogs returns the latest dispatch log entries
func (h *LeadHandler) GetNurtureLogs(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 50)

	logs, err := h.db.GetRecentNurtureLogs(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}
