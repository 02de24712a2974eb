package handlers

import (
	"net/http"

	"advisory-portal/internal/database"
	"advisory-portal/internal/models"
	"advisory-portal/internal/scoring"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ScoreHandler handles property scoring requests
type ScoreHandler struct {
	db    *database.GormDB
	scale *scoring.Scale
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(db *database.GormDB, scale *scoring.Scale) *ScoreHandler {
	return &ScoreHandler{db: db, scale: scale}
}

// GetCatalog returns the scoring rubric: categories, fields, and maximums
func (h *ScoreHandler) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories": scoring.Catalog(),
		"max_total":  scoring.OverallMax(),
	})
}

type scoreRequest struct {
	CriteriaValues        map[string]int    `json:"criteria_values"`
	FieldNotes            map[string]string `json:"field_notes"`
	KeyStrengths          []string          `json:"key_strengths"`
	AreasOfConcern        []string          `json:"areas_of_concern"`
	RecommendationSummary string            `json:"recommendation_summary"`
	ScoredBy              string            `json:"scored_by"`
}

// SaveScore creates or replaces a property's rubric assessment.
// Totals and the grade are always computed server-side from the
// submitted criterion values.
func (h *ScoreHandler) SaveScore(c *gin.Context) {
	propertyID := c.Param("id")

	if _, err := h.db.GetPropertyByID(propertyID); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	// An empty map is a valid all-blank rubric (missing fields count
	// as 0); only an absent field is rejected
	if req.CriteriaValues == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "criteria_values is required"})
		return
	}

	if err := scoring.Validate(req.CriteriaValues); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	totals := scoring.Aggregate(req.CriteriaValues)

	score := &models.PropertyScore{
		PropertyID:             propertyID,
		CriteriaValues:         req.CriteriaValues,
		FieldNotes:             req.FieldNotes,
		LocationScoreTotal:     totals.Location,
		AmenitiesScoreTotal:    totals.Amenities,
		LegalScoreTotal:        totals.Legal,
		ValueScoreTotal:        totals.Value,
		DeveloperScoreTotal:    totals.Developer,
		ConstructionScoreTotal: totals.Construction,
		OverallScoreTotal:      totals.Overall,
		OverallGrade:           h.scale.GradeFor(totals.Overall),
		KeyStrengths:           req.KeyStrengths,
		AreasOfConcern:         req.AreasOfConcern,
		RecommendationSummary:  req.RecommendationSummary,
		ScoredBy:               req.ScoredBy,
	}

	if err := h.db.SaveScore(score); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, score)
}

// GetScore returns a property's rubric assessment
func (h *ScoreHandler) GetScore(c *gin.Context) {
	propertyID := c.Param("id")

	score, err := h.db.GetScoreByProperty(propertyID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Score not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, score)
}

// DeleteScore removes a property's rubric assessment
func (h *ScoreHandler) DeleteScore(c *gin.Context) {
	propertyID := c.Param("id")

	if err := h.db.DeleteScore(propertyID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Score deleted"})
}

// ListScores returns all scores, ranked by overall total
func (h *ScoreHandler) ListScores(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 100)

	scores, err := h.db.ListScores(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"scores": scores,
		"count":  len(scores),
	})
}

// GetScoringStats returns scored/unscored coverage over active listings
func (h *ScoreHandler) GetScoringStats(c *gin.Context) {
	stats, err := h.db.GetScoringStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}
