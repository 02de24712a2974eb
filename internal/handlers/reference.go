package handlers

import (
	"net/http"
	"strconv"

	"advisory-portal/internal/database"
	"advisory-portal/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ReferenceHandler manages the city and zone reference data behind
// property listings and search filters
type ReferenceHandler struct {
	db *database.GormDB
}

// NewReferenceHandler creates a new reference data handler
func NewReferenceHandler(db *database.GormDB) *ReferenceHandler {
	return &ReferenceHandler{db: db}
}

type cityRequest struct {
	Name   string `json:"name" binding:"required"`
	State  string `json:"state"`
	Active *bool  `json:"active"`
}

// ListCities returns cities, active ones only unless ?all=true
func (h *ReferenceHandler) ListCities(c *gin.Context) {
	activeOnly := c.Query("all") != "true"

	cities, err := h.db.ListCities(activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cities": cities,
		"count":  len(cities),
	})
}

// SaveCity creates or updates a city by name
func (h *ReferenceHandler) SaveCity(c *gin.Context) {
	var req cityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	city := &models.City{
		Name:   req.Name,
		State:  req.State,
		Active: true,
	}
	if req.Active != nil {
		city.Active = *req.Active
	}

	if err := h.db.SaveCity(city); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, city)
}

// DeleteCity removes a city and its zones
func (h *ReferenceHandler) DeleteCity(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid city ID"})
		return
	}

	if _, err := h.db.GetCityByID(uint(id)); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "City not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	if err := h.db.DeleteCity(uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "City deleted"})
}

type zoneRequest struct {
	CityID  uint   `json:"city_id" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Pincode string `json:"pincode"`
	Active  *bool  `json:"active"`
}

// ListZones returns zones, optionally filtered by ?city_id=
func (h *ReferenceHandler) ListZones(c *gin.Context) {
	var cityID uint
	if raw := c.Query("city_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid city_id filter"})
			return
		}
		cityID = uint(parsed)
	}

	zones, err := h.db.ListZones(cityID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"zones": zones,
		"count": len(zones),
	})
}

// SaveZone creates or updates a zone within a city
func (h *ReferenceHandler) SaveZone(c *gin.Context) {
	var req zoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if _, err := h.db.GetCityByID(req.CityID); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "City not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	zone := &models.Zone{
		CityID:  req.CityID,
		Name:    req.Name,
		Pincode: req.Pincode,
		Active:  true,
	}
	if req.Active != nil {
		zone.Active = *req.Active
	}

	if err := h.db.SaveZone(zone); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, zone)
}

// DeleteZone removes a zone
func (h *ReferenceHandler) DeleteZone(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid zone ID"})
		return
	}

	if err := h.db.DeleteZone(uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Zone deleted"})
}
