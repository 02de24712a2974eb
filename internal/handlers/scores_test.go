package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"advisory-portal/internal/database"
	"advisory-portal/internal/models"
	"advisory-portal/internal/scoring"
)

func setupScoreRouter(t *testing.T) (*gin.Engine, *database.GormDB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	gdb := database.NewGormDBFromDB(db)
	require.NoError(t, gdb.InitSchema())

	h := NewScoreHandler(gdb, scoring.DefaultScale())

	r := gin.New()
	r.GET("/api/score-catalog", h.GetCatalog)
	r.POST("/api/property-scores/:id", h.SaveScore)
	r.GET("/api/property-scores/:id", h.GetScore)
	r.DELETE("/api/property-scores/:id", h.DeleteScore)
	r.GET("/api/property-scores", h.ListScores)
	return r, gdb
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSaveScoreComputesTotalsServerSide(t *testing.T) {
	r, gdb := setupScoreRouter(t)

	p := &models.Property{Title: "Scored Property"}
	require.NoError(t, gdb.SaveProperty(p))

	w := postJSON(t, r, "/api/property-scores/"+p.ID, map[string]interface{}{
		"criteria_values": map[string]int{
			"transport":    8,
			"infra":        7,
			"titleClarity": 8,
		},
		"scored_by": "advisor@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var score models.PropertyScore
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &score))
	assert.Equal(t, 15, score.LocationScoreTotal)
	assert.Equal(t, 8, score.LegalScoreTotal)
	assert.Equal(t, 23, score.OverallScoreTotal)
	assert.Equal(t, "D", score.OverallGrade)
}

func TestSaveScoreAcceptsEmptyRubric(t *testing.T) {
	r, gdb := setupScoreRouter(t)

	p := &models.Property{Title: "Scored Property"}
	require.NoError(t, gdb.SaveProperty(p))

	// An all-blank rubric is valid: every field counts as 0
	w := postJSON(t, r, "/api/property-scores/"+p.ID, map[string]interface{}{
		"criteria_values": map[string]int{},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var score models.PropertyScore
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &score))
	assert.Equal(t, 0, score.OverallScoreTotal)
	assert.Equal(t, "D", score.OverallGrade)
}

func TestSaveScoreMissingCriteriaValues(t *testing.T) {
	r, gdb := setupScoreRouter(t)

	p := &models.Property{Title: "Scored Property"}
	require.NoError(t, gdb.SaveProperty(p))

	w := postJSON(t, r, "/api/property-scores/"+p.ID, map[string]interface{}{
		"scored_by": "advisor@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "criteria_values is required")
}

func TestSaveScoreRejectsUnknownField(t *testing.T) {
	r, gdb := setupScoreRouter(t)

	p := &models.Property{Title: "Scored Property"}
	require.NoError(t, gdb.SaveProperty(p))

	w := postJSON(t, r, "/api/property-scores/"+p.ID, map[string]interface{}{
		"criteria_values": map[string]int{"vibes": 5},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown score field")
}

func TestSaveScoreRejectsOutOfRangeValue(t *testing.T) {
	r, gdb := setupScoreRouter(t)

	p := &models.Property{Title: "Scored Property"}
	require.NoError(t, gdb.SaveProperty(p))

	w := postJSON(t, r, "/api/property-scores/"+p.ID, map[string]interface{}{
		"criteria_values": map[string]int{"transport": 99},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "out of range")

	// Nothing stored for a rejected submission
	_, err := gdb.GetScoreByProperty(p.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSaveScoreUnknownProperty(t *testing.T) {
	r, _ := setupScoreRouter(t)

	w := postJSON(t, r, "/api/property-scores/no-such-id", map[string]interface{}{
		"criteria_values": map[string]int{"transport": 5},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetScoreNotFound(t *testing.T) {
	r, _ := setupScoreRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/property-scores/missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteScoreThenGet(t *testing.T) {
	r, gdb := setupScoreRouter(t)

	p := &models.Property{Title: "Scored Property"}
	require.NoError(t, gdb.SaveProperty(p))

	w := postJSON(t, r, "/api/property-scores/"+p.ID, map[string]interface{}{
		"criteria_values": map[string]int{"transport": 5},
	})
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodDelete, "/api/property-scores/"+p.ID, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/property-scores/"+p.ID, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCatalog(t *testing.T) {
	r, _ := setupScoreRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/score-catalog", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Categories []scoring.CategoryDef `json:"categories"`
		MaxTotal   int                   `json:"max_total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Categories, 6)
	assert.Equal(t, 100, body.MaxTotal)
}
