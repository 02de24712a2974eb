package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisory-portal/internal/config"
)

// fullMarks returns a value map with every rubric field at its maximum
func fullMarks() map[string]int {
	values := make(map[string]int)
	for _, cat := range Catalog() {
		for _, f := range cat.Fields {
			values[f.Key] = f.Max
		}
	}
	return values
}

func TestCatalogBudgets(t *testing.T) {
	assert.Equal(t, 100, OverallMax())

	expected := map[Category]int{
		CategoryLocation:     25,
		CategoryAmenities:    20,
		CategoryLegal:        20,
		CategoryValue:        15,
		CategoryDeveloper:    10,
		CategoryConstruction: 10,
	}
	for cat, max := range expected {
		assert.Equal(t, max, CategoryMax(cat), "category %s", cat)
	}

	// Each category's field maxima must sum to its budget
	for _, def := range Catalog() {
		sum := 0
		for _, f := range def.Fields {
			sum += f.Max
		}
		assert.Equal(t, def.Max, sum, "category %s field maxima", def.Category)
	}
}

func TestAggregateFullMarks(t *testing.T) {
	totals := Aggregate(fullMarks())

	assert.Equal(t, 25, totals.Location)
	assert.Equal(t, 20, totals.Amenities)
	assert.Equal(t, 20, totals.Legal)
	assert.Equal(t, 15, totals.Value)
	assert.Equal(t, 10, totals.Developer)
	assert.Equal(t, 10, totals.Construction)
	assert.Equal(t, 100, totals.Overall)
}

func TestAggregatePartialInput(t *testing.T) {
	values := map[string]int{
		"transport":    8,
		"titleClarity": 5,
	}

	totals := Aggregate(values)
	assert.Equal(t, 8, totals.Location)
	assert.Equal(t, 5, totals.Legal)
	assert.Equal(t, 0, totals.Amenities)
	assert.Equal(t, 13, totals.Overall)
}

func TestAggregateIsDeterministic(t *testing.T) {
	values := map[string]int{
		"transport":      5,
		"basicAmenities": 4,
		"approvals":      6,
		"appreciation":   3,
		"trackRecord":    2,
		"progress":       1,
	}

	first := Aggregate(values)
	second := Aggregate(values)
	assert.Equal(t, first, second)
	assert.Equal(t, first.Overall, OverallTotal(values))
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(fullMarks()))
	require.NoError(t, Validate(map[string]int{}))
	require.NoError(t, Validate(map[string]int{"security": 0}))

	err := Validate(map[string]int{"vibes": 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown score field")

	err = Validate(map[string]int{"transport": 9})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")

	err = Validate(map[string]int{"transport": -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestDefaultScaleGrades(t *testing.T) {
	scale := DefaultScale()

	cases := []struct {
		total int
		grade string
	}{
		{100, "A+"},
		{90, "A+"},
		{89, "A"},
		{80, "A"},
		{79, "B+"},
		{70, "B+"},
		{69, "B"},
		{60, "B"},
		{59, "C+"},
		{50, "C+"},
		{49, "C"},
		{40, "C"},
		{39, "D"},
		{0, "D"},
	}
	for _, c := range cases {
		assert.Equal(t, c.grade, scale.GradeFor(c.total), "total %d", c.total)
	}
}

func TestScaleSortsThresholds(t *testing.T) {
	// Unordered thresholds still grade correctly
	scale := NewScale([]config.GradeThreshold{
		{Grade: "C", Min: 0},
		{Grade: "A", Min: 80},
		{Grade: "B", Min: 50},
	})

	assert.Equal(t, "A", scale.GradeFor(95))
	assert.Equal(t, "B", scale.GradeFor(60))
	assert.Equal(t, "C", scale.GradeFor(10))
}

func TestScaleEmptyThresholds(t *testing.T) {
	scale := NewScale(nil)
	assert.Equal(t, "", scale.GradeFor(50))
}
