package scoring

import (
	"fmt"
	"sort"

	"advisory-portal/internal/config"
)

// Totals holds the aggregated rubric sums for one assessment
type Totals struct {
	Location     int `json:"location_score_total"`
	Amenities    int `json:"amenities_score_total"`
	Legal        int `json:"legal_score_total"`
	Value        int `json:"value_score_total"`
	Developer    int `json:"developer_score_total"`
	Construction int `json:"construction_score_total"`
	Overall      int `json:"overall_score_total"`
}

// CategoryTotal sums the values of a category's fields. A missing key
// counts as 0. Pure function over the input map.
func CategoryTotal(values map[string]int, cat Category) int {
	total := 0
	for _, def := range catalog {
		if def.Category != cat {
			continue
		}
		for _, f := range def.Fields {
			total += values[f.Key]
		}
	}
	return total
}

// OverallTotal sums all six category totals
func OverallTotal(values map[string]int) int {
	total := 0
	for _, cat := range Categories() {
		total += CategoryTotal(values, cat)
	}
	return total
}

// Aggregate computes all category totals and the overall total in one pass
func Aggregate(values map[string]int) Totals {
	t := Totals{
		Location:     CategoryTotal(values, CategoryLocation),
		Amenities:    CategoryTotal(values, CategoryAmenities),
		Legal:        CategoryTotal(values, CategoryLegal),
		Value:        CategoryTotal(values, CategoryValue),
		Developer:    CategoryTotal(values, CategoryDeveloper),
		Construction: CategoryTotal(values, CategoryConstruction),
	}
	t.Overall = t.Location + t.Amenities + t.Legal + t.Value + t.Developer + t.Construction
	return t
}

// Validate checks that every key belongs to the catalog and every value
// is within [0, max] for its field. Out-of-range input is rejected here
// so an inflated value can never leak into a stored total.
func Validate(values map[string]int) error {
	for key, val := range values {
		f, ok := LookupField(key)
		if !ok {
			return fmt.Errorf("unknown score field %q", key)
		}
		if val < 0 || val > f.Max {
			return fmt.Errorf("score field %q value %d out of range [0, %d]", key, val, f.Max)
		}
	}
	return nil
}

// Scale converts an overall total into a letter grade. Thresholds are
// configuration: the grading policy belongs to the advisory team.
type Scale struct {
	thresholds []config.GradeThreshold
}

// NewScale builds a scale from configured thresholds, ordered by
// descending minimum so the first match wins.
func NewScale(thresholds []config.GradeThreshold) *Scale {
	ts := make([]config.GradeThreshold, len(thresholds))
	copy(ts, thresholds)
	sort.Slice(ts, func(i, j int) bool {
		return ts[i].Min > ts[j].Min
	})
	return &Scale{thresholds: ts}
}

// DefaultScale returns a scale built from the default grading config
func DefaultScale() *Scale {
	return NewScale(config.DefaultConfig().Grading.Thresholds)
}

// GradeFor returns the letter grade for an overall total. Totals below
// every threshold fall into the last (lowest) grade.
func (s *Scale) GradeFor(total int) string {
	for _, t := range s.thresholds {
		if total >= t.Min {
			return t.Grade
		}
	}
	if len(s.thresholds) == 0 {
		return ""
	}
	return s.thresholds[len(s.thresholds)-1].Grade
}
