package scoring

// Category groups rubric fields; each category has a fixed point budget
// and the six budgets sum to 100.
type Category string

const (
	CategoryLocation     Category = "location"
	CategoryAmenities    Category = "amenities"
	CategoryLegal        Category = "legal"
	CategoryValue        Category = "value"
	CategoryDeveloper    Category = "developer"
	CategoryConstruction Category = "construction"
)

// Field is one weighted sub-criterion of the scoring rubric
type Field struct {
	Key         string   `json:"key"`
	Label       string   `json:"label"`
	Max         int      `json:"max"`
	Category    Category `json:"category"`
	Description string   `json:"description,omitempty"`
}

// CategoryDef is a category with its point budget and fields
type CategoryDef struct {
	Category Category `json:"category"`
	Label    string   `json:"label"`
	Max      int      `json:"max"`
	Fields   []Field  `json:"fields"`
}

// catalog is the static rubric. Category maxima: 25/20/20/15/10/10.
var catalog = []CategoryDef{
	{
		Category: CategoryLocation,
		Label:    "Location",
		Max:      25,
		Fields: []Field{
			{Key: "transport", Label: "Transport connectivity", Max: 8, Category: CategoryLocation, Description: "Metro, highways, airport access"},
			{Key: "infra", Label: "Civic infrastructure", Max: 7, Category: CategoryLocation, Description: "Roads, drainage, water, power"},
			{Key: "social", Label: "Social infrastructure", Max: 5, Category: CategoryLocation, Description: "Schools, hospitals, retail"},
			{Key: "employment", Label: "Employment hubs", Max: 5, Category: CategoryLocation, Description: "Proximity to business districts"},
		},
	},
	{
		Category: CategoryAmenities,
		Label:    "Amenities",
		Max:      20,
		Fields: []Field{
			{Key: "basicAmenities", Label: "Basic amenities", Max: 8, Category: CategoryAmenities, Description: "Lifts, parking, power backup"},
			{Key: "lifestyleAmenities", Label: "Lifestyle amenities", Max: 7, Category: CategoryAmenities, Description: "Clubhouse, gym, pool, play areas"},
			{Key: "security", Label: "Security", Max: 5, Category: CategoryAmenities, Description: "Gated access, CCTV, staffing"},
		},
	},
	{
		Category: CategoryLegal,
		Label:    "Legal",
		Max:      20,
		Fields: []Field{
			{Key: "titleClarity", Label: "Title clarity", Max: 8, Category: CategoryLegal, Description: "Clean chain of title, no encumbrances"},
			{Key: "approvals", Label: "Statutory approvals", Max: 7, Category: CategoryLegal, Description: "Sanctioned plan, OC/CC, NOCs"},
			{Key: "reraCompliance", Label: "RERA compliance", Max: 5, Category: CategoryLegal, Description: "Valid registration, timely QPRs"},
		},
	},
	{
		Category: CategoryValue,
		Label:    "Value",
		Max:      15,
		Fields: []Field{
			{Key: "priceCompetitiveness", Label: "Price competitiveness", Max: 8, Category: CategoryValue, Description: "Asking price vs comparable supply"},
			{Key: "appreciation", Label: "Appreciation potential", Max: 7, Category: CategoryValue, Description: "Micro-market growth outlook"},
		},
	},
	{
		Category: CategoryDeveloper,
		Label:    "Developer",
		Max:      10,
		Fields: []Field{
			{Key: "trackRecord", Label: "Delivery track record", Max: 6, Category: CategoryDeveloper, Description: "Past projects delivered on time"},
			{Key: "financials", Label: "Financial strength", Max: 4, Category: CategoryDeveloper, Description: "Funding, debt position"},
		},
	},
	{
		Category: CategoryConstruction,
		Label:    "Construction",
		Max:      10,
		Fields: []Field{
			{Key: "buildQuality", Label: "Build quality", Max: 6, Category: CategoryConstruction, Description: "Structure, finishes, MEP systems"},
			{Key: "progress", Label: "Construction progress", Max: 4, Category: CategoryConstruction, Description: "Stage vs committed timeline"},
		},
	},
}

// fieldIndex maps field key to its definition for O(1) validation
var fieldIndex = func() map[string]Field {
	idx := make(map[string]Field)
	for _, cat := range catalog {
		for _, f := range cat.Fields {
			idx[f.Key] = f
		}
	}
	return idx
}()

// Catalog returns the full rubric definition
func Catalog() []CategoryDef {
	return catalog
}

// Categories returns the six categories in display order
func Categories() []Category {
	cats := make([]Category, len(catalog))
	for i, c := range catalog {
		cats[i] = c.Category
	}
	return cats
}

// LookupField returns the definition for a field key
func LookupField(key string) (Field, bool) {
	f, ok := fieldIndex[key]
	return f, ok
}

// CategoryMax returns the point budget for a category, 0 if unknown
func CategoryMax(cat Category) int {
	for _, c := range catalog {
		if c.Category == cat {
			return c.Max
		}
	}
	return 0
}

// OverallMax returns the total point budget across all categories
func OverallMax() int {
	total := 0
	for _, c := range catalog {
		total += c.Max
	}
	return total
}
