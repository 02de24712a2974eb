package search

import (
	"advisory-portal/internal/models"

	"github.com/meilisearch/meilisearch-go"
)

type SearchClient struct {
	client *meilisearch.Client
	index  string
}

func NewSearchClient(host, apiKey string) *SearchClient {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})

	return &SearchClient{
		client: client,
		index:  "properties",
	}
}

// InitIndex initializes the Meilisearch index
func (s *SearchClient) InitIndex() error {
	// Create index if it doesn't exist
	_, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        s.index,
		PrimaryKey: "id",
	})
	// Ignore error if index already exists
	if err != nil && err.Error() != "index already exists" {
		return err
	}

	// Configure searchable attributes
	_, err = s.client.Index(s.index).UpdateSearchableAttributes(&[]string{
		"title",
		"address",
		"developer",
		"rera_number",
		"property_type",
	})
	if err != nil {
		return err
	}

	// Configure filterable attributes
	_, err = s.client.Index(s.index).UpdateFilterableAttributes(&[]string{
		"id",
		"price",
		"bedrooms",
		"property_type",
		"city_id",
		"zone_id",
		"status",
	})
	if err != nil {
		return err
	}

	// Configure sortable attributes
	_, err = s.client.Index(s.index).UpdateSortableAttributes(&[]string{
		"price",
		"area",
		"bedrooms",
		"created_at",
	})
	if err != nil {
		return err
	}

	return nil
}

// IndexProperty indexes a single property
func (s *SearchClient) IndexProperty(property *models.Property) error {
	_, err := s.client.Index(s.index).AddDocuments([]models.Property{*property})
	return err
}

// IndexProperties indexes multiple properties
func (s *SearchClient) IndexProperties(properties []models.Property) error {
	if len(properties) == 0 {
		return nil
	}
	_, err := s.client.Index(s.index).AddDocuments(properties)
	return err
}

// DeleteProperty removes a property from the index
func (s *SearchClient) DeleteProperty(id string) error {
	_, err := s.client.Index(s.index).DeleteDocument(id)
	return err
}

// SearchRequest represents advanced search parameters
type SearchRequest struct {
	Query                string
	Limit                int64
	Offset               int64
	Filter               []string
	Sort                 []string
	FacetsFilter         []string
	AttributesToRetrieve []string
}

// SearchResult represents search results with facets
type SearchResult struct {
	Hits           []models.Property
	TotalHits      int64
	Facets         map[string]interface{}
	ProcessingTime int64
}

// Search searches for properties with basic options
func (s *SearchClient) Search(query string, limit int64) ([]models.Property, error) {
	result, err := s.AdvancedSearch(SearchRequest{
		Query: query,
		Limit: limit,
	})
	if err != nil {
		return nil, err
	}
	return result.Hits, nil
}

// AdvancedSearch performs advanced search with facets and filters
func (s *SearchClient) AdvancedSearch(req SearchRequest) (*SearchResult, error) {
	if req.Limit == 0 {
		req.Limit = 20
	}

	searchReq := &meilisearch.SearchRequest{
		Limit:  req.Limit,
		Offset: req.Offset,
	}

	// Add filters
	if len(req.Filter) > 0 {
		filterStr := ""
		for i, f := range req.Filter {
			if i > 0 {
				filterStr += " AND "
			}
			filterStr += f
		}
		searchReq.Filter = filterStr
	}

	if len(req.Sort) > 0 {
		searchReq.Sort = req.Sort
	}

	if len(req.FacetsFilter) > 0 {
		searchReq.Facets = req.FacetsFilter
	}

	if len(req.AttributesToRetrieve) > 0 {
		searchReq.AttributesToRetrieve = req.AttributesToRetrieve
	}

	searchRes, err := s.client.Index(s.index).Search(req.Query, searchReq)
	if err != nil {
		return nil, err
	}

	properties := make([]models.Property, 0, len(searchRes.Hits))
	for _, hit := range searchRes.Hits {
		property := parsePropertyFromHit(hit)
		properties = append(properties, property)
	}

	var facets map[string]interface{}
	if searchRes.FacetDistribution != nil {
		facets, _ = searchRes.FacetDistribution.(map[string]interface{})
	}

	result := &SearchResult{
		Hits:           properties,
		TotalHits:      searchRes.EstimatedTotalHits,
		Facets:         facets,
		ProcessingTime: searchRes.ProcessingTimeMs,
	}

	return result, nil
}

// parsePropertyFromHit converts a search hit to a Property
func parsePropertyFromHit(hit interface{}) models.Property {
	hitMap := hit.(map[string]interface{})
	property := models.Property{
		ID:           getString(hitMap, "id"),
		Title:        getString(hitMap, "title"),
		Slug:         getString(hitMap, "slug"),
		ImageURL:     getString(hitMap, "image_url"),
		Address:      getString(hitMap, "address"),
		Developer:    getString(hitMap, "developer"),
		PropertyType: getString(hitMap, "property_type"),
		ReraNumber:   getString(hitMap, "rera_number"),
		Status:       models.PropertyStatus(getString(hitMap, "status")),
	}

	// Parse numeric fields
	if price, ok := hitMap["price"].(float64); ok {
		priceInt := int(price)
		property.Price = &priceInt
	}
	if area, ok := hitMap["area"].(float64); ok {
		property.Area = &area
	}
	if bedrooms, ok := hitMap["bedrooms"].(float64); ok {
		bedroomsInt := int(bedrooms)
		property.Bedrooms = &bedroomsInt
	}
	if cityID, ok := hitMap["city_id"].(float64); ok {
		id := uint(cityID)
		property.CityID = &id
	}
	if zoneID, ok := hitMap["zone_id"].(float64); ok {
		id := uint(zoneID)
		property.ZoneID = &id
	}

	return property
}

// getString safely extracts a string from map
func getString(m map[string]interface{}, key string) string {
	if val, ok := m[key].(string); ok {
		return val
	}
	return ""
}

// GetFacets retrieves facet distribution for specified fields
func (s *SearchClient) GetFacets(facets []string) (map[string]interface{}, error) {
	searchRes, err := s.client.Index(s.index).Search("", &meilisearch.SearchRequest{
		Limit:  0,
		Facets: facets,
	})
	if err != nil {
		return nil, err
	}

	if searchRes.FacetDistribution != nil {
		if facetMap, ok := searchRes.FacetDistribution.(map[string]interface{}); ok {
			return facetMap, nil
		}
	}
	return map[string]interface{}{}, nil
}
