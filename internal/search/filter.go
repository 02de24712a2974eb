package search

import (
	"encoding/json"
	"fmt"
	"strings"

	"advisory-portal/internal/models"

	"github.com/meilisearch/meilisearch-go"
)

type FilterParams struct {
	Query         string
	MinPrice      *int
	MaxPrice      *int
	Bedrooms      []int
	PropertyTypes []string
	CityID        *uint
	ZoneID        *uint
	SortBy        string
	Limit         int64
}

// FilterSearch performs advanced search with filters
func (s *SearchClient) FilterSearch(params FilterParams) ([]models.Property, error) {
	var filters []string

	// Only live listings are searchable
	filters = append(filters, fmt.Sprintf("status = '%s'", models.PropertyStatusActive))

	// Price range filter
	if params.MinPrice != nil {
		filters = append(filters, fmt.Sprintf("price >= %d", *params.MinPrice))
	}
	if params.MaxPrice != nil {
		filters = append(filters, fmt.Sprintf("price <= %d", *params.MaxPrice))
	}

	// Bedroom filter
	if len(params.Bedrooms) > 0 {
		bedFilters := make([]string, len(params.Bedrooms))
		for i, b := range params.Bedrooms {
			bedFilters[i] = fmt.Sprintf("bedrooms = %d", b)
		}
		filters = append(filters, fmt.Sprintf("(%s)", strings.Join(bedFilters, " OR ")))
	}

	// Property type filter
	if len(params.PropertyTypes) > 0 {
		typeFilters := make([]string, len(params.PropertyTypes))
		for i, t := range params.PropertyTypes {
			typeFilters[i] = fmt.Sprintf("property_type = '%s'", t)
		}
		filters = append(filters, fmt.Sprintf("(%s)", strings.Join(typeFilters, " OR ")))
	}

	// Location filters
	if params.CityID != nil {
		filters = append(filters, fmt.Sprintf("city_id = %d", *params.CityID))
	}
	if params.ZoneID != nil {
		filters = append(filters, fmt.Sprintf("zone_id = %d", *params.ZoneID))
	}

	filterStr := strings.Join(filters, " AND ")

	var sort []string
	if params.SortBy != "" {
		sort = []string{params.SortBy}
	}

	if params.Limit == 0 {
		params.Limit = 20
	}

	searchReq := &meilisearch.SearchRequest{
		Limit: params.Limit,
	}

	if filterStr != "" {
		searchReq.Filter = filterStr
	}

	if len(sort) > 0 {
		searchReq.Sort = sort
	}

	searchRes, err := s.client.Index(s.index).Search(params.Query, searchReq)
	if err != nil {
		return nil, err
	}

	// Convert hits to properties
	var properties []models.Property
	for _, hit := range searchRes.Hits {
		hitJSON, err := json.Marshal(hit)
		if err != nil {
			continue
		}

		var property models.Property
		if err := json.Unmarshal(hitJSON, &property); err != nil {
			continue
		}

		properties = append(properties, property)
	}

	return properties, nil
}
