// Package routing maps complaint categories to the departments that own
// their resolution. The table is injected configuration, not a package-level
// constant, so alternate mappings can be exercised in tests.
package routing

import "github.com/civicdesk/complaint-service/internal/domain"

// DefaultDepartment receives complaints whose category has no mapping.
const DefaultDepartment = "general"

// Table resolves a category to a department name.
type Table struct {
	byCategory map[domain.ComplaintCategory]string
	fallback   string
}

// NewTable builds a table from an explicit mapping. An empty fallback uses
// DefaultDepartment.
func NewTable(mapping map[domain.ComplaintCategory]string, fallback string) Table {
	if fallback == "" {
		fallback = DefaultDepartment
	}
	byCategory := make(map[domain.ComplaintCategory]string, len(mapping))
	for category, dept := range mapping {
		byCategory[category] = dept
	}
	return Table{byCategory: byCategory, fallback: fallback}
}

// DefaultTable returns the stock municipal mapping.
func DefaultTable() Table {
	return NewTable(map[domain.ComplaintCategory]string{
		domain.CategoryPotholes:    "roads",
		domain.CategoryStreetlight: "roads",
		domain.CategoryGarbage:     "sanitation",
		domain.CategoryWaterSupply: "water",
		domain.CategoryDrainage:    "water",
		domain.CategoryOther:       "general",
	}, DefaultDepartment)
}

// DepartmentFor returns the owning department for a category, falling back
// to the default department for unmapped categories.
func (t Table) DepartmentFor(category domain.ComplaintCategory) string {
	if dept, ok := t.byCategory[category]; ok {
		return dept
	}
	return t.fallback
}
