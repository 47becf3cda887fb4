package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/civicdesk/complaint-service/internal/domain"
)

func TestDefaultTableMapping(t *testing.T) {
	table := DefaultTable()

	cases := map[domain.ComplaintCategory]string{
		domain.CategoryPotholes:    "roads",
		domain.CategoryStreetlight: "roads",
		domain.CategoryGarbage:     "sanitation",
		domain.CategoryWaterSupply: "water",
		domain.CategoryDrainage:    "water",
		domain.CategoryOther:       "general",
	}
	for category, dept := range cases {
		assert.Equal(t, dept, table.DepartmentFor(category), "category %s", category)
	}
}

func TestUnmappedCategoryFallsBack(t *testing.T) {
	table := NewTable(map[domain.ComplaintCategory]string{
		domain.CategoryPotholes: "roads",
	}, "")

	assert.Equal(t, DefaultDepartment, table.DepartmentFor(domain.CategoryGarbage))
	assert.Equal(t, DefaultDepartment, table.DepartmentFor(domain.ComplaintCategory("noise")))
}

func TestCustomFallback(t *testing.T) {
	table := NewTable(nil, "public-works")

	assert.Equal(t, "public-works", table.DepartmentFor(domain.CategoryOther))
}
