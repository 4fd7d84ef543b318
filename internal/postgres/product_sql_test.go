package postgres

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelpalace/storefront-api/internal/domain/catalog"
)

func TestSearchQuery_NoFilters(t *testing.T) {
	sql, args := searchQuery(catalog.SearchFilter{})

	assert.NotContains(t, sql, "WHERE")
	assert.Contains(t, sql, "ORDER BY product_id")
	assert.Empty(t, args)
}

func TestSearchQuery_SingleFilter(t *testing.T) {
	categoryID := 3
	sql, args := searchQuery(catalog.SearchFilter{CategoryID: &categoryID})

	assert.Contains(t, sql, "WHERE category_id = $1")
	require.Len(t, args, 1)
	assert.Equal(t, 3, args[0])
}

func TestSearchQuery_AllFilters(t *testing.T) {
	categoryID := 3
	minPrice := decimal.RequireFromString("5.00")
	maxPrice := decimal.RequireFromString("20.00")
	subcategory := "Phones"

	sql, args := searchQuery(catalog.SearchFilter{
		CategoryID:  &categoryID,
		MinPrice:    &minPrice,
		MaxPrice:    &maxPrice,
		Subcategory: &subcategory,
	})

	assert.Contains(t, sql, "category_id = $1")
	assert.Contains(t, sql, "price >= $2")
	assert.Contains(t, sql, "price <= $3")
	assert.Contains(t, sql, "subcategory = $4")
	require.Len(t, args, 4)
	assert.Equal(t, "Phones", args[3])
}

// Placeholder numbering must stay contiguous when leading filters are absent.
func TestSearchQuery_SkipsAbsentFilters(t *testing.T) {
	maxPrice := decimal.RequireFromString("20.00")
	subcategory := "Phones"

	sql, args := searchQuery(catalog.SearchFilter{
		MaxPrice:    &maxPrice,
		Subcategory: &subcategory,
	})

	assert.Contains(t, sql, "price <= $1")
	assert.Contains(t, sql, "subcategory = $2")
	assert.NotContains(t, sql, "category_id")
	assert.NotContains(t, sql, "price >=")
	require.Len(t, args, 2)
}
