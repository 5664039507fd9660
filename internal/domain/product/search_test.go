package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func dp(v string) *decimal.Decimal {
	dec := decimal.RequireFromString(v)
	return &dec
}

func bp(v bool) *bool {
	return &v
}

func testCatalog() []Product {
	return []Product{
		{ID: "software-basic", Name: "Trader Basic", Description: "Entry level trading bot", Category: "software", Type: "download", Price: d("49.99"), Featured: true, Active: true},
		{ID: "software-pro", Name: "Trader Pro", Description: "Advanced strategies and backtesting", Category: "software", Type: "download", Price: d("149.99"), Active: true},
		{ID: "ebook-beginner", Name: "Trading for Beginners", Description: "Learn the basics", Category: "ebook", Type: "digital", Price: d("19.99"), Featured: true, Active: true},
		{ID: "video-course", Name: "Video Masterclass", Description: "Strategy deep dives", Category: "course", Type: "digital", Price: d("89.00"), Active: true},
	}
}

func ids(products []Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestSearch_Filters(t *testing.T) {
	tests := []struct {
		name    string
		filter  Filter
		wantIDs []string
	}{
		{
			name:    "no filters returns all sorted by name",
			filter:  Filter{},
			wantIDs: []string{"software-basic", "software-pro", "ebook-beginner", "video-course"},
		},
		{
			name:    "category all equals no category filter",
			filter:  Filter{Category: "all"},
			wantIDs: []string{"software-basic", "software-pro", "ebook-beginner", "video-course"},
		},
		{
			name:    "query matches name case-insensitively",
			filter:  Filter{Query: "trader"},
			wantIDs: []string{"software-basic", "software-pro"},
		},
		{
			name:    "query matches description",
			filter:  Filter{Query: "backtesting"},
			wantIDs: []string{"software-pro"},
		},
		{
			name:    "exact category",
			filter:  Filter{Category: "ebook"},
			wantIDs: []string{"ebook-beginner"},
		},
		{
			name:    "price bounds are inclusive",
			filter:  Filter{MinPrice: dp("19.99"), MaxPrice: dp("89.00")},
			wantIDs: []string{"software-basic", "ebook-beginner", "video-course"},
		},
		{
			name:    "type filter",
			filter:  Filter{Type: "digital"},
			wantIDs: []string{"ebook-beginner", "video-course"},
		},
		{
			name:    "featured only",
			filter:  Filter{Featured: bp(true)},
			wantIDs: []string{"software-basic", "ebook-beginner"},
		},
		{
			name:    "filters are conjunctive",
			filter:  Filter{Category: "software", Featured: bp(true)},
			wantIDs: []string{"software-basic"},
		},
		{
			name:    "sort by price descending",
			filter:  Filter{SortBy: "price", SortOrder: "desc"},
			wantIDs: []string{"software-pro", "video-course", "software-basic", "ebook-beginner"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Search(testCatalog(), tt.filter)

			assert.Equal(t, tt.wantIDs, ids(got.Products))
			assert.Equal(t, len(tt.wantIDs), got.Total)
		})
	}
}

func TestSearch_FacetsFromFullCatalog(t *testing.T) {
	// Facets must describe the whole catalog even when the filter excludes
	// everything.
	got := Search(testCatalog(), Filter{Query: "no-such-product"})

	assert.Empty(t, got.Products)
	assert.Equal(t, 0, got.Total)
	assert.Equal(t, []string{"software", "ebook", "course"}, got.Facets.Categories)
	assert.Equal(t, []string{"download", "digital"}, got.Facets.Types)
	require.NotNil(t, got.Facets.PriceRange)
	assert.True(t, got.Facets.PriceRange.Min.Equal(d("19.99")))
	assert.True(t, got.Facets.PriceRange.Max.Equal(d("149.99")))
}

func TestSearch_EmptyCatalog(t *testing.T) {
	got := Search(nil, Filter{})

	assert.Empty(t, got.Products)
	assert.Equal(t, 0, got.Total)
	assert.Nil(t, got.Facets.PriceRange, "empty catalog must not report a zero price range")
}

func TestSearch_StableSortKeepsTies(t *testing.T) {
	catalog := []Product{
		{ID: "a", Name: "Same", Price: d("10"), Active: true},
		{ID: "b", Name: "Same", Price: d("10"), Active: true},
		{ID: "c", Name: "Same", Price: d("10"), Active: true},
	}

	got := Search(catalog, Filter{SortBy: "price"})
	assert.Equal(t, []string{"a", "b", "c"}, ids(got.Products))
}

func TestRelated(t *testing.T) {
	catalog := []Product{
		{ID: "software-basic", Active: true},
		{ID: "software-pro", Active: true},
		{ID: "plugin-pack", Active: true},
		{ID: "complete-suite", Active: true},
	}

	got := Related(catalog, "software-basic")
	assert.Equal(t, []string{"software-pro"}, ids(got.Upgrades),
		"only upgrades present in the catalog are returned")
	assert.Equal(t, []string{"plugin-pack"}, ids(got.Related))
	assert.Equal(t, []string{"complete-suite"}, ids(got.Bundles))
}

func TestRelated_UnknownID(t *testing.T) {
	got := Related(testCatalog(), "no-such-id")
	assert.Empty(t, got.Upgrades)
	assert.Empty(t, got.Related)
	assert.Empty(t, got.Bundles)
}
