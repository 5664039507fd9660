package product

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Filter holds the recognized catalog search options. Zero values mean
// "not supplied"; pointer fields distinguish absent from zero.
type Filter struct {
	// Query matches case-insensitively against name and description.
	Query string
	// Category filters by exact category; empty or "all" matches everything.
	Category string
	// MinPrice and MaxPrice are inclusive bounds.
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	// Type filters by exact product type.
	Type string
	// Featured, when set, keeps only products matching the flag.
	Featured *bool
	// SortBy names the sort field; defaults to "name".
	SortBy string
	// SortOrder is "asc" or "desc"; defaults to "asc".
	SortOrder string
}

// PriceRange is the catalog-wide minimum and maximum product price.
type PriceRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Facets describe the full catalog, independent of any applied filters, so
// clients can render filter controls. PriceRange is nil for an empty catalog.
type Facets struct {
	Categories []string
	Types      []string
	PriceRange *PriceRange
}

// SearchResult holds the filtered products plus catalog facets.
type SearchResult struct {
	Products []Product
	Total    int
	Facets   Facets
}

// Search filters and sorts a catalog snapshot. Filtering is conjunctive:
// a product must satisfy every supplied filter. Sorting is stable, so ties
// keep the order the catalog was received in. Search never mutates its input.
func Search(catalog []Product, f Filter) SearchResult {
	matched := make([]Product, 0, len(catalog))
	for _, p := range catalog {
		if matches(p, f) {
			matched = append(matched, p)
		}
	}

	sortProducts(matched, f.SortBy, f.SortOrder)

	return SearchResult{
		Products: matched,
		Total:    len(matched),
		Facets:   collectFacets(catalog),
	}
}

func matches(p Product, f Filter) bool {
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	if f.Category != "" && f.Category != "all" && p.Category != f.Category {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.Type != "" && p.Type != f.Type {
		return false
	}
	if f.Featured != nil && p.Featured != *f.Featured {
		return false
	}
	return true
}

func sortProducts(products []Product, sortBy, sortOrder string) {
	desc := sortOrder == "desc"

	var less func(a, b Product) bool
	switch sortBy {
	case "price":
		less = func(a, b Product) bool { return a.Price.LessThan(b.Price) }
	case "category":
		less = func(a, b Product) bool { return a.Category < b.Category }
	case "type":
		less = func(a, b Product) bool { return a.Type < b.Type }
	case "description":
		less = func(a, b Product) bool { return a.Description < b.Description }
	default:
		less = func(a, b Product) bool { return a.Name < b.Name }
	}

	sort.SliceStable(products, func(i, j int) bool {
		if desc {
			return less(products[j], products[i])
		}
		return less(products[i], products[j])
	})
}

// collectFacets gathers distinct categories and types in order of first
// appearance, plus the catalog-wide price range.
func collectFacets(catalog []Product) Facets {
	f := Facets{
		Categories: distinct(catalog, func(p Product) string { return p.Category }),
		Types:      distinct(catalog, func(p Product) string { return p.Type }),
	}

	for i, p := range catalog {
		if i == 0 {
			f.PriceRange = &PriceRange{Min: p.Price, Max: p.Price}
			continue
		}
		if p.Price.LessThan(f.PriceRange.Min) {
			f.PriceRange.Min = p.Price
		}
		if p.Price.GreaterThan(f.PriceRange.Max) {
			f.PriceRange.Max = p.Price
		}
	}
	return f
}

func distinct(catalog []Product, key func(Product) string) []string {
	seen := make(map[string]struct{}, len(catalog))
	out := make([]string, 0, len(catalog))
	for _, p := range catalog {
		k := key(p)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
