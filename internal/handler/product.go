package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/quantshop/storefront/internal/domain/product"
)

type productDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Type        string  `json:"type"`
	Price       float64 `json:"price"`
	Featured    bool    `json:"featured"`
}

type priceRangeDTO struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type facetsDTO struct {
	Categories []string       `json:"categories"`
	Types      []string       `json:"types"`
	PriceRange *priceRangeDTO `json:"priceRange"`
}

type searchResponse struct {
	Products []productDTO `json:"products"`
	Total    int          `json:"total"`
	Filters  facetsDTO    `json:"filters"`
}

// SearchProducts handles GET /api/products/search.
func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSearchFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	catalog, err := h.products.ListActive(r.Context())
	if err != nil {
		writeInternalError(w, r, "Failed to list products", err)
		return
	}

	result := product.Search(catalog, filter)

	resp := searchResponse{
		Products: toProductDTOs(result.Products),
		Total:    result.Total,
		Filters: facetsDTO{
			Categories: result.Facets.Categories,
			Types:      result.Facets.Types,
		},
	}
	if pr := result.Facets.PriceRange; pr != nil {
		resp.Filters.PriceRange = &priceRangeDTO{
			Min: pr.Min.InexactFloat64(),
			Max: pr.Max.InexactFloat64(),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type relatedResponse struct {
	Upgrades []productDTO `json:"upgrades"`
	Related  []productDTO `json:"related"`
	Bundles  []productDTO `json:"bundles"`
}

// RelatedProducts handles GET /api/products/{id}/related.
func (h *Handler) RelatedProducts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	catalog, err := h.products.ListActive(r.Context())
	if err != nil {
		writeInternalError(w, r, "Failed to list products", err)
		return
	}

	related := product.Related(catalog, id)
	writeJSON(w, http.StatusOK, relatedResponse{
		Upgrades: toProductDTOs(related.Upgrades),
		Related:  toProductDTOs(related.Related),
		Bundles:  toProductDTOs(related.Bundles),
	})
}

func parseSearchFilter(r *http.Request) (product.Filter, error) {
	q := r.URL.Query()
	filter := product.Filter{
		Query:     q.Get("q"),
		Category:  q.Get("category"),
		Type:      q.Get("type"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}

	if raw := q.Get("minPrice"); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return product.Filter{}, invalidParam("minPrice")
		}
		filter.MinPrice = &v
	}
	if raw := q.Get("maxPrice"); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return product.Filter{}, invalidParam("maxPrice")
		}
		filter.MaxPrice = &v
	}
	if raw := q.Get("featured"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return product.Filter{}, invalidParam("featured")
		}
		filter.Featured = &v
	}
	return filter, nil
}

type paramError string

func (e paramError) Error() string { return "Invalid query parameter: " + string(e) }

func invalidParam(name string) error { return paramError(name) }

func toProductDTOs(products []product.Product) []productDTO {
	out := make([]productDTO, len(products))
	for i, p := range products {
		out[i] = productDTO{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Category:    p.Category,
			Type:        p.Type,
			Price:       p.Price.InexactFloat64(),
			Featured:    p.Featured,
		}
	}
	return out
}
