// Package handler exposes the storefront API over HTTP.
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quantshop/storefront/internal/domain/checkout"
	"github.com/quantshop/storefront/internal/domain/discount"
	"github.com/quantshop/storefront/internal/domain/order"
	"github.com/quantshop/storefront/internal/domain/product"
)

// Handler holds the domain dependencies behind the HTTP endpoints.
type Handler struct {
	ledger   *discount.Ledger
	products product.Repository
	orders   order.Repository
	checkout *checkout.Service

	// now is injectable for deterministic analytics tests.
	now func() time.Time
}

// New constructs a Handler with the required domain dependencies.
func New(
	ledger *discount.Ledger,
	products product.Repository,
	orders order.Repository,
	checkoutSvc *checkout.Service,
) *Handler {
	return &Handler{
		ledger:   ledger,
		products: products,
		orders:   orders,
		checkout: checkoutSvc,
		now:      time.Now,
	}
}

// Router builds the API route table.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Post("/validate-discount", h.ValidateDiscount)
		r.Post("/apply-discount", h.ApplyDiscount)
		r.Get("/products/search", h.SearchProducts)
		r.Get("/products/{id}/related", h.RelatedProducts)
		r.Post("/create-cart-checkout-session", h.CreateCartCheckoutSession)
		r.Get("/stats/enhanced", h.EnhancedStats)
	})

	return r
}
