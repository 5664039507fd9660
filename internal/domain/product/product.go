package product

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product represents a catalog item available for purchase.
type Product struct {
	ID          string
	Name        string
	Description string
	Category    string
	Type        string
	Price       decimal.Decimal
	Featured    bool
	Active      bool
}

// Repository defines read operations for the product catalog.
type Repository interface {
	// ListActive returns every active product in the catalog.
	ListActive(ctx context.Context) ([]Product, error)
}
