package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Order is a completed sale. Orders are append-only: once written they are
// only ever read and aggregated.
type Order struct {
	ID        string
	ProductID string
	Amount    decimal.Decimal
	CreatedAt time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	// ListAll returns the full order history, oldest first.
	ListAll(ctx context.Context) ([]Order, error)
	// Create appends a new order.
	Create(ctx context.Context, o *Order) error
}
