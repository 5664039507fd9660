package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/quantshop/storefront/internal/domain/order"
)

const (
	listAllOrdersSQL = `SELECT id, COALESCE(product_id, ''), amount, created_at
		FROM orders ORDER BY created_at`

	createOrderSQL = `INSERT INTO orders (id, product_id, amount, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4)`

	upsertOrderSQL = `INSERT INTO orders (id, product_id, amount, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4)
		ON CONFLICT (id) DO NOTHING`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// ListAll returns the full order history, oldest first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listAllOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// Create appends a new order.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	_, err := r.pool.Exec(ctx, createOrderSQL, o.ID, o.ProductID, o.Amount, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

// Upsert inserts an order, skipping IDs that are already present. It is used
// by the seeder, which may run against an already-seeded database.
func (r *OrderRepository) Upsert(ctx context.Context, o *order.Order) error {
	_, err := r.pool.Exec(ctx, upsertOrderSQL, o.ID, o.ProductID, o.Amount, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting order %q: %w", o.ID, err)
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o      order.Order
		amount decimal.Decimal
	)
	err := row.Scan(&o.ID, &o.ProductID, &amount, &o.CreatedAt)
	o.Amount = amount
	return o, err
}
