// Command seed-db loads the product catalog and demo order history into
// PostgreSQL. It is idempotent: products are upserted and existing orders are
// left untouched.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/quantshop/storefront/internal/domain/order"
	"github.com/quantshop/storefront/internal/domain/product"
	"github.com/quantshop/storefront/internal/repository"
)

type productJSON struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Type        string          `json:"type"`
	Price       decimal.Decimal `json:"price"`
	Featured    bool            `json:"featured"`
	Active      bool            `json:"active"`
}

type orderJSON struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"createdAt"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
		ordersFile   string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&ordersFile, "orders-file", "db/seed/orders.json", "path to orders JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, ordersFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, ordersFile string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return errors.Wrap(seedProducts(ctx, repository.NewProductRepository(pool), productsFile), "seed products")
	})
	g.Go(func() error {
		return errors.Wrap(seedOrders(ctx, repository.NewOrderRepository(pool), ordersFile), "seed orders")
	})
	return g.Wait()
}

func seedProducts(ctx context.Context, repo *repository.ProductRepository, path string) error {
	slog.Info("reading products file", slog.String("path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		err := repo.Upsert(ctx, &product.Product{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Category:    p.Category,
			Type:        p.Type,
			Price:       p.Price,
			Featured:    p.Featured,
			Active:      p.Active,
		})
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

func seedOrders(ctx context.Context, repo *repository.OrderRepository, path string) error {
	slog.Info("reading orders file", slog.String("path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read orders file")
	}

	var orders []orderJSON
	if err := json.Unmarshal(data, &orders); err != nil {
		return errors.Wrap(err, "parse orders JSON")
	}

	slog.Info("upserting orders", slog.Int("count", len(orders)))

	for _, o := range orders {
		err := repo.Upsert(ctx, &order.Order{
			ID:        o.ID,
			ProductID: o.ProductID,
			Amount:    o.Amount,
			CreatedAt: o.CreatedAt,
		})
		if err != nil {
			return errors.Wrapf(err, "upsert order %s", o.ID)
		}
	}

	return nil
}
