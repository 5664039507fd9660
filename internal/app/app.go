package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/quantshop/storefront/internal/domain/checkout"
	"github.com/quantshop/storefront/internal/domain/discount"
	"github.com/quantshop/storefront/internal/domain/order"
	"github.com/quantshop/storefront/internal/domain/product"
	"github.com/quantshop/storefront/internal/filestore"
	"github.com/quantshop/storefront/internal/handler"
	"github.com/quantshop/storefront/internal/payment"
	"github.com/quantshop/storefront/internal/repository"
	"github.com/quantshop/storefront/pkg/health"
	"github.com/quantshop/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, _ *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr), zap.String("store", cfg.Store))

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	// Storage backend.
	var (
		productRepo product.Repository
		orderRepo   order.Repository
	)
	switch cfg.Store {
	case StorePostgres:
		pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := repository.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}

		healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
		productRepo = repository.NewProductRepository(pool)
		orderRepo = repository.NewOrderRepository(pool)
	case StoreFile:
		productRepo = filestore.NewProductStore(cfg.File.ProductsPath)
		orderRepo = filestore.NewOrderStore(cfg.File.OrdersPath)
	default:
		return errors.Errorf("unknown store backend %q", cfg.Store)
	}

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Domain services.
	ledger := discount.NewLedger(discount.DefaultCatalog())

	var stripeOpts []payment.StripeOption
	if cfg.Stripe.BaseURL != "" {
		stripeOpts = append(stripeOpts, payment.WithBaseURL(cfg.Stripe.BaseURL))
	}
	payments := payment.NewStripeClient(cfg.Stripe.SecretKey, stripeOpts...)

	checkoutSvc := checkout.NewService(ledger, payments, checkout.Config{
		DefaultSuccessURL: cfg.Checkout.SuccessURL,
		DefaultCancelURL:  cfg.Checkout.CancelURL,
	})

	// HTTP handlers: health endpoints + API routes on one server.
	h := handler.New(ledger, productRepo, orderRepo, checkoutSvc)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", h.Router())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
