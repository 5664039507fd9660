package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Store backend names accepted by Config.Store.
const (
	StorePostgres = "postgres"
	StoreFile     = "file"
)

// Config holds the complete application configuration, loadable from
// environment variables (SHOP_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	Store       string `default:"postgres" usage:"Storage backend: postgres or file"`
	DatabaseURL string `usage:"PostgreSQL connection URL (SHOP_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	File        FileStoreConfig
	Stripe      StripeConfig
	Checkout    CheckoutConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// FileStoreConfig locates the JSON documents used by the flat-file backend.
type FileStoreConfig struct {
	ProductsPath string `default:"db/seed/products.json" usage:"Products JSON document path" flag:"products-path"`
	OrdersPath   string `default:"data/orders.json" usage:"Orders JSON document path" flag:"orders-path"`
}

// StripeConfig holds payment processor credentials.
type StripeConfig struct {
	SecretKey string `usage:"Stripe secret key (SHOP_STRIPE_SECRET_KEY)" flag:"stripe-secret-key"`
	BaseURL   string `default:"" usage:"Override Stripe API base URL (testing)" flag:"stripe-base-url"`
}

// CheckoutConfig holds the redirect URLs used when a cart omits its own.
type CheckoutConfig struct {
	SuccessURL string `default:"http://localhost:3000/success?session_id={CHECKOUT_SESSION_ID}" usage:"Default checkout success redirect" flag:"success-url"`
	CancelURL  string `default:"http://localhost:3000/cancel" usage:"Default checkout cancel redirect" flag:"cancel-url"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "SHOP",
		Files:     []string{"config.yaml", "/etc/shop/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	switch cfg.Store {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("database URL is required: set SHOP_DATABASE_URL or DATABASE_URL")
		}
	case StoreFile:
	default:
		return nil, errors.Errorf("unknown store backend %q", cfg.Store)
	}

	if cfg.Stripe.SecretKey == "" {
		return nil, errors.New("Stripe secret key is required: set SHOP_STRIPE_SECRET_KEY")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's SHOP_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if c.Stripe.SecretKey == "" {
		if v := os.Getenv("STRIPE_SECRET_KEY"); v != "" {
			c.Stripe.SecretKey = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
