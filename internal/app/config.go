package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (DIR_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (DIR_DATABASE_URL or DATABASE_URL)" flag:"database-url"`

	Redis        RedisConfig
	APIKeyPepper string `usage:"HMAC pepper for API key hashing (DIR_API_KEY_PEPPER)" flag:"api-key-pepper"`

	Checkout  CheckoutConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// RedisConfig configures the cart session store.
type RedisConfig struct {
	Addr     string `default:"127.0.0.1:6379" usage:"Redis address for the cart store"`
	Password string `usage:"Redis password" flag:"redis-password"`
	DB       int    `default:"0" usage:"Redis database number"`
}

// CheckoutConfig holds the recognized options of the listing checkout
// integration.
type CheckoutConfig struct {
	// Enabled gates whether the integration's lifecycle listeners are
	// registered at all.
	Enabled bool `default:"true" usage:"Enable the listing checkout integration" flag:"enable-checkout-integration"`
	// ListingEndpointSlug is joined to AccountBaseURL to build the
	// post-purchase listing-creation link.
	ListingEndpointSlug string `default:"add-listing" usage:"Account-area endpoint for creating a listing" flag:"listing-endpoint-slug"`
	AccountBaseURL      string `default:"https://example.com/my-account" usage:"Customer account base URL" flag:"account-base-url"`
	// ThankYouAppendText overrides the default call-to-action copy.
	// A %s placeholder receives the listing-creation URL.
	ThankYouAppendText string `usage:"Override for the post-purchase call-to-action text" flag:"thank-you-append-text"`
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

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "DIR",
		Files:     []string{"config.yaml", "/etc/listing-checkout/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set DIR_DATABASE_URL or DATABASE_URL")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables that
// use standard names like DATABASE_URL and PORT to the application's
// DIR_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if v := os.Getenv("REDIS_URL"); v != "" && c.Redis.Addr == "127.0.0.1:6379" {
		c.Redis.Addr = v
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
