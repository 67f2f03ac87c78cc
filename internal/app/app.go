package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/velvetree/listing-checkout/internal/checkout"
	"github.com/velvetree/listing-checkout/internal/domain/auth"
	"github.com/velvetree/listing-checkout/internal/handler"
	"github.com/velvetree/listing-checkout/internal/hooks"
	"github.com/velvetree/listing-checkout/internal/storage/postgres"
	"github.com/velvetree/listing-checkout/internal/storage/redis"
	"github.com/velvetree/listing-checkout/pkg/health"
	"github.com/velvetree/listing-checkout/pkg/httpmiddleware"
)

// apiKeyHashes adapts auth.Repository to the middleware's lookup contract.
type apiKeyHashes struct {
	repo auth.Repository
}

func (a apiKeyHashes) FindHash(ctx context.Context, hash string) (string, error) {
	k, err := a.repo.FindByHash(ctx, hash)
	if err != nil {
		return "", err
	}
	return k.KeyHash, nil
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Redis cart store.
	carts, err := redis.NewCartStore(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return errors.Wrap(err, "create cart store")
	}
	defer func() { _ = carts.Close() }()

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	productRepo := postgres.NewProductRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	subscriptionRepo := postgres.NewSubscriptionRepository(pool)
	listingRepo := postgres.NewListingRepository(pool)
	metaRepo := postgres.NewMetadataRepository(pool)
	apikeyRepo := postgres.NewAPIKeyRepository(pool)

	// Lifecycle events + the listing checkout integration.
	registry := hooks.NewRegistry()
	integration := checkout.NewIntegration(checkout.IntegrationConfig{
		Enabled:            cfg.Checkout.Enabled,
		EndpointSlug:       cfg.Checkout.ListingEndpointSlug,
		AccountBaseURL:     cfg.Checkout.AccountBaseURL,
		ThankYouAppendText: cfg.Checkout.ThankYouAppendText,
	}, metaRepo, carts, listingRepo)
	integration.Register(registry)

	checkoutService := checkout.NewService(registry, carts, productRepo, orderRepo, subscriptionRepo)

	// HTTP handlers.
	h := handler.NewHandler(checkoutService, productRepo)
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)

	var apiHandler http.Handler = mux
	if cfg.APIKeyPepper != "" {
		apiHandler = guardCheckout(mux,
			httpmiddleware.APIKeyAuth(apiKeyHashes{repo: apikeyRepo}, []byte(cfg.APIKeyPepper)))
	}

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(apiHandler,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization", "api_key"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("listing-checkout-api", m),
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

// guardCheckout applies the auth middleware to checkout submissions only;
// catalog, cart and health endpoints stay public.
func guardCheckout(next http.Handler, authMW httpmiddleware.Middleware) http.Handler {
	guarded := authMW(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && isCheckoutPath(r.URL.Path) {
			guarded.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isCheckoutPath(path string) bool {
	const suffix = "/checkout"
	return len(path) > len(suffix) && path[len(path)-len(suffix):] == suffix
}
