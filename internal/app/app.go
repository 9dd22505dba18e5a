// Package app wires the gateway together: configuration, storage, the
// shop API client, the currency engine, cart sessions, and the HTTP
// server with its middleware stack.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/hbadiar77-commits/satina-mama/internal/barcode"
	"github.com/hbadiar77-commits/satina-mama/internal/checkout"
	"github.com/hbadiar77-commits/satina-mama/internal/currency"
	"github.com/hbadiar77-commits/satina-mama/internal/handler"
	"github.com/hbadiar77-commits/satina-mama/internal/shopapi"
	"github.com/hbadiar77-commits/satina-mama/internal/storage/postgres"
	"github.com/hbadiar77-commits/satina-mama/pkg/health"
	"github.com/hbadiar77-commits/satina-mama/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles
// graceful shutdown. It is the single wiring point for the gateway.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("shop_api", cfg.ShopAPIURL),
	)

	// Local PostgreSQL: terminal settings and the receipt journal.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.AddLivenessCheck("gc-pause", time.Second, health.GCMaxPauseCheck(10*time.Second))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	settingsRepo := postgres.NewSettingsRepository(pool)
	receiptRepo := postgres.NewReceiptRepository(pool)

	// Shop API client.
	client := shopapi.NewClient(lg, cfg.ShopAPIURL, nil)

	// Currency engine: restore the persisted display currency, then pull
	// fresh rates. Both degrade gracefully when a dependency is down.
	engine := currency.NewEngine(lg, settingsRepo, client)
	engine.RestorePreference(ctx)
	engine.LoadRates(ctx, client)

	// Optional barcode index: scans it rules out never hit the shop API.
	var barcodes checkout.BarcodeIndex
	if cfg.BarcodeIndexPath != "" {
		idx, err := barcode.Load(cfg.BarcodeIndexPath)
		if err != nil {
			lg.Warn("Loading barcode index failed, scans go straight to the shop API",
				zap.String("path", cfg.BarcodeIndexPath),
				zap.Error(err),
			)
		} else {
			barcodes = idx
		}
	}

	svc := checkout.NewService(lg, client, client, receiptRepo, barcodes)
	h := handler.New(engine, svc, receiptRepo, settingsRepo)

	api := otelhttp.NewHandler(h.Routes(), "satina-gateway",
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", api)

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
				AllowOrigins: cfg.CORS.Origins,
				AllowHeaders: []string{"Content-Type"},
				MaxAge:       86400,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: flip readiness, drain, then stop.
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
