// Command headlineforge runs the HeadlineForge API gateway and its admin tooling.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	hfhttp "github.com/Strob0t/HeadlineForge/internal/adapter/http"
	hfotel "github.com/Strob0t/HeadlineForge/internal/adapter/otel"
	"github.com/Strob0t/HeadlineForge/internal/adapter/postgres"
	"github.com/Strob0t/HeadlineForge/internal/adapter/webhookhttp"
	"github.com/Strob0t/HeadlineForge/internal/config"
	"github.com/Strob0t/HeadlineForge/internal/logger"
	"github.com/Strob0t/HeadlineForge/internal/middleware"
	"github.com/Strob0t/HeadlineForge/internal/service"
)

func main() {
	args := os.Args[1:]
	cmd := "serve"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "serve":
		err = runServe(args)
	case "migrate":
		err = runMigrate(args)
	case "admin":
		err = runAdmin(args)
	case "help", "--help":
		printHelp()
	default:
		printHelp()
		err = fmt.Errorf("unknown command: %s", cmd)
	}
	if err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Fprintf(os.Stderr, `Usage: headlineforge <command> [options]

Commands:
  serve     Run the HTTP gateway (default)
  migrate   Apply, roll back or inspect database migrations
  admin     Manage tenants, plans and api keys
`)
}

func runServe(args []string) error {
	flags, err := config.ParseFlags(args)
	if err != nil {
		return err
	}
	cfg, cfgPath, err := config.LoadWithCLI(flags)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, closeLog := logger.New(cfg.Logging)
	defer closeLog.Close()
	slog.SetDefault(log)

	slog.Info("config loaded",
		"path", cfgPath,
		"port", cfg.Server.Port,
		"cache_backend", cfg.Cache.Backend,
		"generator", cfg.Generator.Provider,
		"webhook_async", cfg.Webhook.Async,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Telemetry ---

	shutdownOTEL, err := hfotel.Init(ctx, cfg.OTEL)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTEL(sctx); err != nil {
			slog.Error("otel shutdown", "error", err)
		}
	}()
	metrics, err := hfotel.NewMetrics(nil)
	if err != nil {
		return fmt.Errorf("otel metrics: %w", err)
	}

	// --- Infrastructure ---

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	store := postgres.NewStore(pool)

	infra, err := openInfra(ctx, cfg)
	if err != nil {
		return err
	}
	defer infra.Close()

	gen, closeGen, err := newGenerator(ctx, cfg)
	if err != nil {
		return fmt.Errorf("generator: %w", err)
	}
	defer closeGen()

	// --- Services ---

	resolver := service.NewTenantResolver(store, infra.Auth, cfg.Quota.AuthCacheVersion, cfg.Quota.AuthCacheTTL)
	ledger := service.NewQuotaLedger(infra.Counter, infra.Lookup, store, service.QuotaConfig{
		DefaultLimit:  cfg.Quota.DefaultLimit,
		LimitCacheTTL: cfg.Quota.LimitCacheTTL,
		CounterGrace:  cfg.Quota.CounterGrace,
	})
	admission := service.NewAdmissionService(resolver, ledger, metrics)

	dispatcher := service.NewWebhookDispatcher(store, webhookhttp.NewNotifier(cfg.Webhook.Timeout), cfg.Webhook.Concurrency, metrics)
	defer dispatcher.Wait()

	var events service.EventEmitter = dispatcher
	if cfg.Webhook.Async {
		if infra.Queue == nil {
			return errors.New("webhook.async requires nats.url")
		}
		bus := service.NewEventBus(infra.Queue, dispatcher)
		stopBus, err := bus.Start(ctx)
		if err != nil {
			return fmt.Errorf("event subscriber: %w", err)
		}
		defer stopBus()
		events = bus
	}

	usageSvc := service.NewUsageService(ledger, store)
	if cfg.Quota.MeterSync > 0 {
		go usageSvc.RunMeterSync(ctx, cfg.Quota.MeterSync)
	}

	handlers := &hfhttp.Handlers{
		Headlines:   service.NewHeadlineService(store, gen, events, metrics),
		Credentials: service.NewCredentialService(store, resolver),
		Usage:       usageSvc,
		Experiments: service.NewExperimentService(store),
		Readiness:   map[string]hfhttp.Pinger{"postgres": store},
	}
	for name, p := range infra.Pingers {
		handlers.Readiness[name] = p
	}

	// --- HTTP ---

	opts := hfhttp.RouteOptions{
		Admission: middleware.Admission(admission),
		Trace:     hfotel.HTTPMiddleware(cfg.OTEL.ServiceName),
	}
	if cfg.Rate.Enabled {
		rl := middleware.NewRateLimiter(cfg.Rate.RequestsPerSecond, cfg.Rate.Burst)
		stopCleanup := rl.StartCleanup(cfg.Rate.CleanupInterval, cfg.Rate.MaxIdleTime)
		defer stopCleanup()
		opts.Burst = rl.Handler
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(hfhttp.Logger)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(hfhttp.SecurityHeaders)
	r.Use(hfhttp.CORS(cfg.Server.CORSOrigin))
	hfhttp.MountRoutes(r, handlers, opts)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
