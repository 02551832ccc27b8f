// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tomtom215/thereiwas/internal/api"
	"github.com/tomtom215/thereiwas/internal/audit"
	"github.com/tomtom215/thereiwas/internal/auth"
	"github.com/tomtom215/thereiwas/internal/authz"
	"github.com/tomtom215/thereiwas/internal/breaker"
	"github.com/tomtom215/thereiwas/internal/config"
	"github.com/tomtom215/thereiwas/internal/database"
	"github.com/tomtom215/thereiwas/internal/events"
	"github.com/tomtom215/thereiwas/internal/ingest"
	"github.com/tomtom215/thereiwas/internal/logging"
	"github.com/tomtom215/thereiwas/internal/metrics"
	"github.com/tomtom215/thereiwas/internal/supervisor"
	"github.com/tomtom215/thereiwas/internal/supervisor/services"
	"github.com/tomtom215/thereiwas/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		FilePath:  cfg.Logging.FilePath,
		Output:    os.Stderr,
	}); err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize logging")
	}

	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
	logging.Info().Str("version", version).Msg("Starting ThereIWas")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Error().Err(err).Msg("ThereIWas stopped with error")
		stop()
		os.Exit(1)
	}
	logging.Info().Msg("Application stopped gracefully")
}

//nolint:gocyclo // sequential wiring
func run(ctx context.Context, cfg *config.Config) error {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().
		Str("driver", db.Driver()).
		Msg("Database initialized successfully")

	seedCtx, cancelSeed := context.WithTimeout(ctx, 30*time.Second)
	err = seedBootstrapAccounts(seedCtx, db, &cfg.Database)
	cancelSeed()
	if err != nil {
		return err
	}

	// Audit
	auditLogger := audit.NewLogger(db, audit.DefaultConfig())
	defer func() {
		if err := auditLogger.Close(); err != nil {
			logging.Error().Err(err).Msg("Error flushing audit log")
		}
	}()

	// Authentication and authorization
	tokens, err := auth.NewTokenManager(&cfg.Security)
	if err != nil {
		return fmt.Errorf("initialize token manager: %w", err)
	}
	var (
		clientLookup auth.ClientTokenLookup = db
		clientCache  *auth.CachedClientTokens
	)
	if cfg.Security.ClientCacheTTL > 0 {
		clientCache = auth.NewCachedClientTokens(db, cfg.Security.ClientCacheSize, cfg.Security.ClientCacheTTL)
		clientLookup = clientCache
	}
	clients := auth.NewClientAuthenticator(clientLookup, auditLogger)
	users := auth.NewUserAuthenticator(db, tokens, auditLogger)
	limiter := auth.NewLoginLimiter(cfg.Security.LoginRatePerMin, cfg.Security.LoginBurst)

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		return fmt.Errorf("initialize authorization: %w", err)
	}

	// Ingestion pipeline
	var storeBreaker, eventsBreaker *breaker.Breaker
	if cfg.Ingest.BreakerEnabled {
		storeBreaker = breaker.New(ingest.StoreBreakerSettings(cfg.Ingest.BreakerFailureThreshold, cfg.Ingest.BreakerTimeout))
		eventsBreaker = breaker.New(events.BreakerSettings(cfg.Ingest))
	}

	publisher, err := events.New(cfg.Events, eventsBreaker)
	if err != nil {
		return fmt.Errorf("initialize event publisher: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event publisher")
		}
	}()

	dispatcherCfg := ingest.DispatcherConfig{
		Store: ingest.NewGuardedStore(ingest.DatabaseStore(db), storeBreaker),
		Resolver: &ingest.AccessPointResolver{
			MaxAttempts:     cfg.Ingest.ResolverMaxAttempts,
			ReportConflicts: cfg.Ingest.ReportAccessPointConflicts,
		},
	}
	if publisher.Backend() != config.EventsNone {
		dispatcherCfg.Events = publisher
	}
	dispatcher := ingest.NewDispatcher(dispatcherCfg)

	// Live position stream, fed from the in-process event bus
	var streamHub *websocket.Hub
	var streamBridge *websocket.Bridge
	handlerCfg := api.HandlerConfig{
		Dispatcher:    dispatcher,
		Positions:     db,
		Pinger:        db,
		Login:         users,
		LoginThrottle: limiter,
		HealthTimeout: api.DefaultHealthTimeout,
	}
	if cfg.Events.StreamEnabled && publisher.Backend() == config.EventsMemory {
		streamHub = websocket.NewHub(int(cfg.Events.BufferSize))
		streamBridge = websocket.NewBridge(publisher, streamHub)
		handlerCfg.Stream = websocket.NewServer(streamHub, cfg.Server.CORSOrigins)
	}

	// HTTP
	handler := api.NewHandler(handlerCfg)
	router := api.NewRouter(
		handler,
		auth.NewMiddleware(clients, tokens, auditLogger, api.RespondError),
		authz.NewMiddleware(enforcer, auditLogger, api.RespondError),
		api.ChiMiddlewareConfigFrom(&cfg.Server),
	)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Supervisor tree
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}
	tree.AddBackgroundService(auditLogger)
	tree.AddBackgroundService(limiter)
	if clientCache != nil {
		tree.AddBackgroundService(clientCache)
	}
	if streamHub != nil {
		tree.AddBackgroundService(streamHub)
		tree.AddBackgroundService(streamBridge)
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree...")
	err = <-tree.ServeBackground(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	return nil
}
