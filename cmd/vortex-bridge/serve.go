package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/platinummonkey/vortex-bridge/pkg/api"
	"github.com/platinummonkey/vortex-bridge/pkg/async"
	"github.com/platinummonkey/vortex-bridge/pkg/claims"
	"github.com/platinummonkey/vortex-bridge/pkg/config"
	"github.com/platinummonkey/vortex-bridge/pkg/invitations"
	"github.com/platinummonkey/vortex-bridge/pkg/middleware"
	"github.com/platinummonkey/vortex-bridge/pkg/observability"
	"github.com/platinummonkey/vortex-bridge/pkg/session"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := observability.NewLoggerWithFormat(cfg.Observability.Level(), cfg.Observability.Format(), os.Stdout)

	if cfg.Vortex.UsingDemoKey() {
		logger.Warn("VORTEX_API_KEY is not set; using the demo placeholder, JWT generation will fail")
	} else {
		logger.WithField("api_key", cfg.Vortex.KeyPreview()).Info("Vortex API key configured")
	}

	dir, err := loadDirectory(cfg)
	if err != nil {
		return err
	}
	logger.WithField("users", dir.Len()).Info("Directory loaded")

	var (
		registry *prometheus.Registry
		metrics  *observability.Metrics
	)
	if cfg.Observability.MetricsEnabled {
		registry = prometheus.NewRegistry()
		metrics = observability.NewMetrics(registry)
	}

	store, redisClient, err := newSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	if mem, ok := store.(*session.MemoryStore); ok && metrics != nil {
		metrics.RegisterSessionGauge(func() float64 { return float64(mem.Len()) })
	}

	closeStore := func() {
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}

	sweeper, err := session.NewSweeper(store, cfg.Session.SweepSchedule, logger)
	if err != nil {
		closeStore()
		return err
	}

	// tracing starts only after every fallible setup step
	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		closeStore()
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	sweeper.Start()

	client := newVortexClient(cfg, metrics)
	sessions := session.NewManager(dir, store, session.WithTTL(cfg.Session.TTL))
	issuer := claims.NewIssuer(client, claims.WithTTL(cfg.Vortex.AssertionTTL))
	invs := invitations.NewManager(client,
		invitations.WithAcceptConcurrency(cfg.Vortex.AcceptConcurrency),
		invitations.WithMaxAcceptIDs(cfg.Vortex.AcceptMaxIDs),
		invitations.WithLogger(logger),
	)

	apiServer := api.NewServer(api.Config{
		Prefix:             cfg.Server.APIPrefix,
		Cookie:             middleware.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure},
		DevEndpoints:       cfg.Server.DevEndpoints,
		EnforceGroupAccess: cfg.Server.EnforceGroupAccess,
		LoginRateLimit: middleware.RateLimitConfig{
			RequestsPerSecond: cfg.Server.LoginRate,
			Burst:             cfg.Server.LoginBurst,
			IdleTimeout:       middleware.DefaultLoginRateLimitConfig().IdleTimeout,
		},
		CORSOrigins: cfg.Server.CORSOrigins,
	}, api.Dependencies{
		Sessions:    sessions,
		Users:       dir,
		Issuer:      issuer,
		Invitations: invs,
		Logger:      logger,
		Metrics:     metrics,
	})

	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()
	apiServer.StartBackground(bgCtx)

	var handler http.Handler = apiServer
	if cfg.Observability.OTelEnabled {
		handler = otelhttp.NewHandler(handler, "vortex-bridge")
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, observability.NewHealthChecker(redisClient, version))
	if registry != nil {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.HealthAddr(),
		Handler: healthMux,
	}

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout, httpServer, healthServer)
	shutdown.RegisterShutdownFunc(sweeper.Stop)
	shutdown.RegisterShutdownFunc(func(context.Context) error {
		stopBackground()
		return nil
	})
	if redisClient != nil {
		shutdown.RegisterShutdownFunc(func(context.Context) error {
			return redisClient.Close()
		})
	}
	if providers != nil {
		shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
			return observability.ShutdownOTel(ctx, providers, logger)
		})
	}

	serverErrors := async.Merge(
		async.Go(ctx, logger, "api server", listen(httpServer, logger)),
		async.Go(ctx, logger, "health server", listen(healthServer, logger)),
	)

	logger.WithFields(map[string]interface{}{
		"prefix":        cfg.Server.APIPrefix,
		"session_store": cfg.Session.Store,
		"vortex_url":    cfg.Vortex.BaseURL,
	}).Info("Vortex bridge started")

	select {
	case err := <-serverErrors:
		if err == nil {
			return nil
		}
		if shutdownErr := shutdown.Shutdown(); shutdownErr != nil {
			logger.WithError(shutdownErr).Error("Shutdown finished with errors")
		}
		return err
	case <-ctx.Done():
		return shutdown.Shutdown()
	case err := <-waitForSignal(shutdown):
		return err
	}
}

// listen serves until the server is shut down
func listen(srv *http.Server, logger *observability.Logger) func(context.Context) error {
	return func(context.Context) error {
		logger.WithField("addr", srv.Addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func waitForSignal(shutdown *observability.ShutdownManager) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- shutdown.WaitForShutdown()
	}()
	return done
}

func newSessionStore(ctx context.Context, cfg *config.Config) (session.Store, *redis.Client, error) {
	switch cfg.Session.Store {
	case config.StoreRedis:
		client, err := session.NewRedisClient(ctx, session.RedisConfig{
			URL:      cfg.Session.RedisURL,
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		return session.NewRedisStore(client, ""), client, nil
	default:
		return session.NewMemoryStore(), nil, nil
	}
}
