// Package observability provides structured logging, Prometheus metrics, and OpenTelemetry tracing.
//
// # Overview
//
// This package centralizes the bridge's observability infrastructure: logrus-backed
// logging, metrics collection, health checks, tracing setup, and graceful shutdown.
//
// # Structured Logging
//
// Create logger:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("port", 8080).Info("Server started")
//
// Context-aware logging:
//
//	observability.FromContext(ctx).WithError(err).Error("Login failed")
//
// FromContext adds the request id, the user id and, when a span is recording,
// the trace and span ids.
//
// # Prometheus Metrics
//
//	metrics := observability.NewMetrics(prometheus.NewRegistry())
//	metrics.LoginsTotal.WithLabelValues("success").Inc()
//	metrics.ObserveUpstream("accept_invitations", 200, elapsed, nil)
//
// # Health Checks
//
//	checker := observability.NewHealthChecker(redisClient, version)
//	observability.RegisterHealthRoutes(mux, checker)
//
// # OpenTelemetry
//
//	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
//		Enabled:     true,
//		Endpoint:    "otel-collector:4317",
//		ServiceName: "vortex-bridge",
//	}, logger)
//	defer observability.ShutdownOTel(ctx, providers, logger)
//
// # Related Packages
//
//   - pkg/config: Observability configuration
//   - pkg/httputil: Request logging middleware
package observability
