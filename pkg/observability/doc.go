// Package observability provides structured logging, Prometheus metrics, and OpenTelemetry tracing.
//
// # Overview
//
// This package centralizes the ambient infrastructure used by the generation
// engine and the CLI: logrus loggers, a Prometheus registry of generation
// metrics, an optional OTLP trace exporter, and health endpoints for the
// long-running watch mode.
//
// # Structured Logging
//
// Create logger:
//
//	logger, err := observability.NewLogger("info", "text", os.Stderr)
//	logger.WithField("run_id", runID).Info("generation complete")
//
// Attach trace context:
//
//	entry := observability.WithTraceContext(ctx, logger.WithField("platform", "spigot"))
//
// # Prometheus Metrics
//
// Initialize metrics:
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.RecordGeneration(observability.StatusSuccess, time.Since(start))
//
// One-shot CLI runs can dump the registry for a node-exporter textfile collector:
//
//	observability.WriteTextfile(registry, "/var/lib/node_exporter/flare.prom")
//
// # Tracing
//
// The engine always creates spans through the global otel API. Exporting is
// opt-in:
//
//	tp, err := observability.InitTracing(ctx, observability.OTelConfig{
//		Enabled:  true,
//		Endpoint: "localhost:4317",
//		Insecure: true,
//	}, logger)
//	defer observability.ShutdownTracing(ctx, tp, logger)
//
// # Health
//
//	checker := observability.NewHealthChecker(redisClient, version)
//	checker.RecordGeneration(err)
//	router.HandleFunc("/healthz", checker.Readiness)
package observability
