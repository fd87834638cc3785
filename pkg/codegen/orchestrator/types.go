package orchestrator

import (
	"io/fs"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/flare/pkg/codegen/cache"
	"github.com/platinummonkey/flare/pkg/codegen/config"
	"github.com/platinummonkey/flare/pkg/observability"
)

// Config holds engine configuration
type Config struct {
	// Parallel execution
	MaxParallelWorkers int // Maximum number of platforms rendered concurrently (default: 4)

	// Permissions for created directories and files
	DirPerm  fs.FileMode
	FilePerm fs.FileMode
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		MaxParallelWorkers: config.DefaultMaxParallelWorkers,
		DirPerm:            config.DefaultDirPerm,
		FilePerm:           config.DefaultFilePerm,
	}
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *logrus.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics records run metrics into m
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithCache renders through c, keyed by descriptor fingerprint
func WithCache(c cache.Cache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithTracer overrides the tracer taken from the global provider
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}
