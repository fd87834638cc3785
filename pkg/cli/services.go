package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/platinummonkey/flare/pkg/codegen/artifacts"
	"github.com/platinummonkey/flare/pkg/codegen/cache"
	"github.com/platinummonkey/flare/pkg/codegen/orchestrator"
	"github.com/platinummonkey/flare/pkg/descriptor"
	"github.com/platinummonkey/flare/pkg/observability"
)

// services holds the engine and everything it was wired with for one command
type services struct {
	engine   *orchestrator.Engine
	metrics  *observability.Metrics
	cache    cache.Cache
	redis    *redis.Client
	tracer   *sdktrace.TracerProvider
	archives []artifacts.Manager
	logger   *logrus.Logger
}

// newServices builds the engine from the resolved configuration
func (a *app) newServices(ctx context.Context) (*services, error) {
	s := &services{
		metrics: observability.NewMetrics(prometheus.NewRegistry()),
		logger:  a.logger,
	}

	tp, err := observability.InitTracing(ctx, a.cfg.TelemetryOptions(Version), a.logger)
	if err != nil {
		return nil, err
	}
	s.tracer = tp

	if a.cfg.Cache.Enabled {
		cacheCfg := a.cfg.CacheOptions()
		if cacheCfg.EnableL2 {
			// the client is kept so health checks can ping it
			s.redis = redis.NewClient(&redis.Options{
				Addr:     cacheCfg.L2Addr,
				Password: cacheCfg.L2Password,
				DB:       cacheCfg.L2DB,
			})
			s.cache = cache.NewMultiLevelCache(cacheCfg, cache.NewMemoryCache(cacheCfg), cache.NewRedisCache(s.redis, cacheCfg))
		} else {
			c, err := cache.NewCache(cacheCfg)
			if err != nil {
				_ = s.Close(ctx)
				return nil, err
			}
			s.cache = c
		}
	}

	if dir := a.cfg.Archive.Dir; dir != "" {
		m, err := artifacts.NewLocalManager(dir)
		if err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		s.archives = append(s.archives, m)
	}
	if a.cfg.Archive.S3Bucket != "" {
		m, err := artifacts.NewS3Manager(ctx, a.cfg.S3Options())
		if err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		s.archives = append(s.archives, m)
	}

	opts := []orchestrator.Option{
		orchestrator.WithLogger(a.logger),
		orchestrator.WithMetrics(s.metrics),
	}
	if s.cache != nil {
		opts = append(opts, orchestrator.WithCache(s.cache))
	}
	s.engine = orchestrator.NewEngine(a.cfg.EngineOptions(), opts...)

	return s, nil
}

// archive stores the rendered tree under its fingerprint in every configured manager
func (s *services) archive(ctx context.Context, d *descriptor.PluginDescriptor, fingerprint string) ([]*artifacts.StoreResult, error) {
	if len(s.archives) == 0 {
		return nil, nil
	}

	rendered, err := s.engine.Render(ctx, d)
	if err != nil {
		return nil, err
	}

	results := make([]*artifacts.StoreResult, 0, len(s.archives))
	for _, m := range s.archives {
		res, err := m.Store(ctx, fingerprint, rendered)
		if err != nil {
			return results, fmt.Errorf("archiving generated tree: %w", err)
		}
		results = append(results, res)
	}
	return results, nil
}

// Close releases every resource; it matches observability.ShutdownFunc
func (s *services) Close(ctx context.Context) error {
	var errs []error
	if s.cache != nil {
		errs = append(errs, s.cache.Close())
	}
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	for _, m := range s.archives {
		errs = append(errs, m.Close())
	}
	errs = append(errs, observability.ShutdownTracing(ctx, s.tracer, s.logger))
	return errors.Join(errs...)
}
