package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/platinummonkey/flare/pkg/codegen"
)

// MultiLevelCache checks L1 (memory) before L2 (Redis). L2 hits back-fill L1.
type MultiLevelCache struct {
	config *Config
	l1     Cache
	l2     Cache
	counts counters
}

// NewCache builds a cache from configuration
func NewCache(config *Config) (Cache, error) {
	if config == nil {
		config = DefaultConfig()
	}

	var l1, l2 Cache
	if config.EnableL1 {
		l1 = NewMemoryCache(config)
	}

	if config.EnableL2 {
		if config.L2Addr == "" {
			return nil, fmt.Errorf("L2 cache enabled but no Redis address provided")
		}
		rc := NewRedisCache(redis.NewClient(&redis.Options{
			Addr:     config.L2Addr,
			Password: config.L2Password,
			DB:       config.L2DB,
		}), config)
		rc.ownsClient = true
		l2 = rc
	}

	return NewMultiLevelCache(config, l1, l2), nil
}

// NewMultiLevelCache composes existing caches. Either level may be nil.
func NewMultiLevelCache(config *Config, l1, l2 Cache) *MultiLevelCache {
	if config == nil {
		config = DefaultConfig()
	}
	return &MultiLevelCache{
		config: config,
		l1:     l1,
		l2:     l2,
	}
}

// Get retrieves an artifact set from the first level that has it
func (c *MultiLevelCache) Get(ctx context.Context, fingerprint string) ([]codegen.Artifact, error) {
	if err := ValidateCacheKey(fingerprint); err != nil {
		return nil, err
	}

	if c.l1 != nil {
		artifacts, err := c.l1.Get(ctx, fingerprint)
		if err == nil {
			c.counts.hit()
			c.counts.l1.Add(1)
			return artifacts, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			return nil, err
		}
	}

	if c.l2 != nil {
		artifacts, err := c.l2.Get(ctx, fingerprint)
		if err == nil {
			c.counts.hit()
			c.counts.l2.Add(1)
			if c.l1 != nil {
				_ = c.l1.Set(ctx, fingerprint, artifacts)
			}
			return artifacts, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			c.counts.miss()
			return nil, err
		}
	}

	c.counts.miss()
	return nil, ErrCacheMiss
}

// Set stores an artifact set in every level
func (c *MultiLevelCache) Set(ctx context.Context, fingerprint string, artifacts []codegen.Artifact) error {
	if c.l1 != nil {
		if err := c.l1.Set(ctx, fingerprint, artifacts); err != nil {
			return err
		}
	}
	if c.l2 != nil {
		if err := c.l2.Set(ctx, fingerprint, artifacts); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes an artifact set from every level
func (c *MultiLevelCache) Delete(ctx context.Context, fingerprint string) error {
	var errs []error
	if c.l1 != nil {
		errs = append(errs, c.l1.Delete(ctx, fingerprint))
	}
	if c.l2 != nil {
		errs = append(errs, c.l2.Delete(ctx, fingerprint))
	}
	return errors.Join(errs...)
}

// Stats returns combined statistics. ItemCount is the L1 count when L1 is
// enabled, otherwise the L2 count.
func (c *MultiLevelCache) Stats(ctx context.Context) (*Stats, error) {
	stats := c.counts.snapshot(0)

	for _, level := range []Cache{c.l1, c.l2} {
		if level == nil {
			continue
		}
		levelStats, err := level.Stats(ctx)
		if err != nil {
			return nil, err
		}
		stats.ItemCount = levelStats.ItemCount
		break
	}

	return stats, nil
}

// Close closes every level
func (c *MultiLevelCache) Close() error {
	var errs []error
	if c.l1 != nil {
		errs = append(errs, c.l1.Close())
	}
	if c.l2 != nil {
		errs = append(errs, c.l2.Close())
	}
	return errors.Join(errs...)
}
