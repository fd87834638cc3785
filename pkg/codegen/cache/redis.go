package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/platinummonkey/flare/pkg/codegen"
)

// RedisCache is a shared L2 cache storing JSON-encoded artifact sets
type RedisCache struct {
	client     *redis.Client
	prefix     string
	ttl        time.Duration
	ownsClient bool
	counts     counters
}

// NewRedisCache wraps an existing client. The caller keeps ownership of it.
func NewRedisCache(client *redis.Client, config *Config) *RedisCache {
	if config == nil {
		config = DefaultConfig()
	}
	return &RedisCache{
		client: client,
		prefix: config.L2Prefix,
		ttl:    config.L2TTL,
	}
}

func (c *RedisCache) key(fingerprint string) string {
	return c.prefix + ":" + FormatCacheKey(fingerprint)
}

// Get retrieves a cached artifact set
func (c *RedisCache) Get(ctx context.Context, fingerprint string) ([]codegen.Artifact, error) {
	if err := ValidateCacheKey(fingerprint); err != nil {
		return nil, err
	}

	data, err := c.client.Get(ctx, c.key(fingerprint)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.counts.miss()
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	var artifacts []codegen.Artifact
	if err := json.Unmarshal(data, &artifacts); err != nil {
		// A corrupt entry is dropped and reported as a miss
		_ = c.client.Del(ctx, c.key(fingerprint)).Err()
		c.counts.miss()
		return nil, ErrCacheMiss
	}

	c.counts.hit()
	return artifacts, nil
}

// Set stores an artifact set with the configured TTL
func (c *RedisCache) Set(ctx context.Context, fingerprint string, artifacts []codegen.Artifact) error {
	if err := ValidateCacheKey(fingerprint); err != nil {
		return err
	}
	if artifacts == nil {
		return fmt.Errorf("artifacts cannot be nil")
	}

	data, err := json.Marshal(artifacts)
	if err != nil {
		return fmt.Errorf("failed to encode artifacts: %w", err)
	}

	if err := c.client.Set(ctx, c.key(fingerprint), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

// Delete removes a cached artifact set
func (c *RedisCache) Delete(ctx context.Context, fingerprint string) error {
	if err := ValidateCacheKey(fingerprint); err != nil {
		return err
	}
	if err := c.client.Del(ctx, c.key(fingerprint)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

// Stats returns cache statistics. ItemCount counts keys under the prefix.
func (c *RedisCache) Stats(ctx context.Context) (*Stats, error) {
	keys, err := c.client.Keys(ctx, c.prefix+":*").Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	return c.counts.snapshot(int64(len(keys))), nil
}

// Ping checks connectivity
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the client when the cache created it
func (c *RedisCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}
