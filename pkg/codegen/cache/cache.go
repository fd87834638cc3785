package cache

import (
	"context"
	"errors"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/platinummonkey/flare/pkg/codegen"
)

// MemoryCache is the in-process level: an LRU bounded by entry count whose
// entries expire after the configured TTL.
type MemoryCache struct {
	entries *lru.LRU[string, []codegen.Artifact]
	counts  counters
}

// NewMemoryCache creates a memory-only cache. A nil config uses defaults.
func NewMemoryCache(config *Config) *MemoryCache {
	if config == nil {
		config = DefaultConfig()
	}
	return &MemoryCache{
		entries: lru.NewLRU[string, []codegen.Artifact](max(config.L1MaxEntries, 1), nil, config.L1TTL),
	}
}

func (c *MemoryCache) Get(ctx context.Context, fingerprint string) ([]codegen.Artifact, error) {
	if err := ValidateCacheKey(fingerprint); err != nil {
		return nil, err
	}

	set, ok := c.entries.Get(FormatCacheKey(fingerprint))
	if !ok {
		c.counts.miss()
		return nil, ErrCacheMiss
	}
	c.counts.hit()
	return codegen.CloneArtifacts(set), nil
}

func (c *MemoryCache) Set(ctx context.Context, fingerprint string, artifacts []codegen.Artifact) error {
	if err := ValidateCacheKey(fingerprint); err != nil {
		return err
	}
	if artifacts == nil {
		return errors.New("artifacts cannot be nil")
	}
	c.entries.Add(FormatCacheKey(fingerprint), codegen.CloneArtifacts(artifacts))
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, fingerprint string) error {
	if err := ValidateCacheKey(fingerprint); err != nil {
		return err
	}
	c.entries.Remove(FormatCacheKey(fingerprint))
	return nil
}

func (c *MemoryCache) Stats(ctx context.Context) (*Stats, error) {
	return c.counts.snapshot(int64(c.entries.Len())), nil
}

// Close drops every entry
func (c *MemoryCache) Close() error {
	c.entries.Purge()
	return nil
}
