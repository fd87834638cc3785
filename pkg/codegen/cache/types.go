package cache

import (
	"context"
	"time"

	"github.com/platinummonkey/flare/pkg/codegen"
	"github.com/platinummonkey/flare/pkg/codegen/config"
)

// Cache stores rendered artifact sets keyed by descriptor fingerprint
//
// Implementations must return copies: callers may mutate what they get back.
type Cache interface {
	Get(ctx context.Context, fingerprint string) ([]codegen.Artifact, error)
	Set(ctx context.Context, fingerprint string, artifacts []codegen.Artifact) error
	Delete(ctx context.Context, fingerprint string) error
	Stats(ctx context.Context) (*Stats, error)
	Close() error
}

// Stats represents cache statistics
type Stats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	L1Hits    int64   `json:"l1_hits,omitempty"`
	L2Hits    int64   `json:"l2_hits,omitempty"`
	HitRate   float64 `json:"hit_rate"`
	ItemCount int64   `json:"item_count"`
}

// Config holds cache configuration
type Config struct {
	// L1 (in-memory) configuration
	EnableL1     bool
	L1MaxEntries int
	L1TTL        time.Duration

	// L2 (Redis) configuration
	EnableL2   bool
	L2Addr     string
	L2Password string
	L2DB       int
	L2TTL      time.Duration
	L2Prefix   string
}

// DefaultConfig returns default cache configuration
func DefaultConfig() *Config {
	return &Config{
		EnableL1:     true,
		L1MaxEntries: config.DefaultCacheMaxEntries,
		L1TTL:        config.DefaultCacheTTL,
		EnableL2:     false,
		L2TTL:        config.DefaultRedisTTL,
		L2Prefix:     config.DefaultRedisPrefix,
	}
}
