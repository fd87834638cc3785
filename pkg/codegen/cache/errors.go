package cache

import "errors"

// Sentinels returned by every Cache implementation. Callers treat all of
// them as a miss and render instead.
var (
	ErrCacheMiss        = errors.New("cache miss")
	ErrCacheUnavailable = errors.New("cache unavailable")
	ErrInvalidCacheKey  = errors.New("invalid cache key")
)

// IsCacheMiss reports whether no rendered set was stored for the fingerprint
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}
