package cache

import (
	"encoding/hex"
	"fmt"
)

// Cache Key Format Version: v1
// Format: v1:{fingerprint}
//
// The fingerprint is computed by the engine from the descriptor's canonical
// encoding and the build's output digest. This file only namespaces it.
//
// CHANGING THIS FORMAT INVALIDATES ALL CACHED RENDERS
const keyVersion = "v1"

// FormatCacheKey formats a fingerprint as a storage key
func FormatCacheKey(fingerprint string) string {
	return keyVersion + ":" + fingerprint
}

// ValidateCacheKey checks that fingerprint is a hex-encoded sha256
func ValidateCacheKey(fingerprint string) error {
	if len(fingerprint) != 64 {
		return fmt.Errorf("%w: expected 64 hex characters, got %d", ErrInvalidCacheKey, len(fingerprint))
	}
	if _, err := hex.DecodeString(fingerprint); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCacheKey, err)
	}
	return nil
}
