package artifacts

import (
	"context"
	"fmt"
	"regexp"

	"github.com/platinummonkey/flare/pkg/codegen"
	"github.com/platinummonkey/flare/pkg/codegen/config"
)

// Manager stores and retrieves packed generated trees, keyed by descriptor
// fingerprint. It lets a build host skip generation when an identical tree
// has already been produced elsewhere.
type Manager interface {
	// Store packs artifacts and saves the archive under key, replacing any
	// previous archive
	Store(ctx context.Context, key string, artifacts []codegen.Artifact) (*StoreResult, error)

	// Fetch loads and unpacks the archive stored under key
	Fetch(ctx context.Context, key string) ([]codegen.Artifact, error)

	// Exists checks if an archive is stored under key
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes the archive stored under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources
	Close() error
}

// StoreResult describes a stored archive
type StoreResult struct {
	Location       string `json:"location"`
	Hash           string `json:"sha256"`
	Size           int64  `json:"size"`
	CompressedSize int64  `json:"compressed_size"`
}

// Config holds S3 archive manager configuration
type Config struct {
	S3Bucket string
	S3Prefix string
	S3Region string

	// S3Endpoint overrides the service endpoint, e.g. for MinIO. Path-style
	// addressing is used whenever it is set.
	S3Endpoint string

	// Static credentials. When empty the default AWS credential chain is used.
	AccessKeyID     string
	SecretAccessKey string

	EnableChecksum bool // Verify checksums on fetch
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		S3Prefix:       config.DefaultS3Prefix,
		EnableChecksum: true,
	}
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateKey checks that key can be used as a file name and an object name
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
