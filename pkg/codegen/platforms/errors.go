package platforms

import (
	"errors"
	"fmt"
)

// ErrUnsupportedPlatform is returned for a platform kind outside the closed set
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// NewUnsupportedPlatformError wraps ErrUnsupportedPlatform with the offending value
func NewUnsupportedPlatformError(value string) error {
	return fmt.Errorf("%w: %q", ErrUnsupportedPlatform, value)
}

// IsUnsupportedPlatformError checks if an error is an unsupported platform error
func IsUnsupportedPlatformError(err error) bool {
	return errors.Is(err, ErrUnsupportedPlatform)
}
