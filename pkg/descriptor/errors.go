package descriptor

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField is returned when a required field is empty
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidEntryPoint is returned when the entry point is not a qualified Java class name
	ErrInvalidEntryPoint = errors.New("invalid entry point")

	// ErrDuplicatePlatform is returned when a platform kind is declared twice
	ErrDuplicatePlatform = errors.New("duplicate platform")

	// ErrNoPlatforms is returned by caller validation when no platform is declared
	ErrNoPlatforms = errors.New("no platforms declared")

	// ErrEntryPointNotFound is returned when no source file exists for the entry point
	ErrEntryPointNotFound = errors.New("entry point source not found")

	// ErrInvalidDescriptorFile is returned when a descriptor file cannot be parsed
	ErrInvalidDescriptorFile = errors.New("invalid descriptor file")
)

// NewMissingFieldError creates a missing field error
func NewMissingFieldError(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}

// NewInvalidEntryPointError creates an invalid entry point error
func NewInvalidEntryPointError(entryPoint, reason string) error {
	return fmt.Errorf("%w: %q: %s", ErrInvalidEntryPoint, entryPoint, reason)
}

// IsConfigurationError checks if an error is caused by an invalid descriptor
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidEntryPoint) ||
		errors.Is(err, ErrDuplicatePlatform) ||
		errors.Is(err, ErrNoPlatforms) ||
		errors.Is(err, ErrEntryPointNotFound) ||
		errors.Is(err, ErrInvalidDescriptorFile)
}
