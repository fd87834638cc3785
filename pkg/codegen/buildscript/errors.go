package buildscript

import (
	"errors"
	"fmt"
)

var (
	// ErrGeneratorNotFound is returned when no build script generator has the requested name
	ErrGeneratorNotFound = errors.New("build script generator not found")

	// ErrInvalidCoordinate is returned when a dependency is not group:artifact:version
	ErrInvalidCoordinate = errors.New("invalid dependency coordinate")

	// ErrTemplateExecutionFailed is returned when template execution fails
	ErrTemplateExecutionFailed = errors.New("template execution failed")
)

// IsGeneratorNotFoundError checks if the error is or wraps ErrGeneratorNotFound
func IsGeneratorNotFoundError(err error) bool {
	return errors.Is(err, ErrGeneratorNotFound)
}

// NewGeneratorNotFoundError creates a new generator not found error with context
func NewGeneratorNotFoundError(name string) error {
	return fmt.Errorf("%w: %s", ErrGeneratorNotFound, name)
}

// NewTemplateExecutionFailedError creates a new template execution failed error with context
func NewTemplateExecutionFailedError(templateName string, cause error) error {
	return fmt.Errorf("%w for template %s: %v", ErrTemplateExecutionFailed, templateName, cause)
}
