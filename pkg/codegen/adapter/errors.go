package adapter

import (
	"errors"
	"fmt"
)

var (
	// ErrTemplateNotFound is returned when a platform has no adapter template
	ErrTemplateNotFound = errors.New("adapter template not found")

	// ErrTemplateExecutionFailed is returned when template execution fails
	ErrTemplateExecutionFailed = errors.New("template execution failed")
)

// IsTemplateExecutionFailedError checks if the error is or wraps ErrTemplateExecutionFailed
func IsTemplateExecutionFailedError(err error) bool {
	return errors.Is(err, ErrTemplateExecutionFailed)
}

// NewTemplateExecutionFailedError creates a new template execution failed error with context
func NewTemplateExecutionFailedError(templateName string, cause error) error {
	return fmt.Errorf("%w for template %s: %v", ErrTemplateExecutionFailed, templateName, cause)
}
