package api

import (
	"errors"
	"fmt"
)

// NotFoundError represents a resource not found condition with
// contextual information, used when a tool is asked about something
// that does not exist (an image, a manifest resource, a tool name).
type NotFoundError struct {
	// ResourceType categorizes the missing resource
	// (e.g. "image", "tool", "resource").
	ResourceType string

	// ResourceName is the specific identifier that was not found.
	ResourceName string

	// Message provides a custom error message if the default format is
	// insufficient.
	Message string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s not found", e.ResourceType, e.ResourceName)
}

// IsNotFound checks if an error is a NotFoundError using error
// unwrapping.
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// NewNotFoundError creates a new NotFoundError with the specified
// resource type and name.
func NewNotFoundError(resourceType, resourceName string) *NotFoundError {
	return &NotFoundError{
		ResourceType: resourceType,
		ResourceName: resourceName,
	}
}
