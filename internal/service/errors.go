package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/taskmanager-api/internal/store"
)

// Common service errors. The API layer maps them to status codes.
var (
	// ErrInvalidCredentials is returned for any failed login, without saying
	// whether the email exists.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNoActivity is returned when a task has no entries visible to the caller.
	// It wraps store.ErrNotFound so callers treat it as a missing resource.
	ErrNoActivity = fmt.Errorf("%w: no activity recorded for task", store.ErrNotFound)
)

// ServiceError wraps an unexpected failure with the service and operation
// that produced it.
type ServiceError struct {
	Service   string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	prefix := e.Operation + " operation failed"
	if e.Service != "" {
		prefix = e.Service + " service " + prefix
	}
	if e.Message != "" {
		prefix += ": " + e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	}
	return prefix
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, operation, message string, err error) *ServiceError {
	return &ServiceError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
