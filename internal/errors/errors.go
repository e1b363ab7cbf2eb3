// FilePath: server/telemetry/internal/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeDatabase    ErrorType = "database"
	ErrorTypeStorage     ErrorType = "storage"
	ErrorTypeConnection  ErrorType = "connection"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeUnsupported ErrorType = "unsupported"
	ErrorTypeInternal    ErrorType = "internal"
	ErrorTypeUnavailable ErrorType = "service_unavailable"
)

// APIError represents a structured error that can be rendered to API callers
type APIError struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	Code      int       `json:"code"`
	RequestID string    `json:"request_id,omitempty"`
	Details   any       `json:"details,omitempty"`
	err       error     // Internal error for logging
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the internal cause to errors.Is / errors.As
func (e *APIError) Unwrap() error {
	return e.err
}

// WithRequestID adds a request ID to the error
func (e *APIError) WithRequestID(id string) *APIError {
	e.RequestID = id
	return e
}

// WithDetails adds additional details to the error
func (e *APIError) WithDetails(details any) *APIError {
	e.Details = details
	return e
}

func newError(t ErrorType, code int, msg string, err error) *APIError {
	return &APIError{
		Type:    t,
		Message: msg,
		Code:    code,
		err:     err,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(msg string, err error) *APIError {
	return newError(ErrorTypeValidation, http.StatusBadRequest, msg, err)
}

// NewDatabaseError creates a new database error
func NewDatabaseError(msg string, err error) *APIError {
	return newError(ErrorTypeDatabase, http.StatusInternalServerError, msg, err)
}

// NewStorageError creates a new object storage error
func NewStorageError(msg string, err error) *APIError {
	return newError(ErrorTypeStorage, http.StatusBadGateway, msg, err)
}

// NewConnectionError is returned when a backing store cannot be reached at construction
func NewConnectionError(msg string, err error) *APIError {
	return newError(ErrorTypeConnection, http.StatusServiceUnavailable, msg, err)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(msg string, err error) *APIError {
	return newError(ErrorTypeNotFound, http.StatusNotFound, msg, err)
}

// NewUnsupportedError creates a new unsupported error
func NewUnsupportedError(msg string, err error) *APIError {
	return newError(ErrorTypeUnsupported, http.StatusUnprocessableEntity, msg, err)
}

// NewInternalError creates a new internal server error
func NewInternalError(msg string, err error) *APIError {
	return newError(ErrorTypeInternal, http.StatusInternalServerError, msg, err)
}

// NewTooLargeError creates a validation error for an oversized request body
func NewTooLargeError(msg string, err error) *APIError {
	return newError(ErrorTypeValidation, http.StatusRequestEntityTooLarge, msg, err)
}

// NewUnavailableError creates a new service unavailable error
func NewUnavailableError(msg string, err error) *APIError {
	return newError(ErrorTypeUnavailable, http.StatusServiceUnavailable, msg, err)
}

// AsAPIError returns the outermost APIError in err's chain.
// Anything else is wrapped as an internal error.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}
	return NewInternalError("internal error", err)
}

// isType reports whether any APIError in err's tree has type t. Joined
// errors are searched branch by branch.
func isType(err error, t ErrorType) bool {
	for err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.Type == t {
			return true
		}
		switch x := err.(type) {
		case interface{ Unwrap() []error }:
			for _, e := range x.Unwrap() {
				if isType(e, t) {
					return true
				}
			}
			return false
		case interface{ Unwrap() error }:
			err = x.Unwrap()
		default:
			return false
		}
	}
	return false
}

// IsNotFound checks if an error is a NotFound error
func IsNotFound(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// IsValidation checks if an error is a Validation error
func IsValidation(err error) bool {
	return isType(err, ErrorTypeValidation)
}

// IsStorage checks if an error is an object storage error
func IsStorage(err error) bool {
	return isType(err, ErrorTypeStorage)
}

// IsDatabase checks if an error is a database error
func IsDatabase(err error) bool {
	return isType(err, ErrorTypeDatabase)
}

// IsUnsupported checks if an error is an Unsupported error
func IsUnsupported(err error) bool {
	return isType(err, ErrorTypeUnsupported)
}
