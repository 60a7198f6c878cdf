package domain

import (
	"errors"
	"fmt"
)

// Predefined domain errors.
var (
	// ErrNotFound indicates the resource does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists indicates the resource already exists.
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrInvalidInput indicates malformed input. Never reaches the model or the network layer.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized indicates a missing, invalid or expired credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates an ownership violation (acting on another user's resource).
	ErrForbidden = errors.New("forbidden")
	// ErrModelUnavailable indicates the upstream model service is unreachable or timed out.
	// Surfaced as a transient, retryable condition; never auto-retried.
	ErrModelUnavailable = errors.New("model service unavailable")
	// ErrInternal indicates an internal error.
	ErrInternal = errors.New("internal error")
)

// DomainError is a typed error carrying a stable code and a user-safe message.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface (used for logs and internal propagation).
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// UserMessage returns the user-facing message without internal details.
func (e *DomainError) UserMessage() string {
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a resource-not-found error.
func NewNotFoundError(resourceType, name string) error {
	return &DomainError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s '%s' not found", resourceType, name),
		Err:     ErrNotFound,
	}
}

// NewAlreadyExistsError creates a resource-already-exists error.
func NewAlreadyExistsError(resourceType, name string) error {
	return &DomainError{
		Code:    "ALREADY_EXISTS",
		Message: fmt.Sprintf("%s '%s' already exists", resourceType, name),
		Err:     ErrAlreadyExists,
	}
}

// NewInvalidInputError creates a validation error.
func NewInvalidInputError(message string) error {
	return &DomainError{
		Code:    "INVALID_INPUT",
		Message: message,
		Err:     ErrInvalidInput,
	}
}

// NewForbiddenError creates an ownership-violation error.
func NewForbiddenError(message string) error {
	return &DomainError{
		Code:    "FORBIDDEN",
		Message: message,
		Err:     ErrForbidden,
	}
}

// NewModelUnavailableError creates an upstream-unavailable error.
func NewModelUnavailableError(err error) error {
	return &DomainError{
		Code:    "MODEL_UNAVAILABLE",
		Message: "the scheduling assistant is temporarily unavailable, please try again",
		Err:     fmt.Errorf("%w: %v", ErrModelUnavailable, err),
	}
}

// NewInternalError creates an internal error without exposing details.
func NewInternalError(err error) error {
	return &DomainError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Err:     fmt.Errorf("%w: %v", ErrInternal, err),
	}
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists reports whether err is an already-exists error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsInvalidInput reports whether err is a validation error.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUnauthorized reports whether err is an authentication error.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsForbidden reports whether err is an ownership error.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsModelUnavailable reports whether err is an upstream-unavailable error.
func IsModelUnavailable(err error) bool {
	return errors.Is(err, ErrModelUnavailable)
}

// NotSavedError reports a model response that could not be persisted.
// The exchange is still usable by the caller, who decides whether to show
// it flagged as unsaved.
type NotSavedError struct {
	Err error
}

func (e *NotSavedError) Error() string {
	return fmt.Sprintf("exchange not saved: %v", e.Err)
}

func (e *NotSavedError) Unwrap() error {
	return e.Err
}

// IsNotSaved reports whether err indicates a persistence failure after a
// successful model call.
func IsNotSaved(err error) bool {
	var nse *NotSavedError
	return errors.As(err, &nse)
}
