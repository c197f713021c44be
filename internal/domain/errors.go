// Package domain contains the quote model, its rules, and the error taxonomy.
// Errors here describe business failures and carry no transport semantics;
// adapters map them to HTTP status codes or CLI exit codes.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrNotFound indicates the requested entity or key does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a state conflict such as a duplicate quote text.
	ErrConflict = errors.New("conflict")

	// ErrValidation indicates user-supplied data was rejected.
	ErrValidation = errors.New("validation failed")

	// ErrUnavailable indicates the remote endpoint could not be reached or answered non-2xx.
	ErrUnavailable = errors.New("unavailable")

	// ErrMalformedResponse indicates the remote answered with a body that is not a quote list.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrPersistence indicates the durable store rejected a read or write.
	ErrPersistence = errors.New("persistence failure")
)

// NotFoundError provides context for not found errors.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
	}

	return e.Entity + " not found"
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a not found error with context.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError reports a duplicate or otherwise clashing quote.
type ConflictError struct {
	Entity string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Entity, e.Reason)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// NewConflictError creates a conflict error with context.
func NewConflictError(entity, reason string) error {
	return &ConflictError{Entity: entity, Reason: reason}
}

// ValidationError provides context for validation errors.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}

	return "validation failed: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error with context.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewValidationErrorWithValue creates a validation error including the invalid value.
func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// UnavailableError is a transient network failure talking to the remote endpoint.
type UnavailableError struct {
	Service string
	Reason  string
}

func (e *UnavailableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
	}

	return fmt.Sprintf("service %q unavailable", e.Service)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// NewUnavailableError creates an unavailable error with context.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// MalformedResponseError means the remote body could not be read as a list of quotes.
type MalformedResponseError struct {
	Service string
	Reason  string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("service %q returned malformed response: %s", e.Service, e.Reason)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *MalformedResponseError) Unwrap() error {
	return ErrMalformedResponse
}

// NewMalformedResponseError creates a malformed response error.
func NewMalformedResponseError(service, reason string) error {
	return &MalformedResponseError{Service: service, Reason: reason}
}

// PersistenceError wraps a storage failure for a given key.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Key, e.Err)
}

// Is matches ErrPersistence while Unwrap exposes the underlying cause.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError wraps err as a persistence failure of op on key.
func NewPersistenceError(op, key string, err error) error {
	return &PersistenceError{Op: op, Key: key, Err: err}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if an error is a conflict error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsUnavailable checks if an error is a transient network error.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsMalformedResponse checks if an error is a malformed remote response.
func IsMalformedResponse(err error) bool {
	return errors.Is(err, ErrMalformedResponse)
}

// IsPersistence checks if an error is a storage failure.
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}
