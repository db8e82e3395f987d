package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a DomainError for propagation and HTTP mapping
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindNotFound          ErrorKind = "not_found"
	KindConflict          ErrorKind = "conflict"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindPrecondition      ErrorKind = "precondition"
	KindRemote            ErrorKind = "remote"
	KindStoreBusy         ErrorKind = "store_busy"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind         `json:"-"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is matches another DomainError by code, so sentinel values work with errors.Is
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithDetail returns a copy of the error carrying a field-level detail
func (e *DomainError) WithDetail(field, msg string) *DomainError {
	cp := *e
	cp.Details = make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		cp.Details[k] = v
	}
	cp.Details[field] = msg
	return &cp
}

// WithCause returns a copy of the error wrapping cause
func (e *DomainError) WithCause(cause error) *DomainError {
	cp := *e
	cp.cause = cause
	return &cp
}

// NewDomainError creates a new domain error. Errors created this way are
// treated as validation failures unless a kind is set explicitly.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    code,
		Message: message,
	}
}

func newKindError(kind ErrorKind, code, format string, args ...any) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewValidationError reports malformed input. field may be empty.
func NewValidationError(field, format string, args ...any) *DomainError {
	err := newKindError(KindValidation, "VALIDATION_ERROR", format, args...)
	if field != "" {
		err.Details = map[string]string{field: err.Message}
	}
	return err
}

// NewNotFoundError reports a missing referenced record
func NewNotFoundError(resource string, id any) *DomainError {
	return newKindError(KindNotFound, "NOT_FOUND", "%s %v not found", resource, id)
}

// NewConflictError reports a mutation of a read-only or conflicting record
func NewConflictError(format string, args ...any) *DomainError {
	return newKindError(KindConflict, "CONFLICT", format, args...)
}

// NewInvalidTransitionError reports a disallowed lifecycle status change
func NewInvalidTransitionError(resource string, from, to any) *DomainError {
	return newKindError(KindInvalidTransition, "INVALID_TRANSITION",
		"%s cannot transition from %v to %v", resource, from, to)
}

// NewPreconditionError reports an operation whose required prior state is not met
func NewPreconditionError(format string, args ...any) *DomainError {
	return newKindError(KindPrecondition, "PRECONDITION_FAILED", format, args...)
}

// NewRemoteError reports a failed call to the remote catalog
func NewRemoteError(cause error, format string, args ...any) *DomainError {
	return newKindError(KindRemote, "REMOTE_ERROR", format, args...).WithCause(cause)
}

// NewStoreBusyError reports exhausted retries on local store contention
func NewStoreBusyError(cause error) *DomainError {
	return newKindError(KindStoreBusy, "STORE_BUSY", "local store is busy, try again later").WithCause(cause)
}

// KindOf returns the kind of err, or "" if err is not a DomainError
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// Common domain errors
var (
	ErrNotFound            = &DomainError{Kind: KindNotFound, Code: "NOT_FOUND", Message: "Resource not found"}
	ErrAlreadyExists       = &DomainError{Kind: KindConflict, Code: "ALREADY_EXISTS", Message: "Resource already exists"}
	ErrInvalidInput        = &DomainError{Kind: KindValidation, Code: "INVALID_INPUT", Message: "Invalid input provided"}
	ErrRequestInFlight     = &DomainError{Kind: KindConflict, Code: "REQUEST_IN_FLIGHT", Message: "A request with this correlation id is already in flight"}
	ErrConcurrencyConflict = &DomainError{Kind: KindConflict, Code: "CONCURRENCY_CONFLICT", Message: "Resource was modified by another process"}
)
