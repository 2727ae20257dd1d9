// Package apperr provides standardized domain error types for the application.
// Pipeline stages return these typed errors; the orchestrator maps each kind
// to a user-facing reply and a continue-or-close decision.
package apperr

import (
	"fmt"
	"net/http"
)

// Kind represents the category of error.
type Kind int

const (
	// KindUnknown is the default error kind when none is specified.
	KindUnknown Kind = iota
	// KindInvalidIntent indicates the message is not a valid registration request.
	KindInvalidIntent
	// KindMissingData indicates the extraction stage found mandatory fields absent.
	KindMissingData
	// KindAmbiguous indicates a lookup produced more than one plausible candidate.
	KindAmbiguous
	// KindNotFound indicates a lookup produced no candidate for a user-named value.
	KindNotFound
	// KindInconsistent indicates the assembled record failed verification.
	KindInconsistent
	// KindBackendRejected indicates the farm-management backend refused the record.
	KindBackendRejected
	// KindInfra indicates an infrastructure failure (catalog, model or backend unreachable).
	KindInfra
	// KindBadRequest indicates a malformed inbound request.
	KindBadRequest
	// KindUnauthorized indicates a webhook call without a valid token.
	KindUnauthorized
)

// Error is a domain error with a typed Kind.
type Error struct {
	Kind    Kind
	Message string // user-facing text for recoverable kinds
	Op      string // operation that failed (optional)
	Err     error  // underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Recoverable reports whether the conversation stays open after this error.
// Invalid intent ends the exchange with a fixed denial; infra failures keep
// state so the farmer can retry; everything else converges on a question.
func (e *Error) Recoverable() bool {
	return e.Kind != KindInvalidIntent
}

// HTTPStatus returns the HTTP status code for transport-facing kinds.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindInfra:
		return http.StatusBadGateway
	default:
		return http.StatusUnprocessableEntity
	}
}

// New creates a new domain error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithOp returns the error with the operation set.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// Convenience constructors for the pipeline taxonomy.

// InvalidIntent creates a terminal invalid-intent error.
func InvalidIntent(message string) *Error {
	return New(KindInvalidIntent, message)
}

// MissingData creates a recoverable incomplete-extraction error.
func MissingData(message string) *Error {
	return New(KindMissingData, message)
}

// Ambiguous creates a recoverable multiple-candidates error.
func Ambiguous(message string) *Error {
	return New(KindAmbiguous, message)
}

// NotFound creates a recoverable zero-candidates error.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Inconsistent creates a recoverable verification error.
func Inconsistent(message string) *Error {
	return New(KindInconsistent, message)
}

// BackendRejected creates a recoverable backend-refusal error.
func BackendRejected(message string) *Error {
	return New(KindBackendRejected, message)
}

// Infra creates an infrastructure error wrapping the cause.
func Infra(message string, err error) *Error {
	return Wrap(KindInfra, message, err)
}

// BadRequest creates a bad request error.
func BadRequest(message string) *Error {
	return New(KindBadRequest, message)
}

// Unauthorized creates an unauthorized error.
func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message)
}

// GetKind extracts the error kind from an error.
// Returns KindUnknown if the error is not an *Error.
func GetKind(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindUnknown
}

// Is checks if err is an *Error with the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}
