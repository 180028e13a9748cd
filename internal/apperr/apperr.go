// Package apperr defines the error taxonomy shared by every service in the
// marketplace. Collaborator errors (SQL driver, payment provider, image
// decoder) are wrapped into one of these kinds before leaving a service.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers and for the HTTP layer.
type Kind string

// Error kinds.
const (
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindValidation   Kind = "validation_error"
	KindInvalidState Kind = "invalid_state"
	KindExternal     Kind = "external_service_error"
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Sentinels for errors.Is checks. Any *Error matches the sentinel of its kind.
var (
	ErrUnauthorized = &Error{Kind: KindUnauthorized, Message: "not authenticated"}
	ErrForbidden    = &Error{Kind: KindForbidden, Message: "insufficient permissions"}
	ErrNotFound     = &Error{Kind: KindNotFound, Message: "not found"}
	ErrValidation   = &Error{Kind: KindValidation, Message: "invalid input"}
	ErrInvalidState = &Error{Kind: KindInvalidState, Message: "invalid state"}
	ErrExternal     = &Error{Kind: KindExternal, Message: "external service error"}
)

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Unauthorized returns a KindUnauthorized error.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Forbidden returns a KindForbidden error.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NotFound returns a KindNotFound error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Validation returns a KindValidation error.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// InvalidState returns a KindInvalidState error.
func InvalidState(message string) *Error {
	return &Error{Kind: KindInvalidState, Message: message}
}

// External wraps a collaborator failure.
func External(message string, err error) *Error {
	return &Error{Kind: KindExternal, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindExternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindExternal
}

// HTTPStatus maps a kind to its HTTP status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindInvalidState:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

// Code returns the machine-readable code used in API error bodies.
func Code(kind Kind) string {
	switch kind {
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindForbidden:
		return "FORBIDDEN"
	case KindNotFound:
		return "NOT_FOUND"
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindInvalidState:
		return "INVALID_STATE"
	default:
		return "EXTERNAL_SERVICE_ERROR"
	}
}
