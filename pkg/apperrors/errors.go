package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers and the HTTP layer.
type Kind string

const (
	KindNotFound        Kind = "NOT_FOUND"
	KindValidation      Kind = "VALIDATION_ERROR"
	KindInvalidState    Kind = "INVALID_STATE"
	KindInvalidAmount   Kind = "INVALID_AMOUNT"
	KindGateway         Kind = "GATEWAY_ERROR"
	KindAlreadyVerified Kind = "ALREADY_VERIFIED"
	KindAuthorization   Kind = "AUTHORIZATION_ERROR"
	KindConflict        Kind = "CONFLICT"
	KindInternal        Kind = "INTERNAL_ERROR"
)

// Error is the typed error returned by the booking core.
// Message is safe to show to the caller; Err carries the internal cause.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind when the target carries no message,
// so errors.Is(err, apperrors.ErrNotFound) works for every not-found error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// WithDetail attaches a structured detail and returns the same error.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause records the internal cause.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrValidation      = &Error{Kind: KindValidation}
	ErrInvalidState    = &Error{Kind: KindInvalidState}
	ErrInvalidAmount   = &Error{Kind: KindInvalidAmount}
	ErrGateway         = &Error{Kind: KindGateway}
	ErrAlreadyVerified = &Error{Kind: KindAlreadyVerified}
	ErrAuthorization   = &Error{Kind: KindAuthorization}
	ErrConflict        = &Error{Kind: KindConflict}
)

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return newf(KindNotFound, format, args...)
}

func Validation(format string, args ...any) *Error {
	return newf(KindValidation, format, args...)
}

func InvalidState(format string, args ...any) *Error {
	return newf(KindInvalidState, format, args...)
}

func InvalidAmount(format string, args ...any) *Error {
	return newf(KindInvalidAmount, format, args...)
}

func AlreadyVerified(format string, args ...any) *Error {
	return newf(KindAlreadyVerified, format, args...)
}

func Authorization(format string, args ...any) *Error {
	return newf(KindAuthorization, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return newf(KindConflict, format, args...)
}

// Gateway wraps a payment provider failure.
func Gateway(err error, format string, args ...any) *Error {
	return newf(KindGateway, format, args...).WithCause(err)
}

// Internal wraps an unexpected infrastructure failure.
func Internal(err error, format string, args ...any) *Error {
	return newf(KindInternal, format, args...).WithCause(err)
}

// KindOf returns the kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error kind to a response status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindInvalidAmount:
		return http.StatusBadRequest
	case KindInvalidState, KindConflict, KindAlreadyVerified:
		return http.StatusConflict
	case KindAuthorization:
		return http.StatusForbidden
	case KindGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
