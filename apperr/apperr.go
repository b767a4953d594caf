// Package apperr defines the error taxonomy shared by the scrape and news
// pipelines and maps it onto HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind classifies an error for retry and HTTP mapping decisions.
type Kind string

const (
	KindInput         Kind = "input_error"
	KindTimeout       Kind = "timeout_error"
	KindUpstream      Kind = "upstream_error"
	KindEmpty         Kind = "extraction_empty"
	KindConfiguration Kind = "configuration_error"
	KindInternal      Kind = "internal_error"
)

// Error is an application error carrying its kind, a human-readable message
// and, for upstream failures, the third party's status code and body.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Details    string
	Err        error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// Input reports a caller mistake such as a missing or disallowed URL. The
// status is the 4xx code the caller should see.
func Input(status int, message string) *Error {
	return &Error{Kind: KindInput, Message: message, StatusCode: status}
}

// Timeout reports an outbound call that exceeded its budget.
func Timeout(url string, after time.Duration, err error) *Error {
	return &Error{
		Kind:       KindTimeout,
		Message:    fmt.Sprintf("request to %s timed out after %v", url, after),
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// Upstream reports a non-2xx answer (or a transport failure, status 0) from
// a third-party source.
func Upstream(url string, status int, details string, err error) *Error {
	msg := fmt.Sprintf("request to %s failed", url)
	if status != 0 {
		msg = fmt.Sprintf("request to %s returned status %d", url, status)
	}
	return &Error{
		Kind:       KindUpstream,
		Message:    msg,
		StatusCode: status,
		Details:    details,
		Err:        err,
	}
}

// Empty reports a parse that succeeded but produced no usable content.
func Empty(message string) *Error {
	return &Error{Kind: KindEmpty, Message: message, StatusCode: http.StatusUnprocessableEntity}
}

// Configuration reports a missing or invalid setting needed by a request.
func Configuration(message string) *Error {
	return &Error{Kind: KindConfiguration, Message: message, StatusCode: http.StatusInternalServerError}
}

// Internal wraps an unexpected failure.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, StatusCode: http.StatusInternalServerError, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err's chain holds an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// HTTPStatus returns the status code a handler should answer with for err.
// Upstream errors surface the third party's status when it is an error
// status; everything without a usable code becomes 500.
func HTTPStatus(err error) int {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	if appErr.StatusCode >= 400 && appErr.StatusCode <= 599 {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// IsRetryable reports whether a failed outbound call may be attempted again.
// Only input errors are final; every other failure is treated as transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return KindOf(err) != KindInput
}
