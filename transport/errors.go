package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind classifies transport errors into the closed set callers match on.
type Kind int

const (
	// KindAuthMissing means no credential variant could be resolved.
	KindAuthMissing Kind = iota
	// KindAuthInvalid means credentials were rejected by the endpoint or
	// structurally incomplete.
	KindAuthInvalid
	// KindAPI means the endpoint was reachable and returned an error with
	// an HTTP status (including the synthetic 408 timeout and 413
	// oversized-response statuses).
	KindAPI
	// KindUnexpected means a failure not classifiable above, such as a
	// body-encoding bug.
	KindUnexpected
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindAuthMissing:
		return "auth_missing"
	case KindAuthInvalid:
		return "auth_invalid"
	case KindAPI:
		return "api"
	case KindUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// Error is the typed transport error. Kind, StatusCode, and Message form
// the contract callers match on; Err carries the triggering cause opaquely
// for diagnostics.
type Error struct {
	// Kind classifies the error.
	Kind Kind
	// StatusCode is the HTTP status (0 when no status applies).
	StatusCode int
	// Message describes the error, extracted from the vendor payload when
	// one was present.
	Message string
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("bitbucket: %s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("bitbucket: %s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// NewAuthMissingError creates the error callers surface when no credential
// variant is configured.
func NewAuthMissingError() *Error {
	return &Error{
		Kind:    KindAuthMissing,
		Message: "no Bitbucket credentials configured",
	}
}

func newAuthInvalidError(msg string) *Error {
	return &Error{Kind: KindAuthInvalid, Message: msg}
}

func newTimeoutError(timeout time.Duration, cause error) *Error {
	return &Error{
		Kind:       KindAPI,
		StatusCode: http.StatusRequestTimeout,
		Message:    fmt.Sprintf("request timed out after %s", timeout),
		Err:        cause,
	}
}

func newNetworkError(cause error) *Error {
	return &Error{
		Kind:       KindAPI,
		StatusCode: http.StatusInternalServerError,
		Message:    fmt.Sprintf("network error: %v", cause),
		Err:        cause,
	}
}

func newOversizedError(declared, limit int64) *Error {
	return &Error{
		Kind:       KindAPI,
		StatusCode: http.StatusRequestEntityTooLarge,
		Message:    fmt.Sprintf("response size %d exceeds the %d byte limit", declared, limit),
	}
}

func newUnexpectedError(msg string, cause error) *Error {
	return &Error{Kind: KindUnexpected, Message: msg, Err: cause}
}

// classifyResponse turns a non-2xx response into a typed error. 401 maps to
// auth-invalid; every other non-2xx status is an API error with the status
// preserved and the message taken from the vendor payload when possible.
func classifyResponse(statusCode int, body []byte) *Error {
	message := vendorMessage(body)
	if message == "" {
		message = fmt.Sprintf("%d %s", statusCode, http.StatusText(statusCode))
	}
	if statusCode == http.StatusUnauthorized {
		return &Error{Kind: KindAuthInvalid, StatusCode: statusCode, Message: message}
	}
	return &Error{Kind: KindAPI, StatusCode: statusCode, Message: message}
}

// vendorMessage extracts a human-readable message from the error payload
// shapes Bitbucket Cloud is known to return, in priority order:
//
//	{type:"error", error:{message, detail?}}
//	{error:{message}}
//	{errors:[{title}]}
//	{message}
//
// Returns "" when the body does not parse or matches no shape.
func vendorMessage(body []byte) string {
	var payload struct {
		Type  string `json:"type"`
		Error struct {
			Message string `json:"message"`
			Detail  string `json:"detail"`
		} `json:"error"`
		Errors []struct {
			Title string `json:"title"`
		} `json:"errors"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	switch {
	case payload.Type == "error" && payload.Error.Message != "":
		if payload.Error.Detail != "" {
			return payload.Error.Message + ". Detail: " + payload.Error.Detail
		}
		return payload.Error.Message
	case payload.Error.Message != "":
		return payload.Error.Message
	case len(payload.Errors) > 0 && payload.Errors[0].Title != "":
		return payload.Errors[0].Title
	case payload.Message != "":
		return payload.Message
	}
	return ""
}

// IsAuthMissing checks if an error is an auth-missing error.
func IsAuthMissing(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindAuthMissing
}

// IsAuthInvalid checks if an error is an auth-invalid error.
func IsAuthInvalid(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindAuthInvalid
}

// IsAPIError checks if an error is an API error, optionally matching a status.
func IsAPIError(err error, statusCode int) bool {
	var e *Error
	if !errors.As(err, &e) || e.Kind != KindAPI {
		return false
	}
	return statusCode == 0 || e.StatusCode == statusCode
}

// IsNotFound checks if an error is an API error with status 404.
func IsNotFound(err error) bool {
	return IsAPIError(err, http.StatusNotFound)
}

// IsTimeout checks if an error is the synthetic 408 timeout.
func IsTimeout(err error) bool {
	return IsAPIError(err, http.StatusRequestTimeout)
}

// IsUnexpected checks if an error is an unexpected error.
func IsUnexpected(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindUnexpected
}

// AsError extracts the typed transport error from an error chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
