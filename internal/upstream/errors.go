package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies a failed upstream call
type ErrorType string

const (
	// ErrorTypeNetwork covers connection refused, DNS failures and resets
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit is an HTTP 429 from the upstream
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeServer is an HTTP 5xx from the upstream
	ErrorTypeServer ErrorType = "server"
	// ErrorTypeClient is any other HTTP 4xx, usually a bad or missing API key
	ErrorTypeClient ErrorType = "client"
	// ErrorTypeQuery is an error the upstream reported inside its payload
	ErrorTypeQuery ErrorType = "query"
	// ErrorTypeValidation is a reply that arrived but could not be interpreted
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeTimeout is a canceled or expired request context
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeUnknown is anything else
	ErrorTypeUnknown ErrorType = "unknown"
)

// Error is a failed call to the GraphQL or chat-completion upstream.
// Nothing is retried; Type only drives logging and metrics.
type Error struct {
	Type       ErrorType
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface. Query errors render as the bare
// upstream message so the proxy can hand it to the caller unchanged.
func (e *Error) Error() string {
	switch {
	case e.Type == ErrorTypeQuery:
		return e.Message
	case e.StatusCode > 0:
		return fmt.Sprintf("%s error (status %d): %s", e.Type, e.StatusCode, e.Message)
	case e.Cause != nil:
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewQueryError wraps an error message reported by the upstream itself
func NewQueryError(message string) *Error {
	return &Error{Type: ErrorTypeQuery, Message: message}
}

// NewValidationError reports a reply that could not be interpreted
func NewValidationError(message string) *Error {
	return &Error{Type: ErrorTypeValidation, Message: message}
}

// ClassifyHTTPError turns an unsuccessful HTTP status into an Error
func ClassifyHTTPError(statusCode int) *Error {
	e := &Error{StatusCode: statusCode}

	switch {
	case statusCode == http.StatusTooManyRequests:
		e.Type, e.Message = ErrorTypeRateLimit, "rate limit exceeded"
	case statusCode >= 500:
		e.Type, e.Message = ErrorTypeServer, "server returned an error"
	case statusCode >= 400:
		e.Type, e.Message = ErrorTypeClient, http.StatusText(statusCode)
	default:
		e.Type, e.Message = ErrorTypeUnknown, fmt.Sprintf("unexpected status code: %d", statusCode)
	}

	return e
}

// ClassifyTransportError wraps an error returned by the HTTP client itself
func ClassifyTransportError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Type: ErrorTypeTimeout, Message: "request timed out", Cause: err}
	}
	return &Error{Type: ErrorTypeNetwork, Message: "network request failed", Cause: err}
}

// TypeOf returns the ErrorType of the first *Error in err's chain, or
// ErrorTypeUnknown when there is none.
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}
