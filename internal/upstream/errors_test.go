package upstream

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifyHTTPError(t *testing.T) {
	tests := []struct {
		status   int
		wantType ErrorType
		wantMsg  string
	}{
		{429, ErrorTypeRateLimit, "rate_limit error (status 429): rate limit exceeded"},
		{500, ErrorTypeServer, "server error (status 500): server returned an error"},
		{503, ErrorTypeServer, "server error (status 503): server returned an error"},
		{401, ErrorTypeClient, "client error (status 401): Unauthorized"},
		{404, ErrorTypeClient, "client error (status 404): Not Found"},
		{302, ErrorTypeUnknown, "unknown error (status 302): unexpected status code: 302"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			err := ClassifyHTTPError(tt.status)
			if err.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", err.Type, tt.wantType)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.wantMsg)
			}
			if err.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", err.StatusCode, tt.status)
			}
		})
	}
}

func TestQueryError_MessagePassesThrough(t *testing.T) {
	err := NewQueryError(`field "entity" not found in type: 'query_root'`)

	want := `field "entity" not found in type: 'query_root'`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestClassifyTransportError(t *testing.T) {
	if got := ClassifyTransportError(context.DeadlineExceeded); got.Type != ErrorTypeTimeout {
		t.Errorf("Type = %q, want %q", got.Type, ErrorTypeTimeout)
	}

	cause := errors.New("connection refused")
	got := ClassifyTransportError(cause)
	if got.Type != ErrorTypeNetwork {
		t.Errorf("Type = %q, want %q", got.Type, ErrorTypeNetwork)
	}
	if !errors.Is(got, cause) {
		t.Error("errors.Is() = false, want the cause to be unwrappable")
	}

	var target *Error
	if !errors.As(fmt.Errorf("wrapped: %w", got), &target) {
		t.Error("errors.As() = false, want *Error")
	}
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"direct", NewValidationError("no data"), ErrorTypeValidation},
		{"wrapped", fmt.Errorf("failed to execute graphql query: %w", ClassifyTransportError(errors.New("reset"))), ErrorTypeNetwork},
		{"foreign", errors.New("boom"), ErrorTypeUnknown},
		{"nil", nil, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TypeOf(tt.err); got != tt.want {
				t.Errorf("TypeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}
