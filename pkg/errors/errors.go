// Package errors defines the error types reported by the session, the
// response pipeline and the authorization flow.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched by the typed errors through errors.Is.
var (
	ErrTransport     = errors.New("transport error")
	ErrHTTPStatus    = errors.New("http status error")
	ErrDecoding      = errors.New("decoding error")
	ErrShape         = errors.New("shape error")
	ErrStateMismatch = errors.New("authorization state mismatch")
	ErrRandom        = errors.New("random generation error")
)

// joinParts joins error message parts with the specified separator.
func joinParts(parts []string, sep string) string {
	return strings.Join(parts, sep)
}

// ConfigError indicates a problem with the client configuration or with
// caller supplied request input.
type ConfigError struct {
	// Field contains the name of the configuration field that caused the error
	Field string
	// Message contains the detailed error message
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// AuthError indicates the token endpoint refused or garbled a token request.
type AuthError struct {
	// StatusCode is the HTTP status code (if from an HTTP response)
	StatusCode int
	// Message contains the detailed error message
	Message string
	// Body contains the raw response body (if available)
	Body string
	// Err contains the underlying error if available
	Err error
}

func (e *AuthError) Error() string {
	parts := []string{"auth error"}

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status code %d", e.StatusCode))
	}
	if e.Body != "" {
		parts = append(parts, fmt.Sprintf("body: %q", e.Body))
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Err != nil {
		parts = append(parts, fmt.Sprintf("err: %v", e.Err))
	}

	if len(parts) == 1 {
		return parts[0]
	}
	return parts[0] + ": " + joinParts(parts[1:], ", ")
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// TransportError wraps a failure to obtain any HTTP response at all.
type TransportError struct {
	// Operation is the name of the API operation that failed
	Operation string
	// URL is the URL that was being accessed
	URL string
	// Err contains the underlying network error
	Err error
}

func (e *TransportError) Error() string {
	msg := "no response"
	if e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Operation != "" && e.URL != "" {
		return fmt.Sprintf("transport error during %s to %s: %s", e.Operation, e.URL, msg)
	} else if e.Operation != "" {
		return fmt.Sprintf("transport error during %s: %s", e.Operation, msg)
	}
	return fmt.Sprintf("transport error: %s", msg)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// HTTPStatusError reports a response whose status code is outside 2xx.
type HTTPStatusError struct {
	// StatusCode is the HTTP status code
	StatusCode int
	// Status is the full status line text, e.g. "403 Forbidden"
	Status string
	// Body is the raw response body, which often carries the API's reason
	Body string
}

func (e *HTTPStatusError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d", e.StatusCode)
	}
	if e.Body != "" {
		return fmt.Sprintf("API request failed with status %s: %s", status, e.Body)
	}
	return fmt.Sprintf("API request failed with status %s", status)
}

func (e *HTTPStatusError) Is(target error) bool { return target == ErrHTTPStatus }

// DecodingError indicates the response body was not valid JSON.
type DecodingError struct {
	// Err contains the underlying decoder error
	Err error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("decoding error: %v", e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }

func (e *DecodingError) Is(target error) bool { return target == ErrDecoding }

// ShapeError indicates valid JSON that lacks the structure an endpoint
// expects, e.g. a listing without children.
type ShapeError struct {
	// Expected names the envelope the stage looked for
	Expected string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *ShapeError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Expected != "" {
		return fmt.Sprintf("shape error: expected %s: %s", e.Expected, msg)
	}
	return fmt.Sprintf("shape error: %s", msg)
}

func (e *ShapeError) Unwrap() error { return e.Err }

func (e *ShapeError) Is(target error) bool { return target == ErrShape }

// AuthorizationStateMismatch is returned when a redirect does not carry the
// state issued by the last challenge, or lacks a code.
type AuthorizationStateMismatch struct {
	// Reason says which check failed
	Reason string
}

func (e *AuthorizationStateMismatch) Error() string {
	if e.Reason != "" {
		return "authorization state mismatch: " + e.Reason
	}
	return "authorization state mismatch"
}

func (e *AuthorizationStateMismatch) Is(target error) bool { return target == ErrStateMismatch }

// RandomGenerationError indicates the secure random source failed.
type RandomGenerationError struct {
	Err error
}

func (e *RandomGenerationError) Error() string {
	return fmt.Sprintf("random generation error: %v", e.Err)
}

func (e *RandomGenerationError) Unwrap() error { return e.Err }

func (e *RandomGenerationError) Is(target error) bool { return target == ErrRandom }
