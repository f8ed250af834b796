package gplatform

import "fmt"

// APIError is returned when the provider answers with an HTTP status >= 400.
// The raw body is preserved for operator diagnosis; G-platform error envelopes
// carry an errorcode/errortext pair inside it.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("g-platform api error: status %d: %s", e.StatusCode, e.Body)
}

// TransportError is returned when the request never produced an HTTP response
// (connection refused, timeout, TLS failure, ...).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("g-platform transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ResponseShapeError is returned when a 2xx response does not contain the
// expected envelope or field. The provider keys every response under
// "{command}response"; a missing key means the reply cannot be trusted.
type ResponseShapeError struct {
	Command string
	Field   string
}

func (e *ResponseShapeError) Error() string {
	return fmt.Sprintf("g-platform response for %q is missing %q", e.Command, e.Field)
}
