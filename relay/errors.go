package relay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Kind categorizes relay failures for callers that map them onto their own
// surface (HTTP status, gRPC code, exit code).
type Kind string

const (
	KindUnknown       Kind = "UNKNOWN"
	KindValidation    Kind = "VALIDATION"     // required field empty, nothing sent
	KindStatus        Kind = "STATUS"         // endpoint answered with non-2xx
	KindTransport     Kind = "TRANSPORT"      // connection or read failure
	KindTimeout       Kind = "TIMEOUT"        // request deadline exceeded
	KindResponseShape Kind = "RESPONSE_SHAPE" // 2xx body without choices[0].message.content
)

// ValidationError reports required request fields that were empty after
// trimming. No request is sent when it is returned.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("relay: missing required field(s): %s", strings.Join(e.Fields, ", "))
}

// StatusError is returned when the completion endpoint answers with a non-2xx
// status code.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("relay: completion endpoint returned status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("relay: completion endpoint returned status %d", e.StatusCode)
}

// IsServerError reports whether the status is 5xx.
func (e *StatusError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// TransportError wraps network failures, including the request timeout.
type TransportError struct {
	Err     error
	Timeout bool
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("relay: completion request timed out: %v", e.Err)
	}
	return fmt.Sprintf("relay: completion request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ResponseShapeError is returned when a successful response does not carry
// choices[0].message.content.
type ResponseShapeError struct {
	Reason string
}

func (e *ResponseShapeError) Error() string {
	return "relay: unexpected response shape: " + e.Reason
}

// KindOf classifies err. Wrapped errors are unwrapped with errors.As.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var (
		validationErr *ValidationError
		statusErr     *StatusError
		transportErr  *TransportError
		shapeErr      *ResponseShapeError
	)
	switch {
	case errors.As(err, &validationErr):
		return KindValidation
	case errors.As(err, &statusErr):
		return KindStatus
	case errors.As(err, &transportErr):
		if transportErr.Timeout {
			return KindTimeout
		}
		return KindTransport
	case errors.As(err, &shapeErr):
		return KindResponseShape
	default:
		return KindUnknown
	}
}

// IsTimeout reports whether err is a request timeout.
func IsTimeout(err error) bool {
	return KindOf(err) == KindTimeout
}

// newTransportError wraps a client error, flagging deadline and net timeouts.
func newTransportError(err error) *TransportError {
	return &TransportError{Err: err, Timeout: isTimeout(err)}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isNetworkError reports whether err came from the HTTP transport rather
// than from decoding a response.
func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
