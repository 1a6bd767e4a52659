package relay

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"validation", &ValidationError{Fields: []string{"diagnosis"}}, KindValidation},
		{"status", &StatusError{StatusCode: 500}, KindStatus},
		{"transport", &TransportError{Err: errors.New("refused")}, KindTransport},
		{"timeout", &TransportError{Err: context.DeadlineExceeded, Timeout: true}, KindTimeout},
		{"shape", &ResponseShapeError{Reason: "missing choices"}, KindResponseShape},
		{"wrapped", fmt.Errorf("outer: %w", &StatusError{StatusCode: 404}), KindStatus},
		{"unknown", errors.New("boom"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewTransportError_DetectsTimeouts(t *testing.T) {
	deadline := newTransportError(fmt.Errorf("post: %w", context.DeadlineExceeded))
	if !deadline.Timeout {
		t.Error("expected deadline exceeded to be a timeout")
	}

	urlErr := &url.Error{Op: "Post", URL: "http://x", Err: context.DeadlineExceeded}
	if !newTransportError(urlErr).Timeout {
		t.Error("expected url.Error wrapping deadline to be a timeout")
	}

	refused := newTransportError(errors.New("connection refused"))
	if refused.Timeout {
		t.Error("expected plain error not to be a timeout")
	}
	if !errors.Is(deadline, context.DeadlineExceeded) {
		t.Error("TransportError should unwrap to its cause")
	}
}

func TestErrorMessages(t *testing.T) {
	v := &ValidationError{Fields: []string{"diagnosis", "medicines"}}
	if !strings.Contains(v.Error(), "diagnosis, medicines") {
		t.Errorf("validation message = %q", v.Error())
	}

	s := &StatusError{StatusCode: 502, Body: "bad gateway"}
	if !strings.Contains(s.Error(), "502") || !strings.Contains(s.Error(), "bad gateway") {
		t.Errorf("status message = %q", s.Error())
	}
	if !s.IsServerError() {
		t.Error("502 should be a server error")
	}
	if (&StatusError{StatusCode: 401}).IsServerError() {
		t.Error("401 should not be a server error")
	}

	to := &TransportError{Err: context.DeadlineExceeded, Timeout: true}
	if !strings.Contains(to.Error(), "timed out") {
		t.Errorf("timeout message = %q", to.Error())
	}
	if !IsTimeout(fmt.Errorf("wrap: %w", to)) {
		t.Error("IsTimeout should see through wrapping")
	}
}
