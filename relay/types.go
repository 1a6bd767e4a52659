// Package relay turns a diagnosis and a list of prescribed medicines into a
// patient-friendly explanation by sending a fixed prompt to a hosted
// chat-completion endpoint.
//
// Each call is a single blocking request that is never retried. Failures are
// reported through the typed errors in errors.go so callers can tell a
// missing field from an upstream outage.
package relay

import (
	"strings"
	"time"
)

// MissingFieldsWarning is the user-facing text for a ValidationError.
const MissingFieldsWarning = "Please fill in both fields."

// Request is the user's submission.
type Request struct {
	Diagnosis string `json:"diagnosis"`
	Medicines string `json:"medicines"`
}

// Result is a successful explanation.
type Result struct {
	Content          string        `json:"explanation"`
	Model            string        `json:"model,omitempty"`
	PromptTokens     int           `json:"prompt_tokens"`
	CompletionTokens int           `json:"completion_tokens"`
	Elapsed          time.Duration `json:"elapsed_ns"`
}

// normalize trims surrounding whitespace from both fields.
func (r Request) normalize() Request {
	return Request{
		Diagnosis: strings.TrimSpace(r.Diagnosis),
		Medicines: strings.TrimSpace(r.Medicines),
	}
}

// Validate reports which required fields are empty after trimming.
func (r Request) Validate() error {
	n := r.normalize()
	var missing []string
	if n.Diagnosis == "" {
		missing = append(missing, "diagnosis")
	}
	if n.Medicines == "" {
		missing = append(missing, "medicines")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}
