package relay

import "regexp"

const redactedPlaceholder = "[REDACTED]"

// secretPatterns match credentials an upstream error body might echo back.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`sk-or-v1-[A-Za-z0-9]{32,}`),
	regexp.MustCompile(`sk-[A-Za-z0-9_-]{20,}`),
	regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._~+/=-]{16,}`),
	regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[=:]\s*['"]?[A-Za-z0-9_-]{16,}['"]?`),
}

// redact replaces every secret pattern in s with [REDACTED].
func redact(s string) (string, bool) {
	result := s
	redacted := false
	for _, p := range secretPatterns {
		if p.MatchString(result) {
			result = p.ReplaceAllString(result, redactedPlaceholder)
			redacted = true
		}
	}
	return result, redacted
}

// newStatusError builds a StatusError with credentials scrubbed from body,
// since the body ends up in user-facing messages and logs.
func newStatusError(code int, body string) *StatusError {
	clean, _ := redact(body)
	return &StatusError{StatusCode: code, Body: clean}
}
