package relay

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestExplain_ReturnsContentVerbatim(t *testing.T) {
	mock := &MockProvider{Responses: []Response{{Content: "X", Model: "m", PromptTokens: 7}}}
	r := New(mock)

	res, err := r.Explain(context.Background(), Request{Diagnosis: "Hypertension", Medicines: "Amlodipine"})
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if res.Content != "X" {
		t.Errorf("Content = %q, want X", res.Content)
	}
	if res.Model != "m" || res.PromptTokens != 7 {
		t.Errorf("metadata not carried over: %+v", res)
	}

	if len(mock.Calls) != 1 {
		t.Fatalf("expected 1 provider call, got %d", len(mock.Calls))
	}
	sent := mock.Calls[0]
	if len(sent) != 1 || sent[0].Role != RoleUser {
		t.Fatalf("expected one user message, got %+v", sent)
	}
	if !strings.Contains(sent[0].Content, "Hypertension") || !strings.Contains(sent[0].Content, "Amlodipine") {
		t.Errorf("prompt missing fields: %q", sent[0].Content)
	}
}

func TestExplain_ValidationSkipsProvider(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		missing []string
	}{
		{"empty diagnosis", Request{Medicines: "Metformin"}, []string{"diagnosis"}},
		{"empty medicines", Request{Diagnosis: "Diabetes"}, []string{"medicines"}},
		{"whitespace only", Request{Diagnosis: "  \t", Medicines: "\n"}, []string{"diagnosis", "medicines"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockProvider{Responses: []Response{{Content: "unused"}}}
			_, err := New(mock).Explain(context.Background(), tt.req)

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected *ValidationError, got %T: %v", err, err)
			}
			if strings.Join(vErr.Fields, ",") != strings.Join(tt.missing, ",") {
				t.Errorf("Fields = %v, want %v", vErr.Fields, tt.missing)
			}
			if len(mock.Calls) != 0 {
				t.Errorf("provider called %d times, want 0", len(mock.Calls))
			}
		})
	}
}

func TestExplain_TrimsFields(t *testing.T) {
	mock := &MockProvider{Responses: []Response{{Content: "ok"}}}
	r := New(mock, WithTemplate(TemplateShort))

	if _, err := r.Explain(context.Background(), Request{Diagnosis: "  Asthma ", Medicines: " Salbutamol\n"}); err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if !strings.HasPrefix(mock.Calls[0][0].Content, "Diagnosis: Asthma\nMedicines: Salbutamol\n") {
		t.Errorf("fields not trimmed: %q", mock.Calls[0][0].Content)
	}
}

func TestExplain_ProviderErrorIsWrapped(t *testing.T) {
	cause := &StatusError{StatusCode: 503}
	mock := &MockProvider{Err: cause}

	_, err := New(mock).Explain(context.Background(), Request{Diagnosis: "d", Medicines: "m"})
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped StatusError, got %v", err)
	}
	if KindOf(err) != KindStatus {
		t.Errorf("KindOf = %q", KindOf(err))
	}
	if len(mock.Calls) != 1 {
		t.Errorf("provider called %d times, want exactly 1", len(mock.Calls))
	}
}

func TestExplain_LogsWithoutPrompt(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	mock := &MockProvider{Responses: []Response{{Content: "ok"}}}

	_, err := New(mock, WithLogger(logger)).Explain(context.Background(), Request{Diagnosis: "SecretDx", Medicines: "m"})
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if !strings.Contains(buf.String(), "completion received") {
		t.Errorf("expected completion log, got %q", buf.String())
	}
	if strings.Contains(buf.String(), "SecretDx") {
		t.Error("patient data must not be logged")
	}
}

func TestPrompt_UsesConfiguredTemplate(t *testing.T) {
	r := New(&MockProvider{}, WithTemplate(TemplateShort))
	if r.Template() != TemplateShort {
		t.Fatalf("Template() = %s", r.Template())
	}
	p, err := r.Prompt(Request{Diagnosis: "d", Medicines: "m"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(p, "Example 1") {
		t.Error("short template expected")
	}

	if _, err := r.Prompt(Request{}); err == nil {
		t.Error("expected validation error for empty request")
	}
}

// End-to-end over both providers against a mocked endpoint.
func TestExplain_EndToEnd(t *testing.T) {
	providers := map[string]func(url string) Provider{
		"openai": func(url string) Provider { return NewOpenAIProvider(WithBaseURL(url), WithAPIKey("k")) },
		"http":   func(url string) Provider { return NewHTTPProvider(WithBaseURL(url), WithAPIKey("k")) },
	}

	for name, mk := range providers {
		t.Run(name+"/success", func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, completionJSON)
			}))
			defer srv.Close()

			res, err := New(mk(srv.URL)).Explain(context.Background(), Request{Diagnosis: "d", Medicines: "m"})
			if err != nil {
				t.Fatalf("Explain: %v", err)
			}
			if res.Content != "X" {
				t.Errorf("Content = %q, want X", res.Content)
			}
		})

		t.Run(name+"/500", func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer srv.Close()

			_, err := New(mk(srv.URL)).Explain(context.Background(), Request{Diagnosis: "d", Medicines: "m"})
			if KindOf(err) != KindStatus {
				t.Fatalf("KindOf = %q (err %v)", KindOf(err), err)
			}
			if hits.Load() != 1 {
				t.Errorf("hits = %d, want 1", hits.Load())
			}
		})

		t.Run(name+"/no choices", func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, `{"object":"chat.completion"}`)
			}))
			defer srv.Close()

			_, err := New(mk(srv.URL)).Explain(context.Background(), Request{Diagnosis: "d", Medicines: "m"})
			if KindOf(err) != KindResponseShape {
				t.Fatalf("KindOf = %q (err %v)", KindOf(err), err)
			}
		})
	}
}
