package server

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/medsum/medsum/relay"
)

type stubProvider struct {
	content string
	err     error
	calls   int
}

func (p *stubProvider) Complete(_ context.Context, _ []relay.Message) (*relay.Response, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &relay.Response{Content: p.content}, nil
}

func newTestServer(p *stubProvider) *Server {
	return New("0.1.0", relay.New(p), nil)
}

func TestHandleExplain_Success(t *testing.T) {
	p := &stubProvider{content: "Hypertension is high blood pressure."}
	s := newTestServer(p)

	req := makeToolRequest(t, "explain", map[string]any{"diagnosis": "Hypertension", "medicines": "Amlodipine"})
	result, err := s.handleExplain(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolResultText(result))
	}
	if got := toolResultText(result); got != p.content {
		t.Fatalf("expected %q, got %q", p.content, got)
	}
	if p.calls != 1 {
		t.Fatalf("expected 1 provider call, got %d", p.calls)
	}
}

func TestHandleExplain_MissingArgument(t *testing.T) {
	p := &stubProvider{content: "unused"}
	s := newTestServer(p)

	req := makeToolRequest(t, "explain", map[string]any{"diagnosis": "Hypertension"})
	result, err := s.handleExplain(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for missing medicines")
	}
	if got := toolResultText(result); got != relay.MissingFieldsWarning {
		t.Fatalf("expected %q, got %q", relay.MissingFieldsWarning, got)
	}
	if p.calls != 0 {
		t.Fatalf("provider must not be called, got %d calls", p.calls)
	}
}

func TestHandleExplain_UpstreamError(t *testing.T) {
	s := newTestServer(&stubProvider{err: &relay.StatusError{StatusCode: 429, Body: "rate limited"}})

	req := makeToolRequest(t, "explain", map[string]any{"diagnosis": "d", "medicines": "m"})
	result, err := s.handleExplain(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error")
	}
	text := toolResultText(result)
	if !strings.HasPrefix(text, "Error: ") || !strings.Contains(text, "429") {
		t.Fatalf("unexpected error text: %s", text)
	}
}

func TestHandlePrompt_NoNetworkCall(t *testing.T) {
	p := &stubProvider{}
	s := newTestServer(p)

	req := makeToolRequest(t, "prompt", map[string]any{"diagnosis": "Asthma", "medicines": "Salbutamol"})
	result, err := s.handlePrompt(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolResultText(result))
	}
	text := toolResultText(result)
	if !strings.Contains(text, "Diagnosis: Asthma") || !strings.Contains(text, "Medicines: Salbutamol") {
		t.Fatalf("prompt missing inputs: %s", text)
	}
	if p.calls != 0 {
		t.Fatalf("prompt tool must not call the provider, got %d calls", p.calls)
	}
}

func TestHandlePrompt_MissingArgument(t *testing.T) {
	s := newTestServer(&stubProvider{})

	req := makeToolRequest(t, "prompt", map[string]any{"medicines": "Salbutamol"})
	result, err := s.handlePrompt(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for missing diagnosis")
	}
	if got := toolResultText(result); got != relay.MissingFieldsWarning {
		t.Fatalf("expected %q, got %q", relay.MissingFieldsWarning, got)
	}
}

func TestHandleExplain_LargeReplyVerbatim(t *testing.T) {
	content := strings.Repeat("é", 600_000) + "end"
	s := newTestServer(&stubProvider{content: content})

	req := makeToolRequest(t, "explain", map[string]any{"diagnosis": "d", "medicines": "m"})
	result, err := s.handleExplain(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := toolResultText(result)
	if got != content {
		t.Fatalf("reply altered: got %d bytes, want %d", len(got), len(content))
	}
	if !utf8.ValidString(got) {
		t.Fatal("reply is not valid UTF-8")
	}
}

// --- helpers ---

func makeToolRequest(t *testing.T, name string, args map[string]any) mcp.CallToolRequest {
	t.Helper()
	argsJSON, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("marshaling args: %v", err)
	}
	var raw any
	if err := json.Unmarshal(argsJSON, &raw); err != nil {
		t.Fatalf("unmarshaling args: %v", err)
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: raw,
		},
	}
}

func toolResultText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}
