package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/medsum/medsum/relay"
)

func TestRunExplain_MissingField(t *testing.T) {
	t.Setenv("API_KEY", "test-key")
	path := writeConfig(t, "")

	for _, args := range [][]string{
		{"--diagnosis", "Hypertension"},
		{"--medicines", "Amlodipine"},
		{"--diagnosis", "  ", "--medicines", "Amlodipine"},
	} {
		code := run(append([]string{"--config", path, "explain"}, args...))
		if code != 1 {
			t.Errorf("%v: expected exit code 1 for missing field, got %d", args, code)
		}
	}
}

func TestRunExplain_MissingAPIKey(t *testing.T) {
	clearAPIKeys(t)
	path := writeConfig(t, "")

	code := run([]string{"--config", path, "explain", "--diagnosis", "d", "--medicines", "m"})
	if code != 2 {
		t.Fatalf("expected exit code 2 for missing API key, got %d", code)
	}
}

func TestRunExplain_DryRunNeedsNoKey(t *testing.T) {
	clearAPIKeys(t)
	path := writeConfig(t, "template: short\n")

	out, code := captureStdout(t, func() int {
		return run([]string{"--config", path, "explain", "--dry-run", "--diagnosis", "Asthma", "--medicines", "Salbutamol"})
	})
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	want := relay.BuildPrompt(relay.TemplateShort, relay.Request{Diagnosis: "Asthma", Medicines: "Salbutamol"})
	if out != want {
		t.Fatalf("unexpected prompt:\n%s\nwant:\n%s", out, want)
	}
}

func TestRunExplain_DryRunDefaultsToExtended(t *testing.T) {
	clearAPIKeys(t)
	path := writeConfig(t, "")

	out, code := captureStdout(t, func() int {
		return run([]string{"--config", path, "explain", "--dry-run", "--diagnosis", "Asthma", "--medicines", "Salbutamol"})
	})
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.HasSuffix(out, "Explanation:\n") {
		t.Fatalf("expected extended prompt, got:\n%s", out)
	}
}

func TestRunExplain_Success(t *testing.T) {
	srv, hits := fakeOpenRouter(t, 200, completionJSON)
	t.Setenv("API_KEY", "test-key")
	path := writeConfig(t, "base_url: "+srv.URL+"/api/v1\ntimeout: 5s\n")

	out, code := captureStdout(t, func() int {
		return run([]string{"--config", path, "explain", "--diagnosis", "Hypertension", "--medicines", "Amlodipine"})
	})
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if out != "Explanation:\nHypertension means high blood pressure.\n" {
		t.Fatalf("unexpected output: %q", out)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected 1 request, got %d", hits.Load())
	}
}

func TestRunExplain_JSONOverHTTPProvider(t *testing.T) {
	srv, _ := fakeOpenRouter(t, 200, completionJSON)
	t.Setenv("API_KEY", "test-key")
	path := writeConfig(t, "provider: http\nbase_url: "+srv.URL+"/api/v1\ntimeout: 5s\n")

	out, code := captureStdout(t, func() int {
		return run([]string{"--config", path, "explain", "--json", "--diagnosis", "Hypertension", "--medicines", "Amlodipine"})
	})
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}

	var got explainOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON output: %v\nOutput: %s", err, out)
	}
	if got.Explanation != "Hypertension means high blood pressure." {
		t.Errorf("explanation = %q", got.Explanation)
	}
	if got.Diagnosis != "Hypertension" || got.Medicines != "Amlodipine" {
		t.Errorf("inputs not echoed: %+v", got)
	}
	if got.PromptTokens != 1200 || got.CompletionTokens != 80 {
		t.Errorf("usage = %d/%d", got.PromptTokens, got.CompletionTokens)
	}
}

func TestRunExplain_UpstreamError(t *testing.T) {
	srv, hits := fakeOpenRouter(t, 500, `{"error":{"message":"boom"}}`)
	t.Setenv("API_KEY", "test-key")
	path := writeConfig(t, "base_url: "+srv.URL+"/api/v1\ntimeout: 5s\n")

	code := run([]string{"--config", path, "explain", "--diagnosis", "d", "--medicines", "m"})
	if code != 2 {
		t.Fatalf("expected exit code 2 for upstream error, got %d", code)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected exactly 1 request (no retries), got %d", hits.Load())
	}
}
