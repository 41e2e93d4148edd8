package preflight

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"toksmith/internal/config"
	"toksmith/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func healthServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		payload := map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": `{"ok":true}`}}},
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckLLM(t *testing.T) {
	ok := healthServer(t, http.StatusOK)
	denied := healthServer(t, http.StatusUnauthorized)

	cases := []struct {
		name string
		cfg  config.LLMConfig
		pass bool
	}{
		{"reachable", config.LLMConfig{Provider: config.ProviderOpenRouter, APIKey: "k", BaseURL: ok.URL, Model: "m"}, true},
		{"rejected key", config.LLMConfig{Provider: config.ProviderOpenRouter, APIKey: "k", BaseURL: denied.URL, Model: "m"}, false},
		{"missing key", config.LLMConfig{Provider: config.ProviderOpenRouter, BaseURL: ok.URL}, false},
		{"anthropic key only", config.LLMConfig{Provider: config.ProviderAnthropic, APIKey: "k", Model: "claude"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := CheckLLM(context.Background(), "LLM", tc.cfg)
			if result.Passed != tc.pass {
				t.Fatalf("expected passed=%v, got %+v", tc.pass, result)
			}
		})
	}
}

func TestCheckTTS(t *testing.T) {
	if CheckTTS(config.TTS{}).Passed {
		t.Fatal("expected failure without key")
	}
	if !CheckTTS(config.TTS{APIKey: "k", Voice: "Ava Song"}).Passed {
		t.Fatal("expected pass with key")
	}
}

func TestCheckNATSUnreachable(t *testing.T) {
	result := CheckNATS(context.Background(), "nats://127.0.0.1:1")
	if result.Passed {
		t.Fatal("expected failure for closed port")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_TestConfig(t *testing.T) {
	srv := healthServer(t, http.StatusOK)
	cfg := testsupport.NewConfig(t, testsupport.WithLLMEndpoint(srv.URL))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := RunAll(context.Background(), cfg)
	if len(results) != 6 {
		t.Fatalf("expected 6 results without nats, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
	if Failed(results) {
		t.Fatal("expected no failures")
	}
}

func TestRunAll_ReportsMissingSecrets(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutSecrets())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	if !Failed(RunAll(context.Background(), cfg)) {
		t.Fatal("expected failures without provider keys")
	}
}
