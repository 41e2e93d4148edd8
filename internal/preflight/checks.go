package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"golang.org/x/sys/unix"

	"toksmith/internal/config"
	"toksmith/internal/services/llm"
)

// CheckLLM verifies the script provider. OpenRouter gets a live ping with a
// 30-second timeout and a single attempt; Anthropic only needs a key.
func CheckLLM(ctx context.Context, name string, cfg config.LLMConfig) Result {
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: fmt.Sprintf("%s API key missing", cfg.Provider)}
	}
	if cfg.Provider == config.ProviderAnthropic {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("anthropic key present (model %s)", cfg.Model)}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := llm.NewClient(llm.Config{
		APIKey:        cfg.APIKey,
		BaseURL:       cfg.BaseURL,
		Model:         cfg.Model,
		Referer:       cfg.Referer,
		Title:         cfg.Title,
		RetryAttempts: 1,
	})
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckTTS verifies that speech synthesis is configured.
func CheckTTS(cfg config.TTS) Result {
	const name = "Text to speech"
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Result{Name: name, Detail: "Hume API key missing (tts.api_key or HUME_API_KEY)"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("key present (voice %s)", cfg.Voice)}
}

// CheckRedditCredentials reports whether the reddit adapter can authenticate.
// Without credentials the adapter still reads public posts anonymously.
func CheckRedditCredentials(cfg config.Reddit) Result {
	const name = "Reddit"
	if strings.TrimSpace(cfg.ClientID) == "" || strings.TrimSpace(cfg.ClientSecret) == "" {
		return Result{Name: name, Passed: true, Detail: "anonymous access (no client credentials)"}
	}
	return Result{Name: name, Passed: true, Detail: "client credentials present"}
}

// CheckNATS verifies that the event broker accepts connections.
func CheckNATS(ctx context.Context, url string) Result {
	const name = "NATS"
	timeout := 5 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}
	nc, err := nats.Connect(url, nats.Timeout(timeout), nats.NoReconnect())
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", url, err)}
	}
	defer nc.Close()
	if err := nc.FlushTimeout(timeout); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: flush: %v)", url, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (connected)", url)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// summarizeLLMError produces a human-readable summary for LLM health check failures.
func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (LLM API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (LLM API unreachable)"
	}
	return err.Error()
}
