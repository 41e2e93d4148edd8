// Package anthropic adapts the llmkit Anthropic client to script.Provider.
package anthropic

import (
	"context"
	"strings"

	llmanthropic "github.com/aktagon/llmkit/anthropic"
	"github.com/aktagon/llmkit/anthropic/types"

	"toksmith/internal/script"
	"toksmith/internal/services"
)

// ProviderName identifies this provider in logs and metrics.
const ProviderName = "anthropic"

// Config holds the Anthropic credentials and sampling defaults.
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

type promptFunc func(system, user, apiKey string, settings types.RequestSettings) (string, error)

// Provider sends prompts through llmkit.
type Provider struct {
	cfg    Config
	prompt promptFunc
}

// New returns a Provider for cfg.
func New(cfg Config) *Provider {
	return newProvider(cfg, sendPrompt)
}

func newProvider(cfg Config, prompt promptFunc) *Provider {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Model = strings.TrimSpace(cfg.Model)
	return &Provider{cfg: cfg, prompt: prompt}
}

func sendPrompt(system, user, apiKey string, settings types.RequestSettings) (string, error) {
	resp, err := llmanthropic.PromptWithSettings(system, user, "", apiKey, settings)
	if err != nil {
		return "", err
	}
	if len(resp.Content) == 0 {
		return "", services.Wrap(services.ErrGeneration, "anthropic", "prompt", "no content in response", nil)
	}
	return resp.Content[0].Text, nil
}

// Name implements script.Provider.
func (p *Provider) Name() string { return ProviderName }

// Generate implements script.Provider. llmkit calls are not cancellable, so
// a cancelled ctx returns immediately and the request finishes in the
// background.
func (p *Provider) Generate(ctx context.Context, req script.Request) (script.Response, error) {
	if p.cfg.APIKey == "" {
		return script.Response{}, services.Wrap(services.ErrConfiguration, "anthropic", "generate", "anthropic api key required", nil)
	}
	settings := types.RequestSettings{
		Model:       p.cfg.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if settings.MaxTokens <= 0 {
		settings.MaxTokens = p.cfg.MaxTokens
	}
	if settings.Temperature == 0 {
		settings.Temperature = p.cfg.Temperature
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := p.prompt(req.System, req.Prompt, p.cfg.APIKey, settings)
		done <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return script.Response{}, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return script.Response{}, r.err
		}
		return script.Response{Content: r.text}, nil
	}
}
