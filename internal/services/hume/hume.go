// Package hume is a minimal client for the Hume AI text-to-speech JSON API.
package hume

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"toksmith/internal/services"
)

const (
	defaultBaseURL  = "https://api.hume.ai/v0/tts"
	defaultTimeout  = 60 * time.Second
	defaultVoice    = "Ava Song"
	defaultProvider = "HUME_AI"
	apiKeyHeader    = "X-Hume-Api-Key"
)

// Config captures the Hume connection settings.
type Config struct {
	APIKey         string
	BaseURL        string
	Voice          string
	VoiceProvider  string
	TimeoutSeconds int
}

// Client synthesizes speech through Hume.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds a Client, filling unset fields with Hume defaults.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if strings.TrimSpace(cfg.Voice) == "" {
		cfg.Voice = defaultVoice
	}
	if strings.TrimSpace(cfg.VoiceProvider) == "" {
		cfg.VoiceProvider = defaultProvider
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	c := &Client{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultVoice returns the configured voice name.
func (c *Client) DefaultVoice() string { return c.cfg.Voice }

type voice struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

type utterance struct {
	Text  string `json:"text"`
	Voice voice  `json:"voice"`
}

type synthesizeRequest struct {
	Utterances []utterance `json:"utterances"`
}

type synthesizeResponse struct {
	Generations []struct {
		Audio string `json:"audio"`
	} `json:"generations"`
}

// Synthesize returns the decoded audio for text spoken by voiceName. An empty
// voiceName uses the configured default.
func (c *Client) Synthesize(ctx context.Context, text, voiceName string) ([]byte, error) {
	if c.cfg.APIKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tts", "synthesize", "hume api key required", nil)
	}
	if strings.TrimSpace(text) == "" {
		return nil, services.Wrap(services.ErrValidation, "tts", "synthesize", "text is empty", nil)
	}
	if strings.TrimSpace(voiceName) == "" {
		voiceName = c.cfg.Voice
	}

	body, err := json.Marshal(synthesizeRequest{Utterances: []utterance{{
		Text:  text,
		Voice: voice{Name: voiceName, Provider: c.cfg.VoiceProvider},
	}}})
	if err != nil {
		return nil, fmt.Errorf("hume request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("hume request: new request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "tts", "synthesize", "hume request failed", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("hume request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, services.Wrap(services.ErrTransient, "tts", "synthesize",
			fmt.Sprintf("hume http %d: %s", resp.StatusCode, strings.TrimSpace(string(payload))), nil)
	}

	var decoded synthesizeResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("hume request: decode response: %w", err)
	}
	if len(decoded.Generations) == 0 {
		return nil, services.Wrap(services.ErrGeneration, "tts", "synthesize", "no generations returned", nil)
	}
	audio, err := base64.StdEncoding.DecodeString(decoded.Generations[0].Audio)
	if err != nil {
		return nil, fmt.Errorf("hume request: decode audio: %w", err)
	}
	return audio, nil
}
