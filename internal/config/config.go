package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	AudioDir string `toml:"audio_dir"`
	LogDir   string `toml:"log_dir"`
}

// API contains HTTP surface settings.
type API struct {
	Bind           string   `toml:"bind"`
	AllowedOrigins []string `toml:"allowed_origins"`
	RequestTimeout int      `toml:"request_timeout"`
}

// Workers contains background job pool settings.
type Workers struct {
	Count              int `toml:"count"`
	QueuePollInterval  int `toml:"queue_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
	FetchConcurrency   int `toml:"fetch_concurrency"`
}

// Reddit contains credentials for the Reddit API. Leaving the password grant
// fields empty selects the read-only client.
type Reddit struct {
	ClientID       string `toml:"client_id"`
	ClientSecret   string `toml:"client_secret"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	UserAgent      string `toml:"user_agent"`
	CommentLimit   int    `toml:"comment_limit"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Twitter contains API v2 settings. A bearer token wins over app credentials.
type Twitter struct {
	BearerToken    string `toml:"bearer_token"`
	APIKey         string `toml:"api_key"`
	APISecret      string `toml:"api_secret"`
	BaseURL        string `toml:"base_url"`
	TokenURL       string `toml:"token_url"`
	MaxThread      int    `toml:"max_thread"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// StackOverflow contains page scraping settings.
type StackOverflow struct {
	UserAgent      string `toml:"user_agent"`
	MaxAnswers     int    `toml:"max_answers"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// LLM contains generative text provider settings.
type LLM struct {
	Provider       string  `toml:"provider"`
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	Referer        string  `toml:"referer"`
	Title          string  `toml:"title"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	MaxTokens      int     `toml:"max_tokens"`
	Temperature    float64 `toml:"temperature"`
	RetryAttempts  int     `toml:"retry_attempts"`
	PromptFile     string  `toml:"prompt_file"`
}

// Anthropic contains settings used when llm.provider is "anthropic".
type Anthropic struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// TTS contains text-to-speech provider settings.
type TTS struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Voice          string `toml:"voice"`
	VoiceProvider  string `toml:"voice_provider"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// NATS contains event publishing settings. An empty URL disables publishing.
type NATS struct {
	URL           string `toml:"url"`
	SubjectPrefix string `toml:"subject_prefix"`
	ClientName    string `toml:"client_name"`
}

// Metrics contains Prometheus exposition settings.
type Metrics struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Project contains video project defaults.
type Project struct {
	DefaultResolution string `toml:"default_resolution"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Toksmith.
//
// Configuration sections by subsystem:
//   - Paths: database, audio artifact, and log directories
//   - API: HTTP bind address and CORS origins
//   - Workers: scrape job pool size and polling
//   - Reddit, Twitter, StackOverflow: source adapter credentials and limits
//   - LLM, Anthropic: script generation provider
//   - TTS: audio synthesis provider
//   - NATS: pipeline event publishing
//   - Metrics: Prometheus endpoint
//   - Project: video project defaults
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	API           API           `toml:"api"`
	Workers       Workers       `toml:"workers"`
	Reddit        Reddit        `toml:"reddit"`
	Twitter       Twitter       `toml:"twitter"`
	StackOverflow StackOverflow `toml:"stackoverflow"`
	LLM           LLM           `toml:"llm"`
	Anthropic     Anthropic     `toml:"anthropic"`
	TTS           TTS           `toml:"tts"`
	NATS          NATS          `toml:"nats"`
	Metrics       Metrics       `toml:"metrics"`
	Project       Project       `toml:"project"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	loadDotEnv(resolvedPath)

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadDotEnv reads .env files from the working directory and next to the
// config file. Variables already present in the environment are kept.
func loadDotEnv(configPath string) {
	candidates := []string{".env"}
	if configPath != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(configPath), ".env"))
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err != nil || info.IsDir() {
			continue
		}
		_ = godotenv.Load(candidate)
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("toksmith.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.AudioDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite file backing jobs and projects.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "toksmith.db")
}

// LockPath returns the daemon single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "toksmith.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains the resolved generative provider settings.
type LLMConfig struct {
	Provider       string
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
	MaxTokens      int
	Temperature    float64
	RetryAttempts  int
}

// GetLLM returns the active provider's connection settings. For the
// anthropic provider the key and model come from the [anthropic] section.
func (c *Config) GetLLM() LLMConfig {
	cfg := LLMConfig{
		Provider:       c.LLM.Provider,
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		Referer:        strings.TrimSpace(c.LLM.Referer),
		Title:          strings.TrimSpace(c.LLM.Title),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
		MaxTokens:      c.LLM.MaxTokens,
		Temperature:    c.LLM.Temperature,
		RetryAttempts:  c.LLM.RetryAttempts,
	}
	if cfg.Provider == ProviderAnthropic {
		cfg.APIKey = strings.TrimSpace(c.Anthropic.APIKey)
		cfg.Model = strings.TrimSpace(c.Anthropic.Model)
		cfg.BaseURL = ""
	}
	return cfg
}
