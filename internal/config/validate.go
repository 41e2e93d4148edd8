package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Validate ensures the configuration is usable. Provider credentials are not
// required here; components that need them fail at call time with a
// configuration error so the CLI stays usable without secrets.
func (c *Config) Validate() error {
	if err := c.validateWorkers(); err != nil {
		return err
	}
	if err := c.validateSources(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateProject(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateWorkers() error {
	if c.Workers.Count <= 0 {
		return errors.New("workers.count must be positive")
	}
	if c.Workers.QueuePollInterval < 0 {
		return errors.New("workers.queue_poll_interval must be zero or positive")
	}
	if c.Workers.ErrorRetryInterval <= 0 {
		return errors.New("workers.error_retry_interval must be positive")
	}
	if c.Workers.FetchConcurrency <= 0 {
		return errors.New("workers.fetch_concurrency must be positive")
	}
	return nil
}

func (c *Config) validateSources() error {
	if c.Reddit.CommentLimit <= 0 {
		return errors.New("reddit.comment_limit must be positive")
	}
	if (c.Reddit.Username == "") != (c.Reddit.Password == "") {
		return errors.New("reddit.username and reddit.password must be set together")
	}
	if c.Twitter.MaxThread < 10 || c.Twitter.MaxThread > 100 {
		return errors.New("twitter.max_thread must be between 10 and 100")
	}
	if c.StackOverflow.MaxAnswers <= 0 {
		return errors.New("stackoverflow.max_answers must be positive")
	}
	for name, seconds := range map[string]int{
		"reddit.timeout_seconds":        c.Reddit.TimeoutSeconds,
		"twitter.timeout_seconds":       c.Twitter.TimeoutSeconds,
		"stackoverflow.timeout_seconds": c.StackOverflow.TimeoutSeconds,
		"tts.timeout_seconds":           c.TTS.TimeoutSeconds,
	} {
		if seconds <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}

func (c *Config) validateLLM() error {
	switch c.LLM.Provider {
	case ProviderOpenRouter, ProviderAnthropic:
	default:
		return fmt.Errorf("llm.provider: unsupported value %q (want %q or %q)", c.LLM.Provider, ProviderOpenRouter, ProviderAnthropic)
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	return nil
}

func (c *Config) validateProject() error {
	if err := ValidateResolution(c.Project.DefaultResolution); err != nil {
		return fmt.Errorf("project.default_resolution: %w", err)
	}
	return nil
}

// ValidateResolution checks a WIDTHxHEIGHT value such as 1080x1920.
func ValidateResolution(value string) error {
	width, height, ok := strings.Cut(value, "x")
	if !ok {
		return fmt.Errorf("resolution %q must look like 1080x1920", value)
	}
	for _, part := range []string{width, height} {
		if n, err := strconv.Atoi(part); err != nil || n <= 0 {
			return fmt.Errorf("resolution %q must look like 1080x1920", value)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
