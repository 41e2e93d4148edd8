package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAPI()
	c.normalizeSources()
	if err := c.normalizeLLM(); err != nil {
		return err
	}
	c.normalizeTTS()
	c.normalizeNATS()
	c.normalizeLogging()
	c.Project.DefaultResolution = strings.TrimSpace(c.Project.DefaultResolution)
	if c.Project.DefaultResolution == "" {
		c.Project.DefaultResolution = defaultResolution
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.AudioDir) == "" {
		c.Paths.AudioDir = defaultAudioDir
	}
	if c.Paths.AudioDir, err = expandPath(c.Paths.AudioDir); err != nil {
		return fmt.Errorf("paths.audio_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAPI() {
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	if c.API.Bind == "" {
		c.API.Bind = defaultAPIBind
	}
	if value, ok := lookupEnv("TOKSMITH_API_BIND"); ok {
		c.API.Bind = value
	}
	if c.API.RequestTimeout <= 0 {
		c.API.RequestTimeout = defaultAPIRequestTimeout
	}
	if strings.TrimSpace(c.Metrics.Path) == "" {
		c.Metrics.Path = defaultMetricsPath
	}
}

func (c *Config) normalizeSources() {
	fillFromEnv(&c.Reddit.ClientID, "REDDIT_CLIENT_ID")
	fillFromEnv(&c.Reddit.ClientSecret, "REDDIT_CLIENT_SECRET")
	fillFromEnv(&c.Reddit.Username, "REDDIT_USERNAME")
	fillFromEnv(&c.Reddit.Password, "REDDIT_PASSWORD")
	if value, ok := lookupEnv("REDDIT_USER_AGENT"); ok {
		c.Reddit.UserAgent = value
	}
	if strings.TrimSpace(c.Reddit.UserAgent) == "" {
		c.Reddit.UserAgent = defaultRedditUserAgent
	}

	fillFromEnv(&c.Twitter.BearerToken, "TWITTER_BEARER_TOKEN")
	fillFromEnv(&c.Twitter.APIKey, "TWITTER_API_KEY")
	fillFromEnv(&c.Twitter.APISecret, "TWITTER_API_SECRET")
	c.Twitter.BaseURL = strings.TrimRight(strings.TrimSpace(c.Twitter.BaseURL), "/")
	if c.Twitter.BaseURL == "" {
		c.Twitter.BaseURL = defaultTwitterBaseURL
	}
	if strings.TrimSpace(c.Twitter.TokenURL) == "" {
		c.Twitter.TokenURL = defaultTwitterTokenURL
	}

	if strings.TrimSpace(c.StackOverflow.UserAgent) == "" {
		c.StackOverflow.UserAgent = defaultStackOverflowUserAgent
	}
}

func (c *Config) normalizeLLM() error {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = ProviderOpenRouter
	}
	fillFromEnv(&c.LLM.APIKey, "OPENROUTER_API_KEY")
	fillFromEnv(&c.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	if strings.TrimSpace(c.LLM.BaseURL) == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		c.LLM.Model = defaultLLMModel
	}
	if strings.TrimSpace(c.Anthropic.Model) == "" {
		c.Anthropic.Model = defaultAnthropicModel
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = defaultLLMMaxTokens
	}
	if c.LLM.RetryAttempts <= 0 {
		c.LLM.RetryAttempts = defaultLLMRetryAttempts
	}
	if strings.TrimSpace(c.LLM.PromptFile) != "" {
		expanded, err := expandPath(c.LLM.PromptFile)
		if err != nil {
			return fmt.Errorf("llm.prompt_file: %w", err)
		}
		c.LLM.PromptFile = expanded
	}
	return nil
}

func (c *Config) normalizeTTS() {
	fillFromEnv(&c.TTS.APIKey, "HUME_API_KEY")
	if strings.TrimSpace(c.TTS.BaseURL) == "" {
		c.TTS.BaseURL = defaultTTSBaseURL
	}
	if strings.TrimSpace(c.TTS.Voice) == "" {
		c.TTS.Voice = defaultTTSVoice
	}
	c.TTS.VoiceProvider = strings.ToUpper(strings.TrimSpace(c.TTS.VoiceProvider))
	if c.TTS.VoiceProvider == "" {
		c.TTS.VoiceProvider = defaultTTSVoiceProvider
	}
}

func (c *Config) normalizeNATS() {
	fillFromEnv(&c.NATS.URL, "NATS_URL")
	c.NATS.SubjectPrefix = strings.Trim(strings.TrimSpace(c.NATS.SubjectPrefix), ".")
	if c.NATS.SubjectPrefix == "" {
		c.NATS.SubjectPrefix = defaultNATSSubjectPrefix
	}
	if strings.TrimSpace(c.NATS.ClientName) == "" {
		c.NATS.ClientName = defaultNATSClientName
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// fillFromEnv sets target from the named variable when the config left it empty.
func fillFromEnv(target *string, name string) {
	*target = strings.TrimSpace(*target)
	if *target != "" {
		return
	}
	if value, ok := lookupEnv(name); ok {
		*target = value
	}
}

func lookupEnv(name string) (string, bool) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}
