package config

const (
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
)

const (
	defaultConfigPath             = "~/.config/toksmith/config.toml"
	defaultDataDir                = "~/.local/share/toksmith"
	defaultAudioDir               = "~/.local/share/toksmith/audio"
	defaultLogDir                 = "~/.local/share/toksmith/logs"
	defaultAPIBind                = "127.0.0.1:8000"
	defaultAPIRequestTimeout      = 120
	defaultWorkerCount            = 4
	defaultQueuePollInterval      = 2
	defaultErrorRetryInterval     = 10
	defaultFetchConcurrency       = 4
	defaultRedditUserAgent        = "Toksmith/0.1"
	defaultRedditCommentLimit     = 50
	defaultSourceTimeoutSeconds   = 30
	defaultTwitterBaseURL         = "https://api.twitter.com"
	defaultTwitterTokenURL        = "https://api.twitter.com/oauth2/token"
	defaultTwitterMaxThread       = 20
	defaultStackOverflowUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	defaultStackOverflowAnswers   = 20
	defaultLLMBaseURL             = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel               = "google/gemini-2.5-flash"
	defaultLLMReferer             = "https://github.com/Guntupalli-Sabarish/Toksmith"
	defaultLLMTitle               = "Toksmith Script Generator"
	defaultLLMTimeoutSeconds      = 90
	defaultLLMMaxTokens           = 4000
	defaultLLMTemperature         = 0.7
	defaultLLMRetryAttempts       = 1
	defaultAnthropicModel         = "claude-sonnet-4-5"
	defaultTTSBaseURL             = "https://api.hume.ai/v0/tts"
	defaultTTSVoice               = "Ava Song"
	defaultTTSVoiceProvider       = "HUME_AI"
	defaultTTSTimeoutSeconds      = 60
	defaultNATSSubjectPrefix      = "toksmith"
	defaultNATSClientName         = "toksmith"
	defaultMetricsPath            = "/metrics"
	defaultResolution             = "1080x1920"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			AudioDir: defaultAudioDir,
			LogDir:   defaultLogDir,
		},
		API: API{
			Bind:           defaultAPIBind,
			AllowedOrigins: []string{"*"},
			RequestTimeout: defaultAPIRequestTimeout,
		},
		Workers: Workers{
			Count:              defaultWorkerCount,
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			FetchConcurrency:   defaultFetchConcurrency,
		},
		Reddit: Reddit{
			UserAgent:      defaultRedditUserAgent,
			CommentLimit:   defaultRedditCommentLimit,
			TimeoutSeconds: defaultSourceTimeoutSeconds,
		},
		Twitter: Twitter{
			BaseURL:        defaultTwitterBaseURL,
			TokenURL:       defaultTwitterTokenURL,
			MaxThread:      defaultTwitterMaxThread,
			TimeoutSeconds: defaultSourceTimeoutSeconds,
		},
		StackOverflow: StackOverflow{
			UserAgent:      defaultStackOverflowUserAgent,
			MaxAnswers:     defaultStackOverflowAnswers,
			TimeoutSeconds: defaultSourceTimeoutSeconds,
		},
		LLM: LLM{
			Provider:       ProviderOpenRouter,
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			MaxTokens:      defaultLLMMaxTokens,
			Temperature:    defaultLLMTemperature,
			RetryAttempts:  defaultLLMRetryAttempts,
		},
		Anthropic: Anthropic{
			Model: defaultAnthropicModel,
		},
		TTS: TTS{
			BaseURL:        defaultTTSBaseURL,
			Voice:          defaultTTSVoice,
			VoiceProvider:  defaultTTSVoiceProvider,
			TimeoutSeconds: defaultTTSTimeoutSeconds,
		},
		NATS: NATS{
			SubjectPrefix: defaultNATSSubjectPrefix,
			ClientName:    defaultNATSClientName,
		},
		Metrics: Metrics{
			Enabled: true,
			Path:    defaultMetricsPath,
		},
		Project: Project{
			DefaultResolution: defaultResolution,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
