package project

import (
	"log/slog"
	"time"

	"toksmith/internal/audio"
	"toksmith/internal/config"
	"toksmith/internal/notifications"
	"toksmith/internal/queue"
	"toksmith/internal/script"
	"toksmith/internal/services/anthropic"
	"toksmith/internal/services/hume"
	"toksmith/internal/services/llm"
)

// NewScriptProvider returns the generative provider selected by llm.provider.
func NewScriptProvider(cfg *config.Config) script.Provider {
	llmCfg := cfg.GetLLM()
	if llmCfg.Provider == config.ProviderAnthropic {
		return anthropic.New(anthropic.Config{
			APIKey:      llmCfg.APIKey,
			Model:       llmCfg.Model,
			MaxTokens:   llmCfg.MaxTokens,
			Temperature: llmCfg.Temperature,
		})
	}
	return llm.NewClient(llm.Config{
		APIKey:         llmCfg.APIKey,
		BaseURL:        llmCfg.BaseURL,
		Model:          llmCfg.Model,
		Referer:        llmCfg.Referer,
		Title:          llmCfg.Title,
		TimeoutSeconds: llmCfg.TimeoutSeconds,
		MaxTokens:      llmCfg.MaxTokens,
		Temperature:    llmCfg.Temperature,
		RetryAttempts:  llmCfg.RetryAttempts,
	})
}

// NewGenerator builds the script generator described by cfg.
func NewGenerator(cfg *config.Config, logger *slog.Logger) (*script.Generator, error) {
	tmpl, err := script.LoadPromptTemplate(cfg.LLM.PromptFile)
	if err != nil {
		return nil, err
	}
	llmCfg := cfg.GetLLM()
	return script.NewGenerator(NewScriptProvider(cfg),
		script.WithTemplate(tmpl),
		script.WithSampling(llmCfg.MaxTokens, llmCfg.Temperature),
		script.WithTimeout(time.Duration(llmCfg.TimeoutSeconds)*time.Second),
		script.WithLogger(logger),
	), nil
}

// NewSynthesizer builds the Hume-backed synthesizer writing into paths.audio_dir.
func NewSynthesizer(cfg *config.Config, logger *slog.Logger) *audio.Synthesizer {
	client := hume.NewClient(hume.Config{
		APIKey:         cfg.TTS.APIKey,
		BaseURL:        cfg.TTS.BaseURL,
		Voice:          cfg.TTS.Voice,
		VoiceProvider:  cfg.TTS.VoiceProvider,
		TimeoutSeconds: cfg.TTS.TimeoutSeconds,
	})
	return audio.NewSynthesizer(client, cfg.Paths.AudioDir,
		audio.WithVoice(client.DefaultVoice()),
		audio.WithTimeout(time.Duration(cfg.TTS.TimeoutSeconds)*time.Second),
		audio.WithLogger(logger),
	)
}

// NewFromConfig wires a Service with the configured providers.
func NewFromConfig(cfg *config.Config, store *queue.Store, fetcher Fetcher, notifier notifications.Service, logger *slog.Logger) (*Service, error) {
	generator, err := NewGenerator(cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewService(store, fetcher, generator, NewSynthesizer(cfg, logger), notifier, logger,
		WithDefaultResolution(cfg.Project.DefaultResolution),
	), nil
}
