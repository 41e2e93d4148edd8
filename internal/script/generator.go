package script

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"toksmith/internal/content"
	"toksmith/internal/logging"
	"toksmith/internal/metrics"
	"toksmith/internal/services"
)

const (
	DefaultMaxTokens   = 4000
	DefaultTemperature = 0.7
	defaultTimeout     = 90 * time.Second
)

// Request is a single prompt sent to a generative provider.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Response carries the provider's raw text.
type Response struct {
	Content string
}

// Provider produces text for a prompt.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (Response, error)
}

// Generator turns ScrapedContent into a Script through a Provider.
type Generator struct {
	provider    Provider
	template    PromptTemplate
	timeout     time.Duration
	maxTokens   int
	temperature float64
	logger      *slog.Logger
}

// GeneratorOption customizes a Generator.
type GeneratorOption func(*Generator)

// WithTimeout bounds each provider call.
func WithTimeout(timeout time.Duration) GeneratorOption {
	return func(g *Generator) {
		if timeout > 0 {
			g.timeout = timeout
		}
	}
}

// WithTemplate replaces the built-in prompt template.
func WithTemplate(tmpl PromptTemplate) GeneratorOption {
	return func(g *Generator) { g.template = tmpl }
}

// WithSampling overrides max tokens and temperature.
func WithSampling(maxTokens int, temperature float64) GeneratorOption {
	return func(g *Generator) {
		if maxTokens > 0 {
			g.maxTokens = maxTokens
		}
		g.temperature = temperature
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGenerator builds a Generator around provider.
func NewGenerator(provider Provider, opts ...GeneratorOption) *Generator {
	g := &Generator{
		provider:    provider,
		template:    DefaultPromptTemplate(),
		timeout:     defaultTimeout,
		maxTokens:   DefaultMaxTokens,
		temperature: DefaultTemperature,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Provider returns the name of the underlying provider.
func (g *Generator) Provider() string {
	return g.provider.Name()
}

// Generate builds a prompt for sc, asks the provider, and parses the reply.
func (g *Generator) Generate(ctx context.Context, sc *content.ScrapedContent) (*Script, error) {
	if sc == nil {
		return nil, services.Wrap(services.ErrValidation, "script", "generate", "no scraped content", nil)
	}
	logger := logging.WithContext(ctx, g.logger)
	name := g.provider.Name()

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	started := time.Now()
	resp, err := g.provider.Generate(callCtx, Request{
		System:      g.template.System,
		Prompt:      g.template.Render(sc),
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		metrics.ScriptGenerationsTotal.WithLabelValues(name, metrics.OutcomeFailure).Inc()
		var genErr *services.GenerationError
		if errors.As(err, &genErr) {
			return nil, err
		}
		return nil, services.NewGenerationError("script", name+" request failed", "", err)
	}

	s, err := Parse(resp.Content)
	if err != nil {
		metrics.ScriptGenerationsTotal.WithLabelValues(name, metrics.OutcomeFailure).Inc()
		logging.WarnWithContext(logger, "provider returned an unusable script", "script_rejected",
			logging.String("provider", name),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "retry the request or adjust llm.prompt_file"),
		)
		return nil, err
	}

	metrics.ScriptGenerationsTotal.WithLabelValues(name, metrics.OutcomeSuccess).Inc()
	logger.Info("script generated",
		logging.String("provider", name),
		logging.String("script_id", s.ID),
		logging.Int("lines", len(s.Lines)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return s, nil
}
