package project

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"toksmith/internal/audio"
	"toksmith/internal/config"
	"toksmith/internal/content"
	"toksmith/internal/logging"
	"toksmith/internal/metrics"
	"toksmith/internal/notifications"
	"toksmith/internal/queue"
	"toksmith/internal/script"
	"toksmith/internal/services"
)

const (
	StageScrape = "scrape"
	StageScript = "script"
	StageAudio  = "audio"
)

// Fetcher resolves and fetches source URLs.
type Fetcher interface {
	Resolve(source *content.Source, url string) (content.Source, error)
	Fetch(ctx context.Context, source *content.Source, url string) (*content.ScrapedContent, error)
}

// ScriptGenerator turns scraped content into a script.
type ScriptGenerator interface {
	Generate(ctx context.Context, sc *content.ScrapedContent) (*script.Script, error)
}

// AudioSynthesizer fills audio paths for a script.
type AudioSynthesizer interface {
	Synthesize(ctx context.Context, sc *script.Script) (*script.Script, audio.Result, error)
}

// InitOptions are the optional inputs to Init and InitFromScript.
type InitOptions struct {
	Source     *content.Source
	Title      string
	Resolution string
}

// Service owns project state transitions.
type Service struct {
	store     *queue.Store
	fetcher   Fetcher
	generator ScriptGenerator
	synth     AudioSynthesizer
	notifier  notifications.Service
	logger    *slog.Logger

	defaultResolution string
}

// Option customizes a Service.
type Option func(*Service)

// WithDefaultResolution sets the resolution used when a request names none.
func WithDefaultResolution(resolution string) Option {
	return func(s *Service) {
		s.defaultResolution = strings.TrimSpace(resolution)
	}
}

// NewService wires a Service. A nil notifier disables events.
func NewService(store *queue.Store, fetcher Fetcher, generator ScriptGenerator, synth AudioSynthesizer, notifier notifications.Service, logger *slog.Logger, opts ...Option) *Service {
	if notifier == nil {
		notifier = notifications.NewNoop()
	}
	s := &Service{
		store:     store,
		fetcher:   fetcher,
		generator: generator,
		synth:     synth,
		notifier:  notifier,
		logger:    logging.NewComponentLogger(logger, "project"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init creates a project for url and scrapes it through the registry. A
// source that cannot be resolved is rejected before anything is stored.
func (s *Service) Init(ctx context.Context, url string, opts InitOptions) (*queue.Project, error) {
	url = strings.TrimSpace(url)
	resolution, err := s.resolution("init", opts.Resolution)
	if err != nil {
		return nil, err
	}
	source, err := s.fetcher.Resolve(opts.Source, url)
	if err != nil {
		return nil, err
	}
	p, err := s.store.NewProject(ctx, queue.NewProjectParams{
		SourceURL:  url,
		SourceType: source.String(),
		Title:      opts.Title,
		Resolution: resolution,
	})
	if err != nil {
		return nil, err
	}
	ctx = services.WithStage(services.WithProjectID(ctx, p.ID), StageScrape)
	logger := logging.WithContext(ctx, s.logger)

	scraped, fetchErr := s.fetcher.Fetch(ctx, &source, url)
	if fetchErr != nil {
		p.Status = queue.ProjectFailed
		p.LastError = fetchErr.Error()
		if err := s.store.UpdateProject(context.WithoutCancel(ctx), p); err != nil {
			logger.Error("failed to record scrape failure", logging.Error(err))
		}
		s.finishStage(ctx, logger, p, StageScrape, fetchErr)
		return p, fetchErr
	}

	if err := s.applyScraped(p, scraped, opts.Title); err != nil {
		return p, err
	}
	if err := s.store.UpdateProject(ctx, p); err != nil {
		return p, err
	}
	s.finishStage(ctx, logger, p, StageScrape, nil)
	return p, nil
}

// InitFromScript creates a project at SCRAPED from user supplied text.
func (s *Service) InitFromScript(ctx context.Context, text string, opts InitOptions) (*queue.Project, error) {
	resolution, err := s.resolution("init from script", opts.Resolution)
	if err != nil {
		return nil, err
	}
	scraped, err := content.FromScript(text, logging.WithContext(ctx, s.logger))
	if err != nil {
		return nil, err
	}
	payload, err := scraped.Encode()
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = scraped.Title
	}
	p, err := s.store.NewProject(ctx, queue.NewProjectParams{
		SourceType:  content.SourceScript.String(),
		Status:      queue.ProjectScraped,
		Title:       title,
		Resolution:  resolution,
		ScrapedJSON: string(payload),
	})
	if err != nil {
		return nil, err
	}
	ctx = services.WithProjectID(ctx, p.ID)
	s.finishStage(ctx, logging.WithContext(ctx, s.logger), p, StageScrape, nil)
	return p, nil
}

// Confirm generates a script from the scraped content. It may be repeated
// while the project is SCRAPED or SCRIPT_GENERATED and overwrites any earlier
// script.
func (s *Service) Confirm(ctx context.Context, id string) (*queue.Project, error) {
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != queue.ProjectScraped && p.Status != queue.ProjectScriptGenerated {
		return p, invalidState("confirm", p, "scraped or script_generated")
	}
	scraped, err := content.Decode([]byte(p.ScrapedJSON))
	if err != nil {
		return p, services.Wrap(services.ErrValidation, "project", "confirm", "stored scraped content is unreadable", err)
	}
	if scraped == nil {
		return p, services.Wrap(services.ErrValidation, "project", "confirm", "project has no scraped content", nil)
	}

	ctx = services.WithStage(services.WithProjectID(ctx, p.ID), StageScript)
	logger := logging.WithContext(ctx, s.logger)

	sc, genErr := s.generator.Generate(ctx, scraped)
	if genErr != nil {
		s.recordFailure(ctx, logger, p, StageScript, genErr)
		return p, genErr
	}
	encoded, err := encodeScript(sc)
	if err != nil {
		return p, err
	}
	p.ScriptJSON = encoded
	p.Status = queue.ProjectScriptGenerated
	p.LastError = ""
	if err := s.store.UpdateProject(ctx, p); err != nil {
		return p, err
	}
	s.finishStage(ctx, logger, p, StageScript, nil)
	return p, nil
}

// GenerateAudio synthesizes the stored script. Lines that fail stay without
// audio and the project still moves to AUDIO_GENERATED.
func (s *Service) GenerateAudio(ctx context.Context, id string) (*queue.Project, audio.Result, error) {
	var res audio.Result
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, res, err
	}
	if p.Status != queue.ProjectScriptGenerated && p.Status != queue.ProjectAudioGenerated {
		return p, res, invalidState("generate audio", p, "script_generated or audio_generated")
	}
	sc, err := decodeScript(p.ScriptJSON)
	if err != nil {
		return p, res, err
	}

	ctx = services.WithStage(services.WithProjectID(ctx, p.ID), StageAudio)
	logger := logging.WithContext(ctx, s.logger)

	sc, res, synthErr := s.synth.Synthesize(ctx, sc)
	if synthErr != nil {
		s.recordFailure(ctx, logger, p, StageAudio, synthErr)
		return p, res, synthErr
	}
	encoded, err := encodeScript(sc)
	if err != nil {
		return p, res, err
	}
	p.ScriptJSON = encoded
	p.Status = queue.ProjectAudioGenerated
	p.LastError = ""
	if err := s.store.UpdateProject(context.WithoutCancel(ctx), p); err != nil {
		return p, res, err
	}
	if res.Failed > 0 {
		logging.WarnWithContext(logger, "some lines have no audio", "audio_partial",
			logging.Int("failed", res.Failed),
			logging.String(logging.FieldErrorHint, "run audio generation again to retry the missing lines"),
		)
	}
	s.finishStage(ctx, logger, p, StageAudio, nil)
	return p, res, nil
}

// Get returns a project by id.
func (s *Service) Get(ctx context.Context, id string) (*queue.Project, error) {
	return s.store.GetProject(ctx, id)
}

// List returns projects, optionally filtered by status.
func (s *Service) List(ctx context.Context, statuses ...queue.ProjectStatus) ([]*queue.Project, error) {
	return s.store.ListProjects(ctx, statuses...)
}

func (s *Service) applyScraped(p *queue.Project, scraped *content.ScrapedContent, title string) error {
	payload, err := scraped.Encode()
	if err != nil {
		return err
	}
	p.ScrapedJSON = string(payload)
	if strings.TrimSpace(title) == "" {
		p.Title = scraped.Title
	}
	p.Status = queue.ProjectScraped
	p.LastError = ""
	return nil
}

// recordFailure stores stageErr on the project without moving its status.
func (s *Service) recordFailure(ctx context.Context, logger *slog.Logger, p *queue.Project, stage string, stageErr error) {
	p.LastError = stageErr.Error()
	if err := s.store.UpdateProject(context.WithoutCancel(ctx), p); err != nil {
		logger.Error("failed to record stage failure", logging.Error(err))
	}
	s.finishStage(ctx, logger, p, stage, stageErr)
}

func (s *Service) finishStage(ctx context.Context, logger *slog.Logger, p *queue.Project, stage string, stageErr error) {
	metrics.ObserveStage(stage, stageErr)
	payload := notifications.Payload{
		"project_id": p.ID,
		"stage":      stage,
		"status":     string(p.Status),
	}
	if stageErr != nil {
		payload["error"] = stageErr.Error()
		payload["error_kind"] = services.Kind(stageErr)
		logging.WarnWithContext(logger, "project stage failed", "project_stage_failed",
			logging.String(logging.FieldErrorKind, services.Kind(stageErr)),
			logging.Error(stageErr),
			logging.String(logging.FieldImpact, "project stays at "+string(p.Status)),
		)
	} else {
		logger.Info("project stage completed", logging.String("status", string(p.Status)))
	}
	if err := s.notifier.Publish(context.WithoutCancel(ctx), notifications.EventProjectStage, payload); err != nil && !errors.Is(err, context.Canceled) {
		logger.Debug("project notification failed", logging.Error(err))
	}
}

// resolution returns requested, or the configured default when it is empty.
func (s *Service) resolution(op, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return s.defaultResolution, nil
	}
	if err := config.ValidateResolution(requested); err != nil {
		return "", services.Wrap(services.ErrValidation, "project", op, err.Error(), nil)
	}
	return requested, nil
}

func invalidState(op string, p *queue.Project, want string) error {
	return services.Wrap(services.ErrValidation, "project", op,
		"project is "+string(p.Status)+", expected "+want, nil)
}
