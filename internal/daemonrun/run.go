// Package daemonrun wires configuration into a running Toksmith daemon.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"toksmith/internal/api"
	"toksmith/internal/config"
	"toksmith/internal/daemon"
	"toksmith/internal/logging"
	"toksmith/internal/metrics"
	"toksmith/internal/notifications"
	"toksmith/internal/project"
	"toksmith/internal/queue"
	"toksmith/internal/sources"
	"toksmith/internal/workflow"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
	Version     string
}

// Run starts the toksmith daemon and blocks until SIGINT, SIGTERM, or ctx ends.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	level := cfg.Logging.Level
	if strings.TrimSpace(opts.LogLevel) != "" {
		level = opts.LogLevel
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", filepath.Join(cfg.Paths.LogDir, "toksmith.log")},
		Development: opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	metrics.Init(opts.Version)
	logDependencySnapshot(logger, cfg)

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		return err
	}

	registry, err := sources.NewDefaultRegistry(cfg, logger)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("build source registry: %w", err)
	}

	notifier, err := notifications.NewService(cfg, logger)
	if err != nil {
		logging.WarnWithContext(logger, "event publisher unavailable", "notifications_disabled",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check nats.url and that the server is reachable"),
			logging.String(logging.FieldImpact, "job and project events are not published"),
		)
		notifier = notifications.NewNoop()
	}
	defer notifier.Close()

	manager := workflow.NewManager(cfg, store, registry, notifier, logger)
	projects, err := project.NewFromConfig(cfg, store, registry, notifier, logger)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("build project service: %w", err)
	}

	router := api.NewRouter(api.Dependencies{
		Config:   cfg,
		Version:  opts.Version,
		Sources:  registry,
		Queue:    manager,
		Jobs:     store,
		Projects: projects,
		Logger:   logger,
	})

	d, err := daemon.New(cfg, store, manager, router, logger)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return err
	}

	// Written only once the daemon lock is held.
	pidPath := PIDPath(cfg)
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	<-signalCtx.Done()
	logger.Info("toksmith daemon shutting down")
	return nil
}

// PIDPath is where a running daemon records its process id.
func PIDPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.DataDir, "toksmith.pid")
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	llm := cfg.GetLLM()
	logger.Info("dependency snapshot",
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.String("llm_provider", llm.Provider),
		logging.String("llm_model", llm.Model),
		logging.Bool("llm_key_present", llm.APIKey != ""),
		logging.Bool("tts_key_present", strings.TrimSpace(cfg.TTS.APIKey) != ""),
		logging.Bool("reddit_credentials_present", strings.TrimSpace(cfg.Reddit.ClientID) != ""),
		logging.Bool("twitter_credentials_present", cfg.Twitter.BearerToken != "" || cfg.Twitter.APIKey != ""),
		logging.Bool("nats_enabled", strings.TrimSpace(cfg.NATS.URL) != ""),
		logging.Int("workers", cfg.Workers.Count),
	)
}
