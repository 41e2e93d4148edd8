package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"toksmith/internal/config"
	"toksmith/internal/content"
	"toksmith/internal/logging"
	"toksmith/internal/notifications"
	"toksmith/internal/queue"
)

// Fetcher resolves and fetches source URLs. *sources.Registry satisfies it.
type Fetcher interface {
	Resolve(source *content.Source, url string) (content.Source, error)
	Fetch(ctx context.Context, source *content.Source, url string) (*content.ScrapedContent, error)
}

// Manager coordinates the scrape worker pool.
type Manager struct {
	store         *queue.Store
	fetcher       Fetcher
	notifier      notifications.Service
	logger        *slog.Logger
	workers       int
	pollInterval  time.Duration
	retryInterval time.Duration

	wake chan struct{}

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
	lastJob *queue.Job
	busy    int
}

// NewManager constructs a manager sized by cfg.Workers. A nil notifier
// disables events.
func NewManager(cfg *config.Config, store *queue.Store, fetcher Fetcher, notifier notifications.Service, logger *slog.Logger) *Manager {
	if notifier == nil {
		notifier = notifications.NewNoop()
	}
	workers := cfg.Workers.Count
	if workers <= 0 {
		workers = 1
	}
	return &Manager{
		store:         store,
		fetcher:       fetcher,
		notifier:      notifier,
		logger:        logging.NewComponentLogger(logger, "workflow-manager"),
		workers:       workers,
		pollInterval:  time.Duration(cfg.Workers.QueuePollInterval) * time.Second,
		retryInterval: time.Duration(cfg.Workers.ErrorRetryInterval) * time.Second,
		wake:          make(chan struct{}, 1),
	}
}

// Enqueue resolves the source for url and inserts a pending job. Resolution
// failures are returned before anything is written.
func (m *Manager) Enqueue(ctx context.Context, source *content.Source, url string) (*queue.Job, error) {
	resolved, err := m.fetcher.Resolve(source, url)
	if err != nil {
		return nil, err
	}
	job, err := m.store.NewJob(ctx, resolved.String(), url)
	if err != nil {
		return nil, err
	}
	m.logger.Info("job enqueued",
		logging.String(logging.FieldJobID, job.ID),
		logging.String(logging.FieldSource, job.Source),
		logging.String("url", job.URL),
	)
	m.Wake()
	return job, nil
}

// Wake nudges an idle worker to poll immediately.
func (m *Manager) Wake() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}
