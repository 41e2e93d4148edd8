package sources

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"toksmith/internal/content"
	"toksmith/internal/logging"
	"toksmith/internal/metrics"
	"toksmith/internal/services"
)

// Adapter fetches and normalizes content from one source.
type Adapter interface {
	Source() content.Source
	// Validate reports whether url belongs to this source. It never performs I/O.
	Validate(url string) bool
	Fetch(ctx context.Context, url string) (*content.ScrapedContent, error)
}

// resolutionOrder is the order adapters are tried when no source is given.
var resolutionOrder = []content.Source{
	content.SourceReddit,
	content.SourceTwitter,
	content.SourceStackOverflow,
}

const (
	defaultFetchTimeout = 60 * time.Second
	defaultConcurrency  = 4
)

// Registry maps sources to adapters and runs fetches.
type Registry struct {
	mu           sync.RWMutex
	adapters     map[content.Source]Adapter
	fetchTimeout time.Duration
	concurrency  int
	logger       *slog.Logger
}

// Option customizes a Registry.
type Option func(*Registry)

// WithFetchTimeout bounds each adapter Fetch call.
func WithFetchTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.fetchTimeout = d
		}
	}
}

// WithConcurrency bounds parallel fetches in FetchMany.
func WithConcurrency(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithLogger sets the registry logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		adapters:     make(map[content.Source]Adapter),
		fetchTimeout: defaultFetchTimeout,
		concurrency:  defaultConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "sources")
	return r
}

// Register adds or replaces the adapter for its source.
func (r *Registry) Register(adapter Adapter) {
	if adapter == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[adapter.Source()] = adapter
}

// Adapter returns the adapter registered for source.
func (r *Registry) Adapter(source content.Source) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[source]
	return adapter, ok
}

// Resolve determines which source handles url. An explicit source must have
// an adapter whose pattern matches. Without one, adapters are tried in
// resolution order and the first match wins.
func (r *Registry) Resolve(source *content.Source, url string) (content.Source, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", services.Wrap(services.ErrValidation, "input", "resolve", "url is required", nil)
	}
	if source != nil {
		adapter, ok := r.Adapter(*source)
		if !ok {
			return "", services.Wrap(services.ErrValidation, "input", "resolve",
				fmt.Sprintf("source %q does not accept urls", *source), nil)
		}
		if !adapter.Validate(url) {
			return "", services.Wrap(services.ErrValidation, "input", "resolve",
				fmt.Sprintf("url is not a valid %s url", *source), nil)
		}
		return *source, nil
	}
	for _, candidate := range resolutionOrder {
		adapter, ok := r.Adapter(candidate)
		if ok && adapter.Validate(url) {
			return candidate, nil
		}
	}
	return "", services.Wrap(services.ErrUnresolvedSource, "input", "resolve",
		fmt.Sprintf("could not determine source for %q", url), nil)
}

// Fetch resolves url and runs the adapter under the configured timeout.
func (r *Registry) Fetch(ctx context.Context, source *content.Source, url string) (*content.ScrapedContent, error) {
	resolved, err := r.Resolve(source, url)
	if err != nil {
		return nil, err
	}
	adapter, _ := r.Adapter(resolved)

	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	started := time.Now()
	sc, err := adapter.Fetch(fetchCtx, strings.TrimSpace(url))
	metrics.ObserveFetch(string(resolved), started, err)
	if err != nil {
		return nil, err
	}
	logging.WithContext(ctx, r.logger).Debug("source fetched",
		logging.String(logging.FieldSource, string(resolved)),
		logging.Int("comments", content.CountComments(sc.Comments)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return sc, nil
}

// Request is one item of a batch fetch.
type Request struct {
	Source *content.Source `json:"source,omitempty"`
	URL    string          `json:"url"`
}

// FetchMany fetches all requests concurrently. The result has one entry per
// request; failed items are nil and logged. A failure never cancels siblings.
func (r *Registry) FetchMany(ctx context.Context, requests []Request) []*content.ScrapedContent {
	results := make([]*content.ScrapedContent, len(requests))
	var group errgroup.Group
	group.SetLimit(r.concurrency)
	for i, req := range requests {
		group.Go(func() error {
			sc, err := r.Fetch(ctx, req.Source, req.URL)
			if err != nil {
				logging.WarnWithContext(logging.WithContext(ctx, r.logger), "batch item failed", "batch_fetch_failed",
					logging.Int("index", i),
					logging.String("url", req.URL),
					logging.String(logging.FieldErrorKind, services.Kind(err)),
					logging.Error(err),
					logging.String(logging.FieldImpact, "item omitted from batch result"),
				)
				return nil
			}
			results[i] = sc
			return nil
		})
	}
	_ = group.Wait()
	return results
}
