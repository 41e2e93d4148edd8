package workflow_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"toksmith/internal/content"
	"toksmith/internal/logging"
	"toksmith/internal/notifications"
	"toksmith/internal/queue"
	"toksmith/internal/services"
	"toksmith/internal/testsupport"
	"toksmith/internal/workflow"
)

type stubFetcher struct {
	mu      sync.Mutex
	fetched []string
}

func (f *stubFetcher) Resolve(source *content.Source, url string) (content.Source, error) {
	if source != nil {
		return *source, nil
	}
	if strings.Contains(url, "reddit.com") {
		return content.SourceReddit, nil
	}
	return "", services.Wrap(services.ErrUnresolvedSource, "sources", "resolve", url, nil)
}

func (f *stubFetcher) Fetch(_ context.Context, source *content.Source, url string) (*content.ScrapedContent, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, url)
	f.mu.Unlock()
	if strings.Contains(url, "broken") {
		return nil, services.Wrap(services.ErrFetch, "reddit", "fetch", "403 forbidden", nil)
	}
	return &content.ScrapedContent{Source: *source, URL: url, Title: "title for " + url, Content: "body"}, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (r *recordingNotifier) Publish(_ context.Context, event notifications.Event, _ notifications.Payload) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	return nil
}

func (r *recordingNotifier) Close() {}

func (r *recordingNotifier) count(event notifications.Event) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e == event {
			n++
		}
	}
	return n
}

func waitForTerminal(t *testing.T, store *queue.Store, id string) *queue.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.GetJob(context.Background(), id)
		if err != nil {
			t.Fatalf("GetJob: %v", err)
		}
		if job.Status.IsTerminal() {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", id)
	return nil
}

func TestEnqueueRejectsUnresolvedURLWithoutWriting(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	mgr := workflow.NewManager(cfg, store, &stubFetcher{}, nil, logging.NewNop())

	if _, err := mgr.Enqueue(context.Background(), nil, "https://example.com/page"); !errors.Is(err, services.ErrUnresolvedSource) {
		t.Fatalf("expected unresolved source, got %v", err)
	}
	jobs, err := store.ListJobs(context.Background())
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("expected no jobs, got %d", len(jobs))
	}
}

func TestManagerProcessesJobs(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithWorkers(3))
	store := testsupport.MustOpenStore(t, cfg)
	fetcher := &stubFetcher{}
	notifier := &recordingNotifier{}
	mgr := workflow.NewManager(cfg, store, fetcher, notifier, logging.NewNop())

	ctx := context.Background()
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(mgr.Stop)

	ok, err := mgr.Enqueue(ctx, nil, "https://www.reddit.com/r/go/comments/abc/x")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if ok.Status != queue.JobPending || ok.Source != "reddit" {
		t.Fatalf("unexpected enqueued job %+v", ok)
	}
	twitter := content.SourceTwitter
	bad, err := mgr.Enqueue(ctx, &twitter, "https://x.com/u/status/broken")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	done := waitForTerminal(t, store, ok.ID)
	if done.Status != queue.JobCompleted {
		t.Fatalf("expected completed, got %s (%s)", done.Status, done.ErrorMessage)
	}
	scraped, err := content.Decode([]byte(done.ScrapedJSON))
	if err != nil || scraped.Title != "title for "+ok.URL {
		t.Fatalf("unexpected scraped payload %+v %v", scraped, err)
	}

	failed := waitForTerminal(t, store, bad.ID)
	if failed.Status != queue.JobFailed || !strings.Contains(failed.ErrorMessage, "403 forbidden") {
		t.Fatalf("unexpected failed job %+v", failed)
	}
	if failed.Source != "twitter" {
		t.Fatalf("explicit source not kept: %s", failed.Source)
	}

	deadline := time.Now().Add(time.Second)
	for (notifier.count(notifications.EventJobFailed) == 0 || notifier.count(notifications.EventJobCompleted) == 0) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if notifier.count(notifications.EventJobCompleted) != 1 || notifier.count(notifications.EventJobFailed) != 1 {
		t.Fatalf("unexpected events: %d completed, %d failed",
			notifier.count(notifications.EventJobCompleted), notifier.count(notifications.EventJobFailed))
	}

	status := mgr.Status(ctx)
	if !status.Running || status.Workers != 3 {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestStartFailsAbandonedJobs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	stuck := testsupport.NewJob(t, store, "reddit", "https://www.reddit.com/r/a/comments/b/c")
	if _, err := store.ClaimNextJob(ctx); err != nil {
		t.Fatalf("ClaimNextJob: %v", err)
	}

	fetcher := &stubFetcher{}
	mgr := workflow.NewManager(cfg, store, fetcher, nil, logging.NewNop())
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	mgr.Stop()

	job, err := store.GetJob(ctx, stuck.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if job.Status != queue.JobFailed || job.ErrorMessage != queue.DaemonStopReason {
		t.Fatalf("unexpected job %+v", job)
	}
	if len(fetcher.fetched) != 0 {
		t.Fatal("abandoned jobs must not be fetched again")
	}
}

func TestStartTwiceFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	mgr := workflow.NewManager(cfg, store, &stubFetcher{}, nil, logging.NewNop())
	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer mgr.Stop()
	if err := mgr.Start(context.Background()); err == nil {
		t.Fatal("expected second Start to fail")
	}
}
