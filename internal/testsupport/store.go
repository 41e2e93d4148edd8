package testsupport

import (
	"context"
	"testing"

	"toksmith/internal/config"
	"toksmith/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob inserts a pending job.
func NewJob(t testing.TB, store *queue.Store, source, url string) *queue.Job {
	t.Helper()

	job, err := store.NewJob(context.Background(), source, url)
	if err != nil {
		t.Fatalf("store.NewJob: %v", err)
	}
	return job
}

// NewProject inserts a project with the given status and scraped payload.
func NewProject(t testing.TB, store *queue.Store, status queue.ProjectStatus, scrapedJSON string) *queue.Project {
	t.Helper()

	p, err := store.NewProject(context.Background(), queue.NewProjectParams{
		SourceURL:   "https://www.reddit.com/r/test/comments/abc123/x",
		SourceType:  "reddit",
		Status:      status,
		ScrapedJSON: scrapedJSON,
	})
	if err != nil {
		t.Fatalf("store.NewProject: %v", err)
	}
	return p
}
