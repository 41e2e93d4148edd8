package daemon_test

import (
	"context"
	"net/http"
	"testing"

	"toksmith/internal/content"
	"toksmith/internal/daemon"
	"toksmith/internal/logging"
	"toksmith/internal/services"
	"toksmith/internal/testsupport"
	"toksmith/internal/workflow"
)

type nopFetcher struct{}

func (nopFetcher) Resolve(_ *content.Source, url string) (content.Source, error) {
	return "", services.Wrap(services.ErrUnresolvedSource, "sources", "resolve", url, nil)
}

func (nopFetcher) Fetch(context.Context, *content.Source, string) (*content.ScrapedContent, error) {
	return nil, services.ErrFetch
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	mgr := workflow.NewManager(cfg, store, nopFetcher{}, nil, logging.NewNop())
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	d, err := daemon.New(cfg, store, mgr, handler, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(d.Stop)

	status := d.Status(ctx)
	if !status.Running || !status.Workflow.Running {
		t.Fatalf("expected running daemon, got %+v", status)
	}
	if status.APIAddress == "" || status.LockFilePath != cfg.LockPath() {
		t.Fatalf("unexpected status: %+v", status)
	}
	resp, err := http.Get("http://" + status.APIAddress + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}

	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	if d.Status(ctx).Running {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestSecondInstanceIsLockedOut(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.API.Bind = ""
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first, err := daemon.New(cfg, store, workflow.NewManager(cfg, store, nopFetcher{}, nil, nil), nil, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	defer first.Stop()

	second, err := daemon.New(cfg, store, workflow.NewManager(cfg, store, nopFetcher{}, nil, nil), nil, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := second.Start(ctx); err == nil {
		second.Stop()
		t.Fatal("expected lock contention")
	}
}
