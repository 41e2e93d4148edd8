package sources_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"toksmith/internal/config"
	"toksmith/internal/content"
	"toksmith/internal/logging"
	"toksmith/internal/services"
	"toksmith/internal/sources"
)

type fakeAdapter struct {
	source  content.Source
	prefix  string
	fetches atomic.Int32
	fetch   func(ctx context.Context, url string) (*content.ScrapedContent, error)
}

func (f *fakeAdapter) Source() content.Source { return f.source }

func (f *fakeAdapter) Validate(url string) bool { return strings.HasPrefix(url, f.prefix) }

func (f *fakeAdapter) Fetch(ctx context.Context, url string) (*content.ScrapedContent, error) {
	f.fetches.Add(1)
	if f.fetch != nil {
		return f.fetch(ctx, url)
	}
	return &content.ScrapedContent{Source: f.source, URL: url, Title: "ok", Content: "body"}, nil
}

func newRegistry(adapters ...sources.Adapter) *sources.Registry {
	r := sources.NewRegistry(sources.WithLogger(logging.NewNop()), sources.WithConcurrency(2))
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

func sourcePtr(s content.Source) *content.Source { return &s }

func TestResolveUsesFixedOrder(t *testing.T) {
	// Both adapters accept the url; reddit comes first in resolution order.
	tw := &fakeAdapter{source: content.SourceTwitter, prefix: "https://"}
	rd := &fakeAdapter{source: content.SourceReddit, prefix: "https://"}
	r := newRegistry(tw, rd)

	got, err := r.Resolve(nil, "https://example.com")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != content.SourceReddit {
		t.Fatalf("expected reddit, got %s", got)
	}
}

func TestResolveErrors(t *testing.T) {
	r := newRegistry(&fakeAdapter{source: content.SourceReddit, prefix: "https://reddit"})

	if _, err := r.Resolve(nil, "https://nowhere.example"); !errors.Is(err, services.ErrUnresolvedSource) {
		t.Fatalf("expected unresolved source, got %v", err)
	}
	if _, err := r.Resolve(sourcePtr(content.SourceReddit), "https://x.com/a/status/1"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for mismatch, got %v", err)
	}
	if _, err := r.Resolve(sourcePtr(content.SourceScript), "https://reddit.com"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for adapterless source, got %v", err)
	}
	if _, err := r.Resolve(nil, "  "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty url, got %v", err)
	}
}

func TestFetchAppliesTimeout(t *testing.T) {
	slow := &fakeAdapter{source: content.SourceReddit, prefix: "https://", fetch: func(ctx context.Context, _ string) (*content.ScrapedContent, error) {
		<-ctx.Done()
		return nil, services.Wrap(services.ErrFetch, "reddit", "fetch", "", ctx.Err())
	}}
	r := sources.NewRegistry(sources.WithFetchTimeout(20 * time.Millisecond))
	r.Register(slow)

	_, err := r.Fetch(context.Background(), nil, "https://reddit.com/x")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestFetchManyKeepsOrderAndToleratesFailures(t *testing.T) {
	var inFlight, peak atomic.Int32
	adapter := &fakeAdapter{source: content.SourceReddit, prefix: "https://", fetch: func(_ context.Context, url string) (*content.ScrapedContent, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		if strings.HasSuffix(url, "bad") {
			return nil, services.Wrap(services.ErrFetch, "reddit", "fetch", "boom", nil)
		}
		return &content.ScrapedContent{Source: content.SourceReddit, URL: url, Content: "c"}, nil
	}}
	r := newRegistry(adapter)

	results := r.FetchMany(context.Background(), []sources.Request{
		{URL: "https://a"},
		{URL: "https://bad"},
		{URL: "https://c"},
		{URL: "ftp://unresolvable"},
		{URL: "https://e"},
	})
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	if results[1] != nil || results[3] != nil {
		t.Fatal("expected failed items to be nil")
	}
	for _, i := range []int{0, 2, 4} {
		if results[i] == nil {
			t.Fatalf("expected result at %d", i)
		}
	}
	if results[2].URL != "https://c" {
		t.Fatalf("results out of order: %q", results[2].URL)
	}
	if peak.Load() > 2 {
		t.Fatalf("expected at most 2 concurrent fetches, saw %d", peak.Load())
	}
	if adapter.fetches.Load() != 4 {
		t.Fatalf("expected 4 adapter calls, got %d", adapter.fetches.Load())
	}
}

func TestSourcesListsAllFive(t *testing.T) {
	r := newRegistry(&fakeAdapter{source: content.SourceReddit, prefix: "https://"})
	list := r.Sources()
	if len(list) != 5 {
		t.Fatalf("expected 5 sources, got %d", len(list))
	}
	byName := map[content.Source]sources.Descriptor{}
	for _, d := range list {
		byName[d.Name] = d
	}
	if !byName[content.SourceReddit].Available || byName[content.SourceTwitter].Available {
		t.Fatalf("unexpected availability: %+v", byName)
	}
	if !byName[content.SourceScript].RequiresText || !byName[content.SourcePodcast].RequiresFile {
		t.Fatalf("unexpected requirements: %+v", byName)
	}
}

func TestDefaultRegistryResolvesRealPatterns(t *testing.T) {
	cfg := config.Default()
	r, err := sources.NewDefaultRegistry(&cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewDefaultRegistry: %v", err)
	}
	tests := []struct {
		url  string
		want content.Source
	}{
		{"https://www.reddit.com/r/golang/comments/abc123/title", content.SourceReddit},
		{"https://x.com/user/status/123", content.SourceTwitter},
		{"https://twitter.com/user/status/123", content.SourceTwitter},
		{"https://stackoverflow.com/questions/1/how", content.SourceStackOverflow},
	}
	for _, tt := range tests {
		got, err := r.Resolve(nil, tt.url)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", tt.url, err)
		}
		if got != tt.want {
			t.Fatalf("Resolve(%q) = %s, want %s", tt.url, got, tt.want)
		}
	}
}
