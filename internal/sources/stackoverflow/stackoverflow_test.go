package stackoverflow_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"toksmith/internal/services"
	"toksmith/internal/sources/stackoverflow"
)

const questionURL = "https://stackoverflow.com/questions/11227809/why-is-processing-a-sorted-array-faster"

const page = `<!doctype html>
<html><body>
<h1 class="fs-headline1"><a href="#">Why is processing a sorted array faster?</a></h1>
<div title="Viewed 1,234,567 times">Viewed 1.2m times</div>
<div class="question" id="question" data-questionid="11227809">
  <div class="js-vote-count" data-value="27000">27k</div>
  <div class="s-prose js-post-body"><p>Here is a <strong>piece</strong> of code.</p><pre><code>for i := range data {}</code></pre></div>
  <div class="post-taglist"><a class="post-tag">go</a><a class="post-tag">performance</a><a class="post-tag">go</a></div>
  <div class="user-details"><a href="/users/1">GManNickG</a></div>
</div>
<div id="answers">
  <div class="answer" data-answerid="100">
    <div class="js-vote-count" data-value="5">5</div>
    <div class="s-prose js-post-body"><p>Low score answer</p></div>
    <div class="user-details"><a href="/users/2">alice</a></div>
  </div>
  <div class="answer accepted-answer" data-answerid="200">
    <div class="js-vote-count" data-value="34000">34000</div>
    <span class="accepted-answer-badge"></span>
    <div class="s-prose js-post-body"><p>Branch prediction.</p></div>
    <div class="user-details"><a href="/users/3">Mysticial</a></div>
  </div>
  <div class="answer" data-answerid="300">
    <div class="js-vote-count">12</div>
    <div class="s-prose js-post-body"><p>Middle answer</p></div>
  </div>
  <div class="answer" data-answerid="400"><div class="js-vote-count">1</div></div>
</div>
</body></html>`

func TestValidate(t *testing.T) {
	adapter := stackoverflow.New(stackoverflow.Config{})
	tests := []struct {
		url  string
		want bool
	}{
		{questionURL, true},
		{"http://stackoverflow.com/questions/1/x", true},
		{"https://stackoverflow.com/questions/11227809", false},
		{"https://stackoverflow.com/users/1/someone", false},
		{"https://serverfault.com/questions/1/x", false},
	}
	for _, tt := range tests {
		if got := adapter.Validate(tt.url); got != tt.want {
			t.Errorf("Validate(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestParseExtractsQuestionAndRanksAnswers(t *testing.T) {
	adapter := stackoverflow.New(stackoverflow.Config{})
	sc, err := adapter.Parse(strings.NewReader(page), questionURL)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if sc.Title != "Why is processing a sorted array faster?" {
		t.Fatalf("unexpected title %q", sc.Title)
	}
	if sc.Author != "GManNickG" {
		t.Fatalf("unexpected author %q", sc.Author)
	}
	if !strings.Contains(sc.Content, "**piece**") || !strings.Contains(sc.Content, "for i := range data") {
		t.Fatalf("expected markdown body, got %q", sc.Content)
	}
	if sc.Metadata["question_score"] != 27000 {
		t.Fatalf("unexpected score %v", sc.Metadata["question_score"])
	}
	if sc.Metadata["views"] != 1234567 {
		t.Fatalf("unexpected views %v", sc.Metadata["views"])
	}
	tags, _ := sc.Metadata["tags"].([]string)
	if len(tags) != 2 || tags[0] != "go" || tags[1] != "performance" {
		t.Fatalf("unexpected tags %v", sc.Metadata["tags"])
	}

	if len(sc.Comments) != 3 {
		t.Fatalf("expected 3 answers with bodies, got %d", len(sc.Comments))
	}
	first := sc.Comments[0]
	if first.ID != "answer-200" || first.Upvotes != 34000 || first.Author != "Mysticial" {
		t.Fatalf("unexpected top answer %+v", first)
	}
	if !strings.HasPrefix(first.Content, stackoverflow.AcceptedBadge) {
		t.Fatalf("expected accepted badge, got %q", first.Content)
	}
	if sc.Comments[1].Upvotes != 12 || sc.Comments[2].Upvotes != 5 {
		t.Fatalf("answers not ranked by score: %d, %d", sc.Comments[1].Upvotes, sc.Comments[2].Upvotes)
	}
}

func TestParseFallsBackToUntitled(t *testing.T) {
	adapter := stackoverflow.New(stackoverflow.Config{MaxAnswers: 1})
	sc, err := adapter.Parse(strings.NewReader("<html><body></body></html>"), questionURL)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if sc.Title != "Untitled Question" {
		t.Fatalf("unexpected title %q", sc.Title)
	}
	if sc.Comments == nil {
		t.Fatal("expected empty answer list")
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestFetchSendsUserAgentAndCapsAnswers(t *testing.T) {
	var gotUA string
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		gotUA = r.Header.Get("User-Agent")
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"text/html"}},
			Body:       io.NopCloser(strings.NewReader(page)),
			Request:    r,
		}, nil
	})}
	adapter := stackoverflow.New(stackoverflow.Config{HTTPClient: client, UserAgent: "toksmith-test", MaxAnswers: 2})
	sc, err := adapter.Fetch(context.Background(), questionURL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotUA != "toksmith-test" {
		t.Fatalf("unexpected user agent %q", gotUA)
	}
	if len(sc.Comments) != 2 {
		t.Fatalf("expected answers capped at 2, got %d", len(sc.Comments))
	}
	if sc.URL != questionURL {
		t.Fatalf("unexpected url %q", sc.URL)
	}
}

func TestFetchMapsHTTPFailure(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusForbidden, Body: io.NopCloser(strings.NewReader("")), Request: r}, nil
	})}
	adapter := stackoverflow.New(stackoverflow.Config{HTTPClient: client})
	if _, err := adapter.Fetch(context.Background(), questionURL); !errors.Is(err, services.ErrFetch) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if _, err := adapter.Fetch(context.Background(), "https://stackoverflow.com/tags"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
