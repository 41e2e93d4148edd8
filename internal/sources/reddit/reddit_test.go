package reddit_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	goreddit "github.com/vartanbeno/go-reddit/v2/reddit"

	"toksmith/internal/services"
	"toksmith/internal/sources/reddit"
)

const threadURL = "https://www.reddit.com/r/golang/comments/abc123/why_go/"

func TestValidate(t *testing.T) {
	adapter := reddit.NewWithGetter(nil, 0)
	tests := []struct {
		url  string
		want bool
	}{
		{threadURL, true},
		{"http://reddit.com/r/golang/comments/abc123", true},
		{"HTTPS://WWW.REDDIT.COM/r/golang/comments/ABC123", true},
		{"https://reddit.com/r/golang/", false},
		{"https://old.reddit.com/r/golang/comments/abc123", false},
		{"see https://reddit.com/r/golang/comments/abc123", false},
	}
	for _, tt := range tests {
		if got := adapter.Validate(tt.url); got != tt.want {
			t.Errorf("Validate(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestFetchNormalizesPostAndFiltersComments(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var gotID string
	adapter := reddit.NewWithGetter(func(_ context.Context, id string) (*goreddit.PostAndComments, *goreddit.Response, error) {
		gotID = id
		return &goreddit.PostAndComments{
			Post: &goreddit.Post{
				Title:            "Why Go?",
				Author:           "gopher",
				Body:             "",
				URL:              "https://go.dev",
				Permalink:        "/r/golang/comments/abc123/why_go/",
				Score:            420,
				UpvoteRatio:      0.5,
				NumberOfComments: 3,
				SubredditName:    "golang",
				Created:          &goreddit.Timestamp{Time: created},
			},
			Comments: []*goreddit.Comment{
				{ID: "c1", Author: "a", Body: "[deleted]", Replies: goreddit.Replies{Comments: []*goreddit.Comment{{ID: "c1r", Body: "lost"}}}},
				{ID: "c2", Author: "b", Body: "great", Score: 10, Replies: goreddit.Replies{Comments: []*goreddit.Comment{
					{ID: "c2r", Author: "c", Body: "agreed", Score: 2},
					{ID: "c2x", Body: "[removed]"},
				}}},
			},
		}, nil, nil
	}, 50)

	sc, err := adapter.Fetch(context.Background(), threadURL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotID != "abc123" {
		t.Fatalf("expected post id abc123, got %q", gotID)
	}
	if sc.Content != "https://go.dev" {
		t.Fatalf("expected link url as content, got %q", sc.Content)
	}
	if sc.Metadata["subreddit"] != "golang" || sc.Metadata["upvotes"] != 420 {
		t.Fatalf("unexpected metadata: %v", sc.Metadata)
	}
	if !sc.Timestamp.Equal(created) {
		t.Fatalf("expected post timestamp, got %v", sc.Timestamp)
	}
	if len(sc.Comments) != 1 || sc.Comments[0].ID != "c2" {
		t.Fatalf("unexpected comments: %+v", sc.Comments)
	}
	if len(sc.Comments[0].Replies) != 1 || sc.Comments[0].Replies[0].ID != "c2r" {
		t.Fatalf("unexpected replies: %+v", sc.Comments[0].Replies)
	}
}

func TestFetchCapsCommentsPerLevel(t *testing.T) {
	comments := make([]*goreddit.Comment, 0, 60)
	for i := range 60 {
		comments = append(comments, &goreddit.Comment{ID: fmt.Sprintf("c%d", i), Body: "hi"})
	}
	adapter := reddit.NewWithGetter(func(context.Context, string) (*goreddit.PostAndComments, *goreddit.Response, error) {
		return &goreddit.PostAndComments{Post: &goreddit.Post{Title: "t", Body: "b"}, Comments: comments}, nil, nil
	}, 0)
	sc, err := adapter.Fetch(context.Background(), threadURL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(sc.Comments) != reddit.DefaultCommentLimit {
		t.Fatalf("expected %d comments, got %d", reddit.DefaultCommentLimit, len(sc.Comments))
	}
}

func TestFetchErrors(t *testing.T) {
	adapter := reddit.NewWithGetter(func(context.Context, string) (*goreddit.PostAndComments, *goreddit.Response, error) {
		return nil, nil, errors.New("403 forbidden")
	}, 0)
	if _, err := adapter.Fetch(context.Background(), "https://example.com"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := adapter.Fetch(context.Background(), threadURL); !errors.Is(err, services.ErrFetch) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}
