package reddit

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	goreddit "github.com/vartanbeno/go-reddit/v2/reddit"

	"toksmith/internal/content"
	"toksmith/internal/services"
)

// DefaultCommentLimit caps each comment level.
const DefaultCommentLimit = 50

var (
	urlPattern    = regexp.MustCompile(`(?i)^https?://(www\.)?reddit\.com/r/[^/]+/comments/[a-z0-9]+`)
	postIDPattern = regexp.MustCompile(`(?i)/comments/([a-z0-9]+)`)
)

// postGetter is the slice of the go-reddit client the adapter needs.
type postGetter interface {
	Get(ctx context.Context, id string) (*goreddit.PostAndComments, *goreddit.Response, error)
}

// Config holds Reddit API credentials. Empty Username selects the read-only client.
type Config struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	UserAgent    string
	CommentLimit int
	Timeout      time.Duration
	BaseURL      string
}

// Adapter fetches Reddit posts with their comment trees.
type Adapter struct {
	posts        postGetter
	commentLimit int
}

// New builds an adapter backed by go-reddit.
func New(cfg Config) (*Adapter, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	opts := []goreddit.Opt{
		goreddit.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if ua := strings.TrimSpace(cfg.UserAgent); ua != "" {
		opts = append(opts, goreddit.WithUserAgent(ua))
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, goreddit.WithBaseURL(base))
	}

	var (
		client *goreddit.Client
		err    error
	)
	if cfg.Username != "" && cfg.ClientID != "" {
		client, err = goreddit.NewClient(goreddit.Credentials{
			ID:       cfg.ClientID,
			Secret:   cfg.ClientSecret,
			Username: cfg.Username,
			Password: cfg.Password,
		}, opts...)
	} else {
		client, err = goreddit.NewReadonlyClient(opts...)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "reddit", "new client", "", err)
	}
	return newAdapter(client.Post, cfg.CommentLimit), nil
}

func newAdapter(posts postGetter, limit int) *Adapter {
	if limit <= 0 {
		limit = DefaultCommentLimit
	}
	return &Adapter{posts: posts, commentLimit: limit}
}

func (a *Adapter) Source() content.Source { return content.SourceReddit }

func (a *Adapter) Validate(url string) bool {
	return urlPattern.MatchString(strings.TrimSpace(url))
}

// PostID extracts the base36 post id from a thread URL.
func PostID(url string) (string, bool) {
	m := postIDPattern.FindStringSubmatch(url)
	if len(m) < 2 {
		return "", false
	}
	return strings.ToLower(m[1]), true
}

func (a *Adapter) Fetch(ctx context.Context, url string) (*content.ScrapedContent, error) {
	if !a.Validate(url) {
		return nil, services.Wrap(services.ErrValidation, "reddit", "fetch", fmt.Sprintf("invalid reddit url %q", url), nil)
	}
	id, _ := PostID(url)

	result, _, err := a.posts.Get(ctx, id)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "reddit", "get post", id, err)
	}
	if result == nil || result.Post == nil {
		return nil, services.Wrap(services.ErrFetch, "reddit", "get post", "empty response for "+id, nil)
	}
	post := result.Post

	body := post.Body
	if strings.TrimSpace(body) == "" {
		body = post.URL
	}

	sc := &content.ScrapedContent{
		Source:   content.SourceReddit,
		URL:      url,
		Title:    post.Title,
		Author:   post.Author,
		Content:  body,
		Comments: content.ExtractComments(result.Comments, a.commentLimit, convertComment, commentReplies),
		Metadata: map[string]any{
			"subreddit":    post.SubredditName,
			"upvotes":      post.Score,
			"upvote_ratio": float64(post.UpvoteRatio),
			"num_comments": post.NumberOfComments,
			"url":          post.URL,
			"permalink":    post.Permalink,
		},
		Timestamp: time.Now().UTC(),
	}
	if post.Created != nil && !post.Created.IsZero() {
		sc.Timestamp = post.Created.UTC()
	}
	return sc, nil
}

func convertComment(c *goreddit.Comment) (content.PostComment, bool) {
	if c == nil || content.IsRemovedBody(c.Body) {
		return content.PostComment{}, false
	}
	pc := content.PostComment{
		ID:      c.ID,
		Author:  c.Author,
		Content: content.CleanText(c.Body),
		Upvotes: c.Score,
	}
	if c.Created != nil && !c.Created.IsZero() {
		ts := c.Created.UTC()
		pc.Timestamp = &ts
	}
	return pc, true
}

func commentReplies(c *goreddit.Comment) []*goreddit.Comment {
	if c == nil {
		return nil
	}
	return c.Replies.Comments
}
