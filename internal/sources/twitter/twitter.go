package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"toksmith/internal/content"
	"toksmith/internal/logging"
	"toksmith/internal/services"
)

const (
	defaultBaseURL   = "https://api.twitter.com"
	defaultMaxThread = 20
	unknownAuthor    = "unknown"
)

var (
	urlPattern     = regexp.MustCompile(`(?i)^https?://(www\.)?(twitter|x)\.com/.+/status/\d+`)
	tweetIDPattern = regexp.MustCompile(`/status/(\d+)`)
)

// Config holds Twitter API v2 settings. BearerToken takes precedence; when
// empty, APIKey and APISecret obtain an app-only token from TokenURL.
type Config struct {
	BearerToken string
	APIKey      string
	APISecret   string
	BaseURL     string
	TokenURL    string
	MaxThread   int
	Timeout     time.Duration
	HTTPClient  *http.Client
	Logger      *slog.Logger
}

// Adapter fetches a tweet and its conversation thread.
type Adapter struct {
	baseURL   string
	maxThread int
	client    *http.Client
	logger    *slog.Logger
	configErr error
}

// New builds an adapter. Missing credentials are reported on Fetch so that
// URL validation keeps working without secrets.
func New(cfg Config) *Adapter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	maxThread := cfg.MaxThread
	if maxThread <= 0 {
		maxThread = defaultMaxThread
	}
	a := &Adapter{
		baseURL:   base,
		maxThread: min(maxThread, 100),
		logger:    logging.NewComponentLogger(cfg.Logger, "twitter"),
	}

	baseClient := cfg.HTTPClient
	if baseClient == nil {
		baseClient = &http.Client{Timeout: timeout}
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, baseClient)

	switch {
	case strings.TrimSpace(cfg.BearerToken) != "":
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: strings.TrimSpace(cfg.BearerToken), TokenType: "Bearer"})
		a.client = oauth2.NewClient(ctx, src)
	case cfg.APIKey != "" && cfg.APISecret != "":
		cc := clientcredentials.Config{
			ClientID:     cfg.APIKey,
			ClientSecret: cfg.APISecret,
			TokenURL:     cfg.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		a.client = cc.Client(ctx)
	default:
		a.configErr = services.Wrap(services.ErrConfiguration, "twitter", "auth", "bearer token or api key/secret required", nil)
	}
	if a.client != nil {
		a.client.Timeout = timeout
	}
	return a
}

func (a *Adapter) Source() content.Source { return content.SourceTwitter }

func (a *Adapter) Validate(url string) bool {
	return urlPattern.MatchString(strings.TrimSpace(url))
}

// TweetID extracts the numeric status id from a tweet URL.
func TweetID(url string) (string, bool) {
	m := tweetIDPattern.FindStringSubmatch(url)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}

type publicMetrics struct {
	RetweetCount int `json:"retweet_count"`
	ReplyCount   int `json:"reply_count"`
	LikeCount    int `json:"like_count"`
}

type tweet struct {
	ID             string        `json:"id"`
	Text           string        `json:"text"`
	AuthorID       string        `json:"author_id"`
	ConversationID string        `json:"conversation_id"`
	CreatedAt      string        `json:"created_at"`
	PublicMetrics  publicMetrics `json:"public_metrics"`
}

type user struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type includes struct {
	Users []user `json:"users"`
}

type apiError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

type tweetResponse struct {
	Data     *tweet     `json:"data"`
	Includes includes   `json:"includes"`
	Errors   []apiError `json:"errors"`
}

type searchResponse struct {
	Data     []tweet    `json:"data"`
	Includes includes   `json:"includes"`
	Errors   []apiError `json:"errors"`
}

func (a *Adapter) Fetch(ctx context.Context, rawURL string) (*content.ScrapedContent, error) {
	if !a.Validate(rawURL) {
		return nil, services.Wrap(services.ErrValidation, "twitter", "fetch", fmt.Sprintf("invalid twitter url %q", rawURL), nil)
	}
	if a.configErr != nil {
		return nil, a.configErr
	}
	id, _ := TweetID(rawURL)

	q := url.Values{}
	q.Set("expansions", "author_id")
	q.Set("tweet.fields", "created_at,author_id,public_metrics,conversation_id")
	q.Set("user.fields", "username,name")
	var resp tweetResponse
	if err := a.getJSON(ctx, "/2/tweets/"+id, q, &resp); err != nil {
		return nil, services.Wrap(services.ErrFetch, "twitter", "get tweet", id, err)
	}
	if resp.Data == nil {
		msg := "tweet " + id + " not found"
		if len(resp.Errors) > 0 {
			msg = resp.Errors[0].Detail
		}
		return nil, services.Wrap(services.ErrFetch, "twitter", "get tweet", msg, nil)
	}

	root := resp.Data
	username := unknownAuthor
	for _, u := range resp.Includes.Users {
		if u.ID == root.AuthorID || root.AuthorID == "" {
			username = u.Username
			break
		}
	}

	conversationID := root.ConversationID
	if conversationID == "" {
		conversationID = id
	}
	thread := a.thread(ctx, conversationID)

	sc := &content.ScrapedContent{
		Source:   content.SourceTwitter,
		URL:      rawURL,
		Title:    "Twitter Thread by @" + username,
		Author:   username,
		Content:  root.Text,
		Comments: thread,
		Metadata: map[string]any{
			"tweet_id":        id,
			"retweets":        root.PublicMetrics.RetweetCount,
			"likes":           root.PublicMetrics.LikeCount,
			"replies":         root.PublicMetrics.ReplyCount,
			"author_username": username,
		},
		Timestamp: time.Now().UTC(),
	}
	if ts, ok := parseTime(root.CreatedAt); ok {
		sc.Timestamp = ts
	}
	return sc, nil
}

// thread returns conversation replies. Search failures degrade to an empty
// thread because recent search only covers the last seven days.
func (a *Adapter) thread(ctx context.Context, conversationID string) []content.PostComment {
	q := url.Values{}
	q.Set("query", "conversation_id:"+conversationID)
	q.Set("max_results", strconv.Itoa(max(a.maxThread, 10)))
	q.Set("expansions", "author_id")
	q.Set("tweet.fields", "created_at,author_id,public_metrics")
	q.Set("user.fields", "username")

	var resp searchResponse
	if err := a.getJSON(ctx, "/2/tweets/search/recent", q, &resp); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, a.logger), "thread search failed", "twitter_thread_unavailable",
			logging.String("conversation_id", conversationID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "content is scraped without thread replies"),
		)
		return []content.PostComment{}
	}

	authors := make(map[string]string, len(resp.Includes.Users))
	for _, u := range resp.Includes.Users {
		authors[u.ID] = u.Username
	}
	tweets := resp.Data
	if len(tweets) > a.maxThread {
		tweets = tweets[:a.maxThread]
	}
	out := make([]content.PostComment, 0, len(tweets))
	for _, t := range tweets {
		author, ok := authors[t.AuthorID]
		if !ok {
			author = unknownAuthor
		}
		pc := content.PostComment{
			ID:      t.ID,
			Author:  author,
			Content: content.CleanText(t.Text),
			Upvotes: t.PublicMetrics.LikeCount,
			Replies: []content.PostComment{},
		}
		if ts, ok := parseTime(t.CreatedAt); ok {
			pc.Timestamp = &ts
		}
		out = append(out, pc)
	}
	return out
}

func (a *Adapter) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := a.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return errors.New("rate limit exceeded, try again later")
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("twitter api %s returned %d: %s", path, resp.StatusCode, snippet(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func parseTime(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false
	}
	return ts.UTC(), true
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
