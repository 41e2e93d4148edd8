package stackoverflow

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"toksmith/internal/content"
	"toksmith/internal/services"
)

const (
	// DefaultMaxAnswers caps the answers kept per question.
	DefaultMaxAnswers = 20
	// AcceptedBadge prefixes the accepted answer's content.
	AcceptedBadge = "✓ Accepted Answer"

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	untitled         = "Untitled Question"
	maxPageBytes     = 8 << 20
)

var (
	urlPattern   = regexp.MustCompile(`(?i)^https?://stackoverflow\.com/questions/\d+/.+`)
	viewsPattern = regexp.MustCompile(`([\d,]+)\s+times?`)
)

// Config holds page fetching settings.
type Config struct {
	UserAgent  string
	MaxAnswers int
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Adapter scrapes StackOverflow question pages.
type Adapter struct {
	client     *http.Client
	userAgent  string
	maxAnswers int
	converter  *md.Converter
}

// New builds an adapter.
func New(cfg Config) *Adapter {
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}
	limit := cfg.MaxAnswers
	if limit <= 0 {
		limit = DefaultMaxAnswers
	}
	return &Adapter{
		client:     client,
		userAgent:  ua,
		maxAnswers: limit,
		converter:  md.NewConverter("stackoverflow.com", true, nil),
	}
}

func (a *Adapter) Source() content.Source { return content.SourceStackOverflow }

func (a *Adapter) Validate(url string) bool {
	return urlPattern.MatchString(strings.TrimSpace(url))
}

func (a *Adapter) Fetch(ctx context.Context, url string) (*content.ScrapedContent, error) {
	if !a.Validate(url) {
		return nil, services.Wrap(services.ErrValidation, "stackoverflow", "fetch", fmt.Sprintf("invalid stackoverflow url %q", url), nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "stackoverflow", "build request", "", err)
	}
	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "stackoverflow", "get page", "", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, services.Wrap(services.ErrFetch, "stackoverflow", "get page", fmt.Sprintf("status %d", resp.StatusCode), nil)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "stackoverflow", "parse page", "", err)
	}
	sc := a.parse(doc)
	sc.URL = url
	return sc, nil
}

// Parse extracts a question page that was already fetched.
func (a *Adapter) Parse(r io.Reader, url string) (*content.ScrapedContent, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "stackoverflow", "parse page", "", err)
	}
	sc := a.parse(doc)
	sc.URL = url
	return sc, nil
}

func (a *Adapter) parse(doc *goquery.Document) *content.ScrapedContent {
	title := strings.TrimSpace(doc.Find("h1.fs-headline1").First().Text())
	if title == "" {
		title = untitled
	}

	question := doc.Find("div.question, #question").First()
	if question.Length() == 0 {
		question = doc.Selection
	}
	body := a.markdown(question.Find("div.s-prose.js-post-body").First())

	answers := a.answers(doc)

	metadata := map[string]any{
		"tags":         tags(doc),
		"answer_count": doc.Find("div.answer").Length(),
	}
	if score, ok := voteCount(question); ok {
		metadata["question_score"] = score
	}
	if views, ok := viewCount(doc); ok {
		metadata["views"] = views
	}

	return &content.ScrapedContent{
		Source:    content.SourceStackOverflow,
		Title:     title,
		Author:    userName(question),
		Content:   body,
		Comments:  answers,
		Metadata:  metadata,
		Timestamp: time.Now().UTC(),
	}
}

func (a *Adapter) answers(doc *goquery.Document) []content.PostComment {
	var all []content.PostComment
	doc.Find("div.answer").Each(func(idx int, s *goquery.Selection) {
		bodySel := s.Find("div.s-prose.js-post-body").First()
		if bodySel.Length() == 0 {
			return
		}
		text := a.markdown(bodySel)
		if text == "" {
			return
		}
		id, ok := s.Attr("data-answerid")
		if !ok || id == "" {
			id = strconv.Itoa(idx)
		}
		score, _ := voteCount(s)
		if s.HasClass("accepted-answer") || s.Find("span.accepted-answer-badge").Length() > 0 {
			text = AcceptedBadge + "\n\n" + text
		}
		all = append(all, content.PostComment{
			ID:      "answer-" + id,
			Author:  userName(s),
			Content: text,
			Upvotes: score,
			Replies: []content.PostComment{},
		})
	})

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Upvotes > all[j].Upvotes
	})
	if len(all) > a.maxAnswers {
		all = all[:a.maxAnswers]
	}
	if all == nil {
		all = []content.PostComment{}
	}
	return all
}

func (a *Adapter) markdown(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(a.converter.Convert(sel))
}

func userName(sel *goquery.Selection) string {
	// The last signature block belongs to the post owner when the post was edited.
	return strings.TrimSpace(sel.Find("div.user-details a").Last().Text())
}

func voteCount(sel *goquery.Selection) (int, bool) {
	node := sel.Find(".js-vote-count").First()
	if node.Length() == 0 {
		return 0, false
	}
	raw, ok := node.Attr("data-value")
	if !ok {
		raw = node.Text()
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return n, true
}

func viewCount(doc *goquery.Document) (int, bool) {
	candidates := []string{}
	doc.Find("[title^='Viewed']").Each(func(_ int, s *goquery.Selection) {
		if title, ok := s.Attr("title"); ok {
			candidates = append(candidates, title)
		}
	})
	candidates = append(candidates, doc.Find("div.s-sidebarwidget--header").Text())
	for _, text := range candidates {
		m := viewsPattern.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
		if err == nil {
			return n, true
		}
	}
	return 0, false
}

func tags(doc *goquery.Document) []string {
	seen := make(map[string]struct{})
	out := []string{}
	doc.Find("a.post-tag").Each(func(_ int, s *goquery.Selection) {
		tag := strings.TrimSpace(s.Text())
		if tag == "" {
			return
		}
		if _, dup := seen[tag]; dup {
			return
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	})
	return out
}
