package content

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"toksmith/internal/services"
)

// Source identifies where a piece of content came from.
type Source string

const (
	SourceReddit        Source = "reddit"
	SourceTwitter       Source = "twitter"
	SourceStackOverflow Source = "stackoverflow"
	SourceScript        Source = "script"
	SourcePodcast       Source = "podcast"
)

// AllSources lists every known source in registry resolution order followed
// by the sources that carry no URL adapter.
func AllSources() []Source {
	return []Source{SourceReddit, SourceTwitter, SourceStackOverflow, SourceScript, SourcePodcast}
}

// ParseSource converts user input into a Source, ignoring case and surrounding space.
func ParseSource(value string) (Source, error) {
	normalized := Source(strings.ToLower(strings.TrimSpace(value)))
	for _, candidate := range AllSources() {
		if candidate == normalized {
			return candidate, nil
		}
	}
	return "", services.Wrap(services.ErrValidation, "input", "parse source", fmt.Sprintf("unsupported source %q", value), nil)
}

func (s Source) String() string { return string(s) }

// PostComment is one node of a comment tree in source ranking order.
type PostComment struct {
	ID        string        `json:"id"`
	Author    string        `json:"author,omitempty"`
	Content   string        `json:"content"`
	Upvotes   int           `json:"upvotes"`
	Timestamp *time.Time    `json:"timestamp,omitempty"`
	Replies   []PostComment `json:"replies"`
}

// ScrapedContent is the normalized shape every source adapter produces.
type ScrapedContent struct {
	Source    Source         `json:"source"`
	URL       string         `json:"url,omitempty"`
	Title     string         `json:"title"`
	Author    string         `json:"author,omitempty"`
	Content   string         `json:"content"`
	Comments  []PostComment  `json:"comments"`
	Metadata  map[string]any `json:"metadata"`
	Timestamp time.Time      `json:"timestamp"`
}

// MetadataInt reads a numeric metadata value. JSON round trips turn ints
// into float64, so both are accepted.
func (c *ScrapedContent) MetadataInt(key string) (int, bool) {
	if c == nil || c.Metadata == nil {
		return 0, false
	}
	switch v := c.Metadata[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	default:
		return 0, false
	}
}

// MetadataString reads a string metadata value.
func (c *ScrapedContent) MetadataString(key string) (string, bool) {
	if c == nil || c.Metadata == nil {
		return "", false
	}
	v, ok := c.Metadata[key].(string)
	return v, ok
}

// Encode serializes content for storage.
func (c *ScrapedContent) Encode() ([]byte, error) {
	if c == nil {
		return nil, nil
	}
	if c.Comments == nil {
		c.Comments = []PostComment{}
	}
	if c.Metadata == nil {
		c.Metadata = map[string]any{}
	}
	return json.Marshal(c)
}

// Decode parses stored content. An empty payload yields nil.
func Decode(raw []byte) (*ScrapedContent, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, nil
	}
	var sc ScrapedContent
	if err := json.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("decode scraped content: %w", err)
	}
	return &sc, nil
}
