package script_test

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"testing"
	"time"

	"toksmith/internal/content"
	"toksmith/internal/script"
	"toksmith/internal/services"
	"toksmith/internal/testsupport"
)

func redditContent() *content.ScrapedContent {
	return &content.ScrapedContent{
		Source:  content.SourceReddit,
		Title:   "AITA for something",
		Author:  "throwaway",
		Content: "Long story short.",
		Comments: []content.PostComment{
			{Author: "alice", Upvotes: 10, Content: "NTA"},
			{Author: "", Upvotes: 5, Content: "YTA"},
			{Author: "carol", Upvotes: 3, Content: "ESH"},
			{Author: "dave", Upvotes: 1, Content: "fourth"},
		},
		Metadata: map[string]any{"subreddit": "AmItheAsshole", "upvotes": float64(1234)},
	}
}

func TestNewIDFormat(t *testing.T) {
	id := script.NewID(time.UnixMilli(1700000000123))
	if !regexp.MustCompile(`^script_1700000000123_[a-z0-9]{9}$`).MatchString(id) {
		t.Fatalf("unexpected id %q", id)
	}
}

func TestBuildPromptIncludesTopThreeComments(t *testing.T) {
	prompt := script.BuildPrompt(redditContent())

	for _, want := range []string{
		"r/AmItheAsshole",
		"AITA for something",
		"throwaway",
		"Score: 1234",
		"Long story short.",
		"1. alice (10 upvotes): NTA",
		"2. Anonymous (5 upvotes): YTA",
		"3. carol (3 upvotes): ESH",
		`"audio_file_path"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "fourth") {
		t.Error("prompt should only carry three comments")
	}
	if prompt != script.BuildPrompt(redditContent()) {
		t.Error("prompt is not deterministic")
	}
}

func TestBuildPromptUsesQuestionScore(t *testing.T) {
	sc := &content.ScrapedContent{
		Source:   content.SourceStackOverflow,
		Title:    "How do I exit vim",
		Content:  "body",
		Metadata: map[string]any{"question_score": 42},
	}
	prompt := script.BuildPrompt(sc)
	if !strings.Contains(prompt, "**Source:** stackoverflow") || !strings.Contains(prompt, "Score: 42") {
		t.Fatalf("unexpected prompt:\n%s", prompt)
	}
}

func TestLoadPromptTemplateOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.yaml")
	testsupport.WriteFile(t, path, []byte("instructions: |\n  Keep it to five lines.\n"))

	tmpl, err := script.LoadPromptTemplate(path)
	if err != nil {
		t.Fatalf("LoadPromptTemplate: %v", err)
	}
	if tmpl.System != script.DefaultPromptTemplate().System {
		t.Fatal("system prompt should keep its default")
	}
	prompt := tmpl.Render(redditContent())
	if !strings.Contains(prompt, "Keep it to five lines.") || strings.Contains(prompt, "call-to-action") {
		t.Fatalf("instructions not replaced:\n%s", prompt)
	}
	if !strings.Contains(prompt, "1. alice (10 upvotes): NTA") {
		t.Fatal("content sections must stay in the prompt")
	}

	if _, err := script.LoadPromptTemplate(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestParseAppliesFallbacks(t *testing.T) {
	raw := "```json\n" + `{"id":"ignored","lines":[
		{"speaker":"Narrator","text":"Hi","audioFilePath":"/a.mp3","startTime":1.5},
		{"speaker":"OP","text":"Yo","audio_file_path":"/b.mp3","start_time":2,"duration":3}
	]}` + "\n```"

	s, err := script.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.ID == "ignored" || !strings.HasPrefix(s.ID, "script_") {
		t.Fatalf("expected fresh id, got %q", s.ID)
	}
	if s.Background != script.DefaultBackground {
		t.Fatalf("unexpected background %q", s.Background)
	}
	if strings.Join(s.Characters, ",") != "narrator,op,commenter1,commenter2" {
		t.Fatalf("unexpected characters %v", s.Characters)
	}
	first, second := s.Lines[0], s.Lines[1]
	if first.AudioFilePath != "/a.mp3" || first.StartTime != 1.5 || first.Duration != 0 {
		t.Fatalf("unexpected first line %+v", first)
	}
	if second.AudioFilePath != "/b.mp3" || second.StartTime != 2 || second.Duration != 3 {
		t.Fatalf("unexpected second line %+v", second)
	}
}

func TestParseIgnoresFencing(t *testing.T) {
	body := `{"background":"city.mp4","characters":["narrator"],"lines":[
		{"speaker":"Narrator","text":"Hi","start_time":0.5},
		{"speaker":"OP","text":"Yo"}
	]}`
	var parsed []*script.Script
	for name, raw := range map[string]string{
		"bare":        body,
		"json fence":  "```json\n" + body + "\n```",
		"plain fence": "```\n" + body + "\n```",
	} {
		s, err := script.Parse(raw)
		if err != nil {
			t.Fatalf("Parse %s: %v", name, err)
		}
		s.ID = ""
		parsed = append(parsed, s)
	}
	for i := 1; i < len(parsed); i++ {
		if !reflect.DeepEqual(parsed[0], parsed[i]) {
			t.Fatalf("fenced and bare responses differ:\n%+v\n%+v", parsed[0], parsed[i])
		}
	}
	if len(parsed[0].Lines) != 2 || parsed[0].Background != "city.mp4" {
		t.Fatalf("unexpected script %+v", parsed[0])
	}
}

func TestParseRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"array", `[{"speaker":"a","text":"b"}]`},
		{"missing lines", `{"background":"x"}`},
		{"lines not array", `{"lines":{"speaker":"a"}}`},
		{"line not object", `{"lines":["hello"]}`},
		{"missing text", `{"lines":[{"speaker":"a"}]}`},
		{"numeric speaker", `{"lines":[{"speaker":1,"text":"b"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := script.Parse(tt.raw); !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestParseMalformedJSONKeepsRaw(t *testing.T) {
	_, err := script.Parse("Sure! Here is your script")
	var genErr *services.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if genErr.Raw != "Sure! Here is your script" {
		t.Fatalf("raw payload not kept: %q", genErr.Raw)
	}
}

type fakeProvider struct {
	reply string
	err   error
	got   script.Request
	wait  bool
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(ctx context.Context, req script.Request) (script.Response, error) {
	f.got = req
	if f.wait {
		<-ctx.Done()
		return script.Response{}, ctx.Err()
	}
	return script.Response{Content: f.reply}, f.err
}

func TestGeneratorGenerate(t *testing.T) {
	provider := &fakeProvider{reply: `{"lines":[{"speaker":"Narrator","text":"Hello"}],"background":"subway","characters":["narrator"]}`}
	gen := script.NewGenerator(provider)

	s, err := gen.Generate(context.Background(), redditContent())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(s.Lines) != 1 || s.Background != "subway" || len(s.Characters) != 1 {
		t.Fatalf("unexpected script %+v", s)
	}
	if provider.got.MaxTokens != script.DefaultMaxTokens || provider.got.Temperature != script.DefaultTemperature {
		t.Fatalf("unexpected sampling %+v", provider.got)
	}
	if !strings.Contains(provider.got.Prompt, "r/AmItheAsshole") || provider.got.System == "" {
		t.Fatal("prompt not passed to provider")
	}
}

func TestGeneratorWrapsProviderErrors(t *testing.T) {
	gen := script.NewGenerator(&fakeProvider{err: errors.New("503 upstream")})
	_, err := gen.Generate(context.Background(), redditContent())
	if !errors.Is(err, services.ErrGeneration) {
		t.Fatalf("expected generation error, got %v", err)
	}
}

func TestGeneratorTimesOut(t *testing.T) {
	gen := script.NewGenerator(&fakeProvider{wait: true}, script.WithTimeout(20*time.Millisecond))
	_, err := gen.Generate(context.Background(), redditContent())
	if !errors.Is(err, services.ErrGeneration) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected wrapped deadline error, got %v", err)
	}
}
