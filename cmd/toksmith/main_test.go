package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"toksmith/internal/api"
	"toksmith/internal/sources"
	"toksmith/internal/testsupport"
)

type cliEnv struct {
	configPath string
	baseDir    string
}

func newCLIEnv(t *testing.T, extra string) *cliEnv {
	t.Helper()
	for _, name := range []string{"OPENROUTER_API_KEY", "ANTHROPIC_API_KEY", "HUME_API_KEY", "NATS_URL"} {
		t.Setenv(name, "")
	}
	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	body := fmt.Sprintf(`[paths]
data_dir = %q
audio_dir = %q
log_dir = %q

[nats]
url = ""
%s`, filepath.Join(base, "data"), filepath.Join(base, "audio"), filepath.Join(base, "logs"), extra)
	testsupport.WriteFile(t, configPath, []byte(body))
	return &cliEnv{configPath: configPath, baseDir: base}
}

func (e *cliEnv) run(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (e *cliEnv) mustRun(t *testing.T, stdin io.Reader, args ...string) string {
	t.Helper()
	out, err := e.run(t, stdin, args...)
	if err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out)
	}
	return out
}

func decodeJSON[T any](t *testing.T, raw string) T {
	t.Helper()
	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	return out
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	env := newCLIEnv(t, "")
	target := filepath.Join(env.baseDir, "sample", "config.toml")

	out := env.mustRun(t, nil, "config", "init", "--path", target)
	if !strings.Contains(out, target) {
		t.Fatalf("expected target in output, got %q", out)
	}
	if got := testsupport.ReadFile(t, target); !bytes.Contains(got, []byte("[llm]")) {
		t.Fatal("sample config missing llm section")
	}
	if _, err := env.run(t, nil, "config", "init", "--path", target); err == nil {
		t.Fatal("expected refusal without --overwrite")
	}
	env.mustRun(t, nil, "config", "init", "--path", target, "--overwrite")
}

func TestConfigShowRedactsSecrets(t *testing.T) {
	env := newCLIEnv(t, "\n[llm]\napi_key = \"super-secret\"\n")
	out := env.mustRun(t, nil, "config", "show")
	if strings.Contains(out, "super-secret") {
		t.Fatal("secret leaked into config show")
	}
	if !strings.Contains(out, redacted) {
		t.Fatalf("expected redaction marker, got %s", out)
	}
	env.mustRun(t, nil, "config", "validate")
}

func TestSourcesJSON(t *testing.T) {
	env := newCLIEnv(t, "")
	out := env.mustRun(t, nil, "--json", "sources")
	descriptors := decodeJSON[[]sources.Descriptor](t, out)
	names := map[string]bool{}
	for _, d := range descriptors {
		names[string(d.Name)] = true
	}
	for _, want := range []string{"reddit", "twitter", "stackoverflow", "script"} {
		if !names[want] {
			t.Fatalf("missing source %s in %v", want, names)
		}
	}
}

func TestScriptCommandReadsStdin(t *testing.T) {
	env := newCLIEnv(t, "")
	out := env.mustRun(t, strings.NewReader("one two three"), "script", "-")
	sc := decodeJSON[map[string]any](t, out)
	if sc["source"] != "script" || sc["content"] != "one two three" {
		t.Fatalf("unexpected content: %v", sc)
	}
	if _, err := env.run(t, strings.NewReader("   "), "script", "-"); err == nil {
		t.Fatal("expected blank text to be rejected")
	}
}

func TestScrapeQueuesJobForDaemon(t *testing.T) {
	env := newCLIEnv(t, "")
	url := "https://www.reddit.com/r/golang/comments/abc123/title"

	out := env.mustRun(t, nil, "--json", "scrape", url)
	job := decodeJSON[api.JobView](t, out)
	if job.Status != "pending" || job.Source != "reddit" || job.JobID == "" {
		t.Fatalf("unexpected job: %+v", job)
	}

	list := decodeJSON[[]api.JobView](t, env.mustRun(t, nil, "--json", "job", "list", "--status", "pending"))
	if len(list) != 1 || list[0].JobID != job.JobID {
		t.Fatalf("unexpected job list: %+v", list)
	}

	shown := env.mustRun(t, nil, "job", "show", job.JobID)
	if !strings.Contains(shown, "Pending") {
		t.Fatalf("expected title-cased status, got %s", shown)
	}

	if _, err := env.run(t, nil, "job", "prune"); err == nil {
		t.Fatal("expected prune without flags to fail")
	}
	if out := env.mustRun(t, nil, "job", "prune", "--completed", "--failed"); !strings.Contains(out, "Removed 0 jobs") {
		t.Fatalf("pending job must survive prune, got %q", out)
	}
}

func TestScrapeRejectsUnknownURL(t *testing.T) {
	env := newCLIEnv(t, "")
	if _, err := env.run(t, nil, "scrape", "https://example.com/post"); err == nil {
		t.Fatal("expected unresolved source error")
	}
	out := env.mustRun(t, nil, "job", "list")
	if !strings.Contains(out, "No jobs") {
		t.Fatalf("nothing should be queued, got %q", out)
	}
}

func TestProjectFromScriptText(t *testing.T) {
	env := newCLIEnv(t, "")
	scriptPath := filepath.Join(env.baseDir, "story.txt")
	testsupport.WriteFile(t, scriptPath, []byte("my roommate labels every egg"))

	out := env.mustRun(t, nil, "--json", "project", "script", scriptPath, "--title", "Eggs")
	p := decodeJSON[api.ProjectView](t, out)
	if p.Status != "scraped" || p.Title != "Eggs" || p.SourceType != "script" {
		t.Fatalf("unexpected project: %+v", p)
	}

	if _, err := env.run(t, nil, "project", "audio", p.ID); err == nil {
		t.Fatal("audio before a script must be rejected")
	}

	list := decodeJSON[[]api.ProjectView](t, env.mustRun(t, nil, "--json", "project", "list", "--status", "scraped"))
	if len(list) != 1 || list[0].ID != p.ID {
		t.Fatalf("unexpected project list: %+v", list)
	}
	if out := env.mustRun(t, nil, "project", "show", p.ID); !strings.Contains(out, "Eggs") {
		t.Fatalf("expected title in show output, got %s", out)
	}
}

func TestDisplayStatus(t *testing.T) {
	cases := map[string]string{
		"script_generated": "Script Generated",
		"pending":          "Pending",
		"audio_generated":  "Audio Generated",
	}
	for in, want := range cases {
		if got := displayStatus(in); got != want {
			t.Fatalf("displayStatus(%q) = %q, want %q", in, got, want)
		}
	}
}
