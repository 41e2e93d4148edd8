package script

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"toksmith/internal/content"
	"toksmith/internal/services"
)

const topComments = 3

const defaultSystemPrompt = "You are an expert content creator who turns online discussions into engaging short-form video scripts. You respond with JSON only."

const defaultInstructions = `1. Create a script with clear speaker roles: "Narrator", "OP", "Commenter1", "Commenter2", etc.
2. Start with an engaging hook that introduces the situation
3. Present the original post content in a conversational way
4. Include 2-3 of the most interesting or relevant comments
5. End with a call-to-action asking viewers what they think
6. Keep each dialogue line under 50 words for better pacing
7. Make it sound natural and engaging, not robotic`

const outputFormat = `{
  "lines": [
    {
      "speaker": "Narrator",
      "text": "dialogue text here",
      "audio_file_path": "",
      "start_time": 0,
      "duration": 0
    }
  ],
  "background": "minecraft-parkour",
  "characters": ["narrator", "op", "commenter1", "commenter2"]
}`

// PromptTemplate holds the replaceable parts of the prompt. The content
// sections and the output format are always rendered by BuildPrompt.
type PromptTemplate struct {
	System       string `yaml:"system"`
	Instructions string `yaml:"instructions"`
}

// DefaultPromptTemplate returns the built-in template.
func DefaultPromptTemplate() PromptTemplate {
	return PromptTemplate{System: defaultSystemPrompt, Instructions: defaultInstructions}
}

// LoadPromptTemplate reads a YAML override. Keys left empty keep their
// built-in value. An empty path returns the default template.
func LoadPromptTemplate(path string) (PromptTemplate, error) {
	tmpl := DefaultPromptTemplate()
	path = strings.TrimSpace(path)
	if path == "" {
		return tmpl, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return tmpl, services.Wrap(services.ErrConfiguration, "script", "load prompt", path, err)
	}
	var override PromptTemplate
	if err := yaml.Unmarshal(data, &override); err != nil {
		return tmpl, services.Wrap(services.ErrConfiguration, "script", "parse prompt", path, err)
	}
	if s := strings.TrimSpace(override.System); s != "" {
		tmpl.System = s
	}
	if s := strings.TrimSpace(override.Instructions); s != "" {
		tmpl.Instructions = s
	}
	return tmpl, nil
}

// BuildPrompt renders content with the default template.
func BuildPrompt(sc *content.ScrapedContent) string {
	return DefaultPromptTemplate().Render(sc)
}

// Render produces the user prompt for sc. The output depends only on sc and
// the template.
func (t PromptTemplate) Render(sc *content.ScrapedContent) string {
	var b strings.Builder
	b.WriteString("Convert the following content into a conversational video script. The script should be engaging, natural, and suited to a short-form video.\n\n")

	fmt.Fprintf(&b, "**Source:** %s\n", sourceLabel(sc))
	fmt.Fprintf(&b, "- Title: %s\n", sc.Title)
	fmt.Fprintf(&b, "- Author: %s\n", valueOr(sc.Author, "Anonymous"))
	fmt.Fprintf(&b, "- Score: %d\n\n", score(sc))

	b.WriteString("**Content:**\n")
	b.WriteString(sc.Content)
	b.WriteString("\n\n**Top Comments:**\n")
	for i, c := range sc.Comments {
		if i == topComments {
			break
		}
		fmt.Fprintf(&b, "%d. %s (%d upvotes): %s\n", i+1, valueOr(c.Author, "Anonymous"), c.Upvotes, c.Content)
	}

	b.WriteString("\n**Instructions:**\n")
	b.WriteString(t.Instructions)
	b.WriteString("\n\n**Output Format (JSON):**\n")
	b.WriteString(outputFormat)
	b.WriteString("\n\nRespond ONLY with valid JSON, no additional text or formatting.")
	return b.String()
}

func sourceLabel(sc *content.ScrapedContent) string {
	if sc.Source == content.SourceReddit {
		if sub, ok := sc.MetadataString("subreddit"); ok && sub != "" {
			return "r/" + sub
		}
	}
	return sc.Source.String()
}

func score(sc *content.ScrapedContent) int {
	if n, ok := sc.MetadataInt("upvotes"); ok {
		return n
	}
	if n, ok := sc.MetadataInt("question_score"); ok {
		return n
	}
	return 0
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
