package script

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"toksmith/internal/services"
)

// Parse validates raw provider output and builds a Script with a fresh id.
// Malformed JSON is a GenerationError carrying raw. Well-formed JSON with the
// wrong shape is a validation error; no line is built in either case.
func Parse(raw string) (*Script, error) {
	cleaned := stripFence(raw)

	var decoded any
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return nil, services.NewGenerationError("script", "response is not valid JSON", raw, err)
	}

	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, invalid("response must be a JSON object")
	}
	rawLines, ok := obj["lines"].([]any)
	if !ok {
		return nil, invalid("response must contain a lines array")
	}
	for i, item := range rawLines {
		line, ok := item.(map[string]any)
		if !ok {
			return nil, invalid(fmt.Sprintf("line %d is not an object", i))
		}
		if _, ok := line["speaker"].(string); !ok {
			return nil, invalid(fmt.Sprintf("line %d has no string speaker", i))
		}
		if _, ok := line["text"].(string); !ok {
			return nil, invalid(fmt.Sprintf("line %d has no string text", i))
		}
	}

	lines := make([]DialogueLine, 0, len(rawLines))
	for _, item := range rawLines {
		line := item.(map[string]any)
		lines = append(lines, DialogueLine{
			Speaker:       line["speaker"].(string),
			Text:          line["text"].(string),
			AudioFilePath: firstString(line, "audio_file_path", "audioFilePath"),
			StartTime:     firstNumber(line, "start_time", "startTime"),
			Duration:      firstNumber(line, "duration"),
		})
	}

	background, _ := obj["background"].(string)
	if strings.TrimSpace(background) == "" {
		background = DefaultBackground
	}
	characters, ok := stringSlice(obj["characters"])
	if !ok {
		characters = DefaultCharacters()
	}

	return &Script{
		ID:         NewID(time.Now()),
		Lines:      lines,
		Background: background,
		Characters: characters,
	}, nil
}

func invalid(message string) error {
	return services.Wrap(services.ErrValidation, "script", "parse", message, nil)
}

// stripFence removes one leading ```json or ``` fence and its closing fence.
func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = strings.TrimPrefix(s, "```json")
	case strings.HasPrefix(s, "```"):
		s = strings.TrimPrefix(s, "```")
	default:
		return s
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key].(string); ok {
			return v
		}
	}
	return ""
}

func firstNumber(m map[string]any, keys ...string) float64 {
	for _, key := range keys {
		if v, ok := m[key].(float64); ok {
			return v
		}
	}
	return 0
}

func stringSlice(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
