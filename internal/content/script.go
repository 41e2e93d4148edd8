package content

import (
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"toksmith/internal/logging"
	"toksmith/internal/services"
)

// MaxScriptRunes bounds direct text input.
const MaxScriptRunes = 10000

const scriptTitle = "Custom Script"

// FromScript wraps user supplied text as ScrapedContent. Text over
// MaxScriptRunes is truncated and reported through logger.
func FromScript(text string, logger *slog.Logger) (*ScrapedContent, error) {
	if strings.TrimSpace(text) == "" {
		return nil, services.Wrap(services.ErrValidation, "input", "script", "script text is empty", nil)
	}

	truncated := false
	if n := utf8.RuneCountInString(text); n > MaxScriptRunes {
		runes := []rune(text)
		text = string(runes[:MaxScriptRunes])
		truncated = true
		logging.WarnWithContext(logger, "script text truncated", "script_truncated",
			logging.Int("original_length", n),
			logging.Int("max_length", MaxScriptRunes),
			logging.String(logging.FieldErrorHint, "split long scripts into several projects"),
			logging.String(logging.FieldImpact, "text beyond the limit is ignored"),
		)
	}

	return &ScrapedContent{
		Source:   SourceScript,
		Title:    scriptTitle,
		Content:  text,
		Comments: []PostComment{},
		Metadata: map[string]any{
			"length":     utf8.RuneCountInString(text),
			"word_count": len(strings.Fields(text)),
			"truncated":  truncated,
		},
		Timestamp: time.Now().UTC(),
	}, nil
}
