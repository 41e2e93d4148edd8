package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"toksmith/internal/fileutil"
	"toksmith/internal/logging"
	"toksmith/internal/metrics"
	"toksmith/internal/script"
	"toksmith/internal/textutil"
)

const (
	defaultVoice   = "Ava Song"
	defaultTimeout = 60 * time.Second
)

// TTS converts text to encoded audio.
type TTS interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// Result summarizes one synthesis pass.
type Result struct {
	Synthesized int `json:"synthesized"`
	Skipped     int `json:"skipped"`
	Failed      int `json:"failed"`
}

// Synthesizer writes per-line audio files into a directory.
type Synthesizer struct {
	tts     TTS
	outDir  string
	voice   string
	timeout time.Duration
	logger  *slog.Logger
}

// Option customizes a Synthesizer.
type Option func(*Synthesizer)

// WithVoice sets the voice used for every line.
func WithVoice(voice string) Option {
	return func(s *Synthesizer) {
		if strings.TrimSpace(voice) != "" {
			s.voice = voice
		}
	}
}

// WithTimeout bounds each TTS call.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Synthesizer) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synthesizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSynthesizer returns a Synthesizer writing into outDir.
func NewSynthesizer(tts TTS, outDir string, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		tts:     tts,
		outDir:  outDir,
		voice:   defaultVoice,
		timeout: defaultTimeout,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize fills AudioFilePath for each line of sc in order and returns sc.
// Only a failure to create the output directory is returned as an error.
func (s *Synthesizer) Synthesize(ctx context.Context, sc *script.Script) (*script.Script, Result, error) {
	var res Result
	if sc == nil {
		return nil, res, nil
	}
	if err := os.MkdirAll(s.outDir, 0o755); err != nil {
		return sc, res, fmt.Errorf("create audio dir %s: %w", s.outDir, err)
	}
	logger := logging.WithContext(ctx, s.logger)

	for i := range sc.Lines {
		line := &sc.Lines[i]
		if line.AudioFilePath != "" && fileutil.Exists(line.AudioFilePath) {
			res.Skipped++
			metrics.AudioLinesTotal.WithLabelValues(metrics.OutcomeSkipped).Inc()
			continue
		}
		if ctx.Err() != nil {
			res.Failed++
			metrics.AudioLinesTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
			continue
		}

		path, err := s.synthesizeLine(ctx, sc.ID, i, line.Text)
		if err != nil {
			res.Failed++
			metrics.AudioLinesTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
			logging.WarnWithContext(logger, "line synthesis failed", "audio_line_failed",
				logging.Int("line", i),
				logging.String("speaker", line.Speaker),
				logging.Error(err),
				logging.String(logging.FieldImpact, "line has no audio"),
				logging.String(logging.FieldErrorHint, "rerun audio generation to retry missing lines"),
			)
			continue
		}
		line.AudioFilePath = path
		res.Synthesized++
		metrics.AudioLinesTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	}

	logger.Info("audio synthesis finished",
		logging.String("script_id", sc.ID),
		logging.Int("synthesized", res.Synthesized),
		logging.Int("skipped", res.Skipped),
		logging.Int("failed", res.Failed),
	)
	return sc, res, nil
}

func (s *Synthesizer) synthesizeLine(ctx context.Context, scriptID string, index int, text string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	audio, err := s.tts.Synthesize(callCtx, text, s.voice)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.outDir, FileName(scriptID, index))
	if err := fileutil.WriteFileAtomic(path, audio, 0o644); err != nil {
		return "", fmt.Errorf("write audio: %w", err)
	}
	return path, nil
}

// FileName returns <scriptID>_<index>_<8 hex chars>.mp3. The script id is
// reduced to a single safe path component.
func FileName(scriptID string, index int) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%d_%s.mp3", textutil.SanitizeToken(scriptID), index, suffix)
}
