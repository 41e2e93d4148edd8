package script

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// DefaultBackground is used when the provider omits a background.
const DefaultBackground = "minecraft-parkour"

// DefaultCharacters returns the speaker roles used when the provider omits them.
func DefaultCharacters() []string {
	return []string{"narrator", "op", "commenter1", "commenter2"}
}

// DialogueLine is one spoken line. AudioFilePath stays empty until synthesized.
type DialogueLine struct {
	Speaker       string  `json:"speaker"`
	Text          string  `json:"text"`
	AudioFilePath string  `json:"audio_file_path"`
	StartTime     float64 `json:"start_time"`
	Duration      float64 `json:"duration"`
}

// Script is an ordered dialogue with presentation hints.
type Script struct {
	ID         string         `json:"id"`
	Lines      []DialogueLine `json:"lines"`
	Background string         `json:"background"`
	Characters []string       `json:"characters"`
}

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewID returns an id of the form script_<unix-ms>_<9 lowercase alphanumerics>.
func NewID(now time.Time) string {
	suffix := make([]byte, 9)
	limit := big.NewInt(int64(len(idAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			// crypto/rand does not fail on supported platforms.
			panic(fmt.Sprintf("script id: %v", err))
		}
		suffix[i] = idAlphabet[n.Int64()]
	}
	return fmt.Sprintf("script_%d_%s", now.UnixMilli(), suffix)
}
