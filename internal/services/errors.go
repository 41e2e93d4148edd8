package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrUnresolvedSource = errors.New("unresolved source")
	ErrFetch            = errors.New("fetch error")
	ErrGeneration       = errors.New("generation error")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrConfiguration    = errors.New("configuration error")
	ErrTransient        = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// GenerationError reports a provider payload that could not be turned into a
// script. Raw keeps the untouched payload for diagnosis.
type GenerationError struct {
	Stage   string
	Message string
	Raw     string
	Err     error
}

func (e *GenerationError) Error() string {
	detail := buildDetail(e.Stage, "", e.Message)
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrGeneration, detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrGeneration, detail)
}

func (e *GenerationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrGeneration, e.Err}
	}
	return []error{ErrGeneration}
}

// NewGenerationError tags a provider failure and retains the raw payload.
func NewGenerationError(stage, message, raw string, err error) *GenerationError {
	return &GenerationError{Stage: stage, Message: message, Raw: raw, Err: err}
}

// Kind reports the stable classification label for an error. It is used for
// log fields, API payloads, and metric labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrUnresolvedSource):
		return "unresolved_source"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrFetch):
		return "fetch"
	case errors.Is(err, ErrGeneration):
		return "generation"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	default:
		return "internal"
	}
}

// RawPayload returns the provider payload carried by a GenerationError.
func RawPayload(err error) (string, bool) {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Raw, true
	}
	return "", false
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
