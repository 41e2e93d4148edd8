package services_test

import (
	"errors"
	"strings"
	"testing"

	"toksmith/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrFetch, "reddit", "fetch", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrFetch) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"reddit", "fetch", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestGenerationErrorKeepsRawPayload(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := services.Wrap(services.ErrGeneration, "project", "confirm", "",
		services.NewGenerationError("script", "parse response", "{not json", cause))

	if !errors.Is(err, services.ErrGeneration) {
		t.Fatalf("expected generation marker, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to unwrap, got %v", err)
	}
	raw, ok := services.RawPayload(err)
	if !ok || raw != "{not json" {
		t.Fatalf("expected raw payload, got %q ok=%v", raw, ok)
	}
}

func TestKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{services.Wrap(services.ErrValidation, "", "", "bad url", nil), "validation"},
		{services.Wrap(services.ErrUnresolvedSource, "", "", "", nil), "unresolved_source"},
		{services.Wrap(services.ErrNotFound, "", "", "", nil), "not_found"},
		{services.Wrap(services.ErrConflict, "", "", "", nil), "conflict"},
		{services.Wrap(services.ErrFetch, "", "", "", nil), "fetch"},
		{services.NewGenerationError("", "", "", nil), "generation"},
		{errors.New("plain"), "internal"},
	}
	for _, tc := range cases {
		if got := services.Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
