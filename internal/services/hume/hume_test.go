package hume

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"toksmith/internal/services"
)

func TestSynthesizeDecodesFirstGeneration(t *testing.T) {
	var got synthesizeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(apiKeyHeader) != "secret" {
			t.Errorf("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"generations": []any{
				map[string]any{"audio": base64.StdEncoding.EncodeToString([]byte("ID3-first"))},
				map[string]any{"audio": base64.StdEncoding.EncodeToString([]byte("ID3-second"))},
			},
		})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "secret", BaseURL: server.URL})
	audio, err := client.Synthesize(context.Background(), "hello world", "")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(audio) != "ID3-first" {
		t.Fatalf("unexpected audio %q", audio)
	}
	if len(got.Utterances) != 1 {
		t.Fatalf("expected one utterance, got %+v", got)
	}
	u := got.Utterances[0]
	if u.Text != "hello world" || u.Voice.Name != "Ava Song" || u.Voice.Provider != "HUME_AI" {
		t.Fatalf("unexpected utterance %+v", u)
	}
}

func TestSynthesizeErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		marker error
	}{
		{"http failure", http.StatusUnauthorized, `{"message":"bad key"}`, services.ErrTransient},
		{"no generations", http.StatusOK, `{"generations":[]}`, services.ErrGeneration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(Config{APIKey: "k", BaseURL: server.URL})
			if _, err := client.Synthesize(context.Background(), "hi", "Ava Song"); !errors.Is(err, tt.marker) {
				t.Fatalf("expected %v, got %v", tt.marker, err)
			}
		})
	}
}

func TestSynthesizeRequiresKey(t *testing.T) {
	client := NewClient(Config{})
	if _, err := client.Synthesize(context.Background(), "hi", ""); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
