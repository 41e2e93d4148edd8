package daemon

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"toksmith/internal/config"
	"toksmith/internal/logging"
)

func TestAPIServerDisabledWithoutBind(t *testing.T) {
	if srv := newAPIServer(config.API{}, http.NotFoundHandler(), logging.NewNop()); srv != nil {
		t.Fatal("expected nil server for empty bind")
	}
	if srv := newAPIServer(config.API{Bind: "127.0.0.1:0"}, nil, logging.NewNop()); srv != nil {
		t.Fatal("expected nil server for nil handler")
	}
	var srv *apiServer
	if err := srv.start(context.Background()); err != nil {
		t.Fatalf("nil start: %v", err)
	}
	srv.stop()
	if srv.address() != "" {
		t.Fatal("expected empty address")
	}
}

func TestAPIServerServesUntilContextDone(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	srv := newAPIServer(config.API{Bind: "127.0.0.1:0", RequestTimeout: 10}, handler, logging.NewNop())
	if srv.server.WriteTimeout != 40*time.Second {
		t.Fatalf("unexpected write timeout %s", srv.server.WriteTimeout)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := srv.start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	addr := srv.address()

	resp, err := http.Get("http://" + addr + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Fatalf("unexpected body %q", body)
	}

	cancel()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := http.Get("http://" + addr + "/"); err != nil {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("server still accepting after context cancellation")
}
