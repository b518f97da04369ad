package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestHealthCheck(t *testing.T) {
	srv := New(Config{Port: 0}, zerolog.Nop())

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := New(Config{Port: 0, AllowAll: true}, zerolog.Nop())

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestServeAndShutdown(t *testing.T) {
	srv := New(Config{}, zerolog.Nop())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not come up: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		t.Errorf("expected ErrServerClosed, got %v", err)
	}
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		origin   string
		allowAll bool
		want     bool
	}{
		{"", false, true},
		{"http://localhost:3000", false, true},
		{"http://127.0.0.1:8090", false, true},
		{"https://localhost:3000", false, false},
		{"http://evil.example", false, false},
		{"http://localhost.evil.example", false, false},
		{"http://evil.example", true, true},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/ws/tour/tour42", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		if got := CheckOrigin(tt.allowAll)(req); got != tt.want {
			t.Errorf("CheckOrigin(%v) for %q: got %v, want %v", tt.allowAll, tt.origin, got, tt.want)
		}
	}
}
