package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPClientAsk(t *testing.T) {
	var got Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/assistant" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type: got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Write([]byte(`{"text":"The hall."}`))
	}))
	defer ts.Close()

	c := NewHTTPClient(ts.URL+"/", ts.Client())
	resp, err := c.Ask(context.Background(), Request{TourID: "tour42", CurrentScene: "hall", Message: MiniInfo})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if resp.Text != "The hall." {
		t.Errorf("text: got %q", resp.Text)
	}
	if got.TourID != "tour42" || got.CurrentScene != "hall" || got.Message != MiniInfo {
		t.Errorf("unexpected request body: %+v", got)
	}
}

func TestHTTPClientWireFormat(t *testing.T) {
	data, err := json.Marshal(Request{TourID: "t", CurrentScene: "s", Message: "m"})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"tour_id":"t","current_scene":"s","message":"m"}` {
		t.Errorf("unexpected wire format: %s", data)
	}
}

func TestHTTPClientMissingText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	resp, err := NewHTTPClient(ts.URL, nil).Ask(context.Background(), Request{Message: "hi"})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if resp.Text != "" {
		t.Errorf("expected empty text, got %q", resp.Text)
	}
}

func TestHTTPClientStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL, nil).Ask(context.Background(), Request{Message: "hi"})
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *RequestError, got %T: %v", err, err)
	}
	if reqErr.StatusCode != http.StatusBadGateway {
		t.Errorf("status: got %d", reqErr.StatusCode)
	}
}

func TestHTTPClientBadJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL, nil).Ask(context.Background(), Request{Message: "hi"})
	var reqErr *RequestError
	if !errors.As(err, &reqErr) || reqErr.Op != "decode" {
		t.Fatalf("expected decode RequestError, got %v", err)
	}
}

func TestHTTPClientCanceled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"late"}`))
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTPClient(ts.URL, nil).Ask(ctx, Request{Message: "hi"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestIsAmbient(t *testing.T) {
	if !(Request{Message: MiniInfo}).IsAmbient() {
		t.Error("sentinel request should be ambient")
	}
	if (Request{Message: "Which city?"}).IsAmbient() {
		t.Error("user request should not be ambient")
	}
}
