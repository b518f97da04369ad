package bridge

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ziadkadry99/panotour/internal/assistant"
	"github.com/ziadkadry99/panotour/internal/server"
	"github.com/ziadkadry99/panotour/internal/session"
	"github.com/ziadkadry99/panotour/internal/tour"
)

type stubRepo struct{}

func (stubRepo) Load(ctx context.Context, tourID string) (*tour.Tour, error) {
	if tourID != "tour42" {
		return nil, &tour.LoadError{TourID: tourID, Err: tour.ErrNotFound}
	}
	return &tour.Tour{
		ID:         tourID,
		StartScene: "lobby",
		Scenes: map[string]*tour.Scene{
			"lobby": {Title: "Lobby", Image: "lobby.jpg", Hotspots: []tour.Hotspot{{Text: "Hall", To: "hall"}}},
			"hall":  {Title: "Hall", Image: "hall.jpg"},
		},
	}, nil
}

type stubAssistant struct {
	mu    sync.Mutex
	calls []assistant.Request
}

func (a *stubAssistant) Ask(ctx context.Context, req assistant.Request) (*assistant.Response, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, req)
	switch req.Message {
	case assistant.MiniInfo:
		return &assistant.Response{Text: "The hall."}, nil
	case "fail":
		return nil, &assistant.RequestError{Op: "request", Err: errors.New("down")}
	default:
		return &assistant.Response{Text: "Almaty."}, nil
	}
}

func setupServer(t *testing.T) (*httptest.Server, *Bridge, *stubAssistant) {
	t.Helper()
	a := &stubAssistant{}
	b := New(stubRepo{}, a, session.Options{
		AssetBase:            "http://assets.local",
		AnnouncementDuration: 6 * time.Second,
	}, server.CheckOrigin(false), zerolog.Nop())

	r := chi.NewRouter()
	b.RegisterRoutes(r)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts, b, a
}

func dial(t *testing.T, ts *httptest.Server, tourID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/tour/" + tourID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) serverFrame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f serverFrame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

func readUntil(t *testing.T, conn *websocket.Conn, typ string) serverFrame {
	t.Helper()
	for i := 0; i < 10; i++ {
		f := readFrame(t, conn)
		if f.Type == typ {
			return f
		}
	}
	t.Fatalf("no %q frame received", typ)
	return serverFrame{}
}

func TestBridgeInitFrame(t *testing.T) {
	ts, b, _ := setupServer(t)
	conn := dial(t, ts, "tour42")

	f := readFrame(t, conn)
	if f.Type != "init" {
		t.Fatalf("expected init frame, got %q", f.Type)
	}
	if f.SessionID == "" {
		t.Error("expected a session id")
	}
	if f.Config == nil || len(f.Config.Scenes) != 2 || f.Config.Default.FirstScene != "lobby" {
		t.Fatalf("unexpected config: %+v", f.Config)
	}
	if got := f.Config.Scenes["lobby"].Panorama; got != "http://assets.local/static/tour/panoramas/lobby.jpg" {
		t.Errorf("panorama: got %q", got)
	}

	deadline := time.Now().Add(time.Second)
	for b.ActiveSessions() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("expected 1 active session, got %d", b.ActiveSessions())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBridgeSceneChange(t *testing.T) {
	ts, _, a := setupServer(t)
	conn := dial(t, ts, "tour42")
	readUntil(t, conn, "init")

	if err := conn.WriteJSON(clientFrame{Type: "scenechange", SceneID: "hall"}); err != nil {
		t.Fatal(err)
	}

	thinking := readUntil(t, conn, "thinking")
	if thinking.Thinking == nil || !*thinking.Thinking || thinking.Avatar != "http://assets.local/static/ai/thinking.png" {
		t.Errorf("unexpected thinking frame: %+v", thinking)
	}
	announce := readUntil(t, conn, "announce")
	if announce.Text != "The hall." || announce.DurationMS != 6000 {
		t.Errorf("unexpected announce frame: %+v", announce)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.calls) != 1 || a.calls[0].CurrentScene != "hall" || a.calls[0].TourID != "tour42" {
		t.Errorf("unexpected assistant calls: %+v", a.calls)
	}
}

func TestBridgeChat(t *testing.T) {
	ts, _, _ := setupServer(t)
	conn := dial(t, ts, "tour42")
	readUntil(t, conn, "init")

	conn.WriteJSON(clientFrame{Type: "chat", Text: "Which city?"})

	user := readUntil(t, conn, "chat")
	if user.Sender != session.SenderUser || user.Text != "Which city?" {
		t.Errorf("unexpected user frame: %+v", user)
	}
	reply := readUntil(t, conn, "chat")
	if reply.Sender != session.SenderAssistant || reply.Text != "Almaty." {
		t.Errorf("unexpected reply frame: %+v", reply)
	}
}

func TestBridgeFailureAndRetry(t *testing.T) {
	ts, _, _ := setupServer(t)
	conn := dial(t, ts, "tour42")
	readUntil(t, conn, "init")

	conn.WriteJSON(clientFrame{Type: "chat", Text: "fail"})
	readUntil(t, conn, "chat")
	errFrame := readUntil(t, conn, "error")
	if errFrame.Text != session.AssistantUnavailable {
		t.Errorf("unexpected error frame: %+v", errFrame)
	}

	conn.WriteJSON(clientFrame{Type: "retry"})
	// The stub fails the same request again.
	readUntil(t, conn, "error")

	conn.WriteJSON(clientFrame{Type: "bogus"})
	if f := readUntil(t, conn, "error"); !strings.Contains(f.Text, "unknown message type") {
		t.Errorf("unexpected error text: %q", f.Text)
	}
}

func TestBridgeUnknownTour(t *testing.T) {
	ts, _, _ := setupServer(t)
	conn := dial(t, ts, "nope")

	f := readFrame(t, conn)
	if f.Type != "error" || !strings.Contains(f.Text, "tour not found") {
		t.Errorf("expected load error frame, got %+v", f)
	}
}

func TestBridgeRejectsForeignOrigin(t *testing.T) {
	ts, b, _ := setupServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/tour/tour42"

	header := http.Header{"Origin": {"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		t.Fatal("expected the handshake to be rejected")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %+v", resp)
	}
	if b.ActiveSessions() != 0 {
		t.Error("rejected handshake must not open a session")
	}

	header = http.Header{"Origin": {"http://localhost:3000"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("local origin should be accepted: %v", err)
	}
	defer conn.Close()
	if f := readFrame(t, conn); f.Type != "init" {
		t.Errorf("expected init frame, got %q", f.Type)
	}
}
