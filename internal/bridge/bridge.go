// Package bridge hosts tour sessions for browser panorama viewers over
// WebSocket. Each connection gets its own session; the browser renders
// the panoramas and reports scene changes, the session runs the dialogue.
package bridge

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ziadkadry99/panotour/internal/assistant"
	"github.com/ziadkadry99/panotour/internal/session"
	"github.com/ziadkadry99/panotour/internal/tour"
)

const (
	writeTimeout = 10 * time.Second

	thinkingAvatar = "/static/ai/thinking.png"
	answerAvatar   = "/static/ai/answer.png"
)

// clientFrame is a message from the browser.
type clientFrame struct {
	Type    string `json:"type"` // "scenechange", "chat" or "retry"
	SceneID string `json:"scene_id,omitempty"`
	Text    string `json:"text,omitempty"`
}

// serverFrame is a message to the browser.
type serverFrame struct {
	Type       string             `json:"type"` // "init", "thinking", "announce", "chat" or "error"
	SessionID  string             `json:"session_id,omitempty"`
	Config     *tour.ViewerConfig `json:"config,omitempty"`
	Text       string             `json:"text,omitempty"`
	Sender     session.Sender     `json:"sender,omitempty"`
	Thinking   *bool              `json:"thinking,omitempty"`
	Avatar     string             `json:"avatar,omitempty"`
	DurationMS int64              `json:"duration_ms,omitempty"`
}

// Bridge creates sessions for incoming WebSocket connections.
type Bridge struct {
	tours     tour.Repository
	assistant assistant.Client
	opts      session.Options
	log       zerolog.Logger
	upgrader  websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*session.Session
}

// New creates a bridge. opts is the template for every session it opens.
// checkOrigin vets upgrade requests; nil accepts same-origin requests only.
func New(tours tour.Repository, client assistant.Client, opts session.Options, checkOrigin func(*http.Request) bool, logger zerolog.Logger) *Bridge {
	return &Bridge{
		tours:     tours,
		assistant: client,
		opts:      opts,
		log:       logger.With().Str("component", "bridge").Logger(),
		upgrader:  websocket.Upgrader{CheckOrigin: checkOrigin},
		sessions:  make(map[string]*session.Session),
	}
}

// RegisterRoutes mounts the bridge routes onto the given router.
func (b *Bridge) RegisterRoutes(r chi.Router) {
	r.Get("/ws/tour/{tourID}", b.handleWebSocket)
	r.Get("/api/sessions", b.handleSessions)
}

// ActiveSessions returns the number of connected sessions.
func (b *Bridge) ActiveSessions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}

func (b *Bridge) handleSessions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"active": b.ActiveSessions()})
}

func (b *Bridge) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	tourID := chi.URLParam(r, "tourID")
	if tourID == "" {
		http.Error(w, "tour id is required", http.StatusBadRequest)
		return
	}

	wsConn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	defer wsConn.Close()

	id := uuid.NewString()
	logger := b.log.With().Str("session_id", id).Str("tour_id", tourID).Logger()
	conn := &connection{ws: wsConn, id: id, assetBase: strings.TrimRight(b.opts.AssetBase, "/"), log: logger}

	opts := b.opts
	opts.Logger = &logger
	sess := session.New(tourID, session.Deps{
		Tours:     b.tours,
		Assistant: b.assistant,
		Viewer:    conn,
		Presenter: conn,
	}, opts)
	defer sess.Close()

	if err := sess.Open(r.Context()); err != nil {
		// The session already showed the error to the browser.
		wsConn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "tour unavailable"),
			time.Now().Add(writeTimeout))
		return
	}

	b.track(id, sess)
	defer b.untrack(id)
	logger.Info().Msg("session connected")

	for {
		_, msg, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn().Err(err).Msg("websocket read")
			}
			logger.Info().Msg("session disconnected")
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(msg, &frame); err != nil {
			conn.ShowError("invalid message format")
			continue
		}

		switch frame.Type {
		case "scenechange":
			conn.sceneChanged(frame.SceneID)
		case "chat":
			if err := sess.SendUserMessage(frame.Text); err != nil {
				conn.ShowError(err.Error())
			}
		case "retry":
			if err := sess.Retry(); err != nil {
				conn.ShowError(err.Error())
			}
		default:
			conn.ShowError("unknown message type: " + frame.Type)
		}
	}
}

func (b *Bridge) track(id string, s *session.Session) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[id] = s
}

func (b *Bridge) untrack(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, id)
}
