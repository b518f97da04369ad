package bridge

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ziadkadry99/panotour/internal/session"
	"github.com/ziadkadry99/panotour/internal/tour"
)

// connection is the browser side of one session. It acts as the session's
// viewer (forwarding scene changes reported by the browser) and presenter
// (pushing frames to it).
type connection struct {
	ws        *websocket.Conn
	id        string
	assetBase string
	log       zerolog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	onScene func(string)
}

func (c *connection) Init(cfg tour.ViewerConfig) error {
	return c.send(serverFrame{Type: "init", SessionID: c.id, Config: &cfg})
}

func (c *connection) OnSceneChange(fn func(string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onScene = fn
}

func (c *connection) sceneChanged(sceneID string) {
	c.mu.Lock()
	fn := c.onScene
	c.mu.Unlock()
	if fn != nil {
		fn(sceneID)
	}
}

func (c *connection) SetThinking(thinking bool) {
	avatar := answerAvatar
	if thinking {
		avatar = thinkingAvatar
	}
	c.push(serverFrame{Type: "thinking", Thinking: &thinking, Avatar: c.assetBase + avatar})
}

func (c *connection) Announce(text string, d time.Duration) {
	c.push(serverFrame{Type: "announce", Text: text, DurationMS: d.Milliseconds()})
}

func (c *connection) AppendChat(msg session.ChatMessage) {
	c.push(serverFrame{Type: "chat", Sender: msg.Sender, Text: msg.Text})
}

func (c *connection) ShowError(msg string) {
	c.push(serverFrame{Type: "error", Text: msg})
}

// push sends a frame and logs failures; presenter calls have no error path.
func (c *connection) push(f serverFrame) {
	if err := c.send(f); err != nil {
		c.log.Warn().Err(err).Str("frame", f.Type).Msg("websocket write")
	}
}

func (c *connection) send(f serverFrame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(f)
}
