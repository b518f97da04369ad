package session

import (
	"errors"
	"time"

	"github.com/ziadkadry99/panotour/internal/tour"
)

// Sender identifies the author of a chat message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// ChatMessage is one entry of the session's chat log.
type ChatMessage struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

const (
	// FallbackReply replaces an assistant chat answer that carried no text.
	FallbackReply = "Sorry, the assistant did not answer."
	// FallbackDescription replaces an empty scene description.
	FallbackDescription = "Scene description unavailable."
	// AssistantUnavailable is shown inline when an assistant request fails.
	AssistantUnavailable = "The assistant is unavailable right now. Retry to send the request again."

	// DefaultAnnouncementDuration is how long a scene description stays visible.
	DefaultAnnouncementDuration = 6 * time.Second
)

var (
	ErrNotOpen        = errors.New("session is not open")
	ErrAlreadyOpen    = errors.New("session is already open")
	ErrClosed         = errors.New("session is closed")
	ErrNothingToRetry = errors.New("no failed request to retry")
)

// Viewer is the panorama viewer the session drives.
type Viewer interface {
	// Init loads the scene mapping and shows the first scene.
	Init(cfg tour.ViewerConfig) error
	// OnSceneChange registers the callback fired after the viewer moved
	// to another scene.
	OnSceneChange(fn func(sceneID string))
}

// Presenter displays session output. Calls are made while the session
// holds its lock, so implementations must not call back into the session.
type Presenter interface {
	SetThinking(thinking bool)
	// Announce shows text for d, then hides it.
	Announce(text string, d time.Duration)
	AppendChat(msg ChatMessage)
	ShowError(msg string)
}
