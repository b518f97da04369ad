package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ziadkadry99/panotour/internal/assistant"
	"github.com/ziadkadry99/panotour/internal/tour"
)

// Deps are the collaborators a session talks to.
type Deps struct {
	Tours     tour.Repository
	Assistant assistant.Client
	Viewer    Viewer
	Presenter Presenter
}

// Options tune a session. Zero values pick defaults.
type Options struct {
	// AssetBase prefixes static asset URLs, e.g. "https://tours.example.com".
	AssetBase string
	// AnnouncementDuration defaults to DefaultAnnouncementDuration.
	AnnouncementDuration time.Duration
	// RequestTimeout bounds each assistant request. Zero means no timeout.
	RequestTimeout time.Duration
	Logger         *zerolog.Logger
	// Rand draws fallback hotspot placements.
	Rand *rand.Rand
}

// job is one queued assistant request.
type job struct {
	req     assistant.Request
	ambient bool
	seq     uint64 // ambient requests only
}

// Session is one open tour view: the loaded scene graph, the scene on
// screen and the assistant dialogue. Assistant requests are processed one
// at a time in the order they were issued.
type Session struct {
	tourID string
	deps   Deps
	opts   Options
	log    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	wake   chan struct{}

	mu       sync.Mutex
	opening  bool
	opened   bool
	closed   bool
	tour     *tour.Tour
	cfg      tour.ViewerConfig
	current  string
	chat     []ChatMessage
	queue    []job
	inflight int
	idle     chan struct{}
	ambient  int
	// ambientSeq numbers scene descriptions; only the latest is announced.
	ambientSeq uint64
	// failed holds requests awaiting Retry, oldest first. At most one of
	// them is a scene description.
	failed []job
}

// New creates an unopened session for tourID.
func New(tourID string, deps Deps, opts Options) *Session {
	if opts.AnnouncementDuration <= 0 {
		opts.AnnouncementDuration = DefaultAnnouncementDuration
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		tourID: tourID,
		deps:   deps,
		opts:   opts,
		log:    logger.With().Str("component", "session").Str("tour_id", tourID).Logger(),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		wake:   make(chan struct{}, 1),
	}
}

// Open loads the tour, initializes the viewer on the start scene and
// subscribes to its scene changes. A failed Open leaves the session
// unopened; it may be called again.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return ErrClosed
	case s.opened || s.opening:
		s.mu.Unlock()
		return ErrAlreadyOpen
	}
	s.opening = true
	s.mu.Unlock()

	err := s.open(ctx)

	s.mu.Lock()
	s.opening = false
	s.mu.Unlock()

	if err != nil {
		s.log.Error().Err(err).Msg("open failed")
		s.deps.Presenter.ShowError(fmt.Sprintf("Could not open the tour: %v", err))
	}
	return err
}

func (s *Session) open(ctx context.Context) error {
	if s.tourID == "" {
		return &tour.LoadError{Err: errors.New("tour id is required")}
	}

	t, err := s.deps.Tours.Load(ctx, s.tourID)
	if err != nil {
		var loadErr *tour.LoadError
		if !errors.As(err, &loadErr) {
			err = &tour.LoadError{TourID: s.tourID, Err: err}
		}
		return err
	}
	// Repositories validate, but a custom one might not.
	if err := tour.Validate(t); err != nil {
		return &tour.LoadError{TourID: s.tourID, Err: err}
	}

	cfg := tour.BuildViewerConfig(t, s.opts.AssetBase, s.opts.Rand)
	if err := s.deps.Viewer.Init(cfg); err != nil {
		return fmt.Errorf("initializing viewer: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.tour = t
	s.cfg = cfg
	s.current = t.StartScene
	s.opened = true
	s.mu.Unlock()

	go s.run()
	s.deps.Viewer.OnSceneChange(s.OnSceneChanged)

	s.log.Info().Int("scenes", len(t.Scenes)).Str("start_scene", t.StartScene).Msg("tour opened")
	return nil
}

// OnSceneChanged records a scene transition reported by the viewer and
// requests an ambient description of the new scene. Unknown scene ids are
// ignored.
func (s *Session) OnSceneChanged(sceneID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.opened || s.closed {
		return
	}
	if !s.tour.HasScene(sceneID) {
		s.log.Warn().Str("scene_id", sceneID).Msg("viewer reported unknown scene")
		return
	}

	s.current = sceneID
	s.ambientSeq++
	s.dropFailedAmbientLocked()
	s.ambient++
	s.deps.Presenter.SetThinking(true)
	s.enqueueLocked(job{
		req: assistant.Request{
			TourID:       s.tourID,
			CurrentScene: sceneID,
			Message:      assistant.MiniInfo,
		},
		ambient: true,
		seq:     s.ambientSeq,
	})
	s.log.Debug().Str("scene_id", sceneID).Msg("scene changed")
}

// SendUserMessage appends text to the chat log and asks the assistant
// about it. Blank input is ignored.
func (s *Session) SendUserMessage(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.closed:
		return ErrClosed
	case !s.opened:
		return ErrNotOpen
	}

	s.appendLocked(ChatMessage{Sender: SenderUser, Text: text})
	s.enqueueLocked(job{req: assistant.Request{
		TourID:       s.tourID,
		CurrentScene: s.current,
		Message:      text,
	}})
	return nil
}

// Retry re-issues the oldest failed assistant request. A scene description
// is only kept for retry while no newer scene change replaced it.
func (s *Session) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.closed:
		return ErrClosed
	case len(s.failed) == 0:
		return ErrNothingToRetry
	}

	j := s.failed[0]
	s.failed = s.failed[1:]
	if j.ambient {
		s.ambient++
		s.deps.Presenter.SetThinking(true)
	}
	s.enqueueLocked(j)
	return nil
}

// Drain blocks until every queued assistant request has been applied.
func (s *Session) Drain(ctx context.Context) error {
	s.mu.Lock()
	if s.inflight == 0 {
		s.mu.Unlock()
		return nil
	}
	idle := s.idle
	s.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the request worker, cancels an in-flight request and drops
// queued ones. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	started := s.opened
	s.queue = nil
	s.mu.Unlock()

	s.cancel()
	if started {
		<-s.done
	}

	s.mu.Lock()
	if s.inflight > 0 {
		s.inflight = 0
		close(s.idle)
	}
	s.mu.Unlock()
	s.log.Debug().Msg("session closed")
}

// TourID returns the id the session was created for.
func (s *Session) TourID() string { return s.tourID }

// CurrentSceneID returns the scene on screen, or "" before Open.
func (s *Session) CurrentSceneID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Tour returns the loaded tour, or nil before Open.
func (s *Session) Tour() *tour.Tour {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tour
}

// ViewerConfig returns the config the viewer was initialized with.
func (s *Session) ViewerConfig() tour.ViewerConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Hotspots returns the hotspots of the current scene.
func (s *Session) Hotspots() []tour.Hotspot {
	s.mu.Lock()
	defer s.mu.Unlock()
	scene := s.tour.Scene(s.current)
	if scene == nil {
		return nil
	}
	return append([]tour.Hotspot(nil), scene.Hotspots...)
}

// ChatLog returns a copy of the chat log.
func (s *Session) ChatLog() []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ChatMessage(nil), s.chat...)
}

func (s *Session) appendLocked(msg ChatMessage) {
	s.chat = append(s.chat, msg)
	s.deps.Presenter.AppendChat(msg)
}

func (s *Session) dropFailedAmbientLocked() {
	kept := s.failed[:0]
	for _, j := range s.failed {
		if !j.ambient {
			kept = append(kept, j)
		}
	}
	s.failed = kept
}

func (s *Session) enqueueLocked(j job) {
	s.queue = append(s.queue, j)
	s.inflight++
	if s.inflight == 1 {
		s.idle = make(chan struct{})
	}
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// run is the request worker. It owns the only path that applies
// assistant responses, which keeps them in request order.
func (s *Session) run() {
	defer close(s.done)
	for {
		s.mu.Lock()
		for len(s.queue) == 0 {
			if s.closed {
				s.mu.Unlock()
				return
			}
			s.mu.Unlock()
			select {
			case <-s.wake:
			case <-s.ctx.Done():
				return
			}
			s.mu.Lock()
		}
		j := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		s.process(j)

		s.mu.Lock()
		if s.inflight > 0 {
			s.inflight--
			if s.inflight == 0 {
				close(s.idle)
			}
		}
		s.mu.Unlock()
	}
}

func (s *Session) process(j job) {
	ctx := s.ctx
	if s.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RequestTimeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.deps.Assistant.Ask(ctx, j.req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if j.ambient {
		s.ambient--
		if s.ambient == 0 {
			s.deps.Presenter.SetThinking(false)
		}
	}
	if s.closed {
		return
	}

	if err != nil {
		s.log.Error().Err(err).
			Str("scene_id", j.req.CurrentScene).
			Bool("ambient", j.ambient).
			Dur("elapsed", time.Since(start)).
			Msg("assistant request failed")
		s.deps.Presenter.ShowError(AssistantUnavailable)
		if j.ambient && j.seq != s.ambientSeq {
			return
		}
		s.failed = append(s.failed, j)
		return
	}

	text := ""
	if resp != nil {
		text = resp.Text
	}
	s.log.Debug().
		Str("scene_id", j.req.CurrentScene).
		Bool("ambient", j.ambient).
		Dur("elapsed", time.Since(start)).
		Msg("assistant answered")

	if j.ambient {
		if j.seq != s.ambientSeq {
			s.log.Debug().Str("scene_id", j.req.CurrentScene).Msg("dropping superseded scene description")
			return
		}
		if text == "" {
			text = FallbackDescription
		}
		s.deps.Presenter.Announce(text, s.opts.AnnouncementDuration)
		return
	}

	if text == "" {
		text = FallbackReply
	}
	s.appendLocked(ChatMessage{Sender: SenderAssistant, Text: text})
}
