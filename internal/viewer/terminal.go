// Package viewer provides a terminal stand-in for the panorama viewer:
// it shows scene titles and follows hotspots by name.
package viewer

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ziadkadry99/panotour/internal/tour"
)

var (
	ErrNotInitialized = errors.New("viewer is not initialized")
	ErrNoSuchHotspot  = errors.New("no such hotspot in this scene")
)

// Terminal implements session.Viewer on a text terminal.
type Terminal struct {
	mu      sync.Mutex
	out     io.Writer
	cfg     tour.ViewerConfig
	current string
	ready   bool
	onScene func(string)
}

// NewTerminal creates a viewer that prints scene entries to out.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

func (v *Terminal) Init(cfg tour.ViewerConfig) error {
	first, ok := cfg.Scenes[cfg.Default.FirstScene]
	if !ok {
		return fmt.Errorf("first scene %q is not in the scene mapping", cfg.Default.FirstScene)
	}

	v.mu.Lock()
	v.cfg = cfg
	v.current = cfg.Default.FirstScene
	v.ready = true
	v.mu.Unlock()

	v.printScene(first)
	return nil
}

func (v *Terminal) OnSceneChange(fn func(string)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onScene = fn
}

// Current returns the id of the scene on screen.
func (v *Terminal) Current() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// HotSpots returns the markers of the scene on screen.
func (v *Terminal) HotSpots() []tour.ViewerHotSpot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]tour.ViewerHotSpot(nil), v.cfg.Scenes[v.current].HotSpots...)
}

// Navigate follows the hotspot of the current scene whose target id or
// label matches target, then notifies the scene-change subscriber.
func (v *Terminal) Navigate(target string) error {
	target = strings.TrimSpace(target)

	v.mu.Lock()
	if !v.ready {
		v.mu.Unlock()
		return ErrNotInitialized
	}
	var next string
	for _, h := range v.cfg.Scenes[v.current].HotSpots {
		if h.SceneID == target || strings.EqualFold(h.Text, target) {
			next = h.SceneID
			break
		}
	}
	if next == "" {
		v.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrNoSuchHotspot, target)
	}
	v.current = next
	scene := v.cfg.Scenes[next]
	fn := v.onScene
	v.mu.Unlock()

	v.printScene(scene)
	if fn != nil {
		fn(next)
	}
	return nil
}

func (v *Terminal) printScene(scene tour.ViewerScene) {
	fmt.Fprintf(v.out, "\n== %s ==\n", scene.Title)
	for _, h := range scene.HotSpots {
		fmt.Fprintf(v.out, "  -> %s (%s, yaw %.0f)\n", h.Text, h.SceneID, h.Yaw)
	}
}
