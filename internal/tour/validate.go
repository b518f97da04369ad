package tour

import (
	"errors"
	"fmt"
	"sort"
)

// Validate checks the scene graph for structural problems: a missing or
// unknown start scene, empty scenes, and hotspots pointing at scenes that
// do not exist. All problems are reported together, wrapped in ErrInvalid.
func Validate(t *Tour) error {
	if t == nil {
		return fmt.Errorf("%w: descriptor is empty", ErrInvalid)
	}

	var problems []error
	if len(t.Scenes) == 0 {
		problems = append(problems, errors.New("tour has no scenes"))
	}
	if t.StartScene == "" {
		problems = append(problems, errors.New("startScene is required"))
	} else if len(t.Scenes) > 0 && !t.HasScene(t.StartScene) {
		problems = append(problems, fmt.Errorf("startScene %q is not a scene of the tour", t.StartScene))
	}

	for _, id := range SceneIDs(t) {
		scene := t.Scenes[id]
		if scene == nil {
			problems = append(problems, fmt.Errorf("scene %q is empty", id))
			continue
		}
		for i, h := range scene.Hotspots {
			if h.To == "" {
				problems = append(problems, fmt.Errorf("scene %q hotspot %d has no target", id, i))
				continue
			}
			if !t.HasScene(h.To) {
				problems = append(problems, fmt.Errorf("scene %q hotspot %d (%q) targets unknown scene %q", id, i, h.Text, h.To))
			}
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(problems...))
}

// SceneIDs returns the tour's scene ids in sorted order.
func SceneIDs(t *Tour) []string {
	ids := make([]string, 0, len(t.Scenes))
	for id := range t.Scenes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
