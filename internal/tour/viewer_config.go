package tour

import (
	"math/rand/v2"
	"strings"
)

const (
	// PanoramaPath is the static path panorama images are served under.
	PanoramaPath = "/static/tour/panoramas/"

	// SceneFadeDuration is the cross-fade between scenes, in milliseconds.
	SceneFadeDuration = 800
)

// ViewerConfig is the scene mapping handed to the panorama viewer.
type ViewerConfig struct {
	Default ViewerDefaults          `json:"default"`
	Scenes  map[string]ViewerScene `json:"scenes"`
}

// ViewerDefaults holds the viewer-wide settings.
type ViewerDefaults struct {
	FirstScene        string `json:"firstScene"`
	SceneFadeDuration int    `json:"sceneFadeDuration"`
}

// ViewerScene is one scene as the viewer expects it.
type ViewerScene struct {
	Title    string          `json:"title"`
	Type     string          `json:"type"`
	Panorama string          `json:"panorama"`
	HotSpots []ViewerHotSpot `json:"hotSpots"`
}

// ViewerHotSpot is a navigation marker pointing at another scene.
type ViewerHotSpot struct {
	Pitch   float64 `json:"pitch"`
	Yaw     float64 `json:"yaw"`
	Type    string  `json:"type"`
	Text    string  `json:"text"`
	SceneID string  `json:"sceneId"`
}

// PanoramaURL resolves a scene image to its static asset URL.
func PanoramaURL(assetBase, image string) string {
	return strings.TrimRight(assetBase, "/") + PanoramaPath + strings.TrimLeft(image, "/")
}

// BuildViewerConfig maps a validated tour into the viewer's scene format.
// Authored hotspot placements are used as is. Hotspots without one get a
// random yaw from rnd with pitch 0; scenes are visited in sorted order so a
// seeded rnd gives reproducible placements.
func BuildViewerConfig(t *Tour, assetBase string, rnd *rand.Rand) ViewerConfig {
	cfg := ViewerConfig{
		Default: ViewerDefaults{
			FirstScene:        t.StartScene,
			SceneFadeDuration: SceneFadeDuration,
		},
		Scenes: make(map[string]ViewerScene, len(t.Scenes)),
	}

	for _, id := range SceneIDs(t) {
		scene := t.Scenes[id]
		vs := ViewerScene{
			Title:    scene.Title,
			Type:     "equirectangular",
			Panorama: PanoramaURL(assetBase, scene.Image),
			HotSpots: make([]ViewerHotSpot, 0, len(scene.Hotspots)),
		}
		for _, h := range scene.Hotspots {
			p := placementOrRandom(h.Placement, rnd)
			vs.HotSpots = append(vs.HotSpots, ViewerHotSpot{
				Pitch:   p.Pitch,
				Yaw:     p.Yaw,
				Type:    "scene",
				Text:    h.Text,
				SceneID: h.To,
			})
		}
		cfg.Scenes[id] = vs
	}
	return cfg
}

func placementOrRandom(p *Placement, rnd *rand.Rand) Placement {
	if p != nil {
		return *p
	}
	var yaw int
	if rnd != nil {
		yaw = rnd.IntN(360)
	} else {
		yaw = rand.IntN(360)
	}
	return Placement{Pitch: 0, Yaw: float64(yaw)}
}
