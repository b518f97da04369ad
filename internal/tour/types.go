package tour

// Tour is a loaded tour descriptor: a scene graph plus its entry point.
// It is never mutated after load.
type Tour struct {
	ID         string            `json:"-" yaml:"-"`
	Title      string            `json:"title,omitempty" yaml:"title,omitempty"`
	StartScene string            `json:"startScene" yaml:"startScene"`
	Scenes     map[string]*Scene `json:"scenes" yaml:"scenes"`
}

// Scene is one navigable panorama node.
type Scene struct {
	Title       string    `json:"title" yaml:"title"`
	Image       string    `json:"image" yaml:"image"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Hotspots    []Hotspot `json:"hotspots" yaml:"hotspots"`
}

// Hotspot is a marker inside a scene that leads to another scene.
type Hotspot struct {
	Text      string     `json:"text" yaml:"text"`
	To        string     `json:"to" yaml:"to"`
	Placement *Placement `json:"placement,omitempty" yaml:"placement,omitempty"`
}

// Placement is the direction of a hotspot marker, in degrees.
type Placement struct {
	Pitch float64 `json:"pitch" yaml:"pitch"`
	Yaw   float64 `json:"yaw" yaml:"yaw"`
}

// Scene returns the scene with the given id, or nil.
func (t *Tour) Scene(id string) *Scene {
	if t == nil {
		return nil
	}
	return t.Scenes[id]
}

// HasScene reports whether id names a scene of the tour.
func (t *Tour) HasScene(id string) bool {
	return t.Scene(id) != nil
}
