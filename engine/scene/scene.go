package scene

import (
	"fmt"
	"sync"

	"github.com/kkiej/literp/common"
	"github.com/kkiej/literp/engine/camera"
	"github.com/kkiej/literp/engine/culling"
	"github.com/kkiej/literp/engine/light"
	"github.com/kkiej/literp/engine/lighting"
	"github.com/kkiej/literp/engine/loader"
	"github.com/kkiej/literp/engine/renderer"
	"github.com/kkiej/literp/engine/settings"
)

// Scene holds the lights and shadow casters seen by one camera, together with the
// lighting pass that renders them. Scenes can be hot-swapped via the Active flag.
// Thread-safe for concurrent access; frames of one scene are serialized.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// SetCamera replaces the scene's camera.
	//
	// Parameters:
	//   - cam: the new camera (nil is ignored)
	SetCamera(cam camera.Camera)

	// Settings returns the pipeline settings used for each frame.
	Settings() settings.Pipeline

	// SetSettings replaces the pipeline settings. The next frame picks them up.
	//
	// Parameters:
	//   - s: the new pipeline settings
	SetSettings(s settings.Pipeline)

	// AddLight adds a light source to the scene. Lights keep their insertion order,
	// which is the order the collector sees them in.
	//
	// Parameters:
	//   - l: the Light to add
	AddLight(l light.Light)

	// RemoveLight removes a light source from the scene by reference.
	//
	// Parameters:
	//   - l: the Light to remove
	RemoveLight(l light.Light)

	// Lights returns a copy of the scene's light list.
	//
	// Returns:
	//   - []light.Light: the scene's lights in insertion order
	Lights() []light.Light

	// AddCaster registers the world-space bounds of a shadow-casting renderer.
	// Empty bounds are ignored.
	//
	// Parameters:
	//   - b: the caster bounds
	AddCaster(b common.Bounds)

	// Casters returns a copy of the registered caster bounds.
	//
	// Returns:
	//   - []common.Bounds: the caster bounds
	Casters() []common.Bounds

	// Import appends the lights and casters of an imported scene file.
	//
	// Parameters:
	//   - data: the imported scene (nil is ignored)
	Import(data *loader.SceneData)

	// Clear removes all lights and casters from the scene.
	Clear()

	// Pass returns the scene's lighting pass.
	Pass() *lighting.Pass

	// RenderFrame culls the scene's lights against the camera and runs the lighting
	// pass for an attachment of the given size, writing the results into sink.
	//
	// Parameters:
	//   - width: the color attachment width in pixels
	//   - height: the color attachment height in pixels
	//   - sink: the receiver of the frame's globals, buffers and shadow draws
	//
	// Returns:
	//   - lighting.Resources: the frame's resource snapshot, tiles valid until the next frame
	//   - error: error if the pass fails to write into the sink
	RenderFrame(width, height int, sink renderer.Sink) (lighting.Resources, error)

	// LastFrame returns the snapshot of the most recent RenderFrame.
	//
	// Returns:
	//   - lighting.Resources: the last frame's resources (zero before the first frame)
	LastFrame() lighting.Resources
}

type scene struct {
	mu      *sync.RWMutex
	frameMu sync.Mutex

	name     string
	active   bool
	cam      camera.Camera
	settings settings.Pipeline

	lights  []light.Light
	casters []common.Bounds

	pass      *lighting.Pass
	indexMap  []int
	lastFrame lighting.Resources
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a new Scene viewed through cam. NewScene panics if cam is nil.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}

	s := &scene{
		mu:       &sync.RWMutex{},
		name:     name,
		cam:      cam,
		settings: settings.Default(),
	}

	for _, option := range options {
		option(s)
	}

	// Create the pass after options so WithPass can provide a configured one.
	if s.pass == nil {
		s.pass = lighting.NewPass()
	}

	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	if cam == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
}

func (s *scene) Settings() settings.Pipeline {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *scene) SetSettings(p settings.Pipeline) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = p
}

func (s *scene) AddLight(l light.Light) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = append(s.lights, l)
}

func (s *scene) RemoveLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.lights {
		if existing == l {
			// keep order, the collector depends on it
			s.lights = append(s.lights[:i], s.lights[i+1:]...)
			return
		}
	}
}

func (s *scene) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]light.Light, len(s.lights))
	copy(out, s.lights)
	return out
}

func (s *scene) AddCaster(b common.Bounds) {
	if b.IsEmpty() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.casters = append(s.casters, b)
}

func (s *scene) Casters() []common.Bounds {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]common.Bounds, len(s.casters))
	copy(out, s.casters)
	return out
}

func (s *scene) Import(data *loader.SceneData) {
	if data == nil {
		return
	}
	for _, l := range data.Lights {
		s.AddLight(l)
	}
	for _, b := range data.Casters {
		s.AddCaster(b)
	}
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = nil
	s.casters = nil
}

func (s *scene) Pass() *lighting.Pass {
	return s.pass
}

func (s *scene) RenderFrame(width, height int, sink renderer.Sink) (lighting.Resources, error) {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()

	s.mu.RLock()
	name := s.name
	cam := s.cam
	cfg := s.settings
	lights := make([]light.Light, len(s.lights))
	copy(lights, s.lights)
	casters := make([]common.Bounds, len(s.casters))
	copy(casters, s.casters)
	s.mu.RUnlock()

	results := culling.Cull(cam, lights, casters)

	in := lighting.FrameInput{
		Visible:            results.Visible,
		AttachmentWidth:    width,
		AttachmentHeight:   height,
		Query:              results.ShadowQuery(cfg.Shadows.MaxDistance),
		RenderingLayerMask: cam.LightFilterMask(),
		Settings:           cfg,
	}
	if cfg.UseLightsPerObject {
		s.indexMap = append(s.indexMap[:0], results.IndexMap()...)
		in.IndexMap = s.indexMap
	}

	s.pass.Setup(in)
	if err := s.pass.Render(sink); err != nil {
		return lighting.Resources{}, fmt.Errorf("scene %s: failed to render lighting: %w", name, err)
	}

	res := s.pass.Resources()
	s.mu.Lock()
	s.lastFrame = res
	s.mu.Unlock()
	return res, nil
}

func (s *scene) LastFrame() lighting.Resources {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastFrame
}
