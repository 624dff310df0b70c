package scene

import (
	"github.com/kkiej/literp/common"
	"github.com/kkiej/literp/engine/light"
	"github.com/kkiej/literp/engine/lighting"
	"github.com/kkiej/literp/engine/loader"
	"github.com/kkiej/literp/engine/settings"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is active for rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithLights adds initial lights to the scene, in order.
//
// Parameters:
//   - lights: the lights to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLights(lights ...light.Light) SceneBuilderOption {
	return func(s *scene) {
		for _, l := range lights {
			if l != nil {
				s.lights = append(s.lights, l)
			}
		}
	}
}

// WithCasters adds initial shadow caster bounds to the scene.
//
// Parameters:
//   - casters: world-space caster bounds
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCasters(casters ...common.Bounds) SceneBuilderOption {
	return func(s *scene) {
		for _, b := range casters {
			if !b.IsEmpty() {
				s.casters = append(s.casters, b)
			}
		}
	}
}

// WithSceneData adds the lights and casters of an imported scene. The scene takes
// the imported name when it was created without one.
//
// Parameters:
//   - data: the imported scene
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSceneData(data *loader.SceneData) SceneBuilderOption {
	return func(s *scene) {
		if data == nil {
			return
		}
		if s.name == "" {
			s.name = data.Name
		}
		WithLights(data.Lights...)(s)
		WithCasters(data.Casters...)(s)
	}
}

// WithSettings sets the pipeline settings. Defaults to settings.Default().
//
// Parameters:
//   - p: the pipeline settings
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSettings(p settings.Pipeline) SceneBuilderOption {
	return func(s *scene) {
		s.settings = p
	}
}

// WithPass sets the lighting pass, e.g. one sharing a profiler or a debug overlay.
// Defaults to a lighting.NewPass() with no options.
//
// Parameters:
//   - p: the lighting pass (nil is ignored)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithPass(p *lighting.Pass) SceneBuilderOption {
	return func(s *scene) {
		if p != nil {
			s.pass = p
		}
	}
}
