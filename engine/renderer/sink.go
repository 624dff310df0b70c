package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/kkiej/literp/common"
)

// ShadowDraw is one shadow caster pass into a tile of a shadow atlas.
type ShadowDraw struct {
	// Atlas is the global name of the atlas being rendered into.
	Atlas string

	VisibleLightIndex int

	// Slice is the cascade index for directional lights, the cube face for point
	// lights and zero for spot lights.
	Slice int

	View       mgl32.Mat4
	Projection mgl32.Mat4
	Viewport   common.Viewport

	SlopeScaleBias float32

	// CullingSphere bounds the casters of a directional cascade, radius in w.
	CullingSphere             mgl32.Vec4
	CascadeBlendCullingFactor float32

	// Pancaking clamps casters behind the near plane onto it. Directional only.
	Pancaking bool
}

// Sink receives everything the lighting core writes for a frame: shader globals,
// packed buffers, shadow atlas allocations and shadow caster draws.
//
// Implementations only need to be used from one goroutine at a time.
type Sink interface {
	// SetGlobalInt sets an integer shader global.
	//
	// Parameters:
	//   - name: the global name
	//   - value: the value
	SetGlobalInt(name string, value int32)

	// SetGlobalFloat sets a float shader global.
	//
	// Parameters:
	//   - name: the global name
	//   - value: the value
	SetGlobalFloat(name string, value float32)

	// SetGlobalVector sets a vec4 shader global.
	//
	// Parameters:
	//   - name: the global name
	//   - value: the value
	SetGlobalVector(name string, value mgl32.Vec4)

	// SetKeyword enables or disables a shader keyword.
	//
	// Parameters:
	//   - name: the keyword
	//   - enabled: the new state
	SetKeyword(name string, enabled bool)

	// SetBufferData replaces the contents of a named structured buffer.
	//
	// Parameters:
	//   - name: the buffer name
	//   - data: packed little-endian element data
	//
	// Returns:
	//   - error: an error if the upload fails
	SetBufferData(name string, data []byte) error

	// SetShadowAtlas binds a square depth atlas of the given size to a global name.
	// A size of zero binds a 1x1 placeholder so shaders always have a valid texture.
	//
	// Parameters:
	//   - name: the atlas global name
	//   - size: atlas width and height in texels
	//
	// Returns:
	//   - error: an error if the atlas cannot be created
	SetShadowAtlas(name string, size int) error

	// DrawShadows renders shadow casters for one atlas tile.
	//
	// Parameters:
	//   - draw: the caster pass description
	//
	// Returns:
	//   - error: an error if the pass cannot be recorded
	DrawShadows(draw ShadowDraw) error
}
