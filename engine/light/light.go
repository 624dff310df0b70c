package light

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeDirectional represents a light with no position, only direction.
	// Used for large distant sources like the sun or moon. Affects all fragments
	// uniformly with no distance attenuation.
	LightTypeDirectional LightType = iota

	// LightTypePoint represents a light that emits in all directions from a position.
	// Attenuates with distance up to a configurable range.
	LightTypePoint

	// LightTypeSpot represents a light that emits in a cone from a position along a direction.
	// Attenuates with both distance and angle from the cone axis, controlled by the
	// inner and outer spot angles.
	LightTypeSpot
)

func (t LightType) String() string {
	switch t {
	case LightTypeDirectional:
		return "directional"
	case LightTypePoint:
		return "point"
	case LightTypeSpot:
		return "spot"
	}
	return "unknown"
}

// ShadowMode selects whether and how a light casts realtime shadows.
type ShadowMode int

const (
	ShadowsNone ShadowMode = iota
	ShadowsHard
	ShadowsSoft
)

// LightmapBakeType is the baking mode the light was authored with.
type LightmapBakeType int

const (
	LightmapBakeRealtime LightmapBakeType = iota
	LightmapBakeMixed
	LightmapBakeBaked
)

// MixedLightingMode is the mixed lighting mode used while baking.
type MixedLightingMode int

const (
	MixedLightingIndirectOnly MixedLightingMode = iota
	MixedLightingShadowmask
	MixedLightingSubtractive
)

// BakingOutput describes what the lightmapper produced for a light. A mixed light baked
// with the shadowmask mode owns an occlusion mask channel that shaders sample for
// static shadows.
type BakingOutput struct {
	BakeType             LightmapBakeType
	MixedMode            MixedLightingMode
	OcclusionMaskChannel int
}

// UsesShadowMask reports whether the light contributes a baked shadow-mask channel.
func (b BakingOutput) UsesShadowMask() bool {
	return b.BakeType == LightmapBakeMixed && b.MixedMode == MixedLightingShadowmask
}

// DefaultRenderingLayerMask has every layer bit set.
const DefaultRenderingLayerMask uint32 = 0xFFFFFFFF

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	id                 uuid.UUID
	lightType          LightType
	position           mgl32.Vec3
	direction          mgl32.Vec3
	color              mgl32.Vec3
	intensity          float32
	lightRange         float32
	spotAngle          float32 // full outer cone angle in degrees
	innerSpotAngle     float32 // full inner cone angle in degrees
	enabled            bool
	shadows            ShadowMode
	shadowStrength     float32
	shadowBias         float32
	shadowNormalBias   float32
	shadowNearPlane    float32
	renderingLayerMask uint32
	bakingOutput       BakingOutput
}

// Light defines the interface for a light source in the scene.
//
// Lights are authored scene entities. They are not read by the lighting core directly;
// culling wraps each visible one in a VisibleLight which carries the per-frame derived
// values (final color, transform, screen rectangle). Type-specific properties return
// their stored values even when not applicable to the light type.
type Light interface {
	// ID returns the stable identity of the light.
	//
	// Returns:
	//   - uuid.UUID: the light identifier
	ID() uuid.UUID

	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type (directional, point, or spot)
	Type() LightType

	// Position returns the world-space position of the light.
	// Meaningless for directional lights.
	//
	// Returns:
	//   - mgl32.Vec3: world-space position
	Position() mgl32.Vec3

	// Direction returns the normalized direction the light emits toward.
	// For spot lights this is the cone axis. Meaningless for point lights.
	//
	// Returns:
	//   - mgl32.Vec3: normalized emission direction
	Direction() mgl32.Vec3

	// Color returns the linear RGB color of the light.
	//
	// Returns:
	//   - mgl32.Vec3: color as (r, g, b)
	Color() mgl32.Vec3

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// Range returns the maximum attenuation distance for point and spot lights.
	//
	// Returns:
	//   - float32: the range value
	Range() float32

	// SpotAngle returns the full outer cone angle in degrees.
	//
	// Returns:
	//   - float32: outer cone angle in degrees
	SpotAngle() float32

	// InnerSpotAngle returns the full inner cone angle in degrees. Fragments inside
	// it receive full intensity.
	//
	// Returns:
	//   - float32: inner cone angle in degrees
	InnerSpotAngle() float32

	// Enabled returns whether this light is active for rendering.
	// Disabled lights are skipped by culling.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// Shadows returns the realtime shadow mode of the light.
	//
	// Returns:
	//   - ShadowMode: none, hard or soft
	Shadows() ShadowMode

	// ShadowStrength returns the shadow opacity in [0, 1]. A strength of zero disables
	// realtime shadows as if the mode were ShadowsNone.
	//
	// Returns:
	//   - float32: the shadow strength
	ShadowStrength() float32

	// ShadowBias returns the slope-scale depth bias used while rendering this light's
	// shadow casters.
	//
	// Returns:
	//   - float32: slope-scale bias
	ShadowBias() float32

	// ShadowNormalBias returns the normal offset scale applied when sampling the shadow map.
	//
	// Returns:
	//   - float32: normal bias scale
	ShadowNormalBias() float32

	// ShadowNearPlane returns the near plane of the shadow projection. Directional lights
	// use it to pull the cascade projection back toward the light.
	//
	// Returns:
	//   - float32: near plane distance
	ShadowNearPlane() float32

	// RenderingLayerMask returns the bit mask tested against the camera's layer filter.
	//
	// Returns:
	//   - uint32: the rendering layer mask
	RenderingLayerMask() uint32

	// BakingOutput returns how the light was baked.
	//
	// Returns:
	//   - BakingOutput: the baking result
	BakingOutput() BakingOutput

	// SetPosition sets the world-space position of the light.
	//
	// Parameters:
	//   - position: world-space position
	SetPosition(position mgl32.Vec3)

	// SetDirection sets the emission direction of the light and normalizes it.
	//
	// Parameters:
	//   - direction: emission direction (will be normalized)
	SetDirection(direction mgl32.Vec3)

	// SetColor sets the linear RGB color of the light.
	//
	// Parameters:
	//   - color: color components
	SetColor(color mgl32.Vec3)

	// SetIntensity sets the scalar intensity multiplier.
	//
	// Parameters:
	//   - intensity: the intensity value
	SetIntensity(intensity float32)

	// SetRange sets the maximum attenuation distance.
	//
	// Parameters:
	//   - lightRange: the range value
	SetRange(lightRange float32)

	// SetSpotAngles sets the full inner and outer cone angles in degrees.
	//
	// Parameters:
	//   - innerDeg: inner cone angle in degrees
	//   - outerDeg: outer cone angle in degrees
	SetSpotAngles(innerDeg, outerDeg float32)

	// SetEnabled enables or disables the light for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetShadows sets the shadow mode and strength.
	//
	// Parameters:
	//   - mode: the shadow mode
	//   - strength: shadow strength in [0, 1]
	SetShadows(mode ShadowMode, strength float32)

	// SetRenderingLayerMask sets the rendering layer bits of the light.
	//
	// Parameters:
	//   - mask: the layer mask
	SetRenderingLayerMask(mask uint32)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with sensible defaults and
// any provided options applied.
//
// Parameters:
//   - lightType: the kind of light to create (directional, point, or spot)
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		id:                 uuid.New(),
		lightType:          lightType,
		position:           mgl32.Vec3{0, 0, 0},
		direction:          mgl32.Vec3{0, -1, 0},
		color:              mgl32.Vec3{1, 1, 1},
		intensity:          1.0,
		lightRange:         10.0,
		spotAngle:          30.0,
		innerSpotAngle:     21.8,
		enabled:            true,
		shadows:            ShadowsNone,
		shadowStrength:     1.0,
		shadowBias:         0.05,
		shadowNormalBias:   0.4,
		shadowNearPlane:    0.2,
		renderingLayerMask: DefaultRenderingLayerMask,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) ID() uuid.UUID {
	return l.id
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() mgl32.Vec3 {
	return l.position
}

func (l *lightImpl) Direction() mgl32.Vec3 {
	return l.direction
}

func (l *lightImpl) Color() mgl32.Vec3 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Range() float32 {
	return l.lightRange
}

func (l *lightImpl) SpotAngle() float32 {
	return l.spotAngle
}

func (l *lightImpl) InnerSpotAngle() float32 {
	return l.innerSpotAngle
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) Shadows() ShadowMode {
	return l.shadows
}

func (l *lightImpl) ShadowStrength() float32 {
	return l.shadowStrength
}

func (l *lightImpl) ShadowBias() float32 {
	return l.shadowBias
}

func (l *lightImpl) ShadowNormalBias() float32 {
	return l.shadowNormalBias
}

func (l *lightImpl) ShadowNearPlane() float32 {
	return l.shadowNearPlane
}

func (l *lightImpl) RenderingLayerMask() uint32 {
	return l.renderingLayerMask
}

func (l *lightImpl) BakingOutput() BakingOutput {
	return l.bakingOutput
}

func (l *lightImpl) SetPosition(position mgl32.Vec3) {
	l.position = position
}

func (l *lightImpl) SetDirection(direction mgl32.Vec3) {
	l.direction = normalize(direction)
}

func (l *lightImpl) SetColor(color mgl32.Vec3) {
	l.color = color
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetRange(lightRange float32) {
	l.lightRange = lightRange
}

func (l *lightImpl) SetSpotAngles(innerDeg, outerDeg float32) {
	l.innerSpotAngle = innerDeg
	l.spotAngle = outerDeg
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

func (l *lightImpl) SetShadows(mode ShadowMode, strength float32) {
	l.shadows = mode
	l.shadowStrength = strength
}

func (l *lightImpl) SetRenderingLayerMask(mask uint32) {
	l.renderingLayerMask = mask
}

// normalize returns v scaled to unit length, or the default downward direction when v
// has no length.
func normalize(v mgl32.Vec3) mgl32.Vec3 {
	if v.Len() == 0 {
		return mgl32.Vec3{0, -1, 0}
	}
	return v.Normalize()
}
