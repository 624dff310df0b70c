package light

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithID is an option builder that replaces the generated identifier, for lights whose
// identity comes from an imported scene.
//
// Parameters:
//   - id: the identifier to use
//
// Returns:
//   - LightBuilderOption: a function that applies the id option to a lightImpl
func WithID(id uuid.UUID) LightBuilderOption {
	return func(l *lightImpl) {
		l.id = id
	}
}

// WithPosition is an option builder that sets the world-space position of the light.
//
// Parameters:
//   - x: the x position component
//   - y: the y position component
//   - z: the z position component
//
// Returns:
//   - LightBuilderOption: a function that applies the position option to a lightImpl
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = mgl32.Vec3{x, y, z}
	}
}

// WithDirection is an option builder that sets the emission direction of the light.
// The direction is normalized before storing.
//
// Parameters:
//   - x: the x direction component
//   - y: the y direction component
//   - z: the z direction component
//
// Returns:
//   - LightBuilderOption: a function that applies the direction option to a lightImpl
func WithDirection(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.direction = normalize(mgl32.Vec3{x, y, z})
	}
}

// WithColor is an option builder that sets the linear RGB color of the light.
//
// Parameters:
//   - r: the red color component
//   - g: the green color component
//   - b: the blue color component
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a lightImpl
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = mgl32.Vec3{r, g, b}
	}
}

// WithIntensity is an option builder that sets the scalar intensity multiplier.
//
// Parameters:
//   - intensity: the intensity value
//
// Returns:
//   - LightBuilderOption: a function that applies the intensity option to a lightImpl
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = intensity
	}
}

// WithRange is an option builder that sets the attenuation range for point and spot lights.
//
// Parameters:
//   - lightRange: the range value
//
// Returns:
//   - LightBuilderOption: a function that applies the range option to a lightImpl
func WithRange(lightRange float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.lightRange = lightRange
	}
}

// WithSpotAngles is an option builder that sets the full inner and outer cone angles
// of a spot light, in degrees.
//
// Parameters:
//   - innerDeg: inner cone angle in degrees
//   - outerDeg: outer cone angle in degrees
//
// Returns:
//   - LightBuilderOption: a function that applies the cone option to a lightImpl
func WithSpotAngles(innerDeg, outerDeg float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.innerSpotAngle = innerDeg
		l.spotAngle = outerDeg
	}
}

// WithEnabled is an option builder that sets whether the light is active.
//
// Parameters:
//   - enabled: true to enable
//
// Returns:
//   - LightBuilderOption: a function that applies the enabled option to a lightImpl
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}

// WithShadows is an option builder that sets the shadow mode and strength.
//
// Parameters:
//   - mode: the shadow mode
//   - strength: shadow strength in [0, 1]
//
// Returns:
//   - LightBuilderOption: a function that applies the shadow option to a lightImpl
func WithShadows(mode ShadowMode, strength float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.shadows = mode
		l.shadowStrength = strength
	}
}

// WithShadowBias is an option builder that sets the slope-scale bias, normal bias and
// shadow near plane of the light.
//
// Parameters:
//   - bias: slope-scale depth bias
//   - normalBias: normal offset scale
//   - nearPlane: shadow projection near plane
//
// Returns:
//   - LightBuilderOption: a function that applies the bias option to a lightImpl
func WithShadowBias(bias, normalBias, nearPlane float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.shadowBias = bias
		l.shadowNormalBias = normalBias
		l.shadowNearPlane = nearPlane
	}
}

func WithRenderingLayerMask(mask uint32) LightBuilderOption {
	return func(l *lightImpl) {
		l.renderingLayerMask = mask
	}
}

func WithBakingOutput(output BakingOutput) LightBuilderOption {
	return func(l *lightImpl) {
		l.bakingOutput = output
	}
}
