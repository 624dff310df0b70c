package light

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/kkiej/literp/common"
)

// VisibleLight is a light that survived camera culling, with the values the lighting
// core reads each frame. Culling produces it and nothing downstream modifies it.
type VisibleLight struct {
	Light Light
	Type  LightType

	// FinalColor is the linear color premultiplied by intensity.
	FinalColor mgl32.Vec4

	// LocalToWorld has the emission direction in column 2 and the position in column 3.
	LocalToWorld mgl32.Mat4

	Range     float32
	SpotAngle float32 // full outer cone angle in degrees

	// ScreenRect is the light's conservative footprint in screen UV space.
	ScreenRect common.Rect
}

// NewVisibleLight derives a VisibleLight from l covering the full screen. Culling
// narrows ScreenRect for local lights.
//
// Parameters:
//   - l: the scene light
//
// Returns:
//   - VisibleLight: the per-frame view of the light
func NewVisibleLight(l Light) VisibleLight {
	c := l.Color().Mul(l.Intensity())
	return VisibleLight{
		Light:        l,
		Type:         l.Type(),
		FinalColor:   c.Vec4(1),
		LocalToWorld: common.LocalToWorld(l.Position(), l.Direction()),
		Range:        l.Range(),
		SpotAngle:    l.SpotAngle(),
		ScreenRect:   common.FullScreenRect,
	}
}

// Position returns column 3 of the transform.
func (v VisibleLight) Position() mgl32.Vec4 {
	return v.LocalToWorld.Col(3)
}

// Forward returns column 2 of the transform, the emission direction.
func (v VisibleLight) Forward() mgl32.Vec4 {
	return v.LocalToWorld.Col(2)
}
