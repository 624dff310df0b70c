package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/kkiej/literp/common"
)

func TestCameraDefaults(t *testing.T) {
	c := NewCamera()
	assert.Equal(t, mgl32.Vec3{0, 0, 5}, c.Position())
	assertNear(t, mgl32.Vec3{0, 0, -1}, c.Forward())
	assert.Equal(t, uint32(0xFFFFFFFF), c.LightFilterMask())

	origin := c.ViewProjectionMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, origin.X()/origin.W(), 1e-5)
	assert.InDelta(t, 0, origin.Y()/origin.W(), 1e-5)
	assert.InDelta(t, 5, origin.W(), 1e-5)
}

func TestLightFilterMask(t *testing.T) {
	c := NewCamera(WithRenderingLayerMask(0b0101, false))
	assert.Equal(t, uint32(0xFFFFFFFF), c.LightFilterMask())
	c.SetRenderingLayerMask(0b0101, true)
	assert.Equal(t, uint32(0b0101), c.LightFilterMask())
	assert.True(t, c.MaskLights())
}

func TestCameraFrustum(t *testing.T) {
	c := NewCamera(WithLookAt(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}), WithNear(0.1), WithFar(50))
	f := c.Frustum()
	assert.True(t, f.IntersectsSphere(common.Sphere{Center: mgl32.Vec3{0, 0, -10}, Radius: 1}))
	assert.False(t, f.IntersectsSphere(common.Sphere{Center: mgl32.Vec3{0, 0, 10}, Radius: 1}))
	assert.False(t, f.IntersectsSphere(common.Sphere{Center: mgl32.Vec3{0, 0, -60}, Radius: 1}))
}

func TestOrbitController(t *testing.T) {
	ctrl := NewOrbitController(WithRadius(10), WithAngles(0, 0), WithSpeeds(float32(math.Pi/2), 1, 1))
	assertNear(t, mgl32.Vec3{0, 0, 10}, ctrl.Position())

	ctrl.Orbit(1, 0)
	assertNear(t, mgl32.Vec3{10, 0, 0}, ctrl.Position())

	ctrl.Orbit(0, 10)
	assert.Less(t, ctrl.Elevation(), float32(math.Pi/2))

	ctrl.Zoom(100)
	assert.Equal(t, float32(1), ctrl.Radius())

	c := NewCamera(WithController(ctrl))
	assert.Equal(t, ctrl.Position(), c.Position())

	ctrl.SetTarget(mgl32.Vec3{1, 2, 3})
	c.Update()
	assert.Equal(t, ctrl.Position(), c.Position())
}

func TestPanKeepsOrbit(t *testing.T) {
	ctrl := NewOrbitController(WithRadius(10), WithAngles(0, 0))
	before := ctrl.Position().Sub(ctrl.Target())
	ctrl.Pan(2, 3)
	after := ctrl.Position().Sub(ctrl.Target())
	assertNear(t, after, before)
	assert.InDelta(t, 2, ctrl.Target().X(), 1e-5)
	assert.InDelta(t, 3, ctrl.Target().Y(), 1e-5)
}

func assertNear(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	assert.InDelta(t, 0, want.Sub(got).Len(), 1e-4, "want %v, got %v", want, got)
}
