package common

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReinterpretAsFloatRoundTripsBits(t *testing.T) {
	for _, v := range []int32{0, 1, -1, 31, 1 << 20, math.MinInt32} {
		f := ReinterpretAsFloat(v)
		assert.Equal(t, v, int32(math.Float32bits(f)))
	}
	assert.Equal(t, uint32(0xFFFFFFFF), math.Float32bits(ReinterpretUintAsFloat(0xFFFFFFFF)))
}

func TestPutVec4AndMat4(t *testing.T) {
	buf := make([]byte, 80)
	off := PutVec4(buf, 0, mgl32.Vec4{1, 2, 3, 4})
	require.Equal(t, 16, off)
	off = PutMat4(buf, off, mgl32.Ident4())
	require.Equal(t, 80, off)

	assert.Equal(t, float32(3), math.Float32frombits(binary.LittleEndian.Uint32(buf[8:12])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[16:20])))
	assert.Equal(t, float32(0), math.Float32frombits(binary.LittleEndian.Uint32(buf[20:24])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[76:80])))
}

func TestRectOverlapsExcludesTouchingEdges(t *testing.T) {
	r := Rect{XMin: 0, YMin: 0, XMax: 0.5, YMax: 0.5}
	assert.True(t, r.Overlaps(Rect{XMin: 0.25, YMin: 0.25, XMax: 0.5, YMax: 0.5}))
	assert.False(t, r.Overlaps(Rect{XMin: 0.5, YMin: 0, XMax: 0.75, YMax: 0.25}))
	assert.False(t, r.Overlaps(Rect{XMin: 0, YMin: 0.5, XMax: 0.25, YMax: 0.75}))
}

func TestBoundsEncapsulate(t *testing.T) {
	var b Bounds
	assert.True(t, b.IsEmpty())

	b = b.Encapsulate(NewBoundsMinMax(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}))
	b = b.Encapsulate(NewBoundsMinMax(mgl32.Vec3{-1, 2, 0}, mgl32.Vec3{0, 3, 4}))
	b = b.Encapsulate(Bounds{})

	assert.False(t, b.IsEmpty())
	assert.Equal(t, mgl32.Vec3{-1, 0, 0}, b.Min())
	assert.Equal(t, mgl32.Vec3{1, 3, 4}, b.Max())
}

func TestBoundsIntersectsSphere(t *testing.T) {
	b := NewBoundsMinMax(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})
	assert.True(t, b.IntersectsSphere(Sphere{Center: mgl32.Vec3{0, 0, 0}, Radius: 0.1}))
	assert.True(t, b.IntersectsSphere(Sphere{Center: mgl32.Vec3{2, 0, 0}, Radius: 1}))
	assert.False(t, b.IntersectsSphere(Sphere{Center: mgl32.Vec3{3, 0, 0}, Radius: 1}))
	assert.False(t, Bounds{}.IntersectsSphere(Sphere{Radius: 100}))
}

func TestBoundsTransform(t *testing.T) {
	b := NewBoundsMinMax(mgl32.Vec3{-1, -2, -3}, mgl32.Vec3{1, 2, 3})
	moved := b.Transform(mgl32.Translate3D(10, 0, 0).Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(90))))

	assert.InDelta(t, 10, moved.Center.X(), 1e-5)
	assert.InDelta(t, 3, moved.Extents.X(), 1e-5)
	assert.InDelta(t, 2, moved.Extents.Y(), 1e-5)
	assert.InDelta(t, 1, moved.Extents.Z(), 1e-5)
}

func TestFrustumIntersectsSphere(t *testing.T) {
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	f := ExtractFrustumFromMatrix(proj.Mul4(view))

	tests := []struct {
		name   string
		sphere Sphere
		want   bool
	}{
		{"in front", Sphere{Center: mgl32.Vec3{0, 0, -10}, Radius: 1}, true},
		{"behind", Sphere{Center: mgl32.Vec3{0, 0, 10}, Radius: 1}, false},
		{"straddling near plane", Sphere{Center: mgl32.Vec3{0, 0, 0.5}, Radius: 1}, true},
		{"far left", Sphere{Center: mgl32.Vec3{-50, 0, -10}, Radius: 1}, false},
		{"beyond far plane", Sphere{Center: mgl32.Vec3{0, 0, -200}, Radius: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.IntersectsSphere(tt.sphere))
		})
	}
}

func TestLocalToWorldColumns(t *testing.T) {
	m := LocalToWorld(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{0, 0, -2})

	assert.Equal(t, mgl32.Vec4{1, 2, 3, 1}, m.Col(3))
	fwd := m.Col(2)
	assert.InDelta(t, -1, fwd.Z(), 1e-6)
	right := m.Col(0).Vec3()
	up := m.Col(1).Vec3()
	assert.InDelta(t, 0, right.Dot(up), 1e-6)
	assert.InDelta(t, 1, right.Cross(up).Dot(fwd.Vec3()), 1e-6)

	vertical := LocalToWorld(mgl32.Vec3{}, mgl32.Vec3{0, -1, 0})
	assert.InDelta(t, -1, vertical.Col(2).Y(), 1e-6)
	assert.InDelta(t, 1, vertical.Col(0).Len(), 1e-6)
}

func TestCoalesceAndClamp(t *testing.T) {
	assert.Equal(t, 64, Coalesce(0, 64))
	assert.Equal(t, 16, Coalesce(16, 64))
	assert.Equal(t, float32(1), Clamp(float32(2), 0, 1))
	assert.Equal(t, -1, Clamp(-3, -1, 1))
}
