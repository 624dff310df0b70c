package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Rect is an axis-aligned rectangle in normalized screen UV space, [0,1] on both axes.
type Rect struct {
	XMin, YMin float32
	XMax, YMax float32
}

// FullScreenRect covers the whole attachment.
var FullScreenRect = Rect{XMin: 0, YMin: 0, XMax: 1, YMax: 1}

// Overlaps reports whether r and o share any area. Edges that merely touch do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.XMin < o.XMax && o.XMin < r.XMax && r.YMin < o.YMax && o.YMin < r.YMax
}

// Vec4 packs the rectangle as (xMin, yMin, xMax, yMax).
func (r Rect) Vec4() mgl32.Vec4 {
	return mgl32.Vec4{r.XMin, r.YMin, r.XMax, r.YMax}
}

// Viewport is a pixel rectangle inside a render target.
type Viewport struct {
	X, Y          float32
	Width, Height float32
}

// Sphere is a bounding sphere. Radius is stored in the W component when packed.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// Vec4 packs the sphere as (center, radius).
func (s Sphere) Vec4() mgl32.Vec4 {
	return s.Center.Vec4(s.Radius)
}

// Bounds is an axis-aligned bounding box stored as center and half extents.
// The zero value is empty.
type Bounds struct {
	Center  mgl32.Vec3
	Extents mgl32.Vec3
	valid   bool
}

// NewBoundsMinMax creates a Bounds spanning min to max.
//
// Parameters:
//   - min: the minimum corner
//   - max: the maximum corner
//
// Returns:
//   - Bounds: the box covering both corners
func NewBoundsMinMax(min, max mgl32.Vec3) Bounds {
	return Bounds{
		Center:  min.Add(max).Mul(0.5),
		Extents: max.Sub(min).Mul(0.5),
		valid:   true,
	}
}

// IsEmpty reports whether the box has never been given any volume.
func (b Bounds) IsEmpty() bool {
	return !b.valid
}

func (b Bounds) Min() mgl32.Vec3 {
	return b.Center.Sub(b.Extents)
}

func (b Bounds) Max() mgl32.Vec3 {
	return b.Center.Add(b.Extents)
}

// Encapsulate grows the box to also cover o. Empty boxes are ignored.
//
// Parameters:
//   - o: the box to include
//
// Returns:
//   - Bounds: the union of both boxes
func (b Bounds) Encapsulate(o Bounds) Bounds {
	if o.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return o
	}
	bMin, bMax := b.Min(), b.Max()
	oMin, oMax := o.Min(), o.Max()
	min := mgl32.Vec3{minF32(bMin[0], oMin[0]), minF32(bMin[1], oMin[1]), minF32(bMin[2], oMin[2])}
	max := mgl32.Vec3{maxF32(bMax[0], oMax[0]), maxF32(bMax[1], oMax[1]), maxF32(bMax[2], oMax[2])}
	return NewBoundsMinMax(min, max)
}

// IntersectsSphere reports whether the box and the sphere overlap.
func (b Bounds) IntersectsSphere(s Sphere) bool {
	if b.IsEmpty() {
		return false
	}
	min, max := b.Min(), b.Max()
	var d2 float32
	for i := range 3 {
		c := s.Center[i]
		if c < min[i] {
			d := min[i] - c
			d2 += d * d
		} else if c > max[i] {
			d := c - max[i]
			d2 += d * d
		}
	}
	return d2 <= s.Radius*s.Radius
}

// Transform returns the axis-aligned box covering b after it is moved by m.
//
// Parameters:
//   - m: an affine transform
//
// Returns:
//   - Bounds: the transformed box
func (b Bounds) Transform(m mgl32.Mat4) Bounds {
	if b.IsEmpty() {
		return b
	}
	center := m.Mul4x1(b.Center.Vec4(1)).Vec3()
	var extents mgl32.Vec3
	for row := range 3 {
		for col := range 3 {
			extents[row] += float32(math.Abs(float64(m.At(row, col)))) * b.Extents[col]
		}
	}
	return Bounds{Center: center, Extents: extents, valid: true}
}

func minF32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxF32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
