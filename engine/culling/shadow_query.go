package culling

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/kkiej/literp/common"
	"github.com/kkiej/literp/engine/light"
	"github.com/kkiej/literp/engine/shadow"
)

// ShadowQuery answers caster bounds and shadow matrix requests for the visible lights
// of one Results.
type ShadowQuery struct {
	results     *Results
	maxDistance float32
}

var _ shadow.CasterQuery = &ShadowQuery{}

type cubeFace struct {
	forward mgl32.Vec3
	up      mgl32.Vec3
}

var cubeFaces = [shadow.CubemapFaceCount]cubeFace{
	shadow.CubemapFacePositiveX: {mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, -1, 0}},
	shadow.CubemapFaceNegativeX: {mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, -1, 0}},
	shadow.CubemapFacePositiveY: {mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}},
	shadow.CubemapFaceNegativeY: {mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 0, -1}},
	shadow.CubemapFacePositiveZ: {mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, -1, 0}},
	shadow.CubemapFaceNegativeZ: {mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, -1, 0}},
}

func (q *ShadowQuery) visible(visibleIndex int) (*light.VisibleLight, bool) {
	if visibleIndex < 0 || visibleIndex >= len(q.results.Visible) {
		return nil, false
	}
	return &q.results.Visible[visibleIndex], true
}

// ShadowCasterBounds returns the union of the casters that can cast into the light:
// every caster for directional lights, those touching the range sphere otherwise.
func (q *ShadowQuery) ShadowCasterBounds(visibleIndex int) (common.Bounds, bool) {
	v, ok := q.visible(visibleIndex)
	if !ok {
		return common.Bounds{}, false
	}
	sphere := common.Sphere{Center: v.Position().Vec3(), Radius: v.Range}

	var union common.Bounds
	for _, b := range q.results.casters {
		if b.IsEmpty() {
			continue
		}
		if v.Type != light.LightTypeDirectional && !b.IntersectsSphere(sphere) {
			continue
		}
		union = union.Encapsulate(b)
	}
	return union, !union.IsEmpty()
}

// ComputeDirectionalShadowMatrices fits an orthographic projection around the minimal
// bounding sphere of one cascade's slice of the camera frustum. The sphere center is
// snapped to whole shadow texels so the cascade does not shimmer as the camera moves.
func (q *ShadowQuery) ComputeDirectionalShadowMatrices(visibleIndex, cascadeIndex, cascadeCount int, ratios mgl32.Vec3, tileSize int, nearPlaneOffset float32) (shadow.ShadowMatrices, bool) {
	v, ok := q.visible(visibleIndex)
	if !ok || v.Type != light.LightTypeDirectional || cascadeIndex < 0 || cascadeIndex >= cascadeCount || tileSize <= 0 {
		return shadow.ShadowMatrices{}, false
	}
	cam := q.results.cam
	if cam.forward.Len() == 0 {
		return shadow.ShadowMatrices{}, false
	}

	n, f := q.sliceBounds(cascadeIndex, cascadeCount, ratios)
	if f <= n {
		return shadow.ShadowMatrices{}, false
	}
	center, radius := sliceSphere(cam, n, f)

	lightForward := v.Forward().Vec3()
	up := common.StableUp(lightForward)
	right := lightForward.Cross(up).Normalize()
	up = right.Cross(lightForward)

	texel := 2 * radius / float32(tileSize)
	dr, du := center.Dot(right), center.Dot(up)
	center = center.Add(right.Mul(snap(dr, texel) - dr)).Add(up.Mul(snap(du, texel) - du))

	eye := center.Sub(lightForward.Mul(radius + nearPlaneOffset))
	return shadow.ShadowMatrices{
		View:       mgl32.LookAtV(eye, center, up),
		Projection: mgl32.Ortho(-radius, radius, -radius, radius, 0, 2*radius+nearPlaneOffset),
		Split:      shadow.SplitData{CullingSphere: center.Vec4(radius)},
	}, true
}

// sliceBounds returns the view distances bounding a cascade.
func (q *ShadowQuery) sliceBounds(cascadeIndex, cascadeCount int, ratios mgl32.Vec3) (n, f float32) {
	d := q.maxDistance
	n = q.results.cam.near
	if cascadeIndex > 0 {
		n = ratios[cascadeIndex-1] * d
	}
	f = d
	if cascadeIndex < cascadeCount-1 {
		f = ratios[cascadeIndex] * d
	}
	return n, f
}

// sliceSphere returns the smallest sphere holding the frustum slice between view
// distances n and f. Its center lies on the view axis where the near and far corners
// are equidistant, clamped to the far plane for wide slices.
func sliceSphere(cam view, n, f float32) (mgl32.Vec3, float32) {
	tanY := float32(math.Tan(float64(cam.fov) / 2))
	tanX := tanY * cam.aspect
	k := tanX*tanX + tanY*tanY

	zc := min((f*f-n*n)*(1+k)/(2*(f-n)), f)
	radius := float32(math.Sqrt(float64((f-zc)*(f-zc) + f*f*k)))
	return cam.position.Add(cam.forward.Mul(zc)), radius
}

func snap(v, step float32) float32 {
	return float32(math.Floor(float64(v/step))) * step
}

// ComputeSpotShadowMatrices returns a perspective projection covering the spot cone
// from the light's position out to its range.
func (q *ShadowQuery) ComputeSpotShadowMatrices(visibleIndex int) (shadow.ShadowMatrices, bool) {
	v, ok := q.visible(visibleIndex)
	if !ok || v.Type != light.LightTypeSpot {
		return shadow.ShadowMatrices{}, false
	}
	near := max(v.Light.ShadowNearPlane(), 0.01)
	if v.Range <= near || v.SpotAngle <= 0 || v.SpotAngle >= 180 {
		return shadow.ShadowMatrices{}, false
	}
	pos, fwd := v.Position().Vec3(), v.Forward().Vec3()
	return shadow.ShadowMatrices{
		View:       mgl32.LookAtV(pos, pos.Add(fwd), common.StableUp(fwd)),
		Projection: mgl32.Perspective(mgl32.DegToRad(v.SpotAngle), 1, near, v.Range),
	}, true
}

// ComputePointShadowMatrices returns the view and widened 90 degree projection of one
// cube face of a point light.
func (q *ShadowQuery) ComputePointShadowMatrices(visibleIndex int, face shadow.CubemapFace, fovBias float32) (shadow.ShadowMatrices, bool) {
	v, ok := q.visible(visibleIndex)
	if !ok || v.Type != light.LightTypePoint || face < 0 || face >= shadow.CubemapFaceCount {
		return shadow.ShadowMatrices{}, false
	}
	near := max(v.Light.ShadowNearPlane(), 0.01)
	if v.Range <= near {
		return shadow.ShadowMatrices{}, false
	}
	pos := v.Position().Vec3()
	cf := cubeFaces[face]
	return shadow.ShadowMatrices{
		View:       mgl32.LookAtV(pos, pos.Add(cf.forward), cf.up),
		Projection: mgl32.Perspective(mgl32.DegToRad(90+fovBias), 1, near, v.Range),
	}, true
}
