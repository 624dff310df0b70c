package culling

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/kkiej/literp/common"
	"github.com/kkiej/literp/engine/camera"
	"github.com/kkiej/literp/engine/light"
)

// view is the camera state captured at cull time.
type view struct {
	position mgl32.Vec3
	forward  mgl32.Vec3
	fov      float32
	aspect   float32
	near     float32
	far      float32
	viewProj mgl32.Mat4
}

// Results holds one camera's culling output: the visible lights in scene order and
// the shadow casters the shadow query answers from.
type Results struct {
	Visible []light.VisibleLight

	cam     view
	casters []common.Bounds
}

// Cull keeps the enabled lights that can affect the camera's view. Directional lights
// always survive and cover the full screen; point and spot lights survive when their
// range sphere touches the frustum and get a conservative screen rectangle.
//
// Parameters:
//   - cam: the camera being rendered
//   - lights: every scene light, in scene order
//   - casters: world-space bounds of every shadow-casting renderer
//
// Returns:
//   - *Results: the visible lights and caster data for the frame
func Cull(cam camera.Camera, lights []light.Light, casters []common.Bounds) *Results {
	r := &Results{
		Visible: make([]light.VisibleLight, 0, len(lights)),
		cam: view{
			position: cam.Position(),
			forward:  cam.Forward(),
			fov:      cam.Fov(),
			aspect:   cam.Aspect(),
			near:     cam.Near(),
			far:      cam.Far(),
			viewProj: cam.ViewProjectionMatrix(),
		},
		casters: casters,
	}
	frustum := common.ExtractFrustumFromMatrix(r.cam.viewProj)

	for _, l := range lights {
		if l == nil || !l.Enabled() {
			continue
		}
		v := light.NewVisibleLight(l)
		if l.Type() != light.LightTypeDirectional {
			sphere := common.Sphere{Center: l.Position(), Radius: l.Range()}
			if !frustum.IntersectsSphere(sphere) {
				continue
			}
			v.ScreenRect = ScreenRect(r.cam.viewProj, sphere)
		}
		r.Visible = append(r.Visible, v)
	}
	return r
}

// ScreenRect returns the screen UV rectangle covering a sphere's bounding box. Spheres
// with any corner at or behind the camera plane cover the full screen.
//
// Parameters:
//   - viewProj: the camera view-projection matrix
//   - s: the world-space sphere
//
// Returns:
//   - common.Rect: the rectangle, clamped to [0,1]
func ScreenRect(viewProj mgl32.Mat4, s common.Sphere) common.Rect {
	rect := common.Rect{XMin: 1, YMin: 1, XMax: 0, YMax: 0}
	for i := 0; i < 8; i++ {
		corner := s.Center
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) != 0 {
				corner[axis] += s.Radius
			} else {
				corner[axis] -= s.Radius
			}
		}
		clip := viewProj.Mul4x1(corner.Vec4(1))
		if clip.W() <= 1e-6 {
			return common.FullScreenRect
		}
		u := clip.X()/clip.W()*0.5 + 0.5
		v := clip.Y()/clip.W()*0.5 + 0.5
		rect.XMin = min(rect.XMin, u)
		rect.YMin = min(rect.YMin, v)
		rect.XMax = max(rect.XMax, u)
		rect.YMax = max(rect.YMax, v)
	}
	return common.Rect{
		XMin: common.Clamp(rect.XMin, 0, 1),
		YMin: common.Clamp(rect.YMin, 0, 1),
		XMax: common.Clamp(rect.XMax, 0, 1),
		YMax: common.Clamp(rect.YMax, 0, 1),
	}
}

// IndexMap returns a fresh per-object light index map with one slot per visible light.
func (r *Results) IndexMap() []int {
	return make([]int, len(r.Visible))
}

// ShadowQuery returns the caster query for the frame.
//
// Parameters:
//   - maxDistance: the shadow distance, capped by the camera far plane
//
// Returns:
//   - *ShadowQuery: the query
func (r *Results) ShadowQuery(maxDistance float32) *ShadowQuery {
	return &ShadowQuery{results: r, maxDistance: min(maxDistance, r.cam.far)}
}
