package shadow

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/kkiej/literp/common"
)

// CubemapFace enumerates point light shadow faces in atlas order.
type CubemapFace int

const (
	CubemapFacePositiveX CubemapFace = iota
	CubemapFaceNegativeX
	CubemapFacePositiveY
	CubemapFaceNegativeY
	CubemapFacePositiveZ
	CubemapFaceNegativeZ
)

// CubemapFaceCount is the number of faces, and atlas slots, of a point light shadow.
const CubemapFaceCount = 6

// SplitData describes the casters that affect one shadow slice.
type SplitData struct {
	// CullingSphere bounds the cascade in world space, radius in w.
	CullingSphere             mgl32.Vec4
	CascadeBlendCullingFactor float32
}

// ShadowMatrices is the result of a caster query for one shadow slice.
type ShadowMatrices struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
	Split      SplitData
}

// CasterQuery is the engine's shadow geometry collaborator. It knows the visible lights,
// the camera and the caster geometry of the frame.
type CasterQuery interface {
	// ShadowCasterBounds returns the bounds of every caster visible to a light.
	//
	// Parameters:
	//   - visibleIndex: index of the light in the visible-light list
	//
	// Returns:
	//   - common.Bounds: world-space caster bounds
	//   - bool: false when the light has no casters
	ShadowCasterBounds(visibleIndex int) (common.Bounds, bool)

	// ComputeDirectionalShadowMatrices computes one cascade of a directional light.
	//
	// Parameters:
	//   - visibleIndex: index of the light in the visible-light list
	//   - cascadeIndex: index of the cascade
	//   - cascadeCount: number of cascades
	//   - ratios: cascade split ratios as fractions of the shadow distance
	//   - tileSize: cascade tile resolution in texels
	//   - nearPlaneOffset: how far to pull the projection back toward the light
	//
	// Returns:
	//   - ShadowMatrices: view, projection and split data
	//   - bool: false when the cascade has no usable projection
	ComputeDirectionalShadowMatrices(visibleIndex, cascadeIndex, cascadeCount int, ratios mgl32.Vec3, tileSize int, nearPlaneOffset float32) (ShadowMatrices, bool)

	// ComputeSpotShadowMatrices computes the projection of a spot light.
	//
	// Parameters:
	//   - visibleIndex: index of the light in the visible-light list
	//
	// Returns:
	//   - ShadowMatrices: view, projection and split data
	//   - bool: false when the light has no usable projection
	ComputeSpotShadowMatrices(visibleIndex int) (ShadowMatrices, bool)

	// ComputePointShadowMatrices computes one cube face of a point light.
	//
	// Parameters:
	//   - visibleIndex: index of the light in the visible-light list
	//   - face: the cube face
	//   - fovBias: extra field of view in degrees that widens each face past 90
	//
	// Returns:
	//   - ShadowMatrices: view, projection and split data
	//   - bool: false when the face has no usable projection
	ComputePointShadowMatrices(visibleIndex int, face CubemapFace, fovBias float32) (ShadowMatrices, bool)
}
