package shadow

import (
	_ "embed"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/kkiej/literp/common"
)

// DirectionalShadowCascadeStride is the byte stride of one DirectionalShadowCascade.
const DirectionalShadowCascadeStride = 32

// OtherShadowDataStride is the byte stride of one OtherShadowData.
const OtherShadowDataStride = 80

// MatrixStride is the byte stride of one world-to-atlas matrix.
const MatrixStride = 64

// GPUDirectionalShadowCascadeSource is the canonical WGSL definition of the
// DirectionalShadowCascade struct. Matches DirectionalShadowCascade exactly (32 bytes).
//
//go:embed assets/directional_shadow_cascade.wgsl
var GPUDirectionalShadowCascadeSource string

// DirectionalShadowCascade is the GPU-aligned description of one cascade, shared by
// every directional light.
// Size: 32 bytes.
//
// Layout:
//
//	vec4<f32> culling_sphere (16 bytes, offset  0) xyz center, w = squared shrunk radius
//	vec4<f32> data           (16 bytes, offset 16) x = 1 / w, y = filter size * sqrt(2)
type DirectionalShadowCascade struct {
	CullingSphere mgl32.Vec4
	Data          mgl32.Vec4
}

// NewDirectionalShadowCascade derives a cascade record from its culling sphere. The
// sphere is shrunk by the filter radius so samples near its edge never leave the tile.
//
// Parameters:
//   - cullingSphere: center and radius of the cascade
//   - tileSize: cascade tile width in texels
//   - filterSize: PCF kernel width in texels
//
// Returns:
//   - DirectionalShadowCascade: the packed cascade
func NewDirectionalShadowCascade(cullingSphere mgl32.Vec4, tileSize, filterSize float32) DirectionalShadowCascade {
	texelSize := 2 * cullingSphere.W() / tileSize
	filterSize *= texelSize
	cullingSphere[3] -= filterSize
	cullingSphere[3] *= cullingSphere[3]
	return DirectionalShadowCascade{
		CullingSphere: cullingSphere,
		Data:          mgl32.Vec4{1 / cullingSphere.W(), filterSize * common.Sqrt2, 0, 0},
	}
}

// Size returns the size of the DirectionalShadowCascade struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (c *DirectionalShadowCascade) Size() int {
	return int(unsafe.Sizeof(*c))
}

// Marshal serializes the cascade into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload
func (c *DirectionalShadowCascade) Marshal() []byte {
	buf := make([]byte, DirectionalShadowCascadeStride)
	off := common.PutVec4(buf, 0, c.CullingSphere)
	common.PutVec4(buf, off, c.Data)
	return buf
}

// GPUOtherShadowDataSource is the canonical WGSL definition of the OtherShadowData
// struct. Matches OtherShadowData exactly (80 bytes).
//
//go:embed assets/other_shadow_data.wgsl
var GPUOtherShadowDataSource string

// OtherShadowData is the GPU-aligned shadow description of one spot light or one point
// light face.
// Size: 80 bytes.
//
// Layout:
//
//	vec4<f32>     tile_data     (16 bytes, offset  0) tile min xy, tile size, normal bias
//	mat4x4<f32>   shadow_matrix (64 bytes, offset 16) world to atlas
type OtherShadowData struct {
	TileData     mgl32.Vec4
	ShadowMatrix mgl32.Mat4
}

// NewOtherShadowData packs a tile's bounds and bias. The tile is inset by border on
// every side so filtering never samples a neighbour.
//
// Parameters:
//   - offset: the tile offset in tile units
//   - scale: 1 / split
//   - bias: world-space normal bias
//   - border: inset in atlas UV units
//   - matrix: the world-to-atlas matrix
//
// Returns:
//   - OtherShadowData: the packed record
func NewOtherShadowData(offset mgl32.Vec2, scale, bias, border float32, matrix mgl32.Mat4) OtherShadowData {
	return OtherShadowData{
		TileData: mgl32.Vec4{
			offset.X()*scale + border,
			offset.Y()*scale + border,
			scale - border - border,
			bias,
		},
		ShadowMatrix: matrix,
	}
}

// Size returns the size of the OtherShadowData struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (80)
func (o *OtherShadowData) Size() int {
	return int(unsafe.Sizeof(*o))
}

// Marshal serializes the record into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 80-byte buffer ready for GPU upload
func (o *OtherShadowData) Marshal() []byte {
	buf := make([]byte, OtherShadowDataStride)
	off := common.PutVec4(buf, 0, o.TileData)
	common.PutMat4(buf, off, o.ShadowMatrix)
	return buf
}

func marshalCascades(cascades []DirectionalShadowCascade) []byte {
	buf := make([]byte, len(cascades)*DirectionalShadowCascadeStride)
	for i := range cascades {
		off := common.PutVec4(buf, i*DirectionalShadowCascadeStride, cascades[i].CullingSphere)
		common.PutVec4(buf, off, cascades[i].Data)
	}
	return buf
}

func marshalMatrices(matrices []mgl32.Mat4) []byte {
	buf := make([]byte, len(matrices)*MatrixStride)
	for i := range matrices {
		common.PutMat4(buf, i*MatrixStride, matrices[i])
	}
	return buf
}

func marshalOtherShadowData(data []OtherShadowData) []byte {
	buf := make([]byte, len(data)*OtherShadowDataStride)
	for i := range data {
		off := common.PutVec4(buf, i*OtherShadowDataStride, data[i].TileData)
		common.PutMat4(buf, off, data[i].ShadowMatrix)
	}
	return buf
}
