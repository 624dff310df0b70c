package light

import (
	_ "embed"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/kkiej/literp/common"
)

// DirectionalLightDataStride is the byte stride of one DirectionalLightData element.
const DirectionalLightDataStride = 48

// OtherLightDataStride is the byte stride of one OtherLightData element.
const OtherLightDataStride = 80

// GPUDirectionalLightDataSource is the canonical WGSL definition of the
// DirectionalLightData struct. Matches DirectionalLightData layout exactly (48 bytes).
//
//go:embed assets/directional_light_data.wgsl
var GPUDirectionalLightDataSource string

// DirectionalLightData is the GPU-aligned representation of a directional light.
// Matches the WGSL DirectionalLightData struct layout exactly (see GPUDirectionalLightDataSource).
// Size: 48 bytes.
//
// Layout:
//
//	vec4<f32> color              (16 bytes, offset  0)
//	vec4<f32> direction_and_mask (16 bytes, offset 16) xyz toward the light, w = layer mask bits
//	vec4<f32> shadow_data        (16 bytes, offset 32) strength, tile index, normal bias, mask channel
type DirectionalLightData struct {
	Color            mgl32.Vec4
	DirectionAndMask mgl32.Vec4
	ShadowData       mgl32.Vec4
}

// NewDirectionalLightData packs a visible directional light.
//
// Parameters:
//   - v: the visible light
//   - shadowData: the shadow reservation result for the light
//
// Returns:
//   - DirectionalLightData: the packed record
func NewDirectionalLightData(v VisibleLight, shadowData mgl32.Vec4) DirectionalLightData {
	dir := v.Forward().Mul(-1)
	dir[3] = common.ReinterpretUintAsFloat(v.Light.RenderingLayerMask())
	return DirectionalLightData{
		Color:            v.FinalColor,
		DirectionAndMask: dir,
		ShadowData:       shadowData,
	}
}

// Size returns the size of the DirectionalLightData struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (d *DirectionalLightData) Size() int {
	return int(unsafe.Sizeof(*d))
}

// Marshal serializes the DirectionalLightData struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload
func (d *DirectionalLightData) Marshal() []byte {
	buf := make([]byte, DirectionalLightDataStride)
	d.put(buf)
	return buf
}

func (d *DirectionalLightData) put(buf []byte) {
	off := common.PutVec4(buf, 0, d.Color)
	off = common.PutVec4(buf, off, d.DirectionAndMask)
	common.PutVec4(buf, off, d.ShadowData)
}

// GPUOtherLightDataSource is the canonical WGSL definition of the OtherLightData struct.
// Matches OtherLightData layout exactly (80 bytes).
//
//go:embed assets/other_light_data.wgsl
var GPUOtherLightDataSource string

// OtherLightData is the GPU-aligned representation of a point or spot light.
// Matches the WGSL OtherLightData struct layout exactly (see GPUOtherLightDataSource).
// Size: 80 bytes.
//
// Layout:
//
//	vec4<f32> color              (16 bytes, offset  0)
//	vec4<f32> position           (16 bytes, offset 16) w = 1 / range^2
//	vec4<f32> direction_and_mask (16 bytes, offset 32) zero xyz for point lights
//	vec4<f32> spot_angle         (16 bytes, offset 48) angle attenuation scale and offset
//	vec4<f32> shadow_data        (16 bytes, offset 64)
type OtherLightData struct {
	Color            mgl32.Vec4
	Position         mgl32.Vec4
	DirectionAndMask mgl32.Vec4
	SpotAngle        mgl32.Vec4
	ShadowData       mgl32.Vec4
}

// NewPointLightData packs a visible point light.
//
// Parameters:
//   - v: the visible light
//   - shadowData: the shadow reservation result for the light
//
// Returns:
//   - OtherLightData: the packed record
func NewPointLightData(v VisibleLight, shadowData mgl32.Vec4) OtherLightData {
	return OtherLightData{
		Color:            v.FinalColor,
		Position:         rangePosition(v),
		DirectionAndMask: mgl32.Vec4{0, 0, 0, common.ReinterpretUintAsFloat(v.Light.RenderingLayerMask())},
		SpotAngle:        mgl32.Vec4{0, 1, 0, 0},
		ShadowData:       shadowData,
	}
}

// NewSpotLightData packs a visible spot light. The spot angle terms let shaders compute
// saturate(dot(spotDir, lightDir) * x + y) for the cone falloff.
//
// Parameters:
//   - v: the visible light
//   - shadowData: the shadow reservation result for the light
//
// Returns:
//   - OtherLightData: the packed record
func NewSpotLightData(v VisibleLight, shadowData mgl32.Vec4) OtherLightData {
	dir := v.Forward().Mul(-1)
	dir[3] = common.ReinterpretUintAsFloat(v.Light.RenderingLayerMask())

	innerCos := float32(math.Cos(float64(mgl32.DegToRad(0.5 * v.Light.InnerSpotAngle()))))
	outerCos := float32(math.Cos(float64(mgl32.DegToRad(0.5 * v.SpotAngle))))
	angleRangeInv := 1 / max(innerCos-outerCos, 0.001)

	return OtherLightData{
		Color:            v.FinalColor,
		Position:         rangePosition(v),
		DirectionAndMask: dir,
		SpotAngle:        mgl32.Vec4{angleRangeInv, -outerCos * angleRangeInv, 0, 0},
		ShadowData:       shadowData,
	}
}

func rangePosition(v VisibleLight) mgl32.Vec4 {
	p := v.Position()
	p[3] = 1 / max(v.Range*v.Range, 0.00001)
	return p
}

// Size returns the size of the OtherLightData struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (80)
func (o *OtherLightData) Size() int {
	return int(unsafe.Sizeof(*o))
}

// Marshal serializes the OtherLightData struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 80-byte buffer ready for GPU upload
func (o *OtherLightData) Marshal() []byte {
	buf := make([]byte, OtherLightDataStride)
	o.put(buf)
	return buf
}

func (o *OtherLightData) put(buf []byte) {
	off := common.PutVec4(buf, 0, o.Color)
	off = common.PutVec4(buf, off, o.Position)
	off = common.PutVec4(buf, off, o.DirectionAndMask)
	off = common.PutVec4(buf, off, o.SpotAngle)
	common.PutVec4(buf, off, o.ShadowData)
}

// MarshalDirectionalLights serializes records back to back with the 48-byte stride.
//
// Parameters:
//   - records: the packed lights
//
// Returns:
//   - []byte: len(records) * 48 bytes
func MarshalDirectionalLights(records []DirectionalLightData) []byte {
	buf := make([]byte, len(records)*DirectionalLightDataStride)
	for i := range records {
		records[i].put(buf[i*DirectionalLightDataStride:])
	}
	return buf
}

// MarshalOtherLights serializes records back to back with the 80-byte stride.
//
// Parameters:
//   - records: the packed lights
//
// Returns:
//   - []byte: len(records) * 80 bytes
func MarshalOtherLights(records []OtherLightData) []byte {
	buf := make([]byte, len(records)*OtherLightDataStride)
	for i := range records {
		records[i].put(buf[i*OtherLightDataStride:])
	}
	return buf
}

// LegacyDirectionalArrays splits directional records into the vec4 arrays read by the
// per-object lighting path. Direction w components are cleared.
//
// Parameters:
//   - records: the packed lights
//
// Returns:
//   - map[string][]byte: array name to packed vec4 data
func LegacyDirectionalArrays(records []DirectionalLightData) map[string][]byte {
	colors := make([]mgl32.Vec4, len(records))
	dirs := make([]mgl32.Vec4, len(records))
	shadows := make([]mgl32.Vec4, len(records))
	for i, r := range records {
		colors[i] = r.Color
		dirs[i] = r.DirectionAndMask
		dirs[i][3] = 0
		shadows[i] = r.ShadowData
	}
	return map[string][]byte{
		"_DirectionalLightColors":     marshalVec4s(colors),
		"_DirectionalLightDirections": marshalVec4s(dirs),
		"_DirectionalLightShadowData": marshalVec4s(shadows),
	}
}

// LegacyOtherArrays splits point and spot records into the vec4 arrays read by the
// per-object lighting path. Direction w components are cleared.
//
// Parameters:
//   - records: the packed lights
//
// Returns:
//   - map[string][]byte: array name to packed vec4 data
func LegacyOtherArrays(records []OtherLightData) map[string][]byte {
	colors := make([]mgl32.Vec4, len(records))
	positions := make([]mgl32.Vec4, len(records))
	dirs := make([]mgl32.Vec4, len(records))
	angles := make([]mgl32.Vec4, len(records))
	shadows := make([]mgl32.Vec4, len(records))
	for i, r := range records {
		colors[i] = r.Color
		positions[i] = r.Position
		dirs[i] = r.DirectionAndMask
		dirs[i][3] = 0
		angles[i] = r.SpotAngle
		shadows[i] = r.ShadowData
	}
	return map[string][]byte{
		"_OtherLightColors":     marshalVec4s(colors),
		"_OtherLightPositions":  marshalVec4s(positions),
		"_OtherLightDirections": marshalVec4s(dirs),
		"_OtherLightSpotAngles": marshalVec4s(angles),
		"_OtherLightShadowData": marshalVec4s(shadows),
	}
}

func marshalVec4s(vs []mgl32.Vec4) []byte {
	buf := make([]byte, len(vs)*16)
	for i, v := range vs {
		common.PutVec4(buf, i*16, v)
	}
	return buf
}
