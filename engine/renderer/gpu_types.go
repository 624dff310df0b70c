package renderer

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/kkiej/literp/common"
)

// GPULightingGlobalsSource is the canonical WGSL definition of the LightingGlobals struct.
// Matches GPULightingGlobals layout exactly (80 bytes, uniform aligned).
//
//go:embed assets/lighting_globals.wgsl
var GPULightingGlobalsSource string

// GPULightingGlobals gathers the scalar and vector globals of the lighting pass into a
// single uniform block, since WebGPU has no loose global shader state.
// Size: 80 bytes.
//
// Layout:
//
//	i32       directional_light_count    ( 4 bytes, offset  0)
//	i32       other_light_count          ( 4 bytes, offset  4)
//	i32       cascade_count              ( 4 bytes, offset  8)
//	u32       keywords                   ( 4 bytes, offset 12)
//	vec4<f32> shadow_atlas_size          (16 bytes, offset 16)
//	vec4<f32> shadow_distance_fade       (16 bytes, offset 32)
//	vec4<f32> forward_plus_tile_settings (16 bytes, offset 48)
//	f32       shadow_pancaking           ( 4 bytes, offset 64)
//	f32 x3    _pad                       (12 bytes, offset 68)
type GPULightingGlobals struct {
	DirectionalLightCount   int32
	OtherLightCount         int32
	CascadeCount            int32
	Keywords                uint32
	ShadowAtlasSize         mgl32.Vec4
	ShadowDistanceFade      mgl32.Vec4
	ForwardPlusTileSettings mgl32.Vec4
	ShadowPancaking         float32
	_pad                    [3]float32
}

// Size returns the size of the GPULightingGlobals struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (80)
func (g *GPULightingGlobals) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes GPULightingGlobals into an 80-byte little-endian buffer suitable
// for GPU upload.
//
// Returns:
//   - []byte: 80-byte buffer ready for GPU upload
func (g *GPULightingGlobals) Marshal() []byte {
	buf := make([]byte, 80)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(g.DirectionalLightCount))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(g.OtherLightCount))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(g.CascadeCount))
	binary.LittleEndian.PutUint32(buf[12:16], g.Keywords)
	off := common.PutVec4(buf, 16, g.ShadowAtlasSize)
	off = common.PutVec4(buf, off, g.ShadowDistanceFade)
	off = common.PutVec4(buf, off, g.ForwardPlusTileSettings)
	binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(g.ShadowPancaking))
	return buf
}

// setInt stores a named global into the matching field.
func (g *GPULightingGlobals) setInt(name string, v int32) bool {
	switch name {
	case PropDirectionalLightCount:
		g.DirectionalLightCount = v
	case PropOtherLightCount:
		g.OtherLightCount = v
	case PropCascadeCount:
		g.CascadeCount = v
	default:
		return false
	}
	return true
}

func (g *GPULightingGlobals) setVector(name string, v mgl32.Vec4) bool {
	switch name {
	case PropShadowAtlasSize:
		g.ShadowAtlasSize = v
	case PropShadowDistanceFade:
		g.ShadowDistanceFade = v
	case PropForwardPlusSettings:
		g.ForwardPlusTileSettings = v
	default:
		return false
	}
	return true
}

func (g *GPULightingGlobals) setKeyword(name string, enabled bool) bool {
	bit, ok := KeywordBit(name)
	if !ok {
		return false
	}
	if enabled {
		g.Keywords |= bit
	} else {
		g.Keywords &^= bit
	}
	return true
}
