package forwardplus

import (
	_ "embed"
	"encoding/binary"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/kkiej/literp/common"
)

// TilesShaderSource is the WGSL helper that reads the tile buffer.
//
//go:embed assets/forward_plus_tiles.wgsl
var TilesShaderSource string

// TileSettings packs the grid into the _ForwardPlusTileSettings vector. The integer
// fields are stored as their bit patterns so the shader can bitcast them back.
//
// Parameters:
//   - grid: the tile grid
//   - tileDataSize: the per-tile stride
//
// Returns:
//   - mgl32.Vec4: (uvToTile.x, uvToTile.y, tilesPerRow bits, tileDataSize bits)
func TileSettings(grid Grid, tileDataSize int) mgl32.Vec4 {
	return mgl32.Vec4{
		grid.ScreenUVToTileCoordinates.X(),
		grid.ScreenUVToTileCoordinates.Y(),
		common.ReinterpretAsFloat(int32(grid.TileCountX)),
		common.ReinterpretAsFloat(int32(tileDataSize)),
	}
}

// MarshalTileData serializes tile data as little-endian int32 values.
//
// Parameters:
//   - data: the tile data
//
// Returns:
//   - []byte: 4*len(data) bytes
func MarshalTileData(data []int32) []byte {
	buf := make([]byte, 4*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
	}
	return buf
}
