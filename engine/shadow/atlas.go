package shadow

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/kkiej/literp/common"
)

// Split returns how many tiles a square atlas is divided into per side for the given
// tile count: 1 for a single tile, 2 for up to four, 4 otherwise.
//
// Parameters:
//   - tiles: number of tiles required
//
// Returns:
//   - int: tiles per atlas side
func Split(tiles int) int {
	switch {
	case tiles <= 1:
		return 1
	case tiles <= 4:
		return 2
	default:
		return 4
	}
}

// TileSize returns the width of one tile in texels.
func TileSize(atlasSize, split int) int {
	return atlasSize / split
}

// TileOffset returns the tile's column and row in the atlas grid.
//
// Parameters:
//   - index: linear tile index
//   - split: tiles per atlas side
//
// Returns:
//   - mgl32.Vec2: (column, row)
func TileOffset(index, split int) mgl32.Vec2 {
	return mgl32.Vec2{float32(index % split), float32(index / split)}
}

// TileViewport returns the pixel viewport of a tile.
//
// Parameters:
//   - index: linear tile index
//   - split: tiles per atlas side
//   - tileSize: tile width in texels
//
// Returns:
//   - common.Viewport: the tile's rectangle in the atlas
//   - mgl32.Vec2: the tile offset in tile units
func TileViewport(index, split int, tileSize float32) (common.Viewport, mgl32.Vec2) {
	offset := TileOffset(index, split)
	return common.Viewport{
		X:      offset.X() * tileSize,
		Y:      offset.Y() * tileSize,
		Width:  tileSize,
		Height: tileSize,
	}, offset
}

// ConvertToAtlasMatrix maps a light's clip space into its tile of the atlas texture.
// X and Y go from [-1, 1] to the tile's [offset, offset+1] * scale range and Z goes
// from [-1, 1] to [0, 1]. With reversed Z the depth row is negated first.
//
// Parameters:
//   - m: the light's projection * view matrix
//   - offset: the tile offset in tile units
//   - scale: 1 / split
//   - reversedZ: whether depth is reversed
//
// Returns:
//   - mgl32.Mat4: world-to-atlas matrix
func ConvertToAtlasMatrix(m mgl32.Mat4, offset mgl32.Vec2, scale float32, reversedZ bool) mgl32.Mat4 {
	if reversedZ {
		for col := range 4 {
			m.Set(2, col, -m.At(2, col))
		}
	}
	for col := range 4 {
		w := m.At(3, col)
		m.Set(0, col, (0.5*(m.At(0, col)+w)+offset.X()*w)*scale)
		m.Set(1, col, (0.5*(m.At(1, col)+w)+offset.Y()*w)*scale)
		m.Set(2, col, 0.5*(m.At(2, col)+w))
	}
	return m
}
