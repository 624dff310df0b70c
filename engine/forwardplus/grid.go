package forwardplus

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Grid is the tile layout of one render attachment.
type Grid struct {
	// ScreenUVToTileCoordinates scales a screen UV into fractional tile coordinates.
	ScreenUVToTileCoordinates mgl32.Vec2

	TileCountX int
	TileCountY int
}

// NewGrid computes the tile grid covering a width x height attachment. Partial tiles
// at the right and top edges count as whole tiles.
//
// Parameters:
//   - width: attachment width in pixels
//   - height: attachment height in pixels
//   - settings: the Forward+ settings
//
// Returns:
//   - Grid: the grid, empty when either dimension is not positive
func NewGrid(width, height int, settings Settings) Grid {
	if width <= 0 || height <= 0 {
		return Grid{}
	}
	tileSize := float32(settings.Resolved().TileSize)
	uvToTile := mgl32.Vec2{float32(width) / tileSize, float32(height) / tileSize}
	return Grid{
		ScreenUVToTileCoordinates: uvToTile,
		TileCountX:                int(math.Ceil(float64(uvToTile.X()))),
		TileCountY:                int(math.Ceil(float64(uvToTile.Y()))),
	}
}

// TileCount returns the total number of tiles.
func (g Grid) TileCount() int {
	return g.TileCountX * g.TileCountY
}

// TileScreenUVSize returns the size of one tile in screen UV units.
func (g Grid) TileScreenUVSize() mgl32.Vec2 {
	if g.TileCount() == 0 {
		return mgl32.Vec2{}
	}
	return mgl32.Vec2{1 / g.ScreenUVToTileCoordinates.X(), 1 / g.ScreenUVToTileCoordinates.Y()}
}

// TileDataSize returns the per-tile stride of the tile buffer: a count header followed
// by at most min(maxLightsPerTile, lightCount) indices.
//
// Parameters:
//   - maxLightsPerTile: the per-tile cap
//   - lightCount: number of candidate lights
//
// Returns:
//   - int: the per-tile stride in int32 elements
func TileDataSize(maxLightsPerTile, lightCount int) int {
	return min(maxLightsPerTile, lightCount) + 1
}
