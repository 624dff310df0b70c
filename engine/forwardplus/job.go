package forwardplus

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/kkiej/literp/common"
)

// Job builds the light lists of a range of tiles. Tiles write disjoint slices of
// TileData, so any partition of tiles can run in parallel.
type Job struct {
	// LightBounds holds one screen UV rectangle per other light.
	LightBounds []common.Rect

	// TileData receives, per tile, a count followed by that many light indices.
	TileData []int32

	OtherLightCount  int
	TileScreenUVSize mgl32.Vec2
	MaxLightsPerTile int
	TilesPerRow      int
	TileDataSize     int
}

// Execute fills one tile. Lights are tested in index order and the list stops at
// MaxLightsPerTile, so the lowest indices win on overflow.
//
// Parameters:
//   - tileIndex: linear tile index, row-major from the bottom-left tile
func (j *Job) Execute(tileIndex int) {
	y := tileIndex / j.TilesPerRow
	x := tileIndex - y*j.TilesPerRow
	bounds := common.Rect{
		XMin: float32(x) * j.TileScreenUVSize.X(),
		YMin: float32(y) * j.TileScreenUVSize.Y(),
		XMax: float32(x+1) * j.TileScreenUVSize.X(),
		YMax: float32(y+1) * j.TileScreenUVSize.Y(),
	}

	header := tileIndex * j.TileDataSize
	limit := min(j.MaxLightsPerTile, j.TileDataSize-1)
	count := 0
	for i := 0; i < j.OtherLightCount && count < limit; i++ {
		if j.LightBounds[i].Overlaps(bounds) {
			count++
			j.TileData[header+count] = int32(i)
		}
	}
	j.TileData[header] = int32(count)
}

// ExecuteRange fills tiles [start, end).
func (j *Job) ExecuteRange(start, end int) {
	for i := start; i < end; i++ {
		j.Execute(i)
	}
}

// Run fills every tile on the calling goroutine.
//
// Parameters:
//   - tileCount: number of tiles in the grid
func (j *Job) Run(tileCount int) {
	j.ExecuteRange(0, tileCount)
}
