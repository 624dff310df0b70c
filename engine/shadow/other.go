package shadow

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/kkiej/literp/common"
	"github.com/kkiej/literp/engine/renderer"
)

// OtherShadowComputer turns the frame's shadowed spot and point lights into per-slot
// shadow records and shadow draws. Its arrays are reused across frames.
type OtherShadowComputer struct {
	data      [MaxShadowedOtherLightCount]OtherShadowData
	dataCount int
	draws     []renderer.ShadowDraw
	split     int
	tileSize  int
}

// Compute walks the allocator's slots, one per spot light and six per point light.
// A slice the query cannot project is left zeroed and gets no draw.
//
// Parameters:
//   - a: the frame's allocator
//   - conv: the platform convention
func (o *OtherShadowComputer) Compute(a *Allocator, conv GraphicsConvention) {
	settings := a.Settings()
	query := a.Query()
	slots := a.OtherSlotCount()
	atlasSize := int(settings.Other.AtlasSize)

	o.dataCount = slots
	o.draws = o.draws[:0]
	o.data = [MaxShadowedOtherLightCount]OtherShadowData{}
	o.split = Split(slots)
	o.tileSize = TileSize(atlasSize, o.split)
	if slots == 0 || query == nil {
		return
	}

	tileScale := 1 / float32(o.split)
	border := 0.5 / float32(atlasSize)
	tileSize := float32(o.tileSize)
	filterSize := settings.OtherFilterSize()

	for i := 0; i < slots; {
		l := a.OtherAt(i)
		if l.IsPoint {
			o.computePoint(query, l, i, tileSize, tileScale, border, filterSize, conv)
			i += CubemapFaceCount
		} else {
			o.computeSpot(query, l, i, tileSize, tileScale, border, filterSize, conv)
			i++
		}
	}
}

func (o *OtherShadowComputer) computeSpot(query CasterQuery, l ShadowedOtherLight, slot int, tileSize, tileScale, border, filterSize float32, conv GraphicsConvention) {
	m, ok := query.ComputeSpotShadowMatrices(l.VisibleLightIndex)
	if !ok {
		return
	}
	texelSize := 2 / (tileSize * m.Projection.At(0, 0))
	filterSize *= texelSize
	bias := l.NormalBias * filterSize * common.Sqrt2

	viewport, offset := TileViewport(slot, o.split, tileSize)
	matrix := ConvertToAtlasMatrix(m.Projection.Mul4(m.View), offset, tileScale, conv.UsesReversedZ)
	o.data[slot] = NewOtherShadowData(offset, tileScale, bias, border, matrix)
	o.draws = append(o.draws, renderer.ShadowDraw{
		Atlas:             renderer.PropOtherShadowAtlas,
		VisibleLightIndex: l.VisibleLightIndex,
		View:              m.View,
		Projection:        m.Projection,
		Viewport:          viewport,
		SlopeScaleBias:    l.SlopeScaleBias,
		CullingSphere:     m.Split.CullingSphere,
	})
}

func (o *OtherShadowComputer) computePoint(query CasterQuery, l ShadowedOtherLight, slot int, tileSize, tileScale, border, filterSize float32, conv GraphicsConvention) {
	texelSize := 2 / tileSize
	filterSize *= texelSize
	bias := l.NormalBias * filterSize * common.Sqrt2
	fovBias := PointFovBias(bias, filterSize)

	for face := range CubemapFaceCount {
		m, ok := query.ComputePointShadowMatrices(l.VisibleLightIndex, CubemapFace(face), fovBias)
		if !ok {
			continue
		}
		if conv.CubemapYFlip {
			m.View = FlipFaceView(m.View)
		}

		tileIndex := slot + face
		viewport, offset := TileViewport(tileIndex, o.split, tileSize)
		matrix := ConvertToAtlasMatrix(m.Projection.Mul4(m.View), offset, tileScale, conv.UsesReversedZ)
		o.data[tileIndex] = NewOtherShadowData(offset, tileScale, bias, border, matrix)
		o.draws = append(o.draws, renderer.ShadowDraw{
			Atlas:             renderer.PropOtherShadowAtlas,
			VisibleLightIndex: l.VisibleLightIndex,
			Slice:             face,
			View:              m.View,
			Projection:        m.Projection,
			Viewport:          viewport,
			SlopeScaleBias:    l.SlopeScaleBias,
			CullingSphere:     m.Split.CullingSphere,
		})
	}
}

// PointFovBias returns the degrees added to each cube face's 90 degree field of view so
// that filtering at face edges samples inside the face.
//
// Parameters:
//   - bias: world-space normal bias at unit distance
//   - filterSize: filter width at unit distance
//
// Returns:
//   - float32: extra field of view in degrees
func PointFovBias(bias, filterSize float32) float32 {
	return float32(math.Atan(float64(1+bias+filterSize)))*mgl32.RadToDeg(1)*2 - 90
}

// FlipFaceView negates the second row's y, z and w entries of a cube face view matrix.
func FlipFaceView(view mgl32.Mat4) mgl32.Mat4 {
	view.Set(1, 1, -view.At(1, 1))
	view.Set(1, 2, -view.At(1, 2))
	view.Set(1, 3, -view.At(1, 3))
	return view
}

// Data returns the per-slot records of the last Compute.
func (o *OtherShadowComputer) Data() []OtherShadowData {
	return o.data[:o.dataCount]
}

func (o *OtherShadowComputer) Draws() []renderer.ShadowDraw {
	return o.draws
}

func (o *OtherShadowComputer) Split() int {
	return o.split
}

func (o *OtherShadowComputer) TileSize() int {
	return o.tileSize
}
