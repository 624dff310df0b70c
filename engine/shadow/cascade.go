package shadow

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/kkiej/literp/engine/renderer"
)

// CascadeComputer turns the frame's shadowed directional lights into cascade records,
// world-to-atlas matrices and shadow draws. Its arrays are reused across frames.
type CascadeComputer struct {
	cascades     [MaxCascades]DirectionalShadowCascade
	cascadeCount int
	matrices     [MaxShadowedDirectionalLightCount * MaxCascades]mgl32.Mat4
	matrixCount  int
	draws        []renderer.ShadowDraw
	split        int
	tileSize     int
}

// Compute fills the cascade table and matrices for every directional light in a.
//
// Light 0's culling spheres define the cascade table shared by all lights. Every light
// writes one matrix per cascade at light*cascadeCount + cascade. A cascade the query
// cannot project is left zeroed and gets no draw.
//
// Parameters:
//   - a: the frame's allocator
//   - conv: the platform convention
func (c *CascadeComputer) Compute(a *Allocator, conv GraphicsConvention) {
	settings := a.Settings()
	query := a.Query()
	lights := a.Directional()
	cascadeCount := settings.Directional.CascadeCount
	atlasSize := int(settings.Directional.AtlasSize)

	c.cascadeCount = cascadeCount
	c.matrixCount = len(lights) * cascadeCount
	c.draws = c.draws[:0]
	c.cascades = [MaxCascades]DirectionalShadowCascade{}

	tiles := len(lights) * cascadeCount
	c.split = Split(tiles)
	c.tileSize = TileSize(atlasSize, c.split)
	if len(lights) == 0 || query == nil {
		return
	}

	ratios := settings.Directional.CascadeRatios()
	tileScale := 1 / float32(c.split)
	cullingFactor := max(0, 0.8-settings.Directional.CascadeFade)
	filterSize := settings.DirectionalFilterSize()

	for index, l := range lights {
		tileOffset := index * cascadeCount
		for i := range cascadeCount {
			tileIndex := tileOffset + i
			m, ok := query.ComputeDirectionalShadowMatrices(l.VisibleLightIndex, i, cascadeCount, ratios, c.tileSize, l.NearPlaneOffset)
			if !ok {
				c.matrices[tileIndex] = mgl32.Mat4{}
				continue
			}
			m.Split.CascadeBlendCullingFactor = cullingFactor

			if index == 0 {
				c.cascades[i] = NewDirectionalShadowCascade(m.Split.CullingSphere, float32(c.tileSize), filterSize)
			}

			viewport, offset := TileViewport(tileIndex, c.split, float32(c.tileSize))
			c.matrices[tileIndex] = ConvertToAtlasMatrix(m.Projection.Mul4(m.View), offset, tileScale, conv.UsesReversedZ)
			c.draws = append(c.draws, renderer.ShadowDraw{
				Atlas:                     renderer.PropDirectionalShadowAtlas,
				VisibleLightIndex:         l.VisibleLightIndex,
				Slice:                     i,
				View:                      m.View,
				Projection:                m.Projection,
				Viewport:                  viewport,
				SlopeScaleBias:            l.SlopeScaleBias,
				CullingSphere:             m.Split.CullingSphere,
				CascadeBlendCullingFactor: m.Split.CascadeBlendCullingFactor,
				Pancaking:                 true,
			})
		}
	}
}

// Cascades returns the shared cascade table of the last Compute.
func (c *CascadeComputer) Cascades() []DirectionalShadowCascade {
	return c.cascades[:c.cascadeCount]
}

// Matrices returns the world-to-atlas matrices of the last Compute, one per light and
// cascade.
func (c *CascadeComputer) Matrices() []mgl32.Mat4 {
	return c.matrices[:c.matrixCount]
}

func (c *CascadeComputer) Draws() []renderer.ShadowDraw {
	return c.draws
}

func (c *CascadeComputer) Split() int {
	return c.split
}

func (c *CascadeComputer) TileSize() int {
	return c.tileSize
}
