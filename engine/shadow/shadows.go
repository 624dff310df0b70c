package shadow

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/kkiej/literp/engine/light"
	"github.com/kkiej/literp/engine/renderer"
)

// Shadows owns a frame's shadow state: slot allocation during light collection, then
// matrix computation and sink output during rendering.
type Shadows struct {
	alloc    *Allocator
	cascades CascadeComputer
	other    OtherShadowComputer
	conv     GraphicsConvention
}

var _ light.ShadowReserver = &Shadows{}

// NewShadows creates a Shadows for the given platform convention.
//
// Parameters:
//   - conv: the convention resolved at startup
//
// Returns:
//   - *Shadows: the shadow state
func NewShadows(conv GraphicsConvention) *Shadows {
	return &Shadows{alloc: NewAllocator(), conv: conv}
}

// Setup resets the allocator for a new frame.
//
// Parameters:
//   - query: the frame's caster query
//   - settings: the frame's shadow settings
func (s *Shadows) Setup(query CasterQuery, settings Settings) {
	s.alloc.Setup(query, settings)
}

func (s *Shadows) ReserveDirectionalShadows(l light.Light, visibleIndex int) mgl32.Vec4 {
	return s.alloc.ReserveDirectionalShadows(l, visibleIndex)
}

func (s *Shadows) ReserveOtherShadows(l light.Light, visibleIndex int) mgl32.Vec4 {
	return s.alloc.ReserveOtherShadows(l, visibleIndex)
}

// Render computes every shadow slice reserved since Setup and writes the atlases,
// buffers, draws and globals to sink.
//
// Parameters:
//   - sink: the frame's output
//
// Returns:
//   - error: the first sink error, wrapped
func (s *Shadows) Render(sink renderer.Sink) error {
	settings := s.alloc.Settings()
	var atlasSizes mgl32.Vec4

	if s.alloc.DirectionalCount() > 0 {
		size := float32(settings.Directional.AtlasSize)
		atlasSizes[0], atlasSizes[1] = size, 1/size
		if err := s.renderDirectional(sink, settings); err != nil {
			return fmt.Errorf("failed to render directional shadows: %w", err)
		}
	} else {
		sink.SetKeyword(renderer.KeywordSoftCascadeBlend, false)
		if err := sink.SetShadowAtlas(renderer.PropDirectionalShadowAtlas, 0); err != nil {
			return fmt.Errorf("failed to bind placeholder directional atlas: %w", err)
		}
	}

	if s.alloc.OtherSlotCount() > 0 {
		size := float32(settings.Other.AtlasSize)
		atlasSizes[2], atlasSizes[3] = size, 1/size
		if err := s.renderOther(sink, settings); err != nil {
			return fmt.Errorf("failed to render other shadows: %w", err)
		}
	} else if err := sink.SetShadowAtlas(renderer.PropOtherShadowAtlas, 0); err != nil {
		return fmt.Errorf("failed to bind placeholder other atlas: %w", err)
	}

	cascadeCount := int32(0)
	if s.alloc.DirectionalCount() > 0 {
		cascadeCount = int32(settings.Directional.CascadeCount)
	}
	sink.SetGlobalInt(renderer.PropCascadeCount, cascadeCount)
	sink.SetGlobalVector(renderer.PropShadowDistanceFade, DistanceFade(settings))
	sink.SetGlobalVector(renderer.PropShadowAtlasSize, atlasSizes)

	sink.SetKeyword(renderer.KeywordShadowFilterMedium, settings.FilterQuality == FilterQualityMedium)
	sink.SetKeyword(renderer.KeywordShadowFilterHigh, settings.FilterQuality == FilterQualityHigh)

	useMask := s.alloc.UsesShadowMask()
	sink.SetKeyword(renderer.KeywordShadowMaskAlways, useMask && settings.ShadowmaskMode == ShadowmaskModeShadowmask)
	sink.SetKeyword(renderer.KeywordShadowMaskDistance, useMask && settings.ShadowmaskMode == ShadowmaskModeDistance)
	return nil
}

func (s *Shadows) renderDirectional(sink renderer.Sink, settings Settings) error {
	s.cascades.Compute(s.alloc, s.conv)

	if err := sink.SetShadowAtlas(renderer.PropDirectionalShadowAtlas, int(settings.Directional.AtlasSize)); err != nil {
		return err
	}
	sink.SetGlobalFloat(renderer.PropShadowPancaking, 1)
	for _, d := range s.cascades.Draws() {
		if err := sink.DrawShadows(d); err != nil {
			return err
		}
	}
	sink.SetGlobalFloat(renderer.PropShadowPancaking, 0)

	sink.SetKeyword(renderer.KeywordSoftCascadeBlend, settings.Directional.SoftCascadeBlend)
	if err := sink.SetBufferData(renderer.PropDirectionalShadowCascades, marshalCascades(s.cascades.Cascades())); err != nil {
		return err
	}
	return sink.SetBufferData(renderer.PropDirectionalShadowMatrices, marshalMatrices(s.cascades.Matrices()))
}

func (s *Shadows) renderOther(sink renderer.Sink, settings Settings) error {
	s.other.Compute(s.alloc, s.conv)

	if err := sink.SetShadowAtlas(renderer.PropOtherShadowAtlas, int(settings.Other.AtlasSize)); err != nil {
		return err
	}
	sink.SetGlobalFloat(renderer.PropShadowPancaking, 0)
	for _, d := range s.other.Draws() {
		if err := sink.DrawShadows(d); err != nil {
			return err
		}
	}
	return sink.SetBufferData(renderer.PropOtherShadowData, marshalOtherShadowData(s.other.Data()))
}

// DistanceFade returns the shader terms of the shadow distance and cascade fades:
// (1 / max distance, 1 / distance fade, 1 / (1 - f*f)) with f = 1 - cascade fade.
func DistanceFade(settings Settings) mgl32.Vec4 {
	f := 1 - settings.Directional.CascadeFade
	return mgl32.Vec4{
		1 / settings.MaxDistance,
		1 / settings.DistanceFade,
		1 / (1 - f*f),
		0,
	}
}

func (s *Shadows) Allocator() *Allocator {
	return s.alloc
}

func (s *Shadows) Cascades() *CascadeComputer {
	return &s.cascades
}

func (s *Shadows) Other() *OtherShadowComputer {
	return &s.other
}

func (s *Shadows) Convention() GraphicsConvention {
	return s.conv
}
