package shadow

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/kkiej/literp/engine/light"
)

const (
	// MaxShadowedDirectionalLightCount is the number of directional lights with realtime shadows.
	MaxShadowedDirectionalLightCount = 4

	// MaxShadowedOtherLightCount is the number of other shadow atlas slots. A spot light
	// takes one slot and a point light takes one per cube face.
	MaxShadowedOtherLightCount = 16

	// MaxCascades is the largest supported directional cascade count.
	MaxCascades = 4
)

// ShadowedDirectionalLight is a directional light that was granted cascade tiles.
type ShadowedDirectionalLight struct {
	VisibleLightIndex int
	SlopeScaleBias    float32
	NearPlaneOffset   float32
}

// ShadowedOtherLight is a spot or point light that was granted atlas slots.
type ShadowedOtherLight struct {
	VisibleLightIndex int
	SlopeScaleBias    float32
	NormalBias        float32
	IsPoint           bool
}

// Allocator hands out shadow slots in request order for one frame.
type Allocator struct {
	query    CasterQuery
	settings Settings

	directional [MaxShadowedDirectionalLightCount]ShadowedDirectionalLight
	dirCount    int

	// other is indexed by first slot; a point light leaves the next five entries unused.
	other      [MaxShadowedOtherLightCount]ShadowedOtherLight
	otherCount int

	useShadowMask bool
}

// NewAllocator creates an Allocator with default settings and no caster query.
// Call Setup before each frame.
func NewAllocator() *Allocator {
	return &Allocator{settings: DefaultSettings()}
}

// Setup resets every count and the shadow mask flag for a new frame.
//
// Parameters:
//   - query: the frame's caster query; nil treats every light as having no casters
//   - settings: the frame's shadow settings
func (a *Allocator) Setup(query CasterQuery, settings Settings) {
	a.query = query
	a.settings = settings
	a.dirCount = 0
	a.otherCount = 0
	a.useShadowMask = false
}

// ReserveDirectionalShadows reserves cascade tiles for l.
//
// Returned shadow data is (strength, first cascade tile, normal bias, mask channel).
// Lights without shadows get (0, 0, 0, -1). Lights that keep only their baked shadow
// mask because no slot or caster is available get (-strength, 0, 0, mask channel).
//
// Parameters:
//   - l: the scene light
//   - visibleIndex: index of the light in the visible-light list
//
// Returns:
//   - mgl32.Vec4: the light's shadow data
func (a *Allocator) ReserveDirectionalShadows(l light.Light, visibleIndex int) mgl32.Vec4 {
	if l.Shadows() == light.ShadowsNone || l.ShadowStrength() <= 0 {
		return light.NoShadowData
	}
	maskChannel := a.shadowMaskChannel(l)

	if a.dirCount >= MaxShadowedDirectionalLightCount || !a.hasCasters(visibleIndex) {
		return mgl32.Vec4{-l.ShadowStrength(), 0, 0, maskChannel}
	}

	a.directional[a.dirCount] = ShadowedDirectionalLight{
		VisibleLightIndex: visibleIndex,
		SlopeScaleBias:    l.ShadowBias(),
		NearPlaneOffset:   l.ShadowNearPlane(),
	}
	tile := a.settings.Directional.CascadeCount * a.dirCount
	a.dirCount++
	return mgl32.Vec4{l.ShadowStrength(), float32(tile), l.ShadowNormalBias(), maskChannel}
}

// ReserveOtherShadows reserves atlas slots for a spot light (one) or a point light (six).
//
// Returned shadow data is (strength, first slot, 1 for point lights else 0, mask
// channel), with the same sentinels as ReserveDirectionalShadows.
//
// Parameters:
//   - l: the scene light
//   - visibleIndex: index of the light in the visible-light list
//
// Returns:
//   - mgl32.Vec4: the light's shadow data
func (a *Allocator) ReserveOtherShadows(l light.Light, visibleIndex int) mgl32.Vec4 {
	if l.Shadows() == light.ShadowsNone || l.ShadowStrength() <= 0 {
		return light.NoShadowData
	}
	maskChannel := a.shadowMaskChannel(l)

	isPoint := l.Type() == light.LightTypePoint
	newCount := a.otherCount + 1
	if isPoint {
		newCount = a.otherCount + CubemapFaceCount
	}
	if newCount > MaxShadowedOtherLightCount || !a.hasCasters(visibleIndex) {
		return mgl32.Vec4{-l.ShadowStrength(), 0, 0, maskChannel}
	}

	a.other[a.otherCount] = ShadowedOtherLight{
		VisibleLightIndex: visibleIndex,
		SlopeScaleBias:    l.ShadowBias(),
		NormalBias:        l.ShadowNormalBias(),
		IsPoint:           isPoint,
	}
	data := mgl32.Vec4{l.ShadowStrength(), float32(a.otherCount), 0, maskChannel}
	if isPoint {
		data[2] = 1
	}
	a.otherCount = newCount
	return data
}

// shadowMaskChannel returns the light's baked occlusion channel, marking the frame as
// using the shadow mask, or -1 when the light has none.
func (a *Allocator) shadowMaskChannel(l light.Light) float32 {
	baking := l.BakingOutput()
	if !baking.UsesShadowMask() {
		return -1
	}
	a.useShadowMask = true
	return float32(baking.OcclusionMaskChannel)
}

func (a *Allocator) hasCasters(visibleIndex int) bool {
	if a.query == nil {
		return false
	}
	_, ok := a.query.ShadowCasterBounds(visibleIndex)
	return ok
}

func (a *Allocator) Query() CasterQuery {
	return a.query
}

func (a *Allocator) Settings() Settings {
	return a.settings
}

// DirectionalCount returns how many directional lights hold cascade tiles.
func (a *Allocator) DirectionalCount() int {
	return a.dirCount
}

// OtherSlotCount returns how many other atlas slots are in use.
func (a *Allocator) OtherSlotCount() int {
	return a.otherCount
}

// UsesShadowMask reports whether any light reserved this frame uses the baked shadow mask.
func (a *Allocator) UsesShadowMask() bool {
	return a.useShadowMask
}

// Directional returns the granted directional lights in reservation order.
func (a *Allocator) Directional() []ShadowedDirectionalLight {
	return a.directional[:a.dirCount]
}

// OtherAt returns the light that owns the given first slot.
func (a *Allocator) OtherAt(slot int) ShadowedOtherLight {
	return a.other[slot]
}
