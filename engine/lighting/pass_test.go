package lighting

import (
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkiej/literp/common"
	"github.com/kkiej/literp/engine/debug"
	"github.com/kkiej/literp/engine/forwardplus"
	"github.com/kkiej/literp/engine/light"
	"github.com/kkiej/literp/engine/profiler"
	"github.com/kkiej/literp/engine/renderer"
	"github.com/kkiej/literp/engine/settings"
	"github.com/kkiej/literp/engine/shadow"
)

type boxQuery struct{}

func (boxQuery) ShadowCasterBounds(int) (common.Bounds, bool) {
	return common.NewBoundsMinMax(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}), true
}

func (boxQuery) ComputeDirectionalShadowMatrices(visibleIndex, cascadeIndex, cascadeCount int, ratios mgl32.Vec3, tileSize int, nearPlaneOffset float32) (shadow.ShadowMatrices, bool) {
	r := float32(cascadeIndex+1) * 10
	return shadow.ShadowMatrices{
		View:       mgl32.Ident4(),
		Projection: mgl32.Ortho(-r, r, -r, r, 0, 2*r),
		Split:      shadow.SplitData{CullingSphere: mgl32.Vec4{0, 0, 0, r}},
	}, true
}

func (boxQuery) ComputeSpotShadowMatrices(int) (shadow.ShadowMatrices, bool) {
	return shadow.ShadowMatrices{View: mgl32.Ident4(), Projection: mgl32.Perspective(mgl32.DegToRad(60), 1, 0.2, 10)}, true
}

func (boxQuery) ComputePointShadowMatrices(visibleIndex int, face shadow.CubemapFace, fovBias float32) (shadow.ShadowMatrices, bool) {
	return shadow.ShadowMatrices{View: mgl32.Ident4(), Projection: mgl32.Perspective(mgl32.DegToRad(90+fovBias), 1, 0.2, 10)}, true
}

type recordingOverlay struct {
	views []debug.TileView
}

func (o *recordingOverlay) Active() bool { return true }

func (o *recordingOverlay) Render(v debug.TileView) error {
	o.views = append(o.views, v)
	return nil
}

type failingSink struct {
	*renderer.MemorySink
}

func (failingSink) SetBufferData(string, []byte) error { return errors.New("device lost") }

func visible(t light.LightType, rect common.Rect) light.VisibleLight {
	l := light.NewLight(t, light.WithShadows(light.ShadowsSoft, 1), light.WithPosition(0, 1, 0))
	v := light.NewVisibleLight(l)
	v.ScreenRect = rect
	return v
}

func frame() []light.VisibleLight {
	return []light.VisibleLight{
		visible(light.LightTypeDirectional, common.FullScreenRect),
		visible(light.LightTypePoint, common.Rect{XMin: 0, YMin: 0, XMax: 0.25, YMax: 0.25}),
		visible(light.LightTypePoint, common.Rect{XMin: 0.75, YMin: 0.75, XMax: 1, YMax: 1}),
		visible(light.LightTypeSpot, common.FullScreenRect),
	}
}

func input(visible []light.VisibleLight, p settings.Pipeline) FrameInput {
	return FrameInput{
		Visible:            visible,
		AttachmentWidth:    256,
		AttachmentHeight:   256,
		Query:              boxQuery{},
		RenderingLayerMask: light.DefaultRenderingLayerMask,
		Settings:           p,
	}
}

func tileSettings() settings.Pipeline {
	p := settings.Default()
	p.ForwardPlus = forwardplus.Settings{TileSize: 64, MaxLightsPerTile: 31}
	return p
}

func TestRenderBeforeSetup(t *testing.T) {
	p := NewPass(WithCuller(forwardplus.NewCuller(forwardplus.WithWorkers(2))))
	assert.ErrorIs(t, p.Render(renderer.NewMemorySink()), ErrNotSetUp)
}

func TestForwardPlusFrame(t *testing.T) {
	overlay := &recordingOverlay{}
	prof := profiler.NewProfiler(profiler.WithInterval(time.Nanosecond))
	p := NewPass(
		WithCuller(forwardplus.NewCuller(forwardplus.WithWorkers(2))),
		WithOverlay(overlay),
		WithProfiler(prof),
	)
	sink := renderer.NewMemorySink()

	p.Setup(input(frame(), tileSettings()))
	require.NoError(t, p.Render(sink))

	dirCount, _ := sink.Int(renderer.PropDirectionalLightCount)
	otherCount, _ := sink.Int(renderer.PropOtherLightCount)
	assert.Equal(t, int32(1), dirCount)
	assert.Equal(t, int32(3), otherCount)
	assert.False(t, sink.Keyword(renderer.KeywordLightsPerObject))

	dirData, ok := sink.Buffer(renderer.PropDirectionalLightData)
	require.True(t, ok)
	assert.Len(t, dirData, light.DirectionalLightDataStride)
	otherData, ok := sink.Buffer(renderer.PropOtherLightData)
	require.True(t, ok)
	assert.Len(t, otherData, 3*light.OtherLightDataStride)

	res := p.Resources()
	require.Equal(t, 16, res.Grid.TileCount())
	require.Equal(t, 5, res.TileDataSize)
	assert.Equal(t, 1, res.DirectionalShadows)
	// two point lights and a spot fit the 16 slots
	assert.Equal(t, 13, res.OtherShadowSlots)

	// bottom-left tile: first point light and the full-screen spot
	assert.Equal(t, []int32{2, 0, 2}, res.Tiles[0:3])
	// top-right tile: second point light and the spot
	assert.Equal(t, []int32{2, 1, 2}, res.Tiles[15*5:15*5+3])
	// a middle tile only sees the spot
	assert.Equal(t, []int32{1, 2}, res.Tiles[5*5:5*5+2])

	tiles, ok := sink.Buffer(renderer.PropForwardPlusTiles)
	require.True(t, ok)
	assert.Equal(t, forwardplus.MarshalTileData(res.Tiles), tiles)

	v, ok := sink.Vector(renderer.PropForwardPlusSettings)
	require.True(t, ok)
	assert.Equal(t, float32(4), v.X())
	assert.Equal(t, float32(4), v.Y())
	assert.Equal(t, common.ReinterpretAsFloat(4), v.Z())
	assert.Equal(t, common.ReinterpretAsFloat(5), v.W())

	// four cascades, twelve cube faces and one spot
	assert.Len(t, sink.Draws(), 17)

	require.Len(t, overlay.views, 1)
	assert.Equal(t, 5, overlay.views[0].TileDataSize)

	require.True(t, prof.Tick())
	assert.Equal(t, 2, prof.LastReport().Calls[SampleName])

	assert.ErrorIs(t, p.Render(sink), ErrNotSetUp)
}

func TestTileOverflowCapsAtMax(t *testing.T) {
	s := tileSettings()
	s.ForwardPlus.MaxLightsPerTile = 2
	p := NewPass(WithCuller(forwardplus.NewCuller(forwardplus.WithWorkers(2))))

	p.Setup(input(frame(), s))
	require.NoError(t, p.Render(renderer.NewMemorySink()))

	res := p.Resources()
	require.Equal(t, 3, res.TileDataSize)
	assert.Equal(t, []int32{2, 0, 2}, res.Tiles[0:3])
}

func TestPerObjectFrame(t *testing.T) {
	s := tileSettings()
	s.UseLightsPerObject = true
	overlay := &recordingOverlay{}
	p := NewPass(WithOverlay(overlay))
	sink := renderer.NewMemorySink()

	in := input(frame(), s)
	in.IndexMap = make([]int, 6)
	p.Setup(in)
	require.NoError(t, p.Render(sink))

	assert.Equal(t, []int{-1, 0, 1, 2, -1, -1}, in.IndexMap)
	assert.True(t, sink.Keyword(renderer.KeywordLightsPerObject))

	positions, ok := sink.Buffer("_OtherLightPositions")
	require.True(t, ok)
	assert.Len(t, positions, 3*16)
	_, ok = sink.Buffer("_DirectionalLightColors")
	assert.True(t, ok)

	_, ok = sink.Buffer(renderer.PropForwardPlusTiles)
	assert.False(t, ok)
	_, ok = sink.Buffer(renderer.PropOtherLightData)
	assert.False(t, ok)
	assert.Empty(t, overlay.views)
	assert.Equal(t, 0, p.Resources().Grid.TileCount())
}

func TestEmptyFrame(t *testing.T) {
	p := NewPass()
	sink := renderer.NewMemorySink()

	p.Setup(input(nil, tileSettings()))
	require.NoError(t, p.Render(sink))

	res := p.Resources()
	assert.Equal(t, 1, res.TileDataSize)
	assert.Equal(t, make([]int32, 16), res.Tiles)

	size, ok := sink.Atlas(renderer.PropDirectionalShadowAtlas)
	require.True(t, ok)
	assert.Equal(t, 0, size)
	size, ok = sink.Atlas(renderer.PropOtherShadowAtlas)
	require.True(t, ok)
	assert.Equal(t, 0, size)
	assert.Empty(t, sink.Draws())
}

func TestRepeatedFramesReuseArena(t *testing.T) {
	p := NewPass()
	sink := renderer.NewMemorySink()

	p.Setup(input(frame(), tileSettings()))
	require.NoError(t, p.Render(sink))
	first := append([]int32(nil), p.Resources().Tiles...)

	sink.Reset()
	p.Setup(input(frame(), tileSettings()))
	require.NoError(t, p.Render(sink))
	assert.Equal(t, first, p.Resources().Tiles)

	// setup twice without render joins the earlier job first
	p.Setup(input(frame(), tileSettings()))
	p.Setup(input(frame(), tileSettings()))
	require.NoError(t, p.Render(sink))
	assert.Equal(t, first, p.Resources().Tiles)
}

func TestRenderWrapsSinkErrors(t *testing.T) {
	p := NewPass()
	p.Setup(input(frame(), tileSettings()))
	err := p.Render(failingSink{renderer.NewMemorySink()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upload directional lights")
	assert.Contains(t, err.Error(), "device lost")
}
