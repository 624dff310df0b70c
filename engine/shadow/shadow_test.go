package shadow

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkiej/literp/common"
	"github.com/kkiej/literp/engine/light"
)

type fakeQuery struct {
	noCasters map[int]bool
	noSpot    bool
	fovBiases []float32
	faces     []CubemapFace
}

func (q *fakeQuery) ShadowCasterBounds(visibleIndex int) (common.Bounds, bool) {
	if q.noCasters[visibleIndex] {
		return common.Bounds{}, false
	}
	return common.NewBoundsMinMax(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}), true
}

func (q *fakeQuery) ComputeDirectionalShadowMatrices(visibleIndex, cascadeIndex, cascadeCount int, ratios mgl32.Vec3, tileSize int, nearPlaneOffset float32) (ShadowMatrices, bool) {
	r := float32(cascadeIndex+1) * 10
	return ShadowMatrices{
		View:       mgl32.Ident4(),
		Projection: mgl32.Ortho(-r, r, -r, r, 0, 2*r),
		Split:      SplitData{CullingSphere: mgl32.Vec4{float32(visibleIndex), 0, 0, r}},
	}, true
}

func (q *fakeQuery) ComputeSpotShadowMatrices(visibleIndex int) (ShadowMatrices, bool) {
	if q.noSpot {
		return ShadowMatrices{}, false
	}
	return ShadowMatrices{
		View:       mgl32.Ident4(),
		Projection: mgl32.Perspective(mgl32.DegToRad(60), 1, 0.2, 10),
	}, true
}

func (q *fakeQuery) ComputePointShadowMatrices(visibleIndex int, face CubemapFace, fovBias float32) (ShadowMatrices, bool) {
	q.fovBiases = append(q.fovBiases, fovBias)
	q.faces = append(q.faces, face)
	return ShadowMatrices{
		View:       mgl32.Ident4(),
		Projection: mgl32.Perspective(mgl32.DegToRad(90+fovBias), 1, 0.2, 10),
	}, true
}

func shadowed(t light.LightType, opts ...light.LightBuilderOption) light.Light {
	return light.NewLight(t, append([]light.LightBuilderOption{light.WithShadows(light.ShadowsSoft, 0.8)}, opts...)...)
}

func TestSplit(t *testing.T) {
	tests := []struct {
		tiles, want int
	}{
		{0, 1}, {1, 1}, {2, 2}, {4, 2}, {5, 4}, {16, 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Split(tt.tiles), "tiles=%d", tt.tiles)
	}
}

func TestTileViewportMatchesGrid(t *testing.T) {
	tileSize := float32(TileSize(1024, Split(4)))
	require.Equal(t, float32(512), tileSize)

	want := []common.Viewport{
		{X: 0, Y: 0, Width: 512, Height: 512},
		{X: 512, Y: 0, Width: 512, Height: 512},
		{X: 0, Y: 512, Width: 512, Height: 512},
		{X: 512, Y: 512, Width: 512, Height: 512},
	}
	for i := range 4 {
		vp, offset := TileViewport(i, 2, tileSize)
		assert.Equal(t, want[i], vp)
		assert.Equal(t, mgl32.Vec2{float32(i % 2), float32(i / 2)}, offset)
	}
}

func TestConvertToAtlasMatrix(t *testing.T) {
	m := ConvertToAtlasMatrix(mgl32.Ident4(), mgl32.Vec2{1, 0}, 0.5, false)

	lo := m.Mul4x1(mgl32.Vec4{-1, -1, -1, 1})
	hi := m.Mul4x1(mgl32.Vec4{1, 1, 1, 1})
	assert.InDelta(t, 0.5, lo.X(), 1e-6)
	assert.InDelta(t, 0, lo.Y(), 1e-6)
	assert.InDelta(t, 0, lo.Z(), 1e-6)
	assert.InDelta(t, 1, hi.X(), 1e-6)
	assert.InDelta(t, 0.5, hi.Y(), 1e-6)
	assert.InDelta(t, 1, hi.Z(), 1e-6)

	reversed := ConvertToAtlasMatrix(mgl32.Ident4(), mgl32.Vec2{1, 0}, 0.5, true)
	assert.InDelta(t, 0, reversed.Mul4x1(mgl32.Vec4{1, 1, 1, 1}).Z(), 1e-6)
	assert.InDelta(t, 1, reversed.Mul4x1(mgl32.Vec4{-1, -1, -1, 1}).Z(), 1e-6)
}

func TestReserveSentinels(t *testing.T) {
	a := NewAllocator()
	a.Setup(&fakeQuery{noCasters: map[int]bool{3: true}}, DefaultSettings())

	none := light.NewLight(light.LightTypeSpot)
	assert.Equal(t, light.NoShadowData, a.ReserveOtherShadows(none, 0))

	zero := light.NewLight(light.LightTypeSpot, light.WithShadows(light.ShadowsHard, 0))
	assert.Equal(t, mgl32.Vec4{0, 0, 0, -1}, a.ReserveOtherShadows(zero, 1))

	masked := shadowed(light.LightTypeSpot, light.WithBakingOutput(light.BakingOutput{
		BakeType:             light.LightmapBakeMixed,
		MixedMode:            light.MixedLightingShadowmask,
		OcclusionMaskChannel: 2,
	}))
	assert.Equal(t, mgl32.Vec4{-0.8, 0, 0, 2}, a.ReserveOtherShadows(masked, 3))
	assert.True(t, a.UsesShadowMask())
	assert.Zero(t, a.OtherSlotCount())

	a.Setup(&fakeQuery{}, DefaultSettings())
	assert.False(t, a.UsesShadowMask())
}

func TestReserveDirectionalTileIndex(t *testing.T) {
	a := NewAllocator()
	a.Setup(&fakeQuery{}, DefaultSettings())

	first := a.ReserveDirectionalShadows(shadowed(light.LightTypeDirectional, light.WithShadowBias(0.1, 0.5, 0.3)), 0)
	second := a.ReserveDirectionalShadows(shadowed(light.LightTypeDirectional), 1)

	assert.Equal(t, mgl32.Vec4{0.8, 0, 0.5, -1}, first)
	assert.Equal(t, float32(4), second.Y())
	require.Len(t, a.Directional(), 2)
	assert.Equal(t, ShadowedDirectionalLight{VisibleLightIndex: 0, SlopeScaleBias: 0.1, NearPlaneOffset: 0.3}, a.Directional()[0])
}

func TestReserveDirectionalCapacity(t *testing.T) {
	a := NewAllocator()
	a.Setup(&fakeQuery{}, DefaultSettings())
	for i := range MaxShadowedDirectionalLightCount {
		assert.Positive(t, a.ReserveDirectionalShadows(shadowed(light.LightTypeDirectional), i).X())
	}
	assert.Equal(t, mgl32.Vec4{-0.8, 0, 0, -1}, a.ReserveDirectionalShadows(shadowed(light.LightTypeDirectional), 4))
}

func TestReservePointLightsTakeSixSlots(t *testing.T) {
	a := NewAllocator()
	a.Setup(&fakeQuery{}, DefaultSettings())

	assert.Equal(t, mgl32.Vec4{0.8, 0, 1, -1}, a.ReserveOtherShadows(shadowed(light.LightTypePoint), 0))
	assert.Equal(t, mgl32.Vec4{0.8, 6, 1, -1}, a.ReserveOtherShadows(shadowed(light.LightTypePoint), 1))
	assert.Equal(t, mgl32.Vec4{-0.8, 0, 0, -1}, a.ReserveOtherShadows(shadowed(light.LightTypePoint), 2))
	assert.Equal(t, 12, a.OtherSlotCount())

	// Remaining slots still fit spot lights.
	for i := range 4 {
		assert.Equal(t, float32(12+i), a.ReserveOtherShadows(shadowed(light.LightTypeSpot), 3+i).Y())
	}
	assert.Equal(t, 16, a.OtherSlotCount())
	assert.Negative(t, a.ReserveOtherShadows(shadowed(light.LightTypeSpot), 7).X())
}

func TestCascadeComputer(t *testing.T) {
	settings := DefaultSettings()
	a := NewAllocator()
	a.Setup(&fakeQuery{}, settings)
	a.ReserveDirectionalShadows(shadowed(light.LightTypeDirectional, light.WithShadowBias(0.25, 0.5, 0.1)), 0)
	a.ReserveDirectionalShadows(shadowed(light.LightTypeDirectional), 1)

	var c CascadeComputer
	c.Compute(a, ConventionWebGPU)

	assert.Equal(t, 4, c.Split())
	assert.Equal(t, 256, c.TileSize())
	require.Len(t, c.Cascades(), 4)
	require.Len(t, c.Matrices(), 8)
	require.Len(t, c.Draws(), 8)

	for i, cascade := range c.Cascades() {
		assert.Equal(t, float32(0), cascade.CullingSphere.X(), "cascade %d comes from light 0", i)
	}

	r := float32(10)
	filter := 2 * r / 256 * 3
	shrunk := (r - filter) * (r - filter)
	assert.InDelta(t, shrunk, c.Cascades()[0].CullingSphere.W(), 1e-4)
	assert.InDelta(t, 1/shrunk, c.Cascades()[0].Data.X(), 1e-6)
	assert.InDelta(t, filter*math.Sqrt2, c.Cascades()[0].Data.Y(), 1e-5)

	d := c.Draws()[5]
	assert.Equal(t, 1, d.VisibleLightIndex)
	assert.Equal(t, 1, d.Slice)
	assert.Equal(t, common.Viewport{X: 256, Y: 256, Width: 256, Height: 256}, d.Viewport)
	assert.True(t, d.Pancaking)
	assert.InDelta(t, 0.7, d.CascadeBlendCullingFactor, 1e-6)
	assert.Equal(t, float32(0.25), c.Draws()[0].SlopeScaleBias)

	// Matrix for light 1 cascade 1 maps the ortho box into tile (1, 1).
	corner := c.Matrices()[5].Mul4x1(mgl32.Vec4{-20, -20, 0, 1})
	assert.InDelta(t, 0.25, corner.X(), 1e-5)
	assert.InDelta(t, 0.25, corner.Y(), 1e-5)
}

func TestOtherShadowComputer(t *testing.T) {
	settings := DefaultSettings()
	q := &fakeQuery{}
	a := NewAllocator()
	a.Setup(q, settings)
	a.ReserveOtherShadows(shadowed(light.LightTypeSpot, light.WithShadowBias(0.05, 1, 0.2)), 0)
	a.ReserveOtherShadows(shadowed(light.LightTypePoint, light.WithShadowBias(0.05, 1, 0.2)), 1)

	var o OtherShadowComputer
	o.Compute(a, ConventionWebGPU)

	assert.Equal(t, 4, o.Split())
	assert.Equal(t, 256, o.TileSize())
	require.Len(t, o.Data(), 7)
	require.Len(t, o.Draws(), 7)

	proj := mgl32.Perspective(mgl32.DegToRad(60), 1, 0.2, 10)
	spotFilter := 2 / (256 * proj.At(0, 0)) * 3
	assert.InDelta(t, spotFilter*math.Sqrt2, o.Data()[0].TileData.W(), 1e-6)

	border := float32(0.5 / 1024)
	assert.InDelta(t, border, o.Data()[0].TileData.X(), 1e-7)
	assert.InDelta(t, 0.25-2*border, o.Data()[0].TileData.Z(), 1e-7)
	assert.InDelta(t, 0.25+border, o.Data()[1].TileData.X(), 1e-7)

	pointFilter := float32(2.0/256) * 3
	pointBias := pointFilter * common.Sqrt2
	wantFov := float32(math.Atan(float64(1+pointBias+pointFilter)))*180/math.Pi*2 - 90
	require.Len(t, q.fovBiases, 6)
	assert.InDelta(t, wantFov, q.fovBiases[0], 1e-4)
	assert.Greater(t, q.fovBiases[0], float32(0))
	assert.Equal(t, []CubemapFace{
		CubemapFacePositiveX, CubemapFaceNegativeX,
		CubemapFacePositiveY, CubemapFaceNegativeY,
		CubemapFacePositiveZ, CubemapFaceNegativeZ,
	}, q.faces)

	for face, d := range o.Draws()[1:] {
		assert.Equal(t, face, d.Slice)
		assert.Equal(t, float32(-1), d.View.At(1, 1), "face view is flipped")
		assert.False(t, d.Pancaking)
	}
	assert.InDelta(t, pointBias, o.Data()[6].TileData.W(), 1e-6)
}

func TestOtherShadowComputerSkipsUnprojectableSpot(t *testing.T) {
	a := NewAllocator()
	a.Setup(&fakeQuery{noSpot: true}, DefaultSettings())
	a.ReserveOtherShadows(shadowed(light.LightTypeSpot), 0)

	var o OtherShadowComputer
	o.Compute(a, ConventionOpenGL)
	require.Len(t, o.Data(), 1)
	assert.Empty(t, o.Draws())
	assert.Equal(t, OtherShadowData{}, o.Data()[0])
}

func TestFlipFaceView(t *testing.T) {
	v := mgl32.LookAtV(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{2, 2, 3}, mgl32.Vec3{0, -1, 0})
	f := FlipFaceView(v)
	assert.Equal(t, v.Row(0), f.Row(0))
	assert.Equal(t, -v.At(1, 1), f.At(1, 1))
	assert.Equal(t, -v.At(1, 3), f.At(1, 3))
	assert.Equal(t, v.At(1, 0), f.At(1, 0))
}

func TestShaderRecordSizes(t *testing.T) {
	var c DirectionalShadowCascade
	var o OtherShadowData
	assert.Equal(t, DirectionalShadowCascadeStride, c.Size())
	assert.Len(t, c.Marshal(), DirectionalShadowCascadeStride)
	assert.Equal(t, OtherShadowDataStride, o.Size())
	assert.Len(t, o.Marshal(), OtherShadowDataStride)
}
