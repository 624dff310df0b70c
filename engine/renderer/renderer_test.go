package renderer

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLightingGlobalsLayout(t *testing.T) {
	var g GPULightingGlobals
	assert.Equal(t, 80, g.Size())

	require.True(t, g.setInt(PropDirectionalLightCount, 2))
	require.True(t, g.setInt(PropCascadeCount, 4))
	require.True(t, g.setVector(PropForwardPlusSettings, mgl32.Vec4{1, 2, 3, 4}))
	require.True(t, g.setKeyword(KeywordShadowFilterHigh, true))
	require.True(t, g.setKeyword(KeywordLightsPerObject, true))
	require.True(t, g.setKeyword(KeywordLightsPerObject, false))
	assert.False(t, g.setInt("_Unknown", 1))
	assert.False(t, g.setKeyword("_UNKNOWN", true))
	g.ShadowPancaking = 1

	buf := g.Marshal()
	require.Len(t, buf, 80)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(buf[0:4]))
	assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(buf[8:12]))
	assert.Equal(t, uint32(1<<1), binary.LittleEndian.Uint32(buf[12:16]))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[48:52])))
	assert.Equal(t, float32(4), math.Float32frombits(binary.LittleEndian.Uint32(buf[60:64])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[64:68])))
}

func TestMemorySinkRecordsCalls(t *testing.T) {
	s := NewMemorySink()
	data := []byte{1, 2, 3, 4}
	s.SetGlobalInt(PropOtherLightCount, 3)
	s.SetKeyword(KeywordSoftCascadeBlend, true)
	require.NoError(t, s.SetBufferData(PropOtherLightData, data))
	require.NoError(t, s.SetShadowAtlas(PropOtherShadowAtlas, 0))
	require.NoError(t, s.DrawShadows(ShadowDraw{Atlas: PropOtherShadowAtlas, VisibleLightIndex: 2}))
	data[0] = 9

	v, ok := s.Int(PropOtherLightCount)
	assert.True(t, ok)
	assert.Equal(t, int32(3), v)
	assert.True(t, s.Keyword(KeywordSoftCascadeBlend))
	assert.False(t, s.Keyword(KeywordShadowMaskAlways))
	buf, _ := s.Buffer(PropOtherLightData)
	assert.Equal(t, []byte{1, 2, 3, 4}, buf)
	size, ok := s.Atlas(PropOtherShadowAtlas)
	assert.True(t, ok)
	assert.Zero(t, size)
	require.Len(t, s.Draws(), 1)

	s.Reset()
	assert.Empty(t, s.Draws())
	_, ok = s.Int(PropOtherLightCount)
	assert.False(t, ok)
}

func TestKeywordBitsAreDistinct(t *testing.T) {
	seen := map[uint32]string{}
	for name := range keywordBits {
		bit, ok := KeywordBit(name)
		require.True(t, ok)
		_, dup := seen[bit]
		assert.False(t, dup, name)
		seen[bit] = name
	}
}
