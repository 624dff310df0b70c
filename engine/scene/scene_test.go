package scene

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkiej/literp/common"
	"github.com/kkiej/literp/engine/camera"
	"github.com/kkiej/literp/engine/light"
	"github.com/kkiej/literp/engine/loader"
	"github.com/kkiej/literp/engine/renderer"
)

var unitBox = common.NewBoundsMinMax(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})

func testLights() (sun, lamp, hidden light.Light) {
	sun = light.NewLight(light.LightTypeDirectional,
		light.WithDirection(0, -1, -1),
		light.WithShadows(light.ShadowsSoft, 1),
	)
	lamp = light.NewLight(light.LightTypePoint,
		light.WithPosition(0, 0, 0),
		light.WithRange(2),
		light.WithShadows(light.ShadowsHard, 1),
	)
	// behind the camera and out of range of the frustum
	hidden = light.NewLight(light.LightTypePoint,
		light.WithPosition(0, 0, 40),
		light.WithRange(1),
	)
	return sun, lamp, hidden
}

type failingSink struct {
	*renderer.MemorySink
}

func (failingSink) SetBufferData(string, []byte) error { return errors.New("device lost") }

func TestNewScenePanicsWithoutCamera(t *testing.T) {
	assert.Panics(t, func() { NewScene("empty", nil) })
}

func TestRenderFrameForwardPlus(t *testing.T) {
	sun, lamp, hidden := testLights()
	s := NewScene("room", camera.NewCamera(), WithLights(sun, lamp, hidden), WithCasters(unitBox), WithActive(true))

	sink := renderer.NewMemorySink()
	res, err := s.RenderFrame(256, 256, sink)
	require.NoError(t, err)

	assert.Equal(t, 1, res.DirectionalLightCount)
	assert.Equal(t, 1, res.OtherLightCount)
	assert.Equal(t, 1, res.DirectionalShadows)
	assert.Equal(t, 6, res.OtherShadowSlots)
	assert.Equal(t, 16, res.Grid.TileCount())
	assert.Equal(t, 3, res.TileDataSize)
	assert.Len(t, res.Tiles, 16*3)

	count, ok := sink.Int(renderer.PropOtherLightCount)
	require.True(t, ok)
	assert.Equal(t, int32(1), count)
	_, ok = sink.Buffer(renderer.PropForwardPlusTiles)
	assert.True(t, ok)
	assert.NotEmpty(t, sink.Draws())

	assert.Equal(t, res, s.LastFrame())
}

func TestRenderFrameLightsPerObject(t *testing.T) {
	sun, lamp, _ := testLights()
	cfg := NewScene("", camera.NewCamera()).Settings()
	cfg.UseLightsPerObject = true
	s := NewScene("legacy", camera.NewCamera(), WithLights(sun, lamp), WithSettings(cfg))

	sink := renderer.NewMemorySink()
	res, err := s.RenderFrame(256, 256, sink)
	require.NoError(t, err)

	assert.True(t, res.UseLightsPerObject)
	assert.Equal(t, 1, res.OtherLightCount)
	assert.Zero(t, res.TileDataSize)
	assert.Empty(t, res.Tiles)
	assert.True(t, sink.Keyword(renderer.KeywordLightsPerObject))
	_, ok := sink.Buffer(renderer.PropForwardPlusTiles)
	assert.False(t, ok)
}

func TestRenderFrameWrapsSinkErrors(t *testing.T) {
	sun, _, _ := testLights()
	s := NewScene("broken", camera.NewCamera(), WithLights(sun))

	_, err := s.RenderFrame(64, 64, failingSink{renderer.NewMemorySink()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scene broken")
	assert.Contains(t, err.Error(), "device lost")
}

func TestLightsKeepOrder(t *testing.T) {
	sun, lamp, hidden := testLights()
	s := NewScene("order", camera.NewCamera())
	s.AddLight(sun)
	s.AddLight(lamp)
	s.AddLight(hidden)
	s.AddLight(nil)

	s.RemoveLight(lamp)
	assert.Equal(t, []light.Light{sun, hidden}, s.Lights())

	s.AddCaster(common.Bounds{})
	s.AddCaster(unitBox)
	assert.Len(t, s.Casters(), 1)

	s.Clear()
	assert.Empty(t, s.Lights())
	assert.Empty(t, s.Casters())
}

func TestImportSceneData(t *testing.T) {
	sun, lamp, _ := testLights()
	data := &loader.SceneData{
		Name:    "imported",
		Lights:  []light.Light{sun, lamp},
		Casters: []common.Bounds{unitBox},
	}

	s := NewScene("", camera.NewCamera(), WithSceneData(data))
	assert.Equal(t, "imported", s.Name())
	assert.Len(t, s.Lights(), 2)

	s.Import(data)
	s.Import(nil)
	assert.Len(t, s.Lights(), 4)
	assert.Len(t, s.Casters(), 2)
}

func TestSceneAccessors(t *testing.T) {
	cam := camera.NewCamera()
	s := NewScene("a", cam)
	assert.False(t, s.Active())
	s.SetActive(true)
	assert.True(t, s.Active())

	s.SetName("b")
	assert.Equal(t, "b", s.Name())

	s.SetCamera(nil)
	assert.Same(t, cam, s.Camera())
	other := camera.NewCamera()
	s.SetCamera(other)
	assert.Same(t, other, s.Camera())

	assert.NotNil(t, s.Pass())
}
