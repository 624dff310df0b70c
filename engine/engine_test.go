package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkiej/literp/engine/camera"
	"github.com/kkiej/literp/engine/light"
	"github.com/kkiej/literp/engine/renderer"
	"github.com/kkiej/literp/engine/scene"
)

type failingSink struct {
	*renderer.MemorySink
}

func (failingSink) SetBufferData(string, []byte) error { return errors.New("device lost") }

type flushFailingSink struct {
	*renderer.MemorySink
	flushes int
}

func (s *flushFailingSink) Flush() error {
	s.flushes++
	return errors.New("failed to write buffer Lighting Globals Uniform Buffer: queue lost")
}

func testScene(name string, active bool) scene.Scene {
	sun := light.NewLight(light.LightTypeDirectional)
	return scene.NewScene(name, camera.NewCamera(), scene.WithLights(sun), scene.WithActive(active))
}

func TestStepRendersActiveScenes(t *testing.T) {
	on := testScene("on", true)
	off := testScene("off", false)
	e := NewEngine(WithSize(128, 64), WithScene(0, on), WithScene(1, off))

	var order []string
	e.SetTickCallback(func(float32) { order = append(order, "tick") })
	e.SetRenderCallback(func(float32) { order = append(order, "render") })

	require.NoError(t, e.Step(1.0/60))
	assert.Equal(t, []string{"tick", "render"}, order)

	assert.Equal(t, 1, on.LastFrame().DirectionalLightCount)
	assert.Equal(t, 2, on.LastFrame().Grid.TileCount())
	assert.Zero(t, off.LastFrame().Grid.TileCount())
	assert.InDelta(t, 2, on.Camera().Aspect(), 1e-6)

	sink, ok := e.Sink().(*renderer.MemorySink)
	require.True(t, ok)
	count, ok := sink.Int(renderer.PropDirectionalLightCount)
	require.True(t, ok)
	assert.Equal(t, int32(1), count)
}

func TestStepJoinsSceneErrors(t *testing.T) {
	e := NewEngine(WithSink(failingSink{renderer.NewMemorySink()}))
	e.AddScene(0, testScene("a", true))
	e.AddScene(1, testScene("b", true))

	err := e.Step(0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scene a")
	assert.Contains(t, err.Error(), "scene b")
}

func TestStepReportsFlushErrors(t *testing.T) {
	sink := &flushFailingSink{MemorySink: renderer.NewMemorySink()}
	e := NewEngine(WithSink(sink), WithScene(0, testScene("a", true)))

	rendered := false
	e.SetRenderCallback(func(float32) { rendered = true })

	err := e.Step(0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write buffer")
	assert.Equal(t, 1, sink.flushes)
	assert.True(t, rendered)
	assert.Equal(t, 1, e.Scene(0).LastFrame().DirectionalLightCount)
}

func TestResizeUpdatesCameras(t *testing.T) {
	s := testScene("s", true)
	e := NewEngine()
	e.AddScene(3, s)

	e.Resize(300, 100)
	w, h := e.Size()
	assert.Equal(t, 300, w)
	assert.Equal(t, 100, h)
	assert.InDelta(t, 3, s.Camera().Aspect(), 1e-6)

	assert.Same(t, s, e.Scene(3))
	assert.Len(t, e.Scenes(), 1)
	e.RemoveScene(3)
	assert.Nil(t, e.Scene(3))
}

func TestRunStopsOnQuitAndCancel(t *testing.T) {
	e := NewEngine(WithTickRate(1000))
	ticks := make(chan struct{}, 1)
	e.SetTickCallback(func(float32) {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()
	<-ticks
	e.Quit()
	e.Quit()
	require.NoError(t, <-done)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := NewEngine(WithTickRate(1000)).Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
