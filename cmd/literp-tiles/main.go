// literp-tiles - Terminal Forward+ tile viewer
// Runs the lighting pass over a glTF scene or a generated one and draws the per-tile
// light counts as a heat map in the terminal. With -frames it runs headless, and -gpu
// additionally uploads every frame to a surfaceless WebGPU device.
//
// Controls:
//
//	Arrows  - Orbit the camera
//	+/-     - Zoom
//	T       - Toggle the tile overlay
//	Q/Esc   - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/kkiej/literp/common"
	"github.com/kkiej/literp/engine"
	"github.com/kkiej/literp/engine/camera"
	"github.com/kkiej/literp/engine/debug"
	"github.com/kkiej/literp/engine/lighting"
	"github.com/kkiej/literp/engine/loader"
	"github.com/kkiej/literp/engine/profiler"
	"github.com/kkiej/literp/engine/renderer"
	"github.com/kkiej/literp/engine/scene"
	"github.com/kkiej/literp/engine/settings"
)

var (
	configPath = flag.String("config", "", "Path to a pipeline settings YAML file")
	scenePath  = flag.String("scene", "", "Path to a glTF/GLB scene with KHR_lights_punctual lights")
	lightCount = flag.Int("lights", 48, "Number of generated lights when no scene is given")
	targetFPS  = flag.Int("fps", 30, "Target FPS")
	width      = flag.Int("width", 1920, "Color attachment width in pixels")
	height     = flag.Int("height", 1080, "Color attachment height in pixels")
	frames     = flag.Int("frames", 0, "Run headless for N frames and print a summary")
	seed       = flag.Int64("seed", 1, "Seed for generated lights")
	verbose    = flag.Bool("debug", false, "Enable debug logging (headless only)")
	useGPU     = flag.Bool("gpu", false, "Upload each frame to a headless WebGPU device (headless only)")
	fallback   = flag.Bool("fallback-adapter", false, "Request the software fallback adapter with -gpu")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// viewer is everything a frame touches.
type viewer struct {
	eng     engine.Engine
	scene   scene.Scene
	ctrl    camera.CameraController
	overlay *debug.TileOverlay
	prof    *profiler.Profiler
	gpu     *renderer.GPUSink
	movers  []*mover
	lights  int
}

func run() error {
	headless := *frames > 0

	var logger common.Logger = common.NewNopLogger()
	if headless {
		logger = common.NewDefaultLogger("literp", *verbose)
	}

	cfg := settings.Default()
	cfg.Debug.ShowTiles = true
	if *configPath != "" {
		loaded, err := settings.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	var gpu *renderer.GPUSink
	if headless && *useGPU {
		dev, err := renderer.OpenGPUDevice(*fallback)
		if err != nil {
			return err
		}
		defer dev.Release()
		gpu, err = dev.NewSink(
			renderer.WithSinkLogger(logger),
			renderer.WithReversedZ(cfg.Convention.UsesReversedZ),
		)
		if err != nil {
			return err
		}
		defer gpu.Release()
	}

	v, err := newViewer(cfg, logger, gpu)
	if err != nil {
		return err
	}
	if headless {
		return v.runHeadless(*frames)
	}
	return v.runTerminal()
}

// newViewer builds the scene and engine. Frames go to gpu when it is non-nil, otherwise
// to the engine's memory sink.
func newViewer(cfg settings.Pipeline, logger common.Logger, gpu *renderer.GPUSink) (*viewer, error) {
	v := &viewer{
		overlay: debug.NewTileOverlay(cfg.Debug),
		prof:    profiler.NewProfiler(profiler.WithLogger(logger)),
		gpu:     gpu,
	}
	v.ctrl = camera.NewOrbitController(camera.WithRadius(25))
	cam := camera.NewCamera(camera.WithController(v.ctrl))

	pass := lighting.NewPass(
		lighting.WithLogger(logger),
		lighting.WithProfiler(v.prof),
		lighting.WithOverlay(v.overlay),
	)
	opts := []scene.SceneBuilderOption{
		scene.WithActive(true),
		scene.WithSettings(cfg),
		scene.WithPass(pass),
	}

	name := "demo"
	if *scenePath != "" {
		data, err := loader.NewLoader(loader.BackendTypeGLTF, loader.WithLogger(logger)).Load(*scenePath)
		if err != nil {
			return nil, err
		}
		name = data.Name
		opts = append(opts, scene.WithSceneData(data))
		v.lights = len(data.Lights)
	} else {
		lights, casters, movers := demoScene(max(*lightCount, 0), *targetFPS, rand.New(rand.NewSource(*seed)))
		opts = append(opts, scene.WithLights(lights...), scene.WithCasters(casters...))
		v.movers = movers
		v.lights = len(lights)
	}
	v.scene = scene.NewScene(name, cam, opts...)

	engineOpts := []engine.EngineBuilderOption{
		engine.WithLogger(logger),
		engine.WithProfiler(v.prof),
		engine.WithTickRate(float64(*targetFPS)),
		engine.WithSize(*width, *height),
		engine.WithScene(0, v.scene),
	}
	if gpu != nil {
		engineOpts = append(engineOpts, engine.WithSink(gpu))
	}
	v.eng = engine.NewEngine(engineOpts...)
	return v, nil
}

// animate moves the generated lights and refreshes the camera.
func (v *viewer) animate() {
	for _, m := range v.movers {
		m.Update()
	}
	v.scene.Camera().Update()
}

func (v *viewer) runHeadless(n int) error {
	v.eng.EnableProfiler()
	v.eng.SetTickCallback(func(float32) { v.animate() })

	dt := float32(1) / float32(max(*targetFPS, 1))
	start := time.Now()
	for range n {
		if err := v.eng.Step(dt); err != nil {
			return err
		}
	}
	elapsed := time.Since(start)

	res := v.scene.LastFrame()
	fmt.Printf("scene:          %s\n", v.scene.Name())
	fmt.Printf("frames:         %d in %v (%.2f ms/frame)\n", n, elapsed.Round(time.Millisecond), float64(elapsed.Microseconds())/1000/float64(n))
	fmt.Printf("lights:         %d scene, %d directional, %d other, %d dropped\n",
		v.lights, res.DirectionalLightCount, res.OtherLightCount, res.DroppedLightCount)
	fmt.Printf("shadows:        %d directional, %d other slots\n", res.DirectionalShadows, res.OtherShadowSlots)
	if v.gpu != nil {
		g := v.gpu.Globals()
		fmt.Printf("gpu:            %d directional, %d other, %d cascades uploaded\n",
			g.DirectionalLightCount, g.OtherLightCount, g.CascadeCount)
	}
	if res.UseLightsPerObject {
		fmt.Println("tiles:          disabled (lights per object)")
		return nil
	}
	busiest := 0
	for i := range res.Grid.TileCount() {
		busiest = max(busiest, int(res.Tiles[i*res.TileDataSize]))
	}
	fmt.Printf("tiles:          %dx%d, %d entries per tile, busiest tile %d lights\n",
		res.Grid.TileCountX, res.Grid.TileCountY, res.TileDataSize, busiest)

	report := v.prof.LastReport()
	names := make([]string, 0, len(report.Samples))
	for name := range report.Samples {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("sample:         %s avg %v over %d calls\n", name, report.Samples[name], report.Calls[name])
	}
	return nil
}

func (v *viewer) runTerminal() error {
	term := uv.DefaultTerminal()
	cols, rows, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("failed to get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("failed to start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(cols, rows)
	defer func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	events := make(chan uv.Event, 64)
	go func() {
		for ev := range term.Events() {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	v.eng.SetTickCallback(func(float32) {
		for {
			select {
			case ev := <-events:
				v.handleEvent(ev, term, &cols, &rows)
			default:
				v.animate()
				return
			}
		}
	})
	v.eng.SetRenderCallback(func(float32) {
		v.prof.Tick()
		v.draw(term, cols, rows)
		_ = term.Display()
	})

	if err := v.eng.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func (v *viewer) handleEvent(ev uv.Event, term *uv.Terminal, cols, rows *int) {
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		*cols, *rows = ev.Width, ev.Height
		term.Erase()
		term.Resize(ev.Width, ev.Height)
	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("q", "escape", "ctrl+c"):
			v.eng.Quit()
		case ev.MatchString("t"):
			v.overlay.Toggle()
		case ev.MatchString("left"):
			v.ctrl.Orbit(-1, 0)
		case ev.MatchString("right"):
			v.ctrl.Orbit(1, 0)
		case ev.MatchString("up"):
			v.ctrl.Orbit(0, 1)
		case ev.MatchString("down"):
			v.ctrl.Orbit(0, -1)
		case ev.MatchString("+", "="):
			v.ctrl.Zoom(-1)
		case ev.MatchString("-", "_"):
			v.ctrl.Zoom(1)
		}
	}
}

var (
	hudStyle   = uv.Style{Fg: color.RGBA{R: 230, G: 230, B: 230, A: 255}, Bg: color.RGBA{R: 20, G: 20, B: 28, A: 255}}
	emptyStyle = uv.Style{Bg: color.RGBA{R: 20, G: 20, B: 28, A: 255}}
)

// draw renders the tile overlay above a one-line HUD.
func (v *viewer) draw(scr uv.Screen, cols, rows int) {
	if cols <= 0 || rows <= 1 {
		return
	}
	area := uv.Rectangle(image.Rect(0, 0, cols, rows-1))
	if v.overlay.Active() {
		v.overlay.Draw(scr, area)
	} else {
		for y := area.Min.Y; y < area.Max.Y; y++ {
			for x := area.Min.X; x < area.Max.X; x++ {
				scr.SetCell(x, y, &uv.Cell{Content: " ", Width: 1, Style: emptyStyle})
			}
		}
	}

	res := v.scene.LastFrame()
	hud := fmt.Sprintf(" %.0f FPS | lights %d (%d dir, %d other, %d dropped) | shadows %d dir, %d slots | tiles %dx%d | t: tiles  q: quit ",
		v.prof.LastReport().FPS, v.lights, res.DirectionalLightCount, res.OtherLightCount, res.DroppedLightCount,
		res.DirectionalShadows, res.OtherShadowSlots, res.Grid.TileCountX, res.Grid.TileCountY)
	drawText(scr, rows-1, cols, hud)
}

func drawText(scr uv.Screen, row, cols int, s string) {
	x := 0
	for _, r := range s {
		if x >= cols {
			return
		}
		scr.SetCell(x, row, &uv.Cell{Content: string(r), Width: 1, Style: hudStyle})
		x++
	}
	for ; x < cols; x++ {
		scr.SetCell(x, row, &uv.Cell{Content: " ", Width: 1, Style: hudStyle})
	}
}
