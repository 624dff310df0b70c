package engine

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kkiej/literp/common"
	"github.com/kkiej/literp/engine/profiler"
	"github.com/kkiej/literp/engine/renderer"
	"github.com/kkiej/literp/engine/scene"
)

// resetter is implemented by sinks that record a frame's output, such as
// renderer.MemorySink.
type resetter interface {
	Reset()
}

// flusher is implemented by sinks that commit a frame's output, such as renderer.GPUSink.
type flusher interface {
	Flush() error
}

// engine implements the Engine interface.
type engine struct {
	mu *sync.Mutex

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	logger common.Logger

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	scenes map[int]scene.Scene

	sink   renderer.Sink
	width  int
	height int
}

// Engine drives the frame loop: each tick it runs the tick callback, renders every
// active scene's lighting into the sink and runs the render callback.
type Engine interface {
	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// Profiler returns the engine's profiler. Share it with lighting passes to get
	// their samples in the same report.
	//
	// Returns:
	//   - *profiler.Profiler: the profiler
	Profiler() *profiler.Profiler

	// SetTickRate sets the engine tick rate in frames per second.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called at the start of every frame.
	// Use this for input processing and animation updates.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after the scenes of a frame
	// were rendered. Use this to present or inspect the frame's output.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// AddScene registers a scene at the given z-index key.
	// Scenes are rendered in ascending key order.
	//
	// Parameters:
	//   - key: the z-index determining render order (lower renders first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given z-index key.
	// Returns nil if no scene exists at that key.
	//
	// Parameters:
	//   - key: the z-index of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// Sink returns the sink scenes render into.
	Sink() renderer.Sink

	// Resize sets the color attachment size and updates every scene camera's aspect.
	//
	// Parameters:
	//   - width: the attachment width in pixels
	//   - height: the attachment height in pixels
	Resize(width, height int)

	// Size returns the color attachment size in pixels.
	Size() (width, height int)

	// Step runs one frame synchronously.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last frame in seconds
	//
	// Returns:
	//   - error: the joined errors of every scene that failed this frame
	Step(deltaTime float32) error

	// Run steps frames at the tick rate until ctx is done or Quit is called.
	// Frame errors are logged and do not stop the loop.
	//
	// Parameters:
	//   - ctx: the context bounding the loop
	//
	// Returns:
	//   - error: ctx.Err() when the context ended the loop, nil after Quit
	Run(ctx context.Context) error

	// Quit stops a running loop. Safe to call multiple times.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options. The engine
// renders into a renderer.MemorySink unless WithSink provides another.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:               &sync.Mutex{},
		tickRateChannel:  make(chan time.Duration, 1),
		quitChannel:      make(chan struct{}),
		logger:           common.NewNopLogger(),
		scenes:           make(map[int]scene.Scene),
		profilingEnabled: false,
		engineTickRate:   time.Second / 60,
		width:            1280,
		height:           720,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}
	if e.sink == nil {
		e.sink = renderer.NewMemorySink()
	}
	if e.height > 0 {
		for _, s := range e.scenes {
			s.Camera().SetAspect(float32(e.width) / float32(e.height))
		}
	}

	return e
}

// Quit signals the loop to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) Run(ctx context.Context) error {
	e.running.Store(true)
	defer e.running.Store(false)

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.quitChannel:
			return nil
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if err := e.Step(dt); err != nil {
				e.logger.Errorf("frame failed: %v", err)
			}
		}
	}
}

func (e *engine) Step(deltaTime float32) error {
	if e.tickCallback != nil {
		e.tickCallback(deltaTime)
	}

	e.mu.Lock()
	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	// Collect active scenes in ascending z-index order.
	var activeScenes []scene.Scene
	for _, k := range keys {
		if s := e.scenes[k]; s.Active() {
			activeScenes = append(activeScenes, s)
		}
	}
	sink, width, height := e.sink, e.width, e.height
	e.mu.Unlock()

	if r, ok := sink.(resetter); ok {
		r.Reset()
	}

	var errs []error
	for _, s := range activeScenes {
		if _, err := s.RenderFrame(width, height, sink); err != nil {
			errs = append(errs, err)
		}
	}
	if f, ok := sink.(flusher); ok {
		if err := f.Flush(); err != nil {
			errs = append(errs, err)
		}
	}

	if e.renderCallback != nil {
		e.renderCallback(deltaTime)
	}

	if e.profilingEnabled {
		e.profiler.Tick()
	}
	return errors.Join(errs...)
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if !e.running.Load() {
		e.engineTickRate = newRate
		return
	}

	// Non-blocking send - if the channel is full, replace the pending value
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenes[key] = s
	if e.height > 0 {
		s.Camera().SetAspect(float32(e.width) / float32(e.height))
	}
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}

func (e *engine) Sink() renderer.Sink {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sink
}

func (e *engine) Resize(width, height int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.width = max(width, 0)
	e.height = max(height, 0)
	if e.height == 0 {
		return
	}
	for _, s := range e.scenes {
		s.Camera().SetAspect(float32(e.width) / float32(e.height))
	}
}

func (e *engine) Size() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.width, e.height
}
