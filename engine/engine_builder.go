package engine

import (
	"time"

	"github.com/kkiej/literp/common"
	"github.com/kkiej/literp/engine/profiler"
	"github.com/kkiej/literp/engine/renderer"
	"github.com/kkiej/literp/engine/scene"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler sets the profiler ticked once per frame.
//
// Parameters:
//   - p: the profiler (nil is ignored)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		if p != nil {
			e.profiler = p
		}
	}
}

// WithLogger sets the logger for frame errors and the default profiler.
//
// Parameters:
//   - logger: the logger (nil is ignored)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger common.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTickRate sets the engine tick rate in frames per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithSink sets the sink every scene renders into.
//
// Parameters:
//   - sink: the frame output (nil is ignored)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSink(sink renderer.Sink) EngineBuilderOption {
	return func(e *engine) {
		if sink != nil {
			e.sink = sink
		}
	}
}

// WithSize sets the initial color attachment size. Defaults to 1280x720.
//
// Parameters:
//   - width: the attachment width in pixels
//   - height: the attachment height in pixels
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSize(width, height int) EngineBuilderOption {
	return func(e *engine) {
		e.width = max(width, 0)
		e.height = max(height, 0)
	}
}

// WithScene registers a scene at the given z-index key during engine construction.
//
// Parameters:
//   - key: the z-index determining render order (lower renders first)
//   - s: the Scene to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(key int, s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scenes[key] = s
	}
}
