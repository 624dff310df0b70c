package lighting

import (
	"github.com/kkiej/literp/common"
	"github.com/kkiej/literp/engine/debug"
	"github.com/kkiej/literp/engine/forwardplus"
	"github.com/kkiej/literp/engine/profiler"
)

// PassOption configures a Pass.
type PassOption func(*Pass)

// WithCuller sets the culler that runs Forward+ tile jobs.
//
// Parameters:
//   - c: the culler (nil selects a default pool)
//
// Returns:
//   - PassOption: the option
func WithCuller(c forwardplus.Culler) PassOption {
	return func(p *Pass) {
		p.culler = c
	}
}

// WithLogger sets the logger for the pass and its collector.
//
// Parameters:
//   - logger: the logger (nil is ignored)
//
// Returns:
//   - PassOption: the option
func WithLogger(logger common.Logger) PassOption {
	return func(p *Pass) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithProfiler records SampleName around Setup and Render.
func WithProfiler(prof *profiler.Profiler) PassOption {
	return func(p *Pass) {
		p.profiler = prof
	}
}

// WithOverlay sets the debug overlay fed with each frame's tiles.
func WithOverlay(o debug.Overlay) PassOption {
	return func(p *Pass) {
		p.overlay = o
	}
}
