package profiler

import (
	"time"

	"github.com/kkiej/literp/common"
)

// ProfilerOption configures a Profiler.
type ProfilerOption func(*Profiler)

// WithLogger sets the logger that receives the periodic stats line.
//
// Parameters:
//   - logger: the logger (nil is ignored)
//
// Returns:
//   - ProfilerOption: the option
func WithLogger(logger common.Logger) ProfilerOption {
	return func(p *Profiler) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithInterval sets how often Tick logs.
//
// Parameters:
//   - d: the interval (non-positive values are ignored)
//
// Returns:
//   - ProfilerOption: the option
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}
