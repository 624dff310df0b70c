package renderer

import (
	"github.com/kkiej/literp/common"
)

// GPUSinkOption is a function that configures a GPUSink during construction.
type GPUSinkOption func(*GPUSink)

// WithSinkLogger sets the logger used for allocation and unknown-global messages.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - GPUSinkOption: a function that applies the logger option to a GPUSink
func WithSinkLogger(logger common.Logger) GPUSinkOption {
	return func(s *GPUSink) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMinBufferSize sets the smallest storage buffer the sink allocates.
//
// Parameters:
//   - size: minimum size in bytes, rounded up to a multiple of 16
//
// Returns:
//   - GPUSinkOption: a function that applies the size option to a GPUSink
func WithMinBufferSize(size uint64) GPUSinkOption {
	return func(s *GPUSink) {
		s.minBufferSize = max((size+15)&^15, 16)
	}
}

// WithReversedZ switches the comparison sampler to greater-than for reversed depth.
//
// Parameters:
//   - reversed: true when depth is reversed
//
// Returns:
//   - GPUSinkOption: a function that applies the depth option to a GPUSink
func WithReversedZ(reversed bool) GPUSinkOption {
	return func(s *GPUSink) {
		s.reversedZ = reversed
	}
}

// WithShadowDrawFunc sets the callback that records shadow casters into atlas tiles.
//
// Parameters:
//   - fn: the caster callback
//
// Returns:
//   - GPUSinkOption: a function that applies the callback option to a GPUSink
func WithShadowDrawFunc(fn ShadowDrawFunc) GPUSinkOption {
	return func(s *GPUSink) {
		s.drawFunc = fn
	}
}
