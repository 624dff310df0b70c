package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
)

// MemorySink records every Sink call in memory. Used by tools that inspect the
// lighting output without a GPU, and by tests.
type MemorySink struct {
	ints     map[string]int32
	floats   map[string]float32
	vectors  map[string]mgl32.Vec4
	keywords map[string]bool
	buffers  map[string][]byte
	atlases  map[string]int
	draws    []ShadowDraw
}

var _ Sink = &MemorySink{}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	s := &MemorySink{}
	s.Reset()
	return s
}

// Reset forgets everything recorded so far.
func (s *MemorySink) Reset() {
	s.ints = map[string]int32{}
	s.floats = map[string]float32{}
	s.vectors = map[string]mgl32.Vec4{}
	s.keywords = map[string]bool{}
	s.buffers = map[string][]byte{}
	s.atlases = map[string]int{}
	s.draws = s.draws[:0]
}

func (s *MemorySink) SetGlobalInt(name string, value int32) {
	s.ints[name] = value
}

func (s *MemorySink) SetGlobalFloat(name string, value float32) {
	s.floats[name] = value
}

func (s *MemorySink) SetGlobalVector(name string, value mgl32.Vec4) {
	s.vectors[name] = value
}

func (s *MemorySink) SetKeyword(name string, enabled bool) {
	s.keywords[name] = enabled
}

// SetBufferData stores a copy of data so callers may reuse their buffers.
func (s *MemorySink) SetBufferData(name string, data []byte) error {
	s.buffers[name] = append([]byte(nil), data...)
	return nil
}

func (s *MemorySink) SetShadowAtlas(name string, size int) error {
	s.atlases[name] = size
	return nil
}

func (s *MemorySink) DrawShadows(draw ShadowDraw) error {
	s.draws = append(s.draws, draw)
	return nil
}

func (s *MemorySink) Int(name string) (int32, bool) {
	v, ok := s.ints[name]
	return v, ok
}

func (s *MemorySink) Float(name string) (float32, bool) {
	v, ok := s.floats[name]
	return v, ok
}

func (s *MemorySink) Vector(name string) (mgl32.Vec4, bool) {
	v, ok := s.vectors[name]
	return v, ok
}

// Keyword returns the last state set for a keyword; unset keywords are disabled.
func (s *MemorySink) Keyword(name string) bool {
	return s.keywords[name]
}

func (s *MemorySink) Buffer(name string) ([]byte, bool) {
	v, ok := s.buffers[name]
	return v, ok
}

// Atlas returns the size bound to an atlas name; zero is the placeholder.
func (s *MemorySink) Atlas(name string) (int, bool) {
	v, ok := s.atlases[name]
	return v, ok
}

// Draws returns the shadow draws in submission order.
func (s *MemorySink) Draws() []ShadowDraw {
	return s.draws
}
