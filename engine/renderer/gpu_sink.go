package renderer

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/kkiej/literp/common"
	"github.com/kkiej/literp/engine/renderer/shader"
)

// ShadowDrawFunc records the shadow casters of one draw into the atlas view. The host
// owns meshes and pipelines, so caster submission is delegated to it.
type ShadowDrawFunc func(draw ShadowDraw, target *wgpu.TextureView) error

type gpuBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
}

type shadowAtlas struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
	size    int
}

// GPUSink is a Sink backed by WebGPU resources. Named structured buffers become storage
// buffers, grown on demand. Scalar and vector globals are gathered into a
// GPULightingGlobals uniform that Flush uploads once per frame.
type GPUSink struct {
	mu sync.Mutex

	device *wgpu.Device
	queue  *wgpu.Queue
	logger common.Logger

	minBufferSize uint64
	reversedZ     bool
	drawFunc      ShadowDrawFunc

	buffers       map[string]*gpuBuffer
	atlases       map[string]*shadowAtlas
	sampler       *wgpu.Sampler
	globals       GPULightingGlobals
	globalsBuffer *wgpu.Buffer
	unknown       map[string]bool
}

var _ Sink = &GPUSink{}

// NewGPUSink creates a GPUSink on the given device. Panics if device or queue is nil.
//
// Parameters:
//   - device: the WebGPU device resources are created on
//   - queue: the queue uploads are written through
//   - opts: variadic list of GPUSinkOption functions
//
// Returns:
//   - *GPUSink: the sink
//   - error: an error if the globals layout is inconsistent or the shared sampler or
//     globals buffer cannot be created
func NewGPUSink(device *wgpu.Device, queue *wgpu.Queue, opts ...GPUSinkOption) (*GPUSink, error) {
	if device == nil || queue == nil {
		panic("renderer: NewGPUSink requires a device and a queue")
	}
	s := &GPUSink{
		device:        device,
		queue:         queue,
		logger:        common.NewNopLogger(),
		minBufferSize: 16,
		buffers:       map[string]*gpuBuffer{},
		atlases:       map[string]*shadowAtlas{},
		unknown:       map[string]bool{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := shader.CheckSize("LightingGlobals", s.globals.Size(), GPULightingGlobalsSource); err != nil {
		return nil, fmt.Errorf("failed to lay out lighting globals: %w", err)
	}

	samp, err := device.CreateSampler(shadowSamplerDescriptor(s.reversedZ))
	if err != nil {
		return nil, fmt.Errorf("failed to create comparison sampler: %w", err)
	}
	s.sampler = samp

	globalsBuf, err := device.CreateBuffer(globalsBufferDescriptor(s.globals.Size()))
	if err != nil {
		samp.Release()
		return nil, fmt.Errorf("failed to create lighting globals buffer: %w", err)
	}
	s.globalsBuffer = globalsBuf

	return s, nil
}

func (s *GPUSink) SetGlobalInt(name string, value int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.globals.setInt(name, value) {
		s.warnUnknown(name)
	}
}

func (s *GPUSink) SetGlobalFloat(name string, value float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name != PropShadowPancaking {
		s.warnUnknown(name)
		return
	}
	s.globals.ShadowPancaking = value
}

func (s *GPUSink) SetGlobalVector(name string, value mgl32.Vec4) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.globals.setVector(name, value) {
		s.warnUnknown(name)
	}
}

func (s *GPUSink) SetKeyword(name string, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.globals.setKeyword(name, enabled) {
		s.warnUnknown(name)
	}
}

// SetBufferData uploads data into the named storage buffer, recreating it when it is
// too small. Empty data still allocates the minimum size so bind groups stay valid.
func (s *GPUSink) SetBufferData(name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buffers[name]
	var current uint64
	if ok {
		current = b.size
	}
	needed, grow := storageBufferSize(current, ok, len(data), s.minBufferSize)
	if grow {
		if ok {
			b.buffer.Release()
		}
		buf, err := s.device.CreateBuffer(storageBufferDescriptor(name, needed))
		if err != nil {
			delete(s.buffers, name)
			return fmt.Errorf("failed to create buffer %s: %w", name, err)
		}
		b = &gpuBuffer{buffer: buf, size: needed}
		s.buffers[name] = b
		s.logger.Debugf("allocated %s (%d bytes)", name, needed)
	}

	if len(data) == 0 {
		return nil
	}
	if err := s.queue.WriteBuffer(b.buffer, 0, data); err != nil {
		return fmt.Errorf("failed to write buffer %s: %w", name, err)
	}
	return nil
}

// SetShadowAtlas binds a Depth32Float atlas to name, reusing the current texture when
// the size is unchanged.
func (s *GPUSink) SetShadowAtlas(name string, size int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	size = shadowAtlasSize(size)
	if a, ok := s.atlases[name]; ok {
		if a.size == size {
			return nil
		}
		a.view.Release()
		a.texture.Release()
		delete(s.atlases, name)
	}

	tex, err := s.device.CreateTexture(shadowAtlasDescriptor(name, size))
	if err != nil {
		return fmt.Errorf("failed to create shadow depth texture %s: %w", name, err)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("failed to create shadow depth texture view %s: %w", name, err)
	}

	s.atlases[name] = &shadowAtlas{texture: tex, view: view, size: size}
	return nil
}

// DrawShadows forwards the draw to the ShadowDrawFunc together with its atlas view.
func (s *GPUSink) DrawShadows(draw ShadowDraw) error {
	s.mu.Lock()
	a, ok := s.atlases[draw.Atlas]
	fn := s.drawFunc
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("shadow atlas %s is not bound", draw.Atlas)
	}
	if fn == nil {
		return nil
	}
	if err := fn(draw, a.view); err != nil {
		return fmt.Errorf("failed to draw shadows for light %d: %w", draw.VisibleLightIndex, err)
	}
	return nil
}

// Flush uploads the gathered globals. Call once per frame after the lighting pass
// has rendered.
//
// Returns:
//   - error: an error if the globals upload fails
func (s *GPUSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.queue.WriteBuffer(s.globalsBuffer, 0, s.globals.Marshal()); err != nil {
		return fmt.Errorf("failed to write buffer %s: %w", globalsBufferLabel, err)
	}
	return nil
}

func (s *GPUSink) Globals() GPULightingGlobals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.globals
}

func (s *GPUSink) GlobalsBuffer() *wgpu.Buffer {
	return s.globalsBuffer
}

func (s *GPUSink) Sampler() *wgpu.Sampler {
	return s.sampler
}

// Buffer returns the storage buffer bound to name, or nil.
func (s *GPUSink) Buffer(name string) *wgpu.Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.buffers[name]; ok {
		return b.buffer
	}
	return nil
}

// AtlasView returns the depth view bound to name, or nil.
func (s *GPUSink) AtlasView(name string) *wgpu.TextureView {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.atlases[name]; ok {
		return a.view
	}
	return nil
}

// Release frees every GPU resource owned by the sink.
func (s *GPUSink) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, b := range s.buffers {
		b.buffer.Release()
		delete(s.buffers, name)
	}
	for name, a := range s.atlases {
		a.view.Release()
		a.texture.Release()
		delete(s.atlases, name)
	}
	if s.globalsBuffer != nil {
		s.globalsBuffer.Release()
		s.globalsBuffer = nil
	}
	if s.sampler != nil {
		s.sampler.Release()
		s.sampler = nil
	}
}

func (s *GPUSink) warnUnknown(name string) {
	if s.unknown[name] {
		return
	}
	s.unknown[name] = true
	s.logger.Warnf("global %s has no slot in the lighting globals block", name)
}

const globalsBufferLabel = "Lighting Globals Uniform Buffer"

// storageBufferSize returns the size a storage buffer needs to hold dataLen bytes and
// whether the currently bound buffer of size current must be replaced. Buffers only grow.
//
// Parameters:
//   - current: size of the bound buffer in bytes
//   - bound: whether a buffer is bound at all
//   - dataLen: bytes about to be uploaded
//   - minSize: the smallest buffer the sink allocates
//
// Returns:
//   - uint64: the size to allocate when growing, otherwise the required size
//   - bool: true when a new buffer must be created
func storageBufferSize(current uint64, bound bool, dataLen int, minSize uint64) (uint64, bool) {
	needed := max(uint64(dataLen), minSize)
	if bound && current >= needed {
		return needed, false
	}
	return needed, true
}

// shadowAtlasSize clamps a requested atlas size so placeholder atlases stay bindable.
func shadowAtlasSize(size int) int {
	return max(size, 1)
}

func storageBufferDescriptor(name string, size uint64) *wgpu.BufferDescriptor {
	return &wgpu.BufferDescriptor{
		Label:            name + " Storage Buffer",
		Size:             size,
		Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	}
}

func globalsBufferDescriptor(size int) *wgpu.BufferDescriptor {
	return &wgpu.BufferDescriptor{
		Label:            globalsBufferLabel,
		Size:             uint64(size),
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	}
}

func shadowAtlasDescriptor(name string, size int) *wgpu.TextureDescriptor {
	return &wgpu.TextureDescriptor{
		Label: name + " Shadow Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(size),
			Height:             uint32(size),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth32Float,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	}
}

// shadowSamplerDescriptor returns the comparison sampler used for every shadow atlas.
// Reversed depth compares with greater-than.
func shadowSamplerDescriptor(reversedZ bool) *wgpu.SamplerDescriptor {
	compare := wgpu.CompareFunctionLess
	if reversedZ {
		compare = wgpu.CompareFunctionGreater
	}
	return &wgpu.SamplerDescriptor{
		Label:         "Shadow Comparison Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		Compare:       compare,
		MaxAnisotropy: 1,
	}
}
