package renderer

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// GPUDevice is a surfaceless WebGPU device for tools that upload lighting data without
// presenting a frame.
type GPUDevice struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
}

// OpenGPUDevice requests an adapter and device with no compatible surface.
//
// Parameters:
//   - forceFallbackAdapter: request the software fallback adapter
//
// Returns:
//   - *GPUDevice: the opened device
//   - error: an error if no adapter or device is available
func OpenGPUDevice(forceFallbackAdapter bool) (*GPUDevice, error) {
	d := &GPUDevice{instance: wgpu.CreateInstance(nil)}

	a, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
	})
	if err != nil {
		d.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	d.adapter = a

	dev, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Lighting Device",
	})
	if err != nil {
		d.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	d.device = dev
	d.queue = dev.GetQueue()
	return d, nil
}

// NewSink creates a GPUSink on the device.
func (d *GPUDevice) NewSink(opts ...GPUSinkOption) (*GPUSink, error) {
	return NewGPUSink(d.device, d.queue, opts...)
}

func (d *GPUDevice) Device() *wgpu.Device {
	return d.device
}

func (d *GPUDevice) Queue() *wgpu.Queue {
	return d.queue
}

// Release frees the queue, device, adapter and instance in reverse order of creation.
func (d *GPUDevice) Release() {
	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}
