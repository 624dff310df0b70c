package light

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/kkiej/literp/common"
)

const (
	// MaxDirectionalLightCount is the number of directional lights shaders can read.
	MaxDirectionalLightCount = 4

	// MaxOtherLightCount is the number of point and spot lights the Forward+ path
	// can read.
	MaxOtherLightCount = 128

	// MaxPerObjectOtherLightCount is the point and spot light capacity of the per-object
	// lighting path, bounded by the per-object light index slots.
	MaxPerObjectOtherLightCount = 64
)

// NoShadowData is the shadow data of a light that has no realtime or baked shadows.
var NoShadowData = mgl32.Vec4{0, 0, 0, -1}

// ShadowReserver hands out shadow slots as lights are accepted by the collector.
// Calls arrive in visible-light order, once per accepted light.
type ShadowReserver interface {
	// ReserveDirectionalShadows reserves cascade tiles for a directional light.
	//
	// Parameters:
	//   - l: the scene light
	//   - visibleIndex: index of the light in the visible-light list
	//
	// Returns:
	//   - mgl32.Vec4: the light's shadow data
	ReserveDirectionalShadows(l Light, visibleIndex int) mgl32.Vec4

	// ReserveOtherShadows reserves atlas tiles for a point or spot light.
	//
	// Parameters:
	//   - l: the scene light
	//   - visibleIndex: index of the light in the visible-light list
	//
	// Returns:
	//   - mgl32.Vec4: the light's shadow data
	ReserveOtherShadows(l Light, visibleIndex int) mgl32.Vec4
}

type noShadows struct{}

func (noShadows) ReserveDirectionalShadows(Light, int) mgl32.Vec4 { return NoShadowData }
func (noShadows) ReserveOtherShadows(Light, int) mgl32.Vec4       { return NoShadowData }

// CollectInput is one frame's worth of collector input.
type CollectInput struct {
	Visible []VisibleLight

	// RenderingLayerMask filters lights; a light is kept when its mask shares a bit.
	RenderingLayerMask uint32

	// UseLightsPerObject selects the per-object path with its smaller capacity.
	UseLightsPerObject bool

	// IndexMap, when non-nil, receives one entry per slot: the dense other-light index
	// for accepted point and spot lights, -1 for everything else.
	IndexMap []int

	// Shadows receives reservations for accepted lights. Nil reserves nothing.
	Shadows ShadowReserver
}

// Collector turns visible lights into the packed arrays shaders consume. The arrays
// are allocated once at full capacity and reused every frame.
type Collector struct {
	maxOther int
	logger   common.Logger

	dirLights   [MaxDirectionalLightCount]DirectionalLightData
	dirCount    int
	otherLights []OtherLightData
	otherBounds []common.Rect
	otherCount  int
	dropped     int
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithMaxOtherLights caps the point and spot light capacity of the Forward+ path.
// Values outside [1, MaxOtherLightCount] are ignored.
//
// Parameters:
//   - n: the capacity
//
// Returns:
//   - CollectorOption: a function that applies the option
func WithMaxOtherLights(n int) CollectorOption {
	return func(c *Collector) {
		if n > 0 && n <= MaxOtherLightCount {
			c.maxOther = n
		}
	}
}

// WithCollectorLogger sets the logger that reports dropped lights at debug level.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - CollectorOption: a function that applies the option
func WithCollectorLogger(logger common.Logger) CollectorOption {
	return func(c *Collector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCollector creates a Collector with the Forward+ capacity.
//
// Parameters:
//   - opts: variadic list of CollectorOption functions
//
// Returns:
//   - *Collector: the collector
func NewCollector(opts ...CollectorOption) *Collector {
	c := &Collector{
		maxOther: MaxOtherLightCount,
		logger:   common.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.otherLights = make([]OtherLightData, MaxOtherLightCount)
	c.otherBounds = make([]common.Rect, MaxOtherLightCount)
	return c
}

// Collect packs the frame's visible lights in a single pass. Lights past capacity are
// dropped in visit order and their shadows are never reserved.
//
// Parameters:
//   - in: the frame input
func (c *Collector) Collect(in CollectInput) {
	reserver := in.Shadows
	if reserver == nil {
		reserver = noShadows{}
	}
	maxOther := c.OtherCapacity(in.UseLightsPerObject)

	c.dirCount = 0
	c.otherCount = 0
	c.dropped = 0

	for i := range in.Visible {
		v := &in.Visible[i]
		newIndex := -1
		if v.Light.RenderingLayerMask()&in.RenderingLayerMask != 0 {
			switch v.Type {
			case LightTypeDirectional:
				if c.dirCount < MaxDirectionalLightCount {
					shadowData := reserver.ReserveDirectionalShadows(v.Light, i)
					c.dirLights[c.dirCount] = NewDirectionalLightData(*v, shadowData)
					c.dirCount++
				} else {
					c.drop(v)
				}
			case LightTypePoint:
				if c.otherCount < maxOther {
					newIndex = c.otherCount
					shadowData := reserver.ReserveOtherShadows(v.Light, i)
					c.otherLights[c.otherCount] = NewPointLightData(*v, shadowData)
					c.otherBounds[c.otherCount] = v.ScreenRect
					c.otherCount++
				} else {
					c.drop(v)
				}
			case LightTypeSpot:
				if c.otherCount < maxOther {
					newIndex = c.otherCount
					shadowData := reserver.ReserveOtherShadows(v.Light, i)
					c.otherLights[c.otherCount] = NewSpotLightData(*v, shadowData)
					c.otherBounds[c.otherCount] = v.ScreenRect
					c.otherCount++
				} else {
					c.drop(v)
				}
			}
		}
		if in.IndexMap != nil && i < len(in.IndexMap) {
			in.IndexMap[i] = newIndex
		}
	}

	for i := len(in.Visible); i < len(in.IndexMap); i++ {
		in.IndexMap[i] = -1
	}

	if c.dropped > 0 {
		c.logger.Debugf("dropped %d lights past capacity (directional %d, other %d)",
			c.dropped, MaxDirectionalLightCount, maxOther)
	}
}

func (c *Collector) drop(v *VisibleLight) {
	c.dropped++
	if c.logger.DebugEnabled() {
		c.logger.Debugf("%s light %s past capacity", v.Type, v.Light.ID())
	}
}

// OtherCapacity returns the point and spot light capacity of either lighting path.
//
// Parameters:
//   - useLightsPerObject: true for the per-object path
//
// Returns:
//   - int: the capacity
func (c *Collector) OtherCapacity(useLightsPerObject bool) int {
	if useLightsPerObject {
		return min(c.maxOther, MaxPerObjectOtherLightCount)
	}
	return c.maxOther
}

func (c *Collector) DirectionalLightCount() int {
	return c.dirCount
}

func (c *Collector) OtherLightCount() int {
	return c.otherCount
}

// DropCount returns how many filtered-in lights the last Collect discarded.
func (c *Collector) DropCount() int {
	return c.dropped
}

// DirectionalLights returns the packed directional lights of the last Collect.
// The slice aliases the collector's arena and is valid until the next Collect.
func (c *Collector) DirectionalLights() []DirectionalLightData {
	return c.dirLights[:c.dirCount]
}

// OtherLights returns the packed point and spot lights of the last Collect.
// The slice aliases the collector's arena and is valid until the next Collect.
func (c *Collector) OtherLights() []OtherLightData {
	return c.otherLights[:c.otherCount]
}

// OtherLightBounds returns the screen UV rectangle of each collected other light,
// index-aligned with OtherLights.
func (c *Collector) OtherLightBounds() []common.Rect {
	return c.otherBounds[:c.otherCount]
}
