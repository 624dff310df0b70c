package lighting

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kkiej/literp/common"
	"github.com/kkiej/literp/engine/debug"
	"github.com/kkiej/literp/engine/forwardplus"
	"github.com/kkiej/literp/engine/light"
	"github.com/kkiej/literp/engine/profiler"
	"github.com/kkiej/literp/engine/renderer"
	"github.com/kkiej/literp/engine/settings"
	"github.com/kkiej/literp/engine/shadow"
)

// SampleName is the profiler sample recorded around Setup and Render.
const SampleName = "Light And Shadow Pass"

// ErrNotSetUp is returned by Render when no Setup is pending.
var ErrNotSetUp = errors.New("lighting pass rendered without setup")

// FrameInput is everything the pass needs for one camera frame.
type FrameInput struct {
	Visible []light.VisibleLight

	// AttachmentWidth and AttachmentHeight are the color attachment size in pixels.
	AttachmentWidth  int
	AttachmentHeight int

	// Query answers caster bounds and shadow matrix requests. Nil means no casters.
	Query shadow.CasterQuery

	RenderingLayerMask uint32

	// IndexMap receives the per-object light index map in per-object mode. It is
	// ignored in Forward+ mode.
	IndexMap []int

	Settings settings.Pipeline
}

// Resources is a snapshot of the pass state after Setup.
type Resources struct {
	UseLightsPerObject    bool
	DirectionalLightCount int
	OtherLightCount       int
	DroppedLightCount     int
	DirectionalShadows    int
	OtherShadowSlots      int
	Grid                  forwardplus.Grid
	TileDataSize          int

	// Tiles aliases the pass arena. It is only complete after Render and valid until
	// the next Setup.
	Tiles []int32
}

// Pass collects lights, reserves and renders shadows and builds the Forward+ tile
// lists for one camera at a time.
type Pass struct {
	logger   common.Logger
	profiler *profiler.Profiler
	culler   forwardplus.Culler
	overlay  debug.Overlay

	collector *light.Collector
	shadows   *shadow.Shadows

	settings     settings.Pipeline
	ready        bool
	grid         forwardplus.Grid
	tileDataSize int
	tileData     []int32
	job          forwardplus.Job
	handle       *forwardplus.Handle
}

// NewPass creates a lighting pass.
//
// Parameters:
//   - options: functional options to configure the pass
//
// Returns:
//   - *Pass: the pass
func NewPass(options ...PassOption) *Pass {
	p := &Pass{
		logger: common.NewNopLogger(),
	}
	for _, option := range options {
		option(p)
	}
	if p.culler == nil {
		p.culler = forwardplus.NewCuller()
	}
	p.collector = light.NewCollector(light.WithCollectorLogger(p.logger))
	return p
}

// Setup collects the frame's lights, reserves shadows and schedules the tile job.
// The job runs on the culler's pool until Render joins it.
//
// Parameters:
//   - in: the frame input
func (p *Pass) Setup(in FrameInput) {
	sample := p.profiler.Begin(SampleName)
	defer sample.End()

	// a previous frame's job may still be writing the arena
	p.handle.Complete()
	p.handle = nil

	p.settings = in.Settings
	legacy := in.Settings.UseLightsPerObject
	if p.shadows == nil || p.shadows.Convention() != in.Settings.Convention {
		p.shadows = shadow.NewShadows(in.Settings.Convention)
	}
	p.shadows.Setup(in.Query, in.Settings.Shadows)

	var indexMap []int
	if legacy {
		indexMap = in.IndexMap
	}
	p.collector.Collect(light.CollectInput{
		Visible:            in.Visible,
		RenderingLayerMask: in.RenderingLayerMask,
		UseLightsPerObject: legacy,
		IndexMap:           indexMap,
		Shadows:            p.shadows,
	})

	p.ready = true
	if legacy {
		p.grid = forwardplus.Grid{}
		p.tileDataSize = 0
		p.tileData = p.tileData[:0]
		return
	}

	fp := in.Settings.ForwardPlus.Resolved()
	p.grid = forwardplus.NewGrid(in.AttachmentWidth, in.AttachmentHeight, fp)
	p.tileDataSize = forwardplus.TileDataSize(fp.MaxLightsPerTile, len(in.Visible))
	n := p.grid.TileCount() * p.tileDataSize
	if cap(p.tileData) < n {
		p.logger.Debugf("growing tile arena to %d entries (%d x %d tiles)", n, p.grid.TileCountX, p.grid.TileCountY)
		p.tileData = make([]int32, n)
	}
	p.tileData = p.tileData[:n]
	clear(p.tileData)

	p.job = forwardplus.Job{
		LightBounds:      p.collector.OtherLightBounds(),
		TileData:         p.tileData,
		OtherLightCount:  p.collector.OtherLightCount(),
		TileScreenUVSize: p.grid.TileScreenUVSize(),
		MaxLightsPerTile: fp.MaxLightsPerTile,
		TilesPerRow:      p.grid.TileCountX,
		TileDataSize:     p.tileDataSize,
	}
	p.handle = p.culler.Schedule(&p.job, p.grid.TileCount())
}

// Render writes the frame's lights, shadows and tiles to sink. It joins the tile job
// scheduled by Setup, so it must follow exactly one Setup.
//
// Parameters:
//   - sink: the frame's output
//
// Returns:
//   - error: ErrNotSetUp, or the first sink error wrapped
func (p *Pass) Render(sink renderer.Sink) error {
	if !p.ready {
		return ErrNotSetUp
	}
	sample := p.profiler.Begin(SampleName)
	defer sample.End()
	defer func() {
		p.handle.Complete()
		p.ready = false
	}()

	legacy := p.settings.UseLightsPerObject
	sink.SetGlobalInt(renderer.PropDirectionalLightCount, int32(p.collector.DirectionalLightCount()))
	sink.SetGlobalInt(renderer.PropOtherLightCount, int32(p.collector.OtherLightCount()))
	if legacy {
		if err := setArrays(sink, light.LegacyDirectionalArrays(p.collector.DirectionalLights())); err != nil {
			return err
		}
		if err := setArrays(sink, light.LegacyOtherArrays(p.collector.OtherLights())); err != nil {
			return err
		}
	} else {
		if err := sink.SetBufferData(renderer.PropDirectionalLightData, light.MarshalDirectionalLights(p.collector.DirectionalLights())); err != nil {
			return fmt.Errorf("failed to upload directional lights: %w", err)
		}
		if err := sink.SetBufferData(renderer.PropOtherLightData, light.MarshalOtherLights(p.collector.OtherLights())); err != nil {
			return fmt.Errorf("failed to upload other lights: %w", err)
		}
	}
	sink.SetKeyword(renderer.KeywordLightsPerObject, legacy)

	if err := p.shadows.Render(sink); err != nil {
		return err
	}

	if legacy {
		return nil
	}

	p.handle.Complete()
	if err := sink.SetBufferData(renderer.PropForwardPlusTiles, forwardplus.MarshalTileData(p.tileData)); err != nil {
		return fmt.Errorf("failed to upload forward+ tiles: %w", err)
	}
	sink.SetGlobalVector(renderer.PropForwardPlusSettings, forwardplus.TileSettings(p.grid, p.tileDataSize))

	if p.overlay != nil && p.overlay.Active() {
		if err := p.overlay.Render(p.tileView()); err != nil {
			return fmt.Errorf("failed to render tile overlay: %w", err)
		}
	}
	return nil
}

func setArrays(sink renderer.Sink, arrays map[string][]byte) error {
	names := make([]string, 0, len(arrays))
	for name := range arrays {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := sink.SetBufferData(name, arrays[name]); err != nil {
			return fmt.Errorf("failed to upload %s: %w", name, err)
		}
	}
	return nil
}

func (p *Pass) tileView() debug.TileView {
	return debug.TileView{
		Grid:             p.grid,
		TileDataSize:     p.tileDataSize,
		MaxLightsPerTile: p.settings.ForwardPlus.Resolved().MaxLightsPerTile,
		Data:             p.tileData,
	}
}

// Resources returns a snapshot of the current frame's pass state.
func (p *Pass) Resources() Resources {
	r := Resources{
		UseLightsPerObject:    p.settings.UseLightsPerObject,
		DirectionalLightCount: p.collector.DirectionalLightCount(),
		OtherLightCount:       p.collector.OtherLightCount(),
		DroppedLightCount:     p.collector.DropCount(),
		Grid:                  p.grid,
		TileDataSize:          p.tileDataSize,
		Tiles:                 p.tileData,
	}
	if p.shadows != nil {
		r.DirectionalShadows = p.shadows.Allocator().DirectionalCount()
		r.OtherShadowSlots = p.shadows.Allocator().OtherSlotCount()
	}
	return r
}

// Collector returns the pass's light collector.
func (p *Pass) Collector() *light.Collector {
	return p.collector
}

// Shadows returns the pass's shadow state, nil before the first Setup.
func (p *Pass) Shadows() *shadow.Shadows {
	return p.shadows
}
