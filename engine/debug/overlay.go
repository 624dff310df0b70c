package debug

import (
	"image"
	"image/color"
	"sync"

	uv "github.com/charmbracelet/ultraviolet"
	xdraw "golang.org/x/image/draw"

	"github.com/kkiej/literp/engine/forwardplus"
)

// TileView is a read-only snapshot of one frame's Forward+ tile buffer.
type TileView struct {
	Grid             forwardplus.Grid
	TileDataSize     int
	MaxLightsPerTile int
	Data             []int32
}

// LightCount returns the light count stored in the header of tile (x, y).
func (v TileView) LightCount(x, y int) int {
	if x < 0 || y < 0 || x >= v.Grid.TileCountX || y >= v.Grid.TileCountY {
		return 0
	}
	header := (y*v.Grid.TileCountX + x) * v.TileDataSize
	if header >= len(v.Data) {
		return 0
	}
	return int(v.Data[header])
}

// Overlay draws debugging visuals over a lit frame.
type Overlay interface {
	// Active reports whether the overlay wants to draw this frame.
	//
	// Returns:
	//   - bool: true when Render should be called
	Active() bool

	// Render consumes the frame's tile data.
	//
	// Parameters:
	//   - view: the tile snapshot
	//
	// Returns:
	//   - error: an error if the overlay could not record the frame
	Render(view TileView) error
}

// TileOverlay is a heat map of per-tile light counts. Its settings may be changed from
// any goroutine while frames are rendering.
type TileOverlay struct {
	mu       sync.RWMutex
	settings Settings
	countsX  int
	countsY  int
	counts   []int
	maxCount int
}

var _ Overlay = &TileOverlay{}

// NewTileOverlay creates a TileOverlay with the given settings.
//
// Parameters:
//   - settings: initial overlay settings
//
// Returns:
//   - *TileOverlay: the overlay
func NewTileOverlay(settings Settings) *TileOverlay {
	return &TileOverlay{settings: settings}
}

// Settings returns the current overlay settings.
func (o *TileOverlay) Settings() Settings {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.settings
}

// SetSettings replaces the overlay settings.
func (o *TileOverlay) SetSettings(s Settings) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.settings = s
}

// Toggle flips ShowTiles and returns the new value.
func (o *TileOverlay) Toggle() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.settings.ShowTiles = !o.settings.ShowTiles
	return o.settings.ShowTiles
}

func (o *TileOverlay) Active() bool {
	return o.Settings().Active()
}

func (o *TileOverlay) Render(view TileView) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	n := view.Grid.TileCount()
	if cap(o.counts) < n {
		o.counts = make([]int, n)
	}
	o.counts = o.counts[:n]
	o.countsX, o.countsY = view.Grid.TileCountX, view.Grid.TileCountY
	o.maxCount = max(view.MaxLightsPerTile, 1)
	for y := 0; y < o.countsY; y++ {
		for x := 0; x < o.countsX; x++ {
			o.counts[y*o.countsX+x] = view.LightCount(x, y)
		}
	}
	return nil
}

// Count returns the recorded light count of tile (x, y), row 0 at the bottom.
func (o *TileOverlay) Count(x, y int) int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if x < 0 || y < 0 || x >= o.countsX || y >= o.countsY {
		return 0
	}
	return o.counts[y*o.countsX+x]
}

// HeatColor maps a tile count to a color ramp from blue through green to red. Empty
// tiles are transparent.
//
// Parameters:
//   - count: lights in the tile
//   - maxCount: the per-tile cap
//   - opacity: overlay alpha in [0,1]
//
// Returns:
//   - color.RGBA: the non-premultiplied tile color
func HeatColor(count, maxCount int, opacity float32) color.RGBA {
	if count <= 0 {
		return color.RGBA{}
	}
	t := min(float32(count)/float32(max(maxCount, 1)), 1)
	var r, g, b float32
	if t < 0.5 {
		g = t * 2
		b = 1 - g
	} else {
		r = (t - 0.5) * 2
		g = 1 - r
	}
	a := min(max(opacity, 0), 1)
	return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: uint8(a * 255)}
}

// Image renders the last recorded frame as a width x height heat map. The top image
// row shows the top tile row.
//
// Parameters:
//   - width: image width in pixels
//   - height: image height in pixels
//
// Returns:
//   - *image.RGBA: the overlay image, fully transparent when nothing was recorded
func (o *TileOverlay) Image(width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))

	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.countsX == 0 || o.countsY == 0 || width <= 0 || height <= 0 {
		return dst
	}

	src := image.NewNRGBA(image.Rect(0, 0, o.countsX, o.countsY))
	for y := 0; y < o.countsY; y++ {
		for x := 0; x < o.countsX; x++ {
			c := HeatColor(o.counts[y*o.countsX+x], o.maxCount, o.settings.Opacity)
			src.SetNRGBA(x, o.countsY-1-y, color.NRGBA(c))
		}
	}
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// Draw paints the overlay into area of a terminal screen. Each cell holds two vertical
// pixels drawn as an upper half block.
//
// Parameters:
//   - scr: the target screen
//   - area: the cell rectangle to fill
func (o *TileOverlay) Draw(scr uv.Screen, area uv.Rectangle) {
	width, height := area.Dx(), area.Dy()*2
	img := o.Image(width, height)
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: cellColor(img.RGBAAt(x, topY)),
					Bg: cellColor(img.RGBAAt(x, topY+1)),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

func cellColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}
