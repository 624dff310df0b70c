package forwardplus

import (
	"github.com/kkiej/literp/common"
)

// DefaultTileSize is the width and height in pixels of each screen-space tile used
// for Forward+ light culling.
const DefaultTileSize = 64

// DefaultMaxLightsPerTile is the number of light indices stored per tile when none
// is configured. Lights past it are dropped from the tile.
const DefaultMaxLightsPerTile = 31

// Settings configures the Forward+ tile grid.
type Settings struct {
	// TileSize is the tile edge in pixels. Zero or negative selects DefaultTileSize.
	TileSize int `yaml:"tile_size"`

	// MaxLightsPerTile caps each tile's light list. Zero or negative selects
	// DefaultMaxLightsPerTile.
	MaxLightsPerTile int `yaml:"max_lights_per_tile"`
}

// DefaultSettings returns the default Forward+ configuration.
func DefaultSettings() Settings {
	return Settings{TileSize: DefaultTileSize, MaxLightsPerTile: DefaultMaxLightsPerTile}
}

// Resolved returns s with non-positive values replaced by their defaults.
//
// Returns:
//   - Settings: settings safe to size a grid with
func (s Settings) Resolved() Settings {
	return Settings{
		TileSize:         common.Coalesce(max(s.TileSize, 0), DefaultTileSize),
		MaxLightsPerTile: common.Coalesce(max(s.MaxLightsPerTile, 0), DefaultMaxLightsPerTile),
	}
}
