package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkiej/literp/engine/forwardplus"
	"github.com/kkiej/literp/engine/shadow"
)

func TestDefaultIsValid(t *testing.T) {
	p := Default()
	require.NoError(t, p.Validate())
	assert.False(t, p.UseLightsPerObject)
	assert.Equal(t, forwardplus.DefaultSettings(), p.ForwardPlus)
	assert.Equal(t, shadow.ConventionWebGPU, p.Convention)
	assert.False(t, p.Debug.ShowTiles)
}

func TestParseOverlaysDefaults(t *testing.T) {
	p, err := Parse([]byte(`
use_lights_per_object: true
forward_plus:
  tile_size: 32
shadows:
  max_distance: 50
  filter_quality: high
  shadowmask_mode: distance_shadowmask
  directional:
    cascade_count: 2
convention:
  uses_reversed_z: true
debug:
  show_tiles: true
`))
	require.NoError(t, err)
	assert.True(t, p.UseLightsPerObject)
	assert.Equal(t, 32, p.ForwardPlus.TileSize)
	assert.Equal(t, forwardplus.DefaultMaxLightsPerTile, p.ForwardPlus.MaxLightsPerTile)
	assert.Equal(t, float32(50), p.Shadows.MaxDistance)
	assert.Equal(t, shadow.FilterQualityHigh, p.Shadows.FilterQuality)
	assert.Equal(t, shadow.ShadowmaskModeDistance, p.Shadows.ShadowmaskMode)
	assert.Equal(t, 2, p.Shadows.Directional.CascadeCount)
	assert.Equal(t, shadow.DefaultSettings().Directional.AtlasSize, p.Shadows.Directional.AtlasSize)
	assert.True(t, p.Convention.UsesReversedZ)
	assert.True(t, p.Convention.CubemapYFlip)
	assert.True(t, p.Debug.ShowTiles)
	assert.Equal(t, float32(0.5), p.Debug.Opacity)
}

func TestParseEmpty(t *testing.T) {
	p, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown key", "bogus: 1\n", "failed to decode settings"},
		{"bad filter", "shadows:\n  filter_quality: ultra\n", "unknown filter quality"},
		{"cascades", "shadows:\n  directional:\n    cascade_count: 9\n", "cascade_count"},
		{"atlas", "shadows:\n  other:\n    atlas_size: 300\n", "other atlas_size"},
		{"tile size", "forward_plus:\n  tile_size: -1\n", "tile_size"},
		{"opacity", "debug:\n  opacity: 2\n", "opacity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadAndMarshalRoundTrip(t *testing.T) {
	p := Default()
	p.Shadows.MaxDistance = 42
	data, err := p.Marshal()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, p, loaded)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read settings file")
}
