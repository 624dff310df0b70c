package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kkiej/literp/engine/debug"
	"github.com/kkiej/literp/engine/forwardplus"
	"github.com/kkiej/literp/engine/shadow"
)

// Pipeline is the full configuration of the lighting pass.
type Pipeline struct {
	// UseLightsPerObject selects the legacy per-object light lists instead of Forward+.
	UseLightsPerObject bool                      `yaml:"use_lights_per_object"`
	ForwardPlus        forwardplus.Settings      `yaml:"forward_plus"`
	Shadows            shadow.Settings           `yaml:"shadows"`
	Convention         shadow.GraphicsConvention `yaml:"convention"`
	Debug              debug.Settings            `yaml:"debug"`
}

// Default returns the pipeline defaults for a WebGPU back end.
func Default() Pipeline {
	return Pipeline{
		UseLightsPerObject: false,
		ForwardPlus:        forwardplus.DefaultSettings(),
		Shadows:            shadow.DefaultSettings(),
		Convention:         shadow.ConventionWebGPU,
		Debug:              debug.DefaultSettings(),
	}
}

// Load reads a YAML file on top of the defaults and validates the result.
//
// Parameters:
//   - path: path to the YAML file
//
// Returns:
//   - Pipeline: the loaded settings
//   - error: an error if the file cannot be read, decoded or validated
func Load(path string) (Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return Pipeline{}, fmt.Errorf("failed to load settings file %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes YAML on top of the defaults and validates the result. Unknown keys
// are rejected. Empty input yields the defaults.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - Pipeline: the decoded settings
//   - error: an error if decoding or validation fails
func Parse(data []byte) (Pipeline, error) {
	p := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Pipeline{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Pipeline{}, err
	}
	return p, nil
}

// Validate reports every out-of-range value.
//
// Returns:
//   - error: nil when the settings are usable
func (p Pipeline) Validate() error {
	var errs []error
	if err := p.Shadows.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("shadows: %w", err))
	}
	if p.ForwardPlus.TileSize < 0 {
		errs = append(errs, fmt.Errorf("forward_plus: tile_size %d must not be negative", p.ForwardPlus.TileSize))
	}
	if p.ForwardPlus.MaxLightsPerTile < 0 {
		errs = append(errs, fmt.Errorf("forward_plus: max_lights_per_tile %d must not be negative", p.ForwardPlus.MaxLightsPerTile))
	}
	if p.Debug.Opacity < 0 || p.Debug.Opacity > 1 {
		errs = append(errs, fmt.Errorf("debug: opacity %g must be in [0, 1]", p.Debug.Opacity))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid settings: %w", errors.Join(errs...))
	}
	return nil
}

// Marshal encodes the settings as YAML.
//
// Returns:
//   - []byte: the YAML document
//   - error: an error if encoding fails
func (p Pipeline) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}
	return data, nil
}
