package shadow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// MapSize is a square shadow atlas resolution in texels.
type MapSize int

const (
	MapSize256  MapSize = 256
	MapSize512  MapSize = 512
	MapSize1024 MapSize = 1024
	MapSize2048 MapSize = 2048
	MapSize4096 MapSize = 4096
	MapSize8192 MapSize = 8192
)

// Valid reports whether m is one of the supported atlas sizes.
func (m MapSize) Valid() bool {
	switch m {
	case MapSize256, MapSize512, MapSize1024, MapSize2048, MapSize4096, MapSize8192:
		return true
	}
	return false
}

// FilterQuality selects the PCF kernel used when sampling shadow atlases.
type FilterQuality int

const (
	FilterQualityLow FilterQuality = iota
	FilterQualityMedium
	FilterQualityHigh
)

var filterQualityNames = [...]string{"low", "medium", "high"}

func (q FilterQuality) String() string {
	if q < FilterQualityLow || q > FilterQualityHigh {
		return fmt.Sprintf("FilterQuality(%d)", int(q))
	}
	return filterQualityNames[q]
}

// MarshalText implements encoding.TextMarshaler.
func (q FilterQuality) MarshalText() ([]byte, error) {
	if q < FilterQualityLow || q > FilterQualityHigh {
		return nil, fmt.Errorf("invalid filter quality %d", int(q))
	}
	return []byte(q.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Names are case-insensitive.
func (q *FilterQuality) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for i, n := range filterQualityNames {
		if n == name {
			*q = FilterQuality(i)
			return nil
		}
	}
	return fmt.Errorf("unknown filter quality %q", string(text))
}

// ShadowmaskMode is the project-wide shadow mask mode for mixed lights.
type ShadowmaskMode int

const (
	// ShadowmaskModeShadowmask uses baked shadows for static casters at every distance.
	ShadowmaskModeShadowmask ShadowmaskMode = iota
	// ShadowmaskModeDistance uses realtime shadows up to the shadow distance.
	ShadowmaskModeDistance
)

var shadowmaskModeNames = [...]string{"shadowmask", "distance_shadowmask"}

func (m ShadowmaskMode) MarshalText() ([]byte, error) {
	if m < ShadowmaskModeShadowmask || m > ShadowmaskModeDistance {
		return nil, fmt.Errorf("invalid shadowmask mode %d", int(m))
	}
	return []byte(shadowmaskModeNames[m]), nil
}

func (m *ShadowmaskMode) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for i, n := range shadowmaskModeNames {
		if n == name {
			*m = ShadowmaskMode(i)
			return nil
		}
	}
	return fmt.Errorf("unknown shadowmask mode %q", string(text))
}

// DirectionalSettings configures the directional shadow atlas and its cascades.
type DirectionalSettings struct {
	AtlasSize        MapSize `yaml:"atlas_size"`
	CascadeCount     int     `yaml:"cascade_count"`
	CascadeRatio1    float32 `yaml:"cascade_ratio_1"`
	CascadeRatio2    float32 `yaml:"cascade_ratio_2"`
	CascadeRatio3    float32 `yaml:"cascade_ratio_3"`
	CascadeFade      float32 `yaml:"cascade_fade"`
	SoftCascadeBlend bool    `yaml:"soft_cascade_blend"`
}

// CascadeRatios returns the split ratios as fractions of the shadow distance.
func (d DirectionalSettings) CascadeRatios() mgl32.Vec3 {
	return mgl32.Vec3{d.CascadeRatio1, d.CascadeRatio2, d.CascadeRatio3}
}

// OtherSettings configures the spot and point shadow atlas.
type OtherSettings struct {
	AtlasSize MapSize `yaml:"atlas_size"`
}

// Settings is the shadow configuration of a frame. It is read, never written, by the
// shadow core.
type Settings struct {
	MaxDistance    float32             `yaml:"max_distance"`
	DistanceFade   float32             `yaml:"distance_fade"`
	FilterQuality  FilterQuality       `yaml:"filter_quality"`
	ShadowmaskMode ShadowmaskMode      `yaml:"shadowmask_mode"`
	Directional    DirectionalSettings `yaml:"directional"`
	Other          OtherSettings       `yaml:"other"`
}

// DefaultSettings returns the out-of-the-box shadow configuration.
//
// Returns:
//   - Settings: four cascades on a 1024 atlas, 100 unit shadow distance
func DefaultSettings() Settings {
	return Settings{
		MaxDistance:    100,
		DistanceFade:   0.1,
		FilterQuality:  FilterQualityMedium,
		ShadowmaskMode: ShadowmaskModeShadowmask,
		Directional: DirectionalSettings{
			AtlasSize:        MapSize1024,
			CascadeCount:     4,
			CascadeRatio1:    0.1,
			CascadeRatio2:    0.25,
			CascadeRatio3:    0.5,
			CascadeFade:      0.1,
			SoftCascadeBlend: false,
		},
		Other: OtherSettings{
			AtlasSize: MapSize1024,
		},
	}
}

// DirectionalFilterSize returns the PCF kernel width, in texels, for directional shadows.
func (s Settings) DirectionalFilterSize() float32 {
	return float32(s.FilterQuality) + 2
}

// OtherFilterSize returns the PCF kernel width, in texels, for spot and point shadows.
func (s Settings) OtherFilterSize() float32 {
	return float32(s.FilterQuality) + 2
}

// Validate reports every out-of-range value in s.
//
// Returns:
//   - error: nil when s is usable, otherwise the joined problems
func (s Settings) Validate() error {
	var errs []error
	if s.MaxDistance < 0.001 {
		errs = append(errs, fmt.Errorf("max_distance %v must be at least 0.001", s.MaxDistance))
	}
	if s.DistanceFade < 0.001 || s.DistanceFade > 1 {
		errs = append(errs, fmt.Errorf("distance_fade %v must be in [0.001, 1]", s.DistanceFade))
	}
	if s.FilterQuality < FilterQualityLow || s.FilterQuality > FilterQualityHigh {
		errs = append(errs, fmt.Errorf("filter_quality %d is not supported", int(s.FilterQuality)))
	}
	if !s.Directional.AtlasSize.Valid() {
		errs = append(errs, fmt.Errorf("directional atlas_size %d is not supported", s.Directional.AtlasSize))
	}
	if !s.Other.AtlasSize.Valid() {
		errs = append(errs, fmt.Errorf("other atlas_size %d is not supported", s.Other.AtlasSize))
	}
	if s.Directional.CascadeCount < 1 || s.Directional.CascadeCount > MaxCascades {
		errs = append(errs, fmt.Errorf("cascade_count %d must be in [1, %d]", s.Directional.CascadeCount, MaxCascades))
	}
	for i, r := range s.Directional.CascadeRatios() {
		if r < 0 || r > 1 {
			errs = append(errs, fmt.Errorf("cascade_ratio_%d %v must be in [0, 1]", i+1, r))
		}
	}
	if s.Directional.CascadeFade < 0.001 || s.Directional.CascadeFade > 1 {
		errs = append(errs, fmt.Errorf("cascade_fade %v must be in [0.001, 1]", s.Directional.CascadeFade))
	}
	return errors.Join(errs...)
}
