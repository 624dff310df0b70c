package debug

// DefaultOpacity is the overlay alpha used when none is configured.
const DefaultOpacity float32 = 0.5

// Settings controls the Forward+ tile overlay.
type Settings struct {
	ShowTiles bool    `yaml:"show_tiles"`
	Opacity   float32 `yaml:"opacity"`
}

// DefaultSettings returns the overlay disabled at half opacity.
func DefaultSettings() Settings {
	return Settings{ShowTiles: false, Opacity: DefaultOpacity}
}

// Active reports whether the overlay would draw anything.
func (s Settings) Active() bool {
	return s.ShowTiles && s.Opacity > 0
}
