package config

// Config is the top-level showcase configuration, corresponding to showcase.yml.
type Config struct {
	// Source is a catalog file path, an http(s) URL, or "bolt:<db path>".
	Source              string              `yaml:"source" koanf:"source"`
	DBPath              string              `yaml:"db_path" koanf:"db_path"`
	DownloadDir         string              `yaml:"download_dir" koanf:"download_dir"`
	FetchTimeoutSeconds int                 `yaml:"fetch_timeout_seconds" koanf:"fetch_timeout_seconds"`
	HistorySize         int                 `yaml:"history_size" koanf:"history_size"`
	Viewer              ViewerConfig        `yaml:"viewer" koanf:"viewer"`
	ZoomModifiers       []string            `yaml:"zoom_modifiers" koanf:"zoom_modifiers"`
	Keybindings         map[string][]string `yaml:"keybindings" koanf:"keybindings"`
}

// ViewerConfig holds the lightbox tuning knobs.
type ViewerConfig struct {
	// MinZoom and MaxZoom bound the scale; both 0 means unbounded.
	MinZoom        float64 `yaml:"min_zoom" koanf:"min_zoom"`
	MaxZoom        float64 `yaml:"max_zoom" koanf:"max_zoom"`
	ButtonZoomStep float64 `yaml:"button_zoom_step" koanf:"button_zoom_step"`
	WheelZoomStep  float64 `yaml:"wheel_zoom_step" koanf:"wheel_zoom_step"`
	WheelPanFactor float64 `yaml:"wheel_pan_factor" koanf:"wheel_pan_factor"`
	DragMultiplier float64 `yaml:"drag_multiplier" koanf:"drag_multiplier"`

	FadeInMS  int `yaml:"fade_in_ms" koanf:"fade_in_ms"`
	FadeOutMS int `yaml:"fade_out_ms" koanf:"fade_out_ms"`

	WidthRatio         float64 `yaml:"width_ratio" koanf:"width_ratio"`
	HeightRatio        float64 `yaml:"height_ratio" koanf:"height_ratio"`
	FallbackWidthRatio float64 `yaml:"fallback_width_ratio" koanf:"fallback_width_ratio"`
}
