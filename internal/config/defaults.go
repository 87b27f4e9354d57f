package config

import (
	"showcase/internal/input"
	"showcase/internal/viewer"
)

const (
	DefaultSource       = "data/programs.json"
	DefaultFileName     = "showcase.yml"
	defaultFetchTimeout = 10
	defaultHistorySize  = 50
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Source:              DefaultSource,
		FetchTimeoutSeconds: defaultFetchTimeout,
		HistorySize:         defaultHistorySize,
		Viewer: ViewerConfig{
			MinZoom:            viewer.DefaultMinZoom,
			MaxZoom:            viewer.DefaultMaxZoom,
			ButtonZoomStep:     input.DefaultButtonZoomStep,
			WheelZoomStep:      input.DefaultWheelZoomStep,
			WheelPanFactor:     input.DefaultWheelPanFactor,
			DragMultiplier:     viewer.DefaultDragMultiplier,
			FadeInMS:           10,
			FadeOutMS:          200,
			WidthRatio:         0.95,
			HeightRatio:        0.9,
			FallbackWidthRatio: 0.9,
		},
		ZoomModifiers: []string{"Ctrl", "Super"},
		Keybindings:   input.DefaultKeybindings(),
	}
}
