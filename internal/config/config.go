// Package config loads showcase settings from a YAML file with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"showcase/internal/input"
	"showcase/internal/present"
	"showcase/internal/viewer"
)

// EnvPrefix marks environment overrides. A double underscore separates
// nesting levels: SHOWCASE_VIEWER__MAX_ZOOM -> viewer.max_zoom.
const EnvPrefix = "SHOWCASE_"

// DefaultPath is showcase.yml in the user config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(dir, "showcase", DefaultFileName)
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (SHOWCASE_*). A missing file yields defaults.
// Keybindings in the file replace the defaults per action.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	// Unmarshal would merge the user's keybindings into the default map;
	// decode them separately so an action's keys are replaced, not appended to.
	bindings := map[string][]string{}
	if k.Exists("keybindings") {
		if err := k.Unmarshal("keybindings", &bindings); err != nil {
			return nil, fmt.Errorf("unmarshalling keybindings: %w", err)
		}
	}
	cfg.Keybindings = nil
	defaultModifiers := cfg.ZoomModifiers
	cfg.ZoomModifiers = nil

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.Keybindings = input.MergeKeybindings(bindings)
	if cfg.ZoomModifiers == nil {
		cfg.ZoomModifiers = defaultModifiers
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating config dir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("source is required")
	}
	if c.FetchTimeoutSeconds < 0 {
		return fmt.Errorf("fetch_timeout_seconds must be non-negative")
	}
	if c.HistorySize < 0 {
		return fmt.Errorf("history_size must be non-negative")
	}

	v := c.Viewer
	if v.MinZoom < 0 || v.MaxZoom < 0 {
		return fmt.Errorf("viewer zoom limits must be non-negative")
	}
	if v.MaxZoom > 0 && v.MinZoom > v.MaxZoom {
		return fmt.Errorf("viewer.min_zoom %.2f exceeds viewer.max_zoom %.2f", v.MinZoom, v.MaxZoom)
	}
	if v.ButtonZoomStep <= 1 || v.WheelZoomStep <= 1 {
		return fmt.Errorf("zoom steps must be greater than 1")
	}
	if v.WheelPanFactor <= 0 || v.DragMultiplier <= 0 {
		return fmt.Errorf("wheel_pan_factor and drag_multiplier must be positive")
	}
	if v.FadeInMS < 0 || v.FadeOutMS < 0 {
		return fmt.Errorf("fade durations must be non-negative")
	}
	for name, r := range map[string]float64{
		"width_ratio":          v.WidthRatio,
		"height_ratio":         v.HeightRatio,
		"fallback_width_ratio": v.FallbackWidthRatio,
	} {
		if r <= 0 || r > 1 {
			return fmt.Errorf("viewer.%s must be in (0, 1], got %.2f", name, r)
		}
	}

	if _, err := input.ParseModifiers(c.ZoomModifiers); err != nil {
		return fmt.Errorf("zoom_modifiers: %w", err)
	}
	if err := input.ValidateKeybindings(c.Keybindings); err != nil {
		return fmt.Errorf("keybindings: %w", err)
	}
	return nil
}

// FetchTimeout is the catalog fetch timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// ViewerOptions builds the state machine options.
func (c *Config) ViewerOptions() []viewer.Option {
	return []viewer.Option{
		viewer.WithZoomLimits(c.Viewer.MinZoom, c.Viewer.MaxZoom),
		viewer.WithDragMultiplier(c.Viewer.DragMultiplier),
	}
}

// InputSettings builds the dispatcher settings.
func (c *Config) InputSettings() (input.Settings, error) {
	mods, err := input.ParseModifiers(c.ZoomModifiers)
	if err != nil {
		return input.Settings{}, err
	}
	return input.Settings{
		ButtonZoomStep: c.Viewer.ButtonZoomStep,
		WheelZoomStep:  c.Viewer.WheelZoomStep,
		WheelPanFactor: c.Viewer.WheelPanFactor,
		ZoomModifiers:  mods,
	}, nil
}

// Keymap builds the validated keymap.
func (c *Config) Keymap() (*input.Keymap, error) {
	return input.NewKeymap(c.Keybindings)
}

// PresentSettings builds the presenter timings and sizing.
func (c *Config) PresentSettings() present.Settings {
	return present.Settings{
		FadeIn:             time.Duration(c.Viewer.FadeInMS) * time.Millisecond,
		FadeOut:            time.Duration(c.Viewer.FadeOutMS) * time.Millisecond,
		WidthRatio:         c.Viewer.WidthRatio,
		HeightRatio:        c.Viewer.HeightRatio,
		FallbackWidthRatio: c.Viewer.FallbackWidthRatio,
	}
}
