// Package config loads runtime configuration for the storyline CLI and
// frame server from a TOML file, with every field optional.
//
// Resolution order is: built-in defaults, then the config file, then
// command-line flags (applied by the CLI layer). The file lives at
// ~/.config/storyline/config.toml unless an explicit path is given.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the full runtime configuration.
type Config struct {
	Viewport ViewportConfig `toml:"viewport"`
	Compose  ComposeConfig  `toml:"compose"`
	Cache    CacheConfig    `toml:"cache"`
	Store    StoreConfig    `toml:"store"`
	Server   ServerConfig   `toml:"server"`
}

// ViewportConfig sets the default viewport in device-independent units.
type ViewportConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// ComposeConfig sets frame composition defaults.
type ComposeConfig struct {
	Padding    float64 `toml:"padding"`
	FitPadding float64 `toml:"fit_padding"`
	Strategy   string  `toml:"strategy"`
	RouteStyle string  `toml:"route_style"`
	Spacing    float64 `toml:"route_spacing"`
	TimeoutMS  int     `toml:"route_timeout_ms"`
}

// CacheConfig selects the frame cache backend.
type CacheConfig struct {
	// Backend is "file", "redis", or "none". Empty means "file".
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"` // file backend; empty uses the default cache dir
	Addr    string `toml:"addr"`
	Pass    string `toml:"password"`
	DB      int    `toml:"db"`
}

// StoreConfig selects the story store backend.
type StoreConfig struct {
	// Backend is "file" or "mongo". Empty means "file".
	Backend    string `toml:"backend"`
	Dir        string `toml:"dir"`
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServerConfig configures the frame server.
type ServerConfig struct {
	Addr string `toml:"addr"` // listen address, e.g. ":8080"
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Viewport: ViewportConfig{Width: 1280, Height: 720},
		Compose:  ComposeConfig{Strategy: "nudge", RouteStyle: "spline"},
		Cache:    CacheConfig{Backend: "file"},
		Store:    StoreConfig{Backend: "file"},
		Server:   ServerConfig{Addr: ":8080"},
	}
}

// DefaultPath returns the standard config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "storyline", "config.toml"), nil
}

// Load reads the config file at path on top of the defaults. An empty path
// uses [DefaultPath]; a missing file is not an error and yields defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
