package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// EnvConfig names a config file when -config is not given.
const EnvConfig = "SPRITEC_CONFIG"

// Load builds the effective config: defaults, then the first config file
// found, then flag overrides. The result is validated.
func Load(f *Flags) (*Config, error) {
	cfg := Default()

	path := f.ConfigPath()
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg, f)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// searchPaths lists config locations in lookup order.
func searchPaths() []string {
	var paths []string
	if env := os.Getenv(EnvConfig); env != "" {
		paths = append(paths, env)
	}
	return append(paths, "spritec.yaml", filepath.Join(ConfigDir(), "config.yaml"))
}

func findConfigFile() string {
	for _, path := range searchPaths() {
		if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
			return path
		}
	}
	return ""
}

// ConfigDir returns the per-user config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "SpriteStudio")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "SpriteStudio")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "sprite-studio")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "sprite-studio")
	}
}

// loadFromFile merges a YAML file over cfg. Keys that match no setting are
// rejected; an empty file changes nothing.
func loadFromFile(cfg *Config, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
