// Package config handles spritec configuration loading and management.
package config

import (
	"fmt"
	"runtime"

	"github.com/Faultbox/spritestudio/pkg/imaging"
	"github.com/Faultbox/spritestudio/pkg/model"
	"github.com/Faultbox/spritestudio/pkg/spritesheet"
)

// Config holds all tool settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig holds spritesheet export settings.
type ExportConfig struct {
	Workers    int    `yaml:"workers"`     // 0 means one per CPU
	Columns    int    `yaml:"columns"`     // 0 means auto layout
	Format     string `yaml:"format"`      // png or webp
	OutputDir  string `yaml:"output_dir"`
	DefaultFPS int    `yaml:"default_fps"` // used by animations without their own rate
}

// CacheConfig sizes the decoded-art cache.
type CacheConfig struct {
	MaxCostMB   int64 `yaml:"max_cost_mb"`
	NumCounters int64 `yaml:"num_counters"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	cache := imaging.DefaultCacheConfig()
	return &Config{
		Export: ExportConfig{
			Workers:    runtime.NumCPU(),
			Columns:    0,
			Format:     string(imaging.FormatPNG),
			OutputDir:  ".",
			DefaultFPS: model.DefaultFPS,
		},
		Cache: CacheConfig{
			MaxCostMB:   cache.MaxCost >> 20,
			NumCounters: cache.NumCounters,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values a file or flag may have broken.
func (c *Config) Validate() error {
	if c.Export.Workers < 0 {
		return fmt.Errorf("export.workers must not be negative, got %d", c.Export.Workers)
	}
	if c.Export.DefaultFPS <= 0 {
		return fmt.Errorf("export.default_fps must be positive, got %d", c.Export.DefaultFPS)
	}
	if err := c.Layout().Validate(); err != nil {
		return err
	}
	if _, err := c.OutputFormat(); err != nil {
		return err
	}
	if c.Cache.MaxCostMB <= 0 || c.Cache.NumCounters <= 0 {
		return fmt.Errorf("cache sizes must be positive")
	}
	return nil
}

// Layout returns the configured spritesheet layout.
func (c *Config) Layout() spritesheet.Layout {
	return spritesheet.Layout{Columns: c.Export.Columns}
}

// OutputFormat returns the configured atlas format.
func (c *Config) OutputFormat() (imaging.Format, error) {
	return imaging.ParseFormat(c.Export.Format)
}

// WorkerCount returns the effective export worker count.
func (c *Config) WorkerCount() int {
	if c.Export.Workers <= 0 {
		return runtime.NumCPU()
	}
	return c.Export.Workers
}

// ImageCache returns the decoded-art cache sizing.
func (c *Config) ImageCache() imaging.CacheConfig {
	return imaging.CacheConfig{
		NumCounters: c.Cache.NumCounters,
		MaxCost:     c.Cache.MaxCostMB << 20,
	}
}
