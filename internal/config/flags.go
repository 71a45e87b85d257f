package config

import "flag"

// Flags holds the command-line overrides bound to a flag set.
type Flags struct {
	Config  *string
	Debug   *bool
	Workers *int
	Columns *int
	Format  *string
	Out     *string
}

// BindFlags registers the shared flags on fs. Call before fs.Parse.
func BindFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		Config:  fs.String("config", "", "Path to config file"),
		Debug:   fs.Bool("debug", false, "Enable debug logging"),
		Workers: fs.Int("workers", 0, "Export worker count (0 = config value)"),
		Columns: fs.Int("columns", -1, "Atlas columns (0 = auto, -1 = config value)"),
		Format:  fs.String("format", "", "Atlas format: png or webp"),
		Out:     fs.String("out", "", "Output directory"),
	}
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	if f == nil || f.Config == nil {
		return ""
	}
	return *f.Config
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	if f.Debug != nil && *f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Workers != nil && *f.Workers > 0 {
		cfg.Export.Workers = *f.Workers
	}
	if f.Columns != nil && *f.Columns >= 0 {
		cfg.Export.Columns = *f.Columns
	}
	if f.Format != nil && *f.Format != "" {
		cfg.Export.Format = *f.Format
	}
	if f.Out != nil && *f.Out != "" {
		cfg.Export.OutputDir = *f.Out
	}
}
