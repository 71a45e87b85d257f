package config

import (
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/Faultbox/spritestudio/pkg/imaging"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Export.Workers != runtime.NumCPU() {
		t.Errorf("expected %d workers, got %d", runtime.NumCPU(), cfg.Export.Workers)
	}
	if cfg.Export.Columns != 0 {
		t.Errorf("expected auto columns, got %d", cfg.Export.Columns)
	}
	if cfg.Export.Format != "png" {
		t.Errorf("expected format png, got %s", cfg.Export.Format)
	}
	if cfg.Export.DefaultFPS != 12 {
		t.Errorf("expected default fps 12, got %d", cfg.Export.DefaultFPS)
	}
	if cfg.Cache.MaxCostMB != 64 {
		t.Errorf("expected 64 MiB cache, got %d", cfg.Cache.MaxCostMB)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
export:
  workers: 3
  columns: 5
  format: webp
  output_dir: build/sheets
  default_fps: 24

cache:
  max_cost_mb: 16
  num_counters: 2000

logging:
  level: "debug"
  log_file: "spritec.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Export.Workers != 3 {
		t.Errorf("expected 3 workers, got %d", cfg.Export.Workers)
	}
	if cfg.Export.Columns != 5 {
		t.Errorf("expected 5 columns, got %d", cfg.Export.Columns)
	}
	if f, err := cfg.OutputFormat(); err != nil || f != imaging.FormatWebP {
		t.Errorf("expected webp format, got %v (%v)", f, err)
	}
	if cfg.Export.OutputDir != "build/sheets" {
		t.Errorf("expected output dir build/sheets, got %s", cfg.Export.OutputDir)
	}
	if cfg.Export.DefaultFPS != 24 {
		t.Errorf("expected fps 24, got %d", cfg.Export.DefaultFPS)
	}
	if got := cfg.ImageCache().MaxCost; got != 16<<20 {
		t.Errorf("expected 16 MiB cache, got %d", got)
	}
	if cfg.Logging.LogFile != "spritec.log" {
		t.Errorf("expected log file 'spritec.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
export:
  workers: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", tmpDir)
	t.Setenv(EnvConfig, "")

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "spritec.yaml"), []byte("export:\n  workers: 2\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if path := findConfigFile(); path == "" {
		t.Error("expected to find spritec.yaml in current directory")
	}
}

func TestFindConfigFileFromEnv(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	if err := os.WriteFile("spritec.yaml", []byte("export:\n  workers: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	envPath := filepath.Join(tmpDir, "ci.yaml")
	if err := os.WriteFile(envPath, []byte("export:\n  workers: 5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvConfig, envPath)
	if path := findConfigFile(); path != envPath {
		t.Errorf("expected %s to win, got %q", envPath, path)
	}

	t.Setenv(EnvConfig, filepath.Join(tmpDir, "missing.yaml"))
	if path := findConfigFile(); path != "spritec.yaml" {
		t.Errorf("expected fallback to spritec.yaml, got %q", path)
	}
}

func TestLoadFromFileStrict(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"empty file", "", false},
		{"known keys", "export:\n  columns: 3\n", false},
		{"misspelled key", "export:\n  colums: 3\n", true},
		{"unknown section", "render:\n  scale: 2\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			cfg := Default()
			err := loadFromFile(cfg, path)
			if (err != nil) != tt.wantErr {
				t.Errorf("loadFromFile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && tt.content == "" && cfg.Export.Format != "png" {
				t.Errorf("empty file changed format to %q", cfg.Export.Format)
			}
		})
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(*testing.T, *Config)
	}{
		{
			name: "debug flag",
			args: []string{"-debug"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "workers flag",
			args: []string{"-workers", "7"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Export.Workers != 7 {
					t.Errorf("expected 7 workers, got %d", cfg.Export.Workers)
				}
			},
		},
		{
			name: "explicit auto columns",
			args: []string{"-columns", "0"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Export.Columns != 0 {
					t.Errorf("expected auto columns, got %d", cfg.Export.Columns)
				}
			},
		},
		{
			name: "unset columns keeps file value",
			args: nil,
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Export.Columns != 4 {
					t.Errorf("expected columns 4 from file, got %d", cfg.Export.Columns)
				}
			},
		},
		{
			name: "format and output flags",
			args: []string{"-format", "webp", "-out", "dist"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Export.Format != "webp" {
					t.Errorf("expected webp, got %s", cfg.Export.Format)
				}
				if cfg.Export.OutputDir != "dist" {
					t.Errorf("expected dist, got %s", cfg.Export.OutputDir)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			f := BindFlags(fs)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("parse: %v", err)
			}
			cfg := Default()
			cfg.Export.Columns = 4
			applyFlags(cfg, f)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "c.yaml")
	if err := os.WriteFile(configPath, []byte("export:\n  format: webp\n  workers: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := BindFlags(fs)
	if err := fs.Parse([]string{"-config", configPath, "-workers", "9"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(f)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Export.Format != "webp" {
		t.Errorf("file value lost: format %s", cfg.Export.Format)
	}
	if cfg.Export.Workers != 9 {
		t.Errorf("flag did not win: workers %d", cfg.Export.Workers)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "c.yaml")
	if err := os.WriteFile(configPath, []byte("export:\n  format: tiff\n"), 0644); err != nil {
		t.Fatal(err)
	}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := BindFlags(fs)
	_ = fs.Parse([]string{"-config", configPath})

	if _, err := Load(f); err == nil {
		t.Error("expected unknown format to be rejected")
	}
}

func TestSaveTo(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := Default()
	cfg.Export.Columns = 6
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Export.Columns != 6 {
		t.Errorf("expected columns 6 after reload, got %d", loaded.Export.Columns)
	}
}
