package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
obs:
  address: "192.168.1.20:4455"
  password: "secret"
trim:
  keep_original: true
presets: [10, 20]
drive:
  enabled: true
  credentials_file: "/etc/replaycut/sa.json"
  folder_id: "folder-1"
logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.OBS.Address != "192.168.1.20:4455" || cfg.OBS.Password != "secret" {
		t.Errorf("OBS = %+v", cfg.OBS)
	}
	if !cfg.Trim.KeepOriginal {
		t.Error("Trim.KeepOriginal = false, want true")
	}
	if cfg.Trim.Suffix != "_trimmed" || cfg.Trim.FFmpegPath != "ffmpeg" {
		t.Errorf("Trim defaults not applied: %+v", cfg.Trim)
	}
	if !reflect.DeepEqual(cfg.Presets, []int{10, 20}) {
		t.Errorf("Presets = %v, want [10 20]", cfg.Presets)
	}
	if cfg.Buffer.MinSeconds != 1 || cfg.Buffer.MaxSeconds != 21600 {
		t.Errorf("Buffer defaults not applied: %+v", cfg.Buffer)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil || !strings.Contains(err.Error(), "failed to read") {
		t.Errorf("Load() of missing file error = %v", err)
	}
	if _, err := Load(writeConfig(t, "obs: [not, a, map")); err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("Load() of bad yaml error = %v", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() unexpected error: %v", err)
	}
	if cfg.OBS.Address != "localhost:4455" {
		t.Errorf("OBS.Address = %q, want localhost:4455", cfg.OBS.Address)
	}
	if !reflect.DeepEqual(cfg.Presets, []int{15, 30, 60, 300, 900, 1800}) {
		t.Errorf("Presets = %v", cfg.Presets)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"duplicate preset", func(c *Config) { c.Presets = []int{30, 30} }, "duplicate"},
		{"preset above max", func(c *Config) { c.Buffer.MaxSeconds = 60; c.Presets = []int{30, 120} }, "outside"},
		{"drive without credentials", func(c *Config) { c.Drive.Enabled = true }, "credentials_file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.OBS.Password = "pw"
	cfg.Presets = []int{5, 45}

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(loaded, cfg) {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
}
