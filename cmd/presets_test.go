package cmd

import (
	"bytes"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"replaycut/infrastructure/config"
)

func TestRunPresetsList(t *testing.T) {
	cfg := config.Default()
	var out bytes.Buffer

	if err := RunPresetsListWithDependencies(cfg, filepath.Join(t.TempDir(), "config.yaml"), &out); err != nil {
		t.Fatalf("RunPresetsListWithDependencies() unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want header plus 6 presets:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[0], "PRESET") {
		t.Errorf("header = %q", lines[0])
	}
	if fields := strings.Fields(lines[4]); fields[0] != "4" || fields[1] != "300" || fields[2] != "5" {
		t.Errorf("preset 4 line = %q, want 4 300 5 minutes", lines[4])
	}
}

func TestRunPresetsAddRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "config.yaml")
	cfg := config.Default()
	var out bytes.Buffer

	if err := RunPresetsAddWithDependencies(cfg, path, "2m", &out); err != nil {
		t.Fatalf("RunPresetsAddWithDependencies() unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Added preset 2 minutes") {
		t.Errorf("output = %q", out.String())
	}

	saved, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load() unexpected error: %v", err)
	}
	if !slices.Contains(saved.Presets, 120) {
		t.Errorf("saved presets = %v, want 120 included", saved.Presets)
	}

	out.Reset()
	if err := RunPresetsRemoveWithDependencies(saved, path, "00:00:15", &out); err != nil {
		t.Fatalf("RunPresetsRemoveWithDependencies() unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Removed preset 15 seconds") {
		t.Errorf("output = %q", out.String())
	}

	reloaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load() unexpected error: %v", err)
	}
	if slices.Contains(reloaded.Presets, 15) {
		t.Errorf("reloaded presets = %v, want 15 removed", reloaded.Presets)
	}
}

func TestRunPresets_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	tests := []struct {
		name    string
		run     func(cfg *config.Config) error
		wantErr error
		errText string
	}{
		{
			name:    "add existing",
			run:     func(cfg *config.Config) error { return RunPresetsAddWithDependencies(cfg, path, "30", &bytes.Buffer{}) },
			wantErr: config.ErrPresetExists,
		},
		{
			name:    "add beyond buffer maximum",
			run:     func(cfg *config.Config) error { return RunPresetsAddWithDependencies(cfg, path, "7h", &bytes.Buffer{}) },
			errText: "outside",
		},
		{
			name:    "add bad duration",
			run:     func(cfg *config.Config) error { return RunPresetsAddWithDependencies(cfg, path, "x", &bytes.Buffer{}) },
			errText: "invalid duration",
		},
		{
			name:    "remove unknown",
			run:     func(cfg *config.Config) error { return RunPresetsRemoveWithDependencies(cfg, path, "45", &bytes.Buffer{}) },
			wantErr: config.ErrPresetNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run(config.Default())
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.errText != "" && !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("error = %v, want error containing %q", err, tt.errText)
			}
		})
	}
}
