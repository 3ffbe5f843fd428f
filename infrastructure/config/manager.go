package config

import (
	"errors"
	"fmt"
	"slices"

	"replaycut/domain/replay"
)

// Errors for preset management
var (
	ErrPresetExists   = errors.New("preset already exists")
	ErrPresetNotFound = errors.New("preset not found")
)

// PresetManager provides CRUD operations for segment length presets
type PresetManager struct {
	config     *Config
	configPath string
}

// NewPresetManager creates a new preset manager
func NewPresetManager(cfg *Config, configPath string) *PresetManager {
	return &PresetManager{
		config:     cfg,
		configPath: configPath,
	}
}

// List returns the presets in ascending order
func (m *PresetManager) List() ([]int, error) {
	presets, err := m.config.BuildPresets()
	if err != nil {
		return nil, err
	}
	return presets.Values(), nil
}

// Add adds a preset and saves the config
func (m *PresetManager) Add(seconds int) error {
	if slices.Contains(m.config.Presets, seconds) {
		return fmt.Errorf("%w: %d seconds", ErrPresetExists, seconds)
	}

	candidate := append(slices.Clone(m.config.Presets), seconds)
	presets, err := replay.NewPresets(candidate, m.config.Buffer.MinSeconds, m.config.Buffer.MaxSeconds)
	if err != nil {
		return err
	}

	m.config.Presets = presets.Values()
	return Save(m.config, m.configPath)
}

// Remove removes a preset and saves the config. The last preset cannot be removed.
func (m *PresetManager) Remove(seconds int) error {
	i := slices.Index(m.config.Presets, seconds)
	if i < 0 {
		return fmt.Errorf("%w: %d seconds", ErrPresetNotFound, seconds)
	}
	if len(m.config.Presets) == 1 {
		return fmt.Errorf("cannot remove the last preset")
	}

	m.config.Presets = slices.Delete(slices.Clone(m.config.Presets), i, i+1)
	return Save(m.config, m.configPath)
}
