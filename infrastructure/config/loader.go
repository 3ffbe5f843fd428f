package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"replaycut/domain/replay"
	"replaycut/domain/video"
)

// DefaultPath is where commands look for the config file unless told otherwise
const DefaultPath = "config/config.yaml"

// Config represents the complete application configuration
type Config struct {
	OBS     OBSConfig     `yaml:"obs"`
	Trim    TrimConfig    `yaml:"trim"`
	Presets []int         `yaml:"presets"`
	Buffer  BufferConfig  `yaml:"buffer"`
	Drive   DriveConfig   `yaml:"drive"`
	Logging LoggingConfig `yaml:"logging"`
}

// OBSConfig contains the obs-websocket connection settings
type OBSConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
}

// TrimConfig contains trimming settings
type TrimConfig struct {
	Suffix       string `yaml:"suffix"`
	KeepOriginal bool   `yaml:"keep_original"`
	FFmpegPath   string `yaml:"ffmpeg_path"`
}

// BufferConfig bounds the segment lengths accepted as presets
type BufferConfig struct {
	MinSeconds int `yaml:"min_seconds"`
	MaxSeconds int `yaml:"max_seconds"`
}

// DriveConfig contains Google Drive publishing settings
type DriveConfig struct {
	Enabled         bool   `yaml:"enabled"`
	CredentialsFile string `yaml:"credentials_file"`
	// TokenFile switches to OAuth user authentication; the token is cached here
	TokenFile     string `yaml:"token_file"`
	FolderID      string `yaml:"folder_id"`
	SharePublicly bool   `yaml:"share_publicly"`
}

// LoggingConfig contains log output settings
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills in every unset field
func (c *Config) ApplyDefaults() {
	if c.OBS.Address == "" {
		c.OBS.Address = "localhost:4455"
	}
	if c.Trim.Suffix == "" {
		c.Trim.Suffix = video.DefaultTrimSuffix
	}
	if c.Trim.FFmpegPath == "" {
		c.Trim.FFmpegPath = "ffmpeg"
	}
	if len(c.Presets) == 0 {
		c.Presets = append([]int(nil), replay.DefaultPresetSeconds...)
	}
	if c.Buffer.MinSeconds == 0 {
		c.Buffer.MinSeconds = replay.MinBufferSeconds
	}
	if c.Buffer.MaxSeconds == 0 {
		c.Buffer.MaxSeconds = replay.MaxBufferSeconds
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// BuildPresets validates the configured presets against the buffer bounds
func (c *Config) BuildPresets() (replay.Presets, error) {
	presets, err := replay.NewPresets(c.Presets, c.Buffer.MinSeconds, c.Buffer.MaxSeconds)
	if err != nil {
		return replay.Presets{}, fmt.Errorf("invalid presets: %w", err)
	}
	return presets, nil
}

// Validate checks settings that have no sensible default
func (c *Config) Validate() error {
	if _, err := c.BuildPresets(); err != nil {
		return err
	}
	if c.Drive.Enabled && c.Drive.CredentialsFile == "" {
		return fmt.Errorf("drive.credentials_file is required when drive publishing is enabled")
	}
	return nil
}

// Load reads and parses the configuration from the specified YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// LoadOrDefault loads path, falling back to defaults when the file does not exist
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
