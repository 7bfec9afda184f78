package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds user-configurable defaults.
type Config struct {
	Instance      string    `yaml:"instance"`
	Variant       string    `yaml:"variant,omitempty"`
	LabelWidth    int       `yaml:"label_width"`
	MinPanelWidth int       `yaml:"min_panel_width"`
	TopN          int       `yaml:"top_n"`
	PayloadPath   string    `yaml:"payload_path,omitempty"`
	StatePath     string    `yaml:"state_path,omitempty"`
	Log           LogConfig `yaml:"log"`
}

// LogConfig selects log verbosity and destination. An empty file keeps
// logging off while the TUI owns the terminal.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// Default returns a config with sensible defaults.
func Default() Config {
	return Config{
		Instance:      "dit",
		LabelWidth:    22,
		MinPanelWidth: 96,
		TopN:          10,
		Log:           LogConfig{Level: "info"},
	}
}

// Dir returns ~/.config/biasdeck (or under XDG_CONFIG_HOME).
// Returns empty string if home directory cannot be determined.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "" // refuse to fall back to /tmp (security risk)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "biasdeck")
}

// Path returns the config file path, empty if Dir is unknown.
func Path() string {
	d := Dir()
	if d == "" {
		return ""
	}
	return filepath.Join(d, "config.yaml")
}

// DefaultStatePath is where the workflow is saved when no path is set.
func DefaultStatePath() string {
	d := Dir()
	if d == "" {
		return ""
	}
	return filepath.Join(d, "workflow.json")
}

// Load loads config from the default path; returns defaults on error.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile loads config from path. A missing file is not an error. A
// file that fails to parse yields defaults and the parse error, so the
// caller can warn and carry on.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	d := Default()
	if c.Instance == "" {
		c.Instance = d.Instance
	}
	if c.LabelWidth <= 0 {
		c.LabelWidth = d.LabelWidth
	}
	if c.MinPanelWidth <= 0 {
		c.MinPanelWidth = d.MinPanelWidth
	}
	if c.TopN <= 0 {
		c.TopN = d.TopN
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// Save writes the config to the default path.
func Save(cfg Config) error {
	path := Path()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveFile(path, cfg)
}

// SaveFile writes cfg to path with 0600 permissions.
func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
