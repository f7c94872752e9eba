package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML accepts values like "2s" or "500ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Binding is one startup hotkey binding: a daemon command plus its payload.
type Binding struct {
	Command string                 `yaml:"command"`
	Payload map[string]interface{} `yaml:"payload,omitempty"`
}

// Config is the daemon configuration loaded from config.yaml.
type Config struct {
	NumTags       uint               `yaml:"num_tags"`
	DefaultLayout string             `yaml:"default_layout"`
	TagLayouts    map[uint]string    `yaml:"tag_layouts,omitempty"`
	Engines       map[string]string  `yaml:"engines,omitempty"`
	EngineTimeout Duration           `yaml:"engine_timeout,omitempty"`
	LogLevel      string             `yaml:"log_level,omitempty"`
	Bindings      map[string]Binding `yaml:"bindings,omitempty"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		NumTags:       9,
		DefaultLayout: "tall",
		EngineTimeout: Duration(2 * time.Second),
		LogLevel:      "info",
	}
}

// DefaultConfigPath resolves ~/.config/tagtile/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "tagtile", "config.yaml"), nil
}

// Load reads the configuration from the standard location. A missing file
// yields the defaults.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads and validates one config file.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read: %w", path, err)
	}

	cfg := Default()
	if err := decodeStrictYAML(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	return nil
}

// Validate checks field ranges and cross-field consistency.
func (c *Config) Validate() error {
	if c.NumTags < 1 || c.NumTags > 32 {
		return fmt.Errorf("num_tags %d out of range 1..32", c.NumTags)
	}
	if c.DefaultLayout == "" {
		return fmt.Errorf("default_layout is required")
	}
	for idx := range c.TagLayouts {
		if idx < 1 || idx > c.NumTags {
			return fmt.Errorf("tag_layouts key %d out of range 1..%d", idx, c.NumTags)
		}
	}
	if c.EngineTimeout.Std() <= 0 {
		return fmt.Errorf("engine_timeout must be positive")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	for combo, b := range c.Bindings {
		if b.Command == "" {
			return fmt.Errorf("binding %q has no command", combo)
		}
	}
	return nil
}
