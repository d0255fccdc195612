package platform

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// ConfigFile is the name of the project configuration file.
const ConfigFile = "hbnb.yaml"

// Config is the content of hbnb.yaml.
type Config struct {
	// File is the backing file. Relative paths are resolved against the
	// directory holding the configuration file.
	File       string `yaml:"file"`
	Prompt     string `yaml:"prompt"`
	LogLevel   string `yaml:"log_level"`
	Versioning bool   `yaml:"versioning"`
	Watch      bool   `yaml:"watch"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		File:     "file.json",
		Prompt:   "(hbnb) ",
		LogLevel: "warn",
	}
}

// LoadConfig reads the configuration at path. A missing file yields the
// defaults. HBNB_FILE and HBNB_LOG_LEVEL override the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	path, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		if cfg.File != "" && !filepath.IsAbs(cfg.File) && !strings.HasPrefix(cfg.File, "~") {
			cfg.File = filepath.Join(filepath.Dir(path), cfg.File)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if file := os.Getenv("HBNB_FILE"); file != "" {
		c.File = file
	}
	if level := os.Getenv("HBNB_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Level maps LogLevel to a slog level. Unknown names fall back to warn.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn
	}
	return level
}
