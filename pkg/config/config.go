// Package config loads tally settings from YAML, the environment and flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cuemby/tally/pkg/log"
	"github.com/cuemby/tally/pkg/storage"
	"gopkg.in/yaml.v3"
)

// DefaultMetricsAddr is where serve listens when nothing else is configured
const DefaultMetricsAddr = "127.0.0.1:9464"

// Environment overrides, applied after the file and before flags
const (
	EnvDataDir = "TALLY_DATA_DIR"
	EnvBackend = "TALLY_BACKEND"
)

// Config is the tally configuration file
type Config struct {
	DataDir     string    `yaml:"data_dir"`
	Backend     string    `yaml:"backend"`
	Log         LogConfig `yaml:"log"`
	MetricsAddr string    `yaml:"metrics_addr"`
}

// LogConfig configures the global logger
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns the configuration used when no file exists
func Default() Config {
	return Config{
		DataDir: defaultDataDir(),
		Backend: storage.BackendBolt,
		Log: LogConfig{
			Level: string(log.WarnLevel),
		},
		MetricsAddr: DefaultMetricsAddr,
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "tally")
	}
	return ".tally"
}

// DefaultPath returns the config file location used when --config is not set
func DefaultPath() string {
	return filepath.Join(defaultDataDir(), "config.yaml")
}

// Load reads the YAML file at path on top of the defaults. An empty path
// tries DefaultPath and silently uses defaults when it does not exist; an
// explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvBackend); v != "" {
		c.Backend = v
	}
}

// Validate checks the backend and log level names
func (c Config) Validate() error {
	switch c.Backend {
	case storage.BackendBolt, storage.BackendSQLite, storage.BackendMemory:
	default:
		return fmt.Errorf("%w: %q", storage.ErrUnknownBackend, c.Backend)
	}

	if !log.Level(c.Log.Level).Valid() {
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}

	if c.Backend != storage.BackendMemory && c.DataDir == "" {
		return errors.New("data_dir is required")
	}
	return nil
}

// LogConfig returns the logger configuration
func (c Config) LogConfig() log.Config {
	return log.Config{
		Level:      log.ParseLevel(c.Log.Level),
		JSONOutput: c.Log.JSON,
	}
}

// Write saves the configuration as YAML, creating parent directories
func (c Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
