// Package config loads decoder and service settings from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no config file is named. It may be absent.
const DefaultPath = "decoder.yaml"

// Config is the top-level configuration.
type Config struct {
	Decoder DecoderConfig `yaml:"decoder"`
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// DecoderConfig controls the frame decoder.
type DecoderConfig struct {
	Workers int `yaml:"workers"` // users decoded concurrently
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level"` // DEBUG, INFO, WARN or ERROR
	Path  string `yaml:"path"`  // log file, stderr when empty
}

// ServerConfig controls the HTTP decode service.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Decoder: DecoderConfig{Workers: runtime.NumCPU()},
		Logging: LoggingConfig{Level: "INFO"},
		Server:  ServerConfig{Addr: ":8080", MaxUploadMB: 16},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Load reads path over the defaults. An empty path, or a missing
// DefaultPath, yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if path == DefaultPath && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var workersErr, levelErr, uploadErr, addrErr error
	if c.Decoder.Workers < 1 {
		workersErr = fmt.Errorf("decoder.workers must be at least 1, got %d", c.Decoder.Workers)
	}
	if !validLevel(c.Logging.Level) {
		levelErr = fmt.Errorf("logging.level must be one of DEBUG, INFO, WARN or ERROR, got %q", c.Logging.Level)
	}
	if c.Server.MaxUploadMB < 1 {
		uploadErr = fmt.Errorf("server.max_upload_mb must be at least 1, got %d", c.Server.MaxUploadMB)
	}
	if c.Server.Addr == "" {
		addrErr = errors.New("server.addr must not be empty")
	}
	return errors.Join(workersErr, levelErr, uploadErr, addrErr)
}
