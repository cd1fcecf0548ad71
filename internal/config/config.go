// Package config loads the dashboard configuration from DASH_* environment
// variables and the optional YAML table manifest.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/YoavSilman/Suicides-Dashboard/internal/engine"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `envconfig:"SERVER"`
	Logging LoggingConfig `envconfig:"LOGGING"`
	Data    DataConfig    `envconfig:"DATA"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	AllowedOrigins  []string      `envconfig:"ALLOWED_ORIGINS" default:"*"`
	RateLimit       float64       `envconfig:"RATE_LIMIT" default:"20"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"json"`
}

// DataConfig locates the raw tables
type DataConfig struct {
	Dir string `envconfig:"DIR" default:"data/output_folder"`
	// Manifest is an optional YAML file listing the sources.
	Manifest string `envconfig:"MANIFEST"`
}

// Manifest is the YAML table list.
type Manifest struct {
	Tables []engine.Source `yaml:"tables"`
}

// Load reads DASH_* variables and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("DASH", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges and that the data directory exists.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative: %v", c.Server.RateLimit)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %q", c.Logging.Format)
	}
	info, err := os.Stat(c.Data.Dir)
	if err != nil {
		return fmt.Errorf("data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data dir %q is not a directory", c.Data.Dir)
	}
	return nil
}

// Sources returns the manifest tables, or defaults when no manifest is set.
func (c *Config) Sources(defaults []engine.Source) ([]engine.Source, error) {
	if c.Data.Manifest == "" {
		return defaults, nil
	}
	return LoadManifest(c.Data.Manifest)
}

// LoadManifest reads a YAML manifest file.
func LoadManifest(path string) ([]engine.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseManifest(data)
}

// ParseManifest decodes a manifest and checks names and paths.
func ParseManifest(data []byte) ([]engine.Source, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	if len(m.Tables) == 0 {
		return nil, fmt.Errorf("manifest: no tables")
	}
	seen := make(map[string]bool, len(m.Tables))
	for i, s := range m.Tables {
		if s.Name == "" || s.Path == "" {
			return nil, fmt.Errorf("manifest: table %d needs name and path", i)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("manifest: duplicate table %q", s.Name)
		}
		seen[s.Name] = true
	}
	return m.Tables, nil
}
