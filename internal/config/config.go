package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultLabels are the activity classes built when none are configured
var DefaultLabels = []string{"bike", "car", "walk", "train"}

// Config holds the settings shared by every sensorset command.
//
// Values are layered: defaults, then the optional YAML file, then a .env
// file in the working directory, then SENSORSET_* environment variables.
// Command flags are applied last by the commands package.
type Config struct {
	DataDir   string   `yaml:"data_dir" env:"SENSORSET_DATA_DIR"`
	OutputDir string   `yaml:"output_dir" env:"SENSORSET_OUTPUT_DIR"`
	Labels    []string `yaml:"labels" env:"SENSORSET_LABELS" envSeparator:","`
	Workers   int      `yaml:"workers" env:"SENSORSET_WORKERS"`
	LogLevel  string   `yaml:"log_level" env:"SENSORSET_LOG_LEVEL"`

	Catalog struct {
		Enabled bool   `yaml:"enabled" env:"SENSORSET_CATALOG_ENABLED"`
		Path    string `yaml:"path" env:"SENSORSET_CATALOG"`
	} `yaml:"catalog"`

	// OTelEndpoint enables trace export when set, e.g. http://localhost:4318
	OTelEndpoint string `yaml:"otel_endpoint" env:"SENSORSET_OTEL_ENDPOINT"`
}

// Default returns the built-in configuration: data/<label>/ sessions
// aggregated into data/<label>.csv for the four default labels.
func Default() Config {
	cfg := Config{
		DataDir:   "data",
		OutputDir: "data",
		Labels:    append([]string(nil), DefaultLabels...),
		Workers:   1,
		LogLevel:  "info",
	}
	cfg.Catalog.Path = DefaultCatalogPath()
	return cfg
}

// DefaultCatalogPath returns ~/.sensorset/catalog.db, falling back to the
// working directory when the home directory is unknown.
func DefaultCatalogPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".sensorset", "catalog.db")
	}
	return filepath.Join(homeDir, ".sensorset", "catalog.db")
}

// Load builds the configuration. path may be empty to skip the YAML file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate normalizes the configuration and rejects unusable values
func (c *Config) Validate() error {
	labels := c.Labels[:0]
	for _, l := range c.Labels {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}
	c.Labels = labels

	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("data dir is required")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return errors.New("output dir is required")
	}
	if len(c.Labels) == 0 {
		return errors.New("at least one label is required")
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Catalog.Enabled && strings.TrimSpace(c.Catalog.Path) == "" {
		return errors.New("catalog path is required when the catalog is enabled")
	}
	return nil
}
