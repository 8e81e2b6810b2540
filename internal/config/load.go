// internal/config/load.go
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MSTORE"

// Overrides are environment values applied on top of the file.
// Empty values leave the file untouched.
type Overrides struct {
	Bus            string `envconfig:"BUS"`
	Address        uint8  `envconfig:"ADDRESS"`
	StatusEndpoint string `envconfig:"STATUS_ENDPOINT"`
	UplinkURL      string `envconfig:"UPLINK_URL"`
	LogFormat      string `envconfig:"LOG_FORMAT"`
	LogLevel       string `envconfig:"LOG_LEVEL"`
	MetricsListen  string `envconfig:"METRICS_LISTEN"`
}

// Load reads a YAML file and applies MSTORE_* environment overrides.
// It does not validate.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	return cfg, applyEnv(cfg)
}

// LoadEnv builds a config from MSTORE_* environment values alone.
func LoadEnv() (*Config, error) {
	cfg := &Config{}
	return cfg, applyEnv(cfg)
}

func applyEnv(cfg *Config) error {
	var ov Overrides
	if err := envconfig.Process(EnvPrefix, &ov); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}
	Apply(cfg, ov)
	return nil
}

// Parse decodes YAML; unknown keys are rejected.
func Parse(b []byte) (*Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &cfg, nil
}

// Apply copies non-empty overrides into cfg.
func Apply(cfg *Config, ov Overrides) {
	if ov.Bus != "" {
		cfg.Store.Bus = ov.Bus
	}
	if ov.Address != 0 {
		cfg.Store.Address = ov.Address
	}
	if ov.StatusEndpoint != "" {
		if cfg.Status == nil {
			cfg.Status = &StatusConfig{}
		}
		cfg.Status.Endpoint = ov.StatusEndpoint
	}
	if ov.UplinkURL != "" {
		if cfg.Uplink == nil {
			cfg.Uplink = &UplinkConfig{}
		}
		cfg.Uplink.URL = ov.UplinkURL
	}
	if ov.LogFormat != "" {
		cfg.Log.Format = ov.LogFormat
	}
	if ov.LogLevel != "" {
		cfg.Log.Level = ov.LogLevel
	}
	if ov.MetricsListen != "" {
		cfg.Metrics.Listen = ov.MetricsListen
	}
}
