package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Port    int    `yaml:"port"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Ledger struct {
		// LenientTransitions drops the request status guard.
		LenientTransitions bool `yaml:"lenient_transitions"`
	} `yaml:"ledger"`
	// SeedFile replaces the built-in startup inventory when set.
	SeedFile string `yaml:"seed_file"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Metrics.Enabled = true
	cfg.Metrics.Port = 9090
	cfg.Metrics.Path = "/metrics"
	cfg.Log.Level = "info"
	return cfg
}

// Load reads a yaml configuration file over the defaults. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ports and the metrics path.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Metrics.Enabled {
		if c.Metrics.Port <= 0 || c.Metrics.Port > 65535 {
			return errors.Errorf("metrics port %d out of range", c.Metrics.Port)
		}
		if c.Metrics.Port == c.Server.Port {
			return errors.Errorf("metrics port %d collides with server port", c.Metrics.Port)
		}
		if c.Metrics.Path == "" || c.Metrics.Path[0] != '/' {
			return errors.Errorf("metrics path %q must start with /", c.Metrics.Path)
		}
	}
	return nil
}
