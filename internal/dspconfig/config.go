// Package dspconfig loads the dispatcher's configuration: just the key
// file location, the listen address and the metrics address, since the dispatcher is
// stateless and holds no fleet data (spec §4.6, §9).
package dspconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultListenAddr is the fixed dispatcher listen address from spec §6.
const DefaultListenAddr = "0.0.0.0:5684"

// Config is the dispatcher's configuration.
type Config struct {
	ListenAddr  string `yaml:"listen_addr"`
	KeyFilePath string `yaml:"key_file_path"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// Load reads path, applies defaults, and validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dspconfig: read %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("dspconfig: parse %s: %w", path, err)
	}
	c.defaults()
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("dspconfig: %w", err)
	}
	return &c, nil
}

func (c *Config) defaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = ":9101"
	}
}

func (c *Config) validate() error {
	if c.KeyFilePath == "" {
		return fmt.Errorf("key_file_path is required")
	}
	return nil
}
