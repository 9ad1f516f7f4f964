// Package config loads scanner.yaml into a Config, filling in defaults
// before the file is parsed so a missing or partial file still yields
// a usable configuration.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config mirrors the scanner's external configuration surface (§6.5,
// §6.7). Fields are tagged for YAML; the zero value is never used
// directly, since Load always starts from defaults().
type Config struct {
	Debug                  bool   `yaml:"debug"`
	MaxDevicesPerDiscovery int    `yaml:"max_devices_per_discovery"`
	DefaultTimeoutMS       int    `yaml:"default_timeout_ms"`
	EnableTags             bool   `yaml:"enable_tags"`
	EnableMotoman          bool   `yaml:"enable_motoman"`
	RS022InstanceDirect    bool   `yaml:"rs022_instance_direct"`
	LogLevel               string `yaml:"log_level"`

	Metrics struct {
		Enabled    bool   `yaml:"enabled"`
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"metrics"`

	HTTP struct {
		Enabled    bool   `yaml:"enabled"`
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"http"`
}

// DefaultTimeout returns DefaultTimeoutMS as a time.Duration.
func (c Config) DefaultTimeout() time.Duration {
	return time.Duration(c.DefaultTimeoutMS) * time.Millisecond
}

func defaults() Config {
	var c Config
	c.Debug = false
	c.MaxDevicesPerDiscovery = 32
	c.DefaultTimeoutMS = 5000
	c.EnableTags = true
	c.EnableMotoman = true
	c.RS022InstanceDirect = false
	c.LogLevel = "info"
	c.Metrics.Enabled = false
	c.Metrics.ListenAddr = ":9090"
	c.HTTP.Enabled = false
	c.HTTP.ListenAddr = ":8080"
	return c
}

// Load reads filename and unmarshals it over the default configuration.
// A missing file is not an error: the defaults are returned as-is,
// matching the teacher lineage's "best effort" config load.
func Load(filename string) (Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
