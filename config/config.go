// Package config provides YAML configuration parsing for the forgedeck
// plugin binary.
//
// The Stream Deck host launches the plugin with only its registration flags,
// so everything else (API location, logging, the debug listener) comes from
// an optional configuration file next to the binary.
//
// Example configuration:
//
//	api_url: https://api.forgeserv.net
//	fetch_timeout: 10s
//	min_refresh_interval: 1s
//	user_agent: forgedeck/1.0
//	headers:
//	  Authorization: Bearer ${FORGESERV_TOKEN}
//
//	log_level: debug
//	log_file: ${TMPDIR:-/tmp}/forgedeck.log
//	debug_addr: 127.0.0.1:8765
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied by [Parse] and [Default].
const (
	DefaultAPIURL             = "https://api.forgeserv.net"
	DefaultFetchTimeout       = 10 * time.Second
	DefaultMinRefreshInterval = time.Second
)

// minRefreshFloor is the lowest min_refresh_interval accepted.
// Anything lower lets a zero refreshFrequency hammer the API.
const minRefreshFloor = 100 * time.Millisecond

// Config is the plugin binary's settings file, one field per YAML key.
type Config struct {
	// APIURL is the ForgeServ status endpoint returning the server list.
	// ${VAR} and ${VAR:-default} are expanded.
	APIURL string `yaml:"api_url"`

	// FetchTimeout bounds each poll request. Defaults to 10s.
	FetchTimeout Duration `yaml:"fetch_timeout"`

	// MinRefreshInterval floors every context's refreshFrequency.
	// Defaults to 1s; must be at least 100ms.
	MinRefreshInterval Duration `yaml:"min_refresh_interval"`

	// UserAgent is sent with every poll when set.
	UserAgent string `yaml:"user_agent"`

	// Headers are added to every poll; values are env-expanded.
	Headers map[string]string `yaml:"headers"`

	// LogLevel is one of debug, info, warn, error. Empty disables logging
	// unless FORGEDECK_LOG_LEVEL is set.
	LogLevel string `yaml:"log_level"`

	// LogFile receives log output. The host discards stderr, so set this
	// when debugging a deployed plugin.
	LogFile string `yaml:"log_file"`

	// DebugAddr enables the diagnostic HTTP API on host:port when set.
	DebugAddr string `yaml:"debug_addr"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the file at path and hands it to [Parse].
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes data, fills in defaults for api_url, fetch_timeout and
// min_refresh_interval, then expands ${VAR} references in api_url, header
// values and log_file before validating.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.resolve(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = Duration(DefaultFetchTimeout)
	}
	if c.MinRefreshInterval == 0 {
		c.MinRefreshInterval = Duration(DefaultMinRefreshInterval)
	}
}
