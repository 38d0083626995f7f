package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
)

// resolve expands environment references and rejects values the plugin
// cannot run with.
func (c *Config) resolve() error {
	var err error
	if c.APIURL, err = expandEnv(c.APIURL); err != nil {
		return fmt.Errorf("api_url: %w", err)
	}
	if err := checkAPIURL(c.APIURL); err != nil {
		return fmt.Errorf("api_url: %w", err)
	}

	for name, value := range c.Headers {
		if c.Headers[name], err = expandEnv(value); err != nil {
			return fmt.Errorf("headers[%s]: %w", name, err)
		}
	}

	if c.FetchTimeout < 0 {
		return fmt.Errorf("fetch_timeout: cannot be negative, got %s", c.FetchTimeout)
	}
	if c.MinRefreshInterval.Duration() < minRefreshFloor {
		return fmt.Errorf("min_refresh_interval: must be at least %s, got %s", minRefreshFloor, c.MinRefreshInterval)
	}

	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level: want debug, info, warn or error, got %q", c.LogLevel)
	}

	if c.LogFile, err = expandEnv(c.LogFile); err != nil {
		return fmt.Errorf("log_file: %w", err)
	}

	if c.DebugAddr != "" {
		if _, _, err := net.SplitHostPort(c.DebugAddr); err != nil {
			return fmt.Errorf("debug_addr: %w", err)
		}
	}
	return nil
}

func checkAPIURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	switch {
	case u.Scheme == "":
		return errors.New("missing scheme, want http:// or https://")
	case u.Scheme != "http" && u.Scheme != "https":
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	case u.Host == "":
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}
