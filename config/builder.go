package config

import (
	"github.com/jpalmerr/forgedeck"
)

// PluginOptions converts parsed configuration into SDK options.
//
// The display, logger and clock are runtime collaborators and are not part
// of the file; the caller appends them.
func PluginOptions(cfg *Config) []forgedeck.Option {
	opts := []forgedeck.Option{
		forgedeck.WithEndpoint(cfg.APIURL),
		forgedeck.WithFetchTimeout(cfg.FetchTimeout.Duration()),
		forgedeck.WithMinRefreshInterval(cfg.MinRefreshInterval.Duration()),
	}

	if cfg.UserAgent != "" {
		opts = append(opts, forgedeck.WithUserAgent(cfg.UserAgent))
	}

	if len(cfg.Headers) > 0 {
		opts = append(opts, forgedeck.WithHeaders(cfg.Headers))
	}

	return opts
}
