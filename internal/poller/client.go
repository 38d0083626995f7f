package poller

import (
	"net/http"
	"time"
)

// The plugin polls a single host from every deck context, so the pool is
// small and keyed to that one host.
const (
	poolIdleTotal   = 8
	poolIdlePerHost = 4
	poolPerHost     = 4
	poolIdleTimeout = 90 * time.Second
)

// NewHTTPClient returns the pooled client used when the caller supplies none.
//
// The client has no Timeout of its own; deadlines come from the context
// passed to [Fetcher.Fetch].
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        poolIdleTotal,
			MaxIdleConnsPerHost: poolIdlePerHost,
			MaxConnsPerHost:     poolPerHost,
			IdleConnTimeout:     poolIdleTimeout,
			ForceAttemptHTTP2:   true,
		},
	}
}
