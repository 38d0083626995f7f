package forgedeck

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// pluginConfig holds mutable state during Plugin construction.
type pluginConfig struct {
	endpoint           string
	display            Display
	logger             *zap.Logger
	clock              clockwork.Clock
	httpClient         *http.Client
	userAgent          string
	headers            map[string]string
	fetchTimeout       time.Duration
	minRefreshInterval time.Duration
	feedbackCallbacks  []func(context string, fb Feedback)
}

// Option configures a [Plugin] during construction.
//
// Options return an error if validation fails; [New] reports the first one.
type Option func(*pluginConfig) error

// WithEndpoint sets the status API URL. Defaults to [DefaultEndpoint].
//
// Returns an error unless the URL is absolute http or https.
func WithEndpoint(rawURL string) Option {
	return func(cfg *pluginConfig) error {
		if err := validateEndpoint(rawURL); err != nil {
			return err
		}
		cfg.endpoint = rawURL
		return nil
	}
}

// WithDisplay sets the surface that receives rendered feedback. Required.
func WithDisplay(d Display) Option {
	return func(cfg *pluginConfig) error {
		if d == nil {
			return errors.New("display cannot be nil")
		}
		cfg.display = d
		return nil
	}
}

// WithLogger sets the logger. Defaults to a nop logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *pluginConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithClock sets the clock driving poll and reset timers. Tests pass a
// clockwork fake clock to advance virtual time.
func WithClock(clock clockwork.Clock) Option {
	return func(cfg *pluginConfig) error {
		if clock == nil {
			return errors.New("clock cannot be nil")
		}
		cfg.clock = clock
		return nil
	}
}

// WithHTTPClient replaces the pooled HTTP client used for polling.
func WithHTTPClient(hc *http.Client) Option {
	return func(cfg *pluginConfig) error {
		if hc == nil {
			return errors.New("http client cannot be nil")
		}
		cfg.httpClient = hc
		return nil
	}
}

// WithUserAgent sets the User-Agent header sent with each poll.
func WithUserAgent(ua string) Option {
	return func(cfg *pluginConfig) error {
		cfg.userAgent = ua
		return nil
	}
}

// WithHeaders adds HTTP headers sent with each poll. Later calls merge
// into earlier ones; a User-Agent set with [WithUserAgent] takes precedence.
func WithHeaders(headers map[string]string) Option {
	return func(cfg *pluginConfig) error {
		if cfg.headers == nil {
			cfg.headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			if k == "" {
				return errors.New("header name cannot be empty")
			}
			cfg.headers[k] = v
		}
		return nil
	}
}

// WithFetchTimeout bounds each poll request. Zero disables the per-request
// deadline. Defaults to 10 seconds.
func WithFetchTimeout(d time.Duration) Option {
	return func(cfg *pluginConfig) error {
		if d < 0 {
			return errors.New("fetch timeout cannot be negative")
		}
		cfg.fetchTimeout = d
		return nil
	}
}

// WithMinRefreshInterval sets the floor applied to every context's
// refreshFrequency. Defaults to 1 second.
func WithMinRefreshInterval(d time.Duration) Option {
	return func(cfg *pluginConfig) error {
		if d <= 0 {
			return errors.New("minimum refresh interval must be positive")
		}
		cfg.minRefreshInterval = d
		return nil
	}
}

// WithFeedbackCallback registers a function called after every payload is
// pushed to the display. Callbacks run on the event loop and must not block;
// a panicking callback is logged and skipped.
func WithFeedbackCallback(fn func(context string, fb Feedback)) Option {
	return func(cfg *pluginConfig) error {
		if fn == nil {
			return errors.New("feedback callback cannot be nil")
		}
		cfg.feedbackCallbacks = append(cfg.feedbackCallbacks, fn)
		return nil
	}
}

func validateEndpoint(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid endpoint URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint URL must use http or https, got %q", rawURL)
	}
	if u.Host == "" {
		return fmt.Errorf("endpoint URL must have a host, got %q", rawURL)
	}
	return nil
}
