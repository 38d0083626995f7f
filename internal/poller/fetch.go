package poller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxStatusDocument caps how much of a status response is read.
const maxStatusDocument = 1 << 20

// ErrDocumentTooLarge is returned when the status body exceeds the read cap.
var ErrDocumentTooLarge = errors.New("status document too large")

// StatusError reports a poll that received a response other than 200 OK.
// It is a transient condition: the caller keeps its previous data.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// Fetcher polls a single fixed endpoint.
type Fetcher struct {
	hc      *http.Client
	url     string
	timeout time.Duration
	headers http.Header
}

// NewFetcher returns a [Fetcher] for url. A nil hc uses [NewHTTPClient]; a
// timeout of zero disables the per-request deadline.
func NewFetcher(hc *http.Client, url string, timeout time.Duration, headers map[string]string) *Fetcher {
	if hc == nil {
		hc = NewHTTPClient()
	}
	h := make(http.Header, len(headers)+1)
	h.Set("Accept", "application/json")
	for name, value := range headers {
		h.Set(name, value)
	}
	return &Fetcher{hc: hc, url: url, timeout: timeout, headers: h}
}

// URL returns the polled endpoint.
func (f *Fetcher) URL() string {
	return f.url
}

// Fetch performs one poll and reports how long it took. It returns the body
// on 200 OK, a [*StatusError] for any other status, or the transport error.
func (f *Fetcher) Fetch(ctx context.Context) ([]byte, time.Duration, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	began := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build status request: %w", err)
	}
	req.Header = f.headers.Clone()

	resp, err := f.hc.Do(req)
	if err != nil {
		return nil, time.Since(began), fmt.Errorf("status request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// drain so the connection goes back to the pool
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxStatusDocument))
		return nil, time.Since(began), &StatusError{URL: f.url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxStatusDocument+1))
	if err != nil {
		return nil, time.Since(began), fmt.Errorf("read status body: %w", err)
	}
	if len(body) > maxStatusDocument {
		return nil, time.Since(began), fmt.Errorf("%w: over %d bytes from %s", ErrDocumentTooLarge, maxStatusDocument, f.url)
	}
	return body, time.Since(began), nil
}

// Close drops idle pooled connections. The fetcher stays usable.
func (f *Fetcher) Close() {
	if f == nil || f.hc == nil {
		return
	}
	f.hc.CloseIdleConnections()
}
