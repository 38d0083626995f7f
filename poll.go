package forgedeck

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/jpalmerr/forgedeck/internal/poller"
	"github.com/jpalmerr/forgedeck/internal/store"
)

// startPolling fetches immediately; each completion schedules the next cycle.
func (p *Plugin) startPolling(dc *deckContext) {
	p.poll(dc)
}

// stopPolling cancels the pending poll timer. An in-flight fetch is aborted
// by cancelling the context's lifetime in teardown.
func (p *Plugin) stopPolling(dc *deckContext) {
	dc.pollTimer.Cancel()
}

// poll starts one fetch for dc on its own goroutine. At most one fetch per
// context is in flight.
func (p *Plugin) poll(dc *deckContext) {
	if dc.fetching {
		return
	}
	dc.fetching = true

	ctx := dc.ctx
	p.fetches.Add(1)
	go func() {
		defer p.fetches.Done()

		body, latency, err := p.fetcher.Fetch(ctx)
		var servers []Server
		if err == nil {
			servers, err = DecodeServers(body)
		}
		p.post(func() { p.fetchCompleted(dc, servers, latency, err) })
	}()
}

// fetchCompleted applies a poll result. Success replaces the shared cache and
// re-renders dc; any failure keeps the previous cache and display. Either way
// the next cycle is scheduled.
func (p *Plugin) fetchCompleted(dc *deckContext, servers []Server, latency time.Duration, err error) {
	dc.fetching = false
	if !p.live(dc) {
		return
	}

	if err != nil {
		var statusErr *poller.StatusError
		if errors.As(err, &statusErr) {
			p.logger.Debug("poll skipped",
				zap.String("context", dc.id),
				zap.Int("status_code", statusErr.StatusCode),
			)
		} else {
			p.logger.Warn("poll failed",
				zap.String("context", dc.id),
				zap.Duration("latency", latency),
				zap.Error(err),
			)
		}
	} else {
		p.cache.Replace(store.Snapshot{
			Servers:   toStoreServers(servers),
			Context:   dc.id,
			UpdatedAt: p.clock.Now(),
		})
		p.logger.Debug("poll completed",
			zap.String("context", dc.id),
			zap.Int("servers", len(servers)),
			zap.Duration("latency", latency),
		)
		p.render(dc)
	}

	p.schedulePoll(dc)
}

// schedulePoll arms dc's poll timer using the refresh interval in effect now.
func (p *Plugin) schedulePoll(dc *deckContext) {
	dc.pollTimer.Arm(p.refreshInterval(dc.prefs), func(gen uint64) {
		p.post(func() {
			if p.live(dc) && dc.pollTimer.Claim(gen) {
				p.poll(dc)
			}
		})
	})
}

// refreshInterval floors the configured frequency so a zero or garbage
// setting cannot turn the loop into a hot spin.
func (p *Plugin) refreshInterval(prefs Preferences) time.Duration {
	d := prefs.RefreshInterval()
	if d < p.minRefresh {
		return p.minRefresh
	}
	return d
}
