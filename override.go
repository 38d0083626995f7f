package forgedeck

import (
	"go.uber.org/zap"
)

// rotate moves dc's dial override by ticks.
//
// From idle the delta applies to the persisted index; while overriding it
// applies to the temporary index. The sum is clamped, not the seed. Every rotation re-arms the single reset timer, so only the
// last rotation's quiet period counts.
func (p *Plugin) rotate(id string, ticks int) {
	dc, ok := p.contexts[id]
	if !ok {
		p.logger.Debug("dial rotate for unknown context", zap.String("context", id))
		return
	}

	n := p.cache.Len()
	if n == 0 {
		// nothing to scroll through yet
		return
	}

	base := dc.prefs.ServerIndex
	if dc.overriding {
		base = dc.override
	}
	index, _ := Clamp(base+ticks, n)

	dc.override = index
	dc.overriding = true
	p.render(dc)

	dc.resetTimer.Arm(dc.prefs.ResetTimeoutDuration(), func(gen uint64) {
		p.post(func() {
			if p.live(dc) && dc.resetTimer.Claim(gen) {
				p.resetOverride(dc)
			}
		})
	})
}

// resetOverride returns dc to its persisted index.
func (p *Plugin) resetOverride(dc *deckContext) {
	dc.overriding = false
	dc.override = 0
	p.logger.Debug("dial override reset",
		zap.String("context", dc.id),
		zap.Int("server_index", dc.prefs.ServerIndex),
	)
	p.render(dc)
}
