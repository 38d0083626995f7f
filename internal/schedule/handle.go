// Package schedule provides cancellable one-shot timer handles with an
// explicit armed/idle state.
//
// A [Handle] is owned by a single goroutine (the plugin event loop). The fire
// callback runs on a clock goroutine and only carries the generation number
// back to the owner, which calls [Handle.Claim] to find out whether the
// firing is still current. A firing that raced with [Handle.Arm] or
// [Handle.Cancel] is therefore discarded instead of acting twice.
package schedule

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Handle holds at most one pending timer.
type Handle struct {
	clock clockwork.Clock
	timer clockwork.Timer
	gen   uint64
	armed bool
}

// New returns an idle [Handle] driven by clock.
func New(clock clockwork.Clock) *Handle {
	return &Handle{clock: clock}
}

// Arm cancels any pending timer and schedules fire after d.
// It returns the generation passed to fire.
func (h *Handle) Arm(d time.Duration, fire func(gen uint64)) uint64 {
	h.Cancel()

	h.gen++
	gen := h.gen
	h.armed = true
	h.timer = h.clock.AfterFunc(d, func() { fire(gen) })
	return gen
}

// Cancel stops the pending timer, if any. It reports whether a timer was armed.
func (h *Handle) Cancel() bool {
	if !h.armed {
		return false
	}
	h.timer.Stop()
	h.timer = nil
	h.armed = false
	// bump so a callback already in flight is stale
	h.gen++
	return true
}

// Armed reports whether a timer is pending.
func (h *Handle) Armed() bool {
	return h.armed
}

// Claim reports whether gen belongs to the pending timer. A successful claim
// moves the handle back to idle.
func (h *Handle) Claim(gen uint64) bool {
	if !h.armed || gen != h.gen {
		return false
	}
	h.timer = nil
	h.armed = false
	return true
}
