package forgedeck

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/jpalmerr/forgedeck/internal/schedule"
)

// deckContext is the single owned record for one live dial. It is created on
// appear and destroyed on disappear, and only touched by the event loop.
type deckContext struct {
	id    string
	prefs Preferences

	// dial override; override is meaningful only while overriding
	overriding bool
	override   int

	pollTimer  *schedule.Handle
	resetTimer *schedule.Handle

	fetching bool
	ctx      context.Context
	cancel   context.CancelFunc
}

// ContextState is a point-in-time view of one context, for diagnostics.
type ContextState struct {
	ID          string      `json:"id"`
	Preferences Preferences `json:"preferences"`

	// Overriding is true while a dial override is active.
	Overriding bool `json:"overriding"`

	// OverrideIndex is the temporary index; meaningful only when Overriding.
	OverrideIndex int `json:"override_index"`

	// EffectiveIndex is the index currently rendered, or NoSelection.
	EffectiveIndex int `json:"effective_index"`

	PollArmed  bool `json:"poll_armed"`
	ResetArmed bool `json:"reset_armed"`
	Fetching   bool `json:"fetching"`
}

func (p *Plugin) newContext(id string, prefs Preferences) *deckContext {
	ctx, cancel := context.WithCancel(p.runCtx)
	return &deckContext{
		id:         id,
		prefs:      prefs,
		pollTimer:  schedule.New(p.clock),
		resetTimer: schedule.New(p.clock),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// live reports whether dc is still the registered record for its ID. A
// context that disappeared and re-appeared gets a new record, so callbacks
// bound to the old one are dropped.
func (p *Plugin) live(dc *deckContext) bool {
	return p.contexts[dc.id] == dc
}

func (p *Plugin) appear(id string, prefs Preferences) {
	if dc, ok := p.contexts[id]; ok {
		dc.prefs = prefs
		p.render(dc)
		return
	}

	dc := p.newContext(id, prefs)
	p.contexts[id] = dc
	p.logger.Debug("context appeared",
		zap.String("context", id),
		zap.Int("server_index", prefs.ServerIndex),
		zap.Float64("refresh_frequency", prefs.RefreshFrequency),
	)

	// another context may already have filled the cache
	p.render(dc)
	p.startPolling(dc)
}

func (p *Plugin) disappear(id string) {
	dc, ok := p.contexts[id]
	if !ok {
		return
	}
	p.teardown(dc)
	delete(p.contexts, id)
	p.logger.Debug("context disappeared", zap.String("context", id))
}

// teardown cancels both timers and any in-flight fetch for dc.
func (p *Plugin) teardown(dc *deckContext) {
	p.stopPolling(dc)
	dc.resetTimer.Cancel()
	dc.cancel()
}

func (p *Plugin) updateSettings(id string, prefs Preferences) {
	dc, ok := p.contexts[id]
	if !ok {
		p.logger.Debug("settings for unknown context", zap.String("context", id))
		return
	}
	dc.prefs = prefs
	p.render(dc)
}

func (p *Plugin) stateOf(dc *deckContext) ContextState {
	effective, _ := p.resolve(dc)
	return ContextState{
		ID:             dc.id,
		Preferences:    dc.prefs,
		Overriding:     dc.overriding,
		OverrideIndex:  dc.override,
		EffectiveIndex: effective,
		PollArmed:      dc.pollTimer.Armed(),
		ResetArmed:     dc.resetTimer.Armed(),
		Fetching:       dc.fetching,
	}
}

func (p *Plugin) snapshotContexts() []ContextState {
	states := make([]ContextState, 0, len(p.contexts))
	for _, dc := range p.contexts {
		states = append(states, p.stateOf(dc))
	}
	sort.Slice(states, func(i, j int) bool { return states[i].ID < states[j].ID })
	return states
}
