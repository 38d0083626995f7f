package forgedeck

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/jpalmerr/forgedeck/internal/poller"
	"github.com/jpalmerr/forgedeck/internal/store"
)

// DefaultEndpoint is the ForgeServ status API.
const DefaultEndpoint = "https://api.forgeserv.net"

const (
	defaultFetchTimeout       = 10 * time.Second
	defaultMinRefreshInterval = time.Second
	eventQueueSize            = 256
)

var (
	// ErrNotRunning is returned by queries made while the event loop is not running.
	ErrNotRunning = errors.New("plugin is not running")

	// ErrAlreadyRunning is returned by a second call to [Plugin.Run].
	ErrAlreadyRunning = errors.New("plugin is already running")
)

// Plugin is the context controller for every dial showing the server list.
//
// Plugin is created with [New] and driven by [Plugin.Run]. Host events are
// delivered through [Plugin.WillAppear], [Plugin.WillDisappear],
// [Plugin.SettingsUpdated] and [Plugin.DialRotate], which are safe to call
// from any goroutine. Events delivered before Run starts are queued.
type Plugin struct {
	fetcher           *poller.Fetcher
	display           Display
	logger            *zap.Logger
	clock             clockwork.Clock
	cache             *store.MemoryStore
	minRefresh        time.Duration
	feedbackCallbacks []func(context string, fb Feedback)

	events chan func()
	done   chan struct{}

	mu      sync.Mutex
	started bool

	// owned by the event loop
	runCtx   context.Context
	contexts map[string]*deckContext
	fetches  sync.WaitGroup
}

// New creates a [Plugin] with the given options.
//
// [WithDisplay] is required. Other options default to:
//   - Endpoint: [DefaultEndpoint]
//   - Fetch timeout: 10 seconds
//   - Minimum refresh interval: 1 second
//   - Logger: nop
//   - Clock: real time
func New(opts ...Option) (*Plugin, error) {
	cfg := &pluginConfig{
		endpoint:           DefaultEndpoint,
		fetchTimeout:       defaultFetchTimeout,
		minRefreshInterval: defaultMinRefreshInterval,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.display == nil {
		return nil, errors.New("a display is required")
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := cfg.clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	headers := cfg.headers
	if cfg.userAgent != "" {
		if headers == nil {
			headers = make(map[string]string, 1)
		}
		headers["User-Agent"] = cfg.userAgent
	}

	return &Plugin{
		fetcher:           poller.NewFetcher(cfg.httpClient, cfg.endpoint, cfg.fetchTimeout, headers),
		display:           cfg.display,
		logger:            logger,
		clock:             clock,
		cache:             store.NewMemoryStore(),
		minRefresh:        cfg.minRefreshInterval,
		feedbackCallbacks: cfg.feedbackCallbacks,
		events:            make(chan func(), eventQueueSize),
		done:              make(chan struct{}),
		contexts:          make(map[string]*deckContext),
	}, nil
}

// Run processes events until ctx is cancelled.
//
// On return every context is torn down: pending timers are cancelled and
// in-flight fetches are aborted and waited for. A Plugin runs once; a second
// call returns [ErrAlreadyRunning].
func (p *Plugin) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return ErrAlreadyRunning
	}
	p.started = true
	p.mu.Unlock()

	p.runCtx = ctx
	p.logger.Info("plugin started", zap.String("endpoint", p.fetcher.URL()))

	for {
		select {
		case <-ctx.Done():
			p.shutdown()
			p.logger.Info("plugin stopped")
			return nil
		case fn := <-p.events:
			fn()
		}
	}
}

// shutdown tears down all contexts, then releases any fetch goroutine
// blocked on posting its result.
func (p *Plugin) shutdown() {
	for _, dc := range p.contexts {
		p.teardown(dc)
	}
	close(p.done)
	p.fetches.Wait()
	p.fetcher.Close()
}

// post queues fn for the event loop. It reports false once the loop has exited.
func (p *Plugin) post(fn func()) bool {
	select {
	case <-p.done:
		return false
	default:
	}

	select {
	case p.events <- fn:
		return true
	case <-p.done:
		return false
	}
}

// query runs fn on the event loop and waits for it to finish.
func (p *Plugin) query(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !p.post(func() {
		fn()
		close(finished)
	}) {
		return ErrNotRunning
	}

	select {
	case <-finished:
		return nil
	case <-p.done:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WillAppear registers a context and starts polling for it. If the context
// is already live only its preferences are refreshed.
func (p *Plugin) WillAppear(context string, settings Settings) {
	prefs := ParsePreferences(settings)
	p.post(func() { p.appear(context, prefs) })
}

// WillDisappear tears a context down. No render for it happens afterwards.
func (p *Plugin) WillDisappear(context string) {
	p.post(func() { p.disappear(context) })
}

// SettingsUpdated replaces a context's preferences and re-renders it.
func (p *Plugin) SettingsUpdated(context string, settings Settings) {
	prefs := ParsePreferences(settings)
	p.post(func() { p.updateSettings(context, prefs) })
}

// DialRotate applies a signed tick count to a context's dial override.
// Zero ticks are ignored.
func (p *Plugin) DialRotate(context string, ticks int) {
	if ticks == 0 {
		return
	}
	p.post(func() { p.rotate(context, ticks) })
}

// Contexts returns the state of every live context, sorted by ID.
func (p *Plugin) Contexts(ctx context.Context) ([]ContextState, error) {
	var states []ContextState
	if err := p.query(ctx, func() { states = p.snapshotContexts() }); err != nil {
		return nil, err
	}
	return states, nil
}

// Context returns the state of one context. The boolean is false when the
// context is not live.
func (p *Plugin) Context(ctx context.Context, id string) (ContextState, bool, error) {
	var (
		state ContextState
		found bool
	)
	err := p.query(ctx, func() {
		if dc, ok := p.contexts[id]; ok {
			state, found = p.stateOf(dc), true
		}
	})
	return state, found, err
}

// Servers returns a copy of the shared server cache.
func (p *Plugin) Servers() []Server {
	return fromStoreServers(p.cache.Current().Servers)
}

// Cache exposes the shared cache for read-only consumers such as the debug API.
func (p *Plugin) Cache() store.Store {
	return p.cache
}

// Endpoint returns the polled status API URL.
func (p *Plugin) Endpoint() string {
	return p.fetcher.URL()
}
