package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jpalmerr/forgedeck"
	"github.com/jpalmerr/forgedeck/internal/store"
)

const (
	// sseWriteTimeout is the maximum time allowed for a single SSE write.
	// Must be <= shutdown timeout to ensure clean shutdown.
	sseWriteTimeout = 5 * time.Second

	shutdownTimeout = 5 * time.Second

	// sseEventServers names the event carrying a cache snapshot.
	sseEventServers = "servers"
)

// ContextLister reports the state of every live deck context.
// *forgedeck.Plugin satisfies it.
type ContextLister interface {
	Contexts(ctx context.Context) ([]forgedeck.ContextState, error)
}

var _ ContextLister = (*forgedeck.Plugin)(nil)

// Server handles HTTP requests for the diagnostic API.
type Server struct {
	store    store.Store
	contexts ContextLister
	addr     string
	logger   *zap.Logger

	httpServer *http.Server

	mu       sync.Mutex
	boundTo  net.Addr
	engine   *gin.Engine
	initOnce sync.Once
}

// NewServer creates a new diagnostic [Server] listening on addr.
//
// The server is not started until [Server.Start] is called. A nil logger
// disables logging.
func NewServer(st store.Store, contexts ContextLister, addr string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		store:    st,
		contexts: contexts,
		addr:     addr,
		logger:   logger,
	}
}

// Handler returns the gin engine with all routes registered.
func (s *Server) Handler() http.Handler {
	s.initOnce.Do(func() {
		router := gin.New()
		router.Use(gin.Recovery())

		router.GET("/healthz", s.handleHealth)

		api := router.Group("/api")
		{
			api.GET("/servers", s.handleServers)
			api.GET("/contexts", s.handleContexts)
			api.GET("/contexts/:id", s.handleContext)
			api.GET("/sse", s.handleSSE)
		}

		s.engine = router
	})
	return s.engine
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns once the listener is bound. The server
// runs until ctx is cancelled, then shuts down with a 5-second timeout.
func (s *Server) Start(ctx context.Context) error {
	// bind first so address errors surface synchronously
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to bind to %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.boundTo = ln.Addr()
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Handler: s.Handler(),
		// request contexts end with ctx so SSE handlers exit on shutdown
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("debug server error", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("debug server shutdown error", zap.Error(err))
		}
	}()

	s.logger.Info("debug server listening", zap.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound listener address, or nil before [Server.Start].
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boundTo
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "generation": s.store.Generation()})
}

// handleServers returns the current cache snapshot.
func (s *Server) handleServers(c *gin.Context) {
	c.Header("Cache-Control", "no-cache")
	c.JSON(http.StatusOK, s.store.Current())
}

func (s *Server) handleContexts(c *gin.Context) {
	states, err := s.contexts.Contexts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if states == nil {
		states = []forgedeck.ContextState{}
	}
	c.Header("Cache-Control", "no-cache")
	c.JSON(http.StatusOK, states)
}

func (s *Server) handleContext(c *gin.Context) {
	id := c.Param("id")
	states, err := s.contexts.Contexts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	for _, st := range states {
		if st.ID == id {
			c.JSON(http.StatusOK, st)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("context %q not found", id)})
}

// handleSSE streams the current snapshot and then every replacement.
//
// Writes carry a deadline where the connection supports one, so a stalled
// client cannot pin the handler past shutdown.
func (s *Server) handleSSE(c *gin.Context) {
	rc := http.NewResponseController(c.Writer)
	deadlinesSupported := true

	send := func(snap store.Snapshot) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				s.logger.Debug("sse write deadlines not supported", zap.Error(err))
				deadlinesSupported = false
			}
		}
		c.SSEvent(sseEventServers, snap)
		if last := c.Errors.Last(); last != nil {
			return last.Err
		}
		c.Writer.Flush()
		return nil
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Access-Control-Allow-Origin", "*")
	c.Status(http.StatusOK)

	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)
	defer func() {
		if n := s.store.Dropped(ch); n > 0 {
			s.logger.Debug("sse client fell behind", zap.Uint64("dropped", n))
		}
	}()

	if err := send(s.store.Current()); err != nil {
		return
	}

	ctx := c.Request.Context()
	for {
		select {
		case snap, ok := <-ch:
			if !ok {
				return
			}
			if err := send(snap); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
