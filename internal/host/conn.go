package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait        = 10 * time.Second
	handshakeTimeout = 5 * time.Second
	maxMsgSize       = 1 << 20 // 1MB; willAppear can carry large settings
)

// ErrClosed is returned by send methods after the connection is closed.
var ErrClosed = errors.New("host connection closed")

// Conn is a registered connection to the Stream Deck host.
type Conn struct {
	ws     *websocket.Conn
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
}

// Dial connects to the host on the loopback port from reg and registers the
// plugin. A nil logger disables logging.
func Dial(ctx context.Context, reg Registration, logger *zap.Logger) (*Conn, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	u := url.URL{
		Scheme: "ws",
		Host:   net.JoinHostPort("127.0.0.1", strconv.Itoa(reg.Port)),
	}
	return DialURL(ctx, u.String(), reg, logger)
}

// DialURL is [Dial] against an explicit websocket URL.
func DialURL(ctx context.Context, rawURL string, reg Registration, logger *zap.Logger) (*Conn, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	ws, _, err := dialer.DialContext(ctx, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial host %s: %w", rawURL, err)
	}
	ws.SetReadLimit(maxMsgSize)

	c := &Conn{ws: ws, logger: logger}
	if err := c.writeJSON(registerMessage{Event: reg.RegisterEvent, UUID: reg.PluginUUID}); err != nil {
		_ = ws.Close()
		return nil, fmt.Errorf("register plugin: %w", err)
	}

	logger.Info("registered with host",
		zap.String("url", rawURL),
		zap.String("register_event", reg.RegisterEvent),
	)
	return c, nil
}

// Listen reads events until ctx is cancelled or the host closes the
// connection, calling handle for each one on the calling goroutine.
//
// A clean close by the host returns nil. Malformed messages are logged and
// skipped.
func (c *Conn) Listen(ctx context.Context, handle func(Event)) error {
	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Info("host closed connection")
				return nil
			}
			return fmt.Errorf("read from host: %w", err)
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			c.logger.Warn("malformed host message",
				zap.Int("length", len(data)),
				zap.Error(err),
			)
			continue
		}

		c.logger.Debug("host event",
			zap.String("event", ev.Event),
			zap.String("context", ev.Context),
		)
		handle(ev)
	}
}

// SetFeedback updates the touch strip layout for context.
func (c *Conn) SetFeedback(context string, payload any) error {
	return c.send(eventSetFeedback, context, payload)
}

// SetSettings persists settings for context.
func (c *Conn) SetSettings(context string, settings map[string]any) error {
	return c.send(eventSetSettings, context, settings)
}

// SendToPropertyInspector delivers payload to the inspector open for context.
func (c *Conn) SendToPropertyInspector(context string, payload any) error {
	return c.send(eventSendToPropertyInspector, context, payload)
}

func (c *Conn) send(event, context string, payload any) error {
	return c.writeJSON(outbound{Event: event, Context: context, Payload: payload})
}

func (c *Conn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(v)
}

// Close sends a close frame and closes the underlying connection.
// It is safe to call more than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	return c.ws.Close()
}
