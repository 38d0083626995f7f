package host

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// fakeHost is a websocket server standing in for the Stream Deck application.
type fakeHost struct {
	*httptest.Server
	conns chan *websocket.Conn
}

func newFakeHost(t *testing.T) *fakeHost {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	h := &fakeHost{conns: make(chan *websocket.Conn, 1)}
	h.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.conns <- ws
	}))
	t.Cleanup(h.Close)
	return h
}

func (h *fakeHost) wsURL() string {
	return "ws" + strings.TrimPrefix(h.URL, "http")
}

func (h *fakeHost) accept(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case ws := <-h.conns:
		t.Cleanup(func() { _ = ws.Close() })
		return ws
	case <-time.After(2 * time.Second):
		t.Fatal("plugin never connected")
		return nil
	}
}

func readJSON(t *testing.T, ws *websocket.Conn, v any) {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := ws.ReadJSON(v); err != nil {
		t.Fatalf("read: %v", err)
	}
}

var testReg = Registration{
	Port:          28196,
	PluginUUID:    "ABCDEF0123",
	RegisterEvent: "registerPlugin",
}

func dialFake(t *testing.T) (*Conn, *websocket.Conn) {
	t.Helper()
	h := newFakeHost(t)
	c, err := DialURL(context.Background(), h.wsURL(), testReg, zap.NewNop())
	if err != nil {
		t.Fatalf("DialURL() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, h.accept(t)
}

func TestRegistration_Validate(t *testing.T) {
	tests := []struct {
		name    string
		reg     Registration
		wantErr bool
	}{
		{"valid", testReg, false},
		{"zero port", Registration{PluginUUID: "x", RegisterEvent: "r"}, true},
		{"port too large", Registration{Port: 70000, PluginUUID: "x", RegisterEvent: "r"}, true},
		{"missing uuid", Registration{Port: 1, RegisterEvent: "r"}, true},
		{"missing event", Registration{Port: 1, PluginUUID: "x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDial_InvalidRegistration(t *testing.T) {
	if _, err := Dial(context.Background(), Registration{}, nil); err == nil {
		t.Fatal("Dial() expected error, got nil")
	}
}

func TestDialURL_Unreachable(t *testing.T) {
	h := newFakeHost(t)
	url := h.wsURL()
	h.Close()

	if _, err := DialURL(context.Background(), url, testReg, nil); err == nil {
		t.Fatal("DialURL() expected error for closed server, got nil")
	}
}

func TestDialURL_SendsRegistration(t *testing.T) {
	_, ws := dialFake(t)

	var msg map[string]string
	readJSON(t, ws, &msg)

	if msg["event"] != "registerPlugin" {
		t.Errorf("event = %q, want registerPlugin", msg["event"])
	}
	if msg["uuid"] != "ABCDEF0123" {
		t.Errorf("uuid = %q, want ABCDEF0123", msg["uuid"])
	}
}

func TestConn_OutboundMessages(t *testing.T) {
	c, ws := dialFake(t)
	var reg map[string]string
	readJSON(t, ws, &reg)

	tests := []struct {
		name      string
		send      func() error
		wantEvent string
		wantKey   string
		wantValue any
	}{
		{
			name: "setFeedback",
			send: func() error {
				return c.SetFeedback("ctx-1", map[string]string{"title": "Lobby"})
			},
			wantEvent: "setFeedback",
			wantKey:   "title",
			wantValue: "Lobby",
		},
		{
			name: "setSettings",
			send: func() error {
				return c.SetSettings("ctx-1", map[string]any{"serverIdx": 2})
			},
			wantEvent: "setSettings",
			wantKey:   "serverIdx",
			wantValue: float64(2),
		},
		{
			name: "sendToPropertyInspector",
			send: func() error {
				return c.SendToPropertyInspector("ctx-1", map[string]any{"servers": 3})
			},
			wantEvent: "sendToPropertyInspector",
			wantKey:   "servers",
			wantValue: float64(3),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.send(); err != nil {
				t.Fatalf("send error = %v", err)
			}

			var msg struct {
				Event   string         `json:"event"`
				Context string         `json:"context"`
				Payload map[string]any `json:"payload"`
			}
			readJSON(t, ws, &msg)

			if msg.Event != tt.wantEvent {
				t.Errorf("event = %q, want %q", msg.Event, tt.wantEvent)
			}
			if msg.Context != "ctx-1" {
				t.Errorf("context = %q, want ctx-1", msg.Context)
			}
			if msg.Payload[tt.wantKey] != tt.wantValue {
				t.Errorf("payload[%s] = %v, want %v", tt.wantKey, msg.Payload[tt.wantKey], tt.wantValue)
			}
		})
	}
}

func TestConn_Listen(t *testing.T) {
	c, ws := dialFake(t)
	var reg map[string]string
	readJSON(t, ws, &reg)

	events := make(chan Event, 4)
	done := make(chan error, 1)
	go func() {
		done <- c.Listen(context.Background(), func(ev Event) { events <- ev })
	}()

	_ = ws.WriteMessage(websocket.TextMessage, []byte("not json"))
	_ = ws.WriteJSON(map[string]any{
		"event":   "dialRotate",
		"action":  "net.forgeserv.api.action",
		"context": "ctx-1",
		"device":  "dev-1",
		"payload": map[string]any{"ticks": -2, "pressed": false},
	})

	select {
	case ev := <-events:
		if ev.Event != EventDialRotate || ev.Context != "ctx-1" || ev.Device != "dev-1" {
			t.Errorf("event = %+v", ev)
		}
		ticks, err := ev.Ticks()
		if err != nil {
			t.Fatalf("Ticks() error = %v", err)
		}
		if ticks != -2 {
			t.Errorf("Ticks() = %d, want -2", ticks)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
	_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Listen() error = %v, want nil on normal close", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Listen() did not return after close")
	}
}

func TestConn_ListenStopsOnCancel(t *testing.T) {
	c, _ := dialFake(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Listen(ctx, func(Event) {}) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Listen() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Listen() did not return after cancel")
	}

	if err := c.SetFeedback("ctx-1", nil); err != ErrClosed {
		t.Errorf("SetFeedback() after close error = %v, want ErrClosed", err)
	}
}

func TestEvent_PayloadDecoding(t *testing.T) {
	appear := Event{
		Event:   EventWillAppear,
		Payload: json.RawMessage(`{"settings":{"serverIdx":"2","resetTimeout":5},"coordinates":{"column":0,"row":0}}`),
	}
	settings, err := appear.Settings()
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	if settings["serverIdx"] != "2" || settings["resetTimeout"] != float64(5) {
		t.Errorf("Settings() = %v", settings)
	}

	toPlugin := Event{
		Event:   EventSendToPlugin,
		Payload: json.RawMessage(`{"value":{"refreshFrequency":"30"}}`),
	}
	value, err := toPlugin.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if value["refreshFrequency"] != "30" {
		t.Errorf("Value() = %v", value)
	}

	empty := Event{Event: EventDialRotate}
	if ticks, err := empty.Ticks(); err != nil || ticks != 0 {
		t.Errorf("Ticks() on empty payload = %d, %v; want 0, nil", ticks, err)
	}

	bad := Event{Event: EventDialRotate, Payload: json.RawMessage(`{"ticks":"lots"}`)}
	if _, err := bad.Ticks(); err == nil {
		t.Error("Ticks() expected error for string ticks, got nil")
	}
}
