package host

import (
	"encoding/json"
	"fmt"
)

// Inbound event names handled by the plugin.
const (
	EventWillAppear                 = "willAppear"
	EventWillDisappear              = "willDisappear"
	EventDidReceiveSettings         = "didReceiveSettings"
	EventSendToPlugin               = "sendToPlugin"
	EventDialRotate                 = "dialRotate"
	EventPropertyInspectorDidAppear = "propertyInspectorDidAppear"
)

// Outbound event names.
const (
	eventSetFeedback             = "setFeedback"
	eventSetSettings             = "setSettings"
	eventSendToPropertyInspector = "sendToPropertyInspector"
)

// Registration holds the values the host passes on the command line.
type Registration struct {
	Port          int
	PluginUUID    string
	RegisterEvent string
	Info          string
}

// Validate reports whether the registration can be used to dial the host.
func (r Registration) Validate() error {
	if r.Port <= 0 || r.Port > 65535 {
		return fmt.Errorf("invalid port %d", r.Port)
	}
	if r.PluginUUID == "" {
		return fmt.Errorf("plugin UUID is required")
	}
	if r.RegisterEvent == "" {
		return fmt.Errorf("register event is required")
	}
	return nil
}

// Event is one message received from the host.
type Event struct {
	Event   string          `json:"event"`
	Action  string          `json:"action,omitempty"`
	Context string          `json:"context,omitempty"`
	Device  string          `json:"device,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SettingsPayload is the payload of willAppear and didReceiveSettings.
type SettingsPayload struct {
	Settings map[string]any `json:"settings"`
}

// SendToPluginPayload is the payload the property inspector sends with
// sendToPlugin; the form values sit under "value".
type SendToPluginPayload struct {
	Value map[string]any `json:"value"`
}

// DialRotatePayload is the payload of dialRotate.
type DialRotatePayload struct {
	Ticks   int  `json:"ticks"`
	Pressed bool `json:"pressed"`
}

// Settings decodes a willAppear or didReceiveSettings payload.
func (e Event) Settings() (map[string]any, error) {
	var p SettingsPayload
	if err := e.decode(&p); err != nil {
		return nil, err
	}
	return p.Settings, nil
}

// Value decodes a sendToPlugin payload.
func (e Event) Value() (map[string]any, error) {
	var p SendToPluginPayload
	if err := e.decode(&p); err != nil {
		return nil, err
	}
	return p.Value, nil
}

// Ticks decodes a dialRotate payload.
func (e Event) Ticks() (int, error) {
	var p DialRotatePayload
	if err := e.decode(&p); err != nil {
		return 0, err
	}
	return p.Ticks, nil
}

func (e Event) decode(v any) error {
	if len(e.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Event, err)
	}
	return nil
}

// registerMessage is the first message sent after connecting.
type registerMessage struct {
	Event string `json:"event"`
	UUID  string `json:"uuid"`
}

// outbound is the envelope for every plugin-to-host message.
type outbound struct {
	Event   string `json:"event"`
	Context string `json:"context"`
	Payload any    `json:"payload,omitempty"`
}
