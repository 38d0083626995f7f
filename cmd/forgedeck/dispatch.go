package main

import (
	"go.uber.org/zap"

	"github.com/jpalmerr/forgedeck"
	"github.com/jpalmerr/forgedeck/internal/host"
)

// lifecycle is the part of *forgedeck.Plugin driven by host events.
type lifecycle interface {
	WillAppear(context string, settings forgedeck.Settings)
	WillDisappear(context string)
	SettingsUpdated(context string, settings forgedeck.Settings)
	DialRotate(context string, ticks int)
	Servers() []forgedeck.Server
}

// inspector is the host side of the property inspector: it answers the
// open form and stores the context's settings.
type inspector interface {
	SendToPropertyInspector(context string, payload any) error
	SetSettings(context string, settings map[string]any) error
}

// inspectorPayload lists the cached servers so the inspector can offer them
// by name instead of a bare index.
type inspectorPayload struct {
	Servers []string `json:"servers"`
}

// dispatcher maps host events onto the plugin.
type dispatcher struct {
	plugin    lifecycle
	inspector inspector
	logger    *zap.Logger
}

func newDispatcher(p lifecycle, i inspector, logger *zap.Logger) *dispatcher {
	return &dispatcher{plugin: p, inspector: i, logger: logger}
}

func (d *dispatcher) handle(ev host.Event) {
	switch ev.Event {
	case host.EventWillAppear:
		s, err := ev.Settings()
		if err != nil {
			// still register the context; preferences fall back to zero
			d.malformed(ev, err)
		}
		d.plugin.WillAppear(ev.Context, s)

	case host.EventWillDisappear:
		d.plugin.WillDisappear(ev.Context)

	case host.EventDidReceiveSettings:
		s, err := ev.Settings()
		if err != nil {
			d.malformed(ev, err)
			return
		}
		d.plugin.SettingsUpdated(ev.Context, s)

	case host.EventSendToPlugin:
		v, err := ev.Value()
		if err != nil {
			d.malformed(ev, err)
			return
		}
		if v == nil {
			d.logger.Debug("sendToPlugin without value", zap.String("context", ev.Context))
			return
		}
		d.plugin.SettingsUpdated(ev.Context, v)

		// store the parsed form so the next willAppear sees the same values
		// the plugin is running with
		prefs := forgedeck.ParsePreferences(v)
		if err := d.inspector.SetSettings(ev.Context, prefs.Settings()); err != nil {
			d.logger.Warn("failed to persist settings",
				zap.String("context", ev.Context),
				zap.Error(err),
			)
		}

	case host.EventDialRotate:
		ticks, err := ev.Ticks()
		if err != nil {
			d.malformed(ev, err)
			return
		}
		d.plugin.DialRotate(ev.Context, ticks)

	case host.EventPropertyInspectorDidAppear:
		servers := d.plugin.Servers()
		names := make([]string, len(servers))
		for i, s := range servers {
			names[i] = s.Name
		}
		if err := d.inspector.SendToPropertyInspector(ev.Context, inspectorPayload{Servers: names}); err != nil {
			d.logger.Warn("failed to update property inspector",
				zap.String("context", ev.Context),
				zap.Error(err),
			)
		}

	default:
		d.logger.Debug("ignored host event",
			zap.String("event", ev.Event),
			zap.String("context", ev.Context),
		)
	}
}

func (d *dispatcher) malformed(ev host.Event, err error) {
	d.logger.Warn("malformed host event",
		zap.String("event", ev.Event),
		zap.String("context", ev.Context),
		zap.Error(err),
	)
}
