// Package console provides an observer that renders application lifecycle
// events as human-readable status lines, next to whatever structured
// logging the application does.
package console

import (
	"context"

	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/keelframework/keel"
	"github.com/keelframework/keel/shell"
)

// Observer renders lifecycle events through a shell. Register it with
// keel.WithObserver:
//
//	app, err := keel.New(
//		keel.WithObserver(console.New()),
//	)
type Observer struct {
	sh *shell.Shell
}

// New creates a console observer writing through the default shell.
func New() *Observer {
	return NewWithShell(shell.Default())
}

// NewWithShell creates a console observer writing through sh.
func NewWithShell(sh *shell.Shell) *Observer {
	return &Observer{sh: sh}
}

// ObserverID identifies this observer in the subject's registry.
func (o *Observer) ObserverID() string {
	return "console"
}

// OnEvent renders a single lifecycle event. Unknown event types are
// ignored so applications emitting their own events don't produce noise
// here.
func (o *Observer) OnEvent(_ context.Context, event cloudevents.Event) error {
	switch event.Type() {
	case keel.EventTypeComponentRegistered:
		o.sh.StatusOK("registered", "component %q", eventComponent(event))
	case keel.EventTypeComponentInitializing:
		o.sh.StatusOK("starting", "component %q", eventComponent(event))
	case keel.EventTypeComponentInitialized:
		o.sh.StatusOK("ready", "component %q initialized", eventComponent(event))
	case keel.EventTypeComponentReloading:
		o.sh.StatusOK("reloading", "component %q", eventComponent(event))
	case keel.EventTypeComponentReloaded:
		o.sh.StatusOK("reloaded", "component %q accepted new configuration", eventComponent(event))
	case keel.EventTypeComponentStopping:
		o.sh.StatusOK("stopping", "component %q", eventComponent(event))
	case keel.EventTypeComponentStopped:
		o.sh.StatusOK("stopped", "component %q", eventComponent(event))
	case keel.EventTypeComponentFailed:
		o.sh.StatusFail("failed", "component %q: %s", eventComponent(event), eventField(event, "error"))
	case keel.EventTypeConfigLoaded:
		o.sh.StatusOK("config", "configuration loaded")
	case keel.EventTypeConfigReloaded:
		o.sh.StatusOK("config", "configuration reloaded")
	case keel.EventTypeApplicationBooted:
		o.sh.StatusOK("booted", "application %s is running", event.Source())
	case keel.EventTypeApplicationStopped:
		o.sh.StatusOK("stopped", "application %s", event.Source())
	case keel.EventTypeApplicationFailed:
		o.sh.StatusFail("failed", "application %s: %s", event.Source(), eventField(event, "error"))
	}

	return nil
}

// eventComponent extracts the component name from event data.
func eventComponent(event cloudevents.Event) string {
	if name := eventField(event, "component"); name != "" {
		return name
	}
	return "unknown"
}

// eventField extracts a string field from the event's JSON data.
func eventField(event cloudevents.Event, field string) string {
	var data map[string]any
	if err := event.DataAs(&data); err != nil {
		return ""
	}
	value, _ := data[field].(string)
	return value
}
