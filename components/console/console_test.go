package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/keelframework/keel"
	"github.com/keelframework/keel/shell"
)

func newBufferObserver() (*Observer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	sh := shell.New(out, out, shell.ColorNever)
	return NewWithShell(sh), out
}

func componentEvent(eventType, name string) keel.CloudEvent {
	return keel.NewCloudEvent(eventType, "app", map[string]any{"component": name}, nil)
}

func TestObserverID(t *testing.T) {
	o, _ := newBufferObserver()
	if got := o.ObserverID(); got != "console" {
		t.Errorf("Expected observer ID %q, got %q", "console", got)
	}
}

func TestOnEvent(t *testing.T) {
	tests := []struct {
		name  string
		event keel.CloudEvent
		want  string
	}{
		{
			name:  "component registered",
			event: componentEvent(keel.EventTypeComponentRegistered, "database"),
			want:  "  registered  component \"database\"\n",
		},
		{
			name:  "component initializing",
			event: componentEvent(keel.EventTypeComponentInitializing, "database"),
			want:  "    starting  component \"database\"\n",
		},
		{
			name:  "component initialized",
			event: componentEvent(keel.EventTypeComponentInitialized, "database"),
			want:  "       ready  component \"database\" initialized\n",
		},
		{
			name:  "component reloading",
			event: componentEvent(keel.EventTypeComponentReloading, "cache"),
			want:  "   reloading  component \"cache\"\n",
		},
		{
			name:  "component reloaded",
			event: componentEvent(keel.EventTypeComponentReloaded, "cache"),
			want:  "    reloaded  component \"cache\" accepted new configuration\n",
		},
		{
			name:  "component stopping",
			event: componentEvent(keel.EventTypeComponentStopping, "cache"),
			want:  "    stopping  component \"cache\"\n",
		},
		{
			name:  "component stopped",
			event: componentEvent(keel.EventTypeComponentStopped, "cache"),
			want:  "     stopped  component \"cache\"\n",
		},
		{
			name: "component failed",
			event: keel.NewCloudEvent(keel.EventTypeComponentFailed, "app",
				map[string]any{"component": "web", "error": "port in use"}, nil),
			want: "      failed  component \"web\": port in use\n",
		},
		{
			name:  "config loaded",
			event: keel.NewCloudEvent(keel.EventTypeConfigLoaded, "app", nil, nil),
			want:  "      config  configuration loaded\n",
		},
		{
			name:  "config reloaded",
			event: keel.NewCloudEvent(keel.EventTypeConfigReloaded, "app", nil, nil),
			want:  "      config  configuration reloaded\n",
		},
		{
			name:  "application booted",
			event: keel.NewCloudEvent(keel.EventTypeApplicationBooted, "billing", nil, nil),
			want:  "      booted  application billing is running\n",
		},
		{
			name:  "application stopped",
			event: keel.NewCloudEvent(keel.EventTypeApplicationStopped, "billing", nil, nil),
			want:  "     stopped  application billing\n",
		},
		{
			name: "application failed",
			event: keel.NewCloudEvent(keel.EventTypeApplicationFailed, "billing",
				map[string]any{"error": "boot halted"}, nil),
			want: "      failed  application billing: boot halted\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, out := newBufferObserver()
			if err := o.OnEvent(context.Background(), tt.event); err != nil {
				t.Fatalf("OnEvent returned error: %v", err)
			}
			if got := out.String(); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestOnEventIgnoresUnknownTypes(t *testing.T) {
	o, out := newBufferObserver()

	event := keel.NewCloudEvent("com.example.custom", "app", nil, nil)
	if err := o.OnEvent(context.Background(), event); err != nil {
		t.Fatalf("OnEvent returned error: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("Expected no output for unknown event type, got %q", out.String())
	}
}

func TestOnEventMissingComponentName(t *testing.T) {
	o, out := newBufferObserver()

	event := keel.NewCloudEvent(keel.EventTypeComponentInitialized, "app", nil, nil)
	if err := o.OnEvent(context.Background(), event); err != nil {
		t.Fatalf("OnEvent returned error: %v", err)
	}
	want := "       ready  component \"unknown\" initialized\n"
	if got := out.String(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

type noopComponent struct{ name string }

func (c *noopComponent) Name() string                { return c.name }
func (c *noopComponent) Init(keel.Application) error { return nil }

func TestObserverThroughApplication(t *testing.T) {
	o, out := newBufferObserver()

	app, err := keel.New(
		keel.WithName("console-app"),
		keel.WithObserver(o),
		keel.WithComponents(&noopComponent{name: "worker"}),
	)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := app.Boot(context.Background()); err != nil {
		t.Fatalf("Boot returned error: %v", err)
	}
	defer func() {
		if err := app.Shutdown(context.Background()); err != nil {
			t.Errorf("Shutdown returned error: %v", err)
		}
	}()

	got := out.String()
	for _, want := range []string{
		"  registered  component \"worker\"\n",
		"      config  configuration loaded\n",
		"    starting  component \"worker\"\n",
		"       ready  component \"worker\" initialized\n",
		"      booted  application console-app is running\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, got)
		}
	}
}
