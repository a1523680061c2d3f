// Package keel provides Observer pattern interfaces for event-driven
// communication. Framework events use the CloudEvents specification for
// standardized event format and better interoperability with external
// systems.
package keel

import (
	"context"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// Observer defines the interface for objects that want to be notified of
// framework events. Observers register with a Subject (normally the
// application) and receive every event, or only the types they subscribed
// to.
//
// Delivery is synchronous and in emission order, so observers must handle
// events quickly; a panicking or erroring observer is isolated and logged
// without affecting the emitter or other observers.
type Observer interface {
	// OnEvent is called when an event occurs that the observer is
	// interested in. The context is the one active during the operation
	// that emitted the event.
	OnEvent(ctx context.Context, event cloudevents.Event) error

	// ObserverID returns a unique identifier for this observer, used for
	// registration tracking and debugging.
	ObserverID() string
}

// Subject defines the interface for objects that can be observed.
// The application implements Subject and emits the lifecycle events listed
// in this file's EventType constants.
type Subject interface {
	// RegisterObserver adds an observer to receive notifications.
	// Observers can optionally filter events by type using the eventTypes
	// parameter. If eventTypes is empty, the observer receives all events.
	RegisterObserver(observer Observer, eventTypes ...string) error

	// UnregisterObserver removes an observer from receiving notifications.
	// It is idempotent and does not error if the observer wasn't
	// registered.
	UnregisterObserver(observer Observer) error

	// NotifyObservers sends an event to all interested observers.
	NotifyObservers(ctx context.Context, event cloudevents.Event) error

	// GetObservers returns information about currently registered
	// observers, useful for debugging and monitoring.
	GetObservers() []ObserverInfo
}

// ObserverInfo provides information about a registered observer.
type ObserverInfo struct {
	// ID is the unique identifier of the observer
	ID string `json:"id"`

	// EventTypes are the event types this observer is subscribed to.
	// Empty slice means all events.
	EventTypes []string `json:"eventTypes"`

	// RegisteredAt indicates when the observer was registered
	RegisteredAt time.Time `json:"registeredAt"`
}

// EventType constants for the framework's lifecycle events.
// Following the CloudEvents specification, these use reverse domain
// notation.
const (
	// Component lifecycle events. The initializing, reloading and stopping
	// events mark a phase starting; failed events carry the phase that
	// failed (init, reload, shutdown) in their data.
	EventTypeComponentRegistered   = "com.keelframework.component.registered"
	EventTypeComponentInitializing = "com.keelframework.component.initializing"
	EventTypeComponentInitialized  = "com.keelframework.component.initialized"
	EventTypeComponentReloading    = "com.keelframework.component.reloading"
	EventTypeComponentReloaded     = "com.keelframework.component.reloaded"
	EventTypeComponentStopping     = "com.keelframework.component.stopping"
	EventTypeComponentStopped      = "com.keelframework.component.stopped"
	EventTypeComponentFailed       = "com.keelframework.component.failed"

	// Configuration events
	EventTypeConfigLoaded   = "com.keelframework.config.loaded"
	EventTypeConfigReloaded = "com.keelframework.config.reloaded"

	// Application lifecycle events
	EventTypeApplicationBooted  = "com.keelframework.application.booted"
	EventTypeApplicationStopped = "com.keelframework.application.stopped"
	EventTypeApplicationFailed  = "com.keelframework.application.failed"
)

// FunctionalObserver provides a simple way to create observers using
// functions, for quick observer creation without defining full structs.
type FunctionalObserver struct {
	id      string
	handler func(ctx context.Context, event cloudevents.Event) error
}

// NewFunctionalObserver creates a new observer that uses the provided
// function to handle events.
func NewFunctionalObserver(id string, handler func(ctx context.Context, event cloudevents.Event) error) Observer {
	return &FunctionalObserver{
		id:      id,
		handler: handler,
	}
}

// OnEvent implements the Observer interface by calling the handler function.
func (f *FunctionalObserver) OnEvent(ctx context.Context, event cloudevents.Event) error {
	return f.handler(ctx, event)
}

// ObserverID implements the Observer interface by returning the observer ID.
func (f *FunctionalObserver) ObserverID() string {
	return f.id
}
