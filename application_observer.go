package keel

import (
	"context"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// observerRegistration holds information about a registered observer
type observerRegistration struct {
	observer     Observer
	eventTypes   map[string]bool // set of event types this observer is interested in
	registeredAt time.Time
}

// RegisterObserver adds an observer to receive notifications from the
// application. Observers can optionally filter events by type using the
// eventTypes parameter; an empty list subscribes to all events.
//
// Re-registering an existing observer ID replaces its subscription but
// keeps its position in the delivery order.
func (app *StdApplication) RegisterObserver(observer Observer, eventTypes ...string) error {
	if observer == nil {
		return ErrObserverNil
	}

	app.observerMu.Lock()
	defer app.observerMu.Unlock()

	// Convert event types slice to map for O(1) lookups
	eventTypeMap := make(map[string]bool)
	for _, eventType := range eventTypes {
		eventTypeMap[eventType] = true
	}

	id := observer.ObserverID()
	if _, exists := app.observers[id]; !exists {
		app.observerOrder = append(app.observerOrder, id)
	}
	app.observers[id] = observerRegistration{
		observer:     observer,
		eventTypes:   eventTypeMap,
		registeredAt: time.Now(),
	}

	app.logger.Info("Observer registered", "observerID", id, "eventTypes", eventTypes)
	return nil
}

// UnregisterObserver removes an observer from receiving notifications.
// This method is idempotent and won't error if the observer wasn't registered.
func (app *StdApplication) UnregisterObserver(observer Observer) error {
	if observer == nil {
		return ErrObserverNil
	}

	app.observerMu.Lock()
	defer app.observerMu.Unlock()

	id := observer.ObserverID()
	if _, exists := app.observers[id]; exists {
		delete(app.observers, id)
		for i, existing := range app.observerOrder {
			if existing == id {
				app.observerOrder = append(app.observerOrder[:i], app.observerOrder[i+1:]...)
				break
			}
		}
		app.logger.Info("Observer unregistered", "observerID", id)
	}

	return nil
}

// NotifyObservers delivers a CloudEvent to every interested observer,
// synchronously and in registration order. Delivery order is deterministic
// so lifecycle events arrive in the sequence the lifecycle produced them. A
// panicking observer is contained and logged; observer errors are logged
// and never propagate to the emitter.
func (app *StdApplication) NotifyObservers(ctx context.Context, event cloudevents.Event) error {
	// Ensure timestamp is set
	if event.Time().IsZero() {
		event.SetTime(time.Now())
	}

	if err := ValidateCloudEvent(event); err != nil {
		app.logger.Error("Invalid CloudEvent", "eventType", event.Type(), "error", err)
		return err
	}

	// Snapshot under the read lock, deliver outside it: an observer may
	// register or unregister observers while handling an event.
	app.observerMu.RLock()
	targets := make([]Observer, 0, len(app.observerOrder))
	for _, id := range app.observerOrder {
		registration, exists := app.observers[id]
		if !exists {
			continue
		}
		if len(registration.eventTypes) > 0 && !registration.eventTypes[event.Type()] {
			continue // observer not interested in this event type
		}
		targets = append(targets, registration.observer)
	}
	app.observerMu.RUnlock()

	for _, observer := range targets {
		app.deliverEvent(ctx, observer, event)
	}

	return nil
}

// deliverEvent invokes a single observer, containing panics so a broken
// observer cannot take down the lifecycle operation that emitted the event.
func (app *StdApplication) deliverEvent(ctx context.Context, observer Observer, event cloudevents.Event) {
	defer func() {
		if r := recover(); r != nil {
			app.logger.Error("Observer panicked", "observerID", observer.ObserverID(), "event", event.Type(), "panic", r)
		}
	}()

	if err := observer.OnEvent(ctx, event); err != nil {
		app.logger.Error("Observer error", "observerID", observer.ObserverID(), "event", event.Type(), "error", err)
	}
}

// GetObservers returns information about currently registered observers in
// delivery order. This is useful for debugging and monitoring.
func (app *StdApplication) GetObservers() []ObserverInfo {
	app.observerMu.RLock()
	defer app.observerMu.RUnlock()

	info := make([]ObserverInfo, 0, len(app.observerOrder))
	for _, id := range app.observerOrder {
		registration, exists := app.observers[id]
		if !exists {
			continue
		}

		eventTypes := make([]string, 0, len(registration.eventTypes))
		for eventType := range registration.eventTypes {
			eventTypes = append(eventTypes, eventType)
		}

		info = append(info, ObserverInfo{
			ID:           id,
			EventTypes:   eventTypes,
			RegisteredAt: registration.registeredAt,
		})
	}

	return info
}

// emitEvent emits an application-scoped CloudEvent through the subject.
func (app *StdApplication) emitEvent(ctx context.Context, eventType string, data map[string]any) {
	event := NewCloudEvent(eventType, app.name, data, nil)
	if err := app.NotifyObservers(ctx, event); err != nil {
		app.logger.Error("Failed to notify observers", "event", eventType, "error", err)
	}
}

// notifyLifecycleEvent emits a component lifecycle event through the
// application's subject, tagging the event data with the component name.
func notifyLifecycleEvent(ctx context.Context, app Application, eventType, component string, data map[string]any) {
	if data == nil {
		data = make(map[string]any)
	}
	data["component"] = component

	event := NewCloudEvent(eventType, app.Name(), data, nil)
	if err := app.NotifyObservers(ctx, event); err != nil {
		app.Logger().Error("Failed to notify observers", "event", eventType, "component", component, "error", err)
	}
}
