// Package keel is the runtime backbone of an application microframework.
// It composes independently developed components into a single process,
// boots them in dependency-correct order, and gives every component safe
// concurrent access to one shared, hot-reloadable configuration value.
//
// Applications are assembled from components that declare dependencies on
// each other by name. Each component implements the Component interface and
// can opt into additional lifecycle hooks by implementing DependencyAware,
// ReloadAware, ShutdownAware, ComponentProvider, or ObservableComponent.
//
// Basic usage:
//
//	app, err := keel.New(
//		keel.WithConfig(&MyConfig{}),
//		keel.WithConfigFile("app.toml"),
//		keel.WithComponents(&Database{}, &Server{}),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := app.Run(); err != nil {
//		log.Fatal(err)
//	}
package keel

import "context"

// Component represents a registrable unit of functionality in the
// application. All components must implement this interface to be managed
// by the component registry.
//
// A component is the basic building block of a keel application. It
// encapsulates one piece of functionality and interacts with the rest of
// the process through the shared configuration cell and framework events.
type Component interface {
	// Name returns the unique identifier for this component.
	// The name is used for dependency resolution, state tracking, and
	// event reporting. It must be unique within the application and should
	// describe the component's purpose.
	//
	// Example: "database", "scheduler", "statusapi"
	Name() string

	// Init initializes the component. It is called exactly once during
	// boot, in dependency order: every component named by Dependencies()
	// has reached Ready before Init runs.
	//
	// Init should validate required configuration (via keel.ConfigAs or
	// app.Config), initialize internal state, and start any background
	// work. Returning an error moves the component to the Failed state and
	// halts the boot sequence.
	Init(app Application) error
}

// DependencyAware is an interface for components that depend on other
// components. The registry uses this information to compute the boot order,
// ensuring dependencies initialize before their dependents and shut down
// after them.
//
// Dependencies are resolved by component name and must match exactly.
// A dependency on an unregistered name fails boot-order resolution, as does
// any dependency cycle.
type DependencyAware interface {
	// Dependencies returns the names of components this component depends
	// on, as returned by their Name() methods.
	//
	// Example:
	//
	//	func (s *Server) Dependencies() []string {
	//		return []string{"database", "cache"}
	//	}
	Dependencies() []string
}

// ReloadAware is an interface for components that react to configuration
// reloads. After a successful reload the application swaps the new value
// into the configuration cell and then invokes AfterConfigReload on every
// Ready component in boot order.
//
// The hook runs after the swap: reading the config during the hook always
// observes the new value. A returned error marks the component's rejection
// of the new configuration; rejections are collected and reported to the
// reload caller but never stop propagation to the remaining components.
type ReloadAware interface {
	AfterConfigReload(ctx context.Context, app Application) error
}

// ShutdownAware is an interface for components that need teardown.
// Shutdown is called during application shutdown in exact reverse boot
// order (dependents before their dependencies).
//
// The provided context carries the shutdown timeout. Shutdown should stop
// accepting new work, drain or cancel existing work, and release resources.
// Errors are collected and reported after the full teardown sweep; one
// failing component never prevents the others from shutting down.
type ShutdownAware interface {
	Shutdown(ctx context.Context) error
}

// ComponentProvider is an interface for components that bundle others.
// Subcomponents are expanded transitively at registration time, before any
// boot activity, and are subject to the same duplicate-name and
// cycle-detection rules as directly registered components.
type ComponentProvider interface {
	// Subcomponents returns the components this component carries with it.
	Subcomponents() []Component
}

// ObservableComponent is an optional interface for components that
// participate in the framework's event stream beyond the events the
// framework emits on their behalf. RegisterObservers is called during the
// component's initialization so it can subscribe to the events it cares
// about.
type ObservableComponent interface {
	Component

	// RegisterObservers lets the component register as an observer for
	// events it is interested in. The subject is the application itself.
	RegisterObservers(subject Subject) error
}
