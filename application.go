package keel

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// Application is the framework surface handed to components. It exposes the
// active configuration, the component registry, logging, and the event
// subject components publish and subscribe through.
type Application interface {
	Subject

	// Name returns the application name, used as the source of emitted events.
	Name() string
	// Logger returns the application's logger.
	Logger() Logger
	// Config returns the currently active configuration value, or
	// ErrConfigNotLoaded before boot publishes one.
	Config() (any, error)
	// ConfigFile returns the path of the configuration file, or "" when the
	// application runs without one.
	ConfigFile() string
	// Booted reports whether Boot has completed successfully.
	Booted() bool
	// Registry returns the component registry.
	Registry() *ComponentRegistry
	// Component returns a registered component by name.
	Component(name string) (Component, error)
	// RegisterComponent adds a component (and any subcomponents it provides)
	// before boot.
	RegisterComponent(component Component) error
	// ReloadConfig re-runs the configuration pipeline and, on success,
	// publishes the new value and notifies components in boot order.
	ReloadConfig(ctx context.Context) error
	// Shutdown stops components in reverse boot order.
	Shutdown(ctx context.Context) error
}

// StdApplication is the standard Application implementation. Create one with
// New, register components, then call Boot or Run.
type StdApplication struct {
	name     string
	logger   Logger
	registry *ComponentRegistry
	cell     *ConfigCell[any]

	prototype       any
	configFile      string
	feeders         []Feeder
	overrides       []ConfigOverride
	shutdownTimeout time.Duration

	// components supplied via WithComponents, registered by New after all
	// options have been applied
	pendingComponents []Component

	observers     map[string]observerRegistration
	observerOrder []string
	observerMu    sync.RWMutex

	mu      sync.Mutex
	booting bool
	booted  bool
	stopped bool

	reloading atomic.Bool
}

// Name retrieves the application name
func (app *StdApplication) Name() string {
	return app.name
}

// Logger retrieves the application's logger
func (app *StdApplication) Logger() Logger {
	return app.logger
}

// Registry retrieves the component registry
func (app *StdApplication) Registry() *ComponentRegistry {
	return app.registry
}

// Component returns a registered component by name
func (app *StdApplication) Component(name string) (Component, error) {
	return app.registry.Get(name)
}

// Config returns the currently active configuration value. Before Boot has
// published one it returns ErrConfigNotLoaded; after a successful reload it
// returns the reloaded value.
func (app *StdApplication) Config() (any, error) {
	return app.cell.Get()
}

// ConfigFile retrieves the configured file path, if any
func (app *StdApplication) ConfigFile() string {
	return app.configFile
}

// Booted reports whether Boot has completed successfully.
func (app *StdApplication) Booted() bool {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.booted
}

// RegisterComponent adds a component to the application. Providers are
// expanded, and a registration event is emitted for every component the call
// adds.
func (app *StdApplication) RegisterComponent(component Component) error {
	before := len(app.registry.Components())
	if err := app.registry.Register(component); err != nil {
		return err
	}
	for _, name := range app.registry.Components()[before:] {
		notifyLifecycleEvent(context.Background(), app, EventTypeComponentRegistered, name, nil)
	}
	return nil
}

// Boot loads and validates the configuration, publishes it, and initializes
// all registered components in dependency order.
//
// A configuration error is fatal: nothing is published and no component is
// initialized. A component failure stops the sequence at that component;
// earlier components stay Ready and the caller decides whether to run
// degraded or call Shutdown. Boot can be retried after a component failure,
// but a component that entered Failed stays Failed, and a retry refuses to
// initialize any component whose declared dependencies are not all Ready.
func (app *StdApplication) Boot(ctx context.Context) error {
	app.mu.Lock()
	if app.booting {
		app.mu.Unlock()
		return ErrBootInProgress
	}
	if app.booted || app.stopped {
		app.mu.Unlock()
		return ErrAlreadyBooted
	}
	app.booting = true
	app.mu.Unlock()
	defer func() {
		app.mu.Lock()
		app.booting = false
		app.mu.Unlock()
	}()

	app.logger.Info("Booting application", "name", app.name)

	cfg, err := app.loadConfig()
	if err != nil {
		app.logger.Error("Configuration load failed", "error", err)
		app.emitEvent(ctx, EventTypeApplicationFailed, map[string]any{"phase": "config", "error": err.Error()})
		return err
	}
	app.cell.Set(cfg)
	app.emitEvent(ctx, EventTypeConfigLoaded, map[string]any{"file": app.configFile})

	if err := app.registry.Boot(ctx, app); err != nil {
		app.emitEvent(ctx, EventTypeApplicationFailed, map[string]any{"phase": "boot", "error": err.Error()})
		return err
	}

	app.mu.Lock()
	app.booted = true
	app.mu.Unlock()

	app.logger.Info("Application booted", "name", app.name, "components", app.registry.BootOrder())
	app.emitEvent(ctx, EventTypeApplicationBooted, map[string]any{"components": app.registry.BootOrder()})
	return nil
}

// ReloadConfig re-runs the configuration pipeline against the current
// sources. If the new value fails validation the active configuration is
// left untouched and the error is returned. On success the new value is
// published and Ready components are notified in boot order; rejections are
// collected into the returned error but never revert the published value.
//
// Only one reload runs at a time; a concurrent call returns
// ErrReloadInProgress. Reloading before a successful boot returns
// ErrNotBooted.
func (app *StdApplication) ReloadConfig(ctx context.Context) error {
	if !app.Booted() {
		return ErrNotBooted
	}
	if !app.reloading.CompareAndSwap(false, true) {
		return ErrReloadInProgress
	}
	defer app.reloading.Store(false)

	app.logger.Info("Reloading configuration", "file", app.configFile)

	cfg, err := app.loadConfig()
	if err != nil {
		app.logger.Error("Configuration reload rejected, keeping active configuration", "error", err)
		return err
	}

	app.cell.Set(cfg)
	app.emitEvent(ctx, EventTypeConfigReloaded, map[string]any{"file": app.configFile})

	if err := app.registry.ReloadNotify(ctx, app); err != nil {
		return NewFrameworkError(KindComponent, "configuration reload partially rejected", err)
	}

	app.logger.Info("Configuration reloaded", "file", app.configFile)
	return nil
}

// Shutdown stops components in reverse boot order under the configured
// timeout. Every component gets its chance to stop even when earlier ones
// fail; failures are collected into the returned error. Shutdown is
// idempotent: calls after the first return nil.
func (app *StdApplication) Shutdown(ctx context.Context) error {
	app.mu.Lock()
	if app.stopped {
		app.mu.Unlock()
		return nil
	}
	app.stopped = true
	app.mu.Unlock()

	app.logger.Info("Shutting down application", "name", app.name, "timeout", app.shutdownTimeout)

	ctx, cancel := context.WithTimeout(ctx, app.shutdownTimeout)
	defer cancel()

	err := app.registry.Shutdown(ctx, app)
	if err != nil {
		app.logger.Error("Shutdown completed with errors", "error", err)
	} else {
		app.logger.Info("Shutdown complete", "name", app.name)
	}
	app.emitEvent(ctx, EventTypeApplicationStopped, map[string]any{"clean": err == nil})
	return err
}

// Run boots the application and blocks until SIGINT or SIGTERM, then shuts
// down.
func (app *StdApplication) Run() error {
	ctx := context.Background()

	if err := app.Boot(ctx); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	app.logger.Info("Received signal, shutting down", "signal", sig.String())

	return app.Shutdown(ctx)
}

// ConfigAs returns the application's active configuration as a concrete
// type. It accepts the value stored either as T or as *T, so components can
// ask for the struct type regardless of how the prototype was supplied:
//
//	cfg, err := keel.ConfigAs[AppConfig](app)
func ConfigAs[T any](app Application) (T, error) {
	var zero T

	cfg, err := app.Config()
	if err != nil {
		return zero, err
	}

	if typed, ok := cfg.(T); ok {
		return typed, nil
	}
	if ptr, ok := cfg.(*T); ok {
		return *ptr, nil
	}

	return zero, NewFrameworkError(KindConfig,
		fmt.Sprintf("configuration is %T, not %T", cfg, zero),
		ErrConfigWrongType)
}
