package keel

import (
	"log/slog"
	"time"
)

// DefaultShutdownTimeout bounds Shutdown when WithShutdownTimeout is not
// used.
const DefaultShutdownTimeout = 30 * time.Second

// Option represents a configuration option for the application
type Option func(*StdApplication) error

// New creates an application and applies the options in order. Components
// supplied through WithComponents are registered after every option has been
// applied, so observers registered through WithObserver see their
// registration events regardless of option order.
//
// The defaults are slog.Default() for logging, an empty configuration
// prototype, no config file, and DefaultShutdownTimeout.
func New(opts ...Option) (*StdApplication, error) {
	app := &StdApplication{
		name:            "keel",
		logger:          slog.Default(),
		cell:            NewConfigCell[any](),
		prototype:       &struct{}{},
		shutdownTimeout: DefaultShutdownTimeout,
		observers:       make(map[string]observerRegistration),
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	app.registry = NewComponentRegistry(app.logger)

	for _, component := range app.pendingComponents {
		if err := app.RegisterComponent(component); err != nil {
			return nil, err
		}
	}
	app.pendingComponents = nil

	return app, nil
}

// WithName sets the application name. The name becomes the source attribute
// of every event the application emits.
func WithName(name string) Option {
	return func(app *StdApplication) error {
		if name != "" {
			app.name = name
		}
		return nil
	}
}

// WithLogger sets the application's logger. A *slog.Logger satisfies the
// Logger interface directly.
func WithLogger(logger Logger) Option {
	return func(app *StdApplication) error {
		if logger == nil {
			return ErrLoggerNil
		}
		app.logger = logger
		return nil
	}
}

// WithConfig sets the configuration prototype. Every load creates a fresh
// zeroed instance of the prototype's struct type and runs the pipeline
// against it; the prototype value itself is never written to.
func WithConfig(prototype any) Option {
	return func(app *StdApplication) error {
		if prototype == nil {
			return ErrConfigNil
		}
		app.prototype = prototype
		return nil
	}
}

// WithConfigFile sets the configuration file fed before any additional
// feeders. The format is chosen by extension: .toml, .yaml, .yml, or .json.
func WithConfigFile(path string) Option {
	return func(app *StdApplication) error {
		app.configFile = path
		return nil
	}
}

// WithFeeders appends feeders to the configuration pipeline. They run after
// the config file, in the order given, so later feeders win on overlapping
// fields.
func WithFeeders(feeders ...Feeder) Option {
	return func(app *StdApplication) error {
		app.feeders = append(app.feeders, feeders...)
		return nil
	}
}

// WithConfigOverride appends an override applied after all feeders on every
// load and reload. keelctl builds these from --set flags.
func WithConfigOverride(override ConfigOverride) Option {
	return func(app *StdApplication) error {
		if override != nil {
			app.overrides = append(app.overrides, override)
		}
		return nil
	}
}

// WithComponents supplies components to register. Registration happens at
// the end of New, in the order given, with ComponentProvider expansion.
func WithComponents(components ...Component) Option {
	return func(app *StdApplication) error {
		app.pendingComponents = append(app.pendingComponents, components...)
		return nil
	}
}

// WithObserver registers an observer during construction, before any
// component registration events are emitted. An empty eventTypes list
// subscribes to all events.
func WithObserver(observer Observer, eventTypes ...string) Option {
	return func(app *StdApplication) error {
		return app.RegisterObserver(observer, eventTypes...)
	}
}

// WithShutdownTimeout bounds the shutdown sweep. Non-positive values keep
// the default.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(app *StdApplication) error {
		if timeout > 0 {
			app.shutdownTimeout = timeout
		}
		return nil
	}
}
