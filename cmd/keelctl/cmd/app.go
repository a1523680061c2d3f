package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keelframework/keel"
	"github.com/keelframework/keel/components/configwatcher"
	"github.com/keelframework/keel/components/console"
	"github.com/keelframework/keel/components/scheduler"
	"github.com/keelframework/keel/components/statusapi"
	"github.com/keelframework/keel/feeders"
)

// ErrInvalidEnvironment is returned when app.environment is not a known
// environment name.
var ErrInvalidEnvironment = errors.New("app.environment must be development, staging, or production")

// Config is the configuration for applications launched by keelctl run.
type Config struct {
	App       AppSettings       `toml:"app" yaml:"app" json:"app"`
	Status    StatusSettings    `toml:"status" yaml:"status" json:"status"`
	Watcher   WatcherSettings   `toml:"watcher" yaml:"watcher" json:"watcher"`
	Scheduler SchedulerSettings `toml:"scheduler" yaml:"scheduler" json:"scheduler"`
}

// AppSettings identifies the application.
type AppSettings struct {
	Name        string           `toml:"name" yaml:"name" json:"name" default:"keel" env:"KEEL_APP_NAME"`
	Environment string           `toml:"environment" yaml:"environment" json:"environment" default:"development" env:"KEEL_ENVIRONMENT"`
	APIToken    keel.SecretValue `toml:"api_token" yaml:"api_token" json:"api_token" env:"KEEL_API_TOKEN"`
}

// StatusSettings configures the status API component.
type StatusSettings struct {
	Enabled bool   `toml:"enabled" yaml:"enabled" json:"enabled"`
	Addr    string `toml:"addr" yaml:"addr" json:"addr" default:":8410" env:"KEEL_STATUS_ADDR"`
}

// WatcherSettings configures automatic configuration reload. The debounce
// takes a duration string from defaults, environment, or --set; YAML config
// files can also write one directly, TOML and JSON use integer nanoseconds.
type WatcherSettings struct {
	Enabled  bool          `toml:"enabled" yaml:"enabled" json:"enabled"`
	Debounce time.Duration `toml:"debounce" yaml:"debounce" json:"debounce" default:"500ms" env:"KEEL_WATCHER_DEBOUNCE"`
}

// SchedulerSettings configures the heartbeat scheduler.
type SchedulerSettings struct {
	Enabled   bool   `toml:"enabled" yaml:"enabled" json:"enabled"`
	Heartbeat string `toml:"heartbeat" yaml:"heartbeat" json:"heartbeat" default:"@every 1m"`
}

// Validate implements keel.ConfigValidator.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("%w, got %q", ErrInvalidEnvironment, c.App.Environment)
	}
	return nil
}

// configSources returns the feeders and overrides shared by every keelctl
// command that loads configuration.
func configSources(assignments []string) ([]keel.Feeder, []keel.ConfigOverride) {
	return []keel.Feeder{feeders.NewEnvFeeder()},
		[]keel.ConfigOverride{overrideFromAssignments(assignments)}
}

// buildApp assembles an application from the effective configuration. The
// config is loaded once up front to decide which components to mount; Boot
// then loads it again through the application's own pipeline.
func buildApp(configFile string, assignments []string) (*keel.StdApplication, error) {
	extra, overrides := configSources(assignments)

	loaded, err := keel.LoadConfig(&Config{}, configFile, extra, overrides)
	if err != nil {
		return nil, err
	}
	cfg := loaded.(*Config)

	opts := []keel.Option{
		keel.WithName(cfg.App.Name),
		keel.WithConfig(&Config{}),
		keel.WithConfigFile(configFile),
		keel.WithFeeders(extra...),
		keel.WithConfigOverride(overrides[0]),
		keel.WithObserver(console.New()),
	}

	var components []keel.Component
	if cfg.Status.Enabled {
		components = append(components, statusapi.New(cfg.Status.Addr))
	}
	if cfg.Watcher.Enabled {
		components = append(components, configwatcher.New(configwatcher.WithDebounce(cfg.Watcher.Debounce)))
	}
	if cfg.Scheduler.Enabled {
		components = append(components, scheduler.New(heartbeatJobs))
	}
	if len(components) > 0 {
		opts = append(opts, keel.WithComponents(components...))
	}

	return keel.New(opts...)
}

// heartbeatJobs derives the scheduler's job set from the active
// configuration. Re-derived on every reload, so editing the heartbeat spec
// in the config file reschedules the job.
func heartbeatJobs(app keel.Application) ([]scheduler.Job, error) {
	cfg, err := keel.ConfigAs[Config](app)
	if err != nil {
		return nil, err
	}
	if !cfg.Scheduler.Enabled || cfg.Scheduler.Heartbeat == "" {
		return nil, nil
	}

	job := scheduler.Job{
		Name: "heartbeat",
		Spec: cfg.Scheduler.Heartbeat,
		Run: func(ctx context.Context) error {
			app.Logger().Info("Heartbeat", "application", app.Name(), "environment", cfg.App.Environment)
			return nil
		},
	}
	return []scheduler.Job{job}, nil
}
