package keel

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/keelframework/keel/feeders"
)

// ConfigOverride mutates the freshly loaded configuration value before it is
// validated and published. Overrides run after all feeders, in registration
// order, so they take precedence over file and environment sources. keelctl
// uses them to apply --set flags.
type ConfigOverride func(cfg any) error

// FileFeeder returns the feeder matching the file's extension: .toml, .yaml,
// .yml, or .json. Other extensions yield ErrUnsupportedFormatType.
func FileFeeder(path string) (ComplexFeeder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return feeders.NewTomlFeeder(path), nil
	case ".yaml", ".yml":
		return feeders.NewYamlFeeder(path), nil
	case ".json":
		return feeders.NewJSONFeeder(path), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormatType, path)
	}
}

// LoadConfig runs the configuration pipeline once, outside any application:
// a fresh instance of the prototype's type is fed from the file (when
// non-empty) and the extra feeders, overrides are applied, and the result is
// validated. The pipeline never touches previously published values;
// failures leave the caller with exactly what it had. keelctl uses this to
// render effective configuration without booting.
func LoadConfig(prototype any, file string, extra []Feeder, overrides []ConfigOverride) (any, error) {
	fresh, err := newConfigInstance(prototype)
	if err != nil {
		return nil, NewFrameworkError(KindConfig, "prepare configuration instance", err)
	}

	if file != "" {
		feeder, err := FileFeeder(file)
		if err != nil {
			return nil, NewFrameworkError(KindConfig, "select config file format", err)
		}

		if err := feeder.Feed(fresh); err != nil {
			return nil, classifyFeedError(file, err)
		}
	}

	for _, f := range extra {
		if err := f.Feed(fresh); err != nil {
			return nil, classifyFeedError(fmt.Sprintf("%T", f), err)
		}
	}

	for _, override := range overrides {
		if err := override(fresh); err != nil {
			return nil, NewFrameworkError(KindConfig, "apply config override",
				fmt.Errorf("%w: %w", ErrConfigLoadFailed, err))
		}
	}

	if err := ValidateConfig(fresh); err != nil {
		if !errors.Is(err, ErrConfigValidationFailed) {
			err = fmt.Errorf("%w: %w", ErrConfigValidationFailed, err)
		}
		return nil, NewFrameworkError(KindConfig, "configuration rejected", err)
	}

	return fresh, nil
}

// loadConfig runs the pipeline against the application's own sources.
func (app *StdApplication) loadConfig() (any, error) {
	if app.configFile != "" {
		app.logger.Debug("Loading configuration file", "file", app.configFile)
	}
	return LoadConfig(app.prototype, app.configFile, app.feeders, app.overrides)
}

// classifyFeedError maps a feeder failure to the error taxonomy: unreadable
// sources are IO errors, everything else is a parse error. Both carry
// ErrConfigLoadFailed in their chain.
func classifyFeedError(source string, err error) error {
	wrapped := fmt.Errorf("%w: %w", ErrConfigLoadFailed, err)

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return NewFrameworkError(KindIO, fmt.Sprintf("read config source %s", source), wrapped)
	}
	return NewFrameworkError(KindParse, fmt.Sprintf("parse config source %s", source), wrapped)
}

// newConfigInstance creates a zeroed instance of the prototype's underlying
// struct type. Loading always starts from zero so a reload re-derives the
// whole value from its sources instead of layering onto the old one.
func newConfigInstance(prototype any) (any, error) {
	if prototype == nil {
		return nil, ErrConfigNil
	}

	v := reflect.ValueOf(prototype)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, ErrConfigNil
		}
		return reflect.New(v.Elem().Type()).Interface(), nil
	}
	return reflect.New(v.Type()).Interface(), nil
}
