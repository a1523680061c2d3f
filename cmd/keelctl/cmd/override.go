package cmd

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/golobby/cast"

	"github.com/keelframework/keel"
)

var (
	// ErrMalformedAssignment is returned for --set values that aren't
	// path=value pairs.
	ErrMalformedAssignment = errors.New("malformed assignment, want path=value")
	// ErrUnknownField is returned when an assignment path doesn't resolve to
	// a configuration field.
	ErrUnknownField = errors.New("unknown configuration field")
	// ErrFieldNotSettable is returned when the resolved field cannot be
	// written.
	ErrFieldNotSettable = errors.New("configuration field cannot be set")
)

// overrideFromAssignments builds a ConfigOverride applying path=value
// assignments to dotted config paths, e.g. --set app.name=worker. Path
// segments match toml tags first, then field names case-insensitively.
// Overrides run after all feeders, so --set wins over file and environment.
func overrideFromAssignments(assignments []string) keel.ConfigOverride {
	return func(cfg any) error {
		for _, assignment := range assignments {
			path, value, found := strings.Cut(assignment, "=")
			if !found || path == "" {
				return fmt.Errorf("%w: %q", ErrMalformedAssignment, assignment)
			}
			if err := setField(cfg, path, value); err != nil {
				return err
			}
		}
		return nil
	}
}

// setField walks the dotted path through the config struct and sets the
// leaf from the string value. Nil pointers along the path are allocated.
func setField(cfg any, path, value string) error {
	v := reflect.ValueOf(cfg)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return fmt.Errorf("%w: %s", ErrUnknownField, path)
		}
		v = v.Elem()
	}

	segments := strings.Split(path, ".")
	for i, segment := range segments {
		if v.Kind() != reflect.Struct {
			return fmt.Errorf("%w: %s", ErrUnknownField, strings.Join(segments[:i+1], "."))
		}

		field, ok := findField(v, segment)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, strings.Join(segments[:i+1], "."))
		}

		for field.Kind() == reflect.Ptr {
			if field.IsNil() {
				if !field.CanSet() {
					return fmt.Errorf("%w: %s", ErrFieldNotSettable, strings.Join(segments[:i+1], "."))
				}
				field.Set(reflect.New(field.Type().Elem()))
			}
			field = field.Elem()
		}
		v = field
	}

	if err := setLeaf(v, value); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}

// setLeaf writes a string value into the resolved field. Types accepting
// text directly (secret wrappers, time.Time) are fed the raw string;
// durations are parsed; everything else goes through type conversion.
func setLeaf(field reflect.Value, value string) error {
	if !field.CanSet() {
		return ErrFieldNotSettable
	}

	if field.CanAddr() {
		if unmarshaler, ok := field.Addr().Interface().(encoding.TextUnmarshaler); ok {
			return unmarshaler.UnmarshalText([]byte(value))
		}
	}

	if field.Type() == reflect.TypeOf(time.Duration(0)) {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", value, err)
		}
		field.SetInt(int64(d))
		return nil
	}

	converted, err := cast.FromType(value, field.Type())
	if err != nil {
		return fmt.Errorf("convert %q to %s: %w", value, field.Type(), err)
	}
	field.Set(reflect.ValueOf(converted))
	return nil
}

// findField matches a path segment against a struct's toml tags, then field
// names, case-insensitively.
func findField(v reflect.Value, segment string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		tag, _, _ := strings.Cut(sf.Tag.Get("toml"), ",")
		if tag == segment || strings.EqualFold(sf.Name, segment) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}
