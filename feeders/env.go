package feeders

import (
	"encoding"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/golobby/cast"
)

// EnvFeeder is a feeder that reads environment variables into struct fields
// tagged with `env:"NAME"`. Tag names are uppercased before lookup, and
// unset or empty variables leave the field untouched.
type EnvFeeder struct{}

// NewEnvFeeder creates a new EnvFeeder that reads from environment variables
func NewEnvFeeder() EnvFeeder {
	return EnvFeeder{}
}

// Feed reads environment variables and populates the provided structure
func (EnvFeeder) Feed(structure any) error {
	return applyEnvTags(structure, func(name string) string {
		return os.Getenv(name)
	})
}

// applyEnvTags walks the structure and fills every `env`-tagged field from
// the lookup function. Untagged nested structs are walked recursively;
// pointers to structs are followed only when non-nil.
func applyEnvTags(structure any, lookup func(name string) string) error {
	inputType := reflect.TypeOf(structure)
	if inputType != nil && inputType.Kind() == reflect.Ptr && inputType.Elem().Kind() == reflect.Struct {
		return fillEnvFields(reflect.ValueOf(structure).Elem(), lookup)
	}
	return wrapStructureError(structure)
}

func fillEnvFields(rv reflect.Value, lookup func(name string) string) error {
	for i := 0; i < rv.NumField(); i++ {
		field := rv.Field(i)
		fieldType := rv.Type().Field(i)

		if !field.CanSet() {
			continue
		}

		// A tag on the field wins over recursion, so struct-valued fields
		// like secrets and timestamps can be fed directly.
		if envTag, exists := fieldType.Tag.Lookup("env"); exists {
			if value := lookup(strings.ToUpper(envTag)); value != "" {
				if err := setFieldValue(field, value); err != nil {
					return err
				}
			}
			continue
		}

		switch field.Kind() {
		case reflect.Struct:
			if err := fillEnvFields(field, lookup); err != nil {
				return err
			}
		case reflect.Ptr:
			if !field.IsNil() && field.Elem().Kind() == reflect.Struct {
				if err := fillEnvFields(field.Elem(), lookup); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// setFieldValue converts and sets a field value. Fields whose type accepts
// text directly, like secret wrappers and time.Time, are fed the raw
// string; everything else goes through type conversion.
func setFieldValue(field reflect.Value, strValue string) error {
	if !field.CanSet() {
		return ErrFieldCannotBeSet
	}

	if handled, err := setFromText(field, strValue); handled {
		if err != nil {
			return wrapConversionError(field.Type().String(), err)
		}
		return nil
	}

	if field.Type() == reflect.TypeOf(time.Duration(0)) {
		d, err := time.ParseDuration(strValue)
		if err != nil {
			return wrapConversionError(field.Type().String(), err)
		}
		field.Set(reflect.ValueOf(d))
		return nil
	}

	convertedValue, err := cast.FromType(strValue, field.Type())
	if err != nil {
		return wrapConversionError(field.Type().String(), err)
	}

	field.Set(reflect.ValueOf(convertedValue))
	return nil
}

// setFromText reports whether the field's type implements
// encoding.TextUnmarshaler and, if so, feeds it the value, allocating
// pointer fields as needed.
func setFromText(field reflect.Value, strValue string) (bool, error) {
	target := field
	switch {
	case field.Kind() == reflect.Ptr:
		if field.IsNil() {
			target = reflect.New(field.Type().Elem())
		}
	case field.CanAddr():
		target = field.Addr()
	default:
		return false, nil
	}

	unmarshaler, ok := target.Interface().(encoding.TextUnmarshaler)
	if !ok {
		return false, nil
	}

	if err := unmarshaler.UnmarshalText([]byte(strValue)); err != nil {
		return true, err
	}
	if field.Kind() == reflect.Ptr && field.IsNil() {
		field.Set(target)
	}
	return true, nil
}
