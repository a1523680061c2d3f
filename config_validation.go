package keel

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	// Struct tag keys
	tagDefault  = "default"
	tagRequired = "required"
)

// ConfigValidator is an interface for configuration validation.
// Configuration structs can implement this interface to provide custom
// validation logic beyond the standard required-field checking.
//
// The framework calls Validate() automatically at the end of every config
// load and reload, after defaults and required-field checks have run.
// A validation failure aborts the load: on boot it is fatal, on reload it
// leaves the previously published configuration in place.
//
// Example implementation:
//
//	type ServerConfig struct {
//	    Host string `toml:"host" required:"true"`
//	    Port int    `toml:"port" default:"8080"`
//	}
//
//	func (c *ServerConfig) Validate() error {
//	    if c.Port < 1024 || c.Port > 65535 {
//	        return fmt.Errorf("port must be between 1024 and 65535")
//	    }
//	    return nil
//	}
type ConfigValidator interface {
	// Validate validates the configuration and returns an error if invalid.
	Validate() error
}

// ValidateConfig runs the full validation pipeline on a populated config
// struct: apply declared defaults to still-zero fields, check required
// fields, then invoke the struct's own Validate method if it implements
// ConfigValidator.
func ValidateConfig(cfg any) error {
	if err := ProcessConfigDefaults(cfg); err != nil {
		return err
	}

	if err := ValidateConfigRequired(cfg); err != nil {
		return err
	}

	if validator, ok := cfg.(ConfigValidator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrConfigValidationFailed, err)
		}
	}

	return nil
}

// ProcessConfigDefaults applies default values to a config struct based on
// struct tags. It looks for `default:"value"` tags and sets the field if it
// currently holds its zero value, so sources that ran earlier win.
//
// Supported field types:
//   - Basic types: string, bool, ints, uints, floats
//   - time.Duration (parsed with time.ParseDuration)
//   - []string (comma-separated values)
//
// Example struct tags:
//
//	type Config struct {
//	    Host     string        `default:"localhost"`
//	    Port     int           `default:"8080"`
//	    Debug    bool          `default:"false"`
//	    Interval time.Duration `default:"30s"`
//	    Features []string      `default:"feature1,feature2"`
//	}
func ProcessConfigDefaults(cfg any) error {
	if cfg == nil {
		return ErrConfigNil
	}

	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return ErrConfigNotPointer
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return ErrConfigNotStruct
	}

	return processStructDefaults(v)
}

// processStructDefaults recursively processes struct fields for default values
func processStructDefaults(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		// Skip unexported fields
		if !field.CanSet() {
			continue
		}

		// Recurse into nested structs, except opaque ones like time.Time
		if field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(time.Time{}) {
			if err := processStructDefaults(field); err != nil {
				return err
			}
			continue
		}

		// Pointers to structs are only followed when already non-nil
		if field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct {
			if !field.IsNil() {
				if err := processStructDefaults(field.Elem()); err != nil {
					return err
				}
			}
			continue
		}

		defaultVal, hasDefault := fieldType.Tag.Lookup(tagDefault)
		if !hasDefault || !isZeroValue(field) {
			continue
		}

		if err := setDefaultValue(field, defaultVal); err != nil {
			return fmt.Errorf("failed to set default value for %s: %w", fieldType.Name, err)
		}
	}

	return nil
}

// ValidateConfigRequired checks all struct fields carrying the
// `required:"true"` tag and reports the ones still holding zero values.
func ValidateConfigRequired(cfg any) error {
	if cfg == nil {
		return ErrConfigNil
	}

	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return ErrConfigNotPointer
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return ErrConfigNotStruct
	}

	var missing []string
	collectMissingRequired(v, "", &missing)

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigRequiredFieldMissing, strings.Join(missing, ", "))
	}

	return nil
}

// collectMissingRequired recursively gathers required fields left at zero
func collectMissingRequired(v reflect.Value, prefix string, missing *[]string) {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)
		fieldName := fieldType.Name

		if prefix != "" {
			fieldName = prefix + "." + fieldName
		}

		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(time.Time{}) {
			collectMissingRequired(field, fieldName, missing)
			continue
		}

		if field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct {
			if !field.IsNil() {
				collectMissingRequired(field.Elem(), fieldName, missing)
			} else if isFieldRequired(&fieldType) {
				*missing = append(*missing, fieldName)
			}
			continue
		}

		if isFieldRequired(&fieldType) && isZeroValue(field) {
			*missing = append(*missing, fieldName)
		}
	}
}

// isFieldRequired checks if a field has the required:"true" tag
func isFieldRequired(field *reflect.StructField) bool {
	required, exists := field.Tag.Lookup(tagRequired)
	return exists && required == "true"
}

// isZeroValue determines if a field contains its zero value
func isZeroValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Complex64, reflect.Complex128:
		return v.Complex() == 0
	case reflect.Interface, reflect.Ptr:
		return v.IsNil()
	case reflect.Invalid:
		return true
	default:
		return false
	}
}

// setDefaultValue sets a default value from its string form to the proper
// field type
func setDefaultValue(field reflect.Value, defaultVal string) error {
	// time.Duration needs its own parser before the int cases catch it
	if field.Type() == reflect.TypeOf(time.Duration(0)) {
		d, err := time.ParseDuration(defaultVal)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDefaultValueParseError, err)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch kind := field.Kind(); kind {
	case reflect.String:
		field.SetString(defaultVal)
		return nil
	case reflect.Bool:
		b, err := strconv.ParseBool(defaultVal)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDefaultValueParseError, err)
		}
		field.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(defaultVal, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDefaultValueParseError, err)
		}
		if field.OverflowInt(i) {
			return fmt.Errorf("%w: %d overflows %s", ErrDefaultValueOverflowsInt, i, field.Type())
		}
		field.SetInt(i)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u, err := strconv.ParseUint(defaultVal, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDefaultValueParseError, err)
		}
		if field.OverflowUint(u) {
			return fmt.Errorf("%w: %d overflows %s", ErrDefaultValueOverflowsUint, u, field.Type())
		}
		field.SetUint(u)
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(defaultVal, 64)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDefaultValueParseError, err)
		}
		if field.OverflowFloat(f) {
			return fmt.Errorf("%w: %f overflows %s", ErrDefaultValueOverflowsFloat, f, field.Type())
		}
		field.SetFloat(f)
		return nil
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("%w: %s", ErrUnsupportedTypeForDefault, field.Type())
		}
		parts := strings.Split(defaultVal, ",")
		sliceVal := reflect.MakeSlice(field.Type(), len(parts), len(parts))
		for i, p := range parts {
			sliceVal.Index(i).SetString(strings.TrimSpace(p))
		}
		field.Set(sliceVal)
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedTypeForDefault, kind)
	}
}

// GenerateSampleConfig renders a config struct, with its declared defaults
// applied, in the requested format. The format parameter can be "toml",
// "yaml", or "json". keelctl uses this to scaffold starter config files.
func GenerateSampleConfig(cfg any, format string) ([]byte, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	sample := reflect.New(reflect.TypeOf(cfg).Elem()).Interface()
	if err := ProcessConfigDefaults(sample); err != nil {
		return nil, err
	}

	switch strings.ToLower(format) {
	case "toml":
		var buf strings.Builder
		if err := toml.NewEncoder(&buf).Encode(sample); err != nil {
			return nil, fmt.Errorf("failed to marshal to TOML: %w", err)
		}
		return []byte(buf.String()), nil
	case "yaml":
		data, err := yaml.Marshal(sample)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal to YAML: %w", err)
		}
		return data, nil
	case "json":
		data, err := json.MarshalIndent(sample, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal to JSON: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormatType, format)
	}
}
