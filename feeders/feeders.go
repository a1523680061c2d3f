// Package feeders provides configuration feeders for reading data from
// various sources including TOML, YAML, and JSON files, environment
// variables, and .env files.
package feeders

// Feeder is the common interface for populating a configuration structure.
type Feeder interface {
	Feed(structure any) error
}

// feedKey extracts a single key from a document-shaped source by feeding the
// whole document into a map, then remarshaling the keyed value into the
// target to get the format's own type conversions.
func feedKey(
	f Feeder,
	key string,
	target any,
	marshal func(any) ([]byte, error),
	unmarshal func([]byte, any) error,
	format string,
) error {
	var allData map[string]any
	if err := f.Feed(&allData); err != nil {
		return wrapFeedKeyReadError(format, err)
	}

	value, exists := allData[key]
	if !exists {
		return nil
	}

	valueBytes, err := marshal(value)
	if err != nil {
		return wrapFeedKeyMarshalError(format, err)
	}

	if err = unmarshal(valueBytes, target); err != nil {
		return wrapFeedKeyUnmarshalError(format, err)
	}

	return nil
}
