package feeders

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// TomlFeeder is a feeder that reads TOML files
type TomlFeeder struct {
	Path string
}

// NewTomlFeeder creates a new TomlFeeder that reads from the specified TOML
// file
func NewTomlFeeder(filePath string) TomlFeeder {
	return TomlFeeder{Path: filePath}
}

// Feed reads the TOML file and populates the provided structure
func (t TomlFeeder) Feed(structure any) error {
	if _, err := toml.DecodeFile(t.Path, structure); err != nil {
		return fmt.Errorf("failed to decode TOML file %s: %w", t.Path, err)
	}
	return nil
}

// FeedKey reads the TOML file and extracts a specific top-level key
func (t TomlFeeder) FeedKey(key string, target any) error {
	return feedKey(t, key, target,
		func(v any) ([]byte, error) { return toml.Marshal(v) },
		toml.Unmarshal,
		"TOML")
}
