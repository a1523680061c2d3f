package feeders

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YamlFeeder is a feeder that reads YAML files
type YamlFeeder struct {
	Path string
}

// NewYamlFeeder creates a new YamlFeeder that reads from the specified YAML
// file
func NewYamlFeeder(filePath string) YamlFeeder {
	return YamlFeeder{Path: filePath}
}

// Feed reads the YAML file and populates the provided structure
func (y YamlFeeder) Feed(structure any) error {
	data, err := os.ReadFile(y.Path)
	if err != nil {
		return fmt.Errorf("failed to read YAML file %s: %w", y.Path, err)
	}

	if err := yaml.Unmarshal(data, structure); err != nil {
		return fmt.Errorf("failed to parse YAML file %s: %w", y.Path, err)
	}
	return nil
}

// FeedKey reads the YAML file and extracts a specific top-level key
func (y YamlFeeder) FeedKey(key string, target any) error {
	return feedKey(y, key, target,
		func(v any) ([]byte, error) { return yaml.Marshal(v) },
		yaml.Unmarshal,
		"YAML")
}
