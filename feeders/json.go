package feeders

import (
	"encoding/json"
	"fmt"
	"os"
)

// JSONFeeder is a feeder that reads JSON files
type JSONFeeder struct {
	Path string
}

// NewJSONFeeder creates a new JSONFeeder that reads from the specified JSON
// file
func NewJSONFeeder(filePath string) JSONFeeder {
	return JSONFeeder{Path: filePath}
}

// Feed reads the JSON file and populates the provided structure
func (j JSONFeeder) Feed(structure any) error {
	data, err := os.ReadFile(j.Path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file %s: %w", j.Path, err)
	}

	if err := json.Unmarshal(data, structure); err != nil {
		return fmt.Errorf("failed to parse JSON file %s: %w", j.Path, err)
	}
	return nil
}

// FeedKey reads the JSON file and extracts a specific top-level key
func (j JSONFeeder) FeedKey(key string, target any) error {
	return feedKey(j, key, target,
		func(v any) ([]byte, error) { return json.Marshal(v) },
		json.Unmarshal,
		"JSON")
}
