package feeders

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// DotEnvFeeder is a feeder that reads .env files and populates `env`-tagged
// struct fields from the parsed values. Real environment variables take
// precedence over values from the file, so a deployment can override a
// checked-in .env without editing it.
type DotEnvFeeder struct {
	Path string
}

// NewDotEnvFeeder creates a new DotEnvFeeder that reads from the specified
// .env file
func NewDotEnvFeeder(filePath string) DotEnvFeeder {
	return DotEnvFeeder{Path: filePath}
}

// Feed reads the .env file and populates the provided structure
func (f DotEnvFeeder) Feed(structure any) error {
	vars, err := parseDotEnvFile(f.Path)
	if err != nil {
		return fmt.Errorf("failed to parse .env file: %w", err)
	}

	return applyEnvTags(structure, func(name string) string {
		if value := os.Getenv(name); value != "" {
			return value
		}
		return vars[name]
	})
}

// parseDotEnvFile parses KEY=VALUE lines, skipping blanks and # comments.
// Values may be wrapped in single or double quotes.
func parseDotEnvFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open .env file: %w", err)
	}
	defer file.Close()

	vars := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, wrapDotEnvLineError(lineNum, line)
		}

		key = strings.TrimSpace(key)
		if key == "" {
			return nil, wrapDotEnvLineError(lineNum, line)
		}

		value = strings.TrimSpace(value)
		value = unquoteEnvValue(value)

		vars[strings.ToUpper(key)] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan .env file: %w", err)
	}

	return vars, nil
}

func unquoteEnvValue(value string) string {
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}
