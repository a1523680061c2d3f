package feeders

import (
	"errors"
	"fmt"
)

// Static error definitions shared by the feeders.

// Structure errors
var (
	ErrInvalidStructureType = errors.New("expected pointer to struct")
	ErrFieldCannotBeSet     = errors.New("field cannot be set")
	ErrTypeConversion       = errors.New("cannot convert value to field type")
)

// Env feeder errors
var (
	ErrEnvEmptyPrefixAndSuffix = errors.New("env: prefix or suffix cannot be empty")
)

// DotEnv feeder errors
var (
	ErrDotEnvInvalidLineFormat = errors.New("invalid .env line format")
)

// FeedKey errors
var (
	ErrFeedKeyRead      = errors.New("failed to read source")
	ErrFeedKeyMarshal   = errors.New("failed to marshal keyed value")
	ErrFeedKeyUnmarshal = errors.New("failed to unmarshal keyed value")
)

// Helper functions to create wrapped errors with context

func wrapStructureError(got any) error {
	return fmt.Errorf("%w, got %T", ErrInvalidStructureType, got)
}

func wrapConversionError(fieldType string, cause error) error {
	return fmt.Errorf("%w (%s): %w", ErrTypeConversion, fieldType, cause)
}

func wrapDotEnvLineError(lineNum int, line string) error {
	return fmt.Errorf("%w at line %d: %q", ErrDotEnvInvalidLineFormat, lineNum, line)
}

func wrapFeedKeyReadError(format string, cause error) error {
	return fmt.Errorf("%w (%s): %w", ErrFeedKeyRead, format, cause)
}

func wrapFeedKeyMarshalError(format string, cause error) error {
	return fmt.Errorf("%w (%s): %w", ErrFeedKeyMarshal, format, cause)
}

func wrapFeedKeyUnmarshalError(format string, cause error) error {
	return fmt.Errorf("%w (%s): %w", ErrFeedKeyUnmarshal, format, cause)
}
