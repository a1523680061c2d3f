package keel

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"log/slog"

	"gopkg.in/yaml.v3"
)

// SecretValue wraps a sensitive configuration value such as a password or
// API token. It redacts itself in string output, JSON and text marshaling,
// and slog records, while providing controlled access through Reveal.
//
// SecretValue implements encoding.TextUnmarshaler and json.Unmarshaler, so
// fields of this type load directly from TOML, YAML, and JSON config files
// as well as env feeders:
//
//	type DatabaseConfig struct {
//		DSN      string           `toml:"dsn"`
//		Password keel.SecretValue `toml:"password" env:"DB_PASSWORD"`
//	}
//
// The zero SecretValue is empty and ready to use. Read methods use value
// receivers so redaction also applies when the struct is passed around by
// value.
type SecretValue struct {
	// obfuscated stores the value XORed with a per-secret random key. Not
	// encryption, but the plaintext never sits in the struct.
	obfuscated []byte
	key        []byte
}

// NewSecretValue creates a SecretValue holding the given value.
func NewSecretValue(value string) SecretValue {
	if value == "" {
		return SecretValue{}
	}

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		// crypto/rand failing is effectively unrecoverable; fall back to a
		// fixed pad rather than storing the plaintext directly.
		for i := range key {
			key[i] = byte(i*7 + 13)
		}
	}

	valueBytes := []byte(value)
	obfuscated := make([]byte, len(valueBytes))
	for i, b := range valueBytes {
		obfuscated[i] = b ^ key[i%len(key)]
	}

	return SecretValue{obfuscated: obfuscated, key: key}
}

// Reveal returns the actual secret value. Call it only at the point of use,
// never in anything that gets logged or serialized.
func (s SecretValue) Reveal() string {
	if s.IsEmpty() {
		return ""
	}

	decrypted := make([]byte, len(s.obfuscated))
	for i, b := range s.obfuscated {
		decrypted[i] = b ^ s.key[i%len(s.key)]
	}

	result := string(decrypted)
	for i := range decrypted {
		decrypted[i] = 0
	}
	return result
}

// IsEmpty returns true if the secret holds no value.
func (s SecretValue) IsEmpty() bool {
	return len(s.obfuscated) == 0
}

// String returns a redacted representation of the secret
func (s SecretValue) String() string {
	if s.IsEmpty() {
		return "[EMPTY]"
	}
	return "[REDACTED]"
}

// GoString returns a redacted representation for fmt %#v
func (s SecretValue) GoString() string {
	return "SecretValue{[REDACTED]}"
}

// LogValue redacts the secret in slog output.
func (s SecretValue) LogValue() slog.Value {
	return slog.StringValue(s.String())
}

// Equals compares two secrets in constant time.
func (s SecretValue) Equals(other SecretValue) bool {
	if s.IsEmpty() || other.IsEmpty() {
		return s.IsEmpty() && other.IsEmpty()
	}
	return s.EqualsString(other.Reveal())
}

// EqualsString compares the secret against a plaintext value in constant
// time, so comparisons don't leak information about the secret's content.
func (s SecretValue) EqualsString(value string) bool {
	if s.IsEmpty() {
		return value == ""
	}
	revealed := s.Reveal()
	return subtle.ConstantTimeCompare([]byte(revealed), []byte(value)) == 1
}

// MarshalJSON implements json.Marshaler to always redact secrets in JSON
func (s SecretValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements json.Unmarshaler. Redaction placeholders decode
// to an empty secret so a round-tripped document can't resurrect a fake
// value.
func (s *SecretValue) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	return s.UnmarshalText([]byte(value))
}

// MarshalText implements encoding.TextMarshaler to redact in text formats
func (s SecretValue) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, used by the TOML
// decoder and the env feeders.
func (s *SecretValue) UnmarshalText(text []byte) error {
	value := string(text)
	if value == "[REDACTED]" || value == "[EMPTY]" {
		*s = SecretValue{}
		return nil
	}

	*s = NewSecretValue(value)
	return nil
}

// MarshalYAML redacts the secret in YAML output.
func (s SecretValue) MarshalYAML() (any, error) {
	return s.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler. The YAML decoder does not
// consult encoding.TextUnmarshaler, so secrets need their own hook to load
// from YAML config files.
func (s *SecretValue) UnmarshalYAML(value *yaml.Node) error {
	var text string
	if err := value.Decode(&text); err != nil {
		return err
	}
	return s.UnmarshalText([]byte(text))
}
