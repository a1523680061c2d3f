package keel

// Feeder populates a configuration structure from some source: a file, the
// process environment, command-line flags. Feeders run in order during
// config loading, later feeders overriding fields set by earlier ones.
//
// The feeders subpackage provides implementations for TOML, YAML, and JSON
// files, environment variables, and .env files.
type Feeder interface {
	// Feed populates the given structure, which is always a pointer to a
	// struct. Fields the source does not mention are left untouched.
	Feed(structure any) error
}

// ComplexFeeder extends Feeder with the ability to extract a single keyed
// section from the source rather than the whole document.
type ComplexFeeder interface {
	Feeder
	FeedKey(key string, target any) error
}
