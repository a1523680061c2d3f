package feeders

import (
	"os"
	"strings"
)

// AffixedEnvFeeder is a feeder that reads environment variables with a
// prefix and/or suffix attached to each `env` tag name. A feeder with
// prefix "APP" and suffix "PROD" resolves the tag `env:"PORT"` against
// APP_PORT_PROD. At least one affix must be set.
type AffixedEnvFeeder struct {
	Prefix string
	Suffix string
}

// NewAffixedEnvFeeder creates a new AffixedEnvFeeder with the specified
// prefix and suffix
func NewAffixedEnvFeeder(prefix, suffix string) AffixedEnvFeeder {
	return AffixedEnvFeeder{Prefix: prefix, Suffix: suffix}
}

// Feed reads environment variables and populates the provided structure
func (f AffixedEnvFeeder) Feed(structure any) error {
	if f.Prefix == "" && f.Suffix == "" {
		return ErrEnvEmptyPrefixAndSuffix
	}

	prefix := strings.ToUpper(f.Prefix)
	suffix := strings.ToUpper(f.Suffix)

	return applyEnvTags(structure, func(name string) string {
		if prefix != "" {
			name = prefix + "_" + name
		}
		if suffix != "" {
			name = name + "_" + suffix
		}
		return os.Getenv(name)
	})
}
