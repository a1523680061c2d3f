package keel

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keelframework/keel/feeders"
)

type loaderTestConfig struct {
	App loaderAppSection `toml:"app" yaml:"app" json:"app"`
}

type loaderAppSection struct {
	Name  string `toml:"name" yaml:"name" json:"name" env:"LOADER_TEST_NAME"`
	Port  int    `toml:"port" yaml:"port" json:"port" default:"8080"`
	Debug bool   `toml:"debug" yaml:"debug" json:"debug"`
}

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileFeeder(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"config.toml", false},
		{"config.yaml", false},
		{"config.yml", false},
		{"config.json", false},
		{"CONFIG.TOML", false},
		{"config.ini", true},
		{"config", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			feeder, err := FileFeeder(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormatType)
				assert.Nil(t, feeder)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, feeder)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("file then feeders then overrides then defaults", func(t *testing.T) {
		path := writeConfigFile(t, "app.toml", `
[app]
name = "from-file"
debug = true
`)
		t.Setenv("LOADER_TEST_NAME", "from-env")

		override := func(cfg any) error {
			cfg.(*loaderTestConfig).App.Name = "from-override"
			return nil
		}

		got, err := LoadConfig(&loaderTestConfig{}, path,
			[]Feeder{feeders.NewEnvFeeder()},
			[]ConfigOverride{override})
		require.NoError(t, err)

		want := &loaderTestConfig{}
		want.App.Name = "from-override"
		want.App.Port = 8080
		want.App.Debug = true

		if diff := cmp.Diff(want, got.(*loaderTestConfig)); diff != "" {
			t.Errorf("LoadConfig mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("yaml and json files load too", func(t *testing.T) {
		yamlPath := writeConfigFile(t, "app.yaml", "app:\n  name: yaml-app\n")
		got, err := LoadConfig(&loaderTestConfig{}, yamlPath, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "yaml-app", got.(*loaderTestConfig).App.Name)

		jsonPath := writeConfigFile(t, "app.json", `{"app": {"name": "json-app"}}`)
		got, err = LoadConfig(&loaderTestConfig{}, jsonPath, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "json-app", got.(*loaderTestConfig).App.Name)
	})

	t.Run("prototype is never mutated", func(t *testing.T) {
		path := writeConfigFile(t, "app.toml", "[app]\nname = \"loaded\"\n")

		proto := &loaderTestConfig{}
		got, err := LoadConfig(proto, path, nil, nil)
		require.NoError(t, err)

		assert.NotSame(t, proto, got)
		assert.Empty(t, proto.App.Name)
		assert.Zero(t, proto.App.Port)
	})

	t.Run("missing file is an io error", func(t *testing.T) {
		_, err := LoadConfig(&loaderTestConfig{}, filepath.Join(t.TempDir(), "absent.toml"), nil, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConfigLoadFailed)
		assert.Equal(t, KindIO, KindOf(err))
	})

	t.Run("malformed file is a parse error", func(t *testing.T) {
		path := writeConfigFile(t, "broken.toml", "this is not [valid toml")
		_, err := LoadConfig(&loaderTestConfig{}, path, nil, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConfigLoadFailed)
		assert.Equal(t, KindParse, KindOf(err))
	})

	t.Run("unsupported extension is a config error", func(t *testing.T) {
		path := writeConfigFile(t, "app.ini", "name=x")
		_, err := LoadConfig(&loaderTestConfig{}, path, nil, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupportedFormatType)
		assert.Equal(t, KindConfig, KindOf(err))
	})

	t.Run("override failure aborts the load", func(t *testing.T) {
		path := writeConfigFile(t, "app.toml", "[app]\nname = \"x\"\n")
		boom := errors.New("override exploded")

		_, err := LoadConfig(&loaderTestConfig{}, path, nil,
			[]ConfigOverride{func(any) error { return boom }})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConfigLoadFailed)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("validation failure carries the sentinel chain", func(t *testing.T) {
		type strictConfig struct {
			Name string `toml:"name" required:"true"`
		}

		path := writeConfigFile(t, "strict.toml", "unrelated = 1\n")
		_, err := LoadConfig(&strictConfig{}, path, nil, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConfigValidationFailed)
		assert.ErrorIs(t, err, ErrConfigRequiredFieldMissing)
		assert.Equal(t, KindConfig, KindOf(err))
	})

	t.Run("nil prototype is rejected", func(t *testing.T) {
		_, err := LoadConfig(nil, "", nil, nil)
		assert.ErrorIs(t, err, ErrConfigNil)
	})

	t.Run("no file means feeders and validation only", func(t *testing.T) {
		got, err := LoadConfig(&loaderTestConfig{}, "", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 8080, got.(*loaderTestConfig).App.Port, "defaults still apply")
	})
}
