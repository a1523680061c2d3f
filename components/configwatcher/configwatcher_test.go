package configwatcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keelframework/keel"
)

type watcherConfig struct {
	App watcherAppSection `toml:"app"`
}

type watcherAppSection struct {
	Name string `toml:"name"`
}

// reloadCounter counts ConfigReloaded events and signals each one.
type reloadCounter struct {
	mu    sync.Mutex
	count int
	ch    chan struct{}
}

func newReloadCounter() *reloadCounter {
	return &reloadCounter{ch: make(chan struct{}, 16)}
}

func (r *reloadCounter) observer() keel.Observer {
	return keel.NewFunctionalObserver("reload-counter", func(_ context.Context, event keel.CloudEvent) error {
		if event.Type() == keel.EventTypeConfigReloaded {
			r.mu.Lock()
			r.count++
			r.mu.Unlock()
			select {
			case r.ch <- struct{}{}:
			default:
			}
		}
		return nil
	})
}

func (r *reloadCounter) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func (r *reloadCounter) wait(t *testing.T, timeout time.Duration) {
	t.Helper()
	select {
	case <-r.ch:
	case <-time.After(timeout):
		t.Fatal("Timed out waiting for a config reload")
	}
}

func quietLogger() keel.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeConfig(t *testing.T, path, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("[app]\nname = %q\n", name)), 0o600))
}

// watchedApp boots an application watching a fresh temp config file.
func watchedApp(t *testing.T, debounce time.Duration) (*keel.StdApplication, string, *reloadCounter) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "app.toml")
	writeConfig(t, path, "first")

	counter := newReloadCounter()
	app, err := keel.New(
		keel.WithLogger(quietLogger()),
		keel.WithConfig(&watcherConfig{}),
		keel.WithConfigFile(path),
		keel.WithComponents(New(WithDebounce(debounce))),
		keel.WithObserver(counter.observer()),
	)
	require.NoError(t, err)
	require.NoError(t, app.Boot(context.Background()))
	t.Cleanup(func() {
		_ = app.Shutdown(context.Background())
	})

	return app, path, counter
}

func TestName(t *testing.T) {
	assert.Equal(t, "configwatcher", New().Name())
}

func TestWithDebounce(t *testing.T) {
	assert.Equal(t, DefaultDebounce, New().debounce)
	assert.Equal(t, time.Second, New(WithDebounce(time.Second)).debounce)
	assert.Equal(t, DefaultDebounce, New(WithDebounce(0)).debounce)
	assert.Equal(t, DefaultDebounce, New(WithDebounce(-time.Second)).debounce)
}

func TestInitWithoutConfigFile(t *testing.T) {
	app, err := keel.New(keel.WithLogger(quietLogger()))
	require.NoError(t, err)

	assert.ErrorIs(t, New().Init(app), ErrNoConfigFile)
}

func TestBootFailsWithoutConfigFile(t *testing.T) {
	app, err := keel.New(
		keel.WithLogger(quietLogger()),
		keel.WithComponents(New()),
	)
	require.NoError(t, err)

	err = app.Boot(context.Background())
	assert.ErrorIs(t, err, keel.ErrComponentInitFailed)
	assert.ErrorIs(t, err, ErrNoConfigFile)
	assert.False(t, app.Booted())
}

func TestShutdownBeforeInit(t *testing.T) {
	assert.NoError(t, New().Shutdown(context.Background()))
}

func TestReloadOnFileChange(t *testing.T) {
	app, path, counter := watchedApp(t, 50*time.Millisecond)

	writeConfig(t, path, "second")
	counter.wait(t, 5*time.Second)

	cfg, err := keel.ConfigAs[*watcherConfig](app)
	require.NoError(t, err)
	assert.Equal(t, "second", cfg.App.Name)
}

func TestReloadOnFileRename(t *testing.T) {
	app, path, counter := watchedApp(t, 50*time.Millisecond)

	// Deployment tools replace config files by writing a sibling and
	// renaming it over the original.
	staging := path + ".tmp"
	require.NoError(t, os.WriteFile(staging, []byte("[app]\nname = \"renamed\"\n"), 0o600))
	require.NoError(t, os.Rename(staging, path))
	counter.wait(t, 5*time.Second)

	cfg, err := keel.ConfigAs[*watcherConfig](app)
	require.NoError(t, err)
	assert.Equal(t, "renamed", cfg.App.Name)
}

func TestDebounceCollapsesBursts(t *testing.T) {
	app, path, counter := watchedApp(t, 300*time.Millisecond)

	for i := 0; i < 5; i++ {
		writeConfig(t, path, fmt.Sprintf("v%d", i))
		time.Sleep(5 * time.Millisecond)
	}

	counter.wait(t, 5*time.Second)
	time.Sleep(600 * time.Millisecond)

	assert.Equal(t, 1, counter.total(), "a burst of writes should trigger a single reload")

	cfg, err := keel.ConfigAs[*watcherConfig](app)
	require.NoError(t, err)
	assert.Equal(t, "v4", cfg.App.Name)
}

func TestShutdownStopsWatching(t *testing.T) {
	app, path, counter := watchedApp(t, 50*time.Millisecond)

	writeConfig(t, path, "second")
	counter.wait(t, 5*time.Second)

	require.NoError(t, app.Shutdown(context.Background()))

	writeConfig(t, path, "third")
	time.Sleep(300 * time.Millisecond)

	assert.Equal(t, 1, counter.total(), "no reloads should fire after shutdown")
}

func TestIgnoresOtherFilesInDirectory(t *testing.T) {
	app, path, counter := watchedApp(t, 50*time.Millisecond)

	sibling := filepath.Join(filepath.Dir(path), "notes.txt")
	require.NoError(t, os.WriteFile(sibling, []byte("scratch"), 0o600))
	time.Sleep(300 * time.Millisecond)

	assert.Equal(t, 0, counter.total(), "changes to other files should not trigger reloads")

	cfg, err := keel.ConfigAs[*watcherConfig](app)
	require.NoError(t, err)
	assert.Equal(t, "first", cfg.App.Name)
}
