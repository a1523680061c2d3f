// Package configwatcher triggers a configuration reload when the
// application's config file changes on disk.
//
// The watch covers the file's directory rather than the file itself, so
// editors and deployment tools that replace the file by rename are caught.
// Rapid event bursts are debounced into a single reload.
package configwatcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/keelframework/keel"
)

// ErrNoConfigFile is returned from Init when the application has no config
// file to watch.
var ErrNoConfigFile = errors.New("configwatcher: application has no config file")

// DefaultDebounce is the quiet period required after the last file event
// before a reload is triggered.
const DefaultDebounce = 500 * time.Millisecond

// Component watches the application's config file and calls ReloadConfig
// when it changes.
type Component struct {
	debounce time.Duration

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// Option configures the component.
type Option func(*Component)

// WithDebounce sets the debounce window. Non-positive values keep the
// default.
func WithDebounce(d time.Duration) Option {
	return func(c *Component) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// New creates a config watcher component.
func New(opts ...Option) *Component {
	c := &Component{debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the component.
func (c *Component) Name() string {
	return "configwatcher"
}

// Init starts watching the directory containing the application's config
// file. An application without a config file cannot be watched; that is a
// wiring mistake and fails the boot.
func (c *Component) Init(app keel.Application) error {
	path := app.ConfigFile()
	if path == "" {
		return ErrNoConfigFile
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	c.watcher = watcher
	c.done = make(chan struct{})
	c.wg.Add(1)
	go c.watch(app, filepath.Clean(path))

	app.Logger().Info("Watching configuration file", "file", path, "debounce", c.debounce)
	return nil
}

// watch consumes file events until shutdown, debouncing changes to the
// config file into reload calls.
func (c *Component) watch(app keel.Application, path string) {
	defer c.wg.Done()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-c.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}

			app.Logger().Debug("Config file changed", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(c.debounce)
				timerC = timer.C
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(c.debounce)

		case <-timerC:
			timer = nil
			timerC = nil
			c.reload(app)

		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			app.Logger().Error("File watcher error", "error", err)
		}
	}
}

func (c *Component) reload(app keel.Application) {
	err := app.ReloadConfig(context.Background())
	switch {
	case err == nil:
	case errors.Is(err, keel.ErrReloadInProgress):
		app.Logger().Debug("Reload already in progress, skipping file change")
	default:
		// The application keeps its previous configuration; nothing to do
		// here beyond surfacing the rejection.
		app.Logger().Error("Automatic config reload failed", "error", err)
	}
}

// Shutdown stops the watcher and waits for the watch goroutine to exit.
func (c *Component) Shutdown(context.Context) error {
	if c.watcher == nil {
		return nil
	}

	close(c.done)
	err := c.watcher.Close()
	c.wg.Wait()
	return err
}
