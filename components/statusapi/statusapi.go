// Package statusapi serves liveness and status endpoints for a keel
// application over HTTP.
//
//	GET /healthz   plain-text liveness probe
//	GET /status    JSON: version, boot state, boot order, component states
package statusapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/keelframework/keel"
)

// DefaultAddr is the listen address used when none is given.
const DefaultAddr = ":8410"

// Component serves the status endpoints. The listener is bound during Init,
// so an unavailable port fails the boot instead of surfacing later.
type Component struct {
	addr string
	app  keel.Application

	listener net.Listener
	server   *http.Server
	started  time.Time
}

// New creates a status API component listening on addr. An empty addr uses
// DefaultAddr; ":0" picks a free port, readable from Addr after boot.
func New(addr string) *Component {
	if addr == "" {
		addr = DefaultAddr
	}
	return &Component{addr: addr}
}

// Name identifies the component.
func (c *Component) Name() string {
	return "statusapi"
}

// Init binds the listener and starts serving in the background.
func (c *Component) Init(app keel.Application) error {
	c.app = app
	c.started = time.Now()

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", c.handleHealthz)
	r.Get("/status", c.handleStatus)

	listener, err := net.Listen("tcp", c.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", c.addr, err)
	}
	c.listener = listener

	c.server = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := c.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger().Error("Status API server error", "error", err)
		}
	}()

	app.Logger().Info("Status API listening", "addr", listener.Addr().String())
	return nil
}

// Addr returns the bound listener address once Init has run.
func (c *Component) Addr() string {
	if c.listener == nil {
		return c.addr
	}
	return c.listener.Addr().String()
}

// Shutdown stops accepting connections and drains in-flight requests.
func (c *Component) Shutdown(ctx context.Context) error {
	if c.server == nil {
		return nil
	}
	return c.server.Shutdown(ctx)
}

func (c *Component) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

// statusResponse is the JSON document served at /status.
type statusResponse struct {
	Application string            `json:"application"`
	Version     string            `json:"version"`
	Booted      bool              `json:"booted"`
	Uptime      string            `json:"uptime"`
	BootOrder   []string          `json:"boot_order"`
	Components  map[string]string `json:"components"`
}

func (c *Component) handleStatus(w http.ResponseWriter, _ *http.Request) {
	registry := c.app.Registry()

	components := make(map[string]string)
	degraded := false
	for name, state := range registry.States() {
		components[name] = state.String()
		if state == keel.StateFailed {
			degraded = true
		}
	}

	resp := statusResponse{
		Application: c.app.Name(),
		Version:     keel.Version,
		Booted:      c.app.Booted(),
		Uptime:      time.Since(c.started).Round(time.Second).String(),
		BootOrder:   registry.BootOrder(),
		Components:  components,
	}

	w.Header().Set("Content-Type", "application/json")
	if degraded {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		c.app.Logger().Error("Failed to encode status response", "error", err)
	}
}
