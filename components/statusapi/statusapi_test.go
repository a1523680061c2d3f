package statusapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keelframework/keel"
)

type workerComponent struct {
	name    string
	initErr error
}

func (c *workerComponent) Name() string { return c.name }

func (c *workerComponent) Init(keel.Application) error { return c.initErr }

func newStatusApp(t *testing.T, components ...keel.Component) *keel.StdApplication {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := keel.New(
		keel.WithName("status-app"),
		keel.WithLogger(logger),
		keel.WithComponents(components...),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = app.Shutdown(context.Background())
	})
	return app
}

func getJSON(t *testing.T, url string, target any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
	return resp
}

func TestName(t *testing.T) {
	assert.Equal(t, "statusapi", New("").Name())
}

func TestNewAddrDefaults(t *testing.T) {
	assert.Equal(t, DefaultAddr, New("").Addr())
	assert.Equal(t, ":9999", New(":9999").Addr())
}

func TestShutdownBeforeInit(t *testing.T) {
	assert.NoError(t, New("").Shutdown(context.Background()))
}

func TestHealthz(t *testing.T) {
	c := New(":0")
	app := newStatusApp(t, c)
	require.NoError(t, app.Boot(context.Background()))

	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", c.Addr()))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", string(body))
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
}

func TestStatus(t *testing.T) {
	c := New(":0")
	app := newStatusApp(t, c, &workerComponent{name: "worker"})
	require.NoError(t, app.Boot(context.Background()))

	var status statusResponse
	resp := getJSON(t, fmt.Sprintf("http://%s/status", c.Addr()), &status)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "status-app", status.Application)
	assert.Equal(t, keel.Version, status.Version)
	assert.True(t, status.Booted)
	assert.Equal(t, []string{"statusapi", "worker"}, status.BootOrder)
	assert.Equal(t, map[string]string{
		"statusapi": "ready",
		"worker":    "ready",
	}, status.Components)
}

func TestStatusDegraded(t *testing.T) {
	c := New(":0")
	app := newStatusApp(t, c, &workerComponent{name: "worker", initErr: errors.New("connect refused")})

	err := app.Boot(context.Background())
	require.ErrorIs(t, err, keel.ErrComponentInitFailed)

	// The status API initialized before the failing component, so it is
	// still serving and reports the degraded state.
	var status statusResponse
	resp := getJSON(t, fmt.Sprintf("http://%s/status", c.Addr()), &status)

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.False(t, status.Booted)
	assert.Equal(t, "ready", status.Components["statusapi"])
	assert.Equal(t, "failed", status.Components["worker"])
}

func TestPortConflictFailsBoot(t *testing.T) {
	blocker, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer blocker.Close()

	app := newStatusApp(t, New(blocker.Addr().String()))

	err = app.Boot(context.Background())
	assert.ErrorIs(t, err, keel.ErrComponentInitFailed)
	assert.Contains(t, err.Error(), "listen on")
	assert.False(t, app.Booted())
}

func TestShutdownStopsServing(t *testing.T) {
	c := New(":0")
	app := newStatusApp(t, c)
	require.NoError(t, app.Boot(context.Background()))

	url := fmt.Sprintf("http://%s/healthz", c.Addr())
	resp, err := http.Get(url)
	require.NoError(t, err)
	resp.Body.Close()

	addr := c.Addr()
	require.NoError(t, app.Shutdown(context.Background()))

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err == nil {
		conn.Close()
		t.Fatal("Expected the listener to be closed after shutdown")
	}
}
