package cmd

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keelframework/keel"
)

// quietSlogDefault silences the process-wide logger while an application
// built without WithLogger boots and shuts down.
func quietSlogDefault(t *testing.T) {
	t.Helper()
	original := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { slog.SetDefault(original) })
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		environment string
		wantErr     bool
	}{
		{"development", false},
		{"staging", false},
		{"production", false},
		{"qa", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			cfg := &Config{}
			cfg.App.Environment = tt.environment

			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidEnvironment)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuildAppDefaults(t *testing.T) {
	quietDefaultShell(t)

	app, err := buildApp("", nil)
	require.NoError(t, err)

	assert.Equal(t, "keel", app.Name())
	assert.Empty(t, app.Registry().Components(), "no components are mounted by default")
}

func TestBuildAppMountsEnabledComponents(t *testing.T) {
	quietDefaultShell(t)

	path := writeKeelConfig(t, `[app]
name = "assembled"

[status]
enabled = true
addr = ":0"

[scheduler]
enabled = true
heartbeat = "@every 1h"
`)

	app, err := buildApp(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "assembled", app.Name())
	assert.Equal(t, []string{"statusapi", "scheduler"}, app.Registry().Components())
}

func TestBuildAppAppliesAssignments(t *testing.T) {
	quietDefaultShell(t)

	app, err := buildApp("", []string{"app.name=from-flag"})
	require.NoError(t, err)
	assert.Equal(t, "from-flag", app.Name())
}

func TestBuildAppRejectsMalformedAssignments(t *testing.T) {
	quietDefaultShell(t)

	_, err := buildApp("", []string{"no-equals"})
	assert.ErrorIs(t, err, keel.ErrConfigLoadFailed)
	assert.ErrorIs(t, err, ErrMalformedAssignment)
}

func TestHeartbeatJobs(t *testing.T) {
	quietDefaultShell(t)
	quietSlogDefault(t)

	path := writeKeelConfig(t, `[scheduler]
enabled = true
heartbeat = "@every 1h"
`)

	app, err := buildApp(path, nil)
	require.NoError(t, err)
	require.NoError(t, app.Boot(context.Background()))
	t.Cleanup(func() {
		_ = app.Shutdown(context.Background())
	})

	jobs, err := heartbeatJobs(app)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "heartbeat", jobs[0].Name)
	assert.Equal(t, "@every 1h", jobs[0].Spec)
	assert.NoError(t, jobs[0].Run(context.Background()))
}

func TestHeartbeatJobsDisabled(t *testing.T) {
	quietDefaultShell(t)
	quietSlogDefault(t)

	app, err := buildApp("", nil)
	require.NoError(t, err)
	require.NoError(t, app.Boot(context.Background()))
	t.Cleanup(func() {
		_ = app.Shutdown(context.Background())
	})

	jobs, err := heartbeatJobs(app)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}
