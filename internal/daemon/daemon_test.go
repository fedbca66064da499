package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/tollgate/internal/app"
	"github.com/alexanderramin/tollgate/internal/config"
	"github.com/alexanderramin/tollgate/internal/testutil"
)

func newTestDaemon(t *testing.T, lockPath string) *Daemon {
	t.Helper()
	cfg := config.Default()
	cfg.API.Bind = "127.0.0.1:0"
	cfg.Daemon.LockPath = lockPath
	cfg.SLA.SweepInterval = 1
	a, err := app.New(context.Background(), &cfg, testutil.NewTestDB(t), nil, app.WithSink(&testutil.RecordingSink{}))
	require.NoError(t, err)
	d, err := New(a)
	require.NoError(t, err)
	return d
}

func TestDaemon_ServesAPIAndReleasesLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "run", "tollgate.lock")
	d := newTestDaemon(t, lockPath)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, d.Start(ctx))
	t.Cleanup(d.Stop)

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + d.Addr() + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])

	second := newTestDaemon(t, lockPath)
	assert.ErrorIs(t, second.Start(ctx), ErrAlreadyRunning)

	d.Stop()
	third := newTestDaemon(t, lockPath)
	require.NoError(t, third.Start(ctx), "the lock is released on stop")
	third.Stop()
}

func TestDaemon_RunStopsOnCancel(t *testing.T) {
	d := newTestDaemon(t, filepath.Join(t.TempDir(), "tollgate.lock"))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	require.Eventually(t, func() bool { return d.running.Load() }, 2*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
	assert.False(t, d.running.Load())
}

func TestNew_RequiresApp(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}
