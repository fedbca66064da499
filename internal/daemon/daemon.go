// Package daemon runs the SLA monitor and the HTTP API as one long-lived
// process, guarded by a lock file so only one instance runs per database.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"github.com/alexanderramin/tollgate/internal/api"
	"github.com/alexanderramin/tollgate/internal/app"
)

// ErrAlreadyRunning is returned when another daemon holds the lock.
var ErrAlreadyRunning = errors.New("another tollgate daemon is already running")

type Daemon struct {
	app    *app.App
	logger *slog.Logger

	lockPath string
	lock     *flock.Flock

	sweepInterval   time.Duration
	shutdownTimeout time.Duration
	server          *http.Server
	listener        net.Listener
	stopSweeps      func()

	running atomic.Bool
}

// New builds a daemon from the wired app and its configuration.
func New(a *app.App) (*Daemon, error) {
	if a == nil || a.Config == nil {
		return nil, errors.New("daemon requires a configured app")
	}
	cfg := a.Config
	lockPath := cfg.Daemon.LockPath
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	router := api.NewRouter(api.Services{
		Engine:   a.Engine,
		Requests: a.Requests,
		Tasks:    a.Tasks,
		Inbox:    a.Inbox,
		SLA:      a.SLA,
		Registry: a.Registry,
	}, a.Logger)

	return &Daemon{
		app:             a,
		logger:          a.Logger,
		lockPath:        lockPath,
		lock:            flock.New(lockPath),
		sweepInterval:   time.Duration(cfg.SLA.SweepInterval) * time.Second,
		shutdownTimeout: time.Duration(cfg.API.ShutdownTimeout) * time.Second,
		server: &http.Server{
			Addr:              cfg.API.Bind,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       time.Duration(cfg.API.ReadTimeout) * time.Second,
			WriteTimeout:      time.Duration(cfg.API.WriteTimeout) * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}, nil
}

// Start acquires the lock, runs one SLA sweep, starts the sweep ticker and
// begins serving the API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}

	listener, err := net.Listen("tcp", d.server.Addr)
	if err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("api listen: %w", err)
	}
	d.listener = listener

	if _, err := d.app.SLA.Sweep(ctx); err != nil {
		d.logger.Warn("initial sla sweep failed", "error", err)
	}
	d.stopSweeps = d.app.SLA.Start(ctx, d.sweepInterval)

	go func() {
		if err := d.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error("api server error", "error", err)
		}
	}()

	d.running.Store(true)
	d.logger.Info("tollgate daemon started",
		"address", listener.Addr().String(),
		"lock", d.lockPath,
		"sweep_interval", d.sweepInterval.String())
	return nil
}

// Addr returns the bound API address, or "" before Start.
func (d *Daemon) Addr() string {
	if d.listener == nil {
		return ""
	}
	return d.listener.Addr().String()
}

// Stop shuts the API down, stops the sweeps and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), d.shutdownTimeout)
	defer cancel()
	if err := d.server.Shutdown(shutdownCtx); err != nil {
		d.logger.Warn("api shutdown", "error", err)
	}
	if d.stopSweeps != nil {
		d.stopSweeps()
		d.stopSweeps = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", "error", err)
	}
	d.running.Store(false)
	d.logger.Info("tollgate daemon stopped")
}

// Run starts the daemon and blocks until ctx is done.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	d.Stop()
	return nil
}
