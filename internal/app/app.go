// Package app wires the storage, directory, notification and workflow
// services from a loaded configuration. The CLI and the daemon share it.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/tollgate/internal/config"
	"github.com/alexanderramin/tollgate/internal/db"
	"github.com/alexanderramin/tollgate/internal/directory"
	"github.com/alexanderramin/tollgate/internal/notify"
	"github.com/alexanderramin/tollgate/internal/repository"
	"github.com/alexanderramin/tollgate/internal/service"
	"github.com/alexanderramin/tollgate/internal/workflow"
)

// App holds the wired services.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	DB        *sql.DB
	Registry  *workflow.Registry
	Directory *directory.Store
	Sink      notify.Sink

	Engine   service.WorkflowEngine
	Requests service.RequestService
	Tasks    service.TaskService
	Inbox    service.InboxService
	SLA      *service.SLAMonitor
}

// Option adjusts wiring, mostly for tests.
type Option func(*options)

type options struct {
	sink  notify.Sink
	clock func() time.Time
}

// WithSink replaces the sinks selected by the configuration.
func WithSink(sink notify.Sink) Option {
	return func(o *options) { o.sink = sink }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// Open opens the database at cfg.Database.Path, loads the stage table and
// seeds configured role assignments.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	database, err := db.OpenDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a, err := New(ctx, cfg, database, logger, opts...)
	if err != nil {
		database.Close()
		return nil, err
	}
	return a, nil
}

// New wires services over an already opened database.
func New(ctx context.Context, cfg *config.Config, database *sql.DB, logger *slog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = slog.Default()
	}

	registry := workflow.Default()
	if cfg.Workflow.DefinitionFile != "" {
		loaded, err := workflow.LoadFile(cfg.Workflow.DefinitionFile)
		if err != nil {
			return nil, fmt.Errorf("loading workflow definitions: %w", err)
		}
		registry = loaded
	}

	dir := directory.NewStore(database)
	if roles := cfg.RoleAssignments(); len(roles) > 0 {
		if err := dir.Seed(ctx, roles); err != nil {
			return nil, fmt.Errorf("seeding roles: %w", err)
		}
	}

	sink := o.sink
	if sink == nil {
		sink = notify.New(cfg.Notifications, database, logger)
	}

	observer := service.NewLogUseCaseObserver(logger.With("component", "workflow"))
	engineOpts := []service.EngineOption{
		service.WithLogger(logger),
		service.WithObserver(observer),
		service.WithSink(sink),
		service.WithEligibilityCheck(cfg.Workflow.EligibilityCheck),
		service.WithSiblingSupersede(cfg.Workflow.SupersedeSiblings),
	}
	slaOpts := []service.SLAOption{
		service.WithSLALogger(logger),
		service.WithSLAObserver(observer),
		service.WithSLASink(sink),
	}
	if o.clock != nil {
		engineOpts = append(engineOpts, service.WithClock(o.clock))
		slaOpts = append(slaOpts, service.WithSLAClock(o.clock))
	}

	uow := db.NewSQLiteUnitOfWork(database)
	engine := service.NewWorkflowEngine(registry, dir, repository.NewSQLiteApprovalRepo(database), uow, engineOpts...)
	tasks := repository.NewSQLiteTaskRepo(database)

	return &App{
		Config:    cfg,
		Logger:    logger,
		DB:        database,
		Registry:  registry,
		Directory: dir,
		Sink:      sink,
		Engine:    engine,
		Requests:  service.NewRequestService(database, uow, engine),
		Tasks:     service.NewTaskService(tasks),
		Inbox:     service.NewInboxService(repository.NewSQLiteNotificationRepo(database)),
		SLA:       service.NewSLAMonitor(tasks, slaOpts...),
	}, nil
}

// Close closes the database.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
