package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/alexanderramin/tollgate/internal/notify"
	"github.com/alexanderramin/tollgate/internal/repository"
)

// SLAMonitor marks pending tasks overdue once their due date passes. It only
// touches tasks: approval records and request statuses are left alone, and an
// overdue task can still be decided.
type SLAMonitor struct {
	tasks    repository.TaskRepo
	sink     notify.Sink
	logger   *slog.Logger
	observer UseCaseObserver
	now      func() time.Time
}

type SLAOption func(*SLAMonitor)

func WithSLAClock(now func() time.Time) SLAOption {
	return func(m *SLAMonitor) { m.now = now }
}

func WithSLASink(sink notify.Sink) SLAOption {
	return func(m *SLAMonitor) { m.sink = sink }
}

func WithSLALogger(logger *slog.Logger) SLAOption {
	return func(m *SLAMonitor) { m.logger = logger }
}

func WithSLAObserver(obs UseCaseObserver) SLAOption {
	return func(m *SLAMonitor) { m.observer = obs }
}

func NewSLAMonitor(tasks repository.TaskRepo, opts ...SLAOption) *SLAMonitor {
	m := &SLAMonitor{
		tasks:    tasks,
		sink:     notify.Noop{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		observer: NoopUseCaseObserver{},
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Sweep flips every pending task whose due date is before now to overdue and
// emits one TaskOverdue intent per flipped task. Tasks decided or swept by
// someone else in the meantime are skipped.
func (m *SLAMonitor) Sweep(ctx context.Context) (result *SweepResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer observe(ctx, m.observer, "sla-sweep", startedAt, fields, &err)

	now := m.now()
	due, err := m.tasks.ListPastDue(ctx, now)
	if err != nil {
		return nil, storageErr(err)
	}

	result = &SweepResult{Checked: len(due), At: now}
	for _, task := range due {
		flipped, err := m.tasks.MarkOverdue(ctx, task.ID, now)
		if err != nil {
			return result, storageErr(err)
		}
		if !flipped {
			continue
		}
		task.Status = domain.TaskOverdue
		result.Overdue = append(result.Overdue, task)
	}

	for _, task := range result.Overdue {
		if err := m.sink.Notify(ctx, taskOverdueIntent(task)); err != nil {
			m.logger.WarnContext(ctx, "notification delivery failed",
				"kind", string(domain.NotifyTaskOverdue),
				"user_id", task.AssigneeID,
				"task_id", task.ID,
				"error", err)
		}
	}

	fields["checked"] = result.Checked
	fields["overdue"] = len(result.Overdue)
	if len(result.Overdue) > 0 {
		m.logger.InfoContext(ctx, "sla sweep marked tasks overdue", "count", len(result.Overdue))
	}
	return result, nil
}

// Start sweeps every interval until ctx is done or stop is called. Sweep
// errors are logged and the loop keeps running.
func (m *SLAMonitor) Start(ctx context.Context, interval time.Duration) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := m.Sweep(ctx); err != nil && ctx.Err() == nil {
					m.logger.ErrorContext(ctx, "sla sweep failed", "error", err)
				}
			}
		}
	}()
	return func() {
		cancel()
		wg.Wait()
	}
}
