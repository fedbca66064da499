// Package notify delivers notification intents emitted by the workflow engine.
// Delivery is best effort: callers log sink failures and carry on.
package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/alexanderramin/tollgate/internal/domain"
)

// Sink receives notification intents.
type Sink interface {
	Notify(ctx context.Context, intent domain.NotificationIntent) error
}

// Noop discards every intent.
type Noop struct{}

func (Noop) Notify(context.Context, domain.NotificationIntent) error { return nil }

// LogSink writes each intent as a structured log line.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Notify(ctx context.Context, intent domain.NotificationIntent) error {
	level := slog.LevelInfo
	if intent.Kind == domain.NotifyOperatorAlert || intent.Kind == domain.NotifyTaskOverdue {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, "notification",
		"kind", string(intent.Kind),
		"user_id", intent.UserID,
		"title", intent.Title,
		"related_kind", string(intent.RelatedKind),
		"related_id", intent.RelatedID,
	)
	return nil
}

// Fanout delivers to every sink. A failing sink does not stop the others;
// all failures are logged and returned joined.
type Fanout struct {
	sinks  []Sink
	logger *slog.Logger
}

func NewFanout(logger *slog.Logger, sinks ...Sink) *Fanout {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fanout{sinks: sinks, logger: logger}
}

func (f *Fanout) Notify(ctx context.Context, intent domain.NotificationIntent) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Notify(ctx, intent); err != nil {
			f.logger.WarnContext(ctx, "notification sink failed",
				"kind", string(intent.Kind),
				"user_id", intent.UserID,
				"error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len reports the number of wrapped sinks.
func (f *Fanout) Len() int { return len(f.sinks) }
