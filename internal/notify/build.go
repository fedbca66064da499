package notify

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/alexanderramin/tollgate/internal/config"
)

// New builds the sink set selected by cfg. With nothing enabled it returns Noop.
func New(cfg config.Notifications, database *sql.DB, logger *slog.Logger) Sink {
	var sinks []Sink
	if cfg.Log {
		sinks = append(sinks, NewLogSink(logger))
	}
	if cfg.Inbox && database != nil {
		sinks = append(sinks, NewStoreSink(database))
	}
	if cfg.NtfyTopic != "" {
		sinks = append(sinks, NewNtfySink(cfg.NtfyTopic, time.Duration(cfg.RequestTimeout)*time.Second))
	}
	switch len(sinks) {
	case 0:
		return Noop{}
	case 1:
		return sinks[0]
	}
	return NewFanout(logger, sinks...)
}
