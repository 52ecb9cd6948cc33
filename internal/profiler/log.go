package profiler

import (
	"context"
	"log/slog"
	"time"
)

// Log writes markers and zones to a slog logger, at debug level by default.
type Log struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLog creates a log profiler. A nil logger means slog.Default().
func NewLog(logger *slog.Logger, level slog.Level) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger, level: level}
}

// Mark logs the marker.
func (l *Log) Mark(name string) {
	l.logger.Log(context.Background(), l.level, "Profiler marker.", "marker", name)
}

// Begin starts timing a zone. Nothing is logged until End.
func (l *Log) Begin(name string) Zone {
	if !l.logger.Enabled(context.Background(), l.level) {
		return nopZone{}
	}
	return &logZone{log: l, name: name, start: time.Now()}
}

type logZone struct {
	log   *Log
	name  string
	start time.Time
}

func (z *logZone) End() {
	z.log.logger.Log(context.Background(), z.log.level, "Profiler zone.", "zone", z.name, "duration", time.Since(z.start))
}
