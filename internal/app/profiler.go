package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/specialistvlad/celerity/internal/profiler"
)

const profilerDialTimeout = 5 * time.Second

// newProfiler combines the sinks enabled by the configuration. Markers always
// go to the debug log.
func (a *App) newProfiler(ctx context.Context) (profiler.Profiler, error) {
	sinks := []profiler.Profiler{profiler.NewLog(a.logger, slog.LevelDebug)}

	if a.config.ProfilerURL != "" {
		sio, err := profiler.DialSocketIO(ctx, a.config.ProfilerURL, "/", profilerDialTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to connect profiler: %w", err)
		}
		a.closers = append(a.closers, sio.Close)
		sinks = append(sinks, sio)
	}
	if a.config.Tracy {
		sinks = append(sinks, profiler.Tracy{})
	}
	return profiler.Combine(sinks...), nil
}
