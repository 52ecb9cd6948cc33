// Package critical is the process-wide fatal error path for task bodies.
// Task bodies never return errors; a body that detects an unrecoverable
// condition reports it here, which logs the diagnostic and aborts. There is
// no recovery and the current pass does not complete.
package critical

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// ExitCode is passed to the abort function.
const ExitCode = 70

// Reporter logs critical failures and aborts. It is safe for concurrent use;
// only the first report aborts, later ones are logged and dropped.
type Reporter struct {
	logger *slog.Logger
	abort  func(code int)
	once   sync.Once
}

// New creates a reporter. A nil abort exits the process.
func New(logger *slog.Logger, abort func(code int)) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	if abort == nil {
		abort = os.Exit
	}
	return &Reporter{logger: logger, abort: abort}
}

// Fatal reports an unrecoverable failure in the named task and aborts.
// args are slog key/value pairs.
func (r *Reporter) Fatal(taskName, msg string, args ...any) {
	attrs := append([]any{"task", taskName}, args...)
	r.logger.Error("Critical failure: "+msg, attrs...)
	r.once.Do(func() { r.abort(ExitCode) })
}

// Check calls Fatal when cond is false.
func (r *Reporter) Check(cond bool, taskName, format string, a ...any) {
	if !cond {
		r.Fatal(taskName, fmt.Sprintf(format, a...))
	}
}

type key struct{}

// WithReporter returns a context carrying r, for task constructors.
func WithReporter(ctx context.Context, r *Reporter) context.Context {
	return context.WithValue(ctx, key{}, r)
}

// FromContext returns the reporter in ctx, or one that logs to slog.Default
// and exits the process.
func FromContext(ctx context.Context) *Reporter {
	if r, ok := ctx.Value(key{}).(*Reporter); ok {
		return r
	}
	return New(nil, nil)
}
