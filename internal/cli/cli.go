package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/specialistvlad/celerity/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, a ...any) error {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, a...)}
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("celerity", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
Celerity - a frame-driven task pipeline scheduler.

Usage:
  celerity [options] PIPELINE_PATH...

Arguments:
  PIPELINE_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	framesFlag := flagSet.Int("frames", 0, "Number of frames to run. 0 runs until interrupted.")
	intervalFlag := flagSet.Duration("frame-interval", time.Second/60, "Wall time between two frames.")
	fixedStepFlag := flagSet.Duration("fixed-step", time.Second/60, "Simulated time of one fixed pipeline pass.")
	maxFixedStepsFlag := flagSet.Int("max-fixed-steps", 0, "Fixed passes allowed per frame before simulation time is dropped. 0 uses the default.")
	workersFlag := flagSet.Int("workers", -1, "Child threads for pipelines without max_child_threads. -1 uses one less than the CPU count.")
	describeFlag := flagSet.Bool("describe", false, "Print the resolved schedule of every pipeline before running.")
	profilerURLFlag := flagSet.String("profiler-url", "", "socket.io URL of a profiler viewer to stream markers to.")
	taskZonesFlag := flagSet.Bool("task-zones", false, "Open a profiler zone around every task body.")
	tracyFlag := flagSet.Bool("tracy", false, "Send profiler markers and zones to Tracy.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check and metrics server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	paths := flagSet.Args()
	if len(paths) == 0 {
		slog.Debug("No pipeline path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, usageError("invalid log-format: must be 'text' or 'json'")
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	if *workersFlag < -1 {
		return nil, false, usageError("invalid workers: must be -1 or greater")
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		PipelinePaths:   paths,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		HealthcheckPort: *healthPortFlag,
		Workers:         *workersFlag,
		Frames:          *framesFlag,
		FrameInterval:   *intervalFlag,
		FixedStep:       *fixedStepFlag,
		MaxFixedSteps:   *maxFixedStepsFlag,
		Describe:        *describeFlag,
		ProfilerURL:     *profilerURLFlag,
		TaskZones:       *taskZonesFlag,
		Tracy:           *tracyFlag,
	})
	if err != nil {
		return nil, false, usageError("%s", err.Error())
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
