// Package apptest runs the whole application against HCL files written to a
// temporary directory. It lives apart from testutil so that packages below
// app can keep using testutil in their own tests.
package apptest

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/specialistvlad/celerity/internal/app"
	"github.com/specialistvlad/celerity/internal/hcl_adapter"
	"github.com/specialistvlad/celerity/internal/registry"
	"github.com/specialistvlad/celerity/internal/testutil"
)

// runTimeout bounds a whole harness run.
const runTimeout = 30 * time.Second

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	// Err is the first error from NewApp or Run.
	Err error
	App *app.App
}

// RunIntegrationTest writes files into a temporary directory, builds the app
// from them and runs cfg.Frames frames. Zero-valued timing fields get short
// test defaults and Frames defaults to 1.
func RunIntegrationTest(t *testing.T, files map[string]string, cfg app.Config, modules ...registry.Module) *HarnessResult {
	t.Helper()

	cfg.PipelinePaths = append(cfg.PipelinePaths, testutil.WriteFiles(t, files))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.Frames == 0 {
		cfg.Frames = 1
	}
	if cfg.FrameInterval == 0 {
		cfg.FrameInterval = time.Millisecond
	}
	if cfg.FixedStep == 0 {
		// Shorter than the frame interval, so every frame runs a fixed step.
		cfg.FixedStep = time.Microsecond
	}

	logBuffer := &testutil.SafeBuffer{}
	result := &HarnessResult{}
	t.Cleanup(func() {
		if os.Getenv("CELERITY_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	appConfig, err := app.NewConfig(cfg)
	if err != nil {
		result.Err = fmt.Errorf("invalid configuration: %w", err)
		return result
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	testApp, err := app.NewApp(ctx, logBuffer, appConfig, hcl_adapter.NewLoader(), modules...)
	if err != nil {
		result.Err = err
		result.LogOutput = logBuffer.String()
		return result
	}
	result.App = testApp
	result.Err = testApp.Run(ctx)
	result.LogOutput = logBuffer.String()
	return result
}
