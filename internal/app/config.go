package app

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PipelinePaths []string // hcl files or directories

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	// Workers is the default max child threads for pipelines that do not set
	// max_child_threads. Negative means one less than the CPU count.
	Workers int

	// Frames is the number of frames to run; 0 runs until interrupted.
	Frames        int
	FrameInterval time.Duration
	FixedStep     time.Duration
	MaxFixedSteps int

	Describe    bool
	ProfilerURL string
	TaskZones   bool
	Tracy       bool
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.PipelinePaths) == 0 {
		return nil, errors.New("at least one pipeline path is required")
	}
	if cfg.FrameInterval <= 0 {
		return nil, fmt.Errorf("frame interval must be positive, got %s", cfg.FrameInterval)
	}
	if cfg.FixedStep <= 0 {
		return nil, fmt.Errorf("fixed step must be positive, got %s", cfg.FixedStep)
	}
	if cfg.Frames < 0 {
		return nil, fmt.Errorf("frames must not be negative, got %d", cfg.Frames)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}
	return &cfg, nil
}
