package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvOptions maps environment variables onto manager configuration.
type EnvOptions struct {
	EnginePath       string        `env:"CHESSTUTOR_ENGINE_PATH"`
	HandshakeTimeout time.Duration `env:"CHESSTUTOR_HANDSHAKE_TIMEOUT"`
	ShutdownGrace    time.Duration `env:"CHESSTUTOR_SHUTDOWN_GRACE"`
	StopGrace        time.Duration `env:"CHESSTUTOR_STOP_GRACE"`
	AnalysisDepth    int           `env:"CHESSTUTOR_ANALYSIS_DEPTH"`
	AnalysisTimeout  time.Duration `env:"CHESSTUTOR_ANALYSIS_TIMEOUT"`
	MultiPV          int           `env:"CHESSTUTOR_MULTIPV"`
	MaxQueueDepth    int           `env:"CHESSTUTOR_MAX_QUEUE_DEPTH"`
}

// FromEnv loads configuration from environment variables and merges it
// into an Options value with defaults applied.
func FromEnv() (*Options, error) {
	var e EnvOptions
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	o := &Options{
		EnginePath:       e.EnginePath,
		HandshakeTimeout: e.HandshakeTimeout,
		ShutdownGrace:    e.ShutdownGrace,
		StopGrace:        e.StopGrace,
		AnalysisDepth:    e.AnalysisDepth,
		AnalysisTimeout:  e.AnalysisTimeout,
		MultiPV:          e.MultiPV,
		MaxQueueDepth:    e.MaxQueueDepth,
	}
	o.ApplyDefaults()

	return o, nil
}
