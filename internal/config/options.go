// Package config provides configuration types for the chesstutor engine manager.
package config

import (
	"log/slog"
	"time"
)

const (
	// DefaultHandshakeTimeout bounds the spawn + uci/isready handshake.
	DefaultHandshakeTimeout = 15 * time.Second

	// DefaultShutdownGrace is how long Shutdown waits for the process to
	// exit after "quit" before escalating to a kill.
	DefaultShutdownGrace = 2 * time.Second

	// DefaultStopGrace is how long a timed-out conversation waits for the
	// engine's terminal line after "stop" before the ticket is released
	// anyway. Releasing earlier risks a late bestmove line being read by
	// the next ticket's conversation.
	DefaultStopGrace = 2 * time.Second

	// DefaultAnalysisDepth is the search depth for positional analysis.
	DefaultAnalysisDepth = 5

	// DefaultAnalysisTimeout bounds one analysis conversation.
	DefaultAnalysisTimeout = 30 * time.Second

	// DefaultMultiPV is the number of ranked candidate lines requested.
	DefaultMultiPV = 3

	// BestMoveTimeoutSlack is added to the computed movetime to form the
	// best-move conversation deadline.
	BestMoveTimeoutSlack = 7 * time.Second
)

// Options configures the engine manager.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// EnginePath is an explicit path to the UCI engine binary.
	// If empty, the binary is searched in PATH and common locations.
	EnginePath string

	// HandshakeTimeout bounds Initialize (spawn through readyok).
	HandshakeTimeout time.Duration

	// ShutdownGrace bounds the wait for process exit after "quit".
	ShutdownGrace time.Duration

	// StopGrace bounds the wait for a terminal line after "stop" is sent
	// to a timed-out conversation.
	StopGrace time.Duration

	// AnalysisDepth is the default search depth for RequestAnalysis.
	AnalysisDepth int

	// AnalysisTimeout is the default deadline for RequestAnalysis.
	AnalysisTimeout time.Duration

	// MultiPV is the number of candidate lines requested during analysis.
	MultiPV int

	// MaxQueueDepth bounds the broker's wait queue. Zero means unbounded;
	// past the bound, acquire rejects immediately with EngineBusyError.
	MaxQueueDepth int
}

// ApplyDefaults fills zero-valued fields with package defaults.
func (o *Options) ApplyDefaults() {
	if o.HandshakeTimeout == 0 {
		o.HandshakeTimeout = DefaultHandshakeTimeout
	}

	if o.ShutdownGrace == 0 {
		o.ShutdownGrace = DefaultShutdownGrace
	}

	if o.StopGrace == 0 {
		o.StopGrace = DefaultStopGrace
	}

	if o.AnalysisDepth == 0 {
		o.AnalysisDepth = DefaultAnalysisDepth
	}

	if o.AnalysisTimeout == 0 {
		o.AnalysisTimeout = DefaultAnalysisTimeout
	}

	if o.MultiPV == 0 {
		o.MultiPV = DefaultMultiPV
	}
}
