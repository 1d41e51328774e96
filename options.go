package chesstutor

import (
	"log/slog"
	"time"
)

// EngineOptions configures an EngineManager. Zero values fall back to the
// package defaults; use the With* functional options rather than building
// this struct directly.
type EngineOptions struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// EnginePath is an explicit path to the UCI engine binary.
	// If empty, the binary is searched in PATH and common locations.
	EnginePath string

	// HandshakeTimeout bounds Initialize, from spawn through the UCI
	// handshake. Defaults to 15 seconds.
	HandshakeTimeout time.Duration

	// ShutdownGrace bounds the wait for process exit after "quit" before
	// the process is killed. Defaults to 2 seconds.
	ShutdownGrace time.Duration

	// StopGrace bounds the wait for the engine to acknowledge an
	// interrupted search. Defaults to 2 seconds.
	StopGrace time.Duration

	// AnalysisDepth is the default search depth for RequestAnalysis.
	AnalysisDepth int

	// AnalysisTimeout is the default deadline for RequestAnalysis.
	AnalysisTimeout time.Duration

	// MultiPV is the number of candidate lines requested during analysis.
	// Defaults to 3.
	MultiPV int

	// MaxQueueDepth bounds how many requests may wait for the engine.
	// Zero means unbounded; past the bound, requests fail immediately
	// with EngineBusyError.
	MaxQueueDepth int

	// Rules is the chess rules collaborator used to validate positions
	// and detect checkmate. If nil, the built-in implementation is used.
	Rules Rules

	// Transport overrides the engine subprocess transport.
	// Intended for tests and embedders; most callers leave this nil.
	Transport Transport
}

// Option configures EngineOptions using the functional options pattern.
type Option func(*EngineOptions)

func applyEngineOptions(opts []Option) *EngineOptions {
	options := &EngineOptions{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *EngineOptions) {
		o.Logger = logger
	}
}

// WithEnginePath sets the explicit path to the UCI engine binary.
// If not set, the binary is searched in PATH and common locations.
func WithEnginePath(path string) Option {
	return func(o *EngineOptions) {
		o.EnginePath = path
	}
}

// WithHandshakeTimeout bounds Initialize, from spawn through the UCI
// handshake.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(o *EngineOptions) {
		o.HandshakeTimeout = d
	}
}

// WithShutdownGrace bounds the wait for process exit after "quit" before
// the process is killed.
func WithShutdownGrace(d time.Duration) Option {
	return func(o *EngineOptions) {
		o.ShutdownGrace = d
	}
}

// WithStopGrace bounds the wait for the engine to acknowledge an
// interrupted search.
func WithStopGrace(d time.Duration) Option {
	return func(o *EngineOptions) {
		o.StopGrace = d
	}
}

// WithAnalysisDepth sets the default search depth for RequestAnalysis.
func WithAnalysisDepth(depth int) Option {
	return func(o *EngineOptions) {
		o.AnalysisDepth = depth
	}
}

// WithAnalysisTimeout sets the default deadline for RequestAnalysis.
func WithAnalysisTimeout(d time.Duration) Option {
	return func(o *EngineOptions) {
		o.AnalysisTimeout = d
	}
}

// WithMultiPV sets how many candidate lines analysis requests from the
// engine.
func WithMultiPV(n int) Option {
	return func(o *EngineOptions) {
		o.MultiPV = n
	}
}

// WithMaxQueueDepth bounds how many requests may wait for the engine.
// Past the bound, requests fail immediately with EngineBusyError.
func WithMaxQueueDepth(n int) Option {
	return func(o *EngineOptions) {
		o.MaxQueueDepth = n
	}
}

// WithRules sets the chess rules collaborator used to validate positions
// and detect checkmate.
func WithRules(r Rules) Option {
	return func(o *EngineOptions) {
		o.Rules = r
	}
}

// WithTransport overrides the engine subprocess transport.
func WithTransport(t Transport) Option {
	return func(o *EngineOptions) {
		o.Transport = t
	}
}
