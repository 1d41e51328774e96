package chesstutor

import (
	"context"
	"time"

	"github.com/pleasehelpm32/chesstutor/internal/config"
	"github.com/pleasehelpm32/chesstutor/internal/engine"
)

// EngineManager owns a single UCI engine subprocess and serializes all
// access to it. It is safe for concurrent use: requests from multiple
// goroutines are queued and served one at a time in arrival order.
//
// Lifecycle: call Initialize before the first request, and Shutdown when
// done. After a crash the manager stays usable; calling Initialize again
// spawns a fresh engine process.
//
// Example usage:
//
//	em := chesstutor.New(
//	    chesstutor.WithLogger(slog.Default()),
//	    chesstutor.WithMaxQueueDepth(16),
//	)
//	if err := em.Initialize(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer em.Shutdown(context.Background())
//
//	moves, err := em.RequestAnalysis(ctx, fen)
type EngineManager struct {
	mgr *engine.Manager
}

// New creates an engine manager from functional options. The engine
// process is not spawned until Initialize is called.
func New(opts ...Option) *EngineManager {
	o := applyEngineOptions(opts)

	return newFromOptions(o)
}

// NewFromEnv creates an engine manager configured from CHESSTUTOR_*
// environment variables. Functional options are applied on top and take
// precedence over the environment.
func NewFromEnv(opts ...Option) (*EngineManager, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}

	o := &EngineOptions{
		Logger:           cfg.Logger,
		EnginePath:       cfg.EnginePath,
		HandshakeTimeout: cfg.HandshakeTimeout,
		ShutdownGrace:    cfg.ShutdownGrace,
		StopGrace:        cfg.StopGrace,
		AnalysisDepth:    cfg.AnalysisDepth,
		AnalysisTimeout:  cfg.AnalysisTimeout,
		MultiPV:          cfg.MultiPV,
		MaxQueueDepth:    cfg.MaxQueueDepth,
	}
	for _, opt := range opts {
		opt(o)
	}

	return newFromOptions(o), nil
}

func newFromOptions(o *EngineOptions) *EngineManager {
	cfg := &config.Options{
		Logger:           o.Logger,
		EnginePath:       o.EnginePath,
		HandshakeTimeout: o.HandshakeTimeout,
		ShutdownGrace:    o.ShutdownGrace,
		StopGrace:        o.StopGrace,
		AnalysisDepth:    o.AnalysisDepth,
		AnalysisTimeout:  o.AnalysisTimeout,
		MultiPV:          o.MultiPV,
		MaxQueueDepth:    o.MaxQueueDepth,
	}

	mgr := engine.NewManager(cfg, o.Rules)
	if o.Transport != nil {
		t := o.Transport
		mgr.SetTransportFactory(func() engine.Transport { return t })
	}

	return &EngineManager{mgr: mgr}
}

// Initialize spawns the engine process and performs the UCI handshake.
// It is idempotent: once the engine is ready, further calls return nil,
// and concurrent calls share the outcome of the in-flight handshake.
// Returns EngineNotFoundError if no engine binary can be located and
// EngineStartupError if the handshake fails or times out.
func (em *EngineManager) Initialize(ctx context.Context) error {
	return em.mgr.Initialize(ctx)
}

// IsReady reports whether the engine is initialized and able to accept
// requests, including when it is currently serving one.
func (em *EngineManager) IsReady() bool {
	return em.mgr.IsReady()
}

// State returns the engine's current lifecycle state.
func (em *EngineManager) State() State {
	return em.mgr.State()
}

// RequestAnalysis returns the engine's top candidate moves for the given
// FEN position, best first, each tagged with whether it delivers
// checkmate. The position is validated before the engine is touched;
// an unparseable FEN fails with InvalidPositionError.
func (em *EngineManager) RequestAnalysis(ctx context.Context, fen string, opts ...AnalysisOption) ([]AnalysisMove, error) {
	var cfg analysisConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return em.mgr.RequestAnalysis(ctx, fen, cfg.depth, cfg.timeout)
}

// RequestBestMove asks the engine to play a move from the given FEN
// position at the given skill level (0 weakest to 20 full strength).
// Higher skill levels are granted more thinking time. A position with no
// legal moves resolves to a BestMove with None() true.
func (em *EngineManager) RequestBestMove(ctx context.Context, fen string, skillLevel int) (BestMove, error) {
	return em.mgr.RequestBestMove(ctx, fen, skillLevel)
}

// Shutdown stops the engine process: pending and in-flight requests fail
// with EngineShutdownError, the engine is asked to quit, and it is killed
// if it has not exited within the shutdown grace period. Shutdown is
// idempotent and a no-op when the engine never started or has crashed.
func (em *EngineManager) Shutdown(ctx context.Context) error {
	return em.mgr.Shutdown(ctx)
}

// AnalysisOption configures a single RequestAnalysis call.
type AnalysisOption func(*analysisConfig)

type analysisConfig struct {
	depth   int
	timeout time.Duration
}

// WithDepth overrides the configured search depth for this request.
func WithDepth(depth int) AnalysisOption {
	return func(c *analysisConfig) {
		c.depth = depth
	}
}

// WithTimeout overrides the configured deadline for this request.
func WithTimeout(timeout time.Duration) AnalysisOption {
	return func(c *analysisConfig) {
		c.timeout = timeout
	}
}
