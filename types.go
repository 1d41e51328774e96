package chesstutor

import (
	"github.com/pleasehelpm32/chesstutor/internal/engine"
	"github.com/pleasehelpm32/chesstutor/internal/rules"
)

// AnalysisMove is one candidate move from an analysis request.
type AnalysisMove = engine.AnalysisMove

// BestMove is the engine's chosen move for a best-move request.
type BestMove = engine.BestMove

// Rules validates positions, applies moves, and detects checkmate.
// The built-in implementation is used unless WithRules overrides it.
type Rules = rules.Rules

// Transport carries the line protocol between the manager and an engine
// process. The default transport spawns a local subprocess and speaks
// over its stdio pipes.
type Transport = engine.Transport

// State is the engine manager's lifecycle state.
type State = engine.State

// Engine lifecycle states.
const (
	StateNotStarted  = engine.StateNotStarted
	StateHandshaking = engine.StateHandshaking
	StateReady       = engine.StateReady
	StateBusy        = engine.StateBusy
	StateTerminating = engine.StateTerminating
	StateCrashed     = engine.StateCrashed
)
