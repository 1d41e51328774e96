package chesstutor

import "github.com/pleasehelpm32/chesstutor/internal/errors"

// Re-export error types from internal package

// EngineError is the base interface for all engine manager errors.
type EngineError = errors.EngineError

// EngineNotFoundError indicates no UCI engine binary could be located.
type EngineNotFoundError = errors.EngineNotFoundError

// EngineStartupError indicates the engine failed to start or handshake.
type EngineStartupError = errors.EngineStartupError

// EngineCrashError indicates the engine process died unexpectedly.
type EngineCrashError = errors.EngineCrashError

// EngineTimeoutError indicates a request deadline elapsed.
type EngineTimeoutError = errors.EngineTimeoutError

// InvalidPositionError indicates a FEN string the rules engine rejected.
type InvalidPositionError = errors.InvalidPositionError

// EngineShutdownError indicates a request was drained by a shutdown.
type EngineShutdownError = errors.EngineShutdownError

// EngineBusyError indicates a request was rejected because the wait
// queue was full.
type EngineBusyError = errors.EngineBusyError

// Re-export sentinel errors from internal package.
var (
	// ErrNotInitialized indicates a request was made before Initialize
	// succeeded, or after a crash.
	ErrNotInitialized = errors.ErrNotInitialized

	// ErrAlreadyShutdown indicates the manager is shutting down.
	ErrAlreadyShutdown = errors.ErrAlreadyShutdown

	// ErrInvalidSkillLevel indicates a skill level outside 0..20.
	ErrInvalidSkillLevel = errors.ErrInvalidSkillLevel

	// ErrIllegalMove indicates a move the rules engine rejected.
	ErrIllegalMove = errors.ErrIllegalMove
)
