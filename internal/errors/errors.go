package errors

import (
	"errors"
	"fmt"
	"time"
)

// EngineError is the base interface for all engine mediation errors.
type EngineError interface {
	error
	IsEngineError() bool
}

// Compile-time verification that all error types implement EngineError.
var (
	_ EngineError = (*EngineNotFoundError)(nil)
	_ EngineError = (*EngineStartupError)(nil)
	_ EngineError = (*EngineCrashError)(nil)
	_ EngineError = (*EngineTimeoutError)(nil)
	_ EngineError = (*InvalidPositionError)(nil)
	_ EngineError = (*EngineShutdownError)(nil)
	_ EngineError = (*EngineBusyError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrNotInitialized indicates the engine has not been initialized,
	// or was initialized and has since crashed or shut down.
	ErrNotInitialized = errors.New("engine not initialized")

	// ErrAlreadyShutdown indicates the manager has been shut down and
	// requires a new Initialize before accepting work.
	ErrAlreadyShutdown = errors.New("engine already shut down")

	// ErrInvalidSkillLevel indicates a skill level outside [0,20].
	ErrInvalidSkillLevel = errors.New("skill level must be in [0,20]")

	// ErrIllegalMove indicates a move that is not legal in the given position.
	ErrIllegalMove = errors.New("illegal move")
)

// EngineNotFoundError indicates the engine binary was not found.
type EngineNotFoundError struct {
	SearchedPaths []string
}

func (e *EngineNotFoundError) Error() string {
	return fmt.Sprintf("engine binary not found in: %v", e.SearchedPaths)
}

// IsEngineError implements EngineError.
func (e *EngineNotFoundError) IsEngineError() bool { return true }

// EngineStartupError indicates the engine process failed to spawn or
// the UCI handshake did not complete.
type EngineStartupError struct {
	Stage string // "spawn", "uci", "isready"
	Err   error
}

func (e *EngineStartupError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("engine startup failed during %s: %v", e.Stage, e.Err)
	}

	return fmt.Sprintf("engine startup failed: %v", e.Err)
}

func (e *EngineStartupError) Unwrap() error {
	return e.Err
}

// IsEngineError implements EngineError.
func (e *EngineStartupError) IsEngineError() bool { return true }

// EngineCrashError indicates the engine process exited unexpectedly
// while serving requests.
type EngineCrashError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *EngineCrashError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("engine process crashed (exit %d): %s", e.ExitCode, e.Stderr)
	}

	return fmt.Sprintf("engine process crashed (exit %d): %v", e.ExitCode, e.Err)
}

func (e *EngineCrashError) Unwrap() error {
	return e.Err
}

// IsEngineError implements EngineError.
func (e *EngineCrashError) IsEngineError() bool { return true }

// EngineTimeoutError indicates the engine did not emit a terminal
// protocol line within the request deadline.
type EngineTimeoutError struct {
	Timeout time.Duration
}

func (e *EngineTimeoutError) Error() string {
	return fmt.Sprintf("engine did not respond within %s", e.Timeout)
}

// IsEngineError implements EngineError.
func (e *EngineTimeoutError) IsEngineError() bool { return true }

// InvalidPositionError indicates a malformed or unparseable position.
type InvalidPositionError struct {
	FEN string
	Err error
}

func (e *InvalidPositionError) Error() string {
	return fmt.Sprintf("invalid position %q: %v", e.FEN, e.Err)
}

func (e *InvalidPositionError) Unwrap() error {
	return e.Err
}

// IsEngineError implements EngineError.
func (e *InvalidPositionError) IsEngineError() bool { return true }

// EngineShutdownError indicates a request was cancelled because the
// manager shut down while the request was active or queued.
type EngineShutdownError struct{}

func (e *EngineShutdownError) Error() string {
	return "request cancelled: engine shutting down"
}

// IsEngineError implements EngineError.
func (e *EngineShutdownError) IsEngineError() bool { return true }

// EngineBusyError indicates the broker's bounded wait queue is full.
type EngineBusyError struct {
	QueueDepth int
}

func (e *EngineBusyError) Error() string {
	return fmt.Sprintf("engine busy: wait queue full (depth %d)", e.QueueDepth)
}

// IsEngineError implements EngineError.
func (e *EngineBusyError) IsEngineError() bool { return true }
