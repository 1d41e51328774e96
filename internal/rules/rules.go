// Package rules provides the chess-rules collaborator consumed by the
// engine mediation layer: position validation, move application, and
// checkmate detection. The engine itself is never asked rules questions;
// it only searches.
package rules

import (
	"fmt"

	"github.com/notnil/chess"

	"github.com/pleasehelpm32/chesstutor/internal/errors"
)

// Rules is the narrow interface the request adapters consume. The default
// implementation is ChessRules; tests inject stubs.
type Rules interface {
	// ValidatePosition reports whether fen encodes a parseable position.
	ValidatePosition(fen string) error

	// ApplyMove applies a UCI move to the position and returns the
	// resulting FEN. Returns ErrIllegalMove if the move is not legal.
	ApplyMove(fen, move string) (string, error)

	// IsCheckmate reports whether the side to move in fen is checkmated.
	IsCheckmate(fen string) (bool, error)
}

// ChessRules implements Rules on top of notnil/chess.
type ChessRules struct{}

// Compile-time verification that ChessRules implements Rules.
var _ Rules = (*ChessRules)(nil)

// New creates the default rules implementation.
func New() *ChessRules {
	return &ChessRules{}
}

// ValidatePosition implements Rules.
func (r *ChessRules) ValidatePosition(fen string) error {
	if _, err := chess.FEN(fen); err != nil {
		return &errors.InvalidPositionError{FEN: fen, Err: err}
	}

	return nil
}

// ApplyMove implements Rules.
func (r *ChessRules) ApplyMove(fen, move string) (string, error) {
	game, err := gameFromFEN(fen)
	if err != nil {
		return "", err
	}

	decoded, err := chess.UCINotation{}.Decode(game.Position(), move)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errors.ErrIllegalMove, move)
	}

	if err := game.Move(decoded); err != nil {
		return "", fmt.Errorf("%w: %s", errors.ErrIllegalMove, move)
	}

	return game.Position().String(), nil
}

// IsCheckmate implements Rules.
func (r *ChessRules) IsCheckmate(fen string) (bool, error) {
	game, err := gameFromFEN(fen)
	if err != nil {
		return false, err
	}

	return game.Position().Status() == chess.Checkmate, nil
}

func gameFromFEN(fen string) (*chess.Game, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, &errors.InvalidPositionError{FEN: fen, Err: err}
	}

	return chess.NewGame(opt), nil
}
