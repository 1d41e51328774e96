package engine

import (
	"context"
	"time"

	"github.com/pleasehelpm32/chesstutor/internal/uci"
)

// AnalysisMove is one ranked candidate from a positional analysis, tagged
// with whether playing it delivers checkmate.
type AnalysisMove struct {
	Move        string
	IsCheckmate bool
}

// RequestAnalysis runs a ranked multi-line analysis of the position.
//
// depth and timeout fall back to the configured defaults when zero. The
// position is validated before any engine interaction; a malformed FEN
// fails fast with InvalidPositionError. On timeout the engine is told to
// stop and the call fails with EngineTimeoutError.
//
// The resolved candidates are enriched through the rules collaborator:
// each move is applied to the position and tagged IsCheckmate if the
// resulting position is mate. A move the rules engine cannot apply is
// tagged false rather than failing the whole result.
func (m *Manager) RequestAnalysis(
	ctx context.Context,
	fen string,
	depth int,
	timeout time.Duration,
) ([]AnalysisMove, error) {
	if depth <= 0 {
		depth = m.opts.AnalysisDepth
	}

	if timeout <= 0 {
		timeout = m.opts.AnalysisTimeout
	}

	if err := m.rules.ValidatePosition(fen); err != nil {
		return nil, err
	}

	m.log.Debug("Analysis requested", "fen", fen, "depth", depth, "timeout", timeout)

	collector := uci.NewAnalysisCollector(m.opts.MultiPV)

	err := m.converse(ctx, collector, timeout,
		uci.CmdUCINewGame,
		uci.CmdPosition(fen),
		uci.CmdSetOption("MultiPV", m.opts.MultiPV),
		uci.CmdGoDepth(depth),
	)
	if err != nil {
		return nil, err
	}

	return m.enrich(fen, collector.Moves()), nil
}

// enrich tags each candidate move with checkmate information from the
// rules collaborator.
func (m *Manager) enrich(fen string, moves []string) []AnalysisMove {
	result := make([]AnalysisMove, 0, len(moves))

	for _, move := range moves {
		mate := false

		after, err := m.rules.ApplyMove(fen, move)
		if err != nil {
			// An engine move the rules collaborator rejects is rare but
			// must not abort the result.
			m.log.Warn("Rules engine rejected candidate move", "move", move, "error", err)
		} else if isMate, mateErr := m.rules.IsCheckmate(after); mateErr == nil {
			mate = isMate
		}

		result = append(result, AnalysisMove{Move: move, IsCheckmate: mate})
	}

	return result
}
