package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/pleasehelpm32/chesstutor/internal/config"
	"github.com/pleasehelpm32/chesstutor/internal/errors"
	"github.com/pleasehelpm32/chesstutor/internal/uci"
)

// BestMove is the engine's single move choice for a position, paired with
// the skill level that produced it.
type BestMove struct {
	Move       string
	SkillLevel int
}

// None reports whether the engine had no legal move to offer.
func (b BestMove) None() bool {
	return b.Move == ""
}

// moveTimeForSkill maps a skill level in [0,20] to the engine's time
// budget: 100ms base plus up to one second scaled linearly with skill.
func moveTimeForSkill(skillLevel int) time.Duration {
	return 100*time.Millisecond + time.Duration(skillLevel)*50*time.Millisecond
}

// RequestBestMove computes one move for the position at the given skill
// level. The conversation deadline is the skill-derived movetime plus a
// fixed slack. A position with no legal moves resolves to a BestMove
// with None() true.
func (m *Manager) RequestBestMove(
	ctx context.Context,
	fen string,
	skillLevel int,
) (BestMove, error) {
	if skillLevel < 0 || skillLevel > 20 {
		return BestMove{}, fmt.Errorf("%w: got %d", errors.ErrInvalidSkillLevel, skillLevel)
	}

	if err := m.rules.ValidatePosition(fen); err != nil {
		return BestMove{}, err
	}

	moveTime := moveTimeForSkill(skillLevel)
	timeout := moveTime + config.BestMoveTimeoutSlack

	m.log.Debug("Best move requested",
		"fen", fen, "skill_level", skillLevel, "movetime", moveTime)

	collector := uci.NewBestMoveCollector()

	err := m.converse(ctx, collector, timeout,
		uci.CmdPosition(fen),
		uci.CmdSetOption("Skill Level", skillLevel),
		uci.CmdGoMoveTime(moveTime),
	)
	if err != nil {
		return BestMove{}, err
	}

	return BestMove{Move: collector.Move(), SkillLevel: skillLevel}, nil
}
