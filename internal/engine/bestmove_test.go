package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pleasehelpm32/chesstutor/internal/errors"
)

func TestMoveTimeForSkill(t *testing.T) {
	tests := []struct {
		skill int
		want  time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 150 * time.Millisecond},
		{10, 600 * time.Millisecond},
		{15, 850 * time.Millisecond},
		{20, 1100 * time.Millisecond},
	}

	for _, tc := range tests {
		require.Equalf(t, tc.want, moveTimeForSkill(tc.skill), "skill %d", tc.skill)
	}
}

func TestRequestBestMove_CommandSequence(t *testing.T) {
	tr := newScriptedTransport()
	tr.respond("go", "info depth 1 score cp 20 pv e2e4", "bestmove e2e4 ponder e7e5")

	m := initTestManager(t, tr, nil, newStubRules())

	best, err := m.RequestBestMove(context.Background(), validFEN, 15)
	require.NoError(t, err)

	require.Equal(t, "e2e4", best.Move)
	require.Equal(t, 15, best.SkillLevel)
	require.False(t, best.None())

	require.Equal(t, []string{
		"uci",
		"isready",
		"position fen " + validFEN,
		"setoption name Skill Level value 15",
		"go movetime 850",
	}, tr.sentCommands())
}

func TestRequestBestMove_None(t *testing.T) {
	tr := newScriptedTransport()
	tr.respond("go", "bestmove (none)")

	m := initTestManager(t, tr, nil, newStubRules())

	best, err := m.RequestBestMove(context.Background(), validFEN, 0)
	require.NoError(t, err)
	require.True(t, best.None())
	require.Equal(t, 0, best.SkillLevel)
}

func TestRequestBestMove_SkillLevelValidated(t *testing.T) {
	tr := newScriptedTransport()
	m := initTestManager(t, tr, nil, newStubRules())

	for _, skill := range []int{-1, 21, 100} {
		_, err := m.RequestBestMove(context.Background(), validFEN, skill)
		require.ErrorIsf(t, err, errors.ErrInvalidSkillLevel, "skill %d", skill)
	}

	require.Equal(t, []string{"uci", "isready"}, tr.sentCommands())
}

func TestRequestBestMove_InvalidPosition(t *testing.T) {
	tr := newScriptedTransport()

	r := newStubRules()
	r.validateErr = &errors.InvalidPositionError{FEN: "junk"}

	m := initTestManager(t, tr, nil, r)

	_, err := m.RequestBestMove(context.Background(), "junk", 5)

	var invalid *errors.InvalidPositionError

	require.ErrorAs(t, err, &invalid)
	require.Equal(t, []string{"uci", "isready"}, tr.sentCommands())
}

func TestRequestBestMove_SkipsInfoChatter(t *testing.T) {
	tr := newScriptedTransport()
	tr.respond("go",
		"info string move overhead detected",
		"info depth 3 seldepth 4 multipv 1 score cp 12 pv d2d4 d7d5",
		"bestmove d2d4",
	)

	m := initTestManager(t, tr, nil, newStubRules())

	best, err := m.RequestBestMove(context.Background(), validFEN, 20)
	require.NoError(t, err)
	require.Equal(t, "d2d4", best.Move)
}
