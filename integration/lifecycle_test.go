//go:build integration

package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pleasehelpm32/chesstutor"
)

// TestEngine_Lifecycle runs a full spawn, handshake, request, shutdown
// cycle against a real engine.
func TestEngine_Lifecycle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	em := chesstutor.New()

	err := em.Initialize(ctx)
	skipIfEngineNotInstalled(t, err)
	require.NoError(t, err)
	require.True(t, em.IsReady())

	moves, err := em.RequestAnalysis(ctx, startingFEN, chesstutor.WithDepth(6))
	require.NoError(t, err)
	require.NotEmpty(t, moves)
	require.LessOrEqual(t, len(moves), 3)

	best, err := em.RequestBestMove(ctx, startingFEN, 5)
	require.NoError(t, err)
	require.False(t, best.None())

	require.NoError(t, em.Shutdown(ctx))
	require.False(t, em.IsReady())
}

// TestEngine_ConcurrentRequests checks that many goroutines can share one
// engine without interleaving conversations.
func TestEngine_ConcurrentRequests(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	em := chesstutor.New()

	err := em.Initialize(ctx)
	skipIfEngineNotInstalled(t, err)
	require.NoError(t, err)
	defer em.Shutdown(context.Background())

	var wg sync.WaitGroup
	results := make([][]chesstutor.AnalysisMove, 6)
	errs := make([]error, 6)

	for i := range results {
		i := i

		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = em.RequestAnalysis(ctx, startingFEN, chesstutor.WithDepth(4))
		}()
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		require.NotEmpty(t, results[i])
	}
}

// TestEngine_CheckmateDetection verifies mate enrichment against a real
// search: white to move has a back-rank mate in one.
func TestEngine_CheckmateDetection(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	em := chesstutor.New()

	err := em.Initialize(ctx)
	skipIfEngineNotInstalled(t, err)
	require.NoError(t, err)
	defer em.Shutdown(context.Background())

	moves, err := em.RequestAnalysis(ctx, "6k1/5ppp/8/8/8/8/8/4R2K w - - 0 1", chesstutor.WithDepth(8))
	require.NoError(t, err)
	require.NotEmpty(t, moves)
	require.Equal(t, "e1e8", moves[0].Move)
	require.True(t, moves[0].IsCheckmate)
}
