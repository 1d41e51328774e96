//go:build integration

package integration

import (
	"errors"
	"testing"

	"github.com/pleasehelpm32/chesstutor"
)

// skipIfEngineNotInstalled skips the test if the error indicates no UCI
// engine binary was found on this machine.
func skipIfEngineNotInstalled(t *testing.T, err error) {
	t.Helper()

	var notFound *chesstutor.EngineNotFoundError
	if errors.As(err, &notFound) {
		t.Skip("UCI engine not installed")
	}
}

const startingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
