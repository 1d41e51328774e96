package uci

import (
	"fmt"
	"time"
)

// Commands with no arguments.
const (
	CmdUCI        = "uci"
	CmdIsReady    = "isready"
	CmdUCINewGame = "ucinewgame"
	CmdStop       = "stop"
	CmdQuit       = "quit"
)

// Responses the handshake waits for.
const (
	ResponseUCIOK   = "uciok"
	ResponseReadyOK = "readyok"
)

// CmdPosition builds a "position fen" command for the given FEN string.
func CmdPosition(fen string) string {
	return "position fen " + fen
}

// CmdSetOption builds a "setoption" command.
func CmdSetOption(name string, value any) string {
	return fmt.Sprintf("setoption name %s value %v", name, value)
}

// CmdGoDepth builds a fixed-depth search command.
func CmdGoDepth(depth int) string {
	return fmt.Sprintf("go depth %d", depth)
}

// CmdGoMoveTime builds a time-budgeted search command. The budget is
// truncated to whole milliseconds, the unit the protocol speaks.
func CmdGoMoveTime(budget time.Duration) string {
	return fmt.Sprintf("go movetime %d", budget.Milliseconds())
}
