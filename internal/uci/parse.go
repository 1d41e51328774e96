package uci

import (
	"strconv"
	"strings"
)

// Score is an engine evaluation attached to a candidate line. Either a
// centipawn value or a forced-mate distance, never both.
type Score struct {
	CP     int
	Mate   int
	IsMate bool
}

// Candidate is one ranked line recorded from an "info ... multipv" report.
type Candidate struct {
	MultiPV int
	Move    string
	Score   Score
}

// ParseInfo extracts a ranked candidate from an engine info line.
//
// The line must carry the "info", "multipv" and "pv" tokens to match:
//
//	info depth 5 seldepth 6 multipv 2 score cp 31 ... pv d2d4 d7d5
//
// The move is the first token of the principal variation. Returns false
// for lines that do not match; such lines are skipped by callers.
func ParseInfo(line string) (Candidate, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "info" {
		return Candidate{}, false
	}

	var (
		cand      Candidate
		haveIndex bool
		haveMove  bool
	)

	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "multipv":
			if i+1 >= len(fields) {
				return Candidate{}, false
			}

			n, err := strconv.Atoi(fields[i+1])
			if err != nil || n < 1 {
				return Candidate{}, false
			}

			cand.MultiPV = n
			haveIndex = true
			i++

		case "pv":
			if i+1 >= len(fields) {
				return Candidate{}, false
			}

			cand.Move = fields[i+1]
			haveMove = true
			// The rest of the line is the variation; only its first
			// move matters here.
			i = len(fields)

		case "score":
			if i+2 >= len(fields) {
				continue
			}

			v, err := strconv.Atoi(fields[i+2])
			if err != nil {
				continue
			}

			switch fields[i+1] {
			case "cp":
				cand.Score = Score{CP: v}
			case "mate":
				cand.Score = Score{Mate: v, IsMate: true}
			}

			i += 2
		}
	}

	if !haveIndex || !haveMove {
		return Candidate{}, false
	}

	return cand, true
}

// ParseBestMove extracts the move token from a terminal "bestmove" line.
//
// Returns ok=false for lines that are not bestmove lines. The literal
// "none" (Stockfish spells it "(none)") maps to an empty move, meaning
// the position has no legal moves.
func ParseBestMove(line string) (move string, ok bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != "bestmove" {
		return "", false
	}

	move = strings.Trim(fields[1], "()")
	if move == "none" {
		move = ""
	}

	return move, true
}
