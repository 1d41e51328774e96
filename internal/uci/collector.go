package uci

import "sort"

// LineHandler consumes one complete engine output line at a time.
// HandleLine reports true when the conversation's terminal line has been
// seen and the handler's result is final.
type LineHandler interface {
	HandleLine(line string) (done bool)
}

// Compile-time verification that both collectors implement LineHandler.
var (
	_ LineHandler = (*AnalysisCollector)(nil)
	_ LineHandler = (*BestMoveCollector)(nil)
)

// AnalysisCollector records ranked candidate lines from a multiPV search
// and resolves them into an ordered, de-duplicated move list when the
// terminal bestmove line arrives.
type AnalysisCollector struct {
	limit   int
	byIndex map[int]Candidate
	moves   []string
	done    bool
}

// NewAnalysisCollector creates a collector that caps its resolved list at
// limit moves.
func NewAnalysisCollector(limit int) *AnalysisCollector {
	return &AnalysisCollector{
		limit:   limit,
		byIndex: make(map[int]Candidate, limit),
	}
}

// HandleLine implements LineHandler.
//
// Info lines record or replace the candidate for their multipv index, so
// only the deepest report per index survives. Anything that is neither a
// matching info line nor a bestmove line is skipped.
func (c *AnalysisCollector) HandleLine(line string) bool {
	if c.done {
		return true
	}

	if best, ok := ParseBestMove(line); ok {
		c.resolve(best)
		c.done = true

		return true
	}

	if cand, ok := ParseInfo(line); ok {
		c.byIndex[cand.MultiPV] = cand
	}

	return false
}

// resolve orders candidates by multipv index, de-duplicates by move
// preserving first-seen rank, caps the list, and appends the engine's
// bestmove if it is new and the cap leaves room.
func (c *AnalysisCollector) resolve(best string) {
	indexes := make([]int, 0, len(c.byIndex))
	for n := range c.byIndex {
		indexes = append(indexes, n)
	}

	sort.Ints(indexes)

	seen := make(map[string]bool, len(indexes)+1)
	moves := make([]string, 0, c.limit)

	for _, n := range indexes {
		if len(moves) == c.limit {
			break
		}

		move := c.byIndex[n].Move
		if seen[move] {
			continue
		}

		seen[move] = true
		moves = append(moves, move)
	}

	if best != "" && !seen[best] && len(moves) < c.limit {
		moves = append(moves, best)
	}

	c.moves = moves
}

// Moves returns the resolved ranked move list. Valid only after
// HandleLine has reported done.
func (c *AnalysisCollector) Moves() []string {
	return c.moves
}

// Candidates returns the recorded candidates keyed by multipv index,
// with the scores that drove selection.
func (c *AnalysisCollector) Candidates() map[int]Candidate {
	return c.byIndex
}

// BestMoveCollector resolves on the first terminal bestmove line.
type BestMoveCollector struct {
	move string
	done bool
}

// NewBestMoveCollector creates an empty best-move collector.
func NewBestMoveCollector() *BestMoveCollector {
	return &BestMoveCollector{}
}

// HandleLine implements LineHandler. Everything before the bestmove line
// (info chatter, malformed output) is skipped.
func (c *BestMoveCollector) HandleLine(line string) bool {
	if c.done {
		return true
	}

	move, ok := ParseBestMove(line)
	if !ok {
		return false
	}

	c.move = move
	c.done = true

	return true
}

// Move returns the resolved move, empty when the engine reported none.
// Valid only after HandleLine has reported done.
func (c *BestMoveCollector) Move() string {
	return c.move
}
