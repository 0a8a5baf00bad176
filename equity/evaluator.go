// Package equity values connect-n positions. Every window of n consecutive
// cells on every line is worth 10^(k-1) to the player owning all k discs in it,
// and nothing when both players have a disc there. A full window ends the
// evaluation with an absolute Win or Loss.
package equity

import (
	"github.com/domino14/connectn/board"
	"github.com/domino14/connectn/lines"
)

var pow10 = [lines.MaxConnect]int64{
	1, 10, 100, 1_000, 10_000, 100_000, 1_000_000,
	10_000_000, 100_000_000, 1_000_000_000, 10_000_000_000, 100_000_000_000,
}

// WindowValue is the worth of an unblocked window holding k of one player's
// discs, for 1 <= k < n. An empty window is worth 0.
func WindowValue(k int) int64 {
	if k <= 0 {
		return 0
	}
	return pow10[k-1]
}

// Evaluator scores boards of a single geometry.
type Evaluator struct {
	geom *lines.Geometry
}

func NewEvaluator(geom *lines.Geometry) *Evaluator {
	return &Evaluator{geom: geom}
}

func (e *Evaluator) Geometry() *lines.Geometry {
	return e.geom
}

// Evaluate scores b from id's point of view. The board must have the
// evaluator's dimensions. Lines are visited in geometry order and the first
// completed window decides the result. An id that is not a player scores 0.
func (e *Evaluator) Evaluate(b *board.Board, id board.Cell) Score {
	if !id.Valid() {
		return DrawScore
	}
	scratch := make([]board.Cell, e.geom.MaxLineLength())
	total := int64(0)
	for _, l := range e.geom.Lines {
		cells := scratch[:len(l.Cells)]
		for i, coord := range l.Cells {
			cells[i] = b.CellAt(coord.Col, coord.Row)
		}
		s := ScoreLine(cells, e.geom.Connect, id)
		if s.IsSentinel() {
			return s
		}
		total += s.value
	}
	return HeuristicScore(total)
}

// ScoreLine sums the window values of a single line for id. Window counts are
// carried forward cell by cell: the cell entering the window is added and the
// one leaving it is dropped, so each line costs O(len(line)). An id that is
// not a player scores 0.
func ScoreLine(cells []board.Cell, n int, id board.Cell) Score {
	if !id.Valid() || n < 1 || len(cells) < n {
		return DrawScore
	}
	opp := id.Opponent()
	mine, theirs := 0, 0
	total := int64(0)
	for i, c := range cells {
		switch c {
		case id:
			mine++
		case opp:
			theirs++
		}
		if i >= n {
			switch cells[i-n] {
			case id:
				mine--
			case opp:
				theirs--
			}
		}
		if i < n-1 {
			// window starting at 0 is not yet covered
			continue
		}
		switch {
		case mine == n:
			return WinScore
		case theirs == n:
			return LossScore
		case mine > 0 && theirs > 0:
			// blocked
		case mine > 0:
			total += pow10[mine-1]
		case theirs > 0:
			total -= pow10[theirs-1]
		}
	}
	return HeuristicScore(total)
}
