package negamax

import (
	"fmt"
	"strings"

	"github.com/domino14/connectn/equity"
)

// PVLine is a principal variation: the column sequence the search expects
// both sides to play.
// Credit: MIT-licensed https://github.com/algerbrex/blunder/blob/main/engine/search.go
type PVLine struct {
	Moves []int
	score equity.Score
}

// Clear the principal variation line.
func (pvLine *PVLine) Clear() {
	pvLine.Moves = nil
}

// Update the principal variation line with a new best move,
// and a new line of best play after the best move.
func (pvLine *PVLine) Update(move int, newPVLine PVLine, score equity.Score) {
	pvLine.Clear()
	pvLine.Moves = append(pvLine.Moves, move)
	pvLine.Moves = append(pvLine.Moves, newPVLine.Moves...)
	pvLine.score = score
}

// GetPVMove returns the first move of the line, or -1 if it is empty.
func (pvLine *PVLine) GetPVMove() int {
	if len(pvLine.Moves) == 0 {
		return -1
	}
	return pvLine.Moves[0]
}

func (pvLine PVLine) Score() equity.Score {
	return pvLine.score
}

func (pvLine PVLine) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PV; val %s\n", pvLine.score)
	for i, m := range pvLine.Moves {
		fmt.Fprintf(&sb, "%d: col %d\n", i+1, m)
	}
	return sb.String()
}

// NLBString is String without line breaks, for log fields.
func (pvLine PVLine) NLBString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PV; val %s;", pvLine.score)
	for i, m := range pvLine.Moves {
		fmt.Fprintf(&sb, " %d: col %d;", i+1, m)
	}
	return sb.String()
}
