// Package movegen enumerates the legal drops for a position.
package movegen

import (
	"github.com/samber/lo"

	"github.com/domino14/connectn/board"
)

// LegalMoves returns every column with room, in ascending order. The search
// relies on this order to break ties toward the lowest column.
func LegalMoves(b *board.Board) []int {
	return lo.Filter(lo.Range(b.Width()), func(c int, _ int) bool {
		return b.CanPlay(c)
	})
}

// NumLegalMoves counts the playable columns without allocating.
func NumLegalMoves(b *board.Board) int {
	n := 0
	for c := 0; c < b.Width(); c++ {
		if b.CanPlay(c) {
			n++
		}
	}
	return n
}

// GenAll applies every legal move for player and returns the children in the
// same order as LegalMoves.
func GenAll(b *board.Board, player board.Cell) ([]int, []*board.Board, error) {
	moves := LegalMoves(b)
	children := make([]*board.Board, len(moves))
	for i, c := range moves {
		child, err := b.Apply(c, player)
		if err != nil {
			return nil, nil, err
		}
		children[i] = child
	}
	return moves, children, nil
}
