package movegen

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/connectn/board"
)

func TestLegalMovesAscending(t *testing.T) {
	is := is.New(t)
	b, err := board.FromRack([][]int{
		{1, 2, 1},
		{0, 0, 0},
		{2, 1, 2},
		{1, 0, 0},
	})
	is.NoErr(err)
	is.Equal(LegalMoves(b), []int{1, 3})
	is.Equal(NumLegalMoves(b), 2)
}

func TestLegalMovesNeverFull(t *testing.T) {
	is := is.New(t)
	b := board.MustNew(3, 2)
	player := board.PlayerOne
	for !b.IsFull() {
		moves := LegalMoves(b)
		is.True(len(moves) > 0)
		for _, c := range moves {
			is.True(b.ColumnHeight(c) < b.Height())
		}
		var err error
		b, err = b.Apply(moves[len(moves)-1], player)
		is.NoErr(err)
		player = player.Opponent()
	}
	is.Equal(len(LegalMoves(b)), 0)
	is.Equal(NumLegalMoves(b), 0)
}

func TestGenAll(t *testing.T) {
	is := is.New(t)
	b := board.MustNew(3, 1)
	b, _ = b.Apply(1, board.PlayerOne)
	moves, children, err := GenAll(b, board.PlayerTwo)
	is.NoErr(err)
	is.Equal(moves, []int{0, 2})
	is.Equal(len(children), 2)
	is.Equal(children[0].CellAt(0, 0), board.PlayerTwo)
	is.Equal(children[1].CellAt(2, 0), board.PlayerTwo)
	is.Equal(b.CellAt(0, 0), board.Empty)
}
