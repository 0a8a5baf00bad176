package negamax

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/domino14/connectn/board"
	"github.com/domino14/connectn/equity"
	"github.com/domino14/connectn/lines"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func setUpSolver(t *testing.T, w, h, n int) *Solver {
	g, err := lines.Get(w, h, n)
	if err != nil {
		t.Fatal(err)
	}
	s := new(Solver)
	if err := s.Init(g); err != nil {
		t.Fatal(err)
	}
	return s
}

func rack(t *testing.T, r [][]int) *board.Board {
	b, err := board.FromRack(r)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

var midgame = [][]int{
	{1, 2, 0, 0, 0, 0},
	{2, 0, 0, 0, 0, 0},
	{1, 1, 2, 0, 0, 0},
	{1, 2, 1, 2, 0, 0},
	{2, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 0},
	{1, 0, 0, 0, 0, 0},
}

func TestEmptyBoardOnePly(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(t, 7, 6, 4)
	b := board.MustNew(7, 6)
	v, pv, err := s.Solve(context.Background(), b, board.PlayerOne, 1)
	is.NoErr(err)
	// The centre cell sits in the most windows.
	is.Equal(pv, []int{3})
	is.Equal(v, equity.HeuristicScore(7))
}

func TestTiesGoToLowestColumn(t *testing.T) {
	is := is.New(t)
	// Only the single row is long enough to score, so every drop is worth
	// the same.
	s := setUpSolver(t, 4, 1, 4)
	b := board.MustNew(4, 1)
	for _, plies := range []int{1, 2, 3} {
		col, err := s.BestMove(context.Background(), b, board.PlayerOne, plies)
		is.NoErr(err)
		is.Equal(col, 0)
	}
}

func TestDeterministic(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(t, 7, 6, 4)
	b := rack(t, midgame)
	first, err := s.BestMove(context.Background(), b, board.PlayerTwo, 4)
	is.NoErr(err)
	for i := 0; i < 3; i++ {
		col, err := s.BestMove(context.Background(), b, board.PlayerTwo, 4)
		is.NoErr(err)
		is.Equal(col, first)
	}
	is.True(b.CanPlay(first))
}

func TestTakesImmediateWin(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(t, 7, 6, 4)
	b := rack(t, [][]int{
		{1, 1, 1, 0, 0, 0},
		{2, 2, 0, 0, 0, 0},
		{2, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0},
	})
	for _, plies := range []int{1, 2, 3} {
		v, pv, err := s.Solve(context.Background(), b, board.PlayerOne, plies)
		is.NoErr(err)
		is.Equal(pv[0], 0)
		is.Equal(v, equity.WinScore)
	}
}

func TestBlocksThreat(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(t, 7, 6, 4)
	b := rack(t, [][]int{
		{1, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0},
		{1, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0},
		{2, 2, 2, 0, 0, 0},
		{0, 0, 0, 0, 0, 0},
		{1, 0, 0, 0, 0, 0},
	})
	v, pv, err := s.Solve(context.Background(), b, board.PlayerOne, 2)
	is.NoErr(err)
	is.Equal(pv[0], 4)
	is.True(!v.IsSentinel())
}

func TestFirstWinningColumn(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(t, 7, 6, 4)
	// Player one has an open three on the bottom row and can finish it in
	// column 1 or column 5.
	b := rack(t, [][]int{
		{0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0},
		{1, 2, 0, 0, 0, 0},
		{1, 2, 0, 0, 0, 0},
		{1, 2, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0},
	})
	for _, plies := range []int{1, 2} {
		v, pv, err := s.Solve(context.Background(), b, board.PlayerOne, plies)
		is.NoErr(err)
		is.Equal(pv[0], 1)
		is.Equal(v, equity.WinScore)
	}
	// Three plies see that column 0 also wins by force, and wins are not
	// ranked by distance, so the lower column is kept.
	v, pv, err := s.Solve(context.Background(), b, board.PlayerOne, 3)
	is.NoErr(err)
	is.Equal(pv[0], 0)
	is.Equal(v, equity.WinScore)
}

func TestForcedLoss(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(t, 7, 6, 4)
	// Open-ended three for player two on the bottom row: columns 1 and 5
	// both complete it and player one can only block one.
	b := rack(t, [][]int{
		{1, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0},
		{2, 1, 0, 0, 0, 0},
		{2, 1, 0, 0, 0, 0},
		{2, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0},
	})
	v, pv, err := s.Solve(context.Background(), b, board.PlayerOne, 2)
	is.NoErr(err)
	is.Equal(v, equity.LossScore)
	// With every move lost the first legal column is kept.
	is.Equal(pv[0], 0)
}

func TestDrawScoresZero(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(t, 4, 4, 4)
	full := rack(t, [][]int{
		{1, 1, 2, 2},
		{2, 2, 1, 1},
		{1, 1, 2, 2},
		{2, 2, 1, 1},
	})
	pv := PVLine{}
	v, err := s.negamax(context.Background(), full, board.PlayerOne, 5,
		equity.LossScore, equity.WinScore, &pv)
	is.NoErr(err)
	is.Equal(v, equity.DrawScore)

	_, _, err = s.Solve(context.Background(), full, board.PlayerOne, 3)
	is.True(errors.Is(err, ErrNoSolution))

	nearlyFull := rack(t, [][]int{
		{1, 1, 2, 2},
		{2, 2, 1, 1},
		{1, 1, 2, 2},
		{2, 2, 1, 0},
	})
	v, moves, err := s.Solve(context.Background(), nearlyFull, board.PlayerOne, 4)
	is.NoErr(err)
	is.Equal(moves, []int{3})
	is.Equal(v, equity.DrawScore)
}

func TestAlphaBetaMatchesPlainNegamax(t *testing.T) {
	is := is.New(t)
	b := rack(t, midgame)
	for _, plies := range []int{1, 2, 3, 4, 5} {
		plain := setUpSolver(t, 7, 6, 4)
		plain.SetAlphaBeta(false)
		v1, moves1, err := plain.Solve(context.Background(), b, board.PlayerTwo, plies)
		is.NoErr(err)

		pruned := setUpSolver(t, 7, 6, 4)
		v2, moves2, err := pruned.Solve(context.Background(), b, board.PlayerTwo, plies)
		is.NoErr(err)

		is.Equal(moves1[0], moves2[0])
		is.Equal(v1, v2)
		is.True(pruned.Nodes() <= plain.Nodes())
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	is := is.New(t)
	b := rack(t, midgame)
	serial := setUpSolver(t, 7, 6, 4)
	v1, moves1, err := serial.Solve(context.Background(), b, board.PlayerTwo, 4)
	is.NoErr(err)

	parallel := setUpSolver(t, 7, 6, 4)
	parallel.SetThreads(4)
	v2, moves2, err := parallel.Solve(context.Background(), b, board.PlayerTwo, 4)
	is.NoErr(err)
	is.Equal(v1, v2)
	is.Equal(moves1[0], moves2[0])
}

func TestSolveLeavesBoardAlone(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(t, 7, 6, 4)
	b := rack(t, midgame)
	_, _, err := s.Solve(context.Background(), b, board.PlayerTwo, 3)
	is.NoErr(err)
	is.Equal(b.Rack(), midgame)
}

func TestCancelled(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(t, 7, 6, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := s.Solve(ctx, board.MustNew(7, 6), board.PlayerOne, 6)
	is.True(errors.Is(err, context.Canceled))

	s.SetThreads(3)
	_, _, err = s.Solve(ctx, board.MustNew(7, 6), board.PlayerOne, 6)
	is.True(errors.Is(err, context.Canceled))
}

func TestBadArguments(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(t, 7, 6, 4)
	_, _, err := s.Solve(context.Background(), board.MustNew(7, 6), board.PlayerOne, 0)
	is.True(err != nil)
	_, _, err = s.Solve(context.Background(), board.MustNew(7, 6), board.Empty, 2)
	is.True(err != nil)
	_, _, err = s.Solve(context.Background(), board.MustNew(6, 6), board.PlayerOne, 2)
	is.True(errors.Is(err, board.ErrInvalidBoard))

	uninit := new(Solver)
	_, _, err = uninit.Solve(context.Background(), board.MustNew(7, 6), board.PlayerOne, 2)
	is.True(err != nil)
}

func TestSearchLog(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(t, 7, 6, 4)
	var buf bytes.Buffer
	s.SetLogStream(&buf)
	s.SetAlphaBeta(false)
	_, moves, err := s.Solve(context.Background(), board.MustNew(7, 6), board.PlayerOne, 2)
	is.NoErr(err)

	var logged []LogSolve
	is.NoErr(yaml.Unmarshal(buf.Bytes(), &logged))
	is.Equal(len(logged), 1)
	is.Equal(logged[0].Plies, 2)
	is.Equal(logged[0].Mover, 1)
	is.Equal(logged[0].Best, moves[0])
	is.Equal(len(logged[0].Plays), 7)
	is.Equal(logged[0].Nodes, s.Nodes())
	for _, p := range logged[0].Plays {
		is.True(!p.Bound)
	}
}

func BenchmarkSolveClassic(b *testing.B) {
	g, _ := lines.Get(7, 6, 4)
	s := new(Solver)
	s.Init(g)
	bd, _ := board.FromRack(midgame)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Solve(context.Background(), bd, board.PlayerTwo, 5)
	}
}
