// Package player is an automatic connect-n player. At difficulty 0 it drops a
// disc in a random legal column; otherwise the difficulty is the number of
// plies the negamax solver looks ahead.
package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/connectn/board"
	"github.com/domino14/connectn/equity"
	"github.com/domino14/connectn/lines"
	"github.com/domino14/connectn/movegen"
	"github.com/domino14/connectn/negamax"
)

var (
	ErrNoLegalMove   = errors.New("no legal move")
	ErrInvalidPlayer = errors.New("invalid player")
)

// DefaultConnect is the run length of the classic game.
const DefaultConnect = 4

// Option configures a ComputerPlayer.
type Option func(*ComputerPlayer)

// WithRNG sets the generator used by the random picker. Pass a seeded
// frand.NewCustom generator for reproducible games.
func WithRNG(rng *frand.RNG) Option {
	return func(p *ComputerPlayer) { p.rng = rng }
}

func WithThreads(threads int) Option {
	return func(p *ComputerPlayer) { p.threads = threads }
}

func WithAlphaBeta(ab bool) Option {
	return func(p *ComputerPlayer) { p.alphaBeta = ab }
}

// WithLogStream makes the solver write a YAML entry for every search.
func WithLogStream(w io.Writer) Option {
	return func(p *ComputerPlayer) { p.logStream = w }
}

// WithThinkTime holds every picked move back for d, so a human opponent
// can follow the game.
func WithThinkTime(d time.Duration) Option {
	return func(p *ComputerPlayer) { p.thinkTime = d }
}

// ComputerPlayer picks moves for one side. It is not safe for concurrent use;
// give every goroutine its own player.
type ComputerPlayer struct {
	id         board.Cell
	difficulty int

	rng       *frand.RNG
	threads   int
	alphaBeta bool
	logStream io.Writer
	thinkTime time.Duration

	solver     *negamax.Solver
	solverGeom *lines.Geometry

	lastValue equity.Score
	lastPV    []int
}

// NewComputerPlayer creates a player for id (1 or 2). difficulty is the
// search depth in plies; 0 means random play.
func NewComputerPlayer(id board.Cell, difficulty int, opts ...Option) (*ComputerPlayer, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPlayer, id)
	}
	if difficulty < 0 {
		return nil, fmt.Errorf("difficulty must be non-negative, got %d", difficulty)
	}
	p := &ComputerPlayer{
		id:         id,
		difficulty: difficulty,
		threads:    1,
		alphaBeta:  true,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rng == nil {
		p.rng = frand.New()
	}
	return p, nil
}

func (p *ComputerPlayer) ID() board.Cell       { return p.id }
func (p *ComputerPlayer) Difficulty() int      { return p.difficulty }
func (p *ComputerPlayer) Opponent() board.Cell { return p.id.Opponent() }

func (p *ComputerPlayer) SetDifficulty(d int) {
	if d >= 0 {
		p.difficulty = d
	}
}

// LastSearch returns the value and principal variation of the most recent
// searched move. Both are empty after a random pick.
func (p *ComputerPlayer) LastSearch() (equity.Score, []int) {
	return p.lastValue, p.lastPV
}

// PickMove picks a column for a column-major rack (see board.FromRack) in a
// game of connect-n. A non-positive n means the classic four.
func (p *ComputerPlayer) PickMove(ctx context.Context, rack [][]int, n int) (int, error) {
	b, err := board.FromRack(rack)
	if err != nil {
		return -1, err
	}
	return p.PickMoveOnBoard(ctx, b, n)
}

// PickMoveOnBoard is PickMove for an already built board.
func (p *ComputerPlayer) PickMoveOnBoard(ctx context.Context, b *board.Board, n int) (int, error) {
	if n <= 0 {
		n = DefaultConnect
	}
	geom, err := lines.Get(b.Width(), b.Height(), n)
	if err != nil {
		return -1, err
	}
	if b.IsFull() {
		return -1, ErrNoLegalMove
	}
	p.lastValue = equity.DrawScore
	p.lastPV = nil

	var col int
	if p.difficulty == 0 {
		col, err = p.PickMoveAtRandom(b)
	} else {
		col, err = p.search(ctx, b, geom)
	}
	if err != nil {
		return -1, err
	}
	if err := p.think(ctx); err != nil {
		return -1, err
	}
	log.Debug().Int("player", int(p.id)).Int("difficulty", p.difficulty).
		Int("column", col).Msg("picked-move")
	return col, nil
}

// PickMoveAtRandom samples a legal column uniformly.
func (p *ComputerPlayer) PickMoveAtRandom(b *board.Board) (int, error) {
	moves := movegen.LegalMoves(b)
	if len(moves) == 0 {
		return -1, ErrNoLegalMove
	}
	return moves[p.rng.Intn(len(moves))], nil
}

func (p *ComputerPlayer) search(ctx context.Context, b *board.Board, geom *lines.Geometry) (int, error) {
	if p.solver == nil || p.solverGeom != geom {
		p.solver = new(negamax.Solver)
		if err := p.solver.Init(geom); err != nil {
			return -1, err
		}
		p.solverGeom = geom
	}
	p.solver.SetThreads(p.threads)
	p.solver.SetAlphaBeta(p.alphaBeta)
	p.solver.SetLogStream(p.logStream)

	v, pv, err := p.solver.Solve(ctx, b, p.id, p.difficulty)
	if errors.Is(err, negamax.ErrNoSolution) {
		return -1, ErrNoLegalMove
	}
	if err != nil {
		return -1, err
	}
	p.lastValue = v
	p.lastPV = pv
	return pv[0], nil
}

func (p *ComputerPlayer) think(ctx context.Context) error {
	if p.thinkTime <= 0 {
		return nil
	}
	t := time.NewTimer(p.thinkTime)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
