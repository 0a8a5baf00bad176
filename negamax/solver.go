// Package negamax picks connect-n moves with a depth-limited negamax search.
// Every node is valued from the point of view of the player to move there.
package negamax

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/domino14/connectn/board"
	"github.com/domino14/connectn/equity"
	"github.com/domino14/connectn/lines"
	"github.com/domino14/connectn/movegen"
)

// thanks Wikipedia:
/*
function negamax(node, depth, α, β, color) is
    if depth = 0 or node is a terminal node then
        return color × the heuristic value of node

    childNodes := generateMoves(node)
    value := −∞
    foreach child in childNodes do
        value := max(value, −negamax(child, depth − 1, −β, −α, −color))
        α := max(α, value)
        if α ≥ β then
            break (* cut-off *)
    return value
**/

var (
	ErrNoSolution = errors.New("no legal move to search")
)

type Solver struct {
	geom      *lines.Geometry
	evaluator *equity.Evaluator

	// alphaBetaOptim prunes siblings once a move is refuted. It never
	// changes the chosen move or its value, only the nodes visited.
	alphaBetaOptim bool
	threads        int

	principalVariation PVLine
	bestPVValue        equity.Score
	rootValues         []rootValue

	requestedPlies int
	nodes          atomic.Uint64

	logStream io.Writer
}

type rootValue struct {
	column int
	value  equity.Score
	pv     PVLine
	// exact is false when alpha-beta only proved a bound for this move.
	exact bool
}

// LogSolve is written to the log stream, one per Solve call.
type LogSolve struct {
	Plies int       `yaml:"plies"`
	Mover int       `yaml:"mover"`
	Plays []LogPlay `yaml:"plays"`
	Best  int       `yaml:"best"`
	Value string    `yaml:"value"`
	PV    []int     `yaml:"pv"`
	Nodes uint64    `yaml:"nodes"`
}

type LogPlay struct {
	Column int    `yaml:"column"`
	Value  string `yaml:"value"`
	Bound  bool   `yaml:"bound,omitempty"`
}

// Init initializes the solver for a board geometry.
func (s *Solver) Init(geom *lines.Geometry) error {
	if geom == nil {
		return errors.New("solver needs a line geometry")
	}
	s.geom = geom
	s.evaluator = equity.NewEvaluator(geom)
	s.alphaBetaOptim = true
	s.threads = 1
	return nil
}

// SetThreads sets how many root moves are searched at once. With more than
// one thread every root move gets its own full-window search.
func (s *Solver) SetThreads(threads int) {
	if threads < 1 {
		threads = 1
	}
	s.threads = threads
}

func (s *Solver) SetAlphaBeta(ab bool) {
	s.alphaBetaOptim = ab
}

func (s *Solver) SetLogStream(l io.Writer) {
	s.logStream = l
}

func (s *Solver) Evaluator() *equity.Evaluator {
	return s.evaluator
}

// Nodes is the number of positions visited by the last Solve.
func (s *Solver) Nodes() uint64 {
	return s.nodes.Load()
}

func (s *Solver) PrincipalVariation() PVLine {
	return s.principalVariation
}

// leaf checks the terminal conditions of a node. Absolute results are checked
// at every depth.
func (s *Solver) leaf(b *board.Board, mover board.Cell, depth int) (equity.Score, bool) {
	score := s.evaluator.Evaluate(b, mover)
	if score.IsSentinel() {
		return score, true
	}
	if b.IsFull() {
		return equity.DrawScore, true
	}
	if depth == 0 {
		return score, true
	}
	return score, false
}

func (s *Solver) negamax(ctx context.Context, b *board.Board, mover board.Cell, depth int,
	α, β equity.Score, pv *PVLine) (equity.Score, error) {

	if ctx.Err() != nil {
		return equity.DrawScore, ctx.Err()
	}
	s.nodes.Add(1)
	if score, done := s.leaf(b, mover, depth); done {
		return score, nil
	}

	childPV := PVLine{}
	bestValue := equity.LossScore
	first := true
	for _, col := range movegen.LegalMoves(b) {
		child, err := b.Apply(col, mover)
		if err != nil {
			return equity.DrawScore, err
		}
		value, err := s.negamax(ctx, child, mover.Opponent(), depth-1, β.Negate(), α.Negate(), &childPV)
		if err != nil {
			return value, err
		}
		value = value.Negate()
		// Strictly greater, so the lowest column wins ties.
		if first || value.Greater(bestValue) {
			first = false
			bestValue = value
			pv.Update(col, childPV, bestValue)
		}
		if s.alphaBetaOptim {
			α = equity.MaxScore(α, bestValue)
			if bestValue.Compare(β) >= 0 {
				break // beta cut-off
			}
		}
		childPV.Clear()
	}
	return bestValue, nil
}

func (s *Solver) searchRootSerial(ctx context.Context, b *board.Board, mover board.Cell,
	moves []int, plies int) error {

	α := equity.LossScore
	β := equity.WinScore
	for _, col := range moves {
		child, err := b.Apply(col, mover)
		if err != nil {
			return err
		}
		childPV := PVLine{}
		value, err := s.negamax(ctx, child, mover.Opponent(), plies-1, β.Negate(), α.Negate(), &childPV)
		if err != nil {
			return err
		}
		value = value.Negate()
		s.rootValues = append(s.rootValues, rootValue{
			column: col,
			value:  value,
			pv:     childPV,
			exact:  !s.alphaBetaOptim || len(s.rootValues) == 0 || value.Greater(α),
		})
		log.Debug().Int("column", col).Str("value", value.String()).Msg("root-move-searched")
		if s.alphaBetaOptim {
			α = equity.MaxScore(α, value)
			if α.Compare(β) >= 0 {
				break
			}
		}
	}
	return nil
}

func (s *Solver) searchRootParallel(ctx context.Context, b *board.Board, mover board.Cell,
	moves []int, plies int) error {

	results := make([]rootValue, len(moves))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.threads)
	for idx, col := range moves {
		g.Go(func() error {
			child, err := b.Apply(col, mover)
			if err != nil {
				return err
			}
			childPV := PVLine{}
			value, err := s.negamax(gctx, child, mover.Opponent(), plies-1,
				equity.LossScore, equity.WinScore, &childPV)
			if err != nil {
				return err
			}
			results[idx] = rootValue{column: col, value: value.Negate(), pv: childPV, exact: true}
			log.Debug().Int("column", col).Str("value", value.Negate().String()).Msg("root-move-searched")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	s.rootValues = results
	return nil
}

// Solve searches plies half-moves ahead for mover and returns the value of the
// best move together with the principal variation, whose first element is the
// chosen column.
func (s *Solver) Solve(ctx context.Context, b *board.Board, mover board.Cell, plies int) (equity.Score, []int, error) {
	if s.evaluator == nil {
		return equity.DrawScore, nil, errors.New("solver is not initialized")
	}
	if plies < 1 {
		return equity.DrawScore, nil, errors.New("use at least 1 ply")
	}
	if !mover.Valid() {
		return equity.DrawScore, nil, fmt.Errorf("bad mover %d", mover)
	}
	if b.Width() != s.geom.Width || b.Height() != s.geom.Height {
		return equity.DrawScore, nil, fmt.Errorf("%w: board is %dx%d, solver expects %dx%d",
			board.ErrInvalidBoard, b.Width(), b.Height(), s.geom.Width, s.geom.Height)
	}
	moves := movegen.LegalMoves(b)
	if len(moves) == 0 {
		return equity.DrawScore, nil, ErrNoSolution
	}
	log.Debug().Int("plies", plies).Int("threads", s.threads).
		Bool("alphabeta", s.alphaBetaOptim).Msg("negamax-solve-config")

	s.requestedPlies = plies
	s.nodes.Store(0)
	s.rootValues = nil
	s.principalVariation.Clear()
	tstart := time.Now()

	var err error
	if s.threads > 1 && len(moves) > 1 {
		err = s.searchRootParallel(ctx, b, mover, moves, plies)
	} else {
		err = s.searchRootSerial(ctx, b, mover, moves, plies)
	}
	if err != nil {
		return equity.DrawScore, nil, err
	}

	// Merge in ascending column order; the first maximiser wins.
	best := -1
	for i, rv := range s.rootValues {
		if best < 0 || rv.value.Greater(s.rootValues[best].value) {
			best = i
		}
	}
	bestRoot := s.rootValues[best]
	s.principalVariation.Update(bestRoot.column, bestRoot.pv, bestRoot.value)
	s.bestPVValue = bestRoot.value

	log.Info().
		Int("plies", plies).
		Int("column", bestRoot.column).
		Str("value", bestRoot.value.String()).
		Uint64("nodes", s.nodes.Load()).
		Float64("time-elapsed-sec", time.Since(tstart).Seconds()).
		Msg("solve-returning")

	if s.logStream != nil {
		if err := s.writeLog(mover); err != nil {
			log.Err(err).Msg("could-not-write-search-log")
		}
	}
	return s.bestPVValue, s.principalVariation.Moves, nil
}

// BestMove is Solve without the value and variation.
func (s *Solver) BestMove(ctx context.Context, b *board.Board, mover board.Cell, plies int) (int, error) {
	_, pv, err := s.Solve(ctx, b, mover, plies)
	if err != nil {
		return -1, err
	}
	return pv[0], nil
}

func (s *Solver) writeLog(mover board.Cell) error {
	entry := LogSolve{
		Plies: s.requestedPlies,
		Mover: int(mover),
		Best:  s.principalVariation.GetPVMove(),
		Value: s.bestPVValue.String(),
		PV:    s.principalVariation.Moves,
		Nodes: s.nodes.Load(),
	}
	for _, rv := range s.rootValues {
		entry.Plays = append(entry.Plays, LogPlay{
			Column: rv.column,
			Value:  rv.value.String(),
			Bound:  !rv.exact,
		})
	}
	out, err := yaml.Marshal([]LogSolve{entry})
	if err != nil {
		return err
	}
	_, err = s.logStream.Write(out)
	return err
}
