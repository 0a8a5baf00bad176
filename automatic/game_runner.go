// Package automatic plays connect-n games between two computer players,
// either one at a time or as a batch of parallel games with statistics.
package automatic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"lukechampine.com/frand"

	"github.com/domino14/connectn/board"
	"github.com/domino14/connectn/config"
	"github.com/domino14/connectn/equity"
	"github.com/domino14/connectn/lines"
	"github.com/domino14/connectn/player"
)

// GameRecord is the outcome of one finished game.
type GameRecord struct {
	ID int
	// Winner is board.Empty for a draw.
	Winner board.Cell
	Moves  []int
	Final  *board.Board
}

// GameRunner is the master struct here for the automatic game logic.
type GameRunner struct {
	config    *config.Config
	geom      *lines.Geometry
	evaluator *equity.Evaluator

	aiplayers     [2]*player.ComputerPlayer
	randomOpening int
	logchan       chan string
}

// NewGameRunner creates a runner for the board shape in cfg. Both players
// start at the configured difficulty. Rows for every finished game are sent
// to logchan when it is not nil.
func NewGameRunner(logchan chan string, cfg *config.Config) (*GameRunner, error) {
	r, err := newGameRunner(logchan, cfg)
	if err != nil {
		return nil, err
	}
	d := cfg.GetInt(config.ConfigDifficulty)
	if err := r.Init(d, d, frand.New()); err != nil {
		return nil, err
	}
	return r, nil
}

func newGameRunner(logchan chan string, cfg *config.Config) (*GameRunner, error) {
	geom, err := lines.Get(cfg.GetInt(config.ConfigBoardWidth),
		cfg.GetInt(config.ConfigBoardHeight), cfg.GetInt(config.ConfigConnectN))
	if err != nil {
		return nil, err
	}
	return &GameRunner{
		config:    cfg,
		geom:      geom,
		evaluator: equity.NewEvaluator(geom),
		logchan:   logchan,
	}, nil
}

// Init sets up both players. rng feeds random picks and random openings.
func (r *GameRunner) Init(p1Plies, p2Plies int, rng *frand.RNG) error {
	for idx, plies := range []int{p1Plies, p2Plies} {
		p, err := player.NewComputerPlayer(board.Cell(idx+1), plies,
			player.WithRNG(rng),
			player.WithAlphaBeta(r.config.GetBool(config.ConfigAlphaBeta)))
		if err != nil {
			return err
		}
		r.aiplayers[idx] = p
	}
	return nil
}

// SetRandomOpening makes the first n moves of every game random, so that
// deterministic players do not replay the same game.
func (r *GameRunner) SetRandomOpening(n int) {
	r.randomOpening = max(n, 0)
}

func (r *GameRunner) Geometry() *lines.Geometry {
	return r.geom
}

// PlayerName describes the player in seat idx for logs.
func (r *GameRunner) PlayerName(idx int) string {
	return playerName(r.aiplayers[idx].Difficulty())
}

func playerName(plies int) string {
	if plies == 0 {
		return "random"
	}
	return fmt.Sprintf("plies-%d", plies)
}

// PlayGame plays one game from the empty board until somebody connects n or
// the board fills up.
func (r *GameRunner) PlayGame(ctx context.Context, gameID int) (*GameRecord, error) {
	if r.aiplayers[0] == nil || r.aiplayers[1] == nil {
		return nil, errors.New("game runner players are not initialized")
	}
	b, err := board.New(r.geom.Width, r.geom.Height)
	if err != nil {
		return nil, err
	}
	rec := &GameRecord{ID: gameID}
	mover := board.PlayerOne
	for !b.IsFull() {
		p := r.aiplayers[mover-1]
		var col int
		if len(rec.Moves) < r.randomOpening {
			col, err = p.PickMoveAtRandom(b)
		} else {
			col, err = p.PickMoveOnBoard(ctx, b, r.geom.Connect)
		}
		if err != nil {
			return nil, err
		}
		b, err = b.Apply(col, mover)
		if err != nil {
			return nil, err
		}
		rec.Moves = append(rec.Moves, col)
		if r.evaluator.Evaluate(b, mover).Outcome() == equity.Win {
			rec.Winner = mover
			break
		}
		mover = mover.Opponent()
	}
	rec.Final = b
	log.Debug().Int("game", gameID).Int("winner", int(rec.Winner)).
		Int("length", len(rec.Moves)).Msg("game-over")

	if r.logchan != nil {
		r.logchan <- fmt.Sprintf("%d,%s,%s,%d,%d,%s\n",
			gameID,
			r.PlayerName(0),
			r.PlayerName(1),
			rec.Winner,
			len(rec.Moves),
			strings.Join(lo.Map(rec.Moves, func(c int, _ int) string {
				return fmt.Sprint(c)
			}), " "))
	}
	return rec, nil
}
