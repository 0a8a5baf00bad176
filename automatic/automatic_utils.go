package automatic

// Computer vs computer matches and their statistics.

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"lukechampine.com/frand"

	"github.com/domino14/connectn/board"
	"github.com/domino14/connectn/config"
	"github.com/domino14/connectn/stats"
)

var (
	CVCCounter *expvar.Int
	// IsPlaying mirrors the match guard for expvar readers.
	IsPlaying *expvar.Int

	playing atomic.Bool
)

var ErrAlreadyPlaying = errors.New("games are already being played, please wait till complete")

func init() {
	CVCCounter = expvar.NewInt("cvcCounter")
	IsPlaying = expvar.NewInt("isPlaying")
}

const GameLogHeader = "gameID,p1,p2,winner,length,moves\n"

// Match describes a batch of games between two fixed players.
type Match struct {
	P1Plies int
	P2Plies int
	// RandomOpening is the number of random moves that start every game.
	RandomOpening int
	// Seeds holds one 32-byte seed per game. Missing seeds are generated.
	Seeds [][32]byte
	// GameLog receives one CSV row per finished game.
	GameLog io.Writer
}

// Results aggregates a finished match. Per-game slices are in game order.
type Results struct {
	Games   int
	Wins    [2]int
	Draws   int
	Lengths []float64
	Records []*GameRecord

	// P1Score pushes 1, 0.5 or 0 per game from player one's side.
	P1Score stats.Statistic
}

// LengthMeanStdDev returns the mean and sample standard deviation of the game
// lengths in moves.
func (r *Results) LengthMeanStdDev() (float64, float64) {
	if len(r.Lengths) == 0 {
		return 0, 0
	}
	if len(r.Lengths) == 1 {
		return r.Lengths[0], 0
	}
	return stat.MeanStdDev(r.Lengths, nil)
}

func (r *Results) Histogram() histogram.Histogram {
	return histogram.Hist(15, r.Lengths)
}

// Fprint writes a human-readable summary with a game-length histogram.
func (r *Results) Fprint(w io.Writer) error {
	mean, sd := r.LengthMeanStdDev()
	lo95, hi95 := r.P1Score.Interval(95)
	fmt.Fprintf(w, "Games played: %d\n", r.Games)
	fmt.Fprintf(w, "Player one wins: %d\n", r.Wins[0])
	fmt.Fprintf(w, "Player two wins: %d\n", r.Wins[1])
	fmt.Fprintf(w, "Draws: %d\n", r.Draws)
	fmt.Fprintf(w, "Player one score: %.3f (95%% CI %.3f - %.3f)\n", r.P1Score.Mean(), lo95, hi95)
	fmt.Fprintf(w, "Game length: mean %.2f stdev %.2f\n", mean, sd)
	if len(r.Lengths) == 0 {
		return nil
	}
	return histogram.Fprint(w, r.Histogram(), histogram.Linear(40))
}

func (r *Results) add(rec *GameRecord) {
	r.Games++
	r.Records = append(r.Records, rec)
	r.Lengths = append(r.Lengths, float64(len(rec.Moves)))
	switch rec.Winner {
	case board.PlayerOne:
		r.Wins[0]++
		r.P1Score.Push(1)
	case board.PlayerTwo:
		r.Wins[1]++
		r.P1Score.Push(0)
	default:
		r.Draws++
		r.P1Score.Push(0.5)
	}
}

// CompVsComp plays numGames games on up to threads goroutines. Every game
// draws its randomness from its own seed, so results do not depend on the
// number of threads.
func CompVsComp(ctx context.Context, cfg *config.Config, numGames, threads int, m Match) (*Results, error) {
	if numGames < 1 {
		return nil, errors.New("need at least one game")
	}
	if threads < 1 {
		threads = 1
	}
	if !playing.CompareAndSwap(false, true) {
		return nil, ErrAlreadyPlaying
	}
	IsPlaying.Set(1)
	defer func() {
		IsPlaying.Set(0)
		playing.Store(false)
	}()

	seeds := m.Seeds
	if len(seeds) < numGames {
		extra, err := GenerateSeeds(numGames - len(seeds))
		if err != nil {
			return nil, err
		}
		seeds = append(append([][32]byte{}, seeds...), extra...)
	}
	log.Debug().Msgf("Starting %v games, %v threads", numGames, threads)

	var logChan chan string
	loggerDone := make(chan struct{})
	if m.GameLog != nil {
		logChan = make(chan string, 100)
		go func() {
			defer close(loggerDone)
			io.WriteString(m.GameLog, GameLogHeader)
			for msg := range logChan {
				io.WriteString(m.GameLog, msg)
			}
		}()
	} else {
		close(loggerDone)
	}

	CVCCounter.Set(0)
	records := make([]*GameRecord, numGames)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for i := 0; i < numGames; i++ {
		g.Go(func() error {
			r, err := newGameRunner(logChan, cfg)
			if err != nil {
				return err
			}
			if err := r.Init(m.P1Plies, m.P2Plies, frand.NewCustom(seeds[i][:], 1024, 12)); err != nil {
				return err
			}
			r.SetRandomOpening(m.RandomOpening)
			rec, err := r.PlayGame(gctx, i)
			if err != nil {
				return err
			}
			records[i] = rec
			CVCCounter.Add(1)
			return nil
		})
	}
	err := g.Wait()
	if logChan != nil {
		close(logChan)
	}
	<-loggerDone
	if err != nil {
		return nil, err
	}

	res := &Results{}
	for _, rec := range records {
		res.add(rec)
	}
	log.Info().Int("games", res.Games).Int("p1-wins", res.Wins[0]).
		Int("p2-wins", res.Wins[1]).Int("draws", res.Draws).Msg("cvc-finished")
	return res, nil
}
