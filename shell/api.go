package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/connectn/automatic"
	"github.com/domino14/connectn/board"
	"github.com/domino14/connectn/bot"
	"github.com/domino14/connectn/config"
	"github.com/domino14/connectn/equity"
	"github.com/domino14/connectn/lines"
	"github.com/domino14/connectn/movegen"
	"github.com/domino14/connectn/player"
)

type Response struct {
	message string
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) Int(key string) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func msg(message string) *Response {
	return &Response{message: message}
}

// ShellOptions are the settings changed with the set command. Board shape
// settings apply from the next new game.
type ShellOptions struct {
	width      int
	height     int
	connect    int
	difficulty int
	threads    int
	alphaBeta  bool
}

var optionKeys = []string{"width", "height", "n", "difficulty", "threads", "alphabeta"}

func NewShellOptions() *ShellOptions {
	return &ShellOptions{
		width:      board.DefaultWidth,
		height:     board.DefaultHeight,
		connect:    player.DefaultConnect,
		difficulty: 4,
		threads:    1,
		alphaBeta:  true,
	}
}

func (opts *ShellOptions) SetDefaults(cfg *config.Config) {
	opts.width = cfg.GetInt(config.ConfigBoardWidth)
	opts.height = cfg.GetInt(config.ConfigBoardHeight)
	opts.connect = cfg.GetInt(config.ConfigConnectN)
	opts.difficulty = cfg.GetInt(config.ConfigDifficulty)
	opts.threads = cfg.GetInt(config.ConfigThreads)
	opts.alphaBeta = cfg.GetBool(config.ConfigAlphaBeta)
}

func (opts *ShellOptions) Show(key string) (bool, string) {
	switch key {
	case "width":
		return true, strconv.Itoa(opts.width)
	case "height":
		return true, strconv.Itoa(opts.height)
	case "n":
		return true, strconv.Itoa(opts.connect)
	case "difficulty":
		return true, strconv.Itoa(opts.difficulty)
	case "threads":
		return true, strconv.Itoa(opts.threads)
	case "alphabeta":
		return true, strconv.FormatBool(opts.alphaBeta)
	default:
		return false, "No such option: " + key
	}
}

func (opts *ShellOptions) ToDisplayText() string {
	out := strings.Builder{}
	out.WriteString("Settings:\n")
	for _, key := range optionKeys {
		_, val := opts.Show(key)
		out.WriteString("  " + key + ": ")
		out.WriteString(val + "\n")
	}
	return out.String()
}

// Set changes one option and returns its new value.
func (opts *ShellOptions) Set(key, value string) (string, error) {
	if key == "alphabeta" {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", err
		}
		opts.alphaBeta = b
		return strconv.FormatBool(b), nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return "", err
	}
	switch key {
	case "width", "height":
		if n < 1 || n > board.MaxDimension {
			return "", fmt.Errorf("%s must be between 1 and %d", key, board.MaxDimension)
		}
		if key == "width" {
			opts.width = n
		} else {
			opts.height = n
		}
	case "n":
		if n < 1 || n > lines.MaxConnect {
			return "", fmt.Errorf("n must be between 1 and %d", lines.MaxConnect)
		}
		opts.connect = n
	case "difficulty":
		if n < 0 {
			return "", errors.New("difficulty must be non-negative")
		}
		opts.difficulty = n
	case "threads":
		if n < 1 {
			return "", errors.New("need at least one thread")
		}
		opts.threads = n
	default:
		return "", errors.New("No such option: " + key)
	}
	return strconv.Itoa(n), nil
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(sc.options.ToDisplayText()), nil
	}
	opt := cmd.args[0]
	if len(cmd.args) == 1 {
		_, val := sc.options.Show(opt)
		return msg(val), nil
	}
	ret, err := sc.options.Set(opt, cmd.args[1])
	if err != nil {
		return nil, err
	}
	return msg("set " + opt + " to " + ret), nil
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(usage("standard")), nil
	}
	return msg(usageTopic(cmd.args[0])), nil
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	w, err := cmd.options.IntDefault("w", sc.options.width)
	if err != nil {
		return nil, err
	}
	h, err := cmd.options.IntDefault("h", sc.options.height)
	if err != nil {
		return nil, err
	}
	n, err := cmd.options.IntDefault("n", sc.options.connect)
	if err != nil {
		return nil, err
	}
	geom, err := lines.Get(w, h, n)
	if err != nil {
		return nil, err
	}
	b, err := board.New(w, h)
	if err != nil {
		return nil, err
	}
	sc.geom = geom
	sc.evaluator = equity.NewEvaluator(geom)
	sc.board = b
	sc.history = nil
	sc.moves = nil
	sc.winner = board.Empty
	log.Debug().Int("width", w).Int("height", h).Int("n", n).Msg("new-game")
	return msg(sc.gameText()), nil
}

func (sc *ShellController) gameOver() bool {
	return sc.winner != board.Empty || sc.board.IsFull()
}

func (sc *ShellController) gameText() string {
	var sb strings.Builder
	sb.WriteString(sc.board.ToDisplayText())
	fmt.Fprintf(&sb, "Connect %d. Moves: %v\n", sc.geom.Connect, sc.moves)
	switch {
	case sc.winner != board.Empty:
		fmt.Fprintf(&sb, "Game over: %v wins\n", sc.winner)
	case sc.board.IsFull():
		sb.WriteString("Game over: draw\n")
	default:
		fmt.Fprintf(&sb, "%v to move\n", sc.board.PlayerOnTurn())
	}
	return sb.String()
}

// commit plays col for the player on turn.
func (sc *ShellController) commit(col int) (*Response, error) {
	if sc.board == nil {
		return nil, errNoGame
	}
	if sc.gameOver() {
		return nil, errGameOver
	}
	mover := sc.board.PlayerOnTurn()
	nb, err := sc.board.Apply(col, mover)
	if err != nil {
		return nil, err
	}
	sc.history = append(sc.history, sc.board)
	sc.board = nb
	sc.moves = append(sc.moves, col)
	if sc.evaluator.Evaluate(nb, mover).Outcome() == equity.Win {
		sc.winner = mover
	}
	return msg(sc.gameText()), nil
}

func (sc *ShellController) drop(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("drop <column>")
	}
	col, err := strconv.Atoi(cmd.args[0])
	if err != nil {
		return nil, err
	}
	return sc.commit(col)
}

func (sc *ShellController) undo(cmd *shellcmd) (*Response, error) {
	if sc.board == nil {
		return nil, errNoGame
	}
	if len(sc.history) == 0 {
		return nil, errors.New("nothing to undo")
	}
	sc.board = sc.history[len(sc.history)-1]
	sc.history = sc.history[:len(sc.history)-1]
	sc.moves = sc.moves[:len(sc.moves)-1]
	// Play stops at the first win, so every earlier position was open.
	sc.winner = board.Empty
	return msg(sc.gameText()), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if sc.board == nil {
		return nil, errNoGame
	}
	return msg(sc.gameText()), nil
}

func (sc *ShellController) eval(cmd *shellcmd) (*Response, error) {
	if sc.board == nil {
		return nil, errNoGame
	}
	who := sc.board.PlayerOnTurn()
	if len(cmd.args) > 0 {
		p, err := strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, err
		}
		var ok bool
		if who, ok = board.PlayerFromInt(p); !ok {
			return nil, fmt.Errorf("%w: %d", player.ErrInvalidPlayer, p)
		}
	}
	return msg(fmt.Sprintf("Evaluation for %v: %v", who, sc.evaluator.Evaluate(sc.board, who))), nil
}

func (sc *ShellController) generate(cmd *shellcmd) (*Response, error) {
	if sc.board == nil {
		return nil, errNoGame
	}
	mover := sc.board.PlayerOnTurn()
	cols, children, err := movegen.GenAll(sc.board, mover)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-8s%s\n", "Column", "Static eval")
	for i, col := range cols {
		fmt.Fprintf(&sb, "%-8d%v\n", col, sc.evaluator.Evaluate(children[i], mover))
	}
	return msg(sb.String()), nil
}

// plies reads an optional search depth argument, falling back to the
// difficulty setting.
func (sc *ShellController) plies(cmd *shellcmd) (int, error) {
	if len(cmd.args) == 0 {
		return sc.options.difficulty, nil
	}
	p, err := strconv.Atoi(cmd.args[0])
	if err != nil {
		return 0, err
	}
	if p < 0 {
		return 0, errors.New("plies must be non-negative")
	}
	return p, nil
}

func (sc *ShellController) computerPlayer(plies int) (*player.ComputerPlayer, error) {
	opts := []player.Option{
		player.WithThreads(sc.options.threads),
		player.WithAlphaBeta(sc.options.alphaBeta),
	}
	if sc.searchLog != nil {
		opts = append(opts, player.WithLogStream(sc.searchLog))
	}
	return player.NewComputerPlayer(sc.board.PlayerOnTurn(), plies, opts...)
}

func (sc *ShellController) pickMove(cmd *shellcmd) (int, *player.ComputerPlayer, error) {
	if sc.board == nil {
		return -1, nil, errNoGame
	}
	if sc.gameOver() {
		return -1, nil, errGameOver
	}
	plies, err := sc.plies(cmd)
	if err != nil {
		return -1, nil, err
	}
	p, err := sc.computerPlayer(plies)
	if err != nil {
		return -1, nil, err
	}
	col, err := p.PickMoveOnBoard(context.Background(), sc.board, sc.geom.Connect)
	if err != nil {
		return -1, nil, err
	}
	return col, p, nil
}

func (sc *ShellController) analyze(cmd *shellcmd) (*Response, error) {
	col, p, err := sc.pickMove(cmd)
	if err != nil {
		return nil, err
	}
	if p.Difficulty() == 0 {
		return msg(fmt.Sprintf("Random pick: column %d", col)), nil
	}
	v, pv := p.LastSearch()
	return msg(fmt.Sprintf("Best column: %d\nValue: %v\nPrincipal variation: %v", col, v, pv)), nil
}

func (sc *ShellController) aiplay(cmd *shellcmd) (*Response, error) {
	col, _, err := sc.pickMove(cmd)
	if err != nil {
		return nil, err
	}
	sc.showMessage(fmt.Sprintf("Computer plays column %d", col))
	return sc.commit(col)
}

func (sc *ShellController) connectBot() error {
	if sc.botClient != nil {
		return nil
	}
	nc, err := nats.Connect(sc.config.GetString(config.ConfigNatsURL))
	if err != nil {
		return err
	}
	sc.nc = nc
	sc.botClient = bot.NewClient(nc, sc.config.GetString(config.ConfigBotChannel),
		sc.config.GetDuration(config.ConfigRequestTimeout))
	return nil
}

// botplay asks the NATS move service for the move instead of searching
// locally.
func (sc *ShellController) botplay(cmd *shellcmd) (*Response, error) {
	if sc.board == nil {
		return nil, errNoGame
	}
	if sc.gameOver() {
		return nil, errGameOver
	}
	plies, err := sc.plies(cmd)
	if err != nil {
		return nil, err
	}
	if err := sc.connectBot(); err != nil {
		return nil, err
	}
	sc.showMessage("Requesting move from bot")
	resp, err := sc.botClient.RequestMove(context.Background(), &bot.MoveRequest{
		Rack:       sc.board.Rack(),
		N:          sc.geom.Connect,
		Player:     int(sc.board.PlayerOnTurn()),
		Difficulty: plies,
	})
	if err != nil {
		return nil, err
	}
	sc.showMessage(fmt.Sprintf("Bot returned column %d", resp.Column))
	return sc.commit(resp.Column)
}

func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("autoplay <games> [-p1 plies] [-p2 plies] [-threads t] [-opening k] [-log file]")
	}
	games, err := strconv.Atoi(cmd.args[0])
	if err != nil {
		return nil, err
	}
	m := automatic.Match{}
	if m.P1Plies, err = cmd.options.IntDefault("p1", sc.options.difficulty); err != nil {
		return nil, err
	}
	if m.P2Plies, err = cmd.options.IntDefault("p2", sc.options.difficulty); err != nil {
		return nil, err
	}
	if m.RandomOpening, err = cmd.options.IntDefault("opening", 0); err != nil {
		return nil, err
	}
	threads, err := cmd.options.IntDefault("threads", sc.options.threads)
	if err != nil {
		return nil, err
	}
	if path := cmd.options.String("log"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		m.GameLog = f
	}

	// Matches use the shell's board settings.
	cfg := &config.Config{}
	if err := cfg.Load(nil); err != nil {
		return nil, err
	}
	cfg.Set(config.ConfigBoardWidth, sc.options.width)
	cfg.Set(config.ConfigBoardHeight, sc.options.height)
	cfg.Set(config.ConfigConnectN, sc.options.connect)
	cfg.Set(config.ConfigAlphaBeta, sc.options.alphaBeta)

	res, err := automatic.CompVsComp(context.Background(), cfg, games, threads, m)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	if err := res.Fprint(&sb); err != nil {
		return nil, err
	}
	return msg(sb.String()), nil
}

func (sc *ShellController) logstats(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("logstats <file>")
	}
	stats, err := automatic.AnalyzeLogFile(cmd.args[0])
	if err != nil {
		return nil, err
	}
	return msg(stats), nil
}
