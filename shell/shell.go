// Package shell is an interactive connect-n console: play against the
// engine, inspect its evaluation and search, and run self-play matches.
package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/connectn/board"
	"github.com/domino14/connectn/bot"
	"github.com/domino14/connectn/config"
	"github.com/domino14/connectn/equity"
	"github.com/domino14/connectn/lines"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errNoGame            = errors.New("no game in progress; use new")
	errGameOver          = errors.New("the game is over; use new or undo")
	errExit              = errors.New("exit requested")
)

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

type ShellController struct {
	l   *readline.Instance
	out io.Writer

	config  *config.Config
	options *ShellOptions

	geom      *lines.Geometry
	evaluator *equity.Evaluator
	board     *board.Board
	history   []*board.Board
	moves     []int
	winner    board.Cell

	searchLog io.WriteCloser
	nc        *nats.Conn
	botClient *bot.Client
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func writeln(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func NewShellController(cfg *config.Config) (*ShellController, error) {
	sc := newShellController(cfg, os.Stderr)
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mconnectn>\033[0m ",
		HistoryFile:     "/tmp/connectn_readline.tmp",
		AutoComplete:    NewShellCompleter(sc),
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return nil, err
	}
	sc.l = l
	sc.out = l.Stderr()

	if path := cfg.GetString(config.ConfigSearchLogPath); path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		sc.searchLog = f
	}
	return sc, nil
}

func newShellController(cfg *config.Config, out io.Writer) *ShellController {
	opts := NewShellOptions()
	opts.SetDefaults(cfg)
	return &ShellController{out: out, config: cfg, options: opts}
}

func (sc *ShellController) showMessage(msg string) {
	writeln(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// Close releases the search log and the NATS connection, if any.
func (sc *ShellController) Close() {
	if sc.searchLog != nil {
		sc.searchLog.Close()
	}
	if sc.nc != nil {
		sc.nc.Close()
	}
	if sc.l != nil {
		sc.l.Close()
	}
}

// extractFields splits a line into the command, its positional arguments and
// its -key value options.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := CmdOptions{}
	for idx := 1; idx < len(fields); idx++ {
		f := fields[idx]
		if strings.HasPrefix(f, "-") && len(f) > 1 && !isNumber(f) {
			if idx == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			key := f[1:]
			options[key] = append(options[key], fields[idx+1])
			idx++
			continue
		}
		args = append(args, f)
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

func isNumber(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func (sc *ShellController) standardModeSwitch(line string, sig chan os.Signal) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "exit":
		if sig != nil {
			sig <- syscall.SIGINT
		}
		return nil, errExit
	case "help":
		return sc.help(cmd)
	case "new":
		return sc.newGame(cmd)
	case "drop":
		return sc.drop(cmd)
	case "undo":
		return sc.undo(cmd)
	case "show":
		return sc.show(cmd)
	case "eval":
		return sc.eval(cmd)
	case "gen":
		return sc.generate(cmd)
	case "ai":
		return sc.analyze(cmd)
	case "aiplay":
		return sc.aiplay(cmd)
	case "botplay":
		return sc.botplay(cmd)
	case "autoplay":
		return sc.autoplay(cmd)
	case "logstats":
		return sc.logstats(cmd)
	case "set":
		return sc.set(cmd)
	default:
		log.Debug().Msgf("you said: %v", strconv.Quote(line))
		return nil, fmt.Errorf("command %v not found", strconv.Quote(cmd.cmd))
	}
}

// Execute runs one command line and prints its result. It returns true when
// the shell should exit.
func (sc *ShellController) Execute(sig chan os.Signal, line string) bool {
	resp, err := sc.standardModeSwitch(line, sig)
	switch {
	case errors.Is(err, errExit):
		return true
	case errors.Is(err, errNoData):
		return false
	case err != nil:
		sc.showError(err)
		return false
	}
	if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
	return false
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if sc.Execute(sig, line) {
			break
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}
