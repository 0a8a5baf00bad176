package shell

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/connectn/board"
	"github.com/domino14/connectn/config"
	"github.com/domino14/connectn/player"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func newTestShell() (*ShellController, *bytes.Buffer) {
	var out bytes.Buffer
	return newShellController(config.DefaultConfig(), &out), &out
}

func run(t *testing.T, sc *ShellController, line string) string {
	resp, err := sc.standardModeSwitch(line, nil)
	if err != nil {
		t.Fatalf("%s: %v", line, err)
	}
	return resp.message
}

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		line   string
		expCmd *shellcmd
		expErr error
	}
	cases := []testdata{
		{"", nil, errNoData},
		{"autoplay 100 -p1 4 -threads 8",
			&shellcmd{"autoplay", []string{"100"}, CmdOptions{"p1": {"4"}, "threads": {"8"}}},
			nil},
		{"drop 3",
			&shellcmd{"drop", []string{"3"}, CmdOptions{}},
			nil},
		{"eval -1",
			&shellcmd{"eval", []string{"-1"}, CmdOptions{}},
			nil},
		{`autoplay 10 -log "my games.csv"`,
			&shellcmd{"autoplay", []string{"10"}, CmdOptions{"log": {"my games.csv"}}},
			nil},
		{"new -w", nil, errWrongOptionSyntax},
	}
	for _, t := range cases {
		cmd, err := extractFields(t.line)
		is.Equal(cmd, t.expCmd)
		is.Equal(err, t.expErr)
	}
}

func TestPlayAndUndo(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell()
	_, err := sc.standardModeSwitch("drop 0", nil)
	is.Equal(err, errNoGame)

	out := run(t, sc, "new -w 4 -h 4 -n 3")
	is.True(strings.Contains(out, "X to move"))
	for _, col := range []string{"0", "1", "0", "1"} {
		run(t, sc, "drop "+col)
	}
	out = run(t, sc, "drop 0")
	is.True(strings.Contains(out, "Game over: X wins"))
	is.Equal(sc.winner, board.PlayerOne)

	_, err = sc.standardModeSwitch("drop 2", nil)
	is.Equal(err, errGameOver)

	out = run(t, sc, "undo")
	is.True(strings.Contains(out, "X to move"))
	is.Equal(sc.winner, board.Empty)
	is.Equal(sc.moves, []int{0, 1, 0, 1})
	is.Equal(sc.board.NumDiscs(), 4)
}

func TestDropErrors(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell()
	run(t, sc, "new -w 2 -h 1 -n 2")
	_, err := sc.standardModeSwitch("drop 5", nil)
	is.True(err != nil)
	_, err = sc.standardModeSwitch("drop x", nil)
	is.True(err != nil)
	run(t, sc, "drop 0")
	_, err = sc.standardModeSwitch("drop 0", nil)
	is.True(err != nil)
	out := run(t, sc, "drop 1")
	is.True(strings.Contains(out, "Game over: draw"))
}

func TestAIPlayBlocks(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell()
	run(t, sc, "new")
	for _, col := range []string{"3", "0", "3", "1", "3"} {
		run(t, sc, "drop "+col)
	}
	out := run(t, sc, "ai 2")
	is.True(strings.Contains(out, "Best column: 3"))
	is.Equal(sc.board.NumDiscs(), 5)

	run(t, sc, "aiplay 2")
	is.Equal(sc.moves[len(sc.moves)-1], 3)
	is.Equal(sc.board.CellAt(3, 3), board.PlayerTwo)
}

func TestEvalAndGen(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell()
	run(t, sc, "new")
	run(t, sc, "drop 3")
	is.Equal(run(t, sc, "eval 1"), "Evaluation for X: 7")
	is.Equal(run(t, sc, "eval 2"), "Evaluation for O: -7")
	_, err := sc.standardModeSwitch("eval 3", nil)
	is.True(err != nil)
	// 257 would wrap around to player one in a Cell
	_, err = sc.standardModeSwitch("eval 257", nil)
	is.True(errors.Is(err, player.ErrInvalidPlayer))
	_, err = sc.standardModeSwitch("eval -255", nil)
	is.True(errors.Is(err, player.ErrInvalidPlayer))

	out := run(t, sc, "gen")
	is.Equal(strings.Count(out, "\n"), 8)
}

func TestSet(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell()
	is.True(strings.Contains(run(t, sc, "set"), "difficulty: 4"))
	is.Equal(run(t, sc, "set width 9"), "set width to 9")
	is.Equal(run(t, sc, "set alphabeta false"), "set alphabeta to false")
	is.Equal(run(t, sc, "set width"), "9")
	_, err := sc.standardModeSwitch("set n 40", nil)
	is.True(err != nil)
	_, err = sc.standardModeSwitch("set bogus 1", nil)
	is.True(err != nil)

	run(t, sc, "new")
	is.Equal(sc.board.Width(), 9)
}

func TestAutoplayAndLogstats(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell()
	run(t, sc, "set width 5")
	run(t, sc, "set height 4")
	run(t, sc, "set n 3")
	path := filepath.Join(t.TempDir(), "games.csv")
	out := run(t, sc, "autoplay 6 -p1 2 -p2 0 -threads 2 -log "+path)
	is.True(strings.Contains(out, "Games played: 6"))

	out = run(t, sc, "logstats "+path)
	is.True(strings.Contains(out, "Games played: 6"))
	is.True(strings.Contains(out, "plies-2 (first) wins"))
}

func TestHelp(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell()
	is.True(strings.Contains(run(t, sc, "help"), "autoplay <games>"))
	is.True(strings.Contains(run(t, sc, "help autoplay"), "-opening"))
	is.True(strings.Contains(run(t, sc, "help nope"), "There is no help text"))
}

func TestUnknownCommand(t *testing.T) {
	is := is.New(t)
	sc, out := newTestShell()
	is.True(!sc.Execute(nil, "frobnicate"))
	is.True(strings.Contains(out.String(), "Error: command \"frobnicate\" not found"))
	is.True(!sc.Execute(nil, ""))
}

func TestCompleter(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell()
	c := NewShellCompleter(sc)

	matches, n := c.Do([]rune("auto"), 4)
	is.Equal(n, 4)
	is.Equal(matches, [][]rune{[]rune("play")})

	matches, _ = c.Do([]rune("set alphabeta "), 14)
	is.Equal(len(matches), 2)

	run(t, sc, "new -w 2 -h 1 -n 2")
	run(t, sc, "drop 0")
	matches, _ = c.Do([]rune("drop "), 5)
	is.Equal(matches, [][]rune{[]rune("1")})
}

func TestExit(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell()
	sig := make(chan os.Signal, 1)
	is.True(sc.Execute(sig, "exit"))
	is.Equal(<-sig, os.Signal(syscall.SIGINT))
}
