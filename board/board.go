package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// A Cell is the content of a single board position.
type Cell uint8

const (
	Empty Cell = iota
	PlayerOne
	PlayerTwo
)

const (
	DefaultWidth  = 7
	DefaultHeight = 6
	MaxDimension  = 64
)

var (
	ErrInvalidBoard = errors.New("invalid board")
	ErrInvalidMove  = errors.New("invalid move")
)

// Opponent returns the other player. It returns Empty for Empty.
func (c Cell) Opponent() Cell {
	switch c {
	case PlayerOne:
		return PlayerTwo
	case PlayerTwo:
		return PlayerOne
	}
	return Empty
}

// Valid reports whether c is one of the two players.
func (c Cell) Valid() bool {
	return c == PlayerOne || c == PlayerTwo
}

// PlayerFromInt converts a player number from outside input. Only 1 and 2
// are players; anything else, including values that would wrap around in a
// Cell, is rejected.
func PlayerFromInt(p int) (Cell, bool) {
	switch p {
	case int(PlayerOne):
		return PlayerOne, true
	case int(PlayerTwo):
		return PlayerTwo, true
	}
	return Empty, false
}

func (c Cell) String() string {
	switch c {
	case PlayerOne:
		return "X"
	case PlayerTwo:
		return "O"
	}
	return "."
}

// Board is an immutable, column-major connect-n rack. Row 0 is the bottom.
// Each column only stores its occupied prefix; Apply returns a new Board that
// shares every column but the one played in.
type Board struct {
	width   int
	height  int
	columns [][]Cell
}

// New returns an empty board of the given dimensions.
func New(width, height int) (*Board, error) {
	if err := checkDims(width, height); err != nil {
		return nil, err
	}
	return &Board{
		width:   width,
		height:  height,
		columns: make([][]Cell, width),
	}, nil
}

// MustNew is like New but panics on bad dimensions. Meant for fixtures.
func MustNew(width, height int) *Board {
	b, err := New(width, height)
	if err != nil {
		panic(err)
	}
	return b
}

func checkDims(width, height int) error {
	if width < 1 || width > MaxDimension || height < 1 || height > MaxDimension {
		return fmt.Errorf("%w: dimensions %dx%d out of range", ErrInvalidBoard, width, height)
	}
	return nil
}

// FromRack builds a board from a column-major rack of ints: 0 is empty, 1 and
// 2 are the players' discs, and index 0 of each column is the bottom row.
func FromRack(rack [][]int) (*Board, error) {
	if len(rack) == 0 {
		return nil, fmt.Errorf("%w: no columns", ErrInvalidBoard)
	}
	height := len(rack[0])
	if err := checkDims(len(rack), height); err != nil {
		return nil, err
	}
	if _, ragged := lo.Find(rack, func(col []int) bool { return len(col) != height }); ragged {
		return nil, fmt.Errorf("%w: columns have different heights", ErrInvalidBoard)
	}
	b := &Board{width: len(rack), height: height, columns: make([][]Cell, len(rack))}
	for c, col := range rack {
		filled := 0
		for r, v := range col {
			switch {
			case v < 0 || v > 2:
				return nil, fmt.Errorf("%w: value %d at column %d row %d", ErrInvalidBoard, v, c, r)
			case v == 0:
				continue
			case r != filled:
				return nil, fmt.Errorf("%w: floating disc at column %d row %d", ErrInvalidBoard, c, r)
			}
			filled++
		}
		if filled == 0 {
			continue
		}
		b.columns[c] = lo.Map(col[:filled], func(v int, _ int) Cell { return Cell(v) })
	}
	return b, nil
}

func (b *Board) Width() int  { return b.width }
func (b *Board) Height() int { return b.height }

// ColumnHeight is the number of discs in column c.
func (b *Board) ColumnHeight(c int) int {
	return len(b.columns[c])
}

// CellAt returns the content of (col, row). Out of range positions are Empty.
func (b *Board) CellAt(col, row int) Cell {
	if col < 0 || col >= b.width || row < 0 {
		return Empty
	}
	column := b.columns[col]
	if row >= len(column) {
		return Empty
	}
	return column[row]
}

// CanPlay reports whether a disc can be dropped in column c.
func (b *Board) CanPlay(c int) bool {
	return c >= 0 && c < b.width && len(b.columns[c]) < b.height
}

// Apply drops a disc for player into column c and returns the new board. The
// receiver is never modified.
func (b *Board) Apply(c int, player Cell) (*Board, error) {
	if !player.Valid() {
		return nil, fmt.Errorf("%w: bad player %d", ErrInvalidMove, player)
	}
	if c < 0 || c >= b.width {
		return nil, fmt.Errorf("%w: column %d out of range", ErrInvalidMove, c)
	}
	old := b.columns[c]
	if len(old) >= b.height {
		return nil, fmt.Errorf("%w: column %d is full", ErrInvalidMove, c)
	}
	// A fresh backing array for the changed column; a plain append could
	// write into spare capacity that a sibling board also sees.
	col := make([]Cell, len(old)+1)
	copy(col, old)
	col[len(old)] = player

	columns := make([][]Cell, b.width)
	copy(columns, b.columns)
	columns[c] = col
	return &Board{width: b.width, height: b.height, columns: columns}, nil
}

// LegalColumns lists the columns that still have room, ascending.
func (b *Board) LegalColumns() []int {
	cols := make([]int, 0, b.width)
	for c := range b.columns {
		if len(b.columns[c]) < b.height {
			cols = append(cols, c)
		}
	}
	return cols
}

// IsFull is true when no column has room.
func (b *Board) IsFull() bool {
	for _, col := range b.columns {
		if len(col) < b.height {
			return false
		}
	}
	return true
}

func (b *Board) NumDiscs() int {
	return lo.SumBy(b.columns, func(col []Cell) int { return len(col) })
}

// PlayerOnTurn infers the side to move from disc counts; player one moves
// first.
func (b *Board) PlayerOnTurn() Cell {
	ones := 0
	twos := 0
	for _, col := range b.columns {
		for _, cell := range col {
			if cell == PlayerOne {
				ones++
			} else {
				twos++
			}
		}
	}
	if ones > twos {
		return PlayerTwo
	}
	return PlayerOne
}

// Rack converts the board back into the column-major int representation
// accepted by FromRack.
func (b *Board) Rack() [][]int {
	rack := make([][]int, b.width)
	for c := range rack {
		rack[c] = make([]int, b.height)
		for r, cell := range b.columns[c] {
			rack[c][r] = int(cell)
		}
	}
	return rack
}

// Equals compares contents, not identity.
func (b *Board) Equals(o *Board) bool {
	if b.width != o.width || b.height != o.height {
		return false
	}
	for c := range b.columns {
		if len(b.columns[c]) != len(o.columns[c]) {
			return false
		}
		for r := range b.columns[c] {
			if b.columns[c][r] != o.columns[c][r] {
				return false
			}
		}
	}
	return true
}

// ToDisplayText renders the board top row first, with a column index footer.
func (b *Board) ToDisplayText() string {
	var sb strings.Builder
	for r := b.height - 1; r >= 0; r-- {
		sb.WriteString("|")
		for c := 0; c < b.width; c++ {
			sb.WriteString(" ")
			sb.WriteString(b.CellAt(c, r).String())
		}
		sb.WriteString(" |\n")
	}
	sb.WriteString("+")
	sb.WriteString(strings.Repeat("--", b.width))
	sb.WriteString("-+\n ")
	for c := 0; c < b.width; c++ {
		fmt.Fprintf(&sb, " %d", c%10)
	}
	sb.WriteString("\n")
	return sb.String()
}

func (b *Board) String() string {
	return b.ToDisplayText()
}
