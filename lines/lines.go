// Package lines enumerates every maximal run of cells on a board that is long
// enough to hold n-in-a-row. The set depends only on the board shape and n, so
// it is computed once per geometry and shared read-only.
package lines

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/domino14/connectn/board"
)

const MaxConnect = 12

type Direction uint8

const (
	Vertical Direction = iota
	Horizontal
	DiagonalUpRight
	DiagonalUpLeft
)

func (d Direction) String() string {
	switch d {
	case Vertical:
		return "vertical"
	case Horizontal:
		return "horizontal"
	case DiagonalUpRight:
		return "up-right"
	case DiagonalUpLeft:
		return "up-left"
	}
	return "none"
}

type Coord struct {
	Col int
	Row int
}

// A Line is an ordered run of coordinates along one direction.
type Line struct {
	Direction Direction
	Cells     []Coord
}

func (l Line) Len() int { return len(l.Cells) }

// Geometry is the complete line set for a (width, height, n) triple.
type Geometry struct {
	Width   int
	Height  int
	Connect int
	Lines   []Line

	maxLen int
}

// MaxLineLength is the length of the longest line, useful for sizing scratch
// buffers.
func (g *Geometry) MaxLineLength() int {
	return g.maxLen
}

// NumWindows counts the length-n windows over all lines.
func (g *Geometry) NumWindows() int {
	total := 0
	for _, l := range g.Lines {
		total += l.Len() - g.Connect + 1
	}
	return total
}

// LinesFor computes the geometry for a board shape. Lines shorter than n are
// dropped. Each diagonal appears exactly once.
func LinesFor(width, height, n int) (*Geometry, error) {
	if width < 1 || width > board.MaxDimension || height < 1 || height > board.MaxDimension {
		return nil, fmt.Errorf("%w: dimensions %dx%d out of range", board.ErrInvalidBoard, width, height)
	}
	if n < 1 || n > MaxConnect {
		return nil, fmt.Errorf("%w: connect length %d out of range", board.ErrInvalidBoard, n)
	}
	g := &Geometry{Width: width, Height: height, Connect: n}

	for c := 0; c < width; c++ {
		g.add(Vertical, walk(width, height, c, 0, 0, 1))
	}
	for r := 0; r < height; r++ {
		g.add(Horizontal, walk(width, height, 0, r, 1, 0))
	}
	// Up-right diagonals start on the bottom row or the left column. (0, 0)
	// is reached from the bottom row, so the column pass starts at row 1.
	for c := 0; c < width; c++ {
		g.add(DiagonalUpRight, walk(width, height, c, 0, 1, 1))
	}
	for r := 1; r < height; r++ {
		g.add(DiagonalUpRight, walk(width, height, 0, r, 1, 1))
	}
	// Up-left diagonals start on the bottom row or the right column.
	for c := width - 1; c >= 0; c-- {
		g.add(DiagonalUpLeft, walk(width, height, c, 0, -1, 1))
	}
	for r := 1; r < height; r++ {
		g.add(DiagonalUpLeft, walk(width, height, width-1, r, -1, 1))
	}
	return g, nil
}

func (g *Geometry) add(d Direction, cells []Coord) {
	if len(cells) < g.Connect {
		return
	}
	g.Lines = append(g.Lines, Line{Direction: d, Cells: cells})
	if len(cells) > g.maxLen {
		g.maxLen = len(cells)
	}
}

func walk(width, height, col, row, dc, dr int) []Coord {
	var cells []Coord
	for col >= 0 && col < width && row >= 0 && row < height {
		cells = append(cells, Coord{Col: col, Row: row})
		col += dc
		row += dr
	}
	return cells
}

type geometryKey struct {
	width, height, n int
}

var (
	geometryMu    sync.Mutex
	geometryCache = map[geometryKey]*Geometry{}
)

// Get returns the shared geometry for a board shape, computing it on first
// use.
func Get(width, height, n int) (*Geometry, error) {
	key := geometryKey{width, height, n}
	geometryMu.Lock()
	defer geometryMu.Unlock()
	if g, ok := geometryCache[key]; ok {
		return g, nil
	}
	g, err := LinesFor(width, height, n)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("width", width).Int("height", height).Int("n", n).
		Int("lines", len(g.Lines)).Msg("computed-line-geometry")
	geometryCache[key] = g
	return g, nil
}
