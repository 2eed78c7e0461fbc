package board

import (
	"errors"
	"slices"
	"strings"
)

var (
	ErrInvalidSize   = errors.New("rows and cols must be positive")
	ErrNegativeMines = errors.New("mine count must not be negative")
	ErrTooManyMines  = errors.New("mine count must be less than the number of cells")
)

// ValidateParams reports whether a rows x cols grid can hold mines mines
// while keeping at least one safe cell for the first reveal.
func ValidateParams(rows, cols, mines int) error {
	if rows <= 0 || cols <= 0 {
		return ErrInvalidSize
	}
	if mines < 0 {
		return ErrNegativeMines
	}
	if mines >= rows*cols {
		return ErrTooManyMines
	}
	return nil
}

type Point struct {
	X, Y int
}

type Cell struct {
	X, Y          int
	IsMine        bool
	IsRevealed    bool
	IsFlagged     bool
	NeighborCount int
}

// Grid is a rows x cols board stored row-major. Operations in this package
// never write to a Grid passed to them; they return a new one instead.
type Grid struct {
	Rows, Cols int
	Cells      []Cell
}

var directions = [8]Point{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

func New(rows, cols int) Grid {
	cells := make([]Cell, 0, rows*cols)
	for y := range rows {
		for x := range cols {
			cells = append(cells, Cell{X: x, Y: y})
		}
	}
	return Grid{Rows: rows, Cols: cols, Cells: cells}
}

func (g Grid) InBounds(x, y int) bool {
	return 0 <= x && x < g.Cols && 0 <= y && y < g.Rows
}

func (g Grid) index(x, y int) int {
	return y*g.Cols + x
}

func (g Grid) At(x, y int) (Cell, bool) {
	if !g.InBounds(x, y) {
		return Cell{}, false
	}
	return g.Cells[g.index(x, y)], true
}

func (g Grid) clone() Grid {
	return Grid{Rows: g.Rows, Cols: g.Cols, Cells: slices.Clone(g.Cells)}
}

// neighbors calls fn with the index of every in-bounds cell adjacent to
// (x, y), diagonals included.
func (g Grid) neighbors(x, y int, fn func(i int)) {
	for _, d := range directions {
		nx, ny := x+d.X, y+d.Y
		if g.InBounds(nx, ny) {
			fn(g.index(nx, ny))
		}
	}
}

func (g Grid) count(pred func(c Cell) bool) int {
	n := 0
	for _, c := range g.Cells {
		if pred(c) {
			n++
		}
	}
	return n
}

func (g Grid) Revealed() int {
	return g.count(func(c Cell) bool { return c.IsRevealed })
}

func (g Grid) Flagged() int {
	return g.count(func(c Cell) bool { return c.IsFlagged })
}

func (g Grid) Mines() int {
	return g.count(func(c Cell) bool { return c.IsMine })
}

func (g Grid) State(x, y int) CellState {
	c, ok := g.At(x, y)
	if !ok {
		return Unknown
	}
	return c.State()
}

// States returns the player-visible view of the grid, row-major.
func (g Grid) States() []CellState {
	states := make([]CellState, len(g.Cells))
	for i, c := range g.Cells {
		states[i] = c.State()
	}
	return states
}

// String renders the grid the way the hint advisor reads it: one line per
// row, cells separated by a space.
func (g Grid) String() string {
	var b strings.Builder
	for y := range g.Rows {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := range g.Cols {
			if x > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(g.Cells[g.index(x, y)].State().String())
		}
	}
	return b.String()
}
