package board

import "strconv"

type CellState int8

const (
	Unknown CellState = -2
	Flagged CellState = -1
	Mine    CellState = 64
	// 0-8 for a revealed safe cell with the given number of mined neighbors
)

func (s CellState) String() string {
	switch {
	case s == Unknown:
		return "?"
	case s == Flagged:
		return "F"
	case s == Mine:
		return "P"
	case 0 <= s && s <= 8:
		return strconv.Itoa(int(s))
	default:
		return "!"
	}
}

func (c Cell) State() CellState {
	switch {
	case c.IsRevealed && c.IsMine:
		return Mine
	case c.IsRevealed:
		return CellState(c.NeighborCount)
	case c.IsFlagged:
		return Flagged
	default:
		return Unknown
	}
}
