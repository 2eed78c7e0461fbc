package board

// Reveal opens the cell at (x, y). Revealing a cell with no mined neighbors
// opens its whole zero region plus the numbered cells bordering it; flagged
// cells are never opened, neither directly nor by the cascade. The second
// return value is true when the opened cell is a mine.
func Reveal(g Grid, x, y int) (Grid, bool) {
	target, ok := g.At(x, y)
	if !ok || target.IsRevealed || target.IsFlagged {
		return g, false
	}

	out := g.clone()
	i := out.index(x, y)
	out.Cells[i].IsRevealed = true

	if target.IsMine {
		return out, true
	}

	if target.NeighborCount != 0 {
		return out, false
	}

	queue := []int{i}
	for len(queue) > 0 {
		c := out.Cells[queue[0]]
		queue = queue[1:]
		out.neighbors(c.X, c.Y, func(j int) {
			n := &out.Cells[j]
			if n.IsRevealed || n.IsFlagged || n.IsMine {
				return
			}
			n.IsRevealed = true
			if n.NeighborCount == 0 {
				queue = append(queue, j)
			}
		})
	}

	return out, false
}

// ToggleFlag flips the flag on a hidden cell. Revealed and out-of-bounds
// cells are left as they are.
func ToggleFlag(g Grid, x, y int) Grid {
	c, ok := g.At(x, y)
	if !ok || c.IsRevealed {
		return g
	}
	out := g.clone()
	out.Cells[out.index(x, y)].IsFlagged = !c.IsFlagged
	return out
}

// CheckWin is true once every non-mine cell is revealed. Flags play no part.
func CheckWin(g Grid, totalMines int) bool {
	return g.Revealed() == g.Rows*g.Cols-totalMines
}

// RevealAllMines opens every mine, for display after a loss.
func RevealAllMines(g Grid) Grid {
	out := g.clone()
	for i := range out.Cells {
		if out.Cells[i].IsMine {
			out.Cells[i].IsRevealed = true
		}
	}
	return out
}
