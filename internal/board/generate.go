package board

// Source is the random number source used for mine placement;
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

// PlaceMines scatters mineCount mines uniformly over every cell except safe
// and fills in the neighbor counts. The mine count is clamped so that at
// least one cell stays free.
func PlaceMines(g Grid, mineCount int, safe Point, rnd Source) Grid {
	total := g.Rows * g.Cols
	mineCount = max(0, min(mineCount, total-1))

	/*
	 * Write down the list of possible mine locations.
	 */
	candidates := make([]Point, 0, total)
	for y := range g.Rows {
		for x := range g.Cols {
			if x != safe.X || y != safe.Y {
				candidates = append(candidates, Point{x, y})
			}
		}
	}
	mineCount = min(mineCount, len(candidates))

	/*
	 * Now pick n off the list at random, swapping each pick out of the
	 * remaining range.
	 */
	k := len(candidates)
	for n := range mineCount {
		i := n + rnd.IntN(k-n)
		candidates[n], candidates[i] = candidates[i], candidates[n]
	}

	return PlaceMinesAt(g, candidates[:mineCount])
}

// PlaceMinesAt puts mines exactly at the given points and recomputes every
// neighbor count. Points outside the grid are ignored.
func PlaceMinesAt(g Grid, mines []Point) Grid {
	out := g.clone()
	for i := range out.Cells {
		out.Cells[i].IsMine = false
	}
	for _, p := range mines {
		if out.InBounds(p.X, p.Y) {
			out.Cells[out.index(p.X, p.Y)].IsMine = true
		}
	}
	for i := range out.Cells {
		c := &out.Cells[i]
		c.NeighborCount = 0
		if c.IsMine {
			continue
		}
		out.neighbors(c.X, c.Y, func(j int) {
			if out.Cells[j].IsMine {
				c.NeighborCount++
			}
		})
	}
	return out
}
