package game

import (
	"bytes"
	"encoding/gob"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/peachsweeper/internal/board"
)

var Log = logrus.New()

type State struct {
	Difficulty
	Phase     Phase
	Grid      board.Grid
	Seeded    bool /* mines placed */
	StartedAt time.Time
	EndedAt   time.Time
}

type Outcome struct {
	Changed bool
	HitMine bool
	Won     bool
}

func New(d Difficulty) *State {
	return &State{
		Difficulty: d,
		Phase:      Idle,
		Grid:       board.New(d.Rows, d.Cols),
	}
}

func Decode(buf []byte) (*State, error) {
	var s State
	if err := gob.NewDecoder(bytes.NewReader(buf)).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s State) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *State) start(now time.Time) {
	if s.Phase == Idle {
		s.Phase = Playing
		s.StartedAt = now
	}
}

func (s *State) end(phase Phase, now time.Time) {
	s.Phase = phase
	s.EndedAt = now
}

// Open reveals a cell. The first open of a game places the mines, keeping
// the opened cell safe.
func (s *State) Open(x, y int, rnd board.Source, now time.Time) Outcome {
	if s.Phase.Over() {
		return Outcome{}
	}
	c, ok := s.Grid.At(x, y)
	if !ok || c.IsRevealed || c.IsFlagged {
		return Outcome{}
	}

	if !s.Seeded {
		s.Grid = board.PlaceMines(s.Grid, s.Mines, board.Point{X: x, Y: y}, rnd)
		s.Seeded = true
		Log.WithFields(logrus.Fields{
			"difficulty": s.Name,
			"x":          x,
			"y":          y,
		}).Debug("mines placed")
	}
	s.start(now)

	grid, hitMine := board.Reveal(s.Grid, x, y)
	if hitMine {
		s.Grid = board.RevealAllMines(grid)
		s.end(Lost, now)
		return Outcome{Changed: true, HitMine: true}
	}

	s.Grid = grid
	if board.CheckWin(s.Grid, s.Mines) {
		s.end(Won, now)
		return Outcome{Changed: true, Won: true}
	}
	return Outcome{Changed: true}
}

// Flag toggles the flag on a hidden cell. Flagging before the first open
// starts the clock but leaves the mines unplaced.
func (s *State) Flag(x, y int, now time.Time) bool {
	if s.Phase.Over() {
		return false
	}
	c, ok := s.Grid.At(x, y)
	if !ok || c.IsRevealed {
		return false
	}
	s.start(now)
	s.Grid = board.ToggleFlag(s.Grid, x, y)
	return true
}

// Forfeit gives the game up and discloses the mines. A game whose mines
// are not placed yet has nothing to disclose, so it is left as is.
func (s *State) Forfeit(now time.Time) bool {
	if s.Phase.Over() || !s.Seeded {
		return false
	}
	s.Grid = board.RevealAllMines(s.Grid)
	s.end(Lost, now)
	return true
}

func (s *State) Reset() {
	*s = *New(s.Difficulty)
}

func (s State) MinesLeft() int {
	if s.Phase == Won {
		return 0
	}
	return s.Mines - s.Grid.Flagged()
}

// Elapsed is the whole number of seconds played, frozen once the game ends.
func (s State) Elapsed(now time.Time) int64 {
	if s.StartedAt.IsZero() {
		return 0
	}
	if s.Phase.Over() {
		now = s.EndedAt
	}
	return int64(now.Sub(s.StartedAt) / time.Second)
}
