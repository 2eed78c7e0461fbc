package game

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/peachsweeper/internal/board"
)

func TestMain(m *testing.M) {
	Log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	m.Run()
}

var (
	beginner = Difficulty{Name: "beginner", Rows: 9, Cols: 9, Mines: 10}
	t0       = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
)

// seeded returns a Playing-ready state whose only mine sits at (2, 2).
func seeded() *State {
	s := New(Difficulty{Name: "tiny", Rows: 5, Cols: 5, Mines: 1})
	s.Grid = board.PlaceMinesAt(s.Grid, []board.Point{{X: 2, Y: 2}})
	s.Seeded = true
	return s
}

func TestFirstOpenIsSafe(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for y := range beginner.Rows {
		for x := range beginner.Cols {
			s := New(beginner)
			out := s.Open(x, y, r, t0)

			require.True(t, out.Changed)
			assert.False(t, out.HitMine)
			assert.True(t, s.Seeded)
			assert.Equal(t, 10, s.Grid.Mines())
			assert.NotEqual(t, Lost, s.Phase)
			assert.Equal(t, t0, s.StartedAt)
		}
	}
}

func TestOpenHitsMine(t *testing.T) {
	s := seeded()
	s.Open(1, 1, nil, t0)
	require.Equal(t, Playing, s.Phase)

	out := s.Open(2, 2, nil, t0.Add(5*time.Second))

	assert.Equal(t, Outcome{Changed: true, HitMine: true}, out)
	assert.Equal(t, Lost, s.Phase)
	assert.Equal(t, board.Mine, s.Grid.State(2, 2))
	assert.Equal(t, int64(5), s.Elapsed(t0.Add(time.Hour)))

	// a finished game ignores further moves
	assert.Equal(t, Outcome{}, s.Open(0, 0, nil, t0))
	assert.False(t, s.Flag(0, 0, t0))
}

func TestOpenWins(t *testing.T) {
	s := seeded()
	s.Open(1, 1, nil, t0)
	require.Equal(t, Playing, s.Phase)

	// the zero region around the mine ring reaches every safe cell
	out := s.Open(0, 0, nil, t0.Add(time.Minute))

	assert.Equal(t, Outcome{Changed: true, Won: true}, out)
	assert.Equal(t, Won, s.Phase)
	assert.Equal(t, 24, s.Grid.Revealed())
	assert.Equal(t, 0, s.MinesLeft())
	assert.Equal(t, int64(60), s.Elapsed(t0.Add(time.Hour)))
}

func TestOpenIgnoresFlaggedAndRevealed(t *testing.T) {
	s := seeded()
	require.True(t, s.Flag(1, 1, t0))
	assert.Equal(t, Outcome{}, s.Open(1, 1, nil, t0))

	require.Equal(t, Outcome{Changed: true}, s.Open(3, 3, nil, t0))
	before := s.Grid
	assert.Equal(t, Outcome{}, s.Open(3, 3, nil, t0))
	assert.Equal(t, before, s.Grid)
	assert.Equal(t, Outcome{}, s.Open(-1, 0, nil, t0))
}

func TestFlagBeforeFirstOpen(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	s := New(beginner)

	require.True(t, s.Flag(0, 0, t0))
	assert.Equal(t, Playing, s.Phase)
	assert.False(t, s.Seeded)
	assert.Equal(t, 9, s.MinesLeft())

	out := s.Open(4, 4, r, t0.Add(time.Second))
	assert.True(t, out.Changed)
	assert.False(t, out.HitMine)
	assert.True(t, s.Seeded)
	assert.Equal(t, 10, s.Grid.Mines())
	assert.Equal(t, t0, s.StartedAt)
}

func TestFlagCounter(t *testing.T) {
	s := seeded()
	s.Open(1, 1, nil, t0)

	assert.False(t, s.Flag(1, 1, t0), "revealed cells cannot be flagged")
	assert.False(t, s.Flag(5, 5, t0))
	assert.True(t, s.Flag(2, 2, t0))
	assert.Equal(t, 0, s.MinesLeft())
	assert.True(t, s.Flag(0, 0, t0))
	assert.Equal(t, -1, s.MinesLeft())
	assert.True(t, s.Flag(0, 0, t0))
	assert.Equal(t, 0, s.MinesLeft())
}

func TestForfeit(t *testing.T) {
	s := seeded()
	s.Open(1, 1, nil, t0)
	assert.True(t, s.Forfeit(t0.Add(3*time.Second)))

	assert.Equal(t, Lost, s.Phase)
	assert.Equal(t, board.Mine, s.Grid.State(2, 2))
	assert.Equal(t, int64(3), s.Elapsed(t0.Add(time.Hour)))

	assert.False(t, s.Forfeit(t0.Add(time.Hour)))
}

func TestForfeitBeforeMinesPlaced(t *testing.T) {
	idle := New(beginner)
	assert.False(t, idle.Forfeit(t0))
	assert.Equal(t, New(beginner), idle)

	flagged := New(beginner)
	flagged.Flag(0, 0, t0)
	assert.False(t, flagged.Forfeit(t0.Add(time.Second)))
	assert.Equal(t, Playing, flagged.Phase)
	assert.Equal(t, 0, flagged.Grid.Revealed())
}

func TestReset(t *testing.T) {
	s := seeded()
	s.Open(1, 1, nil, t0)
	s.Reset()

	assert.Equal(t, New(s.Difficulty), s)
}

func TestElapsed(t *testing.T) {
	s := New(beginner)
	assert.Equal(t, int64(0), s.Elapsed(t0))

	s.Flag(0, 0, t0)
	assert.Equal(t, int64(0), s.Elapsed(t0.Add(999*time.Millisecond)))
	assert.Equal(t, int64(42), s.Elapsed(t0.Add(42*time.Second)))
}

func TestEncoding(t *testing.T) {
	s := seeded()
	s.Open(1, 1, nil, t0)
	s.Flag(2, 2, t0)

	b, err := s.Bytes()
	require.NoError(t, err)

	decoded, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, s.Grid, decoded.Grid)
	assert.Equal(t, s.Phase, decoded.Phase)
	assert.Equal(t, s.Difficulty, decoded.Difficulty)
	assert.True(t, s.StartedAt.Equal(decoded.StartedAt))

	_, err = Decode([]byte("not a game"))
	assert.Error(t, err)
}

func TestPhaseText(t *testing.T) {
	for _, p := range []Phase{Idle, Playing, Won, Lost} {
		text, err := p.MarshalText()
		require.NoError(t, err)

		var parsed Phase
		require.NoError(t, parsed.UnmarshalText(text))
		assert.Equal(t, p, parsed)
	}

	var p Phase
	assert.Error(t, p.UnmarshalText([]byte("paused")))
	assert.Equal(t, "Phase(9)", Phase(9).String())
}

func TestDifficultyValidate(t *testing.T) {
	assert.NoError(t, beginner.Validate())
	assert.ErrorIs(t,
		Difficulty{Name: "full", Rows: 3, Cols: 3, Mines: 9}.Validate(),
		board.ErrTooManyMines,
	)
}
