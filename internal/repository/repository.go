package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vancomm/peachsweeper/internal/game"
)

var (
	ErrNotFound       = errors.New("game session not found")
	ErrConflict       = errors.New("game session was modified concurrently")
	ErrInvalidSession = errors.New("invalid game session")
)

// GameSession is one live game. Version grows with every stored update and
// guards against two writers replacing each other's grid.
type GameSession struct {
	GameSessionID int64
	Version       int64
	State         *game.State
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Store interface {
	CreateGameSession(ctx context.Context, state *game.State) (*GameSession, error)
	FetchGameSession(ctx context.Context, gameSessionID int64) (*GameSession, error)
	// UpdateGameSession stores session.State if the stored version still
	// equals session.Version, otherwise it fails with ErrConflict.
	UpdateGameSession(ctx context.Context, session *GameSession) (*GameSession, error)
	DeleteGameSession(ctx context.Context, gameSessionID int64) error
}
