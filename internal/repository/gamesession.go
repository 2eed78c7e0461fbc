package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vancomm/peachsweeper/internal/game"
)

type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type gameSessionRow struct {
	GameSessionID int64      `db:"game_session_id"`
	Difficulty    string     `db:"difficulty"`
	Width         int        `db:"width"`
	Height        int        `db:"height"`
	MineCount     int        `db:"mine_count"`
	Phase         string     `db:"phase"`
	State         []byte     `db:"state"`
	Version       int64      `db:"version"`
	StartedAt     *time.Time `db:"started_at"`
	EndedAt       *time.Time `db:"ended_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

func (r gameSessionRow) session() (*GameSession, error) {
	state, err := game.Decode(r.State)
	if err != nil {
		return nil, fmt.Errorf("game_session %d holds an invalid state: %w", r.GameSessionID, err)
	}
	return &GameSession{
		GameSessionID: r.GameSessionID,
		Version:       r.Version,
		State:         state,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// stateArgs are the columns derived from a game state; the gob-encoded
// state stays the source of truth.
func stateArgs(state *game.State) (pgx.NamedArgs, error) {
	b, err := state.Bytes()
	if err != nil {
		return nil, fmt.Errorf("unable to encode game state: %w", err)
	}
	return pgx.NamedArgs{
		"difficulty": state.Name,
		"width":      state.Cols,
		"height":     state.Rows,
		"mine_count": state.Mines,
		"phase":      state.Phase.String(),
		"state":      b,
		"started_at": nullTime(state.StartedAt),
		"ended_at":   nullTime(state.EndedAt),
	}, nil
}

func classify(err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code):
		return fmt.Errorf("%w: %s", ErrInvalidSession, pgErr.ConstraintName)
	default:
		return err
	}
}

func (q *Queries) collectOne(rows pgx.Rows, err error) (*GameSession, error) {
	if err != nil {
		return nil, classify(err)
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[gameSessionRow])
	if err != nil {
		return nil, classify(err)
	}
	return row.session()
}

func (q *Queries) CreateGameSession(ctx context.Context, state *game.State) (*GameSession, error) {
	args, err := stateArgs(state)
	if err != nil {
		return nil, err
	}
	return q.collectOne(q.db.Query(
		ctx,
		`INSERT INTO game_session (
			difficulty, width, height, mine_count, phase, state, started_at, ended_at
		)
		VALUES (
			@difficulty, @width, @height, @mine_count, @phase, @state, @started_at, @ended_at
		)
		RETURNING *;`,
		args,
	))
}

func (q *Queries) FetchGameSession(ctx context.Context, gameSessionID int64) (*GameSession, error) {
	return q.collectOne(q.db.Query(
		ctx,
		"SELECT * FROM game_session WHERE game_session_id = $1",
		gameSessionID,
	))
}

func (q *Queries) UpdateGameSession(ctx context.Context, session *GameSession) (*GameSession, error) {
	args, err := stateArgs(session.State)
	if err != nil {
		return nil, err
	}
	args["game_session_id"] = session.GameSessionID
	args["version"] = session.Version

	updated, err := q.collectOne(q.db.Query(
		ctx,
		`UPDATE game_session SET
			phase = @phase,
			state = @state,
			started_at = @started_at,
			ended_at = @ended_at,
			version = version + 1,
			updated_at = now()
		WHERE game_session_id = @game_session_id AND version = @version
		RETURNING *;`,
		args,
	))
	if !errors.Is(err, ErrNotFound) {
		return updated, err
	}

	// nothing matched: either the session is gone or someone else won
	if _, err := q.FetchGameSession(ctx, session.GameSessionID); err != nil {
		return nil, err
	}
	return nil, ErrConflict
}

func (q *Queries) DeleteGameSession(ctx context.Context, gameSessionID int64) error {
	tag, err := q.db.Exec(
		ctx,
		"DELETE FROM game_session WHERE game_session_id = $1",
		gameSessionID,
	)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
